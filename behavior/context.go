// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package behavior

import (
	"context"
	"time"

	"github.com/tochemey/goakt-typed/log"
)

// ActorRef addresses an actor. Tell is safe for concurrent use. Engines route
// inputs implementing Signal through the signal path.
type ActorRef interface {
	// Path returns the unique path of the actor
	Path() string
	// Tell enqueues the input into the actor mailbox
	Tell(input any) error
}

// Cancellable is the handle of a scheduled task.
// Cancel is idempotent: cancelling a fired or cancelled task is a no-op.
type Cancellable interface {
	Cancel()
}

// Scheduler runs tasks after a delay or at a fixed interval. Tasks may run on
// another goroutine and must only interact with the actor through ActorRef.Tell.
type Scheduler interface {
	// ScheduleOnce runs task once after delay
	ScheduleOnce(delay time.Duration, task func()) (Cancellable, error)
	// ScheduleRepeatedly runs task every interval until cancelled
	ScheduleRepeatedly(interval time.Duration, task func()) (Cancellable, error)
	// Now returns the scheduler clock
	Now() time.Time
}

// DeadLetter describes an input that was dropped instead of being processed
type DeadLetter struct {
	Message   any
	Recipient ActorRef
	Reason    string
}

// Context is the capability surface the hosting engine hands to behaviors.
// It is confined to the actor processing the current input and must not be
// retained or used from other goroutines.
type Context interface {
	// Context returns the context.Context of the actor
	Context() context.Context
	// Self returns the reference of the actor
	Self() ActorRef
	// Log returns the logger of the actor
	Log() log.Logger
	// Scheduler returns the scheduler used for timers and backoff restarts
	Scheduler() Scheduler
	// Children returns the running children
	Children() []ActorRef
	// Child returns the running child with the given name
	Child(name string) (ActorRef, bool)
	// Spawn starts a child actor running the given behavior.
	// behavior must be a Behavior of some message type.
	Spawn(name string, behavior any) (ActorRef, error)
	// Stop stops the given child
	Stop(child ActorRef) error
	// Watch registers for a Terminated signal when ref stops
	Watch(ref ActorRef)
	// Unwatch cancels a previous Watch
	Unwatch(ref ActorRef)
	// PublishDeadLetter reports a dropped input
	PublishDeadLetter(letter DeadLetter)
}

// SpawnChild starts a child actor running b
func SpawnChild[M any](ctx Context, name string, b Behavior[M]) (ActorRef, error) {
	return ctx.Spawn(name, b)
}

// SelfPath returns the path of the actor owning ctx, or an empty string when
// the engine has no reference for it
func SelfPath(ctx Context) string {
	if self := ctx.Self(); self != nil {
		return self.Path()
	}
	return ""
}
