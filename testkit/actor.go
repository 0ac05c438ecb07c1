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

package testkit

import (
	"context"
	"fmt"
	"sync"

	gods "github.com/Workiva/go-datastructures/queue"
	goset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/goakt-typed/behavior"
	"github.com/tochemey/goakt-typed/eventstream"
	gerrors "github.com/tochemey/goakt-typed/errors"
	"github.com/tochemey/goakt-typed/log"
)

// Actor runs a behavior on the TestKit engine. Inputs are interpreted one at
// a time in arrival order. An input told while another one is interpreted,
// by the behavior itself or by a scheduled task, is queued and interpreted
// before the outer Tell returns.
type Actor[M any] struct {
	kit     *TestKit
	path    string
	mailbox *gods.Queue

	mu         sync.Mutex
	processing bool

	current   behavior.Behavior[M]
	alive     bool
	failure   error
	unhandled []any
	children  []*probe
	watched   goset.Set[behavior.ActorRef]
	ctx       *actorContext[M]
}

var _ behavior.ActorRef = (*Actor[any])(nil)

// Spawn starts b as a top level actor named name. The returned actor may
// already be stopped when the behavior failed or stopped while starting.
func Spawn[M any](kit *TestKit, name string, b behavior.Behavior[M]) *Actor[M] {
	actor := &Actor[M]{
		kit:     kit,
		path:    "/user/" + name,
		mailbox: gods.New(16),
		watched: goset.NewThreadUnsafeSet[behavior.ActorRef](),
	}
	actor.ctx = &actorContext[M]{actor: actor}

	actor.mu.Lock()
	actor.processing = true
	actor.mu.Unlock()

	started, err := protect(func() (behavior.Behavior[M], error) {
		return behavior.Start(b, actor.ctx)
	})
	switch {
	case err != nil:
		actor.failure = err
		actor.stopChildren()
	case !behavior.IsAlive(started):
		actor.stop(started)
	default:
		actor.current = started
		actor.alive = true
		actor.process(behavior.PreStart{})
	}

	actor.drain()
	return actor
}

// Path implements behavior.ActorRef
func (a *Actor[M]) Path() string {
	return a.path
}

// Tell implements behavior.ActorRef. Inputs implementing behavior.Signal are
// interpreted as signals. Telling a stopped actor records a dead letter and
// returns errors.ErrDead.
func (a *Actor[M]) Tell(input any) error {
	if !a.IsAlive() {
		a.kit.publish(behavior.DeadLetter{Message: input, Recipient: a, Reason: "actor is not alive"})
		return gerrors.ErrDead
	}
	if err := a.mailbox.Put(input); err != nil {
		return err
	}
	a.processAll()
	return nil
}

// Send tells a message
func (a *Actor[M]) Send(msg M) error {
	return a.Tell(msg)
}

// Signal tells a signal
func (a *Actor[M]) Signal(sig behavior.Signal) error {
	return a.Tell(sig)
}

// Behavior returns the current behavior
func (a *Actor[M]) Behavior() behavior.Behavior[M] {
	return a.current
}

// IsAlive reports whether the actor is running
func (a *Actor[M]) IsAlive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alive
}

// Failure returns the error that stopped the actor, if any
func (a *Actor[M]) Failure() error {
	return a.failure
}

// Unhandled returns the messages the behavior did not handle
func (a *Actor[M]) Unhandled() []any {
	return a.unhandled
}

// Children returns the probes standing for the children still running
func (a *Actor[M]) Children() []Probe {
	children := make([]Probe, 0, len(a.children))
	for _, child := range a.children {
		children = append(children, child)
	}
	return children
}

// Child returns the running child probe with the given name
func (a *Actor[M]) Child(name string) (Probe, bool) {
	child := a.child(name)
	if child == nil {
		return nil, false
	}
	return child, true
}

// Watched returns the refs the behavior is watching
func (a *Actor[M]) Watched() []behavior.ActorRef {
	return a.watched.ToSlice()
}

// IsWatching reports whether the behavior watches ref
func (a *Actor[M]) IsWatching(ref behavior.ActorRef) bool {
	return a.watched.Contains(ref)
}

func (a *Actor[M]) processAll() {
	a.mu.Lock()
	if a.processing {
		a.mu.Unlock()
		return
	}
	a.processing = true
	a.mu.Unlock()
	a.drain()
}

// drain interprets the queued inputs until the mailbox is empty
func (a *Actor[M]) drain() {
	for {
		if a.mailbox.Empty() {
			a.mu.Lock()
			if a.mailbox.Empty() {
				a.processing = false
				a.mu.Unlock()
				return
			}
			a.mu.Unlock()
		}

		items, err := a.mailbox.Get(1)
		if err != nil {
			a.mu.Lock()
			a.processing = false
			a.mu.Unlock()
			return
		}
		a.process(items[0])
	}
}

func (a *Actor[M]) process(input any) {
	if !a.IsAlive() {
		a.kit.publish(behavior.DeadLetter{Message: input, Recipient: a, Reason: "actor is not alive"})
		return
	}

	next, err := protect(func() (behavior.Behavior[M], error) {
		return behavior.InterpretInput(a.current, a.ctx, input)
	})
	if err != nil {
		a.fail(err)
		return
	}

	if behavior.IsUnhandled(next) {
		if _, ok := input.(behavior.Signal); !ok {
			a.unhandled = append(a.unhandled, input)
			a.kit.stream.Publish(eventstream.UnhandledTopic, UnhandledMessage{Message: input, Recipient: a})
		}
	}

	if !behavior.IsAlive(next) {
		a.stop(next)
		return
	}
	a.current = behavior.Resolve(next, a.current)
}

// stop delivers PostStop to the behavior carried by stopped or to the
// current one
func (a *Actor[M]) stop(stopped behavior.Behavior[M]) {
	a.setAlive(false)

	target := a.current
	if postStop, ok := behavior.PostStopBehavior(stopped); ok {
		target = postStop
	}
	a.postStop(target)
	a.current = stopped
	a.stopChildren()
}

func (a *Actor[M]) fail(err error) {
	a.setAlive(false)
	a.failure = err
	a.kit.logger.Errorf("actor %s failed: %v", a.path, err)
	a.postStop(a.current)
	a.current = behavior.Stopped[M]()
	a.stopChildren()
}

func (a *Actor[M]) postStop(target behavior.Behavior[M]) {
	if target == nil {
		return
	}
	if _, err := protect(func() (behavior.Behavior[M], error) {
		return behavior.InterpretSignal(target, a.ctx, behavior.PostStop{})
	}); err != nil {
		a.kit.logger.Warnf("actor %s failed while handling PostStop: %v", a.path, err)
	}
}

func (a *Actor[M]) setAlive(alive bool) {
	a.mu.Lock()
	a.alive = alive
	a.mu.Unlock()
}

func (a *Actor[M]) stopChildren() {
	for _, child := range a.children {
		child.stop()
	}
	a.children = nil
}

func (a *Actor[M]) child(name string) *probe {
	path := a.path + "/" + name
	for _, child := range a.children {
		if child.path == path {
			return child
		}
	}
	return nil
}

// actorContext is the behavior.Context handed to the behavior of an Actor
type actorContext[M any] struct {
	actor *Actor[M]
}

var _ behavior.Context = (*actorContext[any])(nil)

// Context implements behavior.Context
func (c *actorContext[M]) Context() context.Context {
	return c.actor.kit.ctx
}

// Self implements behavior.Context
func (c *actorContext[M]) Self() behavior.ActorRef {
	return c.actor
}

// Log implements behavior.Context
func (c *actorContext[M]) Log() log.Logger {
	return c.actor.kit.logger
}

// Scheduler implements behavior.Context
func (c *actorContext[M]) Scheduler() behavior.Scheduler {
	return c.actor.kit.scheduler
}

// Children implements behavior.Context
func (c *actorContext[M]) Children() []behavior.ActorRef {
	children := make([]behavior.ActorRef, 0, len(c.actor.children))
	for _, child := range c.actor.children {
		children = append(children, child)
	}
	return children
}

// Child implements behavior.Context
func (c *actorContext[M]) Child(name string) (behavior.ActorRef, bool) {
	child := c.actor.child(name)
	if child == nil {
		return nil, false
	}
	return child, true
}

// Spawn implements behavior.Context. The child is a probe recording the
// messages it is told.
func (c *actorContext[M]) Spawn(name string, b any) (behavior.ActorRef, error) {
	if c.actor.child(name) != nil {
		return nil, fmt.Errorf("child %s already exists", name)
	}
	child := newProbe(c.actor.kit, c.actor.path+"/"+name, b)
	c.actor.children = append(c.actor.children, child)
	return child, nil
}

// Stop implements behavior.Context
func (c *actorContext[M]) Stop(ref behavior.ActorRef) error {
	for i, child := range c.actor.children {
		if behavior.ActorRef(child) == ref {
			child.stop()
			c.actor.children = append(c.actor.children[:i], c.actor.children[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s is not a child of %s", ref.Path(), c.actor.path)
}

// Watch implements behavior.Context
func (c *actorContext[M]) Watch(ref behavior.ActorRef) {
	c.actor.watched.Add(ref)
}

// Unwatch implements behavior.Context
func (c *actorContext[M]) Unwatch(ref behavior.ActorRef) {
	c.actor.watched.Remove(ref)
}

// PublishDeadLetter implements behavior.Context
func (c *actorContext[M]) PublishDeadLetter(letter behavior.DeadLetter) {
	c.actor.kit.publish(letter)
}

// protect runs fn turning a panic into a *errors.PanicError
func protect[M any](fn func() (behavior.Behavior[M], error)) (next behavior.Behavior[M], err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = nil, gerrors.FromPanic(r)
		}
	}()
	return fn()
}
