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
	"errors"
	"fmt"
	"sync"
	"time"

	gods "github.com/Workiva/go-datastructures/queue"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/tochemey/goakt-typed/behavior"
	gerrors "github.com/tochemey/goakt-typed/errors"
)

// Probe is an ActorRef recording what it is told. Children spawned by a
// behavior under test are probes.
type Probe interface {
	behavior.ActorRef
	// ExpectMessage asserts that the next message equals message
	ExpectMessage(message any)
	// ExpectMessageWithin asserts that the next message equals message and arrives within duration
	ExpectMessageWithin(duration time.Duration, message any)
	// ExpectNoMessage asserts that no message is waiting
	ExpectNoMessage()
	// ExpectAnyMessage asserts that a message is waiting and returns it
	ExpectAnyMessage() any
	// ExpectAnyMessageWithin asserts that a message arrives within duration and returns it
	ExpectAnyMessageWithin(duration time.Duration) any
	// Messages returns the messages not consumed yet, without consuming them
	Messages() []any
	// IsStopped reports whether the probe was stopped by its parent
	IsStopped() bool
	// Behavior returns the behavior the probe was spawned with, if any
	Behavior() any
}

type probe struct {
	kit      *TestKit
	path     string
	behavior any
	stopped  *atomic.Bool

	mu      sync.Mutex
	pending []any
	queue   *gods.Queue
}

var _ Probe = (*probe)(nil)

func newProbe(kit *TestKit, path string, b any) *probe {
	return &probe{
		kit:      kit,
		path:     path,
		behavior: b,
		stopped:  atomic.NewBool(false),
		queue:    gods.New(16),
	}
}

// Path implements behavior.ActorRef
func (x *probe) Path() string {
	return x.path
}

// Tell implements behavior.ActorRef
func (x *probe) Tell(input any) error {
	if x.stopped.Load() {
		x.kit.publish(behavior.DeadLetter{Message: input, Recipient: x, Reason: "probe is stopped"})
		return gerrors.ErrDead
	}

	x.mu.Lock()
	x.pending = append(x.pending, input)
	x.mu.Unlock()
	return x.queue.Put(input)
}

// ExpectMessage asserts message expectation
func (x *probe) ExpectMessage(message any) {
	x.expectMessage(DefaultTimeout, message)
}

// ExpectMessageWithin expects message within a time duration
func (x *probe) ExpectMessageWithin(duration time.Duration, message any) {
	x.expectMessage(duration, message)
}

// ExpectNoMessage expects no message
func (x *probe) ExpectNoMessage() {
	received := x.receiveOne(DefaultTimeout)
	require.Nil(x.kit.t, received, fmt.Sprintf("received unexpected message %v", received))
}

// ExpectAnyMessage expects any message
func (x *probe) ExpectAnyMessage() any {
	return x.expectAnyMessage(DefaultTimeout)
}

// ExpectAnyMessageWithin expects any message within a time duration
func (x *probe) ExpectAnyMessageWithin(duration time.Duration) any {
	return x.expectAnyMessage(duration)
}

// Messages returns the messages not consumed yet
func (x *probe) Messages() []any {
	x.mu.Lock()
	defer x.mu.Unlock()
	messages := make([]any, len(x.pending))
	copy(messages, x.pending)
	return messages
}

// IsStopped reports whether the probe was stopped
func (x *probe) IsStopped() bool {
	return x.stopped.Load()
}

// Behavior returns the behavior the probe was spawned with
func (x *probe) Behavior() any {
	return x.behavior
}

func (x *probe) stop() {
	x.stopped.Store(true)
}

// receiveOne receives one message within a maximum time duration
func (x *probe) receiveOne(max time.Duration) any {
	items, err := x.queue.Poll(1, max)
	if err != nil {
		if !errors.Is(err, gods.ErrTimeout) {
			require.NoError(x.kit.t, err)
		}
		return nil
	}

	x.mu.Lock()
	if len(x.pending) > 0 {
		x.pending = x.pending[1:]
	}
	x.mu.Unlock()
	return items[0]
}

func (x *probe) expectMessage(max time.Duration, message any) {
	received := x.receiveOne(max)
	require.NotNil(x.kit.t, received, fmt.Sprintf("timeout (%v) during expectMessage while waiting for %v", max, message))
	require.Equal(x.kit.t, message, received, fmt.Sprintf("expected %v, found %v", message, received))
}

func (x *probe) expectAnyMessage(max time.Duration) any {
	received := x.receiveOne(max)
	require.NotNil(x.kit.t, received, fmt.Sprintf("timeout (%v) during expectAnyMessage while waiting", max))
	return received
}
