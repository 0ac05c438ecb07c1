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
	"sync"
	"testing"
	"time"

	"github.com/tochemey/goakt-typed/behavior"
	"github.com/tochemey/goakt-typed/eventstream"
	"github.com/tochemey/goakt-typed/log"
)

// DefaultTimeout is the time a probe waits for a message
const DefaultTimeout = 100 * time.Millisecond

// TestKit hosts behaviors on a synchronous engine. Every input is interpreted
// before Tell returns and time only moves through Advance, which makes the
// behaviors, their supervisors and their timers deterministic under test.
type TestKit struct {
	t         testing.TB
	ctx       context.Context
	logger    log.Logger
	scheduler *ManualScheduler
	stream    *eventstream.EventsStream

	mu          sync.Mutex
	deadLetters []behavior.DeadLetter
}

// New creates an instance of TestKit
func New(t testing.TB, opts ...Option) *TestKit {
	kit := &TestKit{
		t:         t,
		ctx:       context.Background(),
		logger:    log.DiscardLogger,
		scheduler: NewManualScheduler(time.Unix(0, 0).UTC()),
		stream:    eventstream.New(),
	}

	for _, opt := range opts {
		opt.Apply(kit)
	}

	t.Cleanup(func() {
		kit.stream.Close()
		_ = kit.logger.Flush()
	})
	return kit
}

// Scheduler returns the virtual time scheduler shared by the spawned actors
func (k *TestKit) Scheduler() *ManualScheduler {
	return k.scheduler
}

// Advance moves the virtual clock forward, running the scheduled tasks that
// become due in order
func (k *TestKit) Advance(d time.Duration) {
	k.scheduler.Advance(d)
}

// Now returns the virtual time
func (k *TestKit) Now() time.Time {
	return k.scheduler.Now()
}

// Logger returns the logger handed to the behaviors
func (k *TestKit) Logger() log.Logger {
	return k.logger
}

// DeadLetters returns the inputs that could not be delivered so far
func (k *TestKit) DeadLetters() []behavior.DeadLetter {
	k.mu.Lock()
	defer k.mu.Unlock()
	letters := make([]behavior.DeadLetter, len(k.deadLetters))
	copy(letters, k.deadLetters)
	return letters
}

// Subscribe returns a subscriber receiving the events published on the
// given topics: eventstream.DeadLettersTopic carries behavior.DeadLetter
// values and eventstream.UnhandledTopic carries UnhandledMessage values.
func (k *TestKit) Subscribe(topics ...string) eventstream.Subscriber {
	sub := k.stream.AddSubscriber()
	for _, topic := range topics {
		k.stream.Subscribe(sub, topic)
	}
	return sub
}

// NewProbe creates a probe with the given path
func (k *TestKit) NewProbe(path string) Probe {
	return newProbe(k, path, nil)
}

func (k *TestKit) publish(letter behavior.DeadLetter) {
	k.mu.Lock()
	k.deadLetters = append(k.deadLetters, letter)
	k.mu.Unlock()
	k.stream.Publish(eventstream.DeadLettersTopic, letter)
}

// UnhandledMessage is published when a behavior does not handle a message
type UnhandledMessage struct {
	Message   any
	Recipient behavior.ActorRef
}
