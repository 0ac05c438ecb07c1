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
	"bytes"
	"context"
	"errors"

	"github.com/tochemey/goakt-typed/log"
)

type testRef struct {
	path     string
	received []any
	err      error
}

func (r *testRef) Path() string { return r.path }

func (r *testRef) Tell(input any) error {
	if r.err != nil {
		return r.err
	}
	r.received = append(r.received, input)
	return nil
}

type testContext struct {
	self        *testRef
	logger      log.Logger
	deadLetters []DeadLetter
}

var _ Context = (*testContext)(nil)

func newTestContext() *testContext {
	return &testContext{
		self:   &testRef{path: "goakt://test/user/self"},
		logger: log.DiscardLogger,
	}
}

func newLoggingContext(level log.Level) (*testContext, *bytes.Buffer) {
	buffer := new(bytes.Buffer)
	ctx := newTestContext()
	ctx.logger = log.NewZap(level, buffer)
	return ctx, buffer
}

func (c *testContext) Context() context.Context      { return context.Background() }
func (c *testContext) Log() log.Logger               { return c.logger }
func (c *testContext) Scheduler() Scheduler          { return nil }
func (c *testContext) Children() []ActorRef          { return nil }
func (c *testContext) Child(string) (ActorRef, bool) { return nil, false }
func (c *testContext) Stop(ActorRef) error           { return nil }
func (c *testContext) Watch(ActorRef)                {}
func (c *testContext) Unwatch(ActorRef)              {}

func (c *testContext) Self() ActorRef {
	if c.self == nil {
		return nil
	}
	return c.self
}

func (c *testContext) Spawn(name string, _ any) (ActorRef, error) {
	return &testRef{path: c.self.path + "/" + name}, nil
}

func (c *testContext) PublishDeadLetter(letter DeadLetter) {
	c.deadLetters = append(c.deadLetters, letter)
}

var errBoom = errors.New("boom")

// recorder records the inputs reaching a behavior
type recorder struct {
	messages []string
	signals  []Signal
}

func (r *recorder) behavior() Behavior[string] {
	return ReceiveWithSignal(
		func(_ Context, msg string) (Behavior[string], error) {
			r.messages = append(r.messages, msg)
			switch msg {
			case "unhandled":
				return Unhandled[string](), nil
			case "stop":
				return Stopped[string](), nil
			case "fail":
				return nil, errBoom
			}
			return Same[string](), nil
		},
		func(_ Context, sig Signal) (Behavior[string], error) {
			r.signals = append(r.signals, sig)
			return Same[string](), nil
		},
	)
}

// tagInterceptor is a message type preserving interceptor identified by tag
type tagInterceptor struct {
	PassThrough[string]
	tag      string
	starts   int
	received []string
	drop     string
}

func (t *tagInterceptor) AroundStart(ctx Context, target PreStartTarget[string]) (Behavior[string], error) {
	t.starts++
	return target.Start(ctx)
}

func (t *tagInterceptor) AroundReceive(ctx Context, msg string, target ReceiveTarget[string]) (Behavior[string], error) {
	t.received = append(t.received, msg)
	if msg == t.drop {
		return Same[string](), nil
	}
	return target.Apply(ctx, msg)
}

func (t *tagInterceptor) Identity() any { return t.tag }

func mustStart[M any](b Behavior[M], ctx Context) Behavior[M] {
	started, err := Start(b, ctx)
	if err != nil {
		panic(err)
	}
	return started
}
