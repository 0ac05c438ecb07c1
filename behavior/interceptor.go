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
	"reflect"
)

// Interceptor layers processing over a behavior accepting In messages and turns
// it into a behavior accepting Out messages. Each hook receives a target
// applying the wrapped behavior's own interpretation.
//
// Identity returns a comparable tag. When a wrapped behavior evolves into a
// behavior that already carries an interceptor with the same identity, the outer
// frame is dropped so that recursive wrapping does not grow the stack.
type Interceptor[Out, In any] interface {
	// AroundStart runs when the wrapped behavior is activated
	AroundStart(ctx Context, target PreStartTarget[In]) (Behavior[In], error)
	// AroundReceive runs for every message. Returning Same without calling the
	// target drops the message.
	AroundReceive(ctx Context, msg Out, target ReceiveTarget[In]) (Behavior[In], error)
	// AroundSignal runs for every signal
	AroundSignal(ctx Context, sig Signal, target SignalTarget[In]) (Behavior[In], error)
	// Identity returns the comparable tag used for deduplication
	Identity() any
}

// PreStartTarget activates the wrapped behavior
type PreStartTarget[In any] interface {
	// Start canonicalizes the wrapped behavior
	Start(ctx Context) (Behavior[In], error)
}

// ReceiveTarget forwards a message to the wrapped behavior
type ReceiveTarget[In any] interface {
	// Apply interprets msg with the wrapped behavior
	Apply(ctx Context, msg In) (Behavior[In], error)
	// SignalRestart delivers PreRestart to the wrapped behavior and discards the result
	SignalRestart(ctx Context) error
}

// SignalTarget forwards a signal to the wrapped behavior
type SignalTarget[In any] interface {
	// Apply interprets sig with the wrapped behavior
	Apply(ctx Context, sig Signal) (Behavior[In], error)
	// Deliver interprets msg with the wrapped behavior. Interceptors turning a
	// signal of their own into a protocol message use it.
	Deliver(ctx Context, msg In) (Behavior[In], error)
	// SignalRestart delivers PreRestart to the wrapped behavior and discards the result
	SignalRestart(ctx Context) error
}

// PassThrough provides the start and signal hooks of an interceptor that only
// cares about messages
type PassThrough[In any] struct{}

// AroundStart starts the wrapped behavior
func (PassThrough[In]) AroundStart(ctx Context, target PreStartTarget[In]) (Behavior[In], error) {
	return target.Start(ctx)
}

// AroundSignal forwards the signal
func (PassThrough[In]) AroundSignal(ctx Context, sig Signal, target SignalTarget[In]) (Behavior[In], error) {
	return target.Apply(ctx, sig)
}

// Intercept wraps b with interceptor. The same interceptor instance, and
// therefore its state, is shared by every activation of the returned behavior.
// Use InterceptWith when each activation needs fresh state.
func Intercept[Out, In any](b Behavior[In], interceptor Interceptor[Out, In]) Behavior[Out] {
	return InterceptWith(b, func() Interceptor[Out, In] { return interceptor })
}

// InterceptWith wraps b with the interceptor returned by factory. The factory
// runs on every activation.
func InterceptWith[Out, In any](b Behavior[In], factory func() Interceptor[Out, In]) Behavior[Out] {
	return Setup(func(ctx Context) (Behavior[Out], error) {
		frame := &interceptorFrame[Out, In]{
			interceptor: factory(),
			nested:      b,
		}
		started, err := frame.interceptor.AroundStart(ctx, startTarget[In]{nested: b})
		if err != nil {
			return nil, err
		}
		return frame.deduplicate(ctx, started, false)
	})
}

// Interceptors returns the identities of the interceptors stacked on b,
// outermost first
func Interceptors[M any](b Behavior[M]) []any {
	var identities []any
	var current any = b
	for {
		frame, ok := frameOf(current)
		if !ok {
			return identities
		}
		identities = append(identities, frame.identity())
		current = frame.inner()
	}
}

// stackFrame lets the stack be walked without knowing the message types
type stackFrame interface {
	identity() any
	inner() any
}

type extensibleHolder interface {
	extensible() any
}

func frameOf(b any) (stackFrame, bool) {
	holder, ok := b.(extensibleHolder)
	if !ok {
		return nil, false
	}
	frame, ok := holder.extensible().(stackFrame)
	return frame, ok
}

type interceptorFrame[Out, In any] struct {
	interceptor Interceptor[Out, In]
	nested      Behavior[In]
}

var _ Extensible[any] = (*interceptorFrame[any, any])(nil)

func (f *interceptorFrame[Out, In]) identity() any { return f.interceptor.Identity() }
func (f *interceptorFrame[Out, In]) inner() any    { return f.nested }

// Receive implements Extensible
func (f *interceptorFrame[Out, In]) Receive(ctx Context, msg Out) (Behavior[Out], error) {
	next, err := f.interceptor.AroundReceive(ctx, msg, receiveTarget[In]{nested: f.nested})
	if err != nil {
		return nil, err
	}
	return f.deduplicate(ctx, next, true)
}

// ReceiveSignal implements Extensible
func (f *interceptorFrame[Out, In]) ReceiveSignal(ctx Context, sig Signal) (Behavior[Out], error) {
	next, err := f.interceptor.AroundSignal(ctx, sig, signalTarget[In]{nested: f.nested})
	if err != nil {
		return nil, err
	}
	return f.deduplicate(ctx, next, true)
}

// deduplicate turns the inner result into the outer result. A stopped result
// is propagated without wrapping, and a result already carrying an interceptor
// with the same identity replaces this frame.
func (f *interceptorFrame[Out, In]) deduplicate(ctx Context, result Behavior[In], running bool) (Behavior[Out], error) {
	started, err := Canonicalize(result, ctx)
	if err != nil {
		return nil, err
	}

	switch started.Kind() {
	case SameKind:
		return Same[Out](), nil
	case UnhandledKind:
		return Unhandled[Out](), nil
	case StoppedKind:
		return f.stopped(started), nil
	}

	if running && started == f.nested {
		return Same[Out](), nil
	}

	if outer, ok := any(started).(Behavior[Out]); ok && f.existsInStack(started) {
		return outer, nil
	}

	return Extend[Out](&interceptorFrame[Out, In]{
		interceptor: f.interceptor,
		nested:      started,
	}), nil
}

func (f *interceptorFrame[Out, In]) stopped(started Behavior[In]) Behavior[Out] {
	if outer, ok := any(started).(Behavior[Out]); ok {
		return outer
	}

	postStop, ok := PostStopBehavior(started)
	if !ok {
		return Stopped[Out]()
	}

	return stoppedBehavior[Out]{postStop: Extend[Out](&interceptorFrame[Out, In]{
		interceptor: f.interceptor,
		nested:      postStop,
	})}
}

func (f *interceptorFrame[Out, In]) existsInStack(b Behavior[In]) bool {
	id := f.interceptor.Identity()
	var current any = b
	for {
		frame, ok := frameOf(current)
		if !ok {
			return false
		}
		if sameIdentity(id, frame.identity()) {
			return true
		}
		current = frame.inner()
	}
}

// sameIdentity compares two identities without panicking on non-comparable values
func sameIdentity(a, b any) (same bool) {
	if a == nil || b == nil {
		return false
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}

	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

type startTarget[In any] struct {
	nested Behavior[In]
}

func (t startTarget[In]) Start(ctx Context) (Behavior[In], error) {
	return Canonicalize(t.nested, ctx)
}

type receiveTarget[In any] struct {
	nested Behavior[In]
}

func (t receiveTarget[In]) Apply(ctx Context, msg In) (Behavior[In], error) {
	return InterpretMessage(t.nested, ctx, msg)
}

func (t receiveTarget[In]) SignalRestart(ctx Context) error {
	return signalRestart(t.nested, ctx)
}

type signalTarget[In any] struct {
	nested Behavior[In]
}

func (t signalTarget[In]) Apply(ctx Context, sig Signal) (Behavior[In], error) {
	return InterpretSignal(t.nested, ctx, sig)
}

func (t signalTarget[In]) Deliver(ctx Context, msg In) (Behavior[In], error) {
	return InterpretMessage(t.nested, ctx, msg)
}

func (t signalTarget[In]) SignalRestart(ctx Context) error {
	return signalRestart(t.nested, ctx)
}

var (
	_ PreStartTarget[any] = startTarget[any]{}
	_ ReceiveTarget[any]  = receiveTarget[any]{}
	_ SignalTarget[any]   = signalTarget[any]{}
)

func signalRestart[In any](nested Behavior[In], ctx Context) error {
	_, err := InterpretSignal(nested, ctx, PreRestart{})
	return err
}
