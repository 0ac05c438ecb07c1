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

// Package behavior holds the typed behavior algebra: the values describing how an
// actor reacts to its next message or signal, the interpreter reducing a current
// behavior and an input into the next canonical behavior, and the interceptor
// protocol used to layer supervision, timers and monitoring over user logic.
package behavior

import (
	gerrors "github.com/tochemey/goakt-typed/errors"
)

// Kind identifies the variant of a Behavior
type Kind int

const (
	// ExtensibleKind is user logic reacting to messages and signals
	ExtensibleKind Kind = iota
	// SameKind keeps whatever behavior is currently stored
	SameKind
	// UnhandledKind keeps the current behavior and reports the input as not consumed
	UnhandledKind
	// EmptyKind treats every input as unhandled
	EmptyKind
	// IgnoreKind treats every input as handled without change
	IgnoreKind
	// DeferredKind is a construction thunk expanded when the behavior becomes current
	DeferredKind
	// StoppedKind terminates the actor
	StoppedKind
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case ExtensibleKind:
		return "Extensible"
	case SameKind:
		return "Same"
	case UnhandledKind:
		return "Unhandled"
	case EmptyKind:
		return "Empty"
	case IgnoreKind:
		return "Ignore"
	case DeferredKind:
		return "Deferred"
	case StoppedKind:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Behavior describes how an actor accepting messages of type M reacts to its next
// input. The set of variants is closed: values are built with the constructors of
// this package, and user logic plugs in through Extensible.
//
// Only Extensible, Stopped, Empty and Ignore behaviors may be stored as an actor's
// current behavior. Same, Unhandled and deferred behaviors are transient results
// that must be resolved first.
type Behavior[M any] interface {
	// Kind returns the variant of the behavior
	Kind() Kind

	// protocol ties the behavior to its message type and seals the interface
	protocol(M)
}

// Extensible is the capability implemented by user logic. Code calling it must
// canonicalize the result, which is what the interpreter does.
type Extensible[M any] interface {
	// Receive processes a message and returns the next behavior
	Receive(ctx Context, msg M) (Behavior[M], error)
	// ReceiveSignal processes a lifecycle signal and returns the next behavior
	ReceiveSignal(ctx Context, sig Signal) (Behavior[M], error)
}

// ReceiveFunc handles a message
type ReceiveFunc[M any] func(ctx Context, msg M) (Behavior[M], error)

// SignalFunc handles a signal
type SignalFunc[M any] func(ctx Context, sig Signal) (Behavior[M], error)

// SetupFunc builds a behavior when it becomes current
type SetupFunc[M any] func(ctx Context) (Behavior[M], error)

type extensibleBehavior[M any] struct {
	impl Extensible[M]
}

func (*extensibleBehavior[M]) Kind() Kind { return ExtensibleKind }
func (*extensibleBehavior[M]) protocol(M) {}

// extensible exposes the user logic without knowing M
func (b *extensibleBehavior[M]) extensible() any { return b.impl }

type sameBehavior[M any] struct{}

func (sameBehavior[M]) Kind() Kind { return SameKind }
func (sameBehavior[M]) protocol(M) {}

type unhandledBehavior[M any] struct{}

func (unhandledBehavior[M]) Kind() Kind { return UnhandledKind }
func (unhandledBehavior[M]) protocol(M) {}

type emptyBehavior[M any] struct{}

func (emptyBehavior[M]) Kind() Kind { return EmptyKind }
func (emptyBehavior[M]) protocol(M) {}

type ignoreBehavior[M any] struct{}

func (ignoreBehavior[M]) Kind() Kind { return IgnoreKind }
func (ignoreBehavior[M]) protocol(M) {}

type deferredBehavior[M any] struct {
	factory SetupFunc[M]
}

func (*deferredBehavior[M]) Kind() Kind { return DeferredKind }
func (*deferredBehavior[M]) protocol(M) {}

type stoppedBehavior[M any] struct {
	postStop Behavior[M]
}

func (stoppedBehavior[M]) Kind() Kind { return StoppedKind }
func (stoppedBehavior[M]) protocol(M) {}

// Same returns the marker that keeps the current behavior
func Same[M any]() Behavior[M] { return sameBehavior[M]{} }

// Unhandled returns the marker that keeps the current behavior and reports the
// input as not consumed. Composition operators such as OrElse rely on it.
func Unhandled[M any]() Behavior[M] { return unhandledBehavior[M]{} }

// Empty returns a behavior treating every message as unhandled
func Empty[M any]() Behavior[M] { return emptyBehavior[M]{} }

// Ignore returns a behavior treating every message as handled
func Ignore[M any]() Behavior[M] { return ignoreBehavior[M]{} }

// Stopped returns the terminal behavior. The PostStop signal is delivered to the
// behavior that was current when the actor stopped.
func Stopped[M any]() Behavior[M] { return stoppedBehavior[M]{} }

// StoppedWith returns the terminal behavior whose PostStop signal is delivered to
// postStop instead of the current behavior. A deferred postStop is rejected with
// ErrDeferredPostStop since its factory would never run.
func StoppedWith[M any](postStop Behavior[M]) (Behavior[M], error) {
	if postStop == nil {
		return Stopped[M](), nil
	}
	switch postStop.Kind() {
	case DeferredKind:
		return nil, gerrors.ErrDeferredPostStop
	case SameKind, UnhandledKind, StoppedKind:
		return Stopped[M](), nil
	}
	return stoppedBehavior[M]{postStop: postStop}, nil
}

// Setup defers the construction of a behavior until it becomes current. The
// factory runs once per activation, which makes it the place to allocate
// per-instance state.
func Setup[M any](factory SetupFunc[M]) Behavior[M] {
	return &deferredBehavior[M]{factory: factory}
}

// Extend wraps user logic into a behavior
func Extend[M any](impl Extensible[M]) Behavior[M] {
	return &extensibleBehavior[M]{impl: impl}
}

type funcBehavior[M any] struct {
	onMessage ReceiveFunc[M]
	onSignal  SignalFunc[M]
}

func (f funcBehavior[M]) Receive(ctx Context, msg M) (Behavior[M], error) {
	if f.onMessage == nil {
		return Unhandled[M](), nil
	}
	return f.onMessage(ctx, msg)
}

func (f funcBehavior[M]) ReceiveSignal(ctx Context, sig Signal) (Behavior[M], error) {
	if f.onSignal == nil {
		return Unhandled[M](), nil
	}
	return f.onSignal(ctx, sig)
}

// Receive builds a behavior from a message handler. Signals are unhandled.
func Receive[M any](onMessage ReceiveFunc[M]) Behavior[M] {
	return Extend[M](funcBehavior[M]{onMessage: onMessage})
}

// ReceiveWithSignal builds a behavior from a message handler and a signal handler
func ReceiveWithSignal[M any](onMessage ReceiveFunc[M], onSignal SignalFunc[M]) Behavior[M] {
	return Extend[M](funcBehavior[M]{onMessage: onMessage, onSignal: onSignal})
}

// ReceiveMessage builds a behavior from a handler that does not need the context
func ReceiveMessage[M any](onMessage func(msg M) (Behavior[M], error)) Behavior[M] {
	return Receive(func(_ Context, msg M) (Behavior[M], error) {
		return onMessage(msg)
	})
}

// ReceiveSignal builds a behavior that only reacts to signals. Messages are
// consumed without any change.
func ReceiveSignal[M any](onSignal SignalFunc[M]) Behavior[M] {
	return ReceiveWithSignal(func(Context, M) (Behavior[M], error) {
		return Same[M](), nil
	}, onSignal)
}

// AbstractBehavior is the object style of writing user logic. Implementations
// that also implement SignalReceiver get signals, otherwise signals are unhandled.
type AbstractBehavior[M any] interface {
	OnMessage(ctx Context, msg M) (Behavior[M], error)
}

// SignalReceiver is the optional signal side of an AbstractBehavior
type SignalReceiver[M any] interface {
	OnSignal(ctx Context, sig Signal) (Behavior[M], error)
}

// FromAbstract turns an AbstractBehavior into a behavior
func FromAbstract[M any](impl AbstractBehavior[M]) Behavior[M] {
	fb := funcBehavior[M]{onMessage: impl.OnMessage}
	if receiver, ok := impl.(SignalReceiver[M]); ok {
		fb.onSignal = receiver.OnSignal
	}
	return Extend[M](fb)
}

// IsAlive reports whether the behavior is not Stopped
func IsAlive[M any](b Behavior[M]) bool {
	return b != nil && b.Kind() != StoppedKind
}

// IsUnhandled reports whether the behavior is the Unhandled marker
func IsUnhandled[M any](b Behavior[M]) bool {
	return b != nil && b.Kind() == UnhandledKind
}

// IsDeferred reports whether the behavior still needs to be canonicalized
func IsDeferred[M any](b Behavior[M]) bool {
	return b != nil && b.Kind() == DeferredKind
}

// PostStopBehavior returns the behavior that receives PostStop when b is a
// Stopped behavior carrying one.
func PostStopBehavior[M any](b Behavior[M]) (Behavior[M], bool) {
	stopped, ok := b.(stoppedBehavior[M])
	if !ok || stopped.postStop == nil {
		return nil, false
	}
	return stopped.postStop, true
}

// Resolve returns the behavior to store after an interpretation: Same and
// Unhandled keep current, anything else replaces it.
func Resolve[M any](next, current Behavior[M]) Behavior[M] {
	if next == nil {
		return current
	}
	switch next.Kind() {
	case SameKind, UnhandledKind:
		return current
	default:
		return next
	}
}
