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
	"fmt"

	gerrors "github.com/tochemey/goakt-typed/errors"
)

// maxDeferredDepth caps the number of factories evaluated by a single
// canonicalization
const maxDeferredDepth = 100

// DeathPactError is raised when an actor does not handle the Terminated signal
// of an actor it watches
type DeathPactError struct {
	Ref ActorRef
}

var _ error = (*DeathPactError)(nil)

// Error implements the standard error interface
func (e *DeathPactError) Error() string {
	if e.Ref == nil {
		return "death pact triggered"
	}
	return fmt.Sprintf("death pact with %s was triggered", e.Ref.Path())
}

// Canonicalize expands deferred behaviors until b is not deferred anymore.
// Factories keep returning deferred behaviors at most maxDeferredDepth times
// before the call fails with an internal error.
func Canonicalize[M any](b Behavior[M], ctx Context) (Behavior[M], error) {
	for depth := 0; ; depth++ {
		if b == nil {
			return nil, gerrors.ErrNilBehavior
		}

		deferred, ok := b.(*deferredBehavior[M])
		if !ok {
			return b, nil
		}

		if depth == maxDeferredDepth {
			return nil, gerrors.NewInternalError(gerrors.ErrUnboundedDeferral)
		}

		next, err := deferred.factory(ctx)
		if err != nil {
			return nil, err
		}
		b = next
	}
}

// Start activates the initial behavior of an actor. Failures are reported as
// errors.InitError since no supervision applies to them.
func Start[M any](b Behavior[M], ctx Context) (Behavior[M], error) {
	started, err := Canonicalize(b, ctx)
	if err != nil {
		return nil, gerrors.NewInitError(err)
	}

	switch started.Kind() {
	case SameKind, UnhandledKind:
		return nil, gerrors.NewInitError(gerrors.ErrInvalidInitialBehavior)
	default:
		return started, nil
	}
}

// InterpretMessage reduces the current behavior and a message into the next
// canonical behavior. The result may be Same or Unhandled, which the caller
// replaces with the current behavior before storing it.
func InterpretMessage[M any](b Behavior[M], ctx Context, msg M) (Behavior[M], error) {
	return interpret(b, ctx, func(impl Extensible[M]) (Behavior[M], error) {
		return impl.Receive(ctx, msg)
	})
}

// InterpretSignal reduces the current behavior and a signal into the next
// canonical behavior. A Terminated signal resulting in Unhandled fails with a
// DeathPactError.
func InterpretSignal[M any](b Behavior[M], ctx Context, sig Signal) (Behavior[M], error) {
	next, err := interpretSignal(b, ctx, sig)
	if err != nil {
		return nil, err
	}

	if terminated, ok := sig.(Terminated); ok && IsUnhandled(next) {
		return nil, &DeathPactError{Ref: terminated.Ref}
	}
	return next, nil
}

// InterpretInput is the entry point for engines holding untyped inputs.
// Signals take the signal path, values of type M the message path.
func InterpretInput[M any](b Behavior[M], ctx Context, input any) (Behavior[M], error) {
	switch in := input.(type) {
	case Signal:
		return InterpretSignal(b, ctx, in)
	case M:
		return InterpretMessage(b, ctx, in)
	default:
		return nil, gerrors.NewErrInvalidMessage(fmt.Errorf("%T is not part of the protocol", input))
	}
}

// interpretSignal is InterpretSignal without the death pact check, for
// composites deciding on unhandled signals themselves
func interpretSignal[M any](b Behavior[M], ctx Context, sig Signal) (Behavior[M], error) {
	return interpret(b, ctx, func(impl Extensible[M]) (Behavior[M], error) {
		return impl.ReceiveSignal(ctx, sig)
	})
}

func interpret[M any](b Behavior[M], ctx Context, apply func(Extensible[M]) (Behavior[M], error)) (Behavior[M], error) {
	switch current := b.(type) {
	case *extensibleBehavior[M]:
		next, err := apply(current.impl)
		if err != nil {
			return nil, err
		}
		return Canonicalize(next, ctx)
	case stoppedBehavior[M]:
		return current, nil
	case ignoreBehavior[M]:
		return Same[M](), nil
	case emptyBehavior[M]:
		return Unhandled[M](), nil
	case nil:
		return nil, gerrors.NewInternalError(gerrors.ErrNilBehavior)
	default:
		return nil, gerrors.NewInternalError(fmt.Errorf("%w: cannot interpret %s", gerrors.ErrIllegalBehavior, b.Kind()))
	}
}
