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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrDeferredPostStop is returned when a Stopped behavior is given a deferred post-stop
	// behavior. The actor is already terminating so the factory would never run.
	ErrDeferredPostStop = errors.New("post-stop behavior must not be deferred")

	// ErrUnboundedDeferral is returned when deferred factories keep returning deferred
	// behaviors past the unwinding limit.
	ErrUnboundedDeferral = errors.New("deferred behavior did not settle")

	// ErrIllegalBehavior is returned when Same, Unhandled or a deferred behavior is
	// interpreted as if it were the current behavior of an actor.
	ErrIllegalBehavior = errors.New("illegal behavior")

	// ErrNilBehavior is returned when a factory or handler produces a nil behavior.
	ErrNilBehavior = errors.New("behavior is nil")

	// ErrInvalidInitialBehavior is returned when an actor is started with Same or Unhandled.
	ErrInvalidInitialBehavior = errors.New("initial behavior must not be Same or Unhandled")

	// ErrInvalidMessage indicates that an input does not belong to the behavior protocol.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrIncompatibleTypes is returned when narrowing between message types that are not assignable.
	ErrIncompatibleTypes = errors.New("incompatible message types")

	// ErrSchedulerNotStarted is returned when attempting to use the scheduler before it has started.
	ErrSchedulerNotStarted = errors.New("scheduler has not started")

	// ErrInvalidStrategy is returned when a supervisor strategy is misconfigured.
	ErrInvalidStrategy = errors.New("invalid supervisor strategy")

	// ErrInvalidTimerKey is returned when a timer is registered with a nil or non-comparable key.
	ErrInvalidTimerKey = errors.New("invalid timer key")

	// ErrDead indicates that the actor is no longer alive or has been terminated.
	ErrDead = errors.New("actor is not alive")
)

// NewErrInvalidStrategy wraps the validation failures of a strategy
func NewErrInvalidStrategy(err error) error {
	return errors.Join(ErrInvalidStrategy, err)
}

// NewErrInvalidMessage wraps a base error with ErrInvalidMessage for additional context.
func NewErrInvalidMessage(err error) error {
	return errors.Join(ErrInvalidMessage, err)
}

// NewErrIncompatibleTypes reports that from cannot be narrowed to to
func NewErrIncompatibleTypes(from, to string) error {
	return fmt.Errorf("%w: %s is not assignable to %s", ErrIncompatibleTypes, from, to)
}

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// FromPanic converts a value returned by recover into a PanicError
func FromPanic(recovered any) *PanicError {
	switch r := recovered.(type) {
	case *PanicError:
		return r
	case error:
		return NewPanicError(r)
	default:
		return NewPanicError(fmt.Errorf("%v", r))
	}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// InternalError defines an invariant violation inside the interpreter
type InternalError struct {
	err error
}

// enforce compilation error
var _ error = (*InternalError)(nil)

// NewInternalError returns an instance of InternalError
func NewInternalError(err error) *InternalError {
	return &InternalError{
		err: fmt.Errorf("internal error: %w", err),
	}
}

// Error implements the standard error interface
func (i *InternalError) Error() string {
	return i.err.Error()
}

func (i *InternalError) Unwrap() error {
	return i.err
}

// InitError defines a failure while activating a behavior for the first time.
// Startup failures are never recovered by supervision.
type InitError struct {
	err error
}

var _ error = (*InitError)(nil)

// NewInitError returns an instance of InitError
func NewInitError(err error) *InitError {
	if initErr, ok := err.(*InitError); ok {
		return initErr
	}
	return &InitError{
		err: fmt.Errorf("init error: %w", err),
	}
}

// Error implements the standard error interface
func (e *InitError) Error() string {
	return e.err.Error()
}

func (e *InitError) Unwrap() error {
	return e.err
}

// AnyError defines the any error type
// this is used to represent any error when handling the supervisor directive
type AnyError struct{}

// interface guard
var _ error = (*AnyError)(nil)

// Error implements error.
func (*AnyError) Error() string {
	return "*"
}
