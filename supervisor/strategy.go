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

package supervisor

import (
	"fmt"
	"math"
	"time"

	gerrors "github.com/tochemey/goakt-typed/errors"
	"github.com/tochemey/goakt-typed/internal/validation"
)

// Directive defines the supervisor directive
//
// It represents the action a supervisor takes when the behavior it wraps fails
// with a matching error:
//
//   - StopDirective: stops the actor.
//   - ResumeDirective: drops the failing input and keeps the current state.
//   - RestartDirective: restarts the behavior from its initial definition.
//   - BackoffDirective: restarts the behavior after an exponentially growing delay.
type Directive int

const (
	// StopDirective indicates that the failing actor is stopped
	StopDirective Directive = iota
	// ResumeDirective indicates that the failing input is dropped and the
	// actor keeps its current behavior
	ResumeDirective
	// RestartDirective indicates that the actor is restarted immediately with
	// fresh state, within a rolling restart limit
	RestartDirective
	// BackoffDirective indicates that the actor is restarted after a delay
	// during which every input is dropped
	BackoffDirective
)

// String returns the string representation of the directive
func (d Directive) String() string {
	switch d {
	case StopDirective:
		return "Stop"
	case ResumeDirective:
		return "Resume"
	case RestartDirective:
		return "Restart"
	case BackoffDirective:
		return "Backoff"
	default:
		return ""
	}
}

// maxBackoffExponent bounds the exponent of the backoff computation
const maxBackoffExponent = 30

// Strategy is a supervision strategy value. Strategies are comparable: two
// supervisors built with equal strategies and matchers deduplicate each other.
type Strategy struct {
	directive         Directive
	loggingEnabled    bool
	stopChildren      bool
	maxRetries        int
	within            time.Duration
	minBackoff        time.Duration
	maxBackoff        time.Duration
	randomFactor      float64
	resetBackoffAfter time.Duration
	maxRestarts       int
}

// Option configures a Strategy
type Option func(strategy *Strategy)

// WithLoggingEnabled turns the logging of caught failures on or off.
// Logging is on by default.
func WithLoggingEnabled(enabled bool) Option {
	return func(strategy *Strategy) {
		strategy.loggingEnabled = enabled
	}
}

// WithStopChildren sets whether the children are stopped before a restart.
// They are by default.
func WithStopChildren(enabled bool) Option {
	return func(strategy *Strategy) {
		strategy.stopChildren = enabled
	}
}

// WithResetBackoffAfter sets the period without failure after which the
// backoff restart count goes back to zero. It defaults to minBackoff.
func WithResetBackoffAfter(timeout time.Duration) Option {
	return func(strategy *Strategy) {
		strategy.resetBackoffAfter = timeout
	}
}

// WithMaxRestarts bounds the number of backoff restarts. -1, the default,
// means unlimited.
func WithMaxRestarts(maxRestarts int) Option {
	return func(strategy *Strategy) {
		strategy.maxRestarts = maxRestarts
	}
}

func newStrategy(directive Directive, opts ...Option) Strategy {
	strategy := Strategy{
		directive:      directive,
		loggingEnabled: true,
		stopChildren:   true,
		maxRetries:     -1,
		maxRestarts:    -1,
	}
	for _, opt := range opts {
		opt(&strategy)
	}
	return strategy
}

// Resume returns the strategy dropping the failing input
func Resume(opts ...Option) Strategy {
	return newStrategy(ResumeDirective, opts...)
}

// Stop returns the strategy stopping the failing actor
func Stop(opts ...Option) Strategy {
	return newStrategy(StopDirective, opts...)
}

// Restart returns the strategy restarting the failing actor without limit
func Restart(opts ...Option) Strategy {
	return newStrategy(RestartDirective, opts...)
}

// RestartWithLimit returns the strategy restarting the failing actor at most
// maxRetries times within a rolling window. The window starts at the first
// failure and the count starts over once a failure happens after the window.
// A maxRetries of -1 means unlimited.
func RestartWithLimit(maxRetries int, within time.Duration, opts ...Option) Strategy {
	strategy := newStrategy(RestartDirective, opts...)
	strategy.maxRetries = maxRetries
	strategy.within = within
	return strategy
}

// RestartWithBackoff returns the strategy restarting the failing actor after
// min(maxBackoff, minBackoff*2^n)*(1+random*randomFactor) where n is the
// number of restarts since the last reset and random is drawn from [0,1).
// Inputs arriving while the restart is pending are dropped.
func RestartWithBackoff(minBackoff, maxBackoff time.Duration, randomFactor float64, opts ...Option) Strategy {
	strategy := Strategy{
		directive:         BackoffDirective,
		loggingEnabled:    true,
		stopChildren:      true,
		maxRetries:        -1,
		minBackoff:        minBackoff,
		maxBackoff:        maxBackoff,
		randomFactor:      randomFactor,
		resetBackoffAfter: minBackoff,
		maxRestarts:       -1,
	}
	for _, opt := range opts {
		opt(&strategy)
	}
	return strategy
}

// Directive returns the directive of the strategy
func (s Strategy) Directive() Directive { return s.directive }

// LoggingEnabled reports whether caught failures are logged
func (s Strategy) LoggingEnabled() bool { return s.loggingEnabled }

// StopChildren reports whether children are stopped before a restart
func (s Strategy) StopChildren() bool { return s.stopChildren }

// MaxRetries returns the restart limit, -1 when unlimited
func (s Strategy) MaxRetries() int { return s.maxRetries }

// Within returns the restart window
func (s Strategy) Within() time.Duration { return s.within }

// MinBackoff returns the first backoff delay
func (s Strategy) MinBackoff() time.Duration { return s.minBackoff }

// MaxBackoff returns the backoff delay cap
func (s Strategy) MaxBackoff() time.Duration { return s.maxBackoff }

// RandomFactor returns the backoff jitter factor
func (s Strategy) RandomFactor() float64 { return s.randomFactor }

// ResetBackoffAfter returns the period without failure resetting the backoff
func (s Strategy) ResetBackoffAfter() time.Duration { return s.resetBackoffAfter }

// MaxRestarts returns the backoff restart limit, -1 when unlimited
func (s Strategy) MaxRestarts() int { return s.maxRestarts }

// HasUnlimitedRestarts reports whether a restart strategy never gives up
func (s Strategy) HasUnlimitedRestarts() bool { return s.maxRetries == -1 }

// String returns the name of the strategy
func (s Strategy) String() string {
	switch s.directive {
	case RestartDirective:
		if s.HasUnlimitedRestarts() {
			return "Restart"
		}
		return fmt.Sprintf("Restart(maxRetries=%d, within=%s)", s.maxRetries, s.within)
	case BackoffDirective:
		return fmt.Sprintf("Backoff(min=%s, max=%s, randomFactor=%g)", s.minBackoff, s.maxBackoff, s.randomFactor)
	default:
		return s.directive.String()
	}
}

// Validate checks the strategy settings
func (s Strategy) Validate() error {
	chain := validation.New(validation.AllErrors())
	switch s.directive {
	case StopDirective, ResumeDirective:
	case RestartDirective:
		chain.
			AddValidator(validation.NewMinValidator("maxRetries", s.maxRetries, -1)).
			AddValidator(validation.NewMinValidator("within", s.within, 0))
	case BackoffDirective:
		chain.
			AddValidator(validation.NewPositiveDurationValidator("minBackoff", s.minBackoff)).
			AddAssertion(s.maxBackoff >= s.minBackoff, "maxBackoff must not be lower than minBackoff").
			AddValidator(validation.NewMinValidator("randomFactor", s.randomFactor, 0.0)).
			AddAssertion(s.randomFactor <= 1.0, "randomFactor must not exceed 1.0").
			AddValidator(validation.NewPositiveDurationValidator("resetBackoffAfter", s.resetBackoffAfter)).
			AddValidator(validation.NewMinValidator("maxRestarts", s.maxRestarts, -1))
	default:
		chain.AddAssertion(false, fmt.Sprintf("unknown directive %d", s.directive))
	}

	if err := chain.Validate(); err != nil {
		return gerrors.NewErrInvalidStrategy(err)
	}
	return nil
}

// backoffDelay returns the delay before the next restart given the number of
// restarts already done and a random value in [0,1)
func (s Strategy) backoffDelay(restartCount int, random float64) time.Duration {
	delay := float64(s.maxBackoff)
	if restartCount <= maxBackoffExponent {
		delay = math.Min(delay, float64(s.minBackoff)*math.Pow(2, float64(restartCount)))
	}
	return time.Duration(delay * (1 + random*s.randomFactor))
}
