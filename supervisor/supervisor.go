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
	"errors"
	"math/rand/v2"
	"time"

	"github.com/tochemey/goakt-typed/behavior"
	gerrors "github.com/tochemey/goakt-typed/errors"
	"github.com/tochemey/goakt-typed/log"
	"github.com/tochemey/goakt-typed/telemetry"
)

// Builder wraps a behavior with a supervisor
type Builder[M any] struct {
	behavior  behavior.Behavior[M]
	telemetry *telemetry.Telemetry
}

// Supervise starts building a supervisor around b
//
//	supervised := supervisor.Supervise(worker).
//		OnFailure(supervisor.RestartWithLimit(3, time.Minute), supervisor.ErrorOfType(&net.OpError{}))
func Supervise[M any](b behavior.Behavior[M]) Builder[M] {
	return Builder[M]{behavior: b}
}

// WithTelemetry sets the telemetry receiving the supervision counters.
// telemetry.Default() is used otherwise.
func (x Builder[M]) WithTelemetry(t *telemetry.Telemetry) Builder[M] {
	x.telemetry = t
	return x
}

// OnFailure returns the supervised behavior. Failures matching one of the
// matchers, or every failure when none is given, are handled by strategy.
// An invalid strategy fails the activation of the returned behavior.
func (x Builder[M]) OnFailure(strategy Strategy, matchers ...Matcher) behavior.Behavior[M] {
	if err := strategy.Validate(); err != nil {
		return behavior.Setup(func(behavior.Context) (behavior.Behavior[M], error) {
			return nil, err
		})
	}

	tel := x.telemetry
	if tel == nil {
		tel = telemetry.Default()
	}

	matcher := anyOf(matchers...)
	initial := x.behavior
	return behavior.InterceptWith(initial, func() behavior.Interceptor[M, M] {
		core := supervision[M]{
			strategy: strategy,
			matcher:  matcher,
			initial:  initial,
			metrics:  tel.Metrics,
		}
		switch strategy.directive {
		case ResumeDirective:
			return &resumeSupervisor[M]{supervision: core}
		case RestartDirective:
			return &restartSupervisor[M]{supervision: core}
		case BackoffDirective:
			return &backoffSupervisor[M]{supervision: core, random: rand.Float64}
		default:
			return &stopSupervisor[M]{supervision: core}
		}
	})
}

// identity makes equal supervisors replace each other in a behavior stack
type identity struct {
	strategy Strategy
	matcher  string
}

// supervision holds what the four supervisors share
type supervision[M any] struct {
	strategy Strategy
	matcher  Matcher
	initial  behavior.Behavior[M]
	metrics  *telemetry.Metrics
}

func (s *supervision[M]) Identity() any {
	return identity{strategy: s.strategy, matcher: s.matcher.name}
}

// AroundStart treats a matching startup failure as fatal whatever the strategy
func (s *supervision[M]) AroundStart(ctx behavior.Context, target behavior.PreStartTarget[M]) (behavior.Behavior[M], error) {
	started, err := protect(func() (behavior.Behavior[M], error) {
		return target.Start(ctx)
	})
	if err == nil || !s.matcher.Matches(err) {
		return started, err
	}

	s.logFailure(ctx, err, "failed to start")
	s.metrics.RecordStop(ctx.Context(), behavior.SelfPath(ctx), s.strategy.String())
	return behavior.Stopped[M](), nil
}

func (s *supervision[M]) logFailure(ctx behavior.Context, err error, msg string) {
	if !s.strategy.loggingEnabled {
		return
	}
	s.logger(ctx).Errorf("%s: %v", msg, err)
}

func (s *supervision[M]) logger(ctx behavior.Context) log.Logger {
	return ctx.Log().With("actor", behavior.SelfPath(ctx), "strategy", s.strategy.String())
}

// restart stops the children when configured and builds a fresh instance of
// the initial behavior
func (s *supervision[M]) restart(ctx behavior.Context, target restartable) (behavior.Behavior[M], error) {
	if err := protectErr(func() error { return target.SignalRestart(ctx) }); err != nil {
		s.logger(ctx).Warnf("failure while signaling restart: %v", err)
	}

	if s.strategy.stopChildren {
		for _, child := range ctx.Children() {
			if err := ctx.Stop(child); err != nil {
				s.logger(ctx).Warnf("failed to stop child %s: %v", child.Path(), err)
			}
		}
	}

	return protect(func() (behavior.Behavior[M], error) {
		return behavior.Canonicalize(s.initial, ctx)
	})
}

// restartable is the part of the interceptor targets used to restart
type restartable interface {
	SignalRestart(ctx behavior.Context) error
}

type stopSupervisor[M any] struct {
	supervision[M]
}

func (s *stopSupervisor[M]) AroundReceive(ctx behavior.Context, msg M, target behavior.ReceiveTarget[M]) (behavior.Behavior[M], error) {
	return s.supervise(ctx, func() (behavior.Behavior[M], error) { return target.Apply(ctx, msg) })
}

func (s *stopSupervisor[M]) AroundSignal(ctx behavior.Context, sig behavior.Signal, target behavior.SignalTarget[M]) (behavior.Behavior[M], error) {
	return s.supervise(ctx, func() (behavior.Behavior[M], error) { return target.Apply(ctx, sig) })
}

func (s *stopSupervisor[M]) supervise(ctx behavior.Context, apply func() (behavior.Behavior[M], error)) (behavior.Behavior[M], error) {
	next, err := protect(apply)
	if err == nil || !s.matcher.Matches(err) {
		return next, err
	}

	s.logFailure(ctx, err, "stopping after failure")
	s.metrics.RecordStop(ctx.Context(), behavior.SelfPath(ctx), s.strategy.String())
	return behavior.Stopped[M](), nil
}

type resumeSupervisor[M any] struct {
	supervision[M]
}

func (s *resumeSupervisor[M]) AroundReceive(ctx behavior.Context, msg M, target behavior.ReceiveTarget[M]) (behavior.Behavior[M], error) {
	return s.supervise(ctx, func() (behavior.Behavior[M], error) { return target.Apply(ctx, msg) })
}

func (s *resumeSupervisor[M]) AroundSignal(ctx behavior.Context, sig behavior.Signal, target behavior.SignalTarget[M]) (behavior.Behavior[M], error) {
	return s.supervise(ctx, func() (behavior.Behavior[M], error) { return target.Apply(ctx, sig) })
}

func (s *resumeSupervisor[M]) supervise(ctx behavior.Context, apply func() (behavior.Behavior[M], error)) (behavior.Behavior[M], error) {
	next, err := protect(apply)
	if err == nil || !s.matcher.Matches(err) {
		return next, err
	}

	s.logFailure(ctx, err, "resuming after failure")
	return behavior.Same[M](), nil
}

type restartSupervisor[M any] struct {
	supervision[M]
	restarts int
	deadline time.Time
}

func (s *restartSupervisor[M]) AroundReceive(ctx behavior.Context, msg M, target behavior.ReceiveTarget[M]) (behavior.Behavior[M], error) {
	return s.supervise(ctx, target, func() (behavior.Behavior[M], error) { return target.Apply(ctx, msg) })
}

func (s *restartSupervisor[M]) AroundSignal(ctx behavior.Context, sig behavior.Signal, target behavior.SignalTarget[M]) (behavior.Behavior[M], error) {
	return s.supervise(ctx, target, func() (behavior.Behavior[M], error) { return target.Apply(ctx, sig) })
}

func (s *restartSupervisor[M]) supervise(ctx behavior.Context, target restartable, apply func() (behavior.Behavior[M], error)) (behavior.Behavior[M], error) {
	next, err := protect(apply)
	if err == nil || !s.matcher.Matches(err) {
		return next, err
	}

	now := clock(ctx)
	timeLeft := s.deadline.IsZero() || now.Before(s.deadline)
	if !s.strategy.HasUnlimitedRestarts() && s.restarts >= s.strategy.maxRetries && timeLeft {
		s.logFailure(ctx, err, "stopping after too many restarts")
		s.metrics.RecordStop(ctx.Context(), behavior.SelfPath(ctx), s.strategy.String())
		return behavior.Stopped[M](), nil
	}

	if s.deadline.IsZero() || !timeLeft {
		s.deadline = now.Add(s.strategy.within)
	}
	if timeLeft {
		s.restarts++
	} else {
		s.restarts = 1
	}

	s.logFailure(ctx, err, "restarting after failure")
	restarted, err := s.restart(ctx, target)
	if err != nil {
		if !s.matcher.Matches(err) {
			return nil, err
		}
		s.logFailure(ctx, err, "stopping after failed restart")
		s.metrics.RecordStop(ctx.Context(), behavior.SelfPath(ctx), s.strategy.String())
		return behavior.Stopped[M](), nil
	}

	s.metrics.RecordRestart(ctx.Context(), behavior.SelfPath(ctx), s.strategy.String())
	return restarted, nil
}

// scheduledRestart ends the blackhole period of the backoff supervisor owner
type scheduledRestart struct {
	owner any
}

// resetRestartCount clears the restart count of owner when no restart
// happened since it was scheduled
type resetRestartCount struct {
	owner   any
	current int
}

func (scheduledRestart) SignalName() string  { return "ScheduledRestart" }
func (resetRestartCount) SignalName() string { return "ResetRestartCount" }

type backoffSupervisor[M any] struct {
	supervision[M]
	random       func() float64
	blackhole    bool
	restartCount int
	pending      behavior.Cancellable
	reset        behavior.Cancellable
}

func (s *backoffSupervisor[M]) AroundReceive(ctx behavior.Context, msg M, target behavior.ReceiveTarget[M]) (behavior.Behavior[M], error) {
	if s.blackhole {
		return s.drop(ctx, msg)
	}

	next, err := protect(func() (behavior.Behavior[M], error) { return target.Apply(ctx, msg) })
	if err == nil || !s.matcher.Matches(err) {
		return next, err
	}
	return s.backoff(ctx, err, target)
}

func (s *backoffSupervisor[M]) AroundSignal(ctx behavior.Context, sig behavior.Signal, target behavior.SignalTarget[M]) (behavior.Behavior[M], error) {
	switch signal := sig.(type) {
	case scheduledRestart:
		if signal.owner == s {
			return s.scheduledRestart(ctx, target)
		}
	case resetRestartCount:
		if signal.owner == s {
			if signal.current == s.restartCount {
				s.restartCount = 0
			}
			return behavior.Same[M](), nil
		}
	case behavior.PostStop:
		s.cancelPending()
		if s.blackhole {
			return behavior.Same[M](), nil
		}
	}

	if s.blackhole {
		return s.drop(ctx, sig)
	}

	next, err := protect(func() (behavior.Behavior[M], error) { return target.Apply(ctx, sig) })
	if err == nil || !s.matcher.Matches(err) {
		return next, err
	}
	return s.backoff(ctx, err, target)
}

// backoff restarts the actor after a delay during which inputs are dropped
func (s *backoffSupervisor[M]) backoff(ctx behavior.Context, cause error, target restartable) (behavior.Behavior[M], error) {
	if s.strategy.maxRestarts != -1 && s.restartCount >= s.strategy.maxRestarts {
		s.logFailure(ctx, cause, "stopping after too many restarts")
		s.metrics.RecordStop(ctx.Context(), behavior.SelfPath(ctx), s.strategy.String())
		return behavior.Stopped[M](), nil
	}

	s.logFailure(ctx, cause, "restarting with backoff after failure")
	if err := protectErr(func() error { return target.SignalRestart(ctx) }); err != nil {
		s.logger(ctx).Warnf("failure while signaling restart: %v", err)
	}

	if s.strategy.stopChildren {
		for _, child := range ctx.Children() {
			if err := ctx.Stop(child); err != nil {
				s.logger(ctx).Warnf("failed to stop child %s: %v", child.Path(), err)
			}
		}
	}

	self := ctx.Self()
	delay := s.strategy.backoffDelay(s.restartCount, s.random())
	pending, err := schedule(ctx, delay, func() {
		_ = self.Tell(scheduledRestart{owner: s})
	})
	if err != nil {
		s.logFailure(ctx, err, "stopping since the restart cannot be scheduled")
		s.metrics.RecordStop(ctx.Context(), behavior.SelfPath(ctx), s.strategy.String())
		return behavior.Stopped[M](), nil
	}

	s.cancelPending()
	s.pending = pending
	s.blackhole = true
	s.restartCount++
	return behavior.Empty[M](), nil
}

func (s *backoffSupervisor[M]) scheduledRestart(ctx behavior.Context, target restartable) (behavior.Behavior[M], error) {
	s.blackhole = false
	s.pending = nil

	restarted, err := protect(func() (behavior.Behavior[M], error) {
		return behavior.Canonicalize(s.initial, ctx)
	})
	if err != nil {
		if s.matcher.Matches(err) {
			return s.backoff(ctx, err, target)
		}
		return nil, err
	}

	s.metrics.RecordRestart(ctx.Context(), behavior.SelfPath(ctx), s.strategy.String())

	self := ctx.Self()
	current := s.restartCount
	reset, err := schedule(ctx, s.strategy.resetBackoffAfter, func() {
		_ = self.Tell(resetRestartCount{owner: s, current: current})
	})
	if err != nil {
		s.logger(ctx).Warnf("failed to schedule the restart count reset: %v", err)
	}
	s.reset = reset
	return restarted, nil
}

func (s *backoffSupervisor[M]) drop(ctx behavior.Context, input any) (behavior.Behavior[M], error) {
	ctx.PublishDeadLetter(behavior.DeadLetter{
		Message:   input,
		Recipient: ctx.Self(),
		Reason:    "dropped while waiting for a backoff restart",
	})
	s.metrics.RecordDropped(ctx.Context(), behavior.SelfPath(ctx))
	return behavior.Same[M](), nil
}

func (s *backoffSupervisor[M]) cancelPending() {
	if s.pending != nil {
		s.pending.Cancel()
		s.pending = nil
	}
	if s.reset != nil {
		s.reset.Cancel()
		s.reset = nil
	}
}

var (
	_ behavior.Interceptor[any, any] = (*stopSupervisor[any])(nil)
	_ behavior.Interceptor[any, any] = (*resumeSupervisor[any])(nil)
	_ behavior.Interceptor[any, any] = (*restartSupervisor[any])(nil)
	_ behavior.Interceptor[any, any] = (*backoffSupervisor[any])(nil)
)

var errNoScheduler = errors.New("no scheduler available")

func schedule(ctx behavior.Context, delay time.Duration, task func()) (behavior.Cancellable, error) {
	scheduler := ctx.Scheduler()
	if scheduler == nil {
		return nil, errNoScheduler
	}
	return scheduler.ScheduleOnce(delay, task)
}

func clock(ctx behavior.Context) time.Time {
	if scheduler := ctx.Scheduler(); scheduler != nil {
		return scheduler.Now()
	}
	return time.Now()
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

func protectErr(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gerrors.FromPanic(r)
		}
	}()
	return fn()
}
