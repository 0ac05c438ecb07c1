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

package timers

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/tochemey/goakt-typed/behavior"
	gerrors "github.com/tochemey/goakt-typed/errors"
	"github.com/tochemey/goakt-typed/log"
	"github.com/tochemey/goakt-typed/telemetry"
)

// TimerScheduler starts and cancels the timers of one actor instance. The
// timers deliver their message to the actor itself and never outlive the
// instance that started them. It must only be used from the actor's own
// handlers.
type TimerScheduler[M any] interface {
	// StartSingleTimer delivers msg once after delay. A timer already
	// running under key is cancelled first.
	StartSingleTimer(key any, msg M, delay time.Duration) error
	// StartPeriodicTimer delivers msg every interval until cancelled. A timer
	// already running under key is cancelled first.
	StartPeriodicTimer(key any, msg M, interval time.Duration) error
	// IsTimerActive reports whether a timer is running under key
	IsTimerActive(key any) bool
	// Cancel stops the timer running under key. A delivery already enqueued is
	// discarded.
	Cancel(key any)
	// CancelAll stops every timer
	CancelAll()
}

// WithTimers gives factory a TimerScheduler bound to the actor instance.
// Every activation, including a restart, gets a new TimerScheduler so
// deliveries from a previous instance are discarded. Nested WithTimers keep a
// single guard under the innermost fence which discards the deliveries no
// fence of the stack owns.
func WithTimers[M any](factory func(timers TimerScheduler[M]) behavior.Behavior[M], opts ...Option) behavior.Behavior[M] {
	config := &fenceConfig{}
	for _, opt := range opts {
		opt.Apply(config)
	}

	return behavior.Setup(func(ctx behavior.Context) (behavior.Behavior[M], error) {
		tel := config.telemetry
		if tel == nil {
			tel = telemetry.Default()
		}

		fence := newFence[M](ctx, tel.Metrics)
		guarded := behavior.Intercept(factory(fence), behavior.Interceptor[M, M](&guard[M]{metrics: tel.Metrics}))
		return behavior.Intercept(guarded, behavior.Interceptor[M, M](fence)), nil
	})
}

// envelope is what a timer delivers to the actor. It goes through the signal
// path so it can carry the fencing data whatever the message type.
type envelope struct {
	key        any
	generation uint64
	owner      any
}

func (envelope) SignalName() string { return "TimerFired" }

type timer[M any] struct {
	key        any
	generation uint64
	repeat     bool
	msg        M
	handle     behavior.Cancellable
}

// fence keeps the timers of one actor instance. Every timer start gets a new
// generation and a delivery is only accepted when it carries the generation
// currently registered under its key.
type fence[M any] struct {
	behavior.PassThrough[M]

	id         uuid.UUID
	self       behavior.ActorRef
	scheduler  behavior.Scheduler
	logger     log.Logger
	metrics    *telemetry.Metrics
	timers     map[any]*timer[M]
	generation uint64
}

var (
	_ TimerScheduler[any]            = (*fence[any])(nil)
	_ behavior.Interceptor[any, any] = (*fence[any])(nil)
	_ behavior.Interceptor[any, any] = (*guard[any])(nil)
	_ behavior.Signal                = envelope{}
)

var errNoScheduler = errors.New("no scheduler available")

// verdict is the outcome of checking a timer delivery
type verdict int

const (
	// foreign deliveries were sent by another fence
	foreign verdict = iota
	stale
	valid
)

func newFence[M any](ctx behavior.Context, metrics *telemetry.Metrics) *fence[M] {
	id := uuid.New()
	return &fence[M]{
		id:        id,
		self:      ctx.Self(),
		scheduler: ctx.Scheduler(),
		logger:    ctx.Log().With("timers", id.String()),
		metrics:   metrics,
		timers:    make(map[any]*timer[M]),
	}
}

// StartSingleTimer implements TimerScheduler
func (f *fence[M]) StartSingleTimer(key any, msg M, delay time.Duration) error {
	return f.start(key, msg, delay, false)
}

// StartPeriodicTimer implements TimerScheduler
func (f *fence[M]) StartPeriodicTimer(key any, msg M, interval time.Duration) error {
	return f.start(key, msg, interval, true)
}

// IsTimerActive implements TimerScheduler
func (f *fence[M]) IsTimerActive(key any) bool {
	if validateKey(key) != nil {
		return false
	}
	_, ok := f.timers[key]
	return ok
}

// Cancel implements TimerScheduler
func (f *fence[M]) Cancel(key any) {
	if validateKey(key) != nil {
		return
	}
	if entry, ok := f.timers[key]; ok {
		f.cancel(entry)
	}
}

// CancelAll implements TimerScheduler
func (f *fence[M]) CancelAll() {
	if len(f.timers) == 0 {
		return
	}

	f.logger.Debug("cancel all timers")
	for _, entry := range f.timers {
		entry.handle.Cancel()
	}
	clear(f.timers)
}

func (f *fence[M]) start(key any, msg M, delay time.Duration, repeat bool) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if f.scheduler == nil {
		return errNoScheduler
	}

	f.Cancel(key)
	f.generation++
	generation := f.generation

	self := f.self
	fired := envelope{key: key, generation: generation, owner: f}
	task := func() {
		_ = self.Tell(fired)
	}

	var (
		handle behavior.Cancellable
		err    error
	)
	if repeat {
		handle, err = f.scheduler.ScheduleRepeatedly(delay, task)
	} else {
		handle, err = f.scheduler.ScheduleOnce(delay, task)
	}
	if err != nil {
		return err
	}

	f.logger.Debugf("start timer %v with generation %d", key, generation)
	f.timers[key] = &timer[M]{
		key:        key,
		generation: generation,
		repeat:     repeat,
		msg:        msg,
		handle:     handle,
	}
	return nil
}

func (f *fence[M]) cancel(entry *timer[M]) {
	f.logger.Debugf("cancel timer %v with generation %d", entry.key, entry.generation)
	entry.handle.Cancel()
	delete(f.timers, entry.key)
}

// Identity implements behavior.Interceptor. Every fence is distinct.
func (f *fence[M]) Identity() any {
	return f
}

// AroundReceive implements behavior.Interceptor
func (f *fence[M]) AroundReceive(ctx behavior.Context, msg M, target behavior.ReceiveTarget[M]) (behavior.Behavior[M], error) {
	return target.Apply(ctx, msg)
}

// AroundSignal implements behavior.Interceptor
func (f *fence[M]) AroundSignal(ctx behavior.Context, sig behavior.Signal, target behavior.SignalTarget[M]) (behavior.Behavior[M], error) {
	switch signal := sig.(type) {
	case envelope:
		switch msg, outcome := f.accept(ctx, signal); outcome {
		case valid:
			return target.Deliver(ctx, msg)
		case stale:
			return behavior.Same[M](), nil
		}
	case behavior.PreRestart, behavior.PostStop:
		f.CancelAll()
	}
	return target.Apply(ctx, sig)
}

// accept checks a delivery against the registered timers and returns the
// message to deliver when it is valid. A delivery sent by another fence is
// foreign: a nested fence owns it or the guard discards it.
func (f *fence[M]) accept(ctx behavior.Context, fired envelope) (msg M, outcome verdict) {
	if fired.owner != f {
		return msg, foreign
	}

	entry, registered := f.timers[fired.key]
	switch {
	case !registered:
		f.discard(ctx, fired, "after cancellation")
		return msg, stale
	case entry.generation != fired.generation:
		f.discard(ctx, fired, fmt.Sprintf("from generation %d, expected %d", fired.generation, entry.generation))
		return msg, stale
	}

	if !entry.repeat {
		delete(f.timers, fired.key)
	}
	return entry.msg, valid
}

func (f *fence[M]) discard(ctx behavior.Context, fired envelope, reason string) {
	f.logger.Debugf("discarding timer %v %s", fired.key, reason)
	f.metrics.RecordStaleTimer(ctx.Context(), behavior.SelfPath(ctx), fired.key)
}

// guardIdentity is shared by every guard so nested guards collapse into the
// innermost one
type guardIdentity struct{}

// guard sits under the fences and keeps timer deliveries away from the user
// behavior. What reaches it was sent by a fence that is no longer in the
// stack, for instance the one of a previous actor instance.
type guard[M any] struct {
	behavior.PassThrough[M]
	metrics *telemetry.Metrics
}

// Identity implements behavior.Interceptor
func (g *guard[M]) Identity() any {
	return guardIdentity{}
}

// AroundReceive implements behavior.Interceptor
func (g *guard[M]) AroundReceive(ctx behavior.Context, msg M, target behavior.ReceiveTarget[M]) (behavior.Behavior[M], error) {
	return target.Apply(ctx, msg)
}

// AroundSignal implements behavior.Interceptor
func (g *guard[M]) AroundSignal(ctx behavior.Context, sig behavior.Signal, target behavior.SignalTarget[M]) (behavior.Behavior[M], error) {
	fired, ok := sig.(envelope)
	if !ok {
		return target.Apply(ctx, sig)
	}

	ctx.Log().Debugf("discarding timer %v from an inactive timer scheduler", fired.key)
	g.metrics.RecordStaleTimer(ctx.Context(), behavior.SelfPath(ctx), fired.key)
	return behavior.Same[M](), nil
}

// validateKey accepts the keys that can be used as map keys. A comparable
// type may still hold an unhashable dynamic value in an interface field.
func validateKey(key any) error {
	if key == nil {
		return fmt.Errorf("%w: key is nil", gerrors.ErrInvalidTimerKey)
	}
	if !reflect.ValueOf(key).Comparable() {
		return fmt.Errorf("%w: %T is not comparable", gerrors.ErrInvalidTimerKey, key)
	}
	return nil
}
