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

// Package scheduler provides the production Scheduler handed to behaviors. It
// runs timer deliveries and backoff restarts on top of go-quartz.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	"github.com/tochemey/goakt-typed/behavior"
	gerrors "github.com/tochemey/goakt-typed/errors"
	"github.com/tochemey/goakt-typed/internal/validation"
	"github.com/tochemey/goakt-typed/log"
)

// DefaultStopTimeout bounds the wait for running jobs on Stop
const DefaultStopTimeout = 5 * time.Second

// Option configures the Scheduler
type Option func(scheduler *Scheduler)

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return func(scheduler *Scheduler) {
		scheduler.logger = logger
	}
}

// WithStopTimeout sets how long Stop waits for running jobs
func WithStopTimeout(timeout time.Duration) Option {
	return func(scheduler *Scheduler) {
		scheduler.stopTimeout = timeout
	}
}

// Scheduler runs delayed and periodic tasks. Tasks run on the quartz worker
// goroutines, hence they should only enqueue inputs through ActorRef.Tell.
type Scheduler struct {
	// helps lock concurrent access
	mu sync.Mutex
	// underlying scheduler
	quartzScheduler quartz.Scheduler
	// states whether the quartzScheduler has started or not
	started *atomic.Bool
	logger  log.Logger
	// define the shutdown timeout
	stopTimeout time.Duration
}

// enforce compilation error
var _ behavior.Scheduler = (*Scheduler)(nil)

// New creates a Scheduler. It must be started before use.
func New(opts ...Option) (*Scheduler, error) {
	// create an instance of quartz scheduler with logger off
	quartzScheduler, err := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	if err != nil {
		return nil, fmt.Errorf("failed to create quartz scheduler: %w", err)
	}

	scheduler := &Scheduler{
		quartzScheduler: quartzScheduler,
		started:         atomic.NewBool(false),
		logger:          log.DefaultLogger,
		stopTimeout:     DefaultStopTimeout,
	}

	for _, opt := range opts {
		opt(scheduler)
	}

	if err := validation.New(validation.FailFast()).
		AddAssertion(scheduler.logger != nil, "logger is required").
		AddValidator(validation.NewPositiveDurationValidator("stopTimeout", scheduler.stopTimeout)).
		Validate(); err != nil {
		return nil, err
	}

	return scheduler, nil
}

// Start starts the scheduler
func (x *Scheduler) Start(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.started.Load() {
		return
	}
	x.logger.Info("starting scheduler...")
	x.quartzScheduler.Start(ctx)
	x.started.Store(x.quartzScheduler.IsStarted())
	x.logger.Info("scheduler started.:)")
}

// Stop removes the pending jobs and stops the scheduler
func (x *Scheduler) Stop(ctx context.Context) {
	if !x.started.Load() {
		return
	}

	x.logger.Info("stopping scheduler...")
	x.mu.Lock()
	defer x.mu.Unlock()
	_ = x.quartzScheduler.Clear()
	x.quartzScheduler.Stop()
	x.started.Store(x.quartzScheduler.IsStarted())

	ctx, cancel := context.WithTimeout(ctx, x.stopTimeout)
	defer cancel()
	x.quartzScheduler.Wait(ctx)
	x.logger.Info("scheduler stopped...:)")
}

// ScheduleOnce runs task once after delay
func (x *Scheduler) ScheduleOnce(delay time.Duration, task func()) (behavior.Cancellable, error) {
	if delay < 0 {
		delay = 0
	}
	return x.schedule(task, func() quartz.Trigger { return quartz.NewRunOnceTrigger(delay) })
}

// ScheduleRepeatedly runs task every interval until cancelled
func (x *Scheduler) ScheduleRepeatedly(interval time.Duration, task func()) (behavior.Cancellable, error) {
	if err := validation.NewPositiveDurationValidator("interval", interval).Validate(); err != nil {
		return nil, err
	}
	return x.schedule(task, func() quartz.Trigger { return quartz.NewSimpleTrigger(interval) })
}

// Now returns the wall clock
func (x *Scheduler) Now() time.Time {
	return time.Now()
}

func (x *Scheduler) schedule(task func(), trigger func() quartz.Trigger) (behavior.Cancellable, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.started.Load() {
		return nil, gerrors.ErrSchedulerNotStarted
	}

	handle := &cancellable{
		key:       quartz.NewJobKey(uuid.NewString()),
		cancelled: atomic.NewBool(false),
		scheduler: x,
	}

	fn := job.NewFunctionJob[bool](
		func(context.Context) (bool, error) {
			if handle.cancelled.Load() {
				return false, nil
			}
			return x.run(task)
		},
	)

	if err := x.quartzScheduler.ScheduleJob(quartz.NewJobDetail(fn, handle.key), trigger()); err != nil {
		return nil, err
	}
	return handle, nil
}

func (x *Scheduler) run(task func()) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gerrors.FromPanic(r)
			x.logger.Errorf("scheduled task failed: %v", err)
			ok = false
		}
	}()
	task()
	return true, nil
}

func (x *Scheduler) remove(key *quartz.JobKey) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.started.Load() {
		return
	}

	if err := x.quartzScheduler.DeleteJob(key); err != nil && !errors.Is(err, quartz.ErrJobNotFound) {
		x.logger.Warnf("failed to remove scheduled job %s: %v", key.String(), err)
	}
}

type cancellable struct {
	key       *quartz.JobKey
	cancelled *atomic.Bool
	scheduler *Scheduler
}

// Cancel implements behavior.Cancellable
func (c *cancellable) Cancel() {
	if !c.cancelled.CompareAndSwap(false, true) {
		return
	}
	c.scheduler.remove(c.key)
}
