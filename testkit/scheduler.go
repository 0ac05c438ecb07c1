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
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/goakt-typed/behavior"
)

// ManualScheduler is a behavior.Scheduler on a virtual clock. Tasks only run
// from Advance, on the calling goroutine.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	tasks []*task
}

var _ behavior.Scheduler = (*ManualScheduler)(nil)

type task struct {
	due       time.Time
	interval  time.Duration
	seq       uint64
	run       func()
	cancelled *atomic.Bool
}

// Cancel implements behavior.Cancellable
func (t *task) Cancel() {
	t.cancelled.Store(true)
}

// NewManualScheduler creates a scheduler whose clock starts at start
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// ScheduleOnce implements behavior.Scheduler
func (s *ManualScheduler) ScheduleOnce(delay time.Duration, run func()) (behavior.Cancellable, error) {
	if delay < 0 {
		delay = 0
	}
	return s.add(delay, 0, run), nil
}

// ScheduleRepeatedly implements behavior.Scheduler
func (s *ManualScheduler) ScheduleRepeatedly(interval time.Duration, run func()) (behavior.Cancellable, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be a positive duration")
	}
	return s.add(interval, interval, run), nil
}

// Now implements behavior.Scheduler
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of tasks still to run
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, t := range s.tasks {
		if !t.cancelled.Load() {
			count++
		}
	}
	return count
}

// Advance moves the clock forward by d. Due tasks run in due time order,
// ties in scheduling order, with the clock set to their due time. Tasks
// scheduled by a running task run in the same call when they become due.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		next := s.pop(target)
		if next == nil {
			break
		}
		next.run()
		if next.interval > 0 && !next.cancelled.Load() {
			s.mu.Lock()
			next.due = next.due.Add(next.interval)
			s.tasks = append(s.tasks, next)
			s.mu.Unlock()
		}
	}

	s.mu.Lock()
	if target.After(s.now) {
		s.now = target
	}
	s.mu.Unlock()
}

func (s *ManualScheduler) add(delay, interval time.Duration, run func()) *task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &task{
		due:       s.now.Add(delay),
		interval:  interval,
		seq:       s.seq,
		run:       run,
		cancelled: atomic.NewBool(false),
	}
	s.tasks = append(s.tasks, t)
	return t
}

// pop removes and returns the earliest task due by target
func (s *ManualScheduler) pop(target time.Time) *task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = slices.DeleteFunc(s.tasks, func(t *task) bool {
		return t.cancelled.Load()
	})
	if len(s.tasks) == 0 {
		return nil
	}

	earliest := slices.MinFunc(s.tasks, func(a, b *task) int {
		if c := a.due.Compare(b.due); c != 0 {
			return c
		}
		if a.seq < b.seq {
			return -1
		}
		return 1
	})
	if earliest.due.After(target) {
		return nil
	}

	s.tasks = slices.DeleteFunc(s.tasks, func(t *task) bool { return t == earliest })
	if earliest.due.After(s.now) {
		s.now = earliest.due
	}
	return earliest
}
