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
	"github.com/tochemey/goakt-typed/log"
)

// Monitor copies every message to monitor before the wrapped behavior handles
// it. The wrapped behavior can evolve without being wrapped again.
func Monitor[M any](b Behavior[M], monitor ActorRef) Behavior[M] {
	return Intercept[M, M](b, monitorInterceptor[M]{monitor: monitor})
}

type monitorIdentity struct {
	path string
}

type monitorInterceptor[M any] struct {
	PassThrough[M]
	monitor ActorRef
}

func (m monitorInterceptor[M]) AroundReceive(ctx Context, msg M, target ReceiveTarget[M]) (Behavior[M], error) {
	if err := m.monitor.Tell(msg); err != nil {
		ctx.Log().Warnf("failed to copy message to monitor %s: %v", m.monitor.Path(), err)
	}
	return target.Apply(ctx, msg)
}

func (m monitorInterceptor[M]) Identity() any {
	return monitorIdentity{path: m.monitor.Path()}
}

// LogMessages logs every message and signal at the given level before the
// wrapped behavior handles it
func LogMessages[M any](b Behavior[M], level log.Level) Behavior[M] {
	return Intercept[M, M](b, logInterceptor[M]{level: level})
}

type logIdentity struct {
	level log.Level
}

type logInterceptor[M any] struct {
	level log.Level
}

func (l logInterceptor[M]) AroundStart(ctx Context, target PreStartTarget[M]) (Behavior[M], error) {
	return target.Start(ctx)
}

func (l logInterceptor[M]) AroundReceive(ctx Context, msg M, target ReceiveTarget[M]) (Behavior[M], error) {
	l.log(ctx, "actor %s received message %v", SelfPath(ctx), msg)
	return target.Apply(ctx, msg)
}

func (l logInterceptor[M]) AroundSignal(ctx Context, sig Signal, target SignalTarget[M]) (Behavior[M], error) {
	l.log(ctx, "actor %s received signal %s", SelfPath(ctx), sig.SignalName())
	return target.Apply(ctx, sig)
}

func (l logInterceptor[M]) Identity() any { return logIdentity{level: l.level} }

func (l logInterceptor[M]) log(ctx Context, format string, args ...any) {
	logger := ctx.Log()
	if !logger.Enabled(l.level) {
		return
	}
	switch l.level {
	case log.DebugLevel:
		logger.Debugf(format, args...)
	case log.WarningLevel:
		logger.Warnf(format, args...)
	case log.ErrorLevel:
		logger.Errorf(format, args...)
	default:
		logger.Infof(format, args...)
	}
}
