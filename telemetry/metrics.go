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

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	restartCounterName    = "actor_supervisor_restarts_count"
	stopCounterName       = "actor_supervisor_stops_count"
	droppedCounterName    = "actor_supervisor_dropped_count"
	staleTimerCounterName = "actor_timer_stale_count"
	strategyAttributeKey  = "strategy"
	actorAttributeKey     = "actor"
	timerKeyAttributeKey  = "timer"
)

// Metrics holds the counters recorded by supervisors and timer fences
type Metrics struct {
	// RestartCount counts restarts, immediate or scheduled by a backoff
	RestartCount metric.Int64Counter
	// StopCount counts actors stopped by a supervisor
	StopCount metric.Int64Counter
	// DroppedCount counts inputs dropped while a backoff supervisor waits
	DroppedCount metric.Int64Counter
	// StaleTimerCount counts discarded timer deliveries
	StaleTimerCount metric.Int64Counter
}

// NewMetrics creates the instruments
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	metrics := new(Metrics)
	var err error

	if metrics.RestartCount, err = meter.Int64Counter(
		restartCounterName,
		metric.WithDescription("The total number of restarts decided by supervisors"),
	); err != nil {
		return nil, fmt.Errorf("failed to create restart count instrument, %v", err)
	}

	if metrics.StopCount, err = meter.Int64Counter(
		stopCounterName,
		metric.WithDescription("The total number of actors stopped by supervisors"),
	); err != nil {
		return nil, fmt.Errorf("failed to create stop count instrument, %v", err)
	}

	if metrics.DroppedCount, err = meter.Int64Counter(
		droppedCounterName,
		metric.WithDescription("The total number of inputs dropped during backoff"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dropped count instrument, %v", err)
	}

	if metrics.StaleTimerCount, err = meter.Int64Counter(
		staleTimerCounterName,
		metric.WithDescription("The total number of stale timer deliveries discarded"),
	); err != nil {
		return nil, fmt.Errorf("failed to create stale timer count instrument, %v", err)
	}

	return metrics, nil
}

func noopMetrics() *Metrics {
	metrics, _ := NewMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return metrics
}

// RecordRestart increments the restart counter
func (m *Metrics) RecordRestart(ctx context.Context, actor, strategy string) {
	m.RestartCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String(actorAttributeKey, actor),
		attribute.String(strategyAttributeKey, strategy)))
}

// RecordStop increments the stop counter
func (m *Metrics) RecordStop(ctx context.Context, actor, strategy string) {
	m.StopCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String(actorAttributeKey, actor),
		attribute.String(strategyAttributeKey, strategy)))
}

// RecordDropped increments the dropped counter
func (m *Metrics) RecordDropped(ctx context.Context, actor string) {
	m.DroppedCount.Add(ctx, 1, metric.WithAttributes(attribute.String(actorAttributeKey, actor)))
}

// RecordStaleTimer increments the stale timer counter
func (m *Metrics) RecordStaleTimer(ctx context.Context, actor string, key any) {
	m.StaleTimerCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String(actorAttributeKey, actor),
		attribute.String(timerKeyAttributeKey, fmt.Sprint(key))))
}
