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

// Package telemetry wires the OpenTelemetry meter used to count supervision
// decisions and discarded timer deliveries.
package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/tochemey/goakt-typed"
)

// Telemetry holds the meter and the instruments built from it
type Telemetry struct {
	MeterProvider metric.MeterProvider
	Meter         metric.Meter
	Metrics       *Metrics
}

// New creates a Telemetry. By default the global meter provider is used.
// Instrument creation failures are handed to otel.Handle and replaced by no-op
// instruments.
func New(options ...Option) *Telemetry {
	telemetry := &Telemetry{
		MeterProvider: otel.GetMeterProvider(),
	}

	for _, opt := range options {
		opt.Apply(telemetry)
	}

	telemetry.Meter = telemetry.MeterProvider.Meter(
		instrumentationName,
		metric.WithInstrumentationVersion(Version()),
	)

	metrics, err := NewMetrics(telemetry.Meter)
	if err != nil {
		otel.Handle(err)
		metrics = noopMetrics()
	}
	telemetry.Metrics = metrics
	return telemetry
}

var (
	defaultTelemetry *Telemetry
	defaultOnce      sync.Once
)

// Default returns the Telemetry built from the global meter provider. It is
// created on first use, so the global provider must be registered before.
func Default() *Telemetry {
	defaultOnce.Do(func() {
		defaultTelemetry = New()
	})
	return defaultTelemetry
}

// Version returns the instrumentation version
func Version() string {
	return "1.0.0"
}
