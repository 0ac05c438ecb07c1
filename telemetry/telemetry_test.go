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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestTelemetry(t *testing.T) {
	t.Run("With the global meter provider", func(t *testing.T) {
		tel := New()
		require.NotNil(t, tel)
		globalMeterProvider := otel.GetMeterProvider()
		assert.Equal(t, globalMeterProvider, tel.MeterProvider)
		assert.Equal(t, globalMeterProvider.Meter(instrumentationName,
			metric.WithInstrumentationVersion(Version())), tel.Meter)
		assert.NotNil(t, tel.Metrics)
	})
	t.Run("With a custom meter provider", func(t *testing.T) {
		provider := noop.NewMeterProvider()
		tel := New(WithMeterProvider(provider))
		assert.Equal(t, provider, tel.MeterProvider)
		require.NotNil(t, tel.Metrics)

		ctx := context.Background()
		assert.NotPanics(t, func() {
			tel.Metrics.RecordRestart(ctx, "goakt://test/user/worker", "Restart")
			tel.Metrics.RecordStop(ctx, "goakt://test/user/worker", "Stop")
			tel.Metrics.RecordDropped(ctx, "goakt://test/user/worker")
			tel.Metrics.RecordStaleTimer(ctx, "goakt://test/user/worker", "tick")
		})
	})
	t.Run("With the default telemetry", func(t *testing.T) {
		assert.Same(t, Default(), Default())
	})
}

func TestWithMeterProvider(t *testing.T) {
	provider := noop.NewMeterProvider()
	var tel Telemetry
	WithMeterProvider(provider).Apply(&tel)
	assert.Equal(t, provider, tel.MeterProvider)
}
