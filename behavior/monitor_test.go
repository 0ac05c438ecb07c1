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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/goakt-typed/log"
)

func TestMonitor(t *testing.T) {
	t.Run("With messages copied to the monitor", func(t *testing.T) {
		ctx := newTestContext()
		rec := new(recorder)
		monitor := &testRef{path: "goakt://test/user/monitor"}
		current := mustStart(Monitor(rec.behavior(), monitor), ctx)

		for _, msg := range []string{"a", "b"} {
			next, err := InterpretMessage(current, ctx, msg)
			require.NoError(t, err)
			current = Resolve(next, current)
		}

		assert.Equal(t, []any{"a", "b"}, monitor.received)
		assert.Equal(t, []string{"a", "b"}, rec.messages)
		assert.Equal(t, []any{monitorIdentity{path: monitor.path}}, Interceptors(current))
	})
	t.Run("With a failing monitor", func(t *testing.T) {
		ctx, buffer := newLoggingContext(log.WarningLevel)
		rec := new(recorder)
		monitor := &testRef{path: "goakt://test/user/monitor", err: errors.New("mailbox full")}
		current := mustStart(Monitor(rec.behavior(), monitor), ctx)

		_, err := InterpretMessage(current, ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, rec.messages)
		assert.Contains(t, buffer.String(), "mailbox full")
	})
}

func TestLogMessages(t *testing.T) {
	t.Run("With the level enabled", func(t *testing.T) {
		ctx, buffer := newLoggingContext(log.DebugLevel)
		rec := new(recorder)
		current := mustStart(LogMessages(rec.behavior(), log.DebugLevel), ctx)

		_, err := InterpretMessage(current, ctx, "hello")
		require.NoError(t, err)
		_, err = InterpretSignal(current, ctx, PostStop{})
		require.NoError(t, err)

		assert.Contains(t, buffer.String(), "received message hello")
		assert.Contains(t, buffer.String(), "received signal PostStop")
		assert.Equal(t, []string{"hello"}, rec.messages)
	})
	t.Run("With no actor reference", func(t *testing.T) {
		ctx, buffer := newLoggingContext(log.InfoLevel)
		ctx.self = nil
		rec := new(recorder)
		current := mustStart(LogMessages(rec.behavior(), log.InfoLevel), ctx)

		require.NotPanics(t, func() {
			_, err := InterpretMessage(current, ctx, "hello")
			require.NoError(t, err)
			_, err = InterpretSignal(current, ctx, PostStop{})
			require.NoError(t, err)
		})
		assert.Contains(t, buffer.String(), "actor  received message hello")
		assert.Equal(t, []string{"hello"}, rec.messages)
	})
	t.Run("With the level disabled", func(t *testing.T) {
		ctx, buffer := newLoggingContext(log.ErrorLevel)
		rec := new(recorder)
		current := mustStart(LogMessages(rec.behavior(), log.InfoLevel), ctx)

		_, err := InterpretMessage(current, ctx, "hello")
		require.NoError(t, err)
		assert.Zero(t, buffer.Len())
	})
}
