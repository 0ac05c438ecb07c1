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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/goakt-typed/errors"
)

func TestOrElse(t *testing.T) {
	newPair := func() (Behavior[string], *int, *int) {
		firstCalls, secondCalls := new(int), new(int)
		first := Receive(func(_ Context, msg string) (Behavior[string], error) {
			*firstCalls++
			if msg == "b-only" {
				return Unhandled[string](), nil
			}
			return Same[string](), nil
		})
		second := Receive(func(_ Context, msg string) (Behavior[string], error) {
			*secondCalls++
			return Same[string](), nil
		})
		return OrElse(first, second), firstCalls, secondCalls
	}

	t.Run("With the first behavior handling the message", func(t *testing.T) {
		ctx := newTestContext()
		b, firstCalls, secondCalls := newPair()
		current := mustStart(b, ctx)

		next, err := InterpretMessage(current, ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, SameKind, next.Kind())
		assert.Equal(t, 1, *firstCalls)
		assert.Zero(t, *secondCalls)
	})
	t.Run("With the first behavior declining the message", func(t *testing.T) {
		ctx := newTestContext()
		b, firstCalls, secondCalls := newPair()
		current := mustStart(b, ctx)

		next, err := InterpretMessage(current, ctx, "b-only")
		require.NoError(t, err)
		assert.Equal(t, SameKind, next.Kind())
		assert.Equal(t, 1, *firstCalls)
		assert.Equal(t, 1, *secondCalls)
	})
	t.Run("With both declining", func(t *testing.T) {
		ctx := newTestContext()
		current := mustStart(OrElse(Empty[string](), Empty[string]()), ctx)
		next, err := InterpretMessage(current, ctx, "x")
		require.NoError(t, err)
		assert.True(t, IsUnhandled(next))
	})
	t.Run("With Terminated handled by the second behavior", func(t *testing.T) {
		ctx := newTestContext()
		handled := false
		second := ReceiveSignal(func(_ Context, sig Signal) (Behavior[string], error) {
			_, handled = sig.(Terminated)
			return Same[string](), nil
		})
		current := mustStart(OrElse(Empty[string](), second), ctx)

		next, err := InterpretSignal(current, ctx, Terminated{Ref: &testRef{path: "other"}})
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Equal(t, SameKind, next.Kind())
	})
	t.Run("With Terminated declined by both", func(t *testing.T) {
		ctx := newTestContext()
		current := mustStart(OrElse(Empty[string](), Empty[string]()), ctx)
		_, err := InterpretSignal(current, ctx, Terminated{Ref: &testRef{path: "other"}})
		var deathPact *DeathPactError
		assert.ErrorAs(t, err, &deathPact)
	})
	t.Run("With deferred operands", func(t *testing.T) {
		ctx := newTestContext()
		setups := 0
		deferred := Setup(func(Context) (Behavior[string], error) {
			setups++
			return Ignore[string](), nil
		})
		current := mustStart(OrElse(deferred, deferred), ctx)
		assert.Equal(t, 2, setups)

		next, err := InterpretMessage(current, ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, SameKind, next.Kind())
	})
}

type command interface {
	isCommand()
}

type ping struct{ n int }

func (ping) isCommand() {}

type pong struct{}

func (pong) isCommand() {}

func TestNarrow(t *testing.T) {
	t.Run("With an assignable message type", func(t *testing.T) {
		ctx := newTestContext()
		var got []command
		wide := Receive(func(_ Context, cmd command) (Behavior[command], error) {
			got = append(got, cmd)
			return Same[command](), nil
		})

		narrowed, err := Narrow[ping](wide)
		require.NoError(t, err)
		current := mustStart(narrowed, ctx)

		_, err = InterpretMessage(current, ctx, ping{n: 1})
		require.NoError(t, err)
		assert.Equal(t, []command{ping{n: 1}}, got)
	})
	t.Run("With the same message type", func(t *testing.T) {
		b := Ignore[command]()
		narrowed, err := Narrow[command](b)
		require.NoError(t, err)
		assert.Equal(t, b, narrowed)
	})
	t.Run("With an incompatible message type", func(t *testing.T) {
		_, err := Narrow[string](Ignore[command]())
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrIncompatibleTypes)
	})
}

func TestWiden(t *testing.T) {
	ctx := newTestContext()
	var got []int
	inner := Receive(func(_ Context, n int) (Behavior[int], error) {
		got = append(got, n)
		if n < 0 {
			return StoppedWith(ReceiveSignal(func(Context, Signal) (Behavior[int], error) {
				got = append(got, 0)
				return Same[int](), nil
			}))
		}
		return Same[int](), nil
	})

	widened := Widen(inner, func(msg string) (int, bool) {
		var n int
		if _, err := fmt.Sscanf(msg, "%d", &n); err != nil {
			return 0, false
		}
		return n, true
	})
	current := mustStart(widened, ctx)

	next, err := InterpretMessage(current, ctx, "12")
	require.NoError(t, err)
	assert.Equal(t, SameKind, next.Kind())

	next, err = InterpretMessage(current, ctx, "twelve")
	require.NoError(t, err)
	assert.True(t, IsUnhandled(next))

	next, err = InterpretMessage(current, ctx, "-1")
	require.NoError(t, err)
	require.False(t, IsAlive(next))

	postStop, ok := PostStopBehavior(next)
	require.True(t, ok)
	_, err = InterpretSignal(postStop, ctx, PostStop{})
	require.NoError(t, err)

	assert.Equal(t, []int{12, -1, 0}, got)
}
