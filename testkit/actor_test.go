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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/goakt-typed/behavior"
	gerrors "github.com/tochemey/goakt-typed/errors"
	"github.com/tochemey/goakt-typed/eventstream"
)

var errBoom = errors.New("boom")

// echo forwards every message to sink and reacts to a few commands
func echo(sink behavior.ActorRef, signals *[]string) behavior.Behavior[string] {
	return behavior.ReceiveWithSignal(
		func(ctx behavior.Context, msg string) (behavior.Behavior[string], error) {
			switch msg {
			case "stop":
				return behavior.Stopped[string](), nil
			case "fail":
				return nil, errBoom
			case "panic":
				panic("kaboom")
			case "unknown":
				return behavior.Unhandled[string](), nil
			case "self":
				_ = ctx.Self().Tell("from-self")
				_ = sink.Tell("before-self")
				return behavior.Same[string](), nil
			}
			_ = sink.Tell(msg)
			return behavior.Same[string](), nil
		},
		func(_ behavior.Context, sig behavior.Signal) (behavior.Behavior[string], error) {
			if signals != nil {
				*signals = append(*signals, sig.SignalName())
			}
			return behavior.Same[string](), nil
		})
}

func TestActor(t *testing.T) {
	t.Run("With messages interpreted in order", func(t *testing.T) {
		kit := New(t)
		sink := kit.NewProbe("sink")
		var signals []string
		actor := Spawn(kit, "echo", echo(sink, &signals))

		require.True(t, actor.IsAlive())
		assert.Equal(t, "/user/echo", actor.Path())
		assert.Equal(t, []string{"PreStart"}, signals)

		require.NoError(t, actor.Send("a"))
		require.NoError(t, actor.Tell("b"))
		sink.ExpectMessage("a")
		sink.ExpectMessage("b")
		sink.ExpectNoMessage()
	})
	t.Run("With self tell interpreted after the current message", func(t *testing.T) {
		kit := New(t)
		sink := kit.NewProbe("sink")
		actor := Spawn(kit, "echo", echo(sink, nil))

		require.NoError(t, actor.Send("self"))
		assert.Equal(t, []any{"before-self", "from-self"}, sink.Messages())
	})
	t.Run("With unhandled message recorded", func(t *testing.T) {
		kit := New(t)
		actor := Spawn(kit, "echo", echo(kit.NewProbe("sink"), nil))

		require.NoError(t, actor.Send("unknown"))
		assert.Equal(t, []any{"unknown"}, actor.Unhandled())
		assert.True(t, actor.IsAlive())
	})
	t.Run("With stop", func(t *testing.T) {
		kit := New(t)
		var signals []string
		actor := Spawn(kit, "echo", echo(kit.NewProbe("sink"), &signals))

		require.NoError(t, actor.Send("stop"))
		assert.False(t, actor.IsAlive())
		assert.NoError(t, actor.Failure())
		assert.Equal(t, []string{"PreStart", "PostStop"}, signals)

		err := actor.Send("late")
		require.ErrorIs(t, err, gerrors.ErrDead)
		letters := kit.DeadLetters()
		require.Len(t, letters, 1)
		assert.Equal(t, "late", letters[0].Message)
		assert.Equal(t, actor, letters[0].Recipient)
	})
	t.Run("With stop carrying a post stop behavior", func(t *testing.T) {
		kit := New(t)
		sink := kit.NewProbe("sink")
		postStop := behavior.ReceiveSignal(func(_ behavior.Context, sig behavior.Signal) (behavior.Behavior[string], error) {
			_ = sink.Tell(sig.SignalName())
			return behavior.Same[string](), nil
		})
		actor := Spawn(kit, "stopper", behavior.Receive(func(behavior.Context, string) (behavior.Behavior[string], error) {
			return behavior.StoppedWith(postStop)
		}))

		require.NoError(t, actor.Send("go"))
		assert.False(t, actor.IsAlive())
		sink.ExpectMessage("PostStop")
	})
	t.Run("With failure", func(t *testing.T) {
		kit := New(t)
		var signals []string
		actor := Spawn(kit, "echo", echo(kit.NewProbe("sink"), &signals))

		require.NoError(t, actor.Send("fail"))
		assert.False(t, actor.IsAlive())
		assert.ErrorIs(t, actor.Failure(), errBoom)
		assert.Equal(t, []string{"PreStart", "PostStop"}, signals)
	})
	t.Run("With panic", func(t *testing.T) {
		kit := New(t)
		actor := Spawn(kit, "echo", echo(kit.NewProbe("sink"), nil))

		require.NoError(t, actor.Send("panic"))
		assert.False(t, actor.IsAlive())
		var panicErr *gerrors.PanicError
		require.ErrorAs(t, actor.Failure(), &panicErr)
	})
	t.Run("With startup failure", func(t *testing.T) {
		kit := New(t)
		actor := Spawn(kit, "broken", behavior.Setup(func(behavior.Context) (behavior.Behavior[string], error) {
			return nil, errBoom
		}))

		assert.False(t, actor.IsAlive())
		var initErr *gerrors.InitError
		require.ErrorAs(t, actor.Failure(), &initErr)
		assert.ErrorIs(t, actor.Failure(), errBoom)
	})
	t.Run("With stopped at startup", func(t *testing.T) {
		kit := New(t)
		actor := Spawn(kit, "done", behavior.Stopped[string]())
		assert.False(t, actor.IsAlive())
		assert.NoError(t, actor.Failure())
	})
	t.Run("With unhandled terminated signal", func(t *testing.T) {
		kit := New(t)
		actor := Spawn(kit, "watcher", behavior.Receive(func(behavior.Context, string) (behavior.Behavior[string], error) {
			return behavior.Same[string](), nil
		}))
		child := kit.NewProbe("child")

		require.NoError(t, actor.Signal(behavior.Terminated{Ref: child}))
		assert.False(t, actor.IsAlive())
		var deathPact *behavior.DeathPactError
		require.ErrorAs(t, actor.Failure(), &deathPact)
		assert.Equal(t, child, deathPact.Ref)
	})
	t.Run("With invalid input", func(t *testing.T) {
		kit := New(t)
		actor := Spawn(kit, "echo", echo(kit.NewProbe("sink"), nil))

		require.NoError(t, actor.Tell(42))
		assert.ErrorIs(t, actor.Failure(), gerrors.ErrInvalidMessage)
	})
}

func TestActorContext(t *testing.T) {
	type command struct {
		op   string
		name string
	}

	t.Run("With children and watches", func(t *testing.T) {
		kit := New(t)
		actor := Spawn(kit, "parent", behavior.Receive(func(ctx behavior.Context, cmd command) (behavior.Behavior[command], error) {
			switch cmd.op {
			case "spawn":
				child, err := behavior.SpawnChild(ctx, cmd.name, behavior.Ignore[string]())
				if err != nil {
					return nil, err
				}
				ctx.Watch(child)
			case "stop":
				child, ok := ctx.Child(cmd.name)
				if !ok {
					return behavior.Unhandled[command](), nil
				}
				ctx.Unwatch(child)
				return behavior.Same[command](), ctx.Stop(child)
			}
			return behavior.Same[command](), nil
		}))

		require.NoError(t, actor.Send(command{op: "spawn", name: "a"}))
		require.NoError(t, actor.Send(command{op: "spawn", name: "b"}))
		require.Len(t, actor.Children(), 2)

		child, ok := actor.Child("a")
		require.True(t, ok)
		assert.Equal(t, "/user/parent/a", child.Path())
		assert.NotNil(t, child.Behavior())
		assert.True(t, actor.IsWatching(child))
		assert.Len(t, actor.Watched(), 2)

		require.NoError(t, actor.Send(command{op: "stop", name: "a"}))
		assert.True(t, child.IsStopped())
		assert.False(t, actor.IsWatching(child))
		require.Len(t, actor.Children(), 1)

		require.ErrorIs(t, child.Tell("late"), gerrors.ErrDead)

		require.NoError(t, actor.Send(command{op: "stop", name: "a"}))
		assert.Equal(t, []any{command{op: "stop", name: "a"}}, actor.Unhandled())
	})
	t.Run("With duplicate child name", func(t *testing.T) {
		kit := New(t)
		actor := Spawn(kit, "parent", behavior.Receive(func(ctx behavior.Context, name string) (behavior.Behavior[string], error) {
			_, err := ctx.Spawn(name, nil)
			return behavior.Same[string](), err
		}))

		require.NoError(t, actor.Send("a"))
		require.NoError(t, actor.Send("a"))
		assert.False(t, actor.IsAlive())
		assert.Error(t, actor.Failure())
	})
	t.Run("With children stopped with the parent", func(t *testing.T) {
		kit := New(t)
		actor := Spawn(kit, "parent", behavior.Receive(func(ctx behavior.Context, msg string) (behavior.Behavior[string], error) {
			if msg == "stop" {
				return behavior.Stopped[string](), nil
			}
			_, err := ctx.Spawn(msg, nil)
			return behavior.Same[string](), err
		}))

		require.NoError(t, actor.Send("child"))
		child, ok := actor.Child("child")
		require.True(t, ok)

		require.NoError(t, actor.Send("stop"))
		assert.True(t, child.IsStopped())
		assert.Empty(t, actor.Children())
	})
	t.Run("With scheduler and clock", func(t *testing.T) {
		start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		kit := New(t, WithStartTime(start))
		sink := kit.NewProbe("sink")
		actor := Spawn(kit, "ticker", behavior.Receive(func(ctx behavior.Context, msg string) (behavior.Behavior[string], error) {
			if msg == "schedule" {
				self := ctx.Self()
				_, err := ctx.Scheduler().ScheduleOnce(time.Second, func() { _ = self.Tell("tick") })
				return behavior.Same[string](), err
			}
			_ = sink.Tell(ctx.Scheduler().Now())
			return behavior.Same[string](), nil
		}))

		require.NoError(t, actor.Send("schedule"))
		sink.ExpectNoMessage()
		kit.Advance(2 * time.Second)
		sink.ExpectMessage(start.Add(time.Second))
		assert.Equal(t, start.Add(2*time.Second), kit.Now())
	})
}

func TestProbe(t *testing.T) {
	t.Run("With any message", func(t *testing.T) {
		kit := New(t)
		probe := kit.NewProbe("probe")
		assert.Equal(t, "probe", probe.Path())
		require.NoError(t, probe.Tell(1))
		assert.Equal(t, []any{1}, probe.Messages())
		assert.Equal(t, 1, probe.ExpectAnyMessage())
		assert.Empty(t, probe.Messages())
	})
	t.Run("With message told from another goroutine", func(t *testing.T) {
		kit := New(t)
		probe := kit.NewProbe("probe")
		go func() {
			time.Sleep(10 * time.Millisecond)
			_ = probe.Tell("late")
		}()
		probe.ExpectMessageWithin(time.Second, "late")
		assert.Nil(t, probe.Behavior())
		assert.False(t, probe.IsStopped())
	})
}

func TestEvents(t *testing.T) {
	kit := New(t)
	sub := kit.Subscribe(eventstream.DeadLettersTopic, eventstream.UnhandledTopic)
	actor := Spawn(kit, "echo", echo(kit.NewProbe("sink"), nil))

	require.NoError(t, actor.Send("unknown"))
	require.NoError(t, actor.Send("stop"))
	require.ErrorIs(t, actor.Send("late"), gerrors.ErrDead)

	messages := sub.Drain()
	require.Len(t, messages, 2)
	assert.Equal(t, eventstream.UnhandledTopic, messages[0].Topic())
	assert.Equal(t, UnhandledMessage{Message: "unknown", Recipient: actor}, messages[0].Payload())
	assert.Equal(t, eventstream.DeadLettersTopic, messages[1].Topic())
	letter, ok := messages[1].Payload().(behavior.DeadLetter)
	require.True(t, ok)
	assert.Equal(t, "late", letter.Message)
}
