package hostrt

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/mainframe/internal/env"
	"github.com/vk/mainframe/internal/script"
)

func TestHookTable(t *testing.T) {
	t.Run("add run remove lifecycle", func(t *testing.T) {
		table := NewHookTable()
		var got []any
		table.AddHook("tick", "k1", func(args ...any) { got = append(got, args...) })

		table.RunHook("tick", "payload")
		assert.Equal(t, []any{"payload"}, got)
		assert.Equal(t, 1, table.Count("tick"))

		table.RemoveHook("tick", "k1")
		table.RunHook("tick", "ignored")
		assert.Equal(t, []any{"payload"}, got)
		assert.Zero(t, table.Count("tick"))
	})

	t.Run("same key replaces instead of stacking", func(t *testing.T) {
		table := NewHookTable()
		calls := 0
		table.AddHook("tick", "k1", func(args ...any) { calls += 1 })
		table.AddHook("tick", "k1", func(args ...any) { calls += 10 })

		table.RunHook("tick")
		assert.Equal(t, 10, calls)
		assert.Equal(t, 1, table.Count("tick"))
	})

	t.Run("callback may remove itself during dispatch", func(t *testing.T) {
		table := NewHookTable()
		calls := 0
		table.AddHook("tick", "self", func(args ...any) {
			calls++
			table.RemoveHook("tick", "self")
		})

		assert.NotPanics(t, func() { table.RunHook("tick") })
		table.RunHook("tick")
		assert.Equal(t, 1, calls)
	})

	t.Run("unknown event is a no-op", func(t *testing.T) {
		table := NewHookTable()
		assert.NotPanics(t, func() { table.RunHook("nothing-here") })
		table.RemoveHook("nothing-here", "k")
	})
}

func TestTimerSystem(t *testing.T) {
	t.Run("finite timer fires the requested number of times", func(t *testing.T) {
		timers := NewTimers()
		var fires atomic.Int64
		timers.CreateTimer("k", 2*time.Millisecond, 3, func() { fires.Add(1) })

		require.Eventually(t, func() bool {
			return fires.Load() == 3
		}, time.Second, 2*time.Millisecond)
		require.Eventually(t, func() bool {
			return !timers.Active("k")
		}, time.Second, 2*time.Millisecond)

		// Settles at exactly the repetition count.
		time.Sleep(20 * time.Millisecond)
		assert.EqualValues(t, 3, fires.Load())
	})

	t.Run("zero repetitions re-arms until removed", func(t *testing.T) {
		timers := NewTimers()
		var fires atomic.Int64
		timers.CreateTimer("k", 2*time.Millisecond, 0, func() { fires.Add(1) })

		require.Eventually(t, func() bool {
			return fires.Load() >= 5
		}, time.Second, 2*time.Millisecond)
		assert.True(t, timers.Active("k"))

		timers.RemoveTimer("k")
		assert.False(t, timers.Active("k"))
		settled := fires.Load()
		time.Sleep(20 * time.Millisecond)
		assert.LessOrEqual(t, fires.Load(), settled+1, "at most one in-flight fire after removal")
	})

	t.Run("re-creating a key replaces the running timer", func(t *testing.T) {
		timers := NewTimers()
		var old, replacement atomic.Int64
		timers.CreateTimer("k", time.Hour, 0, func() { old.Add(1) })
		timers.CreateTimer("k", 2*time.Millisecond, 1, func() { replacement.Add(1) })

		require.Eventually(t, func() bool {
			return replacement.Load() == 1
		}, time.Second, 2*time.Millisecond)
		assert.Zero(t, old.Load())
	})

	t.Run("removing an unknown key is a no-op", func(t *testing.T) {
		timers := NewTimers()
		assert.NotPanics(t, func() { timers.RemoveTimer("ghost") })
	})
}

func TestBus(t *testing.T) {
	t.Run("delivers to every listener on the channel", func(t *testing.T) {
		bus := NewBus()
		var a, b []any
		bus.Subscribe("radar", "a", func(payload any) { a = append(a, payload) })
		bus.Subscribe("radar", "b", func(payload any) { b = append(b, payload) })
		bus.Subscribe("other", "c", func(payload any) { t.Error("wrong channel delivered") })

		bus.Publish("radar", 7)
		assert.Equal(t, []any{7}, a)
		assert.Equal(t, []any{7}, b)
		assert.Equal(t, 2, bus.Count("radar"))
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		bus := NewBus()
		calls := 0
		bus.Subscribe("radar", "a", func(payload any) { calls++ })

		bus.Unsubscribe("radar", "a")
		bus.Publish("radar", nil)
		assert.Zero(t, calls)
	})

	t.Run("listener may unsubscribe itself during dispatch", func(t *testing.T) {
		bus := NewBus()
		calls := 0
		bus.Subscribe("radar", "self", func(payload any) {
			calls++
			bus.Unsubscribe("radar", "self")
		})

		assert.NotPanics(t, func() { bus.Publish("radar", nil) })
		bus.Publish("radar", nil)
		assert.Equal(t, 1, calls)
	})
}

func TestHost(t *testing.T) {
	t.Run("requires a source", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorContains(t, err, "source must be non-nil")
	})

	t.Run("delegates discovery to the source", func(t *testing.T) {
		src := StaticSource{
			"libraries/util": func(ctx context.Context, scope *env.Scope) (any, error) {
				return nil, nil
			},
		}
		h, err := New(src)
		require.NoError(t, err)

		scripts, err := h.Scripts(context.Background())
		require.NoError(t, err)
		require.Len(t, scripts, 1)
		assert.Contains(t, scripts, "libraries/util")
	})

	t.Run("static source hands out copies", func(t *testing.T) {
		var body script.Body = func(ctx context.Context, scope *env.Scope) (any, error) {
			return nil, nil
		}
		src := StaticSource{"modules/a": body}

		first, err := src.Scripts(context.Background())
		require.NoError(t, err)
		delete(first, "modules/a")

		second, err := src.Scripts(context.Background())
		require.NoError(t, err)
		assert.Contains(t, second, "modules/a")
	})

	t.Run("custom channel system replaces the bus", func(t *testing.T) {
		published := make([]string, 0, 1)
		h, err := New(StaticSource{}, WithChannelSystem(recordingChannels{&published}))
		require.NoError(t, err)

		h.Publish("radar", nil)
		assert.Equal(t, []string{"radar"}, published)
	})
}

type recordingChannels struct {
	published *[]string
}

func (r recordingChannels) Subscribe(channel, key string, fn func(payload any)) {}
func (r recordingChannels) Unsubscribe(channel, key string)                     {}
func (r recordingChannels) Publish(channel string, payload any) {
	*r.published = append(*r.published, channel)
}
