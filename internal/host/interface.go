// Package host declares the surface the loader consumes from the embedding
// scripting environment: script discovery plus the hook, timer and channel
// primitives that the shims wrap. The loader invokes these primitives, it
// never reimplements their scheduling.
package host

import (
	"context"
	"time"

	"github.com/vk/mainframe/internal/script"
)

// Source enumerates every loadable script visible to the process, keyed by
// its host path. The bootstrapper queries it once per phase.
type Source interface {
	Scripts(ctx context.Context) (map[string]script.Body, error)
}

// HookSystem is the host's named-event callback primitive.
type HookSystem interface {
	AddHook(event, key string, fn func(args ...any))
	RemoveHook(event, key string)
	RunHook(event string, args ...any)
}

// TimerSystem is the host's repeating-timer primitive. A repetitions count
// of zero means the timer fires until removed.
type TimerSystem interface {
	CreateTimer(key string, interval time.Duration, repetitions int, fn func())
	RemoveTimer(key string)
}

// ChannelSystem is the host's keyed message-channel primitive.
type ChannelSystem interface {
	Subscribe(channel, key string, fn func(payload any))
	Unsubscribe(channel, key string)
	Publish(channel string, payload any)
}

// Host combines everything the bootstrapper needs from the environment.
type Host interface {
	Source
	HookSystem
	TimerSystem
	ChannelSystem
}
