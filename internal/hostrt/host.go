package hostrt

import (
	"context"
	"fmt"

	"github.com/vk/mainframe/internal/host"
	"github.com/vk/mainframe/internal/script"
)

// Host composes the in-process primitives with a script source into a full
// host.Host. The channel system is pluggable so an external transport can
// stand in for the in-memory bus.
type Host struct {
	source host.Source
	*HookTable
	*Timers
	channels host.ChannelSystem
}

// Option configures a Host.
type Option func(*Host)

// WithChannelSystem replaces the default in-memory bus.
func WithChannelSystem(cs host.ChannelSystem) Option {
	return func(h *Host) { h.channels = cs }
}

// New builds a Host around the given script source.
func New(src host.Source, opts ...Option) (*Host, error) {
	if src == nil {
		return nil, fmt.Errorf("hostrt: New: source must be non-nil")
	}

	h := &Host{
		source:    src,
		HookTable: NewHookTable(),
		Timers:    NewTimers(),
		channels:  NewBus(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Scripts delegates discovery to the configured source.
func (h *Host) Scripts(ctx context.Context) (map[string]script.Body, error) {
	return h.source.Scripts(ctx)
}

// Subscribe implements host.ChannelSystem.
func (h *Host) Subscribe(channel, key string, fn func(payload any)) {
	h.channels.Subscribe(channel, key, fn)
}

// Unsubscribe implements host.ChannelSystem.
func (h *Host) Unsubscribe(channel, key string) {
	h.channels.Unsubscribe(channel, key)
}

// Publish implements host.ChannelSystem.
func (h *Host) Publish(channel string, payload any) {
	h.channels.Publish(channel, payload)
}

// StaticSource is a fixed path-to-body mapping, useful for embedding script
// bodies directly in Go and in tests.
type StaticSource map[string]script.Body

// Scripts implements host.Source.
func (s StaticSource) Scripts(ctx context.Context) (map[string]script.Body, error) {
	out := make(map[string]script.Body, len(s))
	for path, body := range s {
		out[path] = body
	}
	return out, nil
}
