// Package shim wraps the host's hook, timer and channel primitives for use
// by module code. Every registration key is namespaced with the owning
// module's identity, and every callback is invoked inside a guard: the first
// uncaught failure tears down that one registration and forwards the error
// to the report sink, leaving everything else running.
package shim

import (
	"fmt"
	"time"

	"github.com/vk/mainframe/internal/host"
	"github.com/vk/mainframe/internal/report"
)

// Callback is the module-facing callback form for hooks and channels.
type Callback func(args ...any) error

// Set bundles the three shims handed to one module's environment.
type Set struct {
	Hooks    *Hooks
	Timers   *Timers
	Channels *Channels
}

// NewSet builds the shims for the module identified by moduleID.
func NewSet(moduleID string, h host.Host, rep *report.Reporter, ov *OverrideTable) *Set {
	return &Set{
		Hooks:    &Hooks{module: moduleID, sys: h, rep: rep, overrides: ov},
		Timers:   &Timers{module: moduleID, sys: h, rep: rep},
		Channels: &Channels{module: moduleID, sys: h, rep: rep},
	}
}

func namespaced(module, name string) string {
	return module + "/" + name
}

// Hooks is the per-module hook shim.
type Hooks struct {
	module    string
	sys       host.HookSystem
	rep       *report.Reporter
	overrides *OverrideTable
}

// Add registers fn for event under the caller-supplied name. The name is
// namespaced per module, so two modules picking the same name never collide.
func (h *Hooks) Add(event, name string, fn Callback) error {
	if event == "" || name == "" {
		return fmt.Errorf("shim: hook Add: event and name must be non-empty strings")
	}
	if fn == nil {
		return fmt.Errorf("shim: hook Add: callback must be non-nil for %q/%q", event, name)
	}

	if ov := h.overrides.lookup(event); ov != nil && ov.Add != nil {
		ov.Add(h.module, name, fn)
		return nil
	}

	key := namespaced(h.module, name)
	h.sys.AddHook(event, key, func(args ...any) {
		if err := report.Call(func() error { return fn(args...) }); err != nil {
			h.sys.RemoveHook(event, key)
			h.rep.Report(fmt.Errorf("hook %q (%s): %w", event, key, err))
		}
	})
	return nil
}

// Remove deregisters the hook the calling module added under name.
func (h *Hooks) Remove(event, name string) {
	if ov := h.overrides.lookup(event); ov != nil && ov.Remove != nil {
		ov.Remove(h.module, name)
		return
	}
	h.sys.RemoveHook(event, namespaced(h.module, name))
}

// Run fires event through the host, or through the event's override when one
// is installed.
func (h *Hooks) Run(event string, args ...any) {
	if ov := h.overrides.lookup(event); ov != nil && ov.Run != nil {
		ov.Run(args...)
		return
	}
	h.sys.RunHook(event, args...)
}

// Timers is the per-module timer shim.
type Timers struct {
	module string
	sys    host.TimerSystem
	rep    *report.Reporter
}

// Create schedules fn every interval for the given number of repetitions
// (zero repeats until removed). A failing callback removes its own timer so
// a persistently-broken one cannot re-fire indefinitely.
func (t *Timers) Create(name string, interval time.Duration, repetitions int, fn func() error) error {
	if name == "" {
		return fmt.Errorf("shim: timer Create: name must be a non-empty string")
	}
	if interval <= 0 {
		return fmt.Errorf("shim: timer Create: interval must be positive, got %s", interval)
	}
	if fn == nil {
		return fmt.Errorf("shim: timer Create: callback must be non-nil for %q", name)
	}

	key := namespaced(t.module, name)
	t.sys.CreateTimer(key, interval, repetitions, func() {
		if err := report.Call(fn); err != nil {
			t.sys.RemoveTimer(key)
			t.rep.Report(fmt.Errorf("timer %s: %w", key, err))
		}
	})
	return nil
}

// Remove cancels the timer the calling module created under name.
func (t *Timers) Remove(name string) {
	t.sys.RemoveTimer(namespaced(t.module, name))
}

// Channels is the per-module channel-listener shim.
type Channels struct {
	module string
	sys    host.ChannelSystem
	rep    *report.Reporter
}

// Listen subscribes fn to messages on channel under the caller's name.
func (c *Channels) Listen(channel, name string, fn Callback) error {
	if channel == "" || name == "" {
		return fmt.Errorf("shim: channel Listen: channel and name must be non-empty strings")
	}
	if fn == nil {
		return fmt.Errorf("shim: channel Listen: callback must be non-nil for %q/%q", channel, name)
	}

	key := namespaced(c.module, name)
	c.sys.Subscribe(channel, key, func(payload any) {
		if err := report.Call(func() error { return fn(payload) }); err != nil {
			c.sys.Unsubscribe(channel, key)
			c.rep.Report(fmt.Errorf("channel %q (%s): %w", channel, key, err))
		}
	})
	return nil
}

// Mute drops the subscription the calling module added under name.
func (c *Channels) Mute(channel, name string) {
	c.sys.Unsubscribe(channel, namespaced(c.module, name))
}

// Send publishes payload on channel through the host.
func (c *Channels) Send(channel string, payload any) {
	c.sys.Publish(channel, payload)
}
