package shim

import (
	"fmt"
	"sync"
)

// Override replaces the default add/remove/run behavior for one hook event.
// Nil fields fall through to the default namespaced-wrap behavior, so an
// override may intercept only the operations it cares about.
type Override struct {
	Add    func(module, name string, fn Callback)
	Remove func(module, name string)
	Run    func(args ...any)
}

// OverrideTable holds per-event overrides. It is owned by the bootstrapper
// instance; there is one logical table per loader.
type OverrideTable struct {
	mutex     sync.RWMutex
	overrides map[string]*Override
}

// NewOverrideTable creates an empty override table.
func NewOverrideTable() *OverrideTable {
	return &OverrideTable{overrides: make(map[string]*Override)}
}

// Set installs ov for event, replacing any previous override wholesale.
func (t *OverrideTable) Set(event string, ov *Override) error {
	if event == "" {
		return fmt.Errorf("shim: override Set: event must be a non-empty string")
	}
	if ov == nil {
		return fmt.Errorf("shim: override Set: override must be non-nil for event %q", event)
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.overrides[event] = ov
	return nil
}

// Delete removes the override for event, restoring default behavior.
func (t *OverrideTable) Delete(event string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	delete(t.overrides, event)
}

func (t *OverrideTable) lookup(event string) *Override {
	if t == nil {
		return nil
	}
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.overrides[event]
}
