// Package hostrt is the reference in-process implementation of the host
// primitives. The CLI runs the loader against it; tests use it as a real,
// observable host rather than a mock.
package hostrt

import "sync"

// HookTable implements host.HookSystem with a per-event map of keyed
// callbacks.
type HookTable struct {
	mutex sync.RWMutex
	hooks map[string]map[string]func(args ...any)
}

// NewHookTable creates an empty hook table.
func NewHookTable() *HookTable {
	return &HookTable{hooks: make(map[string]map[string]func(args ...any))}
}

// AddHook registers fn for event under key, replacing any previous callback
// with the same key.
func (t *HookTable) AddHook(event, key string, fn func(args ...any)) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.hooks[event] == nil {
		t.hooks[event] = make(map[string]func(args ...any))
	}
	t.hooks[event][key] = fn
}

// RemoveHook drops the callback registered for event under key.
func (t *HookTable) RemoveHook(event, key string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	delete(t.hooks[event], key)
}

// RunHook invokes every callback registered for event. Callbacks may remove
// themselves (or others) while running, so dispatch works on a snapshot.
func (t *HookTable) RunHook(event string, args ...any) {
	t.mutex.RLock()
	fns := make([]func(args ...any), 0, len(t.hooks[event]))
	for _, fn := range t.hooks[event] {
		fns = append(fns, fn)
	}
	t.mutex.RUnlock()

	for _, fn := range fns {
		fn(args...)
	}
}

// Count reports how many callbacks are registered for event.
func (t *HookTable) Count(event string) int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.hooks[event])
}
