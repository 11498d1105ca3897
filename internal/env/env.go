// Package env implements the two-tier variable scopes that script bodies
// execute against: a single shared base populated by libraries, and
// per-module scopes that read through to it but keep their writes private.
package env

import (
	"fmt"
	"sync"
)

// KeyModulePath is bound into every scope and names the unit the scope
// belongs to.
const KeyModulePath = "modulePath"

// Base is the shared scope underlying every created environment. Libraries
// write into it directly; module scopes only read from it.
type Base struct {
	mutex  sync.RWMutex
	values map[string]any
}

// NewBase creates an empty shared base scope.
func NewBase() *Base {
	return &Base{values: make(map[string]any)}
}

// Add registers a binding in the shared base, making it visible to every
// scope created from this base, including scopes created before the call.
func (b *Base) Add(key string, value any) error {
	if key == "" {
		return fmt.Errorf("env: Add: key must be a non-empty string")
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.values[key] = value
	return nil
}

// lookup reads a binding from the base tier.
func (b *Base) lookup(key string) (any, bool) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	v, ok := b.values[key]
	return v, ok
}

// Len reports the number of bindings held by the base. Primarily for tests.
func (b *Base) Len() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.values)
}

// Scope is one environment instance. Reads check the local tier first and
// fall back to the shared base; writes stay local unless the scope is the
// write-through global scope used during library loading.
type Scope struct {
	base    *Base
	mutex   sync.RWMutex
	local   map[string]any
	global  bool
	modPath string
}

// NewScope creates a fresh isolated environment for the unit identified by
// modulePath. The identity is also bound into the scope under KeyModulePath.
func (b *Base) NewScope(modulePath string) (*Scope, error) {
	if modulePath == "" {
		return nil, fmt.Errorf("env: NewScope: modulePath must be a non-empty string")
	}

	s := &Scope{
		base:    b,
		local:   make(map[string]any),
		modPath: modulePath,
	}
	s.local[KeyModulePath] = modulePath
	return s, nil
}

// GlobalScope returns a write-through view of the base itself. Library
// bodies execute against it so that everything they define becomes part of
// the shared base.
func (b *Base) GlobalScope() *Scope {
	return &Scope{base: b, local: make(map[string]any), global: true}
}

// Get resolves a key against the local tier, then the shared base.
func (s *Scope) Get(key string) (any, bool) {
	s.mutex.RLock()
	v, ok := s.local[key]
	s.mutex.RUnlock()
	if ok {
		return v, true
	}
	return s.base.lookup(key)
}

// Set writes a binding. On an isolated scope the write is private to this
// scope; on the global scope it lands in the shared base.
func (s *Scope) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("env: Set: key must be a non-empty string")
	}
	if s.global {
		return s.base.Add(key, value)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.local[key] = value
	return nil
}

// ModulePath returns the identity the scope was created with. The global
// scope has no identity and returns "".
func (s *Scope) ModulePath() string {
	return s.modPath
}
