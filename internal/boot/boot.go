// Package boot implements the two-phase load orchestration: libraries first,
// synchronously and in priority order into one shared scope, then modules in
// two passes (declare dependencies, then run in resolved dependency order)
// with one isolated scope per pass.
package boot

import (
	"fmt"

	"github.com/vk/mainframe/internal/env"
	"github.com/vk/mainframe/internal/host"
	"github.com/vk/mainframe/internal/loadorder"
	"github.com/vk/mainframe/internal/report"
	"github.com/vk/mainframe/internal/shim"
)

// Lifecycle hook events fired around the modules phase. Consumed by the
// embedding environment, not by the loader itself.
const (
	HookPreModuleLoad  = "premoduleload"
	HookPostModuleLoad = "postmoduleload"
)

// Scope binding keys under which each module finds its shims.
const (
	KeyHook    = "hook"
	KeyTimer   = "timer"
	KeyChannel = "channel"
)

// Category subdirectories under each root prefix.
const (
	libraryDir = "libraries"
	moduleDir  = "modules"
)

// Config carries the two root prefixes that identify category membership of
// discovered script paths.
type Config struct {
	// SharedRoot is the prefix of scripts shipped with the mainframe.
	SharedRoot string
	// LocalRoot is the prefix of operator-local scripts. A local script
	// shadows the shared script with the same normalized path.
	LocalRoot string
}

// Bootstrapper is the one loader instance per process. It owns the shared
// base environment, the library load-order table, the hook override table
// and the report sink; none of that state is package-global.
type Bootstrapper struct {
	host      host.Host
	base      *env.Base
	libs      *loadorder.Table
	reporter  *report.Reporter
	overrides *shim.OverrideTable
	cfg       Config
}

// New constructs a Bootstrapper for the given host.
func New(h host.Host, rep *report.Reporter, cfg Config) (*Bootstrapper, error) {
	if h == nil {
		return nil, fmt.Errorf("boot: New: host must be non-nil")
	}
	if rep == nil {
		return nil, fmt.Errorf("boot: New: reporter must be non-nil")
	}
	if cfg.SharedRoot == "" || cfg.LocalRoot == "" {
		return nil, fmt.Errorf("boot: New: both root prefixes must be non-empty, got shared=%q local=%q", cfg.SharedRoot, cfg.LocalRoot)
	}

	return &Bootstrapper{
		host:      h,
		base:      env.NewBase(),
		libs:      loadorder.NewTable(),
		reporter:  rep,
		overrides: shim.NewOverrideTable(),
		cfg:       cfg,
	}, nil
}

// AddToEnvironment registers a binding in the shared base, visible to every
// environment created afterwards and, by reference, to ones created before.
func (b *Bootstrapper) AddToEnvironment(key string, value any) error {
	return b.base.Add(key, value)
}

// CreateEnvironment creates a fresh isolated scope for the given identity,
// seeded by reference from the shared base.
func (b *Bootstrapper) CreateEnvironment(identity string) (*env.Scope, error) {
	return b.base.NewScope(identity)
}

// SetLibraryPriority upserts the load priority for a library path.
// Re-registering a path updates its existing entry.
func (b *Bootstrapper) SetLibraryPriority(path string, priority float64) error {
	return b.libs.SetPriority(path, priority)
}

// Overrides exposes the hook override table so specialized hooks can replace
// add/remove/run behavior wholesale.
func (b *Bootstrapper) Overrides() *shim.OverrideTable {
	return b.overrides
}

// Reporter exposes the report sink, whose handler the embedder may replace.
func (b *Bootstrapper) Reporter() *report.Reporter {
	return b.reporter
}

// newShimScope creates the isolated scope for one module pass with the
// module's namespaced shims bound in.
func (b *Bootstrapper) newShimScope(id string) (*env.Scope, error) {
	scope, err := b.base.NewScope(id)
	if err != nil {
		return nil, err
	}

	set := shim.NewSet(id, b.host, b.reporter, b.overrides)
	scope.Set(KeyHook, set.Hooks)
	scope.Set(KeyTimer, set.Timers)
	scope.Set(KeyChannel, set.Channels)
	return scope, nil
}
