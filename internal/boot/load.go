package boot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/mainframe/internal/ctxlog"
	"github.com/vk/mainframe/internal/depgraph"
	"github.com/vk/mainframe/internal/report"
	"github.com/vk/mainframe/internal/script"
)

// Load runs both phases in order: libraries, then modules. There is no
// overlap; a library failure aborts before any module code runs.
func (b *Bootstrapper) Load(ctx context.Context) error {
	if err := b.LoadLibraries(ctx); err != nil {
		return err
	}
	return b.LoadModules(ctx)
}

// LoadLibraries discovers library scripts under both roots, merges shared
// and local variants per normalized path, orders them by priority and
// executes each chosen body against the shared global scope. Libraries
// establish the environment modules depend on, so a failure here is not
// caught; it aborts startup.
func (b *Bootstrapper) LoadLibraries(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Library phase starting.")

	scripts, err := b.host.Scripts(ctx)
	if err != nil {
		return fmt.Errorf("library discovery failed: %w", err)
	}

	for path, body := range scripts {
		if id, ok := stripPrefix(path, b.cfg.SharedRoot, libraryDir); ok {
			if err := b.libs.Register(id, script.Shared, body); err != nil {
				return err
			}
		}
		if id, ok := stripPrefix(path, b.cfg.LocalRoot, libraryDir); ok {
			if err := b.libs.Register(id, script.Local, body); err != nil {
				return err
			}
		}
	}

	ordered := b.libs.Ordered()
	logger.Debug("Library load order computed.", "count", len(ordered))

	global := b.base.GlobalScope()
	for _, entry := range ordered {
		logger.Debug("Loading library.", "path", entry.Path)
		if _, err := entry.Body()(ctx, global); err != nil {
			return fmt.Errorf("library %q failed to load: %w", entry.Path, err)
		}
	}

	logger.Info("Libraries loaded.", "count", len(ordered))
	return nil
}

// LoadModules discovers module scripts, runs the declare pass for each in an
// isolated scope, resolves the resulting dependency graph and runs every
// surviving module a second time in dependency order. Lifecycle hooks fire
// before the phase begins and after it fully completes.
func (b *Bootstrapper) LoadModules(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Module phase starting.")
	b.host.RunHook(HookPreModuleLoad)

	scripts, err := b.host.Scripts(ctx)
	if err != nil {
		return fmt.Errorf("module discovery failed: %w", err)
	}

	// Local-over-shared override happens at the identifier level: when a
	// local module exists, the shared one is dropped entirely, not merged.
	units := make(map[string]script.Body)
	for path, body := range scripts {
		if id, ok := stripPrefix(path, b.cfg.SharedRoot, moduleDir); ok {
			if _, taken := units[id]; !taken {
				units[id] = body
			}
		}
	}
	for path, body := range scripts {
		if id, ok := stripPrefix(path, b.cfg.LocalRoot, moduleDir); ok {
			units[id] = body
		}
	}
	logger.Debug("Modules discovered.", "count", len(units))

	deps, err := b.declareAll(ctx, units)
	if err != nil {
		return err
	}

	order, err := depgraph.Resolve(deps)
	if err != nil {
		return fmt.Errorf("error resolving module dependencies: %w", err)
	}
	logger.Debug("Module execution order resolved.", "order", order)

	for _, id := range order {
		body, ok := units[id]
		if !ok {
			// A dependency that names no known module orders as a
			// zero-dependency node; there is nothing to execute for it.
			continue
		}
		if _, declared := deps[id]; !declared {
			// Dropped during declare; it must not run.
			continue
		}

		scope, err := b.newShimScope(id)
		if err != nil {
			return err
		}
		scope.Set(script.KeyLoadStep, script.StepRun)

		logger.Debug("Running module.", "module", id)
		if _, err := body(ctx, scope); err != nil {
			// Modules are expected to be correct once declared; a run
			// failure propagates and halts the remaining run steps.
			return fmt.Errorf("module %q failed to run: %w", id, err)
		}
	}

	b.host.RunHook(HookPostModuleLoad)
	logger.Info("Modules loaded.", "count", len(deps))
	return nil
}

// declareAll executes every module body once in declare mode and collects
// the dependency graph. A declare body that fails is reported and dropped; a
// declare body that succeeds without returning a Manifest is a structurally
// malformed module and aborts the whole phase.
func (b *Bootstrapper) declareAll(ctx context.Context, units map[string]script.Body) (map[string][]string, error) {
	logger := ctxlog.FromContext(ctx)

	ids := make([]string, 0, len(units))
	for id := range units {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	deps := make(map[string][]string, len(units))
	for _, id := range ids {
		scope, err := b.newShimScope(id)
		if err != nil {
			return nil, err
		}
		scope.Set(script.KeyLoadStep, script.StepDeclare)

		body := units[id]
		result, err := report.CallValue(func() (any, error) { return body(ctx, scope) })
		if err != nil {
			// A module that cannot declare its dependencies cannot be
			// safely ordered. Report it and exclude it from the run pass.
			b.reporter.Report(fmt.Errorf("module %q failed to declare: %w", id, err))
			continue
		}

		manifest, ok := asManifest(result)
		if !ok {
			return nil, fmt.Errorf("module %q declare step returned %T, want script.Manifest", id, result)
		}

		if manifest.Dependencies == nil {
			deps[id] = []string{}
		} else {
			deps[id] = manifest.Dependencies
		}
		logger.Debug("Module declared.", "module", id, "dependencies", deps[id])
	}

	return deps, nil
}

// asManifest accepts the manifest by value or by pointer.
func asManifest(v any) (script.Manifest, bool) {
	switch m := v.(type) {
	case script.Manifest:
		return m, true
	case *script.Manifest:
		if m != nil {
			return *m, true
		}
	}
	return script.Manifest{}, false
}

// stripPrefix normalizes path against "<root>/<category>/", returning the
// unit identifier and whether the path belongs to that category.
func stripPrefix(path, root, category string) (string, bool) {
	prefix := root + "/" + category + "/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	id := strings.TrimPrefix(path, prefix)
	if id == "" {
		return "", false
	}
	return id, true
}
