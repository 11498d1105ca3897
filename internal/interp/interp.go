// Package interp loads on-disk scripts through the yaegi interpreter. Each
// script is a Go source file defining Load(s *mainframe.Scope) any; every
// execution gets a brand-new interpreter so the declare and run passes of a
// module never share interpreter state.
package interp

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/vk/mainframe/internal/env"
	"github.com/vk/mainframe/internal/fsutil"
	"github.com/vk/mainframe/internal/script"
	"github.com/vk/mainframe/internal/shim"
)

// Extension is the file suffix recognized as a loadable script.
const Extension = ".go"

// Symbols is the `mainframe` package exposed to interpreted scripts.
var Symbols = interp.Exports{
	"mainframe/mainframe": {
		"Scope":       reflect.ValueOf((*env.Scope)(nil)),
		"Manifest":    reflect.ValueOf((*script.Manifest)(nil)),
		"Step":        reflect.ValueOf((*script.Step)(nil)),
		"StepDeclare": reflect.ValueOf(script.StepDeclare),
		"StepRun":     reflect.ValueOf(script.StepRun),
		"StepOf":      reflect.ValueOf(script.StepOf),
		"Hooks":       reflect.ValueOf((*shim.Hooks)(nil)),
		"Timers":      reflect.ValueOf((*shim.Timers)(nil)),
		"Channels":    reflect.ValueOf((*shim.Channels)(nil)),
		"Callback":    reflect.ValueOf((*shim.Callback)(nil)),
	},
}

// DirSource discovers scripts under a root directory. Identifiers are
// slash-normalized paths relative to the root with the extension stripped,
// so `<root>/mainframe/modules/radar.go` becomes `mainframe/modules/radar`.
type DirSource struct {
	root string
}

// NewDirSource creates a source rooted at the given directory.
func NewDirSource(root string) (*DirSource, error) {
	if root == "" {
		return nil, fmt.Errorf("interp: NewDirSource: root must be a non-empty string")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("interp: NewDirSource: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("interp: NewDirSource: %q is not a directory", root)
	}
	return &DirSource{root: root}, nil
}

// Scripts implements host.Source by walking the root for script files.
// Bodies are compiled lazily: the file is read at execution time so each
// pass sees the current contents.
func (s *DirSource) Scripts(ctx context.Context) (map[string]script.Body, error) {
	files, err := fsutil.FindFilesByExtension(s.root, Extension)
	if err != nil {
		return nil, fmt.Errorf("interp: script discovery failed: %w", err)
	}

	out := make(map[string]script.Body, len(files))
	for _, file := range files {
		id, err := fsutil.RelPathID(s.root, file, Extension)
		if err != nil {
			return nil, err
		}
		out[id] = bodyForFile(file)
	}
	return out, nil
}

// bodyForFile builds the executable body for one script file.
func bodyForFile(file string) script.Body {
	return func(ctx context.Context, scope *env.Scope) (any, error) {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("interp: reading script %q: %w", file, err)
		}
		return Eval(string(src), scope)
	}
}

// Eval interprets one script source against the given scope and returns the
// value of its Load function.
func Eval(src string, scope *env.Scope) (any, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("interp: loading stdlib symbols: %w", err)
	}
	if err := i.Use(Symbols); err != nil {
		return nil, fmt.Errorf("interp: loading mainframe symbols: %w", err)
	}

	if _, err := i.Eval(wrap(src)); err != nil {
		return nil, fmt.Errorf("interp: script evaluation failed: %w", err)
	}

	v, err := i.Eval("main.Load")
	if err != nil {
		return nil, fmt.Errorf("interp: script does not define Load: %w", err)
	}
	load, ok := v.Interface().(func(*env.Scope) any)
	if !ok {
		return nil, fmt.Errorf("interp: Load has signature %T, want func(*mainframe.Scope) any", v.Interface())
	}

	return load(scope), nil
}

// wrap puts bare snippets into package main so full files and fragments both
// evaluate.
func wrap(src string) string {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, "package ") {
		return src
	}
	return "package main\n\n" + src
}
