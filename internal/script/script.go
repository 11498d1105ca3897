// Package script defines the loadable-unit model shared by the discovery
// sources and the bootstrapper.
package script

import (
	"context"

	"github.com/vk/mainframe/internal/env"
)

// Step identifies which of the two module execution passes a body is being
// invoked for. It is bound into the module's scope under KeyLoadStep.
type Step string

const (
	// StepDeclare is the first pass; its only required effect is returning
	// a Manifest.
	StepDeclare Step = "declare"
	// StepRun is the second pass, executed in dependency order.
	StepRun Step = "run"
)

// KeyLoadStep is the scope binding carrying the current Step.
const KeyLoadStep = "loadStep"

// Body is the executable form of a discovered script. Libraries run it once
// against the shared global scope; modules run it twice against fresh
// isolated scopes.
type Body func(ctx context.Context, scope *env.Scope) (any, error)

// Manifest is the value a module body must return from its declare pass.
type Manifest struct {
	// Dependencies lists the normalized identifiers of modules that must
	// run before this one. Empty means no ordering constraint.
	Dependencies []string
}

// Variant tells the load-order table which category a registered body came
// from. Local bodies shadow shared ones for the same identifier.
type Variant int

const (
	Shared Variant = iota
	Local
)

// StepOf reads the current load step from a scope. Absent or mistyped
// bindings report StepRun so that plain library bodies need no awareness of
// the two-pass protocol.
func StepOf(scope *env.Scope) Step {
	v, ok := scope.Get(KeyLoadStep)
	if !ok {
		return StepRun
	}
	if s, ok := v.(Step); ok {
		return s
	}
	return StepRun
}
