// Package depgraph computes the execution order for module loading from the
// dependency lists gathered during the declare pass.
package depgraph

import (
	"fmt"
	"sort"
)

// CycleError is returned when the dependency mapping is not acyclic. Node is
// the identifier at which the cycle was detected.
type CycleError struct {
	Node string
}

// Error implements the error interface for CycleError.
func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected involving module '%s'", e.Node)
}

// Resolve performs a depth-first topological sort of the dependency mapping.
// Every identifier in deps appears in the result exactly once, strictly after
// all of its listed dependencies. A dependency with no entry of its own is
// treated as having zero dependencies, not as an error, and is included in
// the result so callers can decide what to do with it.
//
// On the first cycle found, Resolve aborts and returns a CycleError with no
// partial ordering.
func Resolve(deps map[string][]string) ([]string, error) {
	// Classic depth-first search with three node states:
	// visited: fully processed and already appended to the result.
	// visiting: currently on the recursion stack.
	// anything else: not reached yet.
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	order := make([]string, 0, len(deps))

	var visit func(id string) error
	visit = func(id string) error {
		if visited[id] {
			return nil // Diamond dependency, already resolved.
		}
		if visiting[id] {
			// The node is on our own recursion stack, so we have a cycle.
			return &CycleError{Node: id}
		}

		visiting[id] = true
		for _, dep := range deps[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		delete(visiting, id)
		visited[id] = true

		// Post-order append: every dependency of id is already in the slice.
		order = append(order, id)
		return nil
	}

	// Pick traversal roots in sorted order so independent subgraphs come out
	// the same way on every run. Only dependency-before-dependent ordering is
	// a correctness requirement.
	roots := make([]string, 0, len(deps))
	for id := range deps {
		roots = append(roots, id)
	}
	sort.Strings(roots)

	for _, id := range roots {
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	return order, nil
}
