// Package loadorder assembles discovered script bodies into load units and
// orders them by their registered priorities.
package loadorder

import (
	"fmt"
	"sort"

	"github.com/vk/mainframe/internal/script"
)

// Entry is one load unit keyed by its normalized path. A unit may carry a
// shared body, a local body, or both; the local body wins at execution time.
type Entry struct {
	Path       string
	Priority   *float64
	SharedBody script.Body
	LocalBody  script.Body

	// index remembers first-registration order so ties among equal or
	// absent priorities stay stable within a run.
	index int
}

// Body returns the executable body chosen for this entry: local over shared.
func (e *Entry) Body() script.Body {
	if e.LocalBody != nil {
		return e.LocalBody
	}
	return e.SharedBody
}

// Table is the load-order table owned by one bootstrapper instance. Repeated
// registrations of the same path update the existing entry rather than
// duplicating it.
type Table struct {
	entries map[string]*Entry
	next    int
}

// NewTable creates an empty load-order table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

func (t *Table) entry(path string) *Entry {
	e, ok := t.entries[path]
	if !ok {
		e = &Entry{Path: path, index: t.next}
		t.next++
		t.entries[path] = e
	}
	return e
}

// SetPriority upserts the priority for a path. The path does not need a body
// yet; priorities registered by configuration arrive before discovery runs.
func (t *Table) SetPriority(path string, priority float64) error {
	if path == "" {
		return fmt.Errorf("loadorder: SetPriority: path must be a non-empty string")
	}
	p := priority
	t.entry(path).Priority = &p
	return nil
}

// Register attaches a discovered body to the entry for path under the given
// variant. Registering the same path and variant twice keeps the latest body.
func (t *Table) Register(path string, variant script.Variant, body script.Body) error {
	if path == "" {
		return fmt.Errorf("loadorder: Register: path must be a non-empty string")
	}
	if body == nil {
		return fmt.Errorf("loadorder: Register: body must be non-nil for path %q", path)
	}

	e := t.entry(path)
	switch variant {
	case script.Local:
		e.LocalBody = body
	case script.Shared:
		e.SharedBody = body
	default:
		return fmt.Errorf("loadorder: Register: unknown variant %d for path %q", variant, path)
	}
	return nil
}

// Len reports the number of distinct entries in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Ordered returns every entry that has at least one body, sorted descending
// by priority. Entries without a priority sort after every prioritized
// entry. Equal priorities, and the unprioritized tail, keep registration
// order; the weak ordering of the comparison is deliberate and the stable
// sort is what pins the result down.
func (t *Table) Ordered() []*Entry {
	out := make([]*Entry, 0, len(t.entries))
	for _, e := range t.entries {
		if e.SharedBody != nil || e.LocalBody != nil {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		// Pre-sort by registration index so map iteration order cannot leak
		// into the stable sort's notion of "original order".
		return out[i].index < out[j].index
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Priority, out[j].Priority
		if a == nil {
			return false // Unprioritized never sorts before anything.
		}
		if b == nil {
			return true // Prioritized always sorts before unprioritized.
		}
		return *a > *b
	})

	return out
}
