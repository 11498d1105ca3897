// Package report is the single error-reporting sink of the loader. Failures
// that are contained rather than fatal (a module that cannot declare itself,
// a callback that blew up) all funnel through one Reporter whose handler can
// be swapped out by the embedding process.
package report

import (
	"fmt"
	"log/slog"
	"sync"
)

// Handler receives a contained failure, surfaces it somewhere useful, and
// returns it unchanged so callers can keep threading the same error value.
type Handler func(err error) error

// Reporter owns the current handler. The zero value is not usable; construct
// with New.
type Reporter struct {
	mutex   sync.RWMutex
	handler Handler
}

// New creates a Reporter whose default handler surfaces failures through the
// given logger and returns them unchanged.
func New(logger *slog.Logger) *Reporter {
	return &Reporter{
		handler: func(err error) error {
			logger.Error("script error", "error", err)
			return err
		},
	}
}

// Replace swaps the handler wholesale. Passing nil restores nothing and is
// rejected so a misconfigured embedder cannot silence reporting entirely.
func (r *Reporter) Replace(h Handler) error {
	if h == nil {
		return fmt.Errorf("report: Replace: handler must be non-nil")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.handler = h
	return nil
}

// Report forwards err to the current handler. Nil errors are ignored.
func (r *Reporter) Report(err error) error {
	if err == nil {
		return nil
	}
	r.mutex.RLock()
	h := r.handler
	r.mutex.RUnlock()
	return h(err)
}

// Call runs fn inside a guard that converts panics into ordinary errors.
// Every shim boundary and the module declare pass invoke bodies through it.
func Call(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("recovered panic: %v", rec)
		}
	}()
	return fn()
}

// CallValue is Call for functions that also produce a value.
func CallValue(fn func() (any, error)) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v = nil
			err = fmt.Errorf("recovered panic: %v", rec)
		}
	}()
	return fn()
}
