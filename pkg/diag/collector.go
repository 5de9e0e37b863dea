package diag

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/gostc/stc/pkg/source"
)

// Collector accumulates diagnostics raised during a single pass without
// aborting it; the pass continues on a best-effort basis and the collected
// diagnostics are assessed and reported once the pass completes.
type Collector struct {
	diagnostics []*Diagnostic
}

// NewCollector constructs an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records a diagnostic.
func (c *Collector) Add(d *Diagnostic) {
	c.diagnostics = append(c.diagnostics, d)
}

// Addf builds and records a diagnostic at the given location in one call.
func (c *Collector) Addf(code string, loc source.Location, format string, args ...any) {
	c.diagnostics = append(c.diagnostics, New(code, fmt.Sprintf(format, args...)).At(loc))
}

// Diagnostics returns every diagnostic recorded so far, in insertion order.
func (c *Collector) Diagnostics() []*Diagnostic {
	return c.diagnostics
}

// HasErrors reports whether, under the given registry's severity
// assessment, any collected diagnostic is at Error severity.
func (c *Collector) HasErrors(r *Registry) bool {
	for _, d := range c.diagnostics {
		if r.Assess(d.Code) == Error {
			return true
		}
	}

	return false
}

// Err combines every collected diagnostic into a single multierr value, or
// nil if nothing was collected. Callers that only care whether the pass
// failed can treat the result as an ordinary error; callers that want the
// structured detail can recover it via multierr.Errors.
func (c *Collector) Err() error {
	var err error
	for _, d := range c.diagnostics {
		err = multierr.Append(err, d)
	}

	return err
}
