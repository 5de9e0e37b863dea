// Package diag implements the compiler's diagnostics catalog: a fixed table
// of error codes with default severities and descriptions, overridable via a
// user-supplied JSON configuration, plus the per-pass diagnostic value type
// and collector used throughout the pipeline.
package diag

import (
	"fmt"

	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"

	"github.com/gostc/stc/pkg/source"
)

// Entry is one row of the diagnostics catalog: a code, its default
// severity, and a human-readable description.
type Entry struct {
	Code        string
	Severity    Severity
	Description string
}

// Registry is the process-wide catalog of known diagnostic codes. It is
// immutable after construction (WithConfiguration returns a new value).
type Registry struct {
	entries map[string]Entry
	log     *logrus.Logger
}

// NewRegistry constructs a registry pre-populated with the built-in catalog
// (§4.B / E001-E124). A nil logger falls back to logrus's standard logger.
func NewRegistry(log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}

	entries := make(map[string]Entry, len(catalog))
	for _, e := range catalog {
		entries[e.Code] = e
	}

	return &Registry{entries: entries, log: log}
}

// WithConfiguration returns a new registry with the given severity
// overrides applied on top of the built-in defaults.
func (r *Registry) WithConfiguration(cfg Configuration) *Registry {
	entries := make(map[string]Entry, len(r.entries))
	for k, v := range r.entries {
		entries[k] = v
	}

	for severity, codes := range cfg {
		for _, code := range codes {
			if e, ok := entries[code]; ok {
				e.Severity = severity
				entries[code] = e
			} else {
				r.log.WithFields(logrus.Fields{"code": code}).Warn("configuration overrides unknown diagnostic code")
			}
		}
	}

	return &Registry{entries: entries, log: r.log}
}

// Assess returns the severity a diagnostic with the given error code should
// be treated at: the configured override if present, otherwise the
// catalog's default, logging a warning and falling back to Error for
// entirely unrecognized codes.
func (r *Registry) Assess(code string) Severity {
	if e, ok := r.entries[code]; ok {
		return e.Severity
	}

	r.log.WithFields(logrus.Fields{"code": code}).Warn("unrecognized error code, using default severity")

	return Error
}

// Explain returns the catalog description for an error code.
func (r *Registry) Explain(code string) string {
	if e, ok := r.entries[code]; ok {
		return fmt.Sprintf("Explanation for error %s:\n%s\n", code, e.Description)
	}

	return fmt.Sprintf("Unknown error %s", code)
}

// Configuration is the JSON-round-trippable severity override map:
// severity keyword -> list of error codes assessed at that severity.
type Configuration map[Severity][]string

// MarshalJSON renders the configuration using the lowercase severity
// keywords as object keys, via the fast segmentio JSON codec.
func (c Configuration) MarshalJSON() ([]byte, error) {
	raw := make(map[string][]string, len(c))
	for sev, codes := range c {
		raw[sev.String()] = codes
	}

	return json.Marshal(raw)
}

// UnmarshalJSON parses a {"error":[...], "warning":[...], ...} document.
// Unknown keys are rejected; an empty document yields an empty
// configuration (all codes use their catalog defaults).
func (c *Configuration) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Configuration, len(raw))

	for key, codes := range raw {
		sev, ok := ParseSeverity(key)
		if !ok {
			return fmt.Errorf("diag: unknown severity key %q in configuration", key)
		}

		out[sev] = codes
	}

	*c = out

	return nil
}

// GetDiagnosticConfiguration reconstructs the configuration document
// implied by the registry's current (possibly overridden) severities.
func (r *Registry) GetDiagnosticConfiguration() Configuration {
	cfg := make(Configuration)
	for _, e := range r.entries {
		cfg[e.Severity] = append(cfg[e.Severity], e.Code)
	}

	return cfg
}

// Diagnostic is a single reported problem: an error code, a message, the
// source location it concerns, and (for interior convenience) any extra
// related locations.
type Diagnostic struct {
	Code     string
	Message  string
	Location source.Location
	Related  []source.Location
}

// Error implements the error interface so a Diagnostic can be threaded
// through ordinary Go error handling.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Code, d.Message)
}

// New constructs a diagnostic with no location (callers attach one via
// At, mirroring the common "build message, then position it" construction
// order seen throughout the pipeline's passes).
func New(code, message string) *Diagnostic {
	return &Diagnostic{Code: code, Message: message}
}

// At returns a copy of the diagnostic positioned at the given location.
func (d *Diagnostic) At(loc source.Location) *Diagnostic {
	cp := *d
	cp.Location = loc

	return &cp
}
