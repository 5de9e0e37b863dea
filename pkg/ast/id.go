package ast

import "go.uber.org/atomic"

// Id uniquely and stably identifies an AST node across every pass:
// annotation maps, the source map, and lowering's synthesized-node
// tracking are all keyed on it.
type Id uint64

var idCounter atomic.Uint64

// NextId issues a fresh, process-wide unique node id. Backed by an atomic
// counter so parallel parsing of independent files (§5) never collides.
func NextId() Id {
	return Id(idCounter.Inc())
}

// ResetIds is exposed only for tests that want deterministic ids across
// independent runs.
func ResetIds() {
	idCounter.Store(0)
}
