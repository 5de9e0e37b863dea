// Package ast defines the tagged-node AST produced by the parser and CFC
// ingestion, consumed by the index, constant evaluator, type annotator,
// lowerer, and validators.
package ast

import "github.com/gostc/stc/pkg/source"

// Node is the common capability every AST node provides: a stable identity
// and a source location. Every concrete node type embeds Base to satisfy
// this.
type Node interface {
	NodeId() Id
	Loc() source.Location
}

// Base is embedded by every concrete node to supply Node's identity and
// location bookkeeping.
type Base struct {
	Id       Id
	Location source.Location
}

// NodeId returns this node's stable identity.
func (b *Base) NodeId() Id { return b.Id }

// Loc returns this node's source location.
func (b *Base) Loc() source.Location { return b.Location }

// NewBase allocates a fresh node id and attaches the given location.
func NewBase(loc source.Location) Base {
	return Base{Id: NextId(), Location: loc}
}

// Expr is any AST node usable in expression position.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any AST node usable in statement position.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is any top-level or nested declaration.
type Decl interface {
	Node
	declNode()
}
