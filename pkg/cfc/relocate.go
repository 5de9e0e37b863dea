package cfc

import (
	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/source"
)

// relocate overwrites the SourceLocation of every node in e's subtree with
// loc, discarding the textual range the fragment parser assigned against
// the throwaway per-pin source file. Parsed structure is kept; only the
// locations become the owning diagram node's, per the block-location form
// diagrams use instead of text ranges.
func relocate(e ast.Expr, loc source.Location) {
	if e == nil {
		return
	}

	switch n := e.(type) {
	case *ast.Literal:
		n.Location = loc
	case *ast.ArrayLiteral:
		n.Location = loc
		for _, el := range n.Elements {
			relocate(el, loc)
		}
	case *ast.Ident:
		n.Location = loc
	case *ast.MemberAccess:
		n.Location = loc
		relocate(n.Left, loc)
	case *ast.ArrayAccess:
		n.Location = loc
		relocate(n.Left, loc)
		for _, idx := range n.Indices {
			relocate(idx, loc)
		}
	case *ast.Deref:
		n.Location = loc
		relocate(n.Left, loc)
	case *ast.Cast:
		n.Location = loc
		relocate(n.Operand, loc)
	case *ast.DirectAccess:
		n.Location = loc
		if n.Anchor != nil {
			relocate(n.Anchor, loc)
		}
	case *ast.UnaryOp:
		n.Location = loc
		relocate(n.Operand, loc)
	case *ast.BinaryOp:
		n.Location = loc
		relocate(n.Left, loc)
		relocate(n.Right, loc)
	case *ast.Range:
		n.Location = loc
		relocate(n.Low, loc)
		relocate(n.High, loc)
	case *ast.Call:
		n.Location = loc
		relocate(n.Callee, loc)
		for _, a := range n.Args {
			relocate(a.Value, loc)
		}
	case *ast.DefaultValue:
		n.Location = loc
	}
}
