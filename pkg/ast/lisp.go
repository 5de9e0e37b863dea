package ast

import (
	"fmt"

	"github.com/gostc/stc/pkg/sexp"
)

// Lisp renders an expression as an S-Expression, for debug dumps and
// fixture-based tests that compare a parse against an expected textual
// form, in the teacher's own Lisp()-dump idiom.
func Lisp(e Expr) sexp.SExp {
	switch n := e.(type) {
	case *Literal:
		return &sexp.Symbol{Value: n.Text}
	case *Ident:
		return &sexp.Symbol{Value: n.Name}
	case *MemberAccess:
		return &sexp.List{Elements: []sexp.SExp{&sexp.Symbol{Value: "."}, Lisp(n.Left), &sexp.Symbol{Value: n.Name}}}
	case *ArrayAccess:
		elems := []sexp.SExp{&sexp.Symbol{Value: "[]"}, Lisp(n.Left)}
		for _, i := range n.Indices {
			elems = append(elems, Lisp(i))
		}

		return &sexp.List{Elements: elems}
	case *Deref:
		return &sexp.List{Elements: []sexp.SExp{&sexp.Symbol{Value: "^"}, Lisp(n.Left)}}
	case *Cast:
		return &sexp.List{Elements: []sexp.SExp{&sexp.Symbol{Value: "#"}, &sexp.Symbol{Value: n.TypeName}, Lisp(n.Operand)}}
	case *UnaryOp:
		return &sexp.List{Elements: []sexp.SExp{&sexp.Symbol{Value: n.Op}, Lisp(n.Operand)}}
	case *BinaryOp:
		return &sexp.List{Elements: []sexp.SExp{&sexp.Symbol{Value: n.Op}, Lisp(n.Left), Lisp(n.Right)}}
	case *Range:
		return &sexp.List{Elements: []sexp.SExp{&sexp.Symbol{Value: ".."}, Lisp(n.Low), Lisp(n.High)}}
	case *Call:
		elems := []sexp.SExp{Lisp(n.Callee)}
		for _, a := range n.Args {
			elems = append(elems, Lisp(a.Value))
		}

		return &sexp.List{Elements: elems}
	case *DefaultValue:
		return &sexp.Symbol{Value: "_"}
	default:
		return &sexp.Symbol{Value: fmt.Sprintf("<%T>", e)}
	}
}
