// Package consteval folds initializer and array-bound expressions recorded
// in the index's constant arena into frozen values, iterating to a fixed
// point so a constant may reference another constant declared later in
// source order (or in a different file merged into the same index).
package consteval

import (
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/index"
	"github.com/gostc/stc/pkg/util"
)

// maxIterations bounds the fixed-point loop: resolution either converges
// well before this or the circuit contains a genuine cycle.
const maxIterations = 32

// Evaluate folds every constant expression registered in ix, reporting
// E123 for an unfoldable expression (unsupported form, division by zero)
// and, with an "unresolvable constant expression" message, also E123 for
// anything still incomplete once the loop stops.
func Evaluate(ix *index.Index, diags *diag.Collector) {
	entries := ix.AllConstExprs()
	if len(entries) == 0 {
		return
	}

	completed := bitset.New(uint(len(entries)))
	failed := bitset.New(uint(len(entries)))

	for iteration := 0; iteration < maxIterations; iteration++ {
		changed := false

		for i, c := range entries {
			idx := uint(i)
			if completed.Test(idx) || failed.Test(idx) {
				continue
			}

			value, ready, err := foldExpr(ix, c.Scope, c.Expr)

			switch {
			case err != "":
				diags.Addf("E123", c.Expr.Loc(), "%s", err)

				failed.Set(idx)
				changed = true
			case ready:
				c.Folded = util.Some(value)
				completed.Set(idx)
				changed = true
			}
		}

		if !changed {
			break
		}

		if completed.Count()+failed.Count() == uint(len(entries)) {
			break
		}
	}

	for i, c := range entries {
		idx := uint(i)
		if !completed.Test(idx) && !failed.Test(idx) {
			diags.Addf("E123", c.Expr.Loc(), "unresolvable constant expression (dependency cycle or missing definition)")
		}
	}
}

// foldExpr attempts to reduce expr to a FoldedValue. ready is false (with
// err == "") when evaluation is blocked on another constant that has not
// folded yet this iteration; err is non-empty for a form that can never
// fold (unsupported construct, division by zero).
func foldExpr(ix *index.Index, scope string, expr ast.Expr) (value index.FoldedValue, ready bool, err string) {
	switch e := expr.(type) {
	case *ast.Literal:
		return foldLiteral(e)
	case *ast.UnaryOp:
		operand, ready, err := foldExpr(ix, scope, e.Operand)
		if err != "" || !ready {
			return index.FoldedValue{}, ready, err
		}

		return foldUnary(e.Op, operand)
	case *ast.BinaryOp:
		left, readyL, errL := foldExpr(ix, scope, e.Left)
		if errL != "" {
			return index.FoldedValue{}, false, errL
		}

		right, readyR, errR := foldExpr(ix, scope, e.Right)
		if errR != "" {
			return index.FoldedValue{}, false, errR
		}

		if !readyL || !readyR {
			return index.FoldedValue{}, false, ""
		}

		return foldBinary(e.Op, left, right)
	case *ast.Ident:
		return foldIdent(ix, scope, e.Name)
	default:
		return index.FoldedValue{}, false, "expression is not a compile-time constant"
	}
}

func foldLiteral(lit *ast.Literal) (index.FoldedValue, bool, string) {
	switch lit.Kind {
	case ast.LitInt:
		return index.FoldedValue{Kind: index.FoldedInt, Int: lit.Int}, true, ""
	case ast.LitReal:
		return index.FoldedValue{Kind: index.FoldedReal, Real: lit.Real}, true, ""
	case ast.LitBool:
		return index.FoldedValue{Kind: index.FoldedBool, Bool: lit.Bool}, true, ""
	case ast.LitString, ast.LitWideString:
		return index.FoldedValue{Kind: index.FoldedString, Str: lit.Str}, true, ""
	default:
		return index.FoldedValue{}, false, "literal form has no compile-time constant representation"
	}
}

func foldIdent(ix *index.Index, scope, name string) (index.FoldedValue, bool, string) {
	var entry *index.VariableEntry

	if scope != "" {
		if v := ix.FindMember(scope, name); v.HasValue() {
			entry = v.Unwrap()
		}
	}

	if entry == nil {
		if v := ix.FindGlobal(name); v.HasValue() {
			entry = v.Unwrap()
		}
	}

	if entry == nil {
		return index.FoldedValue{}, false, "reference to undeclared identifier " + strconv.Quote(name) + " in constant expression"
	}

	if !entry.Constant && entry.Role != index.RoleGlobal {
		return index.FoldedValue{}, false, "identifier " + strconv.Quote(name) + " is not a compile-time constant"
	}

	c, ok := ix.ConstExpr(entry.InitConstID)
	if !ok {
		return index.FoldedValue{}, false, "identifier " + strconv.Quote(name) + " has no initializer"
	}

	if c.Folded.IsEmpty() {
		return index.FoldedValue{}, false, ""
	}

	return c.Folded.Unwrap(), true, ""
}

func foldUnary(op string, v index.FoldedValue) (index.FoldedValue, bool, string) {
	switch strings.ToUpper(op) {
	case "-":
		switch v.Kind {
		case index.FoldedInt:
			return index.FoldedValue{Kind: index.FoldedInt, Int: -v.Int}, true, ""
		case index.FoldedReal:
			return index.FoldedValue{Kind: index.FoldedReal, Real: -v.Real}, true, ""
		default:
			return index.FoldedValue{}, false, "unary '-' applied to a non-numeric constant"
		}
	case "NOT":
		if v.Kind != index.FoldedBool {
			return index.FoldedValue{}, false, "NOT applied to a non-boolean constant"
		}

		return index.FoldedValue{Kind: index.FoldedBool, Bool: !v.Bool}, true, ""
	default:
		return index.FoldedValue{}, false, "unsupported unary operator " + op
	}
}

func foldBinary(op string, left, right index.FoldedValue) (index.FoldedValue, bool, string) {
	switch strings.ToUpper(op) {
	case "AND":
		return foldBoolOp(left, right, func(a, b bool) bool { return a && b })
	case "OR":
		return foldBoolOp(left, right, func(a, b bool) bool { return a || b })
	case "XOR":
		return foldBoolOp(left, right, func(a, b bool) bool { return a != b })
	case "=", "<>", "<", ">", "<=", ">=":
		return foldComparison(op, left, right)
	case "+", "-", "*", "/", "MOD", "**":
		return foldArithmetic(op, left, right)
	default:
		return index.FoldedValue{}, false, "unsupported binary operator " + op
	}
}

func foldBoolOp(left, right index.FoldedValue, f func(a, b bool) bool) (index.FoldedValue, bool, string) {
	if left.Kind != index.FoldedBool || right.Kind != index.FoldedBool {
		return index.FoldedValue{}, false, "boolean operator applied to a non-boolean constant"
	}

	return index.FoldedValue{Kind: index.FoldedBool, Bool: f(left.Bool, right.Bool)}, true, ""
}

func foldComparison(op string, left, right index.FoldedValue) (index.FoldedValue, bool, string) {
	a, b, ok := asReal(left), asReal(right), isNumeric(left) && isNumeric(right)
	if !ok {
		if left.Kind == index.FoldedString && right.Kind == index.FoldedString {
			result := compareOp(op, strings.Compare(left.Str, right.Str))
			return index.FoldedValue{Kind: index.FoldedBool, Bool: result}, true, ""
		}

		return index.FoldedValue{}, false, "comparison applied to incompatible constant kinds"
	}

	var cmp int

	switch {
	case a < b:
		cmp = -1
	case a > b:
		cmp = 1
	}

	return index.FoldedValue{Kind: index.FoldedBool, Bool: compareOp(op, cmp)}, true, ""
}

func compareOp(op string, cmp int) bool {
	switch op {
	case "=":
		return cmp == 0
	case "<>":
		return cmp != 0
	case "<":
		return cmp < 0
	case ">":
		return cmp > 0
	case "<=":
		return cmp <= 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}

func isNumeric(v index.FoldedValue) bool {
	return v.Kind == index.FoldedInt || v.Kind == index.FoldedReal
}

func asReal(v index.FoldedValue) float64 {
	if v.Kind == index.FoldedInt {
		return float64(v.Int)
	}

	return v.Real
}

func foldArithmetic(op string, left, right index.FoldedValue) (index.FoldedValue, bool, string) {
	if !isNumeric(left) || !isNumeric(right) {
		return index.FoldedValue{}, false, "arithmetic operator applied to a non-numeric constant"
	}

	if left.Kind == index.FoldedInt && right.Kind == index.FoldedInt {
		return foldIntArithmetic(op, left.Int, right.Int)
	}

	return foldRealArithmetic(op, asReal(left), asReal(right))
}

func foldIntArithmetic(op string, a, b int64) (index.FoldedValue, bool, string) {
	switch op {
	case "+":
		return index.FoldedValue{Kind: index.FoldedInt, Int: a + b}, true, ""
	case "-":
		return index.FoldedValue{Kind: index.FoldedInt, Int: a - b}, true, ""
	case "*":
		return index.FoldedValue{Kind: index.FoldedInt, Int: a * b}, true, ""
	case "/":
		if b == 0 {
			return index.FoldedValue{}, false, "division by zero in constant expression"
		}

		return index.FoldedValue{Kind: index.FoldedInt, Int: a / b}, true, ""
	case "MOD":
		if b == 0 {
			return index.FoldedValue{}, false, "division by zero in constant expression"
		}

		return index.FoldedValue{Kind: index.FoldedInt, Int: a % b}, true, ""
	case "**":
		return index.FoldedValue{Kind: index.FoldedInt, Int: intPow(a, b)}, true, ""
	default:
		return index.FoldedValue{}, false, "unsupported arithmetic operator " + op
	}
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}

	result := int64(1)
	for i := int64(0); i < exp; i++ {
		result *= base
	}

	return result
}

func foldRealArithmetic(op string, a, b float64) (index.FoldedValue, bool, string) {
	switch op {
	case "+":
		return index.FoldedValue{Kind: index.FoldedReal, Real: a + b}, true, ""
	case "-":
		return index.FoldedValue{Kind: index.FoldedReal, Real: a - b}, true, ""
	case "*":
		return index.FoldedValue{Kind: index.FoldedReal, Real: a * b}, true, ""
	case "/":
		if b == 0 {
			return index.FoldedValue{}, false, "division by zero in constant expression"
		}

		return index.FoldedValue{Kind: index.FoldedReal, Real: a / b}, true, ""
	default:
		return index.FoldedValue{}, false, "unsupported arithmetic operator " + op
	}
}
