package annotate

import (
	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/index"
	"github.com/gostc/stc/pkg/types"
)

// --- Phase 2: hint propagation -----------------------------------------

func (a *Annotator) phase2Stmts(scope *index.Scope, stmts []ast.Stmt) {
	for _, s := range stmts {
		a.phase2Stmt(scope, s)
	}
}

func (a *Annotator) phase2Stmt(scope *index.Scope, s ast.Stmt) {
	switch st := s.(type) {
	case *ast.Assignment:
		a.hintAssignment(scope, st)
	case *ast.ExprStmt:
		a.phase2Expr(scope, st.Expr)
	case *ast.IfStmt:
		a.phase2Expr(scope, st.Cond)
		a.phase2Stmts(scope, st.Body)

		for _, ei := range st.ElseIfs {
			a.phase2Expr(scope, ei.Cond)
			a.phase2Stmts(scope, ei.Body)
		}

		a.phase2Stmts(scope, st.Else)
	case *ast.ForStmt:
		a.phase2Expr(scope, st.Start)
		a.phase2Expr(scope, st.End)

		if st.Step != nil {
			a.phase2Expr(scope, st.Step)
		}

		a.phase2Stmts(scope, st.Body)
	case *ast.WhileStmt:
		a.phase2Expr(scope, st.Cond)
		a.phase2Stmts(scope, st.Body)
	case *ast.RepeatStmt:
		a.phase2Stmts(scope, st.Body)
		a.phase2Expr(scope, st.Cond)
	case *ast.CaseStmt:
		a.phase2Expr(scope, st.Selector)

		for _, arm := range st.Arms {
			for _, lbl := range arm.Labels {
				a.phase2Expr(scope, lbl)
			}

			a.phase2Stmts(scope, arm.Body)
		}

		a.phase2Stmts(scope, st.Else)
	}
}

// hintAssignment gives the right-hand side the hint of the left-hand
// side's declared type. Output assignments (`p => v`) flow the same
// direction here: p is the callee's output parameter (already typed by
// phase one via the Call's argument handling) and v receives its type as a
// destination hint.
func (a *Annotator) hintAssignment(scope *index.Scope, st *ast.Assignment) {
	a.phase2Expr(scope, st.Left)
	a.phase2Expr(scope, st.Right)

	if t, ok := a.declared.Get(st.Left.NodeId()); ok {
		a.hint(st.Right, t)
	}
}

func (a *Annotator) hint(e ast.Expr, t types.Type) {
	if e == nil {
		return
	}

	a.hints.Put(e.NodeId(), t)
}

// phase2Expr recurses into e's subexpressions, assigning call-argument and
// binary-operand hints along the way.
func (a *Annotator) phase2Expr(scope *index.Scope, e ast.Expr) {
	if e == nil {
		return
	}

	switch ex := e.(type) {
	case *ast.MemberAccess:
		a.phase2Expr(scope, ex.Left)
	case *ast.ArrayAccess:
		a.phase2Expr(scope, ex.Left)

		for _, idx := range ex.Indices {
			a.phase2Expr(scope, idx)
		}
	case *ast.Deref:
		a.phase2Expr(scope, ex.Left)
	case *ast.Cast:
		a.phase2Expr(scope, ex.Operand)
	case *ast.UnaryOp:
		a.phase2Expr(scope, ex.Operand)
	case *ast.BinaryOp:
		a.phase2Expr(scope, ex.Left)
		a.phase2Expr(scope, ex.Right)

		result := types.GetBiggerType(a.typeOrAny(ex.Left), a.typeOrAny(ex.Right))
		a.hint(ex.Left, result)
		a.hint(ex.Right, result)
	case *ast.Range:
		a.phase2Expr(scope, ex.Low)
		a.phase2Expr(scope, ex.High)
	case *ast.ArrayLiteral:
		for _, el := range ex.Elements {
			a.phase2Expr(scope, el)
		}
	case *ast.DirectAccess:
		if ex.Anchor != nil {
			a.phase2Expr(scope, ex.Anchor)
		}
	case *ast.Call:
		a.hintCallArgs(scope, ex)
	}
}

func (a *Annotator) typeOrAny(e ast.Expr) types.Type {
	if e == nil {
		return types.AnyType{}
	}

	if t, ok := a.declared.Get(e.NodeId()); ok {
		return t
	}

	return types.AnyType{}
}

// hintCallArgs assigns each argument a hint from the callee's declared
// parameter list: positional arguments hint by declaration-order index,
// named arguments (`p := v` / `p => v`) hint by looking the parameter name
// up directly on the callee.
func (a *Annotator) hintCallArgs(scope *index.Scope, call *ast.Call) {
	name := calleeName(call.Callee)

	var entry *index.POUEntry

	if name != "" {
		entry = a.resolveCallee(scope, name)
	}

	positional := 0

	for _, arg := range call.Args {
		a.phase2Expr(scope, arg.Value)

		if entry == nil {
			continue
		}

		if arg.Name != "" {
			if member := a.ix.FindMember(entry.Name, arg.Name); member.HasValue() {
				a.hint(arg.Value, a.ix.FindEffectiveTypeInfo(member.Unwrap().TypeName))
			}

			continue
		}

		if param := a.ix.FindInputParameter(entry.Name, positional); param.HasValue() {
			a.hint(arg.Value, a.ix.FindEffectiveTypeInfo(param.Unwrap().TypeName))
		}

		positional++
	}
}
