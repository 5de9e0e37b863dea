package ast

// Visitor is the read-only walk capability over expressions and
// statements. BaseVisitor supplies a default per-handler implementation
// that recurses into children; embedders override only the variants they
// care about, matching the teacher's dispatch-with-default idiom
// generalized from a single Lisp()-style method to a full double-dispatch
// visitor.
type Visitor interface {
	VisitLiteral(*Literal)
	VisitArrayLiteral(*ArrayLiteral)
	VisitIdent(*Ident)
	VisitMemberAccess(*MemberAccess)
	VisitArrayAccess(*ArrayAccess)
	VisitDeref(*Deref)
	VisitCast(*Cast)
	VisitDirectAccess(*DirectAccess)
	VisitUnaryOp(*UnaryOp)
	VisitBinaryOp(*BinaryOp)
	VisitRange(*Range)
	VisitCall(*Call)
	VisitDefaultValue(*DefaultValue)
	VisitAssignment(*Assignment)
	VisitExprStmt(*ExprStmt)
	VisitIfStmt(*IfStmt)
	VisitForStmt(*ForStmt)
	VisitWhileStmt(*WhileStmt)
	VisitRepeatStmt(*RepeatStmt)
	VisitCaseStmt(*CaseStmt)
	VisitExitStmt(*ExitStmt)
	VisitContinueStmt(*ContinueStmt)
	VisitReturnStmt(*ReturnStmt)
	VisitJumpStmt(*JumpStmt)
	VisitLabelStmt(*LabelStmt)
}

// BaseVisitor implements Visitor with a walk-children default for every
// handler. Embed it and override the handlers you need.
type BaseVisitor struct {
	Self Visitor // set to the embedding visitor so overrides are honored during recursion
}

// self returns the effective visitor to recurse through: the embedder if
// set, otherwise the BaseVisitor itself.
func (v *BaseVisitor) self() Visitor {
	if v.Self != nil {
		return v.Self
	}

	return v
}

// VisitLiteral is a leaf; the default does nothing further.
func (v *BaseVisitor) VisitLiteral(*Literal) {}

// VisitArrayLiteral walks each element.
func (v *BaseVisitor) VisitArrayLiteral(n *ArrayLiteral) {
	for _, e := range n.Elements {
		VisitExpr(v.self(), e)
	}
}

// VisitIdent is a leaf.
func (v *BaseVisitor) VisitIdent(*Ident) {}

// VisitMemberAccess walks the left operand.
func (v *BaseVisitor) VisitMemberAccess(n *MemberAccess) { VisitExpr(v.self(), n.Left) }

// VisitArrayAccess walks the left operand and each index.
func (v *BaseVisitor) VisitArrayAccess(n *ArrayAccess) {
	VisitExpr(v.self(), n.Left)

	for _, idx := range n.Indices {
		VisitExpr(v.self(), idx)
	}
}

// VisitDeref walks the left operand.
func (v *BaseVisitor) VisitDeref(n *Deref) { VisitExpr(v.self(), n.Left) }

// VisitCast walks the operand.
func (v *BaseVisitor) VisitCast(n *Cast) { VisitExpr(v.self(), n.Operand) }

// VisitDirectAccess walks the anchor expression, if any.
func (v *BaseVisitor) VisitDirectAccess(n *DirectAccess) {
	if n.Anchor != nil {
		VisitExpr(v.self(), n.Anchor)
	}
}

// VisitUnaryOp walks the operand.
func (v *BaseVisitor) VisitUnaryOp(n *UnaryOp) { VisitExpr(v.self(), n.Operand) }

// VisitBinaryOp walks both operands.
func (v *BaseVisitor) VisitBinaryOp(n *BinaryOp) {
	VisitExpr(v.self(), n.Left)
	VisitExpr(v.self(), n.Right)
}

// VisitRange walks both endpoints.
func (v *BaseVisitor) VisitRange(n *Range) {
	VisitExpr(v.self(), n.Low)
	VisitExpr(v.self(), n.High)
}

// VisitCall walks the callee and each argument value.
func (v *BaseVisitor) VisitCall(n *Call) {
	VisitExpr(v.self(), n.Callee)

	for _, a := range n.Args {
		VisitExpr(v.self(), a.Value)
	}
}

// VisitDefaultValue is a leaf.
func (v *BaseVisitor) VisitDefaultValue(*DefaultValue) {}

// VisitAssignment walks both sides.
func (v *BaseVisitor) VisitAssignment(n *Assignment) {
	VisitExpr(v.self(), n.Left)
	VisitExpr(v.self(), n.Right)
}

// VisitExprStmt walks the wrapped expression.
func (v *BaseVisitor) VisitExprStmt(n *ExprStmt) { VisitExpr(v.self(), n.Expr) }

// VisitIfStmt walks condition, body, elsif arms, and else body.
func (v *BaseVisitor) VisitIfStmt(n *IfStmt) {
	VisitExpr(v.self(), n.Cond)
	VisitStmts(v.self(), n.Body)

	for _, e := range n.ElseIfs {
		VisitExpr(v.self(), e.Cond)
		VisitStmts(v.self(), e.Body)
	}

	VisitStmts(v.self(), n.Else)
}

// VisitForStmt walks the bounds and body.
func (v *BaseVisitor) VisitForStmt(n *ForStmt) {
	VisitExpr(v.self(), n.Start)
	VisitExpr(v.self(), n.End)

	if n.Step != nil {
		VisitExpr(v.self(), n.Step)
	}

	VisitStmts(v.self(), n.Body)
}

// VisitWhileStmt walks condition and body.
func (v *BaseVisitor) VisitWhileStmt(n *WhileStmt) {
	VisitExpr(v.self(), n.Cond)
	VisitStmts(v.self(), n.Body)
}

// VisitRepeatStmt walks body and condition.
func (v *BaseVisitor) VisitRepeatStmt(n *RepeatStmt) {
	VisitStmts(v.self(), n.Body)
	VisitExpr(v.self(), n.Cond)
}

// VisitCaseStmt walks the selector, each arm's labels and body, and the
// else body.
func (v *BaseVisitor) VisitCaseStmt(n *CaseStmt) {
	VisitExpr(v.self(), n.Selector)

	for _, arm := range n.Arms {
		for _, l := range arm.Labels {
			VisitExpr(v.self(), l)
		}

		VisitStmts(v.self(), arm.Body)
	}

	VisitStmts(v.self(), n.Else)
}

// VisitExitStmt is a leaf.
func (v *BaseVisitor) VisitExitStmt(*ExitStmt) {}

// VisitContinueStmt is a leaf.
func (v *BaseVisitor) VisitContinueStmt(*ContinueStmt) {}

// VisitReturnStmt is a leaf.
func (v *BaseVisitor) VisitReturnStmt(*ReturnStmt) {}

// VisitJumpStmt is a leaf.
func (v *BaseVisitor) VisitJumpStmt(*JumpStmt) {}

// VisitLabelStmt is a leaf.
func (v *BaseVisitor) VisitLabelStmt(*LabelStmt) {}

// VisitExpr dispatches a single expression node to the matching visitor
// handler.
func VisitExpr(v Visitor, e Expr) {
	switch n := e.(type) {
	case *Literal:
		v.VisitLiteral(n)
	case *ArrayLiteral:
		v.VisitArrayLiteral(n)
	case *Ident:
		v.VisitIdent(n)
	case *MemberAccess:
		v.VisitMemberAccess(n)
	case *ArrayAccess:
		v.VisitArrayAccess(n)
	case *Deref:
		v.VisitDeref(n)
	case *Cast:
		v.VisitCast(n)
	case *DirectAccess:
		v.VisitDirectAccess(n)
	case *UnaryOp:
		v.VisitUnaryOp(n)
	case *BinaryOp:
		v.VisitBinaryOp(n)
	case *Range:
		v.VisitRange(n)
	case *Call:
		v.VisitCall(n)
	case *DefaultValue:
		v.VisitDefaultValue(n)
	}
}

// VisitStmt dispatches a single statement node to the matching visitor
// handler.
func VisitStmt(v Visitor, s Stmt) {
	switch n := s.(type) {
	case *Assignment:
		v.VisitAssignment(n)
	case *ExprStmt:
		v.VisitExprStmt(n)
	case *IfStmt:
		v.VisitIfStmt(n)
	case *ForStmt:
		v.VisitForStmt(n)
	case *WhileStmt:
		v.VisitWhileStmt(n)
	case *RepeatStmt:
		v.VisitRepeatStmt(n)
	case *CaseStmt:
		v.VisitCaseStmt(n)
	case *ExitStmt:
		v.VisitExitStmt(n)
	case *ContinueStmt:
		v.VisitContinueStmt(n)
	case *ReturnStmt:
		v.VisitReturnStmt(n)
	case *JumpStmt:
		v.VisitJumpStmt(n)
	case *LabelStmt:
		v.VisitLabelStmt(n)
	}
}

// VisitStmts dispatches each statement in a block, in order.
func VisitStmts(v Visitor, stmts []Stmt) {
	for _, s := range stmts {
		VisitStmt(v, s)
	}
}

// MutableVisitor mirrors Visitor but each handler may return a replacement
// node, supporting the rewrite-in-place style the lowering pass needs
// (grounded on the teacher's ast.Substitute rewriting).
type MutableVisitor interface {
	RewriteExpr(Expr) Expr
	RewriteStmt(Stmt) Stmt
}

// RewriteStmts rewrites each statement of a block in place via v, dropping
// any statement a handler rewrites to nil (the "void" convention the
// teacher's preprocessor uses for elided debug constraints).
func RewriteStmts(v MutableVisitor, stmts []Stmt) []Stmt {
	out := make([]Stmt, 0, len(stmts))

	for _, s := range stmts {
		if r := v.RewriteStmt(s); r != nil {
			out = append(out, r)
		}
	}

	return out
}
