// Package annotate implements the two-phase type annotator (§4.I): phase
// one walks each POU body maintaining an index.Scope chain, assigning every
// expression its declared type; phase two propagates assignment,
// call-argument, and binary-expression hints, and resolves generic POU
// calls to a concrete monomorphized instantiation. Grounded on the
// teacher's resolver/typeChecker split (pkg/corset/compiler/resolver.go,
// typing.go: resolve-then-typecheck), generalized from its single-pass
// recursive scope chain to the spec's explicit two-phase design.
package annotate

import (
	"strings"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/index"
	"github.com/gostc/stc/pkg/types"
	"github.com/gostc/stc/pkg/util/collection/typed"
)

// Annotator walks a compilation unit's POU bodies, recording each
// expression's resolved type and each generic call's monomorphized callee
// name. AstIds are stable across both phases, so the three tables below are
// each a typed.Map[ast.Id, T] rather than a hand-rolled map.
type Annotator struct {
	ix       *index.Index
	diags    *diag.Collector
	declared typed.Map[ast.Id, types.Type]
	hints    typed.Map[ast.Id, types.Type]
	mangled  typed.Map[ast.Id, string]
}

// New constructs an Annotator over the given merged index.
func New(ix *index.Index, diags *diag.Collector) *Annotator {
	return &Annotator{
		ix: ix, diags: diags,
		declared: typed.NewMap[ast.Id, types.Type](),
		hints:    typed.NewMap[ast.Id, types.Type](),
		mangled:  typed.NewMap[ast.Id, string](),
	}
}

// TypeOf returns the declared (phase one) type of the given node, falling
// back to its phase-two hint if no declared type was recorded.
func (a *Annotator) TypeOf(id ast.Id) (types.Type, bool) {
	if t, ok := a.declared.Get(id); ok {
		return t, true
	}

	return a.hints.Get(id)
}

// HintOf returns the phase-two type hint recorded for the given node, if
// any. Distinct from TypeOf: a literal always carries a declared type, but
// may additionally carry a hint (e.g. the bigger-type result of the binary
// expression it sits in) that a lowering/validation pass consults when it
// needs the contextual expectation rather than the node's own type.
func (a *Annotator) HintOf(id ast.Id) (types.Type, bool) {
	return a.hints.Get(id)
}

// MonomorphizedCallee returns the mangled callee name assigned to a Call
// node targeting a generic POU, if any.
func (a *Annotator) MonomorphizedCallee(id ast.Id) (string, bool) {
	return a.mangled.Get(id)
}

// Annotate runs both phases over every POU and method body in unit.
func (a *Annotator) Annotate(unit *ast.CompilationUnit) {
	root := index.NewRootScope()

	for _, pou := range unit.POUs {
		a.annotatePOU(root, pou)
	}
}

func (a *Annotator) annotatePOU(root *index.Scope, pou *ast.POU) {
	scope := root.Nested(pou.Name)

	for _, vb := range pou.VarBlocks {
		for i := range vb.Vars {
			v := &vb.Vars[i]
			scope.DeclareLocal(&index.VariableEntry{Name: v.Name, TypeName: v.TypeName, Container: pou.Name})
		}
	}

	a.phase1Stmts(scope, pou.Body)
	a.phase2Stmts(scope, pou.Body)

	for _, m := range pou.Methods {
		a.annotatePOU(root, m)
	}
}

// --- Phase 1: declared-type annotation ---------------------------------

func (a *Annotator) phase1Stmts(scope *index.Scope, stmts []ast.Stmt) {
	for _, s := range stmts {
		a.phase1Stmt(scope, s)
	}
}

func (a *Annotator) phase1Stmt(scope *index.Scope, s ast.Stmt) {
	switch st := s.(type) {
	case *ast.Assignment:
		a.phase1Expr(scope, st.Left)
		a.phase1Expr(scope, st.Right)
	case *ast.ExprStmt:
		a.phase1Expr(scope, st.Expr)
	case *ast.IfStmt:
		a.phase1Expr(scope, st.Cond)
		a.phase1Stmts(scope, st.Body)

		for _, ei := range st.ElseIfs {
			a.phase1Expr(scope, ei.Cond)
			a.phase1Stmts(scope, ei.Body)
		}

		a.phase1Stmts(scope, st.Else)
	case *ast.ForStmt:
		a.phase1Expr(scope, st.Start)
		a.phase1Expr(scope, st.End)

		if st.Step != nil {
			a.phase1Expr(scope, st.Step)
		}

		a.phase1Stmts(scope, st.Body)
	case *ast.WhileStmt:
		a.phase1Expr(scope, st.Cond)
		a.phase1Stmts(scope, st.Body)
	case *ast.RepeatStmt:
		a.phase1Stmts(scope, st.Body)
		a.phase1Expr(scope, st.Cond)
	case *ast.CaseStmt:
		a.phase1Expr(scope, st.Selector)

		for _, arm := range st.Arms {
			for _, lbl := range arm.Labels {
				a.phase1Expr(scope, lbl)
			}

			a.phase1Stmts(scope, arm.Body)
		}

		a.phase1Stmts(scope, st.Else)
	}
}

// phase1Expr resolves and memoizes the declared type of e, recursing into
// its subexpressions first since most forms derive their type from an
// operand's.
func (a *Annotator) phase1Expr(scope *index.Scope, e ast.Expr) types.Type {
	if e == nil {
		return types.AnyType{}
	}

	if t, ok := a.declared.Get(e.NodeId()); ok {
		return t
	}

	t := a.computeDeclaredType(scope, e)
	a.declared.Put(e.NodeId(), t)

	return t
}

func (a *Annotator) computeDeclaredType(scope *index.Scope, e ast.Expr) types.Type {
	switch ex := e.(type) {
	case *ast.Literal:
		return literalType(ex)
	case *ast.Ident:
		return a.identType(scope, ex)
	case *ast.MemberAccess:
		left := a.phase1Expr(scope, ex.Left)
		return a.memberType(left, ex.Name)
	case *ast.ArrayAccess:
		left := a.phase1Expr(scope, ex.Left)

		for _, idx := range ex.Indices {
			a.phase1Expr(scope, idx)
		}

		if arr, ok := left.(types.ArrayType); ok {
			return arr.Element
		}

		return types.AnyType{}
	case *ast.Deref:
		left := a.phase1Expr(scope, ex.Left)
		if ptr, ok := left.(types.PointerType); ok {
			return a.ix.FindEffectiveTypeInfo(ptr.Inner)
		}

		return types.AnyType{}
	case *ast.Cast:
		a.phase1Expr(scope, ex.Operand)
		return a.ix.FindEffectiveTypeInfo(ex.TypeName)
	case *ast.UnaryOp:
		return a.phase1Expr(scope, ex.Operand)
	case *ast.BinaryOp:
		left := a.phase1Expr(scope, ex.Left)
		right := a.phase1Expr(scope, ex.Right)

		if isComparisonOp(ex.Op) || isLogicalOp(ex.Op) {
			return types.BoolType{}
		}

		return types.GetBiggerType(left, right)
	case *ast.Range:
		a.phase1Expr(scope, ex.Low)
		a.phase1Expr(scope, ex.High)

		return types.AnyType{}
	case *ast.Call:
		return a.callType(scope, ex)
	case *ast.ArrayLiteral:
		var elem types.Type = types.AnyType{}

		for i, el := range ex.Elements {
			t := a.phase1Expr(scope, el)
			if i == 0 {
				elem = t
			}
		}

		return types.ArrayType{Element: elem, Dims: []types.Dimension{{Low: 0, High: len(ex.Elements) - 1}}}
	case *ast.DirectAccess:
		if ex.Anchor != nil {
			a.phase1Expr(scope, ex.Anchor)
		}

		return directAccessType(ex.SizeCode)
	case *ast.DefaultValue:
		return types.AnyType{}
	default:
		return types.AnyType{}
	}
}

func literalType(lit *ast.Literal) types.Type {
	if lit.Kind == ast.LitNull {
		return types.PointerType{Inner: "ANY"}
	}

	return typeNameToPrimitive(lit.TypeName)
}

// identType resolves a bare identifier against the scope chain: own
// locals, enclosing containers' members, then globals (index.Scope.Resolve),
// falling back to a callable lookup before reporting an undeclared
// reference.
func (a *Annotator) identType(scope *index.Scope, ident *ast.Ident) types.Type {
	if entry, _, ok := scope.Resolve(a.ix, ident.Name); ok {
		return a.ix.FindEffectiveTypeInfo(entry.TypeName)
	}

	if p := scope.ResolveCallable(a.ix, ident.Name); p.HasValue() {
		// Bare reference to a callable name outside call position (e.g. a
		// function-block instance used by its own name) carries no scalar
		// type of its own.
		return types.AnyType{}
	}

	a.diags.Addf("E048", ident.Loc(), "undeclared identifier %q", ident.Name)

	return types.AnyType{}
}

func (a *Annotator) memberType(left types.Type, name string) types.Type {
	named, ok := left.(types.NamedType)
	if !ok {
		return types.AnyType{}
	}

	if v := a.ix.FindMember(named.Name, name); v.HasValue() {
		return a.ix.FindEffectiveTypeInfo(v.Unwrap().TypeName)
	}

	return types.AnyType{}
}

func (a *Annotator) callType(scope *index.Scope, call *ast.Call) types.Type {
	name := calleeName(call.Callee)

	for _, arg := range call.Args {
		a.phase1Expr(scope, arg.Value)
	}

	if name == "" {
		return types.AnyType{}
	}

	entry := a.resolveCallee(scope, name)
	if entry == nil {
		a.diags.Addf("E048", call.Loc(), "call to undeclared program organization unit %q", name)
		return types.AnyType{}
	}

	if len(entry.Generics) > 0 {
		a.monomorphize(call, entry)
	}

	if entry.ReturnType == "" {
		return types.VoidType{}
	}

	return a.ix.FindEffectiveTypeInfo(entry.ReturnType)
}

// resolveCallee finds name as a free-standing/method POU via the scope
// chain, or, failing that, as the function-block type of a variable in
// scope (`fbInstance(...)` calling through an FB-typed member).
func (a *Annotator) resolveCallee(scope *index.Scope, name string) *index.POUEntry {
	if p := scope.ResolveCallable(a.ix, name); p.HasValue() {
		return p.Unwrap()
	}

	if entry, _, ok := scope.Resolve(a.ix, name); ok {
		if p := a.ix.FindPOU(entry.TypeName); p.HasValue() {
			return p.Unwrap()
		}
	}

	return nil
}

func calleeName(e ast.Expr) string {
	switch c := e.(type) {
	case *ast.Ident:
		return c.Name
	case *ast.MemberAccess:
		return c.Name
	default:
		return ""
	}
}

// monomorphize assigns the Call a mangled callee name `fn__T1__T2` derived
// from its actual argument types, a table-driven rewrite rather than AST
// template expansion: the generic POU's body is reused unmodified, only its
// registered name and the lowering pass's emitted symbol differ per
// instantiation.
func (a *Annotator) monomorphize(call *ast.Call, entry *index.POUEntry) {
	if len(call.Args) == 0 {
		return
	}

	var parts []string

	for _, arg := range call.Args {
		t, ok := a.declared.Get(arg.Value.NodeId())
		if !ok {
			t = types.AnyType{}
		}

		parts = append(parts, sanitizeTypeName(t.String()))
	}

	mangled := entry.Name + "__" + strings.Join(parts, "__")
	a.mangled.Put(call.NodeId(), mangled)

	if existing := a.ix.FindPOU(mangled); existing.HasValue() {
		return
	}

	instance := *entry
	instance.Name = mangled
	instance.Generics = nil
	instance.CallName = mangled
	a.ix.RegisterPOU(&instance)
}

func sanitizeTypeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, strings.ToUpper(s))
}

func isComparisonOp(op string) bool {
	switch op {
	case "=", "<>", "<", ">", "<=", ">=":
		return true
	default:
		return false
	}
}

func isLogicalOp(op string) bool {
	switch strings.ToUpper(op) {
	case "AND", "OR", "XOR", "NOT":
		return true
	default:
		return false
	}
}

func directAccessType(sizeCode string) types.Type {
	switch sizeCode {
	case "X":
		return types.BoolType{}
	case "B":
		return types.BitStringType{Bits: 8}
	case "W":
		return types.BitStringType{Bits: 16}
	case "D":
		return types.BitStringType{Bits: 32}
	case "L":
		return types.BitStringType{Bits: 64}
	default:
		return types.BitStringType{Bits: 8}
	}
}

// typeNameToPrimitive resolves a bare elementary type name to its
// descriptor without consulting the index, for literal types assigned by
// the lexer/parser before any scope is available.
func typeNameToPrimitive(name string) types.Type {
	if t, ok := types.Elementary(name); ok {
		return t
	}

	return types.AnyType{}
}
