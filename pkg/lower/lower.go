// Package lower implements the lowering pass (§4.J): a mutable visitor that
// rewrites a compilation unit in place once indexing, constant evaluation,
// and annotation have run. Grounded on the teacher's preprocessor
// (preprocessor.go: PreprocessCircuit/preprocessDeclarations expanding
// For/Let/Invoke/Reduce forms via substitution before translation) —
// generalized here from macro-form expansion to initializer synthesis,
// struct-init call insertion, VAR_CONFIG materialization, and vtable
// generation.
package lower

import (
	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/index"
	"github.com/gostc/stc/pkg/source"
)

// Lower mutates unit in place: every POU body gains the initializer
// assignments and struct-init calls its declared members require, every
// VAR_CONFIG binding becomes a synthesized assignment statement collected
// into a new __ConfigInit program appended to unit.POUs, and a vtable type
// is registered for every struct, function block, class, and interface.
func Lower(ix *index.Index, diags *diag.Collector, unit *ast.CompilationUnit) {
	for _, pou := range unit.POUs {
		lowerPOUBody(ix, pou)
	}

	if init := lowerConfigBindings(ix, diags); init != nil {
		unit.POUs = append(unit.POUs, init)
	}

	buildVTables(ix, unit)
}

// lowerPOUBody prepends, in order, (1) initializer assignments for
// stateful members whose declared initializer didn't fold at compile time
// and (2) __<Type>__init calls for struct-valued members, in declaration
// order, ahead of the POU's own body.
func lowerPOUBody(ix *index.Index, pou *ast.POU) {
	lowerMethodBodies(ix, pou)

	// Methods and actions are indexed under "Owner.Name".
	container := pou.Name
	if pou.Owner != "" {
		container = pou.Owner + "." + pou.Name
	}

	var prelude []ast.Stmt

	for _, m := range ix.GetPOUMembers(container) {
		if m.Role == index.RoleTemp || m.Role == index.RoleExternal {
			continue
		}

		if stmt, ok := unresolvedInitializerAssignment(ix, m); ok {
			prelude = append(prelude, stmt)
		}
	}

	for _, m := range ix.GetPOUMembers(container) {
		if m.Role == index.RoleTemp || m.Role == index.RoleExternal {
			continue
		}

		if stmt, ok := structInitCall(ix, m); ok {
			prelude = append(prelude, stmt)
		}
	}

	if len(prelude) > 0 {
		pou.Body = append(prelude, pou.Body...)
	}
}

func lowerMethodBodies(ix *index.Index, pou *ast.POU) {
	for _, m := range pou.Methods {
		lowerPOUBody(ix, m)
	}
}

// unresolvedInitializerAssignment builds `member := initializerExpr` when
// member has a declared initializer that the constant evaluator left
// unfolded (a reference to a non-constant, a forward reference the fixed
// point never closed, or simply a non-constant expression never meant to
// be folded — e.g. a call result used as a default).
func unresolvedInitializerAssignment(ix *index.Index, m *index.VariableEntry) (ast.Stmt, bool) {
	if m.InitConstID == 0 {
		return nil, false
	}

	c, ok := ix.ConstExpr(m.InitConstID)
	if !ok || c.Folded.HasValue() {
		return nil, false
	}

	target := &ast.Ident{Base: ast.NewBase(source.None()), Name: m.Name}
	assign := &ast.Assignment{Base: ast.NewBase(source.None()), Kind: ast.AssignRegular, Left: target, Right: c.Expr}

	return assign, true
}

// structInitCall builds `__<Type>__init(member)` when member's effective
// type is a locally declared struct, so its own (possibly nested)
// initializer assignments run before the enclosing POU's body.
func structInitCall(ix *index.Index, m *index.VariableEntry) (ast.Stmt, bool) {
	eff := ix.FindEffectiveType(m.TypeName)

	t := ix.FindType(eff)
	if !t.HasValue() || t.Unwrap().Decl == nil || t.Unwrap().Decl.Kind != ast.TypeStruct {
		return nil, false
	}

	callee := &ast.Ident{Base: ast.NewBase(source.None()), Name: "__" + eff + "__init"}
	arg := &ast.Ident{Base: ast.NewBase(source.None()), Name: m.Name}
	call := &ast.Call{Base: ast.NewBase(source.None()), Callee: callee, Args: []ast.CallArg{{Value: arg}}}

	return &ast.ExprStmt{Base: ast.NewBase(source.None()), Expr: call}, true
}

// lowerConfigBindings materializes every VAR_CONFIG entry as an assignment
// of its hardware binding (an identifier carrying the raw address text,
// e.g. "%IX1.0") into its target qualified path, collected into a single synthesized program so the driver has
// somewhere to run them ahead of the first cycle. Returns nil if the
// project declares no VAR_CONFIG bindings.
func lowerConfigBindings(ix *index.Index, diags *diag.Collector) *ast.POU {
	var body []ast.Stmt

	for _, g := range ix.AllGlobals() {
		if g.Role != index.RoleExternal || g.HWBinding == "" {
			continue
		}

		segments := splitPath(g.Name)
		if !ix.FindPOU(segments[0]).HasValue() {
			diags.Addf("E101", g.Loc, "VAR_CONFIG target %q does not begin with a declared program organization unit", g.Name)
		}

		target := qualifiedPathExpr(g.Name)
		hw := &ast.Ident{Base: ast.NewBase(source.None()), Name: g.HWBinding}
		body = append(body, &ast.Assignment{Base: ast.NewBase(source.None()), Kind: ast.AssignRegular, Left: target, Right: hw})
	}

	if len(body) == 0 {
		return nil
	}

	return &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUProgram, Name: "__ConfigInit", Body: body}
}

// qualifiedPathExpr turns a dotted path (`prog.fb.member`) into the chain
// of MemberAccess nodes the rest of the pipeline expects for a qualified
// reference.
func qualifiedPathExpr(path string) ast.Expr {
	segments := splitPath(path)

	var e ast.Expr = &ast.Ident{Base: ast.NewBase(source.None()), Name: segments[0]}

	for _, seg := range segments[1:] {
		e = &ast.MemberAccess{Base: ast.NewBase(source.None()), Left: e, Name: seg}
	}

	return e
}

func splitPath(path string) []string {
	var segments []string
	start := 0

	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segments = append(segments, path[start:i])
			start = i + 1
		}
	}

	segments = append(segments, path[start:])

	return segments
}
