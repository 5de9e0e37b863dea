package annotate

import (
	"testing"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/index"
	"github.com/gostc/stc/pkg/source"
)

func ident(name string) *ast.Ident {
	return &ast.Ident{Base: ast.NewBase(source.None()), Name: name}
}

func lit(kind ast.LiteralKind, typeName string) *ast.Literal {
	return &ast.Literal{Base: ast.NewBase(source.None()), Kind: kind, TypeName: typeName}
}

func TestAnnotate_LiteralIntFitsDint(t *testing.T) {
	ix := index.New()
	a := New(ix, diag.NewCollector())

	pou := &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUProgram, Name: "Main"}
	n := lit(ast.LitInt, "DINT")
	pou.Body = []ast.Stmt{&ast.ExprStmt{Base: ast.NewBase(source.None()), Expr: n}}

	a.Annotate(&ast.CompilationUnit{POUs: []*ast.POU{pou}})

	got, ok := a.TypeOf(n.NodeId())
	if !ok {
		t.Fatalf("expected a declared type for the literal")
	}

	if got.String() != "DINT" {
		t.Fatalf("got %s, want DINT", got.String())
	}
}

func TestAnnotate_MemberResolvesThroughContainer(t *testing.T) {
	ix := index.New()
	ix.CreateMemberVariable("Main", &index.VariableEntry{Name: "counter", TypeName: "INT"})

	a := New(ix, diag.NewCollector())

	pou := &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUProgram, Name: "Main"}
	ref := ident("counter")
	pou.Body = []ast.Stmt{&ast.ExprStmt{Base: ast.NewBase(source.None()), Expr: ref}}

	a.Annotate(&ast.CompilationUnit{POUs: []*ast.POU{pou}})

	got, ok := a.TypeOf(ref.NodeId())
	if !ok || got.String() != "INT" {
		t.Fatalf("got %v, want INT", got)
	}
}

func TestAnnotate_UndeclaredIdentifierReportsE048(t *testing.T) {
	ix := index.New()
	d := diag.NewCollector()
	a := New(ix, d)

	pou := &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUProgram, Name: "Main"}
	ref := ident("doesNotExist")
	pou.Body = []ast.Stmt{&ast.ExprStmt{Base: ast.NewBase(source.None()), Expr: ref}}

	a.Annotate(&ast.CompilationUnit{POUs: []*ast.POU{pou}})

	found := false

	for _, dd := range d.Diagnostics() {
		if dd.Code == "E048" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected an E048 diagnostic for the undeclared identifier")
	}
}

func TestAnnotate_BinaryOpWidensToWiderInteger(t *testing.T) {
	ix := index.New()
	a := New(ix, diag.NewCollector())

	pou := &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUProgram, Name: "Main"}
	left := lit(ast.LitInt, "DINT")
	right := lit(ast.LitInt, "LINT")
	bin := &ast.BinaryOp{Base: ast.NewBase(source.None()), Op: "+", Left: left, Right: right}
	pou.Body = []ast.Stmt{&ast.ExprStmt{Base: ast.NewBase(source.None()), Expr: bin}}

	a.Annotate(&ast.CompilationUnit{POUs: []*ast.POU{pou}})

	got, ok := a.TypeOf(bin.NodeId())
	if !ok || got.String() != "LINT" {
		t.Fatalf("got %v, want LINT", got)
	}

	leftHint, ok := a.HintOf(left.NodeId())
	if !ok || leftHint.String() != "LINT" {
		t.Fatalf("left operand hint = %v, want LINT (the binary expression's widened result type)", leftHint)
	}
}

func TestAnnotate_AssignmentHintsRightHandSide(t *testing.T) {
	ix := index.New()
	ix.CreateMemberVariable("Main", &index.VariableEntry{Name: "total", TypeName: "LINT"})

	a := New(ix, diag.NewCollector())

	pou := &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUProgram, Name: "Main"}
	left := ident("total")
	right := lit(ast.LitInt, "DINT")
	pou.Body = []ast.Stmt{&ast.Assignment{Base: ast.NewBase(source.None()), Kind: ast.AssignRegular, Left: left, Right: right}}

	a.Annotate(&ast.CompilationUnit{POUs: []*ast.POU{pou}})

	got, ok := a.HintOf(right.NodeId())
	if !ok || got.String() != "LINT" {
		t.Fatalf("right-hand side hint = %v, want LINT (from the assignment target)", got)
	}
}

func TestAnnotate_CallHintsPositionalArgumentFromParameter(t *testing.T) {
	ix := index.New()
	ix.RegisterPOU(&index.POUEntry{Name: "Scale", Kind: ast.POUFunction, ReturnType: "DINT"})
	ix.CreateMemberVariable("Scale", &index.VariableEntry{Name: "factor", TypeName: "REAL", Role: index.RoleInput})

	a := New(ix, diag.NewCollector())

	pou := &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUProgram, Name: "Main"}
	arg := lit(ast.LitInt, "DINT")
	call := &ast.Call{
		Base: ast.NewBase(source.None()), Callee: ident("Scale"),
		Args: []ast.CallArg{{Value: arg}},
	}
	pou.Body = []ast.Stmt{&ast.ExprStmt{Base: ast.NewBase(source.None()), Expr: call}}

	a.Annotate(&ast.CompilationUnit{POUs: []*ast.POU{pou}})

	callType, ok := a.TypeOf(call.NodeId())
	if !ok || callType.String() != "DINT" {
		t.Fatalf("call result = %v, want DINT", callType)
	}

	argHint, ok := a.HintOf(arg.NodeId())
	if !ok || argHint.String() != "REAL" {
		t.Fatalf("argument hint = %v, want REAL (from Scale's factor parameter)", argHint)
	}
}

func TestAnnotate_GenericCallMonomorphizesMangledName(t *testing.T) {
	ix := index.New()
	ix.RegisterPOU(&index.POUEntry{Name: "Max", Kind: ast.POUFunction, ReturnType: "ANY", Generics: []string{"T"}})

	a := New(ix, diag.NewCollector())

	pou := &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUProgram, Name: "Main"}
	arg := lit(ast.LitInt, "DINT")
	call := &ast.Call{
		Base: ast.NewBase(source.None()), Callee: ident("Max"),
		Args: []ast.CallArg{{Value: arg}},
	}
	pou.Body = []ast.Stmt{&ast.ExprStmt{Base: ast.NewBase(source.None()), Expr: call}}

	a.Annotate(&ast.CompilationUnit{POUs: []*ast.POU{pou}})

	mangled, ok := a.MonomorphizedCallee(call.NodeId())
	if !ok {
		t.Fatalf("expected a monomorphized callee name")
	}

	if want := "Max__DINT"; mangled != want {
		t.Fatalf("mangled = %q, want %q", mangled, want)
	}

	if !ix.FindPOU(mangled).HasValue() {
		t.Fatalf("expected %q to be registered as a sibling POU entry", mangled)
	}
}
