package lower

import (
	"testing"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/index"
	"github.com/gostc/stc/pkg/source"
)

func TestLower_UnfoldedInitializerPrependsAssignment(t *testing.T) {
	ix := index.New()
	b := index.NewBuilder(ix, diag.NewCollector())

	init := &ast.Ident{Base: ast.NewBase(source.None()), Name: "SomeGlobalDefault"}
	pou := &ast.POU{
		Base: ast.NewBase(source.None()), Kind: ast.POUProgram, Name: "Main",
		VarBlocks: []*ast.VarBlock{{
			Base: ast.NewBase(source.None()), Kind: ast.VarLocal,
			Vars: []ast.VarDecl{{Base: ast.NewBase(source.None()), Name: "limit", TypeName: "DINT", Initializer: init}},
		}},
	}

	unit := &ast.CompilationUnit{POUs: []*ast.POU{pou}}
	b.Build(unit)

	Lower(ix, diag.NewCollector(), unit)

	if len(pou.Body) == 0 {
		t.Fatalf("expected a synthesized initializer assignment in the body")
	}

	assign, ok := pou.Body[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("got %T, want *ast.Assignment", pou.Body[0])
	}

	if target, ok := assign.Left.(*ast.Ident); !ok || target.Name != "limit" {
		t.Fatalf("assignment target = %v, want limit", assign.Left)
	}
}

func TestLower_StructMemberGetsInitCall(t *testing.T) {
	ix := index.New()
	b := index.NewBuilder(ix, diag.NewCollector())

	structType := &ast.TypeDecl{Base: ast.NewBase(source.None()), Kind: ast.TypeStruct, Name: "Point"}
	pou := &ast.POU{
		Base: ast.NewBase(source.None()), Kind: ast.POUProgram, Name: "Main",
		VarBlocks: []*ast.VarBlock{{
			Base: ast.NewBase(source.None()), Kind: ast.VarLocal,
			Vars: []ast.VarDecl{{Base: ast.NewBase(source.None()), Name: "origin", TypeName: "Point"}},
		}},
	}

	unit := &ast.CompilationUnit{Types: []*ast.TypeDecl{structType}, POUs: []*ast.POU{pou}}
	b.Build(unit)

	Lower(ix, diag.NewCollector(), unit)

	found := false

	for _, stmt := range pou.Body {
		es, ok := stmt.(*ast.ExprStmt)
		if !ok {
			continue
		}

		call, ok := es.Expr.(*ast.Call)
		if !ok {
			continue
		}

		if callee, ok := call.Callee.(*ast.Ident); ok && callee.Name == "__Point__init" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a synthesized __Point__init call in %v", pou.Body)
	}
}

func TestLower_FunctionBlockGetsVTableType(t *testing.T) {
	ix := index.New()
	b := index.NewBuilder(ix, diag.NewCollector())

	pou := &ast.POU{
		Base: ast.NewBase(source.None()), Kind: ast.POUFunctionBlock, Name: "Motor",
		Methods: []*ast.POU{{Base: ast.NewBase(source.None()), Kind: ast.POUMethod, Name: "Start"}},
	}

	unit := &ast.CompilationUnit{POUs: []*ast.POU{pou}}
	b.Build(unit)

	Lower(ix, diag.NewCollector(), unit)

	vt := ix.FindType("__vtable_Motor")
	if !vt.HasValue() {
		t.Fatalf("expected __vtable_Motor to be registered")
	}

	var found bool

	for _, td := range unit.Types {
		if td.Name != "__vtable_Motor" {
			continue
		}

		for _, m := range td.Members {
			if m.Name == "Start" {
				found = true
			}
		}
	}

	if !found {
		t.Fatalf("expected __vtable_Motor to carry a Start method slot")
	}
}

func TestLower_ConfigBindingSynthesizesAssignment(t *testing.T) {
	ix := index.New()
	b := index.NewBuilder(ix, diag.NewCollector())

	vb := &ast.VarBlock{
		Base: ast.NewBase(source.None()), Kind: ast.VarConfig,
		Vars: []ast.VarDecl{{Base: ast.NewBase(source.None()), Name: "Main.sensor", TypeName: "BOOL", Address: "%IX1.0"}},
	}

	unit := &ast.CompilationUnit{Globals: []*ast.VarBlock{vb}}
	b.Build(unit)

	Lower(ix, diag.NewCollector(), unit)

	var config *ast.POU

	for _, p := range unit.POUs {
		if p.Name == "__ConfigInit" {
			config = p
		}
	}

	if config == nil || len(config.Body) != 1 {
		t.Fatalf("expected a synthesized __ConfigInit program with one binding, got %v", config)
	}
}
