package index

import (
	"testing"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/source"
)

func TestBuild_POUMembersRegisterWithRoles(t *testing.T) {
	ix := New()
	b := NewBuilder(ix, diag.NewCollector())

	pou := &ast.POU{
		Base: ast.NewBase(source.None()), Kind: ast.POUFunctionBlock, Name: "Motor",
		VarBlocks: []*ast.VarBlock{
			{Base: ast.NewBase(source.None()), Kind: ast.VarInput, Vars: []ast.VarDecl{
				{Base: ast.NewBase(source.None()), Name: "speed", TypeName: "INT"},
			}},
			{Base: ast.NewBase(source.None()), Kind: ast.VarOutput, Vars: []ast.VarDecl{
				{Base: ast.NewBase(source.None()), Name: "running", TypeName: "BOOL"},
			}},
		},
	}

	b.Build(&ast.CompilationUnit{POUs: []*ast.POU{pou}})

	members := ix.GetPOUMembers("Motor")
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}

	if members[0].Role != RoleInput || members[1].Role != RoleOutput {
		t.Fatalf("roles = %v/%v, want Input/Output", members[0].Role, members[1].Role)
	}
}

func TestBuild_MethodQualifiesUnderOwner(t *testing.T) {
	ix := New()
	b := NewBuilder(ix, diag.NewCollector())

	method := &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUMethod, Name: "Start"}
	pou := &ast.POU{
		Base: ast.NewBase(source.None()), Kind: ast.POUFunctionBlock, Name: "Motor",
		Methods: []*ast.POU{method},
	}

	b.Build(&ast.CompilationUnit{POUs: []*ast.POU{pou}})

	if !ix.FindPOU("Motor.Start").HasValue() {
		t.Fatalf("expected Motor.Start to be registered")
	}
}

func TestBuild_StructMembersRegisterUnderTypeName(t *testing.T) {
	ix := New()
	b := NewBuilder(ix, diag.NewCollector())

	td := &ast.TypeDecl{
		Base: ast.NewBase(source.None()), Kind: ast.TypeStruct, Name: "Point",
		Members: []ast.StructMember{
			{Name: "x", TypeName: "INT"},
			{Name: "y", TypeName: "INT"},
		},
	}

	b.Build(&ast.CompilationUnit{Types: []*ast.TypeDecl{td}})

	if !ix.FindType("Point").HasValue() {
		t.Fatalf("expected Point to be registered as a type")
	}

	if v := ix.FindMember("Point", "x"); !v.HasValue() {
		t.Fatalf("expected Point.x to be registered as a member")
	}
}

func TestBuild_AliasChasesToElementaryBase(t *testing.T) {
	ix := New()
	b := NewBuilder(ix, diag.NewCollector())

	td := &ast.TypeDecl{Base: ast.NewBase(source.None()), Kind: ast.TypeAlias, Name: "Counter", BaseType: "DINT"}

	b.Build(&ast.CompilationUnit{Types: []*ast.TypeDecl{td}})

	if got := ix.FindEffectiveType("Counter"); got != "DINT" {
		t.Fatalf("effective type = %q, want DINT", got)
	}
}

func TestBuild_GlobalInitializerEnrollsConstExpr(t *testing.T) {
	ix := New()
	b := NewBuilder(ix, diag.NewCollector())

	lit := &ast.Literal{Base: ast.NewBase(source.None()), Kind: ast.LitInt, TypeName: "DINT", Int: 42}
	vb := &ast.VarBlock{
		Base: ast.NewBase(source.None()), Kind: ast.VarGlobal, Constant: true,
		Vars: []ast.VarDecl{{Base: ast.NewBase(source.None()), Name: "MAX", TypeName: "DINT", Initializer: lit}},
	}

	b.Build(&ast.CompilationUnit{Globals: []*ast.VarBlock{vb}})

	g := ix.FindGlobal("MAX")
	if !g.HasValue() {
		t.Fatalf("expected MAX to be registered as a global")
	}

	if _, ok := ix.ConstExpr(g.Unwrap().InitConstID); !ok {
		t.Fatalf("expected MAX's initializer to be enrolled in the const arena")
	}
}

func TestBuild_EnumVariantsRecordDeclarationOrder(t *testing.T) {
	ix := New()
	b := NewBuilder(ix, diag.NewCollector())

	td := &ast.TypeDecl{
		Base: ast.NewBase(source.None()), Kind: ast.TypeEnum, Name: "Color",
		Variants: []ast.EnumVariant{{Name: "RED"}, {Name: "GREEN"}, {Name: "BLUE"}},
	}

	b.Build(&ast.CompilationUnit{Types: []*ast.TypeDecl{td}})

	if !ix.FindType("Color").HasValue() {
		t.Fatalf("expected Color to be registered as a type")
	}

	variants := ix.enumVariants["Color"]
	if len(variants) != 3 || variants[0].Name != "RED" || variants[1].Name != "GREEN" || variants[2].Name != "BLUE" {
		t.Fatalf("variants = %v, want RED, GREEN, BLUE in declaration order", variants)
	}
}
