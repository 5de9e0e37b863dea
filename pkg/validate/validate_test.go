package validate

import (
	"testing"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/index"
	"github.com/gostc/stc/pkg/source"
)

func build(unit *ast.CompilationUnit) *index.Index {
	ix := index.New()
	index.NewBuilder(ix, diag.NewCollector()).Build(unit)

	return ix
}

func codes(diags *diag.Collector) []string {
	var out []string
	for _, d := range diags.Diagnostics() {
		out = append(out, d.Code)
	}

	return out
}

func hasCode(diags *diag.Collector, code string) bool {
	for _, c := range codes(diags) {
		if c == code {
			return true
		}
	}

	return false
}

func structType(name string, members ...ast.StructMember) *ast.TypeDecl {
	return &ast.TypeDecl{Base: ast.NewBase(source.None()), Kind: ast.TypeStruct, Name: name, Members: members}
}

func TestValidate_DirectSelfCycleReported(t *testing.T) {
	a := structType("A", ast.StructMember{Name: "a", TypeName: "A"})
	unit := &ast.CompilationUnit{Types: []*ast.TypeDecl{a}}
	ix := build(unit)

	diags := diag.NewCollector()
	checkRecursiveDataStructures(ix, diags)

	if !hasCode(diags, "E124") {
		t.Fatalf("expected E124, got %v", codes(diags))
	}
}

func TestValidate_PointerBreaksCycle(t *testing.T) {
	a := structType("A", ast.StructMember{Name: "b", TypeName: "B"})
	bMember := ast.StructMember{Name: "a", TypeName: "A"}
	b := structType("B", bMember)
	unit := &ast.CompilationUnit{Types: []*ast.TypeDecl{a, b}}
	ix := build(unit)

	// ast.StructMember has no pointer flag, so a REF_TO/POINTER_TO field
	// cannot be declared here; mark the member ByRef instead, which
	// memberIsPointer treats as breaking the cycle.
	for _, m := range ix.GetPOUMembers("B") {
		m.ByRef = true
	}

	diags := diag.NewCollector()
	checkRecursiveDataStructures(ix, diags)

	if hasCode(diags, "E124") {
		t.Fatalf("expected no E124 once the back edge is a pointer, got %v", codes(diags))
	}
}

func TestValidate_DuplicateFunctionAndTypeIsNoIssue(t *testing.T) {
	fn := &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUFunction, Name: "foo", ReturnType: "INT"}
	ty := &ast.TypeDecl{Base: ast.NewBase(source.None()), Kind: ast.TypeAlias, Name: "foo", BaseType: "INT"}
	unit := &ast.CompilationUnit{POUs: []*ast.POU{fn}, Types: []*ast.TypeDecl{ty}}
	ix := build(unit)

	diags := diag.NewCollector()
	checkDuplicates(ix, diags)

	if len(diags.Diagnostics()) != 0 {
		t.Fatalf("expected no duplicate diagnostics, got %v", codes(diags))
	}
}

func TestValidate_DuplicateFunctionBlockAndTypeIsFlagged(t *testing.T) {
	fb := &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUFunctionBlock, Name: "foo"}
	ty := &ast.TypeDecl{Base: ast.NewBase(source.None()), Kind: ast.TypeAlias, Name: "foo", BaseType: "INT"}
	unit := &ast.CompilationUnit{POUs: []*ast.POU{fb}, Types: []*ast.TypeDecl{ty}}
	ix := build(unit)

	diags := diag.NewCollector()
	checkDuplicates(ix, diags)

	if !hasCode(diags, "E004") {
		t.Fatalf("expected E004, got %v", codes(diags))
	}
}

func TestValidate_GeneratedTypesExemptFromDuplicateCheck(t *testing.T) {
	p1 := &index.TypeEntry{Name: "__POINTER_TO_INT", Loc: source.None()}
	p2 := &index.TypeEntry{Name: "__POINTER_TO_INT", Loc: source.None()}
	ix := index.New()
	ix.RegisterType(p1)
	ix.RegisterType(p2)

	diags := diag.NewCollector()
	checkDuplicates(ix, diags)

	if len(diags.Diagnostics()) != 0 {
		t.Fatalf("expected generated type collisions to be exempt, got %v", codes(diags))
	}
}

func TestValidate_PointerToWarns(t *testing.T) {
	pou := &ast.POU{
		Base: ast.NewBase(source.None()), Kind: ast.POUProgram, Name: "Main",
		VarBlocks: []*ast.VarBlock{{
			Base: ast.NewBase(source.None()), Kind: ast.VarLocal,
			Vars: []ast.VarDecl{{
				Base: ast.NewBase(source.None()), Name: "p", TypeName: "INT",
				IsPointer: true, PointerKind: "POINTER_TO",
			}},
		}},
	}
	unit := &ast.CompilationUnit{POUs: []*ast.POU{pou}}

	diags := diag.NewCollector()
	checkPointerSafety(diags, unit)

	if !hasCode(diags, "E015") {
		t.Fatalf("expected E015, got %v", codes(diags))
	}
}

func TestValidate_RefToDoesNotWarn(t *testing.T) {
	pou := &ast.POU{
		Base: ast.NewBase(source.None()), Kind: ast.POUProgram, Name: "Main",
		VarBlocks: []*ast.VarBlock{{
			Base: ast.NewBase(source.None()), Kind: ast.VarLocal,
			Vars: []ast.VarDecl{{
				Base: ast.NewBase(source.None()), Name: "p", TypeName: "INT",
				IsPointer: true, PointerKind: "REF_TO",
			}},
		}},
	}
	unit := &ast.CompilationUnit{POUs: []*ast.POU{pou}}

	diags := diag.NewCollector()
	checkPointerSafety(diags, unit)

	if hasCode(diags, "E015") {
		t.Fatalf("expected no E015 for REF_TO, got %v", codes(diags))
	}
}

func TestValidate_IncompleteInterfaceImplementationFlagged(t *testing.T) {
	iface := &ast.InterfaceDecl{
		Base: ast.NewBase(source.None()), Name: "Shape",
		Methods: []*ast.POU{{Base: ast.NewBase(source.None()), Kind: ast.POUMethod, Name: "Area", ReturnType: "REAL"}},
	}
	fb := &ast.POU{
		Base: ast.NewBase(source.None()), Kind: ast.POUFunctionBlock, Name: "Circle",
		Implements: []string{"Shape"},
	}
	unit := &ast.CompilationUnit{Interfaces: []*ast.InterfaceDecl{iface}, POUs: []*ast.POU{fb}}
	ix := build(unit)

	diags := diag.NewCollector()
	checkInterfaceContracts(ix, diags, unit)

	if !hasCode(diags, "E112") {
		t.Fatalf("expected E112, got %v", codes(diags))
	}
}

func TestValidate_CompleteInterfaceImplementationPasses(t *testing.T) {
	areaSig := &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUMethod, Name: "Area", ReturnType: "REAL"}
	iface := &ast.InterfaceDecl{Base: ast.NewBase(source.None()), Name: "Shape", Methods: []*ast.POU{areaSig}}

	areaImpl := &ast.POU{Base: ast.NewBase(source.None()), Kind: ast.POUMethod, Name: "Area", ReturnType: "REAL"}
	fb := &ast.POU{
		Base: ast.NewBase(source.None()), Kind: ast.POUFunctionBlock, Name: "Circle",
		Implements: []string{"Shape"}, Methods: []*ast.POU{areaImpl},
	}
	unit := &ast.CompilationUnit{Interfaces: []*ast.InterfaceDecl{iface}, POUs: []*ast.POU{fb}}
	ix := build(unit)

	diags := diag.NewCollector()
	checkInterfaceContracts(ix, diags, unit)

	if hasCode(diags, "E112") || hasCode(diags, "E118") {
		t.Fatalf("expected a complete matching implementation to pass, got %v", codes(diags))
	}
}

func TestValidate_FunctionImplementingInterfaceIsInvalid(t *testing.T) {
	iface := &ast.InterfaceDecl{Base: ast.NewBase(source.None()), Name: "Shape"}
	fn := &ast.POU{
		Base: ast.NewBase(source.None()), Kind: ast.POUFunction, Name: "NotAllowed", ReturnType: "INT",
		Implements: []string{"Shape"},
	}
	unit := &ast.CompilationUnit{Interfaces: []*ast.InterfaceDecl{iface}, POUs: []*ast.POU{fn}}
	ix := build(unit)

	diags := diag.NewCollector()
	checkInterfaceContracts(ix, diags, unit)

	if !hasCode(diags, "E110") {
		t.Fatalf("expected E110, got %v", codes(diags))
	}
}

func TestValidate_InterfaceDefaultBodyWarns(t *testing.T) {
	iface := &ast.InterfaceDecl{
		Base: ast.NewBase(source.None()), Name: "Shape",
		Methods: []*ast.POU{{
			Base: ast.NewBase(source.None()), Kind: ast.POUMethod, Name: "Area", ReturnType: "REAL",
			Body: []ast.Stmt{&ast.ReturnStmt{Base: ast.NewBase(source.None())}},
		}},
	}
	unit := &ast.CompilationUnit{Interfaces: []*ast.InterfaceDecl{iface}}
	ix := build(unit)

	diags := diag.NewCollector()
	checkInterfaceContracts(ix, diags, unit)

	if !hasCode(diags, "E113") {
		t.Fatalf("expected E113, got %v", codes(diags))
	}
}
