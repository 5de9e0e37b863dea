package lower

import (
	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/index"
	"github.com/gostc/stc/pkg/source"
	"github.com/gostc/stc/pkg/types"
)

// buildVTables generates a `__vtable_<Name>` struct type for every struct,
// function block, class, and interface in unit, and registers it both in
// the index and in unit.Types so it flows through the rest of the
// pipeline like any source-declared type. Grounded on
// VTableIndexer.create_vtables_for_pous/create_vtables_for_interfaces in
// the original source, reimplemented as Go AST-node synthesis the way the
// teacher's preprocessor synthesizes List/Constant substitution results.
func buildVTables(ix *index.Index, unit *ast.CompilationUnit) {
	b := &vtableBuilder{ix: ix}

	for _, td := range unit.Types {
		if td.Kind != ast.TypeStruct {
			continue
		}

		unit.Types = append(unit.Types, b.forStruct(td))
	}

	for _, pou := range unit.POUs {
		if pou.Kind != ast.POUFunctionBlock && pou.Kind != ast.POUClass {
			continue
		}

		unit.Types = append(unit.Types, b.forPOU(pou))
	}

	for _, iface := range unit.Interfaces {
		unit.Types = append(unit.Types, b.forInterface(iface))
	}
}

type vtableBuilder struct {
	ix *index.Index
}

func vtableName(name string) string { return "__vtable_" + name }

// forStruct produces a member-less vtable for a plain STRUCT: structs carry
// no methods and cannot extend one another, so the shell exists purely for
// uniformity with the function-block/class/interface forms.
func (b *vtableBuilder) forStruct(td *ast.TypeDecl) *ast.TypeDecl {
	return b.register(vtableName(td.Name), nil)
}

func (b *vtableBuilder) forPOU(pou *ast.POU) *ast.TypeDecl {
	var members []ast.StructMember

	if pou.Extends != "" {
		members = append(members, b.ptrMember(pou.Name, "__parent", pou.Extends))
	}

	for _, iface := range pou.Implements {
		members = append(members, b.ptrMember(pou.Name, "__iface_"+iface, iface))
	}

	for _, m := range pou.Methods {
		members = append(members, b.fnMember(pou.Name, m.Name))
	}

	return b.register(vtableName(pou.Name), members)
}

func (b *vtableBuilder) forInterface(iface *ast.InterfaceDecl) *ast.TypeDecl {
	var members []ast.StructMember

	for _, ext := range iface.Extends {
		members = append(members, b.ptrMember(iface.Name, "__ext_"+ext, ext))
	}

	for _, m := range iface.Methods {
		members = append(members, b.fnMember(iface.Name, m.Name))
	}

	return b.register(vtableName(iface.Name), members)
}

// ptrMember synthesizes a type-safe pointer-to-vtable field, the generated
// type qualified by owner so two unrelated POUs whose parent/interface
// share a name never collide on the same generated type entry.
// StructMember carries no pointer/byref flag of its own (see §4.E), so the
// pointer nature lives entirely in a generated TypeEntry referenced by
// name.
func (b *vtableBuilder) ptrMember(owner, field, targetName string) ast.StructMember {
	ptrName := "__ptr_" + owner + "_" + vtableName(targetName)
	b.ix.RegisterType(&index.TypeEntry{
		Name: ptrName,
		Info: types.PointerType{Inner: vtableName(targetName), TypeSafe: true},
	})

	return ast.StructMember{Name: field, TypeName: ptrName}
}

// fnMember synthesizes a function-pointer-shaped slot for one locally
// declared method, the generated type qualified by owner so two unrelated
// POUs that happen to declare a same-named method don't collide.
func (b *vtableBuilder) fnMember(owner, method string) ast.StructMember {
	fnName := "__fnptr_" + owner + "_" + method
	b.ix.RegisterType(&index.TypeEntry{
		Name: fnName,
		Info: types.PointerType{IsFunction: true},
	})

	return ast.StructMember{Name: method, TypeName: fnName}
}

func (b *vtableBuilder) register(name string, members []ast.StructMember) *ast.TypeDecl {
	td := &ast.TypeDecl{Base: ast.NewBase(source.None()), Kind: ast.TypeStruct, Name: name, Members: members}
	b.ix.RegisterType(&index.TypeEntry{
		Name: name,
		Info: types.NamedType{Name: name, N: types.NatureElementary},
		Decl: td,
	})

	return td
}
