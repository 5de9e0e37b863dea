package validate

import (
	"fmt"
	"strings"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/index"
)

// checkInterfaceContracts verifies every POU's IMPLEMENTS clause: only a
// function block or class may implement an interface, every one of its
// methods must be present with an exactly matching signature, the same
// interface must not be listed twice, and an interface itself may not
// supply a method body.
func checkInterfaceContracts(ix *index.Index, diags *diag.Collector, unit *ast.CompilationUnit) {
	byName := map[string]*ast.InterfaceDecl{}
	for _, iface := range unit.Interfaces {
		byName[iface.Name] = iface

		for _, m := range iface.Methods {
			if len(m.Body) > 0 {
				diags.Addf("E113", m.Loc(), "interface method %s.%s may not supply a default implementation", iface.Name, m.Name)
			}
		}
	}

	for _, pou := range unit.POUs {
		checkImplements(ix, diags, pou, byName)
	}
}

func checkImplements(ix *index.Index, diags *diag.Collector, pou *ast.POU, byName map[string]*ast.InterfaceDecl) {
	if len(pou.Implements) == 0 {
		return
	}

	if pou.Kind != ast.POUFunctionBlock && pou.Kind != ast.POUClass {
		diags.Addf("E110", pou.Loc(), "%s cannot implement an interface; only function blocks and classes may", pou.Name)
		return
	}

	seen := map[string]bool{}
	methodSigs := map[string]string{} // method name -> signature required so far

	for _, name := range pou.Implements {
		if seen[name] {
			diags.Addf("E114", pou.Loc(), "%s implements %s more than once", pou.Name, name)
			continue
		}

		seen[name] = true

		iface, ok := byName[name]
		if !ok {
			continue // unresolved reference reported elsewhere
		}

		checkInterfaceMethods(ix, diags, pou, iface, byName, methodSigs, map[string]bool{})
	}
}

// checkInterfaceMethods verifies pou defines every method iface (and,
// transitively, every interface it EXTENDS) declares, with a matching
// signature, and that no two implemented interfaces disagree about one
// method's signature. visiting guards against an EXTENDS cycle.
func checkInterfaceMethods(
	ix *index.Index, diags *diag.Collector, pou *ast.POU, iface *ast.InterfaceDecl,
	byName map[string]*ast.InterfaceDecl, methodSigs map[string]string, visiting map[string]bool,
) {
	if visiting[iface.Name] {
		return
	}

	visiting[iface.Name] = true

	for _, ext := range iface.Extends {
		if parent, ok := byName[ext]; ok {
			checkInterfaceMethods(ix, diags, pou, parent, byName, methodSigs, visiting)
		}
	}

	for _, m := range iface.Methods {
		sig := signature(ix, iface.Name+"."+m.Name)

		if prior, ok := methodSigs[m.Name]; ok && prior != sig {
			diags.Addf("E111", pou.Loc(), "implemented interfaces disagree on the signature of method %s", m.Name)
		}

		methodSigs[m.Name] = sig

		impl := ix.FindPOU(pou.Name + "." + m.Name)
		if !impl.HasValue() {
			diags.Addf("E112", pou.Loc(), "%s does not implement method %s required by interface %s", pou.Name, m.Name, iface.Name)
			continue
		}

		if signature(ix, pou.Name+"."+m.Name) != sig {
			diags.Addf("E118", impl.Unwrap().Loc, "%s.%s's signature does not match interface %s", pou.Name, m.Name, iface.Name)
		}
	}
}

// signature renders a method's parameter roles/types and return type into
// a comparable string.
func signature(ix *index.Index, qualifiedName string) string {
	var parts []string

	for _, m := range ix.GetPOUMembers(qualifiedName) {
		if m.Role == index.RoleTemp {
			continue
		}

		parts = append(parts, fmt.Sprintf("%d:%s", m.Role, m.TypeName))
	}

	ret := ""
	if e := ix.FindPOU(qualifiedName); e.HasValue() {
		ret = e.Unwrap().ReturnType
	}

	return strings.Join(parts, ",") + "->" + ret
}
