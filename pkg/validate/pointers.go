package validate

import (
	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
)

// checkPointerSafety warns on every `POINTER TO T` declaration: an
// untyped, unchecked pointer form the language keeps only for legacy
// compatibility. `REF_TO`/`REFERENCE TO` carry the same capability with
// type safety and (for REFERENCE TO) auto-dereferencing, so the lint never
// rejects the declaration, only nudges towards the safer spelling.
func checkPointerSafety(diags *diag.Collector, unit *ast.CompilationUnit) {
	for _, vb := range unit.Globals {
		warnBlock(diags, vb)
	}

	for _, pou := range unit.POUs {
		warnPOU(diags, pou)
	}
}

func warnPOU(diags *diag.Collector, pou *ast.POU) {
	for _, vb := range pou.VarBlocks {
		warnBlock(diags, vb)
	}

	for _, m := range pou.Methods {
		warnPOU(diags, m)
	}
}

func warnBlock(diags *diag.Collector, vb *ast.VarBlock) {
	for i := range vb.Vars {
		v := &vb.Vars[i]
		if v.IsPointer && v.PointerKind == "POINTER_TO" {
			diags.Addf("E015", v.Loc(), "%q declared as POINTER TO %s, consider REF_TO instead", v.Name, v.TypeName)
		}
	}
}
