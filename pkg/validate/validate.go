// Package validate implements the global validators (§4.K): passes that
// run once per merged project index and flag problems no single-file pass
// could see — recursive data structures, name collisions across files,
// legacy pointer syntax, and interface contract mismatches. Grounded on
// the original's validation module (recursive_validator.rs, the
// duplicates validator exercised by duplicates_validation_test.rs) and,
// for the ambient shape of a pass over a merged index, the teacher's
// multi-stage compiler.go pipeline.
package validate

import (
	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/index"
)

// Validate runs every global validator against ix/unit, recording findings
// on diags. Order doesn't matter between passes: each reads the index and
// AST without mutating either.
func Validate(ix *index.Index, diags *diag.Collector, unit *ast.CompilationUnit) {
	checkRecursiveDataStructures(ix, diags)
	checkDuplicates(ix, diags)
	checkPointerSafety(diags, unit)
	checkInterfaceContracts(ix, diags, unit)
}
