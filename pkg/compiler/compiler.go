// Package compiler orchestrates the front-end pipeline over a whole project:
// parsing every file, merging their symbols into one index, then running the
// constant-folding, type-annotation, lowering and validation passes over the
// merged result. Grounded on the teacher's top-level Compiler[M].Compile
// sequencing (pkg/corset/compiler.go), adapted from a single generic-schema
// compile into the multi-file index/annotate/lower/validate pipeline this
// front end needs; file parsing and per-file indexing run in parallel the
// way the teacher's own CompileSourceFiles parses every source file up
// front before any analysis begins.
package compiler

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gostc/stc/pkg/annotate"
	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/cfc"
	"github.com/gostc/stc/pkg/consteval"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/index"
	"github.com/gostc/stc/pkg/lexer"
	"github.com/gostc/stc/pkg/lower"
	"github.com/gostc/stc/pkg/parser"
	"github.com/gostc/stc/pkg/source"
	"github.com/gostc/stc/pkg/validate"
)

// Result is everything a caller needs after a project has been compiled:
// the parsed units, the merged symbol index, the resolved type information,
// and every diagnostic raised along the way.
type Result struct {
	Units     []*ast.CompilationUnit
	Index     *index.Index
	Annotator *annotate.Annotator
	Diags     *diag.Collector
}

// unitResult pairs one file's parsed unit with the private index built from
// it alone, before that index is merged into the project-wide one.
type unitResult struct {
	unit *ast.CompilationUnit
	ix   *index.Index
}

// Compile runs the full front-end pipeline over files, a mix of textual
// Structured Text sources and CFC/FBD diagram documents (identified by a
// ".cfc"/".fbd" extension). log receives one structured entry per pass;
// pipeline code never reaches for logrus.StandardLogger, since a caller
// embedding this as a library may want its own logger wired in instead.
func Compile(log *logrus.Logger, files []*source.File) *Result {
	diags := diag.NewCollector()

	results := parseAndIndexAll(log, diags, files)

	global := index.New()
	for _, r := range results {
		global.Import(r.ix)
	}

	units := make([]*ast.CompilationUnit, 0, len(results))
	for _, r := range results {
		units = append(units, r.unit)
	}

	log.WithFields(logrus.Fields{"pass": "index", "errors": len(diags.Diagnostics())}).Debug("merged project index")

	consteval.Evaluate(global, diags)
	log.WithFields(logrus.Fields{"pass": "consteval", "errors": len(diags.Diagnostics())}).Debug("folded constant expressions")

	// The Annotator accumulates its declared/hint/mangled-callee tables
	// across every Annotate call so cross-file calls resolve; that shared,
	// unlocked state rules out running these calls concurrently against one
	// Annotator the way the parse/index stage runs concurrently against
	// independent per-file indexes.
	ann := annotate.New(global, diags)
	for _, u := range units {
		ann.Annotate(u)
	}

	log.WithFields(logrus.Fields{"pass": "annotate", "errors": len(diags.Diagnostics())}).Debug("annotated types")

	for _, u := range units {
		lower.Lower(global, diags, u)
	}

	log.WithFields(logrus.Fields{"pass": "lower", "errors": len(diags.Diagnostics())}).Debug("lowered initializers and vtables")

	for _, u := range units {
		validate.Validate(global, diags, u)
	}

	log.WithFields(logrus.Fields{"pass": "validate", "errors": len(diags.Diagnostics())}).Debug("validated project")

	return &Result{Units: units, Index: global, Annotator: ann, Diags: diags}
}

// parseAndIndexAll parses every file and builds its private index
// concurrently, one goroutine per file, then waits for all of them before
// returning. Each file gets its own diag.Collector internally-free index
// build since index.Builder isn't meant to be shared across goroutines;
// diagnostics from parsing and indexing are appended into diags under a
// mutex, preserving file order in the final slice but not necessarily in
// diags itself.
func parseAndIndexAll(log *logrus.Logger, diags *diag.Collector, files []*source.File) []unitResult {
	results := make([]unitResult, len(files))

	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, f := range files {
		wg.Add(1)

		go func(i int, f *source.File) {
			defer wg.Done()

			localDiags := diag.NewCollector()

			unit := parseOne(f, localDiags)

			ix := index.New()
			index.NewBuilder(ix, localDiags).Build(unit)

			mu.Lock()
			for _, d := range localDiags.Diagnostics() {
				diags.Add(d)
			}
			mu.Unlock()

			results[i] = unitResult{unit: unit, ix: ix}
		}(i, f)
	}

	wg.Wait()

	log.WithFields(logrus.Fields{"pass": "parse", "files": len(files)}).Debug("parsed and indexed project files")

	return results
}

// parseOne parses a single file's contents, dispatching to the diagram
// ingester for a CFC/FBD document and to the textual parser otherwise, and
// wraps the result in a single-POU, single-file CompilationUnit for a
// diagram document (which carries no VAR_GLOBAL or TYPE blocks of its own).
func parseOne(f *source.File, diags *diag.Collector) *ast.CompilationUnit {
	if isDiagramFile(f.Filename) {
		pou, err := cfc.Ingest(f.Filename, []byte(string(f.Contents)), diags)
		if err != nil {
			diags.Addf("E002", source.NewFileOnly(f.URI), "failed to decode diagram document: %v", err)
			return &ast.CompilationUnit{Filename: f.Filename}
		}

		return &ast.CompilationUnit{Filename: f.Filename, POUs: []*ast.POU{pou}}
	}

	l := lexer.New(f, diags)
	p := parser.New(f, l, diags)

	return p.ParseFile(f.Filename)
}

func isDiagramFile(filename string) bool {
	n := len(filename)
	return n >= 4 && (filename[n-4:] == ".cfc" || filename[n-4:] == ".fbd")
}
