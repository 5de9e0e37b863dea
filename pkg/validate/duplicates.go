package validate

import (
	"sort"
	"strings"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/index"
	"github.com/gostc/stc/pkg/source"
)

// checkDuplicates reports every colliding declaration: POUs, types, and
// member/global variables sharing a name where the language gives no
// defined meaning to both existing at once. Grounded on
// duplicates_validation_test.rs's table of accepted/rejected collisions:
// a Function and a Type may share a name (the Function is usable as a
// cast-style alias of the Type), nothing else may. Compiler-synthesized
// names (vtable support types, monomorphized generics, STRING/pointer
// helper types) are exempt since the same name intentionally reappears
// across independently-indexed files.
func checkDuplicates(ix *index.Index, diags *diag.Collector) {
	reportSameBucketDuplicates(ix, diags)
	reportCrossNamespaceDuplicates(ix, diags)
}

func generated(name string) bool {
	return strings.HasPrefix(name, "__")
}

// reportSameBucketDuplicates surfaces the collisions the Index itself
// already recorded: two POUs, two types, or two variables of the same
// container registered under the identical (possibly qualified) name.
func reportSameBucketDuplicates(ix *index.Index, diags *diag.Collector) {
	for _, d := range ix.Duplicates() {
		if generated(d.Name) {
			continue
		}

		diags.Addf("E004", d.Loc, "duplicate %s %q", d.Kind, d.Name)
	}
}

type namedEntity struct {
	kind string // "pou", "type", "global"
	loc  source.Location
	pou  *index.POUEntry
}

// reportCrossNamespaceDuplicates catches collisions the Index can't see on
// its own because POUs, types, and globals live in separate maps: a
// Program named the same as a global variable, a FunctionBlock named the
// same as a Type, and so on. The sole permitted overlap is a Function
// sharing a name with a Type.
func reportCrossNamespaceDuplicates(ix *index.Index, diags *diag.Collector) {
	byName := map[string][]namedEntity{}

	for _, p := range ix.AllPOUs() {
		if !generated(p.Name) && !strings.Contains(p.Name, ".") {
			byName[p.Name] = append(byName[p.Name], namedEntity{kind: "pou", loc: p.Loc, pou: p})
		}
	}

	for _, t := range ix.AllTypes() {
		if !generated(t.Name) {
			byName[t.Name] = append(byName[t.Name], namedEntity{kind: "type", loc: t.Loc})
		}
	}

	for _, g := range ix.AllGlobals() {
		if !generated(g.Name) {
			byName[g.Name] = append(byName[g.Name], namedEntity{kind: "global", loc: g.Loc})
		}
	}

	for name, entities := range byName {
		kinds := map[string]int{}
		for _, e := range entities {
			kinds[e.kind]++
		}

		if len(kinds) < 2 {
			continue // same-bucket collisions already reported above
		}

		if functionTypeAlias(entities) {
			continue
		}

		sort.Slice(entities, func(i, j int) bool {
			if entities[i].kind != entities[j].kind {
				return entities[i].kind < entities[j].kind
			}

			return entities[i].loc.String() < entities[j].loc.String()
		})

		for _, e := range entities[1:] {
			diags.Addf("E004", e.loc, "%q is already declared as a different kind of symbol", name)
		}
	}
}

// functionTypeAlias reports whether entities is exactly one POU (a
// Function) and one Type, the single permitted cross-namespace overlap.
func functionTypeAlias(entities []namedEntity) bool {
	if len(entities) != 2 {
		return false
	}

	var pou *index.POUEntry

	kinds := map[string]bool{}

	for _, e := range entities {
		kinds[e.kind] = true
		if e.kind == "pou" {
			pou = e.pou
		}
	}

	return kinds["pou"] && kinds["type"] && pou != nil && pou.Kind == ast.POUFunction
}
