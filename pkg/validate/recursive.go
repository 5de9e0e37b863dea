package validate

import (
	"strings"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/index"
	"github.com/gostc/stc/pkg/source"
	"github.com/gostc/stc/pkg/types"
)

// nodeStatus tracks a node's DFS coloring: unvisited or visited. Whether a
// node is on the current path is read from the path dfs carries.
type nodeStatus int

const (
	unvisited nodeStatus = iota
	visited
)

// recursiveChecker finds cycles among struct/function-block member
// nesting, a problem distinct from generating infinite code: a pointer
// member breaks the cycle (its size doesn't depend on the pointee), so
// only non-pointer member edges are followed. Grounded on
// RecursiveValidator.dfs: structs and function blocks are walked as two
// separate node sets. Nodes are visited in the order AllTypes/AllPOUs
// return them, which is not fixed, so a cycle is reported starting from
// whichever of its participants the walk reaches first.
type recursiveChecker struct {
	ix     *index.Index
	diags  *diag.Collector
	status map[string]nodeStatus
}

// checkRecursiveDataStructures reports every cycle among struct and
// function-block member types, and every cycle among type aliases.
func checkRecursiveDataStructures(ix *index.Index, diags *diag.Collector) {
	c := &recursiveChecker{ix: ix, diags: diags, status: map[string]nodeStatus{}}
	c.run(structNodes(ix))

	c.status = map[string]nodeStatus{}
	c.run(functionBlockNodes(ix))

	checkAliasCycles(ix, diags)
}

func structNodes(ix *index.Index) []string {
	var names []string

	for _, t := range ix.AllTypes() {
		if t.Decl != nil && t.Decl.Kind == ast.TypeStruct {
			names = append(names, t.Name)
		}
	}

	return names
}

func functionBlockNodes(ix *index.Index) []string {
	var names []string

	for _, p := range ix.AllPOUs() {
		if p.Kind == ast.POUFunctionBlock || p.Kind == ast.POUClass {
			names = append(names, p.Name)
		}
	}

	return names
}

func (c *recursiveChecker) run(nodes []string) {
	for _, n := range nodes {
		c.status[n] = unvisited
	}

	for _, n := range nodes {
		if c.status[n] == unvisited {
			c.dfs(n, nil)
		}
	}
}

// dfs visits curr and its non-pointer member types, appending curr to path
// for the duration of the visit. Reaching a node already on path reports
// the minimal cycle starting at that node; reaching an unvisited node
// recurses, and a node already fully explored is not entered again. Node identities not present among the tracked struct/FB set
// (e.g. an elementary type name) are ignored, matching the original's
// "only consider nodes which are structs or function-blocks" filter.
func (c *recursiveChecker) dfs(curr string, path []string) {
	c.status[curr] = visited
	path = append(path, curr)

	for _, member := range memberTypeNames(c.ix, curr) {
		if _, tracked := c.status[member]; !tracked {
			continue
		}

		if idx := indexOf(path, member); idx >= 0 {
			c.report(append(append([]string{}, path[idx:]...), member))
			continue
		}

		if c.status[member] == visited {
			continue
		}

		c.dfs(member, path)
	}
}

func memberTypeNames(ix *index.Index, container string) []string {
	seen := map[string]bool{}

	var names []string

	for _, m := range ix.GetPOUMembers(container) {
		if memberIsPointer(ix, m) {
			continue
		}

		if !seen[m.TypeName] {
			seen[m.TypeName] = true
			names = append(names, m.TypeName)
		}
	}

	return names
}

// memberIsPointer reports whether m's effective type is a pointer or a
// by-ref/variadic parameter, either of which breaks a would-be cycle since
// their representation doesn't nest the pointee's storage.
func memberIsPointer(ix *index.Index, m *index.VariableEntry) bool {
	if m.ByRef || m.Variadic || m.Role == index.RoleInOut {
		return true
	}

	_, isPtr := ix.FindEffectiveTypeInfo(m.TypeName).(types.PointerType)

	return isPtr
}

func indexOf(path []string, name string) int {
	for i, n := range path {
		if n == name {
			return i
		}
	}

	return -1
}

func (c *recursiveChecker) report(cycle []string) {
	locs := make([]source.Location, 0, len(cycle))
	for _, n := range cycle {
		locs = append(locs, nodeLoc(c.ix, n))
	}

	d := diag.New("E124", strings.Join(cycle, " -> ")+" forms a recursive data structure").At(locs[0])
	d.Related = locs[1:]
	c.diags.Add(d)
}

func nodeLoc(ix *index.Index, name string) source.Location {
	if t := ix.FindType(name); t.HasValue() {
		return t.Unwrap().Loc
	}

	if p := ix.FindPOU(name); p.HasValue() {
		return p.Unwrap().Loc
	}

	return source.None()
}

// checkAliasCycles reports a cycle among TYPE ... : OtherType; aliases.
// FindEffectiveType stops silently at the first repeated name, so this
// walks the same chain explicitly to collect the full cycle for the
// diagnostic.
func checkAliasCycles(ix *index.Index, diags *diag.Collector) {
	seenGlobally := map[string]bool{}

	for _, t := range ix.AllTypes() {
		if t.Decl == nil || t.Decl.Kind != ast.TypeAlias || seenGlobally[t.Name] {
			continue
		}

		chain := []string{t.Name}
		seen := map[string]int{t.Name: 0}
		curr := t.Decl.BaseType

		for {
			next := ix.FindType(curr)
			if !next.HasValue() || next.Unwrap().Decl == nil || next.Unwrap().Decl.Kind != ast.TypeAlias {
				break
			}

			if start, ok := seen[curr]; ok {
				cycle := append(append([]string{}, chain[start:]...), curr)
				for _, n := range cycle {
					seenGlobally[n] = true
				}

				locs := make([]source.Location, 0, len(cycle))
				for _, n := range cycle {
					locs = append(locs, nodeLoc(ix, n))
				}

				d := diag.New("E121", strings.Join(cycle, " -> ")+" forms a recursive type alias").At(locs[0])
				d.Related = locs[1:]
				diags.Add(d)

				break
			}

			seen[curr] = len(chain)
			chain = append(chain, curr)
			curr = next.Unwrap().Decl.BaseType
		}

		seenGlobally[t.Name] = true
	}
}
