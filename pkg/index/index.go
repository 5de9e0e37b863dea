// Package index implements the global symbol table (§4.F): POUs, types,
// implementations, member variables, globals, enum variants, and the
// const-expression arena, plus the two-level scope design used to resolve
// references during type annotation. Grounded on the teacher's
// ModuleScope/LocalScope split in pkg/corset/compiler/scope.go, generalized
// from "module" to "container POU" as the scoping unit.
package index

import (
	"go.uber.org/atomic"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/source"
	"github.com/gostc/stc/pkg/types"
	"github.com/gostc/stc/pkg/util"
)

// POUKind mirrors ast.POUKind without importing it for every caller that
// only needs the index-level view.
type POUKind = ast.POUKind

// Linkage classifies where a POU's implementation lives.
type Linkage int

// The linkage kinds a POU entry can carry.
const (
	LinkageInternal Linkage = iota
	LinkageExternal
	LinkageBuiltin
)

// POUEntry is the index's record of one Program/Function/FunctionBlock/
// Class/Action/Method.
type POUEntry struct {
	Name       string
	Kind       POUKind
	ReturnType string
	Generics   []string // bound concrete type names; empty if monomorphic/non-generic
	Variadic   bool
	Extends    string
	Implements []string
	Linkage    Linkage
	CallName   string
	Decl       *ast.POU
	Loc        source.Location
}

// ArgRole classifies a member variable's parameter role.
type ArgRole int

// The roles a variable entry's argument kind can take.
const (
	RoleLocal ArgRole = iota
	RoleInput
	RoleOutput
	RoleInOut
	RoleTemp
	RoleGlobal
	RoleExternal
)

// VariableEntry is the index's record of one declared variable, whether a
// POU member or a global.
type VariableEntry struct {
	Name        string
	Qualified   string
	Container   string // "" for globals
	TypeName    string
	Offset      int
	Role        ArgRole
	ByRef       bool
	Constant    bool
	HWBinding   string
	InitConstID ConstID
	Variadic    bool // sentinel: trailing "..." member
	Loc         source.Location
}

// ImplKind distinguishes the forms an ImplementationEntry can take.
type ImplKind int

// The implementation kinds.
const (
	ImplPOUBody ImplKind = iota
	ImplAction
	ImplMethod
)

// ImplementationEntry records a callable body bound to an owning POU/class.
type ImplementationEntry struct {
	CallName string
	Owner    string
	Kind     ImplKind
	Decl     *ast.POU
}

// TypeEntry is the index's record of one named type.
type TypeEntry struct {
	Name        string
	Info        types.Type
	Nature      types.Nature
	InitConstID ConstID
	HasInit     bool
	Decl        *ast.TypeDecl
	Loc         source.Location
}

// EnumVariantEntry records one discriminant of an enum type.
type EnumVariantEntry struct {
	EnumName string
	Name     string
	ValueID  ConstID
}

// ConstID is a stable key into the const-expression arena. Allocated from a
// process-wide atomic counter (like ast.Id) rather than a per-index
// sequence, so independently-built per-file indices (§5) can be merged
// without ever needing to renumber a VariableEntry.InitConstID reference.
type ConstID uint64

var constIDCounter atomic.Uint64

func nextConstID() ConstID {
	return ConstID(constIDCounter.Inc())
}

// ConstExpr is an unevaluated (or folded) initializer expression, tagged
// with the type it must ultimately produce.
type ConstExpr struct {
	ID         ConstID
	Expr       ast.Expr
	TargetType string
	Scope      string // container name the expression's free identifiers resolve against, "" for global
	Folded     util.Option[FoldedValue]
}

// FoldedValueKind tags which field of a FoldedValue is populated.
type FoldedValueKind int

// The folded-value kinds the constant evaluator can produce.
const (
	FoldedInt FoldedValueKind = iota
	FoldedReal
	FoldedBool
	FoldedString
)

// FoldedValue is the frozen result of evaluating a ConstExpr.
type FoldedValue struct {
	Kind FoldedValueKind
	Int  int64
	Real float64
	Bool bool
	Str  string
}

// duplicateCandidate records a colliding registration: both entries are
// kept reachable (the old one is NOT overwritten) so the duplicate
// validator can report both declaration sites, mirroring ModuleScope's
// Define returning false rather than erroring.
type duplicateCandidate struct {
	Kind string // "pou", "type", "variable"
	Name string
	Loc  source.Location
}

// Index is the merged global symbol table.
type Index struct {
	pous            map[string]*POUEntry
	types           map[string]*TypeEntry
	impls           map[string]*ImplementationEntry
	membersOf       map[string]*orderedVars
	globals         map[string]*VariableEntry
	enumVariants    map[string][]EnumVariantEntry
	constExprs      map[ConstID]*ConstExpr
	duplicates      []duplicateCandidate
}

// orderedVars is an insertion-ordered map of a container's member
// variables, preserving declaration order for stable byte offsets.
type orderedVars struct {
	order []string
	byName map[string]*VariableEntry
}

func newOrderedVars() *orderedVars {
	return &orderedVars{byName: make(map[string]*VariableEntry)}
}

func (o *orderedVars) add(v *VariableEntry) bool {
	if _, exists := o.byName[v.Name]; exists {
		return false
	}

	o.order = append(o.order, v.Name)
	o.byName[v.Name] = v

	return true
}

// New constructs an empty index.
func New() *Index {
	return &Index{
		pous:         make(map[string]*POUEntry),
		types:        make(map[string]*TypeEntry),
		impls:        make(map[string]*ImplementationEntry),
		membersOf:    make(map[string]*orderedVars),
		globals:      make(map[string]*VariableEntry),
		enumVariants: make(map[string][]EnumVariantEntry),
		constExprs:   make(map[ConstID]*ConstExpr),
	}
}

// NewConstID allocates and registers a fresh const-expression arena entry.
func (ix *Index) NewConstID(expr ast.Expr, targetType, scope string) ConstID {
	id := nextConstID()
	ix.constExprs[id] = &ConstExpr{ID: id, Expr: expr, TargetType: targetType, Scope: scope}

	return id
}

// ConstExpr looks up a const-expression arena entry.
func (ix *Index) ConstExpr(id ConstID) (*ConstExpr, bool) {
	c, ok := ix.constExprs[id]
	return c, ok
}

// AllConstExprs returns every const-expression arena entry, for the
// constant evaluator's fixed-point loop to iterate over.
func (ix *Index) AllConstExprs() []*ConstExpr {
	out := make([]*ConstExpr, 0, len(ix.constExprs))
	for _, c := range ix.constExprs {
		out = append(out, c)
	}

	return out
}

// RegisterPOU inserts a POU entry. Returns false (and records a duplicate
// candidate) if the name already exists; both entries remain reachable.
func (ix *Index) RegisterPOU(e *POUEntry) bool {
	if _, exists := ix.pous[e.Name]; exists {
		ix.duplicates = append(ix.duplicates, duplicateCandidate{Kind: "pou", Name: e.Name, Loc: e.Loc})
		return false
	}

	ix.pous[e.Name] = e

	return true
}

// RegisterType inserts a type entry, same duplicate-candidate semantics as
// RegisterPOU.
func (ix *Index) RegisterType(e *TypeEntry) bool {
	if _, exists := ix.types[e.Name]; exists {
		ix.duplicates = append(ix.duplicates, duplicateCandidate{Kind: "type", Name: e.Name, Loc: e.Loc})
		return false
	}

	ix.types[e.Name] = e

	return true
}

// RegisterImplementation inserts an implementation entry keyed by its call
// name.
func (ix *Index) RegisterImplementation(e *ImplementationEntry) bool {
	if _, exists := ix.impls[e.CallName]; exists {
		return false
	}

	ix.impls[e.CallName] = e

	return true
}

// CreateMemberVariable registers a member variable under the given
// container. Returns false (and records a duplicate candidate) on a
// name collision within the same container.
func (ix *Index) CreateMemberVariable(container string, v *VariableEntry) bool {
	group, ok := ix.membersOf[container]
	if !ok {
		group = newOrderedVars()
		ix.membersOf[container] = group
	}

	v.Container = container
	v.Qualified = container + "." + v.Name

	if !group.add(v) {
		ix.duplicates = append(ix.duplicates, duplicateCandidate{Kind: "variable", Name: v.Qualified, Loc: v.Loc})
		return false
	}

	return true
}

// RegisterGlobalInitializer registers a VAR_GLOBAL entry.
func (ix *Index) RegisterGlobalInitializer(v *VariableEntry) bool {
	if _, exists := ix.globals[v.Name]; exists {
		ix.duplicates = append(ix.duplicates, duplicateCandidate{Kind: "variable", Name: v.Name, Loc: v.Loc})
		return false
	}

	v.Qualified = v.Name
	ix.globals[v.Name] = v

	return true
}

// RegisterEnumVariant records one discriminant of an enum type.
func (ix *Index) RegisterEnumVariant(e EnumVariantEntry) {
	ix.enumVariants[e.EnumName] = append(ix.enumVariants[e.EnumName], e)
}

// FindPOU looks up a POU by name.
func (ix *Index) FindPOU(name string) util.Option[*POUEntry] {
	if e, ok := ix.pous[name]; ok {
		return util.Some(e)
	}

	return util.None[*POUEntry]()
}

// FindType looks up a named type entry.
func (ix *Index) FindType(name string) util.Option[*TypeEntry] {
	if e, ok := ix.types[name]; ok {
		return util.Some(e)
	}

	return util.None[*TypeEntry]()
}

// FindImplementation looks up an implementation by call name.
func (ix *Index) FindImplementation(callName string) util.Option[*ImplementationEntry] {
	if e, ok := ix.impls[callName]; ok {
		return util.Some(e)
	}

	return util.None[*ImplementationEntry]()
}

// FindMember looks up one member variable of a container.
func (ix *Index) FindMember(container, name string) util.Option[*VariableEntry] {
	group, ok := ix.membersOf[container]
	if !ok {
		return util.None[*VariableEntry]()
	}

	if v, ok := group.byName[name]; ok {
		return util.Some(v)
	}

	return util.None[*VariableEntry]()
}

// FindGlobal looks up a VAR_GLOBAL entry.
func (ix *Index) FindGlobal(name string) util.Option[*VariableEntry] {
	if v, ok := ix.globals[name]; ok {
		return util.Some(v)
	}

	return util.None[*VariableEntry]()
}

// GetPOUMembers returns a container's members in declaration order.
func (ix *Index) GetPOUMembers(container string) []*VariableEntry {
	group, ok := ix.membersOf[container]
	if !ok {
		return nil
	}

	out := make([]*VariableEntry, len(group.order))
	for i, name := range group.order {
		out[i] = group.byName[name]
	}

	return out
}

// FindInputParameter returns the index-th VAR_INPUT member of fn, in
// declaration order.
func (ix *Index) FindInputParameter(fn string, idx int) util.Option[*VariableEntry] {
	i := 0

	for _, v := range ix.GetPOUMembers(fn) {
		if v.Role == RoleInput {
			if i == idx {
				return util.Some(v)
			}

			i++
		}
	}

	return util.None[*VariableEntry]()
}

// GetVariadicMember returns fn's trailing variadic member, if it has one.
func (ix *Index) GetVariadicMember(fn string) util.Option[*VariableEntry] {
	for _, v := range ix.GetPOUMembers(fn) {
		if v.Variadic {
			return util.Some(v)
		}
	}

	return util.None[*VariableEntry]()
}

// FindEffectiveType walks through Alias type entries until it reaches a
// primitive or structural type, returning the final name.
func (ix *Index) FindEffectiveType(name string) string {
	seen := map[string]bool{}

	for {
		if seen[name] {
			return name // cyclic alias; the recursion validator reports this separately
		}

		seen[name] = true

		e, ok := ix.types[name]
		if !ok {
			return name
		}

		if alias, ok := e.Info.(types.NamedType); ok && alias.Name != name {
			name = alias.Name
			continue
		}

		return name
	}
}

// FindEffectiveTypeInfo resolves a type name all the way to its intrinsic
// Type descriptor.
func (ix *Index) FindEffectiveTypeInfo(name string) types.Type {
	if t, ok := types.Elementary(name); ok {
		return t
	}

	eff := ix.FindEffectiveType(name)
	if t, ok := types.Elementary(eff); ok {
		return t
	}

	if e, ok := ix.types[eff]; ok {
		return e.Info
	}

	return types.AnyType{}
}

// Duplicates returns every recorded duplicate-registration candidate, for
// the duplicate validator to report.
func (ix *Index) Duplicates() []duplicateCandidate {
	return ix.duplicates
}

// AllPOUs returns every registered POU entry.
func (ix *Index) AllPOUs() []*POUEntry {
	out := make([]*POUEntry, 0, len(ix.pous))
	for _, p := range ix.pous {
		out = append(out, p)
	}

	return out
}

// AllGlobals returns every registered VAR_GLOBAL/VAR_CONFIG entry.
func (ix *Index) AllGlobals() []*VariableEntry {
	out := make([]*VariableEntry, 0, len(ix.globals))
	for _, v := range ix.globals {
		out = append(out, v)
	}

	return out
}

// AllTypes returns every registered type entry.
func (ix *Index) AllTypes() []*TypeEntry {
	out := make([]*TypeEntry, 0, len(ix.types))
	for _, t := range ix.types {
		out = append(out, t)
	}

	return out
}

// Import merges another index's entries into this one, preserving
// insertion order and surfacing collisions as duplicate candidates rather
// than discarding either side.
func (ix *Index) Import(other *Index) {
	for _, p := range other.pous {
		ix.RegisterPOU(p)
	}

	for _, t := range other.types {
		ix.RegisterType(t)
	}

	for _, impl := range other.impls {
		ix.RegisterImplementation(impl)
	}

	for container, group := range other.membersOf {
		for _, name := range group.order {
			ix.CreateMemberVariable(container, group.byName[name])
		}
	}

	for _, g := range other.globals {
		ix.RegisterGlobalInitializer(g)
	}

	for enumName, variants := range other.enumVariants {
		for _, v := range variants {
			_ = enumName
			ix.RegisterEnumVariant(v)
		}
	}

	for id, c := range other.constExprs {
		ix.constExprs[id] = c
	}

	ix.duplicates = append(ix.duplicates, other.duplicates...)
}
