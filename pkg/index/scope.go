package index

import "github.com/gostc/stc/pkg/util"

// Scope is the enclosing-chain lookup capability the annotator uses to
// resolve a bare identifier against declarations visible at a given point
// in the AST. Grounded on the teacher's ModuleScope/LocalScope split: a
// Scope here plays the role of the teacher's LocalScope (per-statement,
// enclosing-chain, carrying purity/constancy/global flags), while the
// Index itself plays the role of the teacher's ModuleScope (the flat,
// globally-addressable symbol table).
type Scope struct {
	parent    *Scope
	container string // POU this scope's LocalVariable lookups resolve against, "" if none
	locals    map[string]*VariableEntry
	isGlobal  bool
	isConst   bool
	isPure    bool
}

// NewRootScope constructs the outermost scope: global, neither constant
// nor pure.
func NewRootScope() *Scope {
	return &Scope{locals: make(map[string]*VariableEntry), isGlobal: true}
}

// Nested returns a child scope bound to the given container (a POU or
// method body), inheriting purity/constancy flags from the parent.
func (s *Scope) Nested(container string) *Scope {
	return &Scope{parent: s, container: container, locals: make(map[string]*VariableEntry),
		isConst: s.isConst, isPure: s.isPure}
}

// NestedConst returns a child scope in which every lookup is additionally
// required to be a compile-time constant, used while evaluating
// initializers and array bounds.
func (s *Scope) NestedConst() *Scope {
	child := s.Nested(s.container)
	child.isGlobal = s.isGlobal
	child.isConst = true
	child.isPure = true

	return child
}

// DeclareLocal introduces a local binding only visible within this scope
// and its children.
func (s *Scope) DeclareLocal(v *VariableEntry) {
	s.locals[v.Name] = v
}

// IsGlobal reports whether this scope is the root global scope (or a
// NestedConst child of it). Scopes made by Nested report false.
func (s *Scope) IsGlobal() bool { return s.isGlobal }

// IsConstant reports whether this scope requires constant expressions.
func (s *Scope) IsConstant() bool { return s.isConst }

// IsPure reports whether this scope forbids side-effecting calls (e.g.
// inside a constant expression or an array-bound expression).
func (s *Scope) IsPure() bool { return s.isPure }

// Container returns the POU name this scope's member lookups resolve
// against, or "" if there is none (global scope).
func (s *Scope) Container() string { return s.container }

// Resolve looks up name level by level, starting at this scope: at each
// level first its own locals, then (if that level has a container) the
// index's members for that container, then the parent level; finally the
// index's globals. Returns the resolved VariableEntry and a human-readable kind
// tag ("local", "member", "global") for diagnostics.
func (s *Scope) Resolve(ix *Index, name string) (entry *VariableEntry, kind string, ok bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, found := cur.locals[name]; found {
			return v, "local", true
		}

		if cur.container != "" {
			if v := ix.FindMember(cur.container, name); v.HasValue() {
				return v.Unwrap(), "member", true
			}
		}
	}

	if v := ix.FindGlobal(name); v.HasValue() {
		return v.Unwrap(), "global", true
	}

	return nil, "", false
}

// ResolveCallable looks up name as a POU (function/function-block/program/
// method), first as a method of the nearest enclosing container's class
// (if any), then as a free-standing POU.
func (s *Scope) ResolveCallable(ix *Index, name string) util.Option[*POUEntry] {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.container != "" {
			qualified := cur.container + "." + name
			if p := ix.FindPOU(qualified); p.HasValue() {
				return p
			}
		}
	}

	return ix.FindPOU(name)
}
