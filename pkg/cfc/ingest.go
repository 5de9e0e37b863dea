package cfc

import (
	"sort"

	"go.lsp.dev/uri"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/lexer"
	"github.com/gostc/stc/pkg/parser"
	"github.com/gostc/stc/pkg/source"
)

// Ingester decodes a diagram document into a POU body. One Ingester is
// scoped to a single document; its call-expression cache must not be
// reused across documents.
type Ingester struct {
	diags *diag.Collector
	docURI uri.URI
	byID  map[string]*Node
	calls map[string]*ast.Call // memoized Block call expressions, by LocalID
}

// Ingest decodes data as a diagram document and returns the POU it
// describes, with Body populated by walking the document in execution
// order. Diagnostics (malformed wiring, dangling references) are reported
// through diags rather than returned as an error; a JSON decode failure is
// the only returned error, since it leaves no document to walk at all.
func Ingest(filename string, data []byte, diags *diag.Collector) (*ast.POU, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}

	in := &Ingester{
		diags:  diags,
		docURI: uri.File(filename),
		byID:   make(map[string]*Node, len(doc.Nodes)),
		calls:  make(map[string]*ast.Call, len(doc.Nodes)),
	}

	for i := range doc.Nodes {
		in.byID[doc.Nodes[i].LocalID] = &doc.Nodes[i]
	}

	return in.build(doc), nil
}

func (in *Ingester) build(doc *Document) *ast.POU {
	returns := map[string]*ast.ReturnStmt{}
	labels := map[string]*ast.LabelStmt{}
	consumed := map[string]bool{}

	for _, n := range doc.Nodes {
		switch n.Kind {
		case KindReturn:
			returns[n.LocalID] = &ast.ReturnStmt{Base: ast.NewBase(in.blockLoc(n))}
		case KindLabel:
			labels[n.LocalID] = &ast.LabelStmt{Base: ast.NewBase(in.blockLoc(n)), Name: n.Label}
		case KindBlock:
			for _, p := range n.Inputs {
				if p.RefLocalID != "" {
					consumed[p.RefLocalID] = true
				}
			}
		case KindOutVariable, KindConnector:
			if n.RefLocalID != "" {
				consumed[n.RefLocalID] = true
			}
		}
	}

	// A Connector only relays a value read through it, so marking it
	// consumed must also mark whatever feeds it, transitively, until the
	// chain bottoms out at an InVariable or a Block.
	for changed := true; changed; {
		changed = false

		for _, n := range doc.Nodes {
			if n.Kind == KindConnector && consumed[n.LocalID] && n.RefLocalID != "" && !consumed[n.RefLocalID] {
				consumed[n.RefLocalID] = true
				changed = true
			}
		}
	}

	ordered := make([]*Node, 0, len(doc.Nodes))
	for i := range doc.Nodes {
		ordered = append(ordered, &doc.Nodes[i])
	}

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ExecutionOrder < ordered[j].ExecutionOrder })

	var body []ast.Stmt
	for _, n := range ordered {
		if s := in.statementFor(n, returns, labels, consumed); s != nil {
			body = append(body, s)
		}
	}

	return &ast.POU{
		Base: ast.NewBase(source.NewFileOnly(in.docURI)),
		Kind: ast.POUFunctionBlock,
		Name: doc.POUName,
		Body: body,
	}
}

// statementFor produces the statement a single node contributes to the
// body, or nil for nodes that only supply a value to other nodes
// (InVariable, Connector, and a Block whose single output is consumed by
// another node rather than left to run for effect alone) or that were
// already captured into the returns/labels tables above.
func (in *Ingester) statementFor(
	n *Node, returns map[string]*ast.ReturnStmt, labels map[string]*ast.LabelStmt, consumed map[string]bool,
) ast.Stmt {
	switch n.Kind {
	case KindInVariable, KindConnector:
		return nil

	case KindOutVariable:
		return &ast.Assignment{
			Base:  ast.NewBase(in.blockLoc(*n)),
			Kind:  ast.AssignRegular,
			Left:  &ast.Ident{Base: ast.NewBase(in.blockLoc(*n)), Name: n.VarName},
			Right: in.pinValue(Pin{Expression: n.Expression, RefLocalID: n.RefLocalID, RefPin: n.RefPin}, *n),
		}

	case KindBlock:
		if consumed[n.LocalID] {
			return nil
		}

		return &ast.ExprStmt{Base: ast.NewBase(in.blockLoc(*n)), Expr: in.callFor(n)}

	case KindReturn:
		return returns[n.LocalID]

	case KindLabel:
		return labels[n.LocalID]

	case KindJump:
		return in.jumpStatement(n, returns, labels)

	default:
		in.diags.Addf("E048", in.blockLoc(*n), "unrecognized diagram node kind %q", n.Kind)
		return nil
	}
}

// jumpStatement lowers a Jump node. An unconditional jump becomes the
// target's own statement directly (the shared *ast.ReturnStmt when the
// target is a Return node, preserving its AstId; a fresh JumpStmt naming
// the label otherwise). A guarded jump wraps that same statement in an
// `IF cond THEN ... END_IF`.
func (in *Ingester) jumpStatement(n *Node, returns map[string]*ast.ReturnStmt, labels map[string]*ast.LabelStmt) ast.Stmt {
	var target ast.Stmt

	if r, ok := returns[n.TargetID]; ok {
		target = r
	} else if l, ok := labels[n.TargetID]; ok {
		target = &ast.JumpStmt{Base: ast.NewBase(in.blockLoc(*n)), Label: l.Name}
	} else {
		in.diags.Addf("E048", in.blockLoc(*n), "jump target %q is not a Return or Label node", n.TargetID)
		return nil
	}

	if n.Condition == "" {
		return target
	}

	cond := in.parseFragment(n.Condition, *n)

	return &ast.IfStmt{
		Base: ast.NewBase(in.blockLoc(*n)),
		Cond: cond,
		Body: []ast.Stmt{target},
	}
}

// callFor returns the memoized Call expression for a Block node, building
// it from its input pins on first use.
func (in *Ingester) callFor(n *Node) *ast.Call {
	if c, ok := in.calls[n.LocalID]; ok {
		return c
	}

	args := make([]ast.CallArg, 0, len(n.Inputs))
	for _, p := range n.Inputs {
		args = append(args, ast.CallArg{Name: p.Name, Value: in.pinValue(p, *n)})
	}

	call := &ast.Call{
		Base:   ast.NewBase(in.blockLoc(*n)),
		Callee: &ast.Ident{Base: ast.NewBase(in.blockLoc(*n)), Name: n.TypeName},
		Args:   args,
	}

	in.calls[n.LocalID] = call

	return call
}

// pinValue resolves the value wired onto a pin: an inline expression takes
// priority, then a reference to an upstream node's output. owner is the
// node the pin belongs to, used only to locate diagnostics.
func (in *Ingester) pinValue(p Pin, owner Node) ast.Expr {
	if p.Expression != "" {
		return in.parseFragment(p.Expression, owner)
	}

	if p.RefLocalID == "" {
		in.diags.Addf("E048", in.blockLoc(owner), "pin on node %q has no wired value", owner.LocalID)
		return &ast.DefaultValue{Base: ast.NewBase(in.blockLoc(owner))}
	}

	return in.valueOf(p.RefLocalID, owner)
}

// valueOf resolves the value produced by the node identified by localID, as
// seen by a consumer at owner. A Connector or InVariable contributes either
// its own inline expression or, chained, whatever feeds its own RefLocalID;
// a Block contributes its (memoized) call expression. refPin, carried on
// the originating Pin, would disambiguate a multi-output upstream block;
// every node kind supported here has a single output, so it goes unused.
func (in *Ingester) valueOf(localID string, owner Node) ast.Expr {
	src, ok := in.byID[localID]
	if !ok {
		in.diags.Addf("E048", in.blockLoc(owner), "dangling wire to unknown node %q", localID)
		return &ast.DefaultValue{Base: ast.NewBase(in.blockLoc(owner))}
	}

	switch src.Kind {
	case KindInVariable, KindConnector:
		if src.Expression != "" {
			return in.parseFragment(src.Expression, *src)
		}

		if src.RefLocalID != "" {
			return in.valueOf(src.RefLocalID, owner)
		}

		in.diags.Addf("E048", in.blockLoc(owner), "node %q has no wired value", localID)

		return &ast.DefaultValue{Base: ast.NewBase(in.blockLoc(owner))}

	case KindBlock:
		return in.callFor(src)

	default:
		in.diags.Addf("E048", in.blockLoc(owner), "node %q cannot supply a value (kind %q)", localID, src.Kind)

		return &ast.DefaultValue{Base: ast.NewBase(in.blockLoc(owner))}
	}
}

// parseFragment parses text as a standalone expression, then relocates
// every resulting node to n's block location (§4.A) rather than the
// throwaway range the fragment parser assigned it.
func (in *Ingester) parseFragment(text string, n Node) ast.Expr {
	f := source.NewFile(n.LocalID, in.docURI, []byte(text))
	l := lexer.New(f, in.diags)
	p := parser.New(f, l, in.diags)

	e := p.ParseExpression()
	loc := in.blockLoc(n)
	relocate(e, loc)

	return e
}

func (in *Ingester) blockLoc(n Node) source.Location {
	return source.NewBlock(in.docURI, source.Block{LocalID: n.LocalID, ExecutionOrder: n.ExecutionOrder})
}
