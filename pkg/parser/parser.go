// Package parser implements the recursive-descent parser (§4.D): it
// consumes a lexer.Lexer token stream and produces an *ast.CompilationUnit,
// recovering from syntax errors by skipping to a production-appropriate
// synchronization point rather than aborting the file.
package parser

import (
	"strings"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/lexer"
	"github.com/gostc/stc/pkg/source"
)

// Parser holds the token lookahead buffer and diagnostic collector for one
// file's parse.
type Parser struct {
	lex     *lexer.Lexer
	factory *source.Factory
	diags   *diag.Collector
	cur     lexer.Token
	curLoc  source.Location
	ahead   *lexer.Token
}

// New constructs a parser over the given file, lexing it with l.
func New(file *source.File, l *lexer.Lexer, diags *diag.Collector) *Parser {
	p := &Parser{lex: l, factory: source.NewFactory(file), diags: diags}
	p.advance()

	return p
}

func (p *Parser) advance() {
	if p.ahead != nil {
		p.cur = *p.ahead
		p.ahead = nil
	} else {
		p.cur = p.lex.Next()
	}

	p.curLoc = p.lex.Loc(p.cur.Start)
}

func (p *Parser) peekAhead() lexer.Token {
	if p.ahead == nil {
		t := p.lex.Next()
		p.ahead = &t
	}

	return *p.ahead
}

func (p *Parser) at(kind lexer.Kind, text string) bool {
	return p.cur.Kind == kind && strings.EqualFold(p.cur.Text, text)
}

func (p *Parser) atKeyword(kw string) bool { return p.at(lexer.Keyword, kw) }
func (p *Parser) atPunct(s string) bool    { return p.at(lexer.Punct, s) }
func (p *Parser) atOp(s string) bool       { return p.at(lexer.Operator, s) }

func (p *Parser) loc() source.Location { return p.curLoc }

func (p *Parser) errorf(code, format string, args ...any) {
	p.diags.Addf(code, p.loc(), format, args...)
}

// expectKeyword consumes the current token if it matches kw, else reports
// E006 (missing token) and leaves the cursor in place so callers can
// attempt to resynchronize.
func (p *Parser) expectKeyword(kw string) bool {
	if p.atKeyword(kw) {
		p.advance()
		return true
	}

	p.errorf("E006", "expected %q, found %q", kw, p.cur.Text)

	return false
}

func (p *Parser) expectPunct(s string) bool {
	if p.atPunct(s) {
		p.advance()
		return true
	}

	p.errorf("E006", "expected %q, found %q", s, p.cur.Text)

	return false
}

// syncTo advances the token stream until it reaches one of the given
// keywords, EOF, or a semicolon, whichever comes first - the parser's
// generic error-recovery synchronization point.
func (p *Parser) syncTo(keywords ...string) {
	for p.cur.Kind != lexer.EOF {
		for _, kw := range keywords {
			if p.atKeyword(kw) {
				return
			}
		}

		if p.atPunct(";") {
			p.advance()
			return
		}

		p.lex.Advance()
		p.advance()
	}
}

// ParseExpression parses a single standalone expression and returns it
// without expecting anything to follow. Used by callers that only ever see
// expression fragments in isolation, such as pkg/cfc decoding a pin's wired
// text rather than a full declaration.
func (p *Parser) ParseExpression() ast.Expr {
	return p.parseExpr()
}

// ParseFile parses a complete file into a CompilationUnit, recovering from
// each top-level declaration's errors independently.
func (p *Parser) ParseFile(filename string) *ast.CompilationUnit {
	unit := &ast.CompilationUnit{Filename: filename}

	for p.cur.Kind != lexer.EOF {
		switch {
		case p.atKeyword("PROGRAM"):
			unit.POUs = append(unit.POUs, p.parsePOU(ast.POUProgram))
		case p.atKeyword("FUNCTION_BLOCK"):
			unit.POUs = append(unit.POUs, p.parsePOU(ast.POUFunctionBlock))
		case p.atKeyword("FUNCTION"):
			unit.POUs = append(unit.POUs, p.parsePOU(ast.POUFunction))
		case p.atKeyword("CLASS"):
			unit.POUs = append(unit.POUs, p.parsePOU(ast.POUClass))
		case p.atKeyword("INTERFACE"):
			unit.Interfaces = append(unit.Interfaces, p.parseInterface())
		case p.atKeyword("TYPE"):
			unit.Types = append(unit.Types, p.parseTypeBlock()...)
		case p.atKeyword("VAR_GLOBAL"):
			unit.Globals = append(unit.Globals, p.parseVarBlock())
		case p.atKeyword("ACTIONS"):
			owner, actions := p.parseActionsBlock()
			for _, a := range actions {
				a.Owner = owner
				unit.POUs = append(unit.POUs, a)
			}
		default:
			p.errorf("E007", "unexpected token %q at top level", p.cur.Text)
			p.syncTo("PROGRAM", "FUNCTION_BLOCK", "FUNCTION", "CLASS", "INTERFACE", "TYPE", "VAR_GLOBAL", "ACTIONS")
		}
	}

	return unit
}

func (p *Parser) parseIdentText() string {
	if p.cur.Kind != lexer.Ident && p.cur.Kind != lexer.Keyword {
		p.errorf("E007", "expected identifier, found %q", p.cur.Text)
		return ""
	}

	name := p.cur.Text
	p.advance()

	return name
}

func (p *Parser) parsePOU(kind ast.POUKind) *ast.POU {
	p.advance() // PROGRAM/FUNCTION_BLOCK/FUNCTION/CLASS

	pou := &ast.POU{Base: ast.NewBase(p.loc()), Kind: kind}
	pou.Name = p.parseIdentText()

	if kind == ast.POUFunction && p.atPunct(":") {
		p.advance()
		pou.ReturnType = p.parseTypeName()
	}

	if p.atKeyword("EXTENDS") {
		p.advance()
		pou.Extends = p.parseIdentText()
	}

	if p.atKeyword("IMPLEMENTS") {
		p.advance()

		for {
			pou.Implements = append(pou.Implements, p.parseIdentText())

			if p.atPunct(",") {
				p.advance()
				continue
			}

			break
		}
	}

	endKw := map[ast.POUKind]string{
		ast.POUProgram: "END_PROGRAM", ast.POUFunction: "END_FUNCTION",
		ast.POUFunctionBlock: "END_FUNCTION_BLOCK", ast.POUClass: "END_CLASS",
	}[kind]

	for !p.atKeyword(endKw) && p.cur.Kind != lexer.EOF {
		switch {
		case isVarBlockKeyword(p.cur):
			pou.VarBlocks = append(pou.VarBlocks, p.parseVarBlock())
		case p.atKeyword("METHOD"):
			pou.Methods = append(pou.Methods, p.parseMethod(pou.Name))
		default:
			pou.Body = append(pou.Body, p.parseStmt())
		}
	}

	endLoc := p.loc()
	p.expectKeyword(endKw)
	pou.Location = pou.Location.Span(endLoc)

	return pou
}

func (p *Parser) parseMethod(owner string) *ast.POU {
	p.advance() // METHOD

	pou := &ast.POU{Base: ast.NewBase(p.loc()), Kind: ast.POUMethod, Owner: owner}

	switch {
	case p.atKeyword("PUBLIC"), p.atKeyword("PRIVATE"), p.atKeyword("PROTECTED"), p.atKeyword("INTERNAL"):
		p.advance()
	}

	pou.Name = p.parseIdentText()

	if p.atPunct(":") {
		p.advance()
		pou.ReturnType = p.parseTypeName()
	}

	for !p.atKeyword("END_METHOD") && p.cur.Kind != lexer.EOF {
		if isVarBlockKeyword(p.cur) {
			pou.VarBlocks = append(pou.VarBlocks, p.parseVarBlock())
		} else {
			pou.Body = append(pou.Body, p.parseStmt())
		}
	}

	p.expectKeyword("END_METHOD")

	return pou
}

func (p *Parser) parseActionsBlock() (string, []*ast.POU) {
	p.advance() // ACTIONS

	owner := p.parseIdentText()

	var actions []*ast.POU

	for !p.atKeyword("END_ACTIONS") && p.cur.Kind != lexer.EOF {
		if p.atKeyword("ACTION") {
			p.advance()

			a := &ast.POU{Base: ast.NewBase(p.loc()), Kind: ast.POUAction, Owner: owner}
			a.Name = p.parseIdentText()

			for !p.atKeyword("END_ACTION") && p.cur.Kind != lexer.EOF {
				a.Body = append(a.Body, p.parseStmt())
			}

			p.expectKeyword("END_ACTION")
			actions = append(actions, a)
		} else {
			p.errorf("E007", "expected ACTION inside ACTIONS block")
			p.syncTo("ACTION", "END_ACTIONS")
		}
	}

	p.expectKeyword("END_ACTIONS")

	return owner, actions
}

func (p *Parser) parseInterface() *ast.InterfaceDecl {
	p.advance() // INTERFACE

	decl := &ast.InterfaceDecl{Base: ast.NewBase(p.loc())}
	decl.Name = p.parseIdentText()

	if p.atKeyword("EXTENDS") {
		p.advance()

		for {
			decl.Extends = append(decl.Extends, p.parseIdentText())

			if p.atPunct(",") {
				p.advance()
				continue
			}

			break
		}
	}

	for p.atKeyword("METHOD") {
		decl.Methods = append(decl.Methods, p.parseMethod(decl.Name))
	}

	p.expectKeyword("END_INTERFACE")

	return decl
}

func isVarBlockKeyword(t lexer.Token) bool {
	if t.Kind != lexer.Keyword {
		return false
	}

	switch t.Text {
	case "VAR", "VAR_INPUT", "VAR_OUTPUT", "VAR_IN_OUT", "VAR_TEMP", "VAR_GLOBAL", "VAR_CONFIG", "VAR_EXTERNAL":
		return true
	default:
		return false
	}
}

func (p *Parser) parseVarBlock() *ast.VarBlock {
	kindMap := map[string]ast.VarBlockKind{
		"VAR": ast.VarLocal, "VAR_INPUT": ast.VarInput, "VAR_OUTPUT": ast.VarOutput,
		"VAR_IN_OUT": ast.VarInOut, "VAR_TEMP": ast.VarTemp, "VAR_GLOBAL": ast.VarGlobal,
		"VAR_CONFIG": ast.VarConfig, "VAR_EXTERNAL": ast.VarExternal,
	}

	kind := kindMap[p.cur.Text]
	block := &ast.VarBlock{Base: ast.NewBase(p.loc()), Kind: kind}
	p.advance()

	for {
		switch {
		case p.atKeyword("CONSTANT"):
			block.Constant = true
			p.advance()
		case p.atKeyword("RETAIN"):
			block.Retain = true
			p.advance()
		case p.atKeyword("NON_RETAIN"):
			block.NonRetain = true
			p.advance()
		case p.atKeyword("PUBLIC"):
			block.Access = ast.AccessPublic
			p.advance()
		case p.atKeyword("PRIVATE"):
			block.Access = ast.AccessPrivate
			p.advance()
		case p.atKeyword("PROTECTED"):
			block.Access = ast.AccessProtected
			p.advance()
		case p.atKeyword("INTERNAL"):
			block.Access = ast.AccessInternal
			p.advance()
		default:
			goto done
		}
	}

done:
	for !p.atKeyword("END_VAR") && p.cur.Kind != lexer.EOF {
		block.Vars = append(block.Vars, p.parseVarDecl()...)
	}

	p.expectKeyword("END_VAR")

	return block
}

// parseVarDecl parses one `name1, name2 : type [:= init] [AT addr];` group,
// returning one VarDecl per name sharing the type/initializer/address.
func (p *Parser) parseVarDecl() []ast.VarDecl {
	start := p.loc()

	byRef := false
	if p.atPunct("{") {
		p.advance()

		if p.parseIdentText() == "ref" {
			byRef = true
		}

		p.expectPunct("}")
	}

	var names []string

	for {
		names = append(names, p.parseIdentText())

		if p.atPunct(",") {
			p.advance()
			continue
		}

		break
	}

	p.expectPunct(":")

	typeName, dims, isPtr, ptrKind, variadic, sized := p.parseTypeSpec()

	var init ast.Expr

	if p.atOp(":=") {
		p.advance()
		init = p.parseExpr()
	}

	address := ""

	if p.atKeyword("AT") {
		p.advance()
		address = p.cur.Text
		p.advance()
	}

	p.expectPunct(";")

	out := make([]ast.VarDecl, len(names))
	for i, n := range names {
		out[i] = ast.VarDecl{
			Base: ast.Base{Id: ast.NextId(), Location: start}, Name: n, TypeName: typeName,
			ArrayDims: dims, IsPointer: isPtr, PointerKind: ptrKind, IsVariadic: variadic,
			IsSized: sized, Initializer: init, Address: address, ByRef: byRef,
		}
	}

	return out
}

// parseTypeSpec parses a type reference as it appears after `:` in a
// variable declaration: a plain name, an ARRAY[...] OF form, or a pointer
// form, plus the variadic `T...` suffix.
func (p *Parser) parseTypeSpec() (name string, dims []ast.Range, isPtr bool, ptrKind string, variadic, sized bool) {
	if p.atPunct("{") {
		p.advance()

		if p.parseIdentText() == "sized" {
			sized = true
		}

		p.expectPunct("}")
	}

	switch {
	case p.atKeyword("POINTER"):
		p.advance()
		p.expectKeyword("TO")

		isPtr, ptrKind = true, "POINTER_TO"
		name = p.parseTypeName()
	case p.atKeyword("REF_TO"):
		p.advance()

		isPtr, ptrKind = true, "REF_TO"
		name = p.parseTypeName()
	case p.atKeyword("REFERENCE"):
		p.advance()
		p.expectKeyword("TO")

		isPtr, ptrKind = true, "REFERENCE_TO"
		name = p.parseTypeName()
	case p.atKeyword("ARRAY"):
		p.advance()
		p.expectPunct("[")

		for {
			dims = append(dims, p.parseArrayDim())

			if p.atPunct(",") {
				p.advance()
				continue
			}

			break
		}

		p.expectPunct("]")
		p.expectKeyword("OF")
		name, _, isPtr, ptrKind, _, _ = p.parseTypeSpec()
	default:
		name = p.parseTypeName()
	}

	if p.atPunct("...") {
		p.advance()
		variadic = true
	}

	return name, dims, isPtr, ptrKind, variadic, sized
}

func (p *Parser) parseArrayDim() ast.Range {
	if p.atOp("*") {
		loc := p.loc()
		p.advance()

		star := &ast.Literal{Base: ast.NewBase(loc), Kind: ast.LitInt, Text: "*"}

		return ast.Range{Base: ast.NewBase(loc), Low: star, High: star}
	}

	lo := p.parseExpr()
	p.expectPunct("..")
	hi := p.parseExpr()

	return ast.Range{Base: ast.NewBase(lo.Loc().Span(hi.Loc())), Low: lo, High: hi}
}

// parseTypeName parses a bare type-name token, including STRING[n]/
// WSTRING[n] and the subrange INT(lo..hi) form.
func (p *Parser) parseTypeName() string {
	name := p.parseIdentText()

	if p.atPunct("[") {
		p.advance()
		p.parseExpr() // size expression, carried by the caller via TypeDecl/VarDecl length metadata in a fuller build
		p.expectPunct("]")
	}

	if p.atPunct("(") {
		p.advance()
		p.parseExpr()
		p.expectPunct("..")
		p.parseExpr()
		p.expectPunct(")")
	}

	return name
}

func (p *Parser) parseTypeBlock() []*ast.TypeDecl {
	p.advance() // TYPE

	var decls []*ast.TypeDecl

	for !p.atKeyword("END_TYPE") && p.cur.Kind != lexer.EOF {
		decls = append(decls, p.parseOneTypeDecl())

		if p.atPunct(";") {
			p.advance()
		}
	}

	p.expectKeyword("END_TYPE")

	return decls
}

func (p *Parser) parseOneTypeDecl() *ast.TypeDecl {
	decl := &ast.TypeDecl{Base: ast.NewBase(p.loc())}
	decl.Name = p.parseIdentText()
	p.expectPunct(":")

	switch {
	case p.atKeyword("STRUCT"):
		p.advance()

		decl.Kind = ast.TypeStruct

		for !p.atKeyword("END_STRUCT") && p.cur.Kind != lexer.EOF {
			decl.Members = append(decl.Members, p.parseStructMember())
		}

		p.expectKeyword("END_STRUCT")
	case p.atPunct("("):
		p.advance()

		decl.Kind = ast.TypeEnum

		for {
			v := ast.EnumVariant{Name: p.parseIdentText()}

			if p.atOp(":=") {
				p.advance()
				v.Value = p.parseExpr()
			}

			decl.Variants = append(decl.Variants, v)

			if p.atPunct(",") {
				p.advance()
				continue
			}

			break
		}

		p.expectPunct(")")

		if p.atPunct(":") {
			p.advance()
			decl.BaseType = p.parseTypeName()
		}
	default:
		decl.Kind, decl.BaseType, decl.Low, decl.High = p.parseAliasOrSubrange()
	}

	if p.atOp(":=") {
		p.advance()
		decl.Initializer = p.parseExpr()
	}

	return decl
}

// parseAliasOrSubrange parses the default arm of a TYPE declaration's
// right-hand side: either a plain alias to another type name, or a
// subrange `INT(lo..hi)` constraint on a base type.
func (p *Parser) parseAliasOrSubrange() (kind ast.TypeDeclKind, base string, low, high ast.Expr) {
	base = p.parseIdentText()

	if p.atPunct("(") {
		p.advance()

		low = p.parseExpr()
		p.expectPunct("..")
		high = p.parseExpr()
		p.expectPunct(")")

		return ast.TypeSubrange, base, low, high
	}

	return ast.TypeAlias, base, nil, nil
}

func (p *Parser) parseStructMember() ast.StructMember {
	m := ast.StructMember{Name: p.parseIdentText()}
	p.expectPunct(":")

	typeName, dims, _, _, _, _ := p.parseTypeSpec()
	m.TypeName, m.ArrayDims = typeName, dims

	if p.atOp(":=") {
		p.advance()
		m.Initializer = p.parseExpr()
	}

	p.expectPunct(";")

	return m
}
