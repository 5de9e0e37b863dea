package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/lexer"
	"github.com/gostc/stc/pkg/source"
)

// parseExpr parses a full expression: logical OR is the loosest binder.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseXor()

	for p.atKeyword("OR") {
		loc := p.loc()
		p.advance()

		right := p.parseXor()
		left = &ast.BinaryOp{Base: ast.NewBase(loc), Op: "OR", Left: left, Right: right}
	}

	return left
}

func (p *Parser) parseXor() ast.Expr {
	left := p.parseAnd()

	for p.atKeyword("XOR") {
		loc := p.loc()
		p.advance()

		right := p.parseAnd()
		left = &ast.BinaryOp{Base: ast.NewBase(loc), Op: "XOR", Left: left, Right: right}
	}

	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseComparison()

	for p.atKeyword("AND") || p.atOp("&") {
		loc := p.loc()
		p.advance()

		right := p.parseComparison()
		left = &ast.BinaryOp{Base: ast.NewBase(loc), Op: "AND", Left: left, Right: right}
	}

	return left
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()

	for p.atOp("=") || p.atOp("<>") || p.atOp("<") || p.atOp(">") || p.atOp("<=") || p.atOp(">=") {
		op := p.cur.Text
		loc := p.loc()
		p.advance()

		right := p.parseAdditive()
		left = &ast.BinaryOp{Base: ast.NewBase(loc), Op: op, Left: left, Right: right}
	}

	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()

	for p.atOp("+") || p.atOp("-") {
		op := p.cur.Text
		loc := p.loc()
		p.advance()

		right := p.parseMultiplicative()
		left = &ast.BinaryOp{Base: ast.NewBase(loc), Op: op, Left: left, Right: right}
	}

	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseExponent()

	for p.atOp("*") || p.atOp("/") || p.atKeyword("MOD") {
		op := p.cur.Text
		loc := p.loc()
		p.advance()

		right := p.parseExponent()
		left = &ast.BinaryOp{Base: ast.NewBase(loc), Op: op, Left: left, Right: right}
	}

	return left
}

// parseExponent is right-associative: a**b**c == a**(b**c).
func (p *Parser) parseExponent() ast.Expr {
	left := p.parseUnary()

	if p.atOp("**") {
		loc := p.loc()
		p.advance()

		right := p.parseExponent()

		return &ast.BinaryOp{Base: ast.NewBase(loc), Op: "**", Left: left, Right: right}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.atOp("-") || p.atKeyword("NOT") {
		op := p.cur.Text
		loc := p.loc()
		p.advance()

		operand := p.parseUnary()

		return &ast.UnaryOp{Base: ast.NewBase(loc), Op: op, Operand: operand}
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()

	for {
		switch {
		case p.atPunct(".") && p.peekAhead().Kind == lexer.DirectAddress:
			loc := p.loc()
			p.advance()

			text := p.cur.Text
			sub := p.parseDirectAccessLiteral(loc, text)
			p.advance()

			if da, ok := sub.(*ast.DirectAccess); ok {
				da.Anchor = expr
				expr = da
			} else {
				expr = sub
			}
		case p.atPunct("."):
			loc := p.loc()
			p.advance()

			name := p.parseIdentText()
			expr = &ast.MemberAccess{Base: ast.NewBase(loc), Left: expr, Name: name}
		case p.atPunct("["):
			loc := p.loc()
			p.advance()

			var indices []ast.Expr

			for {
				indices = append(indices, p.parseExpr())

				if p.atPunct(",") {
					p.advance()
					continue
				}

				break
			}

			p.expectPunct("]")

			expr = &ast.ArrayAccess{Base: ast.NewBase(loc), Left: expr, Indices: indices}
		case p.atOp("^"):
			loc := p.loc()
			p.advance()
			expr = &ast.Deref{Base: ast.NewBase(loc), Left: expr}
		case p.atPunct("(") && isCallable(expr):
			expr = p.parseCall(expr)
		default:
			return expr
		}
	}
}

// isCallable reports whether expr may be followed by a parenthesized
// argument list: a bare name or a qualified member (e.g. `fb.method(...)`).
func isCallable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Ident, *ast.MemberAccess:
		return true
	default:
		return false
	}
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	loc := p.loc()
	p.advance() // (

	call := &ast.Call{Base: ast.NewBase(loc), Callee: callee}

	for !p.atPunct(")") && p.cur.Kind != lexer.EOF {
		arg := p.parseCallArg()
		call.Args = append(call.Args, arg)

		if p.atPunct(",") {
			p.advance()
			continue
		}

		break
	}

	endLoc := p.loc()
	p.expectPunct(")")
	call.Location = call.Location.Span(endLoc)

	return call
}

func (p *Parser) parseCallArg() ast.CallArg {
	// Disambiguate `name := value` / `name => value` named args from a
	// positional expression that happens to start with an identifier by
	// looking one token ahead.
	if p.cur.Kind == lexer.Ident {
		ahead := p.peekAhead()
		if ahead.Kind == lexer.Operator && (ahead.Text == ":=" || ahead.Text == "=>") {
			name := p.cur.Text
			output := ahead.Text == "=>"
			p.advance()
			p.advance()

			return ast.CallArg{Name: name, Output: output, Value: p.parseExpr()}
		}
	}

	return ast.CallArg{Value: p.parseExpr()}
}

func (p *Parser) parsePrimary() ast.Expr {
	loc := p.loc()

	switch {
	case p.cur.Kind == lexer.IntLiteral:
		text := p.cur.Text
		p.advance()

		return parseIntLiteral(loc, text)
	case p.cur.Kind == lexer.RealLiteral:
		text := p.cur.Text
		p.advance()

		v, _ := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)

		return &ast.Literal{Base: ast.NewBase(loc), Kind: ast.LitReal, Text: text, Real: v, TypeName: "REAL"}
	case p.cur.Kind == lexer.BoolLiteral:
		text := p.cur.Text
		p.advance()

		return &ast.Literal{
			Base: ast.NewBase(loc), Kind: ast.LitBool, Text: text,
			Bool: strings.EqualFold(text, "TRUE"), TypeName: "BOOL",
		}
	case p.cur.Kind == lexer.StringLiteral:
		text := p.cur.Text
		p.advance()

		return &ast.Literal{
			Base: ast.NewBase(loc), Kind: ast.LitString, Text: text, Str: unquote(text),
			TypeName: "STRING",
		}
	case p.cur.Kind == lexer.WideStringLiteral:
		text := p.cur.Text
		p.advance()

		return &ast.Literal{
			Base: ast.NewBase(loc), Kind: ast.LitWideString, Text: text, Str: unquote(text),
			TypeName: "WSTRING",
		}
	case p.cur.Kind == lexer.DirectAddress:
		text := p.cur.Text
		p.advance()

		return p.parseDirectAccessLiteral(loc, text)
	case p.atKeyword("NULL"):
		p.advance()
		return &ast.Literal{Base: ast.NewBase(loc), Kind: ast.LitNull, Text: "NULL"}
	case p.atPunct("("):
		p.advance()

		inner := p.parseExpr()
		p.expectPunct(")")

		return inner
	case p.atPunct("["):
		return p.parseArrayLiteral(loc)
	case p.cur.Kind == lexer.Ident && p.peekAhead().Kind == lexer.Punct && p.peekAhead().Text == "#":
		return p.parseCastOrTimeLiteral(loc)
	case p.cur.Kind == lexer.Ident || p.cur.Kind == lexer.Keyword:
		name := p.cur.Text
		p.advance()

		return &ast.Ident{Base: ast.NewBase(loc), Name: name}
	default:
		p.errorf("E007", "unexpected token %q in expression", p.cur.Text)
		p.advance()

		return &ast.Ident{Base: ast.NewBase(loc), Name: "<error>"}
	}
}

// parseIntLiteral decodes a (possibly based, possibly underscore-separated)
// integer lexeme and assigns its phase-1 elementary type: DINT if the value
// fits a signed 32-bit range, LINT otherwise.
func parseIntLiteral(loc source.Location, text string) ast.Expr {
	clean := strings.ReplaceAll(text, "_", "")

	var value int64

	if idx := strings.IndexByte(clean, '#'); idx >= 0 {
		base, _ := strconv.Atoi(clean[:idx])

		u, _ := strconv.ParseUint(clean[idx+1:], base, 64)
		value = int64(u)
	} else {
		value, _ = strconv.ParseInt(clean, 10, 64)
	}

	typeName := "DINT"
	if value > math.MaxInt32 || value < math.MinInt32 {
		typeName = "LINT"
	}

	return &ast.Literal{Base: ast.NewBase(loc), Kind: ast.LitInt, Text: text, Int: value, TypeName: typeName}
}

func unquote(text string) string {
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}

	return text
}

func (p *Parser) parseArrayLiteral(loc source.Location) ast.Expr {
	p.advance() // [

	lit := &ast.ArrayLiteral{Base: ast.NewBase(loc)}

	for !p.atPunct("]") && p.cur.Kind != lexer.EOF {
		lit.Elements = append(lit.Elements, p.parseExpr())

		if p.atPunct(",") {
			p.advance()
			continue
		}

		break
	}

	endLoc := p.loc()
	p.expectPunct("]")
	lit.Location = lit.Location.Span(endLoc)

	return lit
}

// durationPrefixes names the identifiers that introduce a mixed-unit
// duration literal rather than a typed-literal cast.
var durationPrefixes = map[string]bool{"T": true, "TIME": true, "LT": true, "LTIME": true}

// dateTimePrefixes maps the identifiers that introduce a date/time-of-day/
// date-and-time literal to the LiteralKind they produce.
var dateTimePrefixes = map[string]ast.LiteralKind{
	"D": ast.LitDate, "DATE": ast.LitDate, "LD": ast.LitDate, "LDATE": ast.LitDate,
	"TOD": ast.LitTimeOfDay, "TIME_OF_DAY": ast.LitTimeOfDay, "LTOD": ast.LitTimeOfDay,
	"DT": ast.LitDateAndTime, "DATE_AND_TIME": ast.LitDateAndTime, "LDT": ast.LitDateAndTime,
}

// parseCastOrTimeLiteral handles every `NAME#...` form: a mixed-unit
// duration literal (T#.../TIME#...), a date/time-of-day/date-and-time
// literal (DATE#.../TOD#.../DT#...), or a typed-literal cast (INT#16,
// BYTE#16#FF).
func (p *Parser) parseCastOrTimeLiteral(loc source.Location) ast.Expr {
	name := p.parseIdentText() // also consumes the '#' sentinel into p.cur
	upper := strings.ToUpper(name)

	switch {
	case durationPrefixes[upper]:
		tok := p.lex.ScanDurationBody()
		endLoc := p.lex.Loc(tok.Start)
		p.advance()

		return &ast.Literal{
			Base: ast.NewBase(loc.Span(endLoc)), Kind: ast.LitDuration,
			Text: upper + "#" + tok.Text, TypeName: upper,
		}
	default:
		if kind, ok := dateTimePrefixes[upper]; ok {
			p.advance() // '#'

			body, bodyLoc := p.scanAdjacentLiteralRun()

			return &ast.Literal{
				Base: ast.NewBase(loc.Span(bodyLoc)), Kind: kind, Text: upper + "#" + body, TypeName: upper,
			}
		}

		p.advance() // '#'
		operand := p.parseUnary()

		return &ast.Cast{Base: ast.NewBase(loc), TypeName: upper, Operand: operand}
	}
}

// scanAdjacentLiteralRun concatenates the text of consecutive, whitespace-
// free digit/"-"/":"/"."  tokens, reconstructing a date/time-of-day body
// (e.g. "2021-01-02", "10:20:30.5") that the general tokenizer splits into
// separate numeric and punctuation tokens.
func (p *Parser) scanAdjacentLiteralRun() (string, source.Location) {
	text := p.cur.Text
	startLoc := p.loc()
	endLoc := startLoc
	prevEnd := p.cur.End
	p.advance()

	for isLiteralBodyToken(p.cur) && p.cur.Start == prevEnd {
		text += p.cur.Text
		endLoc = p.loc()
		prevEnd = p.cur.End
		p.advance()
	}

	return text, startLoc.Span(endLoc)
}

func isLiteralBodyToken(t lexer.Token) bool {
	switch {
	case t.Kind == lexer.IntLiteral, t.Kind == lexer.RealLiteral:
		return true
	case t.Kind == lexer.Operator && t.Text == "-":
		return true
	case t.Kind == lexer.Punct && (t.Text == ":" || t.Text == "."):
		return true
	default:
		return false
	}
}

// parseDirectAccessLiteral decodes a `%IW1.2` hardware-address token (or a
// chained `.%L0` suffix attached to an anchor expression) into its area,
// size code, and bit/byte index path.
func (p *Parser) parseDirectAccessLiteral(loc source.Location, text string) ast.Expr {
	body := strings.TrimPrefix(text, "%")
	if body == "" {
		p.errorf("E007", "malformed direct address %q", text)
		return &ast.DirectAccess{Base: ast.NewBase(loc)}
	}

	area := body[:1]
	rest := body[1:]
	sizeCode := ""

	if rest != "" && strings.ContainsRune("XBWDL", rune(rest[0])) {
		sizeCode = rest[:1]
		rest = rest[1:]
	}

	var indices []int

	for _, part := range strings.Split(rest, ".") {
		if part == "" {
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			p.errorf("E007", "malformed direct address index %q in %q", part, text)
			continue
		}

		indices = append(indices, n)
	}

	return &ast.DirectAccess{Base: ast.NewBase(loc), Area: area, SizeCode: sizeCode, Indices: indices}
}
