package lexer

import (
	"strings"
	"unicode"

	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/source"
)

// Lexer is a hand-written, restartable scanner over a single file's rune
// buffer. It is stateful rather than built from pkg/util/source's Scanner
// combinators: mixed-unit duration literals, nested block comments, and
// restart-on-error recovery need a persistent cursor the combinator model
// does not expose (see SPEC_FULL.md §4.C).
type Lexer struct {
	file    *source.File
	factory *source.Factory
	runes   []rune
	pos     int
	diags   *diag.Collector
}

// New constructs a lexer over the given loaded file.
func New(file *source.File, diags *diag.Collector) *Lexer {
	return &Lexer{file: file, factory: source.NewFactory(file), runes: file.Contents, diags: diags}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.runes) {
		return 0
	}

	return l.runes[l.pos]
}

func (l *Lexer) peekAt(off int) rune {
	if l.pos+off >= len(l.runes) {
		return 0
	}

	return l.runes[l.pos+off]
}

func (l *Lexer) advance() rune {
	r := l.peek()
	l.pos++

	return r
}

// Advance skips forward one character, used by the parser to recover
// after a syntax error without the lexer itself ever aborting.
func (l *Lexer) Advance() {
	if l.pos < len(l.runes) {
		l.pos++
	}
}

// Loc returns the source.Location covering [start, l.pos).
func (l *Lexer) Loc(start int) source.Location {
	return l.factory.CreateRange(start, l.pos)
}

func (l *Lexer) skipTrivia() {
	for {
		switch {
		case l.peek() == ' ' || l.peek() == '\t' || l.peek() == '\r' || l.peek() == '\n':
			l.advance()
		case l.peek() == '/' && l.peekAt(1) == '/':
			for l.peek() != '\n' && l.peek() != 0 {
				l.advance()
			}
		case l.peek() == '/' && l.peekAt(1) == '*':
			l.skipBlockComment("*/")
		case l.peek() == '(' && l.peekAt(1) == '*':
			l.skipBlockComment("*)")
		default:
			return
		}
	}
}

// skipBlockComment consumes a (possibly nested) block comment starting at
// the current position, which must be positioned at its opening delimiter.
func (l *Lexer) skipBlockComment(closer string) {
	opener := "/*"
	if closer == "*)" {
		opener = "(*"
	}

	l.pos += 2
	depth := 1

	for depth > 0 && l.pos < len(l.runes) {
		rest := string(l.runes[l.pos:min(l.pos+2, len(l.runes))])
		switch rest {
		case opener:
			depth++
			l.pos += 2
		case closer:
			depth--
			l.pos += 2
		default:
			l.pos++
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}

	return b
}

// Next scans and returns the next token. At end of input it returns a
// token of Kind EOF repeatedly.
func (l *Lexer) Next() Token {
	l.skipTrivia()

	start := l.pos

	if l.pos >= len(l.runes) {
		return Token{Kind: EOF, Start: start, End: start}
	}

	r := l.peek()

	switch {
	case r == '%':
		return l.scanDirectAddress(start)
	case r == '\'':
		return l.scanString(start, '\'', StringLiteral)
	case r == '"':
		return l.scanString(start, '"', WideStringLiteral)
	case unicode.IsDigit(r):
		return l.scanNumberOrTimeLiteral(start)
	case isIdentStart(r):
		return l.scanIdentOrKeyword(start)
	default:
		return l.scanOperatorOrPunct(start)
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (l *Lexer) scanIdentOrKeyword(start int) Token {
	for isIdentCont(l.peek()) {
		l.advance()
	}

	text := string(l.runes[start:l.pos])
	upper := strings.ToUpper(text)

	if upper == "TRUE" || upper == "FALSE" {
		return Token{Kind: BoolLiteral, Text: text, Start: start, End: l.pos}
	}

	if IsKeyword(upper) {
		return Token{Kind: Keyword, Text: upper, Start: start, End: l.pos}
	}

	// Tolerate a keyword spelled without its underscore separators, e.g.
	// "ENDIF" for "END_IF" (E013, a warning, not a hard error).
	if canon, ok := underscorelessKeywords[upper]; ok {
		l.diags.Addf("E013", l.Loc(start), "keyword %q should contain underscores, did you mean %q?", text, canon)
		return Token{Kind: Keyword, Text: canon, Start: start, End: l.pos}
	}

	return Token{Kind: Ident, Text: text, Start: start, End: l.pos}
}

// underscorelessKeywords maps the no-underscore spelling of every
// multi-word keyword to its canonical form.
var underscorelessKeywords = buildUnderscoreless()

func buildUnderscoreless() map[string]string {
	m := make(map[string]string)

	for k := range keywords {
		if strings.Contains(k, "_") {
			m[strings.ReplaceAll(k, "_", "")] = k
		}
	}

	return m
}

func (l *Lexer) scanString(start int, quote rune, kind Kind) Token {
	l.advance() // opening quote

	for {
		r := l.peek()
		if r == 0 {
			l.diags.Addf("E006", l.Loc(start), "unterminated string literal")
			break
		}

		if r == '$' { // escape
			l.advance()
			l.advance()

			continue
		}

		if r == quote {
			l.advance()

			break
		}

		l.advance()
	}

	return Token{Kind: kind, Text: string(l.runes[start:l.pos]), Start: start, End: l.pos}
}

func (l *Lexer) scanOperatorOrPunct(start int) Token {
	r := l.advance()

	two := string(r) + string(l.peek())
	switch two {
	case ":=", "<>", "<=", ">=", "=>", "**":
		l.advance()

		return Token{Kind: Operator, Text: two, Start: start, End: l.pos}
	}

	if r == '.' && l.peek() == '.' {
		l.advance()

		if l.peek() == '.' {
			l.advance()
			return Token{Kind: Punct, Text: "...", Start: start, End: l.pos}
		}

		return Token{Kind: Punct, Text: "..", Start: start, End: l.pos}
	}

	switch r {
	case '+', '-', '*', '/', '=', '<', '>', '&', '^':
		return Token{Kind: Operator, Text: string(r), Start: start, End: l.pos}
	case '(', ')', '[', ']', ':', ';', ',', '.', '#', '{', '}':
		return Token{Kind: Punct, Text: string(r), Start: start, End: l.pos}
	default:
		l.diags.Addf("E007", l.Loc(start), "unexpected character %q", r)
		return Token{Kind: Invalid, Text: string(r), Start: start, End: l.pos}
	}
}
