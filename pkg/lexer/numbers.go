package lexer

import "unicode"

// scanNumberOrTimeLiteral scans a literal that begins with a digit: a
// decimal or based integer, or a real. Duration literals ("T#"/"TIME#"
// prefixes) are not scanned here; the parser recognizes the prefix and
// calls ScanDurationBody.
func (l *Lexer) scanNumberOrTimeLiteral(start int) Token {
	// Base-prefixed literals (16#FF, 8#17, 2#1010) share this same leading
	// digit run; the '#' is detected below once the digits are consumed.
	for unicode.IsDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	if l.peek() == '#' {
		return l.scanBasedOrTimeLiteral(start)
	}

	isReal := false

	if l.peek() == '.' && unicode.IsDigit(l.peekAt(1)) {
		isReal = true

		l.advance()

		for unicode.IsDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		save := l.pos
		l.advance()

		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}

		if unicode.IsDigit(l.peek()) {
			isReal = true
			for unicode.IsDigit(l.peek()) {
				l.advance()
			}
		} else {
			l.pos = save
		}
	}

	kind := IntLiteral
	if isReal {
		kind = RealLiteral
	}

	return Token{Kind: kind, Text: string(l.runes[start:l.pos]), Start: start, End: l.pos}
}

// scanBasedOrTimeLiteral handles the `#` suffix form: either a based
// integer literal (`16#FF`) or a duration literal whose prefix happens to
// be digits preceding time-unit text is not legal IEC syntax, so by this
// point we know it is a based-integer literal.
func (l *Lexer) scanBasedOrTimeLiteral(start int) Token {
	l.advance() // '#'

	for isIdentCont(l.peek()) {
		l.advance()
	}

	return Token{Kind: IntLiteral, Text: string(l.runes[start:l.pos]), Start: start, End: l.pos}
}

// ScanDurationBody scans the mixed-unit body of a duration literal
// following a `T#`/`TIME#`/`LT#`/`LTIME#` prefix already consumed by the
// caller (the parser, which recognizes the prefix as a keyword-shaped
// identifier token followed immediately by '#'): a sequence of
// `<number><unit>` pairs such as `4d6h8m7s12ms04us2ns`, each unit one of
// d h m s ms us ns.
func (l *Lexer) ScanDurationBody() Token {
	start := l.pos

	for {
		if !unicode.IsDigit(l.peek()) {
			break
		}

		for unicode.IsDigit(l.peek()) {
			l.advance()
		}

		if l.peek() == '.' && unicode.IsDigit(l.peekAt(1)) {
			l.advance()
			for unicode.IsDigit(l.peek()) {
				l.advance()
			}
		}

		consumedUnit := false

		for _, unit := range []string{"ms", "us", "ns", "d", "h", "m", "s"} {
			if l.hasPrefix(unit) {
				l.pos += len(unit)
				consumedUnit = true

				break
			}
		}

		if !consumedUnit {
			l.diags.Addf("E010", l.Loc(start), "invalid time literal: expected a unit (d/h/m/s/ms/us/ns)")
			break
		}
	}

	if l.pos == start {
		l.diags.Addf("E010", l.Loc(start), "invalid time literal: empty duration body")
	}

	return Token{Kind: DurationLiteral, Text: string(l.runes[start:l.pos]), Start: start, End: l.pos}
}

func (l *Lexer) hasPrefix(s string) bool {
	if l.pos+len(s) > len(l.runes) {
		return false
	}

	for i, r := range s {
		if l.runes[l.pos+i] != r {
			return false
		}
	}

	return true
}

// scanDirectAddress scans a `%` hardware-access token: `%IW1.2.3`,
// `%MD4`, `%QX1.0`.
func (l *Lexer) scanDirectAddress(start int) Token {
	l.advance() // '%'

	for isIdentCont(l.peek()) || l.peek() == '.' {
		l.advance()
	}

	return Token{Kind: DirectAddress, Text: string(l.runes[start:l.pos]), Start: start, End: l.pos}
}
