// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package value

import (
	"fmt"
	"io"
	"strings"

	"go4.org/mem"
)

// token is the type of a lexical token in the JSON grammar.
type token byte

// Constants defining the valid token values.
const (
	tokInvalid token = iota // invalid token
	tokLBrace               // left brace "{"
	tokRBrace               // right brace "}"
	tokLSquare              // left square bracket "["
	tokRSquare              // right square bracket "]"
	tokComma                // comma ","
	tokColon                // colon ":"
	tokInteger              // number: integer with no fraction or exponent
	tokNumber               // number with fraction and/or exponent
	tokString               // quoted string
	tokTrue                 // constant: true
	tokFalse                // constant: false
	tokNull                 // constant: null
)

var tokenStr = [...]string{
	tokInvalid: "invalid token",
	tokLBrace:  `"{"`,
	tokRBrace:  `"}"`,
	tokLSquare: `"["`,
	tokRSquare: `"]"`,
	tokComma:   `","`,
	tokColon:   `":"`,
	tokInteger: "integer",
	tokNumber:  "number",
	tokString:  "string",
	tokTrue:    "true",
	tokFalse:   "false",
	tokNull:    "null",
}

func (t token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[tokInvalid]
	}
	return tokenStr[v]
}

// A lexer reads tokens from a complete in-memory input. Unlike a reader-based
// scanner it never blocks: the whole value is present before decoding starts.
type lexer struct {
	src mem.RO
	tok token

	pos, end int // start and end offsets of the current token
}

func newLexer(src mem.RO) *lexer { return &lexer{src: src} }

// text returns a view of the text of the current token.
func (x *lexer) text() mem.RO { return x.src.Slice(x.pos, x.end) }

// next advances x to the next token of the input, or reports an error.
// At the end of the input, next returns io.EOF.
func (x *lexer) next() error {
	x.tok = tokInvalid
	for x.end < x.src.Len() && isSpace(x.src.At(x.end)) {
		x.end++
	}
	x.pos = x.end
	if x.end == x.src.Len() {
		return io.EOF
	}

	ch := x.src.At(x.end)
	x.end++

	if t, ok := selfDelim(ch); ok {
		x.tok = t
		return nil
	}
	if isNumStart(ch) {
		return x.scanNumber(ch)
	}
	if ch == '"' {
		return x.scanString()
	}

	// Handle constants: true, false, null
	var want mem.RO
	switch ch {
	case 't':
		x.tok, want = tokTrue, mem.S("true")
	case 'f':
		x.tok, want = tokFalse, mem.S("false")
	case 'n':
		x.tok, want = tokNull, mem.S("null")
	default:
		return x.failf("unexpected %q", ch)
	}
	x.readWhile(isNameByte)
	if got := x.text(); !got.Equal(want) {
		return x.failf("unknown constant %q", got.StringCopy())
	}
	return nil
}

func (x *lexer) scanString() error {
	for x.end < x.src.Len() {
		ch := x.src.At(x.end)
		x.end++
		switch {
		case ch == '"':
			x.tok = tokString
			return nil
		case ch == '\\':
			if x.end == x.src.Len() {
				return x.failf("incomplete escape")
			}
			esc := x.src.At(x.end)
			x.end++
			switch esc {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
			case 'u':
				if err := x.readHex4(); err != nil {
					return x.failf("invalid Unicode escape: %w", err)
				}
			default:
				return x.failf("invalid %q after escape", esc)
			}
		case ch < ' ':
			return x.failf("unescaped control %q", ch)
		}
	}
	return x.failf("unterminated string")
}

func (x *lexer) scanNumber(start byte) error {
	digits := x.pos
	if start == '-' {
		// A leading sign needs at least one digit after it.
		if nr := x.readWhile(isDigit); nr == 0 {
			return x.failf("want digit after sign")
		}
		digits++
	} else {
		x.readWhile(isDigit)
	}

	// Check for extra leading zeroes, which are disallowed by RFC 8259.
	// That is: 0.12 is OK, 01.2 is not.
	if x.src.At(digits) == '0' && x.end-digits > 1 {
		return x.failf("extra leading zeroes")
	}

	x.tok = tokInteger
	if x.peek() == '.' {
		x.end++
		if nr := x.readWhile(isDigit); nr == 0 {
			return x.failf("no digits after decimal point")
		}
		x.tok = tokNumber
	}
	if c := x.peek(); c != 'e' && c != 'E' {
		return nil
	}
	x.end++
	if c := x.peek(); c == '+' || c == '-' {
		x.end++
	}
	if nr := x.readWhile(isDigit); nr == 0 {
		return x.failf("missing exponent digits")
	}
	x.tok = tokNumber
	return nil
}

// peek returns the next unread byte, or 0 at the end of input.
func (x *lexer) peek() byte {
	if x.end < x.src.Len() {
		return x.src.At(x.end)
	}
	return 0
}

// readWhile consumes bytes matching f and reports how many it consumed.
func (x *lexer) readWhile(f func(byte) bool) int {
	start := x.end
	for x.end < x.src.Len() && f(x.src.At(x.end)) {
		x.end++
	}
	return x.end - start
}

// readHex4 reads exactly 4 hexadecimal digits from the input.
func (x *lexer) readHex4() error {
	for i := 0; i < 4; i++ {
		if x.end == x.src.Len() {
			return io.ErrUnexpectedEOF
		}
		ch := x.src.At(x.end)
		if !isHexDigit(ch) {
			return fmt.Errorf("not a hex digit: %q", ch)
		}
		x.end++
	}
	return nil
}

func (x *lexer) failf(msg string, args ...any) error {
	return newSyntaxError(x.src, x.end, fmt.Errorf(msg, args...))
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNumStart(ch byte) bool { return ch == '-' || isDigit(ch) }
func isDigit(ch byte) bool    { return '0' <= ch && ch <= '9' }
func isNameByte(ch byte) bool { return ch >= 'a' && ch <= 'z' }

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

var self = [...]token{tokLBrace, tokRBrace, tokLSquare, tokRSquare, tokComma, tokColon}

func selfDelim(ch byte) (token, bool) {
	i := strings.IndexByte("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return tokInvalid, false
}
