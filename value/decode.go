// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package value

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/creachadair/jwatch/internal/escape"
	"github.com/tailscale/hujson"
	"go4.org/mem"
)

// DecodeOptions control how Decode treats its input.
// The zero value decodes strict JSON.
type DecodeOptions struct {
	// AllowComments permits line (//) and block (/* */) comments and
	// trailing commas in objects and arrays, as in HuJSON.
	AllowComments bool
}

// Decode decodes data as exactly one JSON value. Leading and trailing
// whitespace is permitted, any other trailing content is an error. In case of
// a syntax error, the returned error has type [*SyntaxError].
func Decode(data []byte) (Value, error) { return DecodeOptions{}.Decode(data) }

// Decode decodes data as exactly one JSON value, according to o.
func (o DecodeOptions) Decode(data []byte) (_ Value, err error) {
	if o.AllowComments {
		// Standardize rewrites its input in place.
		std, serr := hujson.Standardize(bytes.Clone(data))
		if serr != nil {
			return nil, &SyntaxError{Message: serr.Error(), err: serr}
		}
		data = std
	}

	d := &decoder{x: newLexer(mem.B(data))}
	defer d.recoverSyntaxError(&err)

	if err := d.x.next(); err == io.EOF {
		d.syntaxError(err, "no value")
	} else if err != nil {
		panic(err)
	}
	v := d.parseElement()
	if err := d.x.next(); err == nil {
		d.syntaxError(nil, "unexpected %v after value", d.x.tok)
	} else if err != io.EOF {
		panic(err)
	}
	return v, nil
}

// IsScalar reports whether data is exactly one complete JSON number or one of
// the constants true, false, or null, with no surrounding whitespace.
func IsScalar(data []byte) bool {
	x := newLexer(mem.B(data))
	if len(data) == 0 || isSpace(data[0]) || x.next() != nil {
		return false
	}
	switch x.tok {
	case tokInteger, tokNumber, tokTrue, tokFalse, tokNull:
		return x.end == len(data)
	}
	return false
}

// A decoder is a recursive-descent parser that builds a Value from the tokens
// of a lexer. Syntax errors are propagated by panics and recovered at the top.
type decoder struct {
	x     *lexer
	depth int // current nesting depth of objects and arrays
}

// maxDepth bounds the nesting of objects and arrays accepted by the decoder.
const maxDepth = 10000

// enter records the start of a nested object or array.
func (d *decoder) enter() {
	d.depth++
	if d.depth > maxDepth {
		d.syntaxError(nil, "exceeded max depth %d", maxDepth)
	}
}

func (d *decoder) recoverSyntaxError(errp *error) {
	if serr := recover(); serr != nil {
		switch err := serr.(type) {
		case *SyntaxError:
			*errp = err
		default:
			panic(serr)
		}
	}
}

// parseElement consumes a single value of any type.
// Precondition: token != tokInvalid.
func (d *decoder) parseElement() Value {
	switch tok := d.x.tok; tok {
	case tokLBrace:
		return d.parseMembers()
	case tokLSquare:
		return d.parseElements()
	case tokString:
		return &String{datum: d.datum()}
	case tokInteger, tokNumber:
		return &Number{datum: d.datum(), isInt: tok == tokInteger}
	case tokTrue, tokFalse:
		return &Bool{datum: d.datum(), value: tok == tokTrue}
	case tokNull:
		return &Null{datum: d.datum()}
	case tokRBrace, tokRSquare, tokComma, tokColon:
		d.syntaxError(nil, "unexpected %v", tok)
	default:
		d.syntaxError(nil, "unknown token %v", tok)
	}
	panic("unreachable")
}

func (d *decoder) datum() datum { return datum{text: d.x.text().StringCopy()} }

// parseMembers consumes zero or more key:value object members.
// Precondition: token == tokLBrace.
// Postcondition: token == tokRBrace.
func (d *decoder) parseMembers() *Object {
	d.enter()
	defer func() { d.depth-- }()

	obj := new(Object)
	if tok := d.advance(tokRBrace, tokString); tok == tokRBrace {
		return obj // end of object
	}
	for {
		// Parse a single member: "key": value
		key, err := escape.Unquote(d.x.text())
		if err != nil {
			d.syntaxError(err, "invalid key: %v", err)
		}
		d.advance(tokColon)
		d.advance()
		obj.Members = append(obj.Members, &Member{Key: string(key), Value: d.parseElement()})

		// Check whether we have more members (",") or are done ("}").
		if tok := d.advance(tokRBrace, tokComma); tok == tokRBrace {
			return obj
		}
		d.advance(tokString) // advance to next key
	}
}

// parseElements consumes zero or more comma-separated array values.
// Precondition: token == tokLSquare.
// Postcondition: token == tokRSquare.
func (d *decoder) parseElements() *Array {
	d.enter()
	defer func() { d.depth-- }()

	arr := new(Array)
	if tok := d.advance(); tok == tokRSquare {
		return arr // end of array
	}
	arr.Values = append(arr.Values, d.parseElement())
	for {
		if tok := d.advance(tokRSquare, tokComma); tok == tokRSquare {
			return arr
		}
		d.advance()
		arr.Values = append(arr.Values, d.parseElement())
	}
}

func (d *decoder) advance(tokens ...token) token {
	if err := d.x.next(); err == io.EOF {
		d.syntaxError(err, "%v", tokLabel(tokens, "end of input"))
	} else if err != nil {
		panic(err)
	}
	tok := d.x.tok
	if len(tokens) != 0 && !slices.Contains(tokens, tok) {
		d.syntaxError(nil, "%v", tokLabel(tokens, tok))
	}
	return tok
}

func (d *decoder) syntaxError(err error, msg string, args ...any) {
	serr := newSyntaxError(d.x.src, d.x.pos, fmt.Errorf(msg, args...))
	serr.err = err
	panic(serr)
}

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []token, got any) string {
	if len(tokens) == 0 {
		return fmt.Sprintf("expected more input, got %v", got)
	}
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, last)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}

// SyntaxError is the concrete type of errors reported by the decoder.
type SyntaxError struct {
	Offset  int // byte offset in the input, 0-based
	Line    int // line number, 1-based
	Column  int // byte offset of column in line, 0-based
	Message string

	err error
}

func newSyntaxError(src mem.RO, off int, err error) *SyntaxError {
	serr := &SyntaxError{Offset: off, Line: 1, Message: err.Error()}
	for i := 0; i < off && i < src.Len(); i++ {
		if src.At(i) == '\n' {
			serr.Line++
			serr.Column = 0
		} else {
			serr.Column++
		}
	}
	serr.err = errors.Unwrap(err)
	return serr
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	if s.Line == 0 {
		return s.Message
	}
	return fmt.Sprintf("at %d:%d: %s", s.Line, s.Column, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }
