// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package value defines a tree representation of decoded JSON values, and a
// decoder that constructs trees from the complete JSON text of one value.
package value

import (
	"strconv"
	"strings"

	"github.com/creachadair/jwatch/internal/escape"
	"go4.org/mem"
)

// A Value is an arbitrary JSON value.
type Value interface {
	// JSON returns the compact JSON encoding of the value.
	JSON() string
}

// A Datum is a Value with a source text representation.
type Datum interface {
	Value
	Text() string
}

// An Object is a collection of key-value members, in source order.
type Object struct {
	Members []*Member
}

// Find returns the first member of o with the given key, or nil.
func (o *Object) Find(key string) *Member {
	for _, m := range o.Members {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// Len reports the number of members in o.
func (o *Object) Len() int { return len(o.Members) }

// JSON satisfies the Value interface.
func (o *Object) JSON() string { return string(appendJSON(nil, o)) }

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string // unescaped
	Value Value
}

// JSON renders m as a "key":value pair.
func (m *Member) JSON() string { return string(appendJSON(nil, m)) }

// An Array is a sequence of values.
type Array struct {
	Values []Value
}

// Len reports the number of elements in a.
func (a *Array) Len() int { return len(a.Values) }

// JSON satisfies the Value interface.
func (a *Array) JSON() string { return string(appendJSON(nil, a)) }

type datum struct {
	text string
}

// Text satisfies the Datum interface.
func (d datum) Text() string { return d.text }

// JSON satisfies the Value interface.
func (d datum) JSON() string { return d.text }

// A Number is a numeric value. Its text is kept as written.
type Number struct {
	datum
	isInt bool
}

// IsInt reports whether n was written without a fraction or exponent.
func (n *Number) IsInt() bool { return n.isInt }

// Int64 returns the value of n as an int64. It reports false if n is not an
// integer or does not fit.
func (n *Number) Int64() (int64, bool) {
	if !n.isInt {
		return 0, false
	}
	v, err := strconv.ParseInt(n.text, 10, 64)
	return v, err == nil
}

// Float64 returns the value of n as a float64. Values out of range are
// reported as ±Inf.
func (n *Number) Float64() float64 {
	v, _ := strconv.ParseFloat(n.text, 64)
	return v
}

// A Bool is a Boolean constant, true or false.
type Bool struct {
	datum
	value bool
}

// Value reports the truth value of b.
func (b *Bool) Value() bool { return b.value }

// A String is a string value. Its text is the quoted source form.
type String struct{ datum }

// NewString returns a String with the given unescaped contents.
func NewString(s string) *String { return &String{datum{text: escape.Quote(mem.S(s))}} }

// Unquote returns the contents of s with escapes decoded.
func (s *String) Unquote() string {
	dec, err := escape.Unquote(mem.S(s.text))
	if err != nil {
		// The decoder only constructs Strings from valid tokens.
		panic(err)
	}
	return string(dec)
}

// Len reports the length in bytes of the unescaped contents of s.
func (s *String) Len() int { return len(s.Unquote()) }

// Null represents the null constant.
type Null struct{ datum }

func appendJSON(buf []byte, v Value) []byte {
	switch t := v.(type) {
	case *Object:
		buf = append(buf, '{')
		for i, m := range t.Members {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendJSON(buf, m)
		}
		return append(buf, '}')
	case *Member:
		buf = escape.Append(buf, mem.S(t.Key))
		buf = append(buf, ':')
		return appendJSON(buf, t.Value)
	case *Array:
		buf = append(buf, '[')
		for i, elt := range t.Values {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendJSON(buf, elt)
		}
		return append(buf, ']')
	case nil:
		return append(buf, "null"...)
	default:
		return append(buf, v.JSON()...)
	}
}

// ToAny converts v into the plain Go representation used by encoding/json:
// map[string]any, []any, string, bool, nil, and numbers. Integers that fit
// are reported as int64, other numbers as float64. For duplicate object keys
// the last one wins.
func ToAny(v Value) any {
	switch t := v.(type) {
	case *Object:
		out := make(map[string]any, len(t.Members))
		for _, m := range t.Members {
			out[m.Key] = ToAny(m.Value)
		}
		return out
	case *Array:
		out := make([]any, len(t.Values))
		for i, elt := range t.Values {
			out[i] = ToAny(elt)
		}
		return out
	case *String:
		return t.Unquote()
	case *Number:
		if z, ok := t.Int64(); ok {
			return z
		}
		return t.Float64()
	case *Bool:
		return t.Value()
	default:
		return nil
	}
}

// Indent renders v as multi-line JSON, indenting nested values by the given
// prefix per level.
func Indent(v Value, indent string) string {
	var sb strings.Builder
	writeIndent(&sb, v, indent, 0)
	return sb.String()
}

func writeIndent(sb *strings.Builder, v Value, indent string, depth int) {
	newline := func(d int) {
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(indent, d))
	}
	switch t := v.(type) {
	case *Object:
		if len(t.Members) == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteByte('{')
		for i, m := range t.Members {
			if i > 0 {
				sb.WriteByte(',')
			}
			newline(depth + 1)
			sb.WriteString(escape.Quote(mem.S(m.Key)))
			sb.WriteString(": ")
			writeIndent(sb, m.Value, indent, depth+1)
		}
		newline(depth)
		sb.WriteByte('}')
	case *Array:
		if len(t.Values) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteByte('[')
		for i, elt := range t.Values {
			if i > 0 {
				sb.WriteByte(',')
			}
			newline(depth + 1)
			writeIndent(sb, elt, indent, depth+1)
		}
		newline(depth)
		sb.WriteByte(']')
	default:
		sb.Write(appendJSON(nil, v))
	}
}
