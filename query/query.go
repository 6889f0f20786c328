// Package query implements structural queries over decoded JSON values.
//
// A query describes a substructure of a JSON value, such as an object member,
// array element, or a path through the tree. Evaluating a query against a
// concrete value traverses the structure described by the query and returns
// the resulting value.
//
// The simplest query is for a "path", a sequence of object keys and/or array
// indices that describes a path from the root of a JSON value. For example,
// given the JSON value:
//
//	[{"a": 1, "b": 2}, {"c": {"d": true}, "e": false}]
//
// the query
//
//	query.Path(1, "c", "d")
//
// yields the value "true". The same path can be written in dotted form and
// parsed with ParsePath, or as JSONPath with ParseJSONPath:
//
//	q, err := query.ParsePath("1.c.d")
//	q, err := query.ParseJSONPath("$[1].c.d")
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/creachadair/jwatch/value"
)

// Eval evaluates the given query beginning from root, returning the resulting
// value or an error.
func Eval(root value.Value, q Query) (value.Value, error) {
	return q.eval(root)
}

// A Query describes a traversal of a JSON value.
type Query interface {
	eval(value.Value) (value.Value, error)
}

// Path traverses a sequence of nested object keys or array indices from the
// root. If no keys are specified, the root is returned. Each key must be a
// string, an int, or a Query.
func Path(keys ...any) Query {
	if len(keys) == 1 {
		return pathElem(keys[0])
	}
	pq := make(Seq, 0, len(keys))
	for _, key := range keys {
		q := pathElem(key)
		if sq, ok := q.(Seq); ok {
			pq = append(pq, sq...)
		} else {
			pq = append(pq, q)
		}
	}
	return pq
}

// ParsePath parses a dotted path such as "object.metadata.name" or
// "items.0.kind" into a query. Each component is an object key, except that
// a component consisting of an optional "-" followed by decimal digits is an
// array index. An empty string denotes the root.
//
// If s begins with "$", it is parsed by ParseJSONPath instead.
func ParsePath(s string) (Query, error) {
	if s == "" {
		return Seq{}, nil
	} else if strings.HasPrefix(s, "$") {
		return ParseJSONPath(s)
	}
	parts := strings.Split(s, ".")
	keys := make([]any, len(parts))
	for i, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("path %q: empty component at %d", s, i+1)
		}
		if n, err := strconv.Atoi(p); err == nil {
			keys[i] = n
		} else {
			keys[i] = p
		}
	}
	return Path(keys...), nil
}

func pathElem(key any) Query {
	switch t := key.(type) {
	case string:
		return objKey(t)
	case int:
		return nthQuery(t)
	case Query:
		return t
	default:
		panic("invalid path element")
	}
}

type objKey string

func (o objKey) eval(v value.Value) (value.Value, error) {
	obj, ok := v.(*value.Object)
	if !ok {
		return nil, fmt.Errorf("got %s, want object", typeName(v))
	}
	mem := obj.Find(string(o))
	if mem == nil {
		return nil, fmt.Errorf("key %q not found", o)
	}
	return mem.Value, nil
}

type nthQuery int

func (nq nthQuery) eval(v value.Value) (value.Value, error) {
	arr, ok := v.(*value.Array)
	if !ok {
		return nil, fmt.Errorf("got %s, want array", typeName(v))
	}
	idx := int(nq)
	if idx < 0 {
		idx += arr.Len()
	}
	if idx < 0 || idx >= arr.Len() {
		return nil, fmt.Errorf("index %d out of range (0..%d)", nq, arr.Len())
	}
	return arr.Values[idx], nil
}

// Selection constructs an array of the elements of its input array, for which
// the specified function returns true.
type Selection func(value.Value) bool

func (q Selection) eval(v value.Value) (value.Value, error) {
	a, ok := v.(*value.Array)
	if !ok {
		return nil, fmt.Errorf("got %s, want array", typeName(v))
	}
	out := new(value.Array)
	for _, elt := range a.Values {
		if q(elt) {
			out.Values = append(out.Values, elt)
		}
	}
	return out, nil
}

// Slice selects a slice of an array from offsets lo to hi. The range includes
// lo but excludes hi. Negative offsets select from the end of the array.
// If hi == 0, the length of the array is used.
func Slice(lo, hi int) Query { return sliceQuery{lo, hi} }

type sliceQuery struct{ lo, hi int }

func (q sliceQuery) eval(v value.Value) (value.Value, error) {
	arr, ok := v.(*value.Array)
	if !ok {
		return nil, fmt.Errorf("got %s, want array", typeName(v))
	}
	n := arr.Len()
	lox := q.lo
	if lox < 0 {
		lox += n
	}
	hix := q.hi
	if hix <= 0 {
		hix += n
	}
	if lox < 0 || lox > n {
		return nil, fmt.Errorf("index %d out of range (0..%d)", q.lo, n)
	} else if hix < 0 || hix > n {
		return nil, fmt.Errorf("index %d out of range (0..%d)", q.hi, n)
	} else if lox > hix {
		return nil, fmt.Errorf("index start %d > end %d", q.lo, q.hi)
	}
	return &value.Array{Values: arr.Values[lox:hix]}, nil
}

// Seq is a sequential composition of queries. An empty sequence selects the
// root; otherwise, each query is applied to the result selected by the
// previous query in the sequence.
type Seq []Query

func (q Seq) eval(v value.Value) (value.Value, error) {
	cur := v
	for _, sq := range q {
		next, err := sq.eval(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Alt is a query that selects among a sequence of alternatives. The result of
// the first alternative that does not report an error is returned. If there
// are no alternatives, the query fails on all inputs.
type Alt []Query

func (q Alt) eval(v value.Value) (value.Value, error) {
	for _, alt := range q {
		if w, err := alt.eval(v); err == nil {
			return w, nil
		}
	}
	return nil, errors.New("no matching alternatives")
}

// Recur applies a query to each recursive descendant of its input and returns
// an array of the resulting values. The arguments have the same constraints as
// Path.
func Recur(keys ...any) Query { return recQuery{Path(keys...)} }

type recQuery struct{ Query }

func (q recQuery) eval(v value.Value) (value.Value, error) {
	out := new(value.Array)

	stk := []value.Value{v}
	for len(stk) != 0 {
		next := stk[len(stk)-1]
		stk = stk[:len(stk)-1]

		if r, err := q.Query.eval(next); err == nil {
			out.Values = append(out.Values, r)
		}

		// N.B. Push in reverse order, so we visit in lexical order.
		switch t := next.(type) {
		case *value.Object:
			for i := len(t.Members) - 1; i >= 0; i-- {
				stk = append(stk, t.Members[i].Value)
			}
		case *value.Array:
			for i := len(t.Values) - 1; i >= 0; i-- {
				stk = append(stk, t.Values[i])
			}
		}
	}

	if out.Len() == 0 {
		return nil, errors.New("no matches")
	}
	return out, nil
}

// Each applies a query to each element of an array and returns an array of the
// resulting values. It fails if the input is not an array. The arguments have
// the same constraints as Path.
func Each(keys ...any) Query { return eachQuery{Path(keys...)} }

type eachQuery struct{ Query }

func (q eachQuery) eval(v value.Value) (value.Value, error) {
	arr, ok := v.(*value.Array)
	if !ok {
		return nil, fmt.Errorf("got %s, want array", typeName(v))
	}
	out := &value.Array{Values: make([]value.Value, 0, arr.Len())}
	for i, elt := range arr.Values {
		v, err := q.Query.eval(elt)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out.Values = append(out.Values, v)
	}
	return out, nil
}

// A Glob query returns an array of all the values contained in its input,
// which must be an object or an array.
func Glob() Query { return globQuery{} }

type globQuery struct{}

func (globQuery) eval(v value.Value) (value.Value, error) {
	switch t := v.(type) {
	case *value.Object:
		out := &value.Array{Values: make([]value.Value, len(t.Members))}
		for i, m := range t.Members {
			out.Values[i] = m.Value
		}
		return out, nil
	case *value.Array:
		return t, nil
	default:
		return nil, errors.New("no matching values")
	}
}

// typeName returns a JSON name for the type of v, for diagnostics.
func typeName(v value.Value) string {
	switch v.(type) {
	case *value.Object:
		return "object"
	case *value.Array:
		return "array"
	case *value.String:
		return "string"
	case *value.Number:
		return "number"
	case *value.Bool:
		return "bool"
	case *value.Null:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
