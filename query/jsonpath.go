package query

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

/*
ParseJSONPath accepts this subset of JSONPath:

  expr = "$" steps
 steps = step [steps]
  step = "." name
  step = ".." name
  step = "[" value "]"
  step = "[" slice "]"
  name = WORD
  name = "'" QTEXT "'"
  name = "*"
 value = name
 value = INDEX
 slice = [INDEX] ":" [INDEX]

  WORD = RE `\w+`
 QTEXT = RE `[^']*`
 INDEX = RE `-?\d+`

Filter "[?(...)]" and script "[(...)]" steps are rejected.
*/

// ParseJSONPath parses a JSONPath expression such as "$.object.metadata.name"
// or "$.items[-1]..name" into a query. A "*" step is a Glob, a ".." step is a
// Recur, and a slice "[lo:hi]" is a Slice. Index lists, filters, and scripts
// are not supported.
func ParseJSONPath(s string) (Query, error) {
	rest, ok := strings.CutPrefix(s, "$")
	if !ok {
		return nil, errors.New("missing root marker")
	}
	var seq Seq
	for rest != "" {
		q, next, err := parseStep(rest)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", len(s)-len(rest), err)
		}
		seq = append(seq, q)
		rest = next
	}
	return seq, nil
}

func parseStep(s string) (_ Query, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, ".."); ok {
		name, wild, u, err := parseName(t)
		if err != nil {
			return nil, s, fmt.Errorf("invalid ..name: %w", err)
		} else if wild {
			return Recur(Glob()), u, nil
		}
		return Recur(name), u, nil
	}
	if t, ok := strings.CutPrefix(s, "."); ok {
		name, wild, u, err := parseName(t)
		if err != nil {
			return nil, s, fmt.Errorf("invalid .name: %w", err)
		} else if wild {
			return Glob(), u, nil
		}
		return objKey(name), u, nil
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		q, u, err := parseSubscript(t)
		if err != nil {
			return nil, s, err
		}
		u, ok := strings.CutPrefix(u, "]")
		if !ok {
			return nil, s, errors.New("missing close bracket")
		}
		return q, u, nil
	}
	return nil, s, errors.New("invalid path step")
}

func parseName(s string) (name string, wild bool, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, "*"); ok {
		return "", true, t, nil
	}
	if m := wordRE.FindStringSubmatch(s); m != nil {
		return m[1], false, s[len(m[0]):], nil
	}
	if m := quoteRE.FindStringSubmatch(s); m != nil {
		return m[1], false, s[len(m[0]):], nil
	}
	return "", false, s, errors.New("invalid name")
}

func parseSubscript(s string) (_ Query, rest string, _ error) {
	if strings.HasPrefix(s, "?(") || strings.HasPrefix(s, "(") {
		return nil, s, errors.New("filter and script expressions are not supported")
	}
	lo, rest, hasLo := parseIndex(s)
	if t, ok := strings.CutPrefix(rest, ":"); ok {
		hi, u, hasHi := parseIndex(t)
		if !hasLo && !hasHi {
			return nil, s, errors.New("invalid slice")
		}
		return Slice(lo, hi), u, nil
	} else if hasLo {
		if strings.HasPrefix(rest, ",") {
			return nil, s, errors.New("index lists are not supported")
		}
		return nthQuery(lo), rest, nil
	}
	name, wild, rest, err := parseName(s)
	if err != nil {
		return nil, s, fmt.Errorf("invalid subscript: %q", s)
	} else if wild {
		return Glob(), rest, nil
	}
	return objKey(name), rest, nil
}

func parseIndex(s string) (int, string, bool) {
	m := indexRE.FindStringSubmatch(s)
	if m == nil {
		return 0, s, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, s, false
	}
	return n, s[len(m[0]):], true
}

var (
	wordRE  = regexp.MustCompile(`^(\w+)`)
	indexRE = regexp.MustCompile(`^(-?\d+)`)
	quoteRE = regexp.MustCompile(`^'([^']*)'`)
)
