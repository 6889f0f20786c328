// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape_test

import (
	"testing"

	"github.com/creachadair/jwatch/internal/escape"
	"go4.org/mem"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", `""`},
		{" ", `" "`},
		{"a\t\nb", `"a\t\nb"`},
		{"\x00\x01\x02", `"\u0000\u0001\u0002"`},
		{`a "b c\" d"`, `"a \"b c\\\" d\""`},
		{`\ufffd`, `"\\ufffd"`},
		{"\u2028 \u2029 \ufffd", "\"\\u2028 \\u2029 \ufffd\""},
		{"This is the end\v", `"This is the end\u000b"`},
		{"<\x1e>", `"<\u001e>"`},
		{"café \U0001f600", "\"café \U0001f600\""},
		{"bad \xff byte", `"bad \ufffd byte"`},
	}
	for _, test := range tests {
		got := escape.Quote(mem.S(test.input))
		if got != test.want {
			t.Errorf("Input: %#q\nGot:  %#q\nWant: %#q", test.input, got, test.want)
		}
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		input string
		want  string
		fail  bool
	}{
		{``, ``, true},                            // missing quotes
		{`"`, ``, true},                           // missing quotes
		{`"missing quote`, ``, true},              // missing quotes
		{`missing quote"`, ``, true},              // missing quotes
		{`""`, ``, false},                         // ok
		{`"ok go"`, "ok go", false},               // ok
		{`"abc\ndef"`, "abc\ndef", false},         // C escapes
		{`"\b\f\n\r\t"`, "\b\f\n\r\t", false},     // C escapes
		{`"a \u0026 b"`, "a & b", false},          // short Unicode escape
		{`"\u"`, ``, true},                        // incomplete Unicode escape
		{`"\u00"`, ``, true},                      // incomplete Unicode escape
		{`"\u00x9"`, "\ufffd", false},             // invalid Unicode escape
		{`"\q"`, "\ufffd", false},                 // unknown escape
		{`"a\"b"`, `a"b`, false},                  // ok
		{`"a\\b\\cd"`, `a\b\cd`, false},           // ok
		{`"\ud83d\ude00!"`, "\U0001f600!", false}, // surrogate pair
		{`"\ud83d!"`, "\ufffd!", false},           // unpaired high surrogate
		{`"\ude00"`, "\ufffd", false},             // unpaired low surrogate
		{`"\ud83dA"`, "\ufffdA", false},           // high surrogate, no low half
		{`"tail\\"`, `tail\`, false},              // escaped backslash at end
		{`"x\"`, ``, true},                        // quote consumed by escape
		{"\"café\"", "café", false},               // raw UTF-8
		{`"\/path\/to"`, "/path/to", false},       // solidus
	}

	for _, test := range tests {
		got, err := escape.Unquote(mem.S(test.input))
		if err != nil {
			if !test.fail {
				t.Errorf("Unquote(%#q): got %v, want no error", test.input, err)
			}
		} else if test.fail {
			t.Errorf("Unquote(%#q): got nil, want error", test.input)
		}
		if s := string(got); s != test.want {
			t.Errorf("Unquote(%#q): got %#q, want %#q", test.input, s, test.want)
		}
	}
}
