// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jwatch

import (
	"fmt"

	"github.com/creachadair/jwatch/value"
)

// A Boundary is the extent of one complete top-level value in a buffer.
type Boundary struct {
	Start int // offset of the first byte of the value
	End   int // offset just past the last byte of the value
}

// Len reports the length of b in bytes.
func (b Boundary) Len() int { return b.End - b.Start }

// mode records which kind of top-level value the scanner is inside.
type mode byte

const (
	modeIdle    mode = iota // between values
	modeNested              // inside an object or array
	modeString              // inside a top-level string
	modeScalar              // inside a bare scalar run
	modeGarbage             // inside a run that is not a valid scalar
)

// comment records the progress of the scanner through a comment.
type comment byte

const (
	noComment    comment = iota
	commentSlash         // saw "/", not yet known to start a comment
	commentLine          // inside "// ..."
	commentBlock         // inside "/* ... */"
	commentStar          // inside a block comment, just after "*"
)

// A Scanner locates the boundaries of top-level JSON values in a buffer that
// grows at the tail and shrinks at the front. The state of a Scanner persists
// between calls, so the boundaries it reports do not depend on how the input
// was divided into chunks.
//
// The buffer passed to each call must be the same logical buffer: the bytes
// already seen must be unchanged, except that a prefix reported to Discard
// has been removed.
//
// Objects and arrays end at the bracket that closes them. A top-level string
// ends at its closing quote. Any other top-level text is a scalar run that
// ends at whitespace or at the start of the next object, array, or string. A
// run that is not a valid JSON number or constant is garbage: it extends to
// the start of the next object or array, so that a stretch of unrecognized
// text is reported as one value. Brackets inside a quoted string do not end
// a garbage run.
type Scanner struct {
	comments bool

	mode  mode
	depth int     // open objects and arrays
	str   bool    // inside a string literal
	esc   bool    // the previous string byte was an unconsumed backslash
	cmt   comment // comment state, when comments are enabled
	slash int     // offset of the "/" that began the current comment

	start int // offset of the first byte of the current value
	last  int // offset just past the last non-space byte of a garbage run
	pos   int // offset of the next unscanned byte
}

// AllowComments configures s to recognize (true) or ignore (false) line and
// block comments outside of strings. Comments between values are skipped;
// comments inside a value are part of its text.
func (s *Scanner) AllowComments(ok bool) { s.comments = ok }

// Pending reports whether s has seen the start of a value that is not yet
// complete.
func (s *Scanner) Pending() bool {
	return s.mode != modeIdle || (s.cmt != noComment && s.cmt != commentLine)
}

// Settled reports the length of the prefix of the buffer that no longer
// matters to s. The caller may Discard up to this many bytes.
func (s *Scanner) Settled() int {
	switch {
	case s.mode != modeIdle:
		return s.start
	case s.cmt != noComment:
		return s.slash
	default:
		return s.pos
	}
}

// Discard tells s that the caller has removed the first n bytes of the
// buffer. It panics if n exceeds Settled.
func (s *Scanner) Discard(n int) {
	if n < 0 || n > s.Settled() {
		panic(fmt.Sprintf("jwatch: discard %d bytes, only %d settled", n, s.Settled()))
	}
	s.pos -= n
	s.start -= n
	s.last -= n
	s.slash -= n
}

// Reset discards all scanner state. Options are preserved.
func (s *Scanner) Reset() { *s = Scanner{comments: s.comments} }

// Scan returns the boundaries of all the values in buf that can be completed
// with the bytes present, in order. Offsets are relative to buf.
func (s *Scanner) Scan(buf []byte) []Boundary {
	var out []Boundary
	for {
		b, ok := s.Next(buf)
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

// Next resumes scanning buf from the last unscanned offset, and reports the
// boundary of the next complete value. If no value is complete, Next returns
// false; this is not an error, and the state of s is kept for the next call.
func (s *Scanner) Next(buf []byte) (Boundary, bool) {
	for s.pos < len(buf) {
		i := s.pos
		ch := buf[i]
		s.pos++

		if s.cmt != noComment && s.stepComment(ch, i) {
			continue
		}

		switch s.mode {
		case modeIdle:
			if isSpace(ch) {
				continue
			} else if ch == '/' && s.comments {
				s.cmt, s.slash = commentSlash, i
				continue
			}
			s.begin(ch, i)

		case modeNested:
			if s.str {
				s.stepString(ch)
				continue
			}
			switch ch {
			case '"':
				s.str = true
			case '{', '[':
				s.depth++
			case '}', ']':
				s.depth--
				if s.depth == 0 {
					return s.finish(i + 1), true
				}
			case '/':
				if s.comments {
					s.cmt, s.slash = commentSlash, i
				}
			}

		case modeString:
			if !s.stepString(ch) {
				return s.finish(i + 1), true
			}

		case modeScalar:
			if !s.endsScalar(ch) {
				continue
			}
			if value.IsScalar(buf[s.start:i]) {
				s.pos = i // rescan ch as the start of what follows
				return s.finish(i), true
			}
			s.mode, s.last = modeGarbage, i
			if b, ok := s.stepGarbage(ch, i); ok {
				return b, true
			}

		case modeGarbage:
			if b, ok := s.stepGarbage(ch, i); ok {
				return b, true
			}
		}
	}
	return Boundary{}, false
}

// Flush reports how the pending input in buf should be resolved when the
// stream ends. If nothing is pending, ok == false. If the pending input is an
// unfinished object, array, string, or comment, truncated == true. Otherwise
// the boundary covers a complete scalar or garbage run.
//
// The caller must first call Next until it reports false. Flush does not
// reset s.
func (s *Scanner) Flush(buf []byte) (b Boundary, truncated, ok bool) {
	switch s.mode {
	case modeNested, modeString:
		return Boundary{Start: s.start, End: len(buf)}, true, true
	case modeScalar:
		return Boundary{Start: s.start, End: len(buf)}, false, true
	case modeGarbage:
		return Boundary{Start: s.start, End: s.last}, false, true
	}
	switch s.cmt {
	case commentSlash:
		// A lone slash at the end of the stream.
		return Boundary{Start: s.slash, End: s.slash + 1}, false, true
	case commentBlock, commentStar:
		return Boundary{Start: s.slash, End: len(buf)}, true, true
	}
	return Boundary{}, false, false
}

// begin starts a new top-level value whose first byte is ch at offset i.
func (s *Scanner) begin(ch byte, i int) {
	s.start = i
	switch ch {
	case '{', '[':
		s.mode, s.depth = modeNested, 1
	case '"':
		s.mode, s.str = modeString, true
	default:
		s.mode = modeScalar
	}
}

// finish ends the current value at offset end and returns to idle.
func (s *Scanner) finish(end int) Boundary {
	b := Boundary{Start: s.start, End: end}
	s.mode, s.depth, s.str, s.esc = modeIdle, 0, false, false
	s.start = s.pos
	return b
}

// stepString advances the string state over ch, and reports whether the
// string is still open afterward.
func (s *Scanner) stepString(ch byte) bool {
	switch {
	case s.esc:
		s.esc = false
	case ch == '\\':
		s.esc = true
	case ch == '"':
		s.str = false
	}
	return s.str
}

// endsScalar reports whether ch terminates a scalar run.
func (s *Scanner) endsScalar(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '{', '[', '"':
		return true
	case '/':
		return s.comments
	}
	return false
}

// stepGarbage advances a garbage run over ch at offset i. A garbage run ends
// at the next opening bracket outside a string, which is left to be rescanned.
func (s *Scanner) stepGarbage(ch byte, i int) (Boundary, bool) {
	if s.str {
		s.stepString(ch)
		s.last = i + 1
		return Boundary{}, false
	}
	switch {
	case ch == '{' || ch == '[':
		s.pos = i
		b := Boundary{Start: s.start, End: s.last}
		s.finish(i)
		return b, true
	case ch == '"':
		s.str = true
		s.last = i + 1
	case !isSpace(ch):
		s.last = i + 1
	}
	return Boundary{}, false
}

// stepComment advances the comment state over ch at offset i. It reports
// whether ch was consumed as part of a comment; if not, the caller must
// process ch normally.
func (s *Scanner) stepComment(ch byte, i int) bool {
	switch s.cmt {
	case commentSlash:
		switch ch {
		case '/':
			s.cmt = commentLine
			return true
		case '*':
			s.cmt = commentBlock
			return true
		}
		// The slash did not start a comment. Outside a value it begins a
		// scalar run, which ch then continues; inside a value it is ordinary
		// text for the decoder to judge.
		s.cmt = noComment
		if s.mode == modeIdle {
			s.begin('/', s.slash)
		}
		return false
	case commentLine:
		if ch == '\n' {
			s.cmt = noComment
		}
	case commentBlock:
		if ch == '*' {
			s.cmt = commentStar
		}
	case commentStar:
		switch ch {
		case '/':
			s.cmt = noComment
		case '*':
			// stay
		default:
			s.cmt = commentBlock
		}
	}
	return true
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}
