// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/creachadair/jwatch"
	"github.com/creachadair/jwatch/query"
)

// A field is a dotted path selected from each event for output.
type field struct {
	path  string
	query query.Query
}

// maxSeen bounds the number of digests remembered for duplicate suppression.
const maxSeen = 1 << 14

// printer is a jwatch.Handler that writes one line per event to w.
//
// The first field is printed as a label, followed by a colon and the
// remaining fields separated by spaces.
type printer struct {
	w      io.Writer
	log    *slog.Logger
	fields []field
	raw    bool
	color  bool

	seen map[uint64]struct{} // if non-nil, digests of events already printed

	events, faults, dups int
}

// ANSI colors for the well-known watch event types.
var typeColor = map[string]string{
	"ADDED":    "\x1b[32m", // green
	"MODIFIED": "\x1b[33m", // yellow
	"DELETED":  "\x1b[31m", // red
	"BOOKMARK": "\x1b[36m", // cyan
	"ERROR":    "\x1b[1;31m",
}

const colorReset = "\x1b[0m"

// Value implements part of the jwatch.Handler interface.
func (p *printer) Value(r *jwatch.Record) error {
	if p.seen != nil {
		d := r.Digest()
		if _, ok := p.seen[d]; ok {
			p.dups++
			p.log.Debug("duplicate event", "span", r.Span.String())
			return nil
		}
		if len(p.seen) >= maxSeen {
			clear(p.seen)
		}
		p.seen[d] = struct{}{}
	}
	p.events++

	if p.raw {
		_, err := fmt.Fprintf(p.w, "%s\n", r.Raw)
		return err
	}
	_, err := io.WriteString(p.w, p.format(r)+"\n")
	return err
}

// format renders the selected fields of r as a line of text.
func (p *printer) format(r *jwatch.Record) string {
	text := make([]string, len(p.fields))
	for i, f := range p.fields {
		s, err := query.Text(r.Value, f.query)
		if err != nil {
			p.log.Debug("field not found", "field", f.path, "span", r.Span.String(), "err", err)
			continue
		}
		text[i] = s
	}

	label := text[0]
	if c, ok := typeColor[label]; ok && p.color {
		label = c + label + colorReset
	}
	if len(text) == 1 {
		return label
	}
	return label + ": " + strings.Join(text[1:], " ")
}

// Fault implements part of the jwatch.Handler interface.
func (p *printer) Fault(f *jwatch.Fault) error {
	p.faults++
	p.log.Warn("skipped invalid event",
		"kind", f.Kind.String(), "span", f.Span.String(), "err", f.Err, "text", clip(f.Text, 80))
	return nil
}

// EndOfStream implements part of the jwatch.Handler interface.
func (p *printer) EndOfStream(e jwatch.End) {
	p.log.Debug("end of stream", "bytes", e.Total, "truncated", e.Truncated)
}

// clip returns the text of b, shortened to at most n bytes.
func clip(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
