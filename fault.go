// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jwatch

import (
	"errors"
	"fmt"
)

// ErrClosed is reported by operations on a closed Parser or Reader.
var ErrClosed = errors.New("parser is closed")

// FaultKind classifies the faults reported by a Parser.
type FaultKind byte

// Constants defining the valid FaultKind values.
const (
	// DecodeFault is a complete value whose text is not valid JSON.
	// The stream continues after it.
	DecodeFault FaultKind = iota + 1

	// TruncationFault is an incomplete value pending when the stream ended.
	TruncationFault
)

func (k FaultKind) String() string {
	switch k {
	case DecodeFault:
		return "decode fault"
	case TruncationFault:
		return "truncation fault"
	default:
		return fmt.Sprintf("fault kind %d", byte(k))
	}
}

// A Fault reports a span of the input stream that could not be delivered as a
// value. A *Fault satisfies the error interface.
type Fault struct {
	Kind FaultKind
	Span Span   // location of the offending bytes in the stream
	Text []byte // a copy of the offending bytes
	Err  error  // the underlying error
}

// Error satisfies the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("%v at %v: %v", f.Kind, f.Span, f.Err)
}

// Unwrap supports error wrapping.
func (f *Fault) Unwrap() error { return f.Err }
