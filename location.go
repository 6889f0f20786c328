// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jwatch

import "fmt"

// A Span describes a contiguous range of bytes in the input stream.
type Span struct {
	Pos int64 // the start offset, 0-based
	End int64 // the end offset, 0-based (noninclusive)
}

// Len reports the number of bytes covered by s.
func (s Span) Len() int64 { return s.End - s.Pos }

func (s Span) String() string { return fmt.Sprintf("%d-%d", s.Pos, s.End) }
