// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jwatch

import (
	"errors"
	"fmt"
)

// ErrRange is reported by Accumulator.Consume for a count outside the
// buffered range.
var ErrRange = errors.New("consume out of range")

// An Accumulator holds the bytes of a stream that have arrived but not yet
// been resolved into complete values. Bytes are appended at the tail and
// consumed from the front, and are never reordered.
//
// The buffer is organized as:
//
//   - buf[0:head]        // consumed bytes, reclaimed on the next compaction
//   - buf[head:len(buf)] // pending bytes
//   - buf[len(buf):cap]  // unused capacity
//
// An Accumulator imposes no upper bound on its size.
type Accumulator struct {
	buf  []byte
	head int
	base int64 // stream offset of buf[0]
}

// Append adds a copy of chunk to the tail of a. An empty chunk has no effect.
func (a *Accumulator) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	// If the new data would not fit and at least half the buffer is
	// consumed, move the pending bytes to the front rather than growing.
	if len(a.buf)+len(chunk) > cap(a.buf) && a.head >= len(a.buf)/2 {
		a.compact()
	}
	a.buf = append(a.buf, chunk...)
}

// Consume removes the first n pending bytes of a. It reports an error
// wrapping ErrRange if n < 0 or n > a.Len(); in that case a is unchanged.
func (a *Accumulator) Consume(n int) error {
	if n < 0 || n > a.Len() {
		return fmt.Errorf("consume %d of %d bytes: %w", n, a.Len(), ErrRange)
	}
	a.head += n
	if a.head == len(a.buf) {
		// Everything is consumed; reuse the whole buffer.
		a.base += int64(a.head)
		a.buf = a.buf[:0]
		a.head = 0
	}
	return nil
}

func (a *Accumulator) compact() {
	n := copy(a.buf, a.buf[a.head:])
	a.base += int64(a.head)
	a.buf = a.buf[:n]
	a.head = 0
}

// Len reports the number of pending bytes in a.
func (a *Accumulator) Len() int { return len(a.buf) - a.head }

// Bytes returns a view of the pending bytes of a. The view is valid only
// until the next call to Append or Consume.
func (a *Accumulator) Bytes() []byte { return a.buf[a.head:] }

// Offset reports the stream offset of the first pending byte of a.
func (a *Accumulator) Offset() int64 { return a.base + int64(a.head) }

// Total reports the number of bytes ever appended to a.
func (a *Accumulator) Total() int64 { return a.base + int64(len(a.buf)) }

// Reset discards all pending bytes. The stream offsets of a are kept.
func (a *Accumulator) Reset() { a.Consume(a.Len()) }
