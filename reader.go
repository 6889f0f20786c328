// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jwatch

import (
	"errors"
	"io"
	"iter"
)

// A Reader reads a stream of JSON values from an io.Reader, one at a time.
// It is the pull form of a Parser: input is read only when the values already
// decoded have been consumed.
//
//	rd := jwatch.NewReader(body)
//	for {
//	   rec, err := rd.Next()
//	   if err == io.EOF {
//	      break
//	   } else if f, ok := err.(*jwatch.Fault); ok {
//	      log.Printf("Skipped: %v", f)
//	      continue
//	   } else if err != nil {
//	      log.Fatalf("Read failed: %v", err)
//	   }
//	   log.Printf("Value: %s", rec.Value.JSON())
//	}
type Reader struct {
	r     io.Reader
	p     *Parser
	buf   []byte
	queue []item
	err   error // terminal error, reported after the queue drains
}

type item struct {
	rec *Record
	err error
}

// NewReader constructs a new Reader that consumes input from r.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{r: r}
	rd.p = NewParser(HandlerFuncs{
		OnValue: func(rec *Record) error {
			rd.queue = append(rd.queue, item{rec: rec})
			return nil
		},
		OnFault: func(f *Fault) error {
			rd.queue = append(rd.queue, item{err: f})
			return nil
		},
	})
	return rd
}

// AllowComments configures rd to accept (true) or reject (false) comments
// and trailing commas. It should be called before the first call to Next.
func (rd *Reader) AllowComments(ok bool) { rd.p.AllowComments(ok) }

// BufferSize sets the size of the buffer used to read from the input.
// A value <= 0 selects a default size. It should be called before the first
// call to Next.
func (rd *Reader) BufferSize(n int) {
	if n <= 0 {
		n = 32 << 10
	}
	rd.buf = make([]byte, n)
}

// Next returns the next record from the stream.
//
// If the stream contains a value that could not be decoded, or ends in the
// middle of a value, Next returns a nil record and an error of concrete type
// *Fault; such errors are not fatal and Next may be called again. At the end
// of the stream Next returns io.EOF. Any other error is from the underlying
// reader, and is final.
func (rd *Reader) Next() (*Record, error) {
	for len(rd.queue) == 0 {
		if rd.err != nil {
			return nil, rd.err
		}
		rd.fill()
	}
	next := rd.queue[0]
	rd.queue[0] = item{}
	rd.queue = rd.queue[1:]
	return next.rec, next.err
}

// fill reads one chunk from the input and feeds it to the parser.
func (rd *Reader) fill() {
	if rd.buf == nil {
		rd.BufferSize(0)
	}
	n, err := rd.r.Read(rd.buf)
	if n > 0 {
		rd.p.Feed(rd.buf[:n]) // the handler never fails
	}
	if err == io.EOF {
		rd.p.Close()
		rd.err = io.EOF
	} else if err != nil {
		rd.p.Close()
		rd.err = err
	}
}

// All returns an iterator over the records of the stream. Faults are yielded
// as errors with a nil record, and iteration continues after them. Iteration
// ends at the end of the stream, or after yielding an error from the
// underlying reader.
func (rd *Reader) All() iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		for {
			rec, err := rd.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) {
				return
			}
			var f *Fault
			if err != nil && !errors.As(err, &f) {
				return
			}
		}
	}
}

// Close stops rd. Values not yet returned are discarded, and subsequent calls
// to Next report ErrClosed. Close does not close the underlying reader.
func (rd *Reader) Close() error {
	if rd.err == nil || rd.err == io.EOF {
		rd.err = ErrClosed
	}
	rd.p.Close()
	rd.queue = nil
	return nil
}
