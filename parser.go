// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jwatch

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/creachadair/jwatch/value"
)

// A Record is one complete value decoded from the stream. The handler that
// receives a Record owns it; the parser keeps no reference to it.
type Record struct {
	Value value.Value
	Raw   []byte // the text of the value as it appeared in the stream
	Span  Span   // location of Raw in the stream
}

// Digest returns a 64-bit fingerprint of the raw text of r.
func (r *Record) Digest() uint64 { return xxhash.Sum64(r.Raw) }

// Any returns the value of r in its plain Go representation.
// See [value.ToAny].
func (r *Record) Any() any { return value.ToAny(r.Value) }

// End describes the end of a stream.
type End struct {
	Truncated bool   // an incomplete value was pending
	Pending   []byte // the pending text, if Truncated
	Span      Span   // location of Pending in the stream
	Total     int64  // the number of bytes fed to the parser
}

// A Handler handles events from parsing a stream. If the Value or Fault method
// reports an error, processing of the current input stops and that error is
// returned to the caller.
//
// The parser calls the methods of a Handler one at a time, in stream order,
// and does not proceed to the next value until the current method returns.
// Handler methods must not call Feed or Close on the parser that invoked them.
type Handler interface {
	// Value reports a complete decoded value.
	Value(r *Record) error

	// Fault reports a value that could not be decoded, or an incomplete value
	// at the end of the stream.
	Fault(f *Fault) error

	// EndOfStream reports the end of the stream. It is called exactly once,
	// after all other events.
	EndOfStream(e End)
}

// HandlerFuncs implements the Handler interface by calling the functions it
// contains. A nil function ignores its events.
type HandlerFuncs struct {
	OnValue func(*Record) error
	OnFault func(*Fault) error
	OnEnd   func(End)
}

// Value implements part of the Handler interface.
func (h HandlerFuncs) Value(r *Record) error {
	if h.OnValue == nil {
		return nil
	}
	return h.OnValue(r)
}

// Fault implements part of the Handler interface.
func (h HandlerFuncs) Fault(f *Fault) error {
	if h.OnFault == nil {
		return nil
	}
	return h.OnFault(f)
}

// EndOfStream implements part of the Handler interface.
func (h HandlerFuncs) EndOfStream(e End) {
	if h.OnEnd != nil {
		h.OnEnd(e)
	}
}

// State is the processing state of a Parser.
type State byte

// Constants defining the valid State values.
const (
	Idle     State = iota // between values
	Scanning              // inside an incomplete value
	Closed                // the stream has ended
)

var stateStr = [...]string{Idle: "idle", Scanning: "scanning", Closed: "closed"}

func (s State) String() string {
	if int(s) >= len(stateStr) {
		return fmt.Sprintf("state %d", byte(s))
	}
	return stateStr[s]
}

// A Parser consumes chunks of a stream of JSON values and delivers the values
// to a Handler as soon as they are complete. The way the stream is divided
// into chunks has no effect on the values delivered.
//
// A Parser is not safe for concurrent use; one goroutine should feed it.
type Parser struct {
	h      Handler
	acc    Accumulator
	sc     Scanner
	opts   value.DecodeOptions
	bufLen int
	closed bool
}

// NewParser constructs a new Parser that delivers events to h.
func NewParser(h Handler) *Parser { return &Parser{h: h} }

// AllowComments configures p to accept (true) or reject (false) line and
// block comments and trailing commas, as in HuJSON. It should be called
// before the first call to Feed.
func (p *Parser) AllowComments(ok bool) {
	p.sc.AllowComments(ok)
	p.opts.AllowComments = ok
}

// BufferSize sets the size of the read buffer used by ReadFrom.
// A value <= 0 selects a default size.
func (p *Parser) BufferSize(n int) { p.bufLen = n }

// State reports the current state of p.
func (p *Parser) State() State {
	if p.closed {
		return Closed
	} else if p.sc.Pending() {
		return Scanning
	}
	return Idle
}

// Buffered reports the number of bytes held by p that are not yet resolved
// into values or faults.
func (p *Parser) Buffered() int { return p.acc.Len() }

// Feed adds chunk to the input and delivers any values it completes. Feed
// reports ErrClosed if p is closed. An empty chunk is a no-op.
//
// If a handler method reports an error, Feed stops and returns that error.
// The input not yet processed is kept, and processing resumes on the next
// call to Feed or Close.
func (p *Parser) Feed(chunk []byte) error {
	if p.closed {
		return ErrClosed
	}
	p.acc.Append(chunk)
	return p.drain()
}

// Write implements the io.Writer interface by calling Feed. It always reports
// that all of data was accepted unless p is closed.
func (p *Parser) Write(data []byte) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	return len(data), p.Feed(data)
}

// ReadFrom implements the io.ReaderFrom interface. It feeds p with chunks
// from r until r reports io.EOF, and then closes p. If r reports any other
// error, p is closed and the error is returned. If a handler reports an
// error, ReadFrom returns it without closing p.
func (p *Parser) ReadFrom(r io.Reader) (int64, error) {
	if p.closed {
		return 0, ErrClosed
	}
	bufLen := p.bufLen
	if bufLen <= 0 {
		bufLen = 32 << 10
	}
	buf := make([]byte, bufLen)

	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if ferr := p.Feed(buf[:n]); ferr != nil {
				return total, ferr
			}
		}
		if err == io.EOF {
			return total, p.Close()
		} else if err != nil {
			return total, errors.Join(err, p.Close())
		}
	}
}

// Close ends the stream. Complete values still buffered are delivered; then an
// incomplete value, if any, is reported as a TruncationFault; then the
// handler's EndOfStream method is called. After Close returns, p delivers no
// further events. Close reports any errors from handler methods. Buffered
// values are delivered even if an earlier handler call reported an error.
//
// Close is idempotent: calls after the first do nothing and return nil.
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	for {
		err := p.drain()
		if err == nil {
			break
		}
		errs = append(errs, err)
	}

	var end End
	buf := p.acc.Bytes()
	if b, truncated, ok := p.sc.Flush(buf); ok {
		if truncated {
			f := p.fault(TruncationFault, b, io.ErrUnexpectedEOF)
			end = End{Truncated: true, Pending: bytes.Clone(f.Text), Span: f.Span}
			errs = append(errs, p.h.Fault(f))
		} else {
			errs = append(errs, p.deliver(b))
		}
	}
	p.acc.Reset()
	p.sc.Reset()

	end.Total = p.acc.Total()
	p.h.EndOfStream(end)
	return errors.Join(errs...)
}

// drain delivers all the values that are complete in the buffer.
func (p *Parser) drain() error {
	for {
		b, ok := p.sc.Next(p.acc.Bytes())
		if !ok {
			break
		}

		// Consume the value before reporting any handler error, so that a
		// value is never delivered twice.
		err := p.deliver(b)
		p.consume(b.End)
		if err != nil {
			return err
		}
	}
	p.consume(p.sc.Settled())
	return nil
}

func (p *Parser) consume(n int) {
	if err := p.acc.Consume(n); err != nil {
		panic(fmt.Sprintf("jwatch: scanner out of sync: %v", err))
	}
	p.sc.Discard(n)
}

// deliver decodes the value at b and reports it to the handler, as a value or
// as a decode fault.
func (p *Parser) deliver(b Boundary) error {
	buf := p.acc.Bytes()
	v, err := p.opts.Decode(buf[b.Start:b.End])
	if err != nil {
		return p.h.Fault(p.fault(DecodeFault, b, err))
	}
	return p.h.Value(&Record{
		Value: v,
		Raw:   bytes.Clone(buf[b.Start:b.End]),
		Span:  p.span(b),
	})
}

func (p *Parser) fault(kind FaultKind, b Boundary, err error) *Fault {
	return &Fault{
		Kind: kind,
		Span: p.span(b),
		Text: bytes.Clone(p.acc.Bytes()[b.Start:b.End]),
		Err:  err,
	}
}

func (p *Parser) span(b Boundary) Span {
	off := p.acc.Offset()
	return Span{Pos: off + int64(b.Start), End: off + int64(b.End)}
}
