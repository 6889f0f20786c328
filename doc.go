// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package jwatch recognizes and decodes the JSON values in an unbounded
// stream, such as the body of an HTTP watch response, where values follow one
// another separated only by optional whitespace.
//
// # Parsing
//
// The Parser type implements a push parser. Construct a Parser with a Handler
// and call its Feed method with each chunk of input as it arrives. Each value
// is delivered to the handler as soon as its last byte has been fed, no
// matter how the input was divided into chunks:
//
//	p := jwatch.NewParser(handler)
//	for chunk := range chunks {
//	   if err := p.Feed(chunk); err != nil {
//	      log.Fatalf("Feed failed: %v", err)
//	   }
//	}
//	p.Close()
//
// A Parser is also an io.Writer and an io.ReaderFrom, so a transport body can
// be copied into it directly:
//
//	if _, err := io.Copy(p, resp.Body); err != nil {
//	   log.Printf("Watch ended: %v", err)
//	}
//
// Close ends the stream. It reports a value left incomplete at the end of the
// input as a fault, never silently discarding it.
//
// # Reading
//
// The Reader type is the pull form of a Parser. Construct a Reader from an
// io.Reader, and call its Next method to fetch values one at a time:
//
//	rd := jwatch.NewReader(resp.Body)
//	for rec, err := range rd.All() {
//	   ...
//	}
//
// # Handlers
//
// The Handler interface accepts events from a Parser:
//
//	Method      | Payload   | Description
//	----------- | --------- | -------------------------------------------
//	Value       | *Record   | a complete value, decoded
//	Fault       | *Fault    | undecodable text, or a truncated final value
//	EndOfStream | End       | the end of the stream, exactly once
//
// Handler methods are called one at a time in stream order, and the parser
// does not proceed until each returns. A fault does not stop the parser:
// scanning resumes after the offending text.
//
// # Framing
//
// Objects and arrays are framed by tracking their nesting depth, taking
// string literals and escapes into account. Other top-level text is framed
// by the Scanner as described on that type; text that is not valid JSON is
// reported as a DecodeFault covering the whole unrecognized run.
package jwatch
