// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package watch opens HTTP watch streams, such as those served by the
// Kubernetes API server for "?watch=true" requests, and feeds their bodies to
// a jwatch.Parser.
//
// A watch response is a long-lived body containing a sequence of JSON values
// separated by whitespace. Values may be split arbitrarily across transport
// chunks; the parser reassembles them.
package watch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/creachadair/jwatch"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Config carries the settings for a watch request.
type Config struct {
	// BaseURL is the scheme and authority of the server, for example
	// "http://localhost:8080". It may include a path prefix.
	BaseURL string

	// Path is the resource path to watch, for example "/api/v1/events".
	Path string

	// Params are additional query parameters. The "watch" parameter is always
	// set to "true".
	Params url.Values

	// ResourceVersion, if set, is sent as the "resourceVersion" parameter so
	// that the watch resumes after that version.
	ResourceVersion string

	// Token, if set, is sent as a bearer token.
	Token string

	// ContentType is sent as the Accept header.
	// If empty, "application/json" is used.
	ContentType string

	// AllowComments enables comments and trailing commas in the stream.
	AllowComments bool

	// Client is used to issue the request. If nil, http.DefaultClient is used.
	Client *http.Client
}

// URL returns the request URL described by c.
func (c Config) URL() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	} else if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing scheme or host", c.BaseURL)
	}
	if c.Path != "" {
		u = u.JoinPath(c.Path)
	}
	q := u.Query()
	for key, vals := range c.Params {
		q[key] = append(q[key], vals...)
	}
	q.Set("watch", "true")
	if c.ResourceVersion != "" {
		q.Set("resourceVersion", c.ResourceVersion)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c Config) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

// StatusError is reported by Open when the server responds with a status
// other than 2xx.
type StatusError struct {
	Code   int    // the HTTP status code
	Status string // the HTTP status line
	Body   []byte // a prefix of the response body
}

// maxErrorBody is the most of an error response body kept in a StatusError.
const maxErrorBody = 512

func (e *StatusError) Error() string {
	msg := bytes.TrimSpace(e.Body)
	if len(msg) == 0 {
		return "watch: " + e.Status
	}
	return fmt.Sprintf("watch: %s: %s", e.Status, msg)
}

// Open issues the watch request described by cfg and returns the response
// body, with any gzip or zstd content encoding removed. The caller must close
// the body when done. Canceling ctx ends the stream.
func Open(ctx context.Context, cfg Config) (io.ReadCloser, error) {
	target, err := cfg.URL()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	accept := cfg.ContentType
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Encoding", "gzip, zstd")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	rsp, err := cfg.client().Do(req)
	if err != nil {
		return nil, err
	}
	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		defer rsp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(rsp.Body, maxErrorBody))
		return nil, &StatusError{Code: rsp.StatusCode, Status: rsp.Status, Body: body}
	}

	body, err := decodeBody(rsp)
	if err != nil {
		rsp.Body.Close()
		return nil, err
	}
	return body, nil
}

// decodeBody wraps the body of rsp to remove its content encoding.
func decodeBody(rsp *http.Response) (io.ReadCloser, error) {
	switch enc := strings.ToLower(strings.TrimSpace(rsp.Header.Get("Content-Encoding"))); enc {
	case "", "identity":
		return rsp.Body, nil
	case "gzip":
		zr, err := gzip.NewReader(rsp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		return decodedBody{Reader: zr, close: zr.Close, body: rsp.Body}, nil
	case "zstd":
		dec, err := zstd.NewReader(rsp.Body, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd body: %w", err)
		}
		rc := dec.IOReadCloser()
		return decodedBody{Reader: rc, close: rc.Close, body: rsp.Body}, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
}

// decodedBody reads through a decompressor and closes both it and the
// underlying response body.
type decodedBody struct {
	io.Reader
	close func() error
	body  io.Closer
}

func (d decodedBody) Close() error { return errors.Join(d.close(), d.body.Close()) }

// Stream opens the watch described by cfg and delivers each value in the
// response body to h, until the body ends, ctx ends, or a method of h reports
// an error. The parser is closed before Stream returns, so h always receives
// its EndOfStream event.
//
// Once a method of h reports an error, Stream delivers no further values or
// faults to h, including values still buffered when the parser closes.
//
// Stream returns nil if the server ended the stream normally. If ctx ended
// first, Stream returns ctx.Err().
func Stream(ctx context.Context, cfg Config, h jwatch.Handler) error {
	body, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer body.Close()

	p := jwatch.NewParser(&latch{Handler: h})
	p.AllowComments(cfg.AllowComments)
	_, err = p.ReadFrom(body)
	cerr := p.Close() // no-op if ReadFrom closed it
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.Join(err, cerr)
}

// latch wraps a Handler so that no values or faults are delivered after a
// method reports an error. EndOfStream is always delivered.
type latch struct {
	jwatch.Handler
	err error
}

func (l *latch) Value(r *jwatch.Record) error {
	if l.err == nil {
		l.err = l.Handler.Value(r)
		return l.err
	}
	return nil
}

func (l *latch) Fault(f *jwatch.Fault) error {
	if l.err == nil {
		l.err = l.Handler.Fault(f)
		return l.err
	}
	return nil
}
