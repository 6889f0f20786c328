// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package watch_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/creachadair/jwatch"
	"github.com/creachadair/jwatch/watch"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// The chunks of a watch response, split in awkward places.
var chunks = []string{
	`{"type":"ADDED","object":{"message":"Created pod web-1"}}` + "\n" + `{"type":"MOD`,
	`IFIED","object":{"message":"Started container \"web\""}}`,
	"\n",
	`{"type":"DELETED","object":{"mes`,
	`sage":"Deleted pod web-1"}}` + "\n",
}

var wantTypes = []string{"ADDED", "MODIFIED", "DELETED"}

// newServer returns a test server that checks the watch request and writes
// chunks through the encoder returned by wrap.
func newServer(t *testing.T, encoding string, wrap func(io.Writer) io.WriteCloser) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/events" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("watch"); got != "true" {
			t.Errorf("Query watch: got %q, want true", got)
		}
		if got, want := r.Header.Get("Authorization"), "Bearer s3kr1t"; got != want {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if encoding != "" {
			w.Header().Set("Content-Encoding", encoding)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		out := wrap(w)
		for _, c := range chunks {
			io.WriteString(out, c)
			if f, ok := out.(interface{ Flush() error }); ok {
				f.Flush()
			}
			w.(http.Flusher).Flush()
		}
		out.Close()
	}))
	t.Cleanup(srv.Close)
	return srv
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func collectTypes(t *testing.T, cfg watch.Config) ([]string, jwatch.End) {
	t.Helper()
	var types []string
	var end jwatch.End
	err := watch.Stream(context.Background(), cfg, jwatch.HandlerFuncs{
		OnValue: func(r *jwatch.Record) error {
			m, ok := r.Any().(map[string]any)
			if !ok {
				t.Errorf("Value: got %T, want object", r.Any())
				return nil
			}
			types = append(types, m["type"].(string))
			return nil
		},
		OnFault: func(f *jwatch.Fault) error {
			t.Errorf("Unexpected fault: %v", f)
			return nil
		},
		OnEnd: func(e jwatch.End) { end = e },
	})
	if err != nil {
		t.Fatalf("Stream: unexpected error: %v", err)
	}
	return types, end
}

func TestStream(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		wrap     func(io.Writer) io.WriteCloser
	}{
		{"Identity", "", func(w io.Writer) io.WriteCloser { return nopWriteCloser{w} }},
		{"Gzip", "gzip", func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }},
		{"Zstd", "zstd", func(w io.Writer) io.WriteCloser {
			zw, err := zstd.NewWriter(w)
			if err != nil {
				panic(err)
			}
			return zw
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv := newServer(t, test.encoding, test.wrap)
			types, end := collectTypes(t, watch.Config{
				BaseURL: srv.URL,
				Path:    "/api/v1/events",
				Token:   "s3kr1t",
			})
			if diff := cmp.Diff(wantTypes, types); diff != "" {
				t.Errorf("Event types (-want, +got):\n%s", diff)
			}
			if end.Truncated {
				t.Errorf("End: unexpected truncation %q", end.Pending)
			}
		})
	}
}

func TestOpen_status(t *testing.T) {
	srv := newServer(t, "", func(w io.Writer) io.WriteCloser { return nopWriteCloser{w} })
	_, err := watch.Open(context.Background(), watch.Config{
		BaseURL: srv.URL,
		Path:    "/api/v1/events",
		Token:   "wrong",
	})
	var serr *watch.StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("Open: got %v, want *StatusError", err)
	}
	if serr.Code != http.StatusUnauthorized {
		t.Errorf("Status code: got %d, want %d", serr.Code, http.StatusUnauthorized)
	}
	if got, want := string(serr.Body), "unauthorized\n"; got != want {
		t.Errorf("Body: got %q, want %q", got, want)
	}
}

func TestStream_cancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"type":"ADDED"} {"type":"MOD`)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []string
	var ends int
	err := watch.Stream(ctx, watch.Config{BaseURL: srv.URL}, jwatch.HandlerFuncs{
		OnValue: func(r *jwatch.Record) error {
			got = append(got, string(r.Raw))
			cancel()
			return nil
		},
		OnEnd: func(jwatch.End) { ends++ },
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Stream: got %v, want %v", err, context.Canceled)
	}
	if diff := cmp.Diff([]string{`{"type":"ADDED"}`}, got); diff != "" {
		t.Errorf("Events (-want, +got):\n%s", diff)
	}
	if ends != 1 {
		t.Errorf("Got %d end events, want 1", ends)
	}
}

func TestStream_handlerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[1] [2] [3] {"x"`)
	}))
	defer srv.Close()

	errStop := errors.New("stop")
	var got []string
	var ends int
	err := watch.Stream(context.Background(), watch.Config{BaseURL: srv.URL}, jwatch.HandlerFuncs{
		OnValue: func(r *jwatch.Record) error {
			got = append(got, string(r.Raw))
			return errStop
		},
		OnFault: func(f *jwatch.Fault) error {
			t.Errorf("Unexpected fault: %v", f)
			return nil
		},
		OnEnd: func(jwatch.End) { ends++ },
	})
	if !errors.Is(err, errStop) {
		t.Errorf("Stream: got %v, want %v", err, errStop)
	}
	if diff := cmp.Diff([]string{"[1]"}, got); diff != "" {
		t.Errorf("Events (-want, +got):\n%s", diff)
	}
	if ends != 1 {
		t.Errorf("Got %d end events, want 1", ends)
	}
}

func TestConfigURL(t *testing.T) {
	tests := []struct {
		cfg  watch.Config
		want string
	}{
		{watch.Config{BaseURL: "http://localhost:8080", Path: "/api/v1/events"},
			"http://localhost:8080/api/v1/events?watch=true"},
		{watch.Config{BaseURL: "https://k8s.example/prefix/", Path: "api/v1/pods", ResourceVersion: "1234"},
			"https://k8s.example/prefix/api/v1/pods?resourceVersion=1234&watch=true"},
		{watch.Config{BaseURL: "http://h", Params: url.Values{"fieldSelector": {"type=Warning"}}},
			"http://h?fieldSelector=type%3DWarning&watch=true"},
	}
	for _, test := range tests {
		got, err := test.cfg.URL()
		if err != nil {
			t.Errorf("URL %+v: unexpected error: %v", test.cfg, err)
		} else if got != test.want {
			t.Errorf("URL: got %q, want %q", got, test.want)
		}
	}

	for _, bad := range []string{"", "localhost:8080", "http://", "::"} {
		if got, err := (watch.Config{BaseURL: bad}).URL(); err == nil {
			t.Errorf("URL %q: got %q, want error", bad, got)
		}
	}
}
