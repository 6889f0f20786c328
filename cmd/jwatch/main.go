// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Program jwatch watches a Kubernetes-style event stream and prints one line
// for each event it receives.
//
// Usage:
//
//	SERVICE_ACCOUNT_TOKEN=... jwatch [flags]
//
// By default jwatch watches /api/v1/events on http://localhost:8080 and prints
// the type and message of each event:
//
//	ADDED: Successfully assigned default/web-1 to node-3
//
// Values in the stream that are not valid JSON are logged and skipped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	sp "github.com/4nd3r5on/go-strings-parser"
	"github.com/creachadair/jwatch/query"
	"github.com/creachadair/jwatch/watch"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// parseFields parses a space-separated list of dotted paths.
func parseFields(s string) ([]field, error) {
	paths, err := sp.Parse(s,
		sp.WithProcessFunc(
			func(element string) (processed string, skip bool, err error) {
				element = strings.TrimSpace(element)
				return element, element == "", nil
			},
		),
	)
	if err != nil {
		return nil, err
	}
	out := make([]field, 0, len(paths))
	for _, path := range paths {
		q, err := query.ParsePath(path)
		if err != nil {
			return nil, err
		}
		out = append(out, field{path: path, query: q})
	}
	if len(out) == 0 {
		return nil, errors.New("no fields specified")
	}
	return out, nil
}

func main() {
	var baseURL string
	var path string
	var resourceVersion string
	var fieldsStr string
	var logLevel string
	var colorMode string
	var raw, dedup, comments bool

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "base URL of the API server")
	flag.StringVar(&path, "path", "/api/v1/events", "resource path to watch")
	flag.StringVar(&resourceVersion, "resource-version", "", "resume the watch after this resource version")
	flag.StringVar(&fieldsStr, "fields", "type object.message", "space-separated dotted paths to print for each event")
	flag.StringVar(&logLevel, "log-level", "info", "debug|info|warn|error")
	flag.StringVar(&colorMode, "color", "auto", "colorize output: auto|always|never")
	flag.BoolVar(&raw, "raw", false, "print the raw text of each event instead of selected fields")
	flag.BoolVar(&dedup, "dedup", false, "suppress events whose text repeats an earlier event")
	flag.BoolVar(&comments, "comments", false, "accept comments and trailing commas in the stream")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage: %[1]s [flags]

Watch an event stream and print one line per event. The bearer token for the
server is read from the SERVICE_ACCOUNT_TOKEN environment variable.

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		log.Fatalf("invalid log level: %s", logLevel)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	fields, err := parseFields(fieldsStr)
	if err != nil {
		log.Fatalf("invalid -fields: %v", err)
	}

	color, err := useColor(colorMode, os.Stdout)
	if err != nil {
		log.Fatalf("invalid -color: %v", err)
	}
	var stdout io.Writer = os.Stdout
	if color {
		stdout = colorable.NewColorableStdout()
	}

	token := os.Getenv("SERVICE_ACCOUNT_TOKEN")
	if token == "" {
		logger.Warn("SERVICE_ACCOUNT_TOKEN is not set; sending no credentials")
	}

	cfg := watch.Config{
		BaseURL:         baseURL,
		Path:            path,
		ResourceVersion: resourceVersion,
		Token:           token,
		AllowComments:   comments,
	}
	target, err := cfg.URL()
	if err != nil {
		log.Fatalf("invalid -url: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pr := &printer{
		w:      stdout,
		log:    logger,
		fields: fields,
		raw:    raw,
		color:  color,
	}
	if dedup {
		pr.seen = make(map[uint64]struct{})
	}

	logger.Info("watching", "url", target)
	err = watch.Stream(ctx, cfg, pr)
	logger.Info("watch ended", "events", pr.events, "faults", pr.faults, "duplicates", pr.dups)
	switch {
	case errors.Is(err, context.Canceled):
		// interrupted
	case err != nil:
		logger.Error("watch failed", "err", err)
		stop()
		os.Exit(1)
	}
}

// useColor reports whether output to f should be colorized under mode.
func useColor(mode string, f *os.File) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	default:
		return false, fmt.Errorf("unknown mode %q", mode)
	}
}
