// Package logging builds the zerolog loggers used across vtable.
//
// Interactive commands own the terminal, so they log to a file. Everything
// else logs to stderr, human readable by default or JSON on request.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Config selects level, format and destination
type Config struct {
	Level  string
	Format string // console or json
	File   string // empty logs to Stderr
	Stderr io.Writer
}

// Result is a configured logger plus the file it writes to, if any
type Result struct {
	Logger   zerolog.Logger
	FilePath string
	file     *os.File
}

// Close closes the log file
func (r *Result) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// New creates a logger. An unparsable level falls back to info.
func New(cfg Config) (*Result, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	out := cfg.Stderr
	if out == nil {
		out = os.Stderr
	}

	result := &Result{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		result.file = f
		result.FilePath = cfg.File
		out = f
	}

	var w io.Writer = out
	if cfg.Format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.File != "",
		}
	}

	result.Logger = zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	return result, nil
}

// Component returns a child logger tagged with the component name
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// FromContext returns the logger attached to ctx, or a disabled logger
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
