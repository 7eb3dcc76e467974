// Package logger builds slog loggers with consistent formatting across
// services. Production wiring uses JSON output; development uses text.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format selects the log output encoding.
type Format string

const (
	// FormatJSON emits structured records for log aggregation.
	FormatJSON Format = "json"
	// FormatText emits human-readable records for development.
	FormatText Format = "text"
)

// Config controls logger construction. It is env-taggable so the
// composition root can load it through pkg/config.
type Config struct {
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	Format Format     `env:"LOG_FORMAT" envDefault:"json"`
}

type options struct {
	output io.Writer
	attrs  []slog.Attr
}

// Option customizes logger construction.
type Option func(*options)

// WithOutput redirects log output. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithAttr attaches static attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) {
		o.attrs = append(o.attrs, attrs...)
	}
}

// New builds a slog.Logger from the config. Invalid formats panic to keep
// misconfigured processes from starting.
func New(cfg Config, opts ...Option) *slog.Logger {
	o := options{output: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.Level}

	var h slog.Handler
	switch cfg.Format {
	case FormatJSON, "":
		h = slog.NewJSONHandler(o.output, handlerOpts)
	case FormatText:
		h = slog.NewTextHandler(o.output, handlerOpts)
	default:
		panic(fmt.Errorf("logger: invalid format %q", cfg.Format))
	}

	if len(o.attrs) > 0 {
		h = h.WithAttrs(o.attrs)
	}
	return slog.New(h)
}

// Discard returns a logger that drops every record. Services use it as the
// default so logging stays opt-in.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
