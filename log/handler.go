// Package log builds the loggers used by plugincheck and adapts them to ports.Logger.
// log/slog is the default backend; zap is available for deployments that already
// ship zap's JSON format.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/plugincheck/plugincheck/domain/ports"
)

// Format selects the line encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Backend selects the logging library.
type Backend string

const (
	BackendSlog Backend = "slog"
	BackendZap  Backend = "zap"
)

// Option configures a logger.
type Option func(*handlerConfig)

type handlerConfig struct {
	level     slog.Level
	addSource bool
	format    Format
	out       io.Writer
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level:  slog.LevelInfo,
		format: FormatText,
		out:    os.Stderr,
	}
}

// WithLevel sets the minimum level to report.
func WithLevel(level slog.Level) Option {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) Option {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithFormat sets the line encoding.
func WithFormat(f Format) Option {
	return func(c *handlerConfig) {
		if f != "" {
			c.format = f
		}
	}
}

// WithWriter sets the destination. Default is stderr.
func WithWriter(w io.Writer) Option {
	return func(c *handlerConfig) {
		if w != nil {
			c.out = w
		}
	}
}

// ParseLevel accepts debug, info, warn/warning and error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// NewSlog creates a *slog.Logger writing text or JSON lines.
func NewSlog(opts ...Option) *slog.Logger {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	hopts := &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.addSource}
	var h slog.Handler
	if cfg.format == FormatJSON {
		h = slog.NewJSONHandler(cfg.out, hopts)
	} else {
		h = slog.NewTextHandler(cfg.out, hopts)
	}
	return slog.New(h)
}

// New builds a ports.Logger for backend. The returned func flushes buffered
// output and should be called before exit.
func New(backend Backend, opts ...Option) (ports.Logger, func() error, error) {
	switch backend {
	case "", BackendSlog:
		return FromSlog(NewSlog(opts...)), func() error { return nil }, nil
	case BackendZap:
		z := NewZap(opts...)
		return FromZap(z), z.Sync, nil
	default:
		return nil, nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

// SlogLogger adapts *slog.Logger to ports.Logger.
type SlogLogger struct {
	l *slog.Logger
}

// FromSlog wraps l. A nil l uses slog.Default().
func FromSlog(l *slog.Logger) ports.Logger {
	if l == nil {
		l = slog.Default()
	}
	return SlogLogger{l: l}
}

func (s SlogLogger) Debug(msg string, keysAndValues ...any) { s.l.Debug(msg, keysAndValues...) }
func (s SlogLogger) Info(msg string, keysAndValues ...any)  { s.l.Info(msg, keysAndValues...) }
func (s SlogLogger) Warning(msg string, keysAndValues ...any) {
	s.l.Warn(msg, keysAndValues...)
}
