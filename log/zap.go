package log

import (
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/plugincheck/plugincheck/domain/ports"
)

// NewZap creates a *zap.Logger honoring the same options as NewSlog.
func NewZap(opts ...Option) *zap.Logger {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if cfg.format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(cfg.out), zapLevel(cfg.level))
	var zopts []zap.Option
	if cfg.addSource {
		zopts = append(zopts, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	return zap.New(core, zopts...)
}

func zapLevel(l slog.Level) zapcore.Level {
	switch {
	case l <= slog.LevelDebug:
		return zapcore.DebugLevel
	case l <= slog.LevelInfo:
		return zapcore.InfoLevel
	case l <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// ZapLogger adapts *zap.SugaredLogger to ports.Logger.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// FromZap wraps l. A nil l discards everything.
func FromZap(l *zap.Logger) ports.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return ZapLogger{s: l.Sugar()}
}

func (z ZapLogger) Debug(msg string, keysAndValues ...any)   { z.s.Debugw(msg, keysAndValues...) }
func (z ZapLogger) Info(msg string, keysAndValues ...any)    { z.s.Infow(msg, keysAndValues...) }
func (z ZapLogger) Warning(msg string, keysAndValues ...any) { z.s.Warnw(msg, keysAndValues...) }
