// Package logger is the project's zap setup. Request-scoped fields (trace,
// request and tenant key) come from the context via WithContext; the
// package-level helpers log through the process default set by SetDefault.
package logger

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "contalink/internal/core/context"
)

// Logger is a sugared zap logger. Use the *w methods with key-value pairs.
type Logger struct {
	*zap.SugaredLogger
}

// Config selects level, encoding and sinks.
type Config struct {
	Level       string // debug, info, warn (warning), error; unknown means info
	Development bool   // console encoding with colour, no sampling
	OutputPaths []string
	Service     string // added to every entry as "service" when set
}

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stdout"}
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}
	if cfg.Service != "" {
		zc.InitialFields = map[string]any{"service": cfg.Service}
	}

	z, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{z.Sugar()}, nil
}

func parseLevel(s string) zapcore.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

var std atomic.Pointer[Logger]

// SetDefault makes l the logger behind Default and the package-level helpers.
func SetDefault(l *Logger) {
	if l != nil {
		std.Store(l)
	}
}

// Default returns the process logger. Until SetDefault is called it is a
// production JSON logger on stdout.
func Default() *Logger {
	if l := std.Load(); l != nil {
		return l
	}
	l, err := New(Config{})
	if err != nil {
		l = Nop()
	}
	std.CompareAndSwap(nil, l)
	return std.Load()
}

// WithContext returns l annotated with the trace, request and tenant key
// found in ctx. Absent values are left out.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var kv []any
	if tc := appctx.GetTrace(ctx); tc != nil {
		kv = append(kv, "trace_id", tc.TraceID, "span_id", tc.SpanID, "request_id", tc.RequestID)
	}
	if key := appctx.GetTenantKey(ctx); key != "" {
		kv = append(kv, "tenant_key", key)
	}
	if len(kv) == 0 {
		return l
	}
	return &Logger{l.SugaredLogger.With(kv...)}
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{l.SugaredLogger.With(keysAndValues...)}
}

// WithComponent tags entries with component=name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

// For returns the default logger annotated from ctx.
func For(ctx context.Context) *Logger {
	return Default().WithContext(ctx)
}

func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	For(ctx).Debugw(msg, keysAndValues...)
}

func Info(ctx context.Context, msg string, keysAndValues ...any) {
	For(ctx).Infow(msg, keysAndValues...)
}

func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	For(ctx).Warnw(msg, keysAndValues...)
}

func Error(ctx context.Context, msg string, keysAndValues ...any) {
	For(ctx).Errorw(msg, keysAndValues...)
}
