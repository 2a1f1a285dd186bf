// Package logging wraps zap in the Logger type that this module's adapters
// and cmd entrypoints receive through their constructors, plus helpers that
// carry a Logger and a request id in a context.Context. The matching engine
// itself stays silent.
package logging

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with context support.
type Logger struct {
	logger *zap.Logger
}

// Level mirrors zapcore.Level so callers don't need to import zapcore.
type Level zapcore.Level

const (
	DEBUG Level = Level(zapcore.DebugLevel)
	INFO  Level = Level(zapcore.InfoLevel)
	WARN  Level = Level(zapcore.WarnLevel)
	ERROR Level = Level(zapcore.ErrorLevel)
	FATAL Level = Level(zapcore.FatalLevel)
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
)

// New builds a Logger at the given level with ISO8601 timestamps.
func New(level Level) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(level))
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := cfg.Build()
	return &Logger{logger: logger}
}

// WithRequestID attaches a request id to ctx for later retrieval by FromContext.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return uuid.NewString()
}

// FromContext retrieves the Logger stashed in ctx by a previous call, or
// builds a fresh INFO-level one tagged with ctx's request id.
func FromContext(ctx context.Context) (*Logger, context.Context) {
	if logger, ok := ctx.Value(loggerKey).(*Logger); ok {
		return logger, ctx
	}

	logger := New(INFO)
	logger.logger = logger.logger.With(zap.String("request_id", requestIDFrom(ctx)))
	return logger, context.WithValue(ctx, loggerKey, logger)
}

func (l *Logger) log(level Level, msg string, fields ...zap.Field) {
	switch level {
	case DEBUG:
		l.logger.Debug(msg, fields...)
	case INFO:
		l.logger.Info(msg, fields...)
	case WARN:
		l.logger.Warn(msg, fields...)
	case ERROR:
		l.logger.Error(msg, fields...)
	case FATAL:
		l.logger.Fatal(msg, fields...)
	}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.log(DEBUG, msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.log(INFO, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.log(WARN, msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.log(ERROR, msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...zap.Field) { l.log(FATAL, msg, fields...) }

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error { return l.logger.Sync() }
