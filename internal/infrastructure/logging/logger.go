package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger used across the bridge.
// Fields are alternating key/value pairs: key1, value1, key2, value2, ...
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// ZapLogger implements Logger on top of a zap sugared logger
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewDefaultLogger creates a JSON logger at INFO level writing to stderr
func NewDefaultLogger() Logger {
	logger, err := NewLogger("info")
	if err != nil {
		return NewZapLogger(zap.NewExample())
	}
	return logger
}

// NewLogger builds a production JSON logger at the given level
func NewLogger(level string) (Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	z, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return NewZapLogger(z), nil
}

// NewZapLogger wraps an existing zap logger
func NewZapLogger(z *zap.Logger) *ZapLogger {
	if z == nil {
		z = zap.NewNop()
	}
	return &ZapLogger{sugar: z.Sugar()}
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() Logger {
	return NewZapLogger(zap.NewNop())
}

// With returns a child logger that always carries the given fields
func (l *ZapLogger) With(fields ...interface{}) *ZapLogger {
	return &ZapLogger{sugar: l.sugar.With(fields...)}
}

// Sync flushes buffered log entries
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

func (l *ZapLogger) Debug(msg string, fields ...interface{}) {
	l.sugar.Debugw(msg, fields...)
}

func (l *ZapLogger) Info(msg string, fields ...interface{}) {
	l.sugar.Infow(msg, fields...)
}

func (l *ZapLogger) Warn(msg string, fields ...interface{}) {
	l.sugar.Warnw(msg, fields...)
}

func (l *ZapLogger) Error(msg string, fields ...interface{}) {
	l.sugar.Errorw(msg, fields...)
}

// BridgeError is the subset of the bridge error type the logger needs
// (declared here to avoid an import cycle with the errors package)
type BridgeError interface {
	Error() string
	GetCode() string
	IsRetryable() bool
	GetContext() map[string]string
	GetTimestamp() time.Time
}

// LogError logs err with its bridge classification when available
func LogError(logger Logger, err error, operation string, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	if bridgeErr, ok := err.(BridgeError); ok {
		fields := []interface{}{
			"operation", operation,
			"error_code", bridgeErr.GetCode(),
			"retryable", bridgeErr.IsRetryable(),
			"timestamp", bridgeErr.GetTimestamp(),
		}
		for k, v := range bridgeErr.GetContext() {
			fields = append(fields, k, v)
		}
		for k, v := range context {
			fields = append(fields, k, v)
		}

		logger.Error(fmt.Sprintf("Bridge error: %s", err.Error()), fields...)
		return
	}

	fields := []interface{}{
		"operation", operation,
		"error_type", fmt.Sprintf("%T", err),
	}
	for k, v := range context {
		fields = append(fields, k, v)
	}

	logger.Error(fmt.Sprintf("Unexpected error: %s", err.Error()), fields...)
}

// LogOperation logs a completed bridge operation with its duration
func LogOperation(logger Logger, operation string, duration time.Duration, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	fields := []interface{}{
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	}
	for k, v := range context {
		fields = append(fields, k, v)
	}

	logger.Info(fmt.Sprintf("Bridge operation completed: %s", operation), fields...)
}
