// Package log provides structured logging for aimcore.
// It wraps zap with sensible defaults for production use.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// Init initializes the global logger with the specified level.
// Valid levels: "debug", "info", "warn", "error"
func Init(level string) {
	once.Do(func() {
		var lvl zapcore.Level
		switch level {
		case "debug":
			lvl = zapcore.DebugLevel
		case "warn":
			lvl = zapcore.WarnLevel
		case "error":
			lvl = zapcore.ErrorLevel
		default:
			lvl = zapcore.InfoLevel
		}

		// JSON in production, console in development
		var cfg zap.Config
		if os.Getenv("GO_ENV") == "production" {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)

		base, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			base = zap.NewNop()
		}
		logger = base.Sugar()
	})
}

// L returns the global logger instance.
func L() *zap.SugaredLogger {
	if logger == nil {
		Init("info")
	}
	return logger
}

// Debug logs at debug level with key-value pairs.
func Debug(msg string, args ...any) {
	L().Debugw(msg, args...)
}

// Info logs at info level with key-value pairs.
func Info(msg string, args ...any) {
	L().Infow(msg, args...)
}

// Warn logs at warn level with key-value pairs.
func Warn(msg string, args ...any) {
	L().Warnw(msg, args...)
}

// Error logs at error level with key-value pairs.
func Error(msg string, args ...any) {
	L().Errorw(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *zap.SugaredLogger {
	return L().With(args...)
}

// Sync flushes any buffered log entries. Call on shutdown.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
