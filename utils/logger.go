package utils

import (
	"go.uber.org/zap"
)

// Logger provides leveled, printf-style logging on top of zap.
// Messages conventionally start with a "[component]" tag.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger wraps the global zap logger (see config.InitLogger).
func NewLogger() *Logger {
	return &Logger{sugar: zap.L().Sugar()}
}

// NewLoggerFrom wraps an explicit zap logger.
func NewLoggerFrom(l *zap.Logger) *Logger {
	return &Logger{sugar: l.Sugar()}
}

// NewNopLogger discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// With returns a child logger carrying structured key/value pairs.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
