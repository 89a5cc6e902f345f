package interfaces

import "context"

// Logger is the leveled logging contract used across the directive pipeline.
// It matches the method set of github.com/goliatone/go-logger so a go-logger
// instance can be supplied without an adapter layer.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers. Providers may return one shared
// instance or scoped children per module name.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can carry persistent structured
// fields. WithFields returns a new logger; the receiver is left untouched.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
