// Package log provides structured logging for the library's estimators.
//
// It defines a minimal Logger interface with slog-style variadic key/value
// fields, backed by rs/zerolog. Estimators obtain named loggers with
// GetLoggerWithName; applications control the global level and output once at
// startup.
//
// Example:
//
//	logger := log.GetLoggerWithName("modelselection.gridsearch")
//	logger.Info("search started", "combinations", 12, "folds", 5)
package log

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	scierrors "github.com/YuminosukeSato/scigo/pkg/errors"
)

// Logger is a structured logging interface with variadic key/value fields.
// Fields must come in pairs; a trailing odd value is ignored.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	Error(msg string, fields ...any)

	// With returns a child logger with the given fields attached to every
	// subsequent message.
	With(fields ...any) Logger
}

var (
	mu   sync.RWMutex
	root = zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
)

// SetOutput redirects all library logging to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	root = root.Output(w)
}

// SetLevel sets the global log level ("debug", "info", "warn", "error").
// Unknown levels leave the current level unchanged.
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	root = root.Level(parsed)
}

// GetLogger returns the library-wide logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zeroLogger{l: root}
}

// GetLoggerWithName returns a logger tagged with a component name, e.g.
// "ensemble.forest".
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zeroLogger{l: root.With().Str("logger", name).Logger()}
}

// RouteWarnings sends pkg/errors warnings through the zerolog logger.
// Warning types implementing zerolog.LogObjectMarshaler are logged with
// their structured fields. Opt-in so applications keep control of the
// warning stream.
func RouteWarnings() {
	scierrors.SetZerologWarnFunc(func(warning error) {
		mu.RLock()
		l := root
		mu.RUnlock()
		ev := l.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.Object("warning", obj)
		}
		ev.Msg(warning.Error())
	})
}

type zeroLogger struct {
	l zerolog.Logger
}

func (z *zeroLogger) Debug(msg string, fields ...any) { emit(z.l.Debug(), msg, fields) }
func (z *zeroLogger) Info(msg string, fields ...any)  { emit(z.l.Info(), msg, fields) }
func (z *zeroLogger) Warn(msg string, fields ...any)  { emit(z.l.Warn(), msg, fields) }
func (z *zeroLogger) Error(msg string, fields ...any) { emit(z.l.Error(), msg, fields) }

func (z *zeroLogger) With(fields ...any) Logger {
	ctx := z.l.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zeroLogger{l: ctx.Logger()}
}

func emit(ev *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case float64:
			ev = ev.Float64(key, v)
		case bool:
			ev = ev.Bool(key, v)
		case error:
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}
