// Package logging puts a small structured-logging interface in front of
// zerolog so callers never touch the backend directly and tests can capture
// records in a buffer.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Logger emits structured JSON records. Printf and Println exist so the
// logger can stand in for a *log.Logger where an http.Server or similar
// expects one.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	Debug(msg string, fields ...Field)
	Printf(format string, args ...any)
	Println(args ...any)
}

// Field is one key-value pair attached to a log record.
type Field struct {
	Key   string
	Value any
}

// String attaches a string value under key.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int attaches an int value under key.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Uint64 attaches a uint64 value under key.
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

// Float64 attaches a float64 value under key.
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

// Err attaches err under the conventional "error" key.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// NewLogger returns a Logger writing JSON records to w, each tagged with the
// given component name and a timestamp.
func NewLogger(w io.Writer, component string) Logger {
	return &zlog{
		backend: zerolog.New(w).With().Str("component", component).Timestamp().Logger(),
	}
}

type zlog struct {
	backend zerolog.Logger
}

func (l *zlog) emit(event *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			event.Str(f.Key, v)
		case int:
			event.Int(f.Key, v)
		case int64:
			event.Int64(f.Key, v)
		case uint64:
			event.Uint64(f.Key, v)
		case float64:
			event.Float64(f.Key, v)
		case bool:
			event.Bool(f.Key, v)
		case error:
			event.Err(v)
		default:
			event.Interface(f.Key, v)
		}
	}
	event.Msg(msg)
}

func (l *zlog) Info(msg string, fields ...Field) {
	l.emit(l.backend.Info(), msg, fields)
}

func (l *zlog) Error(msg string, err error, fields ...Field) {
	l.emit(l.backend.Error().Err(err), msg, fields)
}

func (l *zlog) Debug(msg string, fields ...Field) {
	l.emit(l.backend.Debug(), msg, fields)
}

func (l *zlog) Printf(format string, args ...any) {
	l.backend.Info().Msgf(format, args...)
}

func (l *zlog) Println(args ...any) {
	l.backend.Info().Msg(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}
