// Package log is catga's structured-logging facade, a thin wrapper over
// zerolog in the same spirit as cuemby/warren's pkg/log: a small
// interface the rest of the module logs through, plus dev/prod
// constructors that pick the writer and level.
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the logging surface the mediator, subscription runner and
// resilience wrapper use. Key-value pairs are passed as alternating
// string key / value args, mirroring zerolog's own ergonomics without
// leaking the zerolog API into call sites.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

type zlogger struct {
	z zerolog.Logger
}

// New wraps a zerolog.Logger as a Logger.
func New(z zerolog.Logger) Logger {
	return zlogger{z: z}
}

// Development returns a console-writer, debug-level Logger suitable for
// the "development profile" in §6 of the spec (trace-level logging,
// human-readable output).
func Development() Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	z := zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return New(z)
}

// Production returns a JSON, info-level Logger writing to w (os.Stdout
// if w is nil).
func Production(w io.Writer) Logger {
	if w == nil {
		w = os.Stdout
	}
	z := zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	return New(z)
}

var defaultLogger = Development()

// Default returns the package-wide fallback Logger used when a
// component is constructed without one.
func Default() Logger { return defaultLogger }

func (l zlogger) event(e *zerolog.Event, msg string, kv ...any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}

func (l zlogger) Debug(msg string, kv ...any) { l.event(l.z.Debug(), msg, kv...) }
func (l zlogger) Info(msg string, kv ...any)  { l.event(l.z.Info(), msg, kv...) }
func (l zlogger) Warn(msg string, kv ...any)  { l.event(l.z.Warn(), msg, kv...) }
func (l zlogger) Error(msg string, kv ...any) { l.event(l.z.Error(), msg, kv...) }

func (l zlogger) With(kv ...any) Logger {
	ctx := l.z.With()
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		ctx = ctx.Interface(key, kv[i+1])
	}
	return zlogger{z: ctx.Logger()}
}
