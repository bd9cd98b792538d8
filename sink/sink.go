// Package sink adapts structured loggers to the chainz Sink and
// ErrorHandler callbacks.
//
// The core package only sees func(string) and func(error). This package is
// where those calls turn into log events:
//
//	log := sink.NewZerolog(sink.Options{Format: "console", Level: "debug"}, os.Stderr)
//	chain.Log(sink.Zerolog(log, zerolog.InfoLevel), "creating account", "account created").
//		TrapAndLog(sink.ZerologError(log))
package sink

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zoobzio/chainz"
)

// Field names attached to every event written through a sink.
const (
	FieldComponent = "component"
	ComponentChain = "chainz"
)

// Formats accepted by NewZerolog.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatPretty  = "pretty"
)

// Options describes a zerolog logger for NewZerolog.
type Options struct {
	Level     string
	Format    string
	NoColor   bool
	Timestamp bool
}

// NewZerolog builds a zerolog.Logger writing to w. Unknown levels fall back
// to info and unknown formats to JSON.
func NewZerolog(opts Options, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	out := w
	switch strings.ToLower(opts.Format) {
	case FormatConsole, FormatPretty:
		out = zerolog.ConsoleWriter{Out: w, NoColor: opts.NoColor, TimeFormat: "15:04:05"}
	}

	zl := zerolog.New(out).Level(level)
	if opts.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	return zl
}

// Zerolog returns a Sink writing each message at level.
func Zerolog(log zerolog.Logger, level zerolog.Level) chainz.Sink {
	return func(msg string) {
		log.WithLevel(level).Str(FieldComponent, ComponentChain).Msg(msg)
	}
}

// ZerologError returns an ErrorHandler writing each error at error level.
func ZerologError(log zerolog.Logger) chainz.ErrorHandler {
	return func(err error) {
		log.Error().Str(FieldComponent, ComponentChain).Err(err).Msg("operation failed")
	}
}

// Zap returns a Sink writing each message at level.
func Zap(log *zap.Logger, level zapcore.Level) chainz.Sink {
	log = log.With(zap.String(FieldComponent, ComponentChain))
	return func(msg string) {
		if ce := log.Check(level, msg); ce != nil {
			ce.Write()
		}
	}
}

// ZapError returns an ErrorHandler writing each error at error level.
func ZapError(log *zap.Logger) chainz.ErrorHandler {
	log = log.With(zap.String(FieldComponent, ComponentChain))
	return func(err error) {
		log.Error("operation failed", zap.Error(err))
	}
}
