// Package logger provides a singleton structured logger backed by zerolog.
//
// Initialise once at startup with Init, then retrieve anywhere with Get.
//
//	TRACE (-1) → DEBUG (0) → INFO (1) → WARN (2) → ERROR (3)
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Defaults to "info" when empty or unrecognised.
	Level string
	// Pretty enables human-friendly console output. Production emits JSON.
	Pretty bool
	// Service is attached to every event as the "service" field.
	Service string
	// Env is attached to every event as the "env" field when set.
	Env string
	// Output is the writer logs are sent to. Defaults to os.Stdout.
	Output io.Writer
}

var (
	instance    zerolog.Logger
	once        sync.Once
	initialized bool
)

// Init initialises the singleton logger. Only the first call has any effect.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		instance = New(opts)
		initialized = true
	})
	return instance
}

// New builds a logger without touching the singleton. It still sets the
// zerolog global level and time format.
func New(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	ctx := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	if opts.Env != "" {
		ctx = ctx.Str("env", opts.Env)
	}
	if lvl <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// Get returns the singleton logger. Panics if Init has not been called yet.
func Get() zerolog.Logger {
	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// Reset tears down the singleton so that the next Init call rebuilds it.
// Intended for use in tests only.
func Reset() {
	once = sync.Once{}
	instance = zerolog.Logger{}
	initialized = false
}

// parseLevel converts a string to a zerolog.Level, defaulting to info.
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
