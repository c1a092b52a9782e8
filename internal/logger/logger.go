// Package logger provides levelled logging for legal-llm.
// Debug and info messages are only written in verbose mode; warnings
// and errors are always written. Output is human-readable by default and
// switches to JSON lines for long-running servers.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	json    bool
	output  io.Writer = os.Stderr
	log               = build()
)

func build() zerolog.Logger {
	var w io.Writer = output
	if !json {
		w = zerolog.ConsoleWriter{Out: output, NoColor: true, TimeFormat: time.TimeOnly}
	}
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	log = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetJSON switches between console and JSON-lines output.
func SetJSON(v bool) {
	mu.Lock()
	defer mu.Unlock()
	json = v
	log = build()
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = build()
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs a pipeline detail.
func Debug(format string, args ...any) {
	l := current()
	l.Debug().Msg(fmt.Sprintf(format, args...))
}

// Section marks the start of a pipeline stage.
func Section(name string) {
	l := current()
	l.Debug().Str("section", name).Msg("===")
}

// Info logs an informational message.
func Info(format string, args ...any) {
	l := current()
	l.Info().Msg(fmt.Sprintf(format, args...))
}

// Warn logs a recoverable problem.
func Warn(format string, args ...any) {
	l := current()
	l.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs a failure together with its cause.
func Error(err error, format string, args ...any) {
	l := current()
	l.Error().Err(err).Msg(fmt.Sprintf(format, args...))
}
