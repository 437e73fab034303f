// Package log provides structured logging for machine learning operations,
// built on zerolog. It exposes a process-wide logger with level control,
// standard attribute keys for ML context (see attributes.go), and a capture
// helper for tests.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	crdberrors "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/mizupe/appliedml/pkg/errors"
)

var (
	mu     sync.RWMutex
	logger = newDefault()
)

func newDefault() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)
}

// Setup configures the global logger: output destination, level name
// ("debug", "info", "warn", "error") and whether to use the human-readable
// console writer instead of JSON. It also routes library warnings
// (errors.Warn) through the configured logger.
func Setup(out io.Writer, level string, console bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return errors.NewValidationError("level", "unknown log level", level)
	}
	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	mu.Lock()
	logger = zerolog.New(out).With().Timestamp().Logger().Level(lvl)
	mu.Unlock()

	hookWarnings()
	return nil
}

// Logger returns the current global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// With returns a child logger tagged with the given component name.
func With(component string) zerolog.Logger {
	return Logger().With().Str(ComponentKey, component).Logger()
}

// hookWarnings routes pkg/errors warnings to zerolog. Warnings that implement
// zerolog.LogObjectMarshaler are emitted as structured objects.
func hookWarnings() {
	errors.SetZerologWarnFunc(func(warning error) {
		l := Logger()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			l.Warn().Object("warning", obj).Msg(warning.Error())
			return
		}
		l.Warn().Str("warning", warning.Error()).Msg("library warning")
	})
}

// Err attaches an error with its cockroachdb stack trace (if any) to an event.
func Err(e *zerolog.Event, err error) *zerolog.Event {
	e = e.Err(err)
	if st := extractStacktrace(err); st != "" {
		e = e.Str(StacktraceKey, st)
	}
	return e
}

func extractStacktrace(err error) string {
	safeDetails := crdberrors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
