// Package logging builds the zerolog loggers shared by the viewer components.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the given level. Unknown levels fall
// back to info. pretty selects the human-readable console format.
func New(level string, w io.Writer, pretty bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel maps a config string onto a zerolog level.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// RetryLogger adapts zerolog.Logger to retryablehttp's LeveledLogger.
type RetryLogger struct {
	logger zerolog.Logger
}

// NewRetryLogger wraps logger for use as an HTTP client logger.
func NewRetryLogger(logger zerolog.Logger) *RetryLogger {
	return &RetryLogger{logger: logger}
}

func (l *RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(toFields(keysAndValues)).Msg(msg)
}

func (l *RetryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info().Fields(toFields(keysAndValues)).Msg(msg)
}

func (l *RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(toFields(keysAndValues)).Msg(msg)
}

func (l *RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(toFields(keysAndValues)).Msg(msg)
}

// toFields converts key-value pairs to a map for zerolog.
func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
