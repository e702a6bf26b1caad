package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf, false)

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Str("body", "Mars").Msg("kept")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Mars", entry["body"])
	assert.Contains(t, entry, "time")
}

func TestRetryLogger(t *testing.T) {
	var buf bytes.Buffer
	rl := NewRetryLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	rl.Debug("retrying request", "attempt", 2, "url", "https://example.test", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "retrying request", entry["message"])
	assert.Equal(t, float64(2), entry["attempt"])
	assert.Equal(t, "https://example.test", entry["url"])
}

func TestRetryLoggerLevels(t *testing.T) {
	cases := []struct {
		name string
		log  func(*RetryLogger)
		want string
	}{
		{"info", func(l *RetryLogger) { l.Info("m") }, "info"},
		{"warn", func(l *RetryLogger) { l.Warn("m") }, "warn"},
		{"error", func(l *RetryLogger) { l.Error("m") }, "error"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			c.log(NewRetryLogger(zerolog.New(&buf)))
			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, c.want, entry["level"])
		})
	}
}
