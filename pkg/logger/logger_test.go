package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m), buf.String())
	return m
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, zerolog.DebugLevel)

	l.Info("analysis.request",
		String("ticker", "ACME"),
		Int("news_days", 14),
		Int64("tokens", 240),
		Float64("score", 0.5),
		Bool("cached", true),
		Strings("steps", []string{"drop_news", "drop_levels"}),
		Duration("took", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	m := decode(t, &buf)
	assert.Equal(t, "analysis.request", m["message"])
	assert.Equal(t, "info", m["level"])
	assert.Equal(t, "ACME", m["ticker"])
	assert.Equal(t, 14.0, m["news_days"])
	assert.Equal(t, 240.0, m["tokens"])
	assert.Equal(t, 0.5, m["score"])
	assert.Equal(t, true, m["cached"])
	assert.Equal(t, []interface{}{"drop_news", "drop_levels"}, m["steps"])
	assert.Equal(t, 1500.0, m["took"])
	assert.Equal(t, "boom", m["error"])
}

func TestLogger_WithAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, zerolog.InfoLevel).With(String("ticker", "ACME"))

	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("analysis.fallback", Error(nil))
	m := decode(t, &buf)
	assert.Equal(t, "ACME", m["ticker"])
	assert.Equal(t, "warn", m["level"])
	assert.NotContains(t, m, "error")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, Field{"raw", "abc"}, Snippet("raw", "abcdef", 3))
	assert.Equal(t, Field{"raw", "ab"}, Snippet("raw", "ab", 3))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}
