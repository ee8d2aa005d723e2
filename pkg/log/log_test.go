package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, "warn", "json").Info("hidden")
	assert.Empty(t, buf.String())

	New(&buf, "warn", "json").Warn("shown", "module", "test")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	New(&buf, "debug", "text").Debug("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
