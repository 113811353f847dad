package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "warn", Format: "json"})
	l.Info("hidden")
	l.Warn("quota store failed", "identity", "1_2_3_4")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "quota store failed", rec["msg"])
	assert.Equal(t, "1_2_3_4", rec["identity"])
}

func TestNew_TextWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{})
	l.Error("persist failed", "error", errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, "persist failed")
	assert.Contains(t, out, "disk full")
	assert.NotContains(t, out, "\x1b[")
}
