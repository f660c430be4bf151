package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := build(Options{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("prediction served", zap.Int("label", 1))
	require.NoError(t, closer())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "prediction served", entry["msg"])
	assert.Equal(t, float64(1), entry["label"])
}

func TestBuildWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanic.log")
	var buf bytes.Buffer
	log, closer, err := build(Options{Format: "console", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	log.Warn("model reload failed")
	require.NoError(t, closer())

	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"msg":"model reload failed"`)
	assert.Contains(t, buf.String(), "model reload failed")
}

func TestBuildRejectsBadOptions(t *testing.T) {
	_, _, err := build(Options{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, _, err = build(Options{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
