package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/leakbridge/internal/config"
)

func TestBuildJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(config.LogConfig{Level: "warn", Format: "json"}, &buf, false)
	require.NoError(t, err)

	log.Info().Msg("dropped")
	log.Warn().Str("component", "runner").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "runner", entry["component"])
	assert.Equal(t, zerolog.WarnLevel.String(), entry["level"])
}

func TestBuildWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "leakbridge.log")
	var buf bytes.Buffer
	log, err := build(config.LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1}, &buf, false)
	require.NoError(t, err)

	log.Info().Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestBuildInvalidLevel(t *testing.T) {
	_, err := build(config.LogConfig{Level: "loud"}, &bytes.Buffer{}, false)
	assert.Error(t, err)
}
