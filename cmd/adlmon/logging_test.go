//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLoggerTo(LogConfig{Level: "info"}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("adapter sensors", zap.Int("adapter", 0))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "adapter sensors", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "adlmon", entry["logger"])
	assert.EqualValues(t, 0, entry["adapter"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLoggerDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLoggerTo(LogConfig{Level: "debug", Development: true}, &buf)
	require.NoError(t, err)
	log.Debug("debug line")
	require.NoError(t, log.Sync())
	assert.Contains(t, buf.String(), "debug line")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, err := newLoggerTo(LogConfig{Level: "chatty"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adlmon.log")
	var console bytes.Buffer
	log, err := newLoggerTo(LogConfig{Level: "info", File: path, MaxSizeMB: 1}, &console)
	require.NoError(t, err)
	log.Warn("fan stalled", zap.Int("adapter", 2))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"fan stalled"`)
	assert.Contains(t, console.String(), "fan stalled")
}
