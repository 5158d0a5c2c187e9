package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	got := LogFilePath("/var/log/mapbridge", "mapbridge", start)
	assert.Equal(t, filepath.Join("/var/log/mapbridge", "mapbridge.20260314_092653.log"), got)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("shout"))
}

func TestNew_WritesConsoleAndFile(t *testing.T) {
	var console, file bytes.Buffer

	log, err := New(Options{Level: "debug", Console: &console, File: &file})
	require.NoError(t, err)

	log.Info().Str("component", "test").Msg("hello from the bridge")

	assert.Contains(t, console.String(), "hello from the bridge")
	assert.Contains(t, file.String(), "hello from the bridge")
	assert.Contains(t, file.String(), "component")
}

func TestNew_LevelFiltersOutput(t *testing.T) {
	var console bytes.Buffer

	log, err := New(Options{Level: "warn", Console: &console})
	require.NoError(t, err)

	log.Debug().Msg("too quiet to surface")
	log.Warn().Msg("loud enough")

	assert.NotContains(t, console.String(), "too quiet to surface")
	assert.Contains(t, console.String(), "loud enough")
}

func TestNew_BadGraylogAddress(t *testing.T) {
	_, err := New(Options{Level: "info", Console: &bytes.Buffer{}, GraylogAddress: "not a host:port"})
	require.Error(t, err)
}

func TestDispatcherLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	dl := NewDispatcherLogger(log)

	dl.Debug("handling event", "command", "map:setMarkers", "payload", 128)
	dl.Error("event failed", "command", "map:setMarkers")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "handling event", entry["message"])
	assert.Equal(t, "map:setMarkers", entry["command"])
	assert.Equal(t, 128.0, entry["payload"])

	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "error", entry["level"])
}
