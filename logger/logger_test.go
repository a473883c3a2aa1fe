package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected zerolog.Level
	}{
		{"SILENT", zerolog.Disabled},
		{"error", zerolog.ErrorLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"Info", zerolog.InfoLevel},
		{" DEBUG ", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.name))
		})
	}
}

func TestValidLevel(t *testing.T) {
	assert.True(t, ValidLevel("warning"))
	assert.True(t, ValidLevel("SILENT"))
	assert.False(t, ValidLevel("verbose"))
	assert.False(t, ValidLevel(""))
}

func TestLevelStringRoundTrip(t *testing.T) {
	for _, name := range []string{"SILENT", "ERROR", "WARN", "INFO", "DEBUG"} {
		assert.Equal(t, name, LevelString(ParseLevel(name)))
	}
}

func TestInitJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	Init(zerolog.WarnLevel, &buf, false)

	log.Info().Msg("hidden")
	log.Warn().Str("table", "asdf").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "asdf", entry["table"])
	assert.Equal(t, "shown", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestInitSilent(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	Init(ParseLevel("SILENT"), &buf, true)
	log.Error().Msg("nothing")
	assert.Empty(t, buf.String())
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "recordgen.log")
	file, err := OpenFile(path)
	require.NoError(t, err)
	_, err = file.WriteString("line\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}
