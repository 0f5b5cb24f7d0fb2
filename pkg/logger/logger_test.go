package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHonorsLevel(t *testing.T) {
	var buf bytes.Buffer

	log, err := New(&Config{Level: "warn"}, &buf)
	require.NoError(t, err)

	log.Info().Msg("dropped")
	log.Warn().Str("host", "web01").Msg("kept")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["message"])
	assert.Equal(t, "web01", record["host"])
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestDebugOverridesLevel(t *testing.T) {
	cfg := &Config{Level: "error", Debug: true}

	level, err := cfg.ParsedLevel()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)
}

func TestSetDebug(t *testing.T) {
	var buf bytes.Buffer

	log, err := New(&Config{Level: "info"}, &buf)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.SetDebug(true)
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer

	log := Component(NewWriterLogger(&buf), "autochecks")
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"autochecks"`)
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("AUTOCHECKS_LOG_LEVEL", "debug")
	t.Setenv("AUTOCHECKS_DEBUG", "true")
	t.Setenv("AUTOCHECKS_LOG_OUTPUT", "stdout")
	t.Setenv("AUTOCHECKS_LOG_TIME_FORMAT", "")

	cfg := DefaultConfig()
	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "stdout", cfg.Output)
	assert.Empty(t, cfg.TimeFormat)

	t.Setenv("AUTOCHECKS_DEBUG", "maybe")
	assert.False(t, DefaultConfig().Debug, "unparsable values keep the default")
}
