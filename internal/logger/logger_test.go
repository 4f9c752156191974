package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/fleetvoice/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLogger(t *testing.T) {
	_, err := New(config.NewDefaultLogConfig())
	require.NoError(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"WARN", zerolog.WarnLevel, false},
		{"chatty", zerolog.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatConsole, ParseFormat("console"))
	assert.Equal(t, FormatConsole, ParseFormat("unknown"))
}

func TestConvertConfig_Defaults(t *testing.T) {
	lc, err := ConvertConfig(config.LogConfig{LogLevel: "error"})

	require.NoError(t, err)
	assert.Equal(t, zerolog.ErrorLevel, lc.Level)
	assert.False(t, lc.EnableFile)
	assert.Equal(t, config.DefaultMaxLogSizeMB, lc.MaxSizeMB)
	assert.Equal(t, config.DefaultMaxLogBackups, lc.MaxBackups)
}

func TestBuilder_InvalidLevel(t *testing.T) {
	_, err := NewLoggerBuilder().WithConfig(config.LogConfig{LogLevel: "loud"}).Build()
	assert.Error(t, err)
}

func TestBuilder_JSONConsoleWithComponent(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewLoggerBuilder().
		WithConfig(config.LogConfig{LogLevel: "debug", LogFormat: "json"}).
		WithConsoleOutput(&buf).
		WithComponent("tracker").
		Build()
	require.NoError(t, err)

	log.Info().Str("entity", "bus-1").Msg("lookup finished")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tracker", entry["component"])
	assert.Equal(t, "bus-1", entry["entity"])
	assert.Equal(t, "lookup finished", entry["message"])
}

func TestBuilder_LevelFilters(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewLoggerBuilder().
		WithConfig(config.LogConfig{LogLevel: "warn", LogFormat: "json"}).
		WithConsoleOutput(&buf).
		Build()
	require.NoError(t, err)

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestBuilder_FileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fleetvoice.log")
	var console bytes.Buffer

	log, err := NewLoggerBuilder().
		WithConfig(config.LogConfig{LogFile: path, LogFormat: "json", LogLevel: "info"}).
		WithConsoleOutput(&console).
		Build()
	require.NoError(t, err)

	log.Info().Msg("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, console.String(), "written to file")
}
