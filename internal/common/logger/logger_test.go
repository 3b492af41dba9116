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
	"go.uber.org/zap/zapcore"

	"github.com/edgecomet/seometa/internal/common/configtypes"
)

func consoleConfig(level, format string) configtypes.LogConfig {
	return configtypes.LogConfig{
		Level:   level,
		Console: configtypes.ConsoleLogConfig{Enabled: true, Format: format},
	}
}

func TestNewLoggerTo_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLoggerTo(consoleConfig("info", "json"), zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("generated", zap.Int("score", 90))
	logger.Debug("hidden")
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "generated", entry["msg"])
	assert.Equal(t, float64(90), entry["score"])
}

func TestNewLoggerTo_TextHasNoColorCodes(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLoggerTo(consoleConfig("info", "text"), zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Warn("plain")
	assert.Contains(t, buf.String(), "WARN")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNewLogger_FileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "seo.log")
	logger, err := NewLogger(configtypes.LogConfig{
		Level: "debug",
		File: configtypes.FileLogConfig{
			Enabled:  true,
			Path:     logPath,
			Format:   "json",
			Rotation: configtypes.RotationConfig{MaxSize: 10, MaxAge: 7, MaxBackups: 3},
		},
	})
	require.NoError(t, err)

	logger.Debug("written to file")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNewLogger_Errors(t *testing.T) {
	_, err := NewLogger(configtypes.LogConfig{Level: "info"})
	assert.ErrorContains(t, err, "at least one log output")

	_, err = NewLogger(configtypes.LogConfig{File: configtypes.FileLogConfig{Enabled: true}})
	assert.ErrorContains(t, err, "file.path")
}

func TestResolveLogLevel(t *testing.T) {
	tests := []struct {
		output   string
		global   zapcore.Level
		expected zapcore.Level
	}{
		{"", zap.InfoLevel, zap.InfoLevel},
		{"debug", zap.InfoLevel, zap.DebugLevel},
		{"error", zap.DebugLevel, zap.ErrorLevel},
		{"unknown", zap.WarnLevel, zap.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, resolveLogLevel(tt.output, tt.global), "output=%q", tt.output)
	}
}

func TestStartupOverrideAndSwitch(t *testing.T) {
	logger, err := NewLoggerWithStartupOverride(consoleConfig("error", "json"))
	require.NoError(t, err)

	level := logger.levels[outputConsole]
	require.NotNil(t, level)
	assert.Equal(t, zap.InfoLevel, level.Level())

	logger.SwitchToConfiguredLevel()
	assert.Equal(t, zap.ErrorLevel, level.Level())

	logger.EnsureInfoLevelForShutdown()
	assert.Equal(t, zap.InfoLevel, level.Level())
}

func TestStartupOverride_NotNeededForDebug(t *testing.T) {
	logger, err := NewLoggerWithStartupOverride(consoleConfig("debug", "console"))
	require.NoError(t, err)
	assert.Equal(t, zap.DebugLevel, logger.levels[outputConsole].Level())
}

func TestNewDefaultLogger(t *testing.T) {
	logger, err := NewDefaultLogger()
	require.NoError(t, err)
	assert.Contains(t, logger.levels, outputConsole)
	assert.NotContains(t, logger.levels, outputFile)
}
