package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/lsequity/pkg/config"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		wantLevel zerolog.Level
	}{
		{"debug level", &config.Config{Env: "development", LogLevel: "debug", LogFormat: "json"}, zerolog.DebugLevel},
		{"info level", &config.Config{Env: "production", LogLevel: "info", LogFormat: "json"}, zerolog.InfoLevel},
		{"warn level", &config.Config{Env: "staging", LogLevel: "warn", LogFormat: "console"}, zerolog.WarnLevel},
		{"error level", &config.Config{Env: "production", LogLevel: "error", LogFormat: "json"}, zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.cfg)
			require.NotNil(t, l)
			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
		})
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"invalid", zerolog.InfoLevel}, // Default
		{"", zerolog.InfoLevel},        // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug")

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{"debug", func() { l.Debug("debug message") }, "debug message", "debug"},
		{"info", func() { l.Info("info message") }, "info message", "info"},
		{"warn", func() { l.Warn("warn message") }, "warn message", "warn"},
		{"error", func() { l.Error("error message") }, "error message", "error"},
		{"infof", func() { l.Infof("count: %d", 42) }, "count: 42", "info"},
		{"warnf", func() { l.Warnf("retry attempt: %d", 3) }, "retry attempt: 3", "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			entry := decode(t, &buf)
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.wantMsg, entry["message"])
		})
	}
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")
	l.Info("dropped")
	assert.Empty(t, buf.String())

	l.Warn("kept")
	assert.Equal(t, "kept", decode(t, &buf)["message"])
}

func TestWithFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug")

	l.WithFields(map[string]interface{}{
		"security": "AAPL",
		"score":    1.5,
	}).WithField("side", "long").Info("selected")

	entry := decode(t, &buf)
	assert.Equal(t, "AAPL", entry["security"])
	assert.Equal(t, 1.5, entry["score"])
	assert.Equal(t, "long", entry["side"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug")

	l.WithError(errors.New("optimizer unavailable")).Error("rebalance failed")

	entry := decode(t, &buf)
	assert.Equal(t, "optimizer unavailable", entry["error"])
	assert.Equal(t, "rebalance failed", entry["message"])
}

func TestWithStageAndStrategy(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug")

	l.WithStrategy("long_short_value", "run-1").WithStage("S2_RANKING").Info("ranking completed")

	entry := decode(t, &buf)
	assert.Equal(t, "long_short_value", entry["strategy"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "S2_RANKING", entry["stage"])

	buf.Reset()
	l.WithStrategy("long_short_size", "").Info("no run")
	_, hasRun := decode(t, &buf)["run_id"]
	assert.False(t, hasRun)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("nothing")
	l.WithField("k", "v").Error("still nothing")
}
