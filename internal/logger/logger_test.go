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
)

func TestNew(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	tests := []struct {
		name           string
		config         *LoggerConfig
		expectError    bool
		validateOutput func(zerolog.Logger) bool
	}{
		{
			name: "valid production environment",
			config: &LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Env:            "prod",
				Level:          "info",
				TimeField:      "timestamp",
				TimeFormat:     "unix",
				Fields:         map[string]interface{}{"key": "value"},
			},
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.InfoLevel
			},
		},
		{
			name: "invalid configuration - wrong env",
			config: &LoggerConfig{
				ServiceName: "bad-service",
				Env:         "wrong-env", // not allowed by validator
				Level:       "debug",
			},
			expectError: true,
		},
		{
			name: "invalid log level",
			config: &LoggerConfig{
				ServiceName: "test-service",
				Env:         "prod",
				Level:       "invalid-level", // not allowed
			},
			expectError: true,
		},
		{
			name: "invalid output target",
			config: &LoggerConfig{
				Env:          "prod",
				OutputTarget: "file",
			},
			expectError: true,
		},
		{
			name: "valid staging environment",
			config: &LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "2.0.0",
				Env:            "staging",
				Level:          "warn",
				TimeField:      "time",
				OutputTarget:   "stderr",
				Stacktrace:     true,
			},
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.WarnLevel
			},
		},
		{
			name: "valid development environment without debug",
			config: &LoggerConfig{
				ServiceName: "test-service",
				Env:         "dev",
				Level:       "info",
			},
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.InfoLevel
			},
		},
		{
			name: "production console format with extra fields",
			config: &LoggerConfig{
				Env:        "prod",
				Level:      "error",
				Format:     "console",
				TimeFormat: "rfc3339",
				Fields:     map[string]interface{}{"customField": "customValue"},
				WithCaller: true,
			},
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.ErrorLevel
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l, err := New(test.config)
			if test.expectError {
				assert.NotNil(t, err)
				return
			}
			assert.NoError(t, err)
			if test.validateOutput != nil {
				assert.True(t, test.validateOutput(l))
			}
		})
	}

	t.Run("debug log file creation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "debug.log")
		_, err := New(&LoggerConfig{Env: "dev", Level: "debug", DebugLogPath: path})
		assert.NoError(t, err)

		_, statErr := os.Stat(path)
		assert.NoError(t, statErr)
	})
}

func TestSetDefaults(t *testing.T) {
	c := &LoggerConfig{}
	c.setDefaults()
	assert.Equal(t, "prod", c.Env)
	assert.Equal(t, "info", c.Level)
	assert.Equal(t, "json", c.Format)
	assert.Equal(t, "query-explorer", c.ServiceName)
	assert.True(t, c.Stacktrace)
	assert.False(t, c.WithCaller)

	dev := &LoggerConfig{Env: "dev"}
	dev.setDefaults()
	assert.Equal(t, "debug", dev.Level)
	assert.Equal(t, "console", dev.Format)
	assert.True(t, dev.WithCaller)
}

func TestStackHook(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.TraceLevel).Hook(stackHook{min: zerolog.ErrorLevel})

	l.Warn().Msg("page fetch slow")
	var warn map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &warn))
	assert.NotContains(t, warn, "stack")

	buf.Reset()
	l.Error().Msg("page fetch failed")
	var failed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &failed))
	assert.Contains(t, failed, "stack")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	l := Component(zerolog.New(&buf), "pager", "controller")
	l.Info().Msg("mounted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pager", entry["module"])
	assert.Equal(t, "controller", entry["component"])
}

func TestNew_WriterOverridesTarget(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	l, err := New(&LoggerConfig{Env: "prod", Level: "info", ServiceName: "explorer", Writer: &buf})
	require.NoError(t, err)
	l.Info().Msg("ready")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "explorer", entry["service"])
	assert.Equal(t, "ready", entry["message"])
}
