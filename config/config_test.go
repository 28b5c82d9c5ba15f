// ABOUTME: Tests for environment configuration loading and logger setup
// ABOUTME: Uses t.Setenv so each case sees an isolated environment
package config

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	unsetEnv(t, "DB_PATH", "DB_DRIVER", "HTTP_ADDR", "GENERATION_MODEL", "GENERATION_TEMPERATURE", "AI_RATE_LIMIT", "GENERATION_TIMEOUT", "LOG_FORMAT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, DefaultDBPath(), cfg.DBPath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "gpt-4o-mini", cfg.GenerationModel)
	assert.Equal(t, 0.7, cfg.GenerationTemperature)
	assert.Equal(t, "20-M", cfg.AIRateLimit)
	assert.Equal(t, 60*time.Second, cfg.GenerationTimeout)
	assert.True(t, strings.HasSuffix(cfg.DBPath, "outreach.db"))
}

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	unsetEnv(t, "DB_DRIVER", "LOG_FORMAT", "GENERATION_TEMPERATURE")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("REMINDER_INTERVAL", "15m")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 15*time.Minute, cfg.ReminderInterval)
	assert.True(t, cfg.GenerationEnabled())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"postgres without url", Config{DBDriver: "postgres", LogFormat: "text"}, "DATABASE_URL"},
		{"unknown driver", Config{DBDriver: "mysql", LogFormat: "text"}, "DB_DRIVER"},
		{"bad format", Config{DBDriver: "sqlite", LogFormat: "xml"}, "LOG_FORMAT"},
		{"bad temperature", Config{DBDriver: "sqlite", LogFormat: "json", GenerationTemperature: 3}, "GENERATION_TEMPERATURE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	ok := Config{DBDriver: "postgres", DatabaseURL: "postgres://x", LogFormat: "json"}
	assert.NoError(t, ok.Validate())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestNewLoggerTextWithoutTerminalHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "text")
	logger.Info("plain", "k", "v")

	out := buf.String()
	assert.Contains(t, out, "plain")
	assert.NotContains(t, out, "\x1b[")
	assert.False(t, IsTerminal(&buf))
}
