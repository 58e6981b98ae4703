package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("MASKEDIT_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MASKEDIT_ADDR", "")
	t.Setenv("MASKEDIT_EDITOR", "")

	path := writeConfig(t, `
server:
  addr: ":9090"
  mdns: true
session:
  ttl: 45m
editor:
  provider: gemini
  model: my-model
  api_key: abc
  timeout: 90s
canvas:
  max_image_side: 2048
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Server.MDNS)
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "@every 1m", cfg.Session.SweepSpec)
	assert.Equal(t, "my-model", cfg.Editor.Model)
	assert.Equal(t, "abc", cfg.Editor.APIKey)
	assert.Equal(t, 90*time.Second, cfg.Editor.Timeout)
	assert.Equal(t, 2048, cfg.Canvas.MaxImageSide)
	assert.Equal(t, "maskedit", cfg.Canvas.Product)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MASKEDIT_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("MASKEDIT_ADDR", "127.0.0.1:7000")
	t.Setenv("MASKEDIT_EDITOR", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Editor.APIKey)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("MASKEDIT_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MASKEDIT_ADDR", "")
	t.Setenv("MASKEDIT_EDITOR", "")

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"缺少 api key", "editor:\n  provider: gemini\n", "api_key is required"},
		{"未知 provider", "editor:\n  provider: dalle\n", "unknown editor provider"},
		{"负的尺寸上限", "editor:\n  provider: passthrough\ncanvas:\n  max_image_side: -1\n", "max_image_side"},
		{"非法 YAML", "server: [", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLog_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, Log{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, Log{Level: "ERROR"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Log{Level: "chatty"}.SlogLevel())
	assert.NotNil(t, Log{Format: "json"}.NewLogger())
}
