package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "chromium", cfg.Browser.Engine)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, DefaultViewportWidth, cfg.Browser.ViewportWidth)
	assert.Equal(t, DefaultViewportHeight, cfg.Browser.ViewportHeight)
	assert.Equal(t, float64(DefaultTimeoutMS), cfg.Browser.TimeoutMS)
	assert.Equal(t, DefaultMaxSessions, cfg.Browser.MaxSessions)
	assert.Equal(t, DefaultWeatherBaseURL, cfg.Weather.BaseURL)
	assert.NotEmpty(t, cfg.Output.ScreenshotDir)
	assert.NotEmpty(t, cfg.Output.ExportDir)

	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "chromium", cfg.Browser.Engine)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
browser:
  engine: firefox
  headless: false
  viewport_width: 1920
  viewport_height: 1080
  max_sessions: 2
  allowed_urls:
    - "*.example.com"
  blocked_urls:
    - "internal.example.com"
output:
  screenshot_dir: /tmp/shots
weather:
  user_agent: test-agent/1.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "firefox", cfg.Browser.Engine)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
	assert.Equal(t, 1080, cfg.Browser.ViewportHeight)
	assert.Equal(t, 2, cfg.Browser.MaxSessions)
	assert.Equal(t, []string{"*.example.com"}, cfg.Browser.AllowedURLs)
	assert.Equal(t, []string{"internal.example.com"}, cfg.Browser.BlockedURLs)
	assert.Equal(t, "/tmp/shots", cfg.Output.ScreenshotDir)
	assert.Equal(t, "test-agent/1.0", cfg.Weather.UserAgent)

	// Unset fields keep defaults
	assert.Equal(t, float64(DefaultTimeoutMS), cfg.Browser.TimeoutMS)
	assert.Equal(t, DefaultWeatherBaseURL, cfg.Weather.BaseURL)
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad engine",
			content: "browser:\n  engine: netscape\n",
			wantErr: "unknown browser engine",
		},
		{
			name:    "viewport too small",
			content: "browser:\n  viewport_width: 10\n",
			wantErr: "viewport_width",
		},
		{
			name:    "timeout too large",
			content: "browser:\n  timeout_ms: 999999\n",
			wantErr: "timeout_ms",
		},
		{
			name:    "zero max sessions",
			content: "browser:\n  max_sessions: 0\n",
			wantErr: "max_sessions",
		},
		{
			name:    "malformed yaml",
			content: "browser: [\n",
			wantErr: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScreenshotDirEnvOverride(t *testing.T) {
	t.Setenv("SCREENSHOTS_DIR", "/tmp/env-shots")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env-shots", cfg.Output.ScreenshotDir)
}
