package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	// DefaultEngine is the browser engine used when none is configured.
	// Chromium has the broadest Playwright feature coverage (PDF export
	// in particular is chromium-only).
	DefaultEngine = "chromium"

	// DefaultTimeoutMS is the default timeout for browser operations.
	DefaultTimeoutMS = 30000

	// DefaultViewportWidth and DefaultViewportHeight match common laptop
	// rendering so pages lay out the way users see them.
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	// DefaultMaxSessions caps concurrent browser sessions. Each session is
	// a full browser process; five is plenty for a single MCP client.
	DefaultMaxSessions = 5

	// DefaultIdleTimeoutSeconds is how long a session may sit unused before
	// the reaper closes it.
	DefaultIdleTimeoutSeconds = 300

	// DefaultWeatherBaseURL is the US National Weather Service API root.
	DefaultWeatherBaseURL = "https://api.weather.gov"

	// screenshotsEnvVar overrides the screenshot directory. Kept for
	// compatibility with existing container setups.
	screenshotsEnvVar = "SCREENSHOTS_DIR"
)

// Config holds all webpilot settings. Populated from the YAML config file
// and passed through the application by value rather than via global state.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Output  OutputConfig  `yaml:"output"`
	Weather WeatherConfig `yaml:"weather"`
}

// BrowserConfig controls browser session defaults and URL policy.
type BrowserConfig struct {
	// Engine is the default browser engine: chromium, firefox, or webkit.
	Engine string `yaml:"engine"`

	// Headless controls whether new sessions run without a visible window.
	// Inside a container there is no display, so this defaults to true.
	Headless bool `yaml:"headless"`

	// ViewportWidth and ViewportHeight set the default viewport.
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`

	// TimeoutMS is the default operation timeout in milliseconds.
	TimeoutMS float64 `yaml:"timeout_ms"`

	// MaxSessions caps the number of concurrent sessions.
	MaxSessions int `yaml:"max_sessions"`

	// IdleTimeoutSeconds is the idle session reaping threshold.
	IdleTimeoutSeconds int `yaml:"idle_timeout_seconds"`

	// AllowedURLs is a list of glob patterns; when non-empty, navigation
	// is restricted to matching URLs. Patterns match the host, or the full
	// URL when they contain a slash.
	AllowedURLs []string `yaml:"allowed_urls"`

	// BlockedURLs is a list of glob patterns that are always refused,
	// even when they also match AllowedURLs.
	BlockedURLs []string `yaml:"blocked_urls"`
}

// OutputConfig controls where generated artifacts are written.
type OutputConfig struct {
	// ScreenshotDir is where take_screenshot writes files.
	// The SCREENSHOTS_DIR environment variable overrides it.
	ScreenshotDir string `yaml:"screenshot_dir"`

	// ExportDir is where export_pdf writes files.
	ExportDir string `yaml:"export_dir"`
}

// WeatherConfig controls the weather server's upstream API.
type WeatherConfig struct {
	// BaseURL is the NWS API root. Overridable for testing.
	BaseURL string `yaml:"base_url"`

	// UserAgent identifies webpilot to the NWS API, which rejects
	// requests without one.
	UserAgent string `yaml:"user_agent"`
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Browser: BrowserConfig{
			Engine:             DefaultEngine,
			Headless:           true,
			ViewportWidth:      DefaultViewportWidth,
			ViewportHeight:     DefaultViewportHeight,
			TimeoutMS:          DefaultTimeoutMS,
			MaxSessions:        DefaultMaxSessions,
			IdleTimeoutSeconds: DefaultIdleTimeoutSeconds,
		},
		Output: OutputConfig{
			ScreenshotDir: filepath.Join(xdg.StateHome, "webpilot", "screenshots"),
			ExportDir:     filepath.Join(xdg.StateHome, "webpilot", "exports"),
		},
		Weather: WeatherConfig{
			BaseURL:   DefaultWeatherBaseURL,
			UserAgent: "webpilot-weather/1.0",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "webpilot", "config.yaml")
}

// Load reads configuration from the given path. A missing file is not an
// error; defaults are returned. If path is empty, DefaultPath is used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return cfg, nil
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if dir := os.Getenv(screenshotsEnvVar); dir != "" {
		c.Output.ScreenshotDir = dir
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch c.Browser.Engine {
	case "chromium", "firefox", "webkit":
	default:
		return fmt.Errorf("unknown browser engine %q (must be 'chromium', 'firefox', or 'webkit')", c.Browser.Engine)
	}

	if c.Browser.ViewportWidth < 100 || c.Browser.ViewportWidth > 5000 {
		return fmt.Errorf("viewport_width must be between 100 and 5000 pixels")
	}
	if c.Browser.ViewportHeight < 100 || c.Browser.ViewportHeight > 5000 {
		return fmt.Errorf("viewport_height must be between 100 and 5000 pixels")
	}

	if c.Browser.TimeoutMS < 0 || c.Browser.TimeoutMS > 300000 {
		return fmt.Errorf("timeout_ms must be between 0 and 300000 milliseconds (5 minutes)")
	}

	if c.Browser.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be at least 1")
	}

	if c.Browser.IdleTimeoutSeconds < 0 {
		return fmt.Errorf("idle_timeout_seconds must not be negative")
	}

	if c.Weather.BaseURL == "" {
		return fmt.Errorf("weather base_url must not be empty")
	}

	return nil
}
