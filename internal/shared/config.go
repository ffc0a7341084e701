package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Duration wraps [time.Duration] so TOML values like "2s" decode directly.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Defaults DefaultsConfig `toml:"defaults"`
	Features FeaturesConfig `toml:"features"`
	Database DatabaseConfig `toml:"database"`
	Wizard   WizardConfig   `toml:"wizard"`
	UI       UIConfig       `toml:"ui"`
}

// BackendConfig describes how to reach the article processing backend.
type BackendConfig struct {
	URL          string   `toml:"url"`
	Mock         bool     `toml:"mock"`
	Token        string   `toml:"token"`
	Timeout      Duration `toml:"timeout"`
	ImageTimeout Duration `toml:"image_timeout"`
	MockDelay    Duration `toml:"mock_delay"`
}

// DefaultsConfig seeds the project settings of a fresh project.
type DefaultsConfig struct {
	Language      string `toml:"language"`
	SlideCount    int    `toml:"slide_count"`
	WordsPerPoint int    `toml:"words_per_point"`
}

// FeaturesConfig contains boolean feature flags read once at startup.
type FeaturesConfig struct {
	MusicAPI      bool `toml:"music_api"`
	Voiceover     bool `toml:"voiceover"`
	Customization bool `toml:"customization"`
	Backend       bool `toml:"backend"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// WizardConfig tunes step timing, slide generation fan-out and social post polling.
type WizardConfig struct {
	AutoAdvance     Duration `toml:"auto_advance"`
	RefreshGrace    Duration `toml:"refresh_grace"`
	Workers         int      `toml:"workers"`
	RateLimit       float64  `toml:"rate_limit"`
	PollInterval    Duration `toml:"poll_interval"`
	PollMaxInterval Duration `toml:"poll_max_interval"`
	PollAttempts    int      `toml:"poll_attempts"`
	PollTimeout     Duration `toml:"poll_timeout"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	Theme    string `toml:"theme"`
	Language string `toml:"language"`
	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
}

// UseMock reports whether the fixture transport should be used instead of HTTP.
func (c *Config) UseMock() bool {
	return c.Backend.Mock || !c.Features.Backend
}

// Validate checks ranges the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Defaults.SlideCount < 1 || c.Defaults.SlideCount > 10 {
		return fmt.Errorf("%w: defaults.slide_count must be within 1..10, got %d", ErrInvalidConfig, c.Defaults.SlideCount)
	}
	if c.Defaults.WordsPerPoint < 10 || c.Defaults.WordsPerPoint > 30 {
		return fmt.Errorf("%w: defaults.words_per_point must be within 10..30, got %d", ErrInvalidConfig, c.Defaults.WordsPerPoint)
	}
	if !c.UseMock() && c.Backend.URL == "" {
		return fmt.Errorf("%w: backend.url is required unless mock mode is enabled", ErrInvalidConfig)
	}
	if c.Wizard.PollAttempts < 0 || c.Wizard.Workers < 0 {
		return fmt.Errorf("%w: wizard values must not be negative", ErrInvalidConfig)
	}
	switch c.UI.Theme {
	case "", "light", "dark":
	default:
		return fmt.Errorf("%w: ui.theme must be light or dark, got %q", ErrInvalidConfig, c.UI.Theme)
	}
	return nil
}

// LoadConfig reads a TOML configuration file from path on top of the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
