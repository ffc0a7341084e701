package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./postx.db" {
			t.Errorf("expected database path ./postx.db, got %s", config.Database.Path)
		}
		if config.Backend.URL != "http://localhost:8000/api" {
			t.Errorf("expected backend url http://localhost:8000/api, got %s", config.Backend.URL)
		}
		if config.Backend.Timeout.Duration != 2*time.Minute {
			t.Errorf("expected 2m timeout, got %v", config.Backend.Timeout.Duration)
		}
		if config.Backend.ImageTimeout.Duration != 5*time.Minute {
			t.Errorf("expected 5m image timeout, got %v", config.Backend.ImageTimeout.Duration)
		}
		if config.Defaults.Language != "french" || config.Defaults.SlideCount != 1 || config.Defaults.WordsPerPoint != 20 {
			t.Errorf("unexpected defaults: %+v", config.Defaults)
		}
		if config.Wizard.AutoAdvance.Duration != time.Second {
			t.Errorf("expected 1s auto advance, got %v", config.Wizard.AutoAdvance.Duration)
		}
		if config.Wizard.RefreshGrace.Duration != 2*time.Second {
			t.Errorf("expected 2s refresh grace, got %v", config.Wizard.RefreshGrace.Duration)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("expected embedded config to validate, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[backend]
url = "http://backend:9000/api"
mock = true
image_timeout = "90s"

[defaults]
slide_count = 4
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Backend.URL != "http://backend:9000/api" {
			t.Errorf("expected overridden url, got %s", config.Backend.URL)
		}
		if !config.UseMock() {
			t.Error("expected mock mode")
		}
		if config.Backend.ImageTimeout.Duration != 90*time.Second {
			t.Errorf("expected 90s, got %v", config.Backend.ImageTimeout.Duration)
		}
		if config.Defaults.SlideCount != 4 {
			t.Errorf("expected slide count 4, got %d", config.Defaults.SlideCount)
		}
		if config.Defaults.WordsPerPoint != 20 {
			t.Errorf("expected default words per point to survive, got %d", config.Defaults.WordsPerPoint)
		}
	})

	t.Run("LoadConfig rejects bad duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[backend]\ntimeout = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "slide count too high", mutate: func(c *Config) { c.Defaults.SlideCount = 11 }},
			{name: "slide count zero", mutate: func(c *Config) { c.Defaults.SlideCount = 0 }},
			{name: "words per point too low", mutate: func(c *Config) { c.Defaults.WordsPerPoint = 5 }},
			{name: "missing url without mock", mutate: func(c *Config) { c.Backend.URL = ""; c.Backend.Mock = false }},
			{name: "unknown theme", mutate: func(c *Config) { c.UI.Theme = "sepia" }},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				c := DefaultConfig()
				tt.mutate(c)
				if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("UseMock when backend feature disabled", func(t *testing.T) {
		c := DefaultConfig()
		c.Features.Backend = false
		if !c.UseMock() {
			t.Error("expected mock transport when backend feature is off")
		}
	})
}

func TestEnv(t *testing.T) {
	t.Run("ApplyEnv overrides values", func(t *testing.T) {
		t.Setenv(EnvAPIURL, "http://env:1234/api")
		t.Setenv(EnvMock, "true")
		t.Setenv(EnvDBPath, "/tmp/env.db")
		t.Setenv(EnvLanguage, "german")

		c := DefaultConfig()
		if err := ApplyEnv(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.Backend.URL != "http://env:1234/api" {
			t.Errorf("expected env url, got %s", c.Backend.URL)
		}
		if !c.Backend.Mock {
			t.Error("expected mock from env")
		}
		if c.Database.Path != "/tmp/env.db" {
			t.Errorf("expected env db path, got %s", c.Database.Path)
		}
		if c.Defaults.Language != "german" {
			t.Errorf("expected env language, got %s", c.Defaults.Language)
		}
	})

	t.Run("ApplyEnv rejects invalid bool", func(t *testing.T) {
		t.Setenv(EnvMock, "sometimes")
		if err := ApplyEnv(DefaultConfig()); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadEnv reads file and ignores missing", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, ".env")
		if err := os.WriteFile(envPath, []byte("POSTX_API_TOKEN=from-file\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv(EnvAPIToken, "")
		os.Unsetenv(EnvAPIToken)

		if err := LoadEnv(envPath, filepath.Join(dir, "missing.env")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := os.Getenv(EnvAPIToken); got != "from-file" {
			t.Errorf("expected token from file, got %q", got)
		}
	})
}
