package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override values from config.toml.
const (
	EnvAPIURL   = "POSTX_API_URL"
	EnvMock     = "POSTX_MOCK"
	EnvAPIToken = "POSTX_API_TOKEN"
	EnvDBPath   = "POSTX_DB_PATH"
	EnvLanguage = "POSTX_LANGUAGE"
)

// LoadEnv loads variables from the given .env files (default ".env") into the process environment.
//
// Missing files are ignored; variables already set in the environment win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with any POSTX_* variables present in the environment.
func ApplyEnv(c *Config) error {
	c.Backend.URL = getEnv(EnvAPIURL, c.Backend.URL)
	c.Backend.Token = getEnv(EnvAPIToken, c.Backend.Token)
	c.Database.Path = getEnv(EnvDBPath, c.Database.Path)
	c.Defaults.Language = getEnv(EnvLanguage, c.Defaults.Language)

	if v, ok := os.LookupEnv(EnvMock); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvMock, v)
		}
		c.Backend.Mock = b
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
