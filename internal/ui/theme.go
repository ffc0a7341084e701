package ui

import (
	"strings"

	"github.com/desertthunder/postx/internal/repositories"
)

// Theme is the light/dark flag of the interface.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark" in any case; anything else is dark.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(ThemeLight)) {
		return ThemeLight
	}
	return ThemeDark
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Preferences is the key/value store the theme is persisted in.
//
// Satisfied by [repositories.PreferencesRepository].
type Preferences interface {
	Get(key, fallback string) (string, error)
	Set(key, value string) error
}

// LoadTheme reads the persisted theme, using fallback when none was saved or prefs is nil.
func LoadTheme(prefs Preferences, fallback Theme) Theme {
	if prefs == nil {
		return fallback
	}
	v, err := prefs.Get(repositories.PrefTheme, string(fallback))
	if err != nil || v == "" {
		return fallback
	}
	return ParseTheme(v)
}

// SaveTheme persists t. A nil prefs is a no-op.
func SaveTheme(prefs Preferences, t Theme) error {
	if prefs == nil {
		return nil
	}
	return prefs.Set(repositories.PrefTheme, string(t))
}
