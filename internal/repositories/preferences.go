package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Preference keys.
const (
	PrefTheme      = "theme"
	PrefUILanguage = "ui_language"
	PrefLastUnload = "last_unload"
)

// PreferencesRepository is a string key/value store.
type PreferencesRepository struct {
	db *sql.DB
}

func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get returns the value for key, or fallback when unset.
func (r *PreferencesRepository) Get(key, fallback string) (string, error) {
	var v string
	err := r.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return v, nil
}

func (r *PreferencesRepository) Set(key, value string) error {
	query := `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

// GetTime reads an RFC 3339 timestamp. Unset or malformed values yield the zero time.
func (r *PreferencesRepository) GetTime(key string) (time.Time, error) {
	v, err := r.Get(key, "")
	if err != nil || v == "" {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, nil
	}
	return ts, nil
}

func (r *PreferencesRepository) SetTime(key string, t time.Time) error {
	return r.Set(key, t.UTC().Format(time.RFC3339Nano))
}

// All returns every stored preference.
func (r *PreferencesRepository) All() (map[string]string, error) {
	rows, err := r.db.Query("SELECT key, value FROM preferences ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
