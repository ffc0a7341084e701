package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ProjectRepository persists one serialized project blob under a name.
//
// It satisfies the store's Persister interface; each save bumps the row's revision.
type ProjectRepository struct {
	db   *sql.DB
	name string
}

// NewProjectRepository creates a repository for the blob stored under name.
func NewProjectRepository(db *sql.DB, name string) *ProjectRepository {
	return &ProjectRepository{db: db, name: name}
}

// Load returns the stored blob, or nil when nothing was saved yet.
func (r *ProjectRepository) Load() ([]byte, error) {
	var data string
	err := r.db.QueryRow("SELECT data FROM project_state WHERE name = ?", r.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return []byte(data), nil
}

// Save upserts the blob and increments its revision.
func (r *ProjectRepository) Save(data []byte) error {
	query := `
		INSERT INTO project_state (name, data, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET
			data = excluded.data,
			revision = project_state.revision + 1,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, r.name, string(data), time.Now()); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// Revision reports how many times the blob has been saved. Zero means never.
func (r *ProjectRepository) Revision() (int, error) {
	var rev int
	err := r.db.QueryRow("SELECT revision FROM project_state WHERE name = ?", r.name).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read revision: %w", err)
	}
	return rev, nil
}

// UpdatedAt returns when the blob was last saved.
func (r *ProjectRepository) UpdatedAt() (time.Time, error) {
	var ts time.Time
	err := r.db.QueryRow("SELECT updated_at FROM project_state WHERE name = ?", r.name).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read project timestamp: %w", err)
	}
	return ts, nil
}

// Delete removes the blob.
func (r *ProjectRepository) Delete() error {
	if _, err := r.db.Exec("DELETE FROM project_state WHERE name = ?", r.name); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
