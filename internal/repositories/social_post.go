package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/shared"
)

// SocialPostRecord is an archived post with its job and article.
type SocialPostRecord struct {
	ID        string
	Sequence  int
	JobID     int
	ArticleID int
	Post      models.SocialPost
	CreatedAt time.Time
	DeletedAt *time.Time
}

// SocialPostRepository archives generated social posts with soft delete support.
type SocialPostRepository struct {
	db *sql.DB
}

func NewSocialPostRepository(db *sql.DB) *SocialPostRepository {
	return &SocialPostRepository{db: db}
}

// Create inserts rec with a generated id and the next sequence number.
func (r *SocialPostRepository) Create(rec *SocialPostRecord) error {
	if !rec.Post.Platform.Valid() {
		return fmt.Errorf("validation failed: %w: platform %q", shared.ErrInvalidInput, rec.Post.Platform)
	}
	if strings.TrimSpace(rec.Post.Caption) == "" {
		return fmt.Errorf("validation failed: %w: empty caption", shared.ErrInvalidInput)
	}

	sequence, err := NextSequence(r.db, "social_posts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	hashtags, err := json.Marshal(rec.Post.Hashtags)
	if err != nil {
		return fmt.Errorf("failed to encode hashtags: %w", err)
	}

	rec.ID = shared.GenerateID()
	rec.Sequence = sequence
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO social_posts (id, sequence, job_id, article_id, platform, caption, hashtags, call_to_action, image_path, character_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		rec.ID,
		rec.Sequence,
		rec.JobID,
		rec.ArticleID,
		string(rec.Post.Platform),
		rec.Post.Caption,
		string(hashtags),
		rec.Post.CallToAction,
		rec.Post.ImagePath,
		rec.Post.CharacterCount,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert social post: %w", err)
	}
	return nil
}

const socialPostColumns = `id, sequence, job_id, article_id, platform, caption, hashtags, call_to_action, image_path, character_count, created_at, deleted_at`

// Get retrieves a post by id, excluding soft-deleted posts.
func (r *SocialPostRepository) Get(id string) (*SocialPostRecord, error) {
	row := r.db.QueryRow("SELECT "+socialPostColumns+" FROM social_posts WHERE id = ? AND deleted_at IS NULL", id)
	rec, err := scanSocialPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: social post %s", shared.ErrNotFound, id)
	}
	return rec, err
}

// List returns archived posts, newest first. Criteria keys: "article_id" (int),
// "job_id" (int), "platform" (string) and "limit" (int).
func (r *SocialPostRepository) List(criteria map[string]any) ([]*SocialPostRecord, error) {
	query := "SELECT " + socialPostColumns + " FROM social_posts WHERE deleted_at IS NULL"
	args := []any{}

	if articleID, ok := criteria["article_id"].(int); ok && articleID > 0 {
		query += " AND article_id = ?"
		args = append(args, articleID)
	}
	if jobID, ok := criteria["job_id"].(int); ok && jobID > 0 {
		query += " AND job_id = ?"
		args = append(args, jobID)
	}
	if platform, ok := criteria["platform"].(string); ok && platform != "" {
		query += " AND platform = ?"
		args = append(args, platform)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query social posts: %w", err)
	}
	defer rows.Close()

	var out []*SocialPostRecord
	for rows.Next() {
		rec, err := scanSocialPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// Delete soft-deletes a post by id.
func (r *SocialPostRepository) Delete(id string) error {
	result, err := r.db.Exec("UPDATE social_posts SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete social post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: social post not found or already deleted: %s", shared.ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSocialPost(s scanner) (*SocialPostRecord, error) {
	var (
		rec       SocialPostRecord
		platform  string
		hashtags  string
		deletedAt sql.NullTime
	)
	err := s.Scan(&rec.ID, &rec.Sequence, &rec.JobID, &rec.ArticleID, &platform, &rec.Post.Caption, &hashtags,
		&rec.Post.CallToAction, &rec.Post.ImagePath, &rec.Post.CharacterCount, &rec.CreatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan social post: %w", err)
	}

	rec.Post.Platform = models.Platform(platform)
	if err := json.Unmarshal([]byte(hashtags), &rec.Post.Hashtags); err != nil {
		return nil, fmt.Errorf("failed to decode hashtags: %w", err)
	}
	rec.Post.HashtagCount = len(rec.Post.Hashtags)
	if deletedAt.Valid {
		rec.DeletedAt = &deletedAt.Time
	}
	return &rec, nil
}

// SocialPostArchiver records completed social jobs through a [SocialPostRepository].
//
// Re-archiving the same job and platform is silently ignored (UNIQUE constraint).
type SocialPostArchiver struct {
	repo *SocialPostRepository
}

func NewSocialPostArchiver(repo *SocialPostRepository) *SocialPostArchiver {
	return &SocialPostArchiver{repo: repo}
}

// ArchivePosts stores each post of a completed job.
func (a *SocialPostArchiver) ArchivePosts(jobID, articleID int, posts map[models.Platform]models.SocialPost) error {
	for _, p := range models.Platforms() {
		post, ok := posts[p]
		if !ok {
			continue
		}
		post.Platform = p
		err := a.repo.Create(&SocialPostRecord{JobID: jobID, ArticleID: articleID, Post: post})
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				continue
			}
			return fmt.Errorf("failed to archive %s post: %w", p, err)
		}
	}
	return nil
}
