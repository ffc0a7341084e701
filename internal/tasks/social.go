package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/desertthunder/postx/internal/store"
)

// GenerateSocialPosts requests posts for platforms and polls until the job settles.
//
// The transient generating flag is set for the duration of the call and cleared on every exit.
// A failed job, a polling error or an exhausted [PollPolicy] is recorded as the social error.
func (w *Wizard) GenerateSocialPosts(ctx context.Context, platforms []models.Platform, progress chan<- ProgressUpdate) (map[models.Platform]models.SocialPost, error) {
	epoch := w.store.Epoch()
	s := w.store.State()

	articleID, err := requireArticle(s)
	if err != nil {
		return nil, err
	}
	if len(s.BulletPoints) == 0 {
		return nil, shared.ErrNoBulletPoints
	}
	platforms, err = normalizePlatforms(platforms)
	if err != nil {
		return nil, err
	}

	if err := w.store.DispatchAt(epoch, store.SetSocialGenerating(true)); err != nil {
		return nil, err
	}

	posts, jobID, err := w.runSocialJob(ctx, articleID, s, platforms, progress)
	if err != nil {
		msg := services.Describe(err)
		if errors.Is(err, context.Canceled) {
			msg = ""
		}
		if errors.Is(w.store.DispatchAt(epoch, store.SetSocialError(msg)), shared.ErrStaleWrite) {
			return nil, shared.ErrStaleWrite
		}
		return nil, err
	}

	if err := w.store.DispatchAt(epoch, store.SetSocialPosts(posts, jobID)); err != nil {
		return nil, err
	}

	if w.opts.Archiver != nil {
		if err := w.opts.Archiver.ArchivePosts(jobID, articleID, posts); err != nil {
			w.logger.Warn("failed to archive social posts", "job", jobID, "error", err)
		}
	}
	return posts, nil
}

func (w *Wizard) runSocialJob(
	ctx context.Context,
	articleID int,
	s models.ProjectState,
	platforms []models.Platform,
	progress chan<- ProgressUpdate,
) (map[models.Platform]models.SocialPost, int, error) {
	w.sendProgress(progress, requestingSocialUpdate(platforms))

	job, err := w.backend.GenerateSocialPosts(ctx, services.SocialRequest{
		ArticleID:    articleID,
		BulletPoints: s.BulletPoints,
		Platforms:    platforms,
		Language:     s.Settings.Language.ID,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to request social posts: %w", err)
	}
	w.logger.Info("social job started", "job", job.ID, "platforms", platforms)

	var posts map[models.Platform]models.SocialPost
	policy := w.opts.Poll
	err = poll(ctx, policy, func(attempt int) (bool, error) {
		w.sendProgress(progress, pollingSocialUpdate(attempt, policy.MaxAttempts, job.ID))

		status, err := w.backend.SocialPostStatus(ctx, job.ID)
		if err != nil {
			return false, fmt.Errorf("failed to check job status: %w", err)
		}
		switch status.Status {
		case models.SocialCompleted:
			posts = status.Posts
			if posts == nil {
				posts = map[models.Platform]models.SocialPost{}
			}
			w.sendProgress(progress, socialCompletedUpdate(attempt, policy.MaxAttempts, posts))
			return true, nil
		case models.SocialFailed:
			w.logger.Error("social job failed", "job", job.ID, "error", status.Error)
			return false, fmt.Errorf("%w: error while generating posts", shared.ErrGenerationFailed)
		}
		return false, nil
	})

	switch {
	case errors.Is(err, errPollExhausted):
		return nil, job.ID, &services.APIError{
			Kind: services.KindTimeout,
			Op:   "social post generation timed out",
			Err:  fmt.Errorf("%w: job %d still processing", shared.ErrTimeout, job.ID),
		}
	case err != nil:
		return nil, job.ID, err
	}
	return posts, job.ID, nil
}

// normalizePlatforms validates and de-duplicates the selection, keeping display order.
func normalizePlatforms(platforms []models.Platform) ([]models.Platform, error) {
	if len(platforms) == 0 {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, shared.ErrNoPlatforms)
	}
	for _, p := range platforms {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidInput, p)
		}
	}
	var out []models.Platform
	for _, p := range models.Platforms() {
		if slices.Contains(platforms, p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// DownloadSocialPostImage saves the generated image of one platform into dir and returns its path.
func (w *Wizard) DownloadSocialPostImage(ctx context.Context, platform models.Platform, dir string, progress chan<- ProgressUpdate) (string, error) {
	jobID := w.store.State().SocialPostID
	if jobID == 0 {
		return "", fmt.Errorf("%w: no social posts generated yet", shared.ErrInvalidInput)
	}
	return w.DownloadJobImage(ctx, jobID, platform, dir, progress)
}

// DownloadJobImage saves the image of an earlier job, e.g. one listed in the post archive.
func (w *Wizard) DownloadJobImage(ctx context.Context, jobID int, platform models.Platform, dir string, progress chan<- ProgressUpdate) (string, error) {
	if !platform.Valid() {
		return "", fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidInput, platform)
	}

	w.sendProgress(progress, downloadingImageUpdate(platform))
	data, err := w.backend.DownloadSocialPostImage(ctx, jobID, platform)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("social_post_%s_%d.jpg", platform, jobID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

// Platforms returns the backend's platform limits, falling back to the built-in table.
func (w *Wizard) Platforms(ctx context.Context) *services.PlatformsResponse {
	resp, err := w.backend.Platforms(ctx)
	if err != nil || resp == nil || len(resp.Platforms) == 0 {
		if err != nil {
			w.logger.Debug("using default platform limits", "error", err)
		}
		return services.PlatformDefaults()
	}
	return resp
}
