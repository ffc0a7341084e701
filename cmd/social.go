package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/postx/internal/formatter"
	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/urfave/cli/v3"
)

func parsePlatforms(values []string) ([]models.Platform, error) {
	var out []models.Platform
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			p, err := models.ParsePlatform(part)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Runner) printPost(post models.SocialPost) {
	info := post.Platform.Info()
	r.writePlainHeader(fmt.Sprintf("%s %s", info.Icon, info.Name))
	r.writePlain("%s\n", post.FullText())
	r.writePlain("\n%d/%d characters", len([]rune(post.Caption)), info.MaxLength)
	if post.OverLimit() {
		r.writePlain(" (over limit)")
	}
	r.writePlain("\n")
	if post.ImagePath != "" {
		r.writePlain("Image: %s\n", post.ImagePath)
	}
	r.writePlain("\n")
}

// SocialPlatforms lists the supported platforms and the backend's limits.
func (r *Runner) SocialPlatforms(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	resp := w.Platforms(ctx)
	return r.emit(cmd, resp, func() {
		for _, p := range resp.Platforms {
			info := p.Info()
			cfg := resp.Configs[p]
			r.writePlain("%s %-10s %-30s max %d chars, %d hashtags\n", info.Icon, p, info.Description, cfg.MaxCaptionLength, cfg.MaxHashtags)
		}
	})
}

// SocialGenerate requests posts, waits for the job and archives the result.
func (r *Runner) SocialGenerate(ctx context.Context, cmd *cli.Command) error {
	platforms, err := parsePlatforms(cmd.StringSlice("platform"))
	if err != nil {
		return err
	}
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.track(cmd)
	posts, err := w.GenerateSocialPosts(ctx, platforms, progress)
	stop()
	if err != nil {
		return err
	}

	s := w.Store().State()
	set := formatter.NewPostSet(s.ArticleData.Title, s.SocialPostID, posts)
	return r.emit(cmd, set, func() {
		r.writePlain("\n✓ Job #%d completed\n\n", set.JobID)
		for _, post := range set.Posts {
			r.printPost(post)
		}
	})
}

// SocialDownload saves the generated image of one post of a job.
func (r *Runner) SocialDownload(ctx context.Context, cmd *cli.Command) error {
	platform, err := models.ParsePlatform(cmd.String("platform"))
	if err != nil {
		return err
	}
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.track(cmd)
	path, err := w.DownloadJobImage(ctx, int(cmd.Int("job")), platform, cmd.String("dir"), progress)
	stop()
	if err != nil {
		return err
	}
	return r.emit(cmd, map[string]string{"path": path}, func() { r.writePlain("✓ Saved %s\n", path) })
}

// SocialExport writes the archived posts of a job to a file.
func (r *Runner) SocialExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if _, err := r.open(ctx); err != nil {
		return err
	}

	jobID := int(cmd.Int("job"))
	records, err := r.archive.List(map[string]any{"job_id": jobID})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: no archived posts for job %d", shared.ErrNotFound, jobID)
	}

	posts := make(map[models.Platform]models.SocialPost, len(records))
	for _, rec := range records {
		posts[rec.Post.Platform] = rec.Post
	}
	set := formatter.NewPostSet(r.wizard.Store().State().ArticleData.Title, jobID, posts)
	set.GeneratedAt = records[len(records)-1].CreatedAt

	path, err := formatter.WritePostsExport(set, format, cmd.String("output"))
	if err != nil {
		return err
	}
	r.logger.Info("exported social posts", "job", jobID, "path", path)
	return r.emit(cmd, map[string]any{"path": path, "posts": len(set.Posts)}, func() {
		r.writePlain("✓ Exported %d posts to %s\n", len(set.Posts), path)
	})
}

// SocialHistory lists archived posts, newest first.
func (r *Runner) SocialHistory(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.open(ctx); err != nil {
		return err
	}
	records, err := r.archive.List(map[string]any{
		"article_id": int(cmd.Int("article")),
		"platform":   cmd.String("platform"),
		"limit":      int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	return r.emit(cmd, records, func() {
		if len(records) == 0 {
			r.writePlain("No archived posts.\n")
			return
		}
		for _, rec := range records {
			caption := []rune(rec.Post.Caption)
			if len(caption) > 60 {
				caption = append(caption[:57], []rune("...")...)
			}
			r.writePlain("%s  job #%-4d article #%-4d %-10s %s\n",
				rec.CreatedAt.Format("2006-01-02 15:04"), rec.JobID, rec.ArticleID, rec.Post.Platform, string(caption))
		}
	})
}
