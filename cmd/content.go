package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/urfave/cli/v3"
)

func requireID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	return id, nil
}

func (r *Runner) printBullets(bps []models.BulletPoint) {
	if len(bps) == 0 {
		r.writePlain("No bullet points.\n")
		return
	}
	for _, bp := range bps {
		r.writePlain("[%s] %s\n", bp.ID, bp.Text)
		if bp.ImagePath != "" {
			r.writePlain("      image: %s\n", bp.ImagePath)
		}
		if len(bp.Keywords) > 0 {
			r.writePlain("      keywords: %s\n", strings.Join(bp.Keywords, ", "))
		}
	}
}

func (r *Runner) printSlides(slides []models.SlideItem) {
	if len(slides) == 0 {
		r.writePlain("No slides. Run 'postx slides generate' first.\n")
		return
	}
	total := 0
	for i, sl := range slides {
		total += sl.Duration
		r.writePlain("%d. [%s] %s (%ds)\n", i+1, sl.ID, sl.Text, sl.Duration)
		r.writePlain("      %s\n", sl.Image)
	}
	r.writePlain("\n%d slides, %ds\n", len(slides), total)
}

// BulletsList prints the bullet points of the current article.
func (r *Runner) BulletsList(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	bps := w.Store().State().BulletPoints
	return r.emit(cmd, bps, func() { r.printBullets(bps) })
}

// BulletsEdit replaces a bullet point's text, keeping its keywords unless new ones are given.
func (r *Runner) BulletsEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	keywords := cmd.StringSlice("keyword")
	if !cmd.IsSet("keyword") {
		if bp, ok := w.Store().State().BulletPoint(id); ok {
			keywords = bp.Keywords
		}
	}

	bp, err := w.EditBulletPoint(ctx, id, cmd.String("text"), keywords)
	if err != nil {
		return err
	}
	return r.emit(cmd, bp, func() { r.writePlain("✓ Updated [%s] %s\n", bp.ID, bp.Text) })
}

// BulletsRegenerate rewrites one bullet point.
func (r *Runner) BulletsRegenerate(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	bp, err := w.RegenerateBulletPoint(ctx, id, cmd.String("hint"))
	if err != nil {
		return err
	}
	return r.emit(cmd, bp, func() { r.writePlain("✓ Regenerated [%s] %s\n", bp.ID, bp.Text) })
}

// BulletsRegenerateAll rewrites every bullet point.
func (r *Runner) BulletsRegenerateAll(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.track(cmd)
	bps, err := w.RegenerateAllBulletPoints(ctx, progress)
	stop()
	if err != nil {
		return err
	}
	return r.emit(cmd, bps, func() { r.printBullets(bps) })
}

// BulletsKeywords extracts keywords for the article.
func (r *Runner) BulletsKeywords(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	keywords, err := w.ExtractKeywords(ctx)
	if err != nil {
		return err
	}
	return r.emit(cmd, keywords, func() { r.writePlain("%s\n", strings.Join(keywords, ", ")) })
}

// BulletsDeleteImage removes the generated or uploaded image of a bullet point.
func (r *Runner) BulletsDeleteImage(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	if err := w.DeleteBulletPointImage(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Image removed from [%s]\n", id)
}

// SlidesGenerate builds one slide per bullet point with a generated image.
func (r *Runner) SlidesGenerate(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	if !cmd.Bool("json") {
		r.writePlain("Generating slides...\n")
	}
	progress, stop := r.track(cmd)
	slides, err := w.GenerateSlides(ctx, progress)
	stop()
	if err != nil {
		return err
	}
	return r.emit(cmd, slides, func() {
		r.writePlain("\n")
		r.printSlides(slides)
	})
}

// SlidesList prints the slides.
func (r *Runner) SlidesList(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	slides := w.Store().State().Slides
	return r.emit(cmd, slides, func() { r.printSlides(slides) })
}

// SlidesRegenerate generates a new image for one slide.
func (r *Runner) SlidesRegenerate(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	sl, err := w.RegenerateSlideImage(ctx, id)
	if err != nil {
		return err
	}
	return r.emit(cmd, sl, func() { r.writePlain("✓ New image for %s: %s\n", sl.ID, sl.Image) })
}

// SlidesUpload replaces a slide image with a local file.
func (r *Runner) SlidesUpload(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.track(cmd)
	sl, err := w.UploadSlideImage(ctx, id, cmd.String("file"), progress)
	stop()
	if err != nil {
		return err
	}
	return r.emit(cmd, sl, func() { r.writePlain("✓ Uploaded image for %s: %s\n", sl.ID, sl.Image) })
}

// SlidesText changes the text shown on a slide.
func (r *Runner) SlidesText(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	if err := w.UpdateSlideText(id, cmd.String("text")); err != nil {
		return err
	}
	return r.writePlain("✓ Updated %s\n", id)
}

// SlidesDuration changes how long a slide is shown.
func (r *Runner) SlidesDuration(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	if err := w.UpdateSlideDuration(id, int(cmd.Int("seconds"))); err != nil {
		return err
	}
	return r.writePlain("✓ %s now lasts %ds\n", id, cmd.Int("seconds"))
}
