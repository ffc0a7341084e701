package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/desertthunder/postx/internal/store"
)

func (w *Wizard) bulletPoint(s models.ProjectState, id string) (models.BulletPoint, error) {
	bp, ok := s.BulletPoint(id)
	if !ok {
		return bp, fmt.Errorf("%w: bullet point %s", shared.ErrNotFound, id)
	}
	return bp, nil
}

// EditBulletPoint saves new text and keywords, then merges the backend's copy into the store.
func (w *Wizard) EditBulletPoint(ctx context.Context, id, text string, keywords []string) (models.BulletPoint, error) {
	s := w.store.State()
	articleID, err := requireArticle(s)
	if err != nil {
		return models.BulletPoint{}, err
	}
	if _, err := w.bulletPoint(s, id); err != nil {
		return models.BulletPoint{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.BulletPoint{}, fmt.Errorf("%w: bullet point text is empty", shared.ErrInvalidInput)
	}

	epoch := w.store.Epoch()
	updated, err := w.backend.UpdateBulletPoint(ctx, articleID, id, text, keywords)
	if err != nil {
		return models.BulletPoint{}, fmt.Errorf("failed to update bullet point: %w", err)
	}

	kw := updated.Keywords
	if kw == nil {
		kw = []string{}
	}
	patch := models.BulletPointPatch{Text: &updated.Text, Keywords: kw}
	if err := w.store.DispatchAt(epoch, store.UpdateBulletPoint(id, patch)); err != nil {
		return models.BulletPoint{}, err
	}
	bp, _ := w.store.State().BulletPoint(id)
	return bp, nil
}

// RegenerateBulletPoint asks the backend for a new wording of one bullet point.
func (w *Wizard) RegenerateBulletPoint(ctx context.Context, id, hint string) (models.BulletPoint, error) {
	s := w.store.State()
	articleID, err := requireArticle(s)
	if err != nil {
		return models.BulletPoint{}, err
	}
	if _, err := w.bulletPoint(s, id); err != nil {
		return models.BulletPoint{}, err
	}

	epoch := w.store.Epoch()
	fresh, err := w.backend.RegenerateBulletPoint(ctx, services.RegenerateRequest{
		ArticleID:     articleID,
		BulletPointID: id,
		Context:       strings.TrimSpace(hint),
		Language:      s.Settings.Language.Code,
		WordsPerPoint: s.Settings.WordsPerPoint,
	})
	if err != nil {
		return models.BulletPoint{}, fmt.Errorf("failed to regenerate bullet point: %w", err)
	}

	if err := w.store.DispatchAt(epoch, store.UpdateBulletPoint(id, models.BulletPointPatch{Text: &fresh.Text})); err != nil {
		return models.BulletPoint{}, err
	}
	bp, _ := w.store.State().BulletPoint(id)
	return bp, nil
}

// RegenerateAllBulletPoints replaces the whole list and clears the slides built from it.
func (w *Wizard) RegenerateAllBulletPoints(ctx context.Context, progress chan<- ProgressUpdate) ([]models.BulletPoint, error) {
	s := w.store.State()
	articleID, err := requireArticle(s)
	if err != nil {
		return nil, err
	}

	epoch := w.store.Epoch()
	w.sendProgress(progress, regeneratingBulletsUpdate(s.Settings.SlideCount))

	bps, err := w.backend.RegenerateAllBulletPoints(ctx, services.RegenerateAllRequest{
		ArticleID:     articleID,
		SlideCount:    s.Settings.SlideCount,
		WordsPerPoint: s.Settings.WordsPerPoint,
		Language:      s.Settings.Language.Code,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate bullet points: %w", err)
	}
	if err := w.store.DispatchAt(epoch, store.SetBulletPoints(bps), store.SetSlides(nil)); err != nil {
		return nil, err
	}
	return w.store.State().BulletPoints, nil
}

// ExtractKeywords returns the article's keywords. The store is not changed.
func (w *Wizard) ExtractKeywords(ctx context.Context) ([]string, error) {
	articleID, err := requireArticle(w.store.State())
	if err != nil {
		return nil, err
	}
	keywords, err := w.backend.ExtractKeywords(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to extract keywords: %w", err)
	}
	return keywords, nil
}

// DeleteBulletPointImage removes the backend image and clears image_path on success.
func (w *Wizard) DeleteBulletPointImage(ctx context.Context, id string) error {
	s := w.store.State()
	articleID, err := requireArticle(s)
	if err != nil {
		return err
	}
	if _, err := w.bulletPoint(s, id); err != nil {
		return err
	}

	epoch := w.store.Epoch()
	if err := w.backend.DeleteBulletPointImage(ctx, articleID, id); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return w.store.DispatchAt(epoch, store.UpdateBulletPointImage(id, ""))
}
