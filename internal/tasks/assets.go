package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/desertthunder/postx/internal/store"
)

// ApplyOptions controls where and how large a logo or frame is composited.
type ApplyOptions struct {
	Position     services.Position
	Width        int
	Height       int
	OriginalSize bool // keep the uploaded asset's size, ignoring Width and Height
	// BulletPointText is the caption drawn into a frame. Empty uses the first bullet point.
	BulletPointText string
	Progress        chan<- ProgressUpdate
}

func (o ApplyOptions) request(articleID int) (services.ApplyRequest, error) {
	req := services.ApplyRequest{ArticleID: articleID, Position: o.Position}
	if req.Position == "" {
		req.Position = services.TopRight
	}
	valid := false
	for _, p := range services.Positions() {
		valid = valid || p == req.Position
	}
	if !valid {
		return req, fmt.Errorf("%w: position %q", shared.ErrInvalidInput, o.Position)
	}

	if !o.OriginalSize {
		w, h := o.Width, o.Height
		if w <= 0 {
			w = services.DefaultWidth
		}
		if h <= 0 {
			h = services.DefaultHeight
		}
		req.Width, req.Height = &w, &h
	}
	return req, nil
}

// ApplyLogo composites the uploaded logo onto the article images.
func (w *Wizard) ApplyLogo(ctx context.Context, opts ApplyOptions) error {
	return w.applyAsset(ctx, services.AssetLogo, opts)
}

// ApplyFrame composites the uploaded frame, with a caption, onto the article images.
func (w *Wizard) ApplyFrame(ctx context.Context, opts ApplyOptions) error {
	return w.applyAsset(ctx, services.AssetFrame, opts)
}

// applyAsset checks the local image gate, calls the backend, then points every .jpg bullet point
// and slide at the composited file and advances the step.
func (w *Wizard) applyAsset(ctx context.Context, kind services.AssetKind, opts ApplyOptions) error {
	epoch := w.store.Epoch()
	s := w.store.State()

	if !s.HasBaseImage() {
		return shared.ErrImageRequired
	}
	articleID, err := requireArticle(s)
	if err != nil {
		return err
	}

	req, err := opts.request(articleID)
	if err != nil {
		return err
	}
	if kind == services.AssetFrame {
		text := strings.TrimSpace(opts.BulletPointText)
		if text == "" && len(s.BulletPoints) > 0 {
			text = s.BulletPoints[0].Text
		}
		if text == "" {
			return fmt.Errorf("%w: frame text is empty", shared.ErrInvalidInput)
		}
		req.BulletPointText = &text
	}

	w.logger.Info("applying asset", "kind", kind, "article", articleID, "position", req.Position)
	w.sendProgress(opts.Progress, applyingAssetUpdate(string(kind), len(s.Slides)))
	res, err := w.backend.ApplyAsset(ctx, kind, articleID, req)
	if err != nil {
		return fmt.Errorf("failed to apply %s: %w", kind, err)
	}

	version := w.cacheStamp()
	mutations := []store.Mutation{}
	if file := shared.LastSegment(res.ImagePath); file != "" {
		image := services.CacheBust(services.StaticImageURL(w.opts.StaticBase, file), version)
		for _, bp := range s.BulletPoints {
			if strings.Contains(bp.ImagePath, ".jpg") {
				mutations = append(mutations, store.UpdateBulletPointImage(bp.ID, file))
			}
		}
		for _, sl := range s.Slides {
			if strings.Contains(sl.Image, ".jpg") {
				mutations = append(mutations, store.UpdateSlide(sl.ID, models.SlidePatch{Image: &image}))
			}
		}
	}
	mutations = append(mutations, store.BumpAssetVersion(version), store.NextStep())
	return w.store.DispatchAt(epoch, mutations...)
}

// UploadAsset uploads a logo or frame and records its local path in the customization settings.
func (w *Wizard) UploadAsset(ctx context.Context, kind services.AssetKind, path string, progress chan<- ProgressUpdate) (*services.AssetInfo, error) {
	epoch := w.store.Epoch()
	if !w.store.State().HasBaseImage() {
		return nil, shared.ErrImageRequired
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: %s file", shared.ErrMissingArgument, kind)
	}

	w.sendProgress(progress, uploadingImageUpdate(filepath.Base(path)))
	info, err := w.backend.UploadAsset(ctx, kind, path)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", kind, err)
	}

	c := w.store.State().Customization
	setCustomization(&c, kind, path)
	if err := w.store.DispatchAt(epoch, store.SetCustomization(c)); err != nil {
		return nil, err
	}
	return info, nil
}

// CurrentAsset reports what the backend holds for kind.
func (w *Wizard) CurrentAsset(ctx context.Context, kind services.AssetKind) (*services.AssetInfo, error) {
	info, err := w.backend.CurrentAsset(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current %s: %w", kind, err)
	}
	return info, nil
}

// RemoveAsset deletes the uploaded asset and forgets its local path.
func (w *Wizard) RemoveAsset(ctx context.Context, kind services.AssetKind) error {
	epoch := w.store.Epoch()
	if err := w.backend.RemoveAsset(ctx, kind); err != nil {
		return fmt.Errorf("failed to remove %s: %w", kind, err)
	}
	c := w.store.State().Customization
	setCustomization(&c, kind, "")
	return w.store.DispatchAt(epoch, store.SetCustomization(c))
}

// UploadOutro uploads the closing image of the video.
func (w *Wizard) UploadOutro(ctx context.Context, path string) (*services.UploadResult, error) {
	epoch := w.store.Epoch()
	res, err := w.backend.UploadImage(ctx, path, services.PurposeOutro)
	if err != nil {
		return nil, fmt.Errorf("failed to upload outro: %w", err)
	}
	c := w.store.State().Customization
	c.Outro = path
	if err := w.store.DispatchAt(epoch, store.SetCustomization(c)); err != nil {
		return nil, err
	}
	return res, nil
}

func setCustomization(c *models.CustomizationSettings, kind services.AssetKind, path string) {
	switch kind {
	case services.AssetLogo:
		c.Logo = path
	case services.AssetFrame:
		c.Frame = path
	}
}
