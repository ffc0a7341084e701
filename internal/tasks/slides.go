package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/desertthunder/postx/internal/store"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// slideJob is one bullet point waiting for an image.
type slideJob struct {
	Index       int
	BulletPoint models.BulletPoint
}

// slideResult is a resolved slide and, when an image was generated, the file name to record on
// its bullet point.
type slideResult struct {
	Index     int
	Slide     models.SlideItem
	ImageFile string
	Err       error
}

// GenerateSlides builds one slide per bullet point.
//
// It runs only when there are no slides yet: existing slides are returned unchanged. Bullet points
// with an image reuse it; the others call the image generator through a bounded worker pool. A
// failed generation falls back to a placeholder image. Slides are written in a single dispatch
// once every job has resolved.
func (w *Wizard) GenerateSlides(ctx context.Context, progress chan<- ProgressUpdate) ([]models.SlideItem, error) {
	epoch := w.store.Epoch()
	s := w.store.State()

	if len(s.Slides) > 0 {
		return s.Slides, nil
	}
	if len(s.BulletPoints) == 0 {
		return nil, shared.ErrNoBulletPoints
	}

	total := len(s.BulletPoints)
	limiter := rate.NewLimiter(rate.Limit(w.opts.RateLimit), 1)

	jobs := make(chan slideJob, total)
	results := make(chan slideResult, total)

	var wg sync.WaitGroup
	for i := 0; i < min(w.opts.Workers, total); i++ {
		wg.Add(1)
		go w.slideWorker(ctx, &wg, limiter, jobs, results, total, progress)
	}

	go func() {
		defer close(jobs)
		for i, bp := range s.BulletPoints {
			select {
			case <-ctx.Done():
				return
			case jobs <- slideJob{Index: i, BulletPoint: bp}:
			}
			w.sendProgress(progress, slideQueuedUpdate(i+1, total))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	slides := make([]models.SlideItem, total)
	var images []store.Mutation
	completed := 0
	for res := range results {
		if res.Err != nil {
			continue
		}
		completed++
		slides[res.Index] = res.Slide
		if res.ImageFile != "" {
			images = append(images, store.UpdateBulletPointImage(res.Slide.BulletPointID, res.ImageFile))
		}
		w.sendProgress(progress, slideCompletedUpdate(completed, total, res.Slide))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if completed != total {
		return nil, fmt.Errorf("%w: %d of %d slides resolved", shared.ErrGenerationFailed, completed, total)
	}

	mutations := append([]store.Mutation{store.SetSlides(slides)}, images...)
	if err := w.store.DispatchAt(epoch, mutations...); err != nil {
		return nil, err
	}
	w.logger.Info("slides generated", "count", total)
	return slides, nil
}

// slideWorker resolves jobs until the channel closes or ctx ends.
func (w *Wizard) slideWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan slideJob,
	results chan<- slideResult,
	total int,
	progress chan<- ProgressUpdate,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- w.buildSlide(ctx, limiter, job, total, progress)
	}
}

// buildSlide resolves the image of a single slide.
func (w *Wizard) buildSlide(ctx context.Context, limiter *rate.Limiter, job slideJob, total int, progress chan<- ProgressUpdate) slideResult {
	bp := job.BulletPoint
	res := slideResult{
		Index: job.Index,
		Slide: models.SlideItem{
			ID:            uuid.NewString(),
			BulletPointID: bp.ID,
			Text:          bp.Text,
			Duration:      models.DefaultSlideDuration,
		},
	}

	if bp.ImagePath != "" {
		res.Slide.Image = services.StaticImageURL(w.opts.StaticBase, bp.ImagePath)
		return res
	}

	if err := limiter.Wait(ctx); err != nil {
		res.Err = err
		return res
	}

	img, err := w.backend.GenerateImage(ctx, bp.Text, bp.ID)
	if err != nil {
		if ctx.Err() != nil {
			res.Err = ctx.Err()
			return res
		}
		w.logger.Warn("image generation failed, using placeholder", "bullet_point", bp.ID, "error", err)
		w.sendProgress(progress, slideFallbackUpdate(job.Index+1, total, bp.ID, err))
		res.Slide.Image = services.FallbackImageURL(job.Index)
		return res
	}

	res.Slide.Image = services.ResolveImageURL(w.opts.StaticBase, img.ImageURL)
	res.ImageFile = shared.LastSegment(img.ImageURL)
	return res
}

// RegenerateSlideImage generates a new image for one slide and records it on its bullet point.
func (w *Wizard) RegenerateSlideImage(ctx context.Context, slideID string) (models.SlideItem, error) {
	epoch := w.store.Epoch()
	slide, _, ok := w.store.State().Slide(slideID)
	if !ok {
		return slide, fmt.Errorf("%w: slide %s", shared.ErrNotFound, slideID)
	}

	img, err := w.backend.GenerateImage(ctx, slide.Text, slide.BulletPointID)
	if err != nil {
		return slide, fmt.Errorf("failed to regenerate image: %w", err)
	}
	file := shared.LastSegment(img.ImageURL)
	if file == "" {
		return slide, fmt.Errorf("%w: invalid image path received from server", shared.ErrGenerationFailed)
	}

	image := services.CacheBust(services.StaticImageURL(w.opts.StaticBase, file), w.cacheStamp())
	err = w.store.DispatchAt(epoch,
		store.UpdateSlide(slideID, models.SlidePatch{Image: &image}),
		store.UpdateBulletPointImage(slide.BulletPointID, file),
	)
	if err != nil {
		return slide, err
	}
	slide.Image = image
	return slide, nil
}

// UploadSlideImage uploads a local file as the image of one slide.
//
// The server's image_path wins; point_{id}.jpg is assumed when it sends none.
func (w *Wizard) UploadSlideImage(ctx context.Context, slideID, path string, progress chan<- ProgressUpdate) (models.SlideItem, error) {
	epoch := w.store.Epoch()
	s := w.store.State()
	articleID, err := requireArticle(s)
	if err != nil {
		return models.SlideItem{}, err
	}
	slide, _, ok := s.Slide(slideID)
	if !ok {
		return slide, fmt.Errorf("%w: slide %s", shared.ErrNotFound, slideID)
	}
	if strings.TrimSpace(path) == "" {
		return slide, fmt.Errorf("%w: image file", shared.ErrMissingArgument)
	}

	w.sendProgress(progress, uploadingImageUpdate(filepath.Base(path)))
	res, err := w.backend.UploadBulletPointImage(ctx, articleID, slide.BulletPointID, path)
	if err != nil {
		return slide, fmt.Errorf("failed to upload image: %w", err)
	}

	file := shared.LastSegment(res.ImagePath)
	if file == "" {
		file = fmt.Sprintf("point_%s.jpg", shared.PadID(slide.BulletPointID))
	}
	image := services.CacheBust(services.StaticImageURL(w.opts.StaticBase, file), w.cacheStamp())

	err = w.store.DispatchAt(epoch,
		store.UpdateSlide(slideID, models.SlidePatch{Image: &image}),
		store.UpdateBulletPointImage(slide.BulletPointID, file),
	)
	if err != nil {
		return slide, err
	}
	slide.Image = image
	return slide, nil
}

// UpdateSlideText replaces the text shown on one slide.
func (w *Wizard) UpdateSlideText(slideID, text string) error {
	if _, _, ok := w.store.State().Slide(slideID); !ok {
		return fmt.Errorf("%w: slide %s", shared.ErrNotFound, slideID)
	}
	w.store.UpdateSlide(slideID, models.SlidePatch{Text: &text})
	return nil
}

// UpdateSlideDuration sets how long one slide is shown, in seconds.
func (w *Wizard) UpdateSlideDuration(slideID string, seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: duration must be positive", shared.ErrInvalidInput)
	}
	if _, _, ok := w.store.State().Slide(slideID); !ok {
		return fmt.Errorf("%w: slide %s", shared.ErrNotFound, slideID)
	}
	w.store.UpdateSlide(slideID, models.SlidePatch{Duration: &seconds})
	return nil
}
