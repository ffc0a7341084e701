package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
)

func withBulletPoints(bps ...models.BulletPoint) *models.ProjectState {
	s := models.NewProjectState()
	s.ArticleData = models.ArticleData{ID: 1, Title: "T"}
	s.BulletPoints = bps
	s.CurrentStep = models.StepSlidePreview
	return &s
}

func TestGenerateSlides(t *testing.T) {
	t.Run("Reuses Existing Images", func(t *testing.T) {
		b := newFakeBackend()
		w := newWizard(t, withBulletPoints(
			models.BulletPoint{ID: "1", Text: "a", ImagePath: "point_01.jpg"},
			models.BulletPoint{ID: "2", Text: "b", ImagePath: "https://cdn.example.com/x.jpg"},
			models.BulletPoint{ID: "3", Text: "c", ImagePath: "/static/img/point_03.jpg"},
		), b)

		slides, err := w.GenerateSlides(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{
			"http://localhost:8000/static/img/point_01.jpg",
			"https://cdn.example.com/x.jpg",
			"http://localhost:8000/static/img/point_03.jpg",
		}
		for i, s := range slides {
			if s.Image != want[i] {
				t.Errorf("slide %d image = %q, want %q", i, s.Image, want[i])
			}
		}
		if b.count("GenerateImage") != 0 {
			t.Error("expected no image generation")
		}
	})

	t.Run("Generates Missing Images In Order", func(t *testing.T) {
		b := newFakeBackend()
		b.generateImage = func(ctx context.Context, text, id string) (*services.GeneratedImage, error) {
			// Finish out of order.
			if id == "1" {
				time.Sleep(20 * time.Millisecond)
			}
			return b.MockBackend.GenerateImage(ctx, text, id)
		}
		w := newWizard(t, withBulletPoints(
			models.BulletPoint{ID: "1", Text: "a"},
			models.BulletPoint{ID: "2", Text: "b"},
			models.BulletPoint{ID: "3", Text: "c"},
		), b)

		progress := make(chan ProgressUpdate, 16)
		slides, err := w.GenerateSlides(context.Background(), progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(slides) != 3 {
			t.Fatalf("expected 3 slides, got %d", len(slides))
		}

		seen := map[string]bool{}
		for i, s := range slides {
			wantBP := fmt.Sprint(i + 1)
			if s.BulletPointID != wantBP {
				t.Errorf("slide %d bullet point = %q, want %q", i, s.BulletPointID, wantBP)
			}
			if s.Duration != 5 || s.ID == "" || seen[s.ID] {
				t.Errorf("unexpected slide %+v", s)
			}
			seen[s.ID] = true
			if want := fmt.Sprintf("http://localhost:8000/static/img/point_0%d.jpg", i+1); s.Image != want {
				t.Errorf("slide %d image = %q, want %q", i, s.Image, want)
			}
		}

		state := w.Store().State()
		if len(state.Slides) != 3 {
			t.Errorf("expected slides stored, got %d", len(state.Slides))
		}
		if bp, _ := state.BulletPoint("2"); bp.ImagePath != "point_02.jpg" {
			t.Errorf("expected generated file recorded, got %q", bp.ImagePath)
		}
		if len(progress) == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("Failure Falls Back To Placeholder", func(t *testing.T) {
		b := newFakeBackend()
		b.generateImage = func(ctx context.Context, text, id string) (*services.GeneratedImage, error) {
			if id == "2" {
				return nil, &services.APIError{Kind: services.KindServer, Status: 500}
			}
			return b.MockBackend.GenerateImage(ctx, text, id)
		}
		w := newWizard(t, withBulletPoints(
			models.BulletPoint{ID: "1", Text: "a"},
			models.BulletPoint{ID: "2", Text: "b"},
		), b)

		slides, err := w.GenerateSlides(context.Background(), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if slides[1].Image != "https://picsum.photos/seed/1/800/450" {
			t.Errorf("expected placeholder, got %q", slides[1].Image)
		}
		if bp, _ := w.Store().State().BulletPoint("2"); bp.ImagePath != "" {
			t.Errorf("expected no image recorded for placeholder, got %q", bp.ImagePath)
		}
	})

	t.Run("Skips When Slides Exist", func(t *testing.T) {
		b := newFakeBackend()
		w := newWizard(t, sample(), b)

		slides, err := w.GenerateSlides(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(slides) != 2 || slides[0].ID != "slide-1" || b.count("GenerateImage") != 0 {
			t.Errorf("expected existing slides, got %+v", slides)
		}
	})

	t.Run("No Bullet Points", func(t *testing.T) {
		w := newWizard(t, withBulletPoints(), newFakeBackend())
		if _, err := w.GenerateSlides(context.Background(), nil); !errors.Is(err, shared.ErrNoBulletPoints) {
			t.Fatalf("expected no bullet points, got %v", err)
		}
	})

	t.Run("Canceled Writes Nothing", func(t *testing.T) {
		b := newFakeBackend()
		ctx, cancel := context.WithCancel(context.Background())
		b.generateImage = func(ctx context.Context, text, id string) (*services.GeneratedImage, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		}
		w := newWizard(t, withBulletPoints(
			models.BulletPoint{ID: "1", Text: "a"},
			models.BulletPoint{ID: "2", Text: "b"},
		), b)

		if _, err := w.GenerateSlides(ctx, nil); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected canceled, got %v", err)
		}
		if len(w.Store().State().Slides) != 0 {
			t.Error("expected no slides written")
		}
	})

	t.Run("Bounded Concurrency", func(t *testing.T) {
		b := newFakeBackend()
		var inFlight, peak atomic.Int32
		b.generateImage = func(ctx context.Context, text, id string) (*services.GeneratedImage, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return &services.GeneratedImage{ImageURL: "/static/img/x.jpg"}, nil
		}
		var bps []models.BulletPoint
		for i := range 8 {
			bps = append(bps, models.BulletPoint{ID: fmt.Sprint(i + 1), Text: "t"})
		}
		w := newWizard(t, withBulletPoints(bps...), b)

		if _, err := w.GenerateSlides(context.Background(), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > int32(w.opts.Workers) {
			t.Errorf("expected at most %d concurrent calls, got %d", w.opts.Workers, peak.Load())
		}
	})
}

func TestRegenerateSlideImage(t *testing.T) {
	w := newWizard(t, sample(), newFakeBackend())

	slide, err := w.RegenerateSlideImage(context.Background(), "slide-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "http://localhost:8000/static/img/point_02.jpg?t=1700000000000"
	if slide.Image != want {
		t.Errorf("image = %q, want %q", slide.Image, want)
	}

	s := w.Store().State()
	if other, _, _ := s.Slide("slide-1"); other.Image != "http://localhost:8000/static/img/point_01.jpg" {
		t.Errorf("expected other slide untouched, got %q", other.Image)
	}
	if bp, _ := s.BulletPoint("2"); bp.ImagePath != "point_02.jpg" {
		t.Errorf("expected bullet point file, got %q", bp.ImagePath)
	}

	if _, err := w.RegenerateSlideImage(context.Background(), "missing"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUploadSlideImage(t *testing.T) {
	t.Run("Uses Server Path", func(t *testing.T) {
		b := newFakeBackend()
		b.uploadImage = func(context.Context, int, string, string) (*services.UploadResult, error) {
			return &services.UploadResult{ImagePath: "/static/img/custom_2.jpg"}, nil
		}
		w := newWizard(t, sample(), b)

		slide, err := w.UploadSlideImage(context.Background(), "slide-2", "/tmp/photo.png", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(slide.Image, "http://localhost:8000/static/img/custom_2.jpg?t=") {
			t.Errorf("unexpected image %q", slide.Image)
		}
		if bp, _ := w.Store().State().BulletPoint("2"); bp.ImagePath != "custom_2.jpg" {
			t.Errorf("unexpected bullet point image %q", bp.ImagePath)
		}
	})

	t.Run("Falls Back To Point Name", func(t *testing.T) {
		b := newFakeBackend()
		b.uploadImage = func(context.Context, int, string, string) (*services.UploadResult, error) {
			return &services.UploadResult{Message: "ok"}, nil
		}
		w := newWizard(t, sample(), b)

		slide, err := w.UploadSlideImage(context.Background(), "slide-2", "/tmp/photo.png", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(slide.Image, "/static/img/point_02.jpg?t=") {
			t.Errorf("unexpected image %q", slide.Image)
		}
	})

	t.Run("Requires Article", func(t *testing.T) {
		s := sample()
		s.ArticleData = models.ArticleData{}
		b := newFakeBackend()
		w := newWizard(t, s, b)

		_, err := w.UploadSlideImage(context.Background(), "slide-1", "/tmp/a.png", nil)
		if !errors.Is(err, shared.ErrArticleRequired) || !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected client error, got %v", err)
		}
		if b.count("UploadBulletPointImage") != 0 {
			t.Error("expected no upload")
		}
	})
}

func TestUpdateSlide(t *testing.T) {
	w := newWizard(t, sample(), newFakeBackend())

	if err := w.UpdateSlideText("slide-1", "Edited"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.UpdateSlideDuration("slide-1", 8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _, _ := w.Store().State().Slide("slide-1")
	if got.Text != "Edited" || got.Duration != 8 {
		t.Errorf("unexpected slide %+v", got)
	}

	if err := w.UpdateSlideDuration("slide-1", 0); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
	if err := w.UpdateSlideText("nope", "x"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
