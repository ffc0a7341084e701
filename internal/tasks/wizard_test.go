package tasks

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/desertthunder/postx/internal/store"
	tu "github.com/desertthunder/postx/internal/testing"
)

// fakeBackend wraps the fixture transport; set a hook to override one call.
type fakeBackend struct {
	*services.MockBackend

	processArticle func(ctx context.Context, req services.ProcessArticleRequest) (*services.Article, error)
	generateImage  func(ctx context.Context, text, bulletPointID string) (*services.GeneratedImage, error)
	uploadImage    func(ctx context.Context, articleID int, bulletPointID, file string) (*services.UploadResult, error)
	applyAsset     func(ctx context.Context, kind services.AssetKind, articleID int, req services.ApplyRequest) (*services.ApplyResult, error)
	socialStatus   func(ctx context.Context, jobID int) (*services.SocialJob, error)
	clearCache     func(ctx context.Context) error

	mu         sync.Mutex
	calls      map[string]int
	lastApply  services.ApplyRequest
	lastSocial services.SocialRequest
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{MockBackend: services.NewMockBackend(), calls: make(map[string]int)}
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) ProcessArticle(ctx context.Context, req services.ProcessArticleRequest) (*services.Article, error) {
	f.record("ProcessArticle")
	if f.processArticle != nil {
		return f.processArticle(ctx, req)
	}
	return f.MockBackend.ProcessArticle(ctx, req)
}

func (f *fakeBackend) GenerateImage(ctx context.Context, text, bulletPointID string) (*services.GeneratedImage, error) {
	f.record("GenerateImage")
	if f.generateImage != nil {
		return f.generateImage(ctx, text, bulletPointID)
	}
	return f.MockBackend.GenerateImage(ctx, text, bulletPointID)
}

func (f *fakeBackend) UploadBulletPointImage(ctx context.Context, articleID int, bulletPointID, file string) (*services.UploadResult, error) {
	f.record("UploadBulletPointImage")
	if f.uploadImage != nil {
		return f.uploadImage(ctx, articleID, bulletPointID, file)
	}
	return f.MockBackend.UploadBulletPointImage(ctx, articleID, bulletPointID, file)
}

func (f *fakeBackend) ApplyAsset(ctx context.Context, kind services.AssetKind, articleID int, req services.ApplyRequest) (*services.ApplyResult, error) {
	f.record("ApplyAsset")
	f.mu.Lock()
	f.lastApply = req
	f.mu.Unlock()
	if f.applyAsset != nil {
		return f.applyAsset(ctx, kind, articleID, req)
	}
	return f.MockBackend.ApplyAsset(ctx, kind, articleID, req)
}

func (f *fakeBackend) GenerateSocialPosts(ctx context.Context, req services.SocialRequest) (*services.SocialJob, error) {
	f.record("GenerateSocialPosts")
	f.mu.Lock()
	f.lastSocial = req
	f.mu.Unlock()
	return f.MockBackend.GenerateSocialPosts(ctx, req)
}

func (f *fakeBackend) SocialPostStatus(ctx context.Context, jobID int) (*services.SocialJob, error) {
	f.record("SocialPostStatus")
	if f.socialStatus != nil {
		return f.socialStatus(ctx, jobID)
	}
	return f.MockBackend.SocialPostStatus(ctx, jobID)
}

func (f *fakeBackend) ClearCache(ctx context.Context) error {
	f.record("ClearCache")
	if f.clearCache != nil {
		return f.clearCache(ctx)
	}
	return f.MockBackend.ClearCache(ctx)
}

func newStore(t *testing.T, initial *models.ProjectState) *store.Store {
	t.Helper()
	var data []byte
	if initial != nil {
		var err error
		if data, err = store.Encode(*initial); err != nil {
			t.Fatalf("failed to encode state: %v", err)
		}
	}
	return store.New(
		store.WithPersister(store.NewMemoryPersister(data)),
		store.WithLogger(shared.NewLogger(io.Discard)),
	)
}

func fastOpts() WizardOpts {
	return WizardOpts{
		AutoAdvance: 10 * time.Millisecond,
		Workers:     3,
		RateLimit:   1000,
		Poll:        PollPolicy{Interval: time.Millisecond, MaxInterval: 2 * time.Millisecond, MaxAttempts: 5, Timeout: time.Second},
		StaticBase:  "http://localhost:8000",
	}
}

func newWizard(t *testing.T, initial *models.ProjectState, b services.Backend) *Wizard {
	t.Helper()
	w := NewWizard(newStore(t, initial), b, nil, fastOpts())
	w.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return w
}

func sample() *models.ProjectState {
	s := tu.SampleState()
	return &s
}

func TestSubmitArticle(t *testing.T) {
	t.Run("Validation", func(t *testing.T) {
		tests := []struct {
			name string
			in   ArticleInput
		}{
			{"empty", ArticleInput{}},
			{"whitespace", ArticleInput{URL: "  ", Text: "\n"}},
			{"both", ArticleInput{URL: "https://example.com", Text: "body"}},
			{"not http", ArticleInput{URL: "ftp://example.com/a"}},
			{"no host", ArticleInput{URL: "https://"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				b := newFakeBackend()
				w := newWizard(t, nil, b)
				_, err := w.SubmitArticle(context.Background(), tt.in, nil)
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Fatalf("expected invalid input, got %v", err)
				}
				if b.count("ProcessArticle") != 0 {
					t.Error("expected no backend call")
				}
			})
		}
	})

	t.Run("Stores Article And Bullet Points", func(t *testing.T) {
		b := newFakeBackend()
		var got services.ProcessArticleRequest
		b.processArticle = func(ctx context.Context, req services.ProcessArticleRequest) (*services.Article, error) {
			got = req
			return b.MockBackend.ProcessArticle(ctx, req)
		}
		initial := models.NewProjectState()
		initial.Settings.SlideCount = 3
		initial.Slides = []models.SlideItem{{ID: "old", Text: "stale"}}
		w := newWizard(t, &initial, b)

		progress := make(chan ProgressUpdate, 4)
		article, err := w.SubmitArticle(context.Background(), ArticleInput{URL: " https://example.com/a "}, progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got.URL != "https://example.com/a" || got.SlideCount != 3 || got.Language != "fr-FR" {
			t.Errorf("unexpected request %+v", got)
		}

		s := w.Store().State()
		if s.ArticleData.ID != article.ID || s.ArticleData.Title != article.Title || s.ArticleData.URL != "https://example.com/a" {
			t.Errorf("unexpected article data %+v", s.ArticleData)
		}
		if len(s.BulletPoints) != 3 || s.BulletPoints[0].ID != "1" || s.BulletPoints[2].ID != "3" {
			t.Errorf("unexpected bullet points %+v", s.BulletPoints)
		}
		if len(s.Slides) != 0 {
			t.Errorf("expected slides cleared, got %d", len(s.Slides))
		}
		if len(progress) != 2 {
			t.Errorf("expected 2 progress updates, got %d", len(progress))
		}
	})

	t.Run("Backend Error Leaves Store Untouched", func(t *testing.T) {
		b := newFakeBackend()
		b.processArticle = func(context.Context, services.ProcessArticleRequest) (*services.Article, error) {
			return nil, &services.APIError{Kind: services.KindServer, Status: 500, Message: "boom"}
		}
		w := newWizard(t, nil, b)

		_, err := w.SubmitArticle(context.Background(), ArticleInput{Text: "some text"}, nil)
		if err == nil || services.Describe(err) != "boom" {
			t.Fatalf("expected server message, got %v", err)
		}
		if w.Store().State().ArticleData.HasID() {
			t.Error("expected no article stored")
		}
	})

	t.Run("Reset During Call Drops Result", func(t *testing.T) {
		b := newFakeBackend()
		var w *Wizard
		b.processArticle = func(ctx context.Context, req services.ProcessArticleRequest) (*services.Article, error) {
			w.Store().Reset()
			return b.MockBackend.ProcessArticle(ctx, req)
		}
		w = newWizard(t, nil, b)

		_, err := w.SubmitArticle(context.Background(), ArticleInput{Text: "text"}, nil)
		if !errors.Is(err, shared.ErrStaleWrite) {
			t.Fatalf("expected stale write, got %v", err)
		}
		if len(w.Store().State().BulletPoints) != 0 {
			t.Error("expected late result to be dropped")
		}
	})
}

func TestAutoAdvance(t *testing.T) {
	t.Run("Advances After Delay", func(t *testing.T) {
		w := newWizard(t, nil, newFakeBackend())
		if err := w.AutoAdvance(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := w.Store().State().CurrentStep; got != models.StepBulletPoints {
			t.Errorf("expected bullet points step, got %v", got)
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		w := newWizard(t, nil, newFakeBackend())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := w.AutoAdvance(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected canceled, got %v", err)
		}
		if got := w.Store().State().CurrentStep; got != models.FirstStep {
			t.Errorf("expected first step, got %v", got)
		}
	})

	t.Run("Reset Wins", func(t *testing.T) {
		w := newWizard(t, nil, newFakeBackend())
		w.opts.AutoAdvance = 200 * time.Millisecond
		done := make(chan error, 1)
		go func() { done <- w.AutoAdvance(context.Background()) }()
		time.Sleep(20 * time.Millisecond)
		w.Store().Reset()

		if err := <-done; !errors.Is(err, shared.ErrStaleWrite) {
			t.Fatalf("expected stale write, got %v", err)
		}
		if got := w.Store().State().CurrentStep; got != models.FirstStep {
			t.Errorf("expected first step, got %v", got)
		}
	})
}

func TestNewProject(t *testing.T) {
	t.Run("Resets And Clears Cache", func(t *testing.T) {
		b := newFakeBackend()
		w := newWizard(t, sample(), b)
		<-w.NewProject(context.Background())

		if w.Store().State().ArticleData.HasID() {
			t.Error("expected reset state")
		}
		if b.count("ClearCache") != 1 {
			t.Error("expected cache clear")
		}
	})

	t.Run("Cache Failure Is Ignored", func(t *testing.T) {
		b := newFakeBackend()
		b.clearCache = func(context.Context) error { return errors.New("offline") }
		w := newWizard(t, sample(), b)
		<-w.NewProject(context.Background())

		if len(w.Store().State().Slides) != 0 {
			t.Error("expected reset to stand")
		}
	})
}

func TestBulletPoints(t *testing.T) {
	t.Run("Edit Merges Backend Copy", func(t *testing.T) {
		w := newWizard(t, sample(), newFakeBackend())
		bp, err := w.EditBulletPoint(context.Background(), "2", "  New text ", []string{"k"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if bp.Text != "New text" || len(bp.Keywords) != 1 {
			t.Errorf("unexpected bullet point %+v", bp)
		}
	})

	t.Run("Edit Requires Article", func(t *testing.T) {
		s := sample()
		s.ArticleData = models.ArticleData{}
		w := newWizard(t, s, newFakeBackend())
		if _, err := w.EditBulletPoint(context.Background(), "1", "x", nil); !errors.Is(err, shared.ErrArticleRequired) {
			t.Fatalf("expected article required, got %v", err)
		}
	})

	t.Run("Edit Unknown Id", func(t *testing.T) {
		w := newWizard(t, sample(), newFakeBackend())
		if _, err := w.EditBulletPoint(context.Background(), "9", "x", nil); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("Regenerate One", func(t *testing.T) {
		w := newWizard(t, sample(), newFakeBackend())
		bp, err := w.RegenerateBulletPoint(context.Background(), "1", "shorter")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(bp.Text, "Regenerated bullet point 1") || bp.ImagePath != "point_01.jpg" {
			t.Errorf("unexpected bullet point %+v", bp)
		}
	})

	t.Run("Regenerate All Clears Slides", func(t *testing.T) {
		s := sample()
		s.Settings.SlideCount = 3
		w := newWizard(t, s, newFakeBackend())
		bps, err := w.RegenerateAllBulletPoints(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bps) != 3 {
			t.Errorf("expected 3 bullet points, got %d", len(bps))
		}
		if len(w.Store().State().Slides) != 0 {
			t.Error("expected slides cleared")
		}
	})

	t.Run("Delete Image", func(t *testing.T) {
		w := newWizard(t, sample(), newFakeBackend())
		if err := w.DeleteBulletPointImage(context.Background(), "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w.Store().State().HasBaseImage() {
			t.Error("expected image path cleared")
		}
	})

	t.Run("Keywords", func(t *testing.T) {
		w := newWizard(t, sample(), newFakeBackend())
		kw, err := w.ExtractKeywords(context.Background())
		if err != nil || len(kw) == 0 {
			t.Fatalf("expected keywords, got %v (%v)", kw, err)
		}
	})
}

func TestSendProgress(t *testing.T) {
	w := newWizard(t, nil, newFakeBackend())

	t.Run("Nil Channel", func(t *testing.T) {
		w.sendProgress(nil, ProgressUpdate{})
	})

	t.Run("Full Channel Does Not Block", func(t *testing.T) {
		ch := make(chan ProgressUpdate, 1)
		var sent atomic.Int32
		for range 3 {
			w.sendProgress(ch, ProgressUpdate{Phase: GenerateSlides})
			sent.Add(1)
		}
		if sent.Load() != 3 || len(ch) != 1 {
			t.Errorf("expected 1 buffered update, got %d", len(ch))
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{ProcessArticle, "process_article"},
		{GenerateSlides, "generate_slides"},
		{PollSocial, "poll_social"},
		{Phase(99), ""},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestFromConfig(t *testing.T) {
	t.Run("Settings", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Defaults.Language = "de"
		cfg.Defaults.SlideCount = 42
		cfg.Features.MusicAPI = false
		cfg.Features.Voiceover = true

		s := SettingsFromConfig(cfg)
		if s.Language.ID != "german" || s.SlideCount != models.MaxSlideCount {
			t.Errorf("unexpected settings %+v", s)
		}
		if s.BackgroundMusic || !s.Voiceover {
			t.Errorf("expected feature flags applied, got %+v", s)
		}
	})

	t.Run("Unknown Language Keeps Default", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Defaults.Language = "klingon"
		if s := SettingsFromConfig(cfg); s.Language != models.DefaultLanguage() {
			t.Errorf("expected default language, got %+v", s.Language)
		}
	})

	t.Run("Opts", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		opts := OptsFromConfig(cfg)
		if opts.Poll.MaxAttempts != 60 || opts.Workers != 4 {
			t.Errorf("unexpected opts %+v", opts)
		}
		if opts.StaticBase != "http://localhost:8000" {
			t.Errorf("unexpected static base %q", opts.StaticBase)
		}
	})
}
