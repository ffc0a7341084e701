package store

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/shared"
	tu "github.com/desertthunder/postx/internal/testing"
)

func quietStore(opts ...Option) *Store {
	return New(append([]Option{WithLogger(shared.NewLogger(io.Discard))}, opts...)...)
}

type clearerFunc func(context.Context) error

func (f clearerFunc) ClearCache(ctx context.Context) error { return f(ctx) }

func TestSteps(t *testing.T) {
	t.Run("Next Saturates", func(t *testing.T) {
		s := quietStore()
		for range 10 {
			s.NextStep()
		}
		if got := s.State().CurrentStep; got != models.LastStep {
			t.Errorf("expected last step, got %v", got)
		}
	})

	t.Run("Prev Saturates", func(t *testing.T) {
		s := quietStore()
		s.PrevStep()
		if got := s.State().CurrentStep; got != models.FirstStep {
			t.Errorf("expected first step, got %v", got)
		}
	})

	t.Run("GoToStep Clamps", func(t *testing.T) {
		tests := []struct {
			in   int
			want models.Step
		}{
			{-3, models.StepArticleInput},
			{2, models.StepSlidePreview},
			{99, models.StepSocialPosts},
		}
		s := quietStore()
		for _, tt := range tests {
			s.GoToStep(tt.in)
			if got := s.State().CurrentStep; got != tt.want {
				t.Errorf("GoToStep(%d) = %v, want %v", tt.in, got, tt.want)
			}
		}
	})

	t.Run("Transitions Ignore Data", func(t *testing.T) {
		s := quietStore()
		s.NextStep()
		s.NextStep()
		st := s.State()
		if st.CurrentStep != models.StepSlidePreview || len(st.BulletPoints) != 0 {
			t.Errorf("expected unguarded advance, got %+v", st)
		}
	})
}

func TestMutations(t *testing.T) {
	t.Run("SetLanguage Only Touches Language", func(t *testing.T) {
		s := quietStore()
		s.SetSlideCount(4)
		en, _ := models.LanguageByID("english")
		s.SetLanguage(en)

		st := s.State()
		if st.Settings.Language.ID != "english" || st.Settings.SlideCount != 4 || st.Settings.WordsPerPoint != 20 {
			t.Errorf("unexpected settings %+v", st.Settings)
		}
	})

	t.Run("Settings Are Clamped", func(t *testing.T) {
		s := quietStore()
		s.SetSlideCount(0)
		s.SetWordsPerPoint(100)
		st := s.State()
		if st.Settings.SlideCount != models.MinSlideCount || st.Settings.WordsPerPoint != models.MaxWordsPerPoint {
			t.Errorf("unexpected settings %+v", st.Settings)
		}
	})

	t.Run("UpdateBulletPoint Merges One Entry", func(t *testing.T) {
		s := quietStore()
		s.SetBulletPoints(tu.SampleState().BulletPoints)
		s.UpdateBulletPoint("2", models.BulletPointPatch{Text: models.Ptr("edited")})

		st := s.State()
		if st.BulletPoints[1].Text != "edited" {
			t.Errorf("expected edit applied, got %+v", st.BulletPoints[1])
		}
		if st.BulletPoints[0].Text != "First point" || st.BulletPoints[0].ImagePath != "point_01.jpg" {
			t.Errorf("expected other entry untouched, got %+v", st.BulletPoints[0])
		}
	})

	t.Run("Unknown Ids Are A No-op", func(t *testing.T) {
		s := quietStore()
		sample := tu.SampleState()
		s.SetBulletPoints(sample.BulletPoints)
		s.SetSlides(sample.Slides)
		before := s.State()

		s.UpdateBulletPoint("nope", models.BulletPointPatch{Text: models.Ptr("x")})
		s.UpdateSlide("nope", models.SlidePatch{Duration: models.Ptr(9)})

		after := s.State()
		if after.BulletPoints[0].Text != before.BulletPoints[0].Text || after.Slides[0].Duration != before.Slides[0].Duration {
			t.Error("expected no change for unknown ids")
		}
	})

	t.Run("UpdateSlide Merges Patch", func(t *testing.T) {
		s := quietStore()
		s.SetSlides(tu.SampleState().Slides)
		s.UpdateSlide("slide-2", models.SlidePatch{Duration: models.Ptr(8)})

		sl, _, _ := s.State().Slide("slide-2")
		if sl.Duration != 8 || sl.Text != "Second point" {
			t.Errorf("unexpected slide %+v", sl)
		}
	})

	t.Run("Social Lifecycle", func(t *testing.T) {
		s := quietStore()
		s.SetSocialError("old")
		s.SetSocialGenerating(true)
		if st := s.State(); !st.SocialGenerating || st.SocialError != "" {
			t.Errorf("expected generating with cleared error, got %+v", st)
		}

		s.SetSocialPosts(map[models.Platform]models.SocialPost{models.Instagram: {Caption: "c"}}, 4)
		st := s.State()
		if st.SocialGenerating || st.SocialPostID != 4 || len(st.SocialPosts) != 1 {
			t.Errorf("unexpected social state %+v", st)
		}

		s.SetSocialGenerating(true)
		s.SetSocialError("boom")
		if st := s.State(); st.SocialGenerating || st.SocialError != "boom" {
			t.Errorf("expected error to end generation, got %+v", st)
		}
	})

	t.Run("BumpAssetVersion Is Monotonic", func(t *testing.T) {
		s := quietStore()
		s.BumpAssetVersion(100)
		s.BumpAssetVersion(50)
		if got := s.State().AssetVersion; got != 101 {
			t.Errorf("expected 101, got %d", got)
		}
	})

	t.Run("BumpAssetVersion Holds Millisecond Stamps", func(t *testing.T) {
		s := quietStore()
		stamp := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
		if stamp <= math.MaxInt32 {
			t.Fatalf("expected a stamp wider than 32 bits, got %d", stamp)
		}
		s.BumpAssetVersion(stamp)
		s.BumpAssetVersion(stamp - 1)
		if got := s.State().AssetVersion; got != stamp+1 {
			t.Errorf("expected %d, got %d", stamp+1, got)
		}
	})

	t.Run("State Is A Copy", func(t *testing.T) {
		s := quietStore()
		s.SetBulletPoints(tu.SampleState().BulletPoints)
		st := s.State()
		st.BulletPoints[0].Text = "mutated"
		st.BulletPoints[0].Keywords[0] = "mutated"

		again := s.State()
		if again.BulletPoints[0].Text == "mutated" || again.BulletPoints[0].Keywords[0] == "mutated" {
			t.Error("caller mutation leaked into the store")
		}
	})
}

func TestEpoch(t *testing.T) {
	t.Run("Stale Writes Are Dropped", func(t *testing.T) {
		s := quietStore()
		epoch := s.Epoch()
		s.Reset()

		err := s.DispatchAt(epoch, SetArticleData(models.ArticleData{ID: 9}))
		if !errors.Is(err, shared.ErrStaleWrite) {
			t.Fatalf("expected ErrStaleWrite, got %v", err)
		}
		if s.State().ArticleData.ID != 0 {
			t.Error("stale write was applied")
		}
	})

	t.Run("Current Epoch Writes Apply", func(t *testing.T) {
		s := quietStore()
		if err := s.DispatchAt(s.Epoch(), SetArticleData(models.ArticleData{ID: 9})); err != nil {
			t.Fatal(err)
		}
		if s.State().ArticleData.ID != 9 {
			t.Error("expected write applied")
		}
	})
}

func TestNewProject(t *testing.T) {
	t.Run("Resets Even When Cache Clear Fails", func(t *testing.T) {
		s := quietStore()
		s.SetArticleData(models.ArticleData{ID: 3})
		s.GoToStep(4)

		called := false
		<-s.NewProject(context.Background(), clearerFunc(func(context.Context) error {
			called = true
			return errors.New("offline")
		}))

		st := s.State()
		if !called {
			t.Error("expected cache clear to be attempted")
		}
		if st.CurrentStep != models.FirstStep || st.ArticleData.ID != 0 {
			t.Errorf("expected fresh state, got %+v", st)
		}
	})

	t.Run("Nil Clearer", func(t *testing.T) {
		s := quietStore()
		<-s.NewProject(context.Background(), nil)
		if s.Epoch() != 1 {
			t.Errorf("expected epoch 1, got %d", s.Epoch())
		}
	})

	t.Run("Returns Before A Slow Cache Clear", func(t *testing.T) {
		s := quietStore()
		s.GoToStep(3)

		release := make(chan struct{})
		start := time.Now()
		done := s.NewProject(context.Background(), clearerFunc(func(ctx context.Context) error {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		}))

		if took := time.Since(start); took > 500*time.Millisecond {
			t.Errorf("expected NewProject to return immediately, took %v", took)
		}
		if s.State().CurrentStep != models.FirstStep {
			t.Error("expected reset before the cache clear finishes")
		}
		select {
		case <-done:
			t.Fatal("expected cache clear to still be running")
		default:
		}

		close(release)
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("expected cache clear to finish after release")
		}
	})

	t.Run("Cache Clear Outlives Caller Context", func(t *testing.T) {
		s := quietStore()
		ctx, cancel := context.WithCancel(context.Background())

		var got error
		done := s.NewProject(ctx, clearerFunc(func(ctx context.Context) error {
			<-time.After(20 * time.Millisecond)
			got = ctx.Err()
			return nil
		}))
		cancel()
		<-done

		if got != nil {
			t.Errorf("expected clear context to survive caller cancel, got %v", got)
		}
	})
}

func TestSubscribe(t *testing.T) {
	s := quietStore()
	var mu sync.Mutex
	var steps []models.Step
	unsubscribe := s.Subscribe(func(st models.ProjectState) {
		mu.Lock()
		steps = append(steps, st.CurrentStep)
		mu.Unlock()
	})

	s.NextStep()
	s.NextStep()
	unsubscribe()
	s.NextStep()

	mu.Lock()
	defer mu.Unlock()
	if len(steps) != 2 || steps[1] != models.StepSlidePreview {
		t.Errorf("unexpected notifications %v", steps)
	}
}

func TestPersistence(t *testing.T) {
	t.Run("Round Trip Drops Social Fields", func(t *testing.T) {
		p := NewMemoryPersister(nil)
		s := quietStore(WithPersister(p))
		sample := tu.SampleState()
		s.Dispatch(SetArticleData(sample.ArticleData), SetBulletPoints(sample.BulletPoints), SetSlides(sample.Slides), GoToStep(3))
		s.SetSocialPosts(map[models.Platform]models.SocialPost{models.Facebook: {Caption: "c"}}, 2)

		restored := quietStore(WithPersister(p)).State()
		if restored.ArticleData.ID != 7 || len(restored.Slides) != 2 || restored.CurrentStep != models.StepLogoUpload {
			t.Errorf("unexpected restored state %+v", restored)
		}
		if restored.SocialPosts != nil || restored.SocialPostID != 0 {
			t.Error("social fields must not persist")
		}
		data, _ := p.Load()
		if strings.Contains(string(data), "SocialPosts") || strings.Contains(string(data), "Facebook") {
			t.Errorf("social content leaked into blob: %s", data)
		}
	})

	t.Run("Invalid Blob Starts Fresh", func(t *testing.T) {
		for _, blob := range []string{
			`not json`,
			`{"version":1}`,
			`{"version":1,"state":{"settings":{"language":{"id":"x","name":"X","code":"xx"},"slideCount":"three","wordsPerPoint":20},"currentStep":0}}`,
		} {
			s := quietStore(WithPersister(NewMemoryPersister([]byte(blob))))
			if st := s.State(); st.CurrentStep != models.FirstStep || st.Settings.SlideCount != 1 {
				t.Errorf("expected defaults for %q, got %+v", blob, st)
			}
		}
	})

	t.Run("Decode Clamps Out Of Range Values", func(t *testing.T) {
		blob := `{"version":1,"state":{"settings":{"language":{"id":"french","name":"Français","code":"fr-FR"},"slideCount":40,"wordsPerPoint":2},"currentStep":17}}`
		st, err := Decode([]byte(blob))
		if err != nil {
			t.Fatal(err)
		}
		if st.CurrentStep != models.LastStep || st.Settings.SlideCount != 10 || st.Settings.WordsPerPoint != 10 {
			t.Errorf("unexpected state %+v", st)
		}
		if st.BulletPoints == nil || st.Slides == nil {
			t.Error("expected empty slices, not nil")
		}
	})

	t.Run("Every Dispatch Saves", func(t *testing.T) {
		p := NewMemoryPersister(nil)
		s := quietStore(WithPersister(p))
		s.NextStep()
		s.SetSlideCount(3)
		s.Reset()
		if p.Saves() != 3 {
			t.Errorf("expected 3 saves, got %d", p.Saves())
		}
	})

	t.Run("File Persister", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", StorageKey+".json")
		p := NewFilePersister(path)

		data, err := p.Load()
		if err != nil || data != nil {
			t.Fatalf("expected empty load, got %q %v", data, err)
		}

		s := quietStore(WithPersister(p))
		s.SetWordsPerPoint(25)
		tu.AssertFileExists(t, path)

		entries, _ := os.ReadDir(filepath.Dir(path))
		if len(entries) != 1 {
			t.Errorf("expected temp files cleaned up, got %d entries", len(entries))
		}
		if got := quietStore(WithPersister(p)).State().Settings.WordsPerPoint; got != 25 {
			t.Errorf("expected 25 after reload, got %d", got)
		}
	})
}

func TestShouldStartFresh(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		unload time.Time
		want   bool
	}{
		{"never unloaded", time.Time{}, false},
		{"within grace", now.Add(-time.Second), true},
		{"after grace", now.Add(-5 * time.Second), false},
		{"clock skew", now.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldStartFresh(tt.unload, now, 2*time.Second); got != tt.want {
				t.Errorf("ShouldStartFresh() = %v, want %v", got, tt.want)
			}
		})
	}
}
