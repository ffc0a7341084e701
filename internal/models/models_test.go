package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestClampStep(t *testing.T) {
	for n := -3; n <= 9; n++ {
		got := ClampStep(n)
		want := n
		if want < 0 {
			want = 0
		}
		if want > 5 {
			want = 5
		}
		if int(got) != want {
			t.Errorf("ClampStep(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s := DefaultSettings()
		if s.Language.ID != "french" || s.SlideCount != 1 || s.WordsPerPoint != 20 {
			t.Errorf("unexpected defaults %+v", s)
		}
		if !s.BackgroundMusic || s.Voiceover || !s.AutomaticDuration {
			t.Errorf("unexpected default flags %+v", s)
		}
	})

	t.Run("clamps", func(t *testing.T) {
		tc := []struct {
			name string
			got  int
			want int
		}{
			{name: "slide count low", got: ClampSlideCount(0), want: 1},
			{name: "slide count high", got: ClampSlideCount(42), want: 10},
			{name: "slide count in range", got: ClampSlideCount(3), want: 3},
			{name: "words low", got: ClampWordsPerPoint(2), want: 10},
			{name: "words high", got: ClampWordsPerPoint(31), want: 30},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if tt.got != tt.want {
					t.Errorf("got %d, want %d", tt.got, tt.want)
				}
			})
		}
	})

	t.Run("LanguageByID", func(t *testing.T) {
		for _, in := range []string{"german", "de-DE", "de", " DE "} {
			l, ok := LanguageByID(in)
			if !ok || l.ID != "german" {
				t.Errorf("LanguageByID(%q) = %+v, %v", in, l, ok)
			}
		}
		if _, ok := LanguageByID("klingon"); ok {
			t.Error("expected unknown language to fail")
		}
	})
}

func TestPatches(t *testing.T) {
	t.Run("BulletPointPatch leaves nil fields", func(t *testing.T) {
		bp := BulletPoint{ID: "1", Text: "old", ImagePath: "a.jpg"}
		BulletPointPatch{Text: Ptr("new")}.Apply(&bp)
		if bp.Text != "new" || bp.ImagePath != "a.jpg" {
			t.Errorf("unexpected merge result %+v", bp)
		}
	})

	t.Run("SlidePatch merges image only", func(t *testing.T) {
		s := SlideItem{ID: "s", Text: "t", Image: "old", Duration: 5}
		SlidePatch{Image: Ptr("new")}.Apply(&s)
		if s.Image != "new" || s.Text != "t" || s.Duration != 5 {
			t.Errorf("unexpected merge result %+v", s)
		}
	})
}

func TestPlatforms(t *testing.T) {
	t.Run("closed set with metadata", func(t *testing.T) {
		want := map[Platform]int{Instagram: 2200, Facebook: 63206, LinkedIn: 3000, Twitter: 280}
		for _, p := range Platforms() {
			if p.Info().MaxLength != want[p] {
				t.Errorf("%s max length = %d, want %d", p, p.Info().MaxLength, want[p])
			}
		}
	})

	t.Run("ParsePlatform", func(t *testing.T) {
		if p, err := ParsePlatform("X"); err != nil || p != Twitter {
			t.Errorf("expected x alias for twitter, got %v %v", p, err)
		}
		if _, err := ParsePlatform("myspace"); err == nil {
			t.Error("expected unknown platform error")
		}
	})

	t.Run("OverLimit", func(t *testing.T) {
		post := SocialPost{Platform: Twitter, Caption: strings.Repeat("a", 281)}
		if !post.OverLimit() {
			t.Error("expected caption over twitter limit")
		}
		post.Caption = "short"
		if post.OverLimit() {
			t.Error("expected short caption within limit")
		}
	})

	t.Run("FullText", func(t *testing.T) {
		post := SocialPost{Caption: "c", CallToAction: "cta", Hashtags: []string{"#a", "#b"}}
		if got := post.FullText(); got != "c\n\ncta\n\n#a #b" {
			t.Errorf("unexpected full text %q", got)
		}
	})
}

func TestProjectState(t *testing.T) {
	t.Run("transient social fields are not serialized", func(t *testing.T) {
		s := NewProjectState()
		s.SocialGenerating = true
		s.SocialError = "boom"
		s.SocialPosts = map[Platform]SocialPost{Instagram: {Caption: "x"}}

		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		for _, key := range []string{"Social", "boom", "caption"} {
			if strings.Contains(string(data), key) {
				t.Errorf("serialized state should not contain %q: %s", key, data)
			}
		}
	})

	t.Run("Clone is deep", func(t *testing.T) {
		s := NewProjectState()
		s.BulletPoints = []BulletPoint{{ID: "1", Text: "a", Keywords: []string{"k"}}}
		s.Slides = []SlideItem{{ID: "s1", Text: "a"}}
		s.SelectedMusic = &MusicItem{ID: "m"}

		c := s.Clone()
		c.BulletPoints[0].Text = "changed"
		c.BulletPoints[0].Keywords[0] = "changed"
		c.Slides[0].Text = "changed"
		c.SelectedMusic.ID = "changed"

		if s.BulletPoints[0].Text != "a" || s.BulletPoints[0].Keywords[0] != "k" {
			t.Error("bullet points share memory with clone")
		}
		if s.Slides[0].Text != "a" {
			t.Error("slides share memory with clone")
		}
		if s.SelectedMusic.ID != "m" {
			t.Error("selected music shares memory with clone")
		}
	})

	t.Run("HasBaseImage", func(t *testing.T) {
		s := NewProjectState()
		s.BulletPoints = []BulletPoint{{ID: "1"}, {ID: "2"}}
		if s.HasBaseImage() {
			t.Error("expected no base image")
		}
		s.BulletPoints[1].ImagePath = "point_02.jpg"
		if !s.HasBaseImage() {
			t.Error("expected base image")
		}
	})

	t.Run("SortedPlatforms follows display order", func(t *testing.T) {
		s := NewProjectState()
		s.SocialPosts = map[Platform]SocialPost{Twitter: {}, Instagram: {}}
		got := s.SortedPlatforms()
		if len(got) != 2 || got[0] != Instagram || got[1] != Twitter {
			t.Errorf("unexpected order %v", got)
		}
	})
}
