package models

import (
	"maps"
	"slices"
)

// ProjectState is the aggregate root of a wizard session.
//
// Social* fields are transient: they are never serialized.
type ProjectState struct {
	Settings      ProjectSettings       `json:"settings"`
	ArticleData   ArticleData           `json:"articleData"`
	BulletPoints  []BulletPoint         `json:"bulletPoints"`
	Slides        []SlideItem           `json:"slides"`
	SelectedMusic *MusicItem            `json:"selectedMusic,omitempty"`
	SelectedVoice *VoiceOption          `json:"selectedVoice,omitempty"`
	Customization CustomizationSettings `json:"customization"`
	CurrentStep   Step                  `json:"currentStep"`
	AssetVersion  int64                 `json:"assetVersion"`

	SocialGenerating bool                    `json:"-"`
	SocialPosts      map[Platform]SocialPost `json:"-"`
	SocialPostID     int                     `json:"-"`
	SocialError      string                  `json:"-"`
}

// NewProjectState returns the empty state of a fresh project.
func NewProjectState() ProjectState {
	return ProjectState{
		Settings:     DefaultSettings(),
		BulletPoints: []BulletPoint{},
		Slides:       []SlideItem{},
		CurrentStep:  FirstStep,
	}
}

// Clone returns a deep copy that shares no slices, maps or pointers with s.
func (s ProjectState) Clone() ProjectState {
	c := s
	c.BulletPoints = make([]BulletPoint, len(s.BulletPoints))
	for i, bp := range s.BulletPoints {
		bp.Keywords = slices.Clone(bp.Keywords)
		c.BulletPoints[i] = bp
	}
	c.Slides = slices.Clone(s.Slides)
	if c.Slides == nil {
		c.Slides = []SlideItem{}
	}
	if s.SelectedMusic != nil {
		m := *s.SelectedMusic
		c.SelectedMusic = &m
	}
	if s.SelectedVoice != nil {
		v := *s.SelectedVoice
		c.SelectedVoice = &v
	}
	if s.SocialPosts != nil {
		c.SocialPosts = make(map[Platform]SocialPost, len(s.SocialPosts))
		for k, p := range s.SocialPosts {
			p.Hashtags = slices.Clone(p.Hashtags)
			c.SocialPosts[k] = p
		}
	}
	return c
}

// HasBaseImage reports whether any bullet point already has a generated or uploaded image.
func (s ProjectState) HasBaseImage() bool {
	return slices.ContainsFunc(s.BulletPoints, func(bp BulletPoint) bool { return bp.ImagePath != "" })
}

// BulletPoint looks up a bullet point by id.
func (s ProjectState) BulletPoint(id string) (BulletPoint, bool) {
	i := slices.IndexFunc(s.BulletPoints, func(bp BulletPoint) bool { return bp.ID == id })
	if i < 0 {
		return BulletPoint{}, false
	}
	return s.BulletPoints[i], true
}

// Slide looks up a slide by id and returns its index.
func (s ProjectState) Slide(id string) (SlideItem, int, bool) {
	i := slices.IndexFunc(s.Slides, func(sl SlideItem) bool { return sl.ID == id })
	if i < 0 {
		return SlideItem{}, -1, false
	}
	return s.Slides[i], i, true
}

// SortedPlatforms returns the platforms present in SocialPosts in display order.
func (s ProjectState) SortedPlatforms() []Platform {
	var out []Platform
	for _, p := range Platforms() {
		if _, ok := s.SocialPosts[p]; ok {
			out = append(out, p)
		}
	}
	for _, p := range slices.Sorted(maps.Keys(s.SocialPosts)) {
		if !p.Valid() {
			out = append(out, p)
		}
	}
	return out
}
