package models

// DefaultSlideDuration is the display time of a new slide in seconds.
const DefaultSlideDuration = 5

// ArticleData is the processed source article. ID 0 means the backend has not assigned one yet.
type ArticleData struct {
	ID      int    `json:"id,omitempty"`
	URL     string `json:"url,omitempty"`
	Text    string `json:"text,omitempty"`
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// HasID reports whether the backend article resource exists.
func (a ArticleData) HasID() bool { return a.ID > 0 }

// BulletPoint is one extracted key point. ID is the decimal form of the backend id.
type BulletPoint struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	ImagePath string   `json:"image_path,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// BulletPointPatch carries the fields to merge into a [BulletPoint]; nil fields are left alone.
type BulletPointPatch struct {
	Text      *string
	ImagePath *string
	Keywords  []string
}

// Apply merges p into bp.
func (p BulletPointPatch) Apply(bp *BulletPoint) {
	if p.Text != nil {
		bp.Text = *p.Text
	}
	if p.ImagePath != nil {
		bp.ImagePath = *p.ImagePath
	}
	if p.Keywords != nil {
		bp.Keywords = append([]string(nil), p.Keywords...)
	}
}

// SlideItem pairs a bullet point's text with a resolved image URL.
type SlideItem struct {
	ID            string `json:"id"`
	BulletPointID string `json:"bulletPointId"`
	Text          string `json:"text"`
	Image         string `json:"image"`
	Duration      int    `json:"duration"`
}

// SlidePatch carries the fields to merge into a [SlideItem]; nil fields are left alone.
type SlidePatch struct {
	Text     *string
	Image    *string
	Duration *int
}

// Apply merges p into s.
func (p SlidePatch) Apply(s *SlideItem) {
	if p.Text != nil {
		s.Text = *p.Text
	}
	if p.Image != nil {
		s.Image = *p.Image
	}
	if p.Duration != nil {
		s.Duration = *p.Duration
	}
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }
