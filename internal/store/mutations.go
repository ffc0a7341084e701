package store

import (
	"maps"

	"github.com/desertthunder/postx/internal/models"
)

// Mutation changes one slice of the project state in place.
type Mutation func(*models.ProjectState)

func SetSettings(settings models.ProjectSettings) Mutation {
	return func(s *models.ProjectState) {
		settings.SlideCount = models.ClampSlideCount(settings.SlideCount)
		settings.WordsPerPoint = models.ClampWordsPerPoint(settings.WordsPerPoint)
		s.Settings = settings
	}
}

func SetLanguage(lang models.Language) Mutation {
	return func(s *models.ProjectState) { s.Settings.Language = lang }
}

func SetSlideCount(n int) Mutation {
	return func(s *models.ProjectState) { s.Settings.SlideCount = models.ClampSlideCount(n) }
}

func SetWordsPerPoint(n int) Mutation {
	return func(s *models.ProjectState) { s.Settings.WordsPerPoint = models.ClampWordsPerPoint(n) }
}

func SetArticleData(a models.ArticleData) Mutation {
	return func(s *models.ProjectState) { s.ArticleData = a }
}

func SetBulletPoints(bps []models.BulletPoint) Mutation {
	return func(s *models.ProjectState) {
		s.BulletPoints = make([]models.BulletPoint, len(bps))
		for i, bp := range bps {
			bp.Keywords = append([]string(nil), bp.Keywords...)
			s.BulletPoints[i] = bp
		}
	}
}

// UpdateBulletPoint merges patch into the bullet point with id. Unknown ids are ignored.
func UpdateBulletPoint(id string, patch models.BulletPointPatch) Mutation {
	return func(s *models.ProjectState) {
		for i := range s.BulletPoints {
			if s.BulletPoints[i].ID == id {
				patch.Apply(&s.BulletPoints[i])
				return
			}
		}
	}
}

func UpdateBulletPointImage(id, imagePath string) Mutation {
	return UpdateBulletPoint(id, models.BulletPointPatch{ImagePath: &imagePath})
}

func SetSlides(slides []models.SlideItem) Mutation {
	return func(s *models.ProjectState) { s.Slides = append([]models.SlideItem{}, slides...) }
}

// UpdateSlide merges patch into the slide with id. Unknown ids are ignored.
func UpdateSlide(id string, patch models.SlidePatch) Mutation {
	return func(s *models.ProjectState) {
		for i := range s.Slides {
			if s.Slides[i].ID == id {
				patch.Apply(&s.Slides[i])
				return
			}
		}
	}
}

func SetSelectedMusic(m *models.MusicItem) Mutation {
	return func(s *models.ProjectState) {
		if m == nil {
			s.SelectedMusic = nil
			return
		}
		c := *m
		s.SelectedMusic = &c
	}
}

func SetSelectedVoice(v *models.VoiceOption) Mutation {
	return func(s *models.ProjectState) {
		if v == nil {
			s.SelectedVoice = nil
			return
		}
		c := *v
		s.SelectedVoice = &c
	}
}

func SetCustomization(c models.CustomizationSettings) Mutation {
	return func(s *models.ProjectState) { s.Customization = c }
}

// SetSocialGenerating marks a social job in flight. Starting clears the previous error.
func SetSocialGenerating(generating bool) Mutation {
	return func(s *models.ProjectState) {
		s.SocialGenerating = generating
		if generating {
			s.SocialError = ""
		}
	}
}

// SetSocialPosts stores a completed job's posts and ends generation.
func SetSocialPosts(posts map[models.Platform]models.SocialPost, jobID int) Mutation {
	return func(s *models.ProjectState) {
		s.SocialPosts = maps.Clone(posts)
		s.SocialPostID = jobID
		s.SocialGenerating = false
		s.SocialError = ""
	}
}

// SetSocialError records a failure and ends generation.
func SetSocialError(msg string) Mutation {
	return func(s *models.ProjectState) {
		s.SocialError = msg
		s.SocialGenerating = false
	}
}

// BumpAssetVersion moves AssetVersion forward to v, or by one when v is not newer.
func BumpAssetVersion(v int64) Mutation {
	return func(s *models.ProjectState) {
		if v > s.AssetVersion {
			s.AssetVersion = v
			return
		}
		s.AssetVersion++
	}
}

func NextStep() Mutation {
	return func(s *models.ProjectState) { s.CurrentStep = models.ClampStep(int(s.CurrentStep) + 1) }
}

func PrevStep() Mutation {
	return func(s *models.ProjectState) { s.CurrentStep = models.ClampStep(int(s.CurrentStep) - 1) }
}

func GoToStep(n int) Mutation {
	return func(s *models.ProjectState) { s.CurrentStep = models.ClampStep(n) }
}

// Reset returns every field to its default.
func Reset() Mutation {
	return func(s *models.ProjectState) { *s = models.NewProjectState() }
}
