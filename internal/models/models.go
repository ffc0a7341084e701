// package models defines the data model of an article-to-post project
//
// Everything here is plain data: the store owns instances, the services package maps
// backend payloads onto them and the UI renders them.
package models

import "fmt"

// Step is an index into the fixed wizard sequence.
type Step int

const (
	StepArticleInput Step = iota
	StepBulletPoints
	StepSlidePreview
	StepLogoUpload
	StepFrameUpload
	StepSocialPosts
)

const (
	FirstStep = StepArticleInput
	LastStep  = StepSocialPosts
)

// Steps lists every wizard step in order.
func Steps() []Step {
	return []Step{StepArticleInput, StepBulletPoints, StepSlidePreview, StepLogoUpload, StepFrameUpload, StepSocialPosts}
}

// ClampStep forces n into [FirstStep, LastStep].
func ClampStep(n int) Step {
	if n < int(FirstStep) {
		return FirstStep
	}
	if n > int(LastStep) {
		return LastStep
	}
	return Step(n)
}

func (s Step) String() string {
	switch s {
	case StepArticleInput:
		return "article_input"
	case StepBulletPoints:
		return "bullet_points"
	case StepSlidePreview:
		return "slide_preview"
	case StepLogoUpload:
		return "logo_upload"
	case StepFrameUpload:
		return "frame_upload"
	case StepSocialPosts:
		return "social_posts"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// MessageID is the translation key of the step's title.
func (s Step) MessageID() string {
	return "step_" + s.String()
}
