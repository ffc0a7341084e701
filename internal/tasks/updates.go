package tasks

import (
	"fmt"

	"github.com/desertthunder/postx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ProcessArticle Phase = iota
	RegenerateBullets
	GenerateSlides
	UploadImage
	ApplyAsset
	GenerateVideo
	RequestSocial
	PollSocial
	DownloadImage
)

func (p Phase) String() string {
	switch p {
	case ProcessArticle:
		return "process_article"
	case RegenerateBullets:
		return "regenerate_bullets"
	case GenerateSlides:
		return "generate_slides"
	case UploadImage:
		return "upload_image"
	case ApplyAsset:
		return "apply_asset"
	case GenerateVideo:
		return "generate_video"
	case RequestSocial:
		return "request_social"
	case PollSocial:
		return "poll_social"
	case DownloadImage:
		return "download_image"
	default:
		return ""
	}
}

func processingArticleUpdate(source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessArticle,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Processing article (%s)...", source),
	}
}

func articleProcessedUpdate(a models.ArticleData, points int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessArticle,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Article processed: %s (%d bullet points)", a.Title, points),
		Data:    a,
	}
}

func regeneratingBulletsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RegenerateBullets,
		Step:    0,
		Total:   count,
		Message: fmt.Sprintf("Regenerating %d bullet points...", count),
	}
}

func slideQueuedUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GenerateSlides,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Preparing slide %d of %d...", step, total),
	}
}

func slideCompletedUpdate(step, total int, s models.SlideItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GenerateSlides,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Slide ready (%d/%d)", step, total),
		Data:    s,
	}
}

func slideFallbackUpdate(step, total int, bulletPointID string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GenerateSlides,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Image generation failed for bullet point %s, using placeholder: %v", bulletPointID, err),
	}
}

func uploadingImageUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadImage,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Uploading %s...", name),
	}
}

func applyingAssetUpdate(kind string, images int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyAsset,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Applying %s to %d images...", kind, images),
	}
}

func generatingVideoUpdate(slides int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GenerateVideo,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Generating video from %d slides...", slides),
	}
}

func requestingSocialUpdate(platforms []models.Platform) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RequestSocial,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Requesting posts for %d platforms...", len(platforms)),
		Data:    platforms,
	}
}

func pollingSocialUpdate(attempt, maxAttempts, jobID int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PollSocial,
		Step:    attempt,
		Total:   maxAttempts,
		Message: fmt.Sprintf("Waiting for job %d (attempt %d)...", jobID, attempt),
	}
}

func socialCompletedUpdate(attempt, maxAttempts int, posts map[models.Platform]models.SocialPost) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PollSocial,
		Step:    attempt,
		Total:   maxAttempts,
		Message: fmt.Sprintf("Generated %d posts", len(posts)),
		Data:    posts,
	}
}

func downloadingImageUpdate(platform models.Platform) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadImage,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Downloading %s image...", platform),
	}
}
