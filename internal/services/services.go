// package services defines the [Backend] interface for the article processing API
//
// Two transports implement it: [HTTPBackend] talks to the live service through [APIService],
// [MockBackend] returns deterministic fixtures. The transport is chosen once at startup so
// callers never branch on it.
package services

import (
	"context"

	"github.com/desertthunder/postx/internal/models"
)

// Backend is one method per backend capability.
type Backend interface {
	// ProcessArticle summarizes a URL or raw text into bullet points. Not idempotent.
	ProcessArticle(ctx context.Context, req ProcessArticleRequest) (*Article, error)
	GetArticle(ctx context.Context, articleID int) (*Article, error)
	ListArticles(ctx context.Context) ([]Article, error)

	UpdateBulletPoint(ctx context.Context, articleID int, bulletPointID, text string, keywords []string) (*models.BulletPoint, error)
	RegenerateBulletPoint(ctx context.Context, req RegenerateRequest) (*models.BulletPoint, error)
	RegenerateAllBulletPoints(ctx context.Context, req RegenerateAllRequest) ([]models.BulletPoint, error)
	ExtractKeywords(ctx context.Context, articleID int) ([]string, error)
	UploadBulletPointImage(ctx context.Context, articleID int, bulletPointID, file string) (*UploadResult, error)
	DeleteBulletPointImage(ctx context.Context, articleID int, bulletPointID string) error

	// GenerateImage runs under the longer image timeout.
	GenerateImage(ctx context.Context, text, bulletPointID string) (*GeneratedImage, error)
	UploadImage(ctx context.Context, file string, purpose UploadPurpose) (*UploadResult, error)

	CurrentAsset(ctx context.Context, kind AssetKind) (*AssetInfo, error)
	UploadAsset(ctx context.Context, kind AssetKind, file string) (*AssetInfo, error)
	ApplyAsset(ctx context.Context, kind AssetKind, articleID int, req ApplyRequest) (*ApplyResult, error)
	RemoveAsset(ctx context.Context, kind AssetKind) error

	GenerateVideo(ctx context.Context, req VideoRequest) (*Video, error)
	GetVideo(ctx context.Context, videoID int) (*Video, error)
	VideoDownloadURL(videoID int) string

	MusicCategories(ctx context.Context) ([]string, error)
	SearchMusic(ctx context.Context, q MusicQuery) (*MusicPage, error)
	DownloadTrack(ctx context.Context, trackID string) error
	UploadCustomAudio(ctx context.Context, file string) (*UploadResult, error)

	GenerateSocialPosts(ctx context.Context, req SocialRequest) (*SocialJob, error)
	SocialPostStatus(ctx context.Context, jobID int) (*SocialJob, error)
	DownloadSocialPostImage(ctx context.Context, jobID int, platform models.Platform) ([]byte, error)
	Platforms(ctx context.Context) (*PlatformsResponse, error)

	// ClearCache asks the backend to drop cached assets. Callers treat it as best effort.
	ClearCache(ctx context.Context) error

	// Name identifies the transport ("http" or "mock").
	Name() string
}

// ProcessArticleRequest is the body of POST /articles/process/.
type ProcessArticleRequest struct {
	URL           string `json:"url,omitempty"`
	Text          string `json:"text,omitempty"`
	SlideCount    int    `json:"slide_count"`
	WordsPerPoint int    `json:"words_per_point"`
	Language      string `json:"language"`
}

// Article is a processed article with its bullet points in backend order.
type Article struct {
	ID           int                  `json:"id"`
	URL          string               `json:"url,omitempty"`
	Title        string               `json:"title"`
	Summary      string               `json:"summary"`
	BulletPoints []models.BulletPoint `json:"bullet_points"`
}

// RegenerateRequest is the body of POST .../bullet-points/{id}/regenerate/.
type RegenerateRequest struct {
	ArticleID     int    `json:"article_id"`
	BulletPointID string `json:"-"`
	Context       string `json:"context,omitempty"`
	Language      string `json:"language"`
	WordsPerPoint int    `json:"words_per_point"`
}

// RegenerateAllRequest is the body of POST .../bullet-points/regenerate-all/.
type RegenerateAllRequest struct {
	ArticleID     int    `json:"article_id"`
	SlideCount    int    `json:"slide_count"`
	WordsPerPoint int    `json:"words_per_point"`
	Language      string `json:"language"`
}

// GeneratedImage is the response of POST /images/generate/. ImageURL is backend relative.
type GeneratedImage struct {
	ImageURL string `json:"image_url"`
	Message  string `json:"message,omitempty"`
}

// UploadPurpose tags a generic image upload.
type UploadPurpose string

const (
	PurposeLogo  UploadPurpose = "logo"
	PurposeOutro UploadPurpose = "outro"
	PurposeFrame UploadPurpose = "frame"
	PurposeSlide UploadPurpose = "slide"
)

// UploadResult covers the upload endpoints; each fills a subset of the fields.
type UploadResult struct {
	Message   string `json:"message,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
	FilePath  string `json:"file_path,omitempty"`
	FileURL   string `json:"file_url,omitempty"`
	FileID    string `json:"file_id,omitempty"`
}

// AssetKind selects the logo or frame endpoint family.
type AssetKind string

const (
	AssetLogo  AssetKind = "logo"
	AssetFrame AssetKind = "frame"
)

// AssetInfo describes the currently uploaded logo or frame.
type AssetInfo struct {
	Present bool   `json:"present"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Message string `json:"message,omitempty"`
}

// Position is where a logo or frame is composited.
type Position string

const (
	TopRight     Position = "top_right"
	TopLeft      Position = "top_left"
	BottomRight  Position = "bottom_right"
	BottomLeft   Position = "bottom_left"
	Center       Position = "center"
	CenterCustom Position = "center_custom"
)

// Default logo/frame size in pixels when the original size is not kept.
const (
	DefaultWidth  = 150
	DefaultHeight = 70
)

// Positions lists every accepted position.
func Positions() []Position {
	return []Position{TopRight, TopLeft, BottomRight, BottomLeft, Center, CenterCustom}
}

// ApplyRequest is the body of POST /{logo|frame}/apply/{articleId}/.
//
// Nil Width/Height keep the asset's original size.
type ApplyRequest struct {
	ArticleID       int      `json:"article_id"`
	BulletPointText *string  `json:"bullet_point_text,omitempty"`
	Position        Position `json:"logo_position"`
	Width           *int     `json:"logo_size_width"`
	Height          *int     `json:"logo_size_height"`
}

// ApplyResult is the composited image path returned by an apply call.
type ApplyResult struct {
	ImagePath string `json:"image_path"`
	Message   string `json:"message,omitempty"`
}

// VideoRequest is the client-side view of a video job; the transport maps it onto backend keys.
type VideoRequest struct {
	ArticleID         int
	BulletPoints      []models.BulletPoint
	Language          string
	Voiceover         bool
	VoiceID           string
	Music             bool
	MusicID           string
	AutomaticDuration bool
	FrameDurations    []int
	UseExistingImages bool
}

// Video is a video generation job.
type Video struct {
	ID          int    `json:"id"`
	Status      string `json:"status"`
	DownloadURL string `json:"download_url,omitempty"`
}

// MusicQuery is the body of POST /music/search/.
type MusicQuery struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	Provider string `json:"provider"`
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
}

// MusicPage is one page of music search results.
type MusicPage struct {
	Tracks  []models.MusicItem `json:"tracks"`
	Total   int                `json:"total"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
}

// SocialRequest is the body of POST /social-posts/generate/.
type SocialRequest struct {
	ArticleID           int                  `json:"article_id"`
	BulletPoints        []models.BulletPoint `json:"bullet_points"`
	Platforms           []models.Platform    `json:"platforms"`
	Language            string               `json:"language"`
	SkipImageGeneration bool                 `json:"skip_image_generation,omitempty"`
}

// SocialJob is a social post generation job and, once completed, its posts.
type SocialJob struct {
	ID        int                                   `json:"id"`
	ArticleID int                                   `json:"article_id,omitempty"`
	Status    models.SocialStatus                   `json:"status"`
	Posts     map[models.Platform]models.SocialPost `json:"posts,omitempty"`
	Error     string                                `json:"error,omitempty"`
}

// PlatformConfig mirrors the backend's per-platform limits.
type PlatformConfig struct {
	MaxCaptionLength int `json:"max_caption_length"`
	MaxHashtags      int `json:"max_hashtags"`
}

// PlatformsResponse is the response of GET /platforms/.
type PlatformsResponse struct {
	Platforms []models.Platform                  `json:"platforms"`
	Configs   map[models.Platform]PlatformConfig `json:"configs"`
}

// PlatformDefaults builds a [PlatformsResponse] from the static platform metadata.
func PlatformDefaults() *PlatformsResponse {
	resp := &PlatformsResponse{Configs: map[models.Platform]PlatformConfig{}}
	for _, p := range models.Platforms() {
		info := p.Info()
		resp.Platforms = append(resp.Platforms, p)
		resp.Configs[p] = PlatformConfig{MaxCaptionLength: info.MaxLength, MaxHashtags: info.MaxHashtags}
	}
	return resp
}
