package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/postx/internal/models"
)

// HTTPBackend implements [Backend] against the live service.
type HTTPBackend struct {
	api *APIService
}

var _ Backend = (*HTTPBackend)(nil)

// NewHTTPBackend wraps api. A nil api uses the default base URL and client.
func NewHTTPBackend(api *APIService) *HTTPBackend {
	if api == nil {
		api = NewAPIService("", nil)
	}
	return &HTTPBackend{api: api}
}

func (h *HTTPBackend) Name() string { return "http" }

// API exposes the underlying [APIService] for raw requests.
func (h *HTTPBackend) API() *APIService { return h.api }

// flexID accepts a JSON number or string and keeps its decimal text.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type wireBulletPoint struct {
	ID        flexID   `json:"id"`
	Text      string   `json:"text"`
	ImagePath string   `json:"image_path,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

func (w wireBulletPoint) model() models.BulletPoint {
	return models.BulletPoint{ID: string(w.ID), Text: w.Text, ImagePath: w.ImagePath, Keywords: w.Keywords}
}

type wireArticle struct {
	ID           int               `json:"id"`
	URL          string            `json:"url,omitempty"`
	Title        string            `json:"title"`
	Summary      string            `json:"summary"`
	BulletPoints []wireBulletPoint `json:"bullet_points"`
}

func (w wireArticle) model() *Article {
	a := &Article{ID: w.ID, URL: w.URL, Title: w.Title, Summary: w.Summary, BulletPoints: make([]models.BulletPoint, 0, len(w.BulletPoints))}
	for _, bp := range w.BulletPoints {
		a.BulletPoints = append(a.BulletPoints, bp.model())
	}
	return a
}

// outgoingBulletPoint is the shape the backend expects when bullet points are sent back.
type outgoingBulletPoint struct {
	ID        any    `json:"id"`
	Text      string `json:"text"`
	ImagePath string `json:"image_path,omitempty"`
}

func outgoing(bps []models.BulletPoint) []outgoingBulletPoint {
	out := make([]outgoingBulletPoint, len(bps))
	for i, bp := range bps {
		out[i] = outgoingBulletPoint{ID: numericOrString(bp.ID), Text: bp.Text, ImagePath: bp.ImagePath}
	}
	return out
}

// numericOrString sends numeric ids as JSON numbers.
func numericOrString(id string) any {
	if n, err := strconv.Atoi(id); err == nil {
		return n
	}
	return id
}

func bulletPointPath(articleID int, bulletPointID, suffix string) string {
	return fmt.Sprintf("/articles/%d/bullet-points/%s/%s", articleID, url.PathEscape(bulletPointID), suffix)
}

func (h *HTTPBackend) ProcessArticle(ctx context.Context, req ProcessArticleRequest) (*Article, error) {
	var w wireArticle
	if err := h.api.Do(ctx, Request{Method: http.MethodPost, Path: "/articles/process/", Body: req}, &w); err != nil {
		return nil, err
	}
	return w.model(), nil
}

func (h *HTTPBackend) GetArticle(ctx context.Context, articleID int) (*Article, error) {
	var w wireArticle
	if err := h.api.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/articles/%d/", articleID)}, &w); err != nil {
		return nil, err
	}
	return w.model(), nil
}

func (h *HTTPBackend) ListArticles(ctx context.Context) ([]Article, error) {
	var ws []wireArticle
	if err := h.api.Do(ctx, Request{Method: http.MethodGet, Path: "/articles/"}, &ws); err != nil {
		return nil, err
	}
	out := make([]Article, len(ws))
	for i, w := range ws {
		out[i] = *w.model()
	}
	return out, nil
}

func (h *HTTPBackend) UpdateBulletPoint(ctx context.Context, articleID int, bulletPointID, text string, keywords []string) (*models.BulletPoint, error) {
	if keywords == nil {
		keywords = []string{}
	}
	body := map[string]any{"text": text, "keywords": keywords}
	var w wireBulletPoint
	if err := h.api.Do(ctx, Request{Method: http.MethodPut, Path: bulletPointPath(articleID, bulletPointID, ""), Body: body}, &w); err != nil {
		return nil, err
	}
	bp := w.model()
	if bp.ID == "" {
		bp.ID = bulletPointID
	}
	return &bp, nil
}

func (h *HTTPBackend) RegenerateBulletPoint(ctx context.Context, req RegenerateRequest) (*models.BulletPoint, error) {
	body := struct {
		RegenerateRequest
		BulletPointID any `json:"bullet_point_id"`
	}{req, numericOrString(req.BulletPointID)}

	var w wireBulletPoint
	if err := h.api.Do(ctx, Request{Method: http.MethodPost, Path: bulletPointPath(req.ArticleID, req.BulletPointID, "regenerate/"), Body: body}, &w); err != nil {
		return nil, err
	}
	bp := w.model()
	if bp.ID == "" {
		bp.ID = req.BulletPointID
	}
	return &bp, nil
}

func (h *HTTPBackend) RegenerateAllBulletPoints(ctx context.Context, req RegenerateAllRequest) ([]models.BulletPoint, error) {
	var resp struct {
		BulletPoints []wireBulletPoint `json:"bullet_points"`
	}
	path := fmt.Sprintf("/articles/%d/bullet-points/regenerate-all/", req.ArticleID)
	if err := h.api.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: req, Long: true}, &resp); err != nil {
		return nil, err
	}
	out := make([]models.BulletPoint, len(resp.BulletPoints))
	for i, w := range resp.BulletPoints {
		out[i] = w.model()
	}
	return out, nil
}

func (h *HTTPBackend) ExtractKeywords(ctx context.Context, articleID int) ([]string, error) {
	var resp struct {
		Keywords []string `json:"keywords"`
	}
	if err := h.api.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/articles/%d/keywords/", articleID)}, &resp); err != nil {
		return nil, err
	}
	return resp.Keywords, nil
}

func (h *HTTPBackend) UploadBulletPointImage(ctx context.Context, articleID int, bulletPointID, file string) (*UploadResult, error) {
	var res UploadResult
	form := &MultipartForm{FilePath: file}
	if err := h.api.Do(ctx, Request{Method: http.MethodPost, Path: bulletPointPath(articleID, bulletPointID, "upload-image/"), Form: form, Long: true}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTPBackend) DeleteBulletPointImage(ctx context.Context, articleID int, bulletPointID string) error {
	return h.api.Do(ctx, Request{Method: http.MethodDelete, Path: bulletPointPath(articleID, bulletPointID, "delete-image/")}, nil)
}

func (h *HTTPBackend) GenerateImage(ctx context.Context, text, bulletPointID string) (*GeneratedImage, error) {
	body := map[string]any{"text": text, "bullet_point_id": numericOrString(bulletPointID)}
	var res GeneratedImage
	if err := h.api.Do(ctx, Request{Method: http.MethodPost, Path: "/images/generate/", Body: body, Long: true}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTPBackend) UploadImage(ctx context.Context, file string, purpose UploadPurpose) (*UploadResult, error) {
	var res UploadResult
	form := &MultipartForm{FilePath: file, Fields: map[string]string{"purpose": string(purpose)}}
	if err := h.api.Do(ctx, Request{Method: http.MethodPost, Path: "/uploads/image/", Form: form, Long: true}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// wireAsset covers both {has_logo, logo_size} and {has_frame, frame_size}.
type wireAsset struct {
	HasLogo   bool   `json:"has_logo"`
	LogoSize  []int  `json:"logo_size"`
	HasFrame  bool   `json:"has_frame"`
	FrameSize []int  `json:"frame_size"`
	Message   string `json:"message"`
}

func (w wireAsset) model(kind AssetKind) *AssetInfo {
	info := &AssetInfo{Message: w.Message}
	size := w.LogoSize
	info.Present = w.HasLogo
	if kind == AssetFrame {
		size = w.FrameSize
		info.Present = w.HasFrame
	}
	if len(size) == 2 {
		info.Width, info.Height = size[0], size[1]
	}
	return info
}

func (h *HTTPBackend) CurrentAsset(ctx context.Context, kind AssetKind) (*AssetInfo, error) {
	var w wireAsset
	if err := h.api.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/%s/current/", kind)}, &w); err != nil {
		return nil, err
	}
	return w.model(kind), nil
}

// UploadAsset uploads a logo or frame and returns the refreshed current asset.
func (h *HTTPBackend) UploadAsset(ctx context.Context, kind AssetKind, file string) (*AssetInfo, error) {
	form := &MultipartForm{FilePath: file}
	if err := h.api.Do(ctx, Request{Method: http.MethodPost, Path: fmt.Sprintf("/%s/upload/", kind), Form: form}, nil); err != nil {
		return nil, err
	}
	return h.CurrentAsset(ctx, kind)
}

func (h *HTTPBackend) ApplyAsset(ctx context.Context, kind AssetKind, articleID int, req ApplyRequest) (*ApplyResult, error) {
	req.ArticleID = articleID
	if kind == AssetLogo {
		req.BulletPointText = nil
	}
	var res ApplyResult
	if err := h.api.Do(ctx, Request{Method: http.MethodPost, Path: fmt.Sprintf("/%s/apply/%d/", kind, articleID), Body: req, Long: true}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTPBackend) RemoveAsset(ctx context.Context, kind AssetKind) error {
	return h.api.Do(ctx, Request{Method: http.MethodDelete, Path: fmt.Sprintf("/%s/remove/", kind)}, nil)
}

func (h *HTTPBackend) GenerateVideo(ctx context.Context, req VideoRequest) (*Video, error) {
	language := req.Language
	if language == "" {
		language = "en"
	}
	body := map[string]any{
		"article_id":      req.ArticleID,
		"bullet_points":   outgoing(req.BulletPoints),
		"language":        language,
		"add_voiceover":   req.Voiceover,
		"voice_id":        req.VoiceID,
		"add_music":       req.Music,
		"music_id":        req.MusicID,
		"auto_duration":   req.AutomaticDuration,
		"frame_durations": req.FrameDurations,
		"skip_assets":     req.UseExistingImages,
	}
	var v Video
	if err := h.api.Do(ctx, Request{Method: http.MethodPost, Path: "/videos/generate/", Body: body, Long: true}, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (h *HTTPBackend) GetVideo(ctx context.Context, videoID int) (*Video, error) {
	var v Video
	if err := h.api.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/videos/%d/", videoID)}, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (h *HTTPBackend) VideoDownloadURL(videoID int) string {
	return h.api.URL(fmt.Sprintf("/videos/%d/download/", videoID))
}

func (h *HTTPBackend) MusicCategories(ctx context.Context) ([]string, error) {
	var resp struct {
		Categories []string `json:"categories"`
	}
	if err := h.api.Do(ctx, Request{Method: http.MethodGet, Path: "/music/categories/"}, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

type wireTrack struct {
	ID       flexID `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	URL      string `json:"url"`
	Duration int    `json:"duration"`
	Artist   string `json:"artist"`
}

func (h *HTTPBackend) SearchMusic(ctx context.Context, q MusicQuery) (*MusicPage, error) {
	q = q.withDefaults()
	var resp struct {
		Tracks  []wireTrack `json:"tracks"`
		Total   int         `json:"total"`
		Page    int         `json:"page"`
		PerPage int         `json:"per_page"`
	}
	if err := h.api.Do(ctx, Request{Method: http.MethodPost, Path: "/music/search/", Body: q}, &resp); err != nil {
		return nil, err
	}
	page := &MusicPage{Total: resp.Total, Page: resp.Page, PerPage: resp.PerPage, Tracks: make([]models.MusicItem, len(resp.Tracks))}
	for i, t := range resp.Tracks {
		page.Tracks[i] = models.MusicItem{ID: string(t.ID), Name: t.Title, Category: t.Category, Src: t.URL, Duration: t.Duration, Artist: t.Artist}
	}
	return page, nil
}

func (q MusicQuery) withDefaults() MusicQuery {
	if q.Provider == "" {
		q.Provider = "jamendo"
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = 10
	}
	return q
}

func (h *HTTPBackend) DownloadTrack(ctx context.Context, trackID string) error {
	return h.api.Do(ctx, Request{Method: http.MethodPost, Path: "/music/download/", Body: map[string]string{"track_id": trackID}, Long: true}, nil)
}

func (h *HTTPBackend) UploadCustomAudio(ctx context.Context, file string) (*UploadResult, error) {
	form := &MultipartForm{
		FilePath: file,
		Fields:   map[string]string{"type": "custom_audio", "filename": "background.mp3"},
	}
	var res UploadResult
	if err := h.api.Do(ctx, Request{Method: http.MethodPost, Path: "/music/upload-custom/", Form: form, Long: true}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTPBackend) GenerateSocialPosts(ctx context.Context, req SocialRequest) (*SocialJob, error) {
	body := struct {
		SocialRequest
		BulletPoints []outgoingBulletPoint `json:"bullet_points"`
	}{req, outgoing(req.BulletPoints)}

	var job SocialJob
	if err := h.api.Do(ctx, Request{Method: http.MethodPost, Path: "/social-posts/generate/", Body: body}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (h *HTTPBackend) SocialPostStatus(ctx context.Context, jobID int) (*SocialJob, error) {
	var job SocialJob
	if err := h.api.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/social-posts/%d/", jobID)}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (h *HTTPBackend) DownloadSocialPostImage(ctx context.Context, jobID int, platform models.Platform) ([]byte, error) {
	return h.api.Download(ctx, fmt.Sprintf("/social-posts/%d/download/%s/", jobID, platform))
}

func (h *HTTPBackend) Platforms(ctx context.Context) (*PlatformsResponse, error) {
	var resp PlatformsResponse
	if err := h.api.Do(ctx, Request{Method: http.MethodGet, Path: "/platforms/"}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPBackend) ClearCache(ctx context.Context) error {
	return h.api.Do(ctx, Request{Method: http.MethodPost, Path: "/cache/clear/"}, nil)
}
