package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/services"
)

// maxUploadSize bounds multipart bodies.
const maxUploadSize = 32 << 20

// BackendHandler exposes a [services.Backend] over the same routes [services.HTTPBackend] calls.
type BackendHandler struct {
	backend   services.Backend
	prefix    string
	uploadDir string
	logger    *log.Logger
	mux       *http.ServeMux
	routes    []string

	placeholderOnce sync.Once
	placeholder     []byte
}

// BackendOpts configures a [BackendHandler].
type BackendOpts struct {
	// Prefix is prepended to every API route, e.g. "/api". Static files are always under /static/.
	Prefix string
	// UploadDir receives multipart uploads. Defaults to the OS temp dir.
	UploadDir string
	Logger    *log.Logger
}

// NewBackendHandler builds the handler and its route table.
func NewBackendHandler(backend services.Backend, opts BackendOpts) *BackendHandler {
	if opts.UploadDir == "" {
		opts.UploadDir = os.TempDir()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	h := &BackendHandler{
		backend:   backend,
		prefix:    opts.Prefix,
		uploadDir: opts.UploadDir,
		logger:    opts.Logger,
		mux:       http.NewServeMux(),
	}

	h.route("POST", "/articles/process/", h.processArticle)
	h.route("GET", "/articles/", h.listArticles)
	h.route("GET", "/articles/{id}/", h.getArticle)
	h.route("GET", "/articles/{id}/keywords/", h.keywords)
	h.route("PUT", "/articles/{id}/bullet-points/{bp}/", h.updateBulletPoint)
	h.route("POST", "/articles/{id}/bullet-points/{bp}/regenerate/", h.regenerateBulletPoint)
	h.route("POST", "/articles/{id}/bullet-points/regenerate-all/", h.regenerateAll)
	h.route("POST", "/articles/{id}/bullet-points/{bp}/upload-image/", h.uploadBulletPointImage)
	h.route("DELETE", "/articles/{id}/bullet-points/{bp}/delete-image/", h.deleteBulletPointImage)

	h.route("POST", "/images/generate/", h.generateImage)
	h.route("POST", "/uploads/image/", h.uploadImage)

	for _, kind := range []services.AssetKind{services.AssetLogo, services.AssetFrame} {
		h.route("GET", fmt.Sprintf("/%s/current/", kind), h.currentAsset(kind))
		h.route("POST", fmt.Sprintf("/%s/upload/", kind), h.uploadAsset(kind))
		h.route("POST", fmt.Sprintf("/%s/apply/{id}/", kind), h.applyAsset(kind))
		h.route("DELETE", fmt.Sprintf("/%s/remove/", kind), h.removeAsset(kind))
	}

	h.route("POST", "/videos/generate/", h.generateVideo)
	h.route("GET", "/videos/{id}/", h.getVideo)

	h.route("GET", "/music/categories/", h.musicCategories)
	h.route("POST", "/music/search/", h.searchMusic)
	h.route("POST", "/music/download/", h.downloadTrack)
	h.route("POST", "/music/upload-custom/", h.uploadCustomAudio)

	h.route("POST", "/social-posts/generate/", h.generateSocialPosts)
	h.route("GET", "/social-posts/{id}/", h.socialPostStatus)
	h.route("GET", "/social-posts/{id}/download/{platform}/", h.downloadSocialPostImage)
	h.route("GET", "/platforms/", h.platforms)
	h.route("POST", "/cache/clear/", h.clearCache)

	h.routes = append(h.routes, "GET /static/")
	h.mux.HandleFunc("GET /static/", h.static)
	return h
}

// route registers an exact-match pattern; {$} keeps trailing-slash paths from matching subtrees.
func (h *BackendHandler) route(method, path string, fn http.HandlerFunc) {
	pattern := method + " " + h.prefix + path + "{$}"
	h.routes = append(h.routes, pattern)
	h.mux.HandleFunc(pattern, fn)
}

// Routes implements [Handler].
func (h *BackendHandler) Routes() []string { return h.routes }

func (h *BackendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// fail maps backend errors onto the status and message the HTTP transport decodes.
func (h *BackendHandler) fail(w http.ResponseWriter, err error) {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) && apiErr.Kind == services.KindServer && apiErr.Status > 0 {
		writeJSON(w, apiErr.Status, map[string]string{"error": apiErr.Message})
		return
	}
	h.logger.Error("backend call failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return n, true
}

// saveUpload stores the "file" part in the upload dir and returns its path.
func (h *BackendHandler) saveUpload(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form: "+err.Error())
		return "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return "", false
	}
	defer file.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.fail(w, err)
		return "", false
	}
	path := filepath.Join(h.uploadDir, filepath.Base(header.Filename))
	out, err := os.Create(path)
	if err != nil {
		h.fail(w, err)
		return "", false
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		h.fail(w, err)
		return "", false
	}
	return path, true
}

// wireID accepts a JSON number or string id.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = wireID(n.String())
	return nil
}

type incomingBulletPoint struct {
	ID        wireID `json:"id"`
	Text      string `json:"text"`
	ImagePath string `json:"image_path"`
}

func bulletPoints(in []incomingBulletPoint) []models.BulletPoint {
	out := make([]models.BulletPoint, len(in))
	for i, bp := range in {
		out[i] = models.BulletPoint{ID: string(bp.ID), Text: bp.Text, ImagePath: bp.ImagePath}
	}
	return out
}

func (h *BackendHandler) processArticle(w http.ResponseWriter, r *http.Request) {
	var req services.ProcessArticleRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.backend.ProcessArticle(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *BackendHandler) listArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.backend.ListArticles(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if articles == nil {
		articles = []services.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}

func (h *BackendHandler) getArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	a, err := h.backend.GetArticle(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *BackendHandler) keywords(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	kw, err := h.backend.ExtractKeywords(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"keywords": kw})
}

func (h *BackendHandler) updateBulletPoint(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Text     string   `json:"text"`
		Keywords []string `json:"keywords"`
	}
	if !decode(w, r, &body) {
		return
	}
	bp, err := h.backend.UpdateBulletPoint(r.Context(), id, r.PathValue("bp"), body.Text, body.Keywords)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bp)
}

func (h *BackendHandler) regenerateBulletPoint(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var req services.RegenerateRequest
	if !decode(w, r, &req) {
		return
	}
	req.ArticleID = id
	req.BulletPointID = r.PathValue("bp")
	bp, err := h.backend.RegenerateBulletPoint(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bp)
}

func (h *BackendHandler) regenerateAll(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var req services.RegenerateAllRequest
	if !decode(w, r, &req) {
		return
	}
	req.ArticleID = id
	bps, err := h.backend.RegenerateAllBulletPoints(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.BulletPoint{"bullet_points": bps})
}

func (h *BackendHandler) uploadBulletPointImage(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	path, ok := h.saveUpload(w, r)
	if !ok {
		return
	}
	res, err := h.backend.UploadBulletPointImage(r.Context(), id, r.PathValue("bp"), path)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BackendHandler) deleteBulletPointImage(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.backend.DeleteBulletPointImage(r.Context(), id, r.PathValue("bp")); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Image deleted"})
}

func (h *BackendHandler) generateImage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text          string `json:"text"`
		BulletPointID wireID `json:"bullet_point_id"`
	}
	if !decode(w, r, &body) {
		return
	}
	img, err := h.backend.GenerateImage(r.Context(), body.Text, string(body.BulletPointID))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func (h *BackendHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	path, ok := h.saveUpload(w, r)
	if !ok {
		return
	}
	res, err := h.backend.UploadImage(r.Context(), path, services.UploadPurpose(r.FormValue("purpose")))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// assetBody renders an [services.AssetInfo] as {has_logo, logo_size} or {has_frame, frame_size}.
func assetBody(kind services.AssetKind, info *services.AssetInfo) map[string]any {
	body := map[string]any{"has_" + string(kind): info.Present}
	if info.Present {
		body[string(kind)+"_size"] = []int{info.Width, info.Height}
	}
	if info.Message != "" {
		body["message"] = info.Message
	}
	return body
}

func (h *BackendHandler) currentAsset(kind services.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := h.backend.CurrentAsset(r.Context(), kind)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, assetBody(kind, info))
	}
}

func (h *BackendHandler) uploadAsset(kind services.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, ok := h.saveUpload(w, r)
		if !ok {
			return
		}
		info, err := h.backend.UploadAsset(r.Context(), kind, path)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, assetBody(kind, info))
	}
}

func (h *BackendHandler) applyAsset(kind services.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := intParam(w, r, "id")
		if !ok {
			return
		}
		var req services.ApplyRequest
		if !decode(w, r, &req) {
			return
		}
		res, err := h.backend.ApplyAsset(r.Context(), kind, id, req)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *BackendHandler) removeAsset(kind services.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.backend.RemoveAsset(r.Context(), kind); err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("%s removed", kind)})
	}
}

func (h *BackendHandler) generateVideo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ArticleID      int                   `json:"article_id"`
		BulletPoints   []incomingBulletPoint `json:"bullet_points"`
		Language       string                `json:"language"`
		AddVoiceover   bool                  `json:"add_voiceover"`
		VoiceID        string                `json:"voice_id"`
		AddMusic       bool                  `json:"add_music"`
		MusicID        string                `json:"music_id"`
		AutoDuration   bool                  `json:"auto_duration"`
		FrameDurations []int                 `json:"frame_durations"`
		SkipAssets     bool                  `json:"skip_assets"`
	}
	if !decode(w, r, &body) {
		return
	}
	v, err := h.backend.GenerateVideo(r.Context(), services.VideoRequest{
		ArticleID:         body.ArticleID,
		BulletPoints:      bulletPoints(body.BulletPoints),
		Language:          body.Language,
		Voiceover:         body.AddVoiceover,
		VoiceID:           body.VoiceID,
		Music:             body.AddMusic,
		MusicID:           body.MusicID,
		AutomaticDuration: body.AutoDuration,
		FrameDurations:    body.FrameDurations,
		UseExistingImages: body.SkipAssets,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *BackendHandler) getVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	v, err := h.backend.GetVideo(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *BackendHandler) musicCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.backend.MusicCategories(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": cats})
}

type outgoingTrack struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	URL      string `json:"url"`
	Duration int    `json:"duration"`
	Artist   string `json:"artist,omitempty"`
}

func (h *BackendHandler) searchMusic(w http.ResponseWriter, r *http.Request) {
	var q services.MusicQuery
	if !decode(w, r, &q) {
		return
	}
	page, err := h.backend.SearchMusic(r.Context(), q)
	if err != nil {
		h.fail(w, err)
		return
	}
	tracks := make([]outgoingTrack, len(page.Tracks))
	for i, t := range page.Tracks {
		tracks[i] = outgoingTrack{ID: t.ID, Title: t.Name, Category: t.Category, URL: t.Src, Duration: t.Duration, Artist: t.Artist}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks, "total": page.Total, "page": page.Page, "per_page": page.PerPage})
}

func (h *BackendHandler) downloadTrack(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TrackID string `json:"track_id"`
	}
	if !decode(w, r, &body) {
		return
	}
	if err := h.backend.DownloadTrack(r.Context(), body.TrackID); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Track downloaded"})
}

func (h *BackendHandler) uploadCustomAudio(w http.ResponseWriter, r *http.Request) {
	path, ok := h.saveUpload(w, r)
	if !ok {
		return
	}
	res, err := h.backend.UploadCustomAudio(r.Context(), path)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BackendHandler) generateSocialPosts(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ArticleID           int                   `json:"article_id"`
		BulletPoints        []incomingBulletPoint `json:"bullet_points"`
		Platforms           []models.Platform     `json:"platforms"`
		Language            string                `json:"language"`
		SkipImageGeneration bool                  `json:"skip_image_generation"`
	}
	if !decode(w, r, &body) {
		return
	}
	job, err := h.backend.GenerateSocialPosts(r.Context(), services.SocialRequest{
		ArticleID:           body.ArticleID,
		BulletPoints:        bulletPoints(body.BulletPoints),
		Platforms:           body.Platforms,
		Language:            body.Language,
		SkipImageGeneration: body.SkipImageGeneration,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *BackendHandler) socialPostStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	job, err := h.backend.SocialPostStatus(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *BackendHandler) downloadSocialPostImage(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	data, err := h.backend.DownloadSocialPostImage(r.Context(), id, models.Platform(r.PathValue("platform")))
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(data)
}

func (h *BackendHandler) platforms(w http.ResponseWriter, r *http.Request) {
	resp, err := h.backend.Platforms(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BackendHandler) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.ClearCache(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cache cleared"})
}

// static answers every /static/ path with the same decodable placeholder JPEG.
func (h *BackendHandler) static(w http.ResponseWriter, r *http.Request) {
	h.placeholderOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 160, 90))
		fill := color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
		for y := 0; y < 90; y++ {
			for x := 0; x < 160; x++ {
				img.Set(x, y, fill)
			}
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			h.logger.Error("failed to encode placeholder", "error", err)
			return
		}
		h.placeholder = buf.Bytes()
	})
	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(h.placeholder)
}
