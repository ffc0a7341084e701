package server

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/services"
	tu "github.com/desertthunder/postx/internal/testing"
)

func newFixture(t *testing.T) (*services.HTTPBackend, *httptest.Server, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := log.New(logs)
	logger.SetLevel(log.DebugLevel)

	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger))
	router.Handler(NewBackendHandler(services.NewMockBackend(), BackendOpts{
		Prefix:    "/api",
		UploadDir: t.TempDir(),
		Logger:    logger,
	}))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return services.NewHTTPBackend(services.NewAPIService(srv.URL+"/api", srv.Client())), srv, logs
}

func TestBackendHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("Process Article", func(t *testing.T) {
		backend, _, _ := newFixture(t)

		a, err := backend.ProcessArticle(ctx, services.ProcessArticleRequest{URL: "https://example.com", SlideCount: 3})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if a.ID != 1 || len(a.BulletPoints) != 3 {
			t.Fatalf("expected article 1 with 3 bullet points, got %+v", a)
		}
		if a.BulletPoints[0].ID != "1" {
			t.Errorf("expected bullet id 1, got %q", a.BulletPoints[0].ID)
		}
	})

	t.Run("Server Error Carries Message", func(t *testing.T) {
		backend, _, _ := newFixture(t)

		_, err := backend.ProcessArticle(ctx, services.ProcessArticleRequest{})
		var apiErr *services.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Kind != services.KindServer || apiErr.Status != http.StatusBadRequest {
			t.Errorf("expected 400 server error, got %+v", apiErr)
		}
		if apiErr.Message != "Either url or text must be provided" {
			t.Errorf("unexpected message %q", apiErr.Message)
		}
	})

	t.Run("Bullet Points", func(t *testing.T) {
		backend, _, _ := newFixture(t)

		bp, err := backend.UpdateBulletPoint(ctx, 1, "2", "Edited", []string{"k"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if bp.ID != "2" || bp.Text != "Edited" {
			t.Errorf("unexpected bullet point %+v", bp)
		}

		bps, err := backend.RegenerateAllBulletPoints(ctx, services.RegenerateAllRequest{ArticleID: 1, SlideCount: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(bps) != 2 {
			t.Errorf("expected 2 bullet points, got %d", len(bps))
		}

		if err := backend.DeleteBulletPointImage(ctx, 1, "2"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Uploads", func(t *testing.T) {
		backend, _, _ := newFixture(t)
		path := tu.MustWriteFile(t, "slide.png", "png bytes")

		res, err := backend.UploadImage(ctx, path, services.PurposeSlide)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.FileURL != "/static/uploads/slide.png" {
			t.Errorf("unexpected file url %q", res.FileURL)
		}
	})

	t.Run("Assets", func(t *testing.T) {
		backend, _, _ := newFixture(t)
		path := tu.MustWriteFile(t, "frame.png", "png bytes")

		info, err := backend.CurrentAsset(ctx, services.AssetFrame)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if info.Present {
			t.Error("expected no frame before upload")
		}

		info, err = backend.UploadAsset(ctx, services.AssetFrame, path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !info.Present || info.Width != 1280 || info.Height != 720 {
			t.Errorf("unexpected frame info %+v", info)
		}

		_, err = backend.ApplyAsset(ctx, services.AssetFrame, 1, services.ApplyRequest{Position: services.Center})
		var apiErr *services.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
			t.Errorf("expected 400 without frame text, got %v", err)
		}

		text := "caption"
		res, err := backend.ApplyAsset(ctx, services.AssetFrame, 1, services.ApplyRequest{Position: services.Center, BulletPointText: &text})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(res.ImagePath, "article_1_frame") {
			t.Errorf("unexpected image path %q", res.ImagePath)
		}

		if err := backend.RemoveAsset(ctx, services.AssetFrame); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Music", func(t *testing.T) {
		backend, _, _ := newFixture(t)

		cats, err := backend.MusicCategories(ctx)
		if err != nil || len(cats) == 0 {
			t.Fatalf("expected categories, got %v %v", cats, err)
		}

		page, err := backend.SearchMusic(ctx, services.MusicQuery{Query: "pop"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(page.Tracks) != 1 || page.Tracks[0].ID != "track2" || page.Tracks[0].Name != "Sample Pop Song" {
			t.Errorf("unexpected tracks %+v", page.Tracks)
		}

		if err := backend.DownloadTrack(ctx, "track2"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Social Job", func(t *testing.T) {
		backend, _, _ := newFixture(t)

		job, err := backend.GenerateSocialPosts(ctx, services.SocialRequest{
			ArticleID:    1,
			BulletPoints: []models.BulletPoint{{ID: "1", Text: "Point"}},
			Platforms:    []models.Platform{models.Instagram, models.Twitter},
			Language:     "fr",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		job, err = backend.SocialPostStatus(ctx, job.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if job.Status != models.SocialCompleted || len(job.Posts) != 2 {
			t.Errorf("expected completed job with 2 posts, got %+v", job)
		}

		img, err := backend.DownloadSocialPostImage(ctx, job.ID, models.Instagram)
		if err != nil || len(img) == 0 {
			t.Errorf("expected image bytes, got %d %v", len(img), err)
		}

		if _, err := backend.SocialPostStatus(ctx, 99); err == nil {
			t.Error("expected error for unknown job")
		}
	})

	t.Run("Video", func(t *testing.T) {
		backend, _, _ := newFixture(t)

		v, err := backend.GenerateVideo(ctx, services.VideoRequest{
			ArticleID:    1,
			BulletPoints: []models.BulletPoint{{ID: "1", Text: "Point"}},
			Language:     "fr",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		got, err := backend.GetVideo(ctx, v.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.ID != v.ID {
			t.Errorf("expected video %d, got %d", v.ID, got.ID)
		}
	})

	t.Run("Platforms And Cache", func(t *testing.T) {
		backend, _, _ := newFixture(t)

		resp, err := backend.Platforms(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Configs[models.Instagram].MaxCaptionLength != 2200 {
			t.Errorf("unexpected instagram config %+v", resp.Configs[models.Instagram])
		}
		if err := backend.ClearCache(ctx); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Static Placeholder Decodes", func(t *testing.T) {
		_, srv, _ := newFixture(t)

		resp, err := srv.Client().Get(srv.URL + "/static/img/point_01.jpg")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer resp.Body.Close()
		if resp.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
		}
		if _, err := jpeg.Decode(resp.Body); err != nil {
			t.Errorf("expected a decodable JPEG, got %v", err)
		}
	})

	t.Run("Routing", func(t *testing.T) {
		_, srv, logs := newFixture(t)

		tests := []struct {
			name   string
			method string
			path   string
			status int
		}{
			{"unknown path", http.MethodGet, "/api/nope/", http.StatusNotFound},
			{"wrong method", http.MethodDelete, "/api/platforms/", http.StatusMethodNotAllowed},
			{"subtree of exact route", http.MethodGet, "/api/platforms/extra/", http.StatusNotFound},
			{"non numeric id", http.MethodGet, "/api/videos/abc/", http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, _ := http.NewRequest(tt.method, srv.URL+tt.path, nil)
				resp, err := srv.Client().Do(req)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				resp.Body.Close()
				if resp.StatusCode != tt.status {
					t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
				}
			})
		}

		if !strings.Contains(logs.String(), "/api/videos/abc/") {
			t.Errorf("expected request to be logged, got %q", logs.String())
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("Recover", func(t *testing.T) {
		logs := &bytes.Buffer{}
		router := NewBasicRouter()
		router.Use(Recover(log.New(logs)))
		router.HandleFunc(http.MethodGet, "/boom", func(http.ResponseWriter, *http.Request) {
			panic("boom")
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "internal server error") {
			t.Errorf("expected JSON detail, got %q", rec.Body.String())
		}
		if !strings.Contains(logs.String(), "handler panic") {
			t.Errorf("expected panic to be logged, got %q", logs.String())
		}
	})

	t.Run("Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.HandleFunc(http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("Logging Records Status", func(t *testing.T) {
		logs := &bytes.Buffer{}
		logger := log.New(logs)
		logger.SetLevel(log.DebugLevel)

		router := NewBasicRouter()
		router.Use(Logging(logger))
		router.HandleFunc(http.MethodGet, "/teapot", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

		if !strings.Contains(logs.String(), "status=418") {
			t.Errorf("expected status in log, got %q", logs.String())
		}
	})
}
