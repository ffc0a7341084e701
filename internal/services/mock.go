package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/shared"
)

// MockBackend implements [Backend] with deterministic fixtures and no network access.
type MockBackend struct {
	mu           sync.Mutex
	delay        time.Duration
	pendingPolls int
	nextJob      int
	jobs         map[int]*mockJob
	assets       map[AssetKind]*AssetInfo
	now          func() time.Time
}

type mockJob struct {
	req   SocialRequest
	polls int
}

var _ Backend = (*MockBackend)(nil)

// MockOption configures a [MockBackend].
type MockOption func(*MockBackend)

// WithDelay makes every call wait d (or until its context ends).
func WithDelay(d time.Duration) MockOption {
	return func(m *MockBackend) { m.delay = d }
}

// WithPendingPolls makes social jobs report "processing" for n status calls before completing.
func WithPendingPolls(n int) MockOption {
	return func(m *MockBackend) { m.pendingPolls = n }
}

// NewMockBackend creates a mock transport.
func NewMockBackend(opts ...MockOption) *MockBackend {
	m := &MockBackend{
		jobs:   make(map[int]*mockJob),
		assets: make(map[AssetKind]*AssetInfo),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return transportError(ctx, err)
	}
	if m.delay <= 0 {
		return nil
	}
	t := time.NewTimer(m.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return transportError(ctx, ctx.Err())
	case <-t.C:
		return nil
	}
}

var mockBulletPoints = []string{
	"First key point from the article with detailed explanation",
	"Second important insight that provides valuable information",
	"Third crucial element that users should understand",
	"Fourth significant aspect of the topic being discussed",
}

var mockKeywords = []string{
	"important", "analysis", "research", "development", "innovation",
	"technology", "solution", "strategy", "implementation", "results",
	"performance", "efficiency", "optimization", "growth", "success",
}

var mockCategories = []string{"Electronic", "Pop", "Rock", "Jazz", "Classical", "Ambient"}

var mockTracks = []models.MusicItem{
	{ID: "track1", Name: "Sample Electronic Track", Category: "Electronic", Src: "https://www.soundjay.com/misc/sounds/bell-ringing-05.wav", Duration: 180, Artist: "Sample Artist"},
	{ID: "track2", Name: "Sample Pop Song", Category: "Pop", Src: "https://www.soundjay.com/misc/sounds/bell-ringing-05.wav", Duration: 200, Artist: "Pop Artist"},
}

var mockPosts = map[models.Platform]models.SocialPost{
	models.Instagram: {
		Platform:       models.Instagram,
		Caption:        "🚀 Découvrez ces insights incroyables ! Cette analyse approfondie révèle des tendances fascinantes qui vont transformer votre approche. Ne manquez pas ces informations précieuses ! ✨",
		Hashtags:       []string{"#innovation", "#tech", "#insights", "#transformation", "#business"},
		CallToAction:   "💭 Qu'en pensez-vous ?",
		CharacterCount: 186,
		HashtagCount:   5,
	},
	models.Facebook: {
		Platform:       models.Facebook,
		Caption:        "Une analyse approfondie qui révèle des insights fascinants sur les dernières tendances. Ces découvertes pourraient bien transformer votre approche et ouvrir de nouvelles perspectives d'innovation.",
		Hashtags:       []string{"#innovation", "#business", "#analyse", "#tendances"},
		CallToAction:   "Qu'en pensez-vous ? Partagez votre expérience !",
		CharacterCount: 204,
		HashtagCount:   4,
	},
	models.LinkedIn: {
		Platform:     models.LinkedIn,
		Caption:      "Cette analyse met en lumière des tendances clés pour les professionnels. Les enseignements tirés de ces données offrent des pistes concrètes pour repenser nos stratégies.",
		Hashtags:     []string{"#innovation", "#leadership", "#strategie"},
		CallToAction: "Quel est votre point de vue sur ces tendances ?",
	},
	models.Twitter: {
		Platform:     models.Twitter,
		Caption:      "Des insights fascinants sur les tendances qui transforment notre secteur 🚀",
		Hashtags:     []string{"#innovation", "#tech"},
		CallToAction: "Votre avis ?",
	},
}

func (m *MockBackend) ProcessArticle(ctx context.Context, req ProcessArticleRequest) (*Article, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.URL) == "" && strings.TrimSpace(req.Text) == "" {
		return nil, &APIError{Kind: KindServer, Status: 400, Message: "Either url or text must be provided"}
	}
	return mockArticle(req.URL, req.SlideCount), nil
}

func mockArticle(url string, slideCount int) *Article {
	n := min(max(slideCount, 1), len(mockBulletPoints))
	a := &Article{
		ID:      1,
		URL:     url,
		Title:   "Sample Article Title",
		Summary: "This is a mock summary of the article content. When the backend is disabled, this sample data is used to allow the frontend to function independently.",
	}
	for i := range n {
		a.BulletPoints = append(a.BulletPoints, models.BulletPoint{ID: strconv.Itoa(i + 1), Text: mockBulletPoints[i]})
	}
	return a
}

func (m *MockBackend) GetArticle(ctx context.Context, articleID int) (*Article, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if articleID != 1 {
		return nil, &APIError{Kind: KindServer, Status: 404, Message: "Article not found"}
	}
	return mockArticle("", len(mockBulletPoints)), nil
}

func (m *MockBackend) ListArticles(ctx context.Context) ([]Article, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return []Article{*mockArticle("", len(mockBulletPoints))}, nil
}

func (m *MockBackend) UpdateBulletPoint(ctx context.Context, _ int, bulletPointID, text string, keywords []string) (*models.BulletPoint, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return &models.BulletPoint{ID: bulletPointID, Text: text, Keywords: keywords}, nil
}

func (m *MockBackend) RegenerateBulletPoint(ctx context.Context, req RegenerateRequest) (*models.BulletPoint, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return &models.BulletPoint{
		ID:   req.BulletPointID,
		Text: fmt.Sprintf("Regenerated bullet point %s with improved content and better engagement", req.BulletPointID),
	}, nil
}

func (m *MockBackend) RegenerateAllBulletPoints(ctx context.Context, req RegenerateAllRequest) ([]models.BulletPoint, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	n := max(req.SlideCount, 1)
	out := make([]models.BulletPoint, n)
	for i := range n {
		out[i] = models.BulletPoint{
			ID:   strconv.Itoa(i + 1),
			Text: fmt.Sprintf("Regenerated bullet point %d with fresh content and improved clarity", i+1),
		}
	}
	return out, nil
}

func (m *MockBackend) ExtractKeywords(ctx context.Context, _ int) ([]string, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return append([]string(nil), mockKeywords...), nil
}

func (m *MockBackend) UploadBulletPointImage(ctx context.Context, _ int, bulletPointID, _ string) (*UploadResult, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return &UploadResult{Message: "Image uploaded", ImagePath: mockImageFile(bulletPointID)}, nil
}

func mockImageFile(bulletPointID string) string {
	return fmt.Sprintf("point_%s.jpg", shared.PadID(bulletPointID))
}

func (m *MockBackend) DeleteBulletPointImage(ctx context.Context, _ int, _ string) error {
	return m.wait(ctx)
}

func (m *MockBackend) GenerateImage(ctx context.Context, _, bulletPointID string) (*GeneratedImage, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return &GeneratedImage{ImageURL: "/static/img/" + mockImageFile(bulletPointID), Message: "Image generated"}, nil
}

func (m *MockBackend) UploadImage(ctx context.Context, file string, purpose UploadPurpose) (*UploadResult, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	name := filepath.Base(file)
	return &UploadResult{
		Message:  fmt.Sprintf("%s uploaded", purpose),
		FilePath: "uploads/" + name,
		FileURL:  "/static/uploads/" + name,
	}, nil
}

func (m *MockBackend) CurrentAsset(ctx context.Context, kind AssetKind) (*AssetInfo, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if info, ok := m.assets[kind]; ok {
		cp := *info
		return &cp, nil
	}
	return &AssetInfo{Message: fmt.Sprintf("No %s uploaded", kind)}, nil
}

func (m *MockBackend) UploadAsset(ctx context.Context, kind AssetKind, _ string) (*AssetInfo, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	info := &AssetInfo{Present: true, Width: 300, Height: 140, Message: fmt.Sprintf("%s uploaded", kind)}
	if kind == AssetFrame {
		info.Width, info.Height = 1280, 720
	}
	m.mu.Lock()
	m.assets[kind] = info
	m.mu.Unlock()
	cp := *info
	return &cp, nil
}

// ApplyAsset does not require a prior [MockBackend.UploadAsset]: every CLI invocation starts
// with a fresh mock, so an upload from an earlier run is never visible here.
func (m *MockBackend) ApplyAsset(ctx context.Context, kind AssetKind, articleID int, req ApplyRequest) (*ApplyResult, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if kind == AssetFrame && (req.BulletPointText == nil || strings.TrimSpace(*req.BulletPointText) == "") {
		return nil, &APIError{Kind: KindServer, Status: 400, Message: "bullet_point_text is required"}
	}
	return &ApplyResult{
		ImagePath: fmt.Sprintf("/static/img/article_%d_%s.jpg", articleID, kind),
		Message:   fmt.Sprintf("%s applied", kind),
	}, nil
}

func (m *MockBackend) RemoveAsset(ctx context.Context, kind AssetKind) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.assets, kind)
	m.mu.Unlock()
	return nil
}

func (m *MockBackend) GenerateVideo(ctx context.Context, _ VideoRequest) (*Video, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return &Video{ID: 1, Status: "completed", DownloadURL: "/mock-video.mp4"}, nil
}

func (m *MockBackend) GetVideo(ctx context.Context, videoID int) (*Video, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return &Video{ID: videoID, Status: "completed", DownloadURL: "/mock-video.mp4"}, nil
}

func (m *MockBackend) VideoDownloadURL(int) string { return "/mock-video.mp4" }

func (m *MockBackend) MusicCategories(ctx context.Context) ([]string, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return append([]string(nil), mockCategories...), nil
}

func (m *MockBackend) SearchMusic(ctx context.Context, q MusicQuery) (*MusicPage, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	q = q.withDefaults()
	query := strings.ToLower(strings.TrimSpace(q.Query))

	var matched []models.MusicItem
	for _, t := range mockTracks {
		if q.Category != "" && !strings.EqualFold(t.Category, q.Category) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Name+" "+t.Artist), query) {
			continue
		}
		matched = append(matched, t)
	}

	page := &MusicPage{Total: len(matched), Page: q.Page, PerPage: q.PerPage, Tracks: []models.MusicItem{}}
	start := (q.Page - 1) * q.PerPage
	if start < len(matched) {
		page.Tracks = append(page.Tracks, matched[start:min(start+q.PerPage, len(matched))]...)
	}
	return page, nil
}

func (m *MockBackend) DownloadTrack(ctx context.Context, trackID string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	for _, t := range mockTracks {
		if t.ID == trackID {
			return nil
		}
	}
	return &APIError{Kind: KindServer, Status: 404, Message: "Track not found"}
}

func (m *MockBackend) UploadCustomAudio(ctx context.Context, _ string) (*UploadResult, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return &UploadResult{Message: "Audio uploaded", FileURL: "/cache/music/background.mp3", FileID: "custom"}, nil
}

func (m *MockBackend) GenerateSocialPosts(ctx context.Context, req SocialRequest) (*SocialJob, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if len(req.Platforms) == 0 {
		return nil, &APIError{Kind: KindServer, Status: 400, Message: "At least one platform is required"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextJob++
	id := m.nextJob
	m.jobs[id] = &mockJob{req: req}
	return &SocialJob{ID: id, ArticleID: req.ArticleID, Status: models.SocialProcessing}, nil
}

func (m *MockBackend) SocialPostStatus(ctx context.Context, jobID int) (*SocialJob, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, &APIError{Kind: KindServer, Status: 404, Message: "Social post job not found"}
	}
	job.polls++
	if job.polls <= m.pendingPolls {
		return &SocialJob{ID: jobID, ArticleID: job.req.ArticleID, Status: models.SocialProcessing}, nil
	}

	ts := float64(m.now().Unix())
	posts := make(map[models.Platform]models.SocialPost, len(job.req.Platforms))
	for _, p := range job.req.Platforms {
		post, ok := mockPosts[p]
		if !ok {
			continue
		}
		post.Hashtags = append([]string(nil), post.Hashtags...)
		if post.CharacterCount == 0 {
			post.CharacterCount = utf8.RuneCountInString(post.Caption)
		}
		if post.HashtagCount == 0 {
			post.HashtagCount = len(post.Hashtags)
		}
		post.ImagePath = fmt.Sprintf("social_post_%s_%d.jpg", p, jobID)
		post.Timestamp = ts
		posts[p] = post
	}
	return &SocialJob{ID: jobID, ArticleID: job.req.ArticleID, Status: models.SocialCompleted, Posts: posts}, nil
}

// mockJPEG is the smallest byte sequence image viewers accept as a JPEG.
var mockJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0xFF, 0xD9}

func (m *MockBackend) DownloadSocialPostImage(ctx context.Context, jobID int, _ models.Platform) ([]byte, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	_, ok := m.jobs[jobID]
	m.mu.Unlock()
	if !ok {
		return nil, &APIError{Kind: KindServer, Status: 404, Message: "Social post job not found"}
	}
	return append([]byte(nil), mockJPEG...), nil
}

func (m *MockBackend) Platforms(ctx context.Context) (*PlatformsResponse, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return PlatformDefaults(), nil
}

func (m *MockBackend) ClearCache(ctx context.Context) error {
	return m.wait(ctx)
}
