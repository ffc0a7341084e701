package tasks

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/desertthunder/postx/internal/store"
)

// Coordinator is the set of wizard operations the CLI and TUI drive.
type Coordinator interface {
	SubmitArticle(ctx context.Context, in ArticleInput, progress chan<- ProgressUpdate) (*services.Article, error)
	GenerateSlides(ctx context.Context, progress chan<- ProgressUpdate) ([]models.SlideItem, error)
	ApplyLogo(ctx context.Context, opts ApplyOptions) error
	ApplyFrame(ctx context.Context, opts ApplyOptions) error
	GenerateSocialPosts(ctx context.Context, platforms []models.Platform, progress chan<- ProgressUpdate) (map[models.Platform]models.SocialPost, error)
	NewProject(ctx context.Context) <-chan struct{}
}

// PostArchiver is an optional interface for persisting completed social jobs.
type PostArchiver interface {
	ArchivePosts(jobID, articleID int, posts map[models.Platform]models.SocialPost) error
}

// WizardOpts tunes timing and fan-out of wizard operations.
type WizardOpts struct {
	AutoAdvance time.Duration // Delay before leaving the article step (default: 1s)
	Workers     int           // Concurrent slide image jobs (default: 4, max 10)
	RateLimit   float64       // Image generation requests per second (default: 4)
	Poll        PollPolicy    // Social post status polling
	StaticBase  string        // Root that serves /static/img (default: http://localhost:8000)
	Archiver    PostArchiver  // Optional sink for completed social jobs
}

func (o WizardOpts) withDefaults() WizardOpts {
	if o.AutoAdvance <= 0 {
		o.AutoAdvance = time.Second
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Workers > 10 {
		o.Workers = 10
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 4.0
	}
	o.Poll = o.Poll.withDefaults()
	if o.StaticBase == "" {
		o.StaticBase = "http://localhost:8000"
	}
	o.StaticBase = strings.TrimRight(o.StaticBase, "/")
	return o
}

// OptsFromConfig maps the [wizard] config section and backend url onto [WizardOpts].
func OptsFromConfig(cfg *shared.Config) WizardOpts {
	return WizardOpts{
		AutoAdvance: cfg.Wizard.AutoAdvance.Duration,
		Workers:     cfg.Wizard.Workers,
		RateLimit:   cfg.Wizard.RateLimit,
		Poll: PollPolicy{
			Interval:    cfg.Wizard.PollInterval.Duration,
			MaxInterval: cfg.Wizard.PollMaxInterval.Duration,
			MaxAttempts: cfg.Wizard.PollAttempts,
			Timeout:     cfg.Wizard.PollTimeout.Duration,
		},
		StaticBase: services.StaticBaseURL(cfg.Backend.URL),
	}
}

// SettingsFromConfig seeds the settings of a fresh project from [defaults] and [features].
func SettingsFromConfig(cfg *shared.Config) models.ProjectSettings {
	s := models.DefaultSettings()
	if lang, ok := models.LanguageByID(cfg.Defaults.Language); ok {
		s.Language = lang
	}
	s.SlideCount = models.ClampSlideCount(cfg.Defaults.SlideCount)
	s.WordsPerPoint = models.ClampWordsPerPoint(cfg.Defaults.WordsPerPoint)
	s.BackgroundMusic = s.BackgroundMusic && cfg.Features.MusicAPI
	s.Voiceover = cfg.Features.Voiceover
	return s
}

// Wizard coordinates one project: it calls the backend and writes results into the store.
//
// Every write captures the store epoch before the first await and uses [store.Store.DispatchAt],
// so a result that arrives after a reset is dropped with [shared.ErrStaleWrite].
type Wizard struct {
	store   *store.Store
	backend services.Backend
	logger  *log.Logger
	opts    WizardOpts
	now     func() time.Time
}

var _ Coordinator = (*Wizard)(nil)

// NewWizard creates a wizard over st and b. A nil logger discards output.
func NewWizard(st *store.Store, b services.Backend, logger *log.Logger, opts WizardOpts) *Wizard {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Wizard{
		store:   st,
		backend: b,
		logger:  logger,
		opts:    opts.withDefaults(),
		now:     time.Now,
	}
}

func (w *Wizard) Store() *store.Store       { return w.store }
func (w *Wizard) Backend() services.Backend { return w.backend }
func (w *Wizard) Opts() WizardOpts          { return w.opts }

// sendProgress sends a progress update through the channel without blocking.
func (w *Wizard) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// cacheStamp is the ?t= value used to bypass stale image caches.
func (w *Wizard) cacheStamp() int64 {
	return w.now().UnixMilli()
}

// ArticleInput is the user's choice of source: exactly one of URL or Text.
type ArticleInput struct {
	URL  string
	Text string
}

func (in ArticleInput) validate() (ArticleInput, error) {
	in.URL = strings.TrimSpace(in.URL)
	in.Text = strings.TrimSpace(in.Text)

	switch {
	case in.URL == "" && in.Text == "":
		return in, fmt.Errorf("%w: provide an article URL or text", shared.ErrInvalidInput)
	case in.URL != "" && in.Text != "":
		return in, fmt.Errorf("%w: provide either a URL or text, not both", shared.ErrInvalidInput)
	case in.URL != "":
		u, err := url.Parse(in.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return in, fmt.Errorf("%w: %q is not an http(s) URL", shared.ErrInvalidInput, in.URL)
		}
	}
	return in, nil
}

// SubmitArticle processes a URL or text and stores the article and its bullet points.
//
// Any previous slides are cleared so the slide step regenerates them.
func (w *Wizard) SubmitArticle(ctx context.Context, in ArticleInput, progress chan<- ProgressUpdate) (*services.Article, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	epoch := w.store.Epoch()
	settings := w.store.State().Settings

	source := in.URL
	if source == "" {
		source = fmt.Sprintf("%d characters of text", len(in.Text))
	}
	w.sendProgress(progress, processingArticleUpdate(source))

	article, err := w.backend.ProcessArticle(ctx, services.ProcessArticleRequest{
		URL:           in.URL,
		Text:          in.Text,
		SlideCount:    settings.SlideCount,
		WordsPerPoint: settings.WordsPerPoint,
		Language:      settings.Language.Code,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process article: %w", err)
	}

	data := models.ArticleData{
		ID:      article.ID,
		URL:     in.URL,
		Text:    in.Text,
		Title:   article.Title,
		Summary: article.Summary,
	}
	err = w.store.DispatchAt(epoch,
		store.SetArticleData(data),
		store.SetBulletPoints(article.BulletPoints),
		store.SetSlides(nil),
	)
	if err != nil {
		return nil, err
	}

	w.logger.Info("article processed", "id", article.ID, "bullet_points", len(article.BulletPoints))
	w.sendProgress(progress, articleProcessedUpdate(data, len(article.BulletPoints)))
	return article, nil
}

// AutoAdvance waits the configured delay, then moves to the next step.
//
// It does nothing when ctx ends first or the project was reset in the meantime.
func (w *Wizard) AutoAdvance(ctx context.Context) error {
	epoch := w.store.Epoch()
	t := time.NewTimer(w.opts.AutoAdvance)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}
	return w.store.DispatchAt(epoch, store.NextStep())
}

// NewProject resets the project, then clears the backend cache on a best effort basis.
//
// The returned channel closes when the background cache clear is done.
func (w *Wizard) NewProject(ctx context.Context) <-chan struct{} {
	done := w.store.NewProject(ctx, w.backend)
	w.logger.Info("started new project")
	return done
}

// requireArticle returns the current article id or [shared.ErrArticleRequired].
func requireArticle(s models.ProjectState) (int, error) {
	if !s.ArticleData.HasID() {
		return 0, fmt.Errorf("%w: %w", shared.ErrInvalidInput, shared.ErrArticleRequired)
	}
	return s.ArticleData.ID, nil
}
