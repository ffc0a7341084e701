// package store holds the single source of truth for a wizard session
//
// All changes go through [Store.Dispatch] as [Mutation] values. Every dispatch persists the
// non-transient part of the state and notifies subscribers with a copy.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/shared"
)

// CacheClearer is the backend capability used by [Store.NewProject].
type CacheClearer interface {
	ClearCache(ctx context.Context) error
}

// Store guards a [models.ProjectState].
type Store struct {
	mu        sync.RWMutex
	state     models.ProjectState
	epoch     uint64
	persister Persister
	logger    *log.Logger

	subMu   sync.Mutex
	subs    map[int]func(models.ProjectState)
	nextSub int
}

// Option configures a [Store].
type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a store with default state and rehydrates it from the persister, if any.
//
// A blob that fails validation is discarded with a warning.
func New(opts ...Option) *Store {
	s := &Store{
		state: models.NewProjectState(),
		subs:  make(map[int]func(models.ProjectState)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(os.Stderr)
	}
	if s.persister != nil {
		s.rehydrate()
	}
	return s
}

func (s *Store) rehydrate() {
	data, err := s.persister.Load()
	if err != nil {
		s.logger.Warn("could not load saved project", "error", err)
		return
	}
	if len(data) == 0 {
		return
	}
	state, err := Decode(data)
	if err != nil {
		s.logger.Warn("discarding saved project", "error", err)
		return
	}
	s.state = state
	s.logger.Debug("restored project", "step", state.CurrentStep, "bullet_points", len(state.BulletPoints))
}

// State returns a deep copy of the current state.
func (s *Store) State() models.ProjectState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Epoch identifies the current project. It changes on every reset.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Dispatch applies mutations in order as one change.
func (s *Store) Dispatch(mutations ...Mutation) {
	s.commit(nil, false, mutations)
}

// DispatchAt applies mutations only if no reset happened since epoch was read.
func (s *Store) DispatchAt(epoch uint64, mutations ...Mutation) error {
	return s.commit(&epoch, false, mutations)
}

// commit applies and persists under the write lock, then notifies outside it.
// Subscribers may dispatch.
func (s *Store) commit(epoch *uint64, reset bool, mutations []Mutation) error {
	s.mu.Lock()
	if epoch != nil && *epoch != s.epoch {
		current := s.epoch
		s.mu.Unlock()
		return fmt.Errorf("%w: epoch %d, current %d", shared.ErrStaleWrite, *epoch, current)
	}
	if reset {
		s.epoch++
	}
	s.apply(mutations)
	snapshot := s.state.Clone()
	s.persist(snapshot)
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

func (s *Store) apply(mutations []Mutation) {
	for _, m := range mutations {
		if m != nil {
			m(&s.state)
		}
	}
}

func (s *Store) persist(snapshot models.ProjectState) {
	if s.persister == nil {
		return
	}
	data, err := Encode(snapshot)
	if err != nil {
		s.logger.Warn("could not encode project", "error", err)
		return
	}
	if err := s.persister.Save(data); err != nil {
		s.logger.Warn("could not save project", "error", err)
	}
}

// Subscribe registers fn to receive a copy of the state after every dispatch.
func (s *Store) Subscribe(fn func(models.ProjectState)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(snapshot models.ProjectState) {
	s.subMu.Lock()
	fns := make([]func(models.ProjectState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snapshot.Clone())
	}
}

func (s *Store) SetSettings(v models.ProjectSettings) { s.Dispatch(SetSettings(v)) }

func (s *Store) SetLanguage(l models.Language) { s.Dispatch(SetLanguage(l)) }

func (s *Store) SetSlideCount(n int) { s.Dispatch(SetSlideCount(n)) }

func (s *Store) SetWordsPerPoint(n int) { s.Dispatch(SetWordsPerPoint(n)) }

func (s *Store) SetArticleData(a models.ArticleData) { s.Dispatch(SetArticleData(a)) }

func (s *Store) SetBulletPoints(bps []models.BulletPoint) { s.Dispatch(SetBulletPoints(bps)) }

func (s *Store) UpdateBulletPoint(id string, p models.BulletPointPatch) {
	s.Dispatch(UpdateBulletPoint(id, p))
}

func (s *Store) UpdateBulletPointImage(id, path string) {
	s.Dispatch(UpdateBulletPointImage(id, path))
}

func (s *Store) SetSlides(slides []models.SlideItem) { s.Dispatch(SetSlides(slides)) }

func (s *Store) UpdateSlide(id string, p models.SlidePatch) { s.Dispatch(UpdateSlide(id, p)) }

func (s *Store) SetSelectedMusic(m *models.MusicItem) { s.Dispatch(SetSelectedMusic(m)) }

func (s *Store) SetSelectedVoice(v *models.VoiceOption) { s.Dispatch(SetSelectedVoice(v)) }

func (s *Store) SetCustomization(c models.CustomizationSettings) { s.Dispatch(SetCustomization(c)) }

func (s *Store) SetSocialGenerating(b bool) { s.Dispatch(SetSocialGenerating(b)) }

func (s *Store) SetSocialPosts(posts map[models.Platform]models.SocialPost, jobID int) {
	s.Dispatch(SetSocialPosts(posts, jobID))
}

func (s *Store) SetSocialError(msg string) { s.Dispatch(SetSocialError(msg)) }

func (s *Store) BumpAssetVersion(v int64) { s.Dispatch(BumpAssetVersion(v)) }

func (s *Store) NextStep() { s.Dispatch(NextStep()) }

func (s *Store) PrevStep() { s.Dispatch(PrevStep()) }

func (s *Store) GoToStep(n int) { s.Dispatch(GoToStep(n)) }

// Reset returns the project to defaults and starts a new epoch.
func (s *Store) Reset() {
	s.commit(nil, true, []Mutation{Reset()})
}

// CacheClearTimeout bounds the background cache clear started by [Store.NewProject].
const CacheClearTimeout = 10 * time.Second

// NewProject resets the project, then asks the backend to clear its cache in the background.
//
// The reset is visible when NewProject returns. The returned channel closes once the cache
// clear has finished or given up after [CacheClearTimeout]; a failure is logged and the reset
// stands. Canceling ctx does not abort the clear.
func (s *Store) NewProject(ctx context.Context, c CacheClearer) <-chan struct{} {
	s.Reset()
	done := make(chan struct{})
	if c == nil {
		close(done)
		return done
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CacheClearTimeout)
	go func() {
		defer close(done)
		defer cancel()
		if err := c.ClearCache(ctx); err != nil {
			s.logger.Warn("cache clear failed", "error", err)
		}
	}()
	return done
}
