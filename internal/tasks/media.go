package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/desertthunder/postx/internal/store"
)

// GenerateVideo starts a video job from the current slides, settings and selections.
func (w *Wizard) GenerateVideo(ctx context.Context, progress chan<- ProgressUpdate) (*services.Video, error) {
	s := w.store.State()
	articleID, err := requireArticle(s)
	if err != nil {
		return nil, err
	}
	if len(s.BulletPoints) == 0 {
		return nil, shared.ErrNoBulletPoints
	}

	req := services.VideoRequest{
		ArticleID:         articleID,
		BulletPoints:      s.BulletPoints,
		Language:          s.Settings.Language.Short(),
		Voiceover:         s.Settings.Voiceover,
		Music:             s.Settings.BackgroundMusic && s.SelectedMusic != nil,
		AutomaticDuration: s.Settings.AutomaticDuration,
		UseExistingImages: s.HasBaseImage(),
	}
	if s.Settings.Voiceover && s.SelectedVoice != nil {
		req.VoiceID = s.SelectedVoice.ID
	}
	if req.Music {
		req.MusicID = s.SelectedMusic.ID
	}
	if !s.Settings.AutomaticDuration {
		for _, sl := range s.Slides {
			req.FrameDurations = append(req.FrameDurations, sl.Duration)
		}
	}

	w.sendProgress(progress, generatingVideoUpdate(len(s.Slides)))
	v, err := w.backend.GenerateVideo(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate video: %w", err)
	}
	w.logger.Info("video requested", "id", v.ID, "status", v.Status)
	return v, nil
}

// VideoStatus fetches a video job.
func (w *Wizard) VideoStatus(ctx context.Context, videoID int) (*services.Video, error) {
	v, err := w.backend.GetVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video %d: %w", videoID, err)
	}
	return v, nil
}

// VideoURL returns the absolute download URL of a video.
func (w *Wizard) VideoURL(v *services.Video) string {
	if v.DownloadURL != "" {
		return services.ResolveImageURL(w.opts.StaticBase, v.DownloadURL)
	}
	return w.backend.VideoDownloadURL(v.ID)
}

func (w *Wizard) MusicCategories(ctx context.Context) ([]string, error) {
	cats, err := w.backend.MusicCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch music categories: %w", err)
	}
	return cats, nil
}

// SearchMusic queries the music provider.
func (w *Wizard) SearchMusic(ctx context.Context, q services.MusicQuery) (*services.MusicPage, error) {
	q.Query = strings.TrimSpace(q.Query)
	page, err := w.backend.SearchMusic(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search music: %w", err)
	}
	return page, nil
}

// SelectMusic downloads a track on the backend and makes it the project's background music.
// A nil track clears the selection.
func (w *Wizard) SelectMusic(ctx context.Context, track *models.MusicItem) error {
	epoch := w.store.Epoch()
	if track == nil {
		return w.store.DispatchAt(epoch, store.SetSelectedMusic(nil))
	}
	if err := w.backend.DownloadTrack(ctx, track.ID); err != nil {
		return fmt.Errorf("failed to download track %s: %w", track.ID, err)
	}
	return w.store.DispatchAt(epoch, store.SetSelectedMusic(track))
}

// UploadCustomAudio uploads a local audio file and selects it as background music.
func (w *Wizard) UploadCustomAudio(ctx context.Context, path string) (*models.MusicItem, error) {
	epoch := w.store.Epoch()
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: audio file", shared.ErrMissingArgument)
	}
	res, err := w.backend.UploadCustomAudio(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio: %w", err)
	}

	id := res.FileID
	if id == "" {
		id = "custom"
	}
	item := &models.MusicItem{ID: id, Name: shared.LastSegment(path), Category: "custom", Src: res.FileURL}
	if err := w.store.DispatchAt(epoch, store.SetSelectedMusic(item)); err != nil {
		return nil, err
	}
	return item, nil
}

// SelectVoice sets the voiceover voice. A nil voice clears it.
func (w *Wizard) SelectVoice(v *models.VoiceOption) {
	w.store.SetSelectedVoice(v)
}
