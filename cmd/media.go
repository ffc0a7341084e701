package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/urfave/cli/v3"
)

// MusicCategories lists the categories offered by the music provider.
func (r *Runner) MusicCategories(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	cats, err := w.MusicCategories(ctx)
	if err != nil {
		return err
	}
	return r.emit(cmd, cats, func() {
		for _, c := range cats {
			r.writePlain("- %s\n", c)
		}
	})
}

func (r *Runner) musicQuery(cmd *cli.Command) services.MusicQuery {
	page := int(cmd.Int("page"))
	if page < 1 {
		page = 1
	}
	return services.MusicQuery{
		Query:    cmd.String("query"),
		Category: cmd.String("category"),
		Page:     page,
	}
}

// MusicSearch searches the music provider.
func (r *Runner) MusicSearch(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	page, err := w.SearchMusic(ctx, r.musicQuery(cmd))
	if err != nil {
		return err
	}
	return r.emit(cmd, page, func() {
		if len(page.Tracks) == 0 {
			r.writePlain("No tracks found.\n")
			return
		}
		for _, t := range page.Tracks {
			r.writePlain("[%s] %s", t.ID, t.Name)
			if t.Artist != "" {
				r.writePlain(" by %s", t.Artist)
			}
			r.writePlain(" (%s, %ds)\n", t.Category, t.Duration)
		}
		r.writePlain("\nPage %d, %d tracks total\n", page.Page, page.Total)
	})
}

// MusicSelect picks background music from a search, a local file, or clears it.
func (r *Runner) MusicSelect(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("clear"):
		if err := w.SelectMusic(ctx, nil); err != nil {
			return err
		}
		return r.writePlain("✓ Music cleared\n")
	case cmd.String("file") != "":
		item, err := w.UploadCustomAudio(ctx, cmd.String("file"))
		if err != nil {
			return err
		}
		return r.emit(cmd, item, func() { r.writePlain("✓ Uploaded %s\n", item.Name) })
	}

	id := strings.TrimSpace(cmd.String("id"))
	if id == "" {
		return fmt.Errorf("%w: one of --id, --file or --clear", shared.ErrMissingArgument)
	}
	page, err := w.SearchMusic(ctx, r.musicQuery(cmd))
	if err != nil {
		return err
	}

	var track *models.MusicItem
	for i := range page.Tracks {
		if page.Tracks[i].ID == id {
			track = &page.Tracks[i]
			break
		}
	}
	if track == nil {
		return fmt.Errorf("%w: track %s not in search results", shared.ErrNotFound, id)
	}
	if err := w.SelectMusic(ctx, track); err != nil {
		return err
	}
	return r.emit(cmd, track, func() { r.writePlain("✓ Selected %s\n", track.Name) })
}

// VideoGenerate requests a video from the current project.
func (r *Runner) VideoGenerate(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.track(cmd)
	v, err := w.GenerateVideo(ctx, progress)
	stop()
	if err != nil {
		return err
	}
	return r.emit(cmd, v, func() {
		r.writePlain("✓ Video #%d %s\n", v.ID, v.Status)
		r.writePlain("Check it with 'postx video status --id %d'\n", v.ID)
	})
}

// VideoStatus prints the state and download URL of a video job.
func (r *Runner) VideoStatus(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	v, err := w.VideoStatus(ctx, int(cmd.Int("id")))
	if err != nil {
		return err
	}
	link := w.VideoURL(v)
	return r.emit(cmd, map[string]any{"id": v.ID, "status": v.Status, "url": link}, func() {
		r.writePlain("Video #%d: %s\n", v.ID, v.Status)
		r.writePlain("%s\n", link)
	})
}

// VideoOpen opens the video download URL in the default browser.
func (r *Runner) VideoOpen(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	v, err := w.VideoStatus(ctx, int(cmd.Int("id")))
	if err != nil {
		return err
	}
	link := w.VideoURL(v)
	r.logger.Debug("opening video", "url", link)
	if err := r.openURL(link); err != nil {
		return err
	}
	return r.writePlain("Opened %s\n", link)
}

// VideoVoice sets or clears the voiceover voice.
func (r *Runner) VideoVoice(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("clear") {
		w.SelectVoice(nil)
		return r.writePlain("✓ Voice cleared\n")
	}

	id := strings.TrimSpace(cmd.String("id"))
	if id == "" {
		return fmt.Errorf("%w: --id", shared.ErrMissingArgument)
	}
	name := cmd.String("name")
	if name == "" {
		name = id
	}
	voice := &models.VoiceOption{
		ID:       id,
		Name:     name,
		Gender:   cmd.String("gender"),
		Language: w.Store().State().Settings.Language.Code,
	}
	w.SelectVoice(voice)
	return r.emit(cmd, voice, func() { r.writePlain("✓ Voice %s selected\n", voice.Name) })
}

// VideoOutro uploads the closing clip appended to generated videos.
func (r *Runner) VideoOutro(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	res, err := w.UploadOutro(ctx, cmd.String("file"))
	if err != nil {
		return err
	}
	return r.emit(cmd, res, func() { r.writePlain("✓ Outro uploaded\n") })
}
