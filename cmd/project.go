package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/desertthunder/postx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ProjectShow prints a summary of the persisted project.
func (r *Runner) ProjectShow(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	s := w.Store().State()

	return r.emit(cmd, s, func() {
		r.writePlainHeader("Project")
		r.writePlain("Step: %d/%d (%s)\n", int(s.CurrentStep)+1, len(models.Steps()), s.CurrentStep)
		r.printSettings(s.Settings)
		if s.ArticleData.HasID() {
			r.writePlain("Article: #%d %s\n", s.ArticleData.ID, s.ArticleData.Title)
		} else {
			r.writePlain("Article: not processed\n")
		}
		r.writePlain("Bullet points: %d\n", len(s.BulletPoints))
		r.writePlain("Slides: %d\n", len(s.Slides))
		if s.Customization.Logo != "" {
			r.writePlain("Logo: %s\n", s.Customization.Logo)
		}
		if s.Customization.Frame != "" {
			r.writePlain("Frame: %s\n", s.Customization.Frame)
		}
		if s.SelectedMusic != nil {
			r.writePlain("Music: %s (%s)\n", s.SelectedMusic.Name, s.SelectedMusic.ID)
		}
		if s.SelectedVoice != nil {
			r.writePlain("Voice: %s\n", s.SelectedVoice.Name)
		}
	})
}

func (r *Runner) printSettings(s models.ProjectSettings) {
	r.writePlain("Language: %s (%s)\n", s.Language.Name, s.Language.Code)
	r.writePlain("Slides: %d, words per point: %d\n", s.SlideCount, s.WordsPerPoint)
	r.writePlain("Music: %t, voiceover: %t, automatic duration: %t\n", s.BackgroundMusic, s.Voiceover, s.AutomaticDuration)
}

// ProjectNew resets the project and clears the backend cache.
func (r *Runner) ProjectNew(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	cleared := w.NewProject(ctx)
	w.Store().SetSettings(tasks.SettingsFromConfig(r.config))
	r.logger.Info("started new project")
	<-cleared
	return r.writePlain("✓ New project started\n")
}

// ProjectReset resets the project without calling the backend.
func (r *Runner) ProjectReset(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	w.Store().Reset()
	w.Store().SetSettings(tasks.SettingsFromConfig(r.config))
	return r.writePlain("✓ Project reset\n")
}

// ProjectStep moves the wizard to "next", "prev" or a 1-based step number.
func (r *Runner) ProjectStep(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	st := w.Store()

	switch target := strings.ToLower(strings.TrimSpace(cmd.StringArg("target"))); target {
	case "":
	case "next":
		st.NextStep()
	case "prev", "back":
		st.PrevStep()
	default:
		n, err := strconv.Atoi(target)
		if err != nil {
			return fmt.Errorf("%w: step must be next, prev or a number, got %q", shared.ErrInvalidArgument, target)
		}
		st.GoToStep(n - 1)
	}

	s := st.State()
	return r.emit(cmd, map[string]any{"step": int(s.CurrentStep) + 1, "name": s.CurrentStep.String()}, func() {
		r.writePlain("Step %d: %s\n", int(s.CurrentStep)+1, s.CurrentStep)
	})
}

// ProjectSettings applies any settings flags that were given, then prints the settings.
func (r *Runner) ProjectSettings(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	st := w.Store()
	settings := st.State().Settings

	if err := applySettingsFlags(cmd, &settings); err != nil {
		return err
	}
	if cmd.IsSet("music") {
		settings.BackgroundMusic = cmd.Bool("music")
	}
	if cmd.IsSet("voiceover") {
		settings.Voiceover = cmd.Bool("voiceover")
	}
	if cmd.IsSet("auto-duration") {
		settings.AutomaticDuration = cmd.Bool("auto-duration")
	}
	st.SetSettings(settings)

	settings = st.State().Settings
	return r.emit(cmd, settings, func() { r.printSettings(settings) })
}

// applySettingsFlags reads --language, --slides and --words into s.
func applySettingsFlags(cmd *cli.Command, s *models.ProjectSettings) error {
	if cmd.IsSet("language") {
		lang, ok := models.LanguageByID(cmd.String("language"))
		if !ok {
			return fmt.Errorf("%w: unknown language %q", shared.ErrInvalidFlag, cmd.String("language"))
		}
		s.Language = lang
	}
	if cmd.IsSet("slides") {
		s.SlideCount = models.ClampSlideCount(int(cmd.Int("slides")))
	}
	if cmd.IsSet("words") {
		s.WordsPerPoint = models.ClampWordsPerPoint(int(cmd.Int("words")))
	}
	return nil
}

// ArticleSubmit processes an article and stores its bullet points.
func (r *Runner) ArticleSubmit(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	in := tasks.ArticleInput{URL: cmd.String("url"), Text: cmd.String("text")}
	if path := cmd.String("file"); path != "" {
		if in.Text != "" {
			return fmt.Errorf("%w: cannot specify both --text and --file", shared.ErrInvalidArgument)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read article file: %w", err)
		}
		in.Text = string(data)
	}

	settings := w.Store().State().Settings
	if err := applySettingsFlags(cmd, &settings); err != nil {
		return err
	}
	w.Store().SetSettings(settings)

	progress, stop := r.track(cmd)
	article, err := w.SubmitArticle(ctx, in, progress)
	stop()
	if err != nil {
		return err
	}
	if w.Store().State().CurrentStep == models.StepArticleInput {
		if err := w.AutoAdvance(ctx); err != nil {
			r.logger.Warn("auto advance skipped", "error", err)
		}
	}

	return r.emit(cmd, article, func() {
		r.writePlain("\n✓ Article #%d processed: %s\n", article.ID, article.Title)
		r.printBullets(w.Store().State().BulletPoints)
	})
}

// ArticleShow prints the processed article.
func (r *Runner) ArticleShow(ctx context.Context, cmd *cli.Command) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	a := w.Store().State().ArticleData
	if !a.HasID() {
		return shared.ErrArticleRequired
	}

	return r.emit(cmd, a, func() {
		r.writePlainHeader(a.Title)
		r.writePlain("ID: %d\n", a.ID)
		if a.URL != "" {
			r.writePlain("URL: %s\n", a.URL)
		}
		if a.Summary != "" {
			r.writePlainln("%s", a.Summary)
		}
	})
}
