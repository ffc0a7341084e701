package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/postx/internal/tasks"
)

type slideInput int

const (
	noInput slideInput = iota
	textInput
	pathInput
)

// slidesView previews the generated slides and edits text, duration and image.
type slidesView struct {
	m     *Model
	list  list.Model
	input textinput.Model
	mode  slideInput
}

func newSlidesView(m *Model) *slidesView {
	in := textinput.New()
	in.Width = 60
	return &slidesView{
		m:     m,
		list:  newList(slideItems(m.state.Slides), m.t("step_slide_preview", nil)),
		input: in,
	}
}

// enter starts generation when the step is shown without slides.
func (v *slidesView) enter() tea.Cmd {
	v.sync()
	s := v.m.state
	if len(s.Slides) == 0 && len(s.BulletPoints) > 0 {
		return v.generate()
	}
	return nil
}

func (v *slidesView) sync() {
	v.list.SetItems(slideItems(v.m.state.Slides))
}

func (v *slidesView) capturing() bool { return v.mode != noInput }

func (v *slidesView) canContinue() bool { return len(v.m.state.Slides) > 0 }

func (v *slidesView) generate() tea.Cmd {
	w := v.m.wizard
	return v.m.run(opGenerateSlides, v, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error) {
		return w.GenerateSlides(ctx, progress)
	})
}

func (v *slidesView) selected() (slideItem, bool) {
	item, ok := v.list.SelectedItem().(slideItem)
	return item, ok
}

func (v *slidesView) update(msg tea.KeyMsg) tea.Cmd {
	keys := v.m.keys
	w := v.m.wizard

	if v.mode != noInput {
		switch {
		case key.Matches(msg, keys.cancel):
			v.closeInput()
			return nil
		case key.Matches(msg, keys.enter):
			return v.submitInput()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}

	item, ok := v.selected()
	switch {
	case key.Matches(msg, keys.generate):
		return v.generate()
	case !ok:
	case key.Matches(msg, keys.edit):
		v.mode = textInput
		v.input.Placeholder = ""
		v.input.SetValue(item.slide.Text)
		return v.input.Focus()
	case key.Matches(msg, keys.upload):
		v.mode = pathInput
		v.input.Placeholder = v.m.t("asset_path_label", nil)
		v.input.SetValue("")
		return v.input.Focus()
	case key.Matches(msg, keys.regenerate):
		id := item.slide.ID
		return v.m.run(opRegenSlide, v, func(ctx context.Context, _ chan<- tasks.ProgressUpdate) (any, error) {
			return w.RegenerateSlideImage(ctx, id)
		})
	case key.Matches(msg, keys.more):
		v.setDuration(item.slide.ID, item.slide.Duration+1)
		return nil
	case key.Matches(msg, keys.less):
		if item.slide.Duration > 1 {
			v.setDuration(item.slide.ID, item.slide.Duration-1)
		}
		return nil
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return cmd
}

func (v *slidesView) setDuration(id string, seconds int) {
	if err := v.m.wizard.UpdateSlideDuration(id, seconds); err != nil {
		v.m.reportError("update_duration", err)
	}
}

func (v *slidesView) closeInput() {
	v.mode = noInput
	v.input.Blur()
}

func (v *slidesView) submitInput() tea.Cmd {
	item, ok := v.selected()
	mode, value := v.mode, strings.TrimSpace(v.input.Value())
	v.closeInput()
	if !ok || value == "" {
		return nil
	}

	w := v.m.wizard
	if mode == textInput {
		if err := w.UpdateSlideText(item.slide.ID, value); err != nil {
			v.m.reportError("update_text", err)
		}
		return nil
	}
	return v.m.run(opUploadSlide, v, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error) {
		return w.UploadSlideImage(ctx, item.slide.ID, value, progress)
	})
}

func (v *slidesView) done(r opResult) tea.Cmd {
	v.sync()
	if r.err == nil && r.op == opRegenSlide {
		v.m.notice = notice{text: v.m.t("slides_regenerated", nil)}
	}
	return nil
}

func (v *slidesView) view() string {
	m := v.m
	s := m.state
	var b strings.Builder

	b.WriteString(m.styles.subtitle.Render(m.t("slides_subtitle", nil)) + "\n\n")

	if m.busy == opGenerateSlides {
		b.WriteString(m.styles.accent.Render(m.t("slides_generating", nil)))
		if p := m.progress; p.Total > 0 {
			b.WriteString(" " + m.t("slides_progress", map[string]any{"Step": p.Step, "Total": p.Total}))
		}
		return b.String()
	}
	if len(s.Slides) == 0 {
		b.WriteString(m.styles.warn.Render(m.t("bullets_empty", nil)))
		return b.String()
	}

	total := 0
	for _, sl := range s.Slides {
		total += sl.Duration
	}
	b.WriteString(m.styles.help.Render(m.tr.N("slides_count", len(s.Slides), nil)+", "+m.t("slides_duration", map[string]any{"Seconds": total})) + "\n")

	switch v.mode {
	case textInput:
		b.WriteString(m.styles.box.Render(v.input.View()))
	case pathInput:
		b.WriteString(m.styles.accent.Render(m.t("asset_path_label", nil)) + "\n")
		b.WriteString(m.styles.box.Render(v.input.View()))
	default:
		b.WriteString(v.list.View())
	}
	return b.String()
}

func (v *slidesView) help() []key.Binding {
	k := v.m.keys
	if v.mode != noInput {
		return []key.Binding{k.enter, k.cancel}
	}
	return []key.Binding{k.up, k.down, k.edit, k.regenerate, k.upload, k.more, k.generate}
}
