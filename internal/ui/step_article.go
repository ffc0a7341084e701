package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/tasks"
)

type inputMode int

const (
	urlMode inputMode = iota
	textMode
)

// articleView collects the article source and the generation settings.
type articleView struct {
	m       *Model
	mode    inputMode
	url     textinput.Model
	text    textarea.Model
	focused bool
}

func newArticleView(m *Model) *articleView {
	url := textinput.New()
	url.Placeholder = m.t("article_url_placeholder", nil)
	url.CharLimit = 2048
	url.Width = 60

	text := textarea.New()
	text.Placeholder = m.t("article_text_placeholder", nil)
	text.SetWidth(70)
	text.SetHeight(8)
	text.CharLimit = 0

	return &articleView{m: m, url: url, text: text}
}

func (v *articleView) enter() tea.Cmd {
	if v.m.state.ArticleData.HasID() {
		return nil
	}
	return v.focus()
}

func (v *articleView) focus() tea.Cmd {
	v.focused = true
	if v.mode == urlMode {
		v.text.Blur()
		return v.url.Focus()
	}
	v.url.Blur()
	return v.text.Focus()
}

func (v *articleView) blur() {
	v.focused = false
	v.url.Blur()
	v.text.Blur()
}

func (v *articleView) capturing() bool { return v.focused }

func (v *articleView) canContinue() bool {
	a := v.m.state.ArticleData
	return a.HasID() && a.Summary != ""
}

func (v *articleView) input() tasks.ArticleInput {
	if v.mode == urlMode {
		return tasks.ArticleInput{URL: v.url.Value()}
	}
	return tasks.ArticleInput{Text: v.text.Value()}
}

func (v *articleView) update(msg tea.KeyMsg) tea.Cmd {
	keys := v.m.keys
	if v.focused {
		switch {
		case key.Matches(msg, keys.cancel):
			v.blur()
			return nil
		case key.Matches(msg, keys.mode):
			v.mode = 1 - v.mode
			return v.focus()
		case key.Matches(msg, keys.save):
			return v.submit()
		case key.Matches(msg, keys.enter) && v.mode == urlMode:
			return v.submit()
		}
		var cmd tea.Cmd
		if v.mode == urlMode {
			v.url, cmd = v.url.Update(msg)
		} else {
			v.text, cmd = v.text.Update(msg)
		}
		return cmd
	}

	st := v.m.wizard.Store()
	settings := v.m.state.Settings
	switch {
	case key.Matches(msg, keys.enter), key.Matches(msg, keys.edit):
		return v.focus()
	case key.Matches(msg, keys.mode):
		v.mode = 1 - v.mode
	case key.Matches(msg, keys.save):
		return v.submit()
	case key.Matches(msg, keys.language):
		st.SetLanguage(nextLanguage(settings.Language))
	case key.Matches(msg, keys.more):
		st.SetSlideCount(settings.SlideCount + 1)
	case key.Matches(msg, keys.less):
		st.SetSlideCount(settings.SlideCount - 1)
	case msg.String() == "w":
		st.SetWordsPerPoint(settings.WordsPerPoint + 5)
	case msg.String() == "W":
		st.SetWordsPerPoint(settings.WordsPerPoint - 5)
	}
	return nil
}

func nextLanguage(cur models.Language) models.Language {
	langs := models.Languages()
	for i, l := range langs {
		if l.ID == cur.ID {
			return langs[(i+1)%len(langs)]
		}
	}
	return langs[0]
}

func (v *articleView) submit() tea.Cmd {
	in := v.input()
	if strings.TrimSpace(in.URL) == "" && strings.TrimSpace(in.Text) == "" {
		v.m.notice = notice{text: v.m.t("article_invalid", nil), isErr: true}
		return nil
	}
	v.blur()
	return v.m.run(opSubmitArticle, v, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error) {
		return v.m.wizard.SubmitArticle(ctx, in, progress)
	})
}

func (v *articleView) done(r opResult) tea.Cmd {
	if r.err != nil {
		return v.focus()
	}
	v.m.notice = notice{text: v.m.t("article_processed", nil)}
	w, ctx := v.m.wizard, v.m.ctx
	return func() tea.Msg {
		return autoAdvancedMsg(w.AutoAdvance(ctx))
	}
}

func (v *articleView) view() string {
	m := v.m
	s := m.state
	var b strings.Builder

	b.WriteString(m.styles.subtitle.Render(m.t("article_subtitle", nil)) + "\n\n")
	b.WriteString(m.styles.text.Render(m.t("article_settings", map[string]any{
		"Language": s.Settings.Language.Name,
		"Slides":   s.Settings.SlideCount,
		"Words":    s.Settings.WordsPerPoint,
	})) + "\n\n")

	urlTab, textTab := m.t("article_url_label", nil), m.t("article_text_label", nil)
	if v.mode == urlMode {
		urlTab = m.styles.selected.Render("[" + urlTab + "]")
		textTab = m.styles.todo.Render(" " + textTab + " ")
	} else {
		urlTab = m.styles.todo.Render(" " + urlTab + " ")
		textTab = m.styles.selected.Render("[" + textTab + "]")
	}
	b.WriteString(urlTab + "  " + textTab + "\n")

	if v.mode == urlMode {
		b.WriteString(m.styles.box.Render(v.url.View()))
	} else {
		b.WriteString(m.styles.box.Render(v.text.View()))
	}

	if s.ArticleData.HasID() {
		b.WriteString("\n\n" + m.styles.ok.Render(s.ArticleData.Title))
		b.WriteString("\n" + m.styles.help.Render(fmt.Sprintf("#%d, %s", s.ArticleData.ID, m.tr.N("slides_count", len(s.BulletPoints), nil))))
	}
	return b.String()
}

func (v *articleView) help() []key.Binding {
	k := v.m.keys
	if v.focused {
		return []key.Binding{k.enter, k.save, k.mode, k.cancel}
	}
	return []key.Binding{k.edit, k.mode, k.language, k.more, k.save}
}
