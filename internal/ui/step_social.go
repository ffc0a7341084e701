package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/postx/internal/models"
	"github.com/desertthunder/postx/internal/tasks"
)

// socialView selects platforms, generates posts and copies or downloads the results.
type socialView struct {
	m        *Model
	cursor   int
	selected map[models.Platform]bool
	viewing  int // index into the generated posts
}

func newSocialView(m *Model) *socialView {
	selected := make(map[models.Platform]bool)
	for _, p := range models.DefaultPlatforms() {
		selected[p] = true
	}
	return &socialView{m: m, selected: selected}
}

func (v *socialView) enter() tea.Cmd { return nil }

func (v *socialView) capturing() bool { return false }

func (v *socialView) canContinue() bool { return false }

func (v *socialView) platforms() []models.Platform {
	var out []models.Platform
	for _, p := range models.Platforms() {
		if v.selected[p] {
			out = append(out, p)
		}
	}
	return out
}

func (v *socialView) update(msg tea.KeyMsg) tea.Cmd {
	keys := v.m.keys
	all := models.Platforms()
	posts := v.m.state.SortedPlatforms()

	switch {
	case key.Matches(msg, keys.up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(msg, keys.down):
		v.cursor = min(v.cursor+1, len(all)-1)
	case key.Matches(msg, keys.toggle):
		p := all[v.cursor]
		v.selected[p] = !v.selected[p]
	case key.Matches(msg, keys.generate), key.Matches(msg, keys.enter):
		return v.generate()
	case msg.String() == "right", msg.String() == "l":
		if len(posts) > 0 {
			v.viewing = (v.viewing + 1) % len(posts)
		}
	case msg.String() == "left", msg.String() == "h":
		if len(posts) > 0 {
			v.viewing = (v.viewing - 1 + len(posts)) % len(posts)
		}
	case key.Matches(msg, keys.copy):
		return v.copy(posts)
	case key.Matches(msg, keys.download):
		if len(posts) == 0 {
			return nil
		}
		p := posts[v.viewing%len(posts)]
		w, dir := v.m.wizard, v.m.downloadDir
		return v.m.run(opDownloadImage, v, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error) {
			return w.DownloadSocialPostImage(ctx, p, dir, progress)
		})
	}
	return nil
}

func (v *socialView) generate() tea.Cmd {
	platforms := v.platforms()
	if len(platforms) == 0 {
		v.m.notice = notice{text: v.m.t("social_no_platforms", nil), isErr: true}
		return nil
	}
	w := v.m.wizard
	return v.m.run(opGenerateSocial, v, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error) {
		return w.GenerateSocialPosts(ctx, platforms, progress)
	})
}

func (v *socialView) copy(posts []models.Platform) tea.Cmd {
	if len(posts) == 0 {
		return nil
	}
	p := posts[v.viewing%len(posts)]
	post := v.m.state.SocialPosts[p]
	if err := v.m.copyText(post.FullText()); err != nil {
		v.m.logger.Warn("clipboard write failed", "error", err)
		v.m.notice = notice{text: v.m.t("social_copy_failed", nil), isErr: true}
		return nil
	}
	v.m.notice = notice{text: v.m.t("social_copied", map[string]any{"Platform": p.Info().Name})}
	return nil
}

func (v *socialView) done(r opResult) tea.Cmd {
	if r.err != nil {
		return nil
	}
	switch r.op {
	case opGenerateSocial:
		v.viewing = 0
	case opDownloadImage:
		v.m.notice = notice{text: v.m.t("social_downloaded", map[string]any{"Path": r.value})}
	}
	return nil
}

func (v *socialView) view() string {
	m := v.m
	s := m.state
	var b strings.Builder

	b.WriteString(m.styles.subtitle.Render(m.t("social_subtitle", nil)) + "\n\n")
	b.WriteString(m.styles.accent.Render(m.t("social_select", nil)) + "\n")
	for i, p := range models.Platforms() {
		info := p.Info()
		check := "[ ]"
		if v.selected[p] {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", check, info.Icon, info.Name)
		if i == v.cursor {
			b.WriteString(m.styles.selected.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(m.styles.text.Render("  "+line) + "\n")
		}
	}

	if m.busy == opGenerateSocial || s.SocialGenerating {
		msg := m.t("social_generating", nil)
		if p := m.progress; p.Phase == tasks.PollSocial && p.Total > 0 {
			msg = m.t("social_polling", map[string]any{"Attempt": p.Step, "Max": p.Total})
		}
		b.WriteString("\n" + m.styles.accent.Render(msg))
		return b.String()
	}
	if s.SocialError != "" {
		b.WriteString("\n" + m.styles.err.Render(s.SocialError))
	}

	posts := s.SortedPlatforms()
	if len(posts) == 0 {
		return b.String()
	}
	p := posts[v.viewing%len(posts)]
	post := s.SocialPosts[p]
	info := p.Info()

	var card strings.Builder
	card.WriteString(m.styles.selected.Render(fmt.Sprintf("%s %s  (%d/%d)", info.Icon, info.Name, v.viewing%len(posts)+1, len(posts))) + "\n\n")
	card.WriteString(m.styles.text.Width(72).Render(post.Caption) + "\n")
	if post.CallToAction != "" {
		card.WriteString("\n" + m.styles.accent.Render(post.CallToAction) + "\n")
	}
	if len(post.Hashtags) > 0 {
		card.WriteString("\n" + m.styles.help.Render(strings.Join(post.Hashtags, " ")) + "\n")
	}
	count := m.t("social_characters", map[string]any{"Count": len([]rune(post.Caption)), "Max": info.MaxLength})
	if post.OverLimit() {
		card.WriteString("\n" + m.styles.warn.Render(count))
	} else {
		card.WriteString("\n" + m.styles.help.Render(count))
	}
	b.WriteString("\n" + m.styles.box.Render(card.String()))
	return b.String()
}

func (v *socialView) help() []key.Binding {
	k := v.m.keys
	bindings := []key.Binding{k.up, k.down, k.toggle, k.generate}
	if len(v.m.state.SocialPosts) > 0 {
		bindings = append(bindings, k.copy, k.download)
	}
	return bindings
}
