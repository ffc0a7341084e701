package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/postx/internal/tasks"
)

// bulletsView lists the generated bullet points and edits them in place.
type bulletsView struct {
	m       *Model
	list    list.Model
	editor  textarea.Model
	editing string // id of the bullet point being edited
}

func newBulletsView(m *Model) *bulletsView {
	editor := textarea.New()
	editor.SetWidth(70)
	editor.SetHeight(4)
	return &bulletsView{
		m:      m,
		list:   newList(bulletItems(m.state.BulletPoints), m.t("step_bullet_points", nil)),
		editor: editor,
	}
}

func (v *bulletsView) enter() tea.Cmd {
	v.sync()
	return nil
}

func (v *bulletsView) sync() {
	v.list.SetItems(bulletItems(v.m.state.BulletPoints))
}

func (v *bulletsView) capturing() bool { return v.editing != "" }

func (v *bulletsView) canContinue() bool { return len(v.m.state.BulletPoints) > 0 }

func (v *bulletsView) selected() (bulletItem, bool) {
	item, ok := v.list.SelectedItem().(bulletItem)
	return item, ok
}

func (v *bulletsView) update(msg tea.KeyMsg) tea.Cmd {
	keys := v.m.keys
	w := v.m.wizard

	if v.editing != "" {
		switch {
		case key.Matches(msg, keys.cancel):
			v.editing = ""
			v.editor.Blur()
			return nil
		case key.Matches(msg, keys.save):
			id, text := v.editing, v.editor.Value()
			bp, _ := v.m.state.BulletPoint(id)
			v.editing = ""
			v.editor.Blur()
			return v.m.run(opEditBullet, v, func(ctx context.Context, _ chan<- tasks.ProgressUpdate) (any, error) {
				return w.EditBulletPoint(ctx, id, text, bp.Keywords)
			})
		}
		var cmd tea.Cmd
		v.editor, cmd = v.editor.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, keys.edit), key.Matches(msg, keys.enter):
		item, ok := v.selected()
		if !ok {
			return nil
		}
		v.editing = item.bp.ID
		v.editor.SetValue(item.bp.Text)
		return v.editor.Focus()
	case key.Matches(msg, keys.regenerate):
		item, ok := v.selected()
		if !ok {
			return nil
		}
		return v.m.run(opRegenBullet, v, func(ctx context.Context, _ chan<- tasks.ProgressUpdate) (any, error) {
			return w.RegenerateBulletPoint(ctx, item.bp.ID, "")
		})
	case key.Matches(msg, keys.regenAll):
		return v.m.run(opRegenAll, v, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error) {
			return w.RegenerateAllBulletPoints(ctx, progress)
		})
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return cmd
}

func (v *bulletsView) done(r opResult) tea.Cmd {
	v.sync()
	if r.err == nil && r.op == opEditBullet {
		v.m.notice = notice{text: v.m.t("bullets_saved", nil)}
	}
	return nil
}

func (v *bulletsView) view() string {
	m := v.m
	s := m.state
	var b strings.Builder

	b.WriteString(m.styles.subtitle.Render(m.t("bullets_subtitle", nil)) + "\n\n")
	if s.ArticleData.Summary != "" {
		b.WriteString(m.styles.accent.Render(m.t("bullets_summary", nil)) + "\n")
		b.WriteString(m.styles.text.Width(76).Render(s.ArticleData.Summary) + "\n\n")
	}
	if len(s.BulletPoints) == 0 {
		b.WriteString(m.styles.warn.Render(m.t("bullets_empty", nil)))
		return b.String()
	}

	if v.editing != "" {
		b.WriteString(m.styles.accent.Render(m.t("bullets_editing", map[string]any{"Number": v.list.Index() + 1})) + "\n")
		b.WriteString(m.styles.box.Render(v.editor.View()))
		return b.String()
	}
	b.WriteString(v.list.View())
	return b.String()
}

func (v *bulletsView) help() []key.Binding {
	k := v.m.keys
	if v.editing != "" {
		return []key.Binding{k.save, k.cancel}
	}
	return []key.Binding{k.up, k.down, k.edit, k.regenerate, k.regenAll}
}
