package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/desertthunder/postx/internal/tasks"
)

const sizeStep = 10

// assetView uploads and applies a logo or a frame. Both steps are optional.
type assetView struct {
	m       *Model
	kind    services.AssetKind
	path    textinput.Model
	editing bool

	position int
	width    int
	height   int
	original bool
	current  *services.AssetInfo
}

func newAssetView(m *Model, kind services.AssetKind) *assetView {
	in := textinput.New()
	in.Placeholder = m.t("asset_path_label", nil)
	in.Width = 60
	return &assetView{
		m:      m,
		kind:   kind,
		path:   in,
		width:  services.DefaultWidth,
		height: services.DefaultHeight,
	}
}

func (v *assetView) enter() tea.Cmd {
	if !v.m.state.HasBaseImage() {
		return nil
	}
	w, kind := v.m.wizard, v.kind
	return v.m.run(opCurrentAsset, v, func(ctx context.Context, _ chan<- tasks.ProgressUpdate) (any, error) {
		return w.CurrentAsset(ctx, kind)
	})
}

func (v *assetView) capturing() bool { return v.editing }

func (v *assetView) canContinue() bool { return true }

func (v *assetView) options() tasks.ApplyOptions {
	return tasks.ApplyOptions{
		Position:     services.Positions()[v.position],
		Width:        v.width,
		Height:       v.height,
		OriginalSize: v.original,
	}
}

func (v *assetView) update(msg tea.KeyMsg) tea.Cmd {
	keys := v.m.keys
	w, kind := v.m.wizard, v.kind

	if v.editing {
		switch {
		case key.Matches(msg, keys.cancel):
			v.editing = false
			v.path.Blur()
			return nil
		case key.Matches(msg, keys.enter):
			path := strings.TrimSpace(v.path.Value())
			v.editing = false
			v.path.Blur()
			if path == "" {
				return nil
			}
			return v.m.run(opUploadAsset, v, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error) {
				return w.UploadAsset(ctx, kind, path, progress)
			})
		}
		var cmd tea.Cmd
		v.path, cmd = v.path.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, keys.upload):
		if !v.m.state.HasBaseImage() {
			v.m.notice = notice{text: v.m.t("asset_image_required", nil), isErr: true}
			return nil
		}
		v.editing = true
		return v.path.Focus()
	case key.Matches(msg, keys.position):
		v.position = (v.position + 1) % len(services.Positions())
	case key.Matches(msg, keys.original):
		v.original = !v.original
	case key.Matches(msg, keys.more):
		v.width += sizeStep
		v.height += sizeStep
	case key.Matches(msg, keys.less):
		if v.width > sizeStep && v.height > sizeStep {
			v.width -= sizeStep
			v.height -= sizeStep
		}
	case key.Matches(msg, keys.remove):
		return v.m.run(opRemoveAsset, v, func(ctx context.Context, _ chan<- tasks.ProgressUpdate) (any, error) {
			return nil, w.RemoveAsset(ctx, kind)
		})
	case key.Matches(msg, keys.apply):
		opts := v.options()
		return v.m.run(opApplyAsset, v, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error) {
			opts.Progress = progress
			if kind == services.AssetFrame {
				return nil, w.ApplyFrame(ctx, opts)
			}
			return nil, w.ApplyLogo(ctx, opts)
		})
	}
	return nil
}

func (v *assetView) done(r opResult) tea.Cmd {
	if r.err != nil {
		if errors.Is(r.err, shared.ErrImageRequired) {
			v.m.notice = notice{text: v.m.t("asset_image_required", nil), isErr: true}
		}
		return nil
	}

	switch r.op {
	case opCurrentAsset, opUploadAsset:
		if info, ok := r.value.(*services.AssetInfo); ok {
			v.current = info
		}
		if r.op == opUploadAsset {
			v.m.notice = notice{text: v.m.t("asset_uploaded", map[string]any{"Name": shared.LastSegment(v.localPath())})}
		}
	case opRemoveAsset:
		v.current = nil
	}
	return nil
}

func (v *assetView) localPath() string {
	if v.kind == services.AssetFrame {
		return v.m.state.Customization.Frame
	}
	return v.m.state.Customization.Logo
}

func (v *assetView) view() string {
	m := v.m
	var b strings.Builder

	subtitle := "asset_logo_subtitle"
	if v.kind == services.AssetFrame {
		subtitle = "asset_frame_subtitle"
	}
	b.WriteString(m.styles.subtitle.Render(m.t(subtitle, nil)) + "\n\n")

	if !m.state.HasBaseImage() {
		b.WriteString(m.styles.warn.Render(m.t("asset_image_required", nil)))
		return b.String()
	}

	if p := v.localPath(); p != "" {
		b.WriteString(m.styles.text.Render(m.t("asset_path_label", nil)+": "+p) + "\n")
	}
	if v.current != nil && v.current.Present {
		b.WriteString(m.styles.ok.Render(fmt.Sprintf("✓ %s %dx%d", v.kind, v.current.Width, v.current.Height)) + "\n")
	}

	b.WriteString(m.styles.text.Render(m.t("asset_position", map[string]any{"Position": services.Positions()[v.position]})) + "\n")
	if v.original {
		b.WriteString(m.styles.text.Render(m.t("asset_original_size", nil)) + "\n")
	} else {
		b.WriteString(m.styles.text.Render(m.t("asset_size", map[string]any{"Width": v.width, "Height": v.height})) + "\n")
	}
	if v.kind == services.AssetFrame && len(m.state.BulletPoints) > 0 {
		b.WriteString(m.styles.help.Render("“"+m.state.BulletPoints[0].Text+"”") + "\n")
	}

	if v.editing {
		b.WriteString("\n" + m.styles.box.Render(v.path.View()))
	}
	return b.String()
}

func (v *assetView) help() []key.Binding {
	k := v.m.keys
	if v.editing {
		return []key.Binding{k.enter, k.cancel}
	}
	return []key.Binding{k.upload, k.position, k.more, k.original, k.apply, k.remove}
}
