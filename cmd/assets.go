package main

import (
	"context"

	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/tasks"
	"github.com/urfave/cli/v3"
)

type assetFunc func(ctx context.Context, cmd *cli.Command, kind services.AssetKind) error

func (r *Runner) assetAction(kind services.AssetKind, fn assetFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return fn(ctx, cmd, kind)
	}
}

func (r *Runner) printAsset(kind services.AssetKind, info *services.AssetInfo) {
	if info == nil || !info.Present {
		r.writePlain("No %s uploaded.\n", kind)
		return
	}
	r.writePlain("✓ %s: %dx%d\n", kind, info.Width, info.Height)
	if info.Message != "" {
		r.writePlain("  %s\n", info.Message)
	}
}

// AssetCurrent shows what the backend holds for the logo or frame.
func (r *Runner) AssetCurrent(ctx context.Context, cmd *cli.Command, kind services.AssetKind) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	info, err := w.CurrentAsset(ctx, kind)
	if err != nil {
		return err
	}
	return r.emit(cmd, info, func() { r.printAsset(kind, info) })
}

// AssetUpload uploads a logo or frame image.
func (r *Runner) AssetUpload(ctx context.Context, cmd *cli.Command, kind services.AssetKind) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.track(cmd)
	info, err := w.UploadAsset(ctx, kind, cmd.String("file"), progress)
	stop()
	if err != nil {
		return err
	}
	return r.emit(cmd, info, func() { r.printAsset(kind, info) })
}

// AssetApply composites the uploaded logo or frame onto every generated image and advances the step.
func (r *Runner) AssetApply(ctx context.Context, cmd *cli.Command, kind services.AssetKind) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	opts := tasks.ApplyOptions{
		Position:     services.Position(cmd.String("position")),
		Width:        int(cmd.Int("width")),
		Height:       int(cmd.Int("height")),
		OriginalSize: cmd.Bool("original"),
	}
	progress, stop := r.track(cmd)
	opts.Progress = progress
	if kind == services.AssetFrame {
		opts.BulletPointText = cmd.String("text")
		err = w.ApplyFrame(ctx, opts)
	} else {
		err = w.ApplyLogo(ctx, opts)
	}
	stop()
	if err != nil {
		return err
	}

	s := w.Store().State()
	return r.emit(cmd, s.Slides, func() {
		r.writePlain("✓ Applied %s at %s\n", kind, opts.Position)
		r.printSlides(s.Slides)
	})
}

// AssetRemove deletes the uploaded logo or frame.
func (r *Runner) AssetRemove(ctx context.Context, cmd *cli.Command, kind services.AssetKind) error {
	w, err := r.open(ctx)
	if err != nil {
		return err
	}
	if err := w.RemoveAsset(ctx, kind); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s\n", kind)
}
