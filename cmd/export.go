package main

import (
	"context"

	"github.com/desertthunder/postx/internal/formatter"
	"github.com/urfave/cli/v3"
)

// ExportDeck writes the slides (or bullet points, before slides exist) to a file.
func (r *Runner) ExportDeck(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	deck := formatter.DeckFromState(w.Store().State())
	var fetch formatter.ImageFetcher
	if !cmd.Bool("no-images") {
		fetch = formatter.DownloadImage
	}

	result, err := formatter.WriteDeckExport(ctx, deck, format, cmd.String("output"), fetch)
	if err != nil {
		return err
	}
	r.logger.Info("exported deck", "path", result.File, "slides", len(deck.Slides), "images", len(result.Images))

	return r.emit(cmd, result, func() {
		r.writePlain("✓ Exported %d slides to %s\n", len(deck.Slides), result.File)
		if len(result.Images) > 0 {
			r.writePlain("  %d images saved alongside\n", len(result.Images))
		}
	})
}
