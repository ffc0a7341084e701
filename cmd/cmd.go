// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/postx/internal/services"
	"github.com/urfave/cli/v3"
)

// projectCommand inspects and resets the persisted project
func projectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "project",
		Usage: "Inspect or reset the current project",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the project state",
				Action: r.ProjectShow,
			},
			{
				Name:   "new",
				Usage:  "Start a new project and clear the backend cache",
				Action: r.ProjectNew,
			},
			{
				Name:   "reset",
				Usage:  "Reset the project without touching the backend",
				Action: r.ProjectReset,
			},
			{
				Name:  "step",
				Usage: "Move to the next, previous or a numbered step (1-6)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "target"},
				},
				Action: r.ProjectStep,
			},
			{
				Name:  "settings",
				Usage: "Show or change generation settings",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "language",
						Usage: "Output language (id, code or short code)",
					},
					&cli.IntFlag{
						Name:  "slides",
						Usage: "Number of slides (1-10)",
					},
					&cli.IntFlag{
						Name:  "words",
						Usage: "Words per bullet point (10-30)",
					},
					&cli.BoolFlag{
						Name:  "music",
						Usage: "Add background music to the video",
					},
					&cli.BoolFlag{
						Name:  "voiceover",
						Usage: "Add a voiceover to the video",
					},
					&cli.BoolFlag{
						Name:  "auto-duration",
						Usage: "Let the backend pick slide durations",
					},
				},
				Action: r.ProjectSettings,
			},
		},
	}
}

// articleCommand submits and shows the source article
func articleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "article",
		Usage: "Process an article into bullet points",
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "Process an article from a URL or text",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Article URL",
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Article text",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "Read the article text from a file",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Output language",
					},
					&cli.IntFlag{
						Name:  "slides",
						Usage: "Number of slides (1-10)",
					},
					&cli.IntFlag{
						Name:  "words",
						Usage: "Words per bullet point (10-30)",
					},
				},
				Action: r.ArticleSubmit,
			},
			{
				Name:   "show",
				Usage:  "Print the processed article",
				Action: r.ArticleShow,
			},
		},
	}
}

// bulletsCommand reviews and edits bullet points
func bulletsCommand(r *Runner) *cli.Command {
	idArg := []cli.Argument{&cli.StringArg{Name: "id"}}
	return &cli.Command{
		Name:    "bullets",
		Aliases: []string{"bp"},
		Usage:   "Review and edit bullet points",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List bullet points",
				Action: r.BulletsList,
			},
			{
				Name:      "edit",
				Usage:     "Replace the text of a bullet point",
				Arguments: idArg,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "text",
						Usage:    "New text",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "keyword",
						Usage: "Keywords (repeatable); omitted keeps the current ones",
					},
				},
				Action: r.BulletsEdit,
			},
			{
				Name:      "regenerate",
				Usage:     "Regenerate one bullet point",
				Arguments: idArg,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "hint",
						Usage: "Instruction for the rewrite",
					},
				},
				Action: r.BulletsRegenerate,
			},
			{
				Name:   "regenerate-all",
				Usage:  "Regenerate every bullet point",
				Action: r.BulletsRegenerateAll,
			},
			{
				Name:   "keywords",
				Usage:  "Extract keywords for the article",
				Action: r.BulletsKeywords,
			},
			{
				Name:      "delete-image",
				Usage:     "Remove the image of a bullet point",
				Arguments: idArg,
				Action:    r.BulletsDeleteImage,
			},
		},
	}
}

// slidesCommand generates and edits slides
func slidesCommand(r *Runner) *cli.Command {
	idArg := []cli.Argument{&cli.StringArg{Name: "id"}}
	return &cli.Command{
		Name:  "slides",
		Usage: "Generate and edit slides",
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Generate one slide per bullet point",
				Action: r.SlidesGenerate,
			},
			{
				Name:   "list",
				Usage:  "List slides",
				Action: r.SlidesList,
			},
			{
				Name:      "regenerate",
				Usage:     "Regenerate the image of a slide",
				Arguments: idArg,
				Action:    r.SlidesRegenerate,
			},
			{
				Name:      "upload",
				Usage:     "Replace the image of a slide with a local file",
				Arguments: idArg,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Image file",
						Required: true,
					},
				},
				Action: r.SlidesUpload,
			},
			{
				Name:      "text",
				Usage:     "Change the text of a slide",
				Arguments: idArg,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "text",
						Usage:    "New text",
						Required: true,
					},
				},
				Action: r.SlidesText,
			},
			{
				Name:      "duration",
				Usage:     "Change how long a slide is shown",
				Arguments: idArg,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "seconds",
						Usage:    "Duration in seconds",
						Required: true,
					},
				},
				Action: r.SlidesDuration,
			},
		},
	}
}

func logoCommand(r *Runner) *cli.Command {
	return assetCommand(r, services.AssetLogo, "Upload and apply a logo")
}

func frameCommand(r *Runner) *cli.Command {
	return assetCommand(r, services.AssetFrame, "Upload and apply a frame")
}

// assetCommand builds the logo and frame command trees
func assetCommand(r *Runner, kind services.AssetKind, usage string) *cli.Command {
	applyFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "position",
			Usage: "top_right, top_left, bottom_right, bottom_left, center or center_custom",
			Value: string(services.TopRight),
		},
		&cli.IntFlag{
			Name:  "width",
			Usage: "Width in pixels",
			Value: services.DefaultWidth,
		},
		&cli.IntFlag{
			Name:  "height",
			Usage: "Height in pixels",
			Value: services.DefaultHeight,
		},
		&cli.BoolFlag{
			Name:  "original",
			Usage: "Keep the uploaded size",
		},
	}
	if kind == services.AssetFrame {
		applyFlags = append(applyFlags, &cli.StringFlag{
			Name:  "text",
			Usage: "Caption drawn into the frame (default: first bullet point)",
		})
	}

	return &cli.Command{
		Name:  string(kind),
		Usage: usage,
		Commands: []*cli.Command{
			{
				Name:   "current",
				Usage:  "Show the uploaded " + string(kind),
				Action: r.assetAction(kind, r.AssetCurrent),
			},
			{
				Name:  "upload",
				Usage: "Upload a " + string(kind) + " image",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Image file",
						Required: true,
					},
				},
				Action: r.assetAction(kind, r.AssetUpload),
			},
			{
				Name:   "apply",
				Usage:  "Composite the " + string(kind) + " onto the slide images",
				Flags:  applyFlags,
				Action: r.assetAction(kind, r.AssetApply),
			},
			{
				Name:   "remove",
				Usage:  "Delete the uploaded " + string(kind),
				Action: r.assetAction(kind, r.AssetRemove),
			},
		},
	}
}

// socialCommand generates, downloads and exports social media posts
func socialCommand(r *Runner) *cli.Command {
	jobFlag := &cli.IntFlag{
		Name:     "job",
		Usage:    "Social post job ID",
		Required: true,
	}
	return &cli.Command{
		Name:  "social",
		Usage: "Generate social media posts",
		Commands: []*cli.Command{
			{
				Name:   "platforms",
				Usage:  "List supported platforms and their limits",
				Action: r.SocialPlatforms,
			},
			{
				Name:  "generate",
				Usage: "Generate posts for the selected platforms",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "platform",
						Aliases: []string{"p"},
						Usage:   "Platform (repeatable)",
						Value:   []string{"instagram", "facebook"},
					},
				},
				Action: r.SocialGenerate,
			},
			{
				Name:  "download",
				Usage: "Download the generated image of a post",
				Flags: []cli.Flag{
					jobFlag,
					&cli.StringFlag{
						Name:     "platform",
						Aliases:  []string{"p"},
						Usage:    "Platform",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory",
						Value: ".",
					},
				},
				Action: r.SocialDownload,
			},
			{
				Name:  "export",
				Usage: "Export the archived posts of a job",
				Flags: []cli.Flag{
					jobFlag,
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, md, txt or json",
						Value:   "md",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.SocialExport,
			},
			{
				Name:  "history",
				Usage: "List archived posts",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "article",
						Usage: "Only posts of this article",
					},
					&cli.StringFlag{
						Name:  "platform",
						Usage: "Only posts for this platform",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of posts",
						Value: 20,
					},
				},
				Action: r.SocialHistory,
			},
		},
	}
}

// musicCommand browses and selects background music
func musicCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "music",
		Usage: "Background music for the video",
		Commands: []*cli.Command{
			{
				Name:   "categories",
				Usage:  "List music categories",
				Action: r.MusicCategories,
			},
			{
				Name:  "search",
				Usage: "Search the music provider",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Search terms",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Category filter",
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page",
						Value: 1,
					},
				},
				Action: r.MusicSearch,
			},
			{
				Name:  "select",
				Usage: "Select a track by ID, upload a file, or clear the selection",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Track ID from search results",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Search terms used to find the track",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Category used to find the track",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "Upload a local audio file instead",
					},
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Remove the background music",
					},
				},
				Action: r.MusicSelect,
			},
		},
	}
}

// videoCommand starts and inspects video jobs
func videoCommand(r *Runner) *cli.Command {
	idFlag := &cli.IntFlag{
		Name:     "id",
		Usage:    "Video ID",
		Required: true,
	}
	return &cli.Command{
		Name:  "video",
		Usage: "Generate a video from the slides",
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Start a video job",
				Action: r.VideoGenerate,
			},
			{
				Name:   "status",
				Usage:  "Show a video job",
				Flags:  []cli.Flag{idFlag},
				Action: r.VideoStatus,
			},
			{
				Name:   "open",
				Usage:  "Open the video in the browser",
				Flags:  []cli.Flag{idFlag},
				Action: r.VideoOpen,
			},
			{
				Name:  "voice",
				Usage: "Select or clear the voiceover voice",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Voice ID",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Voice display name",
					},
					&cli.StringFlag{
						Name:  "gender",
						Usage: "Voice gender",
					},
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Remove the voice",
					},
				},
				Action: r.VideoVoice,
			},
			{
				Name:  "outro",
				Usage: "Upload an outro image",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Image file",
						Required: true,
					},
				},
				Action: r.VideoOutro,
			},
		},
	}
}

// exportCommand writes the slide deck to a file
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export project content",
		Commands: []*cli.Command{
			{
				Name:  "deck",
				Usage: "Export the slides as markdown, YAML, PDF or JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "md, yaml, pdf or json",
						Value:   "md",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: deck.<ext>)",
					},
					&cli.BoolFlag{
						Name:  "no-images",
						Usage: "Keep remote image URLs instead of downloading them",
					},
				},
				Action: r.ExportDeck,
			},
		},
	}
}
