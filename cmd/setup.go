package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/desertthunder/postx/internal/shared"
	"github.com/urfave/cli/v3"
)

func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a config.toml template",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Where to write the template (default: the --config path)",
			},
		},
		Action: r.Init,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the local database and run migrations",
		Action: r.SetupDatabase,
	}
}

// Init writes the example config. It refuses to overwrite an existing file.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" {
		path = r.configPath
	}
	if path == "" {
		return fmt.Errorf("%w: --output", shared.ErrMissingArgument)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Wrote %s\n", path)
	r.writePlain("Next: set backend.url, then run 'postx setup'\n")
	return nil
}

// SetupDatabase opens the configured database, which applies pending migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)
	db, err := r.database()
	if err != nil {
		return err
	}

	applied, err := shared.AppliedMigrations(db)
	if err != nil {
		return err
	}
	versions := make([]int, 0, len(applied))
	for v := range applied {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	return r.emit(cmd, map[string]any{"path": r.config.Database.Path, "migrations": versions}, func() {
		r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
		r.writePlain("Applied migrations: %v\n", versions)
	})
}
