package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/urfave/cli/v3"
)

// dumpEndpoints are the read-only backend resources collected by APIDump.
var dumpEndpoints = []struct{ name, path string }{
	{"articles", "/articles/"},
	{"platforms", "/platforms/"},
	{"music_categories", "/music/categories/"},
}

func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}
	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

func checkStatus(resp *services.APIResponse) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}
	return nil
}

// APIGet makes a direct GET request to the backend.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	r.logger.Info("GET request", "path", path)

	resp, err := r.apiService(ctx).Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := checkStatus(resp); err != nil {
		return err
	}
	return r.writeResponse(resp, !cmd.Bool("raw"))
}

// APIPost makes a direct POST request with a JSON body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	data := cmd.String("data")
	if !json.Valid([]byte(data)) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}
	r.logger.Info("POST request", "path", path)

	resp, err := r.apiService(ctx).Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := checkStatus(resp); err != nil {
		return err
	}
	return r.writeResponse(resp, true)
}

// APIDump collects the backend's read-only resources into one document.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("dumping backend state", "url", r.config.Backend.URL)
	api := r.apiService(ctx)

	dump := map[string]any{"backend": r.config.Backend.URL}
	var failures []map[string]string
	for _, ep := range dumpEndpoints {
		resp, err := api.Get(ctx, ep.path)
		if err == nil {
			err = checkStatus(resp)
		}
		if err != nil {
			r.logger.Warn("failed to fetch", "endpoint", ep.path, "error", err)
			failures = append(failures, map[string]string{"endpoint": ep.path, "error": services.Describe(err)})
			continue
		}
		dump[ep.name] = resp.JSONData
	}
	if len(failures) > 0 {
		dump["errors"] = failures
	}

	if path := cmd.String("save"); path != "" {
		data, err := shared.MarshalJSON(dump, true)
		if err != nil {
			return fmt.Errorf("failed to marshal dump: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to save dump: %w", err)
		}
		r.logger.Info("dump saved", "file", path)
	}
	return r.writeJSON(dump, true)
}

func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET a backend path and print the response",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "raw",
						Usage: "Print compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "POST a JSON body to a backend path",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "dump",
				Usage: "Fetch articles, platforms and music categories in one document",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "save",
						Usage: "Also write the dump to this file",
					},
				},
				Action: r.APIDump,
			},
		},
	}
}
