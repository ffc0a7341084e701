package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/desertthunder/postx/internal/server"
	"github.com/desertthunder/postx/internal/services"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/urfave/cli/v3"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the backend API from fixtures so several postx runs share one mock",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: host and port of backend.url)",
			},
			&cli.IntFlag{
				Name:  "pending-polls",
				Usage: "Status calls a social job stays processing before it completes",
				Value: 2,
			},
			&cli.StringFlag{
				Name:  "uploads",
				Usage: "Directory for uploaded files (default: OS temp dir)",
			},
		},
		Action: r.Serve,
	}
}

// listenAddr derives the listen address and route prefix from the configured backend URL.
func listenAddr(backendURL string) (addr, prefix string, err error) {
	u, err := url.Parse(backendURL)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("%w: backend.url %q", shared.ErrInvalidConfig, backendURL)
	}
	return u.Host, strings.TrimRight(u.Path, "/"), nil
}

// Serve runs the fixture backend until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr, prefix, err := listenAddr(r.config.Backend.URL)
	if err != nil {
		return err
	}
	if cmd.IsSet("addr") {
		addr = cmd.String("addr")
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	backend := services.NewMockBackend(
		services.WithDelay(r.config.Backend.MockDelay.Duration),
		services.WithPendingPolls(int(cmd.Int("pending-polls"))),
	)

	router := server.NewBasicRouter()
	router.Use(server.Recover(logger), server.Logging(logger))
	router.Handler(server.NewBackendHandler(backend, server.BackendOpts{
		Prefix:    prefix,
		UploadDir: cmd.String("uploads"),
		Logger:    logger,
	}))

	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("serving fixture backend", "addr", addr, "prefix", prefix)
	r.writePlain("Fixture backend on http://%s%s (ctrl+c to stop)\n", addr, prefix)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
