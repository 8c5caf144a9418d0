package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mixtape/internal/server"
	"github.com/desertthunder/mixtape/internal/shared"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the REST API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Override the configured port",
			},
		},
		Action: r.Serve,
	}
}

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	store, db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := r.config.Server
	if port := cmd.Int("port"); port != 0 {
		cfg.Port = int(port)
	}

	srv := server.New(cfg, store, r.newCatalog(), shared.WithLogger(r.logger, "component", "api"))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
