package main

import (
	"context"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mixtape/internal/tasks"
)

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Back up playlists and the library to JSON files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: mixtape_backup_{epoch})",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent playlist workers",
				Value: 5,
			},
			&cli.BoolFlag{
				Name:  "refresh-artwork",
				Usage: "Re-resolve cover URLs through the catalog",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Playlist file format (json, csv, markdown, text)",
				Value:   tasks.FormatJSON,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Artwork lookups per second",
				Value: 5,
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent the JSON summary",
			},
		},
		Action: r.Export,
	}
}

// Export dumps the collections to backup files, streaming progress to the log.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	store, db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	var artwork tasks.ArtworkSource
	if cmd.Bool("refresh-artwork") {
		artwork = r.newCatalog()
	}

	engine := tasks.NewExportEngine(store, artwork, r.logger)

	progress := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	result, err := engine.Export(ctx, progress, tasks.ExportOpts{
		OutputDir:      cmd.String("output"),
		NumWorkers:     int(cmd.Int("workers")),
		RateLimit:      cmd.Float("rate"),
		RefreshArtwork: cmd.Bool("refresh-artwork"),
		Format:         cmd.String("format"),
	})
	close(progress)
	wg.Wait()

	if err != nil {
		return err
	}

	return r.writeJSON(result, cmd.Bool("pretty"))
}
