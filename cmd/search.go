package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalog for playable tracks",
		ArgsUsage: "<term>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of tracks to return",
				Value: 25,
			},
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Search by artist name instead of a free term",
			},
			&cli.StringFlag{
				Name:  "genre",
				Usage: "Search by genre instead of a free term",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent the JSON output",
			},
		},
		Action: r.Search,
	}
}

// Search queries the catalog and writes the matching tracks as JSON.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	term := cmd.Args().First()
	artist := cmd.String("artist")
	genre := cmd.String("genre")
	limit := int(cmd.Int("limit"))

	client := r.newCatalog()

	var tracks []models.Track
	switch {
	case artist != "":
		tracks = client.SearchByArtist(ctx, artist, limit)
	case genre != "":
		tracks = client.SearchByGenre(ctx, genre, limit)
	case term != "":
		tracks = client.Search(ctx, term, limit)
	default:
		return fmt.Errorf("%w: a search term, --artist or --genre is required", shared.ErrMissingArgument)
	}

	r.logger.Info("search complete", "tracks", len(tracks))
	return r.writeJSON(tracks, cmd.Bool("pretty"))
}
