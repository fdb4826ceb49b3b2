package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/ui"
	"github.com/urfave/cli/v3"
)

// Stats holds the number of stored records per kind.
type Stats struct {
	Artists int `json:"artists"`
	Songs   int `json:"songs"`
	Albums  int `json:"albums"`
	Tags    int `json:"tags"`
}

func collectStats(ctx context.Context, store models.ContentStore) (*Stats, error) {
	var s Stats
	for _, c := range []struct {
		kind  string
		count func(context.Context) (int, error)
		dest  *int
	}{
		{"artists", store.Artists().Count, &s.Artists},
		{"songs", store.Songs().Count, &s.Songs},
		{"albums", store.Albums().Count, &s.Albums},
		{"tags", store.Tags().Count, &s.Tags},
	} {
		n, err := c.count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.kind, err)
		}
		*c.dest = n
	}
	return &s, nil
}

// Stats prints record counts per kind.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := collectStats(ctx, store)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, cmd.Bool("pretty"))
	}

	r.writePlainHeader(ui.Styles.Title("Stored records"))
	r.writePlain("Artists: %d\n", stats.Artists)
	r.writePlain("Songs:   %d\n", stats.Songs)
	r.writePlain("Albums:  %d\n", stats.Albums)
	r.writePlain("Genres:  %d\n", stats.Tags)
	return nil
}

func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show how many records are stored",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Stats,
	}
}
