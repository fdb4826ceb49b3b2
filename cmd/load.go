package main

import (
	"context"
	"errors"
	"sync"

	"github.com/desertthunder/spotingest/internal/server"
	"github.com/desertthunder/spotingest/internal/tasks"
	"github.com/desertthunder/spotingest/internal/ui"
	"github.com/urfave/cli/v3"
)

// errLoadFailed is returned once the failure has been logged and shown; main only sets the exit code.
var errLoadFailed = errors.New("ingestion failed")

// Load runs one ingestion and prints the coarse outcome.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) error {
	engine, cleanup, err := r.engine(ctx)
	if err != nil {
		r.logger.Error("failed to prepare ingestion", "error", err)
		r.writePlain("%s\n", ui.Styles.Err(server.FailureMessage))
		return errLoadFailed
	}
	defer cleanup()

	var progress chan tasks.ProgressUpdate
	var wg sync.WaitGroup
	if !cmd.Bool("quiet") {
		progress = make(chan tasks.ProgressUpdate, 64)
		wg.Add(1)
		go func() {
			defer wg.Done()
			ui.PrintProgress(r.output, ui.Styles, progress)
		}()
	}

	ok := engine.LoadWithProgress(ctx, progress)
	if progress != nil {
		close(progress)
		wg.Wait()
	}

	if !ok {
		r.writePlain("%s\n", ui.Styles.Err(server.FailureMessage))
		return errLoadFailed
	}
	r.writePlain("%s\n", ui.Styles.OK(server.SuccessMessage))
	return nil
}

func loadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "load",
		Usage: "Load related artists, their top tracks and albums from Spotify",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only print the outcome",
			},
		},
		Action: r.Load,
	}
}
