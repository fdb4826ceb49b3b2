package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/spotingest/internal/schedule"
	"github.com/desertthunder/spotingest/internal/server"
	"github.com/desertthunder/spotingest/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the trigger web service, optionally with scheduled ingestions, until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}
	return r.serve(ctx, cmd, addr, r.cron(cmd))
}

func (r *Runner) cron(cmd *cli.Command) string {
	if expr := cmd.String("schedule"); expr != "" {
		return expr
	}
	return r.config.Schedule.Cron
}

func (r *Runner) serve(ctx context.Context, cmd *cli.Command, addr, cron string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, cleanup, err := r.engine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if cron != "" {
		scheduler, err := schedule.New(shared.WithLogger(r.logger, "component", "schedule"))
		if err != nil {
			return err
		}
		// Scheduled runs belong to no request; they stop with serve.
		if err := scheduler.AddJob("load", cron, func() { engine.Load(ctx) }); err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				r.logger.Warn("failed to stop scheduler", "error", err)
			}
		}()

		for _, job := range scheduler.ListJobs() {
			r.writePlain("Next %s run at %s\n", job.Name, job.NextRun.Format(time.RFC1123))
		}
		if cmd.Bool("now") {
			if err := scheduler.RunNow("load"); err != nil {
				return err
			}
		}
	}

	srv, err := server.New(server.Options{
		Addr:    addr,
		Loader:  engine,
		Metrics: r.metrics,
		Logger:  shared.WithLogger(r.logger, "component", "http"),
	})
	if err != nil {
		return err
	}

	r.writePlain("Serving on http://%s\n", srv.Addr())
	return srv.Run(ctx)
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the Load data page, metrics and scheduled runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default from [server] config)",
			},
			&cli.StringFlag{
				Name:  "schedule",
				Usage: "Cron expression for scheduled runs, e.g. \"0 3 * * *\"",
			},
			&cli.BoolFlag{
				Name:  "now",
				Usage: "Also run the scheduled load once at startup",
			},
		},
		Action: r.Serve,
	}
}
