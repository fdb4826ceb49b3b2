package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotingest/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) setupPath(cmd *cli.Command) string {
	if p := cmd.String("config"); p != "" {
		return p
	}
	if r.configPath != "" {
		return r.configPath
	}
	return defaultConfigPath
}

// SetupConfig writes the example configuration to the config path unless a file already exists there.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.setupPath(cmd)

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Run 'spotingest setup credentials --client-id ID --client-secret SECRET'\n")
	r.writePlain("2. Run 'spotingest load'\n")
	return nil
}

// SetupCredentials stores the Spotify client id and secret in the config file.
func (r *Runner) SetupCredentials(ctx context.Context, cmd *cli.Command) error {
	path := r.setupPath(cmd)

	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return err
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", path)
	}

	if err := config.SetCredentials(cmd.String("client-id"), cmd.String("client-secret")); err != nil {
		return err
	}
	if err := shared.SaveConfig(path, config); err != nil {
		return err
	}

	r.config.Credentials = config.Credentials
	r.logger.Info("credentials saved", "path", path)
	r.writePlain("✓ Spotify credentials saved to %s\n", path)
	return nil
}

// SetupDatabase opens the configured database and applies pending migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if p := cmd.String("config"); p != "" {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("%w: %s", shared.ErrMissingConfig, p)
		}
		config, err := shared.LoadConfig(p)
		if err != nil {
			return err
		}
		r.config = config
	}

	r.logger.Info("initializing database", "driver", r.config.Database.Driver)
	store, err := r.openStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	r.writePlain("✓ Database ready\n")
	return nil
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file (default: $SPOTINGEST_CONFIG or config.toml)",
	}
}

// setupCommand handles first-run configuration and database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config file",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:  "credentials",
				Usage: "Store Spotify client credentials in the config file",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "client-id",
						Usage:    "Spotify application client id",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "client-secret",
						Usage:    "Spotify application client secret",
						Required: true,
					},
				},
				Action: r.SetupCredentials,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}
