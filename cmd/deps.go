package main

import (
	"context"
	"fmt"
	"io"

	"github.com/desertthunder/spotingest/internal/assets"
	"github.com/desertthunder/spotingest/internal/auth"
	"github.com/desertthunder/spotingest/internal/catalog"
	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/repositories"
	"github.com/desertthunder/spotingest/internal/repositories/pg"
	"github.com/desertthunder/spotingest/internal/shared"
	"github.com/desertthunder/spotingest/internal/tasks"
)

// openStore connects to the configured backend and brings its schema up to date.
func (r *Runner) openStore(ctx context.Context) (models.ContentStore, error) {
	cfg := r.config.Database

	switch cfg.Driver {
	case "postgres":
		db, err := pg.New(ctx, cfg.URL, cfg.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		r.logger.Debug("opened postgres store")
		return db, nil
	case "", "sqlite":
		db, err := shared.NewDatabase(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
		}
		shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

		applied, err := shared.RunMigrations(db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		r.logger.Debug("opened sqlite store", "path", cfg.Path, "migrations", applied)
		return repositories.NewStore(db), nil
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

// engine wires an Engine from config. The returned cleanup closes the store and blob store.
func (r *Runner) engine(ctx context.Context) (*tasks.Engine, func(), error) {
	if err := r.config.Validate(); err != nil {
		return nil, nil, err
	}

	store, err := r.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	blobs, err := assets.NewBlobStore(ctx, r.config.Assets)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if c, ok := blobs.(io.Closer); ok {
			if err := c.Close(); err != nil {
				r.logger.Warn("failed to close blob store", "error", err)
			}
		}
		if err := store.Close(); err != nil {
			r.logger.Warn("failed to close store", "error", err)
		}
	}

	creds := models.Credentials{
		ClientID:     r.config.Credentials.Spotify.ClientID,
		ClientSecret: r.config.Credentials.Spotify.ClientSecret,
	}
	engine := tasks.NewEngine(
		auth.NewProvider(creds, r.config.Catalog.TokenURL, r.httpClient),
		catalog.New(catalog.Options{
			BaseURL:    r.config.Catalog.APIURL,
			Market:     r.config.Catalog.Market,
			HTTPClient: r.httpClient,
		}),
		assets.NewFetcher(r.httpClient, blobs),
		store,
		tasks.Options{
			SeedArtistID: r.config.Catalog.SeedArtistID,
			Logger:       shared.WithLogger(r.logger, "component", "ingest"),
			Metrics:      r.metrics,
		},
	)
	return engine, cleanup, nil
}
