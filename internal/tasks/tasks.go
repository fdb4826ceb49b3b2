package tasks

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotingest/internal/catalog"
	"github.com/desertthunder/spotingest/internal/metrics"
	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/shared"
	"github.com/desertthunder/spotingest/internal/taxonomy"
)

// TokenSource acquires the run-scoped access token.
type TokenSource interface {
	Token(ctx context.Context) (models.AccessToken, error)
}

// Catalog reads artist, track and album descriptors.
type Catalog interface {
	RelatedArtists(ctx context.Context, token models.AccessToken, seedID string) ([]catalog.ArtistDescriptor, error)
	TopTracks(ctx context.Context, token models.AccessToken, artistID string) ([]catalog.TrackDescriptor, error)
	Albums(ctx context.Context, token models.AccessToken, artistID string) ([]catalog.AlbumDescriptor, error)
}

// AssetFetcher downloads the first image of a list and stores it under the record's external id.
type AssetFetcher interface {
	FetchPrimary(ctx context.Context, urls []string, externalID string) (models.StoredAsset, error)
}

// GenreResolver maps genre names to tag ids. It never fails; unresolvable names are dropped.
type GenreResolver interface {
	Resolve(ctx context.Context, names []string) []string
	Created() int // tags stored by this resolver
}

// Counts tallies one record kind over a run.
type Counts struct {
	Created int
	Skipped int // already stored
	Failed  int
}

// Failure is a contained error that skipped one unit of work.
type Failure struct {
	Phase Phase
	Key   string // external id of the artist, track or album
	Err   error
}

// RunResult contains the outcome of a run.
type RunResult struct {
	Started  time.Time
	Finished time.Time
	Artists  Counts
	Songs    Counts
	Albums   Counts
	Genres   int // genre tags created
	Failures []Failure
}

// Duration is the wall time of the run.
func (r *RunResult) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Failed is the number of contained failures across all kinds.
func (r *RunResult) Failed() int {
	return len(r.Failures)
}

// Options configures an [Engine].
type Options struct {
	SeedArtistID string
	Logger       *log.Logger
	Metrics      *metrics.Metrics

	// Genres returns the resolver for one run. Nil selects a [taxonomy.Resolver] over the store's tags.
	Genres func() GenreResolver
}

// Engine ingests the related artists of a seed, with their top tracks and albums, into a content store.
type Engine struct {
	tokens  TokenSource
	catalog Catalog
	assets  AssetFetcher
	store   models.ContentStore
	seedID  string
	genres  func() GenreResolver
	logger  *log.Logger
	metrics *metrics.Metrics

	mu sync.Mutex
}

// NewEngine creates an Engine from its collaborators.
func NewEngine(tokens TokenSource, cat Catalog, assets AssetFetcher, store models.ContentStore, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.Genres == nil {
		tags, logger := store.Tags(), opts.Logger
		opts.Genres = func() GenreResolver { return taxonomy.NewResolver(tags, logger) }
	}

	return &Engine{
		tokens:  tokens,
		catalog: cat,
		assets:  assets,
		store:   store,
		seedID:  opts.SeedArtistID,
		genres:  opts.Genres,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Load runs an ingestion and reports whether it completed without aborting.
//
// Errors and panics are logged with full detail; callers only learn success or failure.
func (e *Engine) Load(ctx context.Context) bool {
	return e.LoadWithProgress(ctx, nil)
}

// LoadWithProgress is [Engine.Load] with progress reporting.
func (e *Engine) LoadWithProgress(ctx context.Context, progress chan<- ProgressUpdate) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("ingestion panicked", "panic", r, "stack", string(debug.Stack()))
			e.metrics.RunFinished("failed", 0)
			ok = false
		}
	}()

	result, err := e.Run(ctx, progress)
	if err != nil {
		e.logger.Error("ingestion failed", "kind", shared.ErrorKind(err), "error", err)
		return false
	}

	e.logger.Info("ingestion finished",
		"artists", result.Artists.Created,
		"songs", result.Songs.Created,
		"albums", result.Albums.Created,
		"genres", result.Genres,
		"failures", result.Failed(),
		"duration", result.Duration().Round(time.Millisecond))
	return true
}

// Run performs one ingestion. Only token acquisition and the related-artists fetch abort it;
// the returned error then wraps [shared.ErrAuth] or [shared.ErrFetch]. A run already in progress
// on this Engine yields [shared.ErrRunInProgress] and a nil result.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	if !e.mu.TryLock() {
		e.metrics.RunFinished("busy", 0)
		return nil, shared.ErrRunInProgress
	}
	defer e.mu.Unlock()

	result := &RunResult{Started: time.Now()}
	err := e.run(ctx, progress, result)
	result.Finished = time.Now()

	if err != nil {
		e.metrics.RunFinished("failed", result.Duration())
		return result, err
	}

	e.metrics.RunFinished("success", result.Duration())
	e.sendProgress(progress, doneUpdate(result))
	return result, nil
}

func (e *Engine) run(ctx context.Context, progress chan<- ProgressUpdate, result *RunResult) error {
	e.sendProgress(progress, tokenUpdate())
	token, err := e.tokens.Token(ctx)
	if err != nil {
		e.metrics.Failure(PhaseToken.String(), shared.ErrorKind(err))
		return fmt.Errorf("acquiring access token: %w", err)
	}

	e.sendProgress(progress, relatedArtistsUpdate(e.seedID))
	related, err := e.catalog.RelatedArtists(ctx, token, e.seedID)
	if err != nil {
		e.metrics.Failure(PhaseRelatedArtists.String(), shared.ErrorKind(err))
		return fmt.Errorf("fetching related artists: %w", err)
	}
	e.logger.Debug("fetched related artists", "seed", e.seedID, "count", len(related))

	genres := e.genres()
	defer func() { result.Genres = genres.Created() }()

	total := len(related)
	for i, desc := range related {
		if err := ctx.Err(); err != nil {
			return err
		}

		e.sendProgress(progress, artistUpdate(i+1, total, desc))
		artist, ok := e.ingestArtist(ctx, genres, desc, result)
		if !ok {
			continue
		}

		e.sendProgress(progress, songsUpdate(i+1, total, artist.Title))
		e.ingestSongs(ctx, token, artist, result)

		e.sendProgress(progress, albumsUpdate(i+1, total, artist.Title))
		e.ingestAlbums(ctx, token, artist, result)
	}
	return nil
}

// ingestArtist returns the stored artist for desc, creating it when it is new.
func (e *Engine) ingestArtist(ctx context.Context, genres GenreResolver, desc catalog.ArtistDescriptor, result *RunResult) (*models.Artist, bool) {
	existing, err := e.store.Artists().GetByExternalID(ctx, desc.ID)
	if err == nil {
		e.skipped(&result.Artists, models.KindArtist)
		return existing, true
	}
	if !errors.Is(err, shared.ErrNotFound) {
		e.failed(result, &result.Artists, PhaseArtist, desc.ID, err)
		return nil, false
	}

	asset, err := e.assets.FetchPrimary(ctx, desc.ImageURLs, desc.ID)
	if err != nil {
		e.failed(result, &result.Artists, PhaseArtist, desc.ID, err)
		return nil, false
	}

	artist := &models.Artist{
		ExternalID:    desc.ID,
		Title:         desc.Name,
		FollowerCount: desc.Followers,
		ImageRef:      asset.URI,
		GenreTagIDs:   genres.Resolve(ctx, desc.Genres),
		ExternalURL:   desc.ExternalURL,
	}

	created, err := e.store.Artists().Create(ctx, artist)
	if err != nil {
		e.failed(result, &result.Artists, PhaseArtist, desc.ID, err)
		return nil, false
	}
	if !created {
		e.logger.Warn("artist stored concurrently, keeping existing record", "artist", desc.ID, "orphan", asset.URI)
		e.skipped(&result.Artists, models.KindArtist)
		return artist, true
	}

	e.created(&result.Artists, models.KindArtist)
	e.logger.Debug("created artist", "artist", desc.ID, "name", desc.Name, "genres", len(artist.GenreTagIDs))
	return artist, true
}

func (e *Engine) ingestSongs(ctx context.Context, token models.AccessToken, artist *models.Artist, result *RunResult) {
	tracks, err := e.catalog.TopTracks(ctx, token, artist.ExternalID)
	if err != nil {
		e.logger.Warn("skipping songs", "artist", artist.ExternalID, "kind", shared.ErrorKind(err), "error", err)
		e.recordFailure(result, PhaseSongs, artist.ExternalID, err)
		return
	}

	// Songs carry the artist's genres exactly as the stored genre string yields them.
	genres := models.SplitGenres(models.JoinGenres(artist.GenreTagIDs))
	for _, track := range tracks {
		if ctx.Err() != nil {
			return
		}

		_, err := e.store.Songs().GetByExternalID(ctx, track.ID)
		if err == nil {
			e.skipped(&result.Songs, models.KindSong)
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			e.failed(result, &result.Songs, PhaseSongs, track.ID, err)
			continue
		}

		asset, err := e.assets.FetchPrimary(ctx, track.AlbumImageURLs, track.ID)
		if err != nil {
			e.failed(result, &result.Songs, PhaseSongs, track.ID, err)
			continue
		}

		song := &models.Song{
			ExternalID:    track.ID,
			Title:         track.Name,
			AlbumImageRef: asset.URI,
			AlbumName:     track.AlbumName,
			ArtistID:      artist.ID,
			GenreTagIDs:   genres,
			Popularity:    track.Popularity,
			ReleaseDate:   e.releaseDate(track.ReleaseDate, track.ReleaseDatePrecision, track.ID),
			ExternalURL:   track.ExternalURL,
		}

		created, err := e.store.Songs().Create(ctx, song)
		switch {
		case err != nil:
			e.failed(result, &result.Songs, PhaseSongs, track.ID, err)
		case created:
			e.created(&result.Songs, models.KindSong)
		default:
			e.skipped(&result.Songs, models.KindSong)
		}
	}
}

func (e *Engine) ingestAlbums(ctx context.Context, token models.AccessToken, artist *models.Artist, result *RunResult) {
	albums, err := e.catalog.Albums(ctx, token, artist.ExternalID)
	if err != nil {
		e.logger.Warn("skipping albums", "artist", artist.ExternalID, "kind", shared.ErrorKind(err), "error", err)
		e.recordFailure(result, PhaseAlbums, artist.ExternalID, err)
		return
	}

	for _, desc := range albums {
		if ctx.Err() != nil {
			return
		}

		_, err := e.store.Albums().GetByExternalID(ctx, desc.ID)
		if err == nil {
			e.skipped(&result.Albums, models.KindAlbum)
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			e.failed(result, &result.Albums, PhaseAlbums, desc.ID, err)
			continue
		}

		asset, err := e.assets.FetchPrimary(ctx, desc.ImageURLs, desc.ID)
		if err != nil {
			e.failed(result, &result.Albums, PhaseAlbums, desc.ID, err)
			continue
		}

		album := &models.Album{
			ExternalID:  desc.ID,
			Title:       desc.Name,
			ImageRef:    asset.URI,
			ArtistID:    artist.ID,
			ReleaseDate: e.releaseDate(desc.ReleaseDate, desc.ReleaseDatePrecision, desc.ID),
			ExternalURL: desc.ExternalURL,
		}

		created, err := e.store.Albums().Create(ctx, album)
		switch {
		case err != nil:
			e.failed(result, &result.Albums, PhaseAlbums, desc.ID, err)
		case created:
			e.created(&result.Albums, models.KindAlbum)
		default:
			e.skipped(&result.Albums, models.KindAlbum)
		}
	}
}

// releaseDate parses a catalog date. Missing or malformed dates are stored as unknown.
func (e *Engine) releaseDate(date, precision, key string) time.Time {
	if date == "" {
		return time.Time{}
	}
	t, err := catalog.ParseReleaseDate(date, precision)
	if err != nil {
		e.logger.Warn("ignoring release date", "key", key, "error", err)
		return time.Time{}
	}
	return t
}

func (e *Engine) created(c *Counts, kind models.Kind) {
	c.Created++
	e.metrics.Created(string(kind))
}

func (e *Engine) skipped(c *Counts, kind models.Kind) {
	c.Skipped++
	e.metrics.Skipped(string(kind))
}

func (e *Engine) failed(result *RunResult, c *Counts, phase Phase, key string, err error) {
	c.Failed++
	e.logger.Warn("skipping record", "phase", phase, "key", key, "kind", shared.ErrorKind(err), "error", err)
	e.recordFailure(result, phase, key, err)
}

func (e *Engine) recordFailure(result *RunResult, phase Phase, key string, err error) {
	result.Failures = append(result.Failures, Failure{Phase: phase, Key: key, Err: err})
	e.metrics.Failure(phase.String(), shared.ErrorKind(err))
}
