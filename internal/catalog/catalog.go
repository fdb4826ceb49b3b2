package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/spotingest/internal/auth"
	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/shared"
	"github.com/zmb3/spotify/v2"
)

const (
	// BaseURL is the Spotify Web API root.
	BaseURL = "https://api.spotify.com/v1/"
	// DefaultMarket is used for top tracks and albums when none is configured.
	DefaultMarket = "ES"
)

// ArtistDescriptor is a related artist as returned by the catalog.
type ArtistDescriptor struct {
	ID          string
	Name        string
	ImageURLs   []string
	Followers   int
	Genres      []string
	ExternalURL string
}

// TrackDescriptor is one of an artist's top tracks.
type TrackDescriptor struct {
	ID                   string
	Name                 string
	AlbumName            string
	AlbumImageURLs       []string
	ReleaseDate          string
	ReleaseDatePrecision string
	Popularity           int
	ExternalURL          string
}

// AlbumDescriptor is one of an artist's albums.
type AlbumDescriptor struct {
	ID                   string
	Name                 string
	ImageURLs            []string
	ReleaseDate          string
	ReleaseDatePrecision string
	ExternalURL          string
}

// Options configures a [Client]. Zero values select the public API, [DefaultMarket] and [http.DefaultClient].
type Options struct {
	BaseURL    string
	Market     string
	HTTPClient *http.Client
}

// Client fetches catalog data with a caller-supplied access token.
type Client struct {
	baseURL    string
	market     string
	httpClient *http.Client
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	if opts.Market == "" {
		opts.Market = DefaultMarket
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{baseURL: opts.BaseURL, market: opts.Market, httpClient: opts.HTTPClient}
}

// Market returns the market used for top tracks and albums.
func (c *Client) Market() string { return c.market }

func (c *Client) api(ctx context.Context, token models.AccessToken) *spotify.Client {
	return spotify.New(auth.NewClient(ctx, c.httpClient, token), spotify.WithBaseURL(c.baseURL))
}

// RelatedArtists fetches the artists related to seedID.
func (c *Client) RelatedArtists(ctx context.Context, token models.AccessToken, seedID string) ([]ArtistDescriptor, error) {
	artists, err := c.api(ctx, token).GetRelatedArtists(ctx, spotify.ID(seedID))
	if err != nil {
		return nil, fetchError("related artists", seedID, err)
	}

	result := make([]ArtistDescriptor, 0, len(artists))
	for _, a := range artists {
		result = append(result, ArtistDescriptor{
			ID:          string(a.ID),
			Name:        a.Name,
			ImageURLs:   imageURLs(a.Images),
			Followers:   int(a.Followers.Count),
			Genres:      a.Genres,
			ExternalURL: a.ExternalURLs["spotify"],
		})
	}
	return result, nil
}

// TopTracks fetches an artist's top tracks in the configured market.
//
// The request is built here because the library sends the legacy country parameter.
func (c *Client) TopTracks(ctx context.Context, token models.AccessToken, artistID string) ([]TrackDescriptor, error) {
	tracks, err := c.topTracks(ctx, token, artistID)
	if err != nil {
		return nil, fetchError("top tracks", artistID, err)
	}

	result := make([]TrackDescriptor, 0, len(tracks))
	for _, t := range tracks {
		result = append(result, TrackDescriptor{
			ID:                   string(t.ID),
			Name:                 t.Name,
			AlbumName:            t.Album.Name,
			AlbumImageURLs:       imageURLs(t.Album.Images),
			ReleaseDate:          t.Album.ReleaseDate,
			ReleaseDatePrecision: t.Album.ReleaseDatePrecision,
			Popularity:           int(t.Popularity),
			ExternalURL:          t.ExternalURLs["spotify"],
		})
	}
	return result, nil
}

// Albums fetches the first page of an artist's albums, restricted to the "album" group.
func (c *Client) Albums(ctx context.Context, token models.AccessToken, artistID string) ([]AlbumDescriptor, error) {
	page, err := c.api(ctx, token).GetArtistAlbums(ctx, spotify.ID(artistID),
		[]spotify.AlbumType{spotify.AlbumTypeAlbum}, spotify.Market(c.market))
	if err != nil {
		return nil, fetchError("albums", artistID, err)
	}

	result := make([]AlbumDescriptor, 0, len(page.Albums))
	for _, a := range page.Albums {
		result = append(result, AlbumDescriptor{
			ID:                   string(a.ID),
			Name:                 a.Name,
			ImageURLs:            imageURLs(a.Images),
			ReleaseDate:          a.ReleaseDate,
			ReleaseDatePrecision: a.ReleaseDatePrecision,
			ExternalURL:          a.ExternalURLs["spotify"],
		})
	}
	return result, nil
}

func (c *Client) topTracks(ctx context.Context, token models.AccessToken, artistID string) ([]spotify.FullTrack, error) {
	endpoint := c.baseURL + "artists/" + url.PathEscape(artistID) + "/top-tracks?" +
		url.Values{"market": {c.market}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token.Header())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error spotify.Error `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, apiErr.Error
		}
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body struct {
		Tracks []spotify.FullTrack `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return body.Tracks, nil
}

func imageURLs(images []spotify.Image) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.URL)
	}
	return urls
}

func fetchError(what, id string, err error) error {
	return fmt.Errorf("%w: %s for %s: %v", shared.ErrFetch, what, id, err)
}
