package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/spotingest/internal/models"
	"github.com/desertthunder/spotingest/internal/shared"
)

// ErrNoImage is returned when a catalog item carries an empty image list.
var ErrNoImage = fmt.Errorf("%w: image list is empty", shared.ErrAsset)

// BlobStore persists raw bytes under a suggested name and returns a durable reference.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) (uri string, err error)
}

// Fetcher downloads images over HTTP and stores them in a [BlobStore].
type Fetcher struct {
	client *http.Client
	store  BlobStore
}

// NewFetcher creates a Fetcher. A nil client selects [http.DefaultClient].
func NewFetcher(client *http.Client, store BlobStore) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, store: store}
}

// Filename is the deterministic blob name for a record's image.
func Filename(externalID string) string {
	return externalID + ".jpeg"
}

// PrimaryImage returns the first URL of a catalog image list, or [ErrNoImage].
func PrimaryImage(urls []string) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoImage
	}
	return urls[0], nil
}

// FetchPrimary stores the first image of urls for externalID.
func (f *Fetcher) FetchPrimary(ctx context.Context, urls []string, externalID string) (models.StoredAsset, error) {
	url, err := PrimaryImage(urls)
	if err != nil {
		return models.StoredAsset{}, err
	}
	return f.FetchAndStore(ctx, url, externalID)
}

// FetchAndStore downloads url and stores the bytes as [Filename](externalID).
//
// Any failure is returned wrapped in [shared.ErrAsset].
func (f *Fetcher) FetchAndStore(ctx context.Context, url, externalID string) (models.StoredAsset, error) {
	if url == "" {
		return models.StoredAsset{}, fmt.Errorf("%w: empty image url for %s", shared.ErrAsset, externalID)
	}

	data, err := f.download(ctx, url)
	if err != nil {
		return models.StoredAsset{}, fmt.Errorf("%w: %s: %v", shared.ErrAsset, externalID, err)
	}

	name := Filename(externalID)
	uri, err := f.store.Put(ctx, name, data)
	if err != nil {
		return models.StoredAsset{}, fmt.Errorf("%w: storing %s: %v", shared.ErrAsset, name, err)
	}

	return models.StoredAsset{URI: uri, Filename: name, Size: len(data)}, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return data, nil
}
