package models

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Kind names a record type. Together with an external id it identifies at most one record.
type Kind string

const (
	KindArtist Kind = "artist"
	KindSong   Kind = "song"
	KindAlbum  Kind = "album"
	KindTag    Kind = "tag"
)

// GenreVocabulary is the taxonomy that genre tags live in.
const GenreVocabulary = "genres"

// GenreDelimiter separates tag ids in the stored genre string.
const GenreDelimiter = ", "

var validate = validator.New(validator.WithRequiredStructEnabled())

// Record is implemented by every catalog record keyed by an external id.
type Record interface {
	Kind() Kind      // Kind returns the record type
	Key() string     // Key returns the catalog provider's external id
	Validate() error // Validate checks required fields before persisting
}

// Repository is the create-once contract for one record kind.
//
// GetByExternalID returns an error wrapping shared.ErrNotFound when no record matches.
// Create reports created=false when a record with the same external id already exists,
// in which case record is overwritten with the stored values.
type Repository[T Record] interface {
	GetByExternalID(ctx context.Context, externalID string) (T, error)
	Create(ctx context.Context, record T) (created bool, err error)
	Count(ctx context.Context) (int, error)
}

// TagRepository is the create-once contract for taxonomy terms keyed by (vocabulary, name).
type TagRepository interface {
	Get(ctx context.Context, id string) (*Tag, error)
	GetByName(ctx context.Context, vocabulary, name string) (*Tag, error)
	Create(ctx context.Context, tag *Tag) (created bool, err error)
	Count(ctx context.Context) (int, error)
}

// ContentStore groups the repositories of one storage backend.
type ContentStore interface {
	Artists() Repository[*Artist]
	Songs() Repository[*Song]
	Albums() Repository[*Album]
	Tags() TagRepository
	Close() error
}

// Credentials are the client id and secret used for the client-credentials grant.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// AccessToken is a run-scoped bearer token. It is never persisted.
type AccessToken struct {
	Type  string
	Value string
}

// Header returns the value for an Authorization header, e.g. "Bearer abc".
func (t AccessToken) Header() string {
	return t.Type + " " + t.Value
}

// Valid reports whether the token carries both parts.
func (t AccessToken) Valid() bool {
	return t.Type != "" && t.Value != ""
}

// StoredAsset is a downloaded image persisted in a blob store.
type StoredAsset struct {
	URI      string
	Filename string
	Size     int
}

// Artist is a related artist of the seed.
type Artist struct {
	ID            string
	ExternalID    string   `validate:"required"`
	Title         string   `validate:"required"`
	FollowerCount int      `validate:"gte=0"`
	ImageRef      string   `validate:"required"`
	GenreTagIDs   []string `validate:"dive,required"`
	ExternalURL   string
	CreatedAt     time.Time
}

func (a *Artist) Kind() Kind      { return KindArtist }
func (a *Artist) Key() string     { return a.ExternalID }
func (a *Artist) Validate() error { return validate.Struct(a) }

// Song is one of an artist's top tracks.
type Song struct {
	ID            string
	ExternalID    string `validate:"required"`
	Title         string `validate:"required"`
	AlbumImageRef string `validate:"required"`
	AlbumName     string
	ArtistID      string   `validate:"required"`
	GenreTagIDs   []string `validate:"dive,required"`
	Popularity    int      `validate:"gte=0,lte=100"`
	ReleaseDate   time.Time
	ExternalURL   string
	CreatedAt     time.Time
}

func (s *Song) Kind() Kind      { return KindSong }
func (s *Song) Key() string     { return s.ExternalID }
func (s *Song) Validate() error { return validate.Struct(s) }

// Album is one of an artist's albums.
type Album struct {
	ID          string
	ExternalID  string `validate:"required"`
	Title       string `validate:"required"`
	ImageRef    string `validate:"required"`
	ArtistID    string `validate:"required"`
	ReleaseDate time.Time
	ExternalURL string
	CreatedAt   time.Time
}

func (a *Album) Kind() Kind      { return KindAlbum }
func (a *Album) Key() string     { return a.ExternalID }
func (a *Album) Validate() error { return validate.Struct(a) }

// Tag is a genre term. Name is unique within Vocabulary and matched exactly.
type Tag struct {
	ID         string
	Vocabulary string `validate:"required"`
	Name       string `validate:"required"`
	CreatedAt  time.Time
}

func (t *Tag) Validate() error { return validate.Struct(t) }

// JoinGenres serializes an ordered list of tag ids for storage.
func JoinGenres(ids []string) string {
	return strings.Join(ids, GenreDelimiter)
}

// SplitGenres reverses [JoinGenres]. An empty string yields no ids.
func SplitGenres(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, GenreDelimiter)
}
