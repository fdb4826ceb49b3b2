package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// AccessToken is the token value the fake token endpoint issues and the fake API requires.
const AccessToken = "test-token"

// FakeArtist is a related artist served by [SpotifyServer].
type FakeArtist struct {
	ID        string
	Name      string
	Genres    []string
	Followers int
	Images    []string
}

// FakeTrack is a top track served by [SpotifyServer].
type FakeTrack struct {
	ID          string
	Name        string
	Popularity  int
	AlbumName   string
	ReleaseDate string
	Precision   string
	Images      []string
}

// FakeAlbum is an album served by [SpotifyServer].
type FakeAlbum struct {
	ID          string
	Name        string
	ReleaseDate string
	Precision   string
	Images      []string
}

// SpotifyServer fakes the token endpoint, the three catalog endpoints and an image host.
//
// Fixture and failure fields may be changed between runs; access is guarded by the server's lock.
type SpotifyServer struct {
	*httptest.Server

	mu        sync.Mutex
	Related   []FakeArtist
	TopTracks map[string][]FakeTrack
	Albums    map[string][]FakeAlbum

	TokenStatus   int             // non-zero replaces the 200 token response
	FailRelated   bool            // related-artists answers 500
	FailTopTracks map[string]bool // artist id -> top-tracks answers 500
	FailAlbums    map[string]bool // artist id -> albums answers 500
	FailImages    map[string]bool // image name -> 404

	calls   map[string]int
	queries map[string]url.Values
}

// NewSpotifyServer starts a fake and registers its shutdown with t.Cleanup.
func NewSpotifyServer(t *testing.T) *SpotifyServer {
	t.Helper()

	s := &SpotifyServer{
		TopTracks:     map[string][]FakeTrack{},
		Albums:        map[string][]FakeAlbum{},
		FailTopTracks: map[string]bool{},
		FailAlbums:    map[string]bool{},
		FailImages:    map[string]bool{},
		calls:         map[string]int{},
		queries:       map[string]url.Values{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", s.token)
	mux.HandleFunc("GET /v1/artists/{id}/related-artists", s.authorized("related", s.related))
	mux.HandleFunc("GET /v1/artists/{id}/top-tracks", s.authorized("top-tracks", s.topTracks))
	mux.HandleFunc("GET /v1/artists/{id}/albums", s.authorized("albums", s.albums))
	mux.HandleFunc("GET /images/{name}", s.image)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// APIURL is the base URL to configure the catalog client with.
func (s *SpotifyServer) APIURL() string { return s.URL + "/v1/" }

// TokenURL is the fake token endpoint.
func (s *SpotifyServer) TokenURL() string { return s.URL + "/api/token" }

// ImageURL returns the URL the fake serves name from.
func (s *SpotifyServer) ImageURL(name string) string { return s.URL + "/images/" + name }

// Calls reports how many requests hit endpoint: token, related, top-tracks, albums or image.
func (s *SpotifyServer) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// CatalogCalls is the number of requests to the three catalog endpoints.
func (s *SpotifyServer) CatalogCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls["related"] + s.calls["top-tracks"] + s.calls["albums"]
}

// Set runs fn with the server's lock held, for changing fixtures while requests may be in flight.
func (s *SpotifyServer) Set(fn func(s *SpotifyServer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// Query returns the query parameters of the latest request to a catalog endpoint.
func (s *SpotifyServer) Query(endpoint string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[endpoint]
}

func (s *SpotifyServer) count(endpoint string) {
	s.mu.Lock()
	s.calls[endpoint]++
	s.mu.Unlock()
}

func (s *SpotifyServer) token(w http.ResponseWriter, r *http.Request) {
	s.count("token")

	s.mu.Lock()
	status := s.TokenStatus
	s.mu.Unlock()

	if status != 0 && status != http.StatusOK {
		writeJSON(w, status, map[string]string{"error": "invalid_client"})
		return
	}

	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": AccessToken,
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (s *SpotifyServer) authorized(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.count(endpoint)
		s.mu.Lock()
		s.queries[endpoint] = r.URL.Query()
		s.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+AccessToken {
			writeJSON(w, http.StatusUnauthorized, apiError(http.StatusUnauthorized, "No token provided"))
			return
		}
		next(w, r)
	}
}

func (s *SpotifyServer) related(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailRelated {
		writeJSON(w, http.StatusInternalServerError, apiError(http.StatusInternalServerError, "boom"))
		return
	}

	artists := make([]map[string]any, 0, len(s.Related))
	for _, a := range s.Related {
		genres := a.Genres
		if genres == nil {
			genres = []string{}
		}
		artists = append(artists, map[string]any{
			"id":            a.ID,
			"name":          a.Name,
			"type":          "artist",
			"uri":           "spotify:artist:" + a.ID,
			"genres":        genres,
			"popularity":    50,
			"followers":     map[string]any{"total": a.Followers},
			"images":        images(a.Images),
			"external_urls": map[string]string{"spotify": "https://open.spotify.com/artist/" + a.ID},
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"artists": artists})
}

func (s *SpotifyServer) topTracks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.PathValue("id")
	if s.FailTopTracks[id] {
		writeJSON(w, http.StatusInternalServerError, apiError(http.StatusInternalServerError, "boom"))
		return
	}

	tracks := make([]map[string]any, 0, len(s.TopTracks[id]))
	for _, t := range s.TopTracks[id] {
		tracks = append(tracks, map[string]any{
			"id":            t.ID,
			"name":          t.Name,
			"type":          "track",
			"popularity":    t.Popularity,
			"duration_ms":   180000,
			"external_urls": map[string]string{"spotify": "https://open.spotify.com/track/" + t.ID},
			"album": map[string]any{
				"id":                     "album-of-" + t.ID,
				"name":                   t.AlbumName,
				"album_type":             "album",
				"release_date":           t.ReleaseDate,
				"release_date_precision": t.Precision,
				"images":                 images(t.Images),
				"external_urls":          map[string]string{},
			},
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

func (s *SpotifyServer) albums(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.PathValue("id")
	if s.FailAlbums[id] {
		writeJSON(w, http.StatusInternalServerError, apiError(http.StatusInternalServerError, "boom"))
		return
	}

	items := make([]map[string]any, 0, len(s.Albums[id]))
	for _, a := range s.Albums[id] {
		items = append(items, map[string]any{
			"id":                     a.ID,
			"name":                   a.Name,
			"album_type":             "album",
			"album_group":            "album",
			"release_date":           a.ReleaseDate,
			"release_date_precision": a.Precision,
			"images":                 images(a.Images),
			"external_urls":          map[string]string{"spotify": "https://open.spotify.com/album/" + a.ID},
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"href":   r.URL.String(),
		"items":  items,
		"limit":  20,
		"offset": 0,
		"total":  len(items),
	})
}

func (s *SpotifyServer) image(w http.ResponseWriter, r *http.Request) {
	s.count("image")

	name := r.PathValue("name")
	s.mu.Lock()
	fail := s.FailImages[name]
	s.mu.Unlock()

	if fail {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	fmt.Fprintf(w, "jpeg:%s", name)
}

func images(urls []string) []map[string]any {
	out := make([]map[string]any, 0, len(urls))
	for _, u := range urls {
		out = append(out, map[string]any{"url": u, "height": 640, "width": 640})
	}
	return out
}

func apiError(status int, message string) map[string]any {
	return map[string]any{"error": map[string]any{"status": status, "message": message}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ImageBody is what the fake image host returns for name.
func ImageBody(name string) string {
	return "jpeg:" + strings.TrimPrefix(name, "/")
}
