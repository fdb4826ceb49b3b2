package models

import (
	"slices"
	"testing"
)

func TestGenres(t *testing.T) {
	tc := []struct {
		name   string
		ids    []string
		stored string
	}{
		{name: "ordered pair", ids: []string{"pop", "rock"}, stored: "pop, rock"},
		{name: "single", ids: []string{"latin"}, stored: "latin"},
		{name: "empty", ids: nil, stored: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinGenres(tt.ids)
			if got != tt.stored {
				t.Errorf("JoinGenres() = %q, want %q", got, tt.stored)
			}

			back := SplitGenres(got)
			if !slices.Equal(back, tt.ids) {
				t.Errorf("SplitGenres() = %q, want %q", back, tt.ids)
			}
		})
	}
}

func TestAccessToken(t *testing.T) {
	token := AccessToken{Type: "Bearer", Value: "abc"}
	if got := token.Header(); got != "Bearer abc" {
		t.Errorf("Header() = %q, want %q", got, "Bearer abc")
	}
	if !token.Valid() {
		t.Error("expected token to be valid")
	}
	if (AccessToken{Type: "Bearer"}).Valid() {
		t.Error("expected token without value to be invalid")
	}
}

func TestValidate(t *testing.T) {
	tc := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{name: "artist ok", record: &Artist{ExternalID: "a1", Title: "A", ImageRef: "file:///a1.jpeg"}},
		{name: "artist missing image", record: &Artist{ExternalID: "a1", Title: "A"}, wantErr: true},
		{name: "artist blank genre id", record: &Artist{ExternalID: "a1", Title: "A", ImageRef: "x", GenreTagIDs: []string{""}}, wantErr: true},
		{name: "song ok", record: &Song{ExternalID: "s1", Title: "S", AlbumImageRef: "x", ArtistID: "a"}},
		{name: "song without artist", record: &Song{ExternalID: "s1", Title: "S", AlbumImageRef: "x"}, wantErr: true},
		{name: "song popularity out of range", record: &Song{ExternalID: "s1", Title: "S", AlbumImageRef: "x", ArtistID: "a", Popularity: 101}, wantErr: true},
		{name: "album ok", record: &Album{ExternalID: "b1", Title: "B", ImageRef: "x", ArtistID: "a"}},
		{name: "album missing title", record: &Album{ExternalID: "b1", ImageRef: "x", ArtistID: "a"}, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKinds(t *testing.T) {
	if k := (&Artist{}).Kind(); k != KindArtist {
		t.Errorf("Artist.Kind() = %q", k)
	}
	if k := (&Song{ExternalID: "s"}).Key(); k != "s" {
		t.Errorf("Song.Key() = %q", k)
	}
	if k := (&Album{}).Kind(); k != KindAlbum {
		t.Errorf("Album.Kind() = %q", k)
	}
}
