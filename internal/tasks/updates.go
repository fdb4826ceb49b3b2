package tasks

import (
	"fmt"

	"github.com/desertthunder/spotingest/internal/catalog"
)

// ProgressUpdate represents a progress event during a run.
//
// Used to send real-time updates to the CLI for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	PhaseToken Phase = iota
	PhaseRelatedArtists
	PhaseArtist
	PhaseSongs
	PhaseAlbums
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseToken:
		return "token"
	case PhaseRelatedArtists:
		return "related_artists"
	case PhaseArtist:
		return "artist"
	case PhaseSongs:
		return "songs"
	case PhaseAlbums:
		return "albums"
	case PhaseDone:
		return "done"
	default:
		return ""
	}
}

func tokenUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhaseToken, Step: 1, Total: 1, Message: "Requesting access token..."}
}

func relatedArtistsUpdate(seed string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseRelatedArtists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching artists related to %s...", seed),
	}
}

func artistUpdate(step, total int, a catalog.ArtistDescriptor) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseArtist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, a.Name),
	}
}

func songsUpdate(step, total int, artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Top tracks of %s...", step, total, artist),
	}
}

func albumsUpdate(step, total int, artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseAlbums,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Albums of %s...", step, total, artist),
	}
}

func doneUpdate(r *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: PhaseDone,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Created %d artists, %d songs, %d albums (%d failures)",
			r.Artists.Created, r.Songs.Created, r.Albums.Created, r.Failed()),
	}
}
