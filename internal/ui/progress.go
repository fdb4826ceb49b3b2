package ui

import (
	"fmt"
	"io"

	"github.com/desertthunder/spotingest/internal/tasks"
)

// PrintProgress writes each update as it arrives until progress is closed.
//
// Artist lines are highlighted; per-artist song and album steps are dimmed.
func PrintProgress(w io.Writer, p *Palette, progress <-chan tasks.ProgressUpdate) {
	for u := range progress {
		var line string
		switch u.Phase {
		case tasks.PhaseArtist:
			line = p.Warn(u.Message)
		case tasks.PhaseSongs, tasks.PhaseAlbums:
			line = p.Help("  " + u.Message)
		case tasks.PhaseDone:
			line = p.OK(u.Message)
		default:
			line = u.Message
		}
		fmt.Fprintln(w, line)
	}
}
