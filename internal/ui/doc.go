// Package ui renders CLI output with [lipgloss] styles.
//
// [Palette] colors status lines. [PrintProgress] drains a run's progress channel into one line per update,
// so long ingestions show which artist is being processed.
package ui
