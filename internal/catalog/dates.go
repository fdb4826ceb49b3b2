package catalog

import (
	"fmt"
	"time"

	"github.com/desertthunder/spotingest/internal/shared"
)

var releaseDateLayouts = map[string]string{
	"year":  "2006",
	"month": "2006-01",
	"day":   "2006-01-02",
}

// ParseReleaseDate converts a catalog release date to a UTC calendar date.
//
// Year and year-month dates default the missing parts to 01, so "1999" becomes 1999-01-01.
// When precision is empty it is inferred from the length of date. Year 0000, which the catalog
// uses for unknown dates, is an error.
func ParseReleaseDate(date, precision string) (time.Time, error) {
	if precision == "" {
		switch len(date) {
		case 4:
			precision = "year"
		case 7:
			precision = "month"
		default:
			precision = "day"
		}
	}

	layout, ok := releaseDateLayouts[precision]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown release date precision %q", shared.ErrFetch, precision)
	}

	t, err := time.Parse(layout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid release date %q: %v", shared.ErrFetch, date, err)
	}
	if t.Year() == 0 {
		return time.Time{}, fmt.Errorf("%w: unknown release date %q", shared.ErrFetch, date)
	}
	return t, nil
}
