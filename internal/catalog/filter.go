package catalog

import (
	"strings"

	"github.com/handsomefox/mflix-browser/internal/store"
)

// AllGenres is the sentinel genre meaning "no genre filter".
const AllGenres = "All"

// FilterState holds the raw filter fields exactly as the UI entered them.
// Year bounds stay strings on purpose: non-numeric input is ignored when the
// criteria are built, never surfaced as an error.
type FilterState struct {
	Query   string `json:"q"`
	Genre   string `json:"genre"`
	MinYear string `json:"min_year"`
	MaxYear string `json:"max_year"`
}

// Criteria translates the filter state into the store predicate. Blank state
// yields the zero Criteria, which matches everything.
func (f FilterState) Criteria() store.Criteria {
	c := store.Criteria{
		Text: strings.TrimSpace(f.Query),
	}
	if f.Genre != "" && f.Genre != AllGenres {
		c.Genre = f.Genre
	}
	c.MinYear = parseYearBound(f.MinYear)
	c.MaxYear = parseYearBound(f.MaxYear)
	return c
}

// parseYearBound accepts only strings of decimal digits; anything else is
// treated as "no bound".
func parseYearBound(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	year := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return nil
		}
		year = year*10 + int(r-'0')
	}
	return &year
}
