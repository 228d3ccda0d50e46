package catalog

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/handsomefox/mflix-browser/internal/store"
)

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="220" height="330">` +
	`<rect width="100%" height="100%" fill="#e5e7eb"/>` +
	`<text x="50%" y="50%" dominant-baseline="middle" text-anchor="middle" ` +
	`font-family="Arial" font-size="18" fill="#6b7280">No Poster</text>` +
	`</svg>`

// PlaceholderPoster is the data URI substituted when a movie has no poster.
var PlaceholderPoster = "data:image/svg+xml;base64," +
	base64.StdEncoding.EncodeToString([]byte(placeholderSVG))

// Movie is the UI-facing record shape. Recreated on every load, never
// mutated in place.
type Movie struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Year       *int     `json:"year,omitempty"`
	Genres     []string `json:"genres"`
	Plot       string   `json:"plot"`
	Runtime    *int     `json:"runtime,omitempty"`
	Rated      string   `json:"rated,omitempty"`
	IMDBRating *float64 `json:"imdb_rating,omitempty"`
	Poster     string   `json:"poster"`
}

// Normalize shapes one raw stored document into a Movie. Absent or malformed
// fields degrade to defaults; it never fails.
func Normalize(doc store.Document) Movie {
	m := Movie{
		ID:      docID(doc["_id"]),
		Title:   docString(doc["title"]),
		Year:    docInt(doc["year"]),
		Genres:  docStrings(doc["genres"]),
		Plot:    docString(doc["plot"]),
		Runtime: docInt(doc["runtime"]),
		Rated:   docString(doc["rated"]),
		Poster:  docString(doc["poster"]),
	}
	if m.Title == "" {
		m.Title = "Untitled"
	}
	if m.Poster == "" {
		m.Poster = PlaceholderPoster
	}
	if imdb, ok := doc["imdb"].(map[string]any); ok {
		m.IMDBRating = docFloat(imdb["rating"])
	}
	return m
}

func docID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

func docString(v any) string {
	s, _ := v.(string)
	return s
}

func docInt(v any) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case int:
		return &n
	case int64:
		i := int(n)
		return &i
	case json.Number:
		if i, err := n.Int64(); err == nil {
			out := int(i)
			return &out
		}
	}
	return nil
}

func docFloat(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return &f
		}
	}
	return nil
}

func docStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
