package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/handsomefox/mflix-browser/internal/store"
)

func TestFilterStateCriteria(t *testing.T) {
	t.Run("blank state matches all", func(t *testing.T) {
		c := FilterState{Genre: AllGenres}.Criteria()
		assert.Equal(t, store.Criteria{}, c)
	})

	t.Run("zero value matches all", func(t *testing.T) {
		c := FilterState{}.Criteria()
		assert.Equal(t, store.Criteria{}, c)
	})

	t.Run("query is trimmed", func(t *testing.T) {
		c := FilterState{Query: "  godfather  "}.Criteria()
		assert.Equal(t, "godfather", c.Text)
	})

	t.Run("whitespace-only query is dropped", func(t *testing.T) {
		c := FilterState{Query: "   "}.Criteria()
		assert.Empty(t, c.Text)
	})

	t.Run("genre sentinel is dropped", func(t *testing.T) {
		assert.Empty(t, FilterState{Genre: AllGenres}.Criteria().Genre)
		assert.Equal(t, "Drama", FilterState{Genre: "Drama"}.Criteria().Genre)
	})

	t.Run("year bounds", func(t *testing.T) {
		c := FilterState{MinYear: "1990", MaxYear: "2000"}.Criteria()
		if assert.NotNil(t, c.MinYear) {
			assert.Equal(t, 1990, *c.MinYear)
		}
		if assert.NotNil(t, c.MaxYear) {
			assert.Equal(t, 2000, *c.MaxYear)
		}
	})
}

func TestParseYearBound(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"1990", intPtr(1990)},
		{" 2005 ", intPtr(2005)},
		{"0", intPtr(0)},
		{"", nil},
		{"   ", nil},
		{"19a0", nil},
		{"-5", nil},
		{"+5", nil},
		{"nineteen", nil},
	}

	for _, tc := range tests {
		got := parseYearBound(tc.in)
		if tc.want == nil {
			assert.Nil(t, got, "input %q", tc.in)
			continue
		}
		if assert.NotNil(t, got, "input %q", tc.in) {
			assert.Equal(t, *tc.want, *got)
		}
	}
}

func intPtr(v int) *int { return &v }
