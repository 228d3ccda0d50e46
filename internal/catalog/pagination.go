package catalog

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// DefaultPageSize is used whenever page-size input cannot be parsed as a
// positive integer.
const DefaultPageSize = 25

// ParsePageSize parses user input with a silent fallback; it never errors.
func ParsePageSize(v string) int {
	size, err := strconv.Atoi(v)
	if err != nil || size <= 0 {
		return DefaultPageSize
	}
	return size
}

// TotalPages is at least 1, even for an empty result set.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

func HasPrev(page int) bool { return page > 0 }

func HasNext(page, pageSize, total int) bool {
	return (page+1)*pageSize < total
}

// PageLabel renders the "Page 1 / 2 • 30 results" caption shown under the
// result grid.
func PageLabel(page, pageSize, total int) string {
	return fmt.Sprintf("Page %d / %d • %s results",
		page+1, TotalPages(total, pageSize), humanize.Comma(int64(total)))
}
