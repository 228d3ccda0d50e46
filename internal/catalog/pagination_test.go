package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePageSize(t *testing.T) {
	assert.Equal(t, 50, ParsePageSize("50"))
	assert.Equal(t, DefaultPageSize, ParsePageSize("0"))
	assert.Equal(t, DefaultPageSize, ParsePageSize("-10"))
	assert.Equal(t, DefaultPageSize, ParsePageSize("abc"))
	assert.Equal(t, DefaultPageSize, ParsePageSize(""))
	assert.Equal(t, DefaultPageSize, ParsePageSize("12.5"))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 5, TotalPages(101, 25))
	assert.Equal(t, 4, TotalPages(100, 25))
	assert.Equal(t, 2, TotalPages(30, 25))
	assert.Equal(t, 1, TotalPages(0, 25))
	assert.Equal(t, 1, TotalPages(10, 0))
	assert.Equal(t, 1, TotalPages(10, -1))
}

func TestHasPrevNext(t *testing.T) {
	assert.False(t, HasPrev(0))
	assert.True(t, HasPrev(1))

	assert.False(t, HasNext(0, 25, 0))
	assert.False(t, HasNext(0, 25, 25))
	assert.True(t, HasNext(0, 25, 26))
	assert.False(t, HasNext(1, 25, 30))
}

func TestPageLabel(t *testing.T) {
	assert.Equal(t, "Page 1 / 2 • 30 results", PageLabel(0, 25, 30))
	assert.Equal(t, "Page 2 / 2 • 30 results", PageLabel(1, 25, 30))
	assert.Equal(t, "Page 1 / 1 • 0 results", PageLabel(0, 25, 0))
	assert.Equal(t, "Page 1 / 942 • 23,530 results", PageLabel(0, 25, 23530))
}
