package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	cases := []struct {
		count, size, want int
	}{
		{12, 5, 3},
		{0, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{1, 5, 1},
		{12, 0, 3},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TotalPages(c.count, c.size), "count=%d size=%d", c.count, c.size)
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 12, 5)
	assert.Equal(t, Pagination{CurrentPage: 2, TotalPages: 3, Count: 12}, p)
	assert.True(t, p.HasNext())
	assert.True(t, p.HasPrev())

	p = NewPagination(0, -1, 5)
	assert.Equal(t, emptyPagination(), p)
	assert.False(t, p.HasNext())
	assert.False(t, p.HasPrev())
}
