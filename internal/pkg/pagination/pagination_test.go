package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Normalizes(t *testing.T) {
	p := New(0, 0, "  kochi ", " Thevara ")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, "kochi", p.Search)
	assert.Equal(t, "Thevara", p.Fellowship)

	p = New(3, 500, "", "")
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 2*MaxLimit, p.Offset)
}

func TestSearchPattern(t *testing.T) {
	assert.Equal(t, "", New(1, 10, "", "").SearchPattern())
	assert.Equal(t, "%kochi%", New(1, 10, "Kochi", "").SearchPattern())
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 3, PageCount(21, 10))
	assert.Equal(t, 0, PageCount(5, 0))
}

func TestNewPage_EmptyItems(t *testing.T) {
	page := NewPage[string](nil, New(2, 5, "", ""), 7)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.PageCount)
	assert.Equal(t, int64(7), page.Total)
	assert.Equal(t, 5, page.Limit)

	assert.NotNil(t, NewList[int](nil).Items)
}
