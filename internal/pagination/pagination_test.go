package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Defaults(t *testing.T) {
	p := PageRequest{}
	p.Defaults()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = PageRequest{Page: 3, PageSize: 10}
	p.Defaults()
	assert.Equal(t, 20, p.Offset())
}

func TestFromQuery(t *testing.T) {
	p := FromQuery(url.Values{"page": {"2"}, "page_size": {"50"}})
	assert.Equal(t, PageRequest{Page: 2, PageSize: 50}, p)

	p = FromQuery(url.Values{"page": {"abc"}})
	assert.Equal(t, PageRequest{}, p)
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse([]int{1, 2}, 1, 2, 5)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, int64(5), resp.TotalItems)

	empty := NewPageResponse[string](nil, 1, 20, 0)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.TotalPages)
}
