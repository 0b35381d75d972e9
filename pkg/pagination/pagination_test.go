package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/tasks", nil)
	p := FromRequest(req)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_ExplicitValues(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/tasks?page=3&per_page=50", nil)
	p := FromRequest(req)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.PerPage)
	assert.Equal(t, 100, p.Offset)
}

func TestFromRequest_InvalidValuesFallBack(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric", "?page=abc&per_page=xyz"},
		{"zero", "?page=0&per_page=0"},
		{"negative", "?page=-1&per_page=-5"},
		{"per_page over cap", "?per_page=500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/tasks"+tt.query, nil)
			p := FromRequest(req)

			assert.Equal(t, 1, p.Page)
			assert.Equal(t, 20, p.PerPage)
		})
	}
}

func TestNewResult(t *testing.T) {
	data := []string{"a", "b", "c"}
	res := NewResult(data, 45, Params{Page: 2, PerPage: 20, Offset: 20})

	assert.Equal(t, 45, res.TotalCount)
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext)
	assert.True(t, res.HasPrev)
}

func TestNewResult_LastPage(t *testing.T) {
	res := NewResult([]int{1, 2, 3, 4, 5}, 45, Params{Page: 3, PerPage: 20, Offset: 40})

	assert.Equal(t, 3, res.TotalPages)
	assert.False(t, res.HasNext)
	assert.True(t, res.HasPrev)
}

func TestNewResult_Empty(t *testing.T) {
	res := NewResult([]int{}, 0, DefaultParams())

	assert.Equal(t, 0, res.TotalPages)
	assert.False(t, res.HasNext)
	assert.False(t, res.HasPrev)
}
