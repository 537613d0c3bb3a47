package params

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		page   int
		limit  int
		offset int
	}{
		{"defaults", "", 1, DefaultLimit, 0},
		{"explicit", "page=3&limit=10", 3, 10, 20},
		{"limit capped", "limit=500", 1, MaxLimit, 0},
		{"negative page", "page=-4&limit=5", 1, 5, 0},
		{"garbage", "page=abc&limit=x", 1, DefaultLimit, 0},
		{"page capped", "page=92233720368547760&limit=100", MaxPage, 100, (MaxPage - 1) * 100},
		{"page beyond int", "page=99999999999999999999", 1, DefaultLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			p := ParsePagination(q)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.limit, p.Limit)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}

func TestComputeMeta(t *testing.T) {
	p := NewPagination(2, 10)
	p.ComputeMeta(25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = NewPagination(3, 10)
	p.ComputeMeta(25)
	assert.False(t, p.HasNext)

	p = NewPagination(92233720368547759, MaxLimit)
	p.ComputeMeta(1)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
	assert.Equal(t, 1, p.TotalPages)

	p = NewPagination(1, 10)
	p.ComputeMeta(0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasPrev)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-1", "1.5", "abc"} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}

func TestOptionalValues(t *testing.T) {
	q := url.Values{"lat": {"-36.8"}, "categoryId": {"7"}, "bad": {"x"}}

	lat, err := OptionalFloat(q, "lat")
	require.NoError(t, err)
	require.NotNil(t, lat)
	assert.InDelta(t, -36.8, *lat, 1e-9)

	missing, err := OptionalFloat(q, "lng")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = OptionalFloat(q, "bad")
	assert.Error(t, err)

	cat, err := OptionalID(q, "categoryId")
	require.NoError(t, err)
	assert.Equal(t, int64(7), *cat)

	_, err = OptionalID(q, "bad")
	assert.Error(t, err)
}
