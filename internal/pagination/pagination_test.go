package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		rawPage   string
		rawLimit  string
		wantPage  int
		wantLimit int
		wantSkip  int
	}{
		{"defaults when absent", "", "", 1, 20, 0},
		{"explicit values", "3", "10", 3, 10, 20},
		{"page zero floors to one", "0", "20", 1, 20, 0},
		{"negative limit floors to one", "2", "-5", 2, 1, 1},
		{"non-numeric page falls back", "abc", "20", 1, 20, 0},
		{"non-numeric limit falls back", "2", "xyz", 2, 20, 20},
		{"negative page floors to one", "-7", "20", 1, 20, 0},
		{"no upper bound on limit", "1", "5000", 1, 5000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Normalize(tt.rawPage, tt.rawLimit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantSkip, p.Skip)
			assert.Equal(t, (p.Page-1)*p.Limit, p.Skip)
		})
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Params{Page: 2, Limit: 10}, 25)
	assert.Equal(t, int64(25), meta.TotalDocs)
	assert.Equal(t, int64(3), meta.TotalPages)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)

	last := NewMeta(Params{Page: 3, Limit: 10}, 25)
	assert.False(t, last.HasNextPage)
	assert.True(t, last.HasPrevPage)

	empty := NewMeta(Params{Page: 1, Limit: 10}, 0)
	assert.Equal(t, int64(0), empty.TotalPages)
	assert.False(t, empty.HasNextPage)
	assert.False(t, empty.HasPrevPage)
}
