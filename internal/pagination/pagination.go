// Package pagination normalizes page/limit query parameters and builds
// page metadata for list responses.
package pagination

import "strconv"

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Params holds normalized pagination values.
type Params struct {
	Page  int
	Limit int
	Skip  int
}

// Normalize coerces raw page/limit strings into usable values. Missing or
// non-numeric input falls back to the defaults; anything below 1 is floored
// at 1. No upper bound is enforced on limit.
func Normalize(rawPage, rawLimit string) Params {
	page := parseOr(rawPage, DefaultPage)
	if page < 1 {
		page = 1
	}
	limit := parseOr(rawLimit, DefaultLimit)
	if limit < 1 {
		limit = 1
	}
	return Params{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}
}

func parseOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// Meta describes one page of a larger result set.
type Meta struct {
	TotalDocs   int64 `json:"totalDocs"`
	Limit       int   `json:"limit"`
	Page        int   `json:"page"`
	TotalPages  int64 `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewMeta computes page metadata for totalDocs matching documents.
func NewMeta(p Params, totalDocs int64) Meta {
	totalPages := (totalDocs + int64(p.Limit) - 1) / int64(p.Limit)
	return Meta{
		TotalDocs:   totalDocs,
		Limit:       p.Limit,
		Page:        p.Page,
		TotalPages:  totalPages,
		HasNextPage: int64(p.Page) < totalPages,
		HasPrevPage: p.Page > 1,
	}
}
