// Package params parses the query-string and path values shared by list
// endpoints.
package params

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit far from overflowing an int.
	MaxPage = 1_000_000
)

var ErrInvalidID = errors.New("id must be a positive integer")

// Pagination carries the requested page and, once the total is known, the
// response metadata. ?page=2&limit=20 becomes LIMIT 20 OFFSET 20.
type Pagination struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"-"`
	Page       int  `json:"page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewPagination clamps page and limit into range and derives the offset.
func NewPagination(page, limit int) Pagination {
	switch {
	case page < 1:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// ParsePagination reads ?page and ?limit. Unparseable values fall back to the
// defaults.
func ParsePagination(q url.Values) Pagination {
	page, _ := strconv.Atoi(strings.TrimSpace(q.Get("page")))
	limit, _ := strconv.Atoi(strings.TrimSpace(q.Get("limit")))
	return NewPagination(page, limit)
}

// ComputeMeta fills the totals after the count is known.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	p.TotalPages = 0
	if p.Limit > 0 {
		p.TotalPages = (total + p.Limit - 1) / p.Limit
	}
	p.HasPrev = p.Page > 1
	p.HasNext = p.Offset >= 0 && p.Offset+p.Limit < total
}

// ParseID parses a positive int64 path parameter.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// OptionalFloat returns nil when key is absent or blank.
func OptionalFloat(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &v, nil
}

// OptionalID returns nil when key is absent or blank.
func OptionalID(q url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := ParseID(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a positive integer", key)
	}
	return &id, nil
}
