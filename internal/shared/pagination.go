package shared

import (
	"math"
	"net/url"
	"strconv"
)

// Pagination contains metadata for paginated listings backed by the
// skip/take parameters of the HR API.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata. The page is capped so Skip
// stays within an int32 offset.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	if maxPage := math.MaxInt32/perPage + 1; page > maxPage {
		page = maxPage
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Skip is the offset of the first record on the current page.
func (p Pagination) Skip() int {
	return (p.Page - 1) * p.PerPage
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// PrevPage returns the previous page number.
func (p Pagination) PrevPage() int { return p.Page - 1 }

// NextPage returns the next page number.
func (p Pagination) NextPage() int { return p.Page + 1 }

// PageFromQuery reads the 1-based page query parameter.
func PageFromQuery(q url.Values) int {
	page, err := strconv.Atoi(q.Get("page"))
	switch {
	case err != nil || page < 1:
		return 1
	case page > math.MaxInt32:
		return math.MaxInt32
	}
	return page
}
