package shared

import "math"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata. Page is clamped to the last page.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Bounds returns the half-open index range of the current page.
func (p Pagination) Bounds() (start, end int) {
	start = (p.Page - 1) * p.PerPage
	if start > p.Total {
		start = p.Total
	}
	end = start + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// Prev returns the previous page number.
func (p Pagination) Prev() int { return p.Page - 1 }

// Next returns the next page number.
func (p Pagination) Next() int { return p.Page + 1 }
