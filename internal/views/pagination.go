package views

import "strconv"

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Pagination is a normalized page/limit window. Page is always ≥ 1 and Limit
// always ≥ 1, so the derived skip can never go negative.
type Pagination struct {
	Page  int
	Limit int
}

// NormalizePagination coerces raw query values into a usable window.
// Non-numeric or non-positive values fall back to the defaults.
func NormalizePagination(page, limit string) Pagination {
	p := Pagination{Page: defaultPage, Limit: defaultLimit}
	if n, err := strconv.Atoi(page); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limit); err == nil && n >= 1 {
		p.Limit = n
	}
	return p
}

// Skip returns the number of documents preceding the window.
func (p Pagination) Skip() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns ceil(total / limit), and zero for an empty result.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
