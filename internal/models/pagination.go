package models

// PageRequest is a validated page window. Page and Limit are always >= 1.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest coerces page and limit, falling back to page 1 and the
// provided default limit. Limits above max are clamped.
func NewPageRequest(page, limit, defaultLimit, max int) PageRequest {
	if defaultLimit < 1 {
		defaultLimit = 10
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if max > 0 && limit > max {
		limit = max
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset returns the row offset for the window.
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	Limit       int `json:"limit"`
	TotalCount  int `json:"total_count"`
	TotalPages  int `json:"total_pages"`
}

// NewPagination computes total pages as ceil(total / limit).
func NewPagination(req PageRequest, total int) *Pagination {
	limit := req.Limit
	if limit < 1 {
		limit = 1
	}
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return &Pagination{CurrentPage: req.Page, Limit: limit, TotalCount: total, TotalPages: pages}
}
