package domain

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.Pages
}

// HasPrev reports whether an earlier page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// Page is a paginated listing envelope: {"data": [...], "pagination": {...}}.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Normalized fills in pagination defaults the backend may omit, so views
// can always render "page x of y".
func (p Page[T]) Normalized() Page[T] {
	if p.Pagination.Page < 1 {
		p.Pagination.Page = 1
	}
	if p.Pagination.Pages < 1 {
		p.Pagination.Pages = 1
	}
	if p.Pagination.Total < len(p.Data) {
		p.Pagination.Total = len(p.Data)
	}
	return p
}
