package domain

// Pagination
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination derives page numbers from a limit/offset window.
func NewPagination(limit, offset int, total int64) Pagination {
	if limit <= 0 {
		return Pagination{Page: 1, Limit: limit, TotalItems: total, TotalPages: 1}
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       offset/limit + 1,
		Limit:      limit,
		TotalItems: total,
		TotalPages: pages,
	}
}
