package query

import "github.com/calperry/workgraph/internal/graph"

// PageInfo is the pagination metadata attached to browse results.
type PageInfo struct {
	TotalCount      int  `json:"total_count"`
	Limit           int  `json:"limit"`
	Offset          int  `json:"offset"`
	CurrentPage     int  `json:"current_page"`
	TotalPages      int  `json:"total_pages"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}

// Paginate computes page metadata for a result window. Limit must be
// positive — Build enforces this before any query runs, so a zero limit
// reaching this point is a programming error, reported as validation.
func Paginate(total, limit, offset int) (PageInfo, error) {
	if limit <= 0 {
		return PageInfo{}, graph.Invalidf("limit must be positive, got %d", limit)
	}
	if offset < 0 {
		offset = 0
	}
	if total < 0 {
		total = 0
	}

	currentPage := offset/limit + 1
	totalPages := (total + limit - 1) / limit

	return PageInfo{
		TotalCount:      total,
		Limit:           limit,
		Offset:          offset,
		CurrentPage:     currentPage,
		TotalPages:      totalPages,
		HasNextPage:     currentPage < totalPages,
		HasPreviousPage: currentPage > 1,
	}, nil
}
