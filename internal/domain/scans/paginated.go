package scans

// PaginatedResult is one page of scan history plus the totals for the
// filters it was queried with.
type PaginatedResult struct {
	Data       []*Scan `json:"data"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	Total      int64   `json:"total"`
	TotalPages int     `json:"total_pages"`
}

// HasNext reports whether a later page exists.
func (p PaginatedResult) HasNext() bool {
	return p.Page < p.TotalPages
}
