package workflow

// DefaultPageSize is the server's fixed page size.
const DefaultPageSize = 5

// Pagination is derived from the server's count, never kept locally.
type Pagination struct {
	CurrentPage int `json:"current_page" yaml:"current_page"`
	TotalPages  int `json:"total_pages" yaml:"total_pages"`
	Count       int `json:"count" yaml:"count"`
}

// TotalPages returns ceil(count/pageSize), and 1 for an empty result.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// NewPagination builds the pagination for page of a result with count rows.
func NewPagination(page, count, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if count < 0 {
		count = 0
	}
	return Pagination{CurrentPage: page, TotalPages: TotalPages(count, pageSize), Count: count}
}

// emptyPagination is what a no-results answer resets to.
func emptyPagination() Pagination {
	return Pagination{CurrentPage: 1, TotalPages: 1, Count: 0}
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// HasPrev reports whether an earlier page exists.
func (p Pagination) HasPrev() bool {
	return p.CurrentPage > 1
}
