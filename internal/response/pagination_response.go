package response

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

// NewPagination describes a 1-based page over totalItems. From and To are
// 1-based item positions, both zero for an empty page.
func NewPagination(page, pageSize int, totalItems int64) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	totalPages := (totalItems + int64(pageSize) - 1) / int64(pageSize)
	p := &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: totalItems,
		HasMore:    int64(page) < totalPages,
	}

	from := int64((page-1)*pageSize) + 1
	if from <= totalItems {
		p.From = int(from)
		p.To = int(min(int64(page*pageSize), totalItems))
	}
	return p
}
