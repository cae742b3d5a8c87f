package service

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
	// maxPage keeps (page-1)*limit far from int overflow.
	maxPage      = 1 << 20
)

// Pagination describes one page of an ordered listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// normalizePage applies the default page and limit, caps limit at maxLimit
// and page at maxPage.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func offsetOf(page, limit int) int {
	return (page - 1) * limit
}

func newPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
