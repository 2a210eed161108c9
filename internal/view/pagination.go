package view

// Pagination describes the page links rendered under a list.
type Pagination struct {
	Page       int
	TotalPages int
	PrevURL    string
	NextURL    string
}

// NewPagination computes the pagination of a list of total items shown limit
// per page. urlFor builds the link to a given page.
func NewPagination(page, limit, total int, urlFor func(page int) string) Pagination {
	if limit <= 0 {
		return Pagination{Page: 1, TotalPages: 1}
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	p := Pagination{Page: page, TotalPages: pages}
	if page > 1 {
		p.PrevURL = urlFor(page - 1)
	}
	if page < pages {
		p.NextURL = urlFor(page + 1)
	}
	return p
}

// Offset returns the offset of the first item of page.
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}
