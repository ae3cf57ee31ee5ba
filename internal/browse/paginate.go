package browse

// Paginate returns the products on the 1-based currentPage. A page past the end, or a
// non-positive page or size, is an empty page.
func Paginate(ordered []Product, currentPage, pageSize int) []Product {
	// comparing pages first keeps start from overflowing on absurd page numbers
	if currentPage < 1 || pageSize < 1 || currentPage > TotalPages(len(ordered), pageSize) {
		return []Product{}
	}
	start := (currentPage - 1) * pageSize
	end := min(start+pageSize, len(ordered))

	page := make([]Product, end-start)
	copy(page, ordered[start:end])
	return page
}

// TotalPages is ceil(total / pageSize)
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize < 1 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}

// Query is everything the pipeline needs besides the product list
type Query struct {
	Criteria FilterCriteria
	Search   string
	Sort     SortMode
	Page     PageState
}

// Result is one rendered page of the pipeline
type Result struct {
	Items      []Product `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// Empty reports whether nothing matched the query
func (r Result) Empty() bool { return r.Total == 0 }

// Run filters, then sorts the whole matched set, then cuts the requested page out of it
func Run(products []Product, q Query) Result {
	matched := FilterProducts(products, q.Criteria, q.Search)
	ordered := ApplySorting(matched, q.Sort)
	return Result{
		Items:      Paginate(ordered, q.Page.CurrentPage, q.Page.PageSize),
		Total:      len(ordered),
		Page:       q.Page.CurrentPage,
		PageSize:   q.Page.PageSize,
		TotalPages: TotalPages(len(ordered), q.Page.PageSize),
	}
}
