package dto

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

type ProductFilters struct {
	Category      string
	SearchQuery   string // case-insensitive match on name
	SortBy        string // newest, price_asc, price_desc
	PublishedOnly bool
	Page          int
	PageSize      int
}

// Normalize clamps paging to sane bounds.
func (f *ProductFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
	switch f.SortBy {
	case SortPriceAsc, SortPriceDesc, SortNewest:
	default:
		f.SortBy = SortNewest
	}
}

func (f *ProductFilters) Skip() int {
	return (f.Page - 1) * f.PageSize
}
