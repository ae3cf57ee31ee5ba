package browse

import (
	"cmp"
	"slices"
)

// ApplySorting returns a sorted copy of products. Ties keep their input order.
// SortNone and unknown modes return the input order unchanged.
func ApplySorting(products []Product, mode SortMode) []Product {
	ordered := slices.Clone(products)
	if ordered == nil {
		ordered = []Product{}
	}

	var less func(a, b Product) int
	switch mode {
	case SortPriceAsc:
		less = func(a, b Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceDesc:
		less = func(a, b Product) int { return cmp.Compare(b.Price, a.Price) }
	case SortRatingDesc:
		less = func(a, b Product) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortRatingAsc:
		less = func(a, b Product) int { return cmp.Compare(a.Rating, b.Rating) }
	default:
		return ordered
	}

	slices.SortStableFunc(ordered, less)
	return ordered
}
