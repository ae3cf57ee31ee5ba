package browse

import "github.com/iancoleman/orderedmap"

// ExtractFacets collects the distinct categories and brands of the full catalog in first-seen order.
// Pass the unfiltered list so that narrowing a filter never hides the values needed to widen it again.
func ExtractFacets(products []Product) Facets {
	categories := orderedmap.New()
	brands := orderedmap.New()
	for _, p := range products {
		if _, seen := categories.Get(p.Category); !seen {
			categories.Set(p.Category, struct{}{})
		}
		if _, seen := brands.Get(p.Brand); !seen {
			brands.Set(p.Brand, struct{}{})
		}
	}
	return Facets{
		Categories: categories.Keys(),
		Brands:     brands.Keys(),
	}
}
