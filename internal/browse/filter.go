// Package browse turns a fetched product list and the user's browsing state into the page to render.
//
// Every function in this package is pure: inputs are never mutated, nothing is cached and nothing
// blocks, so calls are safe from any number of goroutines.
package browse

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// FilterProducts returns the products that satisfy every constraint in criteria and whose name
// contains searchText, ignoring case. Relative input order is kept.
func FilterProducts(products []Product, criteria FilterCriteria, searchText string) []Product {
	// a Caser holds state, so each call gets its own
	fold := cases.Fold()
	needle := fold.String(searchText)

	matches := make([]Product, 0, len(products))
	for _, p := range products {
		if !criteria.matches(p) {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(p.Name), needle) {
			continue
		}
		matches = append(matches, p)
	}
	return matches
}

func (c FilterCriteria) matches(p Product) bool {
	if c.Category != AllCategories && p.Category != c.Category {
		return false
	}
	if len(c.Brands) > 0 && !slices.Contains(c.Brands, p.Brand) {
		return false
	}
	if !c.PriceRange.Contains(p.Price) {
		return false
	}
	return p.Rating >= c.Rating
}
