package browse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// AllCategories is the category sentinel that disables the category constraint
const AllCategories = "All"

// Default bounds used by the filter panel
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 1000
)

// ProductID identifies a product. The remote API may send it as a number or a string.
type ProductID string

// UnmarshalJSON accepts both JSON strings and JSON numbers
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// Product is an immutable catalog record as the browsing engine sees it
type Product struct {
	ID         ProductID `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Brand      string    `json:"brand"`
	Price      float64   `json:"price"`
	Rating     float64   `json:"rating"`
	Popularity *float64  `json:"popularity,omitempty"`
}

// PriceRange is an inclusive [min, max] price window
type PriceRange [2]float64

// Min returns the lower bound
func (r PriceRange) Min() float64 { return r[0] }

// Max returns the upper bound
func (r PriceRange) Max() float64 { return r[1] }

// Contains reports whether price lies inside the range, both ends inclusive
func (r PriceRange) Contains(price float64) bool {
	return r[0] <= price && price <= r[1]
}

// MarshalJSON encodes the range as a two element array. An infinite upper bound is written as null.
func (r PriceRange) MarshalJSON() ([]byte, error) {
	upper := "null"
	if !math.IsInf(r[1], 1) {
		upper = strconv.FormatFloat(r[1], 'f', -1, 64)
	}
	return []byte("[" + strconv.FormatFloat(r[0], 'f', -1, 64) + "," + upper + "]"), nil
}

// UnmarshalJSON is the inverse of MarshalJSON
func (r *PriceRange) UnmarshalJSON(data []byte) error {
	var bounds []*float64
	if err := json.Unmarshal(data, &bounds); err != nil {
		return fmt.Errorf("price range: %w", err)
	}
	if len(bounds) != 2 {
		return fmt.Errorf("price range: want 2 bounds, got %d", len(bounds))
	}
	r[0], r[1] = 0, math.Inf(1)
	if bounds[0] != nil {
		r[0] = *bounds[0]
	}
	if bounds[1] != nil {
		r[1] = *bounds[1]
	}
	return nil
}

// FilterCriteria is the set of user selected constraints
type FilterCriteria struct {
	Category   string     `json:"category"`
	Brands     []string   `json:"brands"`
	PriceRange PriceRange `json:"priceRange"`
	Rating     float64    `json:"rating"`
}

// DefaultCriteria returns the criteria the filter panel starts from and returns to on clear
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		Category:   AllCategories,
		Brands:     []string{},
		PriceRange: PriceRange{DefaultMinPrice, DefaultMaxPrice},
		Rating:     0,
	}
}

// MatchAll returns criteria that match every product
func MatchAll() FilterCriteria {
	return FilterCriteria{
		Category:   AllCategories,
		Brands:     []string{},
		PriceRange: PriceRange{0, math.Inf(1)},
	}
}

// SortMode selects the ordering of the matched products
type SortMode int

const (
	SortNone SortMode = iota
	SortPriceAsc
	SortPriceDesc
	SortRatingDesc
	SortRatingAsc
)

var sortModeNames = map[SortMode]string{
	SortNone:       "none",
	SortPriceAsc:   "price_asc",
	SortPriceDesc:  "price_desc",
	SortRatingDesc: "rating_desc",
	SortRatingAsc:  "rating_asc",
}

// String returns the canonical name. Unknown modes print as "none".
func (m SortMode) String() string {
	if name, ok := sortModeNames[m]; ok {
		return name
	}
	return sortModeNames[SortNone]
}

// PageState is the 1-based page the caller wants and its size
type PageState struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// Facets are the distinct filter values present in the full catalog
type Facets struct {
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
}
