package browse

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidCriteria is returned by Validate for criteria that can never be satisfied or are malformed
var ErrInvalidCriteria = errors.New("invalid filter criteria")

// MaxRating is the top of the rating scale
const MaxRating = 5

// Validate checks the invariants callers must hold before handing criteria to the engine
func (c FilterCriteria) Validate() error {
	lo, hi := c.PriceRange.Min(), c.PriceRange.Max()
	switch {
	case math.IsNaN(lo) || math.IsNaN(hi):
		return fmt.Errorf("%w: price bound is not a number", ErrInvalidCriteria)
	case lo < 0:
		return fmt.Errorf("%w: negative minimum price %v", ErrInvalidCriteria, lo)
	case lo > hi:
		return fmt.Errorf("%w: minimum price %v above maximum %v", ErrInvalidCriteria, lo, hi)
	case math.IsNaN(c.Rating) || c.Rating < 0 || c.Rating > MaxRating:
		return fmt.Errorf("%w: rating %v outside [0,%d]", ErrInvalidCriteria, c.Rating, MaxRating)
	}
	return nil
}

// legacy names sent by the web widget's sort select
var sortModeAliases = map[string]SortMode{
	"pricelowtohigh":  SortPriceAsc,
	"pricehightolow":  SortPriceDesc,
	"ratinghightolow": SortRatingDesc,
	"ratinglowtohigh": SortRatingAsc,
}

// ParseSortMode maps a sort name to a SortMode. Matching ignores case; unknown names are SortNone.
func ParseSortMode(name string) SortMode {
	key := strings.ToLower(strings.TrimSpace(name))
	for mode, canonical := range sortModeNames {
		if key == canonical {
			return mode
		}
	}
	if mode, ok := sortModeAliases[key]; ok {
		return mode
	}
	return SortNone
}
