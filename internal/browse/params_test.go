package browse

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortMode(t *testing.T) {
	tests := map[string]SortMode{
		"":                SortNone,
		"none":            SortNone,
		"price_asc":       SortPriceAsc,
		"PRICE_DESC":      SortPriceDesc,
		" rating_desc ":   SortRatingDesc,
		"rating_asc":      SortRatingAsc,
		"PriceLowToHigh":  SortPriceAsc,
		"PriceHighToLow":  SortPriceDesc,
		"RatingHighToLow": SortRatingDesc,
		"RatingLowToHigh": SortRatingAsc,
		"popularity":      SortNone,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseSortMode(in), "ParseSortMode(%q)", in)
	}
}

func TestSortModeStringRoundTrip(t *testing.T) {
	for _, m := range []SortMode{SortNone, SortPriceAsc, SortPriceDesc, SortRatingDesc, SortRatingAsc} {
		assert.Equal(t, m, ParseSortMode(m.String()))
	}
	assert.Equal(t, "none", SortMode(-1).String())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultCriteria().Validate())
	assert.NoError(t, MatchAll().Validate())

	bad := []FilterCriteria{
		{PriceRange: PriceRange{10, 5}},
		{PriceRange: PriceRange{-1, 5}},
		{PriceRange: PriceRange{0, 5}, Rating: 5.5},
		{PriceRange: PriceRange{0, 5}, Rating: -1},
		{PriceRange: PriceRange{math.NaN(), 5}},
	}
	for _, c := range bad {
		assert.ErrorIs(t, c.Validate(), ErrInvalidCriteria, "%+v", c)
	}
}

func TestPriceRangeJSON(t *testing.T) {
	data, err := json.Marshal(MatchAll().PriceRange)
	require.NoError(t, err)
	assert.JSONEq(t, `[0,null]`, string(data))

	var r PriceRange
	require.NoError(t, json.Unmarshal([]byte(`[12.5, null]`), &r))
	assert.Equal(t, 12.5, r.Min())
	assert.True(t, math.IsInf(r.Max(), 1))

	require.NoError(t, json.Unmarshal([]byte(`[0, 1000]`), &r))
	assert.Equal(t, PriceRange{0, 1000}, r)

	assert.Error(t, json.Unmarshal([]byte(`[1]`), &r))
}

func TestProductIDAcceptsNumbers(t *testing.T) {
	var products []Product
	payload := `[{"id": 7, "name": "Lamp"}, {"id": "b2d1", "name": "Desk"}]`
	require.NoError(t, json.Unmarshal([]byte(payload), &products))

	require.Len(t, products, 2)
	assert.Equal(t, ProductID("7"), products[0].ID)
	assert.Equal(t, ProductID("b2d1"), products[1].ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &Product{}))
}
