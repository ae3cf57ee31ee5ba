package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clam-browse/internal/browse"
	"clam-browse/internal/prefs"
	"clam-browse/internal/source"
)

type fakeFetcher struct {
	mu      sync.Mutex
	queries []string
	fn      func(ctx context.Context, q string) ([]browse.Product, error)
}

func (f *fakeFetcher) FetchProducts(ctx context.Context, q string) ([]browse.Product, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.fn(ctx, q)
}

func (f *fakeFetcher) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func staticFetcher(products []browse.Product) *fakeFetcher {
	return &fakeFetcher{fn: func(context.Context, string) ([]browse.Product, error) { return products, nil }}
}

func catalog() []browse.Product {
	return []browse.Product{
		{ID: "1", Name: "Red Shoe", Category: "Footwear", Brand: "A", Price: 50, Rating: 4},
		{ID: "2", Name: "Blue Shirt", Category: "Clothing", Brand: "B", Price: 20, Rating: 3},
		{ID: "3", Name: "Green Shoe", Category: "Footwear", Brand: "A", Price: 80, Rating: 5},
		{ID: "4", Name: "Grey Scarf", Category: "Accessories", Brand: "C", Price: 35, Rating: 4},
	}
}

func itemIDs(v View) []browse.ProductID {
	out := []browse.ProductID{}
	for _, p := range v.Items {
		out = append(out, p.ID)
	}
	return out
}

func TestViewBeforeFetchIsLoading(t *testing.T) {
	s := New(staticFetcher(catalog()), Options{})
	v := s.View()
	assert.Equal(t, StatusLoading, v.Status)
	assert.Empty(t, v.Items)
}

func TestRefreshAndPaging(t *testing.T) {
	ctx := context.Background()
	s := New(staticFetcher(catalog()), Options{PageSize: 2})
	require.NoError(t, s.Refresh(ctx))

	v := s.View()
	assert.Equal(t, StatusReady, v.Status)
	assert.Equal(t, []browse.ProductID{"1", "2"}, itemIDs(v))
	assert.Equal(t, 4, v.Total)
	assert.Equal(t, 2, v.TotalPages)
	assert.Equal(t, []string{"Footwear", "Clothing", "Accessories"}, v.Facets.Categories)

	s.SetPage(2)
	assert.Equal(t, []browse.ProductID{"3", "4"}, itemIDs(s.View()))

	s.SetPage(9)
	v = s.View()
	assert.Equal(t, StatusReady, v.Status)
	assert.Empty(t, v.Items)

	s.SetPage(-3)
	assert.Equal(t, 1, s.View().Page)
}

func TestStateChangesResetPage(t *testing.T) {
	ctx := context.Background()
	s := New(staticFetcher(catalog()), Options{PageSize: 1, SearchDelay: time.Hour})
	require.NoError(t, s.Refresh(ctx))

	s.SetPage(3)
	require.NoError(t, s.SetSort(ctx, browse.SortPriceDesc))
	assert.Equal(t, 1, s.View().Page)

	s.SetPage(3)
	require.NoError(t, s.ApplyFilters(ctx, browse.FilterCriteria{Category: "Footwear", PriceRange: browse.PriceRange{0, 100}}))
	v := s.View()
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, []browse.ProductID{"3"}, itemIDs(v))
	assert.Equal(t, 2, v.TotalPages)

	s.SetPage(2)
	require.NoError(t, s.ClearFilters(ctx))
	assert.Equal(t, 1, s.View().Page)

	s.SetPage(2)
	s.SetSearch("shoe")
	require.NoError(t, s.SettleSearch(ctx))
	v = s.View()
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, "shoe", v.Search)
	assert.Equal(t, 2, v.Total)
}

func TestFacetsComeFromFullCatalog(t *testing.T) {
	ctx := context.Background()
	s := New(staticFetcher(catalog()), Options{})
	require.NoError(t, s.Refresh(ctx))
	require.NoError(t, s.ApplyFilters(ctx, browse.FilterCriteria{Category: "Clothing", PriceRange: browse.PriceRange{0, 100}}))

	v := s.View()
	assert.Equal(t, []browse.ProductID{"2"}, itemIDs(v))
	assert.Equal(t, []string{"Footwear", "Clothing", "Accessories"}, v.Facets.Categories)
	assert.Equal(t, []string{"A", "B", "C"}, v.Facets.Brands)
}

func TestEmptyState(t *testing.T) {
	ctx := context.Background()
	s := New(staticFetcher(catalog()), Options{})
	require.NoError(t, s.Refresh(ctx))
	require.NoError(t, s.ApplyFilters(ctx, browse.FilterCriteria{Category: "Garden", PriceRange: browse.PriceRange{0, 100}}))

	v := s.View()
	assert.Equal(t, StatusEmpty, v.Status)
	assert.Empty(t, v.Items)
}

func TestApplyFiltersRejectsInvalid(t *testing.T) {
	s := New(staticFetcher(nil), Options{})
	err := s.ApplyFilters(context.Background(), browse.FilterCriteria{PriceRange: browse.PriceRange{9, 1}})
	assert.ErrorIs(t, err, browse.ErrInvalidCriteria)
	assert.Equal(t, browse.DefaultCriteria(), s.View().Criteria)
}

func TestFailedFetchHidesStaleData(t *testing.T) {
	ctx := context.Background()
	fail := false
	f := &fakeFetcher{fn: func(context.Context, string) ([]browse.Product, error) {
		if fail {
			return nil, &source.ServerError{StatusCode: 500}
		}
		return catalog(), nil
	}}
	s := New(f, Options{})
	require.NoError(t, s.Refresh(ctx))
	require.NotEmpty(t, s.View().Items)

	fail = true
	err := s.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, source.IsServer(err))

	v := s.View()
	assert.Equal(t, StatusFailed, v.Status)
	assert.Empty(t, v.Items)
	assert.Error(t, v.Err)

	fail = false
	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, StatusReady, s.View().Status)
}

func TestSupersededFetchIsDropped(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	f := &fakeFetcher{fn: func(_ context.Context, q string) ([]browse.Product, error) {
		if q == "slow" {
			entered <- struct{}{}
			<-release
			return []browse.Product{{ID: "stale", Name: "slow", Category: "x", Brand: "x", Price: 1}}, nil
		}
		return catalog(), nil
	}}
	s := New(f, Options{SearchDelay: time.Hour})

	s.SetSearch("slow")
	s.search.Flush()
	<-s.search.Settled()

	done := make(chan error, 1)
	go func() { done <- s.Refresh(ctx) }()
	<-entered

	s.SetSearch("")
	s.search.Flush()
	<-s.search.Settled()
	require.NoError(t, s.Refresh(ctx))

	close(release)
	assert.True(t, errors.Is(<-done, ErrSuperseded))

	v := s.View()
	assert.Equal(t, 4, v.Total)
	assert.Equal(t, []string{"slow", ""}, f.seen())
}

func TestRunRefreshesOnSettledSearch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := staticFetcher(catalog())
	s := New(f, Options{SearchDelay: 100 * time.Millisecond})
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	s.SetSearch("g")
	s.SetSearch("gr")
	s.SetSearch("green")

	require.Eventually(t, func() bool { return s.View().Status == StatusReady }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"green"}, f.seen())
	assert.Equal(t, []browse.ProductID{"3"}, itemIDs(s.View()))

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()

	s := New(staticFetcher(catalog()), Options{Store: store})
	want := browse.FilterCriteria{Category: "Footwear", Brands: []string{"A"}, PriceRange: browse.PriceRange{10, 60}, Rating: 1}
	require.NoError(t, s.ApplyFilters(ctx, want))
	require.NoError(t, s.SetSort(ctx, browse.SortRatingAsc))

	restored := New(staticFetcher(catalog()), Options{Store: store})
	require.NoError(t, restored.Load(ctx))
	v := restored.View()
	assert.Equal(t, want, v.Criteria)
	assert.Equal(t, browse.SortRatingAsc, v.Sort)

	require.NoError(t, restored.ClearFilters(ctx))
	_, ok, err := store.Get(ctx, prefs.KeyFilters)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.Get(ctx, prefs.KeySort)
	require.NoError(t, err)
	assert.True(t, ok, "clearing filters keeps the sort mode")
}

func TestLoadSkipsCorruptFilters(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Set(ctx, prefs.KeyFilters, `{"priceRange":[100,1]}`))
	require.NoError(t, store.Set(ctx, prefs.KeySort, "PriceHighToLow"))

	s := New(staticFetcher(nil), Options{Store: store})
	require.NoError(t, s.Load(ctx))
	v := s.View()
	assert.Equal(t, browse.DefaultCriteria(), v.Criteria)
	assert.Equal(t, browse.SortPriceDesc, v.Sort)
}

type failingStore struct{ prefs.Store }

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("store down")
}

func TestLoadReportsStoreErrors(t *testing.T) {
	s := New(staticFetcher(nil), Options{Store: failingStore{}})
	assert.Error(t, s.Load(context.Background()))
}
