// Package widget drives a browsing session: it owns the user's search, filter, sort and page
// state, fetches the catalog through a product source and renders pages with the browse engine.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"clam-browse/internal/browse"
	"clam-browse/internal/debounce"
	"clam-browse/internal/logger"
	"clam-browse/internal/prefs"
	"clam-browse/internal/source"
)

// ErrSuperseded is returned by Refresh when a newer fetch started before this one finished.
// Its result was dropped.
var ErrSuperseded = errors.New("fetch superseded by a newer one")

// Defaults used when Options leaves them zero
const (
	DefaultPageSize    = 10
	DefaultSearchDelay = 300 * time.Millisecond
)

// Status is what the presentation layer should show
type Status int

const (
	StatusLoading Status = iota
	StatusFailed
	StatusEmpty
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusEmpty:
		return "empty"
	case StatusReady:
		return "ready"
	default:
		return "loading"
	}
}

// Options configures a Session
type Options struct {
	PageSize    int
	SearchDelay time.Duration
	// Store persists filters and sort mode; nil keeps them in memory only
	Store prefs.Store
}

// Session is the state owner in front of the browse engine. It is safe for concurrent use.
type Session struct {
	fetcher source.Fetcher
	store   prefs.Store
	search  *debounce.Debouncer[string]

	mu       sync.Mutex
	criteria browse.FilterCriteria
	sort     browse.SortMode
	page     int
	pageSize int

	catalog  []browse.Product
	fetched  bool
	fetchErr error
	started  uint64
}

// New returns a Session with default criteria, no sort and page 1
func New(fetcher source.Fetcher, opts Options) *Session {
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = DefaultSearchDelay
	}
	return &Session{
		fetcher:  fetcher,
		store:    opts.Store,
		search:   debounce.New("", opts.SearchDelay),
		criteria: browse.DefaultCriteria(),
		sort:     browse.SortNone,
		page:     1,
		pageSize: opts.PageSize,
	}
}

// Load restores criteria and sort mode from the store. A corrupt entry is logged and skipped.
func (s *Session) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	st, err := prefs.Load(ctx, s.store)
	if err != nil && !errors.Is(err, prefs.ErrCorrupt) {
		return err
	}
	if err != nil {
		logger.Warnf("ignoring stored filters: %v", err)
	}

	s.mu.Lock()
	s.criteria = st.Criteria
	s.sort = st.Sort
	s.page = 1
	s.mu.Unlock()
	return nil
}

// SetSearch feeds text into the debouncer. Nothing changes until the text settles.
func (s *Session) SetSearch(text string) {
	s.search.Push(text)
}

// SettleSearch applies pending search text now instead of waiting out the quiet period
func (s *Session) SettleSearch(ctx context.Context) error {
	s.search.Flush()
	select {
	case text := <-s.search.Settled():
		return s.onSearchSettled(ctx, text)
	default:
		return nil
	}
}

// Run applies settled search text until ctx is done
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.search.Stop()
			return ctx.Err()
		case text := <-s.search.Settled():
			if err := s.onSearchSettled(ctx, text); err != nil && !errors.Is(err, ErrSuperseded) {
				logger.Errorf("refresh after search %q: %v", text, err)
			}
		}
	}
}

func (s *Session) onSearchSettled(ctx context.Context, text string) error {
	logger.Debugf("search settled on %q", text)
	s.mu.Lock()
	s.page = 1
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh fetches the catalog for the settled search text. A result from a fetch that was
// overtaken by a later one is discarded and ErrSuperseded returned.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.started++
	gen := s.started
	s.mu.Unlock()

	query := s.search.Value()
	products, err := s.fetcher.FetchProducts(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.started {
		logger.Debugf("dropping fetch %d for %q, fetch %d is newer", gen, query, s.started)
		return ErrSuperseded
	}
	if err != nil {
		s.catalog = nil
		s.fetchErr = err
		return fmt.Errorf("fetch products: %w", err)
	}
	s.catalog = products
	s.fetchErr = nil
	s.fetched = true
	return nil
}

// ApplyFilters replaces the criteria, goes back to page 1 and persists them
func (s *Session) ApplyFilters(ctx context.Context, c browse.FilterCriteria) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Brands == nil {
		c.Brands = []string{}
	}
	s.mu.Lock()
	s.criteria = c
	s.page = 1
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return prefs.SaveCriteria(ctx, s.store, c)
}

// ClearFilters restores the default criteria and forgets the persisted ones
func (s *Session) ClearFilters(ctx context.Context) error {
	s.mu.Lock()
	s.criteria = browse.DefaultCriteria()
	s.page = 1
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, prefs.KeyFilters)
}

// SetSort changes the sort mode, goes back to page 1 and persists the mode
func (s *Session) SetSort(ctx context.Context, m browse.SortMode) error {
	s.mu.Lock()
	s.sort = m
	s.page = 1
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return prefs.SaveSort(ctx, s.store, m)
}

// SetPage moves to page n; pages below 1 become 1
func (s *Session) SetPage(n int) {
	s.mu.Lock()
	s.page = max(n, 1)
	s.mu.Unlock()
}

// View is one render of the session
type View struct {
	Status   Status
	Err      error
	Search   string
	Criteria browse.FilterCriteria
	Sort     browse.SortMode
	Facets   browse.Facets
	browse.Result
}

// View runs the engine over the last fetched catalog. A failed fetch yields no items at all.
func (s *Session) View() View {
	search := s.search.Value()

	s.mu.Lock()
	catalog := s.catalog
	v := View{
		Search:   search,
		Criteria: s.criteria,
		Sort:     s.sort,
		Err:      s.fetchErr,
	}
	page := browse.PageState{CurrentPage: s.page, PageSize: s.pageSize}
	fetched := s.fetched
	s.mu.Unlock()

	switch {
	case v.Err != nil:
		v.Status = StatusFailed
		v.Result = browse.Result{Items: []browse.Product{}, Page: page.CurrentPage, PageSize: page.PageSize}
		return v
	case !fetched:
		v.Status = StatusLoading
		v.Result = browse.Result{Items: []browse.Product{}, Page: page.CurrentPage, PageSize: page.PageSize}
		return v
	}

	v.Facets = browse.ExtractFacets(catalog)
	v.Result = browse.Run(catalog, browse.Query{
		Criteria: v.Criteria,
		Search:   search,
		Sort:     v.Sort,
		Page:     page,
	})
	v.Status = StatusReady
	if v.Empty() {
		v.Status = StatusEmpty
	}
	return v
}
