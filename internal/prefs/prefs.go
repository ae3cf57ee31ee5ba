// Package prefs persists browsing preferences in a key-value store.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"clam-browse/internal/browse"
)

// Keys under which the browsing session keeps its state
const (
	KeyFilters = "productFilters"
	KeySort    = "sortType"
)

// ErrCorrupt marks a stored value that could not be decoded or failed validation
var ErrCorrupt = errors.New("corrupt preference")

// Store is a string key-value store
type Store interface {
	// Get returns the value and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// EncodeCriteria serialises criteria as JSON
func EncodeCriteria(c browse.FilterCriteria) (string, error) {
	if c.Brands == nil {
		c.Brands = []string{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode criteria: %w", err)
	}
	return string(b), nil
}

// DecodeCriteria parses JSON written by EncodeCriteria. Missing fields keep their defaults and
// the result must pass Validate.
func DecodeCriteria(s string) (browse.FilterCriteria, error) {
	c := browse.DefaultCriteria()
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return browse.FilterCriteria{}, fmt.Errorf("decode criteria: %w: %w", ErrCorrupt, err)
	}
	if c.Brands == nil {
		c.Brands = []string{}
	}
	if err := c.Validate(); err != nil {
		return browse.FilterCriteria{}, fmt.Errorf("decode criteria: %w: %w", ErrCorrupt, err)
	}
	return c, nil
}

// State is what a session restores from a Store
type State struct {
	Criteria browse.FilterCriteria
	Sort     browse.SortMode
}

// Load reads the persisted criteria and sort mode. Absent keys yield defaults; a corrupt
// criteria entry is reported and defaults are returned alongside the error.
func Load(ctx context.Context, s Store) (State, error) {
	st := State{Criteria: browse.DefaultCriteria(), Sort: browse.SortNone}

	if raw, ok, err := s.Get(ctx, KeySort); err != nil {
		return st, fmt.Errorf("load sort: %w", err)
	} else if ok {
		st.Sort = browse.ParseSortMode(raw)
	}

	raw, ok, err := s.Get(ctx, KeyFilters)
	if err != nil {
		return st, fmt.Errorf("load filters: %w", err)
	}
	if !ok {
		return st, nil
	}
	c, err := DecodeCriteria(raw)
	if err != nil {
		return st, err
	}
	st.Criteria = c
	return st, nil
}

// SaveCriteria writes criteria under KeyFilters
func SaveCriteria(ctx context.Context, s Store, c browse.FilterCriteria) error {
	raw, err := EncodeCriteria(c)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyFilters, raw)
}

// SaveSort writes the canonical mode name under KeySort
func SaveSort(ctx context.Context, s Store, m browse.SortMode) error {
	return s.Set(ctx, KeySort, m.String())
}

// MemoryStore is a Store kept in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
