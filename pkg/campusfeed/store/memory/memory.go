// Package memory provides an in-memory implementation of the
// campusfeed.DocStore contract. It doubles as the non-persistent
// substitute store behind the resilience wrapper and as the backing
// store for tests; all data is lost on process restart.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/campushub/campus-feed/pkg/campusfeed"
)

// Store implements campusfeed.DocStore over maps, scoped by collection
// name.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// New creates an empty in-memory document store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string][]byte),
	}
}

func (s *Store) Put(ctx context.Context, collection, key string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string][]byte)
		s.collections[collection] = col
	}

	// Store a copy so later caller mutations cannot leak in.
	stored := make([]byte, len(doc))
	copy(stored, doc)
	col[key] = stored
	return nil
}

func (s *Store) Get(ctx context.Context, collection, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", campusfeed.ErrKeyNotFound, collection, key)
	}

	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if _, exists := col[key]; !ok || !exists {
		return fmt.Errorf("%w: %s/%s", campusfeed.ErrKeyNotFound, collection, key)
	}

	delete(col, key)
	return nil
}

func (s *Store) Scan(ctx context.Context, collection string, conds ...campusfeed.Cond) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.collections[collection]

	// Deterministic order keeps scans stable across calls.
	keys := make([]string, 0, len(col))
	for key := range col {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([][]byte, 0, len(keys))
	for _, key := range keys {
		doc := col[key]
		ok, err := matches(doc, conds)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out := make([]byte, len(doc))
		copy(out, doc)
		result = append(result, out)
	}
	return result, nil
}

func matches(doc []byte, conds []campusfeed.Cond) (bool, error) {
	if len(conds) == 0 {
		return true, nil
	}

	var attrs map[string]any
	if err := json.Unmarshal(doc, &attrs); err != nil {
		return false, fmt.Errorf("scan: document is not an object: %w", err)
	}

	for _, cond := range conds {
		value, ok := attrs[cond.Attr]
		if !ok || fmt.Sprint(value) != cond.Value {
			return false, nil
		}
	}
	return true, nil
}
