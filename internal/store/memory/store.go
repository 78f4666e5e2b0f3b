// Package memory provides in-process store implementations.
package memory

import (
	"context"
	"sync"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

// SeenStore keeps per-company document sets in maps guarded by a RWMutex.
type SeenStore struct {
	mu        sync.RWMutex
	companies map[string]map[string]docwatch.DocumentRecord
	order     map[string][]string
}

// NewSeenStore creates an empty SeenStore.
func NewSeenStore() *SeenStore {
	return &SeenStore{
		companies: make(map[string]map[string]docwatch.DocumentRecord),
		order:     make(map[string][]string),
	}
}

// Has implements docwatch.SeenStore.
func (s *SeenStore) Has(_ context.Context, company, identity string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, ok := s.companies[company]
	if !ok {
		return false, nil
	}
	_, found := docs[identity]
	return found, nil
}

// Add implements docwatch.SeenStore.
func (s *SeenStore) Add(_ context.Context, company string, doc docwatch.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.companies[company]
	if !ok {
		docs = make(map[string]docwatch.DocumentRecord)
		s.companies[company] = docs
	}
	if _, dup := docs[doc.ID]; !dup {
		s.order[company] = append(s.order[company], doc.ID)
	}
	docs[doc.ID] = doc
	return nil
}

// Touch implements docwatch.SeenStore.
func (s *SeenStore) Touch(_ context.Context, company string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[company]; !ok {
		s.companies[company] = make(map[string]docwatch.DocumentRecord)
	}
	return nil
}

// HasHistory implements docwatch.SeenStore.
func (s *SeenStore) HasHistory(_ context.Context, company string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.companies[company]
	return ok, nil
}

// Documents implements docwatch.SeenStore. Records come back in insertion
// order.
func (s *SeenStore) Documents(_ context.Context, company string) ([]docwatch.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, ok := s.companies[company]
	if !ok {
		return nil, nil
	}
	out := make([]docwatch.DocumentRecord, 0, len(docs))
	for _, id := range s.order[company] {
		out = append(out, docs[id])
	}
	return out, nil
}

// URLCache keeps resolved winners in a map guarded by a RWMutex.
type URLCache struct {
	mu      sync.RWMutex
	entries map[string]docwatch.CacheEntry
}

// NewURLCache creates an empty URLCache.
func NewURLCache() *URLCache {
	return &URLCache{entries: make(map[string]docwatch.CacheEntry)}
}

// Get implements docwatch.URLCache.
func (c *URLCache) Get(_ context.Context, identifier string) (docwatch.CacheEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[identifier]
	return entry, ok, nil
}

// Put implements docwatch.URLCache.
func (c *URLCache) Put(_ context.Context, identifier string, entry docwatch.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[identifier] = entry
	return nil
}
