package file

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

// SeenStore persists per-company document sets as a single JSON file.
// The full state lives in memory; every mutation rewrites the file.
type SeenStore struct {
	path      string
	mu        sync.Mutex
	companies map[string][]docwatch.DocumentRecord
}

// NewSeenStore loads (or initializes) the seen store under dir.
func NewSeenStore(dir string) (*SeenStore, error) {
	s := &SeenStore{
		path:      filepath.Join(dir, "seen.json"),
		companies: make(map[string][]docwatch.DocumentRecord),
	}
	if err := loadJSON(s.path, &s.companies); err != nil {
		return nil, err
	}
	if s.companies == nil {
		s.companies = make(map[string][]docwatch.DocumentRecord)
	}
	return s, nil
}

// Has implements docwatch.SeenStore.
func (s *SeenStore) Has(_ context.Context, company, identity string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.companies[company] {
		if doc.ID == identity {
			return true, nil
		}
	}
	return false, nil
}

// Add implements docwatch.SeenStore.
func (s *SeenStore) Add(_ context.Context, company string, doc docwatch.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.companies[company] {
		if existing.ID == doc.ID {
			return nil
		}
	}
	s.companies[company] = append(s.companies[company], doc)
	return saveJSON(s.path, s.companies)
}

// Touch implements docwatch.SeenStore.
func (s *SeenStore) Touch(_ context.Context, company string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[company]; ok {
		return nil
	}
	s.companies[company] = []docwatch.DocumentRecord{}
	return saveJSON(s.path, s.companies)
}

// HasHistory implements docwatch.SeenStore.
func (s *SeenStore) HasHistory(_ context.Context, company string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.companies[company]
	return ok, nil
}

// Documents implements docwatch.SeenStore.
func (s *SeenStore) Documents(_ context.Context, company string) ([]docwatch.DocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.companies[company]
	out := make([]docwatch.DocumentRecord, len(docs))
	copy(out, docs)
	return out, nil
}
