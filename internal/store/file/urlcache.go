package file

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

// URLCache persists resolved winners as a single JSON file.
type URLCache struct {
	path    string
	mu      sync.Mutex
	entries map[string]docwatch.CacheEntry
}

// NewURLCache loads (or initializes) the URL cache under dir.
func NewURLCache(dir string) (*URLCache, error) {
	c := &URLCache{
		path:    filepath.Join(dir, "urlcache.json"),
		entries: make(map[string]docwatch.CacheEntry),
	}
	if err := loadJSON(c.path, &c.entries); err != nil {
		return nil, err
	}
	if c.entries == nil {
		c.entries = make(map[string]docwatch.CacheEntry)
	}
	return c, nil
}

// Get implements docwatch.URLCache.
func (c *URLCache) Get(_ context.Context, identifier string) (docwatch.CacheEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[identifier]
	return entry, ok, nil
}

// Put implements docwatch.URLCache.
func (c *URLCache) Put(_ context.Context, identifier string, entry docwatch.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[identifier] = entry
	return saveJSON(c.path, c.entries)
}
