package docwatch

import (
	"context"
	"time"
)

// Resolver turns a company identifier into an ordered list of URL guesses.
type Resolver interface {
	Candidates(ctx context.Context, identifier string) ([]Candidate, error)
}

// Fetcher retrieves a single URL without JavaScript execution.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResult, error)
}

// Renderer retrieves a URL through a JavaScript-capable browser.
type Renderer interface {
	Render(ctx context.Context, url string) (FetchResult, error)
}

// Detector decides whether a plain response structurally under-delivers and
// the candidate should be retried through the Renderer.
type Detector interface {
	NeedsRender(body []byte) bool
}

// URLCache remembers the winning URL per identifier. Implementations must be
// safe for concurrent use; entries for different identifiers are independent.
type URLCache interface {
	Get(ctx context.Context, identifier string) (CacheEntry, bool, error)
	Put(ctx context.Context, identifier string, entry CacheEntry) error
}

// SeenStore persists reported documents per company, keyed by content
// identity. Writes are append-only; entries are never removed except by an
// explicit external reset.
type SeenStore interface {
	Has(ctx context.Context, company, identity string) (bool, error)
	Add(ctx context.Context, company string, doc DocumentRecord) error
	// Touch records that the company was scanned successfully, creating its
	// key even when no documents were added.
	Touch(ctx context.Context, company string) error
	// HasHistory reports whether the company key exists at all, even with an
	// empty document set.
	HasHistory(ctx context.Context, company string) (bool, error)
	// Documents lists every recorded document for a company.
	Documents(ctx context.Context, company string) ([]DocumentRecord, error)
}

// Archive stores raw page snapshots and is allowed to be a no-op.
type Archive interface {
	Save(ctx context.Context, objectName string, data []byte) error
}

// Notifier hands new-document events to the outbound channel.
type Notifier interface {
	Publish(ctx context.Context, n Notification) error
}

// RetryPolicy governs per-candidate retry behavior in the fetch loop.
type RetryPolicy interface {
	ShouldRetry(err error, attempt int) bool
	Backoff(attempt int) time.Duration
}

// Hasher computes the content identity digest.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (swappable in tests).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces scan IDs.
type IDGenerator interface {
	NewID() (string, error)
}
