// Package archive stores raw page snapshots.
package archive

import (
	"context"
	"fmt"
	"time"
)

// Noop discards snapshots. Used when archiving is disabled.
type Noop struct{}

// NewNoop returns a discarding archive.
func NewNoop() *Noop {
	return &Noop{}
}

// Save implements docwatch.Archive.
func (Noop) Save(_ context.Context, _ string, _ []byte) error {
	return nil
}

// ObjectName builds the canonical snapshot path:
// <prefix>/<yyyy-mm-dd>/<company>/<digest>.html
func ObjectName(prefix string, at time.Time, company, digest string) string {
	return fmt.Sprintf("%s/%s/%s/%s.html", prefix, at.UTC().Format("2006-01-02"), company, digest)
}
