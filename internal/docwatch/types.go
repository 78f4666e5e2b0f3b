// Package docwatch defines core types shared across subsystems.
package docwatch

import (
	"time"
)

// CandidateSource records where a URL guess came from. Ordering between
// sources is significant: cached entries are tried before direct variants,
// and alias-derived variants always come last.
type CandidateSource string

// Candidate source values, in descending priority.
const (
	SourceCached      CandidateSource = "cached"
	SourceDirect      CandidateSource = "direct"
	SourceFallbackURL CandidateSource = "fallback-url"
	SourceAlias       CandidateSource = "alias"
)

// Candidate is one URL guess for a company page.
type Candidate struct {
	URL    string          `json:"url"`
	Source CandidateSource `json:"source"`
}

// FetchResult is the accepted page for a company in one scan cycle.
type FetchResult struct {
	Identifier string        `json:"identifier"`
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code"`
	Body       []byte        `json:"-"`
	Rendered   bool          `json:"rendered"`
	Duration   time.Duration `json:"duration"`
}

// DocumentType classifies a document by its title/URL keywords.
type DocumentType string

// Known document types. TypeOther is the default for anything the rule
// table does not match.
const (
	TypePresentation   DocumentType = "presentation"
	TypeFinancials     DocumentType = "financials"
	TypeLoanAgreement  DocumentType = "loan-agreement"
	TypeRecoveryUpdate DocumentType = "recovery-update"
	TypeOther          DocumentType = "other"
)

// DocumentRecord is one extracted document reference. ID is the content
// identity: a deterministic hash over the normalized title and URL, used as
// the primary key for seen/new detection.
type DocumentRecord struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	URL       string       `json:"url"`
	Type      DocumentType `json:"type"`
	Country   string       `json:"country,omitempty"`
	Published *time.Time   `json:"published,omitempty"`
}

// CacheEntry is the persisted winner of a previous resolution.
type CacheEntry struct {
	URL      string    `json:"url"`
	Rendered bool      `json:"rendered"`
	StoredAt time.Time `json:"stored_at"`
}

// Expired reports whether the entry is older than ttl at time now.
// A zero ttl never expires.
func (e CacheEntry) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(e.StoredAt) > ttl
}

// Notification is the payload handed to the outbound channel for each new
// document. Delivery (and delivery retries) are the channel's problem.
type Notification struct {
	ScanID     string         `json:"scan_id"`
	Company    string         `json:"company"`
	Document   DocumentRecord `json:"document"`
	DetectedAt time.Time      `json:"detected_at"`
}
