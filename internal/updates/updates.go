// Package updates polls the marketplace API for per-company recovery
// updates, a second discovery channel next to the document pages.
package updates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

// feed is the recovery-updates API response: items grouped by year, newest
// first, each carrying dated update entries.
type feed struct {
	Items []yearBlock `json:"items"`
}

type yearBlock struct {
	Year  int          `json:"year"`
	Items []updateItem `json:"items"`
}

type updateItem struct {
	Date        string `json:"date"`
	Status      string `json:"status"`
	Substatus   string `json:"substatus"`
	Description string `json:"description"`
}

// Client fetches recovery updates for companies that have a numeric lender
// ID in the alias table. Companies without one simply have no feed.
type Client struct {
	fetcher   docwatch.Fetcher
	hasher    docwatch.Hasher
	retry     docwatch.RetryPolicy
	apiBase   string
	lenderIDs map[string]int
	logger    *zap.Logger
}

// New creates a Client.
func New(fetcher docwatch.Fetcher, hasher docwatch.Hasher, apiBase string, lenderIDs map[string]int, logger *zap.Logger) (*Client, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("updates: fetcher is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("updates: hasher is required")
	}
	if apiBase == "" {
		return nil, fmt.Errorf("updates: api base is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		fetcher:   fetcher,
		hasher:    hasher,
		retry:     docwatch.NewExponentialRetryPolicy(),
		apiBase:   strings.TrimSuffix(apiBase, "/"),
		lenderIDs: lenderIDs,
		logger:    logger,
	}, nil
}

// Updates fetches and flattens the recovery-updates feed for a company.
// A company with no lender ID, or whose feed returns 404/410, yields an
// empty result without error.
func (c *Client) Updates(ctx context.Context, company string) ([]docwatch.DocumentRecord, error) {
	lenderID, ok := c.lenderIDs[company]
	if !ok {
		return nil, nil
	}
	feedURL := fmt.Sprintf("%s/lender-companies/%d/recovery-updates", c.apiBase, lenderID)

	res, err := c.fetchWithRetry(ctx, feedURL)
	if err != nil {
		var statusErr *docwatch.StatusError
		if errors.As(err, &statusErr) && statusErr.Gone() {
			c.logger.Debug("no recovery feed", zap.String("company", company))
			return nil, nil
		}
		return nil, fmt.Errorf("fetch recovery updates for %s: %w", company, err)
	}

	var f feed
	if err := json.Unmarshal(res.Body, &f); err != nil {
		return nil, fmt.Errorf("decode recovery updates for %s: %w", company, err)
	}
	return c.toRecords(company, feedURL, f)
}

func (c *Client) fetchWithRetry(ctx context.Context, url string) (docwatch.FetchResult, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		res, err := c.fetcher.Fetch(ctx, url)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !c.retry.ShouldRetry(err, attempt+1) {
			return docwatch.FetchResult{}, lastErr
		}
		timer := time.NewTimer(c.retry.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return docwatch.FetchResult{}, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) toRecords(company, feedURL string, f feed) ([]docwatch.DocumentRecord, error) {
	var out []docwatch.DocumentRecord
	seen := make(map[string]struct{})
	for _, year := range f.Items {
		for _, item := range year.Items {
			title := strings.TrimSpace(item.Description)
			if title == "" {
				title = fmt.Sprintf("Recovery update %s", item.Date)
			}
			id, err := docwatch.Identity(c.hasher, title, feedURL)
			if err != nil {
				c.logger.Warn("update identity failed", zap.String("company", company), zap.Error(err))
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			rec := docwatch.DocumentRecord{
				ID:    id,
				Title: title,
				URL:   feedURL,
				Type:  docwatch.TypeRecoveryUpdate,
			}
			if ts, err := time.Parse("2006-01-02", item.Date); err == nil {
				ts = ts.UTC()
				rec.Published = &ts
			}
			out = append(out, rec)
		}
	}
	return out, nil
}
