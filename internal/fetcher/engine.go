// Package fetcher coordinates candidate probing: plain fetches with
// per-candidate retries, heuristic render escalation, and winner caching.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mintoswatch/docwatch/internal/docwatch"
	"github.com/mintoswatch/docwatch/internal/metrics"
)

// Options configures an Engine.
type Options struct {
	Fetcher  docwatch.Fetcher
	Renderer docwatch.Renderer
	Detector docwatch.Detector
	Retry    docwatch.RetryPolicy
	Cache    docwatch.URLCache
	Clock    docwatch.Clock
	Logger   *zap.Logger
}

// Engine walks an ordered candidate list until one candidate yields an
// accepted page. The Renderer is optional; without one, under-delivering
// pages are accepted as-is.
type Engine struct {
	fetcher  docwatch.Fetcher
	renderer docwatch.Renderer
	detector docwatch.Detector
	retry    docwatch.RetryPolicy
	cache    docwatch.URLCache
	clock    docwatch.Clock
	logger   *zap.Logger
}

// NewEngine creates an Engine from options.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("fetcher engine: fetcher is required")
	}
	if opts.Detector == nil {
		return nil, fmt.Errorf("fetcher engine: detector is required")
	}
	if opts.Clock == nil {
		return nil, fmt.Errorf("fetcher engine: clock is required")
	}
	retry := opts.Retry
	if retry == nil {
		retry = docwatch.NewExponentialRetryPolicy()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &Engine{
		fetcher:  opts.Fetcher,
		renderer: opts.Renderer,
		detector: opts.Detector,
		retry:    retry,
		cache:    opts.Cache,
		clock:    opts.Clock,
		logger:   logger,
	}, nil
}

// Resolve tries candidates in order and returns the first accepted page.
// It returns docwatch.ErrUnresolved when every candidate is exhausted.
func (e *Engine) Resolve(ctx context.Context, identifier string, candidates []docwatch.Candidate) (docwatch.FetchResult, error) {
	for _, candidate := range candidates {
		res, ok := e.tryCandidate(ctx, identifier, candidate)
		if !ok {
			if ctx.Err() != nil {
				return docwatch.FetchResult{}, fmt.Errorf("resolve %s: %w", identifier, ctx.Err())
			}
			continue
		}

		res.Identifier = identifier
		e.storeWinner(ctx, identifier, res)
		return res, nil
	}
	return docwatch.FetchResult{}, fmt.Errorf("resolve %s: %w", identifier, docwatch.ErrUnresolved)
}

func (e *Engine) tryCandidate(ctx context.Context, identifier string, candidate docwatch.Candidate) (docwatch.FetchResult, bool) {
	res, err := e.fetchWithRetry(ctx, candidate.URL)
	if err != nil {
		e.logger.Debug("candidate failed",
			zap.String("company", identifier),
			zap.String("url", candidate.URL),
			zap.String("source", string(candidate.Source)),
			zap.Error(err))
		return docwatch.FetchResult{}, false
	}

	if e.renderer != nil && e.detector.NeedsRender(res.Body) {
		rendered, renderErr := e.renderer.Render(ctx, candidate.URL)
		if renderErr != nil {
			metrics.ObserveRender("error")
			e.logger.Warn("render failed, advancing candidate",
				zap.String("company", identifier),
				zap.String("url", candidate.URL),
				zap.Error(renderErr))
			return docwatch.FetchResult{}, false
		}
		metrics.ObserveRender("ok")
		res = rendered
	}

	return res, true
}

func (e *Engine) fetchWithRetry(ctx context.Context, url string) (docwatch.FetchResult, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		res, err := e.fetcher.Fetch(ctx, url)
		metrics.ObserveFetchAttempt("plain", statusOf(res, err))
		if err == nil {
			return res, nil
		}
		lastErr = err

		var statusErr *docwatch.StatusError
		if errors.As(err, &statusErr) && statusErr.Gone() {
			return docwatch.FetchResult{}, err
		}
		if !e.retry.ShouldRetry(err, attempt+1) {
			return docwatch.FetchResult{}, lastErr
		}
		if waitErr := sleep(ctx, e.retry.Backoff(attempt)); waitErr != nil {
			return docwatch.FetchResult{}, waitErr
		}
	}
}

func (e *Engine) storeWinner(ctx context.Context, identifier string, res docwatch.FetchResult) {
	if e.cache == nil {
		return
	}
	entry := docwatch.CacheEntry{
		URL:      res.URL,
		Rendered: res.Rendered,
		StoredAt: e.clock.Now(),
	}
	if err := e.cache.Put(ctx, identifier, entry); err != nil {
		e.logger.Warn("url cache write failed",
			zap.String("company", identifier),
			zap.Error(err))
	}
}

func statusOf(res docwatch.FetchResult, err error) int {
	if err == nil {
		return res.StatusCode
	}
	var statusErr *docwatch.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
