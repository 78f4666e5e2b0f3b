// Package scanner orchestrates a full company scan: resolve, fetch, extract,
// diff against the seen set, then notify and archive.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mintoswatch/docwatch/internal/archive"
	"github.com/mintoswatch/docwatch/internal/docwatch"
	"github.com/mintoswatch/docwatch/internal/metrics"
	"github.com/mintoswatch/docwatch/internal/resolver"
)

// PageResolver walks candidates until one yields an accepted page.
type PageResolver interface {
	Resolve(ctx context.Context, identifier string, candidates []docwatch.Candidate) (docwatch.FetchResult, error)
}

// DocumentExtractor parses a fetched page into document records.
type DocumentExtractor interface {
	Extract(company, pageURL string, body []byte) ([]docwatch.DocumentRecord, error)
}

// UpdateSource supplies additional per-company records from a side channel,
// such as the recovery-updates feed. Sources are auxiliary: their failures
// never fail a scan.
type UpdateSource interface {
	Updates(ctx context.Context, company string) ([]docwatch.DocumentRecord, error)
}

// Options configures a Scanner.
type Options struct {
	Resolver      docwatch.Resolver
	Pages         PageResolver
	Extractor     DocumentExtractor
	Updates       UpdateSource
	Seen          docwatch.SeenStore
	Notifier      docwatch.Notifier
	Archive       docwatch.Archive
	Hasher        docwatch.Hasher
	Clock         docwatch.Clock
	IDs           docwatch.IDGenerator
	Logger        *zap.Logger
	ArchivePrefix string
	Concurrency   int
	CompanyBudget time.Duration
}

// Result summarizes one company scan.
type Result struct {
	ScanID    string                    `json:"scan_id"`
	Company   string                    `json:"company"`
	URL       string                    `json:"url,omitempty"`
	Rendered  bool                      `json:"rendered"`
	Documents []docwatch.DocumentRecord `json:"documents"`
	New       []docwatch.DocumentRecord `json:"new"`
}

// Scanner runs scans for one company or a whole roster.
type Scanner struct {
	resolver      docwatch.Resolver
	pages         PageResolver
	extractor     DocumentExtractor
	updates       UpdateSource
	seen          docwatch.SeenStore
	notifier      docwatch.Notifier
	archive       docwatch.Archive
	hasher        docwatch.Hasher
	clock         docwatch.Clock
	ids           docwatch.IDGenerator
	logger        *zap.Logger
	archivePrefix string
	concurrency   int
	companyBudget time.Duration
}

// New creates a Scanner from options.
func New(opts Options) (*Scanner, error) {
	switch {
	case opts.Resolver == nil:
		return nil, fmt.Errorf("scanner: resolver is required")
	case opts.Pages == nil:
		return nil, fmt.Errorf("scanner: page resolver is required")
	case opts.Extractor == nil:
		return nil, fmt.Errorf("scanner: extractor is required")
	case opts.Seen == nil:
		return nil, fmt.Errorf("scanner: seen store is required")
	case opts.Hasher == nil:
		return nil, fmt.Errorf("scanner: hasher is required")
	case opts.Clock == nil:
		return nil, fmt.Errorf("scanner: clock is required")
	case opts.IDs == nil:
		return nil, fmt.Errorf("scanner: id generator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ar := opts.Archive
	if ar == nil {
		ar = archive.NewNoop()
	}
	prefix := opts.ArchivePrefix
	if prefix == "" {
		prefix = "pages"
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	metrics.Init()
	return &Scanner{
		resolver:      opts.Resolver,
		pages:         opts.Pages,
		extractor:     opts.Extractor,
		updates:       opts.Updates,
		seen:          opts.Seen,
		notifier:      opts.Notifier,
		archive:       ar,
		hasher:        opts.Hasher,
		clock:         opts.Clock,
		ids:           opts.IDs,
		logger:        logger,
		archivePrefix: prefix,
		concurrency:   concurrency,
		companyBudget: opts.CompanyBudget,
	}, nil
}

// Scan runs one company through the full pipeline. An unresolvable company
// with scan history yields an empty result; without history it yields
// docwatch.ErrResolutionFailed.
func (s *Scanner) Scan(ctx context.Context, identifier string) (Result, error) {
	company := resolver.NormalizeIdentifier(identifier)
	if company == "" {
		return Result{}, fmt.Errorf("scan %q: %w", identifier, docwatch.ErrInvalidIdentifier)
	}

	scanID, err := s.ids.NewID()
	if err != nil {
		return Result{}, fmt.Errorf("scan %s: %w", company, err)
	}

	// One unresponsive company must not stall a whole batch.
	if s.companyBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.companyBudget)
		defer cancel()
	}

	metrics.IncActiveScans()
	defer metrics.DecActiveScans()
	start := s.clock.Now()
	logger := s.logger.With(zap.String("scan_id", scanID), zap.String("company", company))

	result, err := s.scan(ctx, logger, scanID, company)
	status := "ok"
	switch {
	case err != nil:
		status = "failed"
	case result.URL == "":
		status = "unresolved"
	}
	metrics.ObserveScan(status, s.clock.Now().Sub(start))
	return result, err
}

func (s *Scanner) scan(ctx context.Context, logger *zap.Logger, scanID, company string) (Result, error) {
	result := Result{ScanID: scanID, Company: company}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("scan %s: %w", company, err)
	}

	candidates, err := s.resolver.Candidates(ctx, company)
	if err != nil {
		return Result{}, fmt.Errorf("scan %s: %w", company, err)
	}

	page, err := s.pages.Resolve(ctx, company, candidates)
	if err != nil {
		if !errors.Is(err, docwatch.ErrUnresolved) {
			return Result{}, fmt.Errorf("scan %s: %w", company, err)
		}
		history, histErr := s.seen.HasHistory(ctx, company)
		if histErr != nil {
			return Result{}, fmt.Errorf("scan %s: check history: %w", company, histErr)
		}
		if history {
			// A known company whose page is temporarily missing is not an
			// incident; report an empty delta and let the next scan retry.
			logger.Warn("company page unresolved, history present")
			return result, nil
		}
		return Result{}, fmt.Errorf("scan %s: %w", company, docwatch.ErrResolutionFailed)
	}

	docs, err := s.extractor.Extract(company, page.URL, page.Body)
	if err != nil {
		return Result{}, fmt.Errorf("scan %s: extract: %w", company, err)
	}

	if s.updates != nil {
		recs, updErr := s.updates.Updates(ctx, company)
		if updErr != nil {
			logger.Warn("recovery updates fetch failed", zap.Error(updErr))
		} else {
			docs = append(docs, recs...)
		}
	}

	if err := s.seen.Touch(ctx, company); err != nil {
		return Result{}, fmt.Errorf("scan %s: touch history: %w", company, err)
	}

	newDocs, err := s.diffAndRecord(ctx, logger, scanID, company, docs)
	if err != nil {
		return Result{}, err
	}

	s.archivePage(ctx, logger, company, page)

	result.URL = page.URL
	result.Rendered = page.Rendered
	result.Documents = docs
	result.New = newDocs
	metrics.ObserveNewDocuments(company, len(newDocs))
	logger.Info("scan complete",
		zap.String("url", page.URL),
		zap.Bool("rendered", page.Rendered),
		zap.Int("documents", len(docs)),
		zap.Int("new", len(newDocs)))
	return result, nil
}

// diffAndRecord persists each unseen document before emitting it, so a crash
// between the two produces a missed notification, never a duplicate.
func (s *Scanner) diffAndRecord(ctx context.Context, logger *zap.Logger, scanID, company string, docs []docwatch.DocumentRecord) ([]docwatch.DocumentRecord, error) {
	var newDocs []docwatch.DocumentRecord
	for _, doc := range docs {
		seen, err := s.seen.Has(ctx, company, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("scan %s: check seen: %w", company, err)
		}
		if seen {
			continue
		}
		if err := s.seen.Add(ctx, company, doc); err != nil {
			return nil, fmt.Errorf("scan %s: record document: %w", company, err)
		}
		newDocs = append(newDocs, doc)

		if s.notifier == nil {
			continue
		}
		notification := docwatch.Notification{
			ScanID:     scanID,
			Company:    company,
			Document:   doc,
			DetectedAt: s.clock.Now(),
		}
		if err := s.notifier.Publish(ctx, notification); err != nil {
			logger.Warn("notification failed",
				zap.String("document_id", doc.ID),
				zap.Error(err))
		}
	}
	return newDocs, nil
}

func (s *Scanner) archivePage(ctx context.Context, logger *zap.Logger, company string, page docwatch.FetchResult) {
	digest, err := s.hasher.Hash(page.Body)
	if err != nil {
		logger.Warn("page digest failed", zap.Error(err))
		return
	}
	objectName := archive.ObjectName(s.archivePrefix, s.clock.Now(), company, digest)
	if err := s.archive.Save(ctx, objectName, page.Body); err != nil {
		logger.Warn("archive failed", zap.String("object", objectName), zap.Error(err))
	}
}

// ScanAll scans a roster concurrently. Individual company failures are
// logged and collected; only context cancellation aborts the batch.
func (s *Scanner) ScanAll(ctx context.Context, companies []string) ([]Result, error) {
	results := make([]Result, len(companies))
	failures := make([]error, len(companies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, company := range companies {
		g.Go(func() error {
			res, err := s.Scan(gctx, company)
			if err != nil {
				// A dead batch context aborts everything; a company that
				// blew its own budget is just a failure like any other.
				if gctx.Err() != nil {
					return err
				}
				s.logger.Warn("company scan failed", zap.String("company", company), zap.Error(err))
				failures[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(companies))
	for i := range results {
		if failures[i] == nil {
			out = append(out, results[i])
		}
	}
	return out, nil
}
