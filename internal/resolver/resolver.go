// Package resolver builds ordered candidate URL lists for company identifiers.
package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

var separatorRun = regexp.MustCompile(`[\s_\-]+`)

// Options configures a Resolver.
type Options struct {
	BaseURL         string
	PathRoots       []string
	DocumentSubpage string
	Aliases         AliasTable
	Cache           docwatch.URLCache
	CacheTTL        time.Duration
	Clock           docwatch.Clock
	Logger          *zap.Logger
}

// Resolver produces deterministic, ordered URL candidates for a company.
// Cached winners come first, then direct slug variants under each path root,
// then known-good fallback URLs, then variants derived from alias identifiers.
type Resolver struct {
	baseURL         string
	pathRoots       []string
	documentSubpage string
	aliases         AliasTable
	cache           docwatch.URLCache
	cacheTTL        time.Duration
	clock           docwatch.Clock
	logger          *zap.Logger
}

// New creates a Resolver from options.
func New(opts Options) (*Resolver, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("resolver: base URL is required")
	}
	if len(opts.PathRoots) == 0 {
		return nil, fmt.Errorf("resolver: at least one path root is required")
	}
	if opts.Clock == nil {
		return nil, fmt.Errorf("resolver: clock is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	aliases := opts.Aliases
	if aliases == nil {
		aliases = AliasTable{}
	}
	return &Resolver{
		baseURL:         strings.TrimSuffix(opts.BaseURL, "/"),
		pathRoots:       opts.PathRoots,
		documentSubpage: strings.Trim(opts.DocumentSubpage, "/"),
		aliases:         aliases,
		cache:           opts.Cache,
		cacheTTL:        opts.CacheTTL,
		clock:           opts.Clock,
		logger:          logger,
	}, nil
}

// NormalizeIdentifier canonicalizes a company identifier: lowercased,
// trimmed, with runs of whitespace, underscores, and hyphens collapsed to a
// single hyphen. The result is the key used for caches and seen sets.
func NormalizeIdentifier(identifier string) string {
	s := strings.ToLower(strings.TrimSpace(identifier))
	s = separatorRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Candidates implements docwatch.Resolver.
func (r *Resolver) Candidates(ctx context.Context, identifier string) ([]docwatch.Candidate, error) {
	norm := NormalizeIdentifier(identifier)
	if norm == "" {
		return nil, fmt.Errorf("resolve %q: %w", identifier, docwatch.ErrInvalidIdentifier)
	}

	var out []docwatch.Candidate
	seen := make(map[string]struct{})

	add := func(rawURL string, source docwatch.CandidateSource) {
		key, err := docwatch.NormalizeURL(rawURL)
		if err != nil {
			key = rawURL
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, docwatch.Candidate{URL: rawURL, Source: source})
	}

	if r.cache != nil {
		entry, ok, err := r.cache.Get(ctx, norm)
		switch {
		case err != nil:
			r.logger.Warn("url cache lookup failed", zap.String("company", norm), zap.Error(err))
		case ok && !entry.Expired(r.clock.Now(), r.cacheTTL):
			add(entry.URL, docwatch.SourceCached)
		}
	}

	for _, variant := range slugVariants(norm) {
		r.addVariant(add, variant, docwatch.SourceDirect)
	}

	entry := r.aliases[norm]
	for _, direct := range entry.DirectURLs {
		add(direct, docwatch.SourceFallbackURL)
	}
	for _, alt := range entry.AlternativeIDs {
		altNorm := NormalizeIdentifier(alt)
		if altNorm == "" || altNorm == norm {
			continue
		}
		for _, variant := range slugVariants(altNorm) {
			r.addVariant(add, variant, docwatch.SourceAlias)
		}
	}

	return out, nil
}

func (r *Resolver) addVariant(add func(string, docwatch.CandidateSource), variant string, source docwatch.CandidateSource) {
	for _, root := range r.pathRoots {
		page := r.baseURL + "/" + strings.Trim(root, "/") + "/" + variant
		add(page, source)
		if r.documentSubpage != "" {
			add(page+"/"+r.documentSubpage, source)
		}
	}
}

// slugVariants returns the URL slug spellings tried for one identifier: the
// hyphenated form and, when it differs, the squashed form with separators
// removed.
func slugVariants(norm string) []string {
	variants := []string{norm}
	squashed := strings.ReplaceAll(norm, "-", "")
	if squashed != norm && squashed != "" {
		variants = append(variants, squashed)
	}
	return variants
}
