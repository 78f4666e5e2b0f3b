package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeCache struct {
	entries map[string]docwatch.CacheEntry
	err     error
}

func (c *fakeCache) Get(_ context.Context, identifier string) (docwatch.CacheEntry, bool, error) {
	if c.err != nil {
		return docwatch.CacheEntry{}, false, c.err
	}
	e, ok := c.entries[identifier]
	return e, ok, nil
}

func (c *fakeCache) Put(_ context.Context, identifier string, entry docwatch.CacheEntry) error {
	if c.entries == nil {
		c.entries = map[string]docwatch.CacheEntry{}
	}
	c.entries[identifier] = entry
	return nil
}

func newTestResolver(t *testing.T, opts Options) *Resolver {
	t.Helper()
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.mintos.com"
	}
	if opts.PathRoots == nil {
		opts.PathRoots = []string{"/en/lending-companies/", "/en/loan-originators/"}
	}
	if opts.DocumentSubpage == "" {
		opts.DocumentSubpage = "documents"
	}
	if opts.Clock == nil {
		opts.Clock = fixedClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	}
	r, err := New(opts)
	require.NoError(t, err)
	return r
}

func urls(cands []docwatch.Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.URL)
	}
	return out
}

func TestNormalizeIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Wowwo", want: "wowwo"},
		{in: "  IuteCredit  ", want: "iutecredit"},
		{in: "Capital Service", want: "capital-service"},
		{in: "capital_service", want: "capital-service"},
		{in: "capital--service", want: "capital-service"},
		{in: "-wowwo-", want: "wowwo"},
		{in: "   ", want: ""},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, NormalizeIdentifier(tc.in), "input %q", tc.in)
	}
}

func TestCandidatesInvalidIdentifier(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, Options{})

	_, err := r.Candidates(context.Background(), "   ")
	require.ErrorIs(t, err, docwatch.ErrInvalidIdentifier)
}

func TestCandidatesDirectVariants(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, Options{})

	cands, err := r.Candidates(context.Background(), "Wowwo")
	require.NoError(t, err)

	require.Equal(t, []string{
		"https://www.mintos.com/en/lending-companies/wowwo",
		"https://www.mintos.com/en/lending-companies/wowwo/documents",
		"https://www.mintos.com/en/loan-originators/wowwo",
		"https://www.mintos.com/en/loan-originators/wowwo/documents",
	}, urls(cands))
	for _, c := range cands {
		require.Equal(t, docwatch.SourceDirect, c.Source)
	}
}

func TestCandidatesSquashedVariant(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, Options{PathRoots: []string{"/en/lending-companies/"}})

	cands, err := r.Candidates(context.Background(), "Capital Service")
	require.NoError(t, err)

	require.Equal(t, []string{
		"https://www.mintos.com/en/lending-companies/capital-service",
		"https://www.mintos.com/en/lending-companies/capital-service/documents",
		"https://www.mintos.com/en/lending-companies/capitalservice",
		"https://www.mintos.com/en/lending-companies/capitalservice/documents",
	}, urls(cands))
}

func TestCandidatesCachedFirst(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cache := &fakeCache{entries: map[string]docwatch.CacheEntry{
		"wowwo": {URL: "https://www.mintos.com/en/loan-originators/wowwo", StoredAt: now.Add(-time.Hour)},
	}}
	r := newTestResolver(t, Options{Cache: cache, CacheTTL: 24 * time.Hour, Clock: fixedClock{now: now}})

	cands, err := r.Candidates(context.Background(), "wowwo")
	require.NoError(t, err)

	require.Equal(t, docwatch.SourceCached, cands[0].Source)
	require.Equal(t, "https://www.mintos.com/en/loan-originators/wowwo", cands[0].URL)

	// The cached URL also exists as a direct variant; it must not repeat.
	count := 0
	for _, u := range urls(cands) {
		if u == "https://www.mintos.com/en/loan-originators/wowwo" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestCandidatesExpiredCacheSkipped(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cache := &fakeCache{entries: map[string]docwatch.CacheEntry{
		"wowwo": {URL: "https://elsewhere.example.com/wowwo", StoredAt: now.Add(-48 * time.Hour)},
	}}
	r := newTestResolver(t, Options{Cache: cache, CacheTTL: 24 * time.Hour, Clock: fixedClock{now: now}})

	cands, err := r.Candidates(context.Background(), "wowwo")
	require.NoError(t, err)
	require.NotContains(t, urls(cands), "https://elsewhere.example.com/wowwo")
	require.Equal(t, docwatch.SourceDirect, cands[0].Source)
}

func TestCandidatesCacheErrorIsNonFatal(t *testing.T) {
	t.Parallel()

	cache := &fakeCache{err: errors.New("store offline")}
	r := newTestResolver(t, Options{Cache: cache, CacheTTL: time.Hour})

	cands, err := r.Candidates(context.Background(), "wowwo")
	require.NoError(t, err)
	require.NotEmpty(t, cands)
	require.Equal(t, docwatch.SourceDirect, cands[0].Source)
}

func TestCandidatesFallbackAndAliasOrdering(t *testing.T) {
	t.Parallel()

	aliases := AliasTable{
		"iuvo": {
			AlternativeIDs: []string{"Finko"},
			DirectURLs:     []string{"https://www.mintos.com/en/lending-companies/iuvo-group"},
		},
	}
	r := newTestResolver(t, Options{Aliases: aliases, PathRoots: []string{"/en/lending-companies/"}})

	cands, err := r.Candidates(context.Background(), "iuvo")
	require.NoError(t, err)

	require.Equal(t, []string{
		"https://www.mintos.com/en/lending-companies/iuvo",
		"https://www.mintos.com/en/lending-companies/iuvo/documents",
		"https://www.mintos.com/en/lending-companies/iuvo-group",
		"https://www.mintos.com/en/lending-companies/finko",
		"https://www.mintos.com/en/lending-companies/finko/documents",
	}, urls(cands))
	require.Equal(t, docwatch.SourceFallbackURL, cands[2].Source)
	require.Equal(t, docwatch.SourceAlias, cands[3].Source)
	require.Equal(t, docwatch.SourceAlias, cands[4].Source)
}

func TestCandidatesDeterministic(t *testing.T) {
	t.Parallel()

	aliases := AliasTable{"wowwo": {AlternativeIDs: []string{"wow wo"}}}
	r := newTestResolver(t, Options{Aliases: aliases})

	first, err := r.Candidates(context.Background(), "wowwo")
	require.NoError(t, err)
	second, err := r.Candidates(context.Background(), "wowwo")
	require.NoError(t, err)
	require.Equal(t, first, second)
}
