package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mintoswatch/docwatch/internal/docwatch"
	"github.com/mintoswatch/docwatch/internal/scanner"
	storemem "github.com/mintoswatch/docwatch/internal/store/memory"
)

type fakeScans struct {
	results map[string]scanner.Result
	errs    map[string]error
	batches [][]string
}

func (f *fakeScans) Scan(_ context.Context, identifier string) (scanner.Result, error) {
	if err, ok := f.errs[identifier]; ok {
		return scanner.Result{}, err
	}
	res, ok := f.results[identifier]
	if !ok {
		return scanner.Result{}, docwatch.ErrResolutionFailed
	}
	return res, nil
}

func (f *fakeScans) ScanAll(_ context.Context, companies []string) ([]scanner.Result, error) {
	f.batches = append(f.batches, companies)
	var out []scanner.Result
	for _, c := range companies {
		if res, ok := f.results[c]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, scans *fakeScans, seen docwatch.SeenStore, companies []string) *Server {
	t.Helper()
	if scans == nil {
		scans = &fakeScans{}
	}
	if seen == nil {
		seen = storemem.NewSeenStore()
	}
	return NewServer(scans, seen, companies, zap.NewNop())
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil, nil, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.NotEmpty(t, rec.Header().Get("X-Request-ID"), path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestScanOne(t *testing.T) {
	t.Parallel()

	scans := &fakeScans{results: map[string]scanner.Result{
		"wowwo": {ScanID: "scan-1", Company: "wowwo", URL: "https://x/wowwo"},
	}}
	srv := newTestServer(t, scans, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/scans/wowwo", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res scanner.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "scan-1", res.ScanID)
	require.Equal(t, "wowwo", res.Company)
}

func TestScanOneErrorMapping(t *testing.T) {
	t.Parallel()

	scans := &fakeScans{errs: map[string]error{
		"bad":   docwatch.ErrInvalidIdentifier,
		"ghost": docwatch.ErrResolutionFailed,
	}}
	srv := newTestServer(t, scans, nil, nil)

	tests := []struct {
		identifier string
		want       int
	}{
		{"bad", http.StatusBadRequest},
		{"ghost", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/v1/scans/"+tt.identifier, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		require.Equal(t, tt.want, rec.Code, tt.identifier)
	}
}

func TestScanAllUsesConfiguredRoster(t *testing.T) {
	t.Parallel()

	scans := &fakeScans{results: map[string]scanner.Result{
		"wowwo": {ScanID: "scan-1", Company: "wowwo"},
		"iuvo":  {ScanID: "scan-2", Company: "iuvo"},
	}}
	srv := newTestServer(t, scans, nil, []string{"wowwo", "iuvo"})

	req := httptest.NewRequest(http.MethodPost, "/v1/scans", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, [][]string{{"wowwo", "iuvo"}}, scans.batches)
}

func TestScanAllWithRequestBody(t *testing.T) {
	t.Parallel()

	scans := &fakeScans{results: map[string]scanner.Result{
		"iuvo": {ScanID: "scan-1", Company: "iuvo"},
	}}
	srv := newTestServer(t, scans, nil, []string{"wowwo"})

	body := strings.NewReader(`{"companies":["iuvo"]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/scans", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, [][]string{{"iuvo"}}, scans.batches)
}

func TestScanAllRejectsEmptyRoster(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeScans{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/scans", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDocuments(t *testing.T) {
	t.Parallel()

	seen := storemem.NewSeenStore()
	ctx := context.Background()
	require.NoError(t, seen.Add(ctx, "wowwo", docwatch.DocumentRecord{
		ID:    "id-1",
		Title: "Presentation",
		URL:   "https://www.mintos.com/files/id-1.pdf",
		Type:  docwatch.TypePresentation,
	}))
	srv := newTestServer(t, nil, seen, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/companies/Wowwo/documents", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Company   string                    `json:"company"`
		Documents []docwatch.DocumentRecord `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "wowwo", payload.Company)
	require.Len(t, payload.Documents, 1)
	require.Equal(t, "id-1", payload.Documents[0].ID)
}

func TestListDocumentsUnknownCompany(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/companies/ghost/documents", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListDocumentsScannedButEmpty(t *testing.T) {
	t.Parallel()

	seen := storemem.NewSeenStore()
	require.NoError(t, seen.Touch(context.Background(), "wowwo"))
	srv := newTestServer(t, nil, seen, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/companies/wowwo/documents", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"documents":[]`)
}
