// Package api exposes the HTTP interface for the docwatch service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mintoswatch/docwatch/internal/docwatch"
	"github.com/mintoswatch/docwatch/internal/metrics"
	"github.com/mintoswatch/docwatch/internal/resolver"
	"github.com/mintoswatch/docwatch/internal/scanner"
)

// ScanRunner runs scans on demand.
type ScanRunner interface {
	Scan(ctx context.Context, identifier string) (scanner.Result, error)
	ScanAll(ctx context.Context, companies []string) ([]scanner.Result, error)
}

// Server wires HTTP handlers to the scanner and stores.
type Server struct {
	router    chi.Router
	scans     ScanRunner
	seen      docwatch.SeenStore
	logger    *zap.Logger
	companies []string
}

// NewServer constructs a Server with middleware and routes. companies is the
// default roster for batch scans.
func NewServer(scans ScanRunner, seen docwatch.SeenStore, companies []string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		scans:     scans,
		seen:      seen,
		logger:    logger,
		companies: companies,
	}
	metrics.Init()

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(120 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/scans", s.scanAll)
		r.Post("/scans/{identifier}", s.scanOne)
		r.Get("/companies/{identifier}/documents", s.listDocuments)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ready"})
}

type scanAllRequest struct {
	Companies []string `json:"companies"`
}

func (s *Server) scanAll(w http.ResponseWriter, r *http.Request) {
	companies := s.companies
	if r.Body != nil && r.ContentLength != 0 {
		var req scanAllRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, s.logger, http.StatusBadRequest, "invalid JSON")
			return
		}
		if len(req.Companies) > 0 {
			companies = req.Companies
		}
	}
	if len(companies) == 0 {
		writeError(w, s.logger, http.StatusBadRequest, "no companies configured or provided")
		return
	}

	results, err := s.scans.ScanAll(r.Context(), companies)
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) scanOne(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	result, err := s.scans.Scan(r.Context(), identifier)
	if err != nil {
		switch {
		case errors.Is(err, docwatch.ErrInvalidIdentifier):
			writeError(w, s.logger, http.StatusBadRequest, "invalid company identifier")
		case errors.Is(err, docwatch.ErrResolutionFailed):
			writeError(w, s.logger, http.StatusNotFound, "company page could not be resolved")
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, s.logger, http.StatusGatewayTimeout, "scan timed out")
		default:
			writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, s.logger, http.StatusOK, result)
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	company := resolver.NormalizeIdentifier(chi.URLParam(r, "identifier"))
	if company == "" {
		writeError(w, s.logger, http.StatusBadRequest, "invalid company identifier")
		return
	}

	history, err := s.seen.HasHistory(r.Context(), company)
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}
	if !history {
		writeError(w, s.logger, http.StatusNotFound, "company has never been scanned")
		return
	}

	docs, err := s.seen.Documents(r.Context(), company)
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []docwatch.DocumentRecord{}
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]any{"company": company, "documents": docs})
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, status int, msg string) {
	writeJSON(w, logger, status, map[string]string{"error": msg})
}
