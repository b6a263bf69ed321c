// Package chi exposes the gateway's HTTP surface.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/datamancy/searchgate/internal/domain"
	"github.com/datamancy/searchgate/internal/version"
)

// SearchService is the use case surface the transport depends on.
type SearchService interface {
	Search(ctx context.Context, req *domain.Request) (*domain.Response, error)
	Collections(ctx context.Context) ([]string, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	search        SearchService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		logger: logger,
	}
	// Order matters: field-level validation before the generic
	// validation sentinel, timeouts before backend unavailability.
	s.errorHandlers = []errorHandler{
		emptyQueryHandler,
		validationHandler,
		timeoutHandler,
		serviceHandler(domain.ErrVectorStoreUnavailable,
			http.StatusBadGateway, "External service unavailable", "vector-store"),
		serviceHandler(domain.ErrDatabaseUnavailable,
			http.StatusInternalServerError, "Database service error", "database"),
	}
	return s
}

// RegisterRoutes mounts all gateway endpoints on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/collections", s.handleCollections)
	r.Post("/search", s.handleSearch)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "searchgate",
		"version":   version.Version,
		"endpoints": []string{"/health", "/collections", "/search"},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCollections handles GET /collections. Listing failure is a
// plain 500: the endpoint is best-effort metadata, not the search path.
func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	names, err := s.search.Collections(r.Context())
	if err != nil {
		s.logger.Error("collection listing failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to list collections",
		})
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"collections": names})
}

// handleSearch handles POST /search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req domain.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	resp, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if resp.Results == nil {
		resp.Results = []domain.Result{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDomainError walks the handler chain; unmatched errors become an
// opaque 500 so backend details never leak to clients.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}

	s.logger.Error("unhandled search error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "Internal server error",
	})
}

func emptyQueryHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrEmptyQuery) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": "Query cannot be empty",
	})
	return true
}

func validationHandler(w http.ResponseWriter, err error) bool {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "Validation failed",
			"field":  ve.Field,
			"reason": ve.Reason,
		})
		return true
	}
	if errors.Is(err, domain.ErrValidation) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Validation failed",
		})
		return true
	}
	return false
}

func timeoutHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrTimeout) {
		return false
	}
	writeJSON(w, http.StatusGatewayTimeout, map[string]string{
		"error": "Search operation timed out",
	})
	return true
}

// serviceHandler maps a backend sentinel to a status and service label.
func serviceHandler(sentinel error, status int, msg, service string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeJSON(w, status, map[string]string{
			"error":   msg,
			"service": service,
		})
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
