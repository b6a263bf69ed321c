package searchgate

import (
	"fmt"
	"net/http"

	"github.com/datamancy/searchgate/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuery             = domain.ErrEmptyQuery
	ErrValidation             = domain.ErrValidation
	ErrVectorStoreUnavailable = domain.ErrVectorStoreUnavailable
	ErrDatabaseUnavailable    = domain.ErrDatabaseUnavailable
	ErrTimeout                = domain.ErrTimeout
)

// APIError is a non-2xx gateway response. Field and Reason are set for
// validation failures, Service for backend unavailability.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Service string `json:"service,omitempty"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("searchgate: %d %s: field %q: %s", e.Status, e.Message, e.Field, e.Reason)
	}
	if e.Service != "" {
		return fmt.Sprintf("searchgate: %d %s: service %s", e.Status, e.Message, e.Service)
	}
	return fmt.Sprintf("searchgate: %d %s", e.Status, e.Message)
}

// Unwrap maps the response back onto the domain sentinels so callers
// can use errors.Is across the HTTP boundary.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest && e.Message == "Query cannot be empty":
		return domain.ErrEmptyQuery
	case e.Status == http.StatusBadRequest:
		return domain.ErrValidation
	case e.Status == http.StatusGatewayTimeout:
		return domain.ErrTimeout
	case e.Status == http.StatusBadGateway:
		return domain.ErrVectorStoreUnavailable
	case e.Service == "database":
		return domain.ErrDatabaseUnavailable
	}
	return nil
}
