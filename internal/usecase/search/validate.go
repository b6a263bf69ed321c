package search

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/datamancy/searchgate/internal/domain"
)

// Validation bounds. Collection names feed backend index and table
// identifiers, so they are restricted to a safe character class before
// any query builder sees them.
const (
	maxQueryLen       = 1000
	maxCollections    = 50
	maxCollectionName = 128
	minLimit          = 1
	maxLimit          = 1000
)

var collectionNameRe = regexp.MustCompile(`^[A-Za-z0-9_*-]+$`)

// Validate checks a request against the input contract. Rules run in
// order and the first violation wins. Pure: no backend is touched.
func Validate(req *domain.Request) error {
	if utf8.RuneCountInString(req.Query) > maxQueryLen {
		return domain.NewValidationError("query",
			fmt.Sprintf("query exceeds %d characters", maxQueryLen))
	}
	for _, r := range req.Query {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return domain.NewValidationError("query", "query contains control characters")
		}
	}
	if strings.TrimSpace(req.Query) == "" {
		return domain.ErrEmptyQuery
	}
	if len(req.Collections) > maxCollections {
		return domain.NewValidationError("collections",
			fmt.Sprintf("at most %d collections per request", maxCollections))
	}
	for _, name := range req.Collections {
		// Charset first: the class is ASCII-only, so names that reach the
		// length check have one byte per character and slicing is safe.
		if !collectionNameRe.MatchString(name) {
			return domain.NewValidationError("collections",
				fmt.Sprintf("invalid collection name %q", name))
		}
		if len(name) > maxCollectionName {
			return domain.NewValidationError("collections",
				fmt.Sprintf("collection name %q exceeds %d characters", name[:maxCollectionName]+"...", maxCollectionName))
		}
	}
	switch req.Mode {
	case domain.ModeVector, domain.ModeBM25, domain.ModeHybrid:
	default:
		return domain.NewValidationError("mode",
			fmt.Sprintf("mode must be vector, bm25 or hybrid, got %q", req.Mode))
	}
	if req.Limit < minLimit || req.Limit > maxLimit {
		return domain.NewValidationError("limit",
			fmt.Sprintf("limit must be between %d and %d, got %d", minLimit, maxLimit, req.Limit))
	}
	switch req.Audience {
	case domain.AudienceHuman, domain.AudienceAgent, domain.AudienceBoth:
	default:
		return domain.NewValidationError("audience",
			fmt.Sprintf("audience must be human, agent or both, got %q", req.Audience))
	}
	return nil
}
