package search

import (
	"context"

	"github.com/datamancy/searchgate/internal/domain"
)

// VectorBackend runs similarity queries against one collection of the
// vector index and lists the collections it knows about.
type VectorBackend interface {
	SearchCollection(ctx context.Context, collection string, vector []float32, limit int) ([]domain.Result, error)
	ListCollections(ctx context.Context) ([]string, error)
}

// LexicalBackend runs ranked keyword queries against one collection of
// the full-text store.
type LexicalBackend interface {
	SearchCollection(ctx context.Context, collection, query string, limit int) ([]domain.Result, error)
}

// Embedder vectorizes query text. The returned vector is computed once
// per request and shared across all collections.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
