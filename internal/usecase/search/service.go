package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/datamancy/searchgate/internal/domain"
	"github.com/datamancy/searchgate/internal/metrics"
)

// Service orchestrates a search request: validation, collection
// resolution, backend fan-out, rank fusion, classification and audience
// filtering. Stateless; safe for concurrent use.
type Service struct {
	vector  VectorBackend
	lexical LexicalBackend
	embed   Embedder
	logger  *zap.Logger
}

// New creates a search service.
func New(vector VectorBackend, lexical LexicalBackend, embed Embedder, logger *zap.Logger) *Service {
	return &Service{vector: vector, lexical: lexical, embed: embed, logger: logger}
}

// Search is the public entry point. The request is validated before any
// backend is touched; defaults are applied first.
func (s *Service) Search(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	req.ApplyDefaults()

	if err := Validate(req); err != nil {
		metrics.SearchesTotal.WithLabelValues(string(req.Mode), "invalid").Inc()
		return nil, err
	}

	start := time.Now()
	resp, err := s.search(ctx, req)
	metrics.SearchDuration.WithLabelValues(string(req.Mode)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(string(req.Mode), "error").Inc()
		s.logger.Error("search failed",
			zap.String("query", req.Query),
			zap.Strings("collections", req.Collections),
			zap.String("mode", string(req.Mode)),
			zap.Error(err))
		return nil, err
	}
	metrics.SearchesTotal.WithLabelValues(string(req.Mode), "success").Inc()
	return resp, nil
}

func (s *Service) search(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	collections := s.resolveCollections(ctx, req.Collections)

	var (
		results []domain.Result
		err     error
	)
	switch req.Mode {
	case domain.ModeVector:
		results, err = s.searchVector(ctx, req.Query, collections, req.Limit)
	case domain.ModeBM25:
		results, err = s.searchFullText(ctx, req.Query, collections, req.Limit)
	case domain.ModeHybrid:
		results, err = s.searchHybrid(ctx, req.Query, collections, req.Limit)
	default:
		// Unreachable after validation; kept as a guard against new modes.
		err = fmt.Errorf("%w: %q", domain.ErrUnsupportedMode, req.Mode)
	}
	if err != nil {
		return nil, err
	}

	for i := range results {
		r := &results[i]
		r.ContentType, r.Capabilities = Classify(r.Source, r.URL, r.Metadata)
	}

	// Audience filtering happens after ranking and fusion; filtering
	// earlier would distort the rank positions RRF depends on.
	filtered := results[:0]
	for _, r := range results {
		if matchesAudience(r, req.Audience) {
			filtered = append(filtered, r)
		}
	}

	return &domain.Response{Results: filtered, Total: len(filtered), Mode: req.Mode}, nil
}

// resolveCollections expands the wildcard selector into the live list of
// collections known to the vector backend. Listing is best-effort
// metadata: on failure the search degrades to zero collections instead
// of failing the request.
func (s *Service) resolveCollections(ctx context.Context, requested []string) []string {
	if len(requested) != 1 || requested[0] != "*" {
		return requested
	}
	names, err := s.vector.ListCollections(ctx)
	if err != nil {
		s.logger.Warn("collection listing failed, searching zero collections", zap.Error(err))
		return nil
	}
	return names
}

// searchVector embeds the query once and fans the shared embedding out
// across all collections.
func (s *Service) searchVector(ctx context.Context, query string, collections []string, limit int) ([]domain.Result, error) {
	if len(collections) == 0 {
		return nil, nil
	}

	vec, err := s.embed.Embed(ctx, query)
	if err != nil {
		// Query-wide: the embedding is shared, so its failure aborts the
		// whole vector branch, not a single collection.
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return fanOut(ctx, "vector", collections, limit, s.logger,
		func(ctx context.Context, collection string) ([]domain.Result, error) {
			return s.vector.SearchCollection(ctx, collection, vec, limit)
		})
}

func (s *Service) searchFullText(ctx context.Context, query string, collections []string, limit int) ([]domain.Result, error) {
	return fanOut(ctx, "fulltext", collections, limit, s.logger,
		func(ctx context.Context, collection string) ([]domain.Result, error) {
			return s.lexical.SearchCollection(ctx, collection, query, limit)
		})
}

// searchHybrid runs both branches concurrently with half the requested
// limit each, waits for both, then fuses with the full limit. A failed
// branch degrades to the other branch's results; only when both fail
// does the request fail.
func (s *Service) searchHybrid(ctx context.Context, query string, collections []string, limit int) ([]domain.Result, error) {
	subLimit := limit / 2
	if subLimit < 1 {
		subLimit = 1
	}

	var (
		vecResults, ftResults []domain.Result
		vecErr, ftErr         error
	)

	var g errgroup.Group
	g.Go(func() error {
		vecResults, vecErr = s.searchVector(ctx, query, collections, subLimit)
		return nil
	})
	g.Go(func() error {
		ftResults, ftErr = s.searchFullText(ctx, query, collections, subLimit)
		return nil
	})
	_ = g.Wait()

	if vecErr != nil && ftErr != nil {
		return nil, vecErr
	}
	if vecErr != nil {
		s.logger.Warn("vector branch failed, degrading to full-text only", zap.Error(vecErr))
		vecResults = nil
	}
	if ftErr != nil {
		s.logger.Warn("full-text branch failed, degrading to vector only", zap.Error(ftErr))
		ftResults = nil
	}

	return fuseRRF(vecResults, ftResults, limit), nil
}

// Collections lists the collections known to the vector backend, for the
// /collections endpoint.
func (s *Service) Collections(ctx context.Context) ([]string, error) {
	names, err := s.vector.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}
