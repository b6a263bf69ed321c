package search

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/datamancy/searchgate/internal/domain"
	"github.com/datamancy/searchgate/internal/metrics"
)

// collectionQuery runs one collection's backend query.
type collectionQuery func(ctx context.Context, collection string) ([]domain.Result, error)

// fanOut dispatches one concurrent query per collection and joins all of
// them before aggregating. Each goroutine writes only its own slot, so no
// synchronization on the result lists is needed. A failing collection is
// logged and contributes zero results; it never aborts its siblings. Only
// when every collection fails does the first error surface, since that
// means the whole mode produced nothing.
func fanOut(
	ctx context.Context,
	backend string,
	collections []string,
	limit int,
	logger *zap.Logger,
	query collectionQuery,
) ([]domain.Result, error) {
	if len(collections) == 0 {
		return nil, nil
	}

	slots := make([][]domain.Result, len(collections))
	errs := make([]error, len(collections))

	// Plain group, not WithContext: one collection's failure must not
	// cancel the in-flight queries of its siblings.
	var g errgroup.Group
	for i, name := range collections {
		i, name := i, name
		g.Go(func() error {
			start := time.Now()
			results, err := query(ctx, name)
			metrics.BackendQueryDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
			if err != nil {
				errs[i] = err
				metrics.BackendFailuresTotal.WithLabelValues(backend).Inc()
				logger.Warn("collection query failed",
					zap.String("backend", backend),
					zap.String("collection", name),
					zap.Error(err))
				return nil
			}
			slots[i] = results
			return nil
		})
	}
	_ = g.Wait()

	var merged []domain.Result
	for _, slot := range slots {
		merged = append(merged, slot...)
	}

	if len(merged) == 0 {
		failed := 0
		var first error
		for _, err := range errs {
			if err != nil {
				failed++
				if first == nil {
					first = err
				}
			}
		}
		if failed == len(collections) {
			return nil, first
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}
