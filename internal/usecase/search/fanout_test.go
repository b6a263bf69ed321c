package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/datamancy/searchgate/internal/domain"
)

func TestFanOut_MergesSortsTruncates(t *testing.T) {
	byCollection := map[string][]domain.Result{
		"a": {{URL: "a1", Score: 0.9}, {URL: "a2", Score: 0.3}},
		"b": {{URL: "b1", Score: 0.7}},
		"c": {{URL: "c1", Score: 0.5}},
	}

	results, err := fanOut(context.Background(), "vector", []string{"a", "b", "c"}, 3, zap.NewNop(),
		func(_ context.Context, collection string) ([]domain.Result, error) {
			return byCollection[collection], nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	want := []string{"a1", "b1", "c1"}
	for i, url := range want {
		if results[i].URL != url {
			t.Errorf("position %d: expected %s, got %s", i, url, results[i].URL)
		}
	}
}

func TestFanOut_IsolatesSingleFailure(t *testing.T) {
	collections := []string{"c0", "c1", "c2", "c3", "c4"}

	results, err := fanOut(context.Background(), "fulltext", collections, 10, zap.NewNop(),
		func(_ context.Context, collection string) ([]domain.Result, error) {
			if collection == "c2" {
				return nil, errors.New("relation does not exist")
			}
			return []domain.Result{{URL: "https://" + collection, Score: 1, Source: collection}}, nil
		})
	if err != nil {
		t.Fatalf("one failing collection must not fail the adapter: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected union of the 4 healthy collections, got %d results", len(results))
	}
	for _, r := range results {
		if r.Source == "c2" {
			t.Error("failed collection contributed results")
		}
	}
}

func TestFanOut_AllCollectionsFailing(t *testing.T) {
	backendDown := errors.New("connection refused")

	_, err := fanOut(context.Background(), "vector", []string{"a", "b"}, 10, zap.NewNop(),
		func(context.Context, string) ([]domain.Result, error) {
			return nil, backendDown
		})
	if !errors.Is(err, backendDown) {
		t.Fatalf("expected whole-mode failure to surface, got %v", err)
	}
}

func TestFanOut_NoCollections(t *testing.T) {
	results, err := fanOut(context.Background(), "vector", nil, 10, zap.NewNop(),
		func(context.Context, string) ([]domain.Result, error) {
			t.Fatal("query must not run with zero collections")
			return nil, nil
		})
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty result, got %v, %v", results, err)
	}
}

func TestFanOut_RunsConcurrently(t *testing.T) {
	const n = 8
	var mu sync.Mutex
	started := 0
	release := make(chan struct{})

	collections := make([]string, n)
	for i := range collections {
		collections[i] = "c"
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = fanOut(context.Background(), "vector", collections, 10, zap.NewNop(),
			func(context.Context, string) ([]domain.Result, error) {
				mu.Lock()
				started++
				all := started == n
				mu.Unlock()
				if all {
					close(release)
				}
				<-release
				return nil, nil
			})
	}()

	// The join only completes if all n queries were in flight at once.
	<-done
}
