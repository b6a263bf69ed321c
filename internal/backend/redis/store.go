// Package redis adapts a RediSearch-capable Redis deployment as the
// gateway's vector index backend. Collections map to FT indexes sharing
// a common prefix; documents are hashes carrying the payload fields and
// the embedding blob.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/datamancy/searchgate/internal/domain"
)

const defaultQueryTimeout = 30 * time.Second

// Config holds connection parameters for the vector store.
type Config struct {
	Addrs        []string
	Username     string
	Password     string
	IndexPrefix  string
	QueryTimeout time.Duration
}

// Store is a read-only client to the vector index. Safe for concurrent
// use by multiple in-flight requests.
type Store struct {
	client      rueidis.Client
	indexPrefix string
	timeout     time.Duration
}

// NewStore creates a vector store client via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.IndexPrefix == "" {
		return nil, fmt.Errorf("index prefix is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	return &Store{client: client, indexPrefix: cfg.IndexPrefix, timeout: timeout}, nil
}

// NewStoreForTest wires a store around an existing (mock) client.
func NewStoreForTest(client rueidis.Client, indexPrefix string) *Store {
	return &Store{client: client, indexPrefix: indexPrefix, timeout: defaultQueryTimeout}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() error {
	s.client.Close()
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for vector store: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// wrapErr maps transport errors onto the gateway taxonomy: timeouts are
// distinct from generic vector store failures so callers can tell
// "try again" from "backend broken".
func wrapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, domain.ErrTimeout)
	}
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrVectorStoreUnavailable)
}
