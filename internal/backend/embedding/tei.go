// Package embedding provides the query embedding providers. Two wire
// protocols are supported: the native text-embeddings-inference API and
// the OpenAI-compatible embeddings API (e.g. LocalAI).
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/datamancy/searchgate/internal/domain"
	"github.com/datamancy/searchgate/internal/metrics"
)

const defaultRequestTimeout = 30 * time.Second

// TEIConfig holds settings for the text-embeddings-inference provider.
type TEIConfig struct {
	BaseURL    string
	Dimensions int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// TEIEmbedder calls a text-embeddings-inference server. The /embed
// endpoint takes a batch of inputs and returns one vector per input.
type TEIEmbedder struct {
	baseURL    string
	dimensions int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTEIEmbedder creates a TEI embedding provider.
func NewTEIEmbedder(cfg *TEIConfig) *TEIEmbedder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &TEIEmbedder{
		baseURL:    cfg.BaseURL,
		dimensions: cfg.Dimensions,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

// teiRequest carries a single input in the string form of the /embed
// contract. The response is a list of vectors either way.
type teiRequest struct {
	Inputs string `json:"inputs"`
}

// Embed converts a query into its embedding vector.
func (e *TEIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(teiRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		metrics.EmbeddingErrorsTotal.WithLabelValues("tei", "transport").Inc()
		return nil, wrapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.EmbeddingErrorsTotal.WithLabelValues("tei", "api_error").Inc()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding API error %d: %s: %w",
			resp.StatusCode, string(detail), domain.ErrVectorStoreUnavailable)
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		metrics.EmbeddingErrorsTotal.WithLabelValues("tei", "decode").Inc()
		return nil, fmt.Errorf("decode response: %v: %w", err, domain.ErrVectorStoreUnavailable)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		metrics.EmbeddingErrorsTotal.WithLabelValues("tei", "empty_response").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrVectorStoreUnavailable)
	}

	vec := vectors[0]
	if e.dimensions > 0 && len(vec) != e.dimensions {
		e.logger.Warn("embedding dimension mismatch",
			zap.Int("expected", e.dimensions),
			zap.Int("got", len(vec)))
	}

	metrics.EmbeddingRequestDuration.WithLabelValues("tei").Observe(time.Since(start).Seconds())
	return vec, nil
}

// wrapTransportErr distinguishes deadline expiry from the provider
// being unreachable.
func wrapTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("embedding request: %w", domain.ErrTimeout)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("embedding request: %w", domain.ErrTimeout)
	}
	return fmt.Errorf("embedding request: %v: %w", err, domain.ErrVectorStoreUnavailable)
}
