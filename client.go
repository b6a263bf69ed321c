// Package searchgate provides a small HTTP client for the searchgate
// API. It covers the full surface: search, collection listing and the
// health probe.
package searchgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/datamancy/searchgate/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Search request and response types, shared with the server.
type (
	Request  = domain.Request
	Response = domain.Response
	Result   = domain.Result
	Mode     = domain.Mode
	Audience = domain.Audience
)

// Search modes.
const (
	ModeVector = domain.ModeVector
	ModeBM25   = domain.ModeBM25
	ModeHybrid = domain.ModeHybrid
)

// Audience profiles.
const (
	AudienceHuman = domain.AudienceHuman
	AudienceAgent = domain.AudienceAgent
	AudienceBoth  = domain.AudienceBoth
)

// Option configures the Client.
type Option interface {
	apply(*Client)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*Client)

func (f optionFunc) apply(c *Client) { f(c) }

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *Client) {
		c.httpClient = hc
	})
}

// WithTimeout sets the per-request timeout. Default: 30s. Ignored when
// a custom HTTP client is supplied.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *Client) {
		c.httpClient.Timeout = d
	})
}

// Client talks to a searchgate deployment.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a searchgate client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c
}

// Search runs a search request.
func (c *Client) Search(ctx context.Context, req Request) (Response, error) {
	var resp Response
	if err := c.post(ctx, "/search", req, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Collections lists the collections known to the gateway.
func (c *Client) Collections(ctx context.Context) ([]string, error) {
	var resp struct {
		Collections []string `json:"collections"`
	}
	if err := c.get(ctx, "/collections", &resp); err != nil {
		return nil, err
	}
	return resp.Collections, nil
}

// Health probes the gateway. Returns nil when the gateway reports ok.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("searchgate: unexpected health status %q", resp.Status)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("searchgate: build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("searchgate: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("searchgate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("searchgate: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("searchgate: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || json.Unmarshal(body, apiErr) != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
