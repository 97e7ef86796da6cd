// Package remote provides an Evaluator that delegates to an evaluation
// service over HTTP. The input payload is posted as-is; the response body is
// the result string.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clara-ai/clara-go/domain/ports"
	"github.com/clara-ai/clara-go/wireformat"
)

// evaluatorConfig holds configuration for the remote Evaluator.
type evaluatorConfig struct {
	client      *http.Client
	timeout     time.Duration
	maxRespSize int64
}

func defaultEvaluatorConfig() evaluatorConfig {
	return evaluatorConfig{
		timeout:     30 * time.Second,
		maxRespSize: 1 << 20, // 1MB
	}
}

// Option configures the remote Evaluator.
type Option func(*evaluatorConfig)

// WithHTTPClient sets the HTTP client to use. This is useful for injecting
// test doubles.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *evaluatorConfig) {
		if c != nil {
			cfg.client = c
		}
	}
}

// WithTimeout sets the request timeout. Default is 30s. Ignored when a
// custom HTTP client is injected.
func WithTimeout(d time.Duration) Option {
	return func(cfg *evaluatorConfig) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithMaxResponseSize limits how many response bytes are read. Default is 1MB.
func WithMaxResponseSize(n int64) Option {
	return func(cfg *evaluatorConfig) {
		if n > 0 {
			cfg.maxRespSize = n
		}
	}
}

// Evaluator posts evaluation payloads to a remote endpoint.
type Evaluator struct {
	endpoint string
	config   evaluatorConfig
}

// New creates a remote Evaluator for the given endpoint URL.
func New(endpoint string, opts ...Option) (*Evaluator, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("remote: endpoint cannot be empty")
	}
	cfg := defaultEvaluatorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.client == nil {
		cfg.client = &http.Client{Timeout: cfg.timeout}
	}
	return &Evaluator{endpoint: endpoint, config: cfg}, nil
}

// Evaluate implements ports.Evaluator. The env token is opaque passthrough
// and is not serialized to the remote service.
func (e *Evaluator) Evaluate(ctx context.Context, _ ports.EnvToken, input string) (*wireformat.OwnedBuffer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, strings.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("remote: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.config.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote: endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.config.maxRespSize))
	if err != nil {
		return nil, fmt.Errorf("remote: failed to read response: %w", err)
	}
	return wireformat.NewOwnedBuffer(body, nil), nil
}
