// Package jwks retrieves JSON Web Key Sets and validates bearer tokens
// against them.
package jwks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"

	"github.com/roster/roster/internal/metrics"
)

// ErrKeySetFetch covers every failure to obtain a usable key set: network
// errors, non-success HTTP statuses, and malformed response bodies.
var ErrKeySetFetch = errors.New("key set fetch failed")

// maxKeySetBody caps the JWKS response body size.
const maxKeySetBody = 1 << 20

// KeySetCache stores raw JWKS JSON between validations.
// *cache.Cache satisfies this interface.
type KeySetCache interface {
	GetKeySet(ctx context.Context, jwksURL string) ([]byte, error)
	SetKeySet(ctx context.Context, jwksURL string, raw []byte, ttl time.Duration) error
}

// Client fetches key sets over HTTP with an optional bounded-TTL cache.
// With no cache (or a zero TTL) every call performs a network fetch,
// matching the one-fetch-per-validation contract.
type Client struct {
	httpClient *http.Client
	cache      KeySetCache
	cacheTTL   time.Duration
	logger     *slog.Logger
	metrics    metrics.Recorder
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for fetches.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithCache enables caching of fetched key sets for the given TTL.
// A nil cache or non-positive TTL leaves caching disabled.
func WithCache(cache KeySetCache, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) ClientOption {
	return func(c *Client) {
		c.metrics = recorder
	}
}

// NewClient creates a key set client.
func NewClient(logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		metrics:    metrics.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// KeySet returns the key set published at jwksURL.
// All failure modes are reported as ErrKeySetFetch-wrapped errors.
func (c *Client) KeySet(ctx context.Context, jwksURL string) (jwkset.JWKSMarshal, error) {
	if c.cache != nil && c.cacheTTL > 0 {
		if raw, err := c.cache.GetKeySet(ctx, jwksURL); err == nil {
			set, err := parseKeySet(raw)
			if err == nil {
				c.metrics.IncKeySetFetch("cache")
				return set, nil
			}
			c.logger.Warn("discarding unparseable cached key set", slog.String("url", jwksURL))
		}
	}

	raw, err := c.fetch(ctx, jwksURL)
	if err != nil {
		return jwkset.JWKSMarshal{}, err
	}

	set, err := parseKeySet(raw)
	if err != nil {
		return jwkset.JWKSMarshal{}, err
	}
	c.metrics.IncKeySetFetch("network")

	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.SetKeySet(ctx, jwksURL, raw, c.cacheTTL); err != nil {
			// Cache failures degrade to fetch-per-request, never to a rejection.
			c.logger.Warn("failed to cache key set",
				slog.String("url", jwksURL),
				slog.String("error", err.Error()),
			)
		}
	}

	return set, nil
}

func (c *Client) fetch(ctx context.Context, jwksURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrKeySetFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeySetFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrKeySetFetch, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySetBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrKeySetFetch, err)
	}

	return raw, nil
}

func parseKeySet(raw []byte) (jwkset.JWKSMarshal, error) {
	var set jwkset.JWKSMarshal
	if err := json.Unmarshal(raw, &set); err != nil {
		return jwkset.JWKSMarshal{}, fmt.Errorf("%w: decode body: %v", ErrKeySetFetch, err)
	}
	return set, nil
}
