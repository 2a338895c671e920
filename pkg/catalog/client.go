// Package catalog provides the HTTP client for the classifieds catalog:
// paginated list queries for car and plate ads, plus the favorites
// add/remove endpoints. The client is session-scoped (one user) and adds
// short-TTL response caching, structured logging, and metrics around the
// raw endpoints.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avtoline/catalog-client/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for catalog client operations.
var (
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total catalog requests by endpoint and status",
	}, []string{"endpoint", "status"})

	catalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Catalog request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	catalogErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_errors_total",
		Help: "Total catalog errors by class",
	}, []string{"class"})
)

// Client is the catalog API client for one user session.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userID     int64
	cache      *cache.Manager
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the catalog backend, e.g. "https://catalog.example.com".
	BaseURL string

	// UserID is the session user, required by the favorites endpoints.
	UserID int64

	// Redis enables the short-TTL list response cache when set.
	Redis *redis.Client

	// CacheTTL bounds how stale a cached list may be (default 30s).
	CacheTTL time.Duration

	// Timeout for a single request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string, userID int64) Config {
	return Config{
		BaseURL:  baseURL,
		UserID:   userID,
		CacheTTL: 30 * time.Second,
		Timeout:  15 * time.Second,
	}
}

// New creates a new catalog client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if cfg.UserID <= 0 {
		return nil, fmt.Errorf("user ID is required (got %d)", cfg.UserID)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}

	logger := log.With().Str("component", "catalog-client").Logger()

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:  cfg.BaseURL,
		userID:   cfg.UserID,
		cache:    cacheManager,
		cacheTTL: cfg.CacheTTL,
		logger:   logger,
	}, nil
}

// Query performs one catalog list request and returns the decoded page.
// Params are expected to come from query.Build; the client does not
// re-validate them. With a cache configured, a fresh cached page is
// returned without touching the network.
func (c *Client) Query(ctx context.Context, kind AdKind, params url.Values) (*QueryResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown ad kind %q", kind)
	}

	endpoint := kind.Endpoint()
	startTime := time.Now()
	defer func() {
		catalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	cacheKey := cache.Key{Endpoint: endpoint, Params: params}
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		if err != nil && err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		if entry != nil {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Dur("ttl", entry.TTL()).
				Msg("Serving list from cache")
			catalogRequestsTotal.WithLabelValues(endpoint, "cache").Inc()
			return decodeQueryResult(kind, entry.Data)
		}
	}

	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	result, err := decodeQueryResult(kind, body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, cache.NewEntry(body, c.cacheTTL)); err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to cache list response")
		}
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("items", len(result.Items)).
		Int("total", result.Total).
		Msg("Catalog query complete")

	return result, nil
}

// get executes one GET request and returns the response body.
// Failures are classified and wrapped in *Error; there is no retry.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Catalog request failed")
		catalogErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		catalogRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &Error{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	catalogRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		errClass := classifyError(resp, nil)
		catalogErrorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Catalog request error")

		return nil, &Error{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		catalogErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &Error{ErrorClass: ErrorClassNetwork, Message: "read response body", Err: err}
	}

	return body, nil
}

// decodeQueryResult parses a list response body into a QueryResult.
func decodeQueryResult(kind AdKind, data []byte) (*QueryResult, error) {
	var wire struct {
		Items []wireAd `json:"items"`
		Total int      `json:"total"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	items := make([]AdSummary, 0, len(wire.Items))
	for _, w := range wire.Items {
		items = append(items, w.toSummary(kind))
	}

	return &QueryResult{Items: items, Total: wire.Total}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
