// Package hypixel fetches player data from the Hypixel public API.
package hypixel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/hypixel-cache/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for Hypixel API requests.
var (
	hypixelRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hypixel_requests_total",
		Help: "Total Hypixel API requests by status",
	}, []string{"status"})

	hypixelRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hypixel_request_duration_seconds",
		Help:    "Hypixel API request duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	hypixelErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hypixel_errors_total",
		Help: "Total Hypixel API errors by class",
	}, []string{"class"})
)

const (
	// DefaultBaseURL is the Hypixel public API base URL.
	DefaultBaseURL = "https://api.hypixel.net"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 10 * time.Second
)

// RateLimiter gates upstream requests on the API key quota.
// *ratelimit.Tracker implements it.
type RateLimiter interface {
	Allow(ctx context.Context) (bool, error)
	Update(ctx context.Context, headers http.Header) error
}

// Config holds the client configuration.
type Config struct {
	// APIKey is the Hypixel API key (REQUIRED).
	APIKey string

	// BaseURL overrides DefaultBaseURL.
	BaseURL string

	// UserAgent header sent with each request.
	UserAgent string

	// Timeout of the default HTTP client. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient replaces the default HTTP client.
	HTTPClient *http.Client

	// RateLimiter is optional. When set, requests are refused locally
	// while the quota window is exhausted.
	RateLimiter RateLimiter
}

// Client is the Hypixel API client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	userAgent   string
	rateLimiter RateLimiter
	logger      zerolog.Logger
}

// New creates a new Hypixel client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		userAgent:   cfg.UserAgent,
		rateLimiter: cfg.RateLimiter,
		logger:      logging.NewLogger(logging.ComponentHypixel),
	}, nil
}

// Player fetches the player with the given UUID. It performs at most one
// request and never retries.
//
// Returns ErrRateLimited on 429 or while the local quota is exhausted, and an
// *APIError for any other non-success status or an unsuccessful body. A
// successful response may still carry no player; see PlayerResponse.HasPlayer.
func (c *Client) Player(ctx context.Context, uuid string) (*PlayerResponse, error) {
	if c.rateLimiter != nil {
		allowed, err := c.rateLimiter.Allow(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Rate limit check failed")
		}
		if !allowed {
			hypixelRequestsTotal.WithLabelValues("blocked").Inc()
			hypixelErrorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			return nil, ErrRateLimited
		}
	}

	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("uuid", uuid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/player?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	hypixelRequestDuration.Observe(time.Since(startTime).Seconds())
	if err != nil {
		c.logger.Error().Err(err).Str("uuid", uuid).Msg("HTTP request failed")
		hypixelRequestsTotal.WithLabelValues("network_error").Inc()
		hypixelErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, fmt.Errorf("hypixel request: %w", err)
	}
	defer resp.Body.Close()

	hypixelRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Update(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		hypixelErrorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
		c.logger.Warn().Str("uuid", uuid).Msg("Hypixel API rate limited")
		return nil, ErrRateLimited
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		hypixelErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, fmt.Errorf("read hypixel response: %w", err)
	}

	var data PlayerResponse
	decodeErr := json.Unmarshal(body, &data)

	if resp.StatusCode != http.StatusOK || !data.Success {
		if resp.StatusCode == http.StatusOK && decodeErr != nil {
			return nil, fmt.Errorf("decode hypixel response: %w", decodeErr)
		}

		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Cause:      data.Cause,
		}
		if resp.StatusCode == http.StatusOK {
			apiErr.ErrorClass = ErrorClassUnsuccessful
		}
		hypixelErrorsTotal.WithLabelValues(string(apiErr.ErrorClass)).Inc()

		c.logger.Warn().
			Str("uuid", uuid).
			Int("status", resp.StatusCode).
			Str("error_class", string(apiErr.ErrorClass)).
			Str("cause", data.Cause).
			Msg("Hypixel API request error")

		return nil, apiErr
	}

	c.logger.Debug().
		Str("uuid", uuid).
		Bool("has_player", data.HasPlayer()).
		Msg("Hypixel player fetched")

	return &data, nil
}
