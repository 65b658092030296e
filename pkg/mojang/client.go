// Package mojang resolves Minecraft player names to UUIDs through the
// Mojang profile API.
package mojang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/hypixel-cache/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the default Mojang API base URL.
	DefaultBaseURL = "https://api.mojang.com"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is the user agent string sent with API requests.
	DefaultUserAgent = "hypixel-cache/dev"
)

var mojangLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mojang_lookups_total",
	Help: "Total Mojang profile lookups by result",
}, []string{"result"}) // "found", "not_found", "api_error", "network_error"

var mojangLookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "mojang_lookup_duration_seconds",
	Help:    "Mojang profile lookup duration in seconds",
	Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
})

// Config holds client configuration.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// Client is a Mojang API client for name lookups.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger
}

// NewClient creates a new Mojang API client. A nil config uses defaults.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
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
		baseURL:    baseURL,
		httpClient: httpClient,
		userAgent:  userAgent,
		logger:     logging.NewLogger(logging.ComponentMojang),
	}
}

// Resolve looks up the profile for name. It performs exactly one request.
//
// Returns ErrProfileNotFound for unknown names and demo accounts, and an
// *APIError when Mojang reports a structured error. Any other failure is a
// plain wrapped error.
func (c *Client) Resolve(ctx context.Context, name string) (*Profile, error) {
	start := time.Now()
	defer func() {
		mojangLookupDuration.Observe(time.Since(start).Seconds())
	}()

	endpoint := fmt.Sprintf("%s/users/profiles/minecraft/%s", c.baseURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		mojangLookupsTotal.WithLabelValues("network_error").Inc()
		return nil, fmt.Errorf("mojang request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNoContent {
		c.logger.Debug().Str("name", name).Msg("Mojang profile not found")
		mojangLookupsTotal.WithLabelValues("not_found").Inc()
		return nil, ErrProfileNotFound
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		mojangLookupsTotal.WithLabelValues("network_error").Inc()
		return nil, fmt.Errorf("read mojang response: %w", err)
	}

	var data ProfileResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &data); err != nil && resp.StatusCode == http.StatusOK {
			mojangLookupsTotal.WithLabelValues("api_error").Inc()
			return nil, fmt.Errorf("decode mojang response: %w", err)
		}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound, data.Demo:
		c.logger.Debug().
			Str("name", name).
			Int("status", resp.StatusCode).
			Bool("demo", data.Demo).
			Msg("Mojang profile not found")
		mojangLookupsTotal.WithLabelValues("not_found").Inc()
		return nil, ErrProfileNotFound

	case data.Error != "":
		mojangLookupsTotal.WithLabelValues("api_error").Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       data.Error,
			Message:    data.ErrorMessage,
		}

	case resp.StatusCode != http.StatusOK:
		mojangLookupsTotal.WithLabelValues("api_error").Inc()
		message := data.ErrorMessage
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       fmt.Sprintf("HTTP %d", resp.StatusCode),
			Message:    message,
		}
	}

	if data.ID == "" || data.Name == "" {
		mojangLookupsTotal.WithLabelValues("api_error").Inc()
		return nil, fmt.Errorf("mojang response missing id or name")
	}

	mojangLookupsTotal.WithLabelValues("found").Inc()
	c.logger.Debug().
		Str("name", name).
		Str("uuid", data.ID).
		Msg("Mojang profile resolved")

	return &Profile{ID: data.ID, Name: data.Name}, nil
}
