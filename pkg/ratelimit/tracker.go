package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/hypixel-cache/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	hypixelQuotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hypixel_quota_remaining",
		Help: "Requests remaining in the current Hypixel API key window",
	})

	hypixelRateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hypixel_rate_limit_blocks_total",
		Help: "Total number of upstream requests refused locally because the quota window was exhausted",
	})
)

// Tracker records the upstream quota and refuses requests while it is
// exhausted. It never delays a request.
type Tracker struct {
	store  cache.Store
	key    string
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithKeyPrefix prepends prefix to StateKey, matching cache.WithPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(t *Tracker) {
		t.key = prefix + StateKey
	}
}

// NewTracker creates a new rate limit tracker on top of store.
func NewTracker(store cache.Store, logger zerolog.Logger, opts ...Option) *Tracker {
	if store == nil {
		panic("cache store cannot be nil")
	}
	t := &Tracker{
		store:  store,
		key:    StateKey,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Key returns the store key holding the quota state.
func (t *Tracker) Key() string {
	return t.key
}

// GetState returns the recorded quota window, or nil if none is recorded.
// The store expires the state once its window resets.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	data, err := t.store.Get(ctx, t.key)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rate limit state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse rate limit state: %w", err)
	}
	return &state, nil
}

// Update parses the quota headers of an upstream response and records them.
// Responses without RateLimit-Remaining are ignored.
func (t *Tracker) Update(ctx context.Context, headers http.Header) error {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	resetStr := headers.Get(HeaderReset)
	if resetStr == "" {
		return fmt.Errorf("%s header missing", HeaderReset)
	}
	resetSeconds, err := strconv.Atoi(resetStr)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderReset, err)
	}

	var limit int
	if limitStr := headers.Get(HeaderLimit); limitStr != "" {
		if limit, err = strconv.Atoi(limitStr); err != nil {
			return fmt.Errorf("parse %s header: %w", HeaderLimit, err)
		}
	}

	now := t.now()
	state := &State{
		Limit:     limit,
		Remaining: remain,
		ResetAt:   now.Add(time.Duration(resetSeconds) * time.Second),
		UpdatedAt: now,
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal rate limit state: %w", err)
	}

	// The state is only meaningful until the window resets.
	ttl := state.TimeUntilReset(now)
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := t.store.Set(ctx, t.key, data, ttl); err != nil {
		return fmt.Errorf("store rate limit state: %w", err)
	}

	hypixelQuotaRemaining.Set(float64(remain))

	if state.Exhausted(now) {
		t.logger.Warn().
			Int("remaining", remain).
			Time("reset_at", state.ResetAt).
			Msg("Hypixel quota exhausted - upstream requests refused until reset")
	} else {
		t.logger.Debug().
			Int("remaining", remain).
			Int("limit", limit).
			Time("reset_at", state.ResetAt).
			Msg("Hypixel quota state updated")
	}

	return nil
}

// Allow reports whether an upstream request may be sent now.
// Returns false only while the recorded window is exhausted.
func (t *Tracker) Allow(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return true, err
	}
	if state == nil {
		return true, nil
	}

	now := t.now()
	if state.Exhausted(now) {
		t.logger.Warn().
			Int("remaining", state.Remaining).
			Dur("reset_in", state.TimeUntilReset(now)).
			Msg("Hypixel quota exhausted - refusing request")

		hypixelRateLimitBlocksTotal.Inc()
		return false, nil
	}

	return true, nil
}
