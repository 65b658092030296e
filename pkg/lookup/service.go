// Package lookup implements the cache-lookup, fetch and populate pipeline
// behind the proxy's single route.
//
// A request names a player either by UUID or by name. The pipeline first
// tries to answer from cached records:
//
//	uuid:  normalize → snapshot record
//	name:  identity record → normalize its id → snapshot record
//
// If any step misses it resolves and fetches:
//
//	name:  validate → Mojang → write identity record
//	both:  normalize → Hypixel → write snapshot record
//
// Nothing is retried. Upstream rate limiting is returned to the caller as
// ErrRateLimited.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/hypixel-cache/pkg/cache"
	"github.com/Sternrassler/hypixel-cache/pkg/hypixel"
	"github.com/Sternrassler/hypixel-cache/pkg/logging"
	"github.com/Sternrassler/hypixel-cache/pkg/mojang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hypixel_cache_lookups_total",
	Help: "Total lookups by identifier type and outcome",
}, []string{"type", "outcome"}) // outcome: "cached", "fetched" or an error kind

// DefaultWriteTimeout bounds background cache writes.
const DefaultWriteTimeout = 5 * time.Second

// DefaultFetchTimeout bounds a coalesced upstream fetch.
const DefaultFetchTimeout = 10 * time.Second

// Identifier types accepted by Lookup.
const (
	TypeUUID = "uuid"
	TypeName = "name"
)

// Request identifies the player to look up.
type Request struct {
	Type       string
	Identifier string
}

// Result is a successful lookup.
type Result struct {
	// Cached is true when the snapshot was served from the cache.
	Cached bool

	// FetchedAt is when the snapshot was fetched from upstream.
	FetchedAt time.Time

	// Username is the player's display name.
	Username string

	// UUID is the normalized identifier.
	UUID string

	// Player is the upstream payload, verbatim.
	Player json.RawMessage
}

// Cache is the record storage the pipeline reads and populates.
// *cache.Manager implements it.
type Cache interface {
	GetIdentity(ctx context.Context, name string) (*cache.IdentityRecord, error)
	SetIdentity(ctx context.Context, rec *cache.IdentityRecord) error
	GetSnapshot(ctx context.Context, id string) (*cache.SnapshotRecord, error)
	SetSnapshot(ctx context.Context, id string, rec *cache.SnapshotRecord) error
}

// Resolver maps a player name to a profile. *mojang.Client implements it.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*mojang.Profile, error)
}

// Fetcher fetches player data by UUID. *hypixel.Client implements it.
type Fetcher interface {
	Player(ctx context.Context, uuid string) (*hypixel.PlayerResponse, error)
}

// Options tune the pipeline.
type Options struct {
	// AwaitWrites makes snapshot writes complete before Lookup returns.
	// By default they run in the background and failures are only logged.
	AwaitWrites bool

	// Coalesce shares one upstream fetch between concurrent misses for the
	// same UUID.
	Coalesce bool

	// WriteTimeout bounds background snapshot writes. Defaults to
	// DefaultWriteTimeout.
	WriteTimeout time.Duration

	// FetchTimeout bounds a coalesced upstream fetch, which is detached from
	// the context of the caller that started it. Defaults to
	// DefaultFetchTimeout.
	FetchTimeout time.Duration

	// Now replaces time.Now for fetch timestamps.
	Now func() time.Time
}

// Service runs lookups. It is safe for concurrent use.
type Service struct {
	cache    Cache
	resolver Resolver
	fetcher  Fetcher
	opts     Options
	logger   zerolog.Logger

	flight singleflight.Group
	writes sync.WaitGroup
}

// NewService creates a lookup service.
func NewService(c Cache, r Resolver, f Fetcher, opts Options) *Service {
	if c == nil || r == nil || f == nil {
		panic("lookup: cache, resolver and fetcher are required")
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		cache:    c,
		resolver: r,
		fetcher:  f,
		opts:     opts,
		logger:   logging.NewLogger(logging.ComponentLookup),
	}
}

// Wait blocks until all background cache writes have finished.
func (s *Service) Wait() {
	s.writes.Wait()
}

// Lookup answers req from the cache, or resolves and fetches it.
// Every returned error is an *Error.
func (s *Service) Lookup(ctx context.Context, req Request) (*Result, error) {
	res, err := s.findCached(ctx, req)
	if err == nil && res == nil {
		res, err = s.fetch(ctx, req)
	}

	outcome := "fetched"
	switch {
	case err != nil:
		outcome = string(KindOf(err))
	case res.Cached:
		outcome = "cached"
	}
	lookupsTotal.WithLabelValues(metricType(req.Type), outcome).Inc()

	if err != nil {
		return nil, err
	}
	return res, nil
}

// findCached returns (nil, nil) when the request must go to the fetch path.
func (s *Service) findCached(ctx context.Context, req Request) (*Result, error) {
	var id, username string

	switch req.Type {
	case TypeUUID:
		if !ValidUUID(req.Identifier) {
			return nil, ErrInvalidUUID
		}
		id = req.Identifier

	case TypeName:
		rec, err := s.cache.GetIdentity(ctx, req.Identifier)
		if err != nil {
			if isSoftMiss(err) {
				s.logMiss(err, "identity", req.Identifier)
				return nil, nil
			}
			return nil, unexpected("read identity record", err)
		}
		id, username = rec.ID, rec.Username

	default:
		return nil, ErrNotFound
	}

	key := cache.NormalizeID(id)
	snap, err := s.cache.GetSnapshot(ctx, key)
	if err != nil {
		if isSoftMiss(err) {
			s.logMiss(err, "snapshot", key)
			return nil, nil
		}
		return nil, unexpected("read snapshot record", err)
	}
	if !snap.HasPlayer() {
		s.logger.Warn().Str("uuid", key).Msg("Ignoring cached snapshot without player")
		return nil, nil
	}

	s.logger.Debug().
		Str("type", req.Type).
		Str("uuid", key).
		Dur("age", snap.Age()).
		Msg("Snapshot served from cache")

	return newResult(snap, key, username, true), nil
}

func (s *Service) fetch(ctx context.Context, req Request) (*Result, error) {
	var id, username string

	switch req.Type {
	case TypeUUID:
		if !ValidUUID(req.Identifier) {
			return nil, ErrInvalidUUID
		}
		id = req.Identifier

	case TypeName:
		if !ValidUsername(req.Identifier) {
			return nil, ErrInvalidUsername
		}
		profile, err := s.resolve(ctx, req.Identifier)
		if err != nil {
			return nil, err
		}
		id, username = profile.ID, profile.Name

	default:
		return nil, ErrNotFound
	}

	key := cache.NormalizeID(id)

	resp, err := s.fetchPlayer(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, hypixel.ErrRateLimited):
			return nil, ErrRateLimited
		case isAPIError[*hypixel.APIError](err):
			return nil, upstreamError(err)
		default:
			return nil, unexpected("fetch player", err)
		}
	}
	if !resp.HasPlayer() {
		return nil, ErrPlayerNotFound
	}

	snap := cache.NewSnapshotRecord(s.opts.Now(), resp.Player)
	s.storeSnapshot(ctx, key, snap)

	return newResult(snap, key, username, false), nil
}

// resolve maps name to a profile and records the identity mapping.
func (s *Service) resolve(ctx context.Context, name string) (*mojang.Profile, error) {
	profile, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		switch {
		case errors.Is(err, mojang.ErrProfileNotFound):
			return nil, ErrPlayerNotFound
		case isAPIError[*mojang.APIError](err):
			return nil, upstreamError(err)
		default:
			return nil, unexpected("resolve name", err)
		}
	}

	if !strings.EqualFold(profile.Name, name) {
		s.logger.Error().
			Str("requested", name).
			Str("resolved", profile.Name).
			Str("uuid", profile.ID).
			Msg("Resolved name does not match requested name")
		return nil, ErrNameMismatch
	}

	// Written before the upstream fetch so that a later name lookup can
	// find the snapshot this request is about to populate.
	rec := &cache.IdentityRecord{Username: profile.Name, ID: profile.ID}
	if err := s.cache.SetIdentity(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("name", profile.Name).Msg("Failed to cache identity record")
	}

	return profile, nil
}

func (s *Service) fetchPlayer(ctx context.Context, key string) (*hypixel.PlayerResponse, error) {
	if !s.opts.Coalesce {
		return s.fetcher.Player(ctx, key)
	}

	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own context ends.
	ch := s.flight.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.FetchTimeout)
		defer cancel()
		return s.fetcher.Player(fctx, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.Debug().Str("uuid", key).Msg("Upstream fetch shared with concurrent lookup")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*hypixel.PlayerResponse), nil
	}
}

// storeSnapshot writes snap best-effort. The response never depends on it.
func (s *Service) storeSnapshot(ctx context.Context, key string, snap *cache.SnapshotRecord) {
	if s.opts.AwaitWrites {
		s.writeSnapshot(ctx, key, snap)
		return
	}

	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.WriteTimeout)
		defer cancel()
		s.writeSnapshot(wctx, key, snap)
	}()
}

func (s *Service) writeSnapshot(ctx context.Context, key string, snap *cache.SnapshotRecord) {
	if err := s.cache.SetSnapshot(ctx, key, snap); err != nil {
		s.logger.Warn().Err(err).Str("uuid", key).Msg("Failed to cache snapshot record")
		return
	}
	s.logger.Debug().Str("uuid", key).Dur("ttl", cache.SnapshotTTL).Msg("Cached snapshot")
}

func (s *Service) logMiss(err error, record, key string) {
	if errors.Is(err, cache.ErrInvalidEntry) {
		s.logger.Warn().Err(err).Str("record", record).Str("key", key).Msg("Ignoring corrupt cache record")
		return
	}
	s.logger.Debug().Str("record", record).Str("key", key).Msg("Cache miss")
}

// isSoftMiss reports whether a cache read error should fall through to the
// fetch path. Corrupt records are overwritten by the fetch.
func isSoftMiss(err error) bool {
	return errors.Is(err, cache.ErrCacheMiss) || errors.Is(err, cache.ErrInvalidEntry)
}

func isAPIError[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func newResult(snap *cache.SnapshotRecord, key, fallbackName string, cached bool) *Result {
	return &Result{
		Cached:    cached,
		FetchedAt: snap.Time(),
		Username:  displayName(snap.Player, fallbackName),
		UUID:      key,
		Player:    snap.Player,
	}
}

// displayName prefers the payload's displayname over the resolver's casing.
func displayName(player json.RawMessage, fallback string) string {
	var p struct {
		DisplayName string `json:"displayname"`
	}
	if err := json.Unmarshal(player, &p); err == nil && p.DisplayName != "" {
		return p.DisplayName
	}
	return fallback
}

func metricType(t string) string {
	if t == TypeUUID || t == TypeName {
		return t
	}
	return "other"
}
