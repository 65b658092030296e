// Package cache stores the two record kinds the lookup pipeline depends on.
//
// An IdentityRecord maps a lower-cased player name to the player's UUID and
// canonical name. It lives for IdentityTTL. A SnapshotRecord holds the raw
// player payload returned by the Hypixel API together with the instant it was
// fetched. It lives for SnapshotTTL and is keyed by the normalized UUID
// (dashes removed, lower-case hex).
//
// The two record kinds are written and expired independently. Neither one is
// consulted to decide whether the other is still valid: the Store is the only
// authority for expiry.
//
// # Basic Usage
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(cache.NewRedisStore(rdb))
//
//	snapshot, err := manager.GetSnapshot(ctx, "069a79f4-44e9-4726-a5be-fca90e38aaf5")
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from upstream, then manager.SetSnapshot(...)
//	}
//
// # Stores
//
// RedisStore is the production backend. MemoryStore keeps entries in process
// and is used by tests and single-instance local runs.
//
// # Metrics
//
//   - hypixel_cache_hits_total{record} - Cache hits by record kind
//   - hypixel_cache_misses_total{record} - Cache misses by record kind
//   - hypixel_cache_written_bytes_total{record} - Bytes written by record kind
//   - hypixel_cache_errors_total{operation} - Store operation errors
package cache
