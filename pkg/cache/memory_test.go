package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("value"), time.Minute))

	got, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_Miss(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("value"), 5*time.Minute))

	now = now.Add(5*time.Minute - time.Second)
	_, err := store.Get(ctx, "key")
	require.NoError(t, err, "entry should be live just before expiry")

	ttl, ok := store.TTL("key")
	assert.True(t, ok)
	assert.Equal(t, time.Second, ttl)

	now = now.Add(time.Second)
	_, err = store.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, store.Len(), "expired entry should be dropped on access")
}

func TestMemoryStore_NoExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.SetClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("value"), 0))
	now = now.Add(24 * 365 * time.Hour)

	_, err := store.Get(ctx, "key")
	assert.NoError(t, err)
	ttl, ok := store.TTL("key")
	assert.True(t, ok)
	assert.Zero(t, ttl)
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("value")
	require.NoError(t, store.Set(ctx, "key", value, time.Minute))
	value[0] = 'X'

	got, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", string(got))

	got[0] = 'Y'
	again, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", string(again))
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, errors.Is(store.Set(ctx, "key", nil, time.Minute), context.Canceled))
	_, err := store.Get(ctx, "key")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Ping(ctx), context.Canceled)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "shared", []byte("v"), time.Minute)
			_, _ = store.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}
