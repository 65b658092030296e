package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// failingStore returns err from every operation.
type failingStore struct {
	err error
}

func (s failingStore) Get(context.Context, string) ([]byte, error) { return nil, s.err }
func (s failingStore) Set(context.Context, string, []byte, time.Duration) error { return s.err }
func (s failingStore) Ping(context.Context) error { return s.err }

func TestNewManager(t *testing.T) {
	store := NewMemoryStore()

	manager := NewManager(store)
	if manager == nil {
		t.Fatal("NewManager returned nil")
	}
	if manager.Store() != store {
		t.Error("Manager store not set correctly")
	}
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil store")
		}
	}()
	NewManager(nil)
}

func TestManager_Identity(t *testing.T) {
	store := NewMemoryStore()
	manager := NewManager(store)
	ctx := context.Background()

	rec := &IdentityRecord{Username: "Notch", ID: "069a79f444e94726a5befca90e38aaf5"}
	if err := manager.SetIdentity(ctx, rec); err != nil {
		t.Fatalf("SetIdentity failed: %v", err)
	}

	// Lookups are case-insensitive on the name.
	for _, name := range []string{"Notch", "notch", "NOTCH"} {
		got, err := manager.GetIdentity(ctx, name)
		if err != nil {
			t.Fatalf("GetIdentity(%q) failed: %v", name, err)
		}
		if got.ID != rec.ID || got.Username != rec.Username {
			t.Errorf("GetIdentity(%q) = %+v, want %+v", name, got, rec)
		}
	}

	ttl, ok := store.TTL("notch")
	if !ok {
		t.Fatal("identity record not stored under lower-cased name")
	}
	if ttl <= IdentityTTL-time.Second || ttl > IdentityTTL {
		t.Errorf("identity TTL = %v, want ~%v", ttl, IdentityTTL)
	}
}

func TestManager_Snapshot(t *testing.T) {
	store := NewMemoryStore()
	manager := NewManager(store)
	ctx := context.Background()

	rec := NewSnapshotRecord(time.Now(), json.RawMessage(`{"displayname":"Notch"}`))
	if err := manager.SetSnapshot(ctx, "069A79F4-44E9-4726-A5BE-FCA90E38AAF5", rec); err != nil {
		t.Fatalf("SetSnapshot failed: %v", err)
	}

	got, err := manager.GetSnapshot(ctx, "069a79f444e94726a5befca90e38aaf5")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if got.FetchedAt != rec.FetchedAt {
		t.Errorf("FetchedAt = %d, want %d", got.FetchedAt, rec.FetchedAt)
	}
	if string(got.Player) != string(rec.Player) {
		t.Errorf("Player = %s, want %s", got.Player, rec.Player)
	}

	ttl, ok := store.TTL("069a79f444e94726a5befca90e38aaf5")
	if !ok {
		t.Fatal("snapshot not stored under normalized id")
	}
	if ttl <= SnapshotTTL-time.Second || ttl > SnapshotTTL {
		t.Errorf("snapshot TTL = %v, want ~%v", ttl, SnapshotTTL)
	}
}

func TestManager_Miss(t *testing.T) {
	manager := NewManager(NewMemoryStore())
	ctx := context.Background()

	if _, err := manager.GetIdentity(ctx, "nobody"); err != ErrCacheMiss {
		t.Errorf("GetIdentity: expected ErrCacheMiss, got %v", err)
	}
	if _, err := manager.GetSnapshot(ctx, "069a79f444e94726a5befca90e38aaf5"); err != ErrCacheMiss {
		t.Errorf("GetSnapshot: expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_RecordsExpireIndependently(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.SetClock(func() time.Time { return now })
	manager := NewManager(store)
	ctx := context.Background()

	id := "069a79f444e94726a5befca90e38aaf5"
	if err := manager.SetIdentity(ctx, &IdentityRecord{Username: "Notch", ID: id}); err != nil {
		t.Fatalf("SetIdentity failed: %v", err)
	}
	if err := manager.SetSnapshot(ctx, id, NewSnapshotRecord(now, json.RawMessage(`{}`))); err != nil {
		t.Fatalf("SetSnapshot failed: %v", err)
	}

	now = now.Add(SnapshotTTL)
	if _, err := manager.GetSnapshot(ctx, id); err != ErrCacheMiss {
		t.Errorf("snapshot should have expired, got %v", err)
	}
	if _, err := manager.GetIdentity(ctx, "notch"); err != nil {
		t.Errorf("identity should outlive the snapshot, got %v", err)
	}
}

func TestManager_WithPrefix(t *testing.T) {
	store := NewMemoryStore()
	manager := NewManager(store, WithPrefix("hc:"))
	ctx := context.Background()

	if err := manager.SetIdentity(ctx, &IdentityRecord{Username: "Notch", ID: "abc"}); err != nil {
		t.Fatalf("SetIdentity failed: %v", err)
	}
	if _, ok := store.TTL("hc:notch"); !ok {
		t.Error("expected identity under prefixed key")
	}
}

func TestManager_InvalidEntry(t *testing.T) {
	store := NewMemoryStore()
	manager := NewManager(store)
	ctx := context.Background()

	_ = store.Set(ctx, "notch", []byte("not json"), time.Minute)
	_ = store.Set(ctx, "steve", []byte(`{"username":"Steve"}`), time.Minute)

	if _, err := manager.GetIdentity(ctx, "notch"); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry for corrupt record, got %v", err)
	}
	if _, err := manager.GetIdentity(ctx, "steve"); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry for record without id, got %v", err)
	}
}

func TestManager_StoreErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	manager := NewManager(failingStore{err: storeErr})
	ctx := context.Background()

	if _, err := manager.GetSnapshot(ctx, "abc"); !errors.Is(err, storeErr) {
		t.Errorf("GetSnapshot: expected store error, got %v", err)
	}
	if err := manager.SetSnapshot(ctx, "abc", NewSnapshotRecord(time.Now(), nil)); !errors.Is(err, storeErr) {
		t.Errorf("SetSnapshot: expected store error, got %v", err)
	}
}

func TestManager_SetValidation(t *testing.T) {
	manager := NewManager(NewMemoryStore())
	ctx := context.Background()

	if err := manager.SetIdentity(ctx, nil); err == nil {
		t.Error("SetIdentity with nil record should return error")
	}
	if err := manager.SetIdentity(ctx, &IdentityRecord{Username: "Notch"}); err == nil {
		t.Error("SetIdentity without id should return error")
	}
	if err := manager.SetSnapshot(ctx, "abc", nil); err == nil {
		t.Error("SetSnapshot with nil record should return error")
	}
}
