package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Manager reads and writes the typed cache records on top of a Store.
type Manager struct {
	store  Store
	prefix string
}

// Option configures a Manager.
type Option func(*Manager)

// WithPrefix prepends prefix to every key the Manager uses.
func WithPrefix(prefix string) Option {
	return func(m *Manager) {
		m.prefix = prefix
	}
}

// NewManager creates a new cache manager on top of store.
func NewManager(store Store, opts ...Option) *Manager {
	if store == nil {
		panic("cache store cannot be nil")
	}
	m := &Manager{store: store}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// GetIdentity returns the IdentityRecord for name.
// Returns ErrCacheMiss if no record exists.
func (m *Manager) GetIdentity(ctx context.Context, name string) (*IdentityRecord, error) {
	var rec IdentityRecord
	if err := m.get(ctx, recordIdentity, m.prefix+IdentityKey(name), &rec); err != nil {
		return nil, err
	}
	if rec.ID == "" {
		CacheErrors.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("%w: identity record without id", ErrInvalidEntry)
	}
	return &rec, nil
}

// SetIdentity stores rec under its lower-cased username for IdentityTTL.
func (m *Manager) SetIdentity(ctx context.Context, rec *IdentityRecord) error {
	if rec == nil {
		return fmt.Errorf("identity record cannot be nil")
	}
	if rec.Username == "" || rec.ID == "" {
		return fmt.Errorf("identity record requires username and id")
	}
	return m.set(ctx, recordIdentity, m.prefix+IdentityKey(rec.Username), rec, IdentityTTL)
}

// GetSnapshot returns the SnapshotRecord for id. id may be in any textual
// UUID form. Returns ErrCacheMiss if no record exists.
func (m *Manager) GetSnapshot(ctx context.Context, id string) (*SnapshotRecord, error) {
	var rec SnapshotRecord
	if err := m.get(ctx, recordSnapshot, m.prefix+SnapshotKey(id), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SetSnapshot stores rec under the normalized id for SnapshotTTL.
func (m *Manager) SetSnapshot(ctx context.Context, id string, rec *SnapshotRecord) error {
	if rec == nil {
		return fmt.Errorf("snapshot record cannot be nil")
	}
	return m.set(ctx, recordSnapshot, m.prefix+SnapshotKey(id), rec, SnapshotTTL)
}

func (m *Manager) get(ctx context.Context, record, key string, dst any) error {
	data, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			CacheMisses.WithLabelValues(record).Inc()
			return ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return err
	}

	if err := json.Unmarshal(data, dst); err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	CacheHits.WithLabelValues(record).Inc()
	return nil
}

func (m *Manager) set(ctx context.Context, record, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		CacheErrors.WithLabelValues("encode").Inc()
		return fmt.Errorf("marshal %s record: %w", record, err)
	}

	if err := m.store.Set(ctx, key, data, ttl); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return err
	}

	CacheWrittenBytes.WithLabelValues(record).Add(float64(len(data)))
	return nil
}
