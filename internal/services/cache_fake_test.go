package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// fakeCache is an in-memory Cache with a manually advanced clock, so expiry
// can be observed without sleeping. It also records deletes and can be told
// to fail them, which is how invalidation-failure behavior is exercised.
type fakeCache struct {
	mu        sync.Mutex
	now       time.Time
	entries   map[string]fakeEntry
	deleted   []string
	deleteErr error
}

type fakeEntry struct {
	data      []byte
	expiresAt time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		now:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		entries: make(map[string]fakeEntry),
	}
}

func (f *fakeCache) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeCache) Contains(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[key]

	return ok && f.now.Before(entry.expiresAt)
}

func (f *fakeCache) DeletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.deleted...)
}

func (f *fakeCache) Get(ctx context.Context, key string, value any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[key]
	if !ok || !f.now.Before(entry.expiresAt) {
		return false, nil
	}

	return true, json.Unmarshal(entry.data, value)
}

func (f *fakeCache) GetOrAdd(ctx context.Context, key string, dest any, ttl time.Duration, factory func(ctx context.Context) (any, error)) error {
	f.mu.Lock()
	entry, ok := f.entries[key]
	live := ok && f.now.Before(entry.expiresAt)
	f.mu.Unlock()

	if live {
		return json.Unmarshal(entry.data, dest)
	}

	value, err := factory(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.entries[key] = fakeEntry{data: data, expiresAt: f.now.Add(ttl)}
	f.mu.Unlock()

	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = fakeEntry{data: data, expiresAt: f.now.Add(ttl)}

	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}

	delete(f.entries, key)
	f.deleted = append(f.deleted, key)

	return nil
}

func (f *fakeCache) Close() error {
	return nil
}
