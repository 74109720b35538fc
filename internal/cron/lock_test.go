package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryLockStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryLockStore() *memoryLockStore {
	return &memoryLockStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryLockStore) Get(_ context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryLockStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memoryLockStore) LockKey(name string) string { return "backoffice:lock:" + name }

func TestRedisLockIsExclusive(t *testing.T) {
	store := newMemoryLockStore()
	first, err := NewRedisLock(store, "cron", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	second, _ := NewRedisLock(store, "cron", time.Minute)
	ctx := context.Background()

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("expected first acquire, got %v %v", ok, err)
	}
	if store.ttls[first.Key()] != time.Minute {
		t.Fatalf("expected ttl to be applied, got %s", store.ttls[first.Key()])
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatal("expected second acquire to fail while held")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release by non-holder: %v", err)
	}
	if _, held := store.values[first.Key()]; !held {
		t.Fatal("non-holder release must not drop the lock")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("expected acquire after release")
	}
}

func TestRedisLockLeavesForeignHolderAlone(t *testing.T) {
	store := newMemoryLockStore()
	lock, _ := NewRedisLock(store, "cron", 0)
	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("expected acquire")
	}
	// lease expired and another worker took over
	store.values[lock.Key()] = "someone-else"
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values[lock.Key()] != "someone-else" {
		t.Fatal("foreign holder was removed")
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "cron", time.Minute); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewRedisLock(newMemoryLockStore(), "", time.Minute); err == nil {
		t.Fatal("expected error for empty name")
	}
}
