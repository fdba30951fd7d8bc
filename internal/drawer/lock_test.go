package drawer

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeRedisStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: map[string]string{}}
}

func (f *fakeRedisStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.values[key]; exists {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeRedisStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key], nil
}

func (f *fakeRedisStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeRedisStore) LockKey(parts ...string) string {
	key := "qt:lock"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func TestRedisLockerAcquireRelease(t *testing.T) {
	store := newFakeRedisStore()
	locker, err := NewRedisLocker(store, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLocker error: %v", err)
	}
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, activeLockKey)
	if err != nil || !ok {
		t.Fatalf("first acquire should succeed, ok=%v err=%v", ok, err)
	}

	ok, err = locker.Acquire(ctx, activeLockKey)
	if err != nil {
		t.Fatalf("second acquire error: %v", err)
	}
	if ok {
		t.Fatal("second acquire should fail while held")
	}

	if err := locker.Release(ctx, activeLockKey); err != nil {
		t.Fatalf("release error: %v", err)
	}

	ok, err = locker.Acquire(ctx, activeLockKey)
	if err != nil || !ok {
		t.Fatalf("acquire after release should succeed, ok=%v err=%v", ok, err)
	}
}

func TestRedisLockerReleaseRespectsOwner(t *testing.T) {
	store := newFakeRedisStore()
	first, _ := NewRedisLocker(store, time.Minute)
	second, _ := NewRedisLocker(store, time.Minute)
	ctx := context.Background()

	if ok, _ := first.Acquire(ctx, "d1"); !ok {
		t.Fatal("first locker should acquire")
	}

	// a locker that never owned the key must not free it
	if err := second.Release(ctx, "d1"); err != nil {
		t.Fatalf("foreign release error: %v", err)
	}
	if ok, _ := second.Acquire(ctx, "d1"); ok {
		t.Fatal("lock should still be held by the first locker")
	}
}

func TestMutexLocker(t *testing.T) {
	locker := NewMutexLocker()
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "d1")
	if err != nil || !ok {
		t.Fatalf("acquire failed: ok=%v err=%v", ok, err)
	}

	released := make(chan struct{})
	go func() {
		// blocks until the holder releases
		_, _ = locker.Acquire(ctx, "d1")
		close(released)
	}()

	select {
	case <-released:
		t.Fatal("second acquire should block while held")
	case <-time.After(20 * time.Millisecond):
	}

	if err := locker.Release(ctx, "d1"); err != nil {
		t.Fatalf("release error: %v", err)
	}

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("second acquire should proceed after release")
	}
}
