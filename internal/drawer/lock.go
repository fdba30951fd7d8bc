package drawer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Second

// activeLockKey serializes operations against whichever drawer is currently
// open. At most one drawer is open process-wide, so one key is enough to
// serialize every read-modify-write on the active session; operations that
// target a drawer by id lock that id instead.
const activeLockKey = "active"

// Locker provides per-drawer mutual exclusion around read-modify-write
// sequences, for deployments where the database isolation level alone does
// not serialize concurrent writers on the same drawer row.
type Locker interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// redisStore defines the redis operations used by RedisLocker.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(parts ...string) string
}

// RedisLocker implements Locker using Redis SETNX + TTL with owner-checked
// release.
type RedisLocker struct {
	client redisStore
	ttl    time.Duration

	mu     sync.Mutex
	owners map[string]string
}

// NewRedisLocker constructs a Redis-backed drawer locker.
func NewRedisLocker(client redisStore, ttl time.Duration) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for locker")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl, owners: map[string]string{}}, nil
}

// Acquire tries to own the keyed lock for the configured TTL.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.client.LockKey("drawer", key), owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if ok {
		l.mu.Lock()
		l.owners[key] = owner
		l.mu.Unlock()
	}
	return ok, nil
}

// Release frees the keyed lock only if the owner value still matches.
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	owner := l.owners[key]
	delete(l.owners, key)
	l.mu.Unlock()

	if owner == "" {
		return nil
	}

	fullKey := l.client.LockKey("drawer", key)
	value, err := l.client.Get(ctx, fullKey)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != owner {
		return nil
	}
	if err := l.client.Del(ctx, fullKey); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	return nil
}

// MutexLocker is an in-process Locker for single-node deployments and tests.
type MutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMutexLocker constructs an in-process locker.
func NewMutexLocker() *MutexLocker {
	return &MutexLocker{locks: map[string]*sync.Mutex{}}
}

func (l *MutexLocker) Acquire(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
	return true, nil
}

func (l *MutexLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	m, ok := l.locks[key]
	l.mu.Unlock()
	if !ok {
		return nil
	}
	m.Unlock()
	return nil
}
