package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when a lock is already held by someone else.
var ErrLockHeld = errors.New("lock already held")

// Locker is a per-key mutual exclusion provider. The withdrawal flow
// acquires a (user, provider) key around its balance-check-then-write
// section so two concurrent requests can never both observe sufficient
// balance.
type Locker interface {
	// Acquire takes the lock and returns a release token, or ErrLockHeld.
	Acquire(ctx context.Context, key string) (string, error)
	// Release frees the lock if token still owns it.
	Release(ctx context.Context, key, token string) error
}

// RedisLocker implements Locker with SET NX PX and a token-checked
// release, so a crashed holder's lock expires instead of deadlocking.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a Redis-backed locker with the given lease TTL.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, "lock:"+key, token, l.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrLockHeld
	}
	return token, nil
}

// releaseScript deletes the lock only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, l.client, []string{"lock:" + key}, token).Err()
}

// LocalLocker implements Locker in process memory, for tests and
// single-node deployments without Redis.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]string
}

// NewLocalLocker creates an in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]string)}
}

func (l *LocalLocker) Acquire(_ context.Context, key string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", ErrLockHeld
	}
	token := uuid.NewString()
	l.held[key] = token
	return token, nil
}

func (l *LocalLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}
