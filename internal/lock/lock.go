// Package lock serializes writers of the same complaint across service replicas.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the key stayed held for the whole wait budget.
var ErrNotAcquired = errors.New("lock not acquired")

const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

const keyPrefix = "complaint-lock:"

// Release frees a held lock.
type Release func(ctx context.Context) error

// Locker grants exclusive access to a key.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// NoopLocker grants every request immediately.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string) (Release, error) {
	return func(context.Context) error { return nil }, nil
}

// RedisLocker implements Locker with SET NX and a token-checked release.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewRedisLocker builds a locker. Keys expire after ttl if never released;
// Acquire retries a held key for up to wait.
func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client not initialized")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be > 0")
	}
	return &RedisLocker{client: client, ttl: ttl, wait: wait, retry: 25 * time.Millisecond}, nil
}

// Acquire blocks until key is held, the wait budget elapses (ErrNotAcquired)
// or Redis fails (the driver error is returned).
func (l *RedisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	key = keyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func(ctx context.Context) error {
				return l.client.Eval(ctx, releaseScript, []string{key}, token).Err()
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrNotAcquired
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
