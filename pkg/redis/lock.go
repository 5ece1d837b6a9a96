package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a lock could not be taken before the
// context or wait budget ran out.
var ErrLockTimeout = errors.New("lock wait timed out")

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived mutual exclusion keyed by name.
type Locker struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
	log    *slog.Logger
}

func NewLocker(rdb goredis.UniversalClient, prefix string, ttl time.Duration, log *slog.Logger) *Locker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Locker{rdb: rdb, prefix: prefix, ttl: ttl, retry: 50 * time.Millisecond, log: log}
}

// Acquire blocks until the lock for key is held, ctx is done, or one TTL
// has passed. The returned func releases the lock.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	name := l.prefix + ":lock:" + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.ttl)

	for {
		ok, err := l.rdb.SetNX(ctx, name, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrLockTimeout, key, ctx.Err())
			}
			return nil, fmt.Errorf("acquiring lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrLockTimeout, key, ctx.Err())
		case <-time.After(l.retry):
		}
	}

	return func() {
		// Release must run even when the caller's ctx is already cancelled.
		n, err := releaseScript.Run(context.WithoutCancel(ctx), l.rdb, []string{name}, token).Int()
		switch {
		case err != nil:
			l.log.Warn("redis: lock release failed", "key", key, "error", err)
		case n == 0:
			l.log.Warn("redis: lock expired before release", "key", key, "ttl", l.ttl)
		}
	}, nil
}
