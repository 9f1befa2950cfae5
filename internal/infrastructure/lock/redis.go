package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "payment:order_lock:"

// RedisLocker serializes work per order number across service replicas.
type RedisLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
	tries  int
}

func NewRedsync(rdb *redis.Client) *redsync.Redsync {
	pool := goredis.NewPool(rdb)
	return redsync.New(pool)
}

func NewRedisLocker(rs *redsync.Redsync, expiry time.Duration, tries int) *RedisLocker {
	return &RedisLocker{rs: rs, expiry: expiry, tries: tries}
}

func (l *RedisLocker) Lock(ctx context.Context, orderNo string) (func(), error) {
	mutex := l.rs.NewMutex(
		keyPrefix+orderNo,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(l.tries),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("acquire lock for order %s: %w", orderNo, err)
	}

	return func() {
		// the caller's context may already be done by now
		unlockCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if _, err := mutex.UnlockContext(unlockCtx); err != nil {
			slog.Warn("failed to release order lock", "order_no", orderNo, "error", err)
		}
	}, nil
}
