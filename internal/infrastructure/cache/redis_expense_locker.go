package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultLockTTL      = 30 * time.Second
	defaultRetryBackoff = 50 * time.Millisecond
	unlockTimeout       = 2 * time.Second
)

// releaseScript deletes the lock only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisExpenseLocker serializes settlement of an expense across replicas
// with a SET NX PX token lock. The TTL bounds how long a crashed holder can
// block others.
type RedisExpenseLocker struct {
	client  redis.UniversalClient
	ttl     time.Duration
	backoff time.Duration
	logger  *zap.Logger
}

// NewRedisExpenseLocker creates a RedisExpenseLocker
func NewRedisExpenseLocker(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisExpenseLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisExpenseLocker{
		client:  client,
		ttl:     ttl,
		backoff: defaultRetryBackoff,
		logger:  logger,
	}
}

func lockKey(expenseID uuid.UUID) string {
	return keyPrefix + "lock:expense:" + expenseID.String()
}

// Lock polls until the lock is acquired or ctx is done
func (l *RedisExpenseLocker) Lock(ctx context.Context, expenseID uuid.UUID) (func(), error) {
	key := lockKey(expenseID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to acquire expense lock: %w", err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true

		// the caller's ctx may already be cancelled
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), unlockTimeout)
		defer cancel()
		if err := releaseScript.Run(unlockCtx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Warn("Failed to release expense lock",
				zap.String("expense_id", expenseID.String()),
				zap.Error(err),
			)
		}
	}, nil
}
