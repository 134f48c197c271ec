package slotlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLocker keeps one key per (provider, slot start) with SET NX and a
// TTL; expiry is native, so no purge pass is needed. Release runs a
// compare-and-delete script so a requester can only delete its own lock.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = TTL
	}
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

func lockKey(providerID uuid.UUID, slotStart time.Time) string {
	return fmt.Sprintf("lock:slot:%s:%d", providerID.String(), slotStart.Unix())
}

func (l *RedisLocker) Acquire(ctx context.Context, providerID uuid.UUID, slotStart, slotEnd time.Time, requesterID uuid.UUID) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey(providerID, slotStart), requesterID.String(), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire slot lock: %w", err)
	}
	return ok, nil
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *RedisLocker) Release(ctx context.Context, providerID uuid.UUID, slotStart time.Time, requesterID uuid.UUID) {
	key := lockKey(providerID, slotStart)
	_, err := unlockScript.Run(ctx, l.client, []string{key}, requesterID.String()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		l.logger.Error("slot lock release failed",
			zap.String("key", key),
			zap.String("locked_by", requesterID.String()),
			zap.Error(err),
		)
	}
}

func (l *RedisLocker) IsLocked(ctx context.Context, providerID uuid.UUID, slotStart time.Time) (bool, error) {
	n, err := l.client.Exists(ctx, lockKey(providerID, slotStart)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
