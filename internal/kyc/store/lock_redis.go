package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"irdesk/pkg/platform/sentinel"
)

const screeningLockPrefix = "kyc:screening:"

// releaseScript deletes the lock only when it still holds our token, so an
// expired-and-reacquired lock is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker is a per-investor lock shared by every service instance.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire takes the lock for key or returns sentinel.ErrLocked. The lock
// expires after the TTL even if release is never called.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, screeningLockPrefix+key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire screening lock: %w", err)
	}
	if !ok {
		return nil, sentinel.ErrLocked
	}
	release := func() {
		// best effort: the TTL reclaims the key otherwise
		_ = releaseScript.Run(context.WithoutCancel(ctx), l.client, []string{screeningLockPrefix + key}, token).Err()
	}
	return release, nil
}
