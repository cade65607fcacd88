package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultTTL bounds how long a crashed holder can keep a key
	DefaultTTL = 30 * time.Second

	// holdMargin covers the store reads and the final write around the model calls
	holdMargin = 15 * time.Second

	retryInterval = 25 * time.Millisecond
	keyPrefix     = "rpsarena:lock:"
)

// TTLFor returns a lock ttl that outlives one round held for its longest path:
// a move decision and a closing comment, each bounded by modelTimeout.
// It never returns less than DefaultTTL.
func TTLFor(modelTimeout time.Duration) time.Duration {
	ttl := 2*modelTimeout + holdMargin
	if ttl < DefaultTTL {
		return DefaultTTL
	}
	return ttl
}

// Deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes a key across every process sharing the Redis instance
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a locker on an existing client. A zero ttl uses DefaultTTL.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// or rediss:// URL and checks the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Acquire polls SET NX until the key is free or ctx is done
func (r *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, ctx.Err())
		}
	}

	return func() {
		// The caller's context may already be cancelled
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{redisKey}, token).Err(); err != nil {
			log.WithError(err).WithField("key", key).Warn("Failed to release lock")
		}
	}, nil
}
