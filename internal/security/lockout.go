package security

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// ErrLockedOut is returned while a client has too many recent failed logins
var ErrLockedOut = errors.New("too many failed login attempts")

const (
	DefaultMaxAttempts = 5
	DefaultLockout     = 15 * time.Minute

	maxTrackedClients = 10000
)

// LockoutStore counts failed logins per client. A client is locked out once it reaches
// the attempt limit, until the lockout window has passed since its last failure.
type LockoutStore interface {
	// Check returns ErrLockedOut and the remaining wait when the client is locked out
	Check(ctx context.Context, key string) (time.Duration, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type attempts struct {
	count int
	last  time.Time
}

// MemoryLockout keeps counters in a bounded map whose entries expire after the lockout window
type MemoryLockout struct {
	mu          sync.Mutex
	entries     *expirable.LRU[string, attempts]
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
}

// NewMemoryLockout creates an in-process lockout store
func NewMemoryLockout(maxAttempts int, lockout time.Duration) *MemoryLockout {
	return &MemoryLockout{
		entries:     expirable.NewLRU[string, attempts](maxTrackedClients, nil, lockout),
		maxAttempts: maxAttempts,
		lockout:     lockout,
		now:         time.Now,
	}
}

func (m *MemoryLockout) current(key string) (attempts, bool) {
	a, ok := m.entries.Get(key)
	if !ok {
		return attempts{}, false
	}
	if m.now().Sub(a.last) > m.lockout {
		m.entries.Remove(key)
		return attempts{}, false
	}
	return a, true
}

func (m *MemoryLockout) Check(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.current(key)
	if !ok || a.count < m.maxAttempts {
		return 0, nil
	}
	return m.lockout - m.now().Sub(a.last), ErrLockedOut
}

func (m *MemoryLockout) RecordFailure(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, _ := m.current(key)
	a.count++
	a.last = m.now()
	m.entries.Add(key, a)
	return nil
}

func (m *MemoryLockout) Reset(ctx context.Context, key string) error {
	m.entries.Remove(key)
	return nil
}

// RedisLockout shares counters between replicas. Every failure restarts the key's expiry.
type RedisLockout struct {
	client      *redis.Client
	maxAttempts int
	lockout     time.Duration
}

// NewRedisLockout creates a lockout store on an existing client
func NewRedisLockout(client *redis.Client, maxAttempts int, lockout time.Duration) *RedisLockout {
	return &RedisLockout{client: client, maxAttempts: maxAttempts, lockout: lockout}
}

func lockoutKey(key string) string {
	return "rpsarena:login:" + key
}

func (r *RedisLockout) Check(ctx context.Context, key string) (time.Duration, error) {
	count, err := r.client.Get(ctx, lockoutKey(key)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read login attempts: %w", err)
	}
	if count < r.maxAttempts {
		return 0, nil
	}

	ttl, err := r.client.PTTL(ctx, lockoutKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read lockout ttl: %w", err)
	}
	if ttl < 0 {
		ttl = r.lockout
	}
	return ttl, ErrLockedOut
}

func (r *RedisLockout) RecordFailure(ctx context.Context, key string) error {
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, lockoutKey(key))
	pipe.Expire(ctx, lockoutKey(key), r.lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}
	return nil
}

func (r *RedisLockout) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, lockoutKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}
