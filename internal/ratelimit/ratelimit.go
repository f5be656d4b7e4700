// Package ratelimit provides per-client request limiting backed by Redis or,
// when no Redis is configured, by process memory.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether the client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter counts requests in fixed windows shared by every replica.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewRedisLimiter allows limit requests per window for each key.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf("%s:%s", l.prefix, key)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.TTL(ctx, k)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", k, err)
	}

	// A counter without a TTL starts a new window, whether this is its first
	// hit or an earlier EXPIRE never landed.
	if ttl.Val() < 0 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", k, err)
		}
	}

	return incr.Val() <= l.limit, nil
}

const (
	bucketCleanupThreshold = 1 * time.Hour
	cleanupInterval        = 30 * time.Minute
)

type clientBucket struct {
	tokens     int
	lastRefill time.Time
}

// MemoryLimiter is a per-key token bucket refilled to capacity every refillDur.
// Call Stop to end its cleanup goroutine.
type MemoryLimiter struct {
	mu          sync.Mutex
	capacity    int
	refillDur   time.Duration
	clients     map[string]*clientBucket
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

func NewMemoryLimiter(capacity int, refillDur time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		capacity:    capacity,
		refillDur:   refillDur,
		clients:     make(map[string]*clientBucket),
		stopCleanup: make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *MemoryLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, bucket := range l.clients {
		if now.Sub(bucket.lastRefill) > bucketCleanupThreshold {
			delete(l.clients, key)
		}
	}
}

func (l *MemoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	bucket, exists := l.clients[key]
	if !exists {
		l.clients[key] = &clientBucket{
			tokens:     l.capacity - 1,
			lastRefill: now,
		}
		return true, nil
	}

	if now.Sub(bucket.lastRefill) >= l.refillDur {
		bucket.tokens = l.capacity
		bucket.lastRefill = now
	}

	if bucket.tokens <= 0 {
		return false, nil
	}

	bucket.tokens--
	return true, nil
}
