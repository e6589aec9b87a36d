package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/virtual-client-backend/internal/logger"
)

// RateLimitStore counts hits inside a sliding window. Allow records the hit
// when it fits and reports how long the caller should wait otherwise.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

// RateLimiter enforces the per-user and global sliding windows in front of
// every provider call.
type RateLimiter interface {
	Check(ctx context.Context, userID uuid.UUID) (time.Duration, error)
}

// ---- in-memory store ----

type memoryRateLimitStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

func NewMemoryRateLimitStore() RateLimitStore {
	return &memoryRateLimitStore{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

func (s *memoryRateLimitStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	kept := s.hits[key][:0]
	for _, t := range s.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	s.hits[key] = kept

	if len(kept) >= limit {
		retryAfter := kept[0].Add(window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter, nil
	}
	s.hits[key] = append(s.hits[key], now)
	return true, 0, nil
}

// ---- redis store (shared across processes) ----

type redisRateLimitStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisRateLimitStore(client *redis.Client) RateLimitStore {
	return &redisRateLimitStore{client: client, now: time.Now}
}

func (s *redisRateLimitStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := s.now()
	cutoff := now.Add(-window).UnixNano()

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", cutoff))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	count := countCmd.Val()
	if count >= int64(limit) {
		oldest, err := s.client.ZRangeWithScores(ctx, key, 0, 0).Result()
		retryAfter := window
		if err == nil && len(oldest) > 0 {
			oldestAt := time.Unix(0, int64(oldest[0].Score))
			retryAfter = oldestAt.Add(window).Sub(now)
			if retryAfter < 0 {
				retryAfter = 0
			}
		}
		return false, retryAfter, nil
	}

	pipe = s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: fmt.Sprintf("%d", now.UnixNano())})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	return true, 0, nil
}

// ---- limiter ----

type RateLimiterConfig struct {
	UserLimit    int
	UserWindow   time.Duration
	GlobalLimit  int
	GlobalWindow time.Duration
}

type rateLimiter struct {
	log   *logger.Logger
	store RateLimitStore
	cfg   RateLimiterConfig
}

func NewRateLimiter(baseLog *logger.Logger, store RateLimitStore, cfg RateLimiterConfig) RateLimiter {
	if cfg.UserLimit <= 0 {
		cfg.UserLimit = 20
	}
	if cfg.UserWindow <= 0 {
		cfg.UserWindow = time.Minute
	}
	if cfg.GlobalLimit <= 0 {
		cfg.GlobalLimit = 200
	}
	if cfg.GlobalWindow <= 0 {
		cfg.GlobalWindow = time.Minute
	}
	return &rateLimiter{
		log:   baseLog.With("service", "RateLimiter"),
		store: store,
		cfg:   cfg,
	}
}

// Check returns a zero duration when the call may proceed, or the suggested
// retry-after when either window is exhausted. Store errors fail open: a
// broken limiter should degrade to unlimited rather than take the API down.
func (rl *rateLimiter) Check(ctx context.Context, userID uuid.UUID) (time.Duration, error) {
	userKey := "ratelimit:user:" + userID.String()
	allowed, retryAfter, err := rl.store.Allow(ctx, userKey, rl.cfg.UserLimit, rl.cfg.UserWindow)
	if err != nil {
		rl.log.Warn("Rate limit store error, failing open", "key", userKey, "error", err)
		return 0, nil
	}
	if !allowed {
		return retryAfter, nil
	}

	allowed, retryAfter, err = rl.store.Allow(ctx, "ratelimit:global", rl.cfg.GlobalLimit, rl.cfg.GlobalWindow)
	if err != nil {
		rl.log.Warn("Rate limit store error, failing open", "key", "ratelimit:global", "error", err)
		return 0, nil
	}
	if !allowed {
		return retryAfter, nil
	}
	return 0, nil
}
