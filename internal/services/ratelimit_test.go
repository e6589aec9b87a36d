package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryStoreSlidingWindow(t *testing.T) {
	store := NewMemoryRateLimitStore().(*memoryRateLimitStore)
	now := time.Now()
	store.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		allowed, _, err := store.Allow(ctx, "k", 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow error: %v", err)
		}
		if !allowed {
			t.Fatalf("hit %d denied, limit is 3", i+1)
		}
	}

	allowed, retryAfter, err := store.Allow(ctx, "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow error: %v", err)
	}
	if allowed {
		t.Fatal("fourth hit inside window should be denied")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Fatalf("retryAfter=%v, want within (0, 1m]", retryAfter)
	}

	// Slide past the window; the old hits expire.
	now = now.Add(61 * time.Second)
	allowed, _, err = store.Allow(ctx, "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow error: %v", err)
	}
	if !allowed {
		t.Fatal("hit after window expiry should be allowed")
	}
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryRateLimitStore()
	ctx := context.Background()

	if allowed, _, _ := store.Allow(ctx, "a", 1, time.Minute); !allowed {
		t.Fatal("first hit on key a denied")
	}
	if allowed, _, _ := store.Allow(ctx, "a", 1, time.Minute); allowed {
		t.Fatal("second hit on key a should be denied")
	}
	if allowed, _, _ := store.Allow(ctx, "b", 1, time.Minute); !allowed {
		t.Fatal("key b should not share key a's window")
	}
}

func TestRateLimiterUserWindow(t *testing.T) {
	limiter := NewRateLimiter(testLogger(t), NewMemoryRateLimitStore(), RateLimiterConfig{
		UserLimit:    2,
		UserWindow:   time.Minute,
		GlobalLimit:  100,
		GlobalWindow: time.Minute,
	})

	ctx := context.Background()
	userID := uuid.New()
	for i := 0; i < 2; i++ {
		retryAfter, err := limiter.Check(ctx, userID)
		if err != nil {
			t.Fatalf("Check error: %v", err)
		}
		if retryAfter != 0 {
			t.Fatalf("call %d limited, want allowed", i+1)
		}
	}
	retryAfter, err := limiter.Check(ctx, userID)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if retryAfter == 0 {
		t.Fatal("third call should be limited")
	}

	// Another user still has their own budget.
	other, err := limiter.Check(ctx, uuid.New())
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if other != 0 {
		t.Fatal("other user should not be limited")
	}
}

func TestRateLimiterGlobalWindow(t *testing.T) {
	limiter := NewRateLimiter(testLogger(t), NewMemoryRateLimitStore(), RateLimiterConfig{
		UserLimit:    100,
		UserWindow:   time.Minute,
		GlobalLimit:  2,
		GlobalWindow: time.Minute,
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if retryAfter, _ := limiter.Check(ctx, uuid.New()); retryAfter != 0 {
			t.Fatalf("call %d globally limited too early", i+1)
		}
	}
	if retryAfter, _ := limiter.Check(ctx, uuid.New()); retryAfter == 0 {
		t.Fatal("global window exhausted, third caller should be limited")
	}
}

type failingStore struct{}

func (failingStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	return false, 0, errors.New("store down")
}

func TestRateLimiterFailsOpenOnStoreError(t *testing.T) {
	limiter := NewRateLimiter(testLogger(t), failingStore{}, RateLimiterConfig{})

	retryAfter, err := limiter.Check(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if retryAfter != 0 {
		t.Fatal("broken store must fail open")
	}
}
