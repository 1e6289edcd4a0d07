package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestLimiterAllowsUnderLimit(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := New(NewMemoryStore(clock.Now, 100), 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !limiter.Allow(ctx, "login:alice@example.com") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow(ctx, "login:alice@example.com") {
		t.Error("fourth request should be blocked")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := New(NewMemoryStore(clock.Now, 100), 1, time.Minute)
	ctx := context.Background()

	if !limiter.Allow(ctx, "login:alice@example.com") {
		t.Fatal("alice's first request should be allowed")
	}
	if !limiter.Allow(ctx, "login:bob@example.com") {
		t.Error("bob's first request should be allowed")
	}
	if limiter.Allow(ctx, "login:alice@example.com") {
		t.Error("alice's second request should be blocked")
	}
}

func TestLimiterWindowResets(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := New(NewMemoryStore(clock.Now, 100), 1, time.Minute)
	ctx := context.Background()

	if !limiter.Allow(ctx, "k") {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow(ctx, "k") {
		t.Fatal("second request should be blocked")
	}

	clock.Advance(time.Minute)
	if !limiter.Allow(ctx, "k") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestMemoryStoreBoundHoldsWithLiveKeys(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	store := NewMemoryStore(clock.Now, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		store.Incr(ctx, fmt.Sprintf("live-%d", i), time.Minute)
	}

	// Nothing has expired, so extra keys must not grow the map.
	for i := 0; i < 20; i++ {
		count, err := store.Incr(ctx, fmt.Sprintf("extra-%d", i), time.Minute)
		if err != nil {
			t.Fatalf("Incr: %v", err)
		}
		if count != 1 {
			t.Errorf("untracked key count = %d, want 1", count)
		}
	}
	if store.Len() != 5 {
		t.Errorf("Len() = %d, want 5", store.Len())
	}

	// Tracked keys keep counting normally.
	count, _ := store.Incr(ctx, "live-0", time.Minute)
	if count != 2 {
		t.Errorf("live-0 count = %d, want 2", count)
	}
}

func TestMemoryStoreEvictsExpiredAtBound(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	store := NewMemoryStore(clock.Now, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		store.Incr(ctx, fmt.Sprintf("old-%d", i), time.Minute)
	}
	if store.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", store.Len())
	}

	// All five buckets expire; inserting a new key triggers eviction.
	clock.Advance(2 * time.Minute)
	store.Incr(ctx, "fresh", time.Minute)

	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after eviction", store.Len())
	}
}
