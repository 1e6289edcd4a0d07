// Package ratelimit provides fixed-window request limiting over a pluggable
// store. State lives behind the Store interface and time behind an injected
// clock, so limiters are testable and safe to run on more than one instance
// when backed by Redis.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// Store counts hits per key within a window and expires them.
type Store interface {
	// Incr adds one hit for key and returns the hit count within the
	// current window. The first hit of a window starts its expiry.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter allows up to limit hits per key per window.
type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
}

func New(store Store, limit int64, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window}
}

// Allow reports whether another request for key fits in the current
// window. Store errors fail open: limiting is protection, not a gate
// the whole request path should die on.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	count, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return true
	}
	return count <= l.limit
}

type bucket struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is an in-process Store bounded to maxKeys buckets. Expired
// buckets are evicted when the bound is reached; if every bucket is still
// live, new keys are not tracked and each hit counts as the first of its
// window, matching the fail-open policy in Limiter.Allow.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	clock   Clock
	maxKeys int
}

func NewMemoryStore(clock Clock, maxKeys int) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{
		buckets: make(map[string]*bucket),
		clock:   clock,
		maxKeys: maxKeys,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()

	current, ok := s.buckets[key]
	if ok && !current.resetAt.After(now) {
		ok = false
	}
	if !ok {
		if len(s.buckets) >= s.maxKeys {
			s.evictExpired(now)
		}
		if len(s.buckets) >= s.maxKeys {
			// Every tracked bucket is still inside its window. Refusing
			// to track the new key keeps the map at the bound.
			return 1, nil
		}
		current = &bucket{resetAt: now.Add(window)}
		s.buckets[key] = current
	}

	current.count++
	return current.count, nil
}

func (s *MemoryStore) evictExpired(now time.Time) {
	for key, b := range s.buckets {
		if !b.resetAt.After(now) {
			delete(s.buckets, key)
		}
	}
}

// Len returns the number of tracked buckets, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
