package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeStore counts in memory with manual expiry control.
type fakeStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{counts: make(map[string]int64)}
}

func (f *fakeStore) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func TestLimiterAllowsUnderCap(t *testing.T) {
	l := NewLimiter(newFakeStore(), 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "client-1")
		if err != nil || !ok {
			t.Fatalf("request %d should be allowed: ok=%v err=%v", i+1, ok, err)
		}
	}
	ok, err := l.Allow(ctx, "client-1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatal("fourth request should be throttled")
	}
}

func TestLimiterKeysPerClient(t *testing.T) {
	l := NewLimiter(newFakeStore(), 1, time.Minute)
	ctx := context.Background()

	if ok, _ := l.Allow(ctx, "a"); !ok {
		t.Fatal("first request for a should pass")
	}
	if ok, _ := l.Allow(ctx, "b"); !ok {
		t.Fatal("client b has its own counter")
	}
	if ok, _ := l.Allow(ctx, "a"); ok {
		t.Fatal("second request for a should be throttled")
	}
}

func TestLimiterFailsOpen(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("redis down")
	l := NewLimiter(store, 1, time.Minute)

	ok, err := l.Allow(context.Background(), "client-1")
	if !ok {
		t.Fatal("store failure must not block requests")
	}
	if err == nil {
		t.Fatal("store failure should still be reported for logging")
	}
}
