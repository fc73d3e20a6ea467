/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func TestMemoryCache(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	cache := NewMemoryCache[string](time.Minute).WithClock(clock.Now)

	if _, ok := cache.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Set("key", "value")
	clock.Advance(59 * time.Second)
	got, ok := cache.Get("key")
	if !ok || got != "value" {
		t.Fatalf("expected fresh entry, got %q (ok=%v)", got, ok)
	}
	if left := cache.Remaining("key"); left != time.Second {
		t.Errorf("expected 1s remaining, got %v", left)
	}

	clock.Advance(time.Second)
	if _, ok := cache.Get("key"); ok {
		t.Error("entry aged exactly ttl must read as absent")
	}
	if cache.Len() != 1 {
		t.Errorf("expired entry must stay physically present, len=%d", cache.Len())
	}

	cache.Set("key", "fresh")
	got, ok = cache.Get("key")
	if !ok || got != "fresh" {
		t.Errorf("Set must overwrite and reset the timestamp, got %q (ok=%v)", got, ok)
	}
}

func TestTTLLaw(t *testing.T) {
	t.Parallel()

	ttl := 10 * time.Second
	for _, age := range []time.Duration{0, time.Second, 9999 * time.Millisecond, ttl, ttl + time.Millisecond, time.Hour} {
		clock := &fakeClock{t: time.Unix(0, 0)}
		cache := NewMemoryCache[int](ttl).WithClock(clock.Now)
		cache.Set("k", 42)
		clock.Advance(age)
		_, ok := cache.Get("k")
		if want := age < ttl; ok != want {
			t.Errorf("age %v: got hit=%v, want %v", age, ok, want)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache[int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cache.Set("shared", i)
			cache.Get("shared")
		}(i)
	}
	wg.Wait()
	if _, ok := cache.Get("shared"); !ok {
		t.Error("expected entry after concurrent writes")
	}
}

func TestStoreClasses(t *testing.T) {
	store := NewStore[string, string, string]()
	if store.Status.TTL() != 60*time.Second {
		t.Errorf("status ttl = %v", store.Status.TTL())
	}
	if store.Ships.TTL() != time.Hour || store.Images.TTL() != time.Hour {
		t.Errorf("wiki ttl = %v / %v", store.Ships.TTL(), store.Images.TTL())
	}
}

func TestKey(t *testing.T) {
	if got := Key("  Aurora MR "); got != "aurora mr" {
		t.Errorf("Key = %q", got)
	}
}
