package application

import (
	"testing"
	"time"
)

func TestExpansionCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache := newExpansionCache(time.Minute, 8, nil)
	result := AvailabilityResult{Instances: []AvailabilityInstance{{PatternID: "pat-1", Date: "2025-09-19"}}}

	cache.Store("tutor-1|2025-09-01|2025-09-30|UTC|python", result)

	got, ok := cache.Get("tutor-1|2025-09-01|2025-09-30|UTC|python")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if len(got.Instances) != 1 || got.Instances[0].PatternID != "pat-1" {
		t.Errorf("cached result mangled: %+v", got)
	}

	// Mutating the returned copy must not touch the cached entry.
	got.Instances[0].PatternID = "mutated"
	again, _ := cache.Get("tutor-1|2025-09-01|2025-09-30|UTC|python")
	if again.Instances[0].PatternID != "pat-1" {
		t.Error("cache returned a shared slice")
	}
}

func TestExpansionCacheExpiry(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 9, 19, 12, 0, 0, 0, time.UTC)
	cache := newExpansionCache(30*time.Second, 8, func() time.Time { return current })

	cache.Store("tutor-1|a", AvailabilityResult{})
	if _, ok := cache.Get("tutor-1|a"); !ok {
		t.Fatal("fresh entry must hit")
	}

	current = current.Add(31 * time.Second)
	if _, ok := cache.Get("tutor-1|a"); ok {
		t.Error("expired entry must miss")
	}
}

func TestExpansionCacheInvalidateTutor(t *testing.T) {
	t.Parallel()

	cache := newExpansionCache(time.Minute, 8, nil)
	cache.Store("tutor-1|window-a", AvailabilityResult{})
	cache.Store("tutor-1|window-b", AvailabilityResult{})
	cache.Store("tutor-2|window-a", AvailabilityResult{})

	cache.InvalidateTutor("tutor-1")

	if _, ok := cache.Get("tutor-1|window-a"); ok {
		t.Error("tutor-1 entry survived invalidation")
	}
	if _, ok := cache.Get("tutor-1|window-b"); ok {
		t.Error("tutor-1 entry survived invalidation")
	}
	if _, ok := cache.Get("tutor-2|window-a"); !ok {
		t.Error("tutor-2 entry must survive")
	}
}

func TestExpansionCacheBoundsEntries(t *testing.T) {
	t.Parallel()

	cache := newExpansionCache(time.Minute, 2, nil)
	cache.Store("tutor-1|a", AvailabilityResult{})
	cache.Store("tutor-1|b", AvailabilityResult{})
	cache.Store("tutor-1|c", AvailabilityResult{})

	cache.mu.RLock()
	size := len(cache.entries)
	cache.mu.RUnlock()
	if size > 2 {
		t.Errorf("cache holds %d entries, want at most 2", size)
	}
}
