package application

import (
	"strings"
	"sync"
	"time"

	"github.com/example/tutoring-scheduler/internal/weekday"
)

// expansionCache stores recently computed availability expansions so
// identical queries skip re-expansion while the tutor's records remain
// unchanged. Keys lead with the tutor id so a write for one tutor can evict
// exactly that tutor's entries.
type expansionCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]expansionCacheEntry
}

type expansionCacheEntry struct {
	result    AvailabilityResult
	expiresAt time.Time
}

func newExpansionCache(ttl time.Duration, maxEntries int, now func() time.Time) *expansionCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if now == nil {
		now = time.Now
	}
	return &expansionCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]expansionCacheEntry),
	}
}

func (c *expansionCache) Get(key string) (AvailabilityResult, bool) {
	if c == nil {
		return AvailabilityResult{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return AvailabilityResult{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return AvailabilityResult{}, false
	}
	return cloneResult(entry.result), true
}

func (c *expansionCache) Store(key string, result AvailabilityResult) {
	if c == nil {
		return
	}
	cloned := cloneResult(result)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = expansionCacheEntry{result: cloned, expiresAt: expiry}
}

// InvalidateTutor drops every cached expansion for the tutor. Called after
// any write that changes the tutor's patterns or specific dates.
func (c *expansionCache) InvalidateTutor(tutorID string) {
	if c == nil {
		return
	}
	prefix := tutorID + "|"
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

func (c *expansionCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *expansionCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneResult(result AvailabilityResult) AvailabilityResult {
	out := AvailabilityResult{}
	if len(result.Instances) > 0 {
		out.Instances = make([]AvailabilityInstance, len(result.Instances))
		copy(out.Instances, result.Instances)
	}
	if len(result.Warnings) > 0 {
		out.Warnings = append(out.Warnings[:0:0], result.Warnings...)
	}
	return out
}

func buildExpansionCacheKey(params ExpandAvailabilityParams) string {
	builder := strings.Builder{}
	builder.WriteString(params.TutorID)
	builder.WriteString("|")
	if params.CourseID != nil {
		builder.WriteString(*params.CourseID)
	}
	builder.WriteString("|")
	builder.WriteString(params.Start.UTC().Format("2006-01-02"))
	builder.WriteString("|")
	builder.WriteString(params.End.UTC().Format("2006-01-02"))
	builder.WriteString("|")
	builder.WriteString(params.ViewerZone)
	builder.WriteString("|")
	builder.WriteString(string(normalizedConvention(params.Convention)))
	return builder.String()
}

func normalizedConvention(convention weekday.Convention) weekday.Convention {
	if !convention.Valid() {
		return weekday.ConventionPython
	}
	return convention
}
