package engine

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Key addresses one recommendation list.
type Key struct {
	UserID uuid.UUID
	Date   string
}

type snapshot struct {
	entries      map[Key][]RecommendationEntry
	generatedFor string
}

// Cache publishes wholly rebuilt generations via a single pointer swap, so
// readers never observe a half-populated map. Lookups hit whatever the last
// completed generation produced; a brief stale read after local midnight is
// acceptable.
type Cache struct {
	current atomic.Pointer[snapshot]
}

func NewCache() *Cache {
	c := &Cache{}
	c.current.Store(&snapshot{entries: map[Key][]RecommendationEntry{}})
	return c
}

// Lookup is a non-blocking O(1) read; absent keys yield an empty list.
func (c *Cache) Lookup(userID uuid.UUID, date string) []RecommendationEntry {
	snap := c.current.Load()
	if entries, ok := snap.entries[Key{UserID: userID, Date: date}]; ok {
		return entries
	}
	return []RecommendationEntry{}
}

// Publish replaces the entire cache. Prior entries are gone even when the
// new generation produced fewer results for a key.
func (c *Cache) Publish(entries map[Key][]RecommendationEntry, generatedFor string) {
	if entries == nil {
		entries = map[Key][]RecommendationEntry{}
	}
	c.current.Store(&snapshot{entries: entries, generatedFor: generatedFor})
}

// GeneratedFor reports the local calendar date the live cache was built for,
// or "" before the first generation.
func (c *Cache) GeneratedFor() string {
	return c.current.Load().generatedFor
}
