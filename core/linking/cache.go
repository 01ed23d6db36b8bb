package linking

import (
	"github.com/siherrmann/linker/model"
	"github.com/zeebo/blake3"
)

// CacheKey is a stable hash of (match, entity class). Stability across runs
// matters: the same surface string and class must always map to the same key
// so resolutions are repeatable.
type CacheKey [32]byte

// EntityCacheKey computes the cache key for an entity.
func EntityCacheKey(entity *model.Entity) CacheKey {
	return MatchClassCacheKey(entity.Match, entity.EntityClass)
}

// MatchClassCacheKey computes the cache key for a surface string and class.
func MatchClassCacheKey(match, entityClass string) CacheKey {
	buf := make([]byte, 0, len(match)+1+len(entityClass))
	buf = append(buf, match...)
	buf = append(buf, 0)
	buf = append(buf, entityClass...)
	return blake3.Sum256(buf)
}

type cacheEntry struct {
	mapping model.Mapping
	// freq counts Get hits plus the initial insert.
	freq uint64
	// seq breaks eviction ties in favour of the oldest entry.
	seq uint64
}

// MappingCache is a bounded cache of resolved mappings with least frequently
// used eviction. Inserts are first-writer-wins: an existing entry is never
// overwritten, trading freshness for idempotent repeatability. If the
// knowledgebase or embedding model changes, call Reset.
//
// The cache is not safe for concurrent writers; the orchestrator is expected
// to be single threaded per step.
type MappingCache struct {
	capacity int
	seq      uint64
	entries  map[CacheKey]*cacheEntry
}

// NewMappingCache creates a cache holding at most capacity entries. A
// capacity below one is treated as one.
func NewMappingCache(capacity int) *MappingCache {
	if capacity < 1 {
		capacity = 1
	}
	return &MappingCache{
		capacity: capacity,
		entries:  make(map[CacheKey]*cacheEntry, capacity),
	}
}

// Get returns the stored mapping for key, counting the access.
func (c *MappingCache) Get(key CacheKey) (model.Mapping, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return model.Mapping{}, false
	}
	entry.freq++
	return entry.mapping, true
}

// PutIfAbsent stores the mapping under key only if no entry already exists
// for that key, evicting the least frequently used entry when at capacity.
// It reports whether the mapping was stored.
func (c *MappingCache) PutIfAbsent(key CacheKey, mapping model.Mapping) bool {
	if _, ok := c.entries[key]; ok {
		return false
	}
	if len(c.entries) >= c.capacity {
		c.evict()
	}
	c.seq++
	c.entries[key] = &cacheEntry{mapping: mapping, freq: 1, seq: c.seq}
	return true
}

// Len returns the number of stored entries.
func (c *MappingCache) Len() int {
	return len(c.entries)
}

// Reset drops all entries. Required after a knowledgebase or embedding model
// swap, as stored mappings are never invalidated otherwise.
func (c *MappingCache) Reset() {
	c.entries = make(map[CacheKey]*cacheEntry, c.capacity)
}

func (c *MappingCache) evict() {
	var victim CacheKey
	var found bool
	for key, entry := range c.entries {
		if !found {
			victim, found = key, true
			continue
		}
		current := c.entries[victim]
		if entry.freq < current.freq || (entry.freq == current.freq && entry.seq < current.seq) {
			victim = key
		}
	}
	if found {
		delete(c.entries, victim)
	}
}
