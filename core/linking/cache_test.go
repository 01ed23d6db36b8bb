package linking

import (
	"fmt"
	"testing"

	"github.com/siherrmann/linker/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMapping(idx string) model.Mapping {
	return model.Mapping{
		DefaultLabel:          "label " + idx,
		Source:                "knowledgebase",
		ParserName:            "embedding_resolver",
		Idx:                   idx,
		StringMatchStrategy:   ResolverNamespace,
		StringMatchConfidence: model.StringMatchProbable,
	}
}

func TestMatchClassCacheKey(t *testing.T) {
	t.Run("Same match and class produce the same key", func(t *testing.T) {
		assert.Equal(t, MatchClassCacheKey("EGFR", "gene"), MatchClassCacheKey("EGFR", "gene"))
	})

	t.Run("Different class produces a different key", func(t *testing.T) {
		assert.NotEqual(t, MatchClassCacheKey("EGFR", "gene"), MatchClassCacheKey("EGFR", "disease"))
	})

	t.Run("Separator prevents boundary collisions", func(t *testing.T) {
		assert.NotEqual(t, MatchClassCacheKey("ab", "c"), MatchClassCacheKey("a", "bc"))
	})

	t.Run("Entity key matches the string key", func(t *testing.T) {
		entity, err := model.NewContiguousEntity(0, 4, model.EntityParams{Match: "EGFR", EntityClass: "gene"})
		require.NoError(t, err)
		assert.Equal(t, MatchClassCacheKey("EGFR", "gene"), EntityCacheKey(entity))
	})
}

func TestMappingCachePutIfAbsent(t *testing.T) {
	t.Run("First write is stored", func(t *testing.T) {
		cache := NewMappingCache(10)
		stored := cache.PutIfAbsent(MatchClassCacheKey("EGFR", "gene"), testMapping("first"))
		assert.True(t, stored)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("Second write for the same key is rejected", func(t *testing.T) {
		cache := NewMappingCache(10)
		key := MatchClassCacheKey("EGFR", "gene")
		require.True(t, cache.PutIfAbsent(key, testMapping("first")))

		stored := cache.PutIfAbsent(key, testMapping("second"))
		assert.False(t, stored, "Expected the first writer to win")

		mapping, ok := cache.Get(key)
		require.True(t, ok)
		assert.Equal(t, "first", mapping.Idx, "Expected the original mapping to survive")
	})

	t.Run("Capacity below one is treated as one", func(t *testing.T) {
		cache := NewMappingCache(0)
		require.True(t, cache.PutIfAbsent(MatchClassCacheKey("a", "x"), testMapping("a")))
		require.True(t, cache.PutIfAbsent(MatchClassCacheKey("b", "x"), testMapping("b")))
		assert.Equal(t, 1, cache.Len())
	})
}

func TestMappingCacheGet(t *testing.T) {
	cache := NewMappingCache(10)
	key := MatchClassCacheKey("EGFR", "gene")

	t.Run("Miss on empty cache", func(t *testing.T) {
		_, ok := cache.Get(key)
		assert.False(t, ok)
	})

	t.Run("Hit after insert", func(t *testing.T) {
		require.True(t, cache.PutIfAbsent(key, testMapping("first")))
		mapping, ok := cache.Get(key)
		require.True(t, ok)
		assert.Equal(t, "first", mapping.Idx)
	})
}

func TestMappingCacheEviction(t *testing.T) {
	t.Run("Least frequently used entry is evicted", func(t *testing.T) {
		cache := NewMappingCache(3)
		keys := make([]CacheKey, 4)
		for i := range keys {
			keys[i] = MatchClassCacheKey(fmt.Sprintf("match-%d", i), "gene")
		}

		require.True(t, cache.PutIfAbsent(keys[0], testMapping("0")))
		require.True(t, cache.PutIfAbsent(keys[1], testMapping("1")))
		require.True(t, cache.PutIfAbsent(keys[2], testMapping("2")))

		// Skew the frequencies: keys[1] stays at the insert count of 1
		for i := 0; i < 5; i++ {
			cache.Get(keys[0])
		}
		cache.Get(keys[2])

		require.True(t, cache.PutIfAbsent(keys[3], testMapping("3")))
		assert.Equal(t, 3, cache.Len())

		_, ok := cache.Get(keys[1])
		assert.False(t, ok, "Expected the least frequently used entry to be evicted")
		for _, key := range []CacheKey{keys[0], keys[2], keys[3]} {
			_, ok := cache.Get(key)
			assert.True(t, ok, "Expected the remaining entries to survive")
		}
	})

	t.Run("Frequency ties evict the oldest entry", func(t *testing.T) {
		cache := NewMappingCache(2)
		first := MatchClassCacheKey("first", "gene")
		second := MatchClassCacheKey("second", "gene")
		third := MatchClassCacheKey("third", "gene")

		require.True(t, cache.PutIfAbsent(first, testMapping("first")))
		require.True(t, cache.PutIfAbsent(second, testMapping("second")))
		require.True(t, cache.PutIfAbsent(third, testMapping("third")))

		_, ok := cache.Get(first)
		assert.False(t, ok, "Expected the oldest tied entry to be evicted")
		_, ok = cache.Get(second)
		assert.True(t, ok)
		_, ok = cache.Get(third)
		assert.True(t, ok)
	})
}

func TestMappingCacheReset(t *testing.T) {
	cache := NewMappingCache(10)
	key := MatchClassCacheKey("EGFR", "gene")
	require.True(t, cache.PutIfAbsent(key, testMapping("first")))

	cache.Reset()
	assert.Zero(t, cache.Len())

	_, ok := cache.Get(key)
	assert.False(t, ok)

	t.Run("Cache is writable after reset", func(t *testing.T) {
		assert.True(t, cache.PutIfAbsent(key, testMapping("second")))
		mapping, ok := cache.Get(key)
		require.True(t, ok)
		assert.Equal(t, "second", mapping.Idx, "Expected a reset cache to accept the new mapping")
	})
}
