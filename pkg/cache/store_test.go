package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CapacityInvariant(t *testing.T) {
	const capacity = 10
	store := newLRUStore[int](capacity)
	for i := range 100 {
		store.Set(string(rune('a'+i%26))+string(rune('0'+i/26)), i, SetOptions[int]{})
		if i >= capacity {
			assert.LessOrEqual(t, store.Len(), capacity, "Size must never exceed capacity after warm-up")
		}
	}
}

func TestStore_OverwriteResetsAccessCount(t *testing.T) {
	store := newLRUStore[int](10)
	store.Set("k", 1, SetOptions[int]{})
	store.Get("k")
	store.Get("k")
	stats := store.Stats()
	require.Equal(t, float64(2), stats.AvgAccessCount)

	store.Set("k", 2, SetOptions[int]{}) // Overwrite is a logical re-insertion, not an access.
	stats = store.Stats()
	assert.Equal(t, float64(0), stats.AvgAccessCount)
	assert.Equal(t, 1, stats.Size)
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	store := newLRUStore[int](10)
	store.Set("k", 1, SetOptions[int]{})

	assert.False(t, store.Delete("missing"), "Deleting an absent key reports false")
	assert.Equal(t, uint64(0), store.Stats().Deletes, "A no-op delete must not move the counter")

	assert.True(t, store.Delete("k"))
	assert.Equal(t, uint64(1), store.Stats().Deletes)

	assert.False(t, store.Delete("k"), "Second delete of the same key is a no-op")
	assert.Equal(t, uint64(1), store.Stats().Deletes)
}

func TestStore_ClearResetsEntriesAndStats(t *testing.T) {
	store := newLRUStore[int](10)
	store.Set("a", 1, SetOptions[int]{})
	store.Set("b", 2, SetOptions[int]{})
	store.Get("a")
	store.Get("missing")

	store.Clear()

	assert.Equal(t, 0, store.Len())
	stats := store.Stats()
	assert.Equal(t, Stats{}, stats)

	// The namespace keeps working after a clear.
	store.Set("c", 3, SetOptions[int]{})
	got, found := store.Get("c")
	assert.True(t, found)
	assert.Equal(t, 3, got)
}

func TestStore_HitRate(t *testing.T) {
	store := newLRUStore[string](10)
	store.Set("k", "v", SetOptions[string]{})
	for range 3 {
		_, found := store.Get("k")
		require.True(t, found)
	}
	_, found := store.Get("missing")
	require.False(t, found)

	stats := store.Stats()
	assert.Equal(t, uint64(3), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 0.75, stats.HitRate)
}

func TestStore_HasDoesNotCountLookups(t *testing.T) {
	store := newLRUStore[int](10)
	store.Set("k", 1, SetOptions[int]{})

	assert.True(t, store.Has("k"))
	assert.False(t, store.Has("missing"))

	stats := store.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
}

func TestStore_OnEvictObservesVictim(t *testing.T) {
	var evicted []*Entry[int]
	cfg := Config[int]{
		MaxEntries: 1,
		Strategy:   StrategyLRU,
		OnEvict:    func(e *Entry[int]) { evicted = append(evicted, e) },
	}
	store := NewStore("hook_test", cfg, newLRUStrategy[int]())

	store.Set("a", 1, SetOptions[int]{})
	store.Set("b", 2, SetOptions[int]{})

	require.Len(t, evicted, 1)
	assert.Equal(t, "a", evicted[0].Key)
	assert.Equal(t, 1, evicted[0].Value)
}

func TestStore_PanickingOnEvictNeverAbortsSet(t *testing.T) {
	cfg := Config[int]{
		MaxEntries: 1,
		Strategy:   StrategyLRU,
		OnEvict:    func(*Entry[int]) { panic("hook gone wrong") },
	}
	store := NewStore("hook_test", cfg, newLRUStrategy[int]())

	store.Set("a", 1, SetOptions[int]{})
	require.NotPanics(t, func() { store.Set("b", 2, SetOptions[int]{}) })

	got, found := store.Get("b")
	assert.True(t, found, "The triggering set must succeed despite the failing hook")
	assert.Equal(t, 2, got)
}

// decliningStrategy never names an eviction candidate, exercising the soft-limit
// overflow path.
type decliningStrategy[V any] struct{}

func (decliningStrategy[V]) OnAccess(*Entry[V])                    {}
func (decliningStrategy[V]) OnSet(*Entry[V])                       {}
func (decliningStrategy[V]) OnDelete(string)                       {}
func (decliningStrategy[V]) ShouldEvict(*Entry[V], time.Time) bool { return false }
func (decliningStrategy[V]) EvictionCandidate() (string, bool)     { return "", false }
func (decliningStrategy[V]) Reset()                                {}

func TestStore_SoftOverflowWhenStrategyDeclines(t *testing.T) {
	store := NewStore("overflow_test", Config[int]{MaxEntries: 2}, decliningStrategy[int]{})

	store.Set("a", 1, SetOptions[int]{})
	store.Set("b", 2, SetOptions[int]{})
	store.Set("c", 3, SetOptions[int]{})

	assert.Equal(t, 3, store.Len(), "A declined eviction lets the insert overshoot the capacity")
	for _, key := range []string{"a", "b", "c"} {
		_, found := store.Get(key)
		assert.True(t, found, "Key %q should survive the soft overflow", key)
	}
	assert.Equal(t, uint64(0), store.Stats().Evictions)
}

func TestStore_DoorkeeperAdmitsOnSecondSet(t *testing.T) {
	cfg := Config[string]{MaxEntries: 10, Strategy: StrategyLRU, Doorkeeper: true}
	store := NewStore("door_test", cfg, newLRUStrategy[string]())

	store.Set("k", "first", SetOptions[string]{})
	_, found := store.Get("k")
	assert.False(t, found, "A never-before-seen key is registered, not cached")

	store.Set("k", "second", SetOptions[string]{})
	got, found := store.Get("k")
	assert.True(t, found, "A repeat write is admitted")
	assert.Equal(t, "second", got)
}

func TestStore_DoorkeeperForgetsOnClear(t *testing.T) {
	cfg := Config[string]{MaxEntries: 10, Strategy: StrategyLRU, Doorkeeper: true}
	store := NewStore("door_test", cfg, newLRUStrategy[string]())

	store.Set("k", "v", SetOptions[string]{})
	store.Set("k", "v", SetOptions[string]{})
	require.Equal(t, 1, store.Len())

	store.Clear()

	store.Set("k", "v", SetOptions[string]{})
	assert.Equal(t, 0, store.Len(), "The doorkeeper starts from scratch after a clear")
}

func TestStore_DerivedStats(t *testing.T) {
	store := newLRUStore[int](10)

	stats := store.Stats()
	assert.Nil(t, stats.OldestEntry, "Empty namespace has no oldest entry")
	assert.Nil(t, stats.NewestEntry, "Empty namespace has no newest entry")

	store.Set("old", 1, SetOptions[int]{})
	time.Sleep(5 * time.Millisecond)
	store.Set("new", 2, SetOptions[int]{})
	store.Get("old")

	stats = store.Stats()
	require.NotNil(t, stats.OldestEntry)
	require.NotNil(t, stats.NewestEntry)
	assert.True(t, stats.OldestEntry.Before(*stats.NewestEntry))
	assert.Equal(t, 0.5, stats.AvgAccessCount, "One access spread over two entries")
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, uint64(2), stats.Sets)
}

func TestStore_DisabledStatsKeepCountersZero(t *testing.T) {
	cfg := Config[int]{MaxEntries: 10, Strategy: StrategyLRU, DisableStats: true}
	store := NewStore("quiet_test", cfg, newLRUStrategy[int]())

	store.Set("k", 1, SetOptions[int]{})
	store.Get("k")
	store.Get("missing")
	store.Delete("k")

	stats := store.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
	assert.Equal(t, uint64(0), stats.Sets)
	assert.Equal(t, uint64(0), stats.Deletes)
}

func TestStore_EntryMetadata(t *testing.T) {
	var captured *Entry[string]
	cfg := Config[string]{MaxEntries: 1, Strategy: StrategyLRU,
		OnEvict: func(e *Entry[string]) { captured = e }}
	hooked := NewStore("meta_test", cfg, newLRUStrategy[string]())
	hooked.Set("k", "v", SetOptions[string]{Priority: 7, Metadata: map[string]string{"source": "unit-test"}})
	hooked.Set("k2", "v2", SetOptions[string]{})

	require.NotNil(t, captured)
	assert.Equal(t, 7, captured.Priority)
	assert.Equal(t, "unit-test", captured.Metadata["source"])
	assert.Equal(t, len("v"), captured.ApproxSizeBytes)
	assert.Equal(t, "meta_test", captured.Namespace)
}
