package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTTLStore[V any](capacity int) *Store[V] {
	return NewStore("ttl_test", Config[V]{MaxEntries: capacity, Strategy: StrategyTTL}, newTTLStrategy[V]())
}

func TestTTL_LazyExpiryOnRead(t *testing.T) {
	store := newTTLStore[string](10)
	store.Set("short", "v", SetOptions[string]{TTL: 50 * time.Millisecond})
	store.Set("eternal", "w", SetOptions[string]{})
	require.Equal(t, 2, store.Len())

	time.Sleep(80 * time.Millisecond)

	_, found := store.Get("short")
	assert.False(t, found, "Entry past its TTL should be absent")
	assert.Equal(t, 1, store.Len(), "Lazy expiry should remove the entry, shrinking the size by one")

	got, found := store.Get("eternal")
	assert.True(t, found, "Entries without a TTL never expire")
	assert.Equal(t, "w", got)
}

func TestTTL_CandidatePicksSmallestExpiry(t *testing.T) {
	store := newTTLStore[int](2)
	store.Set("lasting", 1, SetOptions[int]{TTL: time.Hour})
	store.Set("closer", 2, SetOptions[int]{TTL: time.Minute})

	store.Set("new", 3, SetOptions[int]{TTL: time.Hour})

	_, found := store.Get("closer")
	assert.False(t, found, "The entry with the smallest expiry should have been evicted")
	_, found = store.Get("lasting")
	assert.True(t, found)
	_, found = store.Get("new")
	assert.True(t, found)
}

func TestTTL_CandidateFallsBackToOldest(t *testing.T) {
	store := newTTLStore[int](2)
	store.Set("oldest", 1, SetOptions[int]{})
	store.Set("younger", 2, SetOptions[int]{})

	store.Set("new", 3, SetOptions[int]{})

	_, found := store.Get("oldest")
	assert.False(t, found, "Without TTLs the oldest entry should have been evicted")
	_, found = store.Get("younger")
	assert.True(t, found)
}

func TestTTL_EntryWithTTLLosesToEternal(t *testing.T) {
	store := newTTLStore[int](2)
	store.Set("eternal", 1, SetOptions[int]{})
	store.Set("mortal", 2, SetOptions[int]{TTL: time.Hour})

	store.Set("new", 3, SetOptions[int]{})

	_, found := store.Get("mortal")
	assert.False(t, found, "An entry with any TTL outranks eternal entries as a victim")
	_, found = store.Get("eternal")
	assert.True(t, found)
}

func TestTTL_ReadsDoNoBookkeeping(t *testing.T) {
	// Accessing entries must not change the eviction order: oldest still goes first.
	store := newTTLStore[int](2)
	store.Set("a", 1, SetOptions[int]{})
	store.Set("b", 2, SetOptions[int]{})
	for range 5 {
		store.Get("a")
	}

	store.Set("c", 3, SetOptions[int]{})

	_, found := store.Get("a")
	assert.False(t, found, "TTL strategy ignores recency, a is still the oldest")
}

func TestTTL_CleanupSweepsExpired(t *testing.T) {
	store := newTTLStore[string](10)
	store.Set("a", "1", SetOptions[string]{TTL: 10 * time.Millisecond})
	store.Set("b", "2", SetOptions[string]{TTL: 10 * time.Millisecond})
	store.Set("c", "3", SetOptions[string]{})

	time.Sleep(25 * time.Millisecond)

	removed := store.Cleanup()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, store.Len())
	stats := store.Stats()
	assert.Equal(t, uint64(2), stats.Evictions)
}

func TestCalculateExpiry(t *testing.T) {
	now := time.Now()
	t.Run("explicit ttl wins over default", func(t *testing.T) {
		got := CalculateExpiry(now, time.Minute /*ttl*/, time.Hour /*defaultTTL*/)
		assert.Equal(t, now.Add(time.Minute), got)
	})
	t.Run("default ttl applies when unset", func(t *testing.T) {
		got := CalculateExpiry(now, 0 /*ttl*/, time.Hour /*defaultTTL*/)
		assert.Equal(t, now.Add(time.Hour), got)
	})
	t.Run("no ttl at all means no expiry", func(t *testing.T) {
		got := CalculateExpiry(now, 0 /*ttl*/, 0 /*defaultTTL*/)
		assert.True(t, got.IsZero())
	})
	t.Run("non-positive ttl without default means no expiry", func(t *testing.T) {
		got := CalculateExpiry(now, -time.Second /*ttl*/, 0 /*defaultTTL*/)
		assert.True(t, got.IsZero())
	})
}
