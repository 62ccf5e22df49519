// The strategies separate eviction policy from storage mechanism: the store owns
// the entry table and capacity enforcement, a strategy owns the ordering indexes
// and decides which entries are dead and which one to sacrifice at capacity.
// Strategies self-track the entries they were shown, so the store must report
// every write and removal to keep the index exact.

package cache

import "time"

// Strategy is the eviction policy bound to a single namespace store. A strategy
// instance is never shared between stores; implementations hold per-namespace
// state and rely on the owning store for serialization.
type Strategy[V any] interface {
	// OnAccess is called on every successful read, after the store updated the
	// entry's access metadata.
	OnAccess(entry *Entry[V])
	// OnSet is called on every write, inserts and overwrites alike. Overwrites
	// pass a fresh entry object under the same key.
	OnSet(entry *Entry[V])
	// OnDelete is called whenever an entry leaves the store for any reason, so the
	// strategy can drop it from its indexes.
	OnDelete(key string)
	// ShouldEvict is the lazy liveness check used on the read path and by Cleanup
	// sweeps; it is independent of capacity.
	ShouldEvict(entry *Entry[V], now time.Time) bool
	// EvictionCandidate names the entry to sacrifice when the store is at capacity
	// while inserting a new key. Returning false declines the eviction, in which
	// case the store overshoots its capacity (documented soft limit).
	EvictionCandidate() (key string, ok bool)
	// Reset drops all strategy state; called when the namespace is cleared.
	Reset()
}

// StrategyFactory builds a fresh strategy instance for a namespace being created.
// Factories rather than instances are registered on the manager because strategy
// state (recency lists, insertion indexes) is per-namespace.
type StrategyFactory[V any] func(namespace string, cfg Config[V]) Strategy[V]

// builtinStrategies returns the factories every manager starts with.
func builtinStrategies[V any]() map[string]StrategyFactory[V] {
	return map[string]StrategyFactory[V]{
		StrategyLRU: func(string, Config[V]) Strategy[V] { return newLRUStrategy[V]() },
		StrategyTTL: func(string, Config[V]) Strategy[V] { return newTTLStrategy[V]() },
		StrategySWR: func(namespace string, cfg Config[V]) Strategy[V] {
			return newSWRStrategy[V](namespace, cfg.RefreshQueue)
		},
	}
}

// selectStalest is the shared capacity-eviction scan of the TTL and SWR
// strategies: one pass over the insertion order picking the smallest expiry, with
// ties broken by first-encountered. Entries without a TTL only lose when no entry
// has one; among those the oldest CreatedAt wins, which in insertion order is the
// first such entry. The scan is O(n) on purpose: it only runs at the capacity
// boundary, never per access.
func selectStalest[V any](order *orderList[V]) (string, bool) {
	var victim *Entry[V]
	order.each(func(entry *Entry[V]) bool {
		switch {
		case victim == nil:
			victim = entry
		case !entry.ExpiresAt.IsZero() && victim.ExpiresAt.IsZero():
			victim = entry
		case !entry.ExpiresAt.IsZero() && entry.ExpiresAt.Before(victim.ExpiresAt):
			victim = entry
		case entry.ExpiresAt.IsZero() && victim.ExpiresAt.IsZero() &&
			entry.CreatedAt.Before(victim.CreatedAt):
			victim = entry
		}
		return true
	})
	if victim == nil {
		return "", false
	}
	return victim.Key, true
}
