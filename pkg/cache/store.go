// The store is the mechanism half of the engine: one instance per namespace,
// owning the entry table, the bound strategy instance, the namespace config, and
// the statistics counters. A single mutex guards the entry table and the
// strategy's ordering indexes together, because relinking an index node and
// mutating the table are not atomic as a pair.

package cache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nobletooth/loquat/pkg/utils"
)

// Store is the namespace-scoped key/value store. Create one through a Manager;
// NewStore is exported for callers embedding a single namespace directly.
type Store[V any] struct {
	namespace string
	cfg       Config[V]
	strategy  Strategy[V]

	mu      sync.Mutex
	entries map[string]*Entry[V]
	stats   counters
	door    *doorkeeper
}

// NewStore builds a store for one namespace with the given strategy instance. The
// config is normalized with defaults; the strategy must be freshly constructed and
// not shared with another store.
func NewStore[V any](namespace string, cfg Config[V], strategy Strategy[V]) *Store[V] {
	cfg = cfg.withDefaults()
	store := &Store[V]{
		namespace: namespace,
		cfg:       cfg,
		strategy:  strategy,
		entries:   make(map[string]*Entry[V]),
	}
	if cfg.Doorkeeper {
		store.door = newDoorkeeper(cfg.MaxEntries)
	}
	return store
}

// Namespace returns the namespace this store serves.
func (s *Store[V]) Namespace() string {
	return s.namespace
}

// Get looks up a live entry. A key is absent when it was never set, or when the
// strategy's lazy check declares it dead, in which case the entry is removed
// before the miss is reported (lazy expiry-on-read). Hits update the entry's
// access metadata and the strategy's bookkeeping.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	entry, exists := s.entries[key]
	if !exists {
		s.countMiss("miss")
		return zero, false
	}
	now := time.Now()
	if s.strategy.ShouldEvict(entry, now) {
		s.removeLocked(key, evictCauseExpired)
		s.countMiss("expired")
		return zero, false
	}

	entry.AccessedAt = now
	entry.AccessCount++
	s.strategy.OnAccess(entry)
	if !s.cfg.DisableStats {
		s.stats.hits++
	}
	lookupsMetric.WithLabelValues(s.namespace, "hit").Inc()
	return entry.Value, true
}

// Has reports whether a live entry exists for the key without touching access
// metadata or the hit/miss counters. Like Get, it removes entries the lazy check
// declares dead.
func (s *Store[V]) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[key]
	if !exists {
		return false
	}
	if s.strategy.ShouldEvict(entry, time.Now()) {
		s.removeLocked(key, evictCauseExpired)
		return false
	}
	return true
}

// Set stores a value under the key. An overwrite installs a fresh entry with reset
// access metadata: overwriting is a logical re-insertion, not an access. When the
// store is at capacity and the key is new, exactly one entry is evicted first; a
// strategy that declines to name a candidate makes the insert overshoot the
// configured capacity (soft limit).
func (s *Store[V]) Set(key string, value V, opts SetOptions[V]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.entries[key]
	if !exists && s.door != nil {
		if !s.door.admit(key) {
			admissionsMetric.WithLabelValues(s.namespace, "deny").Inc()
			return
		}
		admissionsMetric.WithLabelValues(s.namespace, "admit").Inc()
	}
	if !exists && len(s.entries) >= s.cfg.MaxEntries {
		s.evictOneLocked()
	}

	entry := newEntry(s.namespace, key, value, time.Now(), s.cfg.DefaultTTL, opts)
	s.entries[key] = entry
	s.strategy.OnSet(entry)
	if !s.cfg.DisableStats {
		s.stats.sets++
	}
	setsMetric.WithLabelValues(s.namespace).Inc()
}

// Delete removes the entry if present. Idempotent; the deletes counter moves only
// when something was actually removed.
func (s *Store[V]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists {
		return false
	}
	delete(s.entries, key)
	s.strategy.OnDelete(key)
	if !s.cfg.DisableStats {
		s.stats.deletes++
	}
	deletesMetric.WithLabelValues(s.namespace).Inc()
	return true
}

// Clear drops all entries and resets the statistics counters. The namespace itself
// stays registered with its original config.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry[V])
	s.strategy.Reset()
	s.stats = counters{}
	if s.door != nil {
		s.door.reset()
	}
}

// Cleanup proactively sweeps the namespace, removing every entry the strategy's
// lazy check declares dead, independent of the read path. Returns the number of
// removed entries.
func (s *Store[V]) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var dead []string
	for key, entry := range s.entries {
		if s.strategy.ShouldEvict(entry, now) {
			dead = append(dead, key)
		}
	}
	for _, key := range dead {
		s.removeLocked(key, evictCauseSweep)
	}
	return len(dead)
}

// Len returns the current number of live entries.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats snapshots the namespace. Derived fields are recomputed from the live entry
// set at call time.
func (s *Store[V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := Stats{
		Hits:      s.stats.hits,
		Misses:    s.stats.misses,
		Sets:      s.stats.sets,
		Deletes:   s.stats.deletes,
		Evictions: s.stats.evictions,
		Size:      len(s.entries),
		HitRate:   hitRate(s.stats.hits, s.stats.misses),
	}
	if len(s.entries) == 0 {
		return snapshot
	}
	var totalAccesses int64
	var oldest, newest time.Time
	for _, entry := range s.entries {
		totalAccesses += entry.AccessCount
		if oldest.IsZero() || entry.CreatedAt.Before(oldest) {
			oldest = entry.CreatedAt
		}
		if newest.IsZero() || entry.CreatedAt.After(newest) {
			newest = entry.CreatedAt
		}
	}
	snapshot.AvgAccessCount = float64(totalAccesses) / float64(len(s.entries))
	snapshot.OldestEntry = &oldest
	snapshot.NewestEntry = &newest
	return snapshot
}

// Refreshes exposes the engine-owned stale-while-revalidate queue. Nil for
// non-SWR namespaces and for namespaces that supplied their own RefreshQueue.
func (s *Store[V]) Refreshes() <-chan RefreshRequest {
	if source, ok := s.strategy.(refreshSource); ok {
		return source.refreshes()
	}
	return nil
}

// countMiss records a miss under the given lookup status label.
func (s *Store[V]) countMiss(status string) {
	if !s.cfg.DisableStats {
		s.stats.misses++
	}
	lookupsMetric.WithLabelValues(s.namespace, status).Inc()
}

// removeLocked drops an entry through the eviction machinery: table, strategy
// index, counters. Caller holds the lock.
func (s *Store[V]) removeLocked(key, cause string) {
	delete(s.entries, key)
	s.strategy.OnDelete(key)
	if !s.cfg.DisableStats {
		s.stats.evictions++
	}
	evictionsMetric.WithLabelValues(s.namespace, cause).Inc()
}

// evictOneLocked frees one slot for a new key via the strategy's candidate pick.
// The OnEvict hook observes the victim's last-known state; a panicking hook is
// contained so cache integrity always wins over side effects. Caller holds the
// lock.
func (s *Store[V]) evictOneLocked() {
	key, ok := s.strategy.EvictionCandidate()
	if !ok {
		// Soft overflow: the strategy declined, the insert proceeds over capacity.
		slog.Debug("Eviction declined by strategy, inserting over capacity.",
			"namespace", s.namespace, "size", len(s.entries))
		return
	}
	victim, exists := s.entries[key]
	if !exists {
		// The candidate must come from the strategy's own index, which tracks the
		// entry table exactly.
		utils.RaiseInvariant("store", "stale_eviction_candidate",
			"Strategy named a candidate that is not in the entry table.",
			"namespace", s.namespace, "key", key)
		return
	}
	s.removeLocked(key, evictCauseCapacity)
	if s.cfg.OnEvict != nil {
		s.invokeOnEvict(victim)
	}
}

// invokeOnEvict shields the store from a failing eviction hook.
func (s *Store[V]) invokeOnEvict(victim *Entry[V]) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Eviction hook panicked; ignoring.",
				"namespace", s.namespace, "key", victim.Key, "panic", r)
		}
	}()
	s.cfg.OnEvict(victim)
}
