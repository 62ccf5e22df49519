// The manager is the process-wide entry point: it owns the namespace table and
// the strategy registry, routes calls to the right store (creating stores lazily
// on first write), and aggregates statistics on demand. There is deliberately no
// package-level singleton; construct one manager per process and hand it to
// collaborators, and use Reset for test isolation.

package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/nobletooth/loquat/pkg/keys"
)

// Manager routes cache calls to namespace stores. A single shared instance serves
// all callers in the process; all methods are safe for concurrent use.
type Manager[V any] struct {
	defaults Config[V]

	mu         sync.RWMutex
	stores     map[string]*Store[V]
	strategies map[string]StrategyFactory[V]
}

// NewManager builds a manager whose namespaces inherit the given defaults. The
// built-in strategies (lru, ttl, swr) are pre-registered.
func NewManager[V any](defaults Config[V]) *Manager[V] {
	return &Manager[V]{
		defaults:   defaults.withDefaults(),
		stores:     make(map[string]*Store[V]),
		strategies: builtinStrategies[V](),
	}
}

// RegisterStrategy adds or overwrites a named strategy factory for future
// namespace creation. Stores already bound to a previous factory keep it.
func (m *Manager[V]) RegisterStrategy(name string, factory StrategyFactory[V]) error {
	if name == "" {
		return ErrEmptyStrategyName
	}
	if factory == nil {
		return ErrNilStrategyFactory
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategies[name] = factory
	return nil
}

// Get looks up a key. An unknown namespace behaves as a miss, never an error:
// namespaces only come into existence on write.
func (m *Manager[V]) Get(namespace, key string) (V, bool) {
	store := m.lookupStore(namespace)
	if store == nil {
		var zero V
		return zero, false
	}
	return store.Get(key)
}

// Has reports whether a live entry exists, without counting a lookup or touching
// recency. Unknown namespaces report false.
func (m *Manager[V]) Has(namespace, key string) bool {
	store := m.lookupStore(namespace)
	if store == nil {
		return false
	}
	return store.Has(key)
}

// Set stores a value, lazily creating the namespace store on first use. A
// namespace-creating call may carry opts.Config, which is merged over the manager
// defaults (per-call wins); once created, a namespace keeps its configuration.
func (m *Manager[V]) Set(namespace, key string, value V, opts SetOptions[V]) error {
	store, err := m.storeFor(namespace, opts.Config)
	if err != nil {
		return err
	}
	store.Set(key, value, opts)
	return nil
}

// Delete removes a key if present; idempotent. Unknown namespaces report false.
func (m *Manager[V]) Delete(namespace, key string) bool {
	store := m.lookupStore(namespace)
	if store == nil {
		return false
	}
	return store.Delete(key)
}

// Clear drops all entries and statistics of one namespace; the namespace itself
// stays registered. A no-op for unknown namespaces.
func (m *Manager[V]) Clear(namespace string) {
	if store := m.lookupStore(namespace); store != nil {
		store.Clear()
	}
}

// ClearAll removes every namespace outright; the next write recreates them from
// scratch. Registered strategies survive.
func (m *Manager[V]) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores = make(map[string]*Store[V])
}

// Reset returns the manager to its freshly constructed state: all namespaces
// removed and the strategy registry restored to the built-ins. Meant for test
// isolation.
func (m *Manager[V]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores = make(map[string]*Store[V])
	m.strategies = builtinStrategies[V]()
}

// Stats snapshots one namespace. The second return is false for namespaces that
// were never written to.
func (m *Manager[V]) Stats(namespace string) (Stats, bool) {
	store := m.lookupStore(namespace)
	if store == nil {
		return Stats{}, false
	}
	return store.Stats(), true
}

// GlobalStats aggregates all namespaces on demand.
func (m *Manager[V]) GlobalStats() GlobalStats {
	m.mu.RLock()
	stores := make([]*Store[V], 0, len(m.stores))
	for _, store := range m.stores {
		stores = append(stores, store)
	}
	m.mu.RUnlock()

	global := GlobalStats{Namespaces: make(map[string]Stats, len(stores))}
	for _, store := range stores {
		snapshot := store.Stats()
		global.Namespaces[store.Namespace()] = snapshot
		global.TotalSize += snapshot.Size
		global.Hits += snapshot.Hits
		global.Misses += snapshot.Misses
		global.Sets += snapshot.Sets
		global.Deletes += snapshot.Deletes
		global.Evictions += snapshot.Evictions
	}
	global.HitRate = hitRate(global.Hits, global.Misses)
	return global
}

// Cleanup proactively sweeps one namespace, returning the number of removed
// entries. Zero for unknown namespaces.
func (m *Manager[V]) Cleanup(namespace string) int {
	store := m.lookupStore(namespace)
	if store == nil {
		return 0
	}
	return store.Cleanup()
}

// CleanupAll sweeps every namespace.
func (m *Manager[V]) CleanupAll() int {
	m.mu.RLock()
	stores := make([]*Store[V], 0, len(m.stores))
	for _, store := range m.stores {
		stores = append(stores, store)
	}
	m.mu.RUnlock()

	removed := 0
	for _, store := range stores {
		removed += store.Cleanup()
	}
	return removed
}

// Namespaces lists the namespaces that currently exist.
func (m *Manager[V]) Namespaces() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.stores))
	for name := range m.stores {
		names = append(names, name)
	}
	return names
}

// Refreshes exposes the engine-owned stale-while-revalidate queue of a namespace;
// nil unless the namespace exists, uses the SWR strategy, and didn't supply its
// own RefreshQueue.
func (m *Manager[V]) Refreshes(namespace string) <-chan RefreshRequest {
	store := m.lookupStore(namespace)
	if store == nil {
		return nil
	}
	return store.Refreshes()
}

// GetOrFetch is the read-through helper: on a miss it invokes fetch, stores the
// result, and returns it. Errors from fetch propagate verbatim and are never
// cached. Concurrent misses on the same key are not serialized: both callers may
// fetch and both write, last-write-wins.
func (m *Manager[V]) GetOrFetch(ctx context.Context, namespace, key string,
	fetch func(context.Context) (V, error), opts SetOptions[V]) (V, error) {
	if value, ok := m.Get(namespace, key); ok {
		return value, nil
	}
	value, err := fetch(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	if err := m.Set(namespace, key, value, opts); err != nil {
		var zero V
		return zero, err
	}
	return value, nil
}

// lookupStore returns the store for a namespace, or nil when it was never created.
func (m *Manager[V]) lookupStore(namespace string) *Store[V] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stores[namespace]
}

// storeFor returns the namespace's store, creating it on first use. The override
// config only matters for the creating call; later calls with a different config
// keep the original (first-writer-wins).
func (m *Manager[V]) storeFor(namespace string, override *Config[V]) (*Store[V], error) {
	if store := m.lookupStore(namespace); store != nil {
		return store, nil
	}
	if !keys.ValidateNamespace(namespace) {
		return nil, fmt.Errorf("namespace %q: %w", namespace, ErrInvalidNamespace)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if store, exists := m.stores[namespace]; exists { // Lost the creation race.
		return store, nil
	}
	cfg := m.defaults
	if override != nil {
		cfg = cfg.merge(*override)
	}
	cfg = cfg.withDefaults()
	factory, registered := m.strategies[cfg.Strategy]
	if !registered {
		return nil, fmt.Errorf("strategy %q: %w", cfg.Strategy, ErrUnknownStrategy)
	}
	store := NewStore(namespace, cfg, factory(namespace, cfg))
	m.stores[namespace] = store
	return store, nil
}
