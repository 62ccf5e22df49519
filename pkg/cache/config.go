package cache

import (
	"log/slog"
	"time"
)

const (
	// DefaultMaxEntries bounds a namespace that didn't configure a capacity.
	DefaultMaxEntries = 1000
	// DefaultStrategy is the eviction strategy for namespaces that didn't pick one.
	DefaultStrategy = StrategyLRU
)

// Built-in strategy names, pre-registered on every manager.
const (
	StrategyLRU = "lru"
	StrategyTTL = "ttl"
	StrategySWR = "swr"
)

// RefreshRequest signals that a stale-while-revalidate entry was served past its
// freshness window and should be recomputed out-of-band.
type RefreshRequest struct {
	Namespace string
	Key       string
}

// Config fixes a namespace's behavior at creation time. Later writes into the same
// namespace cannot reconfigure it.
type Config[V any] struct {
	// MaxEntries is the capacity of the namespace (> 0). This is a soft limit: when
	// the bound strategy declines to name an eviction candidate, an insert may
	// overshoot it rather than fail.
	MaxEntries int

	// DefaultTTL applies to writes that don't carry their own TTL; zero means
	// entries never expire unless a per-write TTL is given.
	DefaultTTL time.Duration

	// Strategy names the eviction strategy registered on the manager.
	Strategy string

	// DisableStats turns off the namespace's hit/miss/set counters. Derived
	// statistics are still computable from the live entry set. Merges one-way:
	// a per-call config cannot re-enable stats over manager defaults that
	// disabled them (see merge).
	DisableStats bool

	// OnEvict is invoked with the last-known state of each capacity-evicted entry.
	// It runs inside the store's critical section, so it must not call back into
	// the cache; a panic in the hook is swallowed and never aborts the write.
	OnEvict func(*Entry[V])

	// Doorkeeper enables a bloom-filter admission policy: a never-before-seen key
	// is registered but not cached, and only admitted on a repeat write. Keeps
	// one-shot scans from flushing the working set.
	Doorkeeper bool

	// RefreshQueue, when set, receives stale-while-revalidate refresh signals.
	// Sends never block; signals are dropped (and counted) when the queue is full.
	// When nil and the strategy is SWR, the store owns a bounded queue exposed via
	// Store.Refreshes.
	RefreshQueue chan<- RefreshRequest
}

// withDefaults fills in the unset fields of a namespace config.
func (c Config[V]) withDefaults() Config[V] {
	if c.MaxEntries < 0 {
		slog.Warn("Ignoring negative namespace capacity.", "maxEntries", c.MaxEntries)
		c.MaxEntries = 0
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	if c.Strategy == "" {
		c.Strategy = DefaultStrategy
	}
	return c
}

// merge overlays the set fields of override on top of the receiver. Used when a
// namespace-creating write carries its own config: per-call values win over the
// manager defaults. The boolean knobs (DisableStats, Doorkeeper) merge one-way:
// a per-call config can switch them on over permissive defaults, but a zero
// value is indistinguishable from "unset" and never switches them back off.
// Managers whose defaults disable stats or enable the doorkeeper fix that for
// every namespace they create.
func (c Config[V]) merge(override Config[V]) Config[V] {
	merged := c
	if override.MaxEntries != 0 {
		merged.MaxEntries = override.MaxEntries
	}
	if override.DefaultTTL != 0 {
		merged.DefaultTTL = override.DefaultTTL
	}
	if override.Strategy != "" {
		merged.Strategy = override.Strategy
	}
	if override.DisableStats {
		merged.DisableStats = true
	}
	if override.OnEvict != nil {
		merged.OnEvict = override.OnEvict
	}
	if override.Doorkeeper {
		merged.Doorkeeper = true
	}
	if override.RefreshQueue != nil {
		merged.RefreshQueue = override.RefreshQueue
	}
	return merged
}
