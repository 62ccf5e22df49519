package cache

import "time"

// Stats is a point-in-time snapshot of one namespace. The counters are monotonic
// for the lifetime of the namespace (Clear resets them); the derived fields are
// recomputed from the live entry set on every snapshot rather than maintained
// incrementally, so they can never drift.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Sets      uint64
	Deletes   uint64
	Evictions uint64

	Size int // Current number of live entries.

	HitRate        float64    // Hits / (Hits + Misses); zero when there were no lookups.
	AvgAccessCount float64    // Mean AccessCount over live entries; zero when empty.
	OldestEntry    *time.Time // CreatedAt of the oldest live entry; nil when empty.
	NewestEntry    *time.Time // CreatedAt of the newest live entry; nil when empty.
}

// GlobalStats aggregates every namespace of a manager. Computed on demand, never
// persisted.
type GlobalStats struct {
	TotalSize int
	Hits      uint64
	Misses    uint64
	Sets      uint64
	Deletes   uint64
	Evictions uint64
	HitRate   float64

	Namespaces map[string]Stats // Per-namespace breakdown.
}

// counters holds the monotonic per-namespace counters. Guarded by the owning
// store's mutex.
type counters struct {
	hits      uint64
	misses    uint64
	sets      uint64
	deletes   uint64
	evictions uint64
}

// hitRate derives the hit ratio from a hit/miss pair.
func hitRate(hits, misses uint64) float64 {
	lookups := hits + misses
	if lookups == 0 {
		return 0
	}
	return float64(hits) / float64(lookups)
}
