// Loquat keeps expensive lookup results in memory, partitioned into namespaces so
// unrelated callers can't disturb each other's working set. This package is the
// engine: the entry model, the eviction strategies, the per-namespace store, and
// the process-wide manager that routes between them.

package cache

import (
	"time"

	"github.com/nobletooth/loquat/pkg/keys"
)

// Entry is a single cached record together with the bookkeeping metadata the
// eviction strategies read. An entry is owned exclusively by the store of its
// namespace and is never shared across namespaces.
type Entry[V any] struct {
	Key       string
	Namespace string
	Value     V

	CreatedAt  time.Time
	AccessedAt time.Time
	ExpiresAt  time.Time // Zero means the entry never expires.

	// AccessCount grows by one per successful read. An overwrite is a logical
	// re-insertion, so it starts a fresh count rather than continuing the old one.
	AccessCount int64

	// ApproxSizeBytes is a best-effort serialized-size estimate, informational
	// only; keys.SizeUnknown when the value could not be measured.
	ApproxSizeBytes int

	Priority int               // Reserved for external strategies; built-ins ignore it.
	Metadata map[string]string // Free-form caller tags.
}

// Expired reports whether the entry's freshness window has passed at the given
// time. Entries without a TTL never expire.
func (e *Entry[V]) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// CalculateExpiry resolves the effective expiry timestamp for a write. An explicit
// positive ttl wins over the namespace default; when neither is set the entry gets
// no expiry at all (zero time).
func CalculateExpiry(now time.Time, ttl, defaultTTL time.Duration) time.Time {
	effective := ttl
	if effective <= 0 {
		effective = defaultTTL
	}
	if effective <= 0 {
		return time.Time{}
	}
	return now.Add(effective)
}

// SetOptions carries per-call knobs for a single write.
type SetOptions[V any] struct {
	TTL      time.Duration     // Overrides the namespace DefaultTTL when positive.
	Priority int               // Reserved extension point, unused by built-in strategies.
	Metadata map[string]string // Free-form tags stored on the entry.

	// Config is consulted only when this write creates the namespace; an already
	// created namespace keeps its original configuration (first-writer-wins).
	Config *Config[V]
}

// newEntry builds a fresh entry for a write. Used for both inserts and overwrites,
// which is what resets AccessCount on overwrite.
func newEntry[V any](namespace, key string, value V, now time.Time, defaultTTL time.Duration,
	opts SetOptions[V]) *Entry[V] {
	return &Entry[V]{
		Key:             key,
		Namespace:       namespace,
		Value:           value,
		CreatedAt:       now,
		AccessedAt:      now,
		ExpiresAt:       CalculateExpiry(now, opts.TTL, defaultTTL),
		ApproxSizeBytes: keys.EstimateSize(value),
		Priority:        opts.Priority,
		Metadata:        opts.Metadata,
	}
}
