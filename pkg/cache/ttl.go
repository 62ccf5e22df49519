package cache

import "time"

// ttlStrategy evicts by freshness rather than recency: reads do no bookkeeping,
// the lazy check removes anything past its expiry, and the capacity pick is the
// entry closest to (or furthest past) its expiry. Entries are kept in insertion
// order so the capacity scan breaks ties deterministically.
type ttlStrategy[V any] struct {
	insertion *orderList[V]
}

var _ Strategy[any] = (*ttlStrategy[any])(nil)

func newTTLStrategy[V any]() *ttlStrategy[V] {
	return &ttlStrategy[V]{insertion: newOrderList[V]()}
}

// OnAccess is a no-op: freshness doesn't care about reads.
func (s *ttlStrategy[V]) OnAccess(*Entry[V]) {}

// OnSet appends new keys to the insertion order; an overwrite is a logical
// re-insertion and moves the key to the back.
func (s *ttlStrategy[V]) OnSet(entry *Entry[V]) {
	if !s.insertion.moveToBack(entry.Key, entry) {
		s.insertion.pushBack(entry)
	}
}

func (s *ttlStrategy[V]) OnDelete(key string) {
	s.insertion.remove(key)
}

// ShouldEvict reports entries past their expiry as dead.
func (s *ttlStrategy[V]) ShouldEvict(entry *Entry[V], now time.Time) bool {
	return entry.Expired(now)
}

// EvictionCandidate scans all live entries once, picking the smallest expiry and
// falling back to the oldest entry when nothing carries a TTL.
func (s *ttlStrategy[V]) EvictionCandidate() (string, bool) {
	return selectStalest(s.insertion)
}

func (s *ttlStrategy[V]) Reset() {
	s.insertion.reset()
}
