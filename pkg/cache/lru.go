package cache

import (
	"time"

	"github.com/nobletooth/loquat/pkg/utils"
)

// lruStrategy evicts the least-recently-used entry at capacity. It keeps a
// doubly linked recency order (front = least recent) with a key index, so both
// the access-path bookkeeping and the eviction pick are O(1). Recency alone never
// expires an entry: the lazy check only honors TTLs.
type lruStrategy[V any] struct {
	recency *orderList[V]
}

var _ Strategy[any] = (*lruStrategy[any])(nil)

func newLRUStrategy[V any]() *lruStrategy[V] {
	return &lruStrategy[V]{recency: newOrderList[V]()}
}

// OnAccess moves the entry to the most-recent position.
func (s *lruStrategy[V]) OnAccess(entry *Entry[V]) {
	if !s.recency.moveToBack(entry.Key, entry) {
		// The store only reports accesses for entries it handed to OnSet.
		utils.RaiseInvariant("lru", "untracked_access",
			"Accessed entry is missing from the recency order.", "key", entry.Key)
		s.recency.pushBack(entry)
	}
}

// OnSet registers the entry at the most-recent position; an overwrite of a tracked
// key relinks it there.
func (s *lruStrategy[V]) OnSet(entry *Entry[V]) {
	if !s.recency.moveToBack(entry.Key, entry) {
		s.recency.pushBack(entry)
	}
}

func (s *lruStrategy[V]) OnDelete(key string) {
	s.recency.remove(key)
}

// ShouldEvict checks TTL expiry only.
func (s *lruStrategy[V]) ShouldEvict(entry *Entry[V], now time.Time) bool {
	return entry.Expired(now)
}

// EvictionCandidate is always the least-recent position; recency is a total
// order, so there are no ties to break.
func (s *lruStrategy[V]) EvictionCandidate() (string, bool) {
	leastRecent := s.recency.front()
	if leastRecent == nil {
		return "", false
	}
	return leastRecent.Key, true
}

func (s *lruStrategy[V]) Reset() {
	s.recency.reset()
}
