package cache

import (
	"time"
)

// swrRefreshQueueSize bounds the engine-owned refresh queue. Signals beyond it are
// dropped and counted; a stale entry keeps being served either way.
const swrRefreshQueueSize = 256

// swrStrategy implements stale-while-revalidate: entries are never removed by the
// lazy check or by sweeps, only by capacity eviction. A read of a stale entry
// still returns the value synchronously and emits a non-blocking refresh signal so
// the caller can recompute it out-of-band. The guarantee this buys: any key ever
// successfully set stays servable until capacity evicts it, even past its
// freshness window.
type swrStrategy[V any] struct {
	namespace string
	insertion *orderList[V]
	// owned is non-nil when the engine owns the refresh queue; sink is where
	// signals actually go (the caller-supplied queue or `owned`).
	owned chan RefreshRequest
	sink  chan<- RefreshRequest
}

var _ Strategy[any] = (*swrStrategy[any])(nil)
var _ refreshSource = (*swrStrategy[any])(nil)

// refreshSource is implemented by strategies that emit refresh signals; the store
// uses it to expose the engine-owned queue to callers.
type refreshSource interface {
	refreshes() <-chan RefreshRequest
}

func newSWRStrategy[V any](namespace string, queue chan<- RefreshRequest) *swrStrategy[V] {
	s := &swrStrategy[V]{namespace: namespace, insertion: newOrderList[V]()}
	if queue != nil {
		s.sink = queue
	} else {
		s.owned = make(chan RefreshRequest, swrRefreshQueueSize)
		s.sink = s.owned
	}
	return s
}

func (s *swrStrategy[V]) refreshes() <-chan RefreshRequest {
	return s.owned
}

// OnAccess emits a refresh signal when the entry is read past its freshness
// window. The send never blocks: a full queue drops the signal and bumps the
// dropped counter instead of stalling the read.
func (s *swrStrategy[V]) OnAccess(entry *Entry[V]) {
	if !entry.Expired(time.Now()) {
		return
	}
	select {
	case s.sink <- RefreshRequest{Namespace: s.namespace, Key: entry.Key}:
		refreshSignalsMetric.WithLabelValues(s.namespace, "queued").Inc()
	default:
		refreshSignalsMetric.WithLabelValues(s.namespace, "dropped").Inc()
	}
}

func (s *swrStrategy[V]) OnSet(entry *Entry[V]) {
	if !s.insertion.moveToBack(entry.Key, entry) {
		s.insertion.pushBack(entry)
	}
}

func (s *swrStrategy[V]) OnDelete(key string) {
	s.insertion.remove(key)
}

// ShouldEvict always declines: staleness alone never removes an SWR entry.
func (s *swrStrategy[V]) ShouldEvict(*Entry[V], time.Time) bool {
	return false
}

// EvictionCandidate sacrifices the most-stale entry first, falling back to the
// oldest when nothing carries a TTL (same scan as the TTL strategy).
func (s *swrStrategy[V]) EvictionCandidate() (string, bool) {
	return selectStalest(s.insertion)
}

func (s *swrStrategy[V]) Reset() {
	s.insertion.reset()
}
