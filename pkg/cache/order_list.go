package cache

import "github.com/nobletooth/loquat/pkg/utils"

// orderNode is a node in a strategy's ordering index.
type orderNode[V any] struct {
	prev, next *orderNode[V]
	entry      *Entry[V]
}

// orderList is a doubly linked list of cache entries plus a key-to-node index. It
// gives the strategies O(1) append, O(1) move-to-back, and O(1) removal by key:
// the LRU strategy reads it as a recency order (front = least recent), the TTL and
// SWR strategies as an insertion order. The owning store serializes all access.
type orderList[V any] struct {
	head, tail *orderNode[V]
	index      map[string]*orderNode[V]
}

func newOrderList[V any]() *orderList[V] {
	return &orderList[V]{index: make(map[string]*orderNode[V])}
}

// len returns the number of tracked entries.
func (l *orderList[V]) len() int {
	return len(l.index)
}

// front returns the entry at the front of the order, or nil when empty.
func (l *orderList[V]) front() *Entry[V] {
	if l.head == nil {
		return nil
	}
	return l.head.entry
}

// pushBack appends an entry at the back of the order. The key must not already be
// tracked; the store guarantees that by routing overwrites through moveToBack.
func (l *orderList[V]) pushBack(entry *Entry[V]) {
	if _, tracked := l.index[entry.Key]; tracked {
		utils.RaiseInvariant("orderlist", "duplicate_key",
			"Entry is already tracked by the ordering index.", "key", entry.Key)
		l.remove(entry.Key)
	}
	node := &orderNode[V]{entry: entry, prev: l.tail}
	if l.tail != nil {
		l.tail.next = node
	} else { // List was empty.
		l.head = node
	}
	l.tail = node
	l.index[entry.Key] = node
}

// moveToBack relinks the node for the given key to the back of the order and
// points it at the given entry (overwrites replace the entry object). Returns
// false when the key is not tracked.
func (l *orderList[V]) moveToBack(key string, entry *Entry[V]) bool {
	node, tracked := l.index[key]
	if !tracked {
		return false
	}
	node.entry = entry
	if node == l.tail {
		return true
	}
	// Unlink.
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	node.next.prev = node.prev // node != tail, so node.next is non-nil.
	// Relink at the back.
	node.prev = l.tail
	node.next = nil
	l.tail.next = node
	l.tail = node
	return true
}

// remove unlinks the node for the given key. Returns false when the key is not
// tracked.
func (l *orderList[V]) remove(key string) bool {
	node, tracked := l.index[key]
	if !tracked {
		return false
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else { // Node is the head.
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else { // Node is the tail.
		l.tail = node.prev
	}
	node.prev, node.next = nil, nil
	delete(l.index, key)
	return true
}

// each walks the order from front to back, stopping early when fn returns false.
func (l *orderList[V]) each(fn func(*Entry[V]) bool) {
	for node := l.head; node != nil; node = node.next {
		if !fn(node.entry) {
			return
		}
	}
}

// reset drops all tracked entries.
func (l *orderList[V]) reset() {
	l.head, l.tail = nil, nil
	l.index = make(map[string]*orderNode[V])
}
