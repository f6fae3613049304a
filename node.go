package segmap

import "sync/atomic"

// node is a singly-linked chain entry inside a bucket. hash and key are
// fixed for the node's lifetime; value and next are published with
// release-store semantics (atomic.Pointer) so that a reader who acquires
// a reference to the node via an acquire-load of a bucket head or a
// predecessor's next sees every store that happened-before the publishing
// release.
//
// A node, once unlinked from a live table, is never mutated again and is
// never relinked; concurrent readers that already hold a reference to it
// may keep walking into its (frozen) successor chain harmlessly.
type node[K comparable, V any] struct {
	hash  uint32
	key   K
	value atomic.Pointer[V]
	next  atomic.Pointer[node[K, V]]
}

func newNode[K comparable, V any](hash uint32, key K, value V) *node[K, V] {
	n := &node[K, V]{hash: hash, key: key}
	n.value.Store(&value)
	return n
}

// loadValue returns a copy of the node's current value.
func (n *node[K, V]) loadValue() V {
	return *n.value.Load()
}

// storeValue publishes a new value with release-store semantics.
func (n *node[K, V]) storeValue(v V) {
	n.value.Store(&v)
}

// loadNext acquire-loads the successor link.
func (n *node[K, V]) loadNext() *node[K, V] {
	return n.next.Load()
}

// storeNext release-publishes the successor link.
func (n *node[K, V]) storeNext(next *node[K, V]) {
	n.next.Store(next)
}

// cloneWithNext returns a fresh node carrying the same hash/key/value but
// a new successor. Used by rehash to splice nodes that precede the
// longest same-destination run (spec §4.5) without mutating the original,
// which may still be visible to in-flight readers of the old table.
func (n *node[K, V]) cloneWithNext(next *node[K, V]) *node[K, V] {
	c := &node[K, V]{hash: n.hash, key: n.key}
	c.value.Store(n.value.Load())
	c.next.Store(next)
	return c
}
