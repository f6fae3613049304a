package segmap

import "sync/atomic"

// MaxPartitions bounds the partition directory's length (spec §3).
const MaxPartitions = 1 << 16

// directory is the fixed-length partition array (spec §3 "Partition
// directory", §4.2). Partition 0 is built eagerly at construction; every
// other slot starts nil and is materialized on first write via
// compare-and-swap, using partition 0's shape (bucket capacity, load
// factor) as a prototype. The array itself is never reallocated — only
// its slots are published lazily.
type directory[K comparable, V any] struct {
	partitions []atomic.Pointer[partition[K, V]]
}

func newDirectory[K comparable, V any](partitionCount, bucketCapacity int, loadFactor float64) *directory[K, V] {
	d := &directory[K, V]{partitions: make([]atomic.Pointer[partition[K, V]], partitionCount)}
	d.partitions[0].Store(newPartition[K, V](bucketCapacity, loadFactor))
	return d
}

func (d *directory[K, V]) count() int { return len(d.partitions) }

// partitionAt returns the partition at i, or nil if it has never been
// written to. Used by read paths, which must never force materialization
// of a partition a writer has not touched (spec §9 "Lazy partition
// construction vs. serialization").
func (d *directory[K, V]) partitionAt(i uint32) *partition[K, V] {
	return d.partitions[i].Load()
}

// ensurePartition returns the partition at i, materializing it on demand
// (spec §4.2). The prototype for shape is always partition 0, which is
// guaranteed to exist from construction.
func (d *directory[K, V]) ensurePartition(i uint32) *partition[K, V] {
	if p := d.partitions[i].Load(); p != nil {
		return p
	}

	proto := d.partitions[0].Load()
	candidate := newPartition[K, V](proto.table.Load().length(), proto.loadFactor)

	if d.partitions[i].CompareAndSwap(nil, candidate) {
		return candidate
	}
	// Lost the race: another goroutine already materialized this slot.
	return d.partitions[i].Load()
}

// materializeAll forces every partition into existence. Used by the
// aggregate protocol's lock-all fallback (spec §4.6) and by serialization
// (spec §6), both of which must observe every partition regardless of
// whether a writer has touched it yet.
func (d *directory[K, V]) materializeAll() {
	for i := range d.partitions {
		d.ensurePartition(uint32(i))
	}
}
