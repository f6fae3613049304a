package segmap

import (
	"sync/atomic"
	"unsafe"
)

// partition is one lock-guarded stripe of the map (spec §3 "Partition").
// Readers never take p.mu; they reach a partition's bucket table through
// an acquire-load of p.table and then walk chains with no synchronization
// at all. Writers on different partitions never contend with each other.
type partition[K comparable, V any] struct {
	//lint:ignore U1000 prevents false sharing between adjacent partitions
	pad [(CacheLineSize - unsafe.Sizeof(struct {
		table      atomic.Pointer[bucketTable[K, V]]
		mu         mutex
		count      atomic.Int64
		modStamp   atomic.Uint32
		threshold  int
		loadFactor float64
	}{})%CacheLineSize) % CacheLineSize]byte

	table      atomic.Pointer[bucketTable[K, V]]
	mu         mutex
	count      atomic.Int64
	modStamp   atomic.Uint32
	threshold  int // guarded by mu; recomputed whenever the table is rehashed
	loadFactor float64
}

func newPartition[K comparable, V any](bucketCapacity int, loadFactor float64) *partition[K, V] {
	p := &partition[K, V]{loadFactor: loadFactor}
	p.table.Store(newBucketTable[K, V](bucketCapacity))
	p.threshold = int(float64(bucketCapacity) * loadFactor)
	return p
}

// loadCount returns the partition's entry count without taking the lock.
// The aggregate protocol (§4.6) reads it in its unlocked passes; its
// mod-stamp stability check is what gives Size/IsEmpty their guarantee.
func (p *partition[K, V]) loadCount() int64 { return p.count.Load() }

// get is the wait-free reader path (spec §5 "Readers never block"): an
// acquire-load of the table, an acquire-load of the bucket head, then a
// plain chain walk following acquire-loaded next links.
func (p *partition[K, V]) get(key K, hash uint32) (V, bool) {
	table := p.table.Load()
	idx := table.bucketIndex(hash)
	for n := table.head(idx); n != nil; n = n.loadNext() {
		if n.hash == hash && n.key == key {
			return n.loadValue(), true
		}
	}
	var zero V
	return zero, false
}

// scanAndLock runs the scan-and-lock protocol (spec §4.4) for mutators
// that never need a speculative node (remove, replace, replaceIfEquals,
// removeIfEquals). It returns once p.mu is held.
func (p *partition[K, V]) scanAndLock(hintTable *bucketTable[K, V], hash uint32, key K) {
	p.scanAndLockImpl(hintTable, hash, key, false, *new(V))
}

// scanAndLockForPut runs the scan-and-lock protocol with speculative node
// allocation: while waiting for the lock, if the scan reaches the end of
// the chain without finding the key, a candidate node is pre-built so
// put's critical section can splice it in immediately instead of
// allocating while holding the lock.
func (p *partition[K, V]) scanAndLockForPut(hintTable *bucketTable[K, V], hash uint32, key K, value V) *node[K, V] {
	return p.scanAndLockImpl(hintTable, hash, key, true, value)
}

func (p *partition[K, V]) scanAndLockImpl(
	hintTable *bucketTable[K, V],
	hash uint32,
	key K,
	speculate bool,
	value V,
) *node[K, V] {
	if p.mu.TryLock() {
		return nil
	}

	idx := hintTable.bucketIndex(hash)
	head := hintTable.head(idx)
	n := head
	var candidate *node[K, V]
	retries := -1
	spins := 0

	for {
		if p.mu.TryLock() {
			return candidate
		}

		if retries < 0 {
			switch {
			case n == nil:
				if speculate && candidate == nil {
					candidate = newNode(hash, key, value)
				}
				retries = 0
			case n.hash == hash && n.key == key:
				retries = 0
			default:
				n = n.loadNext()
			}
			continue
		}

		retries++
		if retries > maxScanRetries {
			p.mu.Lock()
			return candidate
		}
		if retries&1 == 0 {
			if newHead := hintTable.head(idx); newHead != head {
				head = newHead
				n = head
				retries = -1
			}
		}
		delay(&spins)
	}
}

// put implements spec §4.3.1. onlyIfAbsent=false makes it the map's Put;
// onlyIfAbsent=true makes it PutIfAbsent.
func (p *partition[K, V]) put(key K, hash uint32, value V, onlyIfAbsent bool) (old V, hadOld bool) {
	hintTable := p.table.Load()
	candidate := p.scanAndLockForPut(hintTable, hash, key, value)
	defer p.mu.Unlock()

	// The scan above only examined a hint table; re-traverse under the
	// lock before trusting anything (spec §4.4: "no value found during
	// scanning is trusted").
	table := p.table.Load()
	idx := table.bucketIndex(hash)
	head := table.head(idx)

	for n := head; n != nil; n = n.loadNext() {
		if n.hash == hash && n.key == key {
			old, hadOld = n.loadValue(), true
			if !onlyIfAbsent {
				n.storeValue(value)
				p.modStamp.Add(1)
			}
			return old, hadOld
		}
	}

	toInsert := candidate
	if toInsert == nil {
		toInsert = newNode(hash, key, value)
	}

	count := p.count.Load()
	if count+1 > int64(p.threshold) && table.length() < MaxCapacity {
		p.rehashAndInsert(table, toInsert)
	} else {
		toInsert.storeNext(head)
		table.storeHead(idx, toInsert)
	}

	p.modStamp.Add(1)
	p.count.Store(count + 1)
	return old, false
}

// removeMatching implements both spec §4.3.2 variants: expected == nil
// removes unconditionally ("any"); a non-nil expected removes only if the
// current value equals *expected under equal.
func (p *partition[K, V]) removeMatching(key K, hash uint32, expected *V, equal func(V, V) bool) (old V, removed bool) {
	hintTable := p.table.Load()
	p.scanAndLock(hintTable, hash, key)
	defer p.mu.Unlock()

	table := p.table.Load()
	idx := table.bucketIndex(hash)

	var prev *node[K, V]
	for n := table.head(idx); n != nil; n = n.loadNext() {
		if n.hash == hash && n.key == key {
			cur := n.loadValue()
			if expected != nil && !equal(cur, *expected) {
				return old, false
			}
			succ := n.loadNext()
			if prev == nil {
				table.storeHead(idx, succ)
			} else {
				prev.storeNext(succ)
			}
			p.count.Add(-1)
			p.modStamp.Add(1)
			return cur, true
		}
		prev = n
	}
	return old, false
}

// replace implements spec §4.3.4: unconditional overwrite on a key match.
func (p *partition[K, V]) replace(key K, hash uint32, newVal V) (old V, hadOld bool) {
	hintTable := p.table.Load()
	p.scanAndLock(hintTable, hash, key)
	defer p.mu.Unlock()

	table := p.table.Load()
	idx := table.bucketIndex(hash)
	for n := table.head(idx); n != nil; n = n.loadNext() {
		if n.hash == hash && n.key == key {
			old = n.loadValue()
			n.storeValue(newVal)
			p.modStamp.Add(1)
			return old, true
		}
	}
	return old, false
}

// replaceIfEquals implements spec §4.3.3.
func (p *partition[K, V]) replaceIfEquals(key K, hash uint32, expected, newVal V, equal func(V, V) bool) bool {
	hintTable := p.table.Load()
	p.scanAndLock(hintTable, hash, key)
	defer p.mu.Unlock()

	table := p.table.Load()
	idx := table.bucketIndex(hash)
	for n := table.head(idx); n != nil; n = n.loadNext() {
		if n.hash == hash && n.key == key {
			if !equal(n.loadValue(), expected) {
				return false
			}
			n.storeValue(newVal)
			p.modStamp.Add(1)
			return true
		}
	}
	return false
}

// clear implements spec §4.3.5.
func (p *partition[K, V]) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	table := p.table.Load()
	for i := 0; i < table.length(); i++ {
		table.storeHead(uint32(i), nil)
	}
	p.count.Store(0)
	p.modStamp.Add(1)
}

// rehashAndInsert doubles the partition's bucket table and redistributes
// its chains (spec §4.5), then places the triggering put's new node into
// the doubled table. Must be called with p.mu held.
//
// A node's new bucket is either its old bucket index or that index plus
// the old length, because the new table is exactly double the old one.
// The longest chain suffix that all maps to the same new bucket
// ("lastRun") is relinked as-is; everything before it is cloned, since
// the original nodes must stay untouched for readers still walking the
// old table.
func (p *partition[K, V]) rehashAndInsert(old *bucketTable[K, V], inserted *node[K, V]) {
	newLen := old.length() << 1
	newTable := newBucketTable[K, V](newLen)
	newMask := newTable.mask()

	for i := 0; i < old.length(); i++ {
		head := old.head(uint32(i))
		if head == nil {
			continue
		}

		lastRunBucket := head.hash & newMask
		lastRun := head
		for n := head.loadNext(); n != nil; n = n.loadNext() {
			b := n.hash & newMask
			if b != lastRunBucket {
				lastRunBucket = b
				lastRun = n
			}
		}
		newTable.storeHead(lastRunBucket, lastRun)

		for n := head; n != lastRun; n = n.loadNext() {
			b := n.hash & newMask
			clone := n.cloneWithNext(newTable.head(b))
			newTable.storeHead(b, clone)
		}
	}

	insertedBucket := inserted.hash & newMask
	inserted.storeNext(newTable.head(insertedBucket))
	newTable.storeHead(insertedBucket, inserted)

	p.threshold = int(float64(newLen) * p.loadFactor)
	p.table.Store(newTable)
}
