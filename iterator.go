package segmap

// Cursor is a weakly consistent traversal over a Map (spec §4.7). It
// visits partitions in reverse index order and, within each partition,
// buckets in reverse index order; within a bucket it walks the chain
// head-to-tail. It is guaranteed to return every key present when the
// cursor was created and still present when the cursor reaches it; it
// may or may not return keys inserted afterward; it never returns a key
// twice, and it never fails because of a concurrent structural change —
// only Remove (misused) and Advance (called past exhaustion) fail, and
// only that call, leaving the cursor and the map otherwise usable.
type Cursor[K comparable, V any] struct {
	m *Map[K, V]

	nextPartIdx   int
	table         *bucketTable[K, V]
	nextBucketIdx int
	pendingNode   *node[K, V]

	cur       *node[K, V]
	lastKey   K
	hasLast   bool
	exhausted bool
}

func newCursor[K comparable, V any](m *Map[K, V]) *Cursor[K, V] {
	return &Cursor[K, V]{m: m, nextPartIdx: m.partitionCount() - 1, nextBucketIdx: -1}
}

// Advance moves the cursor to the next entry, or returns ErrCursorExhausted
// if there is none. After a successful Advance, Key/Value/Entry describe
// the entry just reached.
func (c *Cursor[K, V]) Advance() error {
	if c.exhausted {
		return ErrCursorExhausted
	}
	for {
		if c.pendingNode != nil {
			c.cur = c.pendingNode
			c.pendingNode = c.cur.loadNext()
			c.lastKey = c.cur.key
			c.hasLast = true
			return nil
		}
		if c.table == nil || c.nextBucketIdx < 0 {
			if !c.advancePartition() {
				c.exhausted = true
				return ErrCursorExhausted
			}
			continue
		}
		head := c.table.head(uint32(c.nextBucketIdx))
		c.nextBucketIdx--
		if head != nil {
			c.pendingNode = head
		}
	}
}

// advancePartition moves to the next (in reverse index order) partition
// that has ever been materialized, capturing whichever bucket table
// version is live right now. A partition nobody has written to is
// indistinguishable from an empty one and is simply skipped, never
// forced into existence — a read path must not materialize partitions
// (spec §9).
func (c *Cursor[K, V]) advancePartition() bool {
	for c.nextPartIdx >= 0 {
		idx := c.nextPartIdx
		c.nextPartIdx--
		p := c.m.dir.partitionAt(uint32(idx))
		if p == nil {
			continue
		}
		c.table = p.table.Load()
		c.nextBucketIdx = c.table.length() - 1
		return true
	}
	c.table = nil
	return false
}

// Next is a convenience wrapper around Advance for the common for-loop
// idiom: for cur.Next() { ... }. It discards the distinction between
// "no more entries" and a future richer error, matching database/sql's
// Rows.Next() convention.
func (c *Cursor[K, V]) Next() bool {
	return c.Advance() == nil
}

// Key returns the key of the entry last reached by Advance/Next.
func (c *Cursor[K, V]) Key() K { return c.cur.key }

// Value returns the value of the entry last reached by Advance/Next.
func (c *Cursor[K, V]) Value() V { return c.cur.loadValue() }

// Entry returns a write-through MapEntry for the key last reached by
// Advance/Next.
func (c *Cursor[K, V]) Entry() MapEntry[K, V] { return MapEntry[K, V]{m: c.m, key: c.cur.key} }

// Remove deletes the last key the cursor returned, by delegating to the
// map's key-addressed Remove (spec §4.7). It is a structural-misuse
// error (spec §7.3) to call Remove before Advance/Next has ever
// succeeded.
func (c *Cursor[K, V]) Remove() error {
	if !c.hasLast {
		return ErrCursorNotStarted
	}
	_, _, err := c.m.Remove(c.lastKey)
	return err
}

// MapEntry is a write-through view of a single key's current binding,
// returned by Cursor.Entry (spec §4 "Supplemented features",
// WriteThroughEntry).
type MapEntry[K comparable, V any] struct {
	m   *Map[K, V]
	key K
}

// Key returns the entry's key.
func (e MapEntry[K, V]) Key() K { return e.key }

// Value returns the key's current value in the map, which may differ
// from the value observed when the entry was produced if another
// goroutine has since mutated it.
func (e MapEntry[K, V]) Value() (V, error) {
	v, _, err := e.m.Get(e.key)
	return v, err
}

// SetValue writes v through to the map under e.Key(), by calling the
// map's Put — exactly as the Java source's WriteThroughEntry.setValue
// does. This resolves spec §9's open question: the write always takes
// effect and represents "this key's current value", even if the
// underlying node the entry was produced from has since been unlinked
// by a remove, a replace, or a rehash clone; it is not a no-op in that
// case, and it inserts the key anew if a concurrent Remove raced it out
// of the map first.
func (e MapEntry[K, V]) SetValue(v V) error {
	_, _, err := e.m.Put(e.key, v)
	return err
}
