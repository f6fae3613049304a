// Package segmap implements a segmented, lock-striped concurrent hash
// map: unbounded concurrent readers never block and never exclude
// writers, while writers on distinct partitions proceed in parallel.
//
// The design is ported from the partition-per-lock ("Segment") era of
// Java's java.util.concurrent.ConcurrentHashMap: each partition owns one
// bucket table and one lock; readers reach a bucket chain through an
// acquire-load of the partition's table and an acquire-load of the
// bucket head, and walk the chain with no synchronization at all.
// Writers on different partitions never contend with one another, and a
// partition being rehashed under its writer's lock never blocks readers
// walking its old table — the old chain is left untouched until every
// in-flight reader that might still hold a reference to it has had a
// chance to finish.
//
// A *Map must not be copied after first use.
package segmap

import (
	"math/rand"
	"reflect"
)

// Default tuning constants (spec §6).
const (
	DefaultLoadFactor       = 0.75
	DefaultConcurrencyLevel = 16
)

// Config holds constructor options collected by the With* functions.
type Config struct {
	initialCapacity  int
	loadFactor       float64
	concurrencyLevel int
}

// WithInitialCapacity sizes the map for sizeHint total expected entries,
// spread evenly across partitions (spec §6).
func WithInitialCapacity(sizeHint int) func(*Config) {
	return func(c *Config) { c.initialCapacity = sizeHint }
}

// WithLoadFactor sets the per-partition resize threshold fraction
// (spec §6). Defaults to DefaultLoadFactor.
func WithLoadFactor(loadFactor float64) func(*Config) {
	return func(c *Config) { c.loadFactor = loadFactor }
}

// WithConcurrencyLevel hints at the expected number of concurrently
// updating goroutines (spec §6); the partition count is the smallest
// power of two at least this large, clamped to MaxPartitions. Defaults
// to DefaultConcurrencyLevel.
func WithConcurrencyLevel(concurrencyLevel int) func(*Config) {
	return func(c *Config) { c.concurrencyLevel = concurrencyLevel }
}

// Map is a segmented concurrent hash map from K to V (spec §1–§3).
type Map[K comparable, V any] struct {
	dir      *directory[K, V]
	hash     HashFunc[K]
	seed     uint32
	valEqual func(V, V) bool
}

// New constructs a *Map using the built-in key hasher for K and
// reflect.DeepEqual for value comparisons.
func New[K comparable, V any](options ...func(*Config)) (*Map[K, V], error) {
	return NewWithHasher[K, V](nil, nil, options...)
}

// NewWithHasher constructs a *Map with an explicit key-hash and
// value-equality function, mirroring the teacher's
// NewMapOfWithHasher/ctrie's NewWithFuncs pattern: either argument may be
// nil to fall back to the default. valEqual is required for
// ReplaceIfEquals, RemoveIfEquals, and ContainsValue comparisons.
func NewWithHasher[K comparable, V any](
	hash HashFunc[K],
	valEqual func(V, V) bool,
	options ...func(*Config),
) (*Map[K, V], error) {
	cfg := &Config{loadFactor: DefaultLoadFactor, concurrencyLevel: DefaultConcurrencyLevel}
	for _, o := range options {
		o(cfg)
	}

	if cfg.loadFactor <= 0 {
		return nil, ErrInvalidLoadFactor
	}
	if cfg.concurrencyLevel <= 0 {
		return nil, ErrInvalidConcurrencyLevel
	}
	if cfg.initialCapacity < 0 {
		return nil, ErrInvalidInitialCapacity
	}

	partitionCount := clampPartitionCount(cfg.concurrencyLevel)
	bucketCapacity := clampCapacity(ceilDiv(cfg.initialCapacity, partitionCount))

	m := &Map[K, V]{
		dir:  newDirectory[K, V](partitionCount, bucketCapacity, cfg.loadFactor),
		seed: uint32(rand.Uint64()),
	}
	if hash != nil {
		m.hash = hash
	} else {
		m.hash = defaultHasher[K]()
	}
	if valEqual != nil {
		m.valEqual = valEqual
	} else {
		m.valEqual = reflectEqual[V]
	}
	return m, nil
}

// FromMap is the bulk-copy constructor (spec §6): equivalent to
// New[K, V](options...), sized with WithInitialCapacity(len(source)) unless
// options override it, followed by inserting every entry of source.
func FromMap[K comparable, V any](source map[K]V, options ...func(*Config)) (*Map[K, V], error) {
	opts := append([]func(*Config){WithInitialCapacity(len(source))}, options...)
	m, err := New[K, V](opts...)
	if err != nil {
		return nil, err
	}
	for k, v := range source {
		if _, _, err := m.Put(k, v); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func reflectEqual[V any](a, b V) bool {
	return reflect.DeepEqual(a, b)
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func clampPartitionCount(requested int) int {
	p := nextPowOf2(requested)
	if p > MaxPartitions {
		return MaxPartitions
	}
	return p
}

// partitionCount returns the (fixed, never-resized) number of partitions.
func (m *Map[K, V]) partitionCount() int { return m.dir.count() }

// spreadHash computes the 32-bit spread hash used for both partition
// selection (top bits) and bucket selection (low bits) within whichever
// partition is chosen (spec §4.1).
func (m *Map[K, V]) spreadHash(key K) uint32 {
	return spread(m.hash(key), m.seed)
}

func (m *Map[K, V]) partitionFor(spreadHash uint32) uint32 {
	return partitionIndex(spreadHash, m.partitionCount())
}

// Get returns the value associated with key, or ok=false if key is
// absent. Never blocks (spec §5).
func (m *Map[K, V]) Get(key K) (value V, ok bool, err error) {
	if isNilValue(key) {
		return value, false, ErrNilKey
	}
	h := m.spreadHash(key)
	p := m.dir.partitionAt(m.partitionFor(h))
	if p == nil {
		return value, false, nil
	}
	value, ok = p.get(key, h)
	return value, ok, nil
}

// ContainsKey reports whether key is present.
func (m *Map[K, V]) ContainsKey(key K) (bool, error) {
	_, ok, err := m.Get(key)
	return ok, err
}

// Put associates value with key, returning the previous value and
// whether one existed (spec §6 insert / §4.3.1 with onlyIfAbsent=false).
// The had-previous bool disambiguates a real previous value from the
// absent-marker case, since V's zero value may itself be a value callers
// legitimately store.
func (m *Map[K, V]) Put(key K, value V) (previous V, hadPrevious bool, err error) {
	return m.putImpl(key, value, false)
}

// PutIfAbsent inserts value only if key is not already present, returning
// the existing value and true if it was already present (spec §6
// insert-if-absent / §4.3.1 with onlyIfAbsent=true).
func (m *Map[K, V]) PutIfAbsent(key K, value V) (existing V, loaded bool, err error) {
	return m.putImpl(key, value, true)
}

func (m *Map[K, V]) putImpl(key K, value V, onlyIfAbsent bool) (old V, hadOld bool, err error) {
	if isNilValue(key) {
		return old, false, ErrNilKey
	}
	if isNilValue(value) {
		return old, false, ErrNilValue
	}
	h := m.spreadHash(key)
	p := m.dir.ensurePartition(m.partitionFor(h))
	old, hadOld = p.put(key, h, value, onlyIfAbsent)
	return old, hadOld, nil
}

// Remove unconditionally removes key, returning its previous value and
// whether it was present. Implements spec §6 remove.
func (m *Map[K, V]) Remove(key K) (previous V, removed bool, err error) {
	if isNilValue(key) {
		return previous, false, ErrNilKey
	}
	h := m.spreadHash(key)
	p := m.dir.partitionAt(m.partitionFor(h))
	if p == nil {
		return previous, false, nil
	}
	previous, removed = p.removeMatching(key, h, nil, nil)
	return previous, removed, nil
}

// RemoveIfEquals removes key only if its current value equals value,
// returning whether it was removed. Implements spec §6 remove-if-equals.
func (m *Map[K, V]) RemoveIfEquals(key K, value V) (removed bool, err error) {
	if isNilValue(key) {
		return false, ErrNilKey
	}
	if isNilValue(value) {
		return false, ErrNilValue
	}
	h := m.spreadHash(key)
	p := m.dir.partitionAt(m.partitionFor(h))
	if p == nil {
		return false, nil
	}
	_, removed = p.removeMatching(key, h, &value, m.valEqual)
	return removed, nil
}

// Replace overwrites key's value unconditionally if key is present,
// returning the previous value and whether it was present. Implements
// spec §6 replace.
func (m *Map[K, V]) Replace(key K, value V) (previous V, replaced bool, err error) {
	if isNilValue(key) {
		return previous, false, ErrNilKey
	}
	if isNilValue(value) {
		return previous, false, ErrNilValue
	}
	h := m.spreadHash(key)
	p := m.dir.partitionAt(m.partitionFor(h))
	if p == nil {
		return previous, false, nil
	}
	previous, replaced = p.replace(key, h, value)
	return previous, replaced, nil
}

// ReplaceIfEquals overwrites key's value only if its current value
// equals oldValue, returning whether it was replaced. Implements spec §6
// replace-if-equals.
func (m *Map[K, V]) ReplaceIfEquals(key K, oldValue, newValue V) (replaced bool, err error) {
	if isNilValue(key) {
		return false, ErrNilKey
	}
	if isNilValue(oldValue) || isNilValue(newValue) {
		return false, ErrNilValue
	}
	h := m.spreadHash(key)
	p := m.dir.partitionAt(m.partitionFor(h))
	if p == nil {
		return false, nil
	}
	return p.replaceIfEquals(key, h, oldValue, newValue, m.valEqual), nil
}

// Clear removes every entry. Idempotent: Clear(); Clear() has the same
// observable effect as a single Clear() (spec §8 "Idempotence of clear").
func (m *Map[K, V]) Clear() {
	m.dir.materializeAll()
	for i := 0; i < m.dir.count(); i++ {
		m.dir.partitionAt(uint32(i)).clear()
	}
}
