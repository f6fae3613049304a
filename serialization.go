package segmap

import (
	"encoding/gob"
	"io"
)

// serializedHeader captures the partition-array shape needed to
// reconstruct compatible partition counts and growth behavior (spec §6
// "Persisted state layout").
type serializedHeader struct {
	PartitionCount int
	LoadFactor     float64
}

// serializedEntry frames one (key, value) pair, or — when End is true —
// the sentinel record terminating the stream. A sentinel record is used
// instead of a (nil, nil) pair because K/V need not be nilable kinds
// (spec §6: "terminated by a (null, null) pair").
type serializedEntry[K comparable, V any] struct {
	End   bool
	Key   K
	Value V
}

// WriteTo serializes m using the legacy gob-based framing described in
// spec §6: the partition shape, forcing materialization of every
// partition first, followed by every (key, value) pair in arbitrary
// order, terminated by a sentinel record. Grounded on
// _examples/ValentinKolb-dKV/rpc/serializer/gobimpl.go, which wraps
// encoding/gob the same way behind a Serializer interface.
func (m *Map[K, V]) WriteTo(w io.Writer) error {
	n := m.lockAllPartitions()
	defer m.unlockAllPartitions(n)

	enc := gob.NewEncoder(w)
	header := serializedHeader{PartitionCount: n, LoadFactor: m.dir.partitionAt(0).loadFactor}
	if err := enc.Encode(header); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		table := m.dir.partitionAt(uint32(i)).table.Load()
		for b := 0; b < table.length(); b++ {
			for entry := table.head(uint32(b)); entry != nil; entry = entry.loadNext() {
				rec := serializedEntry[K, V]{Key: entry.key, Value: entry.loadValue()}
				if err := enc.Encode(rec); err != nil {
					return err
				}
			}
		}
	}

	return enc.Encode(serializedEntry[K, V]{End: true})
}

// ReadFrom reconstitutes a Map previously written by WriteTo. Every
// partition is resized to MinBucketCapacity regardless of how full it
// was when serialized, letting it grow organically from new writes
// (spec §6), and entries are inserted one at a time through the normal
// Put path — so the reconstituted map's contents equal the original's
// (spec §8 "Round-trip"), even though its internal bucket-table sizes
// generally won't.
func ReadFrom[K comparable, V any](r io.Reader) (*Map[K, V], error) {
	dec := gob.NewDecoder(r)

	var header serializedHeader
	if err := dec.Decode(&header); err != nil {
		return nil, err
	}
	if header.PartitionCount <= 0 || header.PartitionCount > MaxPartitions ||
		header.PartitionCount&(header.PartitionCount-1) != 0 {
		return nil, ErrBadPartitionCount
	}

	m, err := New[K, V](
		WithConcurrencyLevel(header.PartitionCount),
		WithLoadFactor(header.LoadFactor),
		WithInitialCapacity(0),
	)
	if err != nil {
		return nil, err
	}

	for {
		var rec serializedEntry[K, V]
		if err := dec.Decode(&rec); err != nil {
			return nil, err
		}
		if rec.End {
			return m, nil
		}
		if _, _, err := m.Put(rec.Key, rec.Value); err != nil {
			return nil, err
		}
	}
}
