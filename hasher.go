package segmap

import (
	"fmt"
	"hash/maphash"
)

// HashFunc computes a key's 32-bit base hash, analogous to Java's
// Object.hashCode() (spec §4.1). The map applies its own per-instance
// seed and avalanche mix on top of whatever this returns (see spread in
// spread.go); a HashFunc only needs to distinguish unequal keys, not
// defend against adversarial collisions itself.
type HashFunc[K comparable] func(key K) uint32

// enableStringHashSpread gates the dedicated string-hashing path
// described in spec §4.1/§9 ("Keys of string type have a dedicated
// spread path gated by a global configuration flag"). It is a
// process-wide flag because the underlying maphash.Seed is process-wide
// too; disabling it falls back to the generic formatted-bytes hasher.
var enableStringHashSpread = true

// DisableStringHashSpread turns off the dedicated hash/maphash-backed
// path for string keys for the remainder of the process. Only
// *Map[string, V] instances created with the default hasher after the call
// are affected: a map keeps the hash function chosen at its construction,
// and maps given an explicit hash function through NewWithHasher are never
// affected.
func DisableStringHashSpread() { enableStringHashSpread = false }

var processMaphashSeed = maphash.MakeSeed()

// stringHash hashes a string with the process-wide maphash seed.
// Grounded on _examples/rogpeppe-generic/ctrie's StringHash/BytesHash
// helpers.
func stringHash(s string) uint64 {
	var h maphash.Hash
	h.SetSeed(processMaphashSeed)
	h.WriteString(s)
	return h.Sum64()
}

// defaultHasher returns the built-in base-hash function for common
// comparable key kinds, following the teacher's type-switch-over-
// any(*new(K)) approach (pb's defaultHasher in mapof.go) rather than
// reaching into runtime-internal type metadata: a type switch on the
// zero value of K is just as precise for the kinds special-cased here
// and carries no risk of breaking across Go versions.
func defaultHasher[K comparable]() HashFunc[K] {
	var zero K
	switch any(zero).(type) {
	case string:
		if enableStringHashSpread {
			var fn HashFunc[string] = func(key string) uint32 {
				h := stringHash(key)
				return uint32(h) ^ uint32(h>>32)
			}
			return any(fn).(HashFunc[K])
		}
		var fn HashFunc[string] = func(key string) uint32 { return genericHash(key) }
		return any(fn).(HashFunc[K])
	case int:
		var fn HashFunc[int] = intHasher[int]
		return any(fn).(HashFunc[K])
	case int8:
		var fn HashFunc[int8] = intHasher[int8]
		return any(fn).(HashFunc[K])
	case int16:
		var fn HashFunc[int16] = intHasher[int16]
		return any(fn).(HashFunc[K])
	case int32:
		var fn HashFunc[int32] = intHasher[int32]
		return any(fn).(HashFunc[K])
	case int64:
		var fn HashFunc[int64] = intHasher[int64]
		return any(fn).(HashFunc[K])
	case uint:
		var fn HashFunc[uint] = intHasher[uint]
		return any(fn).(HashFunc[K])
	case uint8:
		var fn HashFunc[uint8] = intHasher[uint8]
		return any(fn).(HashFunc[K])
	case uint16:
		var fn HashFunc[uint16] = intHasher[uint16]
		return any(fn).(HashFunc[K])
	case uint32:
		var fn HashFunc[uint32] = intHasher[uint32]
		return any(fn).(HashFunc[K])
	case uint64:
		var fn HashFunc[uint64] = intHasher[uint64]
		return any(fn).(HashFunc[K])
	case uintptr:
		var fn HashFunc[uintptr] = intHasher[uintptr]
		return any(fn).(HashFunc[K])
	default:
		return genericHash[K]
	}
}

// intHasher is shared by every built-in integer kind: folding the high
// and low 32 bits together is enough of a base hash, since the real
// collision resistance comes from spread's avalanche mix.
func intHasher[T integerKind](key T) uint32 {
	return uint32(key) ^ uint32(uint64(key)>>32)
}

type integerKind interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// genericHash is the fallback for key kinds with no dedicated path: it
// formats the key and hashes the resulting bytes. Adequate for
// correctness (equal keys format identically) though not competitive on
// speed, which is why callers with a hot non-builtin key type are
// expected to supply their own hash function through NewWithHasher instead.
func genericHash[K any](key K) uint32 {
	var h maphash.Hash
	h.SetSeed(processMaphashSeed)
	_, _ = h.WriteString(fmt.Sprintf("%#v", key))
	v := h.Sum64()
	return uint32(v) ^ uint32(v>>32)
}
