package segmap

import "errors"

// Invalid-argument errors (spec §7.1). Returned, never panicked: a
// rejected call leaves the map's state unchanged.
var (
	ErrNilKey                  = errors.New("segmap: nil key")
	ErrNilValue                = errors.New("segmap: nil value")
	ErrInvalidLoadFactor       = errors.New("segmap: load factor must be positive")
	ErrInvalidConcurrencyLevel = errors.New("segmap: concurrency level must be positive")
	ErrInvalidInitialCapacity  = errors.New("segmap: initial capacity must not be negative")
)

// ErrBadPartitionCount is a configuration error (spec §7.2): raised while
// reconstituting a serialized map whose partition-array length is not a
// power of two, is zero, or exceeds MaxPartitions.
var ErrBadPartitionCount = errors.New("segmap: partition count is not a valid power of two within bounds")

// Cursor misuse errors (spec §7.3). Both leave the cursor and the map
// usable; only the offending call fails.
var (
	ErrCursorNotStarted = errors.New("segmap: Remove called before Next")
	ErrCursorExhausted  = errors.New("segmap: cursor has no more entries")
)
