package segmap

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used to pad partition so that two adjacent partitions
// never share a cache line, grounded on the teacher's identical use of
// golang.org/x/sys/cpu (mapof_opt_cachelinesize.go) to size the padding on
// mapOfTable/MapOf. Partitions are the unit of write contention here, so
// they are what needs the padding; bucketTable and node are reader-walked
// and not worth it.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})
