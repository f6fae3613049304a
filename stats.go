package segmap

import (
	"fmt"
	"strings"
)

// MapStats is diagnostic information about a Map's current shape,
// grounded on the teacher's MapOf.Stats/MapStats (mapof.go), generalized
// from "buckets" to "partitions" for the segmented design.
//
// Warning: intended for diagnostics, not for production decision-making;
// fields may change even between minor releases.
type MapStats struct {
	// Partitions is the number of partitions. Stats materializes every
	// partition before scanning, so this is always the map's full
	// partition count, written to or not.
	Partitions int
	// TotalBuckets is the sum of every materialized partition's
	// current bucket-table length.
	TotalBuckets int
	// EmptyBuckets is the number of buckets across all materialized
	// partitions holding no entries.
	EmptyBuckets int
	// Size is the exact entry count, taken under the aggregate
	// protocol's lock-all fallback (spec §4.6) so it is authoritative
	// at the instant it is read, unlike Map.Size's best-effort passes.
	Size int
	// MinChain and MaxChain are the shortest and longest observed
	// bucket chain lengths across all materialized partitions.
	MinChain int
	MaxChain int
}

// Stats computes a snapshot of the map's current shape. It locks every
// partition (forcing materialization of all of them, like the
// serialization and aggregate-protocol lock-all paths) for the duration
// of the scan.
func (m *Map[K, V]) Stats() *MapStats {
	n := m.lockAllPartitions()
	defer m.unlockAllPartitions(n)

	stats := &MapStats{Partitions: n, MinChain: -1}
	for i := 0; i < n; i++ {
		table := m.dir.partitionAt(uint32(i)).table.Load()
		stats.TotalBuckets += table.length()
		for b := 0; b < table.length(); b++ {
			chainLen := 0
			for e := table.head(uint32(b)); e != nil; e = e.loadNext() {
				chainLen++
			}
			stats.Size += chainLen
			if chainLen == 0 {
				stats.EmptyBuckets++
			}
			if stats.MinChain < 0 || chainLen < stats.MinChain {
				stats.MinChain = chainLen
			}
			if chainLen > stats.MaxChain {
				stats.MaxChain = chainLen
			}
		}
	}
	if stats.MinChain < 0 {
		stats.MinChain = 0
	}
	return stats
}

// String returns a human-readable rendering of s, in the same
// line-per-field style as the teacher's MapStats.ToString.
func (s *MapStats) String() string {
	var sb strings.Builder
	sb.WriteString("MapStats{\n")
	fmt.Fprintf(&sb, "Partitions:   %d\n", s.Partitions)
	fmt.Fprintf(&sb, "TotalBuckets: %d\n", s.TotalBuckets)
	fmt.Fprintf(&sb, "EmptyBuckets: %d\n", s.EmptyBuckets)
	fmt.Fprintf(&sb, "Size:         %d\n", s.Size)
	fmt.Fprintf(&sb, "MinChain:     %d\n", s.MinChain)
	fmt.Fprintf(&sb, "MaxChain:     %d\n", s.MaxChain)
	sb.WriteString("}\n")
	return sb.String()
}
