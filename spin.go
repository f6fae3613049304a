package segmap

import (
	"runtime"
	"time"
)

// delay backs off a writer spinning while it waits to acquire a partition
// lock. Short spins yield the processor (cheap, keeps the cache lines the
// scan just warmed hot); once the caller has spun enough times in a row
// without success, fall back to a real sleep so the goroutine stops
// burning CPU against a long-held lock.
//
// The teacher (pb's mapof.go `delay`) reaches for a go:linkname into the
// runtime's private spin primitives for this; that is tied to the exact
// layout of a specific Go runtime and cannot be verified without
// compiling against it, so this port uses the exported equivalents
// (runtime.Gosched for the spin, time.Sleep for the backoff) instead. See
// DESIGN.md.
func delay(spins *int) {
	const yieldAfter = 16
	const sleepFor = 50 * time.Microsecond
	if *spins < yieldAfter {
		runtime.Gosched()
		*spins++
		return
	}
	time.Sleep(sleepFor)
	*spins = 0
}

// maxScanRetries is the scan-and-lock retry budget (spec §4.4): 64 on
// multiprocessor hosts, 1 on uniprocessor ones, where spinning before a
// blocking acquire cannot pay off because there is no other core to make
// progress on the lock holder's behalf.
var maxScanRetries = func() int {
	if runtime.GOMAXPROCS(0) > 1 {
		return 64
	}
	return 1
}()
