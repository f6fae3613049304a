package segmap

import "sync"

// mutex guards a single partition. spec §3 calls this a "reentrant lock"
// because the Java source it is grounded on (ConcurrentHashMap.Segment
// extends ReentrantLock) uses one; this port never acquires a partition's
// lock while already holding it — rehash runs as an ordinary function call
// inside put's existing critical section, not as a nested Lock() — so a
// plain sync.Mutex provides the same behavior this implementation actually
// needs. Named distinctly from sync.Mutex only so every partition method
// reads as operating on "the partition's lock" rather than a generic one.
type mutex = sync.Mutex
