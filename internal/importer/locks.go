package importer

import "sync"

// donorLocks serializes all writes touching one donor. Duplicate detection
// and the aggregate recompute are read-modify-write sequences; two uploads
// carrying rows for the same donor must not interleave them. Keyed by the
// normalized donor email so the lock exists before the donor row does.
type donorLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDonorLocks() *donorLocks {
	return &donorLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for key and returns the matching unlock func.
// Entries are kept for the process lifetime; the map is bounded by the
// number of distinct donors seen.
func (l *donorLocks) acquire(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
