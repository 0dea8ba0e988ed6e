package reviewstore

import (
	"sync"

	"github.com/google/uuid"
)

// productLocks hands out one mutex per product. Entries are dropped once no
// goroutine holds or waits on them, so the map only grows with live contention.
type productLocks struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newProductLocks() *productLocks {
	return &productLocks{entries: make(map[uuid.UUID]*lockEntry)}
}

// lock blocks until the caller owns the product and returns the release func
func (l *productLocks) lock(productID uuid.UUID) func() {
	l.mu.Lock()
	e, ok := l.entries[productID]
	if !ok {
		e = &lockEntry{}
		l.entries[productID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, productID)
		}
		l.mu.Unlock()
	}
}

func (l *productLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
