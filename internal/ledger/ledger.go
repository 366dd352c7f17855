// Package ledger records which notifications already raised a device alert.
//
// A Ledger lives for the process lifetime and is never persisted, so a
// restart re-arms every ID. With a positive bound the oldest entries are
// evicted first; the default is unbounded.
package ledger

import "sync"

// Ledger is a concurrency-safe set of alerted notification IDs.
type Ledger struct {
	mu    sync.Mutex
	seen  map[int64]struct{}
	order []int64
	max   int
}

// New creates an empty ledger. maxEntries <= 0 means unbounded.
func New(maxEntries int) *Ledger {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &Ledger{
		seen: make(map[int64]struct{}),
		max:  maxEntries,
	}
}

// MarkIfNew records id and reports whether it was not recorded before.
// Exactly one caller observes true per id while it stays in the ledger.
func (l *Ledger) MarkIfNew(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[id]; ok {
		return false
	}
	l.seen[id] = struct{}{}
	l.order = append(l.order, id)
	l.evict()
	return true
}

// Len returns the number of recorded IDs.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

func (l *Ledger) evict() {
	if l.max == 0 {
		return
	}
	for len(l.order) > l.max {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.seen, oldest)
	}
}
