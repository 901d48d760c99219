package dechib

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Entry identifies one (table, column) pair. It keys the auto-increment
// counter set and is totally ordered so it can live in sorted containers.
type Entry struct {
	Table  string
	Column string
}

func (e Entry) String() string {
	return e.Table + "." + e.Column
}

func (e Entry) Compare(other Entry) int {
	if c := strings.Compare(e.Table, other.Table); c != 0 {
		return c
	}
	return strings.Compare(e.Column, other.Column)
}

// counterSet holds the process-local auto-increment counters. Counters exist
// only for the lifetime of the engine instance: they are seeded when a table
// is created and are NOT reconstructed when a store is reopened. next on an
// unseeded entry reports ErrNoCounter.
type counterSet struct {
	mu sync.RWMutex
	m  map[Entry]*atomic.Uint64
}

func newCounterSet() *counterSet {
	return &counterSet{m: make(map[Entry]*atomic.Uint64)}
}

// seed installs a fresh counter for e starting at 1.
func (cs *counterSet) seed(e Entry) {
	c := new(atomic.Uint64)
	c.Store(1)
	cs.mu.Lock()
	cs.m[e] = c
	cs.mu.Unlock()
}

func (cs *counterSet) get(e Entry) (*atomic.Uint64, bool) {
	cs.mu.RLock()
	c, ok := cs.m[e]
	cs.mu.RUnlock()
	return c, ok
}

// next atomically assigns the next value for e. The returned value is the
// pre-increment one, so a counter seeded at 1 hands out 1, 2, 3, …
// Concurrent callers observe a strictly increasing, non-repeating sequence.
//
// The insert pipeline fetches the atomic once per call via get and
// increments it directly per row; next is the one-shot form of the same
// fetch-and-add.
func (cs *counterSet) next(e Entry) (uint64, error) {
	c, ok := cs.get(e)
	if !ok {
		return 0, tableErrf(e.Table, e.Column, ErrNoCounter, "")
	}
	return c.Add(1) - 1, nil
}

// peek reports the counter's current value (the next one to be assigned).
func (cs *counterSet) peek(e Entry) (uint64, bool) {
	c, ok := cs.get(e)
	if !ok {
		return 0, false
	}
	return c.Load(), true
}
