package dechib

import (
	"sync"
	"testing"
)

func TestCounterSequence(t *testing.T) {
	cs := newCounterSet()
	e := Entry{Table: "users", Column: "id"}
	cs.seed(e)

	deepEqual(t, must(cs.next(e)), uint64(1))
	deepEqual(t, must(cs.next(e)), uint64(2))
	deepEqual(t, must(cs.next(e)), uint64(3))
	deepEqual(t, must2(cs.peek(e)), uint64(4))
}

func TestCounterUnknownEntry(t *testing.T) {
	cs := newCounterSet()
	_, err := cs.next(Entry{Table: "users", Column: "id"})
	iserr(t, err, ErrNoCounter)

	if _, ok := cs.peek(Entry{Table: "users", Column: "id"}); ok {
		t.Errorf("** peeked an unseeded counter")
	}
}

func TestCounterConcurrent(t *testing.T) {
	const workers = 8
	const perWorker = 200

	cs := newCounterSet()
	e := Entry{Table: "users", Column: "id"}
	cs.seed(e)

	results := make(chan uint64, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				results <- must(cs.next(e))
			}
		}()
	}
	wg.Wait()
	close(results)

	// Every value in 1..workers*perWorker was handed out exactly once.
	seen := make(map[uint64]bool, workers*perWorker)
	for v := range results {
		if seen[v] {
			t.Fatalf("** value %d assigned twice", v)
		}
		seen[v] = true
	}
	for v := uint64(1); v <= workers*perWorker; v++ {
		if !seen[v] {
			t.Fatalf("** value %d never assigned", v)
		}
	}
}

func TestEntryOrdering(t *testing.T) {
	a := Entry{Table: "orders", Column: "id"}
	b := Entry{Table: "users", Column: "id"}
	c := Entry{Table: "users", Column: "user_id"}

	if a.Compare(b) >= 0 || b.Compare(c) >= 0 || b.Compare(b) != 0 {
		t.Errorf("** entry ordering broken")
	}
	deepEqual(t, b.String(), "users.id")
}
