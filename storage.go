package dechib

import "errors"

var (
	errNamespaceExists   = errors.New("namespace already exists")
	errNamespaceNotFound = errors.New("namespace not found")
)

// storage is the narrow contract this package requires from an embedded
// ordered key-value store: independent namespaces (one per table), get/put,
// sorted scans, and atomic multi-put batches. Bolt is the durable backend;
// a transient in-memory one backs tests and MemoryOnly engines.
type storage interface {
	// Namespaces lists the existing namespaces in sorted order.
	Namespaces() ([]string, error)

	// CreateNamespace creates a namespace, failing with errNamespaceExists
	// if it is already there.
	CreateNamespace(name string) error

	// Get retrieves a value by key. Returns nil if the key is not found and
	// errNamespaceNotFound if the namespace does not exist. The returned
	// slice is the caller's to keep.
	Get(ns string, key []byte) ([]byte, error)

	// Put stores a single key-value pair.
	Put(ns string, key, value []byte) error

	// Scan calls fn for every key-value pair in the namespace, in key order.
	// The slices are only valid for the duration of the call.
	Scan(ns string, fn func(key, value []byte) error) error

	// WriteBatch applies all of the batch's puts as one atomic unit: either
	// every put is visible afterwards or none is.
	WriteBatch(ns string, batch *writeBatch) error

	// Close closes the storage.
	Close() error
}

type kvPut struct {
	key   []byte
	value []byte
}

// writeBatch stages puts for a single atomic commit against one namespace.
type writeBatch struct {
	puts []kvPut
}

func newWriteBatch(capacity int) *writeBatch {
	return &writeBatch{puts: make([]kvPut, 0, capacity)}
}

func (b *writeBatch) Put(key, value []byte) {
	b.puts = append(b.puts, kvPut{key, value})
}

func (b *writeBatch) Len() int {
	return len(b.puts)
}
