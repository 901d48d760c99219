package dechib

import (
	"bytes"
	"fmt"
	"slices"
	"sync"
)

// memStorage is a transient in-memory storage implementation. It backs
// MemoryOnly engines and tests; everything is lost on Close.
type memStorage struct {
	mu         sync.RWMutex
	namespaces map[string]map[string][]byte
	closed     bool
}

func newMemStorage() storage {
	return &memStorage{namespaces: make(map[string]map[string][]byte)}
}

func (s *memStorage) Namespaces() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("storage closed")
	}
	names := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (s *memStorage) CreateNamespace(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("storage closed")
	}
	if s.namespaces[name] != nil {
		return errNamespaceExists
	}
	s.namespaces[name] = make(map[string][]byte)
	return nil
}

func (s *memStorage) Get(ns string, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("storage closed")
	}
	m := s.namespaces[ns]
	if m == nil {
		return nil, errNamespaceNotFound
	}
	return bytes.Clone(m[string(key)]), nil
}

func (s *memStorage) Put(ns string, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("storage closed")
	}
	m := s.namespaces[ns]
	if m == nil {
		return errNamespaceNotFound
	}
	m[string(key)] = bytes.Clone(value)
	return nil
}

func (s *memStorage) Scan(ns string, fn func(key, value []byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("storage closed")
	}
	m := s.namespaces[ns]
	if m == nil {
		return errNamespaceNotFound
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := fn([]byte(k), m[k]); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch applies every put while holding the write lock, which makes the
// batch atomic with respect to concurrent readers.
func (s *memStorage) WriteBatch(ns string, batch *writeBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("storage closed")
	}
	m := s.namespaces[ns]
	if m == nil {
		return errNamespaceNotFound
	}
	for _, put := range batch.puts {
		m[string(put.key)] = bytes.Clone(put.value)
	}
	return nil
}

func (s *memStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.namespaces = nil
	return nil
}
