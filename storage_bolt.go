package dechib

import (
	"bytes"
	"fmt"
	"time"
	"unsafe"

	"go.etcd.io/bbolt"
)

type boltStorage struct {
	bdb *bbolt.DB
}

func openBoltStorage(path string, opt Options) (storage, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 64
		bopt.FreelistType = bbolt.FreelistMapType
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, err
	}
	return &boltStorage{bdb: bdb}, nil
}

func (s *boltStorage) Bolt() *bbolt.DB { return s.bdb }

func (s *boltStorage) Namespaces() ([]string, error) {
	var names []string
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		return btx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return names, nil // ForEach visits buckets in key order
}

func (s *boltStorage) CreateNamespace(name string) error {
	return s.bdb.Update(func(btx *bbolt.Tx) error {
		_, err := btx.CreateBucket(unsafeBytesFromString(name))
		if err == bbolt.ErrBucketExists {
			return errNamespaceExists
		}
		return err
	})
}

func (s *boltStorage) Get(ns string, key []byte) ([]byte, error) {
	var value []byte
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		b := btx.Bucket(unsafeBytesFromString(ns))
		if b == nil {
			return errNamespaceNotFound
		}
		value = bytes.Clone(b.Get(key)) // bucket memory dies with the tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *boltStorage) Put(ns string, key, value []byte) error {
	return s.bdb.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(unsafeBytesFromString(ns))
		if b == nil {
			return errNamespaceNotFound
		}
		return b.Put(key, value)
	})
}

func (s *boltStorage) Scan(ns string, fn func(key, value []byte) error) error {
	return s.bdb.View(func(btx *bbolt.Tx) error {
		b := btx.Bucket(unsafeBytesFromString(ns))
		if b == nil {
			return errNamespaceNotFound
		}
		return b.ForEach(fn)
	})
}

func (s *boltStorage) WriteBatch(ns string, batch *writeBatch) error {
	return s.bdb.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(unsafeBytesFromString(ns))
		if b == nil {
			return errNamespaceNotFound
		}
		for _, put := range batch.puts {
			if err := b.Put(put.key, put.value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *boltStorage) Close() error {
	err := s.bdb.Close()
	if err != nil {
		return fmt.Errorf("closing bolt: %w", err)
	}
	return nil
}

func unsafeBytesFromString(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
