package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BucketSnapshots holds one snapshot per storage key.
const BucketSnapshots = "snapshots"

// BoltBackend stores snapshots in a bbolt database file.
type BoltBackend struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the bbolt file at path.
func OpenBolt(path string) (*BoltBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// The file lock is exclusive; fail instead of blocking when a server
	// already holds it.
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(BucketSnapshots)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", BucketSnapshots, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltBackend{db: db}, nil
}

// Get returns a copy of the value stored under key.
func (b *BoltBackend) Get(key string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(BucketSnapshots)).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// Copy the value since it's only valid during the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

// Put stores data under key.
func (b *BoltBackend) Put(key string, data []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketSnapshots)).Put([]byte(key), data)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (b *BoltBackend) Delete(key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketSnapshots)).Delete([]byte(key))
	})
}

// Keys lists keys starting with prefix.
func (b *BoltBackend) Keys(prefix string) ([]string, error) {
	var keys []string
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(BucketSnapshots)).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}

// Close closes the database.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}
