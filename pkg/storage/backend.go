// Package storage persists budget snapshots on the local machine.
package storage

import "errors"

// ErrNotFound is returned when no snapshot is stored under a key.
var ErrNotFound = errors.New("snapshot not found")

// Backend is a durable key-value store of encoded snapshots.
type Backend interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
	Delete(key string) error
	// Keys lists stored keys with the given prefix in key order.
	Keys(prefix string) ([]string, error)
	Close() error
}
