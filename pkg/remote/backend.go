// Package remote synchronizes budget snapshots with a shared real-time store.
package remote

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when nothing is stored for the user.
	ErrNotFound = errors.New("remote snapshot not found")

	// ErrInactive is returned when no user is bound.
	ErrInactive = errors.New("remote sync is not active")
)

// Backend is a key-value store that notifies watchers of every Set.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites key and notifies its watchers with data.
	Set(ctx context.Context, key string, data []byte) error
	// Watch calls fn with the payload of every subsequent Set of key until
	// stop is called.
	Watch(ctx context.Context, key string, fn func(data []byte)) (stop func(), err error)
	Close() error
}

// KeyFor returns the remote key for identity.
func KeyFor(identity string) string {
	return "users/" + strings.ToLower(strings.TrimSpace(identity))
}

// ChannelFor returns the change notification channel of key.
func ChannelFor(key string) string {
	return key + ":changes"
}
