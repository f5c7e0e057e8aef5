// Package storage keeps the application's collections durable.
//
// A Backend is a plain string → bytes map. Store layers typed JSON access,
// a session cache and change notification on top of it.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Load for absent keys.
var ErrNotFound = errors.New("key not found")

// Backend is the durable key-value medium behind a Store.
type Backend interface {
	// Load returns the raw value for key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the raw value for key.
	Save(ctx context.Context, key string, value []byte) error

	// Clear removes every key.
	Clear(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close() error
}
