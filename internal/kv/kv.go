// Package kv provides the key-value persistence facility the ledger
// writes through. Backends store opaque blobs under namespaced string
// keys and know nothing about the transaction domain.
package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no value exists under a key.
var ErrKeyNotFound = errors.New("key not found")

// Store is the contract every backend implements. Set fully overwrites
// any prior value; there are no partial writes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
