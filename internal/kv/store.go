// Package kv provides the flat key-value persistent stores the emulated
// backend and the session store are built on.
package kv

import (
	"context"
	"errors"
	"fmt"

	"eldercare/internal/errs"
)

// Entry is one key/value pair of an atomic batch. A nil Value deletes the key.
type Entry struct {
	Key   string
	Value []byte
}

// Store is an unstructured key-value store without constraint enforcement.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set writes all entries atomically: either every entry is visible or none is.
	Set(ctx context.Context, entries ...Entry) error
	Close() error
}

// Delete removes key from s.
func Delete(ctx context.Context, s Store, key string) error {
	return s.Set(ctx, Entry{Key: key})
}

// Unavailable is the store used where no persistence exists. Every call fails
// with errs.ErrBackendUnavailable.
type Unavailable struct {
	Reason error
}

func (u Unavailable) err() error {
	if u.Reason == nil {
		return errs.ErrBackendUnavailable
	}
	return fmt.Errorf("%w: %w", errs.ErrBackendUnavailable, u.Reason)
}

func (u Unavailable) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, u.err()
}

func (u Unavailable) Set(context.Context, ...Entry) error {
	return u.err()
}

func (u Unavailable) Close() error { return nil }

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("kv: store closed")
