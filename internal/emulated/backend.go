// Package emulated serves the relational data model from a flat key-value
// store. Each collection is one JSON array under its own key; uniqueness,
// references and CHECK constraints are enforced here because the store
// enforces nothing.
package emulated

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"eldercare/internal/errs"
	"eldercare/internal/kv"
	"eldercare/internal/storage"
)

// Backend is the emulated storage.Backend. All mutations, and therefore all
// counter increments, are serialized through mu. Queries hold the read lock
// across every collection they load, so a join never mixes two writes.
type Backend struct {
	store kv.Store
	mu    sync.RWMutex
}

var _ storage.Backend = (*Backend)(nil)

// New creates a backend over store.
func New(store kv.Store) *Backend {
	return &Backend{store: store}
}

func (b *Backend) Kind() storage.BackendKind {
	return storage.Emulated
}

func (b *Backend) Close() error {
	return b.store.Close()
}

// InitSchema creates every missing collection as an empty array and the
// counters record, in one batch. Existing keys are left untouched; counters
// missing next to existing data are seeded from the highest stored ids.
func (b *Backend) InitSchema(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var entries []kv.Entry
	for _, key := range collectionKeys {
		_, ok, err := b.store.Get(ctx, key)
		if err != nil {
			return storeError("init schema", err)
		}
		if !ok {
			entries = append(entries, kv.Entry{Key: key, Value: []byte(emptyArrayJSON)})
		}
	}

	_, ok, err := b.store.Get(ctx, countersKey)
	if err != nil {
		return storeError("init schema", err)
	}
	if !ok {
		c, err := b.seedCounters(ctx)
		if err != nil {
			return err
		}
		entry, err := encode(countersKey, c)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil
	}
	if err := b.store.Set(ctx, entries...); err != nil {
		return storeError("init schema", err)
	}
	return nil
}

func (b *Backend) seedCounters(ctx context.Context) (counters, error) {
	var c counters
	users, err := load[userRow](ctx, b.store, usersKey)
	if err != nil {
		return c, err
	}
	for _, r := range users {
		c.Users = max(c.Users, r.ID)
	}
	elders, err := load[elderRow](ctx, b.store, eldersKey)
	if err != nil {
		return c, err
	}
	for _, r := range elders {
		c.Elders = max(c.Elders, r.ID)
	}
	reminders, err := load[reminderRow](ctx, b.store, remindersKey)
	if err != nil {
		return c, err
	}
	for _, r := range reminders {
		c.MedicationReminders = max(c.MedicationReminders, r.ID)
	}
	links, err := load[linkRow](ctx, b.store, linksKey)
	if err != nil {
		return c, err
	}
	for _, r := range links {
		c.CaregiverLinks = max(c.CaregiverLinks, r.ID)
	}
	return c, nil
}

// load decodes the collection stored under key. A missing key is an empty
// collection.
func load[T any](ctx context.Context, store kv.Store, key string) ([]T, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, storeError("read "+key, err)
	}
	rows := []T{}
	if !ok {
		return rows, nil
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, errs.IO("decode "+key, err)
	}
	return rows, nil
}

func loadCounters(ctx context.Context, store kv.Store) (counters, error) {
	var c counters
	raw, ok, err := store.Get(ctx, countersKey)
	if err != nil {
		return c, storeError("read counters", err)
	}
	if !ok {
		return c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, errs.IO("decode counters", err)
	}
	return c, nil
}

func encode(key string, v any) (kv.Entry, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return kv.Entry{}, errs.IO("encode "+key, err)
	}
	return kv.Entry{Key: key, Value: raw}, nil
}

// commit writes a collection and, when c is non-nil, the counters in one batch.
func (b *Backend) commit(ctx context.Context, key string, rows any, c *counters) error {
	entry, err := encode(key, rows)
	if err != nil {
		return err
	}
	entries := []kv.Entry{entry}
	if c != nil {
		ce, err := encode(countersKey, c)
		if err != nil {
			return err
		}
		entries = append(entries, ce)
	}
	if err := b.store.Set(ctx, entries...); err != nil {
		return storeError("write "+key, err)
	}
	return nil
}

func storeError(op string, err error) error {
	if errors.Is(err, errs.ErrBackendUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return errs.IO(op, err)
}
