package kv

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltDB is a bbolt file holding one bucket per store.
type BoltDB struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the bbolt file at path.
func OpenBolt(path string) (*BoltDB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open kv file %s: %w", path, err)
	}
	return &BoltDB{db: db}, nil
}

// Bucket returns a store backed by the named bucket.
func (b *BoltDB) Bucket(name string) *BoltStore {
	return &BoltStore{db: b.db, bucket: []byte(name)}
}

// Close closes the file and every store derived from it.
func (b *BoltDB) Close() error {
	return b.db.Close()
}

// BoltStore is a Store over one bucket of a BoltDB.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
}

func (s *BoltStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// bbolt values are only valid inside the transaction
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

func (s *BoltStore) Set(ctx context.Context, entries ...Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.Value == nil {
				if err := b.Delete([]byte(e.Key)); err != nil {
					return err
				}
				continue
			}
			if err := b.Put([]byte(e.Key), e.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close is a no-op; the owning BoltDB closes the file.
func (s *BoltStore) Close() error { return nil }
