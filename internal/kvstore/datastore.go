package kvstore

import (
	"context"
	"errors"
	"fmt"

	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
)

// DatastoreStore adapts a go-datastore to Store
type DatastoreStore struct {
	d ds.Datastore
}

// NewDatastoreStore wraps an existing datastore
func NewDatastoreStore(d ds.Datastore) *DatastoreStore {
	return &DatastoreStore{d: d}
}

// NewMemoryStore returns a thread-safe in-memory store
func NewMemoryStore() *DatastoreStore {
	return NewDatastoreStore(dssync.MutexWrap(ds.NewMapDatastore()))
}

func (s *DatastoreStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	v, err := s.d.Get(ctx, ds.NewKey(key))
	if err != nil {
		if errors.Is(err, ds.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, nil
}

func (s *DatastoreStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.d.Put(ctx, ds.NewKey(key), value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *DatastoreStore) Close() error {
	return s.d.Close()
}
