// Package kvstore provides the generic key-value persistence used for listings
// and purchases. Values are opaque bytes; callers decide the encoding.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("key not found")
	ErrEmptyKey = errors.New("key must not be empty")
)

// Store is a durable key-value collaborator
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// HealthKey is read by Check. It is never written.
const HealthKey = "health"

// Check reports whether s answers reads. A missing key counts as healthy.
func Check(ctx context.Context, s Store) error {
	if _, err := s.Get(ctx, HealthKey); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("store check failed: %w", err)
	}
	return nil
}

// GetJSON reads key and decodes it into v. It returns ErrNotFound for missing keys.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
