// Package keybackend provides NameStore implementations for display name lookup.
package keybackend

import (
	"context"
	"fmt"
	"sync"

	"github.com/sagarc03/edgeserve"
)

// MapNameStore retrieves display names from an in-memory map.
// Suitable for configuration file-based name storage.
type MapNameStore struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewMapNameStore creates a new map-based name store with the given key to display name mapping.
func NewMapNameStore(names map[string]string) *MapNameStore {
	if names == nil {
		names = make(map[string]string)
	}
	return &MapNameStore{names: names}
}

// Get retrieves the display name for key from the map.
func (s *MapNameStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	name, found := s.names[key]
	if !found {
		return "", fmt.Errorf("display name for %s: %w", key, edgeserve.ErrNotFound)
	}
	return name, nil
}

// Set stores a display name. Changes live only as long as the process.
func (s *MapNameStore) Set(ctx context.Context, key, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.names[key] = name
	return nil
}
