package edgeserve

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type Service struct {
	blobs BlobStore
	names NameStore
}

func NewService(blobs BlobStore, names NameStore) (*Service, error) {
	if blobs == nil {
		return nil, errors.New("new service: blob store is required")
	}
	if names == nil {
		return nil, errors.New("new service: name store is required")
	}
	return &Service{blobs: blobs, names: names}, nil
}

// Fetch looks up the object and its display name for key. The two lookups are
// independent and run concurrently.
//
// A missing display name is not an error and yields an empty name. A missing
// object yields ErrNotFound. Any other store failure is returned wrapped, and
// any body already opened is closed.
func (s *Service) Fetch(ctx context.Context, key string) (Object, string, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, "", fmt.Errorf("fetch: %w", err)
	}

	if key == "" {
		return Object{}, "", fmt.Errorf("fetch: empty key: %w", ErrInvalidInput)
	}

	var (
		obj  Object
		name string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		o, err := s.blobs.Get(gctx, key)
		if err != nil {
			return fmt.Errorf("get object: %w", err)
		}
		obj = o
		return nil
	})

	g.Go(func() error {
		n, err := s.names.Get(gctx, key)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get display name: %w", err)
		}
		name = n
		return nil
	})

	if err := g.Wait(); err != nil {
		if obj.Body != nil {
			_ = obj.Body.Close()
		}
		return Object{}, "", fmt.Errorf("fetch %s: %w", key, err)
	}

	return obj, name, nil
}
