package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sagarc03/edgeserve"
	"github.com/sagarc03/edgeserve/config"
	"github.com/sagarc03/edgeserve/filesystem"
	"github.com/sagarc03/edgeserve/s3store"
)

// blobBackend is a blob store that also accepts uploads.
type blobBackend interface {
	edgeserve.BlobStore
	edgeserve.BlobWriter
}

// openBlobStore builds the configured blob store. The close function is
// never nil.
func openBlobStore(ctx context.Context, cfg config.BlobConfig) (blobBackend, func() error, error) {
	switch cfg.Type {
	case "filesystem":
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create storage directory: %w", err)
		}

		root, err := os.OpenRoot(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage root: %w", err)
		}
		return filesystem.NewFileStorage(root), root.Close, nil

	case "s3":
		store, err := s3store.NewStore(ctx, cfg.S3)
		if err != nil {
			return nil, nil, fmt.Errorf("open s3 store: %w", err)
		}
		return store, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported blob store type: %s", cfg.Type)
	}
}
