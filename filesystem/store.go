// Package filesystem provides a file system blob store for edgeserve.
// It supports atomic writes using temp files, SHA256-based etags, and
// content type detection based on file extensions.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/sagarc03/edgeserve"
)

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// Get opens the file stored under key. The etag is the quoted SHA256 of the
// content and the upload time is the file's modification time.
// Returns edgeserve.ErrNotFound if the file does not exist, is a directory,
// or key is not a valid slash-separated path.
func (s *Store) Get(ctx context.Context, key string) (edgeserve.Object, error) {
	if err := ctx.Err(); err != nil {
		return edgeserve.Object{}, err
	}

	if !fs.ValidPath(key) {
		return edgeserve.Object{}, edgeserve.ErrNotFound
	}

	f, err := s.root.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return edgeserve.Object{}, edgeserve.ErrNotFound
		}
		return edgeserve.Object{}, fmt.Errorf("failed to open file: %w", err)
	}

	success := false
	defer func() {
		if !success {
			_ = f.Close()
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return edgeserve.Object{}, fmt.Errorf("failed to stat file: %w", err)
	}

	if info.IsDir() {
		return edgeserve.Object{}, edgeserve.ErrNotFound
	}

	h := sha256.New()
	if _, err := io.Copy(h, &ctxReader{ctx: ctx, r: f}); err != nil {
		return edgeserve.Object{}, fmt.Errorf("failed to hash file: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return edgeserve.Object{}, fmt.Errorf("failed to rewind file: %w", err)
	}

	success = true

	return edgeserve.Object{
		Body:        f,
		HTTPEtag:    `"` + hex.EncodeToString(h.Sum(nil)) + `"`,
		Uploaded:    info.ModTime().UTC(),
		Size:        info.Size(),
		ContentType: detectContentType(key),
	}, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to the given key using a temp file and rename.
// It creates intermediate directories as needed and returns a SaveResult containing
// the number of bytes written and SHA256-based etag. The operation respects context cancellation.
// The content type is derived from the key's extension on read, so contentType is not stored.
func (s *Store) Write(ctx context.Context, key string, content io.Reader, contentType string) (edgeserve.SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return edgeserve.SaveResult{}, ctxErr
	}

	if !edgeserve.IsValidKey(key) {
		return edgeserve.SaveResult{}, fmt.Errorf("write %q: %w", key, edgeserve.ErrInvalidInput)
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return edgeserve.SaveResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	fileSizeBytes, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return edgeserve.SaveResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	err = t.Sync()
	if err != nil {
		return edgeserve.SaveResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	destDir := filepath.Dir(key)
	if destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return edgeserve.SaveResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	if renameErr := s.root.Rename(tmpFile, key); renameErr != nil {
		return edgeserve.SaveResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	etag := hex.EncodeToString(h.Sum(nil))
	success = true

	return edgeserve.SaveResult{BytesWritten: fileSizeBytes, Etag: etag}, nil
}

func detectContentType(key string) string {
	contentType := mime.TypeByExtension(filepath.Ext(key))

	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
