package edgeserve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

const (
	// CacheTTL is the freshness window of a cached response.
	CacheTTL = 1800 * time.Second
	// EventTypeHash is the type carried by every download event.
	EventTypeHash = "HASH"
)

// Object is a blob returned by a BlobStore. The caller owns Body and must close it.
type Object struct {
	Body        io.ReadCloser
	HTTPEtag    string
	Uploaded    time.Time
	Size        int64
	ContentType string
}

// CachedResponse is a complete HTTP response as stored in a ResponseCache.
type CachedResponse struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// OK reports whether the entry may be replayed to a client.
func (c CachedResponse) OK() bool {
	return c.Status >= 200 && c.Status < 300
}

// DownloadEvent is published once per successful download.
type DownloadEvent struct {
	Hash   string `json:"hash"`
	Type   string `json:"type"`
	Remote string `json:"remote"`
}

// NewDownloadEvent builds the event for a download of key by remote.
func NewDownloadEvent(key, remote string) DownloadEvent {
	return DownloadEvent{
		Hash:   HashID(key),
		Type:   EventTypeHash,
		Remote: remote,
	}
}

type SaveResult struct {
	BytesWritten int64
	Etag         string
}

// Tables holds configurable table names for the SQL name store.
type Tables struct {
	Names string `mapstructure:"names" yaml:"names"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Names == "" {
		return errors.New("validate tables: names table name cannot be empty")
	}

	if !IsValidTableName(t.Names) {
		return fmt.Errorf("validate tables: invalid names table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Names)
	}

	return nil
}

// BlobStore defines read access to object payloads.
//
// Get returns ErrNotFound when no object exists for key. The caller is
// responsible for closing Object.Body.
type BlobStore interface {
	Get(ctx context.Context, key string) (Object, error)
}

// BlobWriter is implemented by blob stores that accept uploads.
type BlobWriter interface {
	Write(ctx context.Context, key string, content io.Reader, contentType string) (SaveResult, error)
}

// NameStore defines read access to display names.
// Get returns ErrNotFound when the key has no display name.
type NameStore interface {
	Get(ctx context.Context, key string) (string, error)
}

// NameWriter is implemented by name stores that accept updates.
type NameWriter interface {
	Set(ctx context.Context, key, name string) error
}

// NameRepo is a name store that accepts updates.
type NameRepo interface {
	NameStore
	NameWriter
}

// ResponseCache stores complete responses keyed by request URL.
//
// Match reports a miss with ok == false and a nil error. Entries older than
// the cache's freshness window must be reported as a miss. Put overwrites any
// existing entry under the same key.
type ResponseCache interface {
	Match(ctx context.Context, key string) (CachedResponse, bool, error)
	Put(ctx context.Context, key string, resp CachedResponse) error
}

// Notifier publishes download events. Delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, event DownloadEvent) error
}
