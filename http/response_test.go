package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/edgeserve"
	edgehttp "github.com/sagarc03/edgeserve/http"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", edgeserve.ErrNotFound, http.StatusNotFound, "Object Not Found"},
		{"wrapped not found", fmt.Errorf("fetch abc: %w", edgeserve.ErrNotFound), http.StatusNotFound, "Object Not Found"},
		{"invalid key", edgeserve.ErrInvalidInput, http.StatusNotFound, "Object Not Found"},
		{"upstream", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			edgehttp.HandleError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteCached(t *testing.T) {
	rec := httptest.NewRecorder()

	edgehttp.WriteCached(rec, edgeserve.CachedResponse{
		Status: http.StatusOK,
		Header: http.Header{
			"Content-Disposition": {`attachment; filename="a.zip"`},
			"Cache-Control":       {"public, max-age=1800"},
		},
		Body: []byte("cached body"),
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cached body", rec.Body.String())
	assert.Equal(t, `attachment; filename="a.zip"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "public, max-age=1800", rec.Header().Get("Cache-Control"))
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="song.zip"`, edgehttp.ContentDisposition("song.zip"))
	assert.Equal(t, `attachment; filename="a\\b.zip"`, edgehttp.ContentDisposition(`a\b.zip`))
}

func TestCacheKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://cdn.example.com/abc.zip?x=1", nil)
	assert.Equal(t, "cdn.example.com/abc.zip?x=1", edgehttp.CacheKey(req))
}

func TestIsPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	assert.False(t, edgehttp.IsPreflight(req))

	req.Header.Set("Origin", "https://a.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	assert.False(t, edgehttp.IsPreflight(req))

	req.Header.Set("Access-Control-Request-Headers", "Range")
	assert.True(t, edgehttp.IsPreflight(req))
}
