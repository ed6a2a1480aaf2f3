package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sagarc03/edgeserve"
)

// WriteText writes a plain-text response.
func WriteText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if _, err := io.WriteString(w, body); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

// HandleError writes the response matching err. Absent objects and keys that
// can never name an object are both reported as 404; anything else is an
// upstream failure.
func HandleError(w http.ResponseWriter, err error) {
	if errors.Is(err, edgeserve.ErrNotFound) || errors.Is(err, edgeserve.ErrInvalidInput) {
		WriteText(w, http.StatusNotFound, BodyObjectNotFound)
		return
	}

	slog.Error("request error", "error", err)
	WriteText(w, http.StatusInternalServerError, BodyInternalError)
}

// WriteCached replays a cached response verbatim.
func WriteCached(w http.ResponseWriter, resp edgeserve.CachedResponse) {
	h := w.Header()
	for k, v := range resp.Header {
		h[k] = append([]string(nil), v...)
	}
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		slog.Debug("failed to write cached response", "error", err)
	}
}
