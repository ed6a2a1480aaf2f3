package http

import "net/http"

// CORS header values sent on every object response and preflight.
const (
	AllowOrigin  = "*"
	AllowMethods = "GET,OPTIONS"
	MaxAge       = "86400"
)

// SetCORSHeaders adds the fixed CORS headers to h.
func SetCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", AllowOrigin)
	h.Set("Access-Control-Allow-Methods", AllowMethods)
	h.Set("Access-Control-Max-Age", MaxAge)
}

// IsPreflight reports whether r carries all three CORS preflight headers.
func IsPreflight(r *http.Request) bool {
	return r.Header.Get("Origin") != "" &&
		r.Header.Get("Access-Control-Request-Method") != "" &&
		r.Header.Get("Access-Control-Request-Headers") != ""
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	if !IsPreflight(r) {
		w.Header().Set("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	SetCORSHeaders(w.Header())
	w.Header().Set("Access-Control-Allow-Headers", r.Header.Get("Access-Control-Request-Headers"))
	w.WriteHeader(http.StatusOK)
}
