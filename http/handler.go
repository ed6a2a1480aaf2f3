package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sagarc03/edgeserve"
	"github.com/sagarc03/edgeserve/metrics"
)

// DefaultClientIPHeader is the trusted proxy header carrying the caller's address.
const DefaultClientIPHeader = "cf-connecting-ip"

// CacheControl is sent with every object response.
var CacheControl = "public, max-age=" + strconv.Itoa(int(edgeserve.CacheTTL.Seconds()))

// Service looks up an object and its display name.
type Service interface {
	Fetch(ctx context.Context, key string) (edgeserve.Object, string, error)
}

// Scheduler runs work after the response has been returned.
type Scheduler interface {
	Go(task string, fn func(ctx context.Context) error)
}

type HandlerConfig struct {
	// ClientIPHeader names the header read for the notification's remote field.
	ClientIPHeader string
	// MaxCacheBytes is the largest body buffered for the cache. Zero disables caching.
	MaxCacheBytes int64

	Cache    edgeserve.ResponseCache // optional
	Notifier edgeserve.Notifier      // optional
	Tasks    Scheduler
	Metrics  *metrics.Metrics // optional
}

// Handler serves objects at the edge.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a Handler. A nil Tasks scheduler is replaced by a fresh
// edgeserve.Background.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.ClientIPHeader == "" {
		cfg.ClientIPHeader = DefaultClientIPHeader
	}
	if cfg.Tasks == nil {
		cfg.Tasks = edgeserve.NewBackground(0, cfg.Metrics.TaskDone)
	}

	return &Handler{
		config:  cfg,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
// GET / answers OK without touching any store; every other GET path is an
// object key. Methods other than GET and OPTIONS get 404 Route Not Found.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(h.config.Metrics))
	r.Use(Recoverer)

	r.Get("/", h.handleRoot)
	r.Get("/*", h.handleGet)
	r.Options("/*", h.handleOptions)

	r.NotFound(handleRouteNotFound)
	r.MethodNotAllowed(handleRouteNotFound)

	return r
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	WriteText(w, http.StatusOK, BodyOK)
}

func handleRouteNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteText(w, http.StatusNotFound, BodyRouteNotFound)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	// Keys are stored unescaped; the S3 client escapes them again on the wire.
	key := edgeserve.ObjectKey(r.URL.Path)
	cacheKey := CacheKey(r)

	if h.config.Cache != nil {
		cached, ok, err := h.config.Cache.Match(ctx, cacheKey)
		if err != nil {
			h.config.Metrics.CacheLookup(metrics.CacheError)
			HandleError(w, fmt.Errorf("match cache %s: %w", cacheKey, err))
			return
		}
		if ok && cached.OK() {
			h.config.Metrics.CacheLookup(metrics.CacheHit)
			WriteCached(w, cached)
			return
		}
		h.config.Metrics.CacheLookup(metrics.CacheMiss)
	}

	obj, name, err := h.service.Fetch(ctx, key)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = obj.Body.Close() }()

	body, cacheable, err := h.bufferBody(obj)
	if err != nil {
		HandleError(w, fmt.Errorf("read object %s: %w", key, err))
		return
	}

	header := w.Header()
	SetObjectHeaders(header, obj, name)

	if cacheable {
		header.Set("Content-Length", strconv.Itoa(len(body)))
		resp := edgeserve.CachedResponse{
			Status:   http.StatusOK,
			Header:   header.Clone(),
			Body:     body,
			StoredAt: time.Now().UTC(),
		}
		h.config.Tasks.Go("cache_put", func(ctx context.Context) error {
			return h.config.Cache.Put(ctx, cacheKey, resp)
		})
	}

	if h.config.Notifier != nil {
		ev := edgeserve.NewDownloadEvent(key, r.Header.Get(h.config.ClientIPHeader))
		h.config.Tasks.Go("notify", func(ctx context.Context) error {
			return h.config.Notifier.Notify(ctx, ev)
		})
	}

	w.WriteHeader(http.StatusOK)

	var src io.Reader = obj.Body
	if cacheable {
		src = bytes.NewReader(body)
	} else if body != nil {
		src = io.MultiReader(bytes.NewReader(body), obj.Body)
	}

	if _, err := io.Copy(w, src); err != nil {
		slog.Debug("failed to stream object", "key", key, "error", err)
	}
}

// bufferBody reads up to MaxCacheBytes of the object. When the whole object
// fits, it is returned with cacheable set. Otherwise the bytes already read are
// returned and the rest remains in obj.Body.
func (h *Handler) bufferBody(obj edgeserve.Object) ([]byte, bool, error) {
	limit := h.config.MaxCacheBytes
	if h.config.Cache == nil || limit <= 0 || obj.Size > limit {
		return nil, false, nil
	}

	buf, err := io.ReadAll(io.LimitReader(obj.Body, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(buf)) > limit {
		return buf, false, nil
	}

	return buf, true, nil
}

// SetObjectHeaders sets the CORS, disposition and validator headers of an
// object response.
func SetObjectHeaders(h http.Header, obj edgeserve.Object, name string) {
	SetCORSHeaders(h)

	if name != "" {
		h.Set("Content-Disposition", ContentDisposition(name))
	}
	if obj.ContentType != "" {
		h.Set("Content-Type", obj.ContentType)
	}
	if obj.HTTPEtag != "" {
		h.Set("Etag", obj.HTTPEtag)
	}
	h.Set("Cache-Control", CacheControl)
	if !obj.Uploaded.IsZero() {
		h.Set("Last-Modified", obj.Uploaded.UTC().Format(http.TimeFormat))
	}
}

var filenameEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// ContentDisposition builds an attachment disposition for name.
func ContentDisposition(name string) string {
	return `attachment; filename="` + filenameEscaper.Replace(name) + `"`
}

// CacheKey identifies a request in the response cache.
func CacheKey(r *http.Request) string {
	return r.Host + r.URL.RequestURI()
}
