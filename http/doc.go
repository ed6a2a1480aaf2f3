// Package http serves objects at the edge.
//
// The router answers three kinds of requests:
//
//   - GET / returns 200 "OK" without touching any store.
//   - GET /<key> serves the object stored under key.
//   - OPTIONS on any path answers CORS preflight requests.
//
// Every other method gets 404 "Route Not Found.".
//
// # Object responses
//
// A GET first consults the response cache. A cached 2xx response is replayed
// as is. On a miss the object and its display name are fetched concurrently;
// an absent object yields 404 "Object Not Found" and nothing else happens.
//
// A found object is returned with the CORS headers, an attachment
// Content-Disposition when a display name exists, and Etag, Cache-Control
// and Last-Modified. Two tasks are then handed to the Scheduler and run after
// the response: storing the response in the cache (only when the body fits
// within MaxCacheBytes) and posting a download event to the Notifier.
//
// # Usage
//
//	svc, _ := edgeserve.NewService(blobs, names)
//	bg := edgeserve.NewBackground(30*time.Second, nil)
//	h := http.NewHandler(&http.HandlerConfig{
//	    MaxCacheBytes: 8 << 20,
//	    Cache:         cache.NewMemory(edgeserve.CacheTTL, 0),
//	    Notifier:      notifier,
//	    Tasks:         bg,
//	}, svc)
//	srv := &stdhttp.Server{Addr: ":8080", Handler: h.Router()}
package http
