// Package edgeserve provides an edge file server that fronts a blob store,
// a display-name store, a response cache and a download notification broker.
//
// The package itself only holds the domain types and the collaborator
// interfaces. Backends live in subpackages:
//
//   - filesystem, s3: BlobStore implementations
//   - keybackend, database: NameStore implementations (map, redis, sqlite, postgres)
//   - cache: ResponseCache implementations (in-memory ttlcache, redis)
//   - broker: Notifier posting download events to an HTTP message broker
//   - http: the request router
//
// # Request Flow
//
// For GET /<key> the router first consults the ResponseCache. On a miss it
// calls Service.Fetch, which looks up the object and its display name
// concurrently. Successful responses are written back to the cache and a
// DownloadEvent is published, both through Background so the client never
// waits on them.
//
// # Example Usage
//
//	service, err := edgeserve.NewService(blobs, names)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	obj, name, err := service.Fetch(ctx, "abc123.zip")
//	if errors.Is(err, edgeserve.ErrNotFound) {
//	    // 404
//	}
//	defer obj.Body.Close()
package edgeserve
