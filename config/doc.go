// Package config provides configuration loading and validation for edgeserve.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (EDGESERVE_ prefix, optionally seeded from .env)
//  4. CLI flags
//
// # Usage
//
//	if err := config.LoadDotEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Variables
//
// All config keys map to environment variables with EDGESERVE_ prefix:
//   - server.port → EDGESERVE_SERVER_PORT
//   - names.type → EDGESERVE_NAMES_TYPE
//   - broker.secret → EDGESERVE_BROKER_SECRET
//
// # Configuration Structure
//
//   - Server: port, trusted client IP header, shutdown and background task timeouts
//   - Blob: object store (filesystem path or S3 bucket)
//   - Names: display name store (map, redis, sqlite or postgres)
//   - Cache: response cache (memory, redis or none), TTL and size limits
//   - Broker: publish URL, shared secret and timeout; empty URL disables notifications
//   - Metrics: listen address of the Prometheus endpoint
//   - Log: logging level
package config
