// Package storage holds the shared backend configuration for the content
// service's persistence stack.
//
// # Overview
//
// Entity rows (users, categories, contents, images) live in PostgreSQL.
// Image bytes never pass through the API: they are written by clients
// directly to S3 via pre-signed URLs, and Redis caches signed download
// links and backs distributed rate limiting.
//
// # Backends
//
// The production implementation lives in pkg/storage/postgres and satisfies
// the api.Storage and api.ObjectStore interfaces:
//
//	cfg := storage.DefaultConfig()
//	cfg.PostgresURL = "postgres://localhost/content"
//	cfg.S3Bucket = "content-images"
//
//	store, err := postgres.NewStorage(cfg)
//	objects, err := postgres.NewObjectStore(cfg)
//
// All store methods accept context.Context, so request cancellation and
// timeouts propagate from the HTTP handlers down to the drivers, and
// OpenTelemetry spans are emitted per query and per S3 call.
//
// # Configuration
//
// Config carries connection settings for all three backends plus the
// signed-URL cache policy. DefaultConfig returns production-leaning
// defaults; pkg/config populates the rest from the environment.
package storage
