// Package api provides the HTTP REST API server for the content service.
//
// # Overview
//
// This package implements the HTTP layer over four entity groups: Users,
// Categories, Contents (rich-text articles) and Images (object-storage
// backed uploads). Authorization is claim-driven: roles and permissions
// arrive on a verified bearer token and every route declares what it needs.
//
// # Architecture
//
// The API is built on gorilla/mux and organized into per-entity handler
// groups, each registering its own routes:
//
//   - CategoryHandlers: public scoped reads, admin-only writes
//   - ContentHandlers: public scoped reads, permission-gated writes with
//     ownership and publish checks
//   - ImageHandlers: authenticated, strictly owner-scoped; pre-signed
//     upload/download URLs instead of proxied bytes
//   - UserHandlers: admin-only mirror of the identity provider's accounts
//
// # Visibility
//
// Reads never leak hidden records. Each entity declares scoping rules
// (pkg/visibility) that compile to a SQL predicate attached to every read;
// a record outside the caller's scope is indistinguishable from one that
// does not exist. Admins and machine clients bypass scoping everywhere
// except images, which stay private to their owner unconditionally.
//
// # Wire conventions
//
// All entity routes live under /api/v1 and speak JSON. List endpoints
// return a plain array plus X-Record-Count and X-Page-Count headers.
// Errors are {"message": ..., "details": ...} with details carrying
// per-field validation messages.
//
// # Usage
//
//	server := api.NewServer(storage, objects, verifier, limiter, logger, metrics, config)
//	http.ListenAndServe(":8080", server)
//
// Storage and ObjectStore are interfaces; pkg/storage/postgres provides the
// production implementations.
package api
