// Package middleware provides HTTP middleware for authentication, authorization, and rate limiting.
//
// # Overview
//
// This package implements request processing middleware: bearer token
// verification, per-route permission gates, and Redis-backed rate limiting.
//
// # Middleware Components
//
// AuthMiddleware: JWT bearer authentication
//
//	authMW := middleware.NewAuthMiddleware(verifier, true)
//	router.Use(authMW.Handler)
//	// Extracts Bearer token, verifies against the issuer JWKS,
//	// attaches *auth.Claims to the request context
//
// Permission gates, applied per route:
//
//	router.Handle("/categories", middleware.RequireAdmin(policy)(handler))
//	router.Handle("/contents", middleware.RequirePermissions(policy, auth.PermissionWriteContent)(handler))
//	router.Handle("/images", middleware.RequireAuthenticated()(handler))
//
// RateLimiter: Redis-backed fixed-window rate limiting shared across
// instances, keyed by token subject or caller IP:
//
//	limiter := middleware.NewRateLimiter(redisClient, nil, "contentapi")
//	router.Use(limiter.Handler)
//
// # Related Packages
//
//   - pkg/auth: Token verification and policy decisions
//   - pkg/visibility: Read scoping and write gates applied inside handlers
package middleware
