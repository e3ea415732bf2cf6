// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// This package offers helper functions for JSON encoding/decoding, error responses,
// parameter and pagination parsing, and the common middleware chain.
//
// # Response Helpers
//
// JSON responses:
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteCreated(w, resource)
//	httputil.WriteListHeaders(w, total, page.PageCount(total))
//
// Error responses go through the domain error mapper so status codes stay
// uniform across handlers:
//
//	httputil.WriteAppError(w, err)
//
// # Request Parsing
//
// JSON parsing:
//
//	var req CreateContentRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
// Path and query parameters:
//
//	id, ok := httputil.ParsePathStringOrError(w, r, "id")
//	status := httputil.ParseQueryString(r, "status", "")
//	tags := httputil.ParseQueryStrings(r, "tags")
//	page, ok := httputil.ParsePageOrError(w, r)
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.ContentTypeMiddleware,
//		httputil.MaxBytesMiddleware(1*1024*1024),
//	)
//
// # Related Packages
//
//   - pkg/middleware: Authentication and authorization middleware
package httputil
