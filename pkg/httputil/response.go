// Package httputil provides HTTP handler utilities for consistent error
// handling, JSON encoding/decoding, request parsing, and the middleware
// chain shared by every route.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/quanghuy1242/content-api/pkg/apperr"
)

// Header names for list responses. Clients page through collections using
// these instead of an envelope, so list bodies stay plain arrays.
const (
	HeaderRecordCount = "X-Record-Count"
	HeaderPageCount   = "X-Page-Count"
)

// ErrorResponse is the wire shape of every error payload.
type ErrorResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteErrorMessage writes a JSON error response with a custom message
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Message: message})
}

// WriteValidationError writes a validation error response (400 Bad Request)
// with optional per-field details
func WriteValidationError(w http.ResponseWriter, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Message: message, Details: details})
}

// WriteBadRequest writes a bad request error (400)
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusBadRequest, message)
}

// WriteUnauthorized writes an unauthorized error (401)
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusUnauthorized, message)
}

// WriteForbidden writes a forbidden error (403)
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusForbidden, message)
}

// WriteNotFound writes a not found error response (404)
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusNotFound, message)
}

// WriteInternalError writes an internal server error response (500). The
// underlying cause is never exposed to the client.
func WriteInternalError(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusInternalServerError, "Unknown error!")
}

// WriteCreated writes a successful creation response (201 Created) with JSON data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteNoContent writes a successful response with no content (204 No Content)
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteListHeaders sets the pagination headers a list response carries.
func WriteListHeaders(w http.ResponseWriter, recordCount, pageCount int64) {
	w.Header().Set(HeaderRecordCount, strconv.FormatInt(recordCount, 10))
	w.Header().Set(HeaderPageCount, strconv.FormatInt(pageCount, 10))
}

// WriteAppError maps a domain error to its HTTP response. Every handler's
// error path terminates here so status codes and payload shapes stay
// uniform. Unknown errors collapse to an opaque 500.
func WriteAppError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		WriteInternalError(w)
		return
	}

	switch appErr.Kind {
	case apperr.KindUnauthorized:
		WriteUnauthorized(w, appErr.Message)
	case apperr.KindForbidden:
		WriteForbidden(w, appErr.Message)
	case apperr.KindNotFound:
		WriteNotFound(w, "Db constraints error: "+appErr.Message)
	case apperr.KindValidation:
		WriteValidationError(w, appErr.Message, appErr.Fields)
	case apperr.KindConflict:
		// Uniqueness and FK violations surface as 400, matching the
		// long-standing client contract.
		WriteBadRequest(w, appErr.Message)
	default:
		WriteInternalError(w)
	}
}
