// Package validation provides request payload validation and the
// storage-layer serialization rules for entity fields.
//
// # Overview
//
// Struct validation is declarative via `validate` tags, backed by
// go-playground/validator. Failures surface as a single 400-kind error
// carrying a per-field detail map.
//
// Serialization covers the fields whose storage form differs from their
// wire form:
//
//   - Tags travel as a JSON array but are stored comma-joined; at most 10
//     tags of at most 10 characters each.
//   - Meta is a small structured object stored as a JSON string.
//   - The rich-text body is an opaque serialized document that must carry
//     the document-root marker to be accepted.
//
// # Usage Example
//
//	v := validation.New()
//	if err := v.Struct(&req); err != nil {
//		httputil.WriteAppError(w, err) // 400 with field details
//		return
//	}
//
//	stored, err := validation.JoinTags(req.Tags)
//	meta, err := validation.EncodeMeta(req.Meta)
//	err = validation.ValidateDocument(req.Content)
package validation
