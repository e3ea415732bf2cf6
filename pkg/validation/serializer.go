package validation

import (
	"encoding/json"
	"strings"

	"github.com/quanghuy1242/content-api/pkg/apperr"
)

// Tag limits, enforced on both creation and update.
const (
	MaxTags      = 10
	MaxTagLength = 10
)

// DocumentRootMarker is the substring a serialized rich-text body must carry
// to be recognized as a document. The editor emits a JSON document whose
// root node is typed "doc".
const DocumentRootMarker = `"type":"doc"`

// TwitterCard values accepted in content metadata.
const (
	TwitterCardSummary      = "summary"
	TwitterCardSummaryLarge = "summary_large_image"
)

// Meta is the structured metadata attached to a content record. Stored as a
// JSON string.
type Meta struct {
	TwitterCard string `json:"twitterCard"`
}

// JoinTags validates a tag list and serializes it to the comma-joined
// storage form. Empty entries are dropped.
func JoinTags(tags []string) (string, error) {
	if len(tags) > MaxTags {
		return "", apperr.Validation("invalid tags", map[string]string{
			"tags": "Only 10 tags are accepted",
		})
	}

	kept := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if len(t) > MaxTagLength {
			return "", apperr.Validation("invalid tags", map[string]string{
				"tags": "Tag item should only contain less than 10 chars",
			})
		}
		if strings.Contains(t, ",") {
			return "", apperr.Validation("invalid tags", map[string]string{
				"tags": "Tag item must not contain ','",
			})
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, ","), nil
}

// SplitTags decodes the comma-joined storage form back into a list.
func SplitTags(stored string) []string {
	if stored == "" {
		return []string{}
	}
	parts := strings.Split(stored, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// EncodeMeta validates metadata and serializes it for storage.
func EncodeMeta(meta Meta) (string, error) {
	switch meta.TwitterCard {
	case TwitterCardSummary, TwitterCardSummaryLarge:
	default:
		return "", apperr.Validation("invalid meta", map[string]string{
			"meta.twitterCard": "must be one of: summary, summary_large_image",
		})
	}
	encoded, err := json.Marshal(meta)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return string(encoded), nil
}

// DecodeMeta parses the stored JSON form of content metadata.
func DecodeMeta(stored string) (Meta, error) {
	var meta Meta
	if stored == "" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(stored), &meta); err != nil {
		return Meta{}, apperr.Internal(err)
	}
	return meta, nil
}

// ValidateDocument checks that a serialized rich-text body is valid JSON and
// carries the document-root marker. The body is otherwise opaque to the API.
func ValidateDocument(body string) error {
	if !json.Valid([]byte(body)) {
		return apperr.Validation("invalid content body", map[string]string{
			"content": "must be a serialized document",
		})
	}
	if !strings.Contains(compactWhitespace(body), DocumentRootMarker) {
		return apperr.Validation("invalid content body", map[string]string{
			"content": "must contain a document root",
		})
	}
	return nil
}

// compactWhitespace re-marshals the body compactly so the marker check is
// insensitive to formatting.
func compactWhitespace(body string) string {
	var v interface{}
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return body
	}
	compact, err := json.Marshal(v)
	if err != nil {
		return body
	}
	return string(compact)
}
