package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// Pagination defaults. pageSize is capped so a single request can never pull
// an unbounded slice of the table.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ParseJSON decodes JSON from the request body into the destination
func ParseJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ParseJSONOrError decodes JSON and writes error response on failure
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := ParseJSON(r, dest); err != nil {
		WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// ParsePathString extracts a string path parameter
func ParsePathString(r *http.Request, key string) (string, error) {
	vars := mux.Vars(r)
	str := vars[key]
	if str == "" {
		return "", fmt.Errorf("missing path parameter: %s", key)
	}
	return str, nil
}

// ParsePathStringOrError extracts a string path parameter and writes error on failure
func ParsePathStringOrError(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	val, err := ParsePathString(r, key)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return "", false
	}
	return val, true
}

// ParseQueryInt extracts and parses an integer query parameter
func ParseQueryInt(r *http.Request, key string, defaultVal int) (int, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return defaultVal, nil
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for query param %s: %s", key, str)
	}
	return val, nil
}

// ParseQueryString extracts a string query parameter
func ParseQueryString(r *http.Request, key string, defaultVal string) string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// ParseQueryStrings extracts a multi-valued query parameter. Values may be
// repeated (?tag=a&tag=b) or comma-joined (?tag=a,b); both forms combine.
// Extra keys act as aliases and their values are merged in order.
func ParseQueryStrings(r *http.Request, keys ...string) []string {
	var out []string
	query := r.URL.Query()
	for _, key := range keys {
		for _, raw := range query[key] {
			for _, v := range strings.Split(raw, ",") {
				v = strings.TrimSpace(v)
				if v != "" {
					out = append(out, v)
				}
			}
		}
	}
	return out
}

// Page describes the window a list request asked for.
type Page struct {
	Number int // 1-based
	Size   int
}

// Offset returns the row offset of the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageCount computes how many pages a total record count spans.
func (p Page) PageCount(total int64) int64 {
	if total == 0 {
		return 0
	}
	return (total + int64(p.Size) - 1) / int64(p.Size)
}

// ParsePage reads page/pageSize query parameters, applying the default and
// the hard cap.
func ParsePage(r *http.Request) (Page, error) {
	number, err := ParseQueryInt(r, "page", 1)
	if err != nil {
		return Page{}, err
	}
	if number < 1 {
		return Page{}, fmt.Errorf("page must be >= 1")
	}

	size, err := ParseQueryInt(r, "pageSize", DefaultPageSize)
	if err != nil {
		return Page{}, err
	}
	if size < 1 {
		return Page{}, fmt.Errorf("pageSize must be >= 1")
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return Page{Number: number, Size: size}, nil
}

// ParsePageOrError reads pagination parameters and writes a 400 on failure.
func ParsePageOrError(w http.ResponseWriter, r *http.Request) (Page, bool) {
	page, err := ParsePage(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return Page{}, false
	}
	return page, true
}
