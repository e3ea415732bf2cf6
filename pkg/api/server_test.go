package api

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanghuy1242/content-api/pkg/auth"
	"github.com/quanghuy1242/content-api/pkg/middleware"
	"github.com/quanghuy1242/content-api/pkg/observability"
)

const testIssuer = "https://tenant.example.auth0.com/"

// newTestServer wires the full middleware chain over mock storage, with the
// verifier in bypass mode so tests mint tokens locally.
func newTestServer(t *testing.T, storage *mockStorage) *Server {
	return newTestServerMode(t, storage, auth.ModeBypass)
}

func newTestServerMode(t *testing.T, storage *mockStorage, mode auth.Mode) *Server {
	t.Helper()

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Issuer:   testIssuer,
		Audience: testAudience,
		Mode:     mode,
	})
	require.NoError(t, err)

	config := DefaultServerConfig()
	config.Policy = testPolicy()

	return NewServer(
		storage,
		&mockObjectStore{},
		verifier,
		nil,
		observability.NewLogger(observability.ErrorLevel, io.Discard),
		nil,
		config,
	)
}

func mintToken(t *testing.T, sub string, extra map[string]interface{}) string {
	t.Helper()

	claims := map[string]interface{}{
		"sub": sub,
		"iss": testIssuer,
		"aud": testAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"none"}`)) + "." +
		enc.EncodeToString(payload) + "." +
		enc.EncodeToString([]byte("sig"))
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, newMockStorage())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ok", rec.Body.String())
}

func TestRoutesMountedUnderV1(t *testing.T) {
	server := newTestServer(t, newMockStorage())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The same path without the prefix does not exist.
	req = httptest.NewRequest(http.MethodGet, "/categories", nil)
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnonymousReadsPassThrough(t *testing.T) {
	server := newTestServerMode(t, newMockStorage(), auth.ModeEnforce)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contents", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Record-Count"))
}

func TestBypassModePassesGatesWithoutToken(t *testing.T) {
	server := newTestServer(t, newMockStorage())

	// Admin-only route, no Authorization header: the developer identity
	// carries the Admin role.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJSONContentTypeWithCharsetAccepted(t *testing.T) {
	server := newTestServer(t, newMockStorage())

	body := strings.NewReader(`{"name": "tech"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", body)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestPresentedTokenMustBeValid(t *testing.T) {
	server := newTestServer(t, newMockStorage())

	// Optional auth tolerates absence, never garbage.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contents", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEndToEndAdminFlow(t *testing.T) {
	storage := newMockStorage()
	server := newTestServer(t, storage)

	token := mintToken(t, "auth0|admin", map[string]interface{}{
		auth.RolesClaim: []string{auth.RoleAdmin},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterSeesAuthenticatedSubject(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Issuer:   testIssuer,
		Audience: testAudience,
		Mode:     auth.ModeBypass,
	})
	require.NoError(t, err)

	limiter := middleware.NewRateLimiter(client, &middleware.RateLimitConfig{
		RequestsPerWindow: 10,
		WindowDuration:    time.Minute,
	}, "test")

	config := DefaultServerConfig()
	config.Policy = testPolicy()
	server := NewServer(
		newMockStorage(),
		&mockObjectStore{},
		verifier,
		limiter,
		observability.NewLogger(observability.ErrorLevel, io.Discard),
		nil,
		config,
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contents", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "auth0|rl", nil))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// The limiter runs after auth, so the window is keyed by subject, not IP.
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "sub:auth0|rl")
}

func TestWrongContentTypeRejected(t *testing.T) {
	server := newTestServer(t, newMockStorage())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", nil)
	req.Header.Set("Content-Type", "text/xml")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
