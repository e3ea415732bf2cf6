package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/quanghuy1242/content-api/pkg/apperr"
	"github.com/quanghuy1242/content-api/pkg/auth"
	"github.com/quanghuy1242/content-api/pkg/contextkeys"
	"github.com/quanghuy1242/content-api/pkg/validation"
	"github.com/quanghuy1242/content-api/pkg/visibility"
)

// mockCategoryStore is a mock implementation of CategoryStore for testing
type mockCategoryStore struct {
	createFunc func(ctx context.Context, category *Category) error
	getFunc    func(ctx context.Context, id string, scope visibility.Scope) (*Category, error)
	getAnyFunc func(ctx context.Context, id string) (*Category, error)
	listFunc   func(ctx context.Context, filter CategoryFilter, scope visibility.Scope, limit, offset int) ([]*Category, int64, error)
	updateFunc func(ctx context.Context, id string, update CategoryUpdate) (*Category, error)
}

func (m *mockCategoryStore) Create(ctx context.Context, category *Category) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, category)
	}
	return nil
}

func (m *mockCategoryStore) Get(ctx context.Context, id string, scope visibility.Scope) (*Category, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id, scope)
	}
	return &Category{ID: id, Status: visibility.StatusActive}, nil
}

func (m *mockCategoryStore) GetAny(ctx context.Context, id string) (*Category, error) {
	if m.getAnyFunc != nil {
		return m.getAnyFunc(ctx, id)
	}
	return &Category{ID: id, Status: visibility.StatusActive}, nil
}

func (m *mockCategoryStore) List(ctx context.Context, filter CategoryFilter, scope visibility.Scope, limit, offset int) ([]*Category, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter, scope, limit, offset)
	}
	return []*Category{}, 0, nil
}

func (m *mockCategoryStore) Update(ctx context.Context, id string, update CategoryUpdate) (*Category, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, update)
	}
	return &Category{ID: id}, nil
}

// mockContentStore is a mock implementation of ContentStore for testing
type mockContentStore struct {
	createFunc func(ctx context.Context, content *Content) error
	getFunc    func(ctx context.Context, id string, scope visibility.Scope) (*Content, error)
	getAnyFunc func(ctx context.Context, id string) (*Content, error)
	listFunc   func(ctx context.Context, filter ContentFilter, scope visibility.Scope, limit, offset int) ([]*Content, int64, error)
	updateFunc func(ctx context.Context, id string, update ContentUpdate) (*Content, error)
}

func (m *mockContentStore) Create(ctx context.Context, content *Content) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, content)
	}
	return nil
}

func (m *mockContentStore) Get(ctx context.Context, id string, scope visibility.Scope) (*Content, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id, scope)
	}
	return &Content{ID: id, Status: visibility.StatusActive}, nil
}

func (m *mockContentStore) GetAny(ctx context.Context, id string) (*Content, error) {
	if m.getAnyFunc != nil {
		return m.getAnyFunc(ctx, id)
	}
	return &Content{ID: id, Status: visibility.StatusActive}, nil
}

func (m *mockContentStore) List(ctx context.Context, filter ContentFilter, scope visibility.Scope, limit, offset int) ([]*Content, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter, scope, limit, offset)
	}
	return []*Content{}, 0, nil
}

func (m *mockContentStore) Update(ctx context.Context, id string, update ContentUpdate) (*Content, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, update)
	}
	return &Content{ID: id}, nil
}

// mockImageStore is a mock implementation of ImageStore for testing
type mockImageStore struct {
	createFunc func(ctx context.Context, image *Image) error
	getFunc    func(ctx context.Context, id string, scope visibility.Scope) (*Image, error)
	listFunc   func(ctx context.Context, filter ImageFilter, scope visibility.Scope, limit, offset int) ([]*Image, int64, error)
	updateFunc func(ctx context.Context, id string, update ImageUpdate) (*Image, error)
}

func (m *mockImageStore) Create(ctx context.Context, image *Image) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, image)
	}
	return nil
}

func (m *mockImageStore) Get(ctx context.Context, id string, scope visibility.Scope) (*Image, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id, scope)
	}
	return &Image{ID: id, Status: visibility.StatusActive}, nil
}

func (m *mockImageStore) List(ctx context.Context, filter ImageFilter, scope visibility.Scope, limit, offset int) ([]*Image, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter, scope, limit, offset)
	}
	return []*Image{}, 0, nil
}

func (m *mockImageStore) Update(ctx context.Context, id string, update ImageUpdate) (*Image, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, update)
	}
	return &Image{ID: id}, nil
}

// mockUserStore is a mock implementation of UserStore for testing
type mockUserStore struct {
	createFunc func(ctx context.Context, user *User) error
	getFunc    func(ctx context.Context, id string) (*User, error)
	listFunc   func(ctx context.Context, limit, offset int) ([]*User, int64, error)
}

func (m *mockUserStore) Create(ctx context.Context, user *User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserStore) Get(ctx context.Context, id string) (*User, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return &User{ID: id}, nil
}

func (m *mockUserStore) List(ctx context.Context, limit, offset int) ([]*User, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []*User{}, 0, nil
}

// mockObjectStore is a mock implementation of ObjectStore for testing
type mockObjectStore struct {
	presignUploadFunc   func(ctx context.Context, key, contentType string, size int64) (string, error)
	presignDownloadFunc func(ctx context.Context, key string) (string, error)
	existsFunc          func(ctx context.Context, key string) (bool, error)
}

func (m *mockObjectStore) PresignUpload(ctx context.Context, key, contentType string, size int64) (string, error) {
	if m.presignUploadFunc != nil {
		return m.presignUploadFunc(ctx, key, contentType, size)
	}
	return "https://bucket.example.com/" + key + "?sig=upload", nil
}

func (m *mockObjectStore) PresignDownload(ctx context.Context, key string) (string, error) {
	if m.presignDownloadFunc != nil {
		return m.presignDownloadFunc(ctx, key)
	}
	return "https://bucket.example.com/" + key + "?sig=download", nil
}

func (m *mockObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, key)
	}
	return true, nil
}

// mockStorage bundles the per-entity mocks behind the Storage interface.
type mockStorage struct {
	categories *mockCategoryStore
	contents   *mockContentStore
	images     *mockImageStore
	users      *mockUserStore
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		categories: &mockCategoryStore{},
		contents:   &mockContentStore{},
		images:     &mockImageStore{},
		users:      &mockUserStore{},
	}
}

func (m *mockStorage) Categories() CategoryStore { return m.categories }
func (m *mockStorage) Contents() ContentStore    { return m.contents }
func (m *mockStorage) Images() ImageStore        { return m.images }
func (m *mockStorage) Users() UserStore          { return m.users }

var errNotFound = apperr.NotFound("Not found")

const (
	testClientID = "m2m-client"
	testAudience = "https://content-api.quanghuy.dev"
)

func testPolicy() auth.Policy {
	return auth.Policy{ClientID: testClientID, Audience: testAudience}
}

func adminClaims() *auth.Claims {
	return &auth.Claims{
		Subject:  "auth0|admin",
		Audience: auth.Audience{testAudience},
		Roles:    []string{auth.RoleAdmin},
	}
}

func userClaims(subject string, perms ...auth.Permission) *auth.Claims {
	return &auth.Claims{
		Subject:     subject,
		Audience:    auth.Audience{testAudience},
		Permissions: perms,
	}
}

func machineClaims() *auth.Claims {
	return &auth.Claims{
		Subject:   testClientID + "@clients",
		Audience:  auth.Audience{testAudience},
		GrantType: "client-credentials",
	}
}

// doRequest routes a request through the handler's registered routes,
// optionally attaching verified claims the way the auth middleware would.
func doRequest(t *testing.T, registrar RouteRegistrar, method, target string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()

	router := mux.NewRouter()
	registrar.RegisterRoutes(router)

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if claims != nil {
		req = req.WithContext(contextkeys.WithClaims(req.Context(), claims))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func newTestValidator() *validation.Validator {
	return validation.New()
}
