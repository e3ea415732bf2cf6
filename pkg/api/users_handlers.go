package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quanghuy1242/content-api/pkg/auth"
	"github.com/quanghuy1242/content-api/pkg/httputil"
	"github.com/quanghuy1242/content-api/pkg/middleware"
	"github.com/quanghuy1242/content-api/pkg/validation"
)

// UserHandlers handles user HTTP requests. The user set mirrors accounts
// in the identity provider and is admin-managed end to end.
type UserHandlers struct {
	store     UserStore
	policy    auth.Policy
	validator *validation.Validator
}

// NewUserHandlers creates a new UserHandlers
func NewUserHandlers(store UserStore, policy auth.Policy, validator *validation.Validator) *UserHandlers {
	return &UserHandlers{
		store:     store,
		policy:    policy,
		validator: validator,
	}
}

// RegisterRoutes registers user routes
func (h *UserHandlers) RegisterRoutes(router *mux.Router) {
	adminOnly := middleware.RequireAdmin(h.policy)

	router.Handle("/users", adminOnly(http.HandlerFunc(h.ListUsers))).Methods("GET")
	router.Handle("/users/{id}", adminOnly(http.HandlerFunc(h.GetUser))).Methods("GET")
	router.Handle("/users", adminOnly(http.HandlerFunc(h.CreateUser))).Methods("POST")
}

type createUserRequest struct {
	// The id is the identity provider's subject, supplied by the admin
	// rather than generated here.
	ID           string `json:"id" validate:"required,max=120"`
	Name         string `json:"name" validate:"required,max=120"`
	EmailAddress string `json:"emailAddress" validate:"required,email"`
}

// CreateUser handles POST /users
func (h *UserHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	user := &User{
		ID:           req.ID,
		Name:         req.Name,
		EmailAddress: req.EmailAddress,
	}
	if err := h.store.Create(r.Context(), user); err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	_ = httputil.WriteCreated(w, user)
}

// GetUser handles GET /users/{id}
func (h *UserHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	user, err := h.store.Get(r.Context(), id)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	_ = httputil.WriteSuccess(w, user)
}

// ListUsers handles GET /users
func (h *UserHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, ok := httputil.ParsePageOrError(w, r)
	if !ok {
		return
	}

	users, total, err := h.store.List(r.Context(), page.Size, page.Offset())
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteListHeaders(w, total, page.PageCount(total))
	_ = httputil.WriteSuccess(w, users)
}
