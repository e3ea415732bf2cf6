package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/quanghuy1242/content-api/pkg/apperr"
	"github.com/quanghuy1242/content-api/pkg/auth"
	"github.com/quanghuy1242/content-api/pkg/httputil"
	"github.com/quanghuy1242/content-api/pkg/middleware"
	"github.com/quanghuy1242/content-api/pkg/validation"
	"github.com/quanghuy1242/content-api/pkg/visibility"
)

// CategoryHandlers handles category HTTP requests. Reads are public with
// status scoping; writes are admin-only.
type CategoryHandlers struct {
	store     CategoryStore
	policy    auth.Policy
	validator *validation.Validator
}

// NewCategoryHandlers creates a new CategoryHandlers
func NewCategoryHandlers(store CategoryStore, policy auth.Policy, validator *validation.Validator) *CategoryHandlers {
	return &CategoryHandlers{
		store:     store,
		policy:    policy,
		validator: validator,
	}
}

// RegisterRoutes registers category routes
func (h *CategoryHandlers) RegisterRoutes(router *mux.Router) {
	adminOnly := middleware.RequireAdmin(h.policy)

	router.HandleFunc("/categories", h.ListCategories).Methods("GET")
	router.HandleFunc("/categories/{id}", h.GetCategory).Methods("GET")
	router.Handle("/categories", adminOnly(http.HandlerFunc(h.CreateCategory))).Methods("POST")
	router.Handle("/categories/{id}", adminOnly(http.HandlerFunc(h.UpdateCategory))).Methods("PATCH")
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
	Status      string `json:"status" validate:"omitempty,oneof=ACTIVE PENDING INACTIVE"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,required,max=120"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Status      *string `json:"status" validate:"omitempty,oneof=ACTIVE PENDING INACTIVE"`
}

// CreateCategory handles POST /categories
func (h *CategoryHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	status := visibility.Status(req.Status)
	if status == "" {
		status = visibility.StatusPending
	}

	now := time.Now().UTC()
	category := &Category{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		Modified:    now,
		Created:     now,
	}

	if err := h.store.Create(r.Context(), category); err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	_ = httputil.WriteCreated(w, category)
}

// GetCategory handles GET /categories/{id}
func (h *CategoryHandlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	scope, err := visibility.ReadScope(h.policy, middleware.ClaimsFromContext(r), visibility.CategoryRules)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	category, err := h.store.Get(r.Context(), id, scope)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	_ = httputil.WriteSuccess(w, category)
}

// ListCategories handles GET /categories
func (h *CategoryHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, ok := httputil.ParsePageOrError(w, r)
	if !ok {
		return
	}

	filter := CategoryFilter{
		Name:   httputil.ParseQueryString(r, "name", ""),
		Status: visibility.StatusActive,
	}
	if status := httputil.ParseQueryString(r, "status", ""); status != "" {
		filter.Status = visibility.Status(status)
		if !filter.Status.Valid() {
			httputil.WriteBadRequest(w, "invalid status filter")
			return
		}
	}

	scope, err := visibility.ReadScope(h.policy, middleware.ClaimsFromContext(r), visibility.CategoryRules)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	categories, total, err := h.store.List(r.Context(), filter, scope, page.Size, page.Offset())
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteListHeaders(w, total, page.PageCount(total))
	_ = httputil.WriteSuccess(w, categories)
}

// UpdateCategory handles PATCH /categories/{id}
func (h *CategoryHandlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req updateCategoryRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	// Unfiltered existence check: the caller is already admin here.
	if _, err := h.store.GetAny(r.Context(), id); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	update := CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Status != nil {
		status := visibility.Status(*req.Status)
		update.Status = &status
	}

	category, err := h.store.Update(r.Context(), id, update)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	_ = httputil.WriteSuccess(w, category)
}

// parseUUIDParam extracts a path parameter and enforces UUID form, writing a
// 400 on failure.
func parseUUIDParam(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	id, ok := httputil.ParsePathStringOrError(w, r, key)
	if !ok {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		httputil.WriteAppError(w, apperr.Validation("invalid path parameter", map[string]string{
			key: "must be a valid UUID",
		}))
		return "", false
	}
	return id, true
}
