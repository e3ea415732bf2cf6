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

// ContentHandlers handles content HTTP requests. Reads are public and
// visibility-scoped; writes require the write permission and pass through
// the ownership and publish gates.
type ContentHandlers struct {
	contents   ContentStore
	categories CategoryStore
	policy     auth.Policy
	validator  *validation.Validator
}

// NewContentHandlers creates a new ContentHandlers
func NewContentHandlers(contents ContentStore, categories CategoryStore, policy auth.Policy, validator *validation.Validator) *ContentHandlers {
	return &ContentHandlers{
		contents:   contents,
		categories: categories,
		policy:     policy,
		validator:  validator,
	}
}

// RegisterRoutes registers content routes
func (h *ContentHandlers) RegisterRoutes(router *mux.Router) {
	writers := middleware.RequirePermissions(h.policy, auth.PermissionWriteContent)

	router.HandleFunc("/contents", h.ListContents).Methods("GET")
	router.HandleFunc("/contents/{id}", h.GetContent).Methods("GET")
	router.Handle("/contents", writers(http.HandlerFunc(h.CreateContent))).Methods("POST")
	router.Handle("/contents/{id}", writers(http.HandlerFunc(h.UpdateContent))).Methods("PATCH")
}

type createContentRequest struct {
	Title      string          `json:"title" validate:"required,max=250"`
	Slug       string          `json:"slug" validate:"required,slug,max=100"`
	Content    string          `json:"content" validate:"required"`
	CoverImage string          `json:"coverImage" validate:"omitempty,url"`
	Tags       []string        `json:"tags"`
	Meta       validation.Meta `json:"meta"`
	CategoryID string          `json:"categoryId" validate:"required,uuid"`
	Status     string          `json:"status" validate:"omitempty,oneof=ACTIVE PENDING INACTIVE"`
	UserID     string          `json:"userId" validate:"required"`
}

type updateContentRequest struct {
	Title      *string          `json:"title" validate:"omitempty,required,max=250"`
	Slug       *string          `json:"slug" validate:"omitempty,slug,max=100"`
	Content    *string          `json:"content" validate:"omitempty,required"`
	CoverImage *string          `json:"coverImage" validate:"omitempty,url"`
	Tags       *[]string        `json:"tags"`
	Meta       *validation.Meta `json:"meta"`
	CategoryID *string          `json:"categoryId" validate:"omitempty,uuid"`
	Status     *string          `json:"status" validate:"omitempty,oneof=ACTIVE PENDING INACTIVE"`
	UserID     *string          `json:"userId"`
}

// CreateContent handles POST /contents
func (h *ContentHandlers) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req createContentRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	if err := h.validateSerialized(req.Content, req.Tags, req.Meta); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	claims := middleware.ClaimsFromContext(r)
	if err := visibility.CanMutate(h.policy, claims, visibility.ContentRules, req.UserID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	status := visibility.Status(req.Status)
	if status == "" {
		status = visibility.StatusPending
	}
	if err := visibility.CanSetStatus(h.policy, claims, "", status); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	if err := h.checkCategory(r, req.CategoryID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	now := time.Now().UTC()
	content := &Content{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
		Meta:       req.Meta,
		CategoryID: req.CategoryID,
		Status:     status,
		UserID:     req.UserID,
		Modified:   now,
		Created:    now,
	}

	if err := h.contents.Create(r.Context(), content); err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	_ = httputil.WriteCreated(w, content)
}

// GetContent handles GET /contents/{id}
func (h *ContentHandlers) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	scope, err := visibility.ReadScope(h.policy, middleware.ClaimsFromContext(r), visibility.ContentRules)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	content, err := h.contents.Get(r.Context(), id, scope)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	_ = httputil.WriteSuccess(w, content)
}

// ListContents handles GET /contents
func (h *ContentHandlers) ListContents(w http.ResponseWriter, r *http.Request) {
	page, ok := httputil.ParsePageOrError(w, r)
	if !ok {
		return
	}

	filter := ContentFilter{
		Title:      httputil.ParseQueryString(r, "title", ""),
		Status:     visibility.StatusActive,
		UserID:     httputil.ParseQueryString(r, "userId", ""),
		CategoryID: httputil.ParseQueryString(r, "categoryId", ""),
		Tags:       httputil.ParseQueryStrings(r, "tag", "tags"),
	}
	if status := httputil.ParseQueryString(r, "status", ""); status != "" {
		filter.Status = visibility.Status(status)
		if !filter.Status.Valid() {
			httputil.WriteBadRequest(w, "invalid status filter")
			return
		}
	}

	scope, err := visibility.ReadScope(h.policy, middleware.ClaimsFromContext(r), visibility.ContentRules)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	contents, total, err := h.contents.List(r.Context(), filter, scope, page.Size, page.Offset())
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteListHeaders(w, total, page.PageCount(total))
	_ = httputil.WriteSuccess(w, contents)
}

// UpdateContent handles PATCH /contents/{id}
func (h *ContentHandlers) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req updateContentRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	if req.Content != nil {
		if err := validation.ValidateDocument(*req.Content); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
	}
	if req.Tags != nil {
		if _, err := validation.JoinTags(*req.Tags); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
	}
	if req.Meta != nil {
		if _, err := validation.EncodeMeta(*req.Meta); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
	}

	// Existence is checked before authorization so a writer patching a
	// record that is genuinely gone sees 404, not 403.
	stored, err := h.contents.GetAny(r.Context(), id)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	owner := stored.UserID
	if req.UserID != nil {
		owner = *req.UserID
	}
	claims := middleware.ClaimsFromContext(r)
	if err := visibility.CanMutate(h.policy, claims, visibility.ContentRules, owner); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	requested := stored.Status
	if req.Status != nil {
		requested = visibility.Status(*req.Status)
	}
	if err := visibility.CanSetStatus(h.policy, claims, stored.Status, requested); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	if req.CategoryID != nil && *req.CategoryID != stored.CategoryID {
		if err := h.checkCategory(r, *req.CategoryID); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
	}

	update := ContentUpdate{
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
		Meta:       req.Meta,
		CategoryID: req.CategoryID,
		UserID:     req.UserID,
	}
	if req.Status != nil {
		status := visibility.Status(*req.Status)
		update.Status = &status
	}

	content, err := h.contents.Update(r.Context(), id, update)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	_ = httputil.WriteSuccess(w, content)
}

// validateSerialized runs the checks that live outside struct tags: the
// rich-text body, tag limits and the metadata card type.
func (h *ContentHandlers) validateSerialized(body string, tags []string, meta validation.Meta) error {
	if err := validation.ValidateDocument(body); err != nil {
		return err
	}
	if _, err := validation.JoinTags(tags); err != nil {
		return err
	}
	if _, err := validation.EncodeMeta(meta); err != nil {
		return err
	}
	return nil
}

// checkCategory rejects content that references a category non-admin
// readers cannot see. The failure is indistinguishable from a broken
// foreign key on purpose.
func (h *ContentHandlers) checkCategory(r *http.Request, categoryID string) error {
	category, err := h.categories.GetAny(r.Context(), categoryID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.NotFound("category not found or not active")
		}
		return err
	}
	if category.Status != visibility.StatusActive {
		return apperr.NotFound("category not found or not active")
	}
	return nil
}
