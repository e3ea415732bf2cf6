package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/quanghuy1242/content-api/pkg/apperr"
	"github.com/quanghuy1242/content-api/pkg/auth"
	"github.com/quanghuy1242/content-api/pkg/httputil"
	"github.com/quanghuy1242/content-api/pkg/middleware"
	"github.com/quanghuy1242/content-api/pkg/observability"
	"github.com/quanghuy1242/content-api/pkg/validation"
	"github.com/quanghuy1242/content-api/pkg/visibility"
)

// MaxImageSize caps declared upload sizes at 10 MiB.
const MaxImageSize = 10 << 20

// ImageHandlers handles image HTTP requests. Every route requires an
// authenticated caller and records are strictly owner-scoped: not even
// admins see another user's images.
//
// Uploads are indirect. POST creates a PENDING record and hands back a
// pre-signed PUT URL; the client uploads straight to object storage and
// then calls validate, which flips the record ACTIVE once the bytes are
// confirmed present.
type ImageHandlers struct {
	store         ImageStore
	objects       ObjectStore
	policy        auth.Policy
	validator     *validation.Validator
	uploadTimeout time.Duration
	metrics       *observability.Metrics
	now           func() time.Time
}

// NewImageHandlers creates a new ImageHandlers. Metrics may be nil.
func NewImageHandlers(store ImageStore, objects ObjectStore, policy auth.Policy, validator *validation.Validator, uploadTimeout time.Duration, metrics *observability.Metrics, now func() time.Time) *ImageHandlers {
	if now == nil {
		now = time.Now
	}
	return &ImageHandlers{
		store:         store,
		objects:       objects,
		policy:        policy,
		validator:     validator,
		uploadTimeout: uploadTimeout,
		metrics:       metrics,
		now:           now,
	}
}

func (h *ImageHandlers) countValidation(outcome string) {
	if h.metrics != nil {
		h.metrics.UploadValidationsTotal.WithLabelValues(outcome).Inc()
	}
}

// RegisterRoutes registers image routes
func (h *ImageHandlers) RegisterRoutes(router *mux.Router) {
	authed := middleware.RequireAuthenticated()
	uploaders := middleware.RequirePermissions(h.policy, auth.PermissionUploadImage)

	router.Handle("/images", authed(http.HandlerFunc(h.ListImages))).Methods("GET")
	router.Handle("/images/{id}", authed(http.HandlerFunc(h.GetImage))).Methods("GET")
	router.Handle("/images/{id}/{mode}", authed(http.HandlerFunc(h.ServeImage))).Methods("GET")
	router.Handle("/images", uploaders(http.HandlerFunc(h.CreateImage))).Methods("POST")
	router.Handle("/images/{id}", authed(http.HandlerFunc(h.UpdateImage))).Methods("PATCH")
	router.Handle("/images/{id}/validate", authed(http.HandlerFunc(h.ValidateImage))).Methods("POST")
}

type createImageRequest struct {
	Description string   `json:"description" validate:"max=1000"`
	ContentType string   `json:"contentType" validate:"required,startswith=image/"`
	Size        int64    `json:"size" validate:"required,gt=0,lte=10485760"`
	Tags        []string `json:"tags"`
	UserID      string   `json:"userId" validate:"required"`
}

type updateImageRequest struct {
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	Tags        *[]string `json:"tags"`
	Status      *string   `json:"status" validate:"omitempty,oneof=ACTIVE PENDING INACTIVE"`

	// Present only so attempts to change them are rejected explicitly.
	ContentType *string `json:"contentType"`
	Size        *int64  `json:"size"`
}

type createImageResponse struct {
	*Image
	UploadURL string `json:"uploadUrl"`
}

// imageKey derives the storage key for an image. Keys embed the owner so
// paths can never collide across users or be forged by the client.
func imageKey(userID, imageID string) string {
	return fmt.Sprintf("images/%s/%s", userID, imageID)
}

// CreateImage handles POST /images
func (h *ImageHandlers) CreateImage(w http.ResponseWriter, r *http.Request) {
	var req createImageRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	if _, err := validation.JoinTags(req.Tags); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	claims := middleware.ClaimsFromContext(r)
	if err := visibility.CanMutate(h.policy, claims, visibility.ImageRules, req.UserID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	id := uuid.NewString()
	key := imageKey(req.UserID, id)
	now := h.now().UTC()
	image := &Image{
		ID:          id,
		Description: req.Description,
		ContentType: req.ContentType,
		Size:        req.Size,
		Tags:        req.Tags,
		Path:        key,
		PreviewPath: key + "/preview",
		Status:      visibility.StatusPending,
		UserID:      req.UserID,
		Modified:    now,
		Created:     now,
	}

	if err := h.store.Create(r.Context(), image); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	uploadURL, err := h.objects.PresignUpload(r.Context(), key, req.ContentType, req.Size)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	_ = httputil.WriteCreated(w, createImageResponse{Image: image, UploadURL: uploadURL})
}

// GetImage handles GET /images/{id}
func (h *ImageHandlers) GetImage(w http.ResponseWriter, r *http.Request) {
	image, ok := h.lookup(w, r)
	if !ok {
		return
	}
	_ = httputil.WriteSuccess(w, image)
}

// ServeImage handles GET /images/{id}/{mode}. It answers a temporary
// redirect to a pre-signed download URL rather than proxying bytes.
func (h *ImageHandlers) ServeImage(w http.ResponseWriter, r *http.Request) {
	mode, ok := httputil.ParsePathStringOrError(w, r, "mode")
	if !ok {
		return
	}
	if mode != "view" && mode != "preview" {
		httputil.WriteBadRequest(w, "mode must be view or preview")
		return
	}

	image, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if image.Status != visibility.StatusActive {
		httputil.WriteAppError(w, apperr.NotFound("Not found"))
		return
	}

	key := image.Path
	if mode == "preview" {
		key = image.PreviewPath
	}
	url, err := h.objects.PresignDownload(r.Context(), key)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// ListImages handles GET /images
func (h *ImageHandlers) ListImages(w http.ResponseWriter, r *http.Request) {
	page, ok := httputil.ParsePageOrError(w, r)
	if !ok {
		return
	}

	// Unlike categories and contents, image lists do not default to ACTIVE:
	// owners need to see their just-created PENDING uploads. The read scope
	// still hides other users' non-active rows.
	filter := ImageFilter{
		Description: httputil.ParseQueryString(r, "description", ""),
		Tags:        httputil.ParseQueryStrings(r, "tag", "tags"),
	}
	if status := httputil.ParseQueryString(r, "status", ""); status != "" {
		filter.Status = visibility.Status(status)
		if !filter.Status.Valid() {
			httputil.WriteBadRequest(w, "invalid status filter")
			return
		}
	}

	scope, err := visibility.ReadScope(h.policy, middleware.ClaimsFromContext(r), visibility.ImageRules)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	images, total, err := h.store.List(r.Context(), filter, scope, page.Size, page.Offset())
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteListHeaders(w, total, page.PageCount(total))
	_ = httputil.WriteSuccess(w, images)
}

// UpdateImage handles PATCH /images/{id}
func (h *ImageHandlers) UpdateImage(w http.ResponseWriter, r *http.Request) {
	var req updateImageRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.ContentType != nil || req.Size != nil {
		httputil.WriteBadRequest(w, "You can't change size or contentType of a recorded image.")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	if req.Tags != nil {
		if _, err := validation.JoinTags(*req.Tags); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
	}

	// The owner-only scope doubles as the mutation gate here: a record
	// the caller does not own is simply not found.
	stored, ok := h.lookup(w, r)
	if !ok {
		return
	}

	update := ImageUpdate{
		Description: req.Description,
		Tags:        req.Tags,
	}
	if req.Status != nil {
		requested := visibility.Status(*req.Status)
		claims := middleware.ClaimsFromContext(r)
		if err := visibility.CanSetStatus(h.policy, claims, stored.Status, requested); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		update.Status = &requested
	}

	image, err := h.store.Update(r.Context(), stored.ID, update)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	_ = httputil.WriteSuccess(w, image)
}

// ValidateImage handles POST /images/{id}/validate. It reconciles the
// record with object storage: confirmed bytes activate the record, a
// missing object inside the upload window is still pending, and one past
// the window retires the record for good.
func (h *ImageHandlers) ValidateImage(w http.ResponseWriter, r *http.Request) {
	image, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if image.Status == visibility.StatusActive {
		_ = httputil.WriteSuccess(w, image)
		return
	}
	// INACTIVE is terminal: a retired record never reactivates, even when
	// the bytes land after the window.
	if image.Status != visibility.StatusPending {
		h.countValidation("expired")
		httputil.WriteErrorMessage(w, http.StatusGone, "upload window expired, image retired")
		return
	}

	exists, err := h.objects.Exists(r.Context(), image.Path)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	if exists {
		status := visibility.StatusActive
		updated, err := h.store.Update(r.Context(), image.ID, ImageUpdate{Status: &status})
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		h.countValidation("confirmed")
		_ = httputil.WriteSuccess(w, updated)
		return
	}

	if h.now().Sub(image.Created) < h.uploadTimeout {
		h.countValidation("pending")
		_ = httputil.WriteJSON(w, http.StatusAccepted, image)
		return
	}

	status := visibility.StatusInactive
	if _, err := h.store.Update(r.Context(), image.ID, ImageUpdate{Status: &status}); err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	h.countValidation("expired")
	httputil.WriteErrorMessage(w, http.StatusGone, "upload window expired, image retired")
}

// lookup fetches the path image under the caller's owner-only scope,
// writing the error response itself on failure.
func (h *ImageHandlers) lookup(w http.ResponseWriter, r *http.Request) (*Image, bool) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return nil, false
	}

	scope, err := visibility.ReadScope(h.policy, middleware.ClaimsFromContext(r), visibility.ImageRules)
	if err != nil {
		httputil.WriteAppError(w, err)
		return nil, false
	}

	image, err := h.store.Get(r.Context(), id, scope)
	if err != nil {
		httputil.WriteAppError(w, err)
		return nil, false
	}
	return image, true
}
