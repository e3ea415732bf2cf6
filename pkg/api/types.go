package api

import (
	"context"
	"time"

	"github.com/quanghuy1242/content-api/pkg/validation"
	"github.com/quanghuy1242/content-api/pkg/visibility"
)

// Category groups content records. Admin-managed; non-admin callers only
// ever see ACTIVE categories.
type Category struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Status      visibility.Status `json:"status"`
	Modified    time.Time         `json:"modified"`
	Created     time.Time         `json:"created"`
}

// Content is an article: a serialized rich-text body plus its publication
// metadata. The Content field carries the document itself; tags and meta are
// stored serialized but travel structured.
type Content struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Slug       string            `json:"slug"`
	Content    string            `json:"content"`
	CoverImage string            `json:"coverImage"`
	Tags       []string          `json:"tags"`
	Meta       validation.Meta   `json:"meta"`
	CategoryID string            `json:"categoryId"`
	Status     visibility.Status `json:"status"`
	UserID     string            `json:"userId"`
	Modified   time.Time         `json:"modified"`
	Created    time.Time         `json:"created"`
}

// Image is an uploaded asset. Records start PENDING and turn ACTIVE once the
// uploaded bytes are confirmed in object storage, or INACTIVE if the upload
// never materializes. Storage paths are derived from owner and id, never
// user-supplied.
type Image struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	ContentType string            `json:"contentType"`
	Size        int64             `json:"size"`
	Tags        []string          `json:"tags"`
	Path        string            `json:"path"`
	PreviewPath string            `json:"previewPath"`
	Status      visibility.Status `json:"status"`
	UserID      string            `json:"userId"`
	Modified    time.Time         `json:"modified"`
	Created     time.Time         `json:"created"`
}

// User is an account record mirrored from the identity provider.
// Admin-managed only.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	EmailAddress string `json:"emailAddress"`
}

// CategoryFilter narrows category lists.
type CategoryFilter struct {
	Name   string // contains-match
	Status visibility.Status
}

// ContentFilter narrows content lists.
type ContentFilter struct {
	Title      string // contains-match
	Status     visibility.Status
	UserID     string
	CategoryID string
	Tags       []string // record must carry every listed tag
}

// ImageFilter narrows image lists.
type ImageFilter struct {
	Description string // contains-match
	Status      visibility.Status
	Tags        []string
}

// CategoryUpdate carries the fields a PATCH may change; nil means untouched.
type CategoryUpdate struct {
	Name        *string
	Description *string
	Status      *visibility.Status
}

// ContentUpdate carries the fields a PATCH may change; nil means untouched.
type ContentUpdate struct {
	Title      *string
	Slug       *string
	Content    *string
	CoverImage *string
	Tags       *[]string
	Meta       *validation.Meta
	CategoryID *string
	Status     *visibility.Status
	UserID     *string
}

// ImageUpdate carries the fields a PATCH may change; nil means untouched.
// ContentType and Size are immutable once recorded and deliberately absent.
type ImageUpdate struct {
	Description *string
	Tags        *[]string
	Status      *visibility.Status
}

// CategoryStore persists categories. Get and List honor the caller's
// visibility scope; GetAny ignores it for mutation-path existence checks.
type CategoryStore interface {
	Create(ctx context.Context, category *Category) error
	Get(ctx context.Context, id string, scope visibility.Scope) (*Category, error)
	GetAny(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context, filter CategoryFilter, scope visibility.Scope, limit, offset int) ([]*Category, int64, error)
	Update(ctx context.Context, id string, update CategoryUpdate) (*Category, error)
}

// ContentStore persists content records.
type ContentStore interface {
	Create(ctx context.Context, content *Content) error
	Get(ctx context.Context, id string, scope visibility.Scope) (*Content, error)
	GetAny(ctx context.Context, id string) (*Content, error)
	List(ctx context.Context, filter ContentFilter, scope visibility.Scope, limit, offset int) ([]*Content, int64, error)
	Update(ctx context.Context, id string, update ContentUpdate) (*Content, error)
}

// ImageStore persists image records.
type ImageStore interface {
	Create(ctx context.Context, image *Image) error
	Get(ctx context.Context, id string, scope visibility.Scope) (*Image, error)
	List(ctx context.Context, filter ImageFilter, scope visibility.Scope, limit, offset int) ([]*Image, int64, error)
	Update(ctx context.Context, id string, update ImageUpdate) (*Image, error)
}

// UserStore persists user records.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int64, error)
}

// Storage aggregates the per-entity stores the server needs.
type Storage interface {
	Categories() CategoryStore
	Contents() ContentStore
	Images() ImageStore
	Users() UserStore
}

// ObjectStore is the object-storage collaborator for image payloads: it
// presigns uploads and downloads and answers existence checks. The API never
// proxies image bytes itself.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string, size int64) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}
