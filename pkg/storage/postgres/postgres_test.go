package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanghuy1242/content-api/pkg/api"
	"github.com/quanghuy1242/content-api/pkg/apperr"
	"github.com/quanghuy1242/content-api/pkg/validation"
	"github.com/quanghuy1242/content-api/pkg/visibility"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestRebind(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"id = ?", "id = $1"},
		{"a = ? AND b = ?", "a = $1 AND b = $2"},
		{"(user_id = ? OR status = ?)", "(user_id = $1 OR status = $2)"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, rebind(tc.in))
	}
}

func TestTagConditions(t *testing.T) {
	conds, args := tagConditions([]string{"go", ""})

	require.Len(t, conds, 1)
	assert.Equal(t, "(tags LIKE ? OR tags LIKE ? OR tags LIKE ? OR tags LIKE ? OR tags = ?)", conds[0])
	assert.Equal(t, []interface{}{"go,%", ",go%", "%,go", "%,go,%", "go"}, args)
}

func categoryRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "description", "status", "modified", "created"}).
		AddRow("cat-1", "tech", "", "ACTIVE", now, now)
}

func TestCategoryGetAppliesScope(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectQuery(`SELECT .+ FROM categories WHERE id = \$1 AND status = \$2`).
		WithArgs("cat-1", "ACTIVE").
		WillReturnRows(categoryRows())

	scope := visibility.Scope{Where: "status = ?", Args: []interface{}{"ACTIVE"}}
	category, err := store.Categories().Get(context.Background(), "cat-1", scope)

	require.NoError(t, err)
	assert.Equal(t, "tech", category.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryGetUnscopedWhenUnrestricted(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectQuery(`SELECT .+ FROM categories WHERE id = \$1$`).
		WithArgs("cat-1").
		WillReturnRows(categoryRows())

	_, err := store.Categories().Get(context.Background(), "cat-1", visibility.Scope{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryGetMissingMapsToNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectQuery(`SELECT .+ FROM categories`).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Categories().Get(context.Background(), "cat-1", visibility.Scope{})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCategoryCreateUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectExec(`INSERT INTO categories`).
		WillReturnError(&pq.Error{Code: pgUniqueViolation})

	err := store.Categories().Create(context.Background(), &api.Category{ID: "cat-1", Name: "tech"})

	require.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "already exist somehow")
}

func TestCategoryListCountsAndPages(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM categories WHERE name ILIKE \$1 AND status = \$2`).
		WithArgs("%tech%", "ACTIVE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(`SELECT .+ FROM categories WHERE name ILIKE \$1 AND status = \$2 ORDER BY modified DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("%tech%", "ACTIVE", 10, 20).
		WillReturnRows(categoryRows())

	filter := api.CategoryFilter{Name: "tech", Status: visibility.StatusActive}
	categories, total, err := store.Categories().List(context.Background(), filter, visibility.Scope{}, 10, 20)

	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
	require.Len(t, categories, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryUpdatePartialSet(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectQuery(`UPDATE categories SET modified = \$1, name = \$2 WHERE id = \$3 RETURNING`).
		WithArgs(sqlmock.AnyArg(), "renamed", "cat-1").
		WillReturnRows(categoryRows())

	name := "renamed"
	_, err := store.Categories().Update(context.Background(), "cat-1", api.CategoryUpdate{Name: &name})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func contentRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "title", "slug", "content", "cover_image", "tags", "meta",
		"category_id", "status", "user_id", "modified", "created",
	}).AddRow(
		"con-1", "A post", "a-post", `{"type":"doc"}`, "", "go,http",
		`{"twitterCard":"summary"}`, "cat-1", "ACTIVE", "auth0|writer", now, now,
	)
}

func TestContentCreateSerializesTagsAndMeta(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectExec(`INSERT INTO contents`).
		WithArgs("con-1", "A post", "a-post", `{"type":"doc"}`, "",
			"go,http", `{"twitterCard":"summary"}`, "cat-1", "PENDING", "auth0|writer",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Contents().Create(context.Background(), &api.Content{
		ID:         "con-1",
		Title:      "A post",
		Slug:       "a-post",
		Content:    `{"type":"doc"}`,
		Tags:       []string{"go", "http"},
		Meta:       validation.Meta{TwitterCard: validation.TwitterCardSummary},
		CategoryID: "cat-1",
		Status:     visibility.StatusPending,
		UserID:     "auth0|writer",
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentCreateForeignKeyViolation(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectExec(`INSERT INTO contents`).
		WillReturnError(&pq.Error{Code: pgForeignKeyViolation})

	err := store.Contents().Create(context.Background(), &api.Content{
		ID:   "con-1",
		Meta: validation.Meta{TwitterCard: validation.TwitterCardSummary},
	})

	require.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "unknown relationships")
}

func TestContentGetDecodesStoredForms(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectQuery(`SELECT .+ FROM contents WHERE id = \$1 AND \(user_id = \$2 OR status = \$3\)`).
		WithArgs("con-1", "auth0|writer", "ACTIVE").
		WillReturnRows(contentRows())

	scope := visibility.Scope{
		Where: "(user_id = ? OR status = ?)",
		Args:  []interface{}{"auth0|writer", "ACTIVE"},
	}
	content, err := store.Contents().Get(context.Background(), "con-1", scope)

	require.NoError(t, err)
	assert.Equal(t, []string{"go", "http"}, content.Tags)
	assert.Equal(t, validation.TwitterCardSummary, content.Meta.TwitterCard)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentListTagPredicate(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contents WHERE \(tags LIKE \$1 OR tags LIKE \$2 OR tags LIKE \$3 OR tags LIKE \$4 OR tags = \$5\)`).
		WithArgs("go,%", ",go%", "%,go", "%,go,%", "go").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM contents WHERE .+ ORDER BY modified DESC LIMIT \$6 OFFSET \$7`).
		WithArgs("go,%", ",go%", "%,go", "%,go,%", "go", 10, 0).
		WillReturnRows(contentRows())

	filter := api.ContentFilter{Tags: []string{"go"}}
	_, total, err := store.Contents().List(context.Background(), filter, visibility.Scope{}, 10, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentUpdateRejectsBadTags(t *testing.T) {
	db, _ := newMockDB(t)
	store := NewStorageWithDB(db)

	tags := []string{"waaaaaaaaytoolongtag"}
	_, err := store.Contents().Update(context.Background(), "con-1", api.ContentUpdate{Tags: &tags})

	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func imageRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "description", "content_type", "size", "tags", "path",
		"preview_path", "status", "user_id", "modified", "created",
	}).AddRow(
		"img-1", "", "image/png", 2048, "", "images/auth0|owner/img-1",
		"images/auth0|owner/img-1/preview", "PENDING", "auth0|owner", now, now,
	)
}

func TestImageGetOwnerScope(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectQuery(`SELECT .+ FROM images WHERE id = \$1 AND user_id = \$2`).
		WithArgs("img-1", "auth0|owner").
		WillReturnRows(imageRows())

	scope := visibility.Scope{Where: "user_id = ?", Args: []interface{}{"auth0|owner"}}
	image, err := store.Images().Get(context.Background(), "img-1", scope)

	require.NoError(t, err)
	assert.Equal(t, "images/auth0|owner/img-1", image.Path)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImageUpdateStatusOnly(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectQuery(`UPDATE images SET modified = \$1, status = \$2 WHERE id = \$3 RETURNING`).
		WithArgs(sqlmock.AnyArg(), "ACTIVE", "img-1").
		WillReturnRows(imageRows())

	status := visibility.StatusActive
	_, err := store.Images().Update(context.Background(), "img-1", api.ImageUpdate{Status: &status})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateAndGet(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("auth0|writer", "Writer", "writer@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id, name, email_address FROM users WHERE id = \$1`).
		WithArgs("auth0|writer").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email_address"}).
			AddRow("auth0|writer", "Writer", "writer@example.com"))

	ctx := context.Background()
	err := store.Users().Create(ctx, &api.User{ID: "auth0|writer", Name: "Writer", EmailAddress: "writer@example.com"})
	require.NoError(t, err)

	user, err := store.Users().Get(ctx, "auth0|writer")
	require.NoError(t, err)
	assert.Equal(t, "Writer", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorageWithDB(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: pgUniqueViolation})

	err := store.Users().Create(context.Background(), &api.User{ID: "auth0|writer"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}
