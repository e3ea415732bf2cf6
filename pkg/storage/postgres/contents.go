package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/quanghuy1242/content-api/pkg/api"
	"github.com/quanghuy1242/content-api/pkg/validation"
	"github.com/quanghuy1242/content-api/pkg/visibility"
)

const contentColumns = "id, title, slug, content, cover_image, tags, meta, category_id, status, user_id, modified, created"

// contentStore persists contents. Tags travel as []string but are stored
// comma-joined; meta is stored as a JSON string. Both conversions happen
// here so callers only ever see the structured forms.
type contentStore struct {
	db *sql.DB
}

func (s *contentStore) Create(ctx context.Context, content *api.Content) error {
	ctx, span := tracer.Start(ctx, "Contents.Create",
		trace.WithAttributes(attribute.String("content.id", content.ID)))
	defer span.End()

	tags, err := validation.JoinTags(content.Tags)
	if err != nil {
		return err
	}
	meta, err := validation.EncodeMeta(content.Meta)
	if err != nil {
		return err
	}

	query := rebind(`
		INSERT INTO contents (id, title, slug, content, cover_image, tags, meta, category_id, status, user_id, modified, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = s.db.ExecContext(ctx, query,
		content.ID,
		content.Title,
		content.Slug,
		content.Content,
		content.CoverImage,
		tags,
		meta,
		content.CategoryID,
		string(content.Status),
		content.UserID,
		content.Modified,
		content.Created,
	)
	if err != nil {
		span.RecordError(err)
		return mapError(err)
	}
	return nil
}

func (s *contentStore) Get(ctx context.Context, id string, scope visibility.Scope) (*api.Content, error) {
	ctx, span := tracer.Start(ctx, "Contents.Get",
		trace.WithAttributes(attribute.String("content.id", id)))
	defer span.End()

	conds := []string{"id = ?"}
	args := []interface{}{id}
	if scope.Restricted() {
		conds = append(conds, scope.Where)
		args = append(args, scope.Args...)
	}

	query := rebind("SELECT " + contentColumns + " FROM contents" + buildWhere(conds))
	return scanContent(s.db.QueryRowContext(ctx, query, args...))
}

func (s *contentStore) GetAny(ctx context.Context, id string) (*api.Content, error) {
	return s.Get(ctx, id, visibility.Scope{})
}

func (s *contentStore) List(ctx context.Context, filter api.ContentFilter, scope visibility.Scope, limit, offset int) ([]*api.Content, int64, error) {
	ctx, span := tracer.Start(ctx, "Contents.List")
	defer span.End()

	var conds []string
	var args []interface{}
	if scope.Restricted() {
		conds = append(conds, scope.Where)
		args = append(args, scope.Args...)
	}
	if filter.Title != "" {
		conds = append(conds, "title ILIKE ?")
		args = append(args, "%"+filter.Title+"%")
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.CategoryID != "" {
		conds = append(conds, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	tagConds, tagArgs := tagConditions(filter.Tags)
	conds = append(conds, tagConds...)
	args = append(args, tagArgs...)
	where := buildWhere(conds)

	var total int64
	countQuery := rebind("SELECT COUNT(*) FROM contents" + where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, mapError(err)
	}

	query := rebind("SELECT " + contentColumns + " FROM contents" + where +
		" ORDER BY modified DESC LIMIT ? OFFSET ?")
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		span.RecordError(err)
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	contents := make([]*api.Content, 0)
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, 0, err
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return contents, total, nil
}

func (s *contentStore) Update(ctx context.Context, id string, update api.ContentUpdate) (*api.Content, error) {
	ctx, span := tracer.Start(ctx, "Contents.Update",
		trace.WithAttributes(attribute.String("content.id", id)))
	defer span.End()

	sets := []string{"modified = ?"}
	args := []interface{}{time.Now().UTC()}
	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Slug != nil {
		sets = append(sets, "slug = ?")
		args = append(args, *update.Slug)
	}
	if update.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *update.Content)
	}
	if update.CoverImage != nil {
		sets = append(sets, "cover_image = ?")
		args = append(args, *update.CoverImage)
	}
	if update.Tags != nil {
		tags, err := validation.JoinTags(*update.Tags)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "tags = ?")
		args = append(args, tags)
	}
	if update.Meta != nil {
		meta, err := validation.EncodeMeta(*update.Meta)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "meta = ?")
		args = append(args, meta)
	}
	if update.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *update.CategoryID)
	}
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*update.Status))
	}
	if update.UserID != nil {
		sets = append(sets, "user_id = ?")
		args = append(args, *update.UserID)
	}
	args = append(args, id)

	query := rebind("UPDATE contents SET " + joinSets(sets) +
		" WHERE id = ? RETURNING " + contentColumns)
	return scanContent(s.db.QueryRowContext(ctx, query, args...))
}

func scanContent(row rowScanner) (*api.Content, error) {
	var content api.Content
	var status, tags, meta string
	err := row.Scan(
		&content.ID,
		&content.Title,
		&content.Slug,
		&content.Content,
		&content.CoverImage,
		&tags,
		&meta,
		&content.CategoryID,
		&status,
		&content.UserID,
		&content.Modified,
		&content.Created,
	)
	if err != nil {
		return nil, mapError(err)
	}
	content.Status = visibility.Status(status)
	content.Tags = validation.SplitTags(tags)
	decoded, err := validation.DecodeMeta(meta)
	if err != nil {
		return nil, err
	}
	content.Meta = decoded
	return &content, nil
}
