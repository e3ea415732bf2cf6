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

const imageColumns = "id, description, content_type, size, tags, path, preview_path, status, user_id, modified, created"

type imageStore struct {
	db *sql.DB
}

func (s *imageStore) Create(ctx context.Context, image *api.Image) error {
	ctx, span := tracer.Start(ctx, "Images.Create",
		trace.WithAttributes(attribute.String("image.id", image.ID)))
	defer span.End()

	tags, err := validation.JoinTags(image.Tags)
	if err != nil {
		return err
	}

	query := rebind(`
		INSERT INTO images (id, description, content_type, size, tags, path, preview_path, status, user_id, modified, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = s.db.ExecContext(ctx, query,
		image.ID,
		image.Description,
		image.ContentType,
		image.Size,
		tags,
		image.Path,
		image.PreviewPath,
		string(image.Status),
		image.UserID,
		image.Modified,
		image.Created,
	)
	if err != nil {
		span.RecordError(err)
		return mapError(err)
	}
	return nil
}

func (s *imageStore) Get(ctx context.Context, id string, scope visibility.Scope) (*api.Image, error) {
	ctx, span := tracer.Start(ctx, "Images.Get",
		trace.WithAttributes(attribute.String("image.id", id)))
	defer span.End()

	conds := []string{"id = ?"}
	args := []interface{}{id}
	if scope.Restricted() {
		conds = append(conds, scope.Where)
		args = append(args, scope.Args...)
	}

	query := rebind("SELECT " + imageColumns + " FROM images" + buildWhere(conds))
	return scanImage(s.db.QueryRowContext(ctx, query, args...))
}

func (s *imageStore) List(ctx context.Context, filter api.ImageFilter, scope visibility.Scope, limit, offset int) ([]*api.Image, int64, error) {
	ctx, span := tracer.Start(ctx, "Images.List")
	defer span.End()

	var conds []string
	var args []interface{}
	if scope.Restricted() {
		conds = append(conds, scope.Where)
		args = append(args, scope.Args...)
	}
	if filter.Description != "" {
		conds = append(conds, "description ILIKE ?")
		args = append(args, "%"+filter.Description+"%")
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	tagConds, tagArgs := tagConditions(filter.Tags)
	conds = append(conds, tagConds...)
	args = append(args, tagArgs...)
	where := buildWhere(conds)

	var total int64
	countQuery := rebind("SELECT COUNT(*) FROM images" + where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, mapError(err)
	}

	query := rebind("SELECT " + imageColumns + " FROM images" + where +
		" ORDER BY modified DESC LIMIT ? OFFSET ?")
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		span.RecordError(err)
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	images := make([]*api.Image, 0)
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, 0, err
		}
		images = append(images, image)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return images, total, nil
}

func (s *imageStore) Update(ctx context.Context, id string, update api.ImageUpdate) (*api.Image, error) {
	ctx, span := tracer.Start(ctx, "Images.Update",
		trace.WithAttributes(attribute.String("image.id", id)))
	defer span.End()

	sets := []string{"modified = ?"}
	args := []interface{}{time.Now().UTC()}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.Tags != nil {
		tags, err := validation.JoinTags(*update.Tags)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "tags = ?")
		args = append(args, tags)
	}
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*update.Status))
	}
	args = append(args, id)

	query := rebind("UPDATE images SET " + joinSets(sets) +
		" WHERE id = ? RETURNING " + imageColumns)
	return scanImage(s.db.QueryRowContext(ctx, query, args...))
}

func scanImage(row rowScanner) (*api.Image, error) {
	var image api.Image
	var status, tags string
	err := row.Scan(
		&image.ID,
		&image.Description,
		&image.ContentType,
		&image.Size,
		&tags,
		&image.Path,
		&image.PreviewPath,
		&status,
		&image.UserID,
		&image.Modified,
		&image.Created,
	)
	if err != nil {
		return nil, mapError(err)
	}
	image.Status = visibility.Status(status)
	image.Tags = validation.SplitTags(tags)
	return &image, nil
}
