package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/quanghuy1242/content-api/pkg/api"
	"github.com/quanghuy1242/content-api/pkg/visibility"
)

const categoryColumns = "id, name, description, status, modified, created"

type categoryStore struct {
	db *sql.DB
}

func (s *categoryStore) Create(ctx context.Context, category *api.Category) error {
	ctx, span := tracer.Start(ctx, "Categories.Create",
		trace.WithAttributes(attribute.String("category.id", category.ID)))
	defer span.End()

	query := rebind(`
		INSERT INTO categories (id, name, description, status, modified, created)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		string(category.Status),
		category.Modified,
		category.Created,
	)
	if err != nil {
		span.RecordError(err)
		return mapError(err)
	}
	return nil
}

func (s *categoryStore) Get(ctx context.Context, id string, scope visibility.Scope) (*api.Category, error) {
	ctx, span := tracer.Start(ctx, "Categories.Get",
		trace.WithAttributes(attribute.String("category.id", id)))
	defer span.End()

	conds := []string{"id = ?"}
	args := []interface{}{id}
	if scope.Restricted() {
		conds = append(conds, scope.Where)
		args = append(args, scope.Args...)
	}

	query := rebind("SELECT " + categoryColumns + " FROM categories" + buildWhere(conds))
	return s.scanOne(s.db.QueryRowContext(ctx, query, args...))
}

func (s *categoryStore) GetAny(ctx context.Context, id string) (*api.Category, error) {
	return s.Get(ctx, id, visibility.Scope{})
}

func (s *categoryStore) List(ctx context.Context, filter api.CategoryFilter, scope visibility.Scope, limit, offset int) ([]*api.Category, int64, error) {
	ctx, span := tracer.Start(ctx, "Categories.List")
	defer span.End()

	var conds []string
	var args []interface{}
	if scope.Restricted() {
		conds = append(conds, scope.Where)
		args = append(args, scope.Args...)
	}
	if filter.Name != "" {
		conds = append(conds, "name ILIKE ?")
		args = append(args, "%"+filter.Name+"%")
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	where := buildWhere(conds)

	var total int64
	countQuery := rebind("SELECT COUNT(*) FROM categories" + where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, mapError(err)
	}

	query := rebind("SELECT " + categoryColumns + " FROM categories" + where +
		" ORDER BY modified DESC LIMIT ? OFFSET ?")
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		span.RecordError(err)
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	categories := make([]*api.Category, 0)
	for rows.Next() {
		category, err := s.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return categories, total, nil
}

func (s *categoryStore) Update(ctx context.Context, id string, update api.CategoryUpdate) (*api.Category, error) {
	ctx, span := tracer.Start(ctx, "Categories.Update",
		trace.WithAttributes(attribute.String("category.id", id)))
	defer span.End()

	sets := []string{"modified = ?"}
	args := []interface{}{time.Now().UTC()}
	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*update.Status))
	}
	args = append(args, id)

	query := rebind("UPDATE categories SET " + joinSets(sets) +
		" WHERE id = ? RETURNING " + categoryColumns)
	return s.scanOne(s.db.QueryRowContext(ctx, query, args...))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *categoryStore) scanOne(row *sql.Row) (*api.Category, error) {
	return s.scan(row)
}

func (s *categoryStore) scan(row rowScanner) (*api.Category, error) {
	var category api.Category
	var status string
	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&status,
		&category.Modified,
		&category.Created,
	)
	if err != nil {
		return nil, mapError(err)
	}
	category.Status = visibility.Status(status)
	return &category, nil
}
