package postgres

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/quanghuy1242/content-api/pkg/api"
)

type userStore struct {
	db *sql.DB
}

func (s *userStore) Create(ctx context.Context, user *api.User) error {
	ctx, span := tracer.Start(ctx, "Users.Create",
		trace.WithAttributes(attribute.String("user.id", user.ID)))
	defer span.End()

	query := rebind("INSERT INTO users (id, name, email_address) VALUES (?, ?, ?)")
	if _, err := s.db.ExecContext(ctx, query, user.ID, user.Name, user.EmailAddress); err != nil {
		span.RecordError(err)
		return mapError(err)
	}
	return nil
}

func (s *userStore) Get(ctx context.Context, id string) (*api.User, error) {
	ctx, span := tracer.Start(ctx, "Users.Get",
		trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()

	query := rebind("SELECT id, name, email_address FROM users WHERE id = ?")
	var user api.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Name, &user.EmailAddress)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (s *userStore) List(ctx context.Context, limit, offset int) ([]*api.User, int64, error) {
	ctx, span := tracer.Start(ctx, "Users.List")
	defer span.End()

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, mapError(err)
	}

	query := rebind("SELECT id, name, email_address FROM users ORDER BY id LIMIT ? OFFSET ?")
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	users := make([]*api.User, 0)
	for rows.Next() {
		var user api.User
		if err := rows.Scan(&user.ID, &user.Name, &user.EmailAddress); err != nil {
			return nil, 0, mapError(err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return users, total, nil
}
