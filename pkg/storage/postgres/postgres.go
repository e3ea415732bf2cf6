// Package postgres implements the content service's persistence against
// PostgreSQL, with S3 for image bytes and Redis for the signed-URL cache.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.opentelemetry.io/otel"

	"github.com/quanghuy1242/content-api/pkg/api"
	"github.com/quanghuy1242/content-api/pkg/storage"
)

var tracer = otel.Tracer("content-api/storage/postgres")

// Storage implements api.Storage using PostgreSQL.
type Storage struct {
	db         *sql.DB
	config     storage.Config
	categories *categoryStore
	contents   *contentStore
	images     *imageStore
	users      *userStore
}

// NewStorage creates a new PostgreSQL-backed storage
func NewStorage(config storage.Config) (*Storage, error) {
	db, err := sql.Open("postgres", config.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.PostgresMaxConns)
	db.SetMaxIdleConns(config.PostgresMinConns)
	db.SetConnMaxLifetime(config.PostgresMaxLifetime)
	db.SetConnMaxIdleTime(config.PostgresMaxIdleTime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), config.PostgresTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return newStorageWithDB(db, config), nil
}

// NewStorageWithDB wraps an existing connection. Used by tests and by
// callers that manage the pool themselves.
func NewStorageWithDB(db *sql.DB) *Storage {
	return newStorageWithDB(db, storage.DefaultConfig())
}

func newStorageWithDB(db *sql.DB, config storage.Config) *Storage {
	return &Storage{
		db:         db,
		config:     config,
		categories: &categoryStore{db: db},
		contents:   &contentStore{db: db},
		images:     &imageStore{db: db},
		users:      &userStore{db: db},
	}
}

// Categories returns the category store.
func (s *Storage) Categories() api.CategoryStore { return s.categories }

// Contents returns the content store.
func (s *Storage) Contents() api.ContentStore { return s.contents }

// Images returns the image store.
func (s *Storage) Images() api.ImageStore { return s.images }

// Users returns the user store.
func (s *Storage) Users() api.UserStore { return s.users }

// DB exposes the underlying pool for health checks.
func (s *Storage) DB() *sql.DB { return s.db }

// Close closes the database connection pool.
func (s *Storage) Close() error {
	return s.db.Close()
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	return nil
}

// rebind rewrites "?" placeholders to PostgreSQL's positional "$n" form.
// Conditions are assembled driver-agnostically (visibility scopes use "?")
// and converted once, just before execution.
func rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// tagConditions builds the membership predicate over the comma-joined tags
// column, one condition per requested tag. A tag matches when it sits at
// the start, the end, the middle of the stored string, or is the whole
// string.
func tagConditions(tags []string) ([]string, []interface{}) {
	var conds []string
	var args []interface{}
	for _, t := range tags {
		if t == "" {
			continue
		}
		conds = append(conds, "(tags LIKE ? OR tags LIKE ? OR tags LIKE ? OR tags LIKE ? OR tags = ?)")
		args = append(args, t+",%", ","+t+"%", "%,"+t, "%,"+t+",%", t)
	}
	return conds, args
}

// buildWhere joins conditions into a WHERE clause, or returns "" when there
// are none.
func buildWhere(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func joinSets(sets []string) string {
	return strings.Join(sets, ", ")
}
