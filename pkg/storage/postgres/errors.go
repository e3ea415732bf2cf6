package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/quanghuy1242/content-api/pkg/apperr"
)

// PostgreSQL error codes surfaced to clients as constraint failures.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Client-facing constraint messages. The wording is part of the API
// contract; clients string-match on these.
const (
	msgDuplicate       = "The record already exist somehow, maybe title or slug are already used!"
	msgUnknownRelation = "You are trying to create record with unknown relationships (unknown category, unknown user)"
	msgNotFound        = "Not found"
)

// mapError converts driver errors into domain errors. Anything that is not
// a recognized constraint failure or a missing row wraps as internal.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(msgNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return apperr.Wrap(apperr.Conflict(msgDuplicate), err)
		case pgForeignKeyViolation:
			return apperr.Wrap(apperr.Conflict(msgUnknownRelation), err)
		}
	}
	return apperr.Internal(err)
}
