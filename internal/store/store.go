// Package store provides database access for all catalog entities. Each
// store struct wraps a *sql.DB and exposes typed query methods. Uniqueness
// is enforced by the schema's UNIQUE constraints; a losing concurrent writer
// surfaces as models.ErrConflict rather than corrupting the invariant.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"curio/internal/models"
)

// uniqueViolation is the PostgreSQL error code for a UNIQUE constraint hit.
const uniqueViolation = "23505"

// mapConflict converts a unique-constraint violation into the conflict
// sentinel so callers never need to inspect driver error codes.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return models.ErrConflict
	}
	return err
}
