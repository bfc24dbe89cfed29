package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/clinicadelvalle/agenda-api/internal/domain"
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally restricted to a named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	return false
}

// wrapStoreErr converts infrastructure failures into ErrStoreUnavailable so
// the HTTP layer can answer 503 (retryable) instead of 500. Domain and query
// errors pass through untouched.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, gorm.ErrInvalidDB) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}
