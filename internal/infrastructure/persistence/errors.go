package persistence

import (
	"errors"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// isUniqueViolation recognises a unique-index rejection from either driver
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate maps driver errors onto the domain taxonomy. resource names the
// record in a not-found message; conflict is used for unique violations.
func translate(err error, resource, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NotFound(resource)
	case isUniqueViolation(err):
		return shared.Conflict(conflict)
	default:
		return err
	}
}

// notFound maps gorm.ErrRecordNotFound only
func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NotFound(resource)
	}
	return err
}
