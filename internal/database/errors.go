package database

import (
	"errors"
	"fmt"

	"github.com/financefusion/api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes mapped by MapPostgresError.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeNotNullViolation    = "23502"
	CodeStringTooLong       = "22001"
	CodeNumericOutOfRange   = "22003"
)

// MapPostgresError translates driver errors into model sentinels. The
// constraint or column name is kept in the message.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case CodeUniqueViolation:
			return fmt.Errorf("%w: %s", models.ErrConflict, pgErr.ConstraintName)
		case CodeForeignKeyViolation:
			return fmt.Errorf("%w: %s", models.ErrForeignKeyViolation, pgErr.ConstraintName)
		case CodeCheckViolation:
			return fmt.Errorf("%w: %s", models.ErrCheckViolation, pgErr.ConstraintName)
		case CodeNotNullViolation:
			return fmt.Errorf("%w: %s is required", models.ErrBadRequest, pgErr.ColumnName)
		case CodeStringTooLong, CodeNumericOutOfRange:
			return fmt.Errorf("%w: %s", models.ErrBadRequest, pgErr.Message)
		}
	}

	return err
}
