package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/financefusion/api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
		contains string
	}{
		{"no rows", pgx.ErrNoRows, models.ErrNotFound, ""},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), models.ErrNotFound, ""},
		{"unique", &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "plans_pkey"}, models.ErrConflict, "plans_pkey"},
		{"foreign key", &pgconn.PgError{Code: CodeForeignKeyViolation, ConstraintName: "accounts_currency_code_fkey"}, models.ErrForeignKeyViolation, "accounts_currency_code_fkey"},
		{"check", &pgconn.PgError{Code: CodeCheckViolation, ConstraintName: "users_invalid_login_attempts_check"}, models.ErrCheckViolation, "users_invalid_login_attempts_check"},
		{"not null", &pgconn.PgError{Code: CodeNotNullViolation, ColumnName: "title"}, models.ErrBadRequest, "title is required"},
		{"too long", &pgconn.PgError{Code: CodeStringTooLong, Message: "value too long for type character varying(64)"}, models.ErrBadRequest, "varying(64)"},
		{"wrapped pg error", fmt.Errorf("insert: %w", &pgconn.PgError{Code: CodeUniqueViolation}), models.ErrConflict, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapPostgresError(tt.err)
			assert.ErrorIs(t, got, tt.expected)
			if tt.contains != "" {
				assert.Contains(t, got.Error(), tt.contains)
			}
		})
	}
}

func TestMapPostgresError_Passthrough(t *testing.T) {
	assert.NoError(t, MapPostgresError(nil))

	other := errors.New("connection reset")
	assert.Equal(t, other, MapPostgresError(other))

	unmapped := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(unmapped), MapPostgresError(unmapped))
}
