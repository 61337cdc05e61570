package services

import (
	"errors"
	"log/slog"

	"github.com/financefusion/api/internal/models"
)

// clientErrors are sentinels that may reach the HTTP layer unchanged.
var clientErrors = []error{
	models.ErrNotFound,
	models.ErrConflict,
	models.ErrUnauthorized,
	models.ErrForbidden,
	models.ErrBadRequest,
	models.ErrForeignKeyViolation,
	models.ErrCheckViolation,
	models.ErrAccountLocked,
	models.ErrSessionExpired,
	models.ErrTwoFactorRequired,
	models.ErrInvalidTwoFactor,
	models.ErrTwoFactorDisabled,
	models.ErrTwoFactorEnabled,
	models.ErrTwoFactorUnavailable,
}

func isClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// storageError passes known sentinels through and collapses anything else
// into ErrInternalServer after logging it.
func storageError(logger *slog.Logger, msg string, err error, attrs ...any) error {
	if isClientError(err) {
		return err
	}
	logger.Error(msg, append(attrs, slog.Any("error", err))...)
	return models.ErrInternalServer
}
