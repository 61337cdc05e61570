package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Storage constraint errors
	ErrForeignKeyViolation = errors.New("referenced resource does not exist")
	ErrCheckViolation      = errors.New("value violates a check constraint")

	// Account state errors
	ErrAccountLocked     = errors.New("account is temporarily locked")
	ErrSessionExpired    = errors.New("session expired")
	ErrTwoFactorRequired = errors.New("two-factor code required")
	ErrInvalidTwoFactor  = errors.New("invalid two-factor code")
	ErrTwoFactorDisabled = errors.New("two-factor authentication is not enabled")
	ErrTwoFactorEnabled  = errors.New("two-factor authentication is already enabled")

	ErrTwoFactorUnavailable = errors.New("two-factor authentication is not configured")
)

// LockedError carries the lock expiry for an ErrAccountLocked rejection.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s until %s", ErrAccountLocked, e.Until.UTC().Format(time.RFC3339))
}

func (e *LockedError) Unwrap() error { return ErrAccountLocked }
