package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/financefusion/api/internal/models"
	pkghttp "github.com/financefusion/api/pkg/http"
)

// writeServiceError maps a service error onto the response envelope.
// Anything outside the sentinel set becomes a 500 without detail.
func writeServiceError(w http.ResponseWriter, err error) {
	var locked *models.LockedError
	switch {
	case errors.As(err, &locked):
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(locked.Until, time.Now())))
		pkghttp.WriteLocked(w, "account is temporarily locked")
	case errors.Is(err, models.ErrAccountLocked):
		pkghttp.WriteLocked(w, "account is temporarily locked")
	case errors.Is(err, models.ErrTwoFactorRequired):
		pkghttp.WriteError(w, http.StatusUnauthorized, "two_factor_required", "two-factor code required")
	case errors.Is(err, models.ErrInvalidTwoFactor):
		pkghttp.WriteError(w, http.StatusUnauthorized, "invalid_two_factor", "invalid two-factor code")
	case errors.Is(err, models.ErrSessionExpired):
		pkghttp.WriteUnauthorized(w, "session expired")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, detail(err, models.ErrUnauthorized, "authentication failed"))
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, detail(err, models.ErrForbidden, "forbidden"))
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, detail(err, models.ErrNotFound, "resource not found"))
	case errors.Is(err, models.ErrTwoFactorEnabled), errors.Is(err, models.ErrTwoFactorDisabled):
		pkghttp.WriteConflict(w, err.Error())
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, detail(err, models.ErrConflict, "resource already exists"))
	case errors.Is(err, models.ErrTwoFactorUnavailable):
		pkghttp.WriteServiceUnavailable(w, "two-factor authentication is not available")
	case errors.Is(err, models.ErrForeignKeyViolation):
		pkghttp.WriteError(w, http.StatusBadRequest, "invalid_reference", "referenced resource does not exist")
	case errors.Is(err, models.ErrCheckViolation):
		pkghttp.WriteBadRequest(w, "value out of range")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, detail(err, models.ErrBadRequest, "bad request"))
	default:
		pkghttp.WriteInternalError(w, "internal server error")
	}
}

// detail strips the sentinel prefix from a wrapped error, falling back to
// fallback when the sentinel was returned bare.
func detail(err, sentinel error, fallback string) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == sentinel.Error() || msg == "" {
		return fallback
	}
	return msg
}

func retryAfterSeconds(until, now time.Time) int {
	secs := int(math.Ceil(until.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
