package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financefusion/api/internal/models"
	pkghttp "github.com/financefusion/api/pkg/http"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"not found", models.ErrNotFound, http.StatusNotFound, "not_found", "resource not found"},
		{"wrapped not found", fmt.Errorf("%w: plan budget", models.ErrNotFound), http.StatusNotFound, "not_found", "plan budget"},
		{"conflict", fmt.Errorf("%w: username is already taken", models.ErrConflict), http.StatusConflict, "conflict", "username is already taken"},
		{"bad request", fmt.Errorf("%w: amount must be positive", models.ErrBadRequest), http.StatusBadRequest, "bad_request", "amount must be positive"},
		{"check violation", models.ErrCheckViolation, http.StatusBadRequest, "bad_request", "value out of range"},
		{"foreign key", models.ErrForeignKeyViolation, http.StatusBadRequest, "invalid_reference", "referenced resource does not exist"},
		{"unauthorized", models.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "authentication failed"},
		{"session expired", models.ErrSessionExpired, http.StatusUnauthorized, "unauthorized", "session expired"},
		{"two factor required", models.ErrTwoFactorRequired, http.StatusUnauthorized, "two_factor_required", "two-factor code required"},
		{"invalid two factor", models.ErrInvalidTwoFactor, http.StatusUnauthorized, "invalid_two_factor", "invalid two-factor code"},
		{"two factor enabled", models.ErrTwoFactorEnabled, http.StatusConflict, "conflict", models.ErrTwoFactorEnabled.Error()},
		{"two factor unavailable", models.ErrTwoFactorUnavailable, http.StatusServiceUnavailable, "service_unavailable", "two-factor authentication is not available"},
		{"locked", models.ErrAccountLocked, http.StatusLocked, "account_locked", "account is temporarily locked"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "internal_error", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeServiceError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp pkghttp.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestWriteServiceError_LockedSetsRetryAfter(t *testing.T) {
	w := httptest.NewRecorder()
	writeServiceError(w, &models.LockedError{Until: time.Now().Add(90 * time.Second)})

	assert.Equal(t, http.StatusLocked, w.Code)
	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 90, retry, 2)
}

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, retryAfterSeconds(now.Add(-time.Minute), now))
	assert.Equal(t, 1, retryAfterSeconds(now.Add(200*time.Millisecond), now))
	assert.Equal(t, 61, retryAfterSeconds(now.Add(60*time.Second+time.Millisecond), now))
}

func TestDate_UnmarshalJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-03-15"`), &d))
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d.Time)

	require.NoError(t, json.Unmarshal([]byte(`"2026-03-15T23:10:00Z"`), &d))
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d.Time)

	assert.Error(t, json.Unmarshal([]byte(`"15/03/2026"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20260315`), &d))

	out, err := json.Marshal(Date{Time: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-03-15"`, string(out))
}
