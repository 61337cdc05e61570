package handlers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/financefusion/api/internal/handlers"
)

type stubPinger struct{ err error }

func (s stubPinger) HealthCheck(ctx context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("database up", func(t *testing.T) {
		w := httptest.NewRecorder()
		handlers.NewHealthHandler(stubPinger{}, logger).Health(w, httptest.NewRequest("GET", "/health", nil))

		var resp map[string]string
		handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.Equal(t, "ok", resp["database"])
	})

	t.Run("database down", func(t *testing.T) {
		w := httptest.NewRecorder()
		handlers.NewHealthHandler(stubPinger{err: errors.New("refused")}, logger).Health(w, httptest.NewRequest("GET", "/health", nil))

		handlers.AssertErrorResponse(t, w, http.StatusServiceUnavailable, "service_unavailable")
		assert.NotContains(t, w.Body.String(), "refused")
	})

	t.Run("vitals", func(t *testing.T) {
		w := httptest.NewRecorder()
		handlers.NewHealthHandler(stubPinger{err: errors.New("refused")}, logger).Vitals(w, httptest.NewRequest("GET", "/vitals", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
