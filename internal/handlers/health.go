package handlers

import (
	"context"
	"log/slog"
	"net/http"

	pkghttp "github.com/financefusion/api/pkg/http"
)

// Pinger is satisfied by *database.DB.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Health reports whether the database answers a ping.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.logger.Error("health check failed", slog.Any("error", err))
		pkghttp.WriteServiceUnavailable(w, "database unavailable")
		return
	}
	pkghttp.WriteOK(w, map[string]string{"status": "ok", "database": "ok"})
}

// Vitals is a liveness probe that touches no dependency.
func (h *HealthHandler) Vitals(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteOK(w, map[string]string{"status": "ok"})
}
