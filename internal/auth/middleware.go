package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/financefusion/api/internal/models"
	pkghttp "github.com/financefusion/api/pkg/http"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Authenticator resolves a raw session JWT to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*models.Session, error)
}

// RequireSession rejects requests without a live session and stores the
// session in the request context.
func RequireSession(authn Authenticator, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := TokenFromRequest(r)
			if raw == "" {
				pkghttp.WriteUnauthorized(w, "authentication required")
				return
			}

			session, err := authn.Authenticate(r.Context(), raw)
			switch {
			case err == nil:
			case errors.Is(err, models.ErrSessionExpired):
				pkghttp.WriteUnauthorized(w, "session expired")
				return
			case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrNotFound):
				pkghttp.WriteUnauthorized(w, "invalid session")
				return
			default:
				logger.Error("session lookup failed", slog.Any("error", err))
				pkghttp.WriteServiceUnavailable(w, "unable to verify session")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext returns the session stored by RequireSession, or nil.
func SessionFromContext(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionContextKey).(*models.Session)
	return session
}

// UserIDFromContext returns the authenticated user id and whether one is present.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	session := SessionFromContext(ctx)
	if session == nil {
		return 0, false
	}
	return session.UserID, true
}
