package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/financefusion/api/internal/auth"
	pkghttp "github.com/financefusion/api/pkg/http"
)

// parseID accepts ids in the range of the SERIAL columns they address.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 32)
	return id, err == nil && id >= 1
}

// pathID parses a positive integer URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, ok := parseID(chi.URLParam(r, name))
	if !ok {
		pkghttp.WriteBadRequest(w, "invalid "+name)
		return 0, false
	}
	return id, true
}

// planParam returns the {plan} URL parameter.
func planParam(r *http.Request) string {
	return chi.URLParam(r, "plan")
}

// requireUser returns the authenticated user id, writing a 401 when the
// request carries no session.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return 0, false
	}
	return userID, true
}

// optionalInt64 parses an optional positive integer query parameter.
func optionalInt64(w http.ResponseWriter, r *http.Request, name string) (*int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, ok := parseID(raw)
	if !ok {
		pkghttp.WriteBadRequest(w, "invalid "+name)
		return nil, false
	}
	return &v, true
}
