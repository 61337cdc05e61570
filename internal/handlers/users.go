package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/financefusion/api/internal/auth"
	"github.com/financefusion/api/internal/models"
	pkghttp "github.com/financefusion/api/pkg/http"
)

// UserServiceInterface defines the user operations used by UserHandler.
type UserServiceInterface interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ChangePassword(ctx context.Context, id int64, current, next, ip string) error
	SetDevMode(ctx context.Context, id int64, enabled bool) (*models.User, error)
	DeleteUser(ctx context.Context, id int64, ip string) error
}

type UserHandler struct {
	service  UserServiceInterface
	ipConfig *pkghttp.IPConfig
	cookies  auth.CookieConfig
}

func NewUserHandler(service UserServiceInterface, ipConfig *pkghttp.IPConfig, cookies auth.CookieConfig) *UserHandler {
	return &UserHandler{service: service, ipConfig: ipConfig, cookies: cookies}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type UpdateUserRequest struct {
	IsDevMode *bool `json:"is_dev_mode" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,max=72"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// Register creates a user. Usernames are public, so a taken name is
// reported as a conflict.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteCreated(w, toUserResponse(user))
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toUserResponse(user))
}

// UpdateMe toggles developer mode.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.service.SetDevMode(r.Context(), userID, *req.IsDevMode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toUserResponse(user))
}

// ChangePassword revokes every session, so the cookie is cleared as well.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	if err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword, ip); err != nil {
		writeServiceError(w, err)
		return
	}

	auth.ClearSessionCookie(w, h.cookies)
	pkghttp.WriteNoContent(w)
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	if err := h.service.DeleteUser(r.Context(), userID, ip); err != nil {
		writeServiceError(w, err)
		return
	}

	auth.ClearSessionCookie(w, h.cookies)
	pkghttp.WriteNoContent(w)
}

// GetByUsername returns another user's public profile.
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toPublicUserResponse(user))
}
