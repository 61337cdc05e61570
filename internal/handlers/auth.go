package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/financefusion/api/internal/auth"
	"github.com/financefusion/api/internal/models"
	"github.com/financefusion/api/internal/services"
	pkghttp "github.com/financefusion/api/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	Logout(ctx context.Context, session *models.Session) error
	Refresh(ctx context.Context, session *models.Session) (*services.LoginResult, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
	cookies  auth.CookieConfig
}

func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig, cookies auth.CookieConfig) *AuthHandler {
	return &AuthHandler{service: service, ipConfig: ipConfig, cookies: cookies}
}

// LoginRequest represents the request body for login. Code is required only
// for accounts with two-factor enabled.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Code     string `json:"code" validate:"omitempty,len=6,numeric"`
}

// Login checks credentials, opens a session and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), services.LoginInput{
		Username:  strings.TrimSpace(req.Username),
		Password:  req.Password,
		Code:      req.Code,
		IPAddress: pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.writeSession(w, result)
}

// Logout ends the current session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), session); err != nil {
		writeServiceError(w, err)
		return
	}

	auth.ClearSessionCookie(w, h.cookies)
	pkghttp.WriteNoContent(w)
}

// Refresh swaps the current session for a new one.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	result, err := h.service.Refresh(r.Context(), session)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.writeSession(w, result)
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, result *services.LoginResult) {
	auth.SetSessionCookie(w, result.Token, result.Session.ExpiresAt, h.cookies)

	resp := SessionResponse{Token: result.Token, ExpiresAt: result.Session.ExpiresAt}
	if result.User != nil {
		user := toUserResponse(result.User)
		resp.User = &user
	}
	pkghttp.WriteOK(w, resp)
}
