package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financefusion/api/internal/auth"
	"github.com/financefusion/api/internal/handlers"
	"github.com/financefusion/api/internal/models"
)

func TestRegister_Success(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mockUsers := &handlers.MockUserService{
		RegisterFunc: func(ctx context.Context, username, password string) (*models.User, error) {
			return &models.User{ID: 1, Username: username, CreatedAt: created}, nil
		},
	}
	handler := handlers.NewUserHandler(mockUsers, nil, auth.CookieConfig{})

	w := httptest.NewRecorder()
	handler.Register(w, handlers.NewTestRequest(t, "POST", "/users", handlers.RegisterRequest{
		Username: "alice",
		Password: "password123",
	}))

	var resp handlers.UserResponse
	handlers.AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "alice", resp.Username)
	assert.False(t, resp.TwoFactorEnabled)
	assert.NotContains(t, w.Body.String(), "pw_hash")
}

func TestRegister_Conflict(t *testing.T) {
	mockUsers := &handlers.MockUserService{
		RegisterFunc: func(ctx context.Context, username, password string) (*models.User, error) {
			return nil, fmt.Errorf("%w: username is already taken", models.ErrConflict)
		},
	}
	handler := handlers.NewUserHandler(mockUsers, nil, auth.CookieConfig{})

	w := httptest.NewRecorder()
	handler.Register(w, handlers.NewTestRequest(t, "POST", "/users", handlers.RegisterRequest{
		Username: "alice",
		Password: "password123",
	}))

	handlers.AssertErrorResponse(t, w, http.StatusConflict, "conflict")
}

func TestRegister_ShortPassword(t *testing.T) {
	handler := handlers.NewUserHandler(&handlers.MockUserService{}, nil, auth.CookieConfig{})

	w := httptest.NewRecorder()
	handler.Register(w, handlers.NewTestRequest(t, "POST", "/users", handlers.RegisterRequest{
		Username: "alice",
		Password: "short",
	}))

	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestMe(t *testing.T) {
	secret := "sealed"
	mockUsers := &handlers.MockUserService{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Username: "alice", TwoFactorSecret: &secret, IsDevMode: true}, nil
		},
	}
	handler := handlers.NewUserHandler(mockUsers, nil, auth.CookieConfig{})

	w := httptest.NewRecorder()
	handler.Me(w, handlers.WithSessionContext(httptest.NewRequest("GET", "/users/me", nil), 5))

	var resp handlers.UserResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, int64(5), resp.ID)
	assert.True(t, resp.TwoFactorEnabled)
	assert.True(t, resp.IsDevMode)
	assert.NotContains(t, w.Body.String(), secret)
}

func TestMe_NoSession(t *testing.T) {
	handler := handlers.NewUserHandler(&handlers.MockUserService{}, nil, auth.CookieConfig{})

	w := httptest.NewRecorder()
	handler.Me(w, httptest.NewRequest("GET", "/users/me", nil))

	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestUpdateMe(t *testing.T) {
	var gotEnabled *bool
	mockUsers := &handlers.MockUserService{
		SetDevModeFunc: func(ctx context.Context, id int64, enabled bool) (*models.User, error) {
			gotEnabled = &enabled
			return &models.User{ID: id, Username: "alice", IsDevMode: enabled}, nil
		},
	}
	handler := handlers.NewUserHandler(mockUsers, nil, auth.CookieConfig{})

	t.Run("false is a valid value", func(t *testing.T) {
		req := handlers.NewTestRequest(t, "PATCH", "/users/me", map[string]bool{"is_dev_mode": false})
		w := httptest.NewRecorder()
		handler.UpdateMe(w, handlers.WithSessionContext(req, 5))

		handlers.AssertJSONResponse(t, w, http.StatusOK, nil)
		require.NotNil(t, gotEnabled)
		assert.False(t, *gotEnabled)
	})

	t.Run("missing field", func(t *testing.T) {
		req := handlers.NewTestRequest(t, "PATCH", "/users/me", map[string]any{})
		w := httptest.NewRecorder()
		handler.UpdateMe(w, handlers.WithSessionContext(req, 5))

		handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
	})
}

func TestChangePassword(t *testing.T) {
	mockUsers := &handlers.MockUserService{
		ChangePasswordFunc: func(ctx context.Context, id int64, current, next, ip string) error {
			if current != "old-password" {
				return fmt.Errorf("%w: current password is incorrect", models.ErrUnauthorized)
			}
			return nil
		},
	}
	handler := handlers.NewUserHandler(mockUsers, nil, auth.CookieConfig{})

	req := handlers.NewTestRequest(t, "PUT", "/users/me/password", handlers.ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password",
	})
	w := httptest.NewRecorder()
	handler.ChangePassword(w, handlers.WithSessionContext(req, 5))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Result().Cookies())

	req = handlers.NewTestRequest(t, "PUT", "/users/me/password", handlers.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-password",
	})
	w = httptest.NewRecorder()
	handler.ChangePassword(w, handlers.WithSessionContext(req, 5))
	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestDeleteMe(t *testing.T) {
	var deleted int64
	mockUsers := &handlers.MockUserService{
		DeleteUserFunc: func(ctx context.Context, id int64, ip string) error {
			deleted = id
			return nil
		},
	}
	handler := handlers.NewUserHandler(mockUsers, nil, auth.CookieConfig{})

	w := httptest.NewRecorder()
	handler.DeleteMe(w, handlers.WithSessionContext(httptest.NewRequest("DELETE", "/users/me", nil), 9))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(9), deleted)
}

func TestDeleteMe_Conflict(t *testing.T) {
	mockUsers := &handlers.MockUserService{
		DeleteUserFunc: func(ctx context.Context, id int64, ip string) error {
			return fmt.Errorf("%w: a currency owned by this user is used by another user's plan", models.ErrConflict)
		},
	}
	handler := handlers.NewUserHandler(mockUsers, nil, auth.CookieConfig{})

	w := httptest.NewRecorder()
	handler.DeleteMe(w, handlers.WithSessionContext(httptest.NewRequest("DELETE", "/users/me", nil), 9))

	handlers.AssertErrorResponse(t, w, http.StatusConflict, "conflict")
	assert.Empty(t, w.Result().Cookies())
}

func TestGetByUsername_PublicProfile(t *testing.T) {
	mockUsers := &handlers.MockUserService{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: 3, Username: username, IsDevMode: true, PasswordHash: "$2a$hash"}, nil
		},
	}
	handler := handlers.NewUserHandler(mockUsers, nil, auth.CookieConfig{})

	req := httptest.NewRequest("GET", "/users/username/bob", nil)
	req = handlers.WithChiRouteContext(req, map[string]string{"username": "bob"})
	w := httptest.NewRecorder()
	handler.GetByUsername(w, req)

	var resp map[string]any
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "bob", resp["username"])
	assert.NotContains(t, resp, "is_dev_mode")
	assert.NotContains(t, w.Body.String(), "$2a$hash")
}

func TestTwoFactorHandler(t *testing.T) {
	mock := &handlers.MockTwoFactorService{
		BeginSetupFunc: func(ctx context.Context, userID int64) (*auth.TOTPSetup, error) {
			return &auth.TOTPSetup{Secret: "JBSWY3DPEHPK3PXP", URL: "otpauth://totp/x", QRCode: "data:image/png;base64,AA"}, nil
		},
		EnableFunc: func(ctx context.Context, userID int64, secret, code string) error {
			if code != "123456" {
				return models.ErrInvalidTwoFactor
			}
			return nil
		},
	}
	handler := handlers.NewTwoFactorHandler(mock)

	w := httptest.NewRecorder()
	handler.Setup(w, handlers.WithSessionContext(httptest.NewRequest("POST", "/users/me/2fa/setup", nil), 1))
	var setup handlers.TwoFactorSetupResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &setup)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", setup.Secret)

	req := handlers.NewTestRequest(t, "POST", "/users/me/2fa/enable", handlers.EnableTwoFactorRequest{Secret: setup.Secret, Code: "123456"})
	w = httptest.NewRecorder()
	handler.Enable(w, handlers.WithSessionContext(req, 1))
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = handlers.NewTestRequest(t, "POST", "/users/me/2fa/enable", handlers.EnableTwoFactorRequest{Secret: setup.Secret, Code: "654321"})
	w = httptest.NewRecorder()
	handler.Enable(w, handlers.WithSessionContext(req, 1))
	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "invalid_two_factor")
}

func TestTwoFactorHandler_Unavailable(t *testing.T) {
	handler := handlers.NewTwoFactorHandler(&handlers.MockTwoFactorService{})

	w := httptest.NewRecorder()
	handler.Setup(w, handlers.WithSessionContext(httptest.NewRequest("POST", "/users/me/2fa/setup", nil), 1))

	handlers.AssertErrorResponse(t, w, http.StatusServiceUnavailable, "service_unavailable")
}
