package handlers

import (
	"context"
	"net/http"

	"github.com/financefusion/api/internal/auth"
	pkghttp "github.com/financefusion/api/pkg/http"
)

type TwoFactorServiceInterface interface {
	BeginSetup(ctx context.Context, userID int64) (*auth.TOTPSetup, error)
	Enable(ctx context.Context, userID int64, secret, code string) error
	Disable(ctx context.Context, userID int64, code string) error
}

type TwoFactorHandler struct {
	service TwoFactorServiceInterface
}

func NewTwoFactorHandler(service TwoFactorServiceInterface) *TwoFactorHandler {
	return &TwoFactorHandler{service: service}
}

type TwoFactorSetupResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QRCode string `json:"qr_code"`
}

// EnableTwoFactorRequest echoes the secret returned by setup together with
// a code generated from it.
type EnableTwoFactorRequest struct {
	Secret string `json:"secret" validate:"required,max=128"`
	Code   string `json:"code" validate:"required,len=6,numeric"`
}

type DisableTwoFactorRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

func (h *TwoFactorHandler) Setup(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	setup, err := h.service.BeginSetup(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, TwoFactorSetupResponse{Secret: setup.Secret, URL: setup.URL, QRCode: setup.QRCode})
}

func (h *TwoFactorHandler) Enable(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req EnableTwoFactorRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.service.Enable(r.Context(), userID, req.Secret, req.Code); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteNoContent(w)
}

func (h *TwoFactorHandler) Disable(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req DisableTwoFactorRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.service.Disable(r.Context(), userID, req.Code); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteNoContent(w)
}
