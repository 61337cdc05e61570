package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/financefusion/api/internal/models"
	pkghttp "github.com/financefusion/api/pkg/http"
)

type CurrencyServiceInterface interface {
	Create(ctx context.Context, userID int64, code, name string) (*models.Currency, error)
	Get(ctx context.Context, code string) (*models.Currency, error)
	List(ctx context.Context, userID int64, mine bool) ([]*models.Currency, error)
	Delete(ctx context.Context, userID int64, code string) error
}

type CurrencyHandler struct {
	service CurrencyServiceInterface
}

func NewCurrencyHandler(service CurrencyServiceInterface) *CurrencyHandler {
	return &CurrencyHandler{service: service}
}

type CreateCurrencyRequest struct {
	Code string `json:"code" validate:"required,len=3,alpha"`
	Name string `json:"name" validate:"required,max=64"`
}

// List returns every currency, or only the caller's with ?mine=true.
func (h *CurrencyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	mine := false
	if raw := r.URL.Query().Get("mine"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			pkghttp.WriteBadRequest(w, "invalid mine")
			return
		}
		mine = v
	}

	currencies, err := h.service.List(r.Context(), userID, mine)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, mapSlice(currencies, toCurrencyResponse))
}

func (h *CurrencyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateCurrencyRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	currency, err := h.service.Create(r.Context(), userID, req.Code, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteCreated(w, toCurrencyResponse(currency))
}

func (h *CurrencyHandler) Get(w http.ResponseWriter, r *http.Request) {
	currency, err := h.service.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toCurrencyResponse(currency))
}

func (h *CurrencyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "code")); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteNoContent(w)
}
