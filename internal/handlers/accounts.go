package handlers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/financefusion/api/internal/models"
	"github.com/financefusion/api/internal/services"
	pkghttp "github.com/financefusion/api/pkg/http"
)

type AccountServiceInterface interface {
	Create(ctx context.Context, userID int64, planName string, in services.AccountInput) (*models.Account, error)
	Get(ctx context.Context, userID int64, planName string, id int64) (*models.Account, error)
	List(ctx context.Context, userID int64, planName string) ([]*models.Account, error)
	Update(ctx context.Context, userID int64, planName string, id int64, in services.AccountInput) (*models.Account, error)
	Delete(ctx context.Context, userID int64, planName string, id int64) error
	SetTags(ctx context.Context, userID int64, planName string, id int64, tagIDs []int64) ([]*models.Tag, error)
}

type AccountHandler struct {
	service AccountServiceInterface
}

func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

// AccountRequest is used for both create and full update. Balance may be
// negative.
type AccountRequest struct {
	Name         string          `json:"name" validate:"required,max=64"`
	Balance      decimal.Decimal `json:"balance"`
	CurrencyCode string          `json:"currency_code" validate:"required,len=3"`
	SavingsType  *string         `json:"savings_type" validate:"omitempty,max=32"`
}

func (req AccountRequest) input() services.AccountInput {
	return services.AccountInput{
		Name:         req.Name,
		Balance:      req.Balance,
		CurrencyCode: req.CurrencyCode,
		SavingsType:  req.SavingsType,
	}
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	accounts, err := h.service.List(r.Context(), userID, planParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, mapSlice(accounts, toAccountResponse))
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req AccountRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	account, err := h.service.Create(r.Context(), userID, planParam(r), req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteCreated(w, toAccountResponse(account))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	account, err := h.service.Get(r.Context(), userID, planParam(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toAccountResponse(account))
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req AccountRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	account, err := h.service.Update(r.Context(), userID, planParam(r), id, req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toAccountResponse(account))
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), userID, planParam(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteNoContent(w)
}

func (h *AccountHandler) SetTags(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SetTagsRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	tags, err := h.service.SetTags(r.Context(), userID, planParam(r), id, req.TagIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toTagResponses(tags))
}
