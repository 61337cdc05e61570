package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/financefusion/api/internal/models"
	"github.com/financefusion/api/internal/pagination"
	"github.com/financefusion/api/internal/services"
	pkghttp "github.com/financefusion/api/pkg/http"
)

type TransactionServiceInterface interface {
	Create(ctx context.Context, userID int64, planName string, in services.FlowInput, tagIDs []int64) (*models.Transaction, error)
	Get(ctx context.Context, userID int64, planName string, id int64) (*models.Transaction, error)
	List(ctx context.Context, userID int64, planName string, opts services.TransactionListOptions) (pagination.PageResponse[*models.Transaction], error)
	Cancel(ctx context.Context, userID int64, planName string, id int64) (*models.Transaction, error)
	Delete(ctx context.Context, userID int64, planName string, id int64) error
	SetTags(ctx context.Context, userID int64, planName string, id int64, tagIDs []int64) ([]*models.Tag, error)
}

type TransactionHandler struct {
	service TransactionServiceInterface
}

func NewTransactionHandler(service TransactionServiceInterface) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// FlowRequest is the money movement shared by transactions and automations.
type FlowRequest struct {
	Type         string          `json:"type" validate:"required"`
	FromAccount  *int64          `json:"from_account" validate:"omitempty,gt=0,lte=2147483647"`
	ToAccount    *int64          `json:"to_account" validate:"omitempty,gt=0,lte=2147483647"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code" validate:"required,len=3"`
	Statement    string          `json:"statement" validate:"max=255"`
}

func (req FlowRequest) input() services.FlowInput {
	return services.FlowInput{
		Type:         req.Type,
		FromAccount:  req.FromAccount,
		ToAccount:    req.ToAccount,
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		Statement:    req.Statement,
	}
}

type CreateTransactionRequest struct {
	FlowRequest
	TagIDs []int64 `json:"tag_ids" validate:"max=100,dive,gt=0,lte=2147483647"`
}

type TransactionPageResponse = pagination.PageResponse[TransactionResponse]

// List supports ?page, ?page_size, ?account_id and ?include_cancelled.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	accountID, ok := optionalInt64(w, r, "account_id")
	if !ok {
		return
	}
	includeCancelled := false
	if raw := r.URL.Query().Get("include_cancelled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			pkghttp.WriteBadRequest(w, "invalid include_cancelled")
			return
		}
		includeCancelled = v
	}

	page, err := h.service.List(r.Context(), userID, planParam(r), services.TransactionListOptions{
		AccountID:        accountID,
		IncludeCancelled: includeCancelled,
		Page:             pagination.FromQuery(r.URL.Query()),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteOK(w, TransactionPageResponse{
		Data:       mapSlice(page.Data, toTransactionResponse),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	})
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateTransactionRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	tx, err := h.service.Create(r.Context(), userID, planParam(r), req.input(), req.TagIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteCreated(w, toTransactionResponse(tx))
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tx, err := h.service.Get(r.Context(), userID, planParam(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toTransactionResponse(tx))
}

// Cancel flags the transaction; transactions are never edited in place.
func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tx, err := h.service.Cancel(r.Context(), userID, planParam(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toTransactionResponse(tx))
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *TransactionHandler) SetTags(w http.ResponseWriter, r *http.Request) {
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
