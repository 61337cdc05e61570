package handlers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/financefusion/api/internal/models"
	"github.com/financefusion/api/internal/services"
	pkghttp "github.com/financefusion/api/pkg/http"
)

type BudgetServiceInterface interface {
	Create(ctx context.Context, userID int64, planName string, in services.BudgetInput) (*models.Budget, error)
	Get(ctx context.Context, userID int64, planName string, id int64) (*models.Budget, error)
	List(ctx context.Context, userID int64, planName string) ([]*models.Budget, error)
	Update(ctx context.Context, userID int64, planName string, id int64, in services.BudgetInput) (*models.Budget, error)
	Delete(ctx context.Context, userID int64, planName string, id int64) error
}

type BudgetHandler struct {
	service BudgetServiceInterface
}

func NewBudgetHandler(service BudgetServiceInterface) *BudgetHandler {
	return &BudgetHandler{service: service}
}

type BudgetRequest struct {
	Name         string          `json:"name" validate:"required,max=64"`
	Amount       decimal.Decimal `json:"amount"`
	Interval     string          `json:"interval" validate:"required"`
	CurrencyCode string          `json:"currency_code" validate:"required,len=3"`
	StartDate    Date            `json:"start_date" validate:"required"`
	EndDate      *Date           `json:"end_date"`
}

func (req BudgetRequest) input() services.BudgetInput {
	return services.BudgetInput{
		Name:         req.Name,
		Amount:       req.Amount,
		Interval:     req.Interval,
		CurrencyCode: req.CurrencyCode,
		StartDate:    req.StartDate.Time,
		EndDate:      datePtr(req.EndDate),
	}
}

func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	budgets, err := h.service.List(r.Context(), userID, planParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, mapSlice(budgets, toBudgetResponse))
}

func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req BudgetRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	budget, err := h.service.Create(r.Context(), userID, planParam(r), req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteCreated(w, toBudgetResponse(budget))
}

func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	budget, err := h.service.Get(r.Context(), userID, planParam(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toBudgetResponse(budget))
}

func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req BudgetRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	budget, err := h.service.Update(r.Context(), userID, planParam(r), id, req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toBudgetResponse(budget))
}

func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
