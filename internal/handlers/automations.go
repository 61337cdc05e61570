package handlers

import (
	"context"
	"net/http"

	"github.com/financefusion/api/internal/models"
	"github.com/financefusion/api/internal/services"
	pkghttp "github.com/financefusion/api/pkg/http"
)

type AutomationServiceInterface interface {
	Create(ctx context.Context, userID int64, planName string, in services.AutomationInput) (*models.Automation, error)
	Get(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error)
	List(ctx context.Context, userID int64, planName string) ([]*models.Automation, error)
	Update(ctx context.Context, userID int64, planName string, id int64, in services.AutomationInput) (*models.Automation, error)
	Pause(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error)
	Resume(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error)
	Delete(ctx context.Context, userID int64, planName string, id int64) error
}

type AutomationHandler struct {
	service AutomationServiceInterface
}

func NewAutomationHandler(service AutomationServiceInterface) *AutomationHandler {
	return &AutomationHandler{service: service}
}

type AutomationRequest struct {
	FlowRequest
	Frequency string `json:"frequency" validate:"required"`
	StartDate Date   `json:"start_date" validate:"required"`
	EndDate   *Date  `json:"end_date"`
}

func (req AutomationRequest) input() services.AutomationInput {
	return services.AutomationInput{
		FlowInput: req.FlowRequest.input(),
		Frequency: req.Frequency,
		StartDate: req.StartDate.Time,
		EndDate:   datePtr(req.EndDate),
	}
}

func (h *AutomationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	automations, err := h.service.List(r.Context(), userID, planParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, mapSlice(automations, toAutomationResponse))
}

func (h *AutomationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req AutomationRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	a, err := h.service.Create(r.Context(), userID, planParam(r), req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteCreated(w, toAutomationResponse(a))
}

func (h *AutomationHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withAutomation(w, r, h.service.Get)
}

func (h *AutomationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req AutomationRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	a, err := h.service.Update(r.Context(), userID, planParam(r), id, req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toAutomationResponse(a))
}

func (h *AutomationHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.withAutomation(w, r, h.service.Pause)
}

func (h *AutomationHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.withAutomation(w, r, h.service.Resume)
}

func (h *AutomationHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

type automationOp func(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error)

// withAutomation runs a body-less operation on /automations/{id}.
func (h *AutomationHandler) withAutomation(w http.ResponseWriter, r *http.Request, op automationOp) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := op(r.Context(), userID, planParam(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toAutomationResponse(a))
}
