package handlers

import (
	"context"
	"net/http"

	"github.com/financefusion/api/internal/models"
	pkghttp "github.com/financefusion/api/pkg/http"
)

type PlanServiceInterface interface {
	Create(ctx context.Context, userID int64, name string) (*models.Plan, error)
	List(ctx context.Context, userID int64) ([]*models.Plan, error)
	Get(ctx context.Context, userID int64, planName string) (*models.Plan, error)
	Delete(ctx context.Context, userID int64, planName string) error
}

type PlanHandler struct {
	service PlanServiceInterface
}

func NewPlanHandler(service PlanServiceInterface) *PlanHandler {
	return &PlanHandler{service: service}
}

func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	plans, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, mapSlice(plans, toPlanResponse))
}

// Create claims the plan name in the URL. Names are unique across users.
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	plan, err := h.service.Create(r.Context(), userID, planParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteCreated(w, toPlanResponse(plan))
}

func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	plan, err := h.service.Get(r.Context(), userID, planParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toPlanResponse(plan))
}

func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), userID, planParam(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteNoContent(w)
}
