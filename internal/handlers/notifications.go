package handlers

import (
	"context"
	"net/http"

	"github.com/financefusion/api/internal/models"
	pkghttp "github.com/financefusion/api/pkg/http"
)

type NotificationServiceInterface interface {
	Create(ctx context.Context, userID int64, planName, kind, title, body string) (*models.Notification, error)
	Get(ctx context.Context, userID int64, planName string, id int64) (*models.Notification, error)
	List(ctx context.Context, userID int64, planName, status string) ([]*models.Notification, error)
	UpdateStatus(ctx context.Context, userID int64, planName string, id int64, status string) (*models.Notification, error)
	Delete(ctx context.Context, userID int64, planName string, id int64) error
}

type NotificationHandler struct {
	service NotificationServiceInterface
}

func NewNotificationHandler(service NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type CreateNotificationRequest struct {
	Type  string `json:"type"`
	Title string `json:"title" validate:"required,max=128"`
	Body  string `json:"body" validate:"max=4096"`
}

type UpdateNotificationRequest struct {
	Status string `json:"status" validate:"required"`
}

// List accepts an optional ?status filter.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	list, err := h.service.List(r.Context(), userID, planParam(r), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, mapSlice(list, toNotificationResponse))
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateNotificationRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	n, err := h.service.Create(r.Context(), userID, planParam(r), req.Type, req.Title, req.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteCreated(w, toNotificationResponse(n))
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	n, err := h.service.Get(r.Context(), userID, planParam(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toNotificationResponse(n))
}

func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateNotificationRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	n, err := h.service.UpdateStatus(r.Context(), userID, planParam(r), id, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toNotificationResponse(n))
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
