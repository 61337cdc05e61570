package handlers

import (
	"context"
	"net/http"

	"github.com/financefusion/api/internal/models"
	pkghttp "github.com/financefusion/api/pkg/http"
)

type TagServiceInterface interface {
	Create(ctx context.Context, userID int64, name, icon string) (*models.Tag, error)
	List(ctx context.Context, userID int64) ([]*models.Tag, error)
	Get(ctx context.Context, userID, id int64) (*models.Tag, error)
	Update(ctx context.Context, userID, id int64, name, icon string) (*models.Tag, error)
	Delete(ctx context.Context, userID, id int64) error
}

type TagHandler struct {
	service TagServiceInterface
}

func NewTagHandler(service TagServiceInterface) *TagHandler {
	return &TagHandler{service: service}
}

type TagRequest struct {
	Name string `json:"name" validate:"required,max=64"`
	Icon string `json:"icon" validate:"max=64"`
}

// SetTagsRequest replaces the full tag set of an account or transaction.
type SetTagsRequest struct {
	TagIDs []int64 `json:"tag_ids" validate:"max=100,dive,gt=0,lte=2147483647"`
}

func toTagResponse(t *models.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, Icon: t.Icon}
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	tags, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toTagResponses(tags))
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req TagRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	tag, err := h.service.Create(r.Context(), userID, req.Name, req.Icon)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteCreated(w, toTagResponse(tag))
}

func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tag, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toTagResponse(tag))
}

func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req TagRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	tag, err := h.service.Update(r.Context(), userID, id, req.Name, req.Icon)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, toTagResponse(tag))
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteNoContent(w)
}
