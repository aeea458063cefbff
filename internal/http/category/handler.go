package category

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cashbook/internal/http/render"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.resolve)
	r.Delete("/{id}", h.delete)
}

type resolveRequest struct {
	GroupID *uuid.UUID `json:"group_id,omitempty"`
	Name    string     `json:"name"`
}

type categoryResponse struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	GroupID *uuid.UUID `json:"group_id,omitempty"`
}

// resolve returns the named category, creating it when it does not exist yet.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.ResolveCategory(r.Context(), req.GroupID, req.Name)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, categoryResponse{ID: c.ID, Name: c.Name, GroupID: c.GroupID})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		render.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
