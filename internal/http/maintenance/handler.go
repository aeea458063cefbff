package maintenance

import (
	"net/http"

	"github.com/go-chi/chi/v5"

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
	r.Post("/cleanup", h.cleanup)
}

type cleanupResponse struct {
	Deleted int `json:"deleted"`
}

func (h *Handler) cleanup(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Cleanup(r.Context())
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, cleanupResponse{Deleted: n})
}
