package entry

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

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
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createEntryRequest struct {
	Kind            ledger.Kind     `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	AccountID       uuid.UUID       `json:"account_id"`
	TargetAccountID *uuid.UUID      `json:"target_account_id,omitempty"`
	Usage           string          `json:"usage"`
	Date            time.Time       `json:"date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.svc.CreateEntry(r.Context(), ledger.CreateParams{
		Kind:            req.Kind,
		Amount:          req.Amount,
		Category:        req.Category,
		AccountID:       req.AccountID,
		TargetAccountID: req.TargetAccountID,
		Usage:           req.Usage,
		Date:            req.Date,
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponseList(entries))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ledger.EntryFilter{}
	q := r.URL.Query()

	if s := q.Get("account_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid account_id", http.StatusBadRequest)
			return
		}

		filter.AccountID = new(id)
	}

	if s := q.Get("kind"); s != "" {
		filter.Kind = new(ledger.Kind(s))
	}

	if s := q.Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.From = new(t)
		}
	}

	if s := q.Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.To = new(t)
		}
	}

	entries, err := h.svc.ListEntries(r.Context(), filter)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponseList(entries))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	e, err := h.svc.GetEntry(r.Context(), id)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(e))
}

type updateEntryRequest struct {
	Kind            *ledger.Kind     `json:"kind,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Category        *string          `json:"category,omitempty"`
	TargetAccountID *uuid.UUID       `json:"target_account_id,omitempty"`
	Usage           *string          `json:"usage,omitempty"`
	Date            *time.Time       `json:"date,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.svc.GetEntry(r.Context(), id)
	if err != nil {
		render.Error(w, err)
		return
	}

	if req.Kind != nil {
		e.Kind = *req.Kind
	}

	if req.Amount != nil {
		e.Amount = *req.Amount
	}

	if req.Category != nil {
		e.Category = *req.Category
	}

	if req.TargetAccountID != nil {
		e.TargetAccountID = req.TargetAccountID
	}

	if req.Usage != nil {
		e.Usage = *req.Usage
	}

	if req.Date != nil {
		e.Date = *req.Date
	}

	if e.Kind != ledger.KindTransfer {
		e.TargetAccountID = nil
	}

	if err := h.svc.UpdateEntry(r.Context(), e); err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteEntry(r.Context(), id); err != nil {
		render.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
