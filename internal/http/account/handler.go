package account

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cashbook/internal/http/render"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

// Handler serves accounts, account groups and their balances.
type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}/balance", h.balance)
}

func (h *Handler) GroupRoutes(r chi.Router) {
	r.Get("/", h.listGroups)
	r.Post("/", h.createGroup)
	r.Get("/{id}/balance", h.groupBalance)
}

type accountRequest struct {
	GroupID           uuid.UUID          `json:"group_id"`
	Name              string             `json:"name"`
	Kind              ledger.AccountKind `json:"kind"`
	IncludedInBalance *bool              `json:"included_in_balance,omitempty"`
	Order             int                `json:"order"`
}

type accountResponse struct {
	ID                uuid.UUID          `json:"id"`
	GroupID           uuid.UUID          `json:"group_id"`
	Name              string             `json:"name"`
	Kind              ledger.AccountKind `json:"kind"`
	IncludedInBalance bool               `json:"included_in_balance"`
	Order             int                `json:"order"`
}

type groupRequest struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type groupResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Order int       `json:"order"`
}

type balanceResponse struct {
	ID      uuid.UUID       `json:"id"`
	View    ledger.View     `json:"view"`
	Balance decimal.Decimal `json:"balance"`
}

func toAccountResponse(a *ledger.Account) accountResponse {
	return accountResponse{
		ID:                a.ID,
		GroupID:           a.GroupID,
		Name:              a.Name,
		Kind:              a.Kind,
		IncludedInBalance: a.IncludedInBalance,
		Order:             a.Order,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		render.Error(w, err)
		return
	}

	resp := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = toAccountResponse(a)
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a := &ledger.Account{
		GroupID:           req.GroupID,
		Name:              req.Name,
		Kind:              req.Kind,
		IncludedInBalance: true,
		Order:             req.Order,
	}

	if req.IncludedInBalance != nil {
		a.IncludedInBalance = *req.IncludedInBalance
	}

	if err := h.svc.CreateAccount(r.Context(), a); err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, toAccountResponse(a))
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	id, view, ok := balanceParams(w, r)
	if !ok {
		return
	}

	b, err := h.svc.Balance(r.Context(), id, view)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, balanceResponse{ID: id, View: view, Balance: b})
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ListGroups(r.Context())
	if err != nil {
		render.Error(w, err)
		return
	}

	resp := make([]groupResponse, len(groups))
	for i, g := range groups {
		resp[i] = groupResponse{ID: g.ID, Name: g.Name, Order: g.Order}
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g := &ledger.Group{Name: req.Name, Order: req.Order}
	if err := h.svc.CreateGroup(r.Context(), g); err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, groupResponse{ID: g.ID, Name: g.Name, Order: g.Order})
}

func (h *Handler) groupBalance(w http.ResponseWriter, r *http.Request) {
	id, view, ok := balanceParams(w, r)
	if !ok {
		return
	}

	b, err := h.svc.GroupBalance(r.Context(), id, view)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, balanceResponse{ID: id, View: view, Balance: b})
}

// balanceParams reads the path id and the optional view query, which
// defaults to the raw view.
func balanceParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, ledger.View, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, "", false
	}

	view := ledger.ViewRaw
	if s := r.URL.Query().Get("view"); s != "" {
		view = ledger.View(s)
	}

	if !view.Valid() {
		http.Error(w, "view must be raw or evaluation", http.StatusBadRequest)
		return uuid.Nil, "", false
	}

	return id, view, true
}
