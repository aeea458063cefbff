package learning

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/cashbook/internal/http/render"
	"github.com/MrJamesThe3rd/cashbook/internal/learning"
)

type Handler struct {
	svc *learning.Service
}

func NewHandler(svc *learning.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.rules)
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Usage    string `json:"usage"`
	Category string `json:"category,omitempty"`
	Found    bool   `json:"found"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	usage := r.URL.Query().Get("usage")
	if usage == "" {
		http.Error(w, "usage query parameter is required", http.StatusBadRequest)
		return
	}

	category, found, err := h.svc.Suggest(r.Context(), usage)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, suggestResponse{Usage: usage, Category: category, Found: found})
}

type learnRequest struct {
	Usage    string `json:"usage"`
	Category string `json:"category"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Usage == "" || req.Category == "" {
		http.Error(w, "usage and category are required", http.StatusBadRequest)
		return
	}

	if err := h.svc.Learn(r.Context(), req.Usage, req.Category); err != nil {
		render.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

type ruleResponse struct {
	Pattern      string `json:"pattern"`
	Category     string `json:"category"`
	ExampleUsage string `json:"example_usage"`
	Count        int    `json:"count"`
}

func (h *Handler) rules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.Rules(r.Context())
	if err != nil {
		render.Error(w, err)
		return
	}

	resp := make([]ruleResponse, len(rules))
	for i, rule := range rules {
		resp[i] = ruleResponse{
			Pattern:      rule.Pattern,
			Category:     rule.Category,
			ExampleUsage: rule.ExampleUsage,
			Count:        rule.Count,
		}
	}

	render.JSON(w, http.StatusOK, resp)
}
