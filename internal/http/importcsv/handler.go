package importcsv

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cashbook/internal/http/render"
	"github.com/MrJamesThe3rd/cashbook/internal/importer"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/resolve", h.resolve)
}

type entryResponse struct {
	ID              uuid.UUID       `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Kind            ledger.Kind     `json:"kind"`
	Category        string          `json:"category"`
	Usage           string          `json:"usage"`
	Date            time.Time       `json:"date"`
	TargetAccountID *uuid.UUID      `json:"target_account_id,omitempty"`
}

type paramsDTO struct {
	Kind            ledger.Kind     `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	AccountID       uuid.UUID       `json:"account_id"`
	TargetAccountID *uuid.UUID      `json:"target_account_id,omitempty"`
	Usage           string          `json:"usage"`
	Date            time.Time       `json:"date"`
}

type skippedDTO struct {
	Line   int    `json:"line"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

type suspiciousDTO struct {
	Line     int           `json:"line"`
	Incoming paramsDTO     `json:"incoming"`
	Existing entryResponse `json:"existing"`
}

type importResponse struct {
	Imported   []entryResponse `json:"imported"`
	Skipped    []skippedDTO    `json:"skipped"`
	Suspicious []suspiciousDTO `json:"suspicious"`
}

type resolveRequest struct {
	AccountID uuid.UUID   `json:"account_id"`
	Params    []paramsDTO `json:"params"`
}

type resolveResponse struct {
	Imported []entryResponse `json:"imported"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	accountID, err := uuid.Parse(r.FormValue("account_id"))
	if err != nil {
		http.Error(w, "account_id field is required", http.StatusBadRequest)
		return
	}

	params := importer.ImportParams{AccountID: accountID}

	if s := r.FormValue("transfer_account_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid transfer_account_id", http.StatusBadRequest)
			return
		}

		params.TransferAccountID = &id
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params.Reader = file

	report, err := h.importSvc.Import(r.Context(), params)
	if err != nil {
		render.Error(w, err)
		return
	}

	// Held back rows still leave the rest of the statement booked, so the
	// response is 201 either way and the client inspects "suspicious".
	render.JSON(w, http.StatusCreated, toImportResponse(report))
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	approved := make([]importer.Suspicious, 0, len(req.Params))
	for _, p := range req.Params {
		approved = append(approved, importer.Suspicious{Params: ledger.CreateParams{
			Kind:            p.Kind,
			Amount:          p.Amount,
			Category:        p.Category,
			AccountID:       p.AccountID,
			TargetAccountID: p.TargetAccountID,
			Usage:           p.Usage,
			Date:            p.Date,
		}})
	}

	entries, err := h.importSvc.Resolve(r.Context(), req.AccountID, approved)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, resolveResponse{Imported: toEntryResponses(entries)})
}

func toImportResponse(report *importer.Report) importResponse {
	resp := importResponse{
		Imported:   toEntryResponses(report.Imported),
		Skipped:    make([]skippedDTO, 0, len(report.Skipped)),
		Suspicious: make([]suspiciousDTO, 0, len(report.Suspicious)),
	}

	for _, s := range report.Skipped {
		reason := ""
		if s.Err != nil {
			reason = s.Err.Error()
		}

		resp.Skipped = append(resp.Skipped, skippedDTO{Line: s.Line, Field: s.Field, Value: s.Value, Reason: reason})
	}

	for _, s := range report.Suspicious {
		resp.Suspicious = append(resp.Suspicious, suspiciousDTO{
			Line:     s.Line,
			Incoming: toParamsDTO(s.Params),
			Existing: toEntryResponse(s.Existing),
		})
	}

	return resp
}

func toEntryResponses(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}

	return resp
}

func toEntryResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:              e.ID,
		Amount:          e.Amount,
		Kind:            e.Kind,
		Category:        e.Category,
		Usage:           e.Usage,
		Date:            e.Date,
		TargetAccountID: e.TargetAccountID,
	}
}

func toParamsDTO(p ledger.CreateParams) paramsDTO {
	return paramsDTO{
		Kind:            p.Kind,
		Amount:          p.Amount,
		Category:        p.Category,
		AccountID:       p.AccountID,
		TargetAccountID: p.TargetAccountID,
		Usage:           p.Usage,
		Date:            p.Date,
	}
}
