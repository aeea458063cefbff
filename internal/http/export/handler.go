package export

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cashbook/internal/export"
	"github.com/MrJamesThe3rd/cashbook/internal/http/render"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/csv", h.csv)
	r.Post("/download", h.download)
}

type exportRequest struct {
	AccountID *uuid.UUID   `json:"account_id,omitempty"`
	Kind      *ledger.Kind `json:"kind,omitempty"`
	StartDate *time.Time   `json:"start_date,omitempty"`
	EndDate   *time.Time   `json:"end_date,omitempty"`
}

func (req exportRequest) filter() ledger.EntryFilter {
	return ledger.EntryFilter{
		AccountID: req.AccountID,
		Kind:      req.Kind,
		From:      req.StartDate,
		To:        req.EndDate,
	}
}

type entryResponse struct {
	ID       uuid.UUID   `json:"id"`
	Amount   string      `json:"amount"`
	Kind     ledger.Kind `json:"kind"`
	Category string      `json:"category"`
	Usage    string      `json:"usage"`
	Date     time.Time   `json:"date"`
}

type exportMetadataResponse struct {
	Entries []entryResponse `json:"entries"`
	Summary string          `json:"summary"`
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (exportRequest, bool) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, false
	}

	return req, true
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	entries, err := h.svc.Entries(r.Context(), req.filter())
	if err != nil {
		render.Error(w, err)
		return
	}

	resp := exportMetadataResponse{
		Entries: make([]entryResponse, 0, len(entries)),
		Summary: export.Summary(entries),
	}

	for _, e := range entries {
		resp.Entries = append(resp.Entries, entryResponse{
			ID:       e.ID,
			Amount:   export.FormatAmount(e),
			Kind:     e.Kind,
			Category: e.Category,
			Usage:    e.Usage,
			Date:     e.Date,
		})
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	entries, err := h.svc.Entries(r.Context(), req.filter())
	if err != nil {
		render.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"entries_%s.csv\"", time.Now().Format("20060102")))

	if err := export.WriteCSV(w, entries); err != nil {
		slog.Error("failed to write csv", "error", err)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	entries, err := h.svc.Entries(r.Context(), req.filter())
	if err != nil {
		render.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"export_%s.zip\"", time.Now().Format("20060102")))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	if err := writeArchive(zipWriter, entries); err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}

func writeArchive(zw *zip.Writer, entries []*ledger.Entry) error {
	f, err := zw.Create("entries.csv")
	if err != nil {
		return err
	}

	if err := export.WriteCSV(f, entries); err != nil {
		return err
	}

	f, err = zw.Create("summary.txt")
	if err != nil {
		return err
	}

	_, err = io.WriteString(f, export.Summary(entries))

	return err
}
