// Package render writes JSON responses and maps domain errors to status codes.
package render

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/cashbook/internal/importer"
	"github.com/MrJamesThe3rd/cashbook/internal/learning"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err with the status code its kind maps to. Unknown errors are
// logged and hidden behind a generic message.
func Error(w http.ResponseWriter, err error) {
	var (
		verr *ledger.ValidationError
		ierr *importer.ImportError
	)

	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, learning.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrReservedCategory):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &ierr):
		http.Error(w, ierr.Error(), http.StatusUnprocessableEntity)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
