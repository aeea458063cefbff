package export_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cashbook/internal/export"
	httpexport "github.com/MrJamesThe3rd/cashbook/internal/http/export"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

var stored = []*ledger.Entry{
	{
		ID: uuid.New(), Amount: decimal.RequireFromString("-12.5"), Kind: ledger.KindExpense,
		Category: "Food", Usage: "Bakery", Date: time.Date(2025, 4, 25, 0, 0, 0, 0, time.UTC),
	},
	{
		ID: uuid.New(), Amount: decimal.RequireFromString("50"), Kind: ledger.KindReservation,
		Category: "Reservation", Usage: "Reservation Smith", Date: time.Date(2025, 4, 26, 0, 0, 0, 0, time.UTC),
	},
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	repo := ledger.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return(stored, nil)

	r := chi.NewRouter()
	r.Route("/export", httpexport.NewHandler(export.NewService(repo)).Routes)

	return r
}

func TestHandler_Metadata(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export/", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Entries []map[string]any `json:"entries"`
		Summary string           `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "-12,50", resp.Entries[0]["amount"])
	assert.Contains(t, resp.Summary, "Total: -12.50 €")
}

func TestHandler_CSV(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export/csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Datum;Betrag;Name;Verwendungszweck;Kategorie;Art", lines[0])
	assert.Equal(t, "25.04.2025;-12,50;Bakery;Bakery;Food;expense", lines[1])
}

func TestHandler_Download(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export/download", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	body := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)

		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()

		files[f.Name] = string(b)
	}

	require.Contains(t, files, "entries.csv")
	require.Contains(t, files, "summary.txt")
	assert.Contains(t, files["summary.txt"], "Reservation Smith")
	assert.Contains(t, files["entries.csv"], "26.04.2025;50,00")
}

func TestHandler_MalformedBody(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/export", httpexport.NewHandler(export.NewService(nil)).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export/", strings.NewReader(`{"start_date":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
