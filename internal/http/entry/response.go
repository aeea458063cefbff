package entry

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

type entryResponse struct {
	ID              uuid.UUID       `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Kind            ledger.Kind     `json:"kind"`
	Category        string          `json:"category"`
	Usage           string          `json:"usage"`
	Date            time.Time       `json:"date"`
	AccountID       uuid.UUID       `json:"account_id"`
	TargetAccountID *uuid.UUID      `json:"target_account_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:              e.ID,
		Amount:          e.Amount,
		Kind:            e.Kind,
		Category:        e.Category,
		Usage:           e.Usage,
		Date:            e.Date,
		AccountID:       e.AccountID,
		TargetAccountID: e.TargetAccountID,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func toResponseList(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toResponse(e)
	}

	return resp
}
