package view_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cashbook/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriods_Bounds(t *testing.T) {
	now := date(2025, time.January, 15)

	tests := []struct {
		label string
		first time.Time
		last  time.Time
	}{
		{label: "This month", first: date(2025, time.January, 1), last: now},
		{label: "Last month", first: date(2024, time.December, 1), last: date(2024, time.December, 31)},
		{label: "This quarter", first: date(2025, time.January, 1), last: now},
		{label: "Last quarter", first: date(2024, time.October, 1), last: date(2024, time.December, 31)},
		{label: "This year", first: date(2025, time.January, 1), last: now},
		{label: "Last year", first: date(2024, time.January, 1), last: date(2024, time.December, 31)},
	}

	byLabel := make(map[string]view.Period)
	for _, p := range view.Periods {
		byLabel[p.Label] = p
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			p, ok := byLabel[tt.label]
			require.True(t, ok)
			require.NotNil(t, p.Bounds)

			first, last := p.Bounds(now)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}

	assert.Nil(t, byLabel["All entries"].Bounds)
}

func TestPeriodSelectedMsg_Apply(t *testing.T) {
	from, to := date(2025, time.March, 1), date(2025, time.March, 31)

	var filter ledger.EntryFilter

	view.PeriodSelectedMsg{From: &from, To: &to}.Apply(&filter)
	require.NotNil(t, filter.From)
	assert.Equal(t, from, *filter.From)
	assert.Equal(t, to, *filter.To)

	view.PeriodSelectedMsg{Label: "All entries"}.Apply(&filter)
	assert.Nil(t, filter.From)
	assert.Nil(t, filter.To)
}
