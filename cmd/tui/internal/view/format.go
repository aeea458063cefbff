package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cashbook/internal/locale"
)

const dbTimeout = 5 * time.Second

var (
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

// FormatAmount renders an amount with two decimals and a euro sign.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2) + " €"
}

// ColorAmount is FormatAmount, red for negative and green for positive amounts.
func ColorAmount(d decimal.Decimal) string {
	switch d.Sign() {
	case -1:
		return negativeStyle.Render(FormatAmount(d))
	case 1:
		return positiveStyle.Render(FormatAmount(d))
	}

	return FormatAmount(d)
}

func FormatDate(t time.Time) string {
	return t.Format(locale.LayoutGerman)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
