package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
	"github.com/MrJamesThe3rd/cashbook/internal/locale"
)

// Period is a named booking period. Bounds returns the first and last day it
// covers relative to now; a nil Bounds means every entry.
type Period struct {
	Label  string
	Bounds func(now time.Time) (first, last time.Time)
}

const customPeriod = "Custom range"

// Periods lists the pickable periods, roughly in the order a bookkeeper
// closes them.
var Periods = []Period{
	{Label: "This month", Bounds: func(now time.Time) (time.Time, time.Time) {
		return monthStart(now, 0), now
	}},
	{Label: "Last month", Bounds: func(now time.Time) (time.Time, time.Time) {
		first := monthStart(now, -1)
		return first, first.AddDate(0, 1, -1)
	}},
	{Label: "This quarter", Bounds: func(now time.Time) (time.Time, time.Time) {
		return quarterStart(now, 0), now
	}},
	{Label: "Last quarter", Bounds: func(now time.Time) (time.Time, time.Time) {
		first := quarterStart(now, -1)
		return first, first.AddDate(0, 3, -1)
	}},
	{Label: "This year", Bounds: func(now time.Time) (time.Time, time.Time) {
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), now
	}},
	{Label: "Last year", Bounds: func(now time.Time) (time.Time, time.Time) {
		return time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(now.Year()-1, time.December, 31, 0, 0, 0, 0, time.UTC)
	}},
	{Label: "All entries"},
	{Label: customPeriod},
}

func monthStart(now time.Time, offset int) time.Time {
	return time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
}

func quarterStart(now time.Time, offset int) time.Time {
	q := (int(now.Month())-1)/3 + offset
	return time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// PeriodSelectedMsg carries the chosen range. From and To are nil for all
// entries; To covers the whole last day.
type PeriodSelectedMsg struct {
	Label string
	From  *time.Time
	To    *time.Time
}

// Apply narrows filter to the selected range.
func (msg PeriodSelectedMsg) Apply(filter *ledger.EntryFilter) {
	filter.From, filter.To = msg.From, msg.To
}

// selectPeriod resolves p against now into a message. Custom ranges go
// through rangeMsg instead.
func selectPeriod(p Period, now time.Time) PeriodSelectedMsg {
	if p.Bounds == nil {
		return PeriodSelectedMsg{Label: p.Label}
	}

	first, last := p.Bounds(now)

	return rangeMsg(p.Label, first, last)
}

func rangeMsg(label string, first, last time.Time) PeriodSelectedMsg {
	from := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 0, time.UTC)

	return PeriodSelectedMsg{Label: label, From: &from, To: &to}
}

type customRange struct {
	from string
	to   string
}

// parse validates the custom range the user typed.
func (r *customRange) parse() (time.Time, time.Time, error) {
	first, err := locale.ParseDate(strings.TrimSpace(r.from))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
	}

	last, err := locale.ParseDate(strings.TrimSpace(r.to))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
	}

	if last.Before(first) {
		return time.Time{}, time.Time{}, errors.New("end date is before start date")
	}

	return first, last, nil
}

// PeriodPicker lets the user pick one of Periods or type a custom range.
type PeriodPicker struct {
	cursor  int
	initial int

	// form is non-nil while the custom range is being entered. custom is a
	// pointer so the form's writes reach every copy of the picker.
	form   *huh.Form
	custom *customRange

	err error
}

// NewPeriodPicker starts with the cursor on the period labelled initial.
func NewPeriodPicker(initial string) PeriodPicker {
	idx := 0

	for i, p := range Periods {
		if p.Label == initial {
			idx = i
			break
		}
	}

	return PeriodPicker{cursor: idx, initial: idx}
}

func (m PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if m.form != nil {
		return m.updateCustom(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyUp:
		m.cursor = max(m.cursor-1, 0)
	case tea.KeyDown:
		m.cursor = min(m.cursor+1, len(Periods)-1)
	case tea.KeyEnter:
		p := Periods[m.cursor]
		if p.Label == customPeriod {
			return m.openCustom()
		}

		selected := selectPeriod(p, time.Now())

		return m, func() tea.Msg { return selected }
	}

	return m, nil
}

func (m PeriodPicker) openCustom() (PeriodPicker, tea.Cmd) {
	m.custom = &customRange{}
	m.err = nil

	date := func(s string) error {
		_, err := locale.ParseDate(strings.TrimSpace(s))
		return err
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("From").Placeholder("DD.MM.YYYY").Value(&m.custom.from).Validate(date),
			huh.NewInput().Title("To").Placeholder("DD.MM.YYYY").Value(&m.custom.to).Validate(date),
		),
	).WithWidth(30).WithShowHelp(false)

	return m, m.form.Init()
}

func (m PeriodPicker) updateCustom(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		m.err = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	first, last, err := m.custom.parse()
	if err != nil {
		m.err = err
		return m.openCustom()
	}

	m.form = nil
	selected := rangeMsg(customPeriod, first, last)

	return m, func() tea.Msg { return selected }
}

func (m PeriodPicker) View() string {
	var sb strings.Builder

	if m.form != nil {
		sb.WriteString("Custom range\n\n")
		sb.WriteString(m.form.View())
		sb.WriteString("\n(Enter to confirm, Esc to back)")
	} else {
		sb.WriteString("Select period:\n\n")

		for i, p := range Periods {
			cursor := " "
			if i == m.cursor {
				cursor = ">"
			}

			fmt.Fprintf(&sb, "%s %s\n", cursor, p.Label)
		}

		sb.WriteString("\n(Enter to select, Esc to back)")
	}

	if m.err != nil {
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("\n\nError: " + m.err.Error()))
	}

	return sb.String()
}

// IsSelecting reports whether the period list, not the custom form, has focus.
func (m PeriodPicker) IsSelecting() bool {
	return m.form == nil
}

func (m *PeriodPicker) Reset() {
	m.cursor = m.initial
	m.form = nil
	m.custom = nil
	m.err = nil
}
