package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cashbook/internal/learning"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

// ReviewModel walks through entries filed under the reserved category and
// lets the user assign a real one. Every decision is learned.
type ReviewModel struct {
	CommonModel
	ledgerService   *ledger.Service
	learningService *learning.Service

	state reviewState

	periodPicker PeriodPicker
	filter       ledger.EntryFilter

	queue   []*ledger.Entry
	current *ledger.Entry

	categoryInput textinput.Model

	status     string
	loading    bool
	totalCount int
}

type reviewState int

const (
	reviewStatePeriod reviewState = iota
	reviewStateReviewing
)

func NewReviewModel(ledgerSvc *ledger.Service, learningSvc *learning.Service) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "Category"
	ti.Width = 40

	return ReviewModel{
		ledgerService:   ledgerSvc,
		learningService: learningSvc,
		periodPicker:    NewPeriodPicker("All entries"),
		categoryInput:   ti,
		state:           reviewStatePeriod,
	}
}

func (m ReviewModel) Title() string { return "Review Uncategorized" }

func (m ReviewModel) ShortHelp() string {
	if m.state == reviewStateReviewing {
		return "Enter: save & next | Tab: skip | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PeriodSelectedMsg:
		msg.Apply(&m.filter)
		m.state = reviewStateReviewing
		m.loading = true

		return m, m.loadUncategorizedCmd()

	case loadUncategorizedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading entries: %v", msg.err)
			return m, nil
		}

		m.queue = msg.entries
		m.totalCount = len(m.queue)

		if len(m.queue) == 0 {
			m.status = "Nothing to review, every entry has a category."
			return m, nil
		}

		cmd := m.suggestNextCmd()

		return m, cmd

	case suggestionMsg:
		m.current = msg.entry
		m.categoryInput.SetValue(msg.category)
		m.categoryInput.Focus()
		m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)

		if msg.found {
			m.status += lipgloss.NewStyle().Faint(true).Render("  (suggested from learned rules)")
		}

		return m, textinput.Blink

	case saveResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		return m.next()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		if m.state == reviewStatePeriod {
			if msg.Type == tea.KeyEsc && m.periodPicker.IsSelecting() {
				return m, Back
			}

			var cmd tea.Cmd
			m.periodPicker, cmd = m.periodPicker.Update(msg)

			return m, cmd
		}

		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyTab:
			return m.next()
		case tea.KeyEnter:
			if m.current != nil {
				return m, m.saveCmd(m.current, m.categoryInput.Value())
			}
		}
	}

	if m.state == reviewStatePeriod {
		var cmd tea.Cmd
		m.periodPicker, cmd = m.periodPicker.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.categoryInput, cmd = m.categoryInput.Update(msg)

	return m, cmd
}

func (m ReviewModel) next() (tea.Model, tea.Cmd) {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = "All done!"
		m.categoryInput.Blur()
		m.categoryInput.SetValue("")

		return m, nil
	}

	cmd := m.suggestNextCmd()

	return m, cmd
}

func (m ReviewModel) View() string {
	if m.state == reviewStatePeriod {
		return lipgloss.NewStyle().Padding(2).Render(m.periodPicker.View())
	}

	var content string

	switch {
	case m.loading:
		content = "Loading entries..."
	case m.current != nil:
		info := fmt.Sprintf(
			"Date:   %s\nKind:   %s\nAmount: %s\nUsage:  %s\n",
			FormatDate(m.current.Date),
			m.current.Kind,
			ColorAmount(m.current.Amount),
			m.current.Usage,
		)
		content = fmt.Sprintf("%s\n\n%s\nCategory:\n%s\n\n(Enter to save & next, Tab to skip, Esc to quit)",
			m.status, info, m.categoryInput.View())
	default:
		content = m.status + "\n\n(Esc to back)"
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

type loadUncategorizedMsg struct {
	entries []*ledger.Entry
	err     error
}

type suggestionMsg struct {
	entry    *ledger.Entry
	category string
	found    bool
}

type saveResultMsg struct {
	err error
}

func (m ReviewModel) loadUncategorizedCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.ledgerService.ListEntries(ctx, filter)
		if err != nil {
			return loadUncategorizedMsg{err: err}
		}

		var open []*ledger.Entry

		for _, e := range entries {
			if strings.EqualFold(e.Category, ledger.ReservedCategory) {
				open = append(open, e)
			}
		}

		return loadUncategorizedMsg{entries: open}
	}
}

// suggestNextCmd pops the queue head and looks up a learned category for it.
func (m *ReviewModel) suggestNextCmd() tea.Cmd {
	e := m.queue[0]
	m.queue = m.queue[1:]

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		category, found, err := m.learningService.Suggest(ctx, e.Usage)
		if err != nil || !found {
			category = ""
		}

		return suggestionMsg{entry: e, category: category, found: found && err == nil}
	}
}

func (m ReviewModel) saveCmd(e *ledger.Entry, category string) tea.Cmd {
	category = strings.TrimSpace(category)

	return func() tea.Msg {
		if category == "" {
			return saveResultMsg{}
		}

		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()

		updated := *e
		updated.Category = category

		if err := m.ledgerService.UpdateEntry(ctx, &updated); err != nil {
			return saveResultMsg{err: err}
		}

		return saveResultMsg{err: m.learningService.Learn(ctx, e.Usage, category)}
	}
}
