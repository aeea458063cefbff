package view

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
	"github.com/MrJamesThe3rd/cashbook/internal/locale"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
	listStateDelete
)

type ListModel struct {
	CommonModel
	ledgerService *ledger.Service

	state    listState
	table    table.Model
	entries  []*ledger.Entry
	accounts []*ledger.Account
	form     *huh.Form

	kindFilterIdx    int
	dateFilterIdx    int
	accountFilterIdx int

	filter  ledger.EntryFilter
	loading bool
	err     error
	status  string

	// bind is shared by every copy of the model so the form's writes survive
	// bubbletea's value semantics.
	bind *entryForm
}

type entryForm struct {
	usage    string
	category string
	amount   string
	kind     ledger.Kind
	confirm  bool
}

func NewListModel(ledgerSvc *ledger.Service) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Kind", Width: 12},
		{Title: "Amount", Width: 14},
		{Title: "Category", Width: 18},
		{Title: "Usage", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		ledgerService: ledgerSvc,
		table:         t,
		loading:       true,
	}
}

func (m ListModel) Title() string { return "Entries" }
func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateEdit:
		return "Navigate form | Esc: cancel"
	case listStateDelete:
		return "Confirm delete | Esc: cancel"
	}

	return "Esc: back | e: edit | x: delete | a: account | k: kind | d: date | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return tea.Batch(m.loadAccountsCmd(), m.loadEntriesCmd())
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		if msg.err == nil {
			m.accounts = msg.accounts
		}

		return m, nil

	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.entries = msg.entries
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadEntriesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit, listStateDelete:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadEntriesCmd()
		case "e":
			return m.enterEditMode()
		case "x":
			return m.enterDeleteMode()
		case "k":
			m.kindFilterIdx = (m.kindFilterIdx + 1) % (len(ledger.Kinds) + 1)
			m.applyFilter()

			return m, m.loadEntriesCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % 3
			m.applyFilter()

			return m, m.loadEntriesCmd()
		case "a":
			m.accountFilterIdx = (m.accountFilterIdx + 1) % (len(m.accounts) + 1)
			m.applyFilter()

			return m, m.loadEntriesCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) selectedEntry() *ledger.Entry {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entries) {
		return nil
	}

	return m.entries[idx]
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	e := m.selectedEntry()
	if e == nil {
		return m, nil
	}

	m.bind = &entryForm{
		usage:    e.Usage,
		category: e.Category,
		amount:   e.Amount.StringFixed(2),
		kind:     e.Kind,
	}

	kinds := make([]huh.Option[ledger.Kind], len(ledger.Kinds))
	for i, k := range ledger.Kinds {
		kinds[i] = huh.NewOption(string(k), k)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("usage").
				Title("Usage").
				Value(&m.bind.usage),

			huh.NewInput().
				Key("category").
				Title("Category").
				Value(&m.bind.category).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("category cannot be empty")
					}

					return nil
				}),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.bind.amount).
				Validate(func(s string) error {
					d, err := locale.ParseAmount(s)
					if err != nil {
						return err
					}

					if d.IsZero() {
						return errors.New("amount cannot be zero")
					}

					return nil
				}),

			huh.NewSelect[ledger.Kind]().
				Key("kind").
				Title("Kind").
				Options(kinds...).
				Value(&m.bind.kind),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) enterDeleteMode() (tea.Model, tea.Cmd) {
	e := m.selectedEntry()
	if e == nil {
		return m, nil
	}

	title := "Delete this entry?"
	if e.IsTransfer() {
		title = "Delete this transfer and its mirror?"
	}

	m.bind = &entryForm{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(title).
				Description(fmt.Sprintf("%s  %s  %s", FormatDate(e.Date), FormatAmount(e.Amount), e.Usage)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.bind.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == listStateDelete {
		return m, m.deleteCmd()
	}

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading entries...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	dateLabels := []string{"All Time", "This Month", "Last Month"}

	header := fmt.Sprintf(
		"Filter: [a] Account: %s | [k] Kind: %s | [d] Date: %s",
		activeStyle(m.accountLabel()),
		activeStyle(m.kindLabel()),
		activeStyle(dateLabels[m.dateFilterIdx]),
	)

	total := fmt.Sprintf("Balance: %s  Evaluation: %s",
		ColorAmount(ledger.Sum(m.entries, ledger.ViewRaw)),
		ColorAmount(ledger.Sum(m.entries, ledger.ViewEvaluation)))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		total,
	)

	if m.state != listStateBrowse && m.form != nil {
		title := "Edit Entry"
		if m.state == listStateDelete {
			title = "Delete Entry"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("%s\n\n%s", title, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m ListModel) kindLabel() string {
	if m.kindFilterIdx == 0 {
		return "All"
	}

	return string(ledger.Kinds[m.kindFilterIdx-1])
}

func (m ListModel) accountLabel() string {
	if m.accountFilterIdx == 0 || m.accountFilterIdx > len(m.accounts) {
		return "All"
	}

	return m.accounts[m.accountFilterIdx-1].Name
}

func (m *ListModel) applyFilter() {
	m.filter.Kind = nil
	if m.kindFilterIdx > 0 {
		m.filter.Kind = new(ledger.Kinds[m.kindFilterIdx-1])
	}

	m.filter.AccountID = nil
	if m.accountFilterIdx > 0 && m.accountFilterIdx <= len(m.accounts) {
		m.filter.AccountID = new(m.accounts[m.accountFilterIdx-1].ID)
	}

	now := time.Now()
	switch m.dateFilterIdx {
	case 1:
		s := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		e := s.AddDate(0, 1, -1)
		m.filter.From = &s
		m.filter.To = &e
	case 2:
		s := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		e := s.AddDate(0, 1, -1)
		m.filter.From = &s
		m.filter.To = &e
	default:
		m.filter.From = nil
		m.filter.To = nil
	}
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		rows = append(rows, table.Row{
			FormatDate(e.Date),
			string(e.Kind),
			FormatAmount(e.Amount),
			e.Category,
			e.Usage,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	entries []*ledger.Entry
	err     error
}

func (m ListModel) loadAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.ledgerService.ListAccounts(ctx)

		return accountsLoadedMsg{accounts: accounts, err: err}
	}
}

func (m ListModel) loadEntriesCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.ledgerService.ListEntries(ctx, filter)
		if err != nil {
			return loadListMsg{err: err}
		}

		slices.SortStableFunc(entries, func(a, b *ledger.Entry) int {
			return b.Date.Compare(a.Date)
		})

		return loadListMsg{entries: entries}
	}
}

type listSaveMsg struct {
	err error
}

func (m ListModel) saveCmd() tea.Cmd {
	e := m.selectedEntry()
	if e == nil {
		return nil
	}

	updated := *e
	updated.Usage = strings.TrimSpace(m.bind.usage)
	updated.Category = strings.TrimSpace(m.bind.category)
	updated.Kind = m.bind.kind

	amount, err := locale.ParseAmount(m.bind.amount)
	if err != nil {
		amount = decimal.Zero
	}

	updated.Amount = amount

	if updated.Kind != ledger.KindTransfer {
		updated.TargetAccountID = nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return listSaveMsg{err: m.ledgerService.UpdateEntry(ctx, &updated)}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	e := m.selectedEntry()
	if e == nil || !m.bind.confirm {
		return func() tea.Msg { return listSaveMsg{} }
	}

	id := e.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return listSaveMsg{err: m.ledgerService.DeleteEntry(ctx, id)}
	}
}
