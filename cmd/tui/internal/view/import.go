package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cashbook/internal/importer"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateAccountSelect importState = iota
	importStateTransferSelect
	importStateFilePick
	importStateImporting
	importStateSuspicious
	importStateResult
)

type ImportModel struct {
	CommonModel
	ledgerService *ledger.Service
	importService *importer.Service

	state      importState
	filePicker filepicker.Model

	accounts       []*ledger.Account
	accountCursor  int
	transferCursor int // 0 means no transfer account
	account        *ledger.Account
	transferTo     *ledger.Account

	report         *importer.Report
	suspicious     []importer.Suspicious
	suspiciousList list.Model
	selected       map[int]bool

	status string
	err    error
}

func NewImportModel(ledgerSvc *ledger.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".CSV", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		ledgerService: ledgerSvc,
		importService: impSvc,
		filePicker:    fp,
		selected:      make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateSuspicious:
		return "Space: toggle | a: all | n: none | Enter: book selected | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.loadAccountsCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateAccountSelect:
			return m.updateAccountSelect(msg)
		case importStateTransferSelect:
			return m.updateTransferSelect(msg)
		case importStateSuspicious:
			return m.updateSuspicious(msg)
		}

	case accountsLoadedMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.accounts = msg.accounts

		return m, nil

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			if msg.report != nil {
				m.status += fmt.Sprintf(" (%d entries booked before the interruption)", len(msg.report.Imported))
			}

			return m, nil
		}

		m.report = msg.report

		if len(msg.report.Suspicious) == 0 {
			m.state = importStateResult
			m.status = reportSummary(msg.report, 0)

			return m, nil
		}

		m.suspicious = msg.report.Suspicious
		m.selected = make(map[int]bool)
		m.state = importStateSuspicious

		items := make([]list.Item, len(m.suspicious))
		for i, s := range m.suspicious {
			items[i] = suspiciousItem{suspicious: s, index: i}
		}

		delegate := suspiciousDelegate{selected: &m.selected}
		m.suspiciousList = list.New(items, delegate, 80, 20)
		m.suspiciousList.Title = "Possible duplicates of cash-point entries"
		m.suspiciousList.SetShowStatusBar(false)
		m.suspiciousList.SetFilteringEnabled(false)
		m.suspiciousList.SetShowHelp(false)

		return m, nil

	case resolveResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = reportSummary(m.report, msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing %s into %s...", path, m.account.Name)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateTransferSelect:
		m.state = importStateAccountSelect
		return m, nil
	case importStateFilePick:
		m.state = importStateTransferSelect
		return m, nil
	case importStateResult, importStateSuspicious:
		m.state = importStateAccountSelect
		m.err = nil
		m.status = ""
		m.report = nil
		m.suspicious = nil
		m.selected = make(map[int]bool)

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateAccountSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.accountCursor > 0 {
			m.accountCursor--
		}
	case tea.KeyDown:
		if m.accountCursor < len(m.accounts)-1 {
			m.accountCursor++
		}
	case tea.KeyEnter:
		if len(m.accounts) == 0 {
			return m, nil
		}

		m.account = m.accounts[m.accountCursor]
		m.transferCursor = 0
		m.state = importStateTransferSelect
	}

	return m, nil
}

func (m ImportModel) updateTransferSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.transferCursor > 0 {
			m.transferCursor--
		}
	case tea.KeyDown:
		if m.transferCursor < len(m.accounts) {
			m.transferCursor++
		}
	case tea.KeyEnter:
		m.transferTo = nil
		if m.transferCursor > 0 {
			m.transferTo = m.accounts[m.transferCursor-1]
		}

		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateSuspicious(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.suspiciousList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.suspicious {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.suspicious {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.resolveCmd()
	}

	var cmd tea.Cmd
	m.suspiciousList, cmd = m.suspiciousList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateAccountSelect:
		return m.viewAccountSelect()
	case importStateTransferSelect:
		return m.viewTransferSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select statement for %s:\n\n%s", m.account.Name, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateSuspicious:
		return lipgloss.NewStyle().Padding(1).Render(m.suspiciousList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewAccountSelect() string {
	if len(m.accounts) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No accounts yet. Create one through the API first.\n\n(Esc to go back)")
	}

	var sb strings.Builder
	sb.WriteString("Import into account:\n\n")

	for i, a := range m.accounts {
		sb.WriteString(cursorLine(i == m.accountCursor, fmt.Sprintf("%s (%s)", a.Name, a.Kind)))
	}

	return lipgloss.NewStyle().Padding(2).Render(sb.String())
}

func (m ImportModel) viewTransferSelect() string {
	var sb strings.Builder
	sb.WriteString("Book outgoing transfers (ATM withdrawals) to:\n\n")
	sb.WriteString(cursorLine(m.transferCursor == 0, "nowhere, book them as expenses"))

	for i, a := range m.accounts {
		if a.ID == m.account.ID {
			sb.WriteString(lipgloss.NewStyle().Faint(true).Render("  "+a.Name) + "\n")
			continue
		}

		sb.WriteString(cursorLine(m.transferCursor == i+1, fmt.Sprintf("%s (%s)", a.Name, a.Kind)))
	}

	return lipgloss.NewStyle().Padding(2).Render(sb.String())
}

func (m ImportModel) viewResult() string {
	color := lipgloss.Color("46")
	if m.err != nil {
		color = lipgloss.Color("196")
	}

	body := lipgloss.NewStyle().Foreground(color).Render(m.status)

	if m.report != nil && len(m.report.Skipped) > 0 {
		var sb strings.Builder
		for _, s := range m.report.Skipped {
			fmt.Fprintf(&sb, "\n  %v", s)
		}

		body += lipgloss.NewStyle().Faint(true).Render("\n\nSkipped rows:" + sb.String())
	}

	return lipgloss.NewStyle().Padding(2).Render(body + "\n\n(Esc to go back)")
}

func cursorLine(active bool, label string) string {
	cursor := " "
	if active {
		cursor = ">"
	}

	return fmt.Sprintf("%s %s\n", cursor, label)
}

func reportSummary(r *importer.Report, approved int) string {
	return fmt.Sprintf("Imported %d entries, skipped %d rows, %d of %d suspicious rows booked.",
		len(r.Imported)+approved, len(r.Skipped), approved, len(r.Suspicious))
}

// Messages

type accountsLoadedMsg struct {
	accounts []*ledger.Account
	err      error
}

type importResultMsg struct {
	report *importer.Report
	err    error
}

type resolveResultMsg struct {
	count int
	err   error
}

func (m ImportModel) loadAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.ledgerService.ListAccounts(ctx)

		return accountsLoadedMsg{accounts: accounts, err: err}
	}
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	params := importer.ImportParams{AccountID: m.account.ID}
	if m.transferTo != nil {
		params.TransferAccountID = &m.transferTo.ID
	}

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		params.Reader = f

		report, err := m.importService.Import(ctx, params)

		return importResultMsg{report: report, err: err}
	}
}

func (m ImportModel) resolveCmd() tea.Cmd {
	accountID := m.account.ID

	var approved []importer.Suspicious

	for i, s := range m.suspicious {
		if m.selected[i] {
			approved = append(approved, s)
		}
	}

	return func() tea.Msg {
		if len(approved) == 0 {
			return resolveResultMsg{}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		entries, err := m.importService.Resolve(ctx, accountID, approved)
		if err != nil {
			return resolveResultMsg{err: err}
		}

		return resolveResultMsg{count: len(entries)}
	}
}

// Suspicious list item

type suspiciousItem struct {
	suspicious importer.Suspicious
	index      int
}

func (i suspiciousItem) Title() string       { return "" }
func (i suspiciousItem) Description() string { return "" }
func (i suspiciousItem) FilterValue() string { return "" }

type suspiciousDelegate struct {
	selected *map[int]bool
}

func (d suspiciousDelegate) Height() int                             { return 3 }
func (d suspiciousDelegate) Spacing() int                            { return 0 }
func (d suspiciousDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d suspiciousDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(suspiciousItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.suspicious.Params
	existing := item.suspicious.Existing

	line1 := fmt.Sprintf("%s%s line %d  %s  %s  %s",
		cursor, checkbox, item.suspicious.Line,
		FormatDate(incoming.Date),
		FormatAmount(incoming.Amount),
		incoming.Usage,
	)

	line2 := fmt.Sprintf("      Existing: %s  %s  %s [%s]",
		FormatDate(existing.Date),
		FormatAmount(existing.Amount),
		existing.Usage,
		existing.Category,
	)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
