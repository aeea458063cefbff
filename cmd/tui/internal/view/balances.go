package view

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

// BalancesModel shows the raw and evaluation balance of every group and of
// the accounts below it.
type BalancesModel struct {
	CommonModel
	ledgerService *ledger.Service

	table   table.Model
	rows    []balanceRow
	loading bool
	err     error
}

type balanceRow struct {
	label      string
	kind       string
	raw        decimal.Decimal
	evaluation decimal.Decimal
	group      bool
	excluded   bool
}

func NewBalancesModel(ledgerSvc *ledger.Service) BalancesModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Account", Width: 30},
			{Title: "Kind", Width: 8},
			{Title: "Balance", Width: 16},
			{Title: "Evaluation", Width: 16},
		}),
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

	return BalancesModel{
		ledgerService: ledgerSvc,
		table:         t,
		loading:       true,
	}
}

func (m BalancesModel) Title() string     { return "Balances" }
func (m BalancesModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m BalancesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BalancesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case balancesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.rows = msg.rows
		m.refreshTable()

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BalancesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Calculating balances...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	note := lipgloss.NewStyle().Faint(true).Render(
		"Balance leaves out reservations. Evaluation also leaves out cash deposits.\n" +
			"Accounts marked * are not part of their group total.")

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, tableView, note))
}

func (m *BalancesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		label := "  " + r.label
		if r.group {
			label = r.label
		}

		if r.excluded {
			label += " *"
		}

		rows = append(rows, table.Row{label, r.kind, FormatAmount(r.raw), FormatAmount(r.evaluation)})
	}

	m.table.SetRows(rows)
}

type balancesLoadedMsg struct {
	rows []balanceRow
	err  error
}

func (m BalancesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		groups, err := m.ledgerService.ListGroups(ctx)
		if err != nil {
			return balancesLoadedMsg{err: err}
		}

		accounts, err := m.ledgerService.ListAccounts(ctx)
		if err != nil {
			return balancesLoadedMsg{err: err}
		}

		slices.SortStableFunc(groups, func(a, b *ledger.Group) int { return a.Order - b.Order })
		slices.SortStableFunc(accounts, func(a, b *ledger.Account) int { return a.Order - b.Order })

		var rows []balanceRow

		for _, g := range groups {
			raw, err := m.ledgerService.GroupBalance(ctx, g.ID, ledger.ViewRaw)
			if err != nil {
				return balancesLoadedMsg{err: err}
			}

			eval, err := m.ledgerService.GroupBalance(ctx, g.ID, ledger.ViewEvaluation)
			if err != nil {
				return balancesLoadedMsg{err: err}
			}

			rows = append(rows, balanceRow{label: g.Name, raw: raw, evaluation: eval, group: true})

			for _, a := range accounts {
				if a.GroupID != g.ID {
					continue
				}

				raw, err := m.ledgerService.Balance(ctx, a.ID, ledger.ViewRaw)
				if err != nil {
					return balancesLoadedMsg{err: err}
				}

				eval, err := m.ledgerService.Balance(ctx, a.ID, ledger.ViewEvaluation)
				if err != nil {
					return balancesLoadedMsg{err: err}
				}

				rows = append(rows, balanceRow{
					label:      a.Name,
					kind:       string(a.Kind),
					raw:        raw,
					evaluation: eval,
					excluded:   !a.IncludedInBalance,
				})
			}
		}

		return balancesLoadedMsg{rows: rows}
	}
}
