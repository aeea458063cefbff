package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/cashbook/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/cashbook/internal/app"
	"github.com/MrJamesThe3rd/cashbook/internal/config"
)

type model struct {
	app *app.App

	currentView View

	importView   view.ImportModel
	reviewView   view.ReviewModel
	listView     view.ListModel
	balancesView view.BalancesModel
	exportView   view.ExportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewImport   View = 1
	ViewReview   View = 2
	ViewList     View = 3
	ViewBalances View = 4
	ViewExport   View = 5
)

func initialModel(a *app.App) model {
	return model{
		app:          a,
		currentView:  ViewMenu,
		importView:   view.NewImportModel(a.Ledger, a.Importer),
		reviewView:   view.NewReviewModel(a.Ledger, a.Learning),
		listView:     view.NewListModel(a.Ledger),
		balancesView: view.NewBalancesModel(a.Ledger),
		exportView:   view.NewExportModel(a.Export),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.app.Ledger, m.app.Importer)

				return m, m.importView.Init()
			case "2":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.app.Ledger, m.app.Learning)

				return m, m.reviewView.Init()
			case "3":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.app.Ledger)

				return m, m.listView.Init()
			case "4":
				m.currentView = ViewBalances
				m.balancesView = view.NewBalancesModel(m.app.Ledger)

				return m, m.balancesView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.app.Export)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewBalances:
		var newModel tea.Model
		newModel, cmd = m.balancesView.Update(msg)
		m.balancesView = newModel.(view.BalancesModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Cashbook\n\n" +
				"1. Import Statement\n" +
				"2. Review Uncategorized Entries\n" +
				"3. Browse Entries\n" +
				"4. Balances\n" +
				"5. Export Entries\n\n" +
				"q. Quit",
		)
	case ViewImport:
		return m.importView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewList:
		return m.listView.View()
	case ViewBalances:
		return m.balancesView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	// The terminal belongs to the UI, so service logs are dropped unless a
	// log file is requested. Startup errors still go to stderr.
	logger := slog.New(slog.DiscardHandler)

	if path := os.Getenv("CASHBOOK_TUI_LOG"); path != "" {
		f, err := tea.LogToFile(path, "cashbook")
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()

		logger = slog.New(slog.NewTextHandler(f, nil))
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
