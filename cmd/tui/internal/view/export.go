package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cashbook/internal/export"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

type exportState int

const (
	exportStatePeriod exportState = iota
	exportStatePath
	exportStateExporting
	exportStateResult
)

type ExportModel struct {
	CommonModel
	exportService *export.Service

	state        exportState
	err          error
	periodPicker PeriodPicker

	period string
	filter ledger.EntryFilter

	form    *huh.Form
	path    *string
	spinner spinner.Model
	count   int
	summary string
}

func NewExportModel(svc *export.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		exportService: svc,
		state:         exportStatePeriod,
		periodPicker:  NewPeriodPicker("Last month"),
		path:          new("./cashbook-export.csv"),
		spinner:       s,
	}
}

func (m ExportModel) Title() string { return "Export Entries" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}
	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if periodMsg, ok := msg.(PeriodSelectedMsg); ok {
		periodMsg.Apply(&m.filter)
		m.period = periodMsg.Label
		m.form = m.buildPathForm()
		m.state = exportStatePath
		return m, m.form.Init()
	}

	switch m.state {
	case exportStatePeriod:
		return m.updatePeriod(msg)
	case exportStatePath:
		return m.updatePath(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updatePeriod(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.periodPicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.periodPicker, cmd = m.periodPicker.Update(msg)
	return m, cmd
}

func (m ExportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = exportStatePeriod
			m.periodPicker.Reset()
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

	m.state = exportStateExporting
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(m.filter, *m.path))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		if result.err != nil {
			m.err = result.err
		}
		m.count = result.count
		m.summary = result.body
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}
	return m, nil
}

func (m ExportModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output File").
				Description("Semicolon separated CSV, directories are created as needed").
				Placeholder("./cashbook-export.csv").
				Value(m.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStatePeriod:
		return lipgloss.NewStyle().Padding(1).Render(m.periodPicker.View())

	case exportStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Exporting entries...", m.spinner.View()),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v", m.err)),
		)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render("Export Complete!")

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			fmt.Sprintf("Wrote %d entries (%s) to %s", m.count, strings.ToLower(m.period), *m.path),
			"",
			"Summary:",
			"",
			m.summary,
		),
	)
}

type exportResultMsg struct {
	count int
	body  string
	err   error
}

const exportTimeout = 2 * time.Minute

func (m ExportModel) runExportCmd(filter ledger.EntryFilter, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		entries, err := m.exportService.Entries(ctx, filter)
		if err != nil {
			return exportResultMsg{err: err}
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return exportResultMsg{err: err}
		}

		f, err := os.Create(path)
		if err != nil {
			return exportResultMsg{err: err}
		}
		defer f.Close()

		if err := export.WriteCSV(f, entries); err != nil {
			return exportResultMsg{err: err}
		}

		return exportResultMsg{count: len(entries), body: export.Summary(entries)}
	}
}
