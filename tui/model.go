// Package tui provides the Bubble Tea live view of the weekly aggregation.
package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/orayew2002/rollbook/domain"
	"github.com/orayew2002/rollbook/report"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// ReloadFunc returns freshly aggregated rows.
type ReloadFunc func() ([]domain.AggregateRow, error)

// Model is a read-only table of aggregated students.
type Model struct {
	table  table.Model
	reload ReloadFunc
	all    bool
	status string
	err    error
}

// New builds the view. Unless all is set only flagged students are listed.
func New(rows []domain.AggregateRow, all bool, reload ReloadFunc) *Model {
	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	m := &Model{table: t, reload: reload, all: all}
	m.SetRows(rows)
	return m
}

// SetRows replaces every row of the table.
func (m *Model) SetRows(rows []domain.AggregateRow) {
	shown, status := report.View(rows, m.all)

	out := make([]table.Row, 0, len(shown))
	for _, r := range shown {
		out = append(out, table.Row(report.TableRow(r)))
	}

	m.table.SetRows(out)
	m.status = status
}

// Rows returns the table rows currently displayed.
func (m *Model) Rows() []table.Row {
	return m.table.Rows()
}

// Status returns the status line.
func (m *Model) Status() string {
	return m.status
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if msg.String() == "r" && m.reload != nil {
			rows, err := m.reload()
			m.err = err
			if err == nil {
				m.SetRows(rows)
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(1, msg.Height-4))
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	footer := statusStyle.Render(m.status)
	if m.err != nil {
		footer = errorStyle.Render("reload failed: " + m.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Weekly attendance"),
		m.table.View(),
		footer,
		helpStyle.Render("r reload • q quit"),
	)
}

// Run shows m full screen until the user quits.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func columns() []table.Column {
	headers := report.TableHeaders()
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		width := 14
		switch i {
		case 0:
			width = 24
		case 1:
			width = 12
		}
		cols[i] = table.Column{Title: h, Width: width}
	}
	return cols
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
