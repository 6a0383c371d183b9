package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/orayew2002/rollbook/domain"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0")).Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	absenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Status describes what a view is showing: total is every aggregated student,
// shown is how many made it past the filter.
func Status(total, shown int) string {
	switch {
	case total == 0:
		return "No data loaded"
	case shown == 0:
		return "No absences or leaves recorded"
	default:
		return fmt.Sprintf("Showing %d records", shown)
	}
}

// TableHeaders are the compact terminal columns: one cell per day.
func TableHeaders() []string {
	out := []string{"Student Name", "Student ID"}
	for _, d := range domain.Days {
		out = append(out, string(d))
	}
	return append(out, "Total Absences", "Total Leaves")
}

// TableRow returns the compact terminal cells for r.
func TableRow(r domain.AggregateRow) []string {
	out := []string{r.Key.Name, r.Key.ID}
	for _, d := range domain.Days {
		t := r.Day(d)
		out = append(out, fmt.Sprintf("A: %d / L: %d", t.Absences, t.Leaves))
	}
	return append(out, strconv.Itoa(r.TotalAbsences), strconv.Itoa(r.TotalLeaves))
}

// View picks the rows to display and the matching status line.
func View(rows []domain.AggregateRow, all bool) ([]domain.AggregateRow, string) {
	shown := rows
	if !all {
		shown = Flagged(rows)
	}
	return shown, Status(len(rows), len(shown))
}

// RenderTable writes rows as a bordered table followed by the status line.
// Unless all is set only flagged students are listed.
func RenderTable(w io.Writer, rows []domain.AggregateRow, all bool) error {
	shown, status := View(rows, all)

	if len(shown) > 0 {
		data := make([][]string, 0, len(shown))
		for _, r := range shown {
			data = append(data, TableRow(r))
		}

		totalAbsencesCol := len(TableHeaders()) - 2
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(mutedStyle).
			Headers(TableHeaders()...).
			Rows(data...).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case row >= 0 && row < len(data) && col == totalAbsencesCol && data[row][col] != "0":
					return absenceStyle
				default:
					return cellStyle
				}
			})

		if _, err := fmt.Fprintln(w, t.Render()); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, status)
	return err
}
