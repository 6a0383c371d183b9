// Package report renders aggregated weekly rows as a styled workbook or a
// terminal table.
package report

import (
	"strconv"

	"github.com/orayew2002/rollbook/domain"
)

// columnDef describes one report column: header text + value extractor.
type columnDef struct {
	header string
	value  func(r domain.AggregateRow) string
}

// columns returns the report layout: identity, two columns per day, totals.
func columns() []columnDef {
	cols := []columnDef{
		{header: "Student Name", value: func(r domain.AggregateRow) string { return r.Key.Name }},
		{header: "Student ID", value: func(r domain.AggregateRow) string { return r.Key.ID }},
	}

	for _, d := range domain.Days {
		cols = append(cols,
			columnDef{
				header: string(d) + " Absences",
				value:  func(r domain.AggregateRow) string { return strconv.Itoa(r.Day(d).Absences) },
			},
			columnDef{
				header: string(d) + " Leaves",
				value:  func(r domain.AggregateRow) string { return strconv.Itoa(r.Day(d).Leaves) },
			},
		)
	}

	return append(cols,
		columnDef{header: "Total Absences", value: func(r domain.AggregateRow) string { return strconv.Itoa(r.TotalAbsences) }},
		columnDef{header: "Total Leaves", value: func(r domain.AggregateRow) string { return strconv.Itoa(r.TotalLeaves) }},
	)
}

// Headers returns the report column titles in order.
func Headers() []string {
	cols := columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.header
	}
	return out
}

// Values returns the cells of one row in Headers order.
func Values(r domain.AggregateRow) []string {
	cols := columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.value(r)
	}
	return out
}

// Flagged keeps students with at least one absence or leave.
func Flagged(rows []domain.AggregateRow) []domain.AggregateRow {
	out := make([]domain.AggregateRow, 0, len(rows))
	for _, r := range rows {
		if r.Flagged() {
			out = append(out, r)
		}
	}
	return out
}
