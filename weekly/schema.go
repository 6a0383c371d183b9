// Package weekly extracts per-day absence and leave counts from attendance exports
// and merges them into one row per student across the week.
package weekly

import (
	"fmt"
	"strings"

	"github.com/orayew2002/rollbook/domain"
)

// Column describes one required column: its expected index and the header
// names that locate it when the index lies outside the sheet.
type Column struct {
	Label   string
	Index   int
	Aliases []string
}

// Schema is the expected layout of a day export.
type Schema struct {
	// HeaderRow is the 0-based row holding column titles. Rows above it are ignored.
	HeaderRow   int
	MinColumns  int
	Name        Column
	ID          Column
	StatusStart int
	AbsenceCode string
	LeaveCode   string
	// RequireHeaders rejects files whose header at the name or id index matches no alias.
	RequireHeaders bool
}

// DefaultSchema is the layout produced by the attendance system exports.
func DefaultSchema() Schema {
	return Schema{
		HeaderRow:  1,
		MinColumns: 7,
		Name: Column{
			Label:   "student name",
			Index:   2,
			Aliases: []string{"Student Name", "Name", "Full Name", "Student"},
		},
		ID: Column{
			Label:   "student id",
			Index:   5,
			Aliases: []string{"Student ID", "ID", "Identifier", "Student Number", "Student No"},
		},
		StatusStart: 6,
		AbsenceCode: "A",
		LeaveCode:   "L",
	}
}

// layout is a schema resolved against one header row.
type layout struct {
	name   int
	id     int
	status []int
}

func (s Schema) resolve(header []string, width int) (layout, error) {
	if width < s.MinColumns {
		return layout{}, fmt.Errorf("%w: %d columns, need at least %d", domain.ErrMalformedFile, width, s.MinColumns)
	}

	headers := normalizeHeaders(header)

	name, err := s.column(s.Name, headers, header, width)
	if err != nil {
		return layout{}, err
	}
	id, err := s.column(s.ID, headers, header, width)
	if err != nil {
		return layout{}, err
	}
	if name == id {
		return layout{}, fmt.Errorf("%w: %s and %s resolve to the same column", domain.ErrMalformedFile, s.Name.Label, s.ID.Label)
	}

	l := layout{name: name, id: id}
	for col := s.StatusStart; col < width; col++ {
		if col == name || col == id {
			continue
		}
		l.status = append(l.status, col)
	}

	return l, nil
}

// column returns c.Index whenever the sheet is wide enough; a blank header there
// is accepted. Strict mode also requires that header to match an alias. The alias
// lookup is only used when c.Index lies outside the sheet.
func (s Schema) column(c Column, headers map[string]int, header []string, width int) (int, error) {
	if c.Index >= 0 && c.Index < width {
		if s.RequireHeaders && !matchesAlias(cellAt(header, c.Index), c.Aliases) {
			return -1, fmt.Errorf("%w: column %d header %q is not a %s header (want one of %s)",
				domain.ErrMalformedFile, c.Index+1, cellAt(header, c.Index), c.Label, strings.Join(c.Aliases, ", "))
		}
		return c.Index, nil
	}

	if idx, ok := findColumn(headers, c.Aliases); ok {
		return idx, nil
	}

	return -1, fmt.Errorf("%w: no %s column at %d and no header among %s",
		domain.ErrMalformedFile, c.Label, c.Index+1, strings.Join(c.Aliases, ", "))
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func matchesAlias(value string, aliases []string) bool {
	v := normalizeHeader(value)
	if v == "" {
		return false
	}
	for _, a := range aliases {
		if normalizeHeader(a) == v {
			return true
		}
	}
	return false
}

func normalizeHeaders(headers []string) map[string]int {
	result := make(map[string]int, len(headers))
	for idx, header := range headers {
		normalized := normalizeHeader(header)
		if normalized == "" {
			continue
		}
		if _, exists := result[normalized]; !exists {
			result[normalized] = idx
		}
	}
	return result
}

func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	value = strings.ReplaceAll(value, ".", "")
	return value
}

func findColumn(headers map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := headers[normalizeHeader(name)]; ok {
			return idx, true
		}
	}
	return -1, false
}
