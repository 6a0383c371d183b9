// Package roster reads identifier columns from sheets and reconciles a roster
// against the identifiers found in an attendance sheet.
package roster

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orayew2002/rollbook/domain"
	"github.com/orayew2002/rollbook/excel"
)

// Range is an inclusive, 1-based row span.
type Range struct {
	Start int
	End   int
}

// ParseRange parses "start-end" (e.g. "3-38").
func ParseRange(s string) (Range, error) {
	startStr, endStr, ok := strings.Cut(s, "-")
	if !ok {
		return Range{}, fmt.Errorf("%w: %q, use start-end (e.g. 3-38)", domain.ErrInvalidRange, s)
	}

	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return Range{}, fmt.Errorf("%w: start of %q is not a number", domain.ErrInvalidRange, s)
	}
	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return Range{}, fmt.Errorf("%w: end of %q is not a number", domain.ErrInvalidRange, s)
	}

	if start < 1 {
		return Range{}, fmt.Errorf("%w: rows start at 1, got %d", domain.ErrInvalidRange, start)
	}
	if start > end {
		return Range{}, fmt.Errorf("%w: start %d is after end %d", domain.ErrInvalidRange, start, end)
	}

	return Range{Start: start, End: end}, nil
}

// Len is the number of rows in the range.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Selection is a row range within a single 1-based column.
type Selection struct {
	Rows   Range
	Column int
}

// ParseSelection parses a row range and a single column letter.
func ParseSelection(rows, column string) (Selection, error) {
	r, err := ParseRange(rows)
	if err != nil {
		return Selection{}, err
	}
	col, err := excel.ColumnNumber(column)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Rows: r, Column: col}, nil
}

// Cell is a raw value read at a 1-based sheet row.
type Cell struct {
	Row   int
	Value string
}

// Load reads every row of sel from grid in ascending order. Rows or cells missing
// from the grid are returned with an empty value so row alignment is preserved.
func Load(grid [][]string, sel Selection) []Cell {
	cells := make([]Cell, 0, sel.Rows.Len())
	for row := sel.Rows.Start; row <= sel.Rows.End; row++ {
		cells = append(cells, Cell{
			Row:   row,
			Value: excel.Value(grid, row-1, sel.Column-1),
		})
	}
	return cells
}

// LoadFile reads sel from the active sheet of the workbook at path.
func LoadFile(path string, sel Selection) ([]Cell, error) {
	grid, err := excel.ReadFile(path, excel.ActiveSheet)
	if err != nil {
		return nil, err
	}
	return Load(grid, sel), nil
}
