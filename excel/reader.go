package excel

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/orayew2002/rollbook/domain"
)

// Sheet selects which worksheet ReadFile returns.
type Sheet int

const (
	// FirstSheet is the first sheet in workbook order.
	FirstSheet Sheet = iota
	// ActiveSheet is the sheet that was selected when the workbook was saved.
	ActiveSheet
)

type rowReader func(path string, sheet Sheet) ([][]string, error)

// ReadFile returns the cell grid of one sheet. The xlsx reader is tried first and the
// legacy xls reader second; files with an .xls extension try them in reverse order.
// When neither can read the file the error wraps domain.ErrMalformedFile.
func ReadFile(path string, sheet Sheet) ([][]string, error) {
	readers := []rowReader{readXLSX, readXLS}
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		readers = []rowReader{readXLS, readXLSX}
	}

	var errs []error
	for _, read := range readers {
		rows, err := read(path, sheet)
		if err == nil {
			return rows, nil
		}
		errs = append(errs, err)
	}

	return nil, fmt.Errorf("%w: %s: %w", domain.ErrMalformedFile, filepath.Base(path), errors.Join(errs...))
}

// SheetName resolves sheet against an open excelize workbook.
func SheetName(f *excelize.File, sheet Sheet) (string, error) {
	name := ""
	if sheet == ActiveSheet {
		name = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if name == "" {
		name = f.GetSheetName(0)
	}
	if name == "" {
		return "", errors.New("workbook contains no sheets")
	}
	return name, nil
}

func readXLSX(path string, sheet Sheet) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx open: %w", err)
	}
	defer f.Close()

	name, err := SheetName(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("xlsx rows %q: %w", name, err)
	}

	return rows, nil
}

// readXLS reads the first worksheet of a BIFF workbook. The format keeps no usable
// active-sheet marker for this reader, so sheet is ignored.
func readXLS(path string, _ Sheet) (rows [][]string, err error) {
	// The BIFF parser panics on some non-xls input instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("xls parse: %v", r)
		}
	}()

	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("xls open: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, errors.New("xls: workbook contains no sheets")
	}

	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, errors.New("xls: cannot read first sheet")
	}

	rows = make([][]string, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}

		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		rows = append(rows, trimTrailing(cells))
	}

	return trimTrailingRows(rows), nil
}

// trimTrailing drops empty trailing cells, matching excelize GetRows output.
func trimTrailing(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return cells[:n]
}

func trimTrailingRows(rows [][]string) [][]string {
	n := len(rows)
	for n > 0 && len(rows[n-1]) == 0 {
		n--
	}
	return rows[:n]
}

// Value returns the cell at 0-based row and col, or "" when the grid is shorter.
func Value(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) {
		return ""
	}
	if col < 0 || col >= len(rows[row]) {
		return ""
	}
	return rows[row][col]
}

// Width returns the widest row length at or below fromRow.
func Width(rows [][]string, fromRow int) int {
	width := 0
	for i := fromRow; i < len(rows); i++ {
		if i < 0 {
			continue
		}
		if len(rows[i]) > width {
			width = len(rows[i])
		}
	}
	return width
}
