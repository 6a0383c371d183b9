package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/orayew2002/rollbook/domain"
	"github.com/orayew2002/rollbook/excel"
)

// SheetName is the name of the report worksheet.
const SheetName = "Attendance"

const (
	columnWidth = 20
	rowHeight   = 25
)

// WriteToFile writes the flagged rows as a styled workbook at path. It fails with
// domain.ErrNoData when rows is empty.
func WriteToFile(rows []domain.AggregateRow, path string) error {
	f, err := build(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: save %s: %v", domain.ErrIO, path, err)
	}

	return nil
}

// WriteToBytes is WriteToFile into memory.
func WriteToBytes(rows []domain.AggregateRow) ([]byte, error) {
	f, err := build(rows)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write to buffer: %w", err)
	}

	return buf.Bytes(), nil
}

func build(rows []domain.AggregateRow) (*excelize.File, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: load day files before exporting", domain.ErrNoData)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	sm := excel.NewStyleManager(f)
	flagged := Flagged(rows)

	if err := writeHeaders(f, sm, DefaultRegistry()); err != nil {
		f.Close()
		return nil, fmt.Errorf("write headers: %w", err)
	}

	if err := writeRows(f, sm, flagged); err != nil {
		f.Close()
		return nil, fmt.Errorf("write rows: %w", err)
	}

	if err := fixLayout(f, len(flagged)); err != nil {
		f.Close()
		return nil, fmt.Errorf("layout: %w", err)
	}

	return f, nil
}

func writeHeaders(f *excelize.File, sm *excel.StyleManager, registry *Registry) error {
	for col, header := range Headers() {
		cell := excel.CellName(0, col)
		if err := f.SetCellStr(SheetName, cell, header); err != nil {
			return err
		}

		style, ok, err := registry.Style(sm, header)
		if err != nil {
			return fmt.Errorf("style %q: %w", header, err)
		}
		if !ok {
			continue
		}
		if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
			return err
		}
	}

	return nil
}

func writeRows(f *excelize.File, sm *excel.StyleManager, rows []domain.AggregateRow) error {
	style, err := sm.Text()
	if err != nil {
		return err
	}

	for i, r := range rows {
		row := i + 1 // row 0 is headers
		values := Values(r)
		for col, val := range values {
			cell := excel.CellName(row, col)
			if err := f.SetCellStr(SheetName, cell, val); err != nil {
				return fmt.Errorf("student %s, col %d: %w", r.Key.ID, col, err)
			}
		}
		first, last := excel.CellName(row, 0), excel.CellName(row, len(values)-1)
		if err := f.SetCellStyle(SheetName, first, last, style); err != nil {
			return fmt.Errorf("student %s: %w", r.Key.ID, err)
		}
	}

	return nil
}

func fixLayout(f *excelize.File, dataRows int) error {
	last := excel.IndexToColumn(len(Headers()) - 1)
	if err := f.SetColWidth(SheetName, "A", last, columnWidth); err != nil {
		return err
	}

	for row := 1; row <= dataRows+1; row++ {
		if err := f.SetRowHeight(SheetName, row, rowHeight); err != nil {
			return err
		}
	}

	return nil
}
