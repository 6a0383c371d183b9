// Package processor runs the single-day reconciliation against a working copy of
// the roster workbook and exports the annotated result.
package processor

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/orayew2002/rollbook/domain"
	"github.com/orayew2002/rollbook/excel"
	"github.com/orayew2002/rollbook/roster"
)

// StatusColumn is the 1-based column that receives the P/A marks (G).
const StatusColumn = 7

// StatisticsSheet is the name of the summary sheet added on export.
const StatisticsSheet = "Statistics"

const workingCopyPattern = "temp_copy-*.xlsx"

// Options describes where the attendance and roster identifiers are read from.
type Options struct {
	AttendancePath string
	Attendance     roster.Selection
	RosterPath     string
	Roster         roster.Selection
}

// Reconciliation is a finished run whose annotated roster lives in a working copy
// until it is exported or discarded.
type Reconciliation struct {
	Result roster.Result

	workingCopy string
	logger      *log.Logger
}

// Process reconciles the roster against the attendance sheet. The roster file is
// never modified; marks are written to a working copy next to it.
func Process(opts Options, logger *log.Logger) (*Reconciliation, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	attendance, err := roster.LoadFile(opts.AttendancePath, opts.Attendance)
	if err != nil {
		return nil, fmt.Errorf("attendance %s: %w", opts.AttendancePath, err)
	}
	present, total := roster.NewPresentSet(attendance)

	workingCopy, err := copyToTemp(opts.RosterPath)
	if err != nil {
		return nil, err
	}

	res, err := annotate(workingCopy, opts.Roster, present, total)
	if err != nil {
		if rmErr := os.Remove(workingCopy); rmErr != nil {
			logger.Printf("warning: remove working copy %s: %v", workingCopy, rmErr)
		}
		return nil, fmt.Errorf("roster %s: %w", opts.RosterPath, err)
	}

	return &Reconciliation{Result: res, workingCopy: workingCopy, logger: logger}, nil
}

// WorkingCopy returns the path of the annotated working copy, or "" once it was removed.
func (r *Reconciliation) WorkingCopy() string {
	return r.workingCopy
}

// Export writes the annotated roster with a Statistics sheet to dest and removes
// the working copy afterwards.
func (r *Reconciliation) Export(dest string) error {
	if r.workingCopy == "" {
		return fmt.Errorf("%w: reconciliation was already exported or discarded", domain.ErrIO)
	}

	if err := copyFile(r.workingCopy, dest); err != nil {
		return err
	}

	f, err := excelize.OpenFile(dest)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", domain.ErrIO, dest, err)
	}
	defer f.Close()

	if err := writeStatistics(f, r.Result); err != nil {
		return fmt.Errorf("statistics sheet: %w", err)
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: save %s: %v", domain.ErrIO, dest, err)
	}

	if err := os.Remove(r.workingCopy); err != nil {
		r.logger.Printf("warning: remove working copy %s: %v", r.workingCopy, err)
		return nil
	}
	r.workingCopy = ""

	return nil
}

// Discard removes the working copy without exporting it.
func (r *Reconciliation) Discard() error {
	if r.workingCopy == "" {
		return nil
	}
	if err := os.Remove(r.workingCopy); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", domain.ErrIO, r.workingCopy, err)
	}
	r.workingCopy = ""
	return nil
}

// ---------- Write-back ----------

func annotate(path string, sel roster.Selection, present roster.PresentSet, total int) (roster.Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return roster.Result{}, fmt.Errorf("%w: %v", domain.ErrMalformedFile, err)
	}
	defer f.Close()

	sheet, err := excel.SheetName(f, excel.ActiveSheet)
	if err != nil {
		return roster.Result{}, fmt.Errorf("%w: %v", domain.ErrMalformedFile, err)
	}

	grid, err := f.GetRows(sheet)
	if err != nil {
		return roster.Result{}, fmt.Errorf("%w: rows of %q: %v", domain.ErrMalformedFile, sheet, err)
	}

	res := roster.Reconcile(present, total, roster.Load(grid, sel))

	sm := excel.NewStyleManager(f)
	for _, entry := range res.Entries {
		if err := markCell(f, sm, sheet, entry); err != nil {
			return roster.Result{}, err
		}
	}

	if err := f.Save(); err != nil {
		return roster.Result{}, fmt.Errorf("%w: save working copy: %v", domain.ErrIO, err)
	}

	return res, nil
}

func markCell(f *excelize.File, sm *excel.StyleManager, sheet string, entry domain.RosterEntry) error {
	cell := excel.CellName(entry.Row-1, StatusColumn-1)

	base, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return fmt.Errorf("style of %s: %w", cell, err)
	}

	style, err := sm.Filled(base, entry.Status.FillColor())
	if err != nil {
		return fmt.Errorf("fill %s: %w", cell, err)
	}

	if err := f.SetCellStr(sheet, cell, entry.Status.Mark()); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
		return fmt.Errorf("set style %s: %w", cell, err)
	}

	return nil
}

// ---------- Statistics ----------

// Statistics returns the summary rows written to the Statistics sheet.
func Statistics(res roster.Result) [][2]any {
	return [][2]any{
		{"Total Students in the Attendance File", res.TotalInAttendance},
		{"Present", res.Present},
		{"Absent", res.Absent},
	}
}

func writeStatistics(f *excelize.File, res roster.Result) error {
	if idx, err := f.GetSheetIndex(StatisticsSheet); err == nil && idx != -1 {
		if err := f.DeleteSheet(StatisticsSheet); err != nil {
			return fmt.Errorf("delete old sheet: %w", err)
		}
	}
	if _, err := f.NewSheet(StatisticsSheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}

	sm := excel.NewStyleManager(f)
	header, err := sm.Header("D9D9D9")
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := f.SetSheetRow(StatisticsSheet, "A1", &[]any{"Metric", "Value"}); err != nil {
		return fmt.Errorf("header row: %w", err)
	}
	if err := f.SetCellStyle(StatisticsSheet, "A1", "B1", header); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, row := range Statistics(res) {
		cell := excel.CellName(i+1, 0)
		if err := f.SetSheetRow(StatisticsSheet, cell, &[]any{row[0], row[1]}); err != nil {
			return fmt.Errorf("row %s: %w", cell, err)
		}
	}

	return f.SetColWidth(StatisticsSheet, "A", "A", 40)
}

// ---------- Files ----------

func copyToTemp(src string) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(src), workingCopyPattern)
	if err != nil {
		return "", fmt.Errorf("%w: create working copy: %v", domain.ErrIO, err)
	}
	path := tmp.Name()
	tmp.Close()

	if err := copyFile(src, path); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", domain.ErrIO, src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrIO, dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("%w: copy %s: %v", domain.ErrIO, src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", domain.ErrIO, dst, err)
	}
	return nil
}
