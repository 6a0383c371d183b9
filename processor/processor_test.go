package processor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/orayew2002/rollbook/domain"
	"github.com/orayew2002/rollbook/roster"
)

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

func fixture(t *testing.T) (string, Options) {
	t.Helper()
	dir := t.TempDir()

	attendance := filepath.Join(dir, "attendance.xlsx")
	writeWorkbook(t, attendance, [][]any{
		{"Attendance"},
		{"No", "Name", "ID"},
		{1, "Ann", "101"},
		{2, "Bob", " 102 "},
		{3, "Cid", "200"},
	})

	rosterPath := filepath.Join(dir, "roster.xlsx")
	writeWorkbook(t, rosterPath, [][]any{
		{"Roster"},
		{"No", "Name", "Group", "Year", "Room", "ID", "Mark", "Note"},
		{1, "Ann", "G1", 1, "A1", "101", "", "keep"},
		{2, "Dan", "G1", 1, "A1", "103", "", "keep"},
		{3, "Bob", "G2", 2, "B2", "102", "", "keep"},
	})

	att, err := roster.ParseSelection("3-5", "C")
	if err != nil {
		t.Fatalf("attendance selection: %v", err)
	}
	ros, err := roster.ParseSelection("3-5", "F")
	if err != nil {
		t.Fatalf("roster selection: %v", err)
	}

	return dir, Options{AttendancePath: attendance, Attendance: att, RosterPath: rosterPath, Roster: ros}
}

func TestProcessMarksRoster(t *testing.T) {
	dir, opts := fixture(t)

	before, err := os.ReadFile(opts.RosterPath)
	if err != nil {
		t.Fatalf("read roster: %v", err)
	}

	rec, err := Process(opts, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	defer rec.Discard()

	if rec.Result.TotalInAttendance != 3 || rec.Result.Present != 2 || rec.Result.Absent != 1 {
		t.Fatalf("unexpected counts: %+v", rec.Result)
	}
	if rec.Result.Discrepancy() != 1 {
		t.Fatalf("expected discrepancy 1, got %d", rec.Result.Discrepancy())
	}

	wc := rec.WorkingCopy()
	if filepath.Dir(wc) != dir || !strings.HasPrefix(filepath.Base(wc), "temp_copy-") {
		t.Fatalf("unexpected working copy path %s", wc)
	}

	after, err := os.ReadFile(opts.RosterPath)
	if err != nil {
		t.Fatalf("read roster: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("original roster was modified")
	}

	f, err := excelize.OpenFile(wc)
	if err != nil {
		t.Fatalf("open working copy: %v", err)
	}
	defer f.Close()

	want := map[string]string{"G3": "P", "G4": "A", "G5": "P"}
	colors := map[string]string{"G3": "00FF00", "G4": "FF0000", "G5": "00FF00"}
	for cell, mark := range want {
		v, err := f.GetCellValue("Sheet1", cell)
		if err != nil {
			t.Fatalf("get %s: %v", cell, err)
		}
		if v != mark {
			t.Fatalf("%s: expected %q, got %q", cell, mark, v)
		}

		id, err := f.GetCellStyle("Sheet1", cell)
		if err != nil {
			t.Fatalf("style %s: %v", cell, err)
		}
		style, err := f.GetStyle(id)
		if err != nil {
			t.Fatalf("get style %d: %v", id, err)
		}
		if len(style.Fill.Color) == 0 || !strings.HasSuffix(strings.ToUpper(style.Fill.Color[0]), colors[cell]) {
			t.Fatalf("%s: expected fill %s, got %v", cell, colors[cell], style.Fill.Color)
		}
	}

	for _, cell := range []string{"H3", "H4", "H5"} {
		v, _ := f.GetCellValue("Sheet1", cell)
		if v != "keep" {
			t.Fatalf("%s was touched: %q", cell, v)
		}
	}
	if v, _ := f.GetCellValue("Sheet1", "G2"); v != "Mark" {
		t.Fatalf("header row was touched: %q", v)
	}
}

func TestExportAddsStatisticsAndRemovesWorkingCopy(t *testing.T) {
	dir, opts := fixture(t)

	rec, err := Process(opts, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	wc := rec.WorkingCopy()

	out := filepath.Join(dir, "out.xlsx")
	if err := rec.Export(out); err != nil {
		t.Fatalf("export: %v", err)
	}

	if _, err := os.Stat(wc); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("working copy still present: %v", err)
	}
	if rec.WorkingCopy() != "" {
		t.Fatalf("expected empty working copy path, got %s", rec.WorkingCopy())
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(StatisticsSheet)
	if err != nil {
		t.Fatalf("statistics rows: %v", err)
	}
	want := [][]string{
		{"Metric", "Value"},
		{"Total Students in the Attendance File", "3"},
		{"Present", "2"},
		{"Absent", "1"},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %v", len(want), rows)
	}
	for i := range want {
		if len(rows[i]) != 2 || rows[i][0] != want[i][0] || rows[i][1] != want[i][1] {
			t.Fatalf("row %d: expected %v, got %v", i, want[i], rows[i])
		}
	}

	if v, _ := f.GetCellValue("Sheet1", "G4"); v != "A" {
		t.Fatalf("export lost marks: G4 = %q", v)
	}

	if err := rec.Export(out); !errors.Is(err, domain.ErrIO) {
		t.Fatalf("second export: expected ErrIO, got %v", err)
	}
}

func TestDiscardRemovesWorkingCopy(t *testing.T) {
	_, opts := fixture(t)

	rec, err := Process(opts, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	wc := rec.WorkingCopy()

	if err := rec.Discard(); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if _, err := os.Stat(wc); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("working copy still present: %v", err)
	}
	if err := rec.Discard(); err != nil {
		t.Fatalf("second discard: %v", err)
	}
}

func TestProcessMalformedRosterLeavesNoWorkingCopy(t *testing.T) {
	dir, opts := fixture(t)

	opts.RosterPath = filepath.Join(dir, "broken.xlsx")
	if err := os.WriteFile(opts.RosterPath, []byte("not a workbook"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Process(opts, nil); !errors.Is(err, domain.ErrMalformedFile) {
		t.Fatalf("expected ErrMalformedFile, got %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "temp_copy-*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("working copies left behind: %v", matches)
	}
}
