package weekly

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/orayew2002/rollbook/domain"
)

func dayRows(rows ...[]string) [][]string {
	return append([][]string{
		{"Attendance export"},
		{"No", "Group", "Student Name", "Year", "Room", "Student ID", "1", "2", "3", "4", "5"},
	}, rows...)
}

func writeDay(t *testing.T, path string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellStr("Sheet1", cell, v); err != nil {
				t.Fatalf("set %s: %v", cell, err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

func TestExtractCountsCodes(t *testing.T) {
	records, err := Extract(dayRows(
		[]string{"1", "G1", "Alice", "1", "R1", "101", "A", "P", "L", "A", "P"},
	), domain.Monday, DefaultSchema())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	want := domain.DayRecord{Day: domain.Monday, Key: domain.StudentKey{Name: "Alice", ID: "101"}, Absences: 2, Leaves: 1}
	if records[0] != want {
		t.Fatalf("expected %+v, got %+v", want, records[0])
	}
}

func TestExtractIgnoresOtherCodesAndBlankRows(t *testing.T) {
	records, err := Extract(dayRows(
		[]string{"1", "G1", "Alice", "1", "R1", " 101 ", "a", "X", "", " L", "A"},
		[]string{"", "", "", "", "", "", "A", "A"},
		[]string{"3", "G1", "Bob", "1", "R1", "102"},
		[]string{"4", "G1", "", "1", "R1", "103", "A", "L"},
	), domain.Tuesday, DefaultSchema())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %+v", records)
	}
	if records[0].Key.ID != "101" || records[0].Absences != 1 || records[0].Leaves != 0 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Absences != 0 || records[1].Leaves != 0 {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestExtractReadsExpectedIndexes(t *testing.T) {
	rows := [][]string{
		{"title"},
		{"No", "ID", "Student Name", "Year", "Room", "Student Number", "1", "2"},
		{"1", "900", "Alice", "1", "R1", "101", "A", "L"},
	}
	records, err := Extract(rows, domain.Monday, DefaultSchema())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := domain.DayRecord{Day: domain.Monday, Key: domain.StudentKey{Name: "Alice", ID: "101"}, Absences: 1, Leaves: 1}
	if len(records) != 1 || records[0] != want {
		t.Fatalf("expected %+v, got %+v", want, records)
	}
}

func TestExtractAcceptsBlankHeaderAtIndex(t *testing.T) {
	rows := [][]string{
		{"title"},
		{"No", "Group", "", "Year", "Room", "", "1"},
		{"1", "G1", "Alice", "1", "R1", "101", "L"},
	}
	records, err := Extract(rows, domain.Monday, DefaultSchema())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := domain.DayRecord{Day: domain.Monday, Key: domain.StudentKey{Name: "Alice", ID: "101"}, Leaves: 1}
	if len(records) != 1 || records[0] != want {
		t.Fatalf("expected %+v, got %+v", want, records)
	}
}

func TestExtractFindsColumnByHeaderOutsideSheet(t *testing.T) {
	schema := DefaultSchema()
	schema.ID.Index = 10

	rows := [][]string{
		{"title"},
		{"No", "Group", "Student Name", "Student ID", "Room", "x", "1", "2"},
		{"1", "G1", "Cara", "7", "R1", "", "A", "L"},
	}
	records, err := Extract(rows, domain.Monday, schema)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := domain.DayRecord{Day: domain.Monday, Key: domain.StudentKey{Name: "Cara", ID: "7"}, Absences: 1, Leaves: 1}
	if len(records) != 1 || records[0] != want {
		t.Fatalf("expected %+v, got %+v", want, records)
	}

	rows[1][3] = "Code"
	if _, err := Extract(rows, domain.Monday, schema); !errors.Is(err, domain.ErrMalformedFile) {
		t.Fatalf("expected ErrMalformedFile without a matching header, got %v", err)
	}
}

func TestExtractRejectsMalformed(t *testing.T) {
	cases := map[string][][]string{
		"too few columns": {
			{"title"},
			{"a", "b", "Student Name", "d", "Student ID"},
			{"1", "2", "Alice", "4", "101"},
		},
		"no header row": {{"title"}},
	}
	for name, rows := range cases {
		if _, err := Extract(rows, domain.Monday, DefaultSchema()); !errors.Is(err, domain.ErrMalformedFile) {
			t.Fatalf("%s: expected ErrMalformedFile, got %v", name, err)
		}
	}
}

func TestExtractStrictHeaders(t *testing.T) {
	schema := DefaultSchema()
	schema.RequireHeaders = true

	rows := [][]string{
		{"title"},
		{"a", "b", "c", "d", "e", "f", "g"},
		{"1", "2", "Alice", "4", "5", "101", "A"},
	}
	if _, err := Extract(rows, domain.Monday, schema); !errors.Is(err, domain.ErrMalformedFile) {
		t.Fatalf("expected ErrMalformedFile, got %v", err)
	}

	misplaced := [][]string{
		{"title"},
		{"Student ID", "b", "Name", "d", "e", "f", "g"},
		{"101", "2", "Alice", "4", "5", "6", "A"},
	}
	if _, err := Extract(misplaced, domain.Monday, schema); !errors.Is(err, domain.ErrMalformedFile) {
		t.Fatalf("expected ErrMalformedFile for an id header away from its index, got %v", err)
	}

	named := [][]string{
		{"title"},
		{"No", "Group", "Full Name", "Year", "Room", "student_id", "1"},
		{"1", "G1", "Alice", "1", "R1", "101", "A"},
	}
	records, err := Extract(named, domain.Monday, schema)
	if err != nil {
		t.Fatalf("strict with matching headers: %v", err)
	}
	if len(records) != 1 || records[0].Key.ID != "101" || records[0].Absences != 1 {
		t.Fatalf("unexpected records: %+v", records)
	}

	schema.RequireHeaders = false
	records, err = Extract(rows, domain.Monday, schema)
	if err != nil {
		t.Fatalf("positional read: %v", err)
	}
	if len(records) != 1 || records[0].Key.Name != "Alice" || records[0].Absences != 1 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestAggregateMergesDays(t *testing.T) {
	alice := domain.StudentKey{Name: "Alice", ID: "1"}
	bob := domain.StudentKey{Name: "Bob", ID: "2"}

	rows := Aggregate([]domain.Batch{
		{Day: domain.Monday, Records: []domain.DayRecord{{Day: domain.Monday, Key: alice, Absences: 2}}},
		{Day: domain.Tuesday, Records: []domain.DayRecord{{Day: domain.Tuesday, Key: bob, Leaves: 1}}},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	a, b := rows[0], rows[1]
	if a.Key != alice || b.Key != bob {
		t.Fatalf("unexpected keys: %v %v", a.Key, b.Key)
	}
	if a.Day(domain.Monday).Absences != 2 || a.TotalAbsences != 2 || a.TotalLeaves != 0 {
		t.Fatalf("unexpected alice row: %+v", a)
	}
	if b.Day(domain.Tuesday).Leaves != 1 || b.TotalLeaves != 1 || b.TotalAbsences != 0 {
		t.Fatalf("unexpected bob row: %+v", b)
	}
	for _, d := range domain.Days {
		if _, ok := a.PerDay[d]; !ok {
			t.Fatalf("alice missing %s", d)
		}
		if d != domain.Monday && a.Day(d) != (domain.DayTotals{}) {
			t.Fatalf("alice %s not zero: %+v", d, a.Day(d))
		}
		if d != domain.Tuesday && b.Day(d) != (domain.DayTotals{}) {
			t.Fatalf("bob %s not zero: %+v", d, b.Day(d))
		}
	}
}

func TestAggregateSumsDuplicatesWithinDay(t *testing.T) {
	alice := domain.StudentKey{Name: "Alice", ID: "1"}
	rows := Aggregate([]domain.Batch{
		{Day: domain.Monday, Records: []domain.DayRecord{{Day: domain.Monday, Key: alice, Absences: 1}}},
		{Day: domain.Monday, Records: []domain.DayRecord{
			{Day: domain.Monday, Key: alice, Absences: 2, Leaves: 1},
			{Day: domain.Monday, Key: alice, Leaves: 1},
		}},
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if got := rows[0].Day(domain.Monday); got != (domain.DayTotals{Absences: 3, Leaves: 2}) {
		t.Fatalf("unexpected monday totals: %+v", got)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	batches := []domain.Batch{
		{Day: domain.Monday, Records: []domain.DayRecord{
			{Day: domain.Monday, Key: domain.StudentKey{Name: "A", ID: "1"}, Absences: 1},
			{Day: domain.Monday, Key: domain.StudentKey{Name: "B", ID: "2"}, Leaves: 2},
		}},
		{Day: domain.Tuesday, Records: []domain.DayRecord{
			{Day: domain.Tuesday, Key: domain.StudentKey{Name: "A", ID: "1"}, Leaves: 1},
		}},
		{Day: domain.Monday, Records: []domain.DayRecord{
			{Day: domain.Monday, Key: domain.StudentKey{Name: "C", ID: "3"}},
		}},
		{Day: domain.Thursday, Records: []domain.DayRecord{
			{Day: domain.Thursday, Key: domain.StudentKey{Name: "B", ID: "2"}, Absences: 4},
		}},
	}

	forward := Aggregate(batches)

	reversed := make([]domain.Batch, len(batches))
	for i, b := range batches {
		reversed[len(batches)-1-i] = b
	}
	if !reflect.DeepEqual(forward, Aggregate(reversed)) {
		t.Fatal("aggregation depends on load order")
	}

	// Re-aggregating the same batches changes nothing.
	if !reflect.DeepEqual(forward, Aggregate(batches)) {
		t.Fatal("aggregation is not repeatable")
	}

	for _, row := range forward {
		if row.Day(domain.Wednesday) != (domain.DayTotals{}) {
			t.Fatalf("wednesday was never loaded but %v has %+v", row.Key, row.Day(domain.Wednesday))
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	if rows := Aggregate(nil); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

type memStore struct {
	batches []domain.Batch
	saves   int
}

func (m *memStore) SaveBatches(_ context.Context, b []domain.Batch) error {
	m.saves++
	m.batches = append(m.batches, b...)
	return nil
}

func (m *memStore) LoadBatches(context.Context) ([]domain.Batch, error) {
	return append([]domain.Batch(nil), m.batches...), nil
}

func (m *memStore) Reset(context.Context) error {
	m.batches = nil
	return nil
}

func (m *memStore) Close() error { return nil }

func TestSessionAddDayAllOrNothing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	good := filepath.Join(dir, "good.xlsx")
	writeDay(t, good, dayRows([]string{"1", "G", "Alice", "1", "R", "101", "A", "A", "L"}))

	bad := filepath.Join(dir, "bad.xlsx")
	writeDay(t, bad, [][]string{{"title"}, {"a", "b", "c", "d", "e"}, {"1", "2", "3", "4", "5"}})

	store := &memStore{}
	s, err := OpenSession(ctx, store, DefaultSchema())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	if _, err := s.AddDay(ctx, domain.Monday, []string{good, bad}); !errors.Is(err, domain.ErrMalformedFile) {
		t.Fatalf("expected ErrMalformedFile, got %v", err)
	}
	if s.Loaded(domain.Monday) != 0 || len(s.Aggregate()) != 0 {
		t.Fatal("failed load changed the session")
	}
	if store.saves != 0 {
		t.Fatal("failed load reached the store")
	}

	n, err := s.AddDay(ctx, domain.Monday, []string{good, good})
	if err != nil {
		t.Fatalf("add day: %v", err)
	}
	if n != 2 || s.Loaded(domain.Monday) != 2 {
		t.Fatalf("expected 2 files loaded, got %d/%d", n, s.Loaded(domain.Monday))
	}

	rows := s.Flagged()
	if len(rows) != 1 || rows[0].TotalAbsences != 4 || rows[0].TotalLeaves != 2 {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	restored, err := OpenSession(ctx, store, DefaultSchema())
	if err != nil {
		t.Fatalf("reopen session: %v", err)
	}
	if !reflect.DeepEqual(restored.Aggregate(), s.Aggregate()) {
		t.Fatal("restored session differs")
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(s.Batches()) != 0 || len(store.batches) != 0 {
		t.Fatal("reset left batches behind")
	}
}

func TestSessionFlaggedDropsPerfectRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "day.xlsx")
	writeDay(t, path, dayRows(
		[]string{"1", "G", "Alice", "1", "R", "101", "P", "P"},
		[]string{"2", "G", "Bob", "1", "R", "102", "L", "P"},
	))

	s, err := OpenSession(ctx, nil, DefaultSchema())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if _, err := s.AddDay(ctx, domain.Wednesday, []string{path}); err != nil {
		t.Fatalf("add day: %v", err)
	}

	if len(s.Aggregate()) != 2 {
		t.Fatalf("expected 2 aggregate rows, got %d", len(s.Aggregate()))
	}
	flagged := s.Flagged()
	if len(flagged) != 1 || flagged[0].Key.Name != "Bob" {
		t.Fatalf("unexpected flagged rows: %+v", flagged)
	}
}
