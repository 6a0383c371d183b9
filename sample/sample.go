// Package sample generates fake roster, attendance and day workbooks for trying
// the reconciliation and weekly commands without real exports.
package sample

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bxcodec/faker/v4"
	"github.com/xuri/excelize/v2"

	"github.com/orayew2002/rollbook/domain"
	"github.com/orayew2002/rollbook/excel"
)

// FirstDataRow is the 1-based row of the first student in every generated sheet.
const FirstDataRow = 3

// Student is one generated student.
type Student struct {
	Name  string
	ID    string
	Group string
}

var groups = []string{"G-101", "G-102", "G-201", "G-202"}

// statusSymbols weights presence over absence and leave.
var statusSymbols = []string{"P", "P", "P", "P", "P", "A", "L", ""}

// Students creates n students with random names and zero-padded ids.
func Students(n int) []Student {
	students := make([]Student, n)
	for i := range n {
		students[i] = Student{
			Name:  faker.Name(),
			ID:    fmt.Sprintf("%05d", i+1),
			Group: groups[rand.IntN(len(groups))],
		}
	}
	return students
}

// Rows returns the data row range covering n students (e.g. "3-27").
func Rows(n int) string {
	return fmt.Sprintf("%d-%d", FirstDataRow, FirstDataRow+max(n, 1)-1)
}

// Files lists everything Generate wrote.
type Files struct {
	Roster     string
	Attendance string
	Days       map[domain.Day]string
}

// Generate writes a roster, an attendance sheet and one export per day into dir.
func Generate(dir string, n int) (Files, error) {
	students := Students(n)

	files := Files{
		Roster:     filepath.Join(dir, "roster.xlsx"),
		Attendance: filepath.Join(dir, "attendance.xlsx"),
		Days:       make(map[domain.Day]string, len(domain.Days)),
	}

	if err := WriteRoster(files.Roster, students); err != nil {
		return Files{}, err
	}
	if err := WriteAttendance(files.Attendance, students); err != nil {
		return Files{}, err
	}

	for _, d := range domain.Days {
		path := filepath.Join(dir, strings.ToLower(string(d))+".xlsx")
		if err := WriteDaySheet(path, d, students, 6); err != nil {
			return Files{}, err
		}
		files.Days[d] = path
	}

	return files, nil
}

// WriteRoster writes the main roster with ids in column F.
func WriteRoster(path string, students []Student) error {
	header := []string{"No", "Name", "Group", "Year", "Room", "ID", "Mark"}
	return writeSheet(path, "Roster", header, len(students), func(i int) []string {
		s := students[i]
		return []string{strconv.Itoa(i + 1), s.Name, s.Group, strconv.Itoa(1 + rand.IntN(4)), "R" + strconv.Itoa(100+rand.IntN(20)), s.ID, ""}
	})
}

// WriteAttendance writes a random subset of students with ids in column C.
func WriteAttendance(path string, students []Student) error {
	present := make([]Student, 0, len(students))
	for _, s := range students {
		if rand.IntN(5) != 0 {
			present = append(present, s)
		}
	}

	header := []string{"No", "Name", "ID"}
	return writeSheet(path, "Attendance", header, len(present), func(i int) []string {
		return []string{strconv.Itoa(i + 1), present[i].Name, present[i].ID}
	})
}

// WriteDaySheet writes one day export with the given number of status columns.
func WriteDaySheet(path string, day domain.Day, students []Student, periods int) error {
	header := []string{"No", "Group", "Student Name", "Year", "Room", "Student ID"}
	for p := 1; p <= periods; p++ {
		header = append(header, strconv.Itoa(p))
	}

	return writeSheet(path, string(day)+" attendance", header, len(students), func(i int) []string {
		s := students[i]
		row := []string{strconv.Itoa(i + 1), s.Group, s.Name, "1", "R100", s.ID}
		for range periods {
			row = append(row, statusSymbols[rand.IntN(len(statusSymbols))])
		}
		return row
	})
}

// writeSheet writes a title row, a header row and n data rows, all as text.
func writeSheet(path, title string, header []string, n int, row func(i int) []string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	sm := excel.NewStyleManager(f)
	headerStyle, err := sm.Header("D9D9D9")
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := f.SetCellStr(sheet, "A1", title); err != nil {
		return fmt.Errorf("title: %w", err)
	}

	for col, h := range header {
		cell := excel.CellName(1, col)
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return fmt.Errorf("header %s: %w", cell, err)
		}
	}
	if err := f.SetCellStyle(sheet, "A2", excel.CellName(1, len(header)-1), headerStyle); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i := range n {
		for col, val := range row(i) {
			cell := excel.CellName(FirstDataRow-1+i, col)
			if err := f.SetCellStr(sheet, cell, val); err != nil {
				return fmt.Errorf("row %d, col %d: %w", i, col, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: save %s: %v", domain.ErrIO, path, err)
	}

	return nil
}
