package domain

import (
	"fmt"
	"strings"
	"time"
)

// Day names a weekly attendance bucket.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
)

// Days is the fixed report order. It is not configurable.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday}

// ParseDay matches s against Days case-insensitively.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for _, d := range Days {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day %q (want one of %s)", s, strings.Join(dayNames(), ", "))
}

func dayNames() []string {
	names := make([]string, len(Days))
	for i, d := range Days {
		names[i] = string(d)
	}
	return names
}

// NormalizeID trims surrounding whitespace from a raw identifier cell.
func NormalizeID(raw string) string {
	return strings.TrimSpace(raw)
}

// StudentKey identifies one student across files and days.
type StudentKey struct {
	Name string
	ID   string
}

// NewStudentKey builds a key from raw cell values.
func NewStudentKey(name, id string) StudentKey {
	return StudentKey{Name: strings.TrimSpace(name), ID: NormalizeID(id)}
}

// Less orders keys by name, then id.
func (k StudentKey) Less(o StudentKey) bool {
	if k.Name != o.Name {
		return k.Name < o.Name
	}
	return k.ID < o.ID
}

// DayRecord holds one row of a day file.
type DayRecord struct {
	Day      Day
	Key      StudentKey
	Absences int
	Leaves   int
}

// Batch is everything extracted from one source file for one day.
type Batch struct {
	ID       string
	Day      Day
	Source   string
	LoadedAt time.Time
	Records  []DayRecord
}

// DayTotals are the summed counts of one student on one day.
type DayTotals struct {
	Absences int
	Leaves   int
}

// AggregateRow is one student across every day in Days.
type AggregateRow struct {
	Key           StudentKey
	PerDay        map[Day]DayTotals
	TotalAbsences int
	TotalLeaves   int
}

// Day returns the totals for d, zero if missing.
func (r AggregateRow) Day(d Day) DayTotals {
	return r.PerDay[d]
}

// Flagged reports whether the student has any absence or leave.
func (r AggregateRow) Flagged() bool {
	return r.TotalAbsences > 0 || r.TotalLeaves > 0
}

// Status is the reconciliation outcome for a roster row.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

// Mark is the value written into the status column.
func (s Status) Mark() string {
	if s == StatusPresent {
		return "P"
	}
	return "A"
}

// FillColor is the solid fill applied to the status cell.
func (s Status) FillColor() string {
	if s == StatusPresent {
		return "00FF00"
	}
	return "FF0000"
}

// RosterEntry is a roster row read from the main file.
// Row is the 1-based sheet row so results can be written back in place.
type RosterEntry struct {
	Row    int
	ID     string
	Status Status
}
