package weekly

import (
	"sort"

	"github.com/orayew2002/rollbook/domain"
)

// Aggregate merges every batch into one row per student. Records of the same
// student on the same day are summed regardless of which file or load they came
// from, and days without a record are zero.
func Aggregate(batches []domain.Batch) []domain.AggregateRow {
	perKey := make(map[domain.StudentKey]map[domain.Day]domain.DayTotals)

	for _, b := range batches {
		for _, rec := range b.Records {
			days, ok := perKey[rec.Key]
			if !ok {
				days = make(map[domain.Day]domain.DayTotals, len(domain.Days))
				perKey[rec.Key] = days
			}
			t := days[rec.Day]
			t.Absences += rec.Absences
			t.Leaves += rec.Leaves
			days[rec.Day] = t
		}
	}

	rows := make([]domain.AggregateRow, 0, len(perKey))
	for key, days := range perKey {
		row := domain.AggregateRow{Key: key, PerDay: make(map[domain.Day]domain.DayTotals, len(domain.Days))}
		for _, d := range domain.Days {
			t := days[d]
			row.PerDay[d] = t
			row.TotalAbsences += t.Absences
			row.TotalLeaves += t.Leaves
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Key.Less(rows[j].Key) })

	return rows
}
