package weekly

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/orayew2002/rollbook/domain"
	"github.com/orayew2002/rollbook/excel"
)

// Extract turns the rows of one day export into day records. Rows above and
// including the header are skipped, as are rows without a student name.
func Extract(rows [][]string, day domain.Day, schema Schema) ([]domain.DayRecord, error) {
	if len(rows) <= schema.HeaderRow {
		return nil, fmt.Errorf("%w: no header row %d", domain.ErrMalformedFile, schema.HeaderRow+1)
	}

	header := rows[schema.HeaderRow]
	l, err := schema.resolve(header, excel.Width(rows, schema.HeaderRow))
	if err != nil {
		return nil, err
	}

	var records []domain.DayRecord
	for i := schema.HeaderRow + 1; i < len(rows); i++ {
		key := domain.NewStudentKey(excel.Value(rows, i, l.name), excel.Value(rows, i, l.id))
		if key.Name == "" {
			continue
		}

		rec := domain.DayRecord{Day: day, Key: key}
		for _, col := range l.status {
			switch excel.Value(rows, i, col) {
			case schema.AbsenceCode:
				rec.Absences++
			case schema.LeaveCode:
				rec.Leaves++
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// ExtractFile reads the first sheet of path and returns it as one batch.
func ExtractFile(path string, day domain.Day, schema Schema) (domain.Batch, error) {
	rows, err := excel.ReadFile(path, excel.FirstSheet)
	if err != nil {
		return domain.Batch{}, err
	}

	records, err := Extract(rows, day, schema)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return domain.Batch{
		ID:       uuid.NewString(),
		Day:      day,
		Source:   path,
		LoadedAt: time.Now().UTC(),
		Records:  records,
	}, nil
}
