package roster

import "github.com/orayew2002/rollbook/domain"

// PresentSet holds the normalized identifiers found in an attendance sheet.
type PresentSet map[string]struct{}

// NewPresentSet builds the set from attendance cells and returns the number of
// non-empty cells read. Duplicates count once in the set but every time in total.
func NewPresentSet(cells []Cell) (PresentSet, int) {
	set := make(PresentSet, len(cells))
	total := 0
	for _, c := range cells {
		id := domain.NormalizeID(c.Value)
		if id == "" {
			continue
		}
		set[id] = struct{}{}
		total++
	}
	return set, total
}

// Contains reports whether the normalized id is present.
func (s PresentSet) Contains(id string) bool {
	id = domain.NormalizeID(id)
	if id == "" {
		return false
	}
	_, ok := s[id]
	return ok
}

// Result is the outcome of one reconciliation run.
type Result struct {
	Entries           []domain.RosterEntry
	TotalInAttendance int
	Present           int
	Absent            int
}

// Discrepancy is the number of attendance entries that matched no roster row.
// It goes negative when the roster repeats a present identifier.
func (r Result) Discrepancy() int {
	return r.TotalInAttendance - r.Present
}

// Reconcile classifies each roster cell as present or absent.
func Reconcile(present PresentSet, totalInAttendance int, roster []Cell) Result {
	res := Result{
		Entries:           make([]domain.RosterEntry, 0, len(roster)),
		TotalInAttendance: totalInAttendance,
	}

	for _, c := range roster {
		entry := domain.RosterEntry{Row: c.Row, ID: domain.NormalizeID(c.Value), Status: domain.StatusAbsent}
		if present.Contains(entry.ID) {
			entry.Status = domain.StatusPresent
			res.Present++
		} else {
			res.Absent++
		}
		res.Entries = append(res.Entries, entry)
	}

	return res
}
