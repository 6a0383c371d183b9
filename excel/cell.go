package excel

import (
	"fmt"

	"github.com/orayew2002/rollbook/domain"
)

// CellName converts 0-based row and column indices to an Excel cell reference (e.g. 0,0 → "A1").
func CellName(row, col int) string {
	return fmt.Sprintf("%s%d", IndexToColumn(col), row+1)
}

// IndexToColumn converts a 0-based column index to Excel column letters (0→A, 25→Z, 26→AA).
func IndexToColumn(n int) string {
	result := ""
	for n >= 0 {
		result = string(rune('A'+(n%26))) + result
		n = n/26 - 1
	}
	return result
}

// ColumnNumber converts a single column letter to its 1-based number (A→1, F→6).
// Only one uppercase letter A–Z is accepted; multi-letter columns are not supported.
func ColumnNumber(letter string) (int, error) {
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return 0, fmt.Errorf("%w: %q is not a single letter A-Z", domain.ErrInvalidColumn, letter)
	}
	return int(letter[0]-'A') + 1, nil
}
