package loaders

import (
	"strings"

	"MarginSight/api/mpa/model"
)

// findColumn resolves a header cell index from an explicit ordered alias list.
// Aliases are checked in order; the first alias that equals a trimmed,
// case-folded header wins. Returns -1 when nothing matches.
func findColumn(header []string, aliases []string) int {
	for _, alias := range aliases {
		for idx, col := range header {
			if strings.EqualFold(normalizeCell(col), alias) {
				return idx
			}
		}
	}
	return -1
}

// requireColumn is findColumn with a fatal error when no alias matches.
func requireColumn(header []string, aliases []string, what string) (int, error) {
	if idx := findColumn(header, aliases); idx >= 0 {
		return idx, nil
	}
	return -1, model.Inputf("required %s column not found, tried: %s", what, strings.Join(aliases, ", "))
}

// cellAt returns the cell at idx or "" when the row is ragged. Spreadsheet
// readers drop trailing empty cells, so short rows are normal.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// allEmptyRow returns true when every cell in the row is empty or whitespace
func allEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
