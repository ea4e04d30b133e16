package loaders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoursLoadFiltersToMonth(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"Date", "Project Code", "Hours", "Last Name", "Project"},
		{"2025-11-05", "ABC-1", 8, "Smith", "Project Alpha"},
		{"2025-11-06", "ABC-1", 2.5, "Smith", "Project Alpha"},
		{"2025-10-15", "ABC-1", 4, "Smith", "Project Alpha"},
		{"2025-11-30", "THS-OPS", 6, "Jones", "Internal Ops"},
	})
	l := &HoursLoader{Month: "November2025"}
	rows, err := l.Load(data)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	total := rows[0].Hours.Add(rows[1].Hours).Add(rows[2].Hours)
	assert.Equal(t, "16.50", total.StringFixed(2))
	assert.Equal(t, "smith", rows[0].StaffKey)
	assert.Equal(t, "Project Alpha", rows[0].ProjectName)

	joined := strings.Join(l.Logs, "\n")
	assert.Contains(t, joined, "dropped 1 hours entries")
}

func TestHoursEmptyContractCodeIsFatal(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"Date", "Project Code", "Hours", "Last Name"},
		{"2025-11-05", "ABC-1", 8, "Smith"},
		{"2025-11-06", "", 5, "Smith"},
	})
	l := &HoursLoader{Month: "November2025"}
	_, err := l.Load(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "contract code")
}

func TestHoursBadMonth(t *testing.T) {
	l := &HoursLoader{Month: "November"}
	data := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"Date", "Project Code", "Hours", "Last Name"},
	})
	_, err := l.Load(data)
	assert.Error(t, err)
}

func TestHoursMissingRequiredColumn(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"Date", "Hours", "Last Name"},
		{"2025-11-05", 8, "Smith"},
	})
	l := &HoursLoader{Month: "November2025"}
	_, err := l.Load(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project code")
}
