package loaders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpensesBillableFiltering(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"Date", "Project Code", "Amount", "Billable", "Notes"},
		{"2025-11-03", "ABC-1", 100, "No", "supplies"},
		{"2025-11-04", "ABC-1", 250, "Yes", "client travel"},
		{"2025-11-05", "DEF-2", 75, "y", ""},
		{"2025-11-06", "DEF-2", 40, "", ""},
		{"2025-11-07", "DEF-2", 10, "maybe", ""},
	})
	l := &ExpensesLoader{}
	rows, err := l.Load(data)
	require.NoError(t, err)

	// Yes/y excluded, blank and unknown kept with a warning.
	require.Len(t, rows, 3)
	total := rows[0].Amount.Add(rows[1].Amount).Add(rows[2].Amount)
	assert.Equal(t, "150.00", total.StringFixed(2))

	joined := strings.Join(l.Logs, "\n")
	assert.Contains(t, joined, "Excluded 2 billable")
	assert.Contains(t, joined, "WARNING: 2 expenses with blank or unrecognized Billable value")
}

func TestExpensesBlankBillableKeptWithWarning(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"Project Code", "Amount", "Billable"},
		{"ABC-1", 40, ""},
	})
	l := &ExpensesLoader{}
	rows, err := l.Load(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "40.00", rows[0].Amount.StringFixed(2))

	joined := strings.Join(l.Logs, "\n")
	assert.Contains(t, joined, "WARNING: 1 expenses with blank or unrecognized Billable value")
}

func TestExpensesEmptyContractCodeIsFatal(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"Project Code", "Amount"},
		{"ABC-1", 100},
		{"", 50},
	})
	l := &ExpensesLoader{}
	_, err := l.Load(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "contract code")
}

func TestExpensesWithoutBillableColumn(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"Project Code", "Amount"},
		{"ABC-1", 100},
	})
	l := &ExpensesLoader{}
	rows, err := l.Load(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ABC-1", rows[0].ContractCode)
	assert.True(t, rows[0].Date.IsZero())
}

func TestClassifyBillable(t *testing.T) {
	for _, v := range []string{"yes", "Y", "TRUE", "1"} {
		assert.Equal(t, billableYes, classifyBillable(v), v)
	}
	for _, v := range []string{"no", "N", "false", "0"} {
		assert.Equal(t, billableNo, classifyBillable(v), v)
	}
	for _, v := range []string{"", "maybe", "x", "2"} {
		assert.Equal(t, billableUnknown, classifyBillable(v), v)
	}
}
