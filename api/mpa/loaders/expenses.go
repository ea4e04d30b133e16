package loaders

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"MarginSight/api/mpa/model"
)

var (
	expenseDateAliases   = []string{"Date", "Expense Date"}
	expenseCodeAliases   = []string{"Project Code", "Contract Code", "Code"}
	expenseAmountAliases = []string{"Amount", "Cost", "Total"}
	expenseBillAliases   = []string{"Billable", "Billable?", "Reimbursable"}
	expenseNotesAliases  = []string{"Notes", "Description", "Memo"}
)

// ExpensesLoader parses the expense export. Billable (client-reimbursed)
// expenses are excluded since they are a pass-through, not a cost. An
// unrecognized billable value keeps the row and warns instead of guessing.
type ExpensesLoader struct {
	Logs []string
}

func (l *ExpensesLoader) Load(data []byte) ([]model.ExpenseRow, error) {
	wb, err := openWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.Rows("")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, model.Inputf("expenses sheet is empty")
	}
	header := rows[0]

	codeCol, err := requireColumn(header, expenseCodeAliases, "project code")
	if err != nil {
		return nil, err
	}
	amountCol, err := requireColumn(header, expenseAmountAliases, "amount")
	if err != nil {
		return nil, err
	}
	dateCol := findColumn(header, expenseDateAliases)
	billCol := findColumn(header, expenseBillAliases)
	notesCol := findColumn(header, expenseNotesAliases)

	var out []model.ExpenseRow
	billableExcluded := 0
	unknownBillable := 0
	total := decimal.Zero
	for idx := 1; idx < len(rows); idx++ {
		row := rows[idx]
		if allEmptyRow(row) {
			continue
		}
		code, err := NormalizeContractCode(cellAt(row, codeCol))
		if err != nil {
			return nil, model.Inputf("expenses row %d: %v", idx+1, err)
		}
		if billCol >= 0 {
			switch classifyBillable(cellAt(row, billCol)) {
			case billableYes:
				billableExcluded++
				continue
			case billableUnknown:
				unknownBillable++
			}
		}
		amount, ok := parseAmount(cellAt(row, amountCol))
		if !ok {
			return nil, model.Inputf("row %d: cannot parse amount %q", idx+1, cellAt(row, amountCol))
		}
		e := model.ExpenseRow{ContractCode: code, Amount: amount}
		if dateCol >= 0 {
			if d, err := parseDate(cellAt(row, dateCol)); err == nil {
				e.Date = d
			}
		}
		if notesCol >= 0 {
			e.Notes = normalizeCell(cellAt(row, notesCol))
		}
		total = total.Add(amount)
		out = append(out, e)
	}

	if billableExcluded > 0 {
		l.Logs = append(l.Logs, fmt.Sprintf("Excluded %d billable (reimbursable) expenses", billableExcluded))
	}
	if unknownBillable > 0 {
		l.Logs = append(l.Logs, fmt.Sprintf("WARNING: %d expenses with blank or unrecognized Billable value were kept", unknownBillable))
	}
	l.Logs = append(l.Logs, fmt.Sprintf("Expenses: %d entries, $%s total", len(out), total.StringFixed(2)))
	return out, nil
}

type billableState int

const (
	billableNo billableState = iota
	billableYes
	billableUnknown
)

// classifyBillable maps a billable cell to its tri-state. Blank cells are
// unknown, not "no": the row is kept but flagged.
func classifyBillable(raw string) billableState {
	v := strings.ToLower(normalizeCell(raw))
	switch v {
	case "yes", "y", "true", "1":
		return billableYes
	case "no", "n", "false", "0":
		return billableNo
	default:
		return billableUnknown
	}
}
