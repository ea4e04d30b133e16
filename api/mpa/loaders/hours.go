package loaders

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"MarginSight/api/mpa/model"
)

var (
	hoursDateAliases    = []string{"Date", "Work Date", "Entry Date"}
	hoursCodeAliases    = []string{"Project Code", "Contract Code", "Code"}
	hoursAmountAliases  = []string{"Hours", "Hours Worked", "Qty"}
	hoursStaffAliases   = []string{"Last Name", "LastName", "Staff"}
	hoursProjectAliases = []string{"Project", "Project Name"}
)

// HoursLoader parses the time-tracking export and keeps only entries dated
// within the reporting month. Out-of-month entries are dropped with a warning
// rather than treated as fatal.
type HoursLoader struct {
	Month string

	Logs []string
}

func (l *HoursLoader) Load(data []byte) ([]model.HoursRow, error) {
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
		return nil, model.Inputf("hours sheet is empty")
	}
	header := rows[0]

	dateCol, err := requireColumn(header, hoursDateAliases, "entry date")
	if err != nil {
		return nil, err
	}
	codeCol, err := requireColumn(header, hoursCodeAliases, "project code")
	if err != nil {
		return nil, err
	}
	hoursCol, err := requireColumn(header, hoursAmountAliases, "hours")
	if err != nil {
		return nil, err
	}
	staffCol, err := requireColumn(header, hoursStaffAliases, "staff last name")
	if err != nil {
		return nil, err
	}
	projectCol := findColumn(header, hoursProjectAliases)

	first, last, err := monthRange(l.Month)
	if err != nil {
		return nil, model.Inputf("bad month %q: %v", l.Month, err)
	}

	var out []model.HoursRow
	outOfMonth := 0
	total := decimal.Zero
	for idx := 1; idx < len(rows); idx++ {
		row := rows[idx]
		if allEmptyRow(row) {
			continue
		}
		code, err := NormalizeContractCode(cellAt(row, codeCol))
		if err != nil {
			return nil, model.Inputf("hours row %d: %v", idx+1, err)
		}
		entryDate, err := parseDate(cellAt(row, dateCol))
		if err != nil {
			return nil, model.Inputf("row %d: cannot parse date %q", idx+1, cellAt(row, dateCol))
		}
		if entryDate.Before(first) || entryDate.After(last.Add(24*time.Hour-time.Nanosecond)) {
			outOfMonth++
			continue
		}
		hours, ok := parseAmount(cellAt(row, hoursCol))
		if !ok {
			return nil, model.Inputf("row %d: cannot parse hours %q", idx+1, cellAt(row, hoursCol))
		}
		staff := strings.ToLower(normalizeCell(cellAt(row, staffCol)))
		if staff == "" {
			continue
		}
		project := ""
		if projectCol >= 0 {
			project = normalizeCell(cellAt(row, projectCol))
		}
		total = total.Add(hours)
		out = append(out, model.HoursRow{
			ContractCode: code,
			ProjectName:  project,
			StaffKey:     staff,
			Date:         entryDate,
			Hours:        hours,
		})
	}

	if outOfMonth > 0 {
		l.Logs = append(l.Logs, fmt.Sprintf("WARNING: dropped %d hours entries outside %s", outOfMonth, l.Month))
	}
	l.Logs = append(l.Logs, fmt.Sprintf("Hours: %d entries, %s total hours", len(out), total.StringFixed(2)))
	return out, nil
}
