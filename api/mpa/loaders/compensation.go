package loaders

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"MarginSight/api/constants"
	"MarginSight/api/mpa/model"
)

var expectedHoursPerMonth = decimal.RequireFromString(constants.ExpectedHoursPerMonth)

var (
	lastNameAliases   = []string{"Last Name", "LastName"}
	hourlyCostAliases = []string{"Base Cost Per Hour", "Base Cost/Hour", "Hourly Cost"}
	monthlyAliases    = []string{"Total", "Total Compensation", "Monthly Total"}

	// Components summed when no monthly total column exists. Every component
	// must be present; a partial sum would understate the hourly cost.
	compensationComponents = [][]string{
		{"Base Compensation", "Base", "Base Comp"},
		{"Company Taxes Paid", "Taxes", "Company Taxes"},
		{"ICHRA Contribution", "ICHRA"},
		{"401k Match", "401k", "401K Match"},
		{"Executive Assistant", "Assistant", "Exec Assistant"},
		{"Well Being Card", "Wellbeing", "Well-being"},
		{"Travel & Expenses", "Travel", "Travel and Expenses"},
	}
)

// CompensationLoader parses the staff compensation workbook and resolves an
// hourly cost per staff member.
//
// Strategy A reads a per-hour column directly. Strategy B reads (or sums) a
// monthly total and divides by the standard working month. A file can only
// use one strategy; the hourly column wins when both are present.
type CompensationLoader struct {
	Logs []string
}

func (l *CompensationLoader) Load(data []byte) (map[string]model.CompensationRow, error) {
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
		return nil, model.Inputf("compensation sheet is empty")
	}
	header := rows[0]

	nameCol, err := requireColumn(header, lastNameAliases, "staff last name")
	if err != nil {
		return nil, err
	}

	hourlyCol := findColumn(header, hourlyCostAliases)
	monthlyCol := findColumn(header, monthlyAliases)
	var componentCols []int
	if hourlyCol < 0 && monthlyCol < 0 {
		var missing []string
		for _, aliases := range compensationComponents {
			idx := findColumn(header, aliases)
			if idx < 0 {
				missing = append(missing, aliases[0])
				continue
			}
			componentCols = append(componentCols, idx)
		}
		if len(componentCols) == 0 {
			return nil, model.Inputf("compensation sheet has no hourly cost, monthly total, or component columns")
		}
		if len(missing) > 0 {
			return nil, model.Inputf("compensation sheet is missing component columns: %s",
				strings.Join(missing, ", "))
		}
	}

	strategy := "A"
	if hourlyCol < 0 {
		strategy = "B"
	}

	out := map[string]model.CompensationRow{}
	for idx := 1; idx < len(rows); idx++ {
		row := rows[idx]
		if allEmptyRow(row) {
			continue
		}
		name := normalizeCell(cellAt(row, nameCol))
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := out[key]; dup {
			return nil, model.Inputf("duplicate staff member '%s' in compensation file", name)
		}

		var hourly decimal.Decimal
		if hourlyCol >= 0 {
			v, ok := parseAmount(cellAt(row, hourlyCol))
			if !ok {
				return nil, model.Inputf("row %d: hourly cost for '%s' does not parse: %q",
					idx+1, name, cellAt(row, hourlyCol))
			}
			hourly = v
		} else {
			var monthly decimal.Decimal
			if monthlyCol >= 0 {
				v, ok := parseAmount(cellAt(row, monthlyCol))
				if !ok {
					return nil, model.Inputf("row %d: monthly total for '%s' does not parse: %q",
						idx+1, name, cellAt(row, monthlyCol))
				}
				monthly = v
			} else {
				for _, col := range componentCols {
					if v, ok := parseAmount(cellAt(row, col)); ok {
						monthly = monthly.Add(v)
					}
				}
			}
			hourly = monthly.Div(expectedHoursPerMonth)
		}

		out[key] = model.CompensationRow{
			StaffKey:   key,
			HourlyCost: hourly,
			Strategy:   strategy,
		}
	}
	if len(out) == 0 {
		return nil, model.Inputf("no staff rows found in compensation file")
	}

	l.Logs = append(l.Logs, fmt.Sprintf("Compensation: %d staff members (strategy %s)", len(out), strategy))
	return out, nil
}
