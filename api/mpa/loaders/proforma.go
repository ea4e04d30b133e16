package loaders

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"MarginSight/api/constants"
	"MarginSight/api/mpa/model"
)

// proFormaSheetPrefix identifies the revenue sheet inside the workbook; the
// sheet name carries the fiscal year ("PRO FORMA 2025") so only the prefix is
// matched.
const proFormaSheetPrefix = "PRO FORMA"

var reconcileTolerance = decimal.RequireFromString(constants.ReconcileTolerance)

// ProFormaLoader parses the revenue workbook for one reporting month.
//
// The sheet has no fixed header position: the header row is located by its
// month sequence, the period total by its "Base Revenue"/"Forecasted Revenue"
// label, and section headers are rows with a name but no contract code.
// Duplicate contract codes are aggregated with allocation-tag reconciliation.
type ProFormaLoader struct {
	Month      string
	Categories map[string]string

	// Total is the stated period total from the workbook, set by Load.
	Total decimal.Decimal
	Logs  []string
}

func (l *ProFormaLoader) Load(data []byte) ([]model.RevenueCenter, error) {
	wb, err := openWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.Rows(l.findSheet(wb))
	if err != nil {
		return nil, err
	}

	headerIdx, err := findProFormaHeaderRow(rows)
	if err != nil {
		return nil, err
	}
	monthCol, err := findMonthColumn(rows[headerIdx], l.Month)
	if err != nil {
		return nil, err
	}
	totalRowIdx, err := findTotalRevenueRow(rows)
	if err != nil {
		return nil, err
	}
	totalRevenue, ok := parseAmount(cellAt(rows[totalRowIdx], monthCol))
	if !ok {
		return nil, model.Inputf("total revenue cell does not parse: %q", cellAt(rows[totalRowIdx], monthCol))
	}
	l.Total = totalRevenue

	type projectRow struct {
		code    string
		name    string
		section string
		tag     string
		revenue decimal.Decimal
	}

	var projects []projectRow
	currentSection := ""
	for idx := headerIdx + 1; idx < len(rows); idx++ {
		row := rows[idx]
		name := normalizeCell(cellAt(row, 1))
		rawCode := cellAt(row, 2)
		if name == "" && normalizeCell(rawCode) == "" {
			continue
		}
		if name != "" && normalizeCell(rawCode) == "" {
			currentSection = name
			continue
		}

		code, err := NormalizeContractCode(rawCode)
		if err != nil {
			return nil, model.Inputf("row %d: %v", idx+1, err)
		}
		tag := normalizeCell(cellAt(row, 0))
		if tag != constants.TagData && tag != constants.TagWellness {
			tag = ""
		}
		revenue, ok := parseAmount(cellAt(row, monthCol))
		if !ok {
			return nil, model.Inputf("revenue for %q does not parse: %q", code, cellAt(row, monthCol))
		}
		projects = append(projects, projectRow{
			code:    code,
			name:    name,
			section: currentSection,
			tag:     tag,
			revenue: revenue,
		})
	}
	if len(projects) == 0 {
		return nil, model.Inputf("no projects found in Pro Forma after parsing")
	}

	// Aggregate duplicate codes. Conflicting Data/Wellness tags across
	// duplicates are fatal; otherwise Data wins over Wellness over untagged,
	// and name/section come from the first occurrence.
	byCode := map[string]*model.RevenueCenter{}
	order := []string{}
	for _, p := range projects {
		rc, seen := byCode[p.code]
		if !seen {
			byCode[p.code] = &model.RevenueCenter{
				ContractCode:    p.code,
				ProjectName:     p.name,
				ProFormaSection: p.section,
				AllocationTag:   p.tag,
				Revenue:         p.revenue,
			}
			order = append(order, p.code)
			continue
		}
		if p.tag != "" && rc.AllocationTag != "" && p.tag != rc.AllocationTag {
			return nil, model.Inputf(
				"allocation tag conflict for contract code '%s': found both '%s' and '%s' tags, please fix Pro Forma",
				p.code, constants.TagData, constants.TagWellness)
		}
		if rc.AllocationTag != constants.TagData && p.tag == constants.TagData {
			rc.AllocationTag = constants.TagData
		} else if rc.AllocationTag == "" && p.tag == constants.TagWellness {
			rc.AllocationTag = constants.TagWellness
		}
		rc.Revenue = rc.Revenue.Add(p.revenue)
	}

	result := make([]model.RevenueCenter, 0, len(order))
	dataCount, wellnessCount := 0, 0
	calculated := decimal.Zero
	for _, code := range order {
		rc := byCode[code]
		rc.AnalysisCategory = l.categoryFor(rc.ProFormaSection)
		calculated = calculated.Add(rc.Revenue)
		switch rc.AllocationTag {
		case constants.TagData:
			dataCount++
		case constants.TagWellness:
			wellnessCount++
		}
		result = append(result, *rc)
	}

	if diff := calculated.Sub(totalRevenue).Abs(); diff.Cmp(reconcileTolerance) > 0 {
		return nil, model.Inputf(
			"revenue sum mismatch: calculated $%s vs total $%s (diff: $%s)",
			calculated.StringFixed(2), totalRevenue.StringFixed(2), diff.StringFixed(2))
	}

	if dup := len(projects) - len(result); dup > 0 {
		l.Logs = append(l.Logs, fmt.Sprintf("Aggregated %d duplicate contract codes", dup))
	}
	l.Logs = append(l.Logs, fmt.Sprintf("Pro Forma: %d projects, revenue $%s", len(result), totalRevenue.StringFixed(2)))
	l.Logs = append(l.Logs, fmt.Sprintf("Allocation tags: %d Data, %d Wellness, %d untagged",
		dataCount, wellnessCount, len(result)-dataCount-wellnessCount))

	return result, nil
}

func (l *ProFormaLoader) findSheet(wb *workbook) string {
	if wb.xlsx != nil {
		for _, name := range wb.xlsx.GetSheetList() {
			if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(name)), proFormaSheetPrefix) {
				return name
			}
		}
	}
	return ""
}

func (l *ProFormaLoader) categoryFor(section string) string {
	if cat, ok := l.Categories[section]; ok && cat != "" {
		return cat
	}
	return "Unknown"
}

// findProFormaHeaderRow scans the first rows for the month-sequence header.
func findProFormaHeaderRow(rows [][]string) (int, error) {
	maxScan := 10
	if len(rows) < maxScan {
		maxScan = len(rows)
	}
	for idx := 0; idx < maxScan; idx++ {
		text := strings.Join(rows[idx], " ")
		if strings.Contains(text, "Jan") && strings.Contains(text, "Feb") && strings.Contains(text, "Mar") {
			return idx, nil
		}
	}
	return -1, model.Inputf("cannot find header row with month sequence (Jan, Feb, Mar)")
}

// findMonthColumn resolves the column for the requested month: exact name
// first, then the three-letter abbreviation, then a case-insensitive match.
func findMonthColumn(header []string, month string) (int, error) {
	name, _ := splitMonthName(month)
	if name == "" {
		name = month
	}
	for idx, col := range header {
		if normalizeCell(col) == name {
			return idx, nil
		}
	}
	if len(name) >= 3 {
		abbrev := name[:3]
		for idx, col := range header {
			if normalizeCell(col) == abbrev {
				return idx, nil
			}
		}
	}
	for idx, col := range header {
		if strings.EqualFold(normalizeCell(col), name) {
			return idx, nil
		}
	}
	return -1, model.Inputf("cannot find month column for '%s' in header", name)
}

// findTotalRevenueRow locates the stated period total by its label in column B.
func findTotalRevenueRow(rows [][]string) (int, error) {
	maxScan := 20
	if len(rows) < maxScan {
		maxScan = len(rows)
	}
	for idx := 0; idx < maxScan; idx++ {
		label := strings.ToLower(normalizeCell(cellAt(rows[idx], 1)))
		if strings.Contains(label, "base revenue") || strings.Contains(label, "forecasted revenue") {
			return idx, nil
		}
	}
	return -1, model.Inputf("cannot find total revenue row (Base Revenue or Forecasted Revenue)")
}
