package loaders

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"MarginSight/api/constants"
	"MarginSight/api/mpa/model"
)

const pnlSheetName = "IncomeStatement"

var pnlTotalAliases = []string{"Total", "TOTAL", "Amount"}

// Account-name fragments that identify income lines. The P&L loader only
// wants expense accounts, so income and subtotal lines are dropped.
var incomeKeywords = []string{
	"sales",
	"fixed fee",
	"recurring revenue",
	"other income",
	"interest income",
	"dividend income",
}

var summaryLines = []string{
	"gross profit",
	"net income",
	"net ordinary income",
	"operating income",
	"total income",
	"total expenses",
	"total expense",
	"total payroll",
	"total general",
	"total administrative",
}

// PnLLoader parses the income statement export and buckets each expense
// account into an overhead pool via the configured match rules. Accounts with
// no matching rule fall through to SGA.
type PnLLoader struct {
	Rules []model.PnLRule

	Logs []string
}

func (l *PnLLoader) Load(data []byte) ([]model.PnLLine, error) {
	wb, err := openWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.Rows(l.findSheet(wb))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, model.Inputf("P&L sheet is empty")
	}

	headerIdx, amountCol := findPnLAmountColumn(rows)
	if amountCol < 0 {
		return nil, model.Inputf("cannot find amount column in P&L sheet")
	}

	matchers, err := compileRules(l.Rules)
	if err != nil {
		return nil, err
	}

	var out []model.PnLLine
	bucketTotals := map[string]decimal.Decimal{}
	for idx := headerIdx + 1; idx < len(rows); idx++ {
		row := rows[idx]
		name := normalizeCell(cellAt(row, 0))
		if name == "" || excludedAccount(name) {
			continue
		}
		amount, ok := parseAmount(cellAt(row, amountCol))
		if !ok || amount.IsZero() {
			continue
		}
		bucket, matchedBy := matchers.bucketFor(name)
		out = append(out, model.PnLLine{
			AccountName: name,
			Amount:      amount,
			Bucket:      bucket,
			MatchedBy:   matchedBy,
		})
		bucketTotals[bucket] = bucketTotals[bucket].Add(amount)
	}
	if len(out) == 0 {
		return nil, model.Inputf("no expense accounts found in P&L sheet")
	}

	l.Logs = append(l.Logs, fmt.Sprintf("P&L: %d expense accounts", len(out)))
	for _, bucket := range []string{constants.BucketSGA, constants.BucketData, constants.BucketWorkplace, constants.BucketNIL} {
		if total, ok := bucketTotals[bucket]; ok {
			l.Logs = append(l.Logs, fmt.Sprintf("  %s: $%s", bucket, total.StringFixed(2)))
		}
	}
	return out, nil
}

func (l *PnLLoader) findSheet(wb *workbook) string {
	if wb.xlsx != nil {
		for _, name := range wb.xlsx.GetSheetList() {
			if strings.EqualFold(strings.TrimSpace(name), pnlSheetName) {
				return name
			}
		}
	}
	return ""
}

// findPnLAmountColumn returns the header row index and the amount column: the
// named Total column when present, otherwise the rightmost column that holds
// numeric data.
func findPnLAmountColumn(rows [][]string) (int, int) {
	maxScan := 10
	if len(rows) < maxScan {
		maxScan = len(rows)
	}
	for idx := 0; idx < maxScan; idx++ {
		if col := findColumn(rows[idx], pnlTotalAliases); col > 0 {
			return idx, col
		}
	}
	// Fallback: rightmost column with at least one parseable amount.
	best := -1
	for _, row := range rows {
		for col := len(row) - 1; col > 0; col-- {
			if col <= best {
				break
			}
			if v, ok := parseAmount(row[col]); ok && !v.IsZero() {
				best = col
				break
			}
		}
	}
	return 0, best
}

func excludedAccount(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(name, "Total -") {
		return true
	}
	if lower == "other" {
		return true
	}
	for _, kw := range incomeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, s := range summaryLines {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

type compiledRule struct {
	pattern string
	lower   string
	re      *regexp.Regexp
	bucket  string
}

type ruleSet struct {
	exact    []compiledRule
	contains []compiledRule
	regex    []compiledRule
}

func compileRules(rules []model.PnLRule) (*ruleSet, error) {
	rs := &ruleSet{}
	for _, r := range rules {
		c := compiledRule{
			pattern: r.Pattern,
			lower:   strings.ToLower(r.Pattern),
			bucket:  r.Bucket,
		}
		switch r.MatchType {
		case "exact":
			rs.exact = append(rs.exact, c)
		case "contains":
			rs.contains = append(rs.contains, c)
		case "regex":
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("bad P&L rule regex %q: %w", r.Pattern, err)
			}
			c.re = re
			rs.regex = append(rs.regex, c)
		default:
			return nil, fmt.Errorf("unknown P&L rule match type %q", r.MatchType)
		}
	}
	return rs, nil
}

// bucketFor resolves an account name to a bucket and reports which rule tier
// matched: exact, contains, regex, or default. Exact rules are case-sensitive;
// contains and regex are not.
func (rs *ruleSet) bucketFor(account string) (string, string) {
	for _, r := range rs.exact {
		if account == r.pattern {
			return r.bucket, "exact"
		}
	}
	lower := strings.ToLower(account)
	for _, r := range rs.contains {
		if strings.Contains(lower, r.lower) {
			return r.bucket, "contains"
		}
	}
	for _, r := range rs.regex {
		if r.re.MatchString(account) {
			return r.bucket, "regex"
		}
	}
	return constants.BucketSGA, "default"
}
