package validate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"MarginSight/api/constants"
	"MarginSight/api/mpa/model"
)

var (
	tolerance = decimal.RequireFromString(constants.ReconcileTolerance)

	sgaRatioWarn = decimal.NewFromInt(1)
	sgaRatioFail = decimal.NewFromInt(2)
)

// Result collects validation outcomes by severity. Validation is advisory: a
// failure is surfaced in the batch output but does not block persistence.
type Result struct {
	Passes   []string `json:"passes"`
	Warnings []string `json:"warnings"`
	Failures []string `json:"failures"`
}

func (r *Result) pass(format string, args ...interface{}) {
	r.Passes = append(r.Passes, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

func (r *Result) Passed() bool { return len(r.Failures) == 0 }

func (r *Result) Summary() string {
	return fmt.Sprintf("PASS: %d | WARN: %d | FAIL: %d",
		len(r.Passes), len(r.Warnings), len(r.Failures))
}

// Item is one validation outcome in API form.
type Item struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (r *Result) ToItems() []Item {
	items := make([]Item, 0, len(r.Passes)+len(r.Warnings)+len(r.Failures))
	for _, m := range r.Failures {
		items = append(items, Item{Type: "fail", Message: m})
	}
	for _, m := range r.Warnings {
		items = append(items, Item{Type: "warn", Message: m})
	}
	for _, m := range r.Passes {
		items = append(items, Item{Type: "pass", Message: m})
	}
	return items
}

// Inputs is everything the battery inspects: the classified and costed
// results plus the raw loads they were derived from.
type Inputs struct {
	RevenueCenters    []model.RevenueCenter
	CostCenters       []model.CostCenter
	NonRevenueClients []model.NonRevenueClient
	Pools             model.Pools
	ProFormaTotal     decimal.Decimal
	Compensation      map[string]model.CompensationRow
	Hours             []model.HoursRow
	Expenses          []model.ExpenseRow
	PnLLines          []model.PnLLine
}

// Run executes the battery: completeness, key integrity, pool
// reasonableness, arithmetic identities, and reasonableness warnings.
func Run(in Inputs) *Result {
	r := &Result{}
	checkCompleteness(r, in)
	checkKeyIntegrity(r, in)
	checkPoolReasonableness(r, in)
	checkMath(r, in)
	checkReasonableness(r, in)
	return r
}

func checkCompleteness(r *Result, in Inputs) {
	if len(in.RevenueCenters) == 0 {
		r.fail("no revenue centers in batch")
		return
	}
	r.pass("%d revenue centers, %d cost centers, %d non-revenue clients",
		len(in.RevenueCenters), len(in.CostCenters), len(in.NonRevenueClients))

	if in.Compensation != nil && len(in.Compensation) == 0 {
		r.fail("compensation data is empty")
	}
	if in.Hours != nil && len(in.Hours) == 0 {
		r.warn("no hours entries in the reporting month")
	}
	if in.Expenses != nil && len(in.Expenses) == 0 {
		r.warn("no expense entries in the reporting month")
	}

	unknown := 0
	for _, rc := range in.RevenueCenters {
		if rc.AnalysisCategory == "" || rc.AnalysisCategory == "Unknown" {
			unknown++
		}
	}
	if unknown > 0 {
		r.warn("%d revenue centers have no analysis category mapping", unknown)
	} else {
		r.pass("all revenue centers have an analysis category")
	}
}

func checkKeyIntegrity(r *Result, in Inputs) {
	seen := map[string]string{}
	dupes := 0
	record := func(code, class string) {
		if prev, ok := seen[code]; ok {
			dupes++
			r.fail("contract code '%s' appears as both %s and %s", code, prev, class)
			return
		}
		seen[code] = class
	}
	for _, rc := range in.RevenueCenters {
		record(rc.ContractCode, "revenue center")
	}
	for _, cc := range in.CostCenters {
		record(cc.ContractCode, "cost center")
	}
	for _, nrc := range in.NonRevenueClients {
		record(nrc.ContractCode, "non-revenue client")
	}
	if dupes == 0 {
		r.pass("contract codes partition cleanly across classes")
	}

	if in.Compensation != nil {
		missing := map[string]bool{}
		for _, h := range in.Hours {
			if _, ok := in.Compensation[h.StaffKey]; !ok {
				missing[h.StaffKey] = true
			}
		}
		if len(missing) > 0 {
			r.warn("%d staff in hours have no compensation record", len(missing))
		} else if len(in.Hours) > 0 {
			r.pass("every staff member with hours has a compensation record")
		}
	}
}

func checkPoolReasonableness(r *Result, in Inputs) {
	revenue := decimal.Zero
	for _, rc := range in.RevenueCenters {
		revenue = revenue.Add(rc.Revenue)
	}
	if revenue.Sign() <= 0 {
		r.fail("total revenue is not positive: $%s", revenue.StringFixed(2))
		return
	}
	ratio := in.Pools.SGAPool.Div(revenue)
	switch {
	case ratio.Cmp(sgaRatioFail) > 0:
		r.fail("SG&A pool is %sx revenue, check P&L bucketing", ratio.StringFixed(2))
	case ratio.Cmp(sgaRatioWarn) > 0:
		r.warn("SG&A pool is %sx revenue", ratio.StringFixed(2))
	default:
		r.pass("SG&A pool is %sx revenue", ratio.StringFixed(2))
	}
}

func checkMath(r *Result, in Inputs) {
	revenue := decimal.Zero
	sga := decimal.Zero
	data := decimal.Zero
	workplace := decimal.Zero
	for _, rc := range in.RevenueCenters {
		revenue = revenue.Add(rc.Revenue)
		sga = sga.Add(rc.SGAAllocation)
		data = data.Add(rc.DataAllocation)
		workplace = workplace.Add(rc.WorkplaceAllocation)
	}

	if diff := revenue.Sub(in.ProFormaTotal).Abs(); diff.Cmp(tolerance) > 0 {
		r.fail("revenue sum $%s differs from Pro Forma total $%s by $%s",
			revenue.StringFixed(2), in.ProFormaTotal.StringFixed(2), diff.StringFixed(2))
	} else {
		r.pass("revenue reconciles with Pro Forma total ($%s)", revenue.StringFixed(2))
	}

	checkPool := func(name string, allocated, pool decimal.Decimal) {
		// A pool that could not be allocated (no eligible base) sums to zero
		// and is a warning, not an arithmetic failure.
		if allocated.IsZero() && !pool.IsZero() {
			r.warn("%s pool of $%s was not allocated", name, pool.StringFixed(2))
			return
		}
		if diff := allocated.Sub(pool).Abs(); diff.Cmp(tolerance) > 0 {
			r.fail("%s allocations sum to $%s but pool is $%s", name, allocated.StringFixed(2), pool.StringFixed(2))
		} else {
			r.pass("%s allocations reconcile ($%s)", name, pool.StringFixed(2))
		}
	}
	checkPool("SG&A", sga, in.Pools.SGAPool)
	checkPool("Data", data, in.Pools.DataPool)
	checkPool("Workplace", workplace, in.Pools.WorkplacePool)
}

func checkReasonableness(r *Result, in Inputs) {
	negHundred := decimal.NewFromInt(-100)
	deep := 0
	noHours := 0
	for _, rc := range in.RevenueCenters {
		if rc.Revenue.Sign() > 0 && rc.MarginPercent.Cmp(negHundred) < 0 {
			deep++
		}
		if rc.Revenue.Sign() > 0 && rc.Hours.IsZero() {
			noHours++
		}
	}
	if deep > 0 {
		r.warn("%d revenue centers have margins below -100%%", deep)
	} else {
		r.pass("no revenue center margin below -100%%")
	}
	if noHours > 0 {
		r.warn("%d revenue centers have revenue but no recorded hours", noHours)
	}

	defaulted := 0
	for _, line := range in.PnLLines {
		if line.MatchedBy == "default" {
			defaulted++
		}
	}
	if defaulted > 0 {
		r.warn("%d P&L accounts fell through to the default SG&A bucket", defaulted)
	}
}
