package compute

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"MarginSight/api/mpa/model"
)

// Computer derives direct costs from time entries and expenses: labor from
// hours joined against resolved hourly costs, expenses summed per code.
type Computer struct {
	Logs []string
}

// CalculateLaborCosts joins hours against compensation. Entries for staff
// with no compensation record are excluded from costing and reported as a
// single aggregate warning rather than one warning per entry.
func (c *Computer) CalculateLaborCosts(
	hours []model.HoursRow,
	compensation map[string]model.CompensationRow,
) ([]model.HoursDetail, []model.LaborSummary) {
	type detailKey struct {
		code  string
		staff string
	}
	details := map[detailKey]*model.HoursDetail{}
	missingStaff := map[string]bool{}
	missingHours := decimal.Zero

	for _, h := range hours {
		comp, ok := compensation[h.StaffKey]
		if !ok {
			missingStaff[h.StaffKey] = true
			missingHours = missingHours.Add(h.Hours)
			continue
		}
		key := detailKey{code: h.ContractCode, staff: h.StaffKey}
		d, seen := details[key]
		if !seen {
			d = &model.HoursDetail{
				ContractCode: h.ContractCode,
				StaffKey:     h.StaffKey,
				HourlyCost:   comp.HourlyCost,
			}
			details[key] = d
		}
		d.Hours = d.Hours.Add(h.Hours)
	}

	detail := make([]model.HoursDetail, 0, len(details))
	byCode := map[string]*model.LaborSummary{}
	for _, d := range details {
		d.LaborCost = d.Hours.Mul(d.HourlyCost)
		detail = append(detail, *d)
		s, ok := byCode[d.ContractCode]
		if !ok {
			s = &model.LaborSummary{ContractCode: d.ContractCode}
			byCode[d.ContractCode] = s
		}
		s.Hours = s.Hours.Add(d.Hours)
		s.LaborCost = s.LaborCost.Add(d.LaborCost)
	}
	sort.Slice(detail, func(i, j int) bool {
		if detail[i].ContractCode != detail[j].ContractCode {
			return detail[i].ContractCode < detail[j].ContractCode
		}
		return detail[i].StaffKey < detail[j].StaffKey
	})

	summary := make([]model.LaborSummary, 0, len(byCode))
	for _, s := range byCode {
		summary = append(summary, *s)
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].ContractCode < summary[j].ContractCode })

	if len(missingStaff) > 0 {
		c.Logs = append(c.Logs, fmt.Sprintf(
			"WARNING: %d staff missing compensation records (%s hours excluded)",
			len(missingStaff), missingHours.StringFixed(2)))
	}
	return detail, summary
}

// CalculateExpenseCosts sums expenses per contract code.
func (c *Computer) CalculateExpenseCosts(expenses []model.ExpenseRow) []model.ExpenseSummary {
	byCode := map[string]*model.ExpenseSummary{}
	for _, e := range expenses {
		s, ok := byCode[e.ContractCode]
		if !ok {
			s = &model.ExpenseSummary{ContractCode: e.ContractCode}
			byCode[e.ContractCode] = s
		}
		s.ExpenseCost = s.ExpenseCost.Add(e.Amount)
	}
	out := make([]model.ExpenseSummary, 0, len(byCode))
	for _, s := range byCode {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContractCode < out[j].ContractCode })
	return out
}

// MergeDirectCosts attaches labor and expense totals to each revenue center.
// Codes with no recorded activity keep zero costs.
func (c *Computer) MergeDirectCosts(
	revenueCenters []model.RevenueCenter,
	labor []model.LaborSummary,
	expenses []model.ExpenseSummary,
) []model.RevenueCenter {
	laborByCode := indexLabor(labor)
	expByCode := indexExpenses(expenses)
	out := make([]model.RevenueCenter, len(revenueCenters))
	for i, rc := range revenueCenters {
		if l, ok := laborByCode[rc.ContractCode]; ok {
			rc.Hours = l.Hours
			rc.LaborCost = l.LaborCost
		}
		if e, ok := expByCode[rc.ContractCode]; ok {
			rc.ExpenseCost = e.ExpenseCost
		}
		out[i] = rc
	}
	return out
}

// CalculateCostCenterCosts fills in cost-center direct costs and totals.
func (c *Computer) CalculateCostCenterCosts(
	costCenters []model.CostCenter,
	labor []model.LaborSummary,
	expenses []model.ExpenseSummary,
) []model.CostCenter {
	laborByCode := indexLabor(labor)
	expByCode := indexExpenses(expenses)
	out := make([]model.CostCenter, len(costCenters))
	for i, cc := range costCenters {
		if l, ok := laborByCode[cc.ContractCode]; ok {
			cc.Hours = l.Hours
			cc.LaborCost = l.LaborCost
		}
		if e, ok := expByCode[cc.ContractCode]; ok {
			cc.ExpenseCost = e.ExpenseCost
		}
		cc.TotalCost = cc.LaborCost.Add(cc.ExpenseCost)
		out[i] = cc
	}
	return out
}

// CalculateNonRevenueClientCosts fills in non-revenue-client costs and totals.
func (c *Computer) CalculateNonRevenueClientCosts(
	clients []model.NonRevenueClient,
	labor []model.LaborSummary,
	expenses []model.ExpenseSummary,
) []model.NonRevenueClient {
	laborByCode := indexLabor(labor)
	expByCode := indexExpenses(expenses)
	out := make([]model.NonRevenueClient, len(clients))
	for i, nrc := range clients {
		if l, ok := laborByCode[nrc.ContractCode]; ok {
			nrc.Hours = l.Hours
			nrc.LaborCost = l.LaborCost
		}
		if e, ok := expByCode[nrc.ContractCode]; ok {
			nrc.ExpenseCost = e.ExpenseCost
		}
		nrc.TotalCost = nrc.LaborCost.Add(nrc.ExpenseCost)
		out[i] = nrc
	}
	return out
}

func indexLabor(labor []model.LaborSummary) map[string]model.LaborSummary {
	m := make(map[string]model.LaborSummary, len(labor))
	for _, l := range labor {
		m[l.ContractCode] = l
	}
	return m
}

func indexExpenses(expenses []model.ExpenseSummary) map[string]model.ExpenseSummary {
	m := make(map[string]model.ExpenseSummary, len(expenses))
	for _, e := range expenses {
		m[e.ContractCode] = e
	}
	return m
}
