package allocate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"MarginSight/api/constants"
	"MarginSight/api/mpa/model"
)

var (
	reconcileTolerance = decimal.RequireFromString(constants.ReconcileTolerance)
	hundred            = decimal.NewFromInt(100)
)

// Allocator aggregates overhead pools and spreads them across revenue centers
// pro-rata by revenue.
type Allocator struct {
	Logs []string
}

// CalculatePools folds bucketed P&L lines and, when includeCostCenters is
// set, cost-center totals into the three overhead pools. NIL-bucketed amounts
// are excluded from allocation but tracked for the audit trail. Cost-center
// totals land in the pool their configuration names.
func (a *Allocator) CalculatePools(pnl []model.PnLLine, costCenters []model.CostCenter, includeCostCenters bool) model.Pools {
	var p model.Pools
	for _, line := range pnl {
		switch line.Bucket {
		case constants.BucketSGA:
			p.SGAFromPnL = p.SGAFromPnL.Add(line.Amount)
		case constants.BucketData:
			p.DataFromPnL = p.DataFromPnL.Add(line.Amount)
		case constants.BucketWorkplace:
			p.WorkplaceFromPnL = p.WorkplaceFromPnL.Add(line.Amount)
		case constants.BucketNIL:
			p.NILExcluded = p.NILExcluded.Add(line.Amount)
		}
	}
	if includeCostCenters {
		for _, cc := range costCenters {
			switch strings.ToUpper(cc.Pool) {
			case constants.BucketData:
				p.DataFromCC = p.DataFromCC.Add(cc.TotalCost)
			default:
				p.SGAFromCC = p.SGAFromCC.Add(cc.TotalCost)
			}
		}
	}
	p.SGAPool = p.SGAFromPnL.Add(p.SGAFromCC)
	p.DataPool = p.DataFromPnL.Add(p.DataFromCC)
	p.WorkplacePool = p.WorkplaceFromPnL

	a.Logs = append(a.Logs, fmt.Sprintf("Pools: SG&A $%s, Data $%s, Workplace $%s (NIL excluded $%s)",
		p.SGAPool.StringFixed(2), p.DataPool.StringFixed(2),
		p.WorkplacePool.StringFixed(2), p.NILExcluded.StringFixed(2)))
	return p
}

// AllocateSGA spreads the SG&A pool across all revenue centers by revenue
// share.
func (a *Allocator) AllocateSGA(revenueCenters []model.RevenueCenter, pool decimal.Decimal) ([]model.RevenueCenter, error) {
	return a.allocate(revenueCenters, pool, "SG&A",
		func(model.RevenueCenter) bool { return true },
		func(rc *model.RevenueCenter, amount decimal.Decimal) { rc.SGAAllocation = amount })
}

// AllocateData spreads the Data pool across Data-tagged revenue centers only.
func (a *Allocator) AllocateData(revenueCenters []model.RevenueCenter, pool decimal.Decimal) ([]model.RevenueCenter, error) {
	return a.allocate(revenueCenters, pool, "Data",
		func(rc model.RevenueCenter) bool { return rc.AllocationTag == constants.TagData },
		func(rc *model.RevenueCenter, amount decimal.Decimal) { rc.DataAllocation = amount })
}

// AllocateWorkplace spreads the Workplace pool across all revenue centers by
// revenue share.
func (a *Allocator) AllocateWorkplace(revenueCenters []model.RevenueCenter, pool decimal.Decimal) ([]model.RevenueCenter, error) {
	return a.allocate(revenueCenters, pool, "Workplace",
		func(model.RevenueCenter) bool { return true },
		func(rc *model.RevenueCenter, amount decimal.Decimal) { rc.WorkplaceAllocation = amount })
}

// allocate distributes pool pro-rata by revenue over the eligible subset. A
// non-positive eligible revenue base leaves every allocation at zero. The
// allocated total must reconcile with the pool within the tolerance.
func (a *Allocator) allocate(
	revenueCenters []model.RevenueCenter,
	pool decimal.Decimal,
	poolName string,
	eligible func(model.RevenueCenter) bool,
	assign func(*model.RevenueCenter, decimal.Decimal),
) ([]model.RevenueCenter, error) {
	out := make([]model.RevenueCenter, len(revenueCenters))
	copy(out, revenueCenters)

	base := decimal.Zero
	for _, rc := range out {
		if eligible(rc) {
			base = base.Add(rc.Revenue)
		}
	}
	if base.Sign() <= 0 || pool.IsZero() {
		if pool.Sign() > 0 && base.Sign() <= 0 {
			a.Logs = append(a.Logs, fmt.Sprintf(
				"WARNING: %s pool of $%s has no eligible revenue base, nothing allocated",
				poolName, pool.StringFixed(2)))
		}
		return out, nil
	}

	allocated := decimal.Zero
	for i := range out {
		if !eligible(out[i]) {
			continue
		}
		amount := out[i].Revenue.Div(base).Mul(pool)
		assign(&out[i], amount)
		allocated = allocated.Add(amount)
	}
	if diff := allocated.Sub(pool).Abs(); diff.Cmp(reconcileTolerance) > 0 {
		return nil, fmt.Errorf("%s allocation does not reconcile: allocated $%s vs pool $%s",
			poolName, allocated.StringFixed(2), pool.StringFixed(2))
	}
	a.Logs = append(a.Logs, fmt.Sprintf("Allocated %s pool: $%s", poolName, pool.StringFixed(2)))
	return out, nil
}

// CalculateMargins computes margin dollars and percent per revenue center.
// Margin percent is zero when revenue is zero so fully unbilled projects do
// not produce undefined ratios.
func (a *Allocator) CalculateMargins(revenueCenters []model.RevenueCenter) []model.RevenueCenter {
	out := make([]model.RevenueCenter, len(revenueCenters))
	for i, rc := range revenueCenters {
		totalCost := rc.LaborCost.Add(rc.ExpenseCost).
			Add(rc.SGAAllocation).Add(rc.DataAllocation).Add(rc.WorkplaceAllocation)
		rc.MarginDollars = rc.Revenue.Sub(totalCost)
		if rc.Revenue.IsZero() {
			rc.MarginPercent = decimal.Zero
		} else {
			rc.MarginPercent = rc.MarginDollars.Div(rc.Revenue).Mul(hundred)
		}
		out[i] = rc
	}
	return out
}

// TaggedRevenue summarizes revenue by allocation tag.
func (a *Allocator) TaggedRevenue(revenueCenters []model.RevenueCenter) model.TaggedRevenue {
	var t model.TaggedRevenue
	for _, rc := range revenueCenters {
		t.TotalRevenue = t.TotalRevenue.Add(rc.Revenue)
		switch rc.AllocationTag {
		case constants.TagData:
			t.DataTaggedRevenue = t.DataTaggedRevenue.Add(rc.Revenue)
		case constants.TagWellness:
			t.WellnessTaggedRevenue = t.WellnessTaggedRevenue.Add(rc.Revenue)
		}
	}
	return t
}
