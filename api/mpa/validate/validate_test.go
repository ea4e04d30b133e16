package validate

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarginSight/api/mpa/model"
)

func healthyInputs() Inputs {
	return Inputs{
		RevenueCenters: []model.RevenueCenter{
			{
				ContractCode:     "ABC-1",
				AnalysisCategory: "Behavioral",
				Revenue:          decimal.NewFromInt(800),
				Hours:            decimal.NewFromInt(40),
				SGAAllocation:    decimal.NewFromInt(160),
				MarginPercent:    decimal.NewFromInt(30),
			},
			{
				ContractCode:     "DEF-2",
				AnalysisCategory: "Wellness",
				Revenue:          decimal.NewFromInt(200),
				Hours:            decimal.NewFromInt(10),
				SGAAllocation:    decimal.NewFromInt(40),
				MarginPercent:    decimal.NewFromInt(10),
			},
		},
		Pools:         model.Pools{SGAPool: decimal.NewFromInt(200)},
		ProFormaTotal: decimal.NewFromInt(1000),
		Compensation:  map[string]model.CompensationRow{"smith": {StaffKey: "smith"}},
		Hours:         []model.HoursRow{{ContractCode: "ABC-1", StaffKey: "smith", Hours: decimal.NewFromInt(50)}},
		Expenses:      []model.ExpenseRow{{ContractCode: "ABC-1", Amount: decimal.NewFromInt(10)}},
	}
}

func allWarnings(r *Result) string { return strings.Join(r.Warnings, "\n") }
func allFailures(r *Result) string { return strings.Join(r.Failures, "\n") }

func TestValidationPassesOnHealthyBatch(t *testing.T) {
	r := Run(healthyInputs())
	assert.True(t, r.Passed(), "failures: %v", r.Failures)
	assert.Empty(t, r.Warnings)
	assert.Contains(t, r.Summary(), "FAIL: 0")
}

func TestValidationFailsOnEmptyBatch(t *testing.T) {
	r := Run(Inputs{})
	assert.False(t, r.Passed())
	require.NotEmpty(t, r.Failures)
	assert.Contains(t, r.Failures[0], "no revenue centers")
}

func TestValidationDetectsDuplicateCodes(t *testing.T) {
	in := healthyInputs()
	in.CostCenters = []model.CostCenter{{ContractCode: "ABC-1"}}
	r := Run(in)

	assert.False(t, r.Passed())
	assert.Contains(t, allFailures(r), "ABC-1")
}

func TestValidationWarnsOnStaffWithoutCompensation(t *testing.T) {
	in := healthyInputs()
	in.Hours = append(in.Hours, model.HoursRow{ContractCode: "ABC-1", StaffKey: "ghost"})
	r := Run(in)

	assert.True(t, r.Passed())
	assert.Contains(t, allWarnings(r), "no compensation record")
}

func TestValidationSGARatioThresholds(t *testing.T) {
	in := healthyInputs()
	in.Pools = model.Pools{SGAPool: decimal.NewFromInt(1500)}
	r := Run(in)
	assert.Contains(t, allWarnings(r)+allFailures(r), "SG&A pool is 1.50x revenue")

	in.Pools = model.Pools{SGAPool: decimal.NewFromInt(3000)}
	r = Run(in)
	assert.False(t, r.Passed())
	assert.Contains(t, allFailures(r), "check P&L bucketing")
}

func TestValidationRevenueMismatch(t *testing.T) {
	in := healthyInputs()
	in.ProFormaTotal = decimal.NewFromInt(5000)
	r := Run(in)
	assert.False(t, r.Passed())
	assert.Contains(t, allFailures(r), "differs from Pro Forma total")
}

func TestValidationWarnsOnUnallocatedPool(t *testing.T) {
	in := healthyInputs()
	in.Pools.DataPool = decimal.NewFromInt(300)
	r := Run(in)

	assert.True(t, r.Passed())
	assert.Contains(t, allWarnings(r), "Data pool")
}

func TestValidationReasonablenessWarnings(t *testing.T) {
	in := healthyInputs()
	in.RevenueCenters[1].Hours = decimal.Zero
	in.PnLLines = []model.PnLLine{
		{AccountName: "Misc", Bucket: "SGA", MatchedBy: "default"},
		{AccountName: "Software", Bucket: "DATA", MatchedBy: "exact"},
	}
	r := Run(in)

	assert.True(t, r.Passed())
	warnings := allWarnings(r)
	assert.Contains(t, warnings, "revenue but no recorded hours")
	assert.Contains(t, warnings, "default SG&A bucket")
}

func TestValidationItemsAndUnknownCategoryWarning(t *testing.T) {
	in := healthyInputs()
	in.RevenueCenters[1].AnalysisCategory = "Unknown"
	r := Run(in)

	assert.True(t, r.Passed())
	items := r.ToItems()
	require.NotEmpty(t, items)
	hasWarn := false
	for _, it := range items {
		if it.Type == "warn" {
			hasWarn = true
		}
	}
	assert.True(t, hasWarn)
}
