package compute

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarginSight/api/mpa/model"
)

func comp(key string, hourly int64) model.CompensationRow {
	return model.CompensationRow{StaffKey: key, HourlyCost: decimal.NewFromInt(hourly), Strategy: "A"}
}

func hrs(code, staff string, hours float64) model.HoursRow {
	return model.HoursRow{ContractCode: code, StaffKey: staff, Hours: decimal.NewFromFloat(hours)}
}

func TestCalculateLaborCosts(t *testing.T) {
	c := &Computer{}
	detail, summary := c.CalculateLaborCosts(
		[]model.HoursRow{
			hrs("ABC-1", "smith", 6),
			hrs("ABC-1", "smith", 4),
			hrs("ABC-1", "jones", 2),
			hrs("DEF-2", "smith", 1),
		},
		map[string]model.CompensationRow{
			"smith": comp("smith", 50),
			"jones": comp("jones", 80),
		})

	require.Len(t, detail, 3)
	// Sorted by (code, staff): ABC-1/jones, ABC-1/smith, DEF-2/smith.
	assert.Equal(t, "160.00", detail[0].LaborCost.StringFixed(2))
	assert.Equal(t, "10.00", detail[1].Hours.StringFixed(2))
	assert.Equal(t, "500.00", detail[1].LaborCost.StringFixed(2))

	require.Len(t, summary, 2)
	assert.Equal(t, "ABC-1", summary[0].ContractCode)
	assert.Equal(t, "12.00", summary[0].Hours.StringFixed(2))
	assert.Equal(t, "660.00", summary[0].LaborCost.StringFixed(2))
	assert.Equal(t, "50.00", summary[1].LaborCost.StringFixed(2))
	assert.Empty(t, c.Logs)
}

func TestCalculateLaborCostsMissingStaffWarning(t *testing.T) {
	c := &Computer{}
	detail, summary := c.CalculateLaborCosts(
		[]model.HoursRow{
			hrs("ABC-1", "smith", 10),
			hrs("ABC-1", "ghost", 3),
			hrs("DEF-2", "ghost", 2),
			hrs("DEF-2", "phantom", 1),
		},
		map[string]model.CompensationRow{"smith": comp("smith", 50)})

	require.Len(t, detail, 1)
	require.Len(t, summary, 1)
	assert.Equal(t, "500.00", summary[0].LaborCost.StringFixed(2))

	joined := strings.Join(c.Logs, "\n")
	assert.Contains(t, joined, "2 staff missing compensation records")
	assert.Contains(t, joined, "6.00 hours excluded")
}

func TestMergeDirectCostsZeroFills(t *testing.T) {
	c := &Computer{}
	rcs := c.MergeDirectCosts(
		[]model.RevenueCenter{
			{ContractCode: "ABC-1", Revenue: decimal.NewFromInt(1000)},
			{ContractCode: "DEF-2", Revenue: decimal.NewFromInt(500)},
		},
		[]model.LaborSummary{{ContractCode: "ABC-1", Hours: decimal.NewFromInt(10), LaborCost: decimal.NewFromInt(500)}},
		[]model.ExpenseSummary{{ContractCode: "ABC-1", ExpenseCost: decimal.NewFromInt(120)}})

	assert.Equal(t, "500.00", rcs[0].LaborCost.StringFixed(2))
	assert.Equal(t, "120.00", rcs[0].ExpenseCost.StringFixed(2))
	assert.Equal(t, "0.00", rcs[1].LaborCost.StringFixed(2))
	assert.Equal(t, "0.00", rcs[1].ExpenseCost.StringFixed(2))
	assert.Equal(t, "0.00", rcs[1].Hours.StringFixed(2))
}

func TestCostCenterAndNonRevenueTotals(t *testing.T) {
	c := &Computer{}
	labor := []model.LaborSummary{{ContractCode: "THS-OPS", Hours: decimal.NewFromInt(5), LaborCost: decimal.NewFromInt(250)}}
	expenses := []model.ExpenseSummary{{ContractCode: "THS-OPS", ExpenseCost: decimal.NewFromInt(50)}}

	ccs := c.CalculateCostCenterCosts(
		[]model.CostCenter{{ContractCode: "THS-OPS", Pool: "SGA"}}, labor, expenses)
	require.Len(t, ccs, 1)
	assert.Equal(t, "300.00", ccs[0].TotalCost.StringFixed(2))

	nrcs := c.CalculateNonRevenueClientCosts(
		[]model.NonRevenueClient{{ContractCode: "THS-OPS"}}, labor, expenses)
	require.Len(t, nrcs, 1)
	assert.Equal(t, "300.00", nrcs[0].TotalCost.StringFixed(2))
}
