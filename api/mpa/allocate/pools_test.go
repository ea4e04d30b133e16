package allocate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarginSight/api/constants"
	"MarginSight/api/mpa/model"
)

func rc(code string, revenue int64, tag string) model.RevenueCenter {
	return model.RevenueCenter{ContractCode: code, Revenue: decimal.NewFromInt(revenue), AllocationTag: tag}
}

func TestCalculatePools(t *testing.T) {
	a := &Allocator{}
	pnl := []model.PnLLine{
		{Bucket: constants.BucketSGA, Amount: decimal.NewFromInt(1000)},
		{Bucket: constants.BucketSGA, Amount: decimal.NewFromInt(500)},
		{Bucket: constants.BucketData, Amount: decimal.NewFromInt(300)},
		{Bucket: constants.BucketWorkplace, Amount: decimal.NewFromInt(200)},
		{Bucket: constants.BucketNIL, Amount: decimal.NewFromInt(999)},
	}
	ccs := []model.CostCenter{
		{ContractCode: "THS-OPS", Pool: "SGA", TotalCost: decimal.NewFromInt(400)},
		{ContractCode: "DATA-1", Pool: "DATA", TotalCost: decimal.NewFromInt(100)},
	}

	p := a.CalculatePools(pnl, ccs, true)
	assert.Equal(t, "1900.00", p.SGAPool.StringFixed(2))
	assert.Equal(t, "400.00", p.DataPool.StringFixed(2))
	assert.Equal(t, "200.00", p.WorkplacePool.StringFixed(2))
	assert.Equal(t, "999.00", p.NILExcluded.StringFixed(2))
	assert.Equal(t, "400.00", p.SGAFromCC.StringFixed(2))
	assert.Equal(t, "100.00", p.DataFromCC.StringFixed(2))
	assert.Equal(t, "1500.00", p.SGAFromPnL.StringFixed(2))

	// P&L-only pools when cost-center folding is off.
	p = a.CalculatePools(pnl, ccs, false)
	assert.Equal(t, "1500.00", p.SGAPool.StringFixed(2))
	assert.Equal(t, "300.00", p.DataPool.StringFixed(2))
	assert.Equal(t, "0.00", p.SGAFromCC.StringFixed(2))
}

func TestAllocateSGAProRata(t *testing.T) {
	a := &Allocator{}
	rcs, err := a.AllocateSGA(
		[]model.RevenueCenter{rc("A", 750, ""), rc("B", 250, "")},
		decimal.NewFromInt(100))
	require.NoError(t, err)

	assert.Equal(t, "75.00", rcs[0].SGAAllocation.StringFixed(2))
	assert.Equal(t, "25.00", rcs[1].SGAAllocation.StringFixed(2))
}

func TestAllocateDataOnlyTaggedCenters(t *testing.T) {
	a := &Allocator{}
	rcs, err := a.AllocateData(
		[]model.RevenueCenter{
			rc("A", 600, constants.TagData),
			rc("B", 200, constants.TagData),
			rc("C", 1000, constants.TagWellness),
			rc("D", 1000, ""),
		},
		decimal.NewFromInt(400))
	require.NoError(t, err)

	assert.Equal(t, "300.00", rcs[0].DataAllocation.StringFixed(2))
	assert.Equal(t, "100.00", rcs[1].DataAllocation.StringFixed(2))
	assert.Equal(t, "0.00", rcs[2].DataAllocation.StringFixed(2))
	assert.Equal(t, "0.00", rcs[3].DataAllocation.StringFixed(2))
}

func TestAllocateWithNoEligibleRevenueBase(t *testing.T) {
	a := &Allocator{}
	rcs, err := a.AllocateData(
		[]model.RevenueCenter{rc("A", 1000, "")},
		decimal.NewFromInt(400))
	require.NoError(t, err)
	assert.Equal(t, "0.00", rcs[0].DataAllocation.StringFixed(2))
	require.NotEmpty(t, a.Logs)
	assert.Contains(t, a.Logs[0], "no eligible revenue base")
}

func TestAllocationReconcilesWithUnevenShares(t *testing.T) {
	a := &Allocator{}
	rcs, err := a.AllocateSGA(
		[]model.RevenueCenter{rc("A", 1, ""), rc("B", 1, ""), rc("C", 1, "")},
		decimal.NewFromInt(100))
	require.NoError(t, err)

	total := decimal.Zero
	for _, r := range rcs {
		total = total.Add(r.SGAAllocation)
	}
	assert.True(t, total.Sub(decimal.NewFromInt(100)).Abs().LessThanOrEqual(decimal.RequireFromString("0.01")),
		"allocated %s", total.String())
}

func TestCalculateMargins(t *testing.T) {
	a := &Allocator{}
	in := []model.RevenueCenter{
		{
			ContractCode:  "A",
			Revenue:       decimal.NewFromInt(1000),
			LaborCost:     decimal.NewFromInt(400),
			ExpenseCost:   decimal.NewFromInt(100),
			SGAAllocation: decimal.NewFromInt(200),
		},
		{ContractCode: "B", LaborCost: decimal.NewFromInt(50)},
	}
	out := a.CalculateMargins(in)

	assert.Equal(t, "300.00", out[0].MarginDollars.StringFixed(2))
	assert.Equal(t, "30.00", out[0].MarginPercent.StringFixed(2))

	// Zero revenue yields zero percent, not a division error.
	assert.Equal(t, "-50.00", out[1].MarginDollars.StringFixed(2))
	assert.Equal(t, "0.00", out[1].MarginPercent.StringFixed(2))
}

func TestTaggedRevenue(t *testing.T) {
	a := &Allocator{}
	tr := a.TaggedRevenue([]model.RevenueCenter{
		rc("A", 600, constants.TagData),
		rc("B", 300, constants.TagWellness),
		rc("C", 100, ""),
	})
	assert.Equal(t, "1000.00", tr.TotalRevenue.StringFixed(2))
	assert.Equal(t, "600.00", tr.DataTaggedRevenue.StringFixed(2))
	assert.Equal(t, "300.00", tr.WellnessTaggedRevenue.StringFixed(2))
}
