package mpa

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"MarginSight/api/constants"
	"MarginSight/api/mpa/analysisconfig"
	"MarginSight/api/mpa/model"
)

type fakeFetcher struct {
	files map[string][]byte
}

func (f *fakeFetcher) Download(_ context.Context, path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return data, nil
}

func sheetBytes(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func testBatchFiles(t *testing.T) map[string][]byte {
	t.Helper()
	return map[string][]byte{
		"proforma.xlsx": sheetBytes(t, "PRO FORMA 2025", [][]interface{}{
			{"", "", "", "Jan", "Feb", "Mar", "November"},
			{"", "Base Revenue", "", "", "", "", 3000},
			{"", "Behavioral Health", ""},
			{"Data", "Project Alpha", "ABC-1", "", "", "", 2000},
			{"", "Project Beta", "DEF-2", "", "", "", 1000},
		}),
		"comp.xlsx": sheetBytes(t, "Sheet1", [][]interface{}{
			{"Last Name", "Hourly Cost"},
			{"Smith", 50},
		}),
		"hours.xlsx": sheetBytes(t, "Sheet1", [][]interface{}{
			{"Date", "Project Code", "Hours", "Last Name", "Project"},
			{"2025-11-05", "ABC-1", 10, "Smith", "Project Alpha"},
			{"2025-11-06", "THS-OPS", 4, "Smith", "Internal Ops"},
		}),
		"expenses.xlsx": sheetBytes(t, "Sheet1", [][]interface{}{
			{"Date", "Project Code", "Amount", "Billable"},
			{"2025-11-07", "ABC-1", 100, "No"},
			{"2025-11-08", "DEF-2", 250, "Yes"},
		}),
		"pnl.xlsx": sheetBytes(t, "IncomeStatement", [][]interface{}{
			{"Account", "Total"},
			{"Sales", 5000},
			{"Misc Fees", 300},
			{"Software", 600},
		}),
	}
}

func testBatch() *model.Batch {
	return &model.Batch{
		ID:                   "b-1",
		MonthName:            "November2025",
		Status:               constants.BatchStatusProcessing,
		ProFormaFilePath:     "proforma.xlsx",
		CompensationFilePath: "comp.xlsx",
		HoursFilePath:        "hours.xlsx",
		ExpensesFilePath:     "expenses.xlsx",
		PnLFilePath:          "pnl.xlsx",
	}
}

func testConfig() *analysisconfig.Config {
	return &analysisconfig.Config{
		CostCenters: map[string]analysisconfig.CostCenterDef{},
		PnLRules: []model.PnLRule{
			{MatchType: "exact", Pattern: "Software", Bucket: constants.BucketData},
		},
		CategoryMapping: map[string]string{"Behavioral Health": "Behavioral"},
	}
}

func TestPipelineRun(t *testing.T) {
	p := &Pipeline{Files: &fakeFetcher{files: testBatchFiles(t)}, Config: testConfig()}
	res, validation, logs, err := p.Run(context.Background(), testBatch())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, logs)

	assert.True(t, validation.Passed(), "failures: %v", validation.Failures)

	require.Len(t, res.RevenueCenters, 2)
	alpha := res.RevenueCenters[0]
	assert.Equal(t, "ABC-1", alpha.ContractCode)
	assert.Equal(t, "500.00", alpha.LaborCost.StringFixed(2))
	assert.Equal(t, "100.00", alpha.ExpenseCost.StringFixed(2))
	assert.Equal(t, "600.00", alpha.DataAllocation.StringFixed(2))
	assert.Equal(t, "333.33", alpha.SGAAllocation.Round(2).StringFixed(2))
	assert.Equal(t, "466.67", alpha.MarginDollars.Round(2).StringFixed(2))

	beta := res.RevenueCenters[1]
	assert.Equal(t, "0.00", beta.DataAllocation.StringFixed(2))
	assert.Equal(t, "833.33", beta.MarginDollars.Round(2).StringFixed(2))

	// THS-OPS has hours but no revenue and no config entry: auto cost center
	// feeding the SG&A pool.
	require.Len(t, res.CostCenters, 1)
	assert.Equal(t, "THS-OPS", res.CostCenters[0].ContractCode)
	assert.Equal(t, constants.BucketSGA, res.CostCenters[0].Pool)
	assert.Equal(t, "200.00", res.CostCenters[0].TotalCost.StringFixed(2))
	assert.Empty(t, res.NonRevenueClients)

	assert.Equal(t, "500.00", res.Pools.SGAPool.StringFixed(2))
	assert.Equal(t, "600.00", res.Pools.DataPool.StringFixed(2))
	assert.Equal(t, "0.00", res.Pools.WorkplacePool.StringFixed(2))

	assert.Equal(t, "3000.00", res.TaggedRevenue.TotalRevenue.StringFixed(2))
	assert.Equal(t, "2000.00", res.TaggedRevenue.DataTaggedRevenue.StringFixed(2))
	assert.Equal(t, "0.00", res.TaggedRevenue.WellnessTaggedRevenue.StringFixed(2))

	sum := res.Summary
	assert.Equal(t, "3000.00", sum.TotalRevenue.StringFixed(2))
	assert.Equal(t, "500.00", sum.TotalLaborCost.StringFixed(2))
	assert.Equal(t, "100.00", sum.TotalExpenseCost.StringFixed(2))
	assert.Equal(t, "1300.00", sum.TotalMarginDollars.Round(2).StringFixed(2))
	assert.Equal(t, 2, sum.RevenueCenterCount)
	assert.Equal(t, 1, sum.CostCenterCount)
	assert.True(t, res.ValidationPassed)
}

func TestPipelineSurfacesInputErrors(t *testing.T) {
	files := testBatchFiles(t)
	// Break the Pro Forma reconciliation.
	files["proforma.xlsx"] = sheetBytes(t, "PRO FORMA 2025", [][]interface{}{
		{"", "", "", "Jan", "Feb", "Mar", "November"},
		{"", "Base Revenue", "", "", "", "", 9999},
		{"", "Project Alpha", "ABC-1", "", "", "", 2000},
	})
	p := &Pipeline{Files: &fakeFetcher{files: files}, Config: testConfig()}
	_, _, _, err := p.Run(context.Background(), testBatch())
	require.Error(t, err)
	assert.True(t, model.IsInputError(err))
}

func TestPipelineMissingFile(t *testing.T) {
	p := &Pipeline{Files: &fakeFetcher{files: map[string][]byte{}}, Config: testConfig()}
	_, _, _, err := p.Run(context.Background(), testBatch())
	require.Error(t, err)
	assert.False(t, model.IsInputError(err))
}
