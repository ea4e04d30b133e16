package mpa

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"MarginSight/api/mpa/allocate"
	"MarginSight/api/mpa/analysisconfig"
	"MarginSight/api/mpa/classify"
	"MarginSight/api/mpa/compute"
	"MarginSight/api/mpa/loaders"
	"MarginSight/api/mpa/model"
	"MarginSight/api/mpa/store"
	"MarginSight/api/mpa/validate"
)

// FileFetcher downloads one uploaded workbook by its stored path.
type FileFetcher interface {
	Download(ctx context.Context, path string) ([]byte, error)
}

// Pipeline runs the monthly analysis for one batch: load the five workbooks,
// classify activity, compute direct costs, build and allocate overhead pools,
// and validate the result. Batches run one at a time end to end.
type Pipeline struct {
	Files  FileFetcher
	Config *analysisconfig.Config
}

// Run executes the full analysis. The returned logs are the user-facing
// processing trail included in the API response.
func (p *Pipeline) Run(ctx context.Context, batch *model.Batch) (*store.BatchResults, *validate.Result, []string, error) {
	var logs []string
	step := func(format string, args ...interface{}) {
		logs = append(logs, fmt.Sprintf(format, args...))
	}

	files := map[string][]byte{}
	for name, path := range map[string]string{
		"proforma":     batch.ProFormaFilePath,
		"compensation": batch.CompensationFilePath,
		"hours":        batch.HoursFilePath,
		"expenses":     batch.ExpensesFilePath,
		"pnl":          batch.PnLFilePath,
	} {
		data, err := p.Files.Download(ctx, path)
		if err != nil {
			return nil, nil, logs, fmt.Errorf("fetch %s file: %w", name, err)
		}
		files[name] = data
	}
	step("Downloaded 5 input files for %s", batch.MonthName)

	proForma := &loaders.ProFormaLoader{Month: batch.MonthName, Categories: p.Config.CategoryMapping}
	revenueCenters, err := proForma.Load(files["proforma"])
	if err != nil {
		return nil, nil, logs, err
	}
	logs = append(logs, proForma.Logs...)

	compLoader := &loaders.CompensationLoader{}
	compensation, err := compLoader.Load(files["compensation"])
	if err != nil {
		return nil, nil, logs, err
	}
	logs = append(logs, compLoader.Logs...)

	hoursLoader := &loaders.HoursLoader{Month: batch.MonthName}
	hours, err := hoursLoader.Load(files["hours"])
	if err != nil {
		return nil, nil, logs, err
	}
	logs = append(logs, hoursLoader.Logs...)

	expLoader := &loaders.ExpensesLoader{}
	expenses, err := expLoader.Load(files["expenses"])
	if err != nil {
		return nil, nil, logs, err
	}
	logs = append(logs, expLoader.Logs...)

	pnlLoader := &loaders.PnLLoader{Rules: p.Config.PnLRules}
	pnlLines, err := pnlLoader.Load(files["pnl"])
	if err != nil {
		return nil, nil, logs, err
	}
	logs = append(logs, pnlLoader.Logs...)

	classifier := &classify.Classifier{CostCenters: p.Config.CostCenters}
	classified, err := classifier.ClassifyAllActivity(revenueCenters, hours, expenses)
	if err != nil {
		return nil, nil, logs, err
	}
	logs = append(logs, classifier.Logs...)

	computer := &compute.Computer{}
	hoursDetail, laborSummary := computer.CalculateLaborCosts(hours, compensation)
	expenseSummary := computer.CalculateExpenseCosts(expenses)
	rcs := computer.MergeDirectCosts(classified.RevenueCenters, laborSummary, expenseSummary)
	ccs := computer.CalculateCostCenterCosts(classified.CostCenters, laborSummary, expenseSummary)
	nrcs := computer.CalculateNonRevenueClientCosts(classified.NonRevenueClients, laborSummary, expenseSummary)
	logs = append(logs, computer.Logs...)

	allocator := &allocate.Allocator{}
	pools := allocator.CalculatePools(pnlLines, ccs, true)
	rcs, err = allocator.AllocateSGA(rcs, pools.SGAPool)
	if err != nil {
		return nil, nil, logs, err
	}
	rcs, err = allocator.AllocateData(rcs, pools.DataPool)
	if err != nil {
		return nil, nil, logs, err
	}
	rcs, err = allocator.AllocateWorkplace(rcs, pools.WorkplacePool)
	if err != nil {
		return nil, nil, logs, err
	}
	rcs = allocator.CalculateMargins(rcs)
	tagged := allocator.TaggedRevenue(rcs)
	logs = append(logs, allocator.Logs...)

	validation := validate.Run(validate.Inputs{
		RevenueCenters:    rcs,
		CostCenters:       ccs,
		NonRevenueClients: nrcs,
		Pools:             pools,
		ProFormaTotal:     proForma.Total,
		Compensation:      compensation,
		Hours:             hours,
		Expenses:          expenses,
		PnLLines:          pnlLines,
	})
	step("Validation: %s", validation.Summary())

	res := &store.BatchResults{
		RevenueCenters:    rcs,
		CostCenters:       ccs,
		NonRevenueClients: nrcs,
		HoursDetail:       hoursDetail,
		Expenses:          expenses,
		PnLLines:          pnlLines,
		Pools:             pools,
		TaggedRevenue:     tagged,
		Summary:           buildSummary(rcs, ccs, nrcs, pools),
		ValidationPassed:  validation.Passed(),
		ValidationSummary: validation.Summary(),
		ValidationItems:   validation.ToItems(),
	}
	return res, validation, logs, nil
}

func buildSummary(
	rcs []model.RevenueCenter,
	ccs []model.CostCenter,
	nrcs []model.NonRevenueClient,
	pools model.Pools,
) model.BatchSummary {
	sum := model.BatchSummary{
		SGAPool:               pools.SGAPool,
		DataPool:              pools.DataPool,
		WorkplacePool:         pools.WorkplacePool,
		RevenueCenterCount:    len(rcs),
		CostCenterCount:       len(ccs),
		NonRevenueClientCount: len(nrcs),
	}
	for _, rc := range rcs {
		sum.TotalRevenue = sum.TotalRevenue.Add(rc.Revenue)
		sum.TotalLaborCost = sum.TotalLaborCost.Add(rc.LaborCost)
		sum.TotalExpenseCost = sum.TotalExpenseCost.Add(rc.ExpenseCost)
		sum.TotalMarginDollars = sum.TotalMarginDollars.Add(rc.MarginDollars)
	}
	if !sum.TotalRevenue.IsZero() {
		sum.OverallMarginPercent = sum.TotalMarginDollars.Div(sum.TotalRevenue).Mul(decimal.NewFromInt(100))
	}
	return sum
}
