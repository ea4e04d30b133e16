package classify

import (
	"fmt"
	"sort"
	"strings"

	"MarginSight/api/constants"
	"MarginSight/api/mpa/analysisconfig"
	"MarginSight/api/mpa/model"
)

// Result partitions every contract code with activity, plus every configured
// cost center, into exactly one of the three classes.
type Result struct {
	RevenueCenters    []model.RevenueCenter
	CostCenters       []model.CostCenter
	NonRevenueClients []model.NonRevenueClient
}

// Classifier assigns each active contract code to a class: revenue center
// (present in the Pro Forma), cost center (configured, or carrying the
// reserved internal prefix), or non-revenue client (everything else).
type Classifier struct {
	CostCenters map[string]analysisconfig.CostCenterDef

	Logs []string
}

// Classification classes.
const (
	ClassRevenueCenter    = "revenue_center"
	ClassCostCenter       = "cost_center"
	ClassNonRevenueClient = "non_revenue_client"
)

// Classify assigns a single contract code. isRevenueCenter reports whether
// the code appeared in the Pro Forma.
func (c *Classifier) Classify(code string, isRevenueCenter bool) (string, error) {
	_, configured := c.CostCenters[code]
	if isRevenueCenter {
		if configured {
			return "", model.Inputf(
				"contract code '%s' is both a Pro Forma revenue center and a configured cost center", code)
		}
		return ClassRevenueCenter, nil
	}
	if configured || strings.HasPrefix(code, constants.InternalCodePrefix) {
		return ClassCostCenter, nil
	}
	return ClassNonRevenueClient, nil
}

// ClassifyAllActivity walks the union of codes seen in the Pro Forma, hours,
// expenses, and the cost-center configuration, so a configured cost center
// with no activity this month still materializes with zero cost. A code that
// is both a Pro Forma revenue center and a configured cost center is a
// configuration error and aborts the run.
func (c *Classifier) ClassifyAllActivity(
	revenueCenters []model.RevenueCenter,
	hours []model.HoursRow,
	expenses []model.ExpenseRow,
) (*Result, error) {
	rcCodes := map[string]bool{}
	for _, rc := range revenueCenters {
		if _, err := c.Classify(rc.ContractCode, true); err != nil {
			return nil, err
		}
		rcCodes[rc.ContractCode] = true
	}

	// First hours-derived project name per code, used to label synthesized
	// cost centers and non-revenue clients.
	activityNames := map[string]string{}
	activity := map[string]bool{}
	for _, h := range hours {
		activity[h.ContractCode] = true
		if _, ok := activityNames[h.ContractCode]; !ok && h.ProjectName != "" {
			activityNames[h.ContractCode] = h.ProjectName
		}
	}
	for _, e := range expenses {
		activity[e.ContractCode] = true
	}
	for code := range c.CostCenters {
		activity[code] = true
	}

	extra := make([]string, 0, len(activity))
	for code := range activity {
		if !rcCodes[code] {
			extra = append(extra, code)
		}
	}
	sort.Strings(extra)

	res := &Result{RevenueCenters: revenueCenters}
	autoCC := 0
	for _, code := range extra {
		if def, ok := c.CostCenters[code]; ok {
			res.CostCenters = append(res.CostCenters, model.CostCenter{
				ContractCode: code,
				Description:  def.Description,
				Pool:         def.Pool,
			})
			continue
		}
		if strings.HasPrefix(code, constants.InternalCodePrefix) {
			autoCC++
			res.CostCenters = append(res.CostCenters, model.CostCenter{
				ContractCode: code,
				Description:  activityNames[code],
				Pool:         constants.BucketSGA,
			})
			continue
		}
		res.NonRevenueClients = append(res.NonRevenueClients, model.NonRevenueClient{
			ContractCode: code,
			ProjectName:  activityNames[code],
		})
	}

	c.Logs = append(c.Logs, fmt.Sprintf(
		"Classified: %d revenue centers, %d cost centers (%d auto-detected), %d non-revenue clients",
		len(res.RevenueCenters), len(res.CostCenters), autoCC, len(res.NonRevenueClients)))
	return res, nil
}
