package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueCenter is a contract code with positive Pro Forma revenue. Direct
// costs, overhead allocations and margins are filled in by later pipeline
// stages; every monetary field defaults to decimal zero, never null.
type RevenueCenter struct {
	ContractCode        string          `json:"contract_code"`
	ProjectName         string          `json:"project_name"`
	ProFormaSection     string          `json:"proforma_section"`
	AnalysisCategory    string          `json:"analysis_category"`
	AllocationTag       string          `json:"allocation_tag"`
	Revenue             decimal.Decimal `json:"revenue"`
	Hours               decimal.Decimal `json:"hours"`
	LaborCost           decimal.Decimal `json:"labor_cost"`
	ExpenseCost         decimal.Decimal `json:"expense_cost"`
	SGAAllocation       decimal.Decimal `json:"sga_allocation"`
	DataAllocation      decimal.Decimal `json:"data_allocation"`
	WorkplaceAllocation decimal.Decimal `json:"workplace_allocation"`
	MarginDollars       decimal.Decimal `json:"margin_dollars"`
	MarginPercent       decimal.Decimal `json:"margin_percent"`
}

// CostCenter is an internal overhead code, either configured or auto-classified
// by the reserved internal prefix.
type CostCenter struct {
	ContractCode string          `json:"contract_code"`
	Description  string          `json:"description"`
	Pool         string          `json:"pool"`
	Hours        decimal.Decimal `json:"hours"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	ExpenseCost  decimal.Decimal `json:"expense_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// NonRevenueClient is a code with recorded activity but no revenue and no
// cost-center status.
type NonRevenueClient struct {
	ContractCode string          `json:"contract_code"`
	ProjectName  string          `json:"project_name"`
	Hours        decimal.Decimal `json:"hours"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	ExpenseCost  decimal.Decimal `json:"expense_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// CompensationRow carries a staff member's resolved hourly cost and which
// strategy produced it ("A" direct read, "B" computed from components).
type CompensationRow struct {
	StaffKey   string          `json:"staff_key"`
	HourlyCost decimal.Decimal `json:"hourly_cost"`
	Strategy   string          `json:"strategy_used"`
}

// HoursRow is one time-tracking entry scoped to the reporting month.
type HoursRow struct {
	Date         time.Time       `json:"date"`
	ContractCode string          `json:"contract_code"`
	StaffKey     string          `json:"staff_key"`
	Hours        decimal.Decimal `json:"hours"`
	ProjectName  string          `json:"project_name"`
}

// ExpenseRow is one non-reimbursable expense entry.
type ExpenseRow struct {
	Date         time.Time       `json:"date"`
	ContractCode string          `json:"contract_code"`
	Amount       decimal.Decimal `json:"amount"`
	Notes        string          `json:"notes"`
}

// PnLRule assigns a P&L account to an overhead bucket. Rules are ordered:
// all exact rules are tried before contains rules, which are tried before
// regex rules, and the first hit wins.
type PnLRule struct {
	MatchType string `json:"match_type"`
	Pattern   string `json:"pattern"`
	Bucket    string `json:"bucket"`
}

// PnLLine is one P&L account after bucketing.
type PnLLine struct {
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
	Bucket      string          `json:"bucket"`
	MatchedBy   string          `json:"matched_by"`
}

// HoursDetail aggregates hours by (contract_code, staff_key) for drill-down.
type HoursDetail struct {
	ContractCode string          `json:"contract_code"`
	StaffKey     string          `json:"staff_key"`
	Hours        decimal.Decimal `json:"hours"`
	HourlyCost   decimal.Decimal `json:"hourly_cost"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
}

// LaborSummary aggregates hours and labor cost by contract code.
type LaborSummary struct {
	ContractCode string          `json:"contract_code"`
	Hours        decimal.Decimal `json:"hours"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
}

// ExpenseSummary aggregates expense cost by contract code.
type ExpenseSummary struct {
	ContractCode string          `json:"contract_code"`
	ExpenseCost  decimal.Decimal `json:"expense_cost"`
}

// Pools holds the aggregated overhead pools for a batch plus the component
// amounts retained for the audit trail.
type Pools struct {
	SGAPool          decimal.Decimal `json:"sga_pool"`
	DataPool         decimal.Decimal `json:"data_pool"`
	WorkplacePool    decimal.Decimal `json:"workplace_pool"`
	SGAFromPnL       decimal.Decimal `json:"sga_from_pnl"`
	DataFromPnL      decimal.Decimal `json:"data_from_pnl"`
	WorkplaceFromPnL decimal.Decimal `json:"workplace_from_pnl"`
	NILExcluded      decimal.Decimal `json:"nil_excluded"`
	SGAFromCC        decimal.Decimal `json:"sga_from_cc"`
	DataFromCC       decimal.Decimal `json:"data_from_cc"`
}

// TaggedRevenue summarizes batch revenue by allocation tag.
type TaggedRevenue struct {
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	DataTaggedRevenue     decimal.Decimal `json:"data_tagged_revenue"`
	WellnessTaggedRevenue decimal.Decimal `json:"wellness_tagged_revenue"`
}

// BatchSummary holds the top-line metrics persisted with the batch.
type BatchSummary struct {
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	TotalLaborCost        decimal.Decimal `json:"total_labor_cost"`
	TotalExpenseCost      decimal.Decimal `json:"total_expense_cost"`
	TotalMarginDollars    decimal.Decimal `json:"total_margin_dollars"`
	OverallMarginPercent  decimal.Decimal `json:"overall_margin_percent"`
	SGAPool               decimal.Decimal `json:"sga_pool"`
	DataPool              decimal.Decimal `json:"data_pool"`
	WorkplacePool         decimal.Decimal `json:"workplace_pool"`
	RevenueCenterCount    int             `json:"revenue_center_count"`
	CostCenterCount       int             `json:"cost_center_count"`
	NonRevenueClientCount int             `json:"non_revenue_client_count"`
}

// Batch is the stored metadata for one analysis run.
type Batch struct {
	ID                   string     `json:"id"`
	MonthName            string     `json:"month_name"`
	Status               string     `json:"status"`
	ProFormaFilePath     string     `json:"proforma_file_path"`
	CompensationFilePath string     `json:"compensation_file_path"`
	HoursFilePath        string     `json:"hours_file_path"`
	ExpensesFilePath     string     `json:"expenses_file_path"`
	PnLFilePath          string     `json:"pnl_file_path"`
	ErrorMessage         *string    `json:"error_message,omitempty"`
	ProcessedAt          *time.Time `json:"processed_at,omitempty"`
}
