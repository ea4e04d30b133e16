package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"MarginSight/api/constants"
	"MarginSight/api/mpa/model"
	"MarginSight/api/mpa/validate"
)

// ErrBatchNotFound is returned when the requested batch id has no record.
var ErrBatchNotFound = errors.New("batch not found")

// Store persists batch results to Postgres. Detail rows are inserted in
// chunks so a large month does not produce one oversized round trip.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetBatch(ctx context.Context, batchID string) (*model.Batch, error) {
	var b model.Batch
	err := s.pool.QueryRow(ctx, `
		SELECT id, month_name, status,
		       COALESCE(proforma_file_path, ''), COALESCE(compensation_file_path, ''),
		       COALESCE(hours_file_path, ''), COALESCE(expenses_file_path, ''),
		       COALESCE(pnl_file_path, ''),
		       error_message, processed_at
		FROM mpa_batches WHERE id = $1`, batchID).Scan(
		&b.ID, &b.MonthName, &b.Status,
		&b.ProFormaFilePath, &b.CompensationFilePath,
		&b.HoursFilePath, &b.ExpensesFilePath, &b.PnLFilePath,
		&b.ErrorMessage, &b.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", batchID, mapPgError(err))
	}
	return &b, nil
}

func (s *Store) UpdateBatchStatus(ctx context.Context, batchID, status string, errorMessage *string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE mpa_batches SET status = $2, error_message = $3 WHERE id = $1`,
		batchID, status, errorMessage)
	if err != nil {
		return fmt.Errorf("update batch %s status: %w", batchID, mapPgError(err))
	}
	return nil
}

// BatchResults is everything SaveResults persists for one batch.
type BatchResults struct {
	RevenueCenters    []model.RevenueCenter
	CostCenters       []model.CostCenter
	NonRevenueClients []model.NonRevenueClient
	HoursDetail       []model.HoursDetail
	Expenses          []model.ExpenseRow
	PnLLines          []model.PnLLine
	Pools             model.Pools
	TaggedRevenue     model.TaggedRevenue
	Summary           model.BatchSummary
	ValidationPassed  bool
	ValidationSummary string
	ValidationItems   []validate.Item
}

// SaveResults replaces any prior results for the batch and marks it
// completed, all in one transaction.
func (s *Store) SaveResults(ctx context.Context, batchID string, res *BatchResults) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save results: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{
		"mpa_revenue_centers", "mpa_cost_centers", "mpa_non_revenue_clients",
		"mpa_hours_detail", "mpa_expenses_detail", "mpa_pnl_lines", "mpa_pools",
	} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE batch_id = $1`, batchID); err != nil {
			return fmt.Errorf("clear %s: %w", table, mapPgError(err))
		}
	}

	if err := insertChunked(ctx, tx, len(res.RevenueCenters), func(b *pgx.Batch, i int) {
		rc := res.RevenueCenters[i]
		b.Queue(`
			INSERT INTO mpa_revenue_centers
				(batch_id, contract_code, project_name, proforma_section, analysis_category,
				 allocation_tag, revenue, hours, labor_cost, expense_cost,
				 sga_allocation, data_allocation, workplace_allocation, margin_dollars, margin_percent)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			batchID, rc.ContractCode, rc.ProjectName, rc.ProFormaSection, rc.AnalysisCategory,
			rc.AllocationTag, rc.Revenue, rc.Hours, rc.LaborCost, rc.ExpenseCost,
			rc.SGAAllocation, rc.DataAllocation, rc.WorkplaceAllocation, rc.MarginDollars, rc.MarginPercent)
	}); err != nil {
		return fmt.Errorf("save revenue centers: %w", err)
	}

	if err := insertChunked(ctx, tx, len(res.CostCenters), func(b *pgx.Batch, i int) {
		cc := res.CostCenters[i]
		b.Queue(`
			INSERT INTO mpa_cost_centers
				(batch_id, contract_code, description, pool, hours, labor_cost, expense_cost, total_cost)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			batchID, cc.ContractCode, cc.Description, cc.Pool, cc.Hours, cc.LaborCost, cc.ExpenseCost, cc.TotalCost)
	}); err != nil {
		return fmt.Errorf("save cost centers: %w", err)
	}

	if err := insertChunked(ctx, tx, len(res.NonRevenueClients), func(b *pgx.Batch, i int) {
		nrc := res.NonRevenueClients[i]
		b.Queue(`
			INSERT INTO mpa_non_revenue_clients
				(batch_id, contract_code, project_name, hours, labor_cost, expense_cost, total_cost)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			batchID, nrc.ContractCode, nrc.ProjectName, nrc.Hours, nrc.LaborCost, nrc.ExpenseCost, nrc.TotalCost)
	}); err != nil {
		return fmt.Errorf("save non-revenue clients: %w", err)
	}

	if err := insertChunked(ctx, tx, len(res.HoursDetail), func(b *pgx.Batch, i int) {
		hd := res.HoursDetail[i]
		b.Queue(`
			INSERT INTO mpa_hours_detail
				(batch_id, contract_code, staff_key, hours, hourly_cost, labor_cost)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			batchID, hd.ContractCode, hd.StaffKey, hd.Hours, hd.HourlyCost, hd.LaborCost)
	}); err != nil {
		return fmt.Errorf("save hours detail: %w", err)
	}

	if err := insertChunked(ctx, tx, len(res.Expenses), func(b *pgx.Batch, i int) {
		e := res.Expenses[i]
		var date *time.Time
		if !e.Date.IsZero() {
			date = &e.Date
		}
		b.Queue(`
			INSERT INTO mpa_expenses_detail (batch_id, contract_code, expense_date, amount, notes)
			VALUES ($1,$2,$3,$4,$5)`,
			batchID, e.ContractCode, date, e.Amount, e.Notes)
	}); err != nil {
		return fmt.Errorf("save expenses detail: %w", err)
	}

	if err := insertChunked(ctx, tx, len(res.PnLLines), func(b *pgx.Batch, i int) {
		line := res.PnLLines[i]
		b.Queue(`
			INSERT INTO mpa_pnl_lines (batch_id, account_name, amount, bucket, matched_by)
			VALUES ($1,$2,$3,$4,$5)`,
			batchID, line.AccountName, line.Amount, line.Bucket, line.MatchedBy)
	}); err != nil {
		return fmt.Errorf("save P&L lines: %w", err)
	}

	p := res.Pools
	tr := res.TaggedRevenue
	if _, err := tx.Exec(ctx, `
		INSERT INTO mpa_pools
			(batch_id, sga_pool, data_pool, workplace_pool,
			 sga_from_pnl, data_from_pnl, workplace_from_pnl,
			 sga_from_cc, data_from_cc, nil_excluded,
			 total_revenue, data_tagged_revenue, wellness_tagged_revenue)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		batchID, p.SGAPool, p.DataPool, p.WorkplacePool,
		p.SGAFromPnL, p.DataFromPnL, p.WorkplaceFromPnL,
		p.SGAFromCC, p.DataFromCC, p.NILExcluded,
		tr.TotalRevenue, tr.DataTaggedRevenue, tr.WellnessTaggedRevenue); err != nil {
		return fmt.Errorf("save pools: %w", mapPgError(err))
	}

	items, err := json.Marshal(res.ValidationItems)
	if err != nil {
		return fmt.Errorf("encode validation items: %w", err)
	}

	sum := res.Summary
	if _, err := tx.Exec(ctx, `
		UPDATE mpa_batches SET
			status = $2, error_message = NULL, processed_at = now(),
			total_revenue = $3, total_labor_cost = $4, total_expense_cost = $5,
			total_margin_dollars = $6, overall_margin_percent = $7,
			sga_pool = $8, data_pool = $9, workplace_pool = $10,
			revenue_center_count = $11, cost_center_count = $12, non_revenue_client_count = $13,
			validation_passed = $14, validation_summary = $15, validation_items = $16
		WHERE id = $1`,
		batchID, constants.BatchStatusCompleted,
		sum.TotalRevenue, sum.TotalLaborCost, sum.TotalExpenseCost,
		sum.TotalMarginDollars, sum.OverallMarginPercent,
		sum.SGAPool, sum.DataPool, sum.WorkplacePool,
		sum.RevenueCenterCount, sum.CostCenterCount, sum.NonRevenueClientCount,
		res.ValidationPassed, res.ValidationSummary, items); err != nil {
		return fmt.Errorf("update batch summary: %w", mapPgError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save results: %w", err)
	}
	return nil
}

// GetBatchResults reads back the persisted results for a completed batch.
func (s *Store) GetBatchResults(ctx context.Context, batchID string) (*BatchResults, error) {
	res := &BatchResults{}

	rows, err := s.pool.Query(ctx, `
		SELECT contract_code, project_name, proforma_section, analysis_category,
		       allocation_tag, revenue, hours, labor_cost, expense_cost,
		       sga_allocation, data_allocation, workplace_allocation, margin_dollars, margin_percent
		FROM mpa_revenue_centers WHERE batch_id = $1 ORDER BY contract_code`, batchID)
	if err != nil {
		return nil, fmt.Errorf("read revenue centers: %w", mapPgError(err))
	}
	defer rows.Close()
	for rows.Next() {
		var rc model.RevenueCenter
		if err := rows.Scan(&rc.ContractCode, &rc.ProjectName, &rc.ProFormaSection, &rc.AnalysisCategory,
			&rc.AllocationTag, &rc.Revenue, &rc.Hours, &rc.LaborCost, &rc.ExpenseCost,
			&rc.SGAAllocation, &rc.DataAllocation, &rc.WorkplaceAllocation,
			&rc.MarginDollars, &rc.MarginPercent); err != nil {
			return nil, fmt.Errorf("scan revenue center: %w", err)
		}
		res.RevenueCenters = append(res.RevenueCenters, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read revenue centers: %w", err)
	}

	ccRows, err := s.pool.Query(ctx, `
		SELECT contract_code, description, pool, hours, labor_cost, expense_cost, total_cost
		FROM mpa_cost_centers WHERE batch_id = $1 ORDER BY contract_code`, batchID)
	if err != nil {
		return nil, fmt.Errorf("read cost centers: %w", mapPgError(err))
	}
	defer ccRows.Close()
	for ccRows.Next() {
		var cc model.CostCenter
		if err := ccRows.Scan(&cc.ContractCode, &cc.Description, &cc.Pool,
			&cc.Hours, &cc.LaborCost, &cc.ExpenseCost, &cc.TotalCost); err != nil {
			return nil, fmt.Errorf("scan cost center: %w", err)
		}
		res.CostCenters = append(res.CostCenters, cc)
	}
	if err := ccRows.Err(); err != nil {
		return nil, fmt.Errorf("read cost centers: %w", err)
	}

	nrcRows, err := s.pool.Query(ctx, `
		SELECT contract_code, project_name, hours, labor_cost, expense_cost, total_cost
		FROM mpa_non_revenue_clients WHERE batch_id = $1 ORDER BY contract_code`, batchID)
	if err != nil {
		return nil, fmt.Errorf("read non-revenue clients: %w", mapPgError(err))
	}
	defer nrcRows.Close()
	for nrcRows.Next() {
		var nrc model.NonRevenueClient
		if err := nrcRows.Scan(&nrc.ContractCode, &nrc.ProjectName,
			&nrc.Hours, &nrc.LaborCost, &nrc.ExpenseCost, &nrc.TotalCost); err != nil {
			return nil, fmt.Errorf("scan non-revenue client: %w", err)
		}
		res.NonRevenueClients = append(res.NonRevenueClients, nrc)
	}
	if err := nrcRows.Err(); err != nil {
		return nil, fmt.Errorf("read non-revenue clients: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT sga_pool, data_pool, workplace_pool,
		       sga_from_pnl, data_from_pnl, workplace_from_pnl,
		       sga_from_cc, data_from_cc, nil_excluded,
		       total_revenue, data_tagged_revenue, wellness_tagged_revenue
		FROM mpa_pools WHERE batch_id = $1`, batchID).Scan(
		&res.Pools.SGAPool, &res.Pools.DataPool, &res.Pools.WorkplacePool,
		&res.Pools.SGAFromPnL, &res.Pools.DataFromPnL, &res.Pools.WorkplaceFromPnL,
		&res.Pools.SGAFromCC, &res.Pools.DataFromCC, &res.Pools.NILExcluded,
		&res.TaggedRevenue.TotalRevenue, &res.TaggedRevenue.DataTaggedRevenue,
		&res.TaggedRevenue.WellnessTaggedRevenue)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("read pools: %w", mapPgError(err))
	}

	return res, nil
}

// insertChunked queues n inserts in chunks and sends each chunk as one batch.
func insertChunked(ctx context.Context, tx pgx.Tx, n int, queue func(*pgx.Batch, int)) error {
	for start := 0; start < n; start += constants.DetailInsertChunkSize {
		end := start + constants.DetailInsertChunkSize
		if end > n {
			end = n
		}
		batch := &pgx.Batch{}
		for i := start; i < end; i++ {
			queue(batch, i)
		}
		br := tx.SendBatch(ctx, batch)
		var batchErr error
		for i := start; i < end; i++ {
			if _, err := br.Exec(); err != nil && batchErr == nil {
				batchErr = mapPgError(err)
			}
		}
		if err := br.Close(); err != nil && batchErr == nil {
			batchErr = err
		}
		if batchErr != nil {
			return batchErr
		}
	}
	return nil
}

// mapPgError rewrites the common constraint violations into readable errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("duplicate row (%s): %w", pgErr.ConstraintName, err)
	case "23503":
		return fmt.Errorf("missing referenced row (%s): %w", pgErr.ConstraintName, err)
	case "23502":
		return fmt.Errorf("required column %s is null: %w", pgErr.ColumnName, err)
	default:
		return err
	}
}
