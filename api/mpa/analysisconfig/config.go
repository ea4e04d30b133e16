package analysisconfig

import (
	"database/sql"
	"fmt"
	"strings"

	"MarginSight/api/mpa/model"
)

// CostCenterDef is a configured internal overhead code.
type CostCenterDef struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Pool        string `json:"pool"`
}

// Config is the analysis reference data, loaded once per run and read-only
// afterwards. Cost-center codes are keyed by their normalized form.
type Config struct {
	CostCenters     map[string]CostCenterDef
	PnLRules        []model.PnLRule
	CategoryMapping map[string]string
}

// Load reads cost centers, P&L bucketing rules, and section-to-category
// mappings from Postgres.
func Load(db *sql.DB) (*Config, error) {
	cfg := &Config{
		CostCenters:     map[string]CostCenterDef{},
		CategoryMapping: map[string]string{},
	}

	rows, err := db.Query(`SELECT code, description, pool FROM mpa_cost_center_config`)
	if err != nil {
		return nil, fmt.Errorf("load cost centers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cc CostCenterDef
		if err := rows.Scan(&cc.Code, &cc.Description, &cc.Pool); err != nil {
			return nil, fmt.Errorf("scan cost center: %w", err)
		}
		cc.Code = strings.TrimSpace(cc.Code)
		cfg.CostCenters[cc.Code] = cc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load cost centers: %w", err)
	}

	ruleRows, err := db.Query(
		`SELECT match_type, pattern, bucket FROM mpa_pnl_rules ORDER BY priority, id`)
	if err != nil {
		return nil, fmt.Errorf("load P&L rules: %w", err)
	}
	defer ruleRows.Close()
	for ruleRows.Next() {
		var r model.PnLRule
		if err := ruleRows.Scan(&r.MatchType, &r.Pattern, &r.Bucket); err != nil {
			return nil, fmt.Errorf("scan P&L rule: %w", err)
		}
		cfg.PnLRules = append(cfg.PnLRules, r)
	}
	if err := ruleRows.Err(); err != nil {
		return nil, fmt.Errorf("load P&L rules: %w", err)
	}

	mapRows, err := db.Query(`SELECT proforma_section, analysis_category FROM mpa_category_mappings`)
	if err != nil {
		return nil, fmt.Errorf("load category mappings: %w", err)
	}
	defer mapRows.Close()
	for mapRows.Next() {
		var section, category string
		if err := mapRows.Scan(&section, &category); err != nil {
			return nil, fmt.Errorf("scan category mapping: %w", err)
		}
		cfg.CategoryMapping[strings.TrimSpace(section)] = strings.TrimSpace(category)
	}
	if err := mapRows.Err(); err != nil {
		return nil, fmt.Errorf("load category mappings: %w", err)
	}

	return cfg, nil
}
