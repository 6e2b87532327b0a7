package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies the schema. Statements are idempotent and re-run on every
// startup; ALTER TABLE duplicates are tolerated so additive migrations can
// stay in the list.
func Migrate(database *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := database.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id                 TEXT PRIMARY KEY,
		code               TEXT NOT NULL UNIQUE,
		name               TEXT NOT NULL,
		client             TEXT NOT NULL DEFAULT '',
		currency           TEXT NOT NULL DEFAULT 'USD',
		contract_value     TEXT NOT NULL DEFAULT '0',
		start_date         TEXT NOT NULL,
		end_date           TEXT,
		monthly_budget     TEXT,
		active_baseline_id TEXT,
		status             TEXT NOT NULL DEFAULT 'active'
		                   CHECK(status IN ('active','closed','archived')),
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS baselines (
		id            TEXT PRIMARY KEY,
		project_id    TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		status        TEXT NOT NULL DEFAULT 'draft'
		              CHECK(status IN ('draft','submitted','handed_off','accepted','rejected')),
		version       INTEGER NOT NULL DEFAULT 1 CHECK(version > 0),
		handed_off_by TEXT NOT NULL DEFAULT '',
		accepted_by   TEXT NOT NULL DEFAULT '',
		rejected_by   TEXT NOT NULL DEFAULT '',
		reject_reason TEXT NOT NULL DEFAULT '',
		signed_by     TEXT NOT NULL DEFAULT '',
		signed_role   TEXT NOT NULL DEFAULT '',
		signed_at     TEXT,
		assumptions   TEXT NOT NULL DEFAULT '[]',
		created_by    TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_baselines_project ON baselines(project_id)`,

	`CREATE TABLE IF NOT EXISTS baseline_estimates (
		baseline_id TEXT NOT NULL REFERENCES baselines(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL CHECK(position >= 0),
		labor       INTEGER NOT NULL DEFAULT 0,
		category    TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		unit_cost   TEXT NOT NULL DEFAULT '0',
		quantity    TEXT NOT NULL DEFAULT '0',
		burden_rate TEXT NOT NULL DEFAULT '0',
		start_month INTEGER NOT NULL DEFAULT 1,
		end_month   INTEGER NOT NULL DEFAULT 0,
		one_time    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (baseline_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS line_items (
		id             TEXT PRIMARY KEY,
		project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		baseline_id    TEXT NOT NULL REFERENCES baselines(id) ON DELETE CASCADE,
		canonical_code TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		unit_cost      TEXT NOT NULL,
		quantity       TEXT NOT NULL,
		recurring      INTEGER NOT NULL DEFAULT 0,
		start_month    INTEGER NOT NULL,
		end_month      INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_line_items_project ON line_items(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_line_items_baseline ON line_items(baseline_id)`,

	`CREATE TABLE IF NOT EXISTS allocation_rules (
		id             TEXT PRIMARY KEY,
		canonical_code TEXT NOT NULL,
		start_month    INTEGER NOT NULL DEFAULT 0,
		end_month      INTEGER NOT NULL DEFAULT 0,
		cost_class     TEXT NOT NULL DEFAULT '',
		priority       INTEGER NOT NULL DEFAULT 0,
		active         INTEGER NOT NULL DEFAULT 1,
		version        INTEGER NOT NULL DEFAULT 1 CHECK(version > 0),
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_allocation_rules_code ON allocation_rules(canonical_code)`,

	`CREATE TABLE IF NOT EXISTS allocation_targets (
		rule_id    TEXT NOT NULL REFERENCES allocation_rules(id) ON DELETE CASCADE,
		project_id TEXT NOT NULL,
		percent    INTEGER NOT NULL CHECK(percent > 0 AND percent <= 100),
		PRIMARY KEY (rule_id, project_id)
	)`,

	`CREATE TABLE IF NOT EXISTS adjustments (
		id                TEXT PRIMARY KEY,
		project_id        TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		type              TEXT NOT NULL
		                  CHECK(type IN ('increase','decrease','reassignment')),
		amount            TEXT NOT NULL,
		effective_month   INTEGER NOT NULL CHECK(effective_month >= 1),
		policy            TEXT NOT NULL
		                  CHECK(policy IN ('single_month','pro_rata_forward','pro_rata_all')),
		target_project_id TEXT NOT NULL DEFAULT '',
		justification     TEXT NOT NULL,
		created_by        TEXT NOT NULL DEFAULT '',
		created_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_adjustments_project ON adjustments(project_id)`,

	`CREATE TABLE IF NOT EXISTS actuals (
		project_id     TEXT NOT NULL,
		canonical_code TEXT NOT NULL,
		month          INTEGER NOT NULL CHECK(month >= 1),
		source         TEXT NOT NULL CHECK(source IN ('payroll','billing')),
		amount         TEXT NOT NULL,
		updated_at     TEXT NOT NULL,
		PRIMARY KEY (project_id, canonical_code, month, source)
	)`,

	`CREATE TABLE IF NOT EXISTS month_closes (
		project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		month          INTEGER NOT NULL CHECK(month >= 1),
		payroll_cost   TEXT NOT NULL DEFAULT '0',
		billed_revenue TEXT NOT NULL DEFAULT '0',
		coverage       TEXT,
		classification TEXT NOT NULL,
		closed_by      TEXT NOT NULL,
		closed_at      TEXT NOT NULL,
		PRIMARY KEY (project_id, month)
	)`,

	`CREATE TABLE IF NOT EXISTS idempotency_keys (
		key          TEXT PRIMARY KEY,
		operation    TEXT NOT NULL,
		payload_hash TEXT NOT NULL,
		result       TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,
}
