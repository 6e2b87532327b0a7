package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
)

// SQLiteRuleRepo persists allocation rules and their targets.
type SQLiteRuleRepo struct {
	db db.DBTX
}

func NewSQLiteRuleRepo(dbtx db.DBTX) *SQLiteRuleRepo {
	return &SQLiteRuleRepo{db: dbtx}
}

// Upsert inserts a new rule when expectedVersion is 0 and the rule does not
// exist yet, or replaces an existing rule's definition under the version
// guard. Targets are rewritten atomically with the rule row; callers run
// this inside a unit of work.
func (r *SQLiteRuleRepo) Upsert(ctx context.Context, rule *domain.AllocationRule, expectedVersion int) error {
	if expectedVersion == 0 {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO allocation_rules (id, canonical_code, start_month, end_month,
				cost_class, priority, active, version, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			rule.ID, rule.CanonicalCode, rule.StartMonth, rule.EndMonth,
			string(rule.CostClass), rule.Priority, boolToInt(rule.Active),
			nowUTC(), nowUTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting allocation rule: %w", err)
		}
		rule.Version = 1
	} else {
		err := casExec(ctx, r.db,
			`UPDATE allocation_rules SET canonical_code = ?, start_month = ?, end_month = ?,
				cost_class = ?, priority = ?, active = ?, version = ?, updated_at = ?
			 WHERE id = ? AND version = ?`,
			rule.CanonicalCode, rule.StartMonth, rule.EndMonth,
			string(rule.CostClass), rule.Priority, boolToInt(rule.Active),
			expectedVersion+1, nowUTC(),
			rule.ID, expectedVersion,
		)
		if err != nil {
			return fmt.Errorf("updating allocation rule %s: %w", rule.ID, err)
		}
		rule.Version = expectedVersion + 1

		if _, err := r.db.ExecContext(ctx,
			`DELETE FROM allocation_targets WHERE rule_id = ?`, rule.ID); err != nil {
			return fmt.Errorf("clearing rule targets: %w", err)
		}
	}

	for _, t := range rule.Targets {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO allocation_targets (rule_id, project_id, percent) VALUES (?, ?, ?)`,
			rule.ID, t.ProjectID, t.Percent); err != nil {
			return fmt.Errorf("inserting rule target %s: %w", t.ProjectID, err)
		}
	}
	return nil
}

func (r *SQLiteRuleRepo) GetByID(ctx context.Context, id string) (*domain.AllocationRule, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, canonical_code, start_month, end_month, cost_class, priority,
			active, version, created_at, updated_at
		 FROM allocation_rules WHERE id = ?`, id)

	rule, err := scanRule(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadTargets(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *SQLiteRuleRepo) List(ctx context.Context, activeOnly bool) ([]*domain.AllocationRule, error) {
	query := `SELECT id, canonical_code, start_month, end_month, cost_class, priority,
		active, version, created_at, updated_at FROM allocation_rules`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY priority DESC, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing allocation rules: %w", err)
	}
	defer rows.Close()

	var rules []*domain.AllocationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating allocation rules: %w", err)
	}

	for _, rule := range rules {
		if err := r.loadTargets(ctx, rule); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

func (r *SQLiteRuleRepo) loadTargets(ctx context.Context, rule *domain.AllocationRule) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT project_id, percent FROM allocation_targets WHERE rule_id = ? ORDER BY project_id`,
		rule.ID)
	if err != nil {
		return fmt.Errorf("loading rule targets: %w", err)
	}
	defer rows.Close()

	rule.Targets = nil
	for rows.Next() {
		var t domain.AllocationTarget
		if err := rows.Scan(&t.ProjectID, &t.Percent); err != nil {
			return fmt.Errorf("scanning rule target: %w", err)
		}
		rule.Targets = append(rule.Targets, t)
	}
	return rows.Err()
}

func scanRule(row rowScanner) (*domain.AllocationRule, error) {
	var rule domain.AllocationRule
	var classStr, createdAtStr, updatedAtStr string
	var active int

	err := row.Scan(&rule.ID, &rule.CanonicalCode, &rule.StartMonth, &rule.EndMonth,
		&classStr, &rule.Priority, &active, &rule.Version, &createdAtStr, &updatedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning allocation rule: %w", err)
	}

	rule.CostClass = domain.CostClass(classStr)
	rule.Active = intToBool(active)
	if rule.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if rule.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &rule, nil
}
