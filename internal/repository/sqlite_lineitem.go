package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
)

// SQLiteLineItemRepo persists materialized line items. Items are insert-only;
// there is deliberately no update or delete — a revised baseline produces a
// new disjoint set under new identifiers.
type SQLiteLineItemRepo struct {
	db db.DBTX
}

func NewSQLiteLineItemRepo(dbtx db.DBTX) *SQLiteLineItemRepo {
	return &SQLiteLineItemRepo{db: dbtx}
}

func (r *SQLiteLineItemRepo) CreateBatch(ctx context.Context, items []*domain.LineItem) error {
	stmt := `INSERT INTO line_items (id, project_id, baseline_id, canonical_code, description,
		unit_cost, quantity, recurring, start_month, end_month)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, li := range items {
		_, err := r.db.ExecContext(ctx, stmt,
			li.ID,
			li.ProjectID,
			li.BaselineID,
			li.CanonicalCode,
			li.Description,
			decToString(li.UnitCost),
			decToString(li.Quantity),
			boolToInt(li.Recurring),
			li.StartMonth,
			li.EndMonth,
		)
		if err != nil {
			return fmt.Errorf("inserting line item %s: %w", li.ID, err)
		}
	}
	return nil
}

func (r *SQLiteLineItemRepo) ListByBaseline(ctx context.Context, baselineID string) ([]*domain.LineItem, error) {
	return r.ListByBaselines(ctx, []string{baselineID})
}

func (r *SQLiteLineItemRepo) ListByBaselines(ctx context.Context, baselineIDs []string) ([]*domain.LineItem, error) {
	if len(baselineIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(baselineIDs)), ",")
	args := make([]any, len(baselineIDs))
	for i, id := range baselineIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, baseline_id, canonical_code, description, unit_cost,
			quantity, recurring, start_month, end_month
		 FROM line_items WHERE baseline_id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing line items: %w", err)
	}
	defer rows.Close()

	var items []*domain.LineItem
	for rows.Next() {
		var li domain.LineItem
		var unitCostStr, quantityStr string
		var recurring int
		if err := rows.Scan(&li.ID, &li.ProjectID, &li.BaselineID, &li.CanonicalCode,
			&li.Description, &unitCostStr, &quantityStr, &recurring,
			&li.StartMonth, &li.EndMonth); err != nil {
			return nil, fmt.Errorf("scanning line item: %w", err)
		}
		if li.UnitCost, err = parseDecimal(unitCostStr); err != nil {
			return nil, err
		}
		if li.Quantity, err = parseDecimal(quantityStr); err != nil {
			return nil, err
		}
		li.Recurring = intToBool(recurring)
		items = append(items, &li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating line items: %w", err)
	}
	return items, nil
}
