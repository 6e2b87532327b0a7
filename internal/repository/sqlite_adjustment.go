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

// SQLiteAdjustmentRepo persists adjustments. Insert-only: adjustments are
// immutable once created and their effect is recomputed at read time.
type SQLiteAdjustmentRepo struct {
	db db.DBTX
}

func NewSQLiteAdjustmentRepo(dbtx db.DBTX) *SQLiteAdjustmentRepo {
	return &SQLiteAdjustmentRepo{db: dbtx}
}

func (r *SQLiteAdjustmentRepo) Create(ctx context.Context, a *domain.Adjustment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO adjustments (id, project_id, type, amount, effective_month, policy,
			target_project_id, justification, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.ProjectID,
		string(a.Type),
		decToString(a.Amount),
		a.EffectiveMonth,
		string(a.Policy),
		a.TargetProjectID,
		a.Justification,
		a.CreatedBy,
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting adjustment: %w", err)
	}
	return nil
}

func (r *SQLiteAdjustmentRepo) GetByID(ctx context.Context, id string) (*domain.Adjustment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, type, amount, effective_month, policy, target_project_id,
			justification, created_by, created_at
		 FROM adjustments WHERE id = ?`, id)
	return scanAdjustment(row)
}

func (r *SQLiteAdjustmentRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Adjustment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, type, amount, effective_month, policy, target_project_id,
			justification, created_by, created_at
		 FROM adjustments WHERE project_id = ? OR target_project_id = ? ORDER BY created_at`,
		projectID, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []*domain.Adjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating adjustments: %w", err)
	}
	return adjustments, nil
}

func scanAdjustment(row rowScanner) (*domain.Adjustment, error) {
	var a domain.Adjustment
	var typeStr, amountStr, policyStr, createdAtStr string

	err := row.Scan(&a.ID, &a.ProjectID, &typeStr, &amountStr, &a.EffectiveMonth,
		&policyStr, &a.TargetProjectID, &a.Justification, &a.CreatedBy, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning adjustment: %w", err)
	}

	a.Type = domain.AdjustmentType(typeStr)
	a.Policy = domain.DistributionPolicy(policyStr)
	if a.Amount, err = parseDecimal(amountStr); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &a, nil
}
