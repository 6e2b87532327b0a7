package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
)

// SQLiteBaselineRepo persists baselines and their estimate rows. Estimate
// rows keep their submission position so materialization sees entries in
// the exact order the estimator submitted them.
type SQLiteBaselineRepo struct {
	db db.DBTX
}

func NewSQLiteBaselineRepo(dbtx db.DBTX) *SQLiteBaselineRepo {
	return &SQLiteBaselineRepo{db: dbtx}
}

func (r *SQLiteBaselineRepo) Create(ctx context.Context, b *domain.Baseline) error {
	assumptions, err := json.Marshal(b.Assumptions)
	if err != nil {
		return fmt.Errorf("encoding assumptions: %w", err)
	}

	query := `INSERT INTO baselines (id, project_id, status, version, handed_off_by, accepted_by,
		rejected_by, reject_reason, signed_by, signed_role, signed_at, assumptions,
		created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		b.ID,
		b.ProjectID,
		string(b.Status),
		b.Version,
		b.HandedOffBy,
		b.AcceptedBy,
		b.RejectedBy,
		b.RejectReason,
		b.SignedBy,
		b.SignedRole,
		nullableTimeToString(b.SignedAt, time.RFC3339),
		string(assumptions),
		b.CreatedBy,
		b.CreatedAt.Format(time.RFC3339),
		b.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting baseline: %w", err)
	}

	if err := r.insertEstimates(ctx, b); err != nil {
		return err
	}
	return nil
}

func (r *SQLiteBaselineRepo) insertEstimates(ctx context.Context, b *domain.Baseline) error {
	stmt := `INSERT INTO baseline_estimates (baseline_id, position, labor, category, description,
		unit_cost, quantity, burden_rate, start_month, end_month, one_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insert := func(entries []domain.EstimateEntry, labor bool, offset int) error {
		for i, e := range entries {
			_, err := r.db.ExecContext(ctx, stmt,
				b.ID,
				offset+i,
				boolToInt(labor),
				e.Category,
				e.Description,
				decToString(e.UnitCost),
				decToString(e.Quantity),
				decToString(e.BurdenRate),
				e.StartMonth,
				e.EndMonth,
				boolToInt(e.OneTime),
			)
			if err != nil {
				return fmt.Errorf("inserting estimate %d: %w", offset+i, err)
			}
		}
		return nil
	}

	if err := insert(b.LaborEstimates, true, 0); err != nil {
		return err
	}
	return insert(b.NonLaborEstimates, false, len(b.LaborEstimates))
}

func (r *SQLiteBaselineRepo) GetByID(ctx context.Context, id string) (*domain.Baseline, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, status, version, handed_off_by, accepted_by, rejected_by,
			reject_reason, signed_by, signed_role, signed_at, assumptions, created_by,
			created_at, updated_at
		 FROM baselines WHERE id = ?`, id)

	b, err := scanBaseline(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadEstimates(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *SQLiteBaselineRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Baseline, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, status, version, handed_off_by, accepted_by, rejected_by,
			reject_reason, signed_by, signed_role, signed_at, assumptions, created_by,
			created_at, updated_at
		 FROM baselines WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing baselines: %w", err)
	}
	defer rows.Close()

	var baselines []*domain.Baseline
	for rows.Next() {
		b, err := scanBaseline(rows)
		if err != nil {
			return nil, err
		}
		baselines = append(baselines, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating baselines: %w", err)
	}

	for _, b := range baselines {
		if err := r.loadEstimates(ctx, b); err != nil {
			return nil, err
		}
	}
	return baselines, nil
}

// UpdateState writes a lifecycle transition through the shared CAS
// primitive: the UPDATE only lands when the stored version still matches
// what the caller read.
func (r *SQLiteBaselineRepo) UpdateState(ctx context.Context, b *domain.Baseline, expectedVersion int) error {
	err := casExec(ctx, r.db,
		`UPDATE baselines SET status = ?, version = ?, handed_off_by = ?, accepted_by = ?,
			rejected_by = ?, reject_reason = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		string(b.Status),
		b.Version,
		b.HandedOffBy,
		b.AcceptedBy,
		b.RejectedBy,
		b.RejectReason,
		nowUTC(),
		b.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("transitioning baseline %s: %w", b.ID, err)
	}
	return nil
}

func (r *SQLiteBaselineRepo) loadEstimates(ctx context.Context, b *domain.Baseline) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT labor, category, description, unit_cost, quantity, burden_rate,
			start_month, end_month, one_time
		 FROM baseline_estimates WHERE baseline_id = ? ORDER BY position`, b.ID)
	if err != nil {
		return fmt.Errorf("loading estimates: %w", err)
	}
	defer rows.Close()

	b.LaborEstimates = nil
	b.NonLaborEstimates = nil
	for rows.Next() {
		var e domain.EstimateEntry
		var labor, oneTime int
		var unitCostStr, quantityStr, burdenStr string
		if err := rows.Scan(&labor, &e.Category, &e.Description,
			&unitCostStr, &quantityStr, &burdenStr,
			&e.StartMonth, &e.EndMonth, &oneTime); err != nil {
			return fmt.Errorf("scanning estimate: %w", err)
		}
		if e.UnitCost, err = parseDecimal(unitCostStr); err != nil {
			return err
		}
		if e.Quantity, err = parseDecimal(quantityStr); err != nil {
			return err
		}
		if e.BurdenRate, err = parseDecimal(burdenStr); err != nil {
			return err
		}
		e.OneTime = intToBool(oneTime)
		if intToBool(labor) {
			b.LaborEstimates = append(b.LaborEstimates, e)
		} else {
			b.NonLaborEstimates = append(b.NonLaborEstimates, e)
		}
	}
	return rows.Err()
}

func scanBaseline(row rowScanner) (*domain.Baseline, error) {
	var b domain.Baseline
	var statusStr, assumptionsStr, createdAtStr, updatedAtStr string
	var signedAtStr sql.NullString

	err := row.Scan(
		&b.ID, &b.ProjectID, &statusStr, &b.Version,
		&b.HandedOffBy, &b.AcceptedBy, &b.RejectedBy, &b.RejectReason,
		&b.SignedBy, &b.SignedRole, &signedAtStr, &assumptionsStr,
		&b.CreatedBy, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning baseline: %w", err)
	}

	b.Status = domain.BaselineStatus(statusStr)
	if err := json.Unmarshal([]byte(assumptionsStr), &b.Assumptions); err != nil {
		return nil, fmt.Errorf("decoding assumptions: %w", err)
	}
	b.SignedAt = parseNullableTime(signedAtStr, time.RFC3339)
	if b.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if b.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &b, nil
}
