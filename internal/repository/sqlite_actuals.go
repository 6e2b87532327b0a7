package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
)

// SQLiteActualRepo persists the externally fed actuals facts. Feeds are
// replayed wholesale, so writes are idempotent upserts keyed on
// (project, code, month, source).
type SQLiteActualRepo struct {
	db db.DBTX
}

func NewSQLiteActualRepo(dbtx db.DBTX) *SQLiteActualRepo {
	return &SQLiteActualRepo{db: dbtx}
}

func (r *SQLiteActualRepo) Upsert(ctx context.Context, a domain.Actual) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO actuals (project_id, canonical_code, month, source, amount, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, canonical_code, month, source)
		 DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`,
		a.ProjectID, a.CanonicalCode, a.Month, string(a.Source),
		decToString(a.Amount), nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting actual: %w", err)
	}
	return nil
}

func (r *SQLiteActualRepo) ListByProjects(ctx context.Context, projectIDs []string) ([]domain.Actual, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(projectIDs)), ",")
	args := make([]any, len(projectIDs))
	for i, id := range projectIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT project_id, canonical_code, month, source, amount
		 FROM actuals WHERE project_id IN (`+placeholders+`)
		 ORDER BY project_id, canonical_code, month`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing actuals: %w", err)
	}
	defer rows.Close()

	var actuals []domain.Actual
	for rows.Next() {
		var a domain.Actual
		var sourceStr, amountStr string
		if err := rows.Scan(&a.ProjectID, &a.CanonicalCode, &a.Month, &sourceStr, &amountStr); err != nil {
			return nil, fmt.Errorf("scanning actual: %w", err)
		}
		a.Source = domain.ActualSource(sourceStr)
		if a.Amount, err = parseDecimal(amountStr); err != nil {
			return nil, err
		}
		actuals = append(actuals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actuals: %w", err)
	}
	return actuals, nil
}

// SQLiteMonthCloseRepo persists monthly closing records.
type SQLiteMonthCloseRepo struct {
	db db.DBTX
}

func NewSQLiteMonthCloseRepo(dbtx db.DBTX) *SQLiteMonthCloseRepo {
	return &SQLiteMonthCloseRepo{db: dbtx}
}

func (r *SQLiteMonthCloseRepo) Create(ctx context.Context, mc *domain.MonthClose) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO month_closes (project_id, month, payroll_cost, billed_revenue,
			coverage, classification, closed_by, closed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		mc.ProjectID,
		mc.Month,
		decToString(mc.PayrollCost),
		decToString(mc.BilledRev),
		nullableDecToString(mc.Coverage),
		string(mc.Classification),
		mc.ClosedBy,
		mc.ClosedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting month close: %w", err)
	}
	return nil
}

func (r *SQLiteMonthCloseRepo) Get(ctx context.Context, projectID string, month int) (*domain.MonthClose, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT project_id, month, payroll_cost, billed_revenue, coverage,
			classification, closed_by, closed_at
		 FROM month_closes WHERE project_id = ? AND month = ?`, projectID, month)

	var mc domain.MonthClose
	var payrollStr, billedStr, classStr, closedAtStr string
	var coverageStr sql.NullString

	err := row.Scan(&mc.ProjectID, &mc.Month, &payrollStr, &billedStr,
		&coverageStr, &classStr, &mc.ClosedBy, &closedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning month close: %w", err)
	}

	if mc.PayrollCost, err = parseDecimal(payrollStr); err != nil {
		return nil, err
	}
	if mc.BilledRev, err = parseDecimal(billedStr); err != nil {
		return nil, err
	}
	if mc.Coverage, err = parseNullableDecimal(coverageStr); err != nil {
		return nil, err
	}
	mc.Classification = domain.BudgetHealth(classStr)
	if mc.ClosedAt, err = time.Parse(time.RFC3339, closedAtStr); err != nil {
		return nil, fmt.Errorf("parsing closed_at: %w", err)
	}
	return &mc, nil
}
