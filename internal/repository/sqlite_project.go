package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo over a DBTX, so the same repo
// works standalone or transaction-scoped.
type SQLiteProjectRepo struct {
	db db.DBTX
}

func NewSQLiteProjectRepo(dbtx db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: dbtx}
}

const projectColumns = `id, code, name, client, currency, contract_value, start_date, end_date,
	monthly_budget, active_baseline_id, status, created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Code,
		p.Name,
		p.Client,
		p.Currency,
		decToString(p.ContractValue),
		p.StartDate.Format(dateLayout),
		nullableTimeToString(p.EndDate, dateLayout),
		nullableDecToString(p.MonthlyBudget),
		nullablePtr(p.ActiveBaselineID),
		string(p.Status),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

func (r *SQLiteProjectRepo) GetByCode(ctx context.Context, code string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE UPPER(code) = UPPER(?)`, code)
	return scanProject(row)
}

func (r *SQLiteProjectRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	if !includeArchived {
		query += ` WHERE status != 'archived'`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET code = ?, name = ?, client = ?, currency = ?,
		contract_value = ?, start_date = ?, end_date = ?, monthly_budget = ?,
		status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		p.Code,
		p.Name,
		p.Client,
		p.Currency,
		decToString(p.ContractValue),
		p.StartDate.Format(dateLayout),
		nullableTimeToString(p.EndDate, dateLayout),
		nullableDecToString(p.MonthlyBudget),
		string(p.Status),
		nowUTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return nil
}

// SetActiveBaseline repoints the project's active baseline reference.
// Acceptance calls this in the same transaction that transitions the
// baseline, so the pointer and the state can never drift apart.
func (r *SQLiteProjectRepo) SetActiveBaseline(ctx context.Context, projectID, baselineID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET active_baseline_id = ?, updated_at = ? WHERE id = ?`,
		baselineID, nowUTC(), projectID)
	if err != nil {
		return fmt.Errorf("setting active baseline: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var contractStr, startDateStr, statusStr, createdAtStr, updatedAtStr string
	var endDateStr, budgetStr, activeBaselineStr sql.NullString

	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Client, &p.Currency,
		&contractStr, &startDateStr, &endDateStr,
		&budgetStr, &activeBaselineStr, &statusStr,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	p.Status = domain.ProjectStatus(statusStr)
	if p.ContractValue, err = parseDecimal(contractStr); err != nil {
		return nil, err
	}
	if p.MonthlyBudget, err = parseNullableDecimal(budgetStr); err != nil {
		return nil, err
	}
	if activeBaselineStr.Valid && activeBaselineStr.String != "" {
		id := activeBaselineStr.String
		p.ActiveBaselineID = &id
	}

	if p.StartDate, err = time.Parse(dateLayout, startDateStr); err != nil {
		return nil, fmt.Errorf("parsing start_date: %w", err)
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	p.EndDate = parseNullableTime(endDateStr, dateLayout)

	return &p, nil
}

// nullablePtr converts a *string to a storage value (NULL for nil).
func nullablePtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
