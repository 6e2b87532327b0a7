package repository

import (
	"context"
	"time"

	"github.com/dortega/finz/internal/domain"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByCode(ctx context.Context, code string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	SetActiveBaseline(ctx context.Context, projectID, baselineID string) error
}

type BaselineRepo interface {
	Create(ctx context.Context, b *domain.Baseline) error
	GetByID(ctx context.Context, id string) (*domain.Baseline, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Baseline, error)
	// UpdateState persists a lifecycle transition guarded by the version
	// the caller read; a stale expectedVersion yields ErrVersionConflict.
	UpdateState(ctx context.Context, b *domain.Baseline, expectedVersion int) error
}

type LineItemRepo interface {
	CreateBatch(ctx context.Context, items []*domain.LineItem) error
	ListByBaseline(ctx context.Context, baselineID string) ([]*domain.LineItem, error)
	ListByBaselines(ctx context.Context, baselineIDs []string) ([]*domain.LineItem, error)
}

type RuleRepo interface {
	// Upsert inserts a new rule (expectedVersion 0) or replaces an
	// existing one under the optimistic version guard.
	Upsert(ctx context.Context, r *domain.AllocationRule, expectedVersion int) error
	GetByID(ctx context.Context, id string) (*domain.AllocationRule, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.AllocationRule, error)
}

type AdjustmentRepo interface {
	Create(ctx context.Context, a *domain.Adjustment) error
	GetByID(ctx context.Context, id string) (*domain.Adjustment, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Adjustment, error)
}

type ActualRepo interface {
	Upsert(ctx context.Context, a domain.Actual) error
	ListByProjects(ctx context.Context, projectIDs []string) ([]domain.Actual, error)
}

type MonthCloseRepo interface {
	Create(ctx context.Context, mc *domain.MonthClose) error
	Get(ctx context.Context, projectID string, month int) (*domain.MonthClose, error)
}

// IdempotencyRecord is a short-lived memo of a prior creation result keyed
// by the caller-supplied idempotency key.
type IdempotencyRecord struct {
	Key         string
	Operation   string
	PayloadHash string
	Result      string
	CreatedAt   time.Time
}

type IdempotencyRepo interface {
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Put(ctx context.Context, rec *IdempotencyRecord) error
}
