package service

import (
	"context"

	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/forecast"
	"github.com/shopspring/decimal"
)

type TaxonomyService interface {
	ResolveCategory(ctx context.Context, identifier string) (domain.CanonicalCategory, error)
	ListCategories(ctx context.Context) []domain.CanonicalCategory
	ListGroups(ctx context.Context) []string
}

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByCode(ctx context.Context, code string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
}

// MaterializeResult reports what a materialization produced. Replayed is
// true when the idempotency key matched a prior run and the stored outcome
// was returned instead of writing anything.
type MaterializeResult struct {
	Baseline  *domain.Baseline
	LineItems []*domain.LineItem
	Replayed  bool
}

type BaselineService interface {
	Submit(ctx context.Context, b *domain.Baseline) error
	Materialize(ctx context.Context, baselineID string, expectedVersion int, idemKey, actor string) (*MaterializeResult, error)
	Accept(ctx context.Context, projectID, baselineID string, expectedVersion int, acceptor string) error
	Reject(ctx context.Context, projectID, baselineID string, expectedVersion int, actor, reason string) error
	GetByID(ctx context.Context, id string) (*domain.Baseline, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Baseline, error)
}

// GridResult pairs detail cells with per-project-month totals that already
// fold adjustment deltas in.
type GridResult struct {
	Cells  []domain.ForecastCell
	Totals []forecast.MonthTotal
}

// CloseResult is the outcome of closing one project month. Alerts describe
// threshold breaches for the caller to deliver; the service never sends
// anything itself.
type CloseResult struct {
	Close  *domain.MonthClose
	Alerts []string
}

type ForecastService interface {
	Grid(ctx context.Context, projectIDs []string, r domain.MonthRange) (*GridResult, error)
	PortfolioSummary(ctx context.Context, projectIDs []string, r domain.MonthRange) ([]forecast.MonthCategorySummary, error)
	CloseMonth(ctx context.Context, projectID string, month int, actor string) (*CloseResult, error)
}

type AllocationService interface {
	UpsertRule(ctx context.Context, rule *domain.AllocationRule, expectedVersion int) error
	GetRule(ctx context.Context, id string) (*domain.AllocationRule, error)
	ListRules(ctx context.Context, activeOnly bool) ([]*domain.AllocationRule, error)
}

// AdjustmentResult carries the stored adjustment plus its month-by-month
// effect, including the mirrored target-side deltas for reassignments.
type AdjustmentResult struct {
	Adjustment *domain.Adjustment
	Deltas     []domain.DeltaCell
	Replayed   bool
}

type AdjustmentService interface {
	Create(ctx context.Context, a *domain.Adjustment, horizon domain.MonthRange, idemKey string) (*AdjustmentResult, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Adjustment, error)
}

// ActualRow is one row of an incoming actuals feed, carrying the raw
// category identifier as the source system spelled it.
type ActualRow struct {
	ProjectCode string
	Category    string
	Month       int
	Amount      decimal.Decimal
	Source      domain.ActualSource
}

// IngestRejection explains why one feed row was skipped.
type IngestRejection struct {
	Row    int
	Reason string
}

// IngestReport summarizes a feed ingestion: rejected rows are reported, not
// fatal, so a single typo cannot block a whole payroll export.
type IngestReport struct {
	Accepted   int
	Rejections []IngestRejection
}

type ActualsService interface {
	Ingest(ctx context.Context, rows []ActualRow) (*IngestReport, error)
}
