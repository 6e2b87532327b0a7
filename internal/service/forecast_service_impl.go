package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dortega/finz/internal/allocation"
	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/forecast"
	"github.com/dortega/finz/internal/repository"
	"github.com/dortega/finz/internal/taxonomy"
	"github.com/shopspring/decimal"
)

type forecastService struct {
	projects    repository.ProjectRepo
	items       repository.LineItemRepo
	rules       repository.RuleRepo
	adjustments repository.AdjustmentRepo
	actuals     repository.ActualRepo
	closes      repository.MonthCloseRepo
	catalog     *taxonomy.Catalog
	thresholds  forecast.Thresholds
	uow         db.UnitOfWork
	observer    UseCaseObserver
}

func NewForecastService(
	projects repository.ProjectRepo,
	items repository.LineItemRepo,
	rules repository.RuleRepo,
	adjustments repository.AdjustmentRepo,
	actuals repository.ActualRepo,
	closes repository.MonthCloseRepo,
	catalog *taxonomy.Catalog,
	thresholds forecast.Thresholds,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ForecastService {
	return &forecastService{
		projects:    projects,
		items:       items,
		rules:       rules,
		adjustments: adjustments,
		actuals:     actuals,
		closes:      closes,
		catalog:     catalog,
		thresholds:  thresholds,
		uow:         uow,
		observer:    useCaseObserverOrNoop(observers),
	}
}

// Grid builds the planned/forecast/actual grid for the selected projects
// over the requested window. Only line items of each project's active
// baseline feed the grid; projects without an accepted baseline contribute
// no cells. Adjustment deltas are folded into the totals at read time.
func (s *forecastService) Grid(ctx context.Context, projectIDs []string, r domain.MonthRange) (*GridResult, error) {
	in, err := s.gridInput(ctx, projectIDs, r)
	if err != nil {
		return nil, err
	}
	cells, err := forecast.BuildGrid(*in)
	if err != nil {
		return nil, err
	}
	deltas, err := s.deltasFor(ctx, projectIDs, forecastEnds(in.Items))
	if err != nil {
		return nil, err
	}
	return &GridResult{
		Cells:  cells,
		Totals: forecast.FoldDeltas(cells, deltas, r),
	}, nil
}

// forecastEnds returns each project's final forecast month, the largest end
// month among its active baseline's line items.
func forecastEnds(items []*domain.LineItem) map[string]int {
	ends := make(map[string]int)
	for _, li := range items {
		if li.EndMonth > ends[li.ProjectID] {
			ends[li.ProjectID] = li.EndMonth
		}
	}
	return ends
}

// PortfolioSummary aggregates cells by (month, category) across the
// selected projects. Detail rows stay reachable through Grid.
func (s *forecastService) PortfolioSummary(ctx context.Context, projectIDs []string, r domain.MonthRange) ([]forecast.MonthCategorySummary, error) {
	in, err := s.gridInput(ctx, projectIDs, r)
	if err != nil {
		return nil, err
	}
	cells, err := forecast.BuildGrid(*in)
	if err != nil {
		return nil, err
	}
	return forecast.Summarize(cells), nil
}

func (s *forecastService) gridInput(ctx context.Context, projectIDs []string, r domain.MonthRange) (*forecast.Input, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var baselineIDs []string
	for _, id := range projectIDs {
		p, err := s.projects.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("looking up project %s: %w", id, err)
		}
		if p.ActiveBaselineID != nil {
			baselineIDs = append(baselineIDs, *p.ActiveBaselineID)
		}
	}

	items, err := s.items.ListByBaselines(ctx, baselineIDs)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.List(ctx, true)
	if err != nil {
		return nil, err
	}
	actuals, err := s.actuals.ListByProjects(ctx, projectIDs)
	if err != nil {
		return nil, err
	}

	classes := make(map[string]domain.CostClass)
	for _, code := range s.catalog.Codes() {
		if cat, ok := s.catalog.Category(code); ok {
			classes[code] = cat.CostClass
		}
	}

	return &forecast.Input{
		Range:   r,
		Items:   items,
		Rules:   rules,
		Actuals: actuals,
		Classes: classes,
	}, nil
}

// deltasFor recomputes adjustment deltas against each project's own
// forecast horizon, never the caller's read window. A month's delta is
// therefore the same whether it is read through a full grid or a
// single-month close; FoldDeltas trims to the window afterwards.
func (s *forecastService) deltasFor(ctx context.Context, projectIDs []string, ends map[string]int) ([]domain.DeltaCell, error) {
	selected := make(map[string]bool, len(projectIDs))
	for _, id := range projectIDs {
		selected[id] = true
	}

	seen := make(map[string]bool)
	var deltas []domain.DeltaCell
	for _, id := range projectIDs {
		adjustments, err := s.adjustments.ListByProject(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, adj := range adjustments {
			if seen[adj.ID] {
				continue
			}
			seen[adj.ID] = true

			end := ends[adj.ProjectID]
			if adj.EffectiveMonth > end {
				if adj.Policy != domain.DistributeSingleMonth {
					// Nothing left of the forecast horizon to spread
					// over; not an error at read time.
					continue
				}
				end = adj.EffectiveMonth
			}
			cells, err := allocation.Distribute(adj, domain.MonthRange{Start: 1, End: end})
			if err != nil {
				return nil, fmt.Errorf("distributing adjustment %s: %w", adj.ID, err)
			}
			if adj.Type == domain.AdjustmentReassignment {
				cells = append(cells, allocation.MirrorForTarget(cells, adj.TargetProjectID)...)
			}
			for _, c := range cells {
				if selected[c.ProjectID] {
					deltas = append(deltas, c)
				}
			}
		}
	}
	return deltas, nil
}

// CloseMonth computes coverage and budget health for one project month and
// persists the close record. The returned alerts are for the caller to
// deliver; closing is repeatable-safe because the primary key rejects a
// second close of the same month.
func (s *forecastService) CloseMonth(ctx context.Context, projectID string, month int, actor string) (result *CloseResult, err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      UseCaseCloseMonth,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"project_id": projectID, "month": month},
		})
	}()

	if month < 1 {
		return nil, domain.NewValidationError("month", "month %d must be >= 1", month)
	}
	if actor == "" {
		return nil, domain.NewValidationError("actor", "closing requires an actor identity")
	}

	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("looking up project %s: %w", projectID, err)
	}
	switch _, getErr := s.closes.Get(ctx, projectID, month); {
	case getErr == nil:
		return nil, domain.NewValidationError("month", "month %d of %s is already closed", month, p.DisplayID())
	case !errors.Is(getErr, domain.ErrNotFound):
		return nil, fmt.Errorf("checking prior close of month %d: %w", month, getErr)
	}

	rows, err := s.actuals.ListByProjects(ctx, []string{projectID})
	if err != nil {
		return nil, err
	}
	var payroll, billed, monthCost decimal.Decimal
	for _, a := range rows {
		if a.Month != month {
			continue
		}
		switch a.Source {
		case domain.SourcePayroll:
			payroll = payroll.Add(a.Amount)
			monthCost = monthCost.Add(a.Amount)
		case domain.SourceBilling:
			billed = billed.Add(a.Amount)
		default:
			monthCost = monthCost.Add(a.Amount)
		}
	}

	forecastTotal, err := s.effectivePlanned(ctx, p, month)
	if err != nil {
		return nil, err
	}

	mc := &domain.MonthClose{
		ProjectID:      projectID,
		Month:          month,
		PayrollCost:    payroll,
		BilledRev:      billed,
		Coverage:       forecast.Coverage(billed, payroll),
		Classification: forecast.Classify(monthCost, forecastTotal, p.MonthlyBudget, s.thresholds),
		ClosedBy:       actor,
		ClosedAt:       time.Now().UTC(),
	}

	txErr := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteMonthCloseRepo(tx).Create(ctx, mc)
	})
	if txErr != nil {
		return nil, fmt.Errorf("closing month %d for %s: %w", month, p.DisplayID(), txErr)
	}

	result = &CloseResult{Close: mc, Alerts: closeAlerts(p, mc)}
	return result, nil
}

// effectivePlanned is the month's planned spend for the active baseline
// with adjustment deltas folded in.
func (s *forecastService) effectivePlanned(ctx context.Context, p *domain.Project, month int) (decimal.Decimal, error) {
	if p.ActiveBaselineID == nil {
		return decimal.Zero, nil
	}
	r := domain.MonthRange{Start: month, End: month}
	grid, err := s.Grid(ctx, []string{p.ID}, r)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, t := range grid.Totals {
		if t.ProjectID == p.ID && t.Month == month {
			total = total.Add(t.EffectivePlanned)
		}
	}
	return total, nil
}

func closeAlerts(p *domain.Project, mc *domain.MonthClose) []string {
	var alerts []string
	switch mc.Classification {
	case domain.HealthOverBudget:
		alerts = append(alerts, fmt.Sprintf("%s month %d closed over budget", p.DisplayID(), mc.Month))
	case domain.HealthAtRisk:
		alerts = append(alerts, fmt.Sprintf("%s month %d closed at risk", p.DisplayID(), mc.Month))
	}
	if mc.Coverage != nil && mc.Coverage.LessThan(decimal.NewFromInt(1)) {
		alerts = append(alerts, fmt.Sprintf("%s month %d billed revenue does not cover payroll (coverage %s)",
			p.DisplayID(), mc.Month, mc.Coverage.String()))
	}
	return alerts
}
