package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/repository"
	"github.com/dortega/finz/internal/taxonomy"
	"github.com/google/uuid"
)

type allocationService struct {
	rules    repository.RuleRepo
	projects repository.ProjectRepo
	catalog  *taxonomy.Catalog
	uow      db.UnitOfWork
}

func NewAllocationService(
	rules repository.RuleRepo,
	projects repository.ProjectRepo,
	catalog *taxonomy.Catalog,
	uow db.UnitOfWork,
) AllocationService {
	return &allocationService{rules: rules, projects: projects, catalog: catalog, uow: uow}
}

// UpsertRule creates or replaces an allocation rule under the optimistic
// version guard. The canonical code must resolve in the catalog and every
// target must name an existing project; the weights invariant lives in
// domain validation.
func (s *allocationService) UpsertRule(ctx context.Context, rule *domain.AllocationRule, expectedVersion int) error {
	if rule.ID == "" {
		if expectedVersion != 0 {
			return domain.NewValidationError("id", "rule update requires an id")
		}
		rule.ID = uuid.New().String()
	}
	if err := rule.Validate(); err != nil {
		return err
	}

	code, err := s.catalog.Resolve(rule.CanonicalCode)
	if err != nil {
		return err
	}
	rule.CanonicalCode = code

	for _, t := range rule.Targets {
		if _, err := s.projects.GetByID(ctx, t.ProjectID); err != nil {
			return fmt.Errorf("rule target %s: %w", t.ProjectID, err)
		}
	}

	if rule.Active {
		if err := s.checkOverlap(ctx, rule); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	if expectedVersion == 0 {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteRuleRepo(tx).Upsert(ctx, rule, expectedVersion)
	})
}

// checkOverlap rejects an active rule whose month window collides with
// another active rule for the same canonical code at the same priority.
// Distinct priorities may overlap because selection picks the higher one.
func (s *allocationService) checkOverlap(ctx context.Context, rule *domain.AllocationRule) error {
	existing, err := s.rules.List(ctx, true)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == rule.ID || other.CanonicalCode != rule.CanonicalCode {
			continue
		}
		if other.Priority != rule.Priority {
			continue
		}
		if windowsOverlap(rule.StartMonth, rule.EndMonth, other.StartMonth, other.EndMonth) {
			return domain.NewValidationError("months",
				"rule overlaps active rule %s for %s at priority %d",
				other.ID, rule.CanonicalCode, rule.Priority)
		}
	}
	return nil
}

// windowsOverlap treats a zero start as month 1 and a zero end as unbounded.
func windowsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	if aStart == 0 {
		aStart = 1
	}
	if bStart == 0 {
		bStart = 1
	}
	aOpen := aEnd == 0
	bOpen := bEnd == 0
	if aOpen && bOpen {
		return true
	}
	if aOpen {
		return bEnd >= aStart
	}
	if bOpen {
		return aEnd >= bStart
	}
	return aStart <= bEnd && bStart <= aEnd
}

func (s *allocationService) GetRule(ctx context.Context, id string) (*domain.AllocationRule, error) {
	return s.rules.GetByID(ctx, id)
}

func (s *allocationService) ListRules(ctx context.Context, activeOnly bool) ([]*domain.AllocationRule, error) {
	return s.rules.List(ctx, activeOnly)
}
