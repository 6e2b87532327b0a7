package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/repository"
	"github.com/dortega/finz/internal/taxonomy"
	"github.com/google/uuid"
)

type baselineService struct {
	baselines repository.BaselineRepo
	projects  repository.ProjectRepo
	catalog   *taxonomy.Catalog
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

func NewBaselineService(
	baselines repository.BaselineRepo,
	projects repository.ProjectRepo,
	catalog *taxonomy.Catalog,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) BaselineService {
	return &baselineService{
		baselines: baselines,
		projects:  projects,
		catalog:   catalog,
		uow:       uow,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// Submit validates a draft and records it as submitted. The baseline enters
// the lifecycle at version 1 and the submission transition bumps it, so the
// stored row is already guarded against concurrent edits.
func (s *baselineService) Submit(ctx context.Context, b *domain.Baseline) error {
	if b.ProjectID == "" {
		return domain.NewValidationError("projectId", "baseline requires a project id")
	}
	if b.CreatedBy == "" {
		return domain.NewValidationError("createdBy", "baseline requires a submitting actor")
	}
	if err := b.ValidateEstimates(); err != nil {
		return err
	}
	if _, err := s.projects.GetByID(ctx, b.ProjectID); err != nil {
		return fmt.Errorf("looking up project %s: %w", b.ProjectID, err)
	}

	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Status == "" {
		b.Status = domain.BaselineDraft
		b.Version = 1
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := b.Transition(domain.BaselineSubmitted, b.CreatedBy, b.Version); err != nil {
		return err
	}
	return s.baselines.Create(ctx, b)
}

// Materialize turns a submitted baseline's estimates into immutable line
// items and hands the baseline off, all inside one transaction. The whole
// operation is atomic: a single unresolvable category identifier aborts it
// with every offender reported, and a replayed idempotency key returns the
// stored outcome without writing.
func (s *baselineService) Materialize(ctx context.Context, baselineID string, expectedVersion int, idemKey, actor string) (result *MaterializeResult, err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      UseCaseMaterialize,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"baseline_id": baselineID},
		})
	}()

	if idemKey == "" {
		return nil, domain.NewValidationError("idempotencyKey", "materialization requires an idempotency key")
	}

	txErr := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txBaselines := repository.NewSQLiteBaselineRepo(tx)
		txItems := repository.NewSQLiteLineItemRepo(tx)
		txIdem := repository.NewSQLiteIdempotencyRepo(tx)

		b, err := txBaselines.GetByID(ctx, baselineID)
		if err != nil {
			return fmt.Errorf("loading baseline %s: %w", baselineID, err)
		}
		payloadHash := materializePayloadHash(b)

		if rec, err := txIdem.Get(ctx, idemKey); err == nil {
			if rec.Operation != string(UseCaseMaterialize) || rec.PayloadHash != payloadHash {
				return fmt.Errorf("idempotency key %q reused with a different payload: %w",
					idemKey, domain.ErrIdempotencyConflict)
			}
			items, err := txItems.ListByBaseline(ctx, baselineID)
			if err != nil {
				return err
			}
			result = &MaterializeResult{Baseline: b, LineItems: items, Replayed: true}
			return nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		items, err := s.buildLineItems(b)
		if err != nil {
			return err
		}

		if err := b.Transition(domain.BaselineHandedOff, actor, expectedVersion); err != nil {
			return err
		}
		if err := txBaselines.UpdateState(ctx, b, expectedVersion); err != nil {
			return err
		}
		if err := txItems.CreateBatch(ctx, items); err != nil {
			return err
		}
		if err := txIdem.Put(ctx, &repository.IdempotencyRecord{
			Key:         idemKey,
			Operation:   string(UseCaseMaterialize),
			PayloadHash: payloadHash,
			Result:      baselineID,
			CreatedAt:   time.Now().UTC(),
		}); err != nil {
			return err
		}

		result = &MaterializeResult{Baseline: b, LineItems: items}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

// buildLineItems resolves every estimate to a canonical code and derives
// deterministic line items. All unresolved identifiers are collected into
// one error so the estimator fixes the whole sheet in a single round trip.
func (s *baselineService) buildLineItems(b *domain.Baseline) ([]*domain.LineItem, error) {
	entries := b.Entries()

	var unresolved []error
	codes := make([]string, len(entries))
	for i, e := range entries {
		code, err := s.catalog.Resolve(e.Category)
		if err != nil {
			unresolved = append(unresolved, err)
			continue
		}
		codes[i] = code
	}
	if len(unresolved) > 0 {
		return nil, fmt.Errorf("materialization aborted, %d unresolved identifiers: %w",
			len(unresolved), errors.Join(unresolved...))
	}

	seq := make(map[string]int, len(entries))
	items := make([]*domain.LineItem, 0, len(entries))
	for i, e := range entries {
		code := codes[i]
		seq[code]++
		endMonth := e.EndMonth
		if e.OneTime {
			endMonth = e.StartMonth
		}
		items = append(items, &domain.LineItem{
			ID:            domain.LineItemID(code, b.ID, seq[code]),
			ProjectID:     b.ProjectID,
			BaselineID:    b.ID,
			CanonicalCode: code,
			Description:   e.Description,
			UnitCost:      e.EffectiveUnitCost(),
			Quantity:      e.Quantity,
			Recurring:     !e.OneTime,
			StartMonth:    e.StartMonth,
			EndMonth:      endMonth,
		})
	}
	return items, nil
}

// materializePayloadHash fingerprints the content a materialization depends
// on. Two calls with the same key must describe the same baseline content to
// count as a replay.
func materializePayloadHash(b *domain.Baseline) string {
	var sb strings.Builder
	sb.WriteString(b.ID)
	for _, e := range b.Entries() {
		fmt.Fprintf(&sb, "|%s;%s;%s;%s;%d;%d;%t",
			e.Category, e.UnitCost.String(), e.Quantity.String(), e.BurdenRate.String(),
			e.StartMonth, e.EndMonth, e.OneTime)
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Accept transitions a handed-off baseline to accepted and repoints the
// project's active baseline in the same transaction, so the forecast can
// never observe an accepted baseline that is not yet active.
func (s *baselineService) Accept(ctx context.Context, projectID, baselineID string, expectedVersion int, acceptor string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txBaselines := repository.NewSQLiteBaselineRepo(tx)
		txProjects := repository.NewSQLiteProjectRepo(tx)

		b, err := txBaselines.GetByID(ctx, baselineID)
		if err != nil {
			return fmt.Errorf("loading baseline %s: %w", baselineID, err)
		}
		if b.ProjectID != projectID {
			return domain.NewValidationError("baselineId",
				"baseline %s does not belong to project %s", baselineID, projectID)
		}
		if err := b.Transition(domain.BaselineAccepted, acceptor, expectedVersion); err != nil {
			return err
		}
		if err := txBaselines.UpdateState(ctx, b, expectedVersion); err != nil {
			return err
		}
		return txProjects.SetActiveBaseline(ctx, projectID, baselineID)
	})
}

// Reject marks a handed-off baseline as terminally rejected. A revision is
// always a brand-new baseline; the rejected one stays for audit.
func (s *baselineService) Reject(ctx context.Context, projectID, baselineID string, expectedVersion int, actor, reason string) error {
	if reason == "" {
		return domain.NewValidationError("reason", "rejection requires a reason")
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txBaselines := repository.NewSQLiteBaselineRepo(tx)

		b, err := txBaselines.GetByID(ctx, baselineID)
		if err != nil {
			return fmt.Errorf("loading baseline %s: %w", baselineID, err)
		}
		if b.ProjectID != projectID {
			return domain.NewValidationError("baselineId",
				"baseline %s does not belong to project %s", baselineID, projectID)
		}
		if err := b.Transition(domain.BaselineRejected, actor, expectedVersion); err != nil {
			return err
		}
		b.RejectReason = reason
		return txBaselines.UpdateState(ctx, b, expectedVersion)
	})
}

func (s *baselineService) GetByID(ctx context.Context, id string) (*domain.Baseline, error) {
	return s.baselines.GetByID(ctx, id)
}

func (s *baselineService) ListByProject(ctx context.Context, projectID string) ([]*domain.Baseline, error) {
	return s.baselines.ListByProject(ctx, projectID)
}
