package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dortega/finz/internal/allocation"
	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/repository"
	"github.com/google/uuid"
)

type adjustmentService struct {
	adjustments repository.AdjustmentRepo
	projects    repository.ProjectRepo
	uow         db.UnitOfWork
	observer    UseCaseObserver
}

func NewAdjustmentService(
	adjustments repository.AdjustmentRepo,
	projects repository.ProjectRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) AdjustmentService {
	return &adjustmentService{
		adjustments: adjustments,
		projects:    projects,
		uow:         uow,
		observer:    useCaseObserverOrNoop(observers),
	}
}

// Create validates and persists an adjustment and returns its distributed
// monthly deltas over the given horizon, including the mirrored target side
// for reassignments. Line items are never touched; the deltas fold into
// forecasts at read time.
func (s *adjustmentService) Create(ctx context.Context, a *domain.Adjustment, horizon domain.MonthRange, idemKey string) (result *AdjustmentResult, err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      UseCaseCreateAdjustment,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"project_id": a.ProjectID, "type": string(a.Type)},
		})
	}()

	if idemKey == "" {
		return nil, domain.NewValidationError("idempotencyKey", "adjustment creation requires an idempotency key")
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now().UTC()
	if err := a.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.projects.GetByID(ctx, a.ProjectID); err != nil {
		return nil, fmt.Errorf("looking up project %s: %w", a.ProjectID, err)
	}
	if a.Type == domain.AdjustmentReassignment {
		if a.TargetProjectID == a.ProjectID {
			return nil, domain.NewValidationError("targetProjectId", "reassignment target must differ from the origin project")
		}
		if _, err := s.projects.GetByID(ctx, a.TargetProjectID); err != nil {
			return nil, fmt.Errorf("looking up target project %s: %w", a.TargetProjectID, err)
		}
	}

	// Distribute before writing so an invalid policy/window combination
	// never leaves a stored adjustment with no computable effect.
	deltas, err := allocation.Distribute(a, horizon)
	if err != nil {
		return nil, err
	}
	if a.Type == domain.AdjustmentReassignment {
		deltas = append(deltas, allocation.MirrorForTarget(deltas, a.TargetProjectID)...)
	}

	payloadHash := adjustmentPayloadHash(a)
	txErr := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txAdjustments := repository.NewSQLiteAdjustmentRepo(tx)
		txIdem := repository.NewSQLiteIdempotencyRepo(tx)

		if rec, err := txIdem.Get(ctx, idemKey); err == nil {
			if rec.Operation != string(UseCaseCreateAdjustment) || rec.PayloadHash != payloadHash {
				return fmt.Errorf("idempotency key %q reused with a different payload: %w",
					idemKey, domain.ErrIdempotencyConflict)
			}
			stored, err := txAdjustments.GetByID(ctx, rec.Result)
			if err != nil {
				return err
			}
			result = &AdjustmentResult{Adjustment: stored, Deltas: deltas, Replayed: true}
			return nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if err := txAdjustments.Create(ctx, a); err != nil {
			return err
		}
		if err := txIdem.Put(ctx, &repository.IdempotencyRecord{
			Key:         idemKey,
			Operation:   string(UseCaseCreateAdjustment),
			PayloadHash: payloadHash,
			Result:      a.ID,
			CreatedAt:   time.Now().UTC(),
		}); err != nil {
			return err
		}
		result = &AdjustmentResult{Adjustment: a, Deltas: deltas}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

func (s *adjustmentService) ListByProject(ctx context.Context, projectID string) ([]*domain.Adjustment, error) {
	return s.adjustments.ListByProject(ctx, projectID)
}

// adjustmentPayloadHash fingerprints the business content of an adjustment.
// The generated ID and timestamp are excluded so a retry of the same request
// replays instead of conflicting.
func adjustmentPayloadHash(a *domain.Adjustment) string {
	payload := fmt.Sprintf("%s|%s|%s|%d|%s|%s|%s",
		a.ProjectID, a.Type, a.Amount.String(), a.EffectiveMonth, a.Policy,
		a.TargetProjectID, a.Justification)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
