package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/repository"
	"github.com/dortega/finz/internal/taxonomy"
)

type actualsService struct {
	actuals  repository.ActualRepo
	projects repository.ProjectRepo
	catalog  *taxonomy.Catalog
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewActualsService(
	actuals repository.ActualRepo,
	projects repository.ProjectRepo,
	catalog *taxonomy.Catalog,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ActualsService {
	return &actualsService{
		actuals:  actuals,
		projects: projects,
		catalog:  catalog,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Ingest upserts a batch of feed rows. Unlike materialization, a bad row is
// reported and skipped rather than aborting the batch: payroll exports are
// large and a single mistyped category must not block the rest. Accepted
// rows commit together.
func (s *actualsService) Ingest(ctx context.Context, rows []ActualRow) (report *IngestReport, err error) {
	startedAt := time.Now()
	defer func() {
		fields := map[string]any{"rows": len(rows)}
		if report != nil {
			fields["accepted"] = report.Accepted
			fields["rejected"] = len(report.Rejections)
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      UseCaseIngestActuals,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	out := &IngestReport{}
	var accepted []domain.Actual

	projectByCode := make(map[string]*domain.Project)
	for i, row := range rows {
		p, ok := projectByCode[row.ProjectCode]
		if !ok {
			looked, lookErr := s.projects.GetByCode(ctx, row.ProjectCode)
			if lookErr != nil {
				out.Rejections = append(out.Rejections, IngestRejection{
					Row: i, Reason: fmt.Sprintf("unknown project code %q", row.ProjectCode),
				})
				continue
			}
			p = looked
			projectByCode[row.ProjectCode] = p
		}

		code, rerr := s.catalog.Resolve(row.Category)
		if rerr != nil {
			out.Rejections = append(out.Rejections, IngestRejection{Row: i, Reason: rerr.Error()})
			continue
		}
		if row.Month < 1 {
			out.Rejections = append(out.Rejections, IngestRejection{
				Row: i, Reason: fmt.Sprintf("month %d must be >= 1", row.Month),
			})
			continue
		}
		if row.Amount.IsNegative() {
			out.Rejections = append(out.Rejections, IngestRejection{
				Row: i, Reason: "amount must not be negative",
			})
			continue
		}
		if row.Source != domain.SourcePayroll && row.Source != domain.SourceBilling {
			out.Rejections = append(out.Rejections, IngestRejection{
				Row: i, Reason: fmt.Sprintf("unknown source %q", row.Source),
			})
			continue
		}

		accepted = append(accepted, domain.Actual{
			ProjectID:     p.ID,
			CanonicalCode: code,
			Month:         row.Month,
			Amount:        row.Amount,
			Source:        row.Source,
		})
	}

	txErr := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txActuals := repository.NewSQLiteActualRepo(tx)
		for _, a := range accepted {
			if err := txActuals.Upsert(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	out.Accepted = len(accepted)
	report = out
	return report, nil
}
