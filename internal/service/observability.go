package service

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// UseCaseName identifies one of the write paths that report telemetry. The
// read paths (grid, summaries) stay silent; only operations that change
// money-bearing state are worth a log line.
type UseCaseName string

const (
	UseCaseMaterialize      UseCaseName = "materialize"
	UseCaseCloseMonth       UseCaseName = "close-month"
	UseCaseCreateAdjustment UseCaseName = "create-adjustment"
	UseCaseIngestActuals    UseCaseName = "ingest-actuals"
)

// UseCaseEvent is one completed execution of a service write path, emitted
// whether it succeeded or failed. Fields carry the identifiers a controller
// would grep for: baseline and project ids, months, row counts.
type UseCaseEvent struct {
	Name      UseCaseName
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes use-case events to the given writer as slog
// text lines. Failed executions log at error level with the cause attached.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 8+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", string(event.Name),
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "use_case", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "use_case", attrs...)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}
