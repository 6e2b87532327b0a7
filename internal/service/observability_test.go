package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver_WritesEventAttributes(t *testing.T) {
	var buf strings.Builder
	obs := NewLogUseCaseObserver(&buf)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:     UseCaseCloseMonth,
		Duration: 12 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{"project_id": "p-1", "month": 4},
	})

	line := buf.String()
	assert.Contains(t, line, "use_case=close-month")
	assert.Contains(t, line, "success=true")
	assert.Contains(t, line, "project_id=p-1")
	assert.Contains(t, line, "month=4")
	assert.NotContains(t, line, "error=")
}

func TestLogUseCaseObserver_FailureLogsError(t *testing.T) {
	var buf strings.Builder
	obs := NewLogUseCaseObserver(&buf)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:    UseCaseMaterialize,
		Success: false,
		Err:     errors.New("version conflict"),
	})

	line := buf.String()
	assert.Contains(t, line, "level=ERROR")
	assert.Contains(t, line, "use_case=materialize")
	assert.Contains(t, line, "version conflict")
}

func TestNewLogUseCaseObserver_NilWriterIsNoop(t *testing.T) {
	obs := NewLogUseCaseObserver(nil)
	assert.IsType(t, NoopUseCaseObserver{}, obs)
	// Must not panic with nothing to write to.
	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: UseCaseIngestActuals})
}
