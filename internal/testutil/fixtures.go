package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dortega/finz/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testCodeCounter atomic.Int64

// Project options
type ProjectOption func(*domain.Project)

func WithMonthlyBudget(amount string) ProjectOption {
	return func(p *domain.Project) {
		d := MustDec(amount)
		p.MonthlyBudget = &d
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithActiveBaseline(baselineID string) ProjectOption {
	return func(p *domain.Project) {
		p.ActiveBaselineID = &baselineID
	}
}

// NewTestProject builds a persistable project with a unique code.
func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	n := testCodeCounter.Add(1)
	p := &domain.Project{
		ID:            uuid.New().String(),
		Code:          fmt.Sprintf("TST-%04d", n),
		Name:          name,
		Client:        "Test Client",
		Currency:      "USD",
		ContractValue: decimal.NewFromInt(100000),
		StartDate:     now.AddDate(0, -1, 0),
		Status:        domain.ProjectActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Baseline options
type BaselineOption func(*domain.Baseline)

func WithStatus(s domain.BaselineStatus) BaselineOption {
	return func(b *domain.Baseline) {
		b.Status = s
	}
}

func WithVersion(v int) BaselineOption {
	return func(b *domain.Baseline) {
		b.Version = v
	}
}

func WithHandedOffBy(actor string) BaselineOption {
	return func(b *domain.Baseline) {
		b.HandedOffBy = actor
	}
}

func WithLabor(entries ...domain.EstimateEntry) BaselineOption {
	return func(b *domain.Baseline) {
		b.LaborEstimates = entries
	}
}

func WithNonLabor(entries ...domain.EstimateEntry) BaselineOption {
	return func(b *domain.Baseline) {
		b.NonLaborEstimates = entries
	}
}

// NewTestBaseline builds a draft baseline with one recurring labor entry.
func NewTestBaseline(projectID string, opts ...BaselineOption) *domain.Baseline {
	now := time.Now().UTC()
	b := &domain.Baseline{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		LaborEstimates: []domain.EstimateEntry{
			RecurringEntry("LABOR-ENG", "1000.00", 1, 12),
		},
		Status:    domain.BaselineDraft,
		Version:   1,
		CreatedBy: "estimator@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RecurringEntry builds a monthly estimate entry.
func RecurringEntry(category, unitCost string, startMonth, endMonth int) domain.EstimateEntry {
	return domain.EstimateEntry{
		Category:   category,
		UnitCost:   MustDec(unitCost),
		Quantity:   decimal.NewFromInt(1),
		StartMonth: startMonth,
		EndMonth:   endMonth,
	}
}

// OneTimeEntry builds a single-month estimate entry.
func OneTimeEntry(category, unitCost string, month int) domain.EstimateEntry {
	return domain.EstimateEntry{
		Category:   category,
		UnitCost:   MustDec(unitCost),
		Quantity:   decimal.NewFromInt(1),
		StartMonth: month,
		OneTime:    true,
	}
}

// NewTestRule builds an active allocation rule splitting across targets.
func NewTestRule(canonicalCode string, targets ...domain.AllocationTarget) *domain.AllocationRule {
	now := time.Now().UTC()
	return &domain.AllocationRule{
		ID:            uuid.New().String(),
		CanonicalCode: canonicalCode,
		Targets:       targets,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// MustDec parses a decimal literal, panicking on malformed test input.
func MustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("bad decimal literal %q: %v", s, err))
	}
	return d
}
