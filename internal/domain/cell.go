package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ForecastCell is the planned/forecast/actual triple for one
// project/line-item/month. Cells are derived on demand from line items,
// allocation rules, adjustments, and the actuals feed; they are never a
// source of truth themselves.
type ForecastCell struct {
	ProjectID     string
	LineItemID    string
	CanonicalCode string
	Month         int

	Planned  decimal.Decimal
	Forecast decimal.Decimal
	// Actual is zero when no actual has been fed for the cell. Zero means
	// "no data reported", stated explicitly, never imputed from forecast.
	Actual decimal.Decimal
}

// DeltaCell is the per-month effect of one adjustment on one project.
type DeltaCell struct {
	AdjustmentID string
	ProjectID    string
	Month        int
	Delta        decimal.Decimal
}

// Actual is one externally fed fact row from the payroll or billing feed.
type Actual struct {
	ProjectID     string
	CanonicalCode string
	Month         int
	Amount        decimal.Decimal
	Source        ActualSource
}

// MonthClose records the outcome of closing one project month.
type MonthClose struct {
	ProjectID   string
	Month       int
	PayrollCost decimal.Decimal
	BilledRev   decimal.Decimal

	// Coverage is billed revenue over payroll cost; nil when payroll is
	// zero (an undefined ratio, not an error).
	Coverage *decimal.Decimal

	Classification BudgetHealth
	ClosedBy       string
	ClosedAt       time.Time
}
