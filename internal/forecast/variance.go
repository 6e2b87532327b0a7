package forecast

import (
	"github.com/dortega/finz/internal/domain"
	"github.com/shopspring/decimal"
)

// VarianceResult is actual minus planned, with the relative deviation.
// Percent is nil when planned is zero: an undefined ratio is a legitimate
// business outcome (no plan yet), not an arithmetic error.
type VarianceResult struct {
	Amount  decimal.Decimal
	Percent *decimal.Decimal
}

// Variance computes (actual - planned) and the percent deviation.
func Variance(planned, actual decimal.Decimal) VarianceResult {
	amount := actual.Sub(planned)
	if planned.IsZero() {
		return VarianceResult{Amount: amount}
	}
	pct := amount.Div(planned).Mul(decimal.NewFromInt(100)).Round(2)
	return VarianceResult{Amount: amount, Percent: &pct}
}

// Coverage is billed revenue over payroll cost for a closing period.
// Nil when payroll is zero.
func Coverage(billed, payroll decimal.Decimal) *decimal.Decimal {
	if payroll.IsZero() {
		return nil
	}
	c := billed.Div(payroll).Round(4)
	return &c
}

// Thresholds hold the classification boundaries. They are configuration,
// not hard-coded business policy; DefaultThresholds matches the boundaries
// the monthly-close review historically used.
type Thresholds struct {
	// FavorableBelowPct: consumption strictly below this reads favorable.
	FavorableBelowPct decimal.Decimal
	// AtRiskAbovePct: consumption strictly above this reads at-risk even
	// while the forecast still fits the budget.
	AtRiskAbovePct decimal.Decimal
}

// DefaultThresholds returns the standard boundaries: favorable under 75%
// consumption, at-risk over 90%.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FavorableBelowPct: decimal.NewFromInt(75),
		AtRiskAbovePct:    decimal.NewFromInt(90),
	}
}

// Classify grades one project month. budget == nil means no monthly budget
// is configured, which is its own state rather than a pass or a failure.
//
//	over_budget: forecast exceeds budget, or consumption above 100%
//	at_risk:     consumption above the at-risk boundary, forecast within budget
//	favorable:   consumption below the favorable boundary
//	on_target:   everything else
func Classify(actualToDate, forecastTotal decimal.Decimal, budget *decimal.Decimal, th Thresholds) domain.BudgetHealth {
	if budget == nil || budget.IsZero() {
		return domain.HealthNoBudget
	}
	consumption := actualToDate.Div(*budget).Mul(decimal.NewFromInt(100))
	if forecastTotal.GreaterThan(*budget) || consumption.GreaterThan(decimal.NewFromInt(100)) {
		return domain.HealthOverBudget
	}
	if consumption.GreaterThan(th.AtRiskAbovePct) {
		return domain.HealthAtRisk
	}
	if consumption.LessThan(th.FavorableBelowPct) {
		return domain.HealthFavorable
	}
	return domain.HealthOnTarget
}
