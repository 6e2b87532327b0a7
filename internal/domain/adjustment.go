package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Adjustment is an out-of-band budget delta. It is created once and never
// mutated; its effect is folded into forecast cells at read time, preserving
// the original plan for lineage.
type Adjustment struct {
	ID        string
	ProjectID string
	Type      AdjustmentType

	// Amount is always positive; Type determines the sign of the effect.
	Amount decimal.Decimal

	EffectiveMonth int
	Policy         DistributionPolicy

	// TargetProjectID receives the mirrored positive delta for
	// reassignments; unused otherwise.
	TargetProjectID string

	Justification string
	CreatedBy     string
	CreatedAt     time.Time
}

// SignedAmount returns the delta as it applies to the owning project:
// negative for decreases and reassignments (cost moves away), positive
// for increases.
func (a *Adjustment) SignedAmount() decimal.Decimal {
	switch a.Type {
	case AdjustmentDecrease, AdjustmentReassignment:
		return a.Amount.Neg()
	default:
		return a.Amount
	}
}

// Validate enforces write-time invariants.
func (a *Adjustment) Validate() error {
	if a.ProjectID == "" {
		return NewValidationError("projectId", "adjustment requires a project id")
	}
	if !ValidAdjustmentTypes[string(a.Type)] {
		return NewValidationError("type", "unknown adjustment type %q", a.Type)
	}
	if a.Amount.Sign() <= 0 {
		return NewValidationError("amount", "adjustment amount must be positive")
	}
	if a.EffectiveMonth < 1 {
		return NewValidationError("effectiveMonth", "effective month %d must be >= 1", a.EffectiveMonth)
	}
	if !ValidDistributionPolicies[string(a.Policy)] {
		return NewValidationError("distributionPolicy", "unknown distribution policy %q", a.Policy)
	}
	if a.Type == AdjustmentReassignment && a.TargetProjectID == "" {
		return NewValidationError("targetProjectId", "reassignment requires a target project")
	}
	if a.Justification == "" {
		return NewValidationError("justification", "adjustment requires a justification")
	}
	return nil
}
