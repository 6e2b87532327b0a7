package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstimateEntry is one costed row inside a baseline. Category carries the
// identifier as submitted; it is resolved to a canonical code only at
// materialization time.
type EstimateEntry struct {
	Category    string
	Description string
	UnitCost    decimal.Decimal
	Quantity    decimal.Decimal

	// BurdenRate is an on-cost multiplier applied to labor unit costs
	// (e.g. 1.35 for fully-burdened engineering cost). Zero means no
	// burden, treated as 1.0.
	BurdenRate decimal.Decimal

	// StartMonth/EndMonth are 1-based, inclusive, relative to project
	// start. One-time entries use StartMonth only.
	StartMonth int
	EndMonth   int
	OneTime    bool
}

// EffectiveUnitCost returns the unit cost with the burden multiplier applied.
func (e EstimateEntry) EffectiveUnitCost() decimal.Decimal {
	if e.BurdenRate.IsZero() || e.BurdenRate.Equal(decimal.NewFromInt(1)) {
		return e.UnitCost
	}
	return e.UnitCost.Mul(e.BurdenRate)
}

// Validate checks a single estimate entry.
func (e EstimateEntry) Validate() error {
	if e.Category == "" {
		return NewValidationError("category", "estimate entry is missing a category identifier")
	}
	if e.UnitCost.IsNegative() {
		return NewValidationError("unitCost", "unit cost for %q must not be negative", e.Category)
	}
	if e.Quantity.Sign() <= 0 {
		return NewValidationError("quantity", "quantity for %q must be positive", e.Category)
	}
	if e.BurdenRate.Sign() < 0 || (!e.BurdenRate.IsZero() && e.BurdenRate.LessThan(decimal.NewFromInt(1))) {
		return NewValidationError("burdenRate", "burden rate for %q must be >= 1 when set", e.Category)
	}
	if e.StartMonth < 1 {
		return NewValidationError("startMonth", "start month %d for %q must be >= 1", e.StartMonth, e.Category)
	}
	if e.OneTime {
		if e.EndMonth != 0 && e.EndMonth != e.StartMonth {
			return NewValidationError("endMonth", "one-time entry %q must not span months", e.Category)
		}
	} else if e.EndMonth < e.StartMonth {
		return NewValidationError("endMonth", "end month %d for %q precedes start month %d", e.EndMonth, e.Category, e.StartMonth)
	}
	return nil
}

// Baseline is a submitted, versioned cost estimate for a project. It moves
// through draft -> submitted -> handed_off -> accepted|rejected; rejected is
// terminal and a revision is always a new baseline with a new ID.
type Baseline struct {
	ID        string
	ProjectID string

	LaborEstimates    []EstimateEntry
	NonLaborEstimates []EstimateEntry
	Assumptions       []string

	SignedBy   string
	SignedRole string
	SignedAt   *time.Time

	Status BaselineStatus

	// Version increments on every state transition and guards all
	// state-changing writes (optimistic concurrency).
	Version int

	HandedOffBy  string
	AcceptedBy   string
	RejectedBy   string
	RejectReason string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entries returns labor and non-labor estimates in submission order,
// labor first. Materialization depends on this ordering being stable.
func (b *Baseline) Entries() []EstimateEntry {
	out := make([]EstimateEntry, 0, len(b.LaborEstimates)+len(b.NonLaborEstimates))
	out = append(out, b.LaborEstimates...)
	out = append(out, b.NonLaborEstimates...)
	return out
}

// ValidateEstimates checks every entry and requires at least one.
func (b *Baseline) ValidateEstimates() error {
	entries := b.Entries()
	if len(entries) == 0 {
		return NewValidationError("estimates", "baseline must contain at least one estimate entry")
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsTerminal reports whether the baseline can no longer change state.
func (b *Baseline) IsTerminal() bool {
	return b.Status == BaselineAccepted || b.Status == BaselineRejected
}

var baselineTransitions = map[BaselineStatus][]BaselineStatus{
	BaselineDraft:     {BaselineSubmitted},
	BaselineSubmitted: {BaselineHandedOff},
	BaselineHandedOff: {BaselineAccepted, BaselineRejected},
}

// CanTransition reports whether the from -> to edge exists in the lifecycle.
func CanTransition(from, to BaselineStatus) bool {
	for _, next := range baselineTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition advances the baseline to the target status, enforcing the
// lifecycle edge, the optimistic version guard, and the segregation-of-duties
// rule on acceptance: the acceptor must be a known identity distinct from
// whoever performed the handoff. A missing handoff actor fails closed.
func (b *Baseline) Transition(to BaselineStatus, actor string, expectedVersion int) error {
	if b.Version != expectedVersion {
		return ErrVersionConflict
	}
	if !CanTransition(b.Status, to) {
		return &StateTransitionError{From: b.Status, To: to}
	}
	if actor == "" {
		return &StateTransitionError{From: b.Status, To: to, Reason: "actor identity is required"}
	}
	if to == BaselineAccepted {
		if b.HandedOffBy == "" {
			return &StateTransitionError{From: b.Status, To: to, Reason: "handoff actor is unknown"}
		}
		if actor == b.HandedOffBy {
			return &StateTransitionError{From: b.Status, To: to, Reason: "acceptor must differ from handoff submitter"}
		}
	}

	switch to {
	case BaselineHandedOff:
		b.HandedOffBy = actor
	case BaselineAccepted:
		b.AcceptedBy = actor
	case BaselineRejected:
		b.RejectedBy = actor
	}
	b.Status = to
	b.Version++
	return nil
}
