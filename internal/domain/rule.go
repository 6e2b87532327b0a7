package domain

import (
	"time"
)

// AllocationTarget is one recipient of a shared-cost split.
type AllocationTarget struct {
	ProjectID string
	// Percent is an integer percentage weight. Weights across a rule's
	// targets must sum to exactly 100.
	Percent int
}

// AllocationRule redistributes a centrally-booked cost across target
// projects by percentage weight.
type AllocationRule struct {
	ID            string
	CanonicalCode string
	Targets       []AllocationTarget

	// StartMonth/EndMonth bound the months the rule applies to;
	// zero means open-ended on that side.
	StartMonth int
	EndMonth   int

	// CostClass restricts the rule to line items of that class when set.
	CostClass CostClass

	// Priority disambiguates overlapping rules; higher wins.
	Priority int
	Active   bool

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces the write-time invariants: a known canonical code is
// checked by the service against the catalog; here we check shape and the
// weights-sum-to-100 rule.
func (r *AllocationRule) Validate() error {
	if r.CanonicalCode == "" {
		return NewValidationError("canonicalCode", "allocation rule requires a canonical code")
	}
	if len(r.Targets) == 0 {
		return NewValidationError("targets", "allocation rule requires at least one target")
	}
	seen := make(map[string]bool, len(r.Targets))
	sum := 0
	for _, t := range r.Targets {
		if t.ProjectID == "" {
			return NewValidationError("targets", "allocation target is missing a project id")
		}
		if seen[t.ProjectID] {
			return NewValidationError("targets", "duplicate allocation target %q", t.ProjectID)
		}
		seen[t.ProjectID] = true
		if t.Percent <= 0 || t.Percent > 100 {
			return NewValidationError("targets", "weight %d%% for %q out of range (1..100)", t.Percent, t.ProjectID)
		}
		sum += t.Percent
	}
	if sum != 100 {
		return NewValidationError("targets", "allocation weights sum to %d, must equal 100", sum)
	}
	if r.StartMonth < 0 || r.EndMonth < 0 {
		return NewValidationError("months", "rule month bounds must not be negative")
	}
	if r.StartMonth > 0 && r.EndMonth > 0 && r.EndMonth < r.StartMonth {
		return NewValidationError("months", "rule end month %d precedes start month %d", r.EndMonth, r.StartMonth)
	}
	return nil
}

// AppliesTo reports whether the rule matches a cell of the given code,
// month, and cost class.
func (r *AllocationRule) AppliesTo(canonicalCode string, month int, class CostClass) bool {
	if !r.Active || r.CanonicalCode != canonicalCode {
		return false
	}
	if r.StartMonth > 0 && month < r.StartMonth {
		return false
	}
	if r.EndMonth > 0 && month > r.EndMonth {
		return false
	}
	if r.CostClass != "" && r.CostClass != class {
		return false
	}
	return true
}
