// Package allocation holds the pure computation for splitting shared costs
// across projects and for spreading adjustment deltas across months. Both
// carry exactness invariants: the parts always sum to the original amount,
// to the cent, with deterministic placement of residuals.
package allocation

import (
	"sort"

	"github.com/dortega/finz/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Share is one project's slice of a split amount.
type Share struct {
	ProjectID string
	Amount    decimal.Decimal
}

// Select picks the single rule that governs a cell: the highest-priority
// active rule matching the canonical code, month, and cost class. Ties on
// priority break by rule ID so selection is deterministic. Returns nil when
// no rule matches, in which case the cost stays on its originating project.
func Select(rules []*domain.AllocationRule, canonicalCode string, month int, class domain.CostClass) *domain.AllocationRule {
	var best *domain.AllocationRule
	for _, r := range rules {
		if !r.AppliesTo(canonicalCode, month, class) {
			continue
		}
		if best == nil || r.Priority > best.Priority || (r.Priority == best.Priority && r.ID < best.ID) {
			best = r
		}
	}
	return best
}

// Split divides amount across the targets by integer percentage weight.
// Every share is floored to the cent; the residual cents go to the target
// with the largest share, ties broken by project ID ordering, so that the
// shares sum to amount exactly. Exactness is an invariant, not best effort.
func Split(amount decimal.Decimal, targets []domain.AllocationTarget) []Share {
	shares := make([]Share, len(targets))
	total := decimal.Zero
	for i, t := range targets {
		part := amount.Mul(decimal.NewFromInt(int64(t.Percent))).Div(hundred).RoundDown(2)
		shares[i] = Share{ProjectID: t.ProjectID, Amount: part}
		total = total.Add(part)
	}

	residual := amount.Sub(total)
	if !residual.IsZero() {
		largest := 0
		for i := 1; i < len(shares); i++ {
			cmp := shares[i].Amount.Cmp(shares[largest].Amount)
			if cmp > 0 || (cmp == 0 && shares[i].ProjectID < shares[largest].ProjectID) {
				largest = i
			}
		}
		shares[largest].Amount = shares[largest].Amount.Add(residual)
	}
	return shares
}

// Allocate applies the governing rule (if any) to one month's amount of a
// shared line item. Without a matching rule the whole amount stays on the
// item's own project.
func Allocate(li *domain.LineItem, month int, amount decimal.Decimal, rules []*domain.AllocationRule, class domain.CostClass) []Share {
	rule := Select(rules, li.CanonicalCode, month, class)
	if rule == nil {
		return []Share{{ProjectID: li.ProjectID, Amount: amount}}
	}
	shares := Split(amount, rule.Targets)
	sort.Slice(shares, func(i, j int) bool { return shares[i].ProjectID < shares[j].ProjectID })
	return shares
}
