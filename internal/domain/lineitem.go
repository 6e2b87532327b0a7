package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItem is a dated, costed unit derived from exactly one baseline
// estimate entry. Line items are created only by materialization and are
// immutable afterwards; a revised baseline produces a fresh, disjoint set.
type LineItem struct {
	ID            string
	ProjectID     string
	BaselineID    string
	CanonicalCode string
	Description   string

	// UnitCost already includes any labor burden multiplier.
	UnitCost decimal.Decimal
	Quantity decimal.Decimal

	Recurring  bool
	StartMonth int
	EndMonth   int
}

// LineItemID composes the deterministic identifier for the seq-th entry
// (1-based) of a canonical code within a baseline. Re-materializing the same
// baseline content yields identical identifiers.
func LineItemID(canonicalCode, baselineID string, seq int) string {
	return fmt.Sprintf("%s#%s#%03d", canonicalCode, baselineID, seq)
}

// MonthlyAmount is the planned amount the item contributes to one month it
// covers: unit cost times quantity.
func (li *LineItem) MonthlyAmount() decimal.Decimal {
	return li.UnitCost.Mul(li.Quantity)
}

// ActiveMonths clamps the item's window to the requested range. It returns
// ok=false when the windows do not overlap; that contributes zero cells and
// is not an error.
func (li *LineItem) ActiveMonths(r MonthRange) (MonthRange, bool) {
	if !li.Recurring {
		if r.Contains(li.StartMonth) {
			return MonthRange{Start: li.StartMonth, End: li.StartMonth}, true
		}
		return MonthRange{}, false
	}
	start := max(li.StartMonth, r.Start)
	end := min(li.EndMonth, r.End)
	if start > end {
		return MonthRange{}, false
	}
	return MonthRange{Start: start, End: end}, true
}
