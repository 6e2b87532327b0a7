package allocation

import (
	"github.com/dortega/finz/internal/domain"
	"github.com/shopspring/decimal"
)

// Distribute spreads an adjustment's signed amount over months according to
// its distribution policy. The horizon is the project's forecast window.
// The monthly deltas always sum to the signed amount exactly: equal shares
// are floored to the cent and the remainder lands on the last month of the
// affected window.
func Distribute(adj *domain.Adjustment, horizon domain.MonthRange) ([]domain.DeltaCell, error) {
	if err := adj.Validate(); err != nil {
		return nil, err
	}
	if err := horizon.Validate(); err != nil {
		return nil, err
	}

	var window domain.MonthRange
	switch adj.Policy {
	case domain.DistributeSingleMonth:
		window = domain.MonthRange{Start: adj.EffectiveMonth, End: adj.EffectiveMonth}
	case domain.DistributeProRataFwd:
		if adj.EffectiveMonth > horizon.End {
			return nil, domain.NewValidationError("effectiveMonth",
				"effective month %d is past the forecast horizon %s", adj.EffectiveMonth, horizon)
		}
		start := max(adj.EffectiveMonth, horizon.Start)
		window = domain.MonthRange{Start: start, End: horizon.End}
	case domain.DistributeProRataAll:
		// Accounting correction: past months inside the horizon receive
		// their share too; closed periods are never rewritten, the delta
		// is additive at read time.
		window = horizon
	default:
		return nil, domain.NewValidationError("distributionPolicy", "unknown distribution policy %q", adj.Policy)
	}

	amount := adj.SignedAmount()
	months := window.Months()
	share := amount.Div(decimal.NewFromInt(int64(months))).RoundDown(2)

	cells := make([]domain.DeltaCell, 0, months)
	running := decimal.Zero
	for m := window.Start; m <= window.End; m++ {
		delta := share
		if m == window.End {
			delta = amount.Sub(running)
		}
		running = running.Add(delta)
		cells = append(cells, domain.DeltaCell{
			AdjustmentID: adj.ID,
			ProjectID:    adj.ProjectID,
			Month:        m,
			Delta:        delta,
		})
	}
	return cells, nil
}

// MirrorForTarget produces the receiving side of a reassignment: the same
// monthly deltas, negated, attributed to the target project.
func MirrorForTarget(cells []domain.DeltaCell, targetProjectID string) []domain.DeltaCell {
	out := make([]domain.DeltaCell, len(cells))
	for i, c := range cells {
		out[i] = domain.DeltaCell{
			AdjustmentID: c.AdjustmentID,
			ProjectID:    targetProjectID,
			Month:        c.Month,
			Delta:        c.Delta.Neg(),
		}
	}
	return out
}
