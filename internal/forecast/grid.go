// Package forecast derives planned/forecast/actual grids from materialized
// line items, allocation rules, adjustment deltas, and the actuals feed.
// Everything here is a pure function over immutable inputs; persistence and
// baseline filtering are the caller's concern.
package forecast

import (
	"sort"

	"github.com/dortega/finz/internal/allocation"
	"github.com/dortega/finz/internal/domain"
	"github.com/shopspring/decimal"
)

// Input carries everything the grid builder needs. Items must already be
// restricted to the currently active baseline; the builder never re-derives
// that filter.
type Input struct {
	Range   domain.MonthRange
	Items   []*domain.LineItem
	Rules   []*domain.AllocationRule
	Actuals []domain.Actual

	// Classes maps canonical codes to their cost class for allocation
	// rule filtering. Missing codes match rules without a class filter.
	Classes map[string]domain.CostClass
}

// BuildGrid expands line items into per-month cells, applies allocation
// rules to shared costs, and overlays actuals. A line item whose window
// falls outside the range contributes zero cells. Missing actuals read as
// an explicit zero, never imputed from forecast.
func BuildGrid(in Input) ([]domain.ForecastCell, error) {
	if err := in.Range.Validate(); err != nil {
		return nil, err
	}

	var cells []domain.ForecastCell
	for _, li := range in.Items {
		window, ok := li.ActiveMonths(in.Range)
		if !ok {
			continue
		}
		amount := li.MonthlyAmount()
		class := in.Classes[li.CanonicalCode]
		for m := window.Start; m <= window.End; m++ {
			for _, share := range allocation.Allocate(li, m, amount, in.Rules, class) {
				cells = append(cells, domain.ForecastCell{
					ProjectID:     share.ProjectID,
					LineItemID:    li.ID,
					CanonicalCode: li.CanonicalCode,
					Month:         m,
					Planned:       share.Amount,
					Forecast:      share.Amount,
				})
			}
		}
	}

	overlayActuals(cells, in.Actuals)

	sort.Slice(cells, func(i, j int) bool {
		a, b := cells[i], cells[j]
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if a.ProjectID != b.ProjectID {
			return a.ProjectID < b.ProjectID
		}
		return a.LineItemID < b.LineItemID
	})
	return cells, nil
}

// overlayActuals assigns each fed actual to the first cell of its
// (project, code, month) group so that group sums reflect the feed exactly.
// Cells without a matching actual keep an explicit zero.
func overlayActuals(cells []domain.ForecastCell, actuals []domain.Actual) {
	if len(actuals) == 0 {
		return
	}
	type key struct {
		project, code string
		month         int
	}
	fed := make(map[key]decimal.Decimal, len(actuals))
	for _, a := range actuals {
		k := key{a.ProjectID, a.CanonicalCode, a.Month}
		fed[k] = fed[k].Add(a.Amount)
	}

	firstOf := make(map[key]int, len(cells))
	for i := range cells {
		k := key{cells[i].ProjectID, cells[i].CanonicalCode, cells[i].Month}
		if prior, seen := firstOf[k]; !seen || cells[i].LineItemID < cells[prior].LineItemID {
			firstOf[k] = i
		}
	}
	for k, amount := range fed {
		if i, ok := firstOf[k]; ok {
			cells[i].Actual = amount
		}
	}
}

// MonthCategorySummary is one portfolio row: a month and canonical category
// aggregated across the selected projects.
type MonthCategorySummary struct {
	Month         int
	CanonicalCode string
	Planned       decimal.Decimal
	Forecast      decimal.Decimal
	Actual        decimal.Decimal
}

// Summarize groups cells by (month, canonical code) across projects for
// portfolio views. Detail cells stay available for drill-down; this only
// aggregates.
func Summarize(cells []domain.ForecastCell) []MonthCategorySummary {
	type key struct {
		month int
		code  string
	}
	agg := make(map[key]*MonthCategorySummary)
	for _, c := range cells {
		k := key{c.Month, c.CanonicalCode}
		s, ok := agg[k]
		if !ok {
			s = &MonthCategorySummary{Month: c.Month, CanonicalCode: c.CanonicalCode}
			agg[k] = s
		}
		s.Planned = s.Planned.Add(c.Planned)
		s.Forecast = s.Forecast.Add(c.Forecast)
		s.Actual = s.Actual.Add(c.Actual)
	}

	out := make([]MonthCategorySummary, 0, len(agg))
	for _, s := range agg {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].CanonicalCode < out[j].CanonicalCode
	})
	return out
}

// MonthTotal is the effective plan for one project month: the original
// planned total plus adjustment deltas. Keeping the two terms separate
// preserves lineage; EffectivePlanned is always their sum.
type MonthTotal struct {
	ProjectID         string
	Month             int
	Planned           decimal.Decimal
	AdjustmentDelta   decimal.Decimal
	EffectivePlanned  decimal.Decimal
	Forecast          decimal.Decimal
	Actual            decimal.Decimal
}

// FoldDeltas computes per-project-month totals from detail cells and
// adjustment deltas. Deltas never rewrite cells; they are additive terms
// folded in here, at read time.
func FoldDeltas(cells []domain.ForecastCell, deltas []domain.DeltaCell, r domain.MonthRange) []MonthTotal {
	type key struct {
		project string
		month   int
	}
	agg := make(map[key]*MonthTotal)
	get := func(project string, month int) *MonthTotal {
		k := key{project, month}
		t, ok := agg[k]
		if !ok {
			t = &MonthTotal{ProjectID: project, Month: month}
			agg[k] = t
		}
		return t
	}

	for _, c := range cells {
		t := get(c.ProjectID, c.Month)
		t.Planned = t.Planned.Add(c.Planned)
		t.Forecast = t.Forecast.Add(c.Forecast)
		t.Actual = t.Actual.Add(c.Actual)
	}
	for _, d := range deltas {
		if !r.Contains(d.Month) {
			continue
		}
		t := get(d.ProjectID, d.Month)
		t.AdjustmentDelta = t.AdjustmentDelta.Add(d.Delta)
	}

	out := make([]MonthTotal, 0, len(agg))
	for _, t := range agg {
		t.EffectivePlanned = t.Planned.Add(t.AdjustmentDelta)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProjectID != out[j].ProjectID {
			return out[i].ProjectID < out[j].ProjectID
		}
		return out[i].Month < out[j].Month
	})
	return out
}
