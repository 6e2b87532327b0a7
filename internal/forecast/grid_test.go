package forecast

import (
	"testing"

	"github.com/dortega/finz/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sumPlanned(cells []domain.ForecastCell) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cells {
		total = total.Add(c.Planned)
	}
	return total
}

func recurringItem(id, project string, amount string, start, end int) *domain.LineItem {
	return &domain.LineItem{
		ID: id, ProjectID: project, BaselineID: "bl-1", CanonicalCode: "LABOR-ENG",
		UnitCost: mustDec(amount), Quantity: decimal.NewFromInt(1),
		Recurring: true, StartMonth: start, EndMonth: end,
	}
}

func TestBuildGrid_OneTimePlusRecurringScenario(t *testing.T) {
	// One recurring entry (1000/month, months 1-3) and one one-time entry
	// (500 at month 2): four cells totaling 3500 over months 1-3.
	items := []*domain.LineItem{
		recurringItem("LABOR-ENG#bl-1#001", "p1", "1000.00", 1, 3),
		{
			ID: "HW-EQUIP#bl-1#001", ProjectID: "p1", BaselineID: "bl-1", CanonicalCode: "HW-EQUIP",
			UnitCost: mustDec("500.00"), Quantity: decimal.NewFromInt(1),
			Recurring: false, StartMonth: 2,
		},
	}

	cells, err := BuildGrid(Input{Range: domain.MonthRange{Start: 1, End: 3}, Items: items})
	require.NoError(t, err)
	require.Len(t, cells, 4)
	assert.True(t, sumPlanned(cells).Equal(mustDec("3500.00")), "got %s", sumPlanned(cells))

	var oneTime *domain.ForecastCell
	for i := range cells {
		if cells[i].CanonicalCode == "HW-EQUIP" {
			oneTime = &cells[i]
		}
	}
	require.NotNil(t, oneTime)
	assert.Equal(t, 2, oneTime.Month)
	assert.True(t, oneTime.Planned.Equal(mustDec("500.00")))
}

func TestBuildGrid_WindowOutsideRange(t *testing.T) {
	items := []*domain.LineItem{recurringItem("LABOR-ENG#bl-1#001", "p1", "1000.00", 7, 12)}

	cells, err := BuildGrid(Input{Range: domain.MonthRange{Start: 1, End: 6}, Items: items})
	require.NoError(t, err)
	assert.Empty(t, cells, "item outside the range contributes zero cells, not an error")
}

func TestBuildGrid_ClampsToRange(t *testing.T) {
	items := []*domain.LineItem{recurringItem("LABOR-ENG#bl-1#001", "p1", "200.00", 1, 12)}

	cells, err := BuildGrid(Input{Range: domain.MonthRange{Start: 5, End: 7}, Items: items})
	require.NoError(t, err)
	require.Len(t, cells, 3)
	assert.Equal(t, 5, cells[0].Month)
	assert.Equal(t, 7, cells[2].Month)
}

func TestBuildGrid_AllocationExpandsSharedCost(t *testing.T) {
	shared := &domain.LineItem{
		ID: "SERVICES-NOC#bl-9#001", ProjectID: "p-central", BaselineID: "bl-9",
		CanonicalCode: "SERVICES-NOC",
		UnitCost:      mustDec("100.00"), Quantity: decimal.NewFromInt(1),
		Recurring: true, StartMonth: 1, EndMonth: 1,
	}
	rule := &domain.AllocationRule{
		ID: "r1", CanonicalCode: "SERVICES-NOC", Active: true,
		Targets: []domain.AllocationTarget{
			{ProjectID: "pa", Percent: 33},
			{ProjectID: "pb", Percent: 33},
			{ProjectID: "pc", Percent: 34},
		},
	}

	cells, err := BuildGrid(Input{
		Range: domain.MonthRange{Start: 1, End: 1},
		Items: []*domain.LineItem{shared},
		Rules: []*domain.AllocationRule{rule},
	})
	require.NoError(t, err)
	require.Len(t, cells, 3, "shared cost expands to one cell per target")
	assert.True(t, sumPlanned(cells).Equal(mustDec("100.00")), "allocation conserves the amount")
	for _, c := range cells {
		assert.NotEqual(t, "p-central", c.ProjectID)
		assert.Equal(t, "SERVICES-NOC#bl-9#001", c.LineItemID, "lineage back to the shared item survives")
	}
}

func TestBuildGrid_ActualsOverlay(t *testing.T) {
	items := []*domain.LineItem{recurringItem("LABOR-ENG#bl-1#001", "p1", "1000.00", 1, 2)}
	actuals := []domain.Actual{
		{ProjectID: "p1", CanonicalCode: "LABOR-ENG", Month: 1, Amount: mustDec("980.55"), Source: domain.SourcePayroll},
	}

	cells, err := BuildGrid(Input{Range: domain.MonthRange{Start: 1, End: 2}, Items: items, Actuals: actuals})
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.True(t, cells[0].Actual.Equal(mustDec("980.55")))
	assert.True(t, cells[1].Actual.IsZero(), "missing actual reads as explicit zero, never imputed")
}

func TestBuildGrid_ActualForUnmatchedCellIgnored(t *testing.T) {
	items := []*domain.LineItem{recurringItem("LABOR-ENG#bl-1#001", "p1", "1000.00", 1, 1)}
	actuals := []domain.Actual{
		{ProjectID: "p1", CanonicalCode: "TRAVEL-AIR", Month: 1, Amount: mustDec("50.00")},
	}

	cells, err := BuildGrid(Input{Range: domain.MonthRange{Start: 1, End: 1}, Items: items, Actuals: actuals})
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.True(t, cells[0].Actual.IsZero())
}

func TestSummarize_GroupsByMonthAndCategory(t *testing.T) {
	cells := []domain.ForecastCell{
		{ProjectID: "p1", CanonicalCode: "LABOR-ENG", Month: 1, Planned: mustDec("100.00"), Forecast: mustDec("100.00")},
		{ProjectID: "p2", CanonicalCode: "LABOR-ENG", Month: 1, Planned: mustDec("200.00"), Forecast: mustDec("200.00")},
		{ProjectID: "p1", CanonicalCode: "SW-LIC", Month: 2, Planned: mustDec("50.00"), Forecast: mustDec("50.00")},
	}

	rows := Summarize(cells)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Month)
	assert.Equal(t, "LABOR-ENG", rows[0].CanonicalCode)
	assert.True(t, rows[0].Planned.Equal(mustDec("300.00")), "cross-project aggregation")
	assert.Equal(t, "SW-LIC", rows[1].CanonicalCode)
}

func TestFoldDeltas_EffectivePlanPreservesLineage(t *testing.T) {
	cells := []domain.ForecastCell{
		{ProjectID: "p1", CanonicalCode: "LABOR-ENG", Month: 3, Planned: mustDec("1000.00"), Forecast: mustDec("1000.00")},
	}
	deltas := []domain.DeltaCell{
		{AdjustmentID: "adj-1", ProjectID: "p1", Month: 3, Delta: mustDec("250.00")},
		{AdjustmentID: "adj-1", ProjectID: "p1", Month: 99, Delta: mustDec("9.99")}, // outside range
	}

	totals := FoldDeltas(cells, deltas, domain.MonthRange{Start: 1, End: 12})
	require.Len(t, totals, 1)
	assert.True(t, totals[0].Planned.Equal(mustDec("1000.00")), "original plan untouched")
	assert.True(t, totals[0].AdjustmentDelta.Equal(mustDec("250.00")))
	assert.True(t, totals[0].EffectivePlanned.Equal(mustDec("1250.00")), "plan + adjustment = effective plan")
}
