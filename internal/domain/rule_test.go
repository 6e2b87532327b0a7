package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRule() *AllocationRule {
	return &AllocationRule{
		ID:            "rule-1",
		CanonicalCode: "SERVICES-NOC",
		Targets: []AllocationTarget{
			{ProjectID: "p1", Percent: 60},
			{ProjectID: "p2", Percent: 40},
		},
		Active: true,
	}
}

func TestAllocationRule_Validate(t *testing.T) {
	require.NoError(t, validRule().Validate())

	cases := []struct {
		name   string
		mutate func(*AllocationRule)
	}{
		{"weights under 100", func(r *AllocationRule) { r.Targets[0].Percent = 50 }},
		{"weights over 100", func(r *AllocationRule) { r.Targets[1].Percent = 50 }},
		{"no targets", func(r *AllocationRule) { r.Targets = nil }},
		{"duplicate target", func(r *AllocationRule) { r.Targets[1].ProjectID = "p1" }},
		{"zero weight", func(r *AllocationRule) { r.Targets[0].Percent = 0; r.Targets[1].Percent = 100 }},
		{"missing code", func(r *AllocationRule) { r.CanonicalCode = "" }},
		{"inverted months", func(r *AllocationRule) { r.StartMonth = 6; r.EndMonth = 3 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validRule()
			tc.mutate(r)
			err := r.Validate()
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
		})
	}
}

func TestAllocationRule_AppliesTo(t *testing.T) {
	r := validRule()
	r.StartMonth = 3
	r.EndMonth = 9
	r.CostClass = CostOperating

	assert.True(t, r.AppliesTo("SERVICES-NOC", 3, CostOperating))
	assert.True(t, r.AppliesTo("SERVICES-NOC", 9, CostOperating))
	assert.False(t, r.AppliesTo("SERVICES-NOC", 2, CostOperating), "before window")
	assert.False(t, r.AppliesTo("SERVICES-NOC", 10, CostOperating), "after window")
	assert.False(t, r.AppliesTo("LABOR-ENG", 5, CostOperating), "other code")
	assert.False(t, r.AppliesTo("SERVICES-NOC", 5, CostCapital), "other class")

	r.Active = false
	assert.False(t, r.AppliesTo("SERVICES-NOC", 5, CostOperating), "inactive rule")

	open := validRule()
	assert.True(t, open.AppliesTo("SERVICES-NOC", 1, CostCapital), "open-ended rule matches any month/class")
}

func TestAdjustment_Validate(t *testing.T) {
	valid := &Adjustment{
		ProjectID:      "p1",
		Type:           AdjustmentIncrease,
		Amount:         decimal.NewFromInt(5000),
		EffectiveMonth: 4,
		Policy:         DistributeProRataFwd,
		Justification:  "scope extension",
	}
	require.NoError(t, valid.Validate())

	reassign := *valid
	reassign.Type = AdjustmentReassignment
	err := reassign.Validate()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "reassignment without target must fail")
	reassign.TargetProjectID = "p2"
	require.NoError(t, reassign.Validate())

	negative := *valid
	negative.Amount = decimal.NewFromInt(-10)
	require.Error(t, negative.Validate())

	badPolicy := *valid
	badPolicy.Policy = "spread_evenly"
	require.Error(t, badPolicy.Validate())
}

func TestAdjustment_SignedAmount(t *testing.T) {
	a := &Adjustment{Type: AdjustmentIncrease, Amount: decimal.NewFromInt(100)}
	assert.True(t, a.SignedAmount().Equal(decimal.NewFromInt(100)))

	a.Type = AdjustmentDecrease
	assert.True(t, a.SignedAmount().Equal(decimal.NewFromInt(-100)))

	a.Type = AdjustmentReassignment
	assert.True(t, a.SignedAmount().Equal(decimal.NewFromInt(-100)))
}

func TestLineItem_ActiveMonths(t *testing.T) {
	recurring := &LineItem{Recurring: true, StartMonth: 2, EndMonth: 8}

	clamped, ok := recurring.ActiveMonths(MonthRange{Start: 4, End: 12})
	require.True(t, ok)
	assert.Equal(t, MonthRange{Start: 4, End: 8}, clamped)

	_, ok = recurring.ActiveMonths(MonthRange{Start: 9, End: 12})
	assert.False(t, ok, "window fully outside range contributes zero cells")

	oneTime := &LineItem{Recurring: false, StartMonth: 5}
	single, ok := oneTime.ActiveMonths(MonthRange{Start: 1, End: 12})
	require.True(t, ok)
	assert.Equal(t, MonthRange{Start: 5, End: 5}, single)

	_, ok = oneTime.ActiveMonths(MonthRange{Start: 6, End: 12})
	assert.False(t, ok)
}

func TestLineItemID_Deterministic(t *testing.T) {
	assert.Equal(t, "LABOR-ENG#bl-1#001", LineItemID("LABOR-ENG", "bl-1", 1))
	assert.Equal(t, "LABOR-ENG#bl-1#012", LineItemID("LABOR-ENG", "bl-1", 12))
}

func TestProject_ValidateCode(t *testing.T) {
	p := &Project{Code: "NET-MX01"}
	require.NoError(t, p.ValidateCode())

	for _, bad := range []string{"", "net-mx01", "NETMX01", "N-1", "TOOLONGCODE-X"} {
		p.Code = bad
		assert.Error(t, p.ValidateCode(), "code %q should be rejected", bad)
	}
}
