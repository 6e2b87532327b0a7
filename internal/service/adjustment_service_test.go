package service

import (
	"context"
	"testing"

	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAdjustment_ProRataForwardConserves(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := testutil.NewTestProject("Spread")
	require.NoError(t, env.projectSvc.Create(ctx, p))

	res, err := env.adjustmentSvc.Create(ctx, &domain.Adjustment{
		ProjectID:      p.ID,
		Type:           domain.AdjustmentIncrease,
		Amount:         testutil.MustDec("100.00"),
		EffectiveMonth: 4,
		Policy:         domain.DistributeProRataFwd,
		Justification:  "scope growth signed off",
		CreatedBy:      "pm@example.com",
	}, domain.MonthRange{Start: 1, End: 6}, "k1")
	require.NoError(t, err)

	// Months 4..6: two cent-floored shares and the remainder on the last.
	require.Len(t, res.Deltas, 3)
	total := decimal.Zero
	for _, d := range res.Deltas {
		total = total.Add(d.Delta)
	}
	assert.True(t, total.Equal(testutil.MustDec("100.00")), "got %s", total)
	assert.Equal(t, "33.33", res.Deltas[0].Delta.StringFixed(2))
	assert.Equal(t, "33.34", res.Deltas[2].Delta.StringFixed(2))
}

func TestCreateAdjustment_ReassignmentMirrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	origin := testutil.NewTestProject("Origin")
	target := testutil.NewTestProject("Target")
	require.NoError(t, env.projectSvc.Create(ctx, origin))
	require.NoError(t, env.projectSvc.Create(ctx, target))

	res, err := env.adjustmentSvc.Create(ctx, &domain.Adjustment{
		ProjectID:       origin.ID,
		Type:            domain.AdjustmentReassignment,
		Amount:          testutil.MustDec("600.00"),
		EffectiveMonth:  2,
		Policy:          domain.DistributeSingleMonth,
		TargetProjectID: target.ID,
		Justification:   "engineer moved to sister project",
		CreatedBy:       "pmo@example.com",
	}, domain.MonthRange{Start: 1, End: 6}, "k2")
	require.NoError(t, err)

	require.Len(t, res.Deltas, 2)
	perProject := make(map[string]decimal.Decimal)
	for _, d := range res.Deltas {
		assert.Equal(t, 2, d.Month)
		perProject[d.ProjectID] = d.Delta
	}
	assert.Equal(t, "-600.00", perProject[origin.ID].StringFixed(2), "cost leaves the origin")
	assert.Equal(t, "600.00", perProject[target.ID].StringFixed(2), "and lands on the target")
}

func TestCreateAdjustment_ReassignmentToSelfRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := testutil.NewTestProject("Self")
	require.NoError(t, env.projectSvc.Create(ctx, p))

	_, err := env.adjustmentSvc.Create(ctx, &domain.Adjustment{
		ProjectID:       p.ID,
		Type:            domain.AdjustmentReassignment,
		Amount:          testutil.MustDec("100.00"),
		EffectiveMonth:  1,
		Policy:          domain.DistributeSingleMonth,
		TargetProjectID: p.ID,
		Justification:   "x",
		CreatedBy:       "pmo@example.com",
	}, domain.MonthRange{Start: 1, End: 6}, "k3")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCreateAdjustment_IdempotentReplay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := testutil.NewTestProject("Retry")
	require.NoError(t, env.projectSvc.Create(ctx, p))

	adj := func() *domain.Adjustment {
		return &domain.Adjustment{
			ProjectID:      p.ID,
			Type:           domain.AdjustmentDecrease,
			Amount:         testutil.MustDec("250.00"),
			EffectiveMonth: 2,
			Policy:         domain.DistributeSingleMonth,
			Justification:  "descoped field visits",
			CreatedBy:      "pm@example.com",
		}
	}
	horizon := domain.MonthRange{Start: 1, End: 6}

	first, err := env.adjustmentSvc.Create(ctx, adj(), horizon, "same-key")
	require.NoError(t, err)
	require.False(t, first.Replayed)

	second, err := env.adjustmentSvc.Create(ctx, adj(), horizon, "same-key")
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Adjustment.ID, second.Adjustment.ID)

	stored, err := env.adjustmentSvc.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "the retry must not double-book")

	// Same key with different content is a hard conflict.
	other := adj()
	other.Amount = testutil.MustDec("999.00")
	_, err = env.adjustmentSvc.Create(ctx, other, horizon, "same-key")
	require.ErrorIs(t, err, domain.ErrIdempotencyConflict)
}

func TestCreateAdjustment_PastHorizonRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := testutil.NewTestProject("Horizon")
	require.NoError(t, env.projectSvc.Create(ctx, p))

	_, err := env.adjustmentSvc.Create(ctx, &domain.Adjustment{
		ProjectID:      p.ID,
		Type:           domain.AdjustmentIncrease,
		Amount:         testutil.MustDec("100.00"),
		EffectiveMonth: 9,
		Policy:         domain.DistributeProRataFwd,
		Justification:  "late correction",
		CreatedBy:      "pm@example.com",
	}, domain.MonthRange{Start: 1, End: 6}, "k4")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	stored, err := env.adjustmentSvc.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, stored, "an undistributable adjustment is never persisted")
}
