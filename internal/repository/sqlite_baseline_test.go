package repository

import (
	"context"
	"testing"

	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaselineRepo_RoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	baselines := NewSQLiteBaselineRepo(database)
	ctx := context.Background()

	proj := testutil.NewTestProject("Network refresh")
	require.NoError(t, projects.Create(ctx, proj))

	b := testutil.NewTestBaseline(proj.ID,
		testutil.WithLabor(
			testutil.RecurringEntry("LABOR-ENG", "1000.00", 1, 6),
			testutil.RecurringEntry("mod_sdm", "800.00", 1, 6),
		),
		testutil.WithNonLabor(
			testutil.OneTimeEntry("HW-EQUIP", "2500.00", 2),
		),
	)
	b.Assumptions = []string{"two engineers", "hardware lands in month 2"}
	require.NoError(t, baselines.Create(ctx, b))

	got, err := baselines.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, proj.ID, got.ProjectID)
	assert.Equal(t, domain.BaselineDraft, got.Status)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, []string{"two engineers", "hardware lands in month 2"}, got.Assumptions)

	require.Len(t, got.LaborEstimates, 2)
	assert.Equal(t, "LABOR-ENG", got.LaborEstimates[0].Category)
	assert.Equal(t, "mod_sdm", got.LaborEstimates[1].Category, "raw identifiers survive until materialization")
	assert.True(t, got.LaborEstimates[0].UnitCost.Equal(testutil.MustDec("1000.00")))

	require.Len(t, got.NonLaborEstimates, 1)
	assert.True(t, got.NonLaborEstimates[0].OneTime)
}

func TestBaselineRepo_GetMissing(t *testing.T) {
	database := testutil.NewTestDB(t)
	baselines := NewSQLiteBaselineRepo(database)

	_, err := baselines.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBaselineRepo_UpdateState_CAS(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	baselines := NewSQLiteBaselineRepo(database)
	ctx := context.Background()

	proj := testutil.NewTestProject("CAS project")
	require.NoError(t, projects.Create(ctx, proj))

	b := testutil.NewTestBaseline(proj.ID)
	require.NoError(t, baselines.Create(ctx, b))

	// Legitimate transition from the version we read.
	require.NoError(t, b.Transition(domain.BaselineSubmitted, "estimator@example.com", 1))
	require.NoError(t, baselines.UpdateState(ctx, b, 1))

	// A second writer holding the stale version must lose.
	stale := *b
	stale.Version = 3
	err := baselines.UpdateState(ctx, &stale, 1)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	got, err := baselines.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BaselineSubmitted, got.Status)
	assert.Equal(t, 2, got.Version)
}

func TestBaselineRepo_ListByProject(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	baselines := NewSQLiteBaselineRepo(database)
	ctx := context.Background()

	proj := testutil.NewTestProject("Multi baseline")
	require.NoError(t, projects.Create(ctx, proj))

	b1 := testutil.NewTestBaseline(proj.ID)
	b2 := testutil.NewTestBaseline(proj.ID)
	require.NoError(t, baselines.Create(ctx, b1))
	require.NoError(t, baselines.Create(ctx, b2))

	list, err := baselines.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, b := range list {
		assert.NotEmpty(t, b.LaborEstimates, "estimates load with the baseline")
	}
}
