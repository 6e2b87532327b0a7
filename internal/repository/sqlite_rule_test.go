package repository

import (
	"context"
	"testing"

	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func targetProjects(t *testing.T, projects *SQLiteProjectRepo, ctx context.Context, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		p := testutil.NewTestProject("Target")
		require.NoError(t, projects.Create(ctx, p))
		ids[i] = p.ID
	}
	return ids
}

func TestRuleRepo_InsertAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	rules := NewSQLiteRuleRepo(database)
	ctx := context.Background()

	ids := targetProjects(t, projects, ctx, 2)
	rule := testutil.NewTestRule("SW-LIC",
		domain.AllocationTarget{ProjectID: ids[0], Percent: 60},
		domain.AllocationTarget{ProjectID: ids[1], Percent: 40},
	)
	rule.Priority = 5
	require.NoError(t, rules.Upsert(ctx, rule, 0))
	assert.Equal(t, 1, rule.Version)

	got, err := rules.GetByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, "SW-LIC", got.CanonicalCode)
	assert.Equal(t, 5, got.Priority)
	assert.Equal(t, 1, got.Version)
	require.Len(t, got.Targets, 2)
}

func TestRuleRepo_Upsert_VersionGuard(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	rules := NewSQLiteRuleRepo(database)
	ctx := context.Background()

	ids := targetProjects(t, projects, ctx, 3)
	rule := testutil.NewTestRule("SERVICES-NOC",
		domain.AllocationTarget{ProjectID: ids[0], Percent: 100},
	)
	require.NoError(t, rules.Upsert(ctx, rule, 0))

	// Replace targets under the version we hold.
	rule.Targets = []domain.AllocationTarget{
		{ProjectID: ids[1], Percent: 50},
		{ProjectID: ids[2], Percent: 50},
	}
	require.NoError(t, rules.Upsert(ctx, rule, 1))
	assert.Equal(t, 2, rule.Version)

	got, err := rules.GetByID(ctx, rule.ID)
	require.NoError(t, err)
	require.Len(t, got.Targets, 2)
	assert.Equal(t, 2, got.Version)

	// A writer still holding version 1 must conflict.
	stale := *got
	err = rules.Upsert(ctx, &stale, 1)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestRuleRepo_List(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	rules := NewSQLiteRuleRepo(database)
	ctx := context.Background()

	ids := targetProjects(t, projects, ctx, 1)

	low := testutil.NewTestRule("SW-LIC", domain.AllocationTarget{ProjectID: ids[0], Percent: 100})
	low.Priority = 1
	high := testutil.NewTestRule("SW-LIC", domain.AllocationTarget{ProjectID: ids[0], Percent: 100})
	high.Priority = 9
	inactive := testutil.NewTestRule("SW-LIC", domain.AllocationTarget{ProjectID: ids[0], Percent: 100})
	inactive.Active = false

	require.NoError(t, rules.Upsert(ctx, low, 0))
	require.NoError(t, rules.Upsert(ctx, high, 0))
	require.NoError(t, rules.Upsert(ctx, inactive, 0))

	active, err := rules.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, high.ID, active[0].ID, "highest priority first")

	all, err := rules.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRuleRepo_TargetPercentConstraint(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	rules := NewSQLiteRuleRepo(database)
	ctx := context.Background()

	ids := targetProjects(t, projects, ctx, 1)
	rule := testutil.NewTestRule("SW-LIC", domain.AllocationTarget{ProjectID: ids[0], Percent: 150})
	err := rules.Upsert(ctx, rule, 0)
	require.Error(t, err, "percent outside 1..100 fails the check constraint")
}
