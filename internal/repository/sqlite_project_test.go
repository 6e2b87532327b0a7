package repository

import (
	"context"
	"testing"

	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepo_RoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	p := testutil.NewTestProject("Core migration", testutil.WithMonthlyBudget("12500.00"))
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Code, got.Code)
	assert.Equal(t, "Core migration", got.Name)
	assert.Equal(t, domain.ProjectActive, got.Status)
	require.NotNil(t, got.MonthlyBudget)
	assert.True(t, got.MonthlyBudget.Equal(testutil.MustDec("12500.00")))
	assert.Nil(t, got.ActiveBaselineID)
	assert.True(t, got.ContractValue.Equal(p.ContractValue))
}

func TestProjectRepo_GetByCode_CaseInsensitive(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	p := testutil.NewTestProject("Lookup")
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByCode(ctx, p.Code)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = repo.GetByCode(ctx, "TST-XXXX")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectRepo_DuplicateCode(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	p1 := testutil.NewTestProject("First")
	require.NoError(t, repo.Create(ctx, p1))

	p2 := testutil.NewTestProject("Second")
	p2.Code = p1.Code
	err := repo.Create(ctx, p2)
	require.Error(t, err, "code column carries a unique constraint")
}

func TestProjectRepo_List_ExcludesArchived(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	active := testutil.NewTestProject("Active")
	archived := testutil.NewTestProject("Archived", testutil.WithProjectStatus(domain.ProjectArchived))
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, archived))

	list, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProjectRepo_SetActiveBaseline(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	baselines := NewSQLiteBaselineRepo(database)
	ctx := context.Background()

	p := testutil.NewTestProject("Baseline pointer")
	require.NoError(t, projects.Create(ctx, p))
	b := testutil.NewTestBaseline(p.ID)
	require.NoError(t, baselines.Create(ctx, b))

	require.NoError(t, projects.SetActiveBaseline(ctx, p.ID, b.ID))

	got, err := projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ActiveBaselineID)
	assert.Equal(t, b.ID, *got.ActiveBaselineID)

	err = projects.SetActiveBaseline(ctx, "missing", b.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
