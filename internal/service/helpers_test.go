package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/forecast"
	"github.com/dortega/finz/internal/repository"
	"github.com/dortega/finz/internal/taxonomy"
	"github.com/dortega/finz/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testEnv wires every repo and service over one in-memory database, the way
// the CLI wires them at startup.
type testEnv struct {
	db      *sql.DB
	catalog *taxonomy.Catalog
	uow     db.UnitOfWork

	projects    *repository.SQLiteProjectRepo
	baselines   *repository.SQLiteBaselineRepo
	items       *repository.SQLiteLineItemRepo
	rules       *repository.SQLiteRuleRepo
	adjustments *repository.SQLiteAdjustmentRepo
	actuals     *repository.SQLiteActualRepo
	closes      *repository.SQLiteMonthCloseRepo

	projectSvc    ProjectService
	baselineSvc   BaselineService
	forecastSvc   ForecastService
	allocationSvc AllocationService
	adjustmentSvc AdjustmentService
	actualsSvc    ActualsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	catalog := taxonomy.DefaultCatalog()
	uow := testutil.NewTestUoW(database)

	env := &testEnv{
		db:          database,
		catalog:     catalog,
		uow:         uow,
		projects:    repository.NewSQLiteProjectRepo(database),
		baselines:   repository.NewSQLiteBaselineRepo(database),
		items:       repository.NewSQLiteLineItemRepo(database),
		rules:       repository.NewSQLiteRuleRepo(database),
		adjustments: repository.NewSQLiteAdjustmentRepo(database),
		actuals:     repository.NewSQLiteActualRepo(database),
		closes:      repository.NewSQLiteMonthCloseRepo(database),
	}
	env.projectSvc = NewProjectService(env.projects)
	env.baselineSvc = NewBaselineService(env.baselines, env.projects, catalog, uow)
	env.forecastSvc = NewForecastService(env.projects, env.items, env.rules, env.adjustments,
		env.actuals, env.closes, catalog, forecast.DefaultThresholds(), uow)
	env.allocationSvc = NewAllocationService(env.rules, env.projects, catalog, uow)
	env.adjustmentSvc = NewAdjustmentService(env.adjustments, env.projects, uow)
	env.actualsSvc = NewActualsService(env.actuals, env.projects, catalog, uow)
	return env
}

// submitBaseline pushes a draft through Submit and returns it.
func submitBaseline(t *testing.T, env *testEnv, projectID string, opts ...testutil.BaselineOption) *domain.Baseline {
	t.Helper()
	b := testutil.NewTestBaseline(projectID, opts...)
	b.Status = ""
	b.Version = 0
	require.NoError(t, env.baselineSvc.Submit(context.Background(), b))
	return b
}

// acceptedBaseline runs the whole happy path: submit, materialize, accept.
// The returned baseline is the project's active baseline.
func acceptedBaseline(t *testing.T, env *testEnv, projectID string, opts ...testutil.BaselineOption) *domain.Baseline {
	t.Helper()
	ctx := context.Background()

	b := submitBaseline(t, env, projectID, opts...)
	res, err := env.baselineSvc.Materialize(ctx, b.ID, b.Version, "mat-"+b.ID, "estimator@example.com")
	require.NoError(t, err)
	require.NoError(t, env.baselineSvc.Accept(ctx, projectID, b.ID, res.Baseline.Version, "controller@example.com"))

	got, err := env.baselineSvc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	return got
}
