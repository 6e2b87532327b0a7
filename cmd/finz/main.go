package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dortega/finz/internal/cli"
	"github.com/dortega/finz/internal/config"
	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/repository"
	"github.com/dortega/finz/internal/service"
	"github.com/dortega/finz/internal/taxonomy"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dbPath := config.DBPath(cfg)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Built-in catalog plus any legacy aliases from the config overlay.
	aliases := taxonomy.DefaultAliases()
	for alias, code := range cfg.Taxonomy.Aliases {
		aliases[alias] = code
	}
	catalog, err := taxonomy.NewCatalog(taxonomy.DefaultCategories(), aliases)
	if err != nil {
		return fmt.Errorf("building category catalog: %w", err)
	}

	projectRepo := repository.NewSQLiteProjectRepo(database)
	baselineRepo := repository.NewSQLiteBaselineRepo(database)
	itemRepo := repository.NewSQLiteLineItemRepo(database)
	ruleRepo := repository.NewSQLiteRuleRepo(database)
	adjustmentRepo := repository.NewSQLiteAdjustmentRepo(database)
	actualRepo := repository.NewSQLiteActualRepo(database)
	closeRepo := repository.NewSQLiteMonthCloseRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)
	observer := service.NewLogUseCaseObserver(os.Stderr)

	app := &cli.App{
		Taxonomy:    service.NewTaxonomyService(catalog),
		Projects:    service.NewProjectService(projectRepo),
		Baselines:   service.NewBaselineService(baselineRepo, projectRepo, catalog, uow, observer),
		Forecast:    service.NewForecastService(projectRepo, itemRepo, ruleRepo, adjustmentRepo, actualRepo, closeRepo, catalog, config.ForecastThresholds(cfg), uow, observer),
		Allocations: service.NewAllocationService(ruleRepo, projectRepo, catalog, uow),
		Adjustments: service.NewAdjustmentService(adjustmentRepo, projectRepo, uow, observer),
		Actuals:     service.NewActualsService(actualRepo, projectRepo, catalog, uow, observer),

		DefaultActor:  cfg.General.Actor,
		HorizonMonths: cfg.General.HorizonMonths,
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		cli.DisableStyling()
	}

	return cli.NewRootCmd(app).Execute()
}
