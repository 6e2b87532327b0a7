package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dortega/finz/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands,
// plus the defaults resolved from config.
type App struct {
	Taxonomy    service.TaxonomyService
	Projects    service.ProjectService
	Baselines   service.BaselineService
	Forecast    service.ForecastService
	Allocations service.AllocationService
	Adjustments service.AdjustmentService
	Actuals     service.ActualsService

	// DefaultActor stamps writes when --actor is not given.
	DefaultActor string
	// HorizonMonths is the default forecast window.
	HorizonMonths int
}

// NewRootCmd creates the top-level "finz" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "finz",
		Short:         "Project cost baselines, forecasts, and monthly closes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newBaselineCmd(app),
		newGridCmd(app),
		newSummaryCmd(app),
		newCloseCmd(app),
		newRuleCmd(app),
		newAdjustCmd(app),
		newIngestCmd(app),
		newCategoriesCmd(app),
		newConfigCmd(),
	)

	return root
}

// actorOrDefault picks the explicit --actor value or falls back to config.
func (app *App) actorOrDefault(actor string) (string, error) {
	if actor != "" {
		return actor, nil
	}
	if app.DefaultActor != "" {
		return app.DefaultActor, nil
	}
	return "", fmt.Errorf("no actor given; pass --actor or set general.actor in the config file")
}

// resolveProject accepts a project code, a full ID, or an unambiguous ID
// prefix and returns the project ID.
func resolveProject(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("project is required")
	}

	if p, err := app.Projects.GetByCode(ctx, input); err == nil {
		return p.ID, nil
	}

	projects, err := app.Projects.List(ctx, true)
	if err != nil {
		return "", err
	}

	for _, p := range projects {
		if p.ID == input {
			return p.ID, nil
		}
	}

	var matches []string
	for _, p := range projects {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project %q is ambiguous (%d matches)", input, len(matches))
	}
}
