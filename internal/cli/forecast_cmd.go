package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dortega/finz/internal/domain"
	"github.com/spf13/cobra"
)

// resolveProjectSet turns a comma-separated list of codes/IDs into project
// IDs, or returns every active project when the list is empty.
func resolveProjectSet(ctx context.Context, app *App, spec string) ([]string, map[string]string, error) {
	codeOf := make(map[string]string)

	if spec == "" {
		projects, err := app.Projects.List(ctx, false)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, 0, len(projects))
		for _, p := range projects {
			ids = append(ids, p.ID)
			codeOf[p.ID] = p.Code
		}
		return ids, codeOf, nil
	}

	var ids []string
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := resolveProject(ctx, app, part)
		if err != nil {
			return nil, nil, err
		}
		p, err := app.Projects.GetByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		codeOf[id] = p.Code
	}
	return ids, codeOf, nil
}

func (app *App) monthRange(from, to int) domain.MonthRange {
	if from < 1 {
		from = 1
	}
	if to < from {
		to = from + app.HorizonMonths - 1
	}
	return domain.MonthRange{Start: from, End: to}
}

func newGridCmd(app *App) *cobra.Command {
	var projects string
	var from, to int
	var detail bool

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Show the forecast grid over a month range",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ids, codeOf, err := resolveProjectSet(ctx, app, projects)
			if err != nil {
				return err
			}
			r := app.monthRange(from, to)

			res, err := app.Forecast.Grid(ctx, ids, r)
			if err != nil {
				return err
			}

			totals := Table{
				Title:   fmt.Sprintf("Forecast %s", r),
				Headers: []string{"Project", "Month", "Planned", "Adj delta", "Effective", "Forecast", "Actual"},
			}
			for _, mt := range res.Totals {
				totals.Rows = append(totals.Rows, []string{
					codeOf[mt.ProjectID], fmt.Sprintf("%d", mt.Month),
					money(mt.Planned), money(mt.AdjustmentDelta), money(mt.EffectivePlanned),
					money(mt.Forecast), money(mt.Actual),
				})
			}
			fmt.Print(RenderTable(totals))

			if detail {
				cells := Table{
					Title:   "Detail cells",
					Headers: []string{"Project", "Line item", "Month", "Planned", "Forecast", "Actual"},
				}
				for _, c := range res.Cells {
					cells.Rows = append(cells.Rows, []string{
						codeOf[c.ProjectID], c.LineItemID, fmt.Sprintf("%d", c.Month),
						money(c.Planned), money(c.Forecast), money(c.Actual),
					})
				}
				fmt.Print(RenderTable(cells))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projects, "projects", "", "Comma-separated project codes (default: all active)")
	cmd.Flags().IntVar(&from, "from", 1, "First month")
	cmd.Flags().IntVar(&to, "to", 0, "Last month (default: configured horizon)")
	cmd.Flags().BoolVar(&detail, "detail", false, "Include per-line-item cells")

	return cmd
}

func newSummaryCmd(app *App) *cobra.Command {
	var projects string
	var from, to int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Portfolio summary by month and category",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ids, _, err := resolveProjectSet(ctx, app, projects)
			if err != nil {
				return err
			}
			r := app.monthRange(from, to)

			rows, err := app.Forecast.PortfolioSummary(ctx, ids, r)
			if err != nil {
				return err
			}

			t := Table{
				Title:   fmt.Sprintf("Portfolio %s, %d projects", r, len(ids)),
				Headers: []string{"Month", "Category", "Planned", "Forecast", "Actual"},
			}
			for _, s := range rows {
				t.Rows = append(t.Rows, []string{
					fmt.Sprintf("%d", s.Month), s.CanonicalCode,
					money(s.Planned), money(s.Forecast), money(s.Actual),
				})
			}
			fmt.Print(RenderTable(t))
			return nil
		},
	}

	cmd.Flags().StringVar(&projects, "projects", "", "Comma-separated project codes (default: all active)")
	cmd.Flags().IntVar(&from, "from", 1, "First month")
	cmd.Flags().IntVar(&to, "to", 0, "Last month (default: configured horizon)")

	return cmd
}

func newCloseCmd(app *App) *cobra.Command {
	var project, actor string
	var month int

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close one project month and classify budget health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProject(ctx, app, project)
			if err != nil {
				return err
			}
			who, err := app.actorOrDefault(actor)
			if err != nil {
				return err
			}

			res, err := app.Forecast.CloseMonth(ctx, projectID, month, who)
			if err != nil {
				return err
			}

			c := res.Close
			coverage := "n/a"
			if c.Coverage != nil {
				coverage = c.Coverage.String()
			}
			fmt.Println(RenderTitle(fmt.Sprintf("Month %d closed", c.Month)))
			fmt.Print(RenderTable(Table{Rows: [][]string{
				{"Payroll cost", money(c.PayrollCost)},
				{"Billed revenue", money(c.BilledRev)},
				{"Coverage", coverage},
				{"Health", healthLabel(c.Classification)},
			}}))
			for _, a := range res.Alerts {
				fmt.Println(paint(warnStyle, "! "+a))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().IntVar(&month, "month", 0, "Month to close (1-based)")
	cmd.Flags().StringVar(&actor, "actor", "", "Closing user")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("month")

	return cmd
}
