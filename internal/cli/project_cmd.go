package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dortega/finz/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectBudgetCmd(app),
		newProjectArchiveCmd(app),
	)

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var code, name, client, currency, start, end, contract, budget string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("invalid start date %q: %w", start, err)
			}

			p := &domain.Project{
				Code:      strings.ToUpper(code),
				Name:      name,
				Client:    client,
				Currency:  currency,
				StartDate: startDate,
			}

			if contract != "" {
				v, err := decimal.NewFromString(contract)
				if err != nil {
					return fmt.Errorf("invalid contract value %q: %w", contract, err)
				}
				p.ContractValue = v
			}
			if budget != "" {
				v, err := decimal.NewFromString(budget)
				if err != nil {
					return fmt.Errorf("invalid monthly budget %q: %w", budget, err)
				}
				p.MonthlyBudget = &v
			}
			if end != "" {
				endDate, err := time.Parse("2006-01-02", end)
				if err != nil {
					return fmt.Errorf("invalid end date %q: %w", end, err)
				}
				p.EndDate = &endDate
			}

			if err := app.Projects.Create(context.Background(), p); err != nil {
				return err
			}

			fmt.Printf("Created project %s [%s]\n", p.Name, p.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Project code (e.g. NET-MX01)")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&client, "client", "", "Client name")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code (default USD)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&contract, "contract", "", "Contract value")
	cmd.Flags().StringVar(&budget, "budget", "", "Monthly budget")
	cmd.MarkFlagRequired("code")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("start")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(context.Background(), all)
			if err != nil {
				return err
			}

			t := Table{
				Headers: []string{"Code", "Name", "Client", "Status", "Budget/mo", "Baseline"},
			}
			for _, p := range projects {
				budget := "-"
				if p.MonthlyBudget != nil {
					budget = money(*p.MonthlyBudget)
				}
				baseline := "none"
				if p.ActiveBaselineID != nil {
					baseline = shortID(*p.ActiveBaselineID)
				}
				t.Rows = append(t.Rows, []string{
					p.Code, p.Name, p.Client, string(p.Status), budget, baseline,
				})
			}
			fmt.Print(RenderTable(t))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived projects")
	return cmd
}

func newProjectShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <project>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, id)
			if err != nil {
				return err
			}

			fmt.Println(RenderTitle(fmt.Sprintf("%s  %s", p.Code, p.Name)))
			rows := [][]string{
				{"ID", p.ID},
				{"Client", p.Client},
				{"Currency", p.Currency},
				{"Contract", money(p.ContractValue)},
				{"Start", p.StartDate.Format("2006-01-02")},
				{"Status", string(p.Status)},
			}
			if p.EndDate != nil {
				rows = append(rows, []string{"End", p.EndDate.Format("2006-01-02")})
			}
			if p.MonthlyBudget != nil {
				rows = append(rows, []string{"Monthly budget", money(*p.MonthlyBudget)})
			}
			if p.ActiveBaselineID != nil {
				rows = append(rows, []string{"Active baseline", *p.ActiveBaselineID})
			}
			fmt.Print(RenderTable(Table{Rows: rows}))
			return nil
		},
	}
	return cmd
}

func newProjectBudgetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget <project> <amount>",
		Short: "Set the monthly budget",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			p, err := app.Projects.GetByID(ctx, id)
			if err != nil {
				return err
			}
			p.MonthlyBudget = &amount
			if err := app.Projects.Update(ctx, p); err != nil {
				return err
			}
			fmt.Printf("Monthly budget for %s set to %s\n", p.Code, money(amount))
			return nil
		},
	}
	return cmd
}

func newProjectArchiveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <project>",
		Short: "Archive a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, id)
			if err != nil {
				return err
			}
			p.Status = domain.ProjectArchived
			if err := app.Projects.Update(ctx, p); err != nil {
				return err
			}
			fmt.Printf("Archived %s\n", p.Code)
			return nil
		},
	}
	return cmd
}

func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
