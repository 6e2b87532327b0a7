package cli

import (
	"context"
	"fmt"

	"github.com/dortega/finz/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newAdjustCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Record budget adjustments",
	}

	cmd.AddCommand(
		newAdjustAddCmd(app),
		newAdjustListCmd(app),
	)

	return cmd
}

func newAdjustAddCmd(app *App) *cobra.Command {
	var project, adjType, amount, policy, target, why, actor, key string
	var month, horizonFrom, horizonTo int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an adjustment and show its month-by-month effect",
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
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			a := &domain.Adjustment{
				ProjectID:      projectID,
				Type:           domain.AdjustmentType(adjType),
				Amount:         amt,
				EffectiveMonth: month,
				Policy:         domain.DistributionPolicy(policy),
				Justification:  why,
				CreatedBy:      who,
			}
			if target != "" {
				targetID, err := resolveProject(ctx, app, target)
				if err != nil {
					return err
				}
				a.TargetProjectID = targetID
			}

			horizon := app.monthRange(horizonFrom, horizonTo)
			if key == "" {
				key = fmt.Sprintf("adjust:%s:%s:%d", projectID, adjType, month)
			}

			res, err := app.Adjustments.Create(ctx, a, horizon, key)
			if err != nil {
				return err
			}

			if res.Replayed {
				fmt.Println("Already recorded; returning the stored adjustment.")
			}
			t := Table{
				Title:   fmt.Sprintf("Adjustment %s (%s %s)", shortID(res.Adjustment.ID), res.Adjustment.Type, money(res.Adjustment.Amount)),
				Headers: []string{"Project", "Month", "Delta"},
			}
			for _, d := range res.Deltas {
				code := d.ProjectID
				if p, err := app.Projects.GetByID(ctx, d.ProjectID); err == nil {
					code = p.Code
				}
				t.Rows = append(t.Rows, []string{code, fmt.Sprintf("%d", d.Month), money(d.Delta)})
			}
			fmt.Print(RenderTable(t))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&adjType, "type", "", "increase, decrease, or reassignment")
	cmd.Flags().StringVar(&amount, "amount", "", "Positive amount")
	cmd.Flags().IntVar(&month, "month", 0, "Effective month (1-based)")
	cmd.Flags().StringVar(&policy, "policy", string(domain.DistributeSingleMonth), "single_month, pro_rata_forward, or pro_rata_all")
	cmd.Flags().StringVar(&target, "target", "", "Receiving project for reassignments")
	cmd.Flags().StringVar(&why, "why", "", "Justification")
	cmd.Flags().StringVar(&actor, "actor", "", "Creating user")
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key")
	cmd.Flags().IntVar(&horizonFrom, "from", 1, "First month of the distribution horizon")
	cmd.Flags().IntVar(&horizonTo, "to", 0, "Last month of the distribution horizon")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("month")
	cmd.MarkFlagRequired("why")

	return cmd
}

func newAdjustListCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List adjustments touching a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProject(ctx, app, project)
			if err != nil {
				return err
			}

			adjustments, err := app.Adjustments.ListByProject(ctx, projectID)
			if err != nil {
				return err
			}

			t := Table{
				Headers: []string{"ID", "Type", "Amount", "Month", "Policy", "Justification"},
			}
			for _, a := range adjustments {
				t.Rows = append(t.Rows, []string{
					shortID(a.ID), string(a.Type), money(a.Amount),
					fmt.Sprintf("%d", a.EffectiveMonth), string(a.Policy), a.Justification,
				})
			}
			fmt.Print(RenderTable(t))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.MarkFlagRequired("project")

	return cmd
}
