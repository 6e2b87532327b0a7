package cli

import (
	"context"
	"fmt"

	"github.com/dortega/finz/internal/domain"
	"github.com/spf13/cobra"
)

func newBaselineCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Submit, materialize, and review cost baselines",
	}

	cmd.AddCommand(
		newBaselineSubmitCmd(app),
		newBaselineMaterializeCmd(app),
		newBaselineAcceptCmd(app),
		newBaselineRejectCmd(app),
		newBaselineListCmd(app),
		newBaselineShowCmd(app),
	)

	return cmd
}

func newBaselineSubmitCmd(app *App) *cobra.Command {
	var project, file, actor string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new baseline from an estimate file",
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

			labor, nonLabor, assumptions, err := loadEstimateFile(file)
			if err != nil {
				return err
			}

			b := &domain.Baseline{
				ProjectID:         projectID,
				LaborEstimates:    labor,
				NonLaborEstimates: nonLabor,
				Assumptions:       assumptions,
				CreatedBy:         who,
			}
			if err := app.Baselines.Submit(ctx, b); err != nil {
				return err
			}

			fmt.Printf("Submitted baseline %s (version %d, %d entries)\n",
				b.ID, b.Version, len(labor)+len(nonLabor))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&file, "file", "", "Estimate TOML file")
	cmd.Flags().StringVar(&actor, "actor", "", "Submitting user")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newBaselineMaterializeCmd(app *App) *cobra.Command {
	var version int
	var key, actor string

	cmd := &cobra.Command{
		Use:   "materialize <baseline-id>",
		Short: "Hand off a baseline and materialize its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			who, err := app.actorOrDefault(actor)
			if err != nil {
				return err
			}
			if key == "" {
				key = "materialize:" + args[0]
			}

			res, err := app.Baselines.Materialize(ctx, args[0], version, key, who)
			if err != nil {
				return err
			}

			if res.Replayed {
				fmt.Println("Already materialized; returning the stored result.")
			}
			t := Table{
				Title:   fmt.Sprintf("Line items for %s", shortID(res.Baseline.ID)),
				Headers: []string{"ID", "Category", "Unit cost", "Qty", "Months"},
			}
			for _, li := range res.LineItems {
				span := fmt.Sprintf("%d-%d", li.StartMonth, li.EndMonth)
				if !li.Recurring {
					span = fmt.Sprintf("%d (one-time)", li.StartMonth)
				}
				t.Rows = append(t.Rows, []string{
					li.ID, li.CanonicalCode, money(li.UnitCost), li.Quantity.String(), span,
				})
			}
			fmt.Print(RenderTable(t))
			return nil
		},
	}

	cmd.Flags().IntVar(&version, "version", 0, "Expected baseline version")
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key (defaults to one derived from the baseline)")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting user")
	cmd.MarkFlagRequired("version")

	return cmd
}

func newBaselineAcceptCmd(app *App) *cobra.Command {
	var project string
	var version int
	var actor string

	cmd := &cobra.Command{
		Use:   "accept <baseline-id>",
		Short: "Accept a handed-off baseline and make it active",
		Args:  cobra.ExactArgs(1),
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

			if err := app.Baselines.Accept(ctx, projectID, args[0], version, who); err != nil {
				return err
			}
			fmt.Printf("Baseline %s accepted; it now drives the forecast.\n", shortID(args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().IntVar(&version, "version", 0, "Expected baseline version")
	cmd.Flags().StringVar(&actor, "actor", "", "Accepting user")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("version")

	return cmd
}

func newBaselineRejectCmd(app *App) *cobra.Command {
	var project, reason, actor string
	var version int

	cmd := &cobra.Command{
		Use:   "reject <baseline-id>",
		Short: "Reject a handed-off baseline",
		Args:  cobra.ExactArgs(1),
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

			if err := app.Baselines.Reject(ctx, projectID, args[0], version, who, reason); err != nil {
				return err
			}
			fmt.Printf("Baseline %s rejected. A revision needs a fresh submission.\n", shortID(args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().IntVar(&version, "version", 0, "Expected baseline version")
	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason")
	cmd.Flags().StringVar(&actor, "actor", "", "Rejecting user")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("version")
	cmd.MarkFlagRequired("reason")

	return cmd
}

func newBaselineListCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List baselines for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProject(ctx, app, project)
			if err != nil {
				return err
			}

			baselines, err := app.Baselines.ListByProject(ctx, projectID)
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, projectID)
			if err != nil {
				return err
			}

			t := Table{
				Headers: []string{"ID", "Status", "Version", "Entries", "Created by", "Active"},
			}
			for _, b := range baselines {
				active := ""
				if p.ActiveBaselineID != nil && *p.ActiveBaselineID == b.ID {
					active = "yes"
				}
				t.Rows = append(t.Rows, []string{
					shortID(b.ID), string(b.Status), fmt.Sprintf("%d", b.Version),
					fmt.Sprintf("%d", len(b.Entries())), b.CreatedBy, active,
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

func newBaselineShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <baseline-id>",
		Short: "Show one baseline with its estimates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.Baselines.GetByID(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Println(RenderTitle(fmt.Sprintf("Baseline %s  [%s v%d]", shortID(b.ID), b.Status, b.Version)))

			t := Table{
				Headers: []string{"Category", "Description", "Unit cost", "Qty", "Burden", "Months"},
			}
			for _, e := range b.Entries() {
				burden := "-"
				if !e.BurdenRate.IsZero() {
					burden = e.BurdenRate.String()
				}
				span := fmt.Sprintf("%d-%d", e.StartMonth, e.EndMonth)
				if e.OneTime {
					span = fmt.Sprintf("%d (one-time)", e.StartMonth)
				}
				t.Rows = append(t.Rows, []string{
					e.Category, e.Description, money(e.UnitCost), e.Quantity.String(), burden, span,
				})
			}
			fmt.Print(RenderTable(t))

			for _, a := range b.Assumptions {
				fmt.Printf("  assumption: %s\n", a)
			}
			if b.RejectReason != "" {
				fmt.Printf("  rejected: %s\n", b.RejectReason)
			}
			return nil
		},
	}
	return cmd
}
