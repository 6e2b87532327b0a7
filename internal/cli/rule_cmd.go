package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dortega/finz/internal/domain"
	"github.com/spf13/cobra"
)

func newRuleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage shared-cost allocation rules",
	}

	cmd.AddCommand(
		newRuleSetCmd(app),
		newRuleListCmd(app),
		newRuleShowCmd(app),
	)

	return cmd
}

// parseTargets parses "CODE=60,CODE2=40" into allocation targets.
func parseTargets(ctx context.Context, app *App, spec string) ([]domain.AllocationTarget, error) {
	var targets []domain.AllocationTarget
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, pctStr, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("target %q must look like PROJECT=PERCENT", part)
		}
		pct, err := strconv.Atoi(pctStr)
		if err != nil {
			return nil, fmt.Errorf("target %q: bad percent %q", part, pctStr)
		}
		id, err := resolveProject(ctx, app, strings.TrimSpace(code))
		if err != nil {
			return nil, err
		}
		targets = append(targets, domain.AllocationTarget{ProjectID: id, Percent: pct})
	}
	return targets, nil
}

func newRuleSetCmd(app *App) *cobra.Command {
	var id, category, targetSpec, costClass string
	var startMonth, endMonth, priority, version int
	var inactive bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update an allocation rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			targets, err := parseTargets(ctx, app, targetSpec)
			if err != nil {
				return err
			}

			rule := &domain.AllocationRule{
				ID:            id,
				CanonicalCode: category,
				Targets:       targets,
				StartMonth:    startMonth,
				EndMonth:      endMonth,
				CostClass:     domain.CostClass(costClass),
				Priority:      priority,
				Active:        !inactive,
			}

			if err := app.Allocations.UpsertRule(ctx, rule, version); err != nil {
				return err
			}
			fmt.Printf("Rule %s on %s stored (version %d)\n", shortID(rule.ID), rule.CanonicalCode, rule.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Rule ID (omit to create)")
	cmd.Flags().StringVar(&category, "category", "", "Category code or legacy alias")
	cmd.Flags().StringVar(&targetSpec, "targets", "", "Targets as PROJECT=PERCENT,... summing to 100")
	cmd.Flags().IntVar(&startMonth, "from", 0, "First month the rule applies (0 = open)")
	cmd.Flags().IntVar(&endMonth, "to", 0, "Last month the rule applies (0 = open)")
	cmd.Flags().StringVar(&costClass, "class", "", "Restrict to cost class (operating|capital)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority, higher wins")
	cmd.Flags().IntVar(&version, "version", 0, "Expected version (0 for a new rule)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Store the rule disabled")
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("targets")

	return cmd
}

func newRuleListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List allocation rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := app.Allocations.ListRules(context.Background(), !all)
			if err != nil {
				return err
			}

			t := Table{
				Headers: []string{"ID", "Category", "Targets", "Months", "Priority", "Active", "Version"},
			}
			for _, r := range rules {
				months := "all"
				if r.StartMonth > 0 || r.EndMonth > 0 {
					months = fmt.Sprintf("%d-%d", r.StartMonth, r.EndMonth)
				}
				active := "no"
				if r.Active {
					active = "yes"
				}
				t.Rows = append(t.Rows, []string{
					shortID(r.ID), r.CanonicalCode, fmt.Sprintf("%d", len(r.Targets)),
					months, fmt.Sprintf("%d", r.Priority), active, fmt.Sprintf("%d", r.Version),
				})
			}
			fmt.Print(RenderTable(t))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive rules")
	return cmd
}

func newRuleShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <rule-id>",
		Short: "Show one rule with its split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			r, err := app.Allocations.GetRule(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println(RenderTitle(fmt.Sprintf("Rule %s  %s", shortID(r.ID), r.CanonicalCode)))
			t := Table{Headers: []string{"Target project", "Percent"}}
			for _, tg := range r.Targets {
				code := tg.ProjectID
				if p, err := app.Projects.GetByID(ctx, tg.ProjectID); err == nil {
					code = p.Code
				}
				t.Rows = append(t.Rows, []string{code, fmt.Sprintf("%d%%", tg.Percent)})
			}
			fmt.Print(RenderTable(t))
			return nil
		},
	}
	return cmd
}
