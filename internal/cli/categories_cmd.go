package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCategoriesCmd(app *App) *cobra.Command {
	var groups bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the canonical cost category catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if groups {
				for _, g := range app.Taxonomy.ListGroups(ctx) {
					fmt.Println(g)
				}
				return nil
			}

			t := Table{
				Headers: []string{"Code", "Group", "Label", "Execution", "Class"},
			}
			for _, c := range app.Taxonomy.ListCategories(ctx) {
				t.Rows = append(t.Rows, []string{
					c.Code, c.Group, c.Label, string(c.Execution), string(c.CostClass),
				})
			}
			fmt.Print(RenderTable(t))
			return nil
		},
	}

	cmd.Flags().BoolVar(&groups, "groups", false, "List only the category groups")
	cmd.AddCommand(newCategoriesResolveCmd(app))
	return cmd
}

func newCategoriesResolveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <identifier>",
		Short: "Resolve a raw or legacy identifier to its canonical category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Taxonomy.ResolveCategory(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s -> %s (%s, %s, %s)\n", args[0], c.Code, c.Label, c.Execution, c.CostClass)
			return nil
		},
	}
}
