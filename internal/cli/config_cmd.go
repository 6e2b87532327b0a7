package cli

import (
	"fmt"

	"github.com/dortega/finz/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write a default config file",
			RunE: func(cmd *cobra.Command, args []string) error {
				if config.Exists() {
					return fmt.Errorf("config already exists at %s", config.ConfigPath())
				}
				if err := config.Save(config.DefaultConfig()); err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", config.ConfigPath())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				fmt.Print(RenderTable(Table{Rows: [][]string{
					{"Config file", config.ConfigPath()},
					{"Database", config.DBPath(cfg)},
					{"Default actor", cfg.General.Actor},
					{"Horizon months", fmt.Sprintf("%d", cfg.General.HorizonMonths)},
					{"Favorable below", fmt.Sprintf("%d%%", cfg.Thresholds.FavorableBelowPct)},
					{"At risk above", fmt.Sprintf("%d%%", cfg.Thresholds.AtRiskAbovePct)},
					{"Alias overlays", fmt.Sprintf("%d", len(cfg.Taxonomy.Aliases))},
				}}))
				return nil
			},
		},
	)

	return cmd
}
