package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/dortega/finz/internal/domain"
	"github.com/shopspring/decimal"
)

// estimateFile is the on-disk TOML shape of a baseline submission. Amounts
// are strings so they parse as exact decimals, never floats.
type estimateFile struct {
	Assumptions []string            `toml:"assumptions"`
	Labor       []estimateFileEntry `toml:"labor"`
	NonLabor    []estimateFileEntry `toml:"non_labor"`
}

type estimateFileEntry struct {
	Category    string `toml:"category"`
	Description string `toml:"description"`
	UnitCost    string `toml:"unit_cost"`
	Quantity    string `toml:"quantity"`
	BurdenRate  string `toml:"burden_rate"`
	StartMonth  int    `toml:"start_month"`
	EndMonth    int    `toml:"end_month"`
	OneTime     bool   `toml:"one_time"`
}

// loadEstimateFile reads and converts a baseline estimate file. Validation
// of the business rules happens in the service; this only parses.
func loadEstimateFile(path string) (labor, nonLabor []domain.EstimateEntry, assumptions []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading estimate file: %w", err)
	}

	var f estimateFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, nil, nil, fmt.Errorf("parsing estimate file: %w", err)
	}

	labor, err = convertEntries(f.Labor)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("labor: %w", err)
	}
	nonLabor, err = convertEntries(f.NonLabor)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("non_labor: %w", err)
	}
	return labor, nonLabor, f.Assumptions, nil
}

func convertEntries(in []estimateFileEntry) ([]domain.EstimateEntry, error) {
	out := make([]domain.EstimateEntry, 0, len(in))
	for i, e := range in {
		unitCost, err := decimal.NewFromString(e.UnitCost)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): bad unit_cost %q", i+1, e.Category, e.UnitCost)
		}
		qty, err := decimal.NewFromString(e.Quantity)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): bad quantity %q", i+1, e.Category, e.Quantity)
		}
		burden := decimal.Zero
		if e.BurdenRate != "" {
			burden, err = decimal.NewFromString(e.BurdenRate)
			if err != nil {
				return nil, fmt.Errorf("entry %d (%s): bad burden_rate %q", i+1, e.Category, e.BurdenRate)
			}
		}
		out = append(out, domain.EstimateEntry{
			Category:    e.Category,
			Description: e.Description,
			UnitCost:    unitCost,
			Quantity:    qty,
			BurdenRate:  burden,
			StartMonth:  e.StartMonth,
			EndMonth:    e.EndMonth,
			OneTime:     e.OneTime,
		})
	}
	return out, nil
}
