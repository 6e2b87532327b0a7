package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// sourceFlag is a pflag.Value that only admits the known feed sources.
type sourceFlag struct {
	v *domain.ActualSource
}

var _ pflag.Value = sourceFlag{}

func (f sourceFlag) String() string { return string(*f.v) }
func (f sourceFlag) Type() string   { return "source" }

func (f sourceFlag) Set(s string) error {
	switch domain.ActualSource(s) {
	case domain.SourcePayroll, domain.SourceBilling:
		*f.v = domain.ActualSource(s)
		return nil
	default:
		return fmt.Errorf("source must be payroll or billing, got %q", s)
	}
}

func newIngestCmd(app *App) *cobra.Command {
	var source domain.ActualSource

	cmd := &cobra.Command{
		Use:   "ingest <file.csv>",
		Short: "Ingest an actuals feed (payroll or billing export)",
		Long: `Ingest a CSV actuals feed. Columns: project,category,month,amount[,source].
Category identifiers may be legacy aliases; they are resolved per row, and
rows that fail to resolve are reported without blocking the rest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readActualRows(args[0], string(source))
			if err != nil {
				return err
			}

			report, err := app.Actuals.Ingest(context.Background(), rows)
			if err != nil {
				return err
			}

			fmt.Printf("Accepted %d of %d rows\n", report.Accepted, len(rows))
			for _, rej := range report.Rejections {
				fmt.Println(paint(warnStyle, fmt.Sprintf("  row %d: %s", rej.Row+1, rej.Reason)))
			}
			return nil
		},
	}

	cmd.Flags().Var(sourceFlag{&source}, "source", "Default source for rows without one (payroll|billing)")
	return cmd
}

func readActualRows(path, defaultSource string) ([]service.ActualRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feed: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows []service.ActualRow
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading feed: %w", err)
		}
		line++

		// Tolerate a header row.
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "project") {
			continue
		}
		if len(rec) < 4 {
			return nil, fmt.Errorf("line %d: expected project,category,month,amount[,source]", line)
		}

		month, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad month %q", line, rec[2])
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[3]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad amount %q", line, rec[3])
		}
		src := defaultSource
		if len(rec) >= 5 && strings.TrimSpace(rec[4]) != "" {
			src = strings.TrimSpace(rec[4])
		}

		rows = append(rows, service.ActualRow{
			ProjectCode: strings.TrimSpace(rec[0]),
			Category:    strings.TrimSpace(rec[1]),
			Month:       month,
			Amount:      amount,
			Source:      domain.ActualSource(src),
		})
	}
	return rows, nil
}
