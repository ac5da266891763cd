package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tally/internal/backend"
	"tally/internal/config"
	"tally/internal/export"
	"tally/internal/ledger"
	"tally/internal/log"
	"tally/internal/query"
	"tally/internal/sink"
)

func exportCmd() *cobra.Command {
	var (
		dataset string
		format  string
		out     string
		from    string
		to      string
		sheets  bool
	)

	c := &cobra.Command{
		Use:   "export",
		Short: "Export ledger data as CSV or JSON, optionally to Google Sheets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), exportOptions{
				dataset: dataset,
				format:  format,
				out:     out,
				from:    from,
				to:      to,
				sheets:  sheets,
			})
		},
	}

	c.Flags().StringVar(&dataset, "dataset", "transactions", "dataset to export: transactions, budgets, reports or everything")
	c.Flags().StringVar(&format, "format", "csv", "output format: csv or json")
	c.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	c.Flags().StringVar(&from, "from", "", "start date (inclusive, YYYY-MM-DD)")
	c.Flags().StringVar(&to, "to", "", "end date (inclusive, YYYY-MM-DD)")
	c.Flags().BoolVar(&sheets, "sheets", false, "also push the export to the configured Google Sheets spreadsheet")
	return c
}

type exportOptions struct {
	dataset string
	format  string
	out     string
	from    string
	to      string
	sheets  bool
}

func runExport(ctx context.Context, opts exportOptions) error {
	logger := log.Setup(log.DefaultConfig())

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).Create(ctx, cfg)
	if err != nil {
		return err
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	store, err := ledger.Open(ctx, result.Persister, config.DefaultSettings(),
		logger.WithComponent(log.ComponentLedger))
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	scope, err := buildScope(opts.from, opts.to)
	if err != nil {
		return err
	}

	res, err := export.NewFormatter(store).Build(
		export.Dataset(opts.dataset), export.Format(opts.format), scope)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch export.Format(opts.format) {
	case export.FormatCSV:
		if err := sink.NewCSVSink().Write(w, res); err != nil {
			return err
		}
	case export.FormatJSON:
		if err := sink.NewJSONSink().Write(w, res); err != nil {
			return err
		}
	default:
		return fmt.Errorf("format %s has no byte renderer", opts.format)
	}

	if opts.sheets {
		ss, err := sink.NewSheetsSink(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsSheetName, logger)
		if err != nil {
			return fmt.Errorf("sheets sink: %w", err)
		}
		if err := ss.Write(ctx, res); err != nil {
			return err
		}
	}

	return nil
}

func buildScope(from, to string) (export.Scope, error) {
	var scope export.Scope
	if from == "" && to == "" {
		return scope, nil
	}
	if from == "" || to == "" {
		return scope, fmt.Errorf("--from and --to must be supplied together")
	}

	start, err := parseDate(from)
	if err != nil {
		return scope, fmt.Errorf("invalid --from date %q", from)
	}
	end, err := parseDate(to)
	if err != nil {
		return scope, fmt.Errorf("invalid --to date %q", to)
	}
	scope.Range = &query.DateRange{Start: start, End: end}
	return scope, nil
}
