package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finvix/finvix/internal/chart"
	"github.com/finvix/finvix/internal/forms"
	"github.com/finvix/finvix/internal/history"
	"github.com/finvix/finvix/internal/report"
	"github.com/finvix/finvix/internal/results"
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Export a PDF report for a recorded run",
	Long: `Export a PDF report for a recorded run (the most recent one when no
ID is given).

By default the backend renders the PDF; --local captures the charts
client-side instead and needs no server round-trip.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		local, _ := cmd.Flags().GetBool("local")
		out, _ := cmd.Flags().GetString("out")

		a, err := newApp()
		if err != nil {
			return err
		}

		run, rows, err := resolveRun(a, args)
		if err != nil {
			return err
		}
		modelType, err := results.ParseModelType(run.ModelType)
		if err != nil {
			modelType = results.ModelBoth
		}

		if local {
			var panels []chart.Panel
			if run.Kind == history.KindManual && len(rows) == 1 {
				panels = chart.PredictionPanels(rows[0], modelType)
			} else {
				panels = chart.BatchPanels(rows, modelType)
			}
			path, err := report.Snapshot(panels, "Finvix Prediction Report", out)
			if err != nil {
				return err
			}
			printSuccess("Report written to %s", path)
			return nil
		}

		if err := a.requireSession(); err != nil {
			return err
		}
		ex := report.NewExporter(a.client, out)

		var path string
		if run.Kind == history.KindManual && len(rows) == 1 {
			path, err = ex.ServerReport(cmd.Context(), rows[0], modelType)
		} else {
			path, err = ex.ServerBatchReport(cmd.Context(), rows, modelType)
		}
		if err != nil {
			return err
		}
		printSuccess("Report written to %s", path)
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [run-id]",
	Short: "Download a run's results as a csv or xlsx file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatStr, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		format, err := forms.ParseFileFormat(formatStr)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireSession(); err != nil {
			return err
		}

		run, rows, err := resolveRun(a, args)
		if err != nil {
			return err
		}
		modelType, err := results.ParseModelType(run.ModelType)
		if err != nil {
			modelType = results.ModelBoth
		}

		ex := report.NewExporter(a.client, out)
		path, err := ex.Results(cmd.Context(), rows, modelType, format)
		if err != nil {
			return err
		}
		printSuccess("Results written to %s (%s)", path, format.MIME())
		return nil
	},
}

// resolveRun loads the named run, or the most recent one when no ID is
// given, along with its decoded rows.
func resolveRun(a *app, args []string) (history.Run, []results.Row, error) {
	store, err := a.openHistory()
	if err != nil {
		return history.Run{}, nil, err
	}
	defer store.Close()

	var run history.Run
	if len(args) == 1 {
		run, err = findRun(store, args[0])
		if err != nil {
			return history.Run{}, nil, err
		}
	} else {
		recent, err := store.Recent(1)
		if err != nil {
			return history.Run{}, nil, err
		}
		if len(recent) == 0 {
			return history.Run{}, nil, fmt.Errorf("no recorded runs — run `finvix predict` or `finvix upload` first")
		}
		run = recent[0]
	}

	rows, err := run.Rows()
	if err != nil {
		return history.Run{}, nil, fmt.Errorf("decoding stored rows: %w", err)
	}
	if len(rows) == 0 {
		return history.Run{}, nil, fmt.Errorf("run %s has no rows", run.ID)
	}
	return run, rows, nil
}

func init() {
	reportCmd.Flags().Bool("local", false, "capture charts locally instead of asking the backend")
	reportCmd.Flags().String("out", ".", "output directory")
	downloadCmd.Flags().String("format", "csv", "file format: csv or xlsx")
	downloadCmd.Flags().String("out", ".", "output directory")
}
