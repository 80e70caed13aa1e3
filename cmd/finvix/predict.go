package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/finvix/finvix/internal/chart"
	"github.com/finvix/finvix/internal/forms"
	"github.com/finvix/finvix/internal/history"
	"github.com/finvix/finvix/internal/results"
	"github.com/finvix/finvix/internal/ui"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run a manual prediction",
	Long: `Run a manual prediction.

Omitted numeric flags default to 0, seasonality to 1.0, and the
categorical flags to Search Ads / North America / Retail / Small.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		modelStr, _ := cmd.Flags().GetString("model")
		modelType, err := results.ParseModelType(modelStr)
		if err != nil {
			return err
		}

		str := func(name string) string {
			v, _ := cmd.Flags().GetString(name)
			return v
		}
		input := forms.ManualInput{
			AdSpend:           str("ad-spend"),
			Clicks:            str("clicks"),
			Impressions:       str("impressions"),
			ConversionRate:    str("conversion-rate"),
			CTR:               str("ctr"),
			CPC:               str("cpc"),
			CostPerConversion: str("cost-per-conversion"),
			CAC:               str("cac"),
			Seasonality:       str("seasonality"),
			CampaignType:      str("campaign-type"),
			Region:            str("region"),
			Industry:          str("industry"),
			CompanySize:       str("company-size"),
		}
		payload, err := input.Positional()
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

		row, err := a.client.Predict(cmd.Context(), payload, modelType)
		if err != nil {
			return err
		}

		recordRun(a, history.KindManual, modelType, []results.Row{row})

		renderResultRows([]results.Row{row}, modelType)
		if full, _ := cmd.Flags().GetBool("json"); full {
			return printRowJSON(row)
		}

		panels := chart.PredictionPanels(row, modelType)
		fmt.Print(ui.RenderPanels(panels, 100))
		return nil
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a spreadsheet for batch predictions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modelStr, _ := cmd.Flags().GetString("model")
		modelType, err := results.ParseModelType(modelStr)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		job, err := forms.NewUploadJob(args[0], format, modelType)
		if err != nil {
			return err
		}
		// The job never outlives this request, success or failure.
		defer job.Clear()

		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireSession(); err != nil {
			return err
		}

		model := ui.NewUpload(a.client, job)
		final, err := tea.NewProgram(model).Run()
		if err != nil {
			return fmt.Errorf("running upload view: %w", err)
		}
		m, ok := final.(ui.UploadModel)
		if !ok {
			return fmt.Errorf("unexpected model %T", final)
		}
		if m.Err() != nil {
			return m.Err()
		}
		rows := m.Rows()

		printSuccess("Predicted %d rows from %s", len(rows), job.Filename())
		recordRun(a, history.KindUpload, modelType, rows)

		renderResultRows(rows, modelType)
		panels := chart.BatchPanels(rows, modelType)
		fmt.Print(ui.RenderPanels(panels, 100))
		return nil
	},
}

// recordRun persists a run locally; history is best-effort and never
// fails the prediction itself.
func recordRun(a *app, kind string, modelType results.ModelType, rows []results.Row) {
	store, err := a.openHistory()
	if err != nil {
		printWarning("could not open run history: %v", err)
		return
	}
	defer store.Close()
	if _, err := store.Record(kind, modelType, rows); err != nil {
		printWarning("could not record run: %v", err)
	}
}

func init() {
	predictCmd.Flags().String("model", "both", "model type: roi, conversions or both")
	predictCmd.Flags().String("ad-spend", "", "ad spend")
	predictCmd.Flags().String("clicks", "", "clicks")
	predictCmd.Flags().String("impressions", "", "impressions")
	predictCmd.Flags().String("conversion-rate", "", "conversion rate")
	predictCmd.Flags().String("ctr", "", "click-through rate")
	predictCmd.Flags().String("cpc", "", "cost per click")
	predictCmd.Flags().String("cost-per-conversion", "", "cost per conversion")
	predictCmd.Flags().String("cac", "", "customer acquisition cost")
	predictCmd.Flags().String("seasonality", "", "seasonality factor (default 1.0)")
	predictCmd.Flags().String("campaign-type", "", "campaign type (default Search Ads)")
	predictCmd.Flags().String("region", "", "region (default North America)")
	predictCmd.Flags().String("industry", "", "industry (default Retail)")
	predictCmd.Flags().String("company-size", "", "company size (default Small)")
	predictCmd.Flags().Bool("json", false, "print the full prediction row as JSON")

	uploadCmd.Flags().String("model", "both", "model type: roi, conversions or both")
	uploadCmd.Flags().String("format", "", "file format: csv or xlsx (inferred from extension when omitted)")
}
