// Package mcp exposes Finvix predictions over the Model Context
// Protocol so agent clients can run them through the same API client
// the CLI uses.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/finvix/finvix/internal/api"
	"github.com/finvix/finvix/internal/chart"
	"github.com/finvix/finvix/internal/forms"
	"github.com/finvix/finvix/internal/history"
	"github.com/finvix/finvix/internal/results"
)

// Deps holds dependencies for the MCP server.
type Deps struct {
	Client  *api.Client
	History *history.Store // optional; if nil, the recent-runs resource is empty
}

// NewServer creates an MCP server with the Finvix tools registered.
func NewServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"finvix",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("Finvix — marketing campaign ROI and conversion predictions."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("predict",
			mcp.WithDescription("Predict ROI and/or conversions for one campaign. Omitted numeric fields default to 0, seasonality to 1.0."),
			mcp.WithString("model_type", mcp.Description("roi, conversions or both"), mcp.Required()),
			mcp.WithNumber("ad_spend", mcp.Description("Ad spend")),
			mcp.WithNumber("clicks", mcp.Description("Clicks")),
			mcp.WithNumber("impressions", mcp.Description("Impressions")),
			mcp.WithNumber("conversion_rate", mcp.Description("Conversion rate")),
			mcp.WithNumber("ctr", mcp.Description("Click-through rate")),
			mcp.WithNumber("cpc", mcp.Description("Cost per click")),
			mcp.WithNumber("cost_per_conversion", mcp.Description("Cost per conversion")),
			mcp.WithNumber("cac", mcp.Description("Customer acquisition cost")),
			mcp.WithNumber("seasonality", mcp.Description("Seasonality factor, default 1.0")),
			mcp.WithString("campaign_type", mcp.Description("Campaign type, default Search Ads")),
			mcp.WithString("region", mcp.Description("Region, default North America")),
			mcp.WithString("industry", mcp.Description("Industry, default Retail")),
			mcp.WithString("company_size", mcp.Description("Company size, default Small")),
		),
		mcpPredict(deps),
	)

	s.AddTool(
		mcp.NewTool("dashboard_summary",
			mcp.WithDescription("Fetch the current dashboard rows and return per-metric averages alongside the raw rows."),
		),
		mcpDashboardSummary(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"finvix://runs/recent",
			"Recent Prediction Runs",
			mcp.WithResourceDescription("Last 10 locally recorded prediction runs"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecentRuns(deps),
	)

	return s
}

func mcpPredict(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		modelStr, err := req.RequireString("model_type")
		if err != nil {
			return mcpError("model_type is required"), nil
		}
		modelType, err := results.ParseModelType(modelStr)
		if err != nil {
			return mcpError(err.Error()), nil
		}

		num := func(key string) string {
			v := req.GetFloat(key, 0)
			if v == 0 {
				return ""
			}
			return strconv.FormatFloat(v, 'f', -1, 64)
		}

		input := forms.ManualInput{
			AdSpend:           num("ad_spend"),
			Clicks:            num("clicks"),
			Impressions:       num("impressions"),
			ConversionRate:    num("conversion_rate"),
			CTR:               num("ctr"),
			CPC:               num("cpc"),
			CostPerConversion: num("cost_per_conversion"),
			CAC:               num("cac"),
			Seasonality:       num("seasonality"),
			CampaignType:      req.GetString("campaign_type", ""),
			Region:            req.GetString("region", ""),
			Industry:          req.GetString("industry", ""),
			CompanySize:       req.GetString("company_size", ""),
		}

		payload, err := input.Positional()
		if err != nil {
			return mcpError(err.Error()), nil
		}

		row, err := deps.Client.Predict(ctx, payload, modelType)
		if err != nil {
			return mcpError(fmt.Sprintf("prediction failed: %v", err)), nil
		}

		if deps.History != nil {
			if _, err := deps.History.Record(history.KindManual, modelType, []results.Row{row}); err != nil {
				return mcpError(fmt.Sprintf("predicted but failed to record run: %v", err)), nil
			}
		}

		b, err := json.Marshal(row)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpDashboardSummary(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rows, err := deps.Client.Dashboard(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("dashboard fetch failed: %v", err)), nil
		}

		averages := map[string]float64{}
		for _, field := range []string{"roi", "conversions", "impressions", "clicks", "ctr"} {
			averages[field] = chart.GroupedAverage(rows, field)
		}

		summary := struct {
			RowCount int                `json:"row_count"`
			Averages map[string]float64 `json:"averages"`
			Rows     []results.Row      `json:"rows"`
		}{
			RowCount: len(rows),
			Averages: averages,
			Rows:     rows,
		}

		b, err := json.Marshal(summary)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceRecentRuns(deps Deps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		type runSummary struct {
			ID        string `json:"id"`
			Kind      string `json:"kind"`
			ModelType string `json:"model_type"`
			RowCount  int    `json:"row_count"`
			CreatedAt string `json:"created_at"`
		}

		summaries := []runSummary{}
		if deps.History != nil {
			runs, err := deps.History.Recent(10)
			if err != nil {
				return nil, fmt.Errorf("failed to list runs: %w", err)
			}
			for _, r := range runs {
				summaries = append(summaries, runSummary{
					ID:        r.ID,
					Kind:      r.Kind,
					ModelType: r.ModelType,
					RowCount:  r.RowCount,
					CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
