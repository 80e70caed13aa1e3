package chart

import "github.com/finvix/finvix/internal/results"

// Categorical axes used by the dashboard breakdowns. These mirror the
// campaign taxonomy the backend simulates.
var (
	CampaignTypes = []string{"Search Ads", "Display Ads", "Email", "Social Media"}
	Regions       = []string{"South America", "North America", "Asia", "Europe"}
)

// DashboardPanels derives the six summary panels from the dashboard
// rows: paired conversions/ROI trends, impressions/clicks trends, the
// engagement bubble, average conversions per campaign type, the CTR
// trend, and conversions broken down by region and campaign type.
func DashboardPanels(rows []results.Row) []Panel {
	bubble := Bubble(rows, "Engagement")

	regionSeries := make([]Series, 0, len(CampaignTypes))
	for _, ct := range CampaignTypes {
		s := Series{
			Name:   ct,
			Labels: make([]string, 0, len(Regions)),
			Values: make([]float64, 0, len(Regions)),
		}
		for _, region := range Regions {
			s.Labels = append(s.Labels, region)
			s.Values = append(s.Values, GroupedAverage(rows, "conversions",
				Filter{Field: "region", Value: region},
				Filter{Field: "campaign_type", Value: ct},
			))
		}
		regionSeries = append(regionSeries, s)
	}

	return []Panel{
		{
			Title: "Conversions and ROI Trends",
			Series: []Series{
				Trend(rows, "conversions", "Conversions", 1),
				Trend(rows, "roi", "ROI (%)", 1),
			},
		},
		{
			Title: "Impressions and Clicks Trends",
			Series: []Series{
				Trend(rows, "impressions", "Impressions", 1),
				Trend(rows, "clicks", "Clicks", 1),
			},
		},
		{
			Title:  "Engagement Over Time",
			Bubble: &bubble,
		},
		{
			Title: "Campaign Performance",
			Series: []Series{
				Averages(rows, "conversions", "campaign_type", "Conversions", CampaignTypes),
			},
		},
		{
			Title: "Click-Through Rate Trends",
			Series: []Series{
				// ctr arrives as a fraction; plot it as a percentage.
				Trend(rows, "ctr", "Click-Through Rate (%)", 100),
			},
		},
		{
			Title:  "Conversions by Region",
			Series: regionSeries,
		},
	}
}

// PredictionPanels derives the actual-vs-predicted panels for a single
// manual prediction, gated by model type.
func PredictionPanels(row results.Row, modelType results.ModelType) []Panel {
	var panels []Panel
	if modelType.ShowROI() {
		panels = append(panels, Panel{
			Title:  "Actual vs Predicted ROI",
			Series: []Series{ComparisonPair(row, "actual_roi", "roi", "ROI")},
		})
	}
	if modelType.ShowConversions() {
		panels = append(panels, Panel{
			Title:  "Actual vs Predicted Conversions",
			Series: []Series{ComparisonPair(row, "actual_conversions", "conversions", "Conversions")},
		})
	}
	return panels
}

// BatchPanels derives the per-row comparison panels for an upload
// result set, gated by model type. Row order is the x-axis.
func BatchPanels(rows []results.Row, modelType results.ModelType) []Panel {
	var panels []Panel
	if modelType.ShowROI() {
		actual, predicted := RowComparisons(rows, "actual_roi", "roi")
		panels = append(panels, Panel{
			Title:  "ROI Comparison",
			Series: []Series{actual, predicted},
		})
	}
	if modelType.ShowConversions() {
		actual, predicted := RowComparisons(rows, "actual_conversions", "conversions")
		panels = append(panels, Panel{
			Title:  "Conversions Comparison",
			Series: []Series{actual, predicted},
		})
	}
	return panels
}
