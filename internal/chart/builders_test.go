package chart

import (
	"math"
	"reflect"
	"testing"

	"github.com/finvix/finvix/internal/results"
)

func TestGroupedAverage(t *testing.T) {
	rows := []results.Row{
		{"conversions": 10.0, "campaign_type": "Search Ads"},
		{"conversions": 20.0, "campaign_type": "Search Ads"},
		{"conversions": 99.0, "campaign_type": "Display Ads"},
	}

	got := GroupedAverage(rows, "conversions", Filter{Field: "campaign_type", Value: "Search Ads"})
	if got != 15 {
		t.Errorf("average = %v, want 15", got)
	}
}

func TestGroupedAverageEmptySubsetIsZero(t *testing.T) {
	rows := []results.Row{
		{"conversions": 10.0, "campaign_type": "Search Ads"},
	}

	got := GroupedAverage(rows, "conversions", Filter{Field: "campaign_type", Value: "Email"})
	if got != 0 {
		t.Errorf("average over empty subset = %v, want 0", got)
	}
	if math.IsNaN(got) {
		t.Error("average over empty subset is NaN")
	}

	// No rows at all behaves the same way.
	if got := GroupedAverage(nil, "conversions"); got != 0 {
		t.Errorf("average over nil rows = %v, want 0", got)
	}
}

func TestGroupedAverageMultipleFilters(t *testing.T) {
	rows := []results.Row{
		{"conversions": 10.0, "campaign_type": "Search Ads", "region": "Asia"},
		{"conversions": 30.0, "campaign_type": "Search Ads", "region": "Asia"},
		{"conversions": 50.0, "campaign_type": "Search Ads", "region": "Europe"},
	}

	got := GroupedAverage(rows, "conversions",
		Filter{Field: "region", Value: "Asia"},
		Filter{Field: "campaign_type", Value: "Search Ads"},
	)
	if got != 20 {
		t.Errorf("average = %v, want 20", got)
	}
}

func TestGroupedAverageMissingFieldCountsAsZero(t *testing.T) {
	rows := []results.Row{
		{"campaign_type": "Search Ads"},
		{"conversions": 30.0, "campaign_type": "Search Ads"},
	}

	got := GroupedAverage(rows, "conversions", Filter{Field: "campaign_type", Value: "Search Ads"})
	if got != 15 {
		t.Errorf("average = %v, want 15 (absent field contributes 0)", got)
	}
}

func TestBubbleRadiusBounded(t *testing.T) {
	rows := []results.Row{
		{"impressions": 100.0, "clicks": 10.0, "conversions": 20.0},
		{"impressions": 200.0, "clicks": 20.0, "conversions": 5.0},
		{"impressions": 300.0, "clicks": 30.0},
	}

	b := Bubble(rows, "Engagement")
	if len(b.Points) != 3 {
		t.Fatalf("points = %d, want 3", len(b.Points))
	}
	if b.Points[0].R != 25 {
		t.Errorf("radius for conversions=20 is %v, want min(40,25)=25", b.Points[0].R)
	}
	if b.Points[1].R != 10 {
		t.Errorf("radius for conversions=5 is %v, want 10", b.Points[1].R)
	}
	if b.Points[2].R != 0 {
		t.Errorf("radius for absent conversions is %v, want 0", b.Points[2].R)
	}
}

func TestTrend(t *testing.T) {
	rows := []results.Row{
		{"time": "2026-08-30T10:00:00Z", "roi": 5.0},
		{"roi": 7.0},
	}

	s := Trend(rows, "roi", "ROI", 1)
	if s.Name != "ROI" {
		t.Errorf("name = %q", s.Name)
	}
	if len(s.Labels) != 2 || len(s.Values) != 2 {
		t.Fatalf("labels/values = %d/%d, want 2/2", len(s.Labels), len(s.Values))
	}
	if s.Labels[1] != "Row 2" {
		t.Errorf("fallback label = %q, want \"Row 2\"", s.Labels[1])
	}
	if !reflect.DeepEqual(s.Values, []float64{5, 7}) {
		t.Errorf("values = %v", s.Values)
	}
}

func TestTrendScale(t *testing.T) {
	rows := []results.Row{{"ctr": 0.032}}
	s := Trend(rows, "ctr", "CTR (%)", 100)
	if math.Abs(s.Values[0]-3.2) > 1e-9 {
		t.Errorf("scaled value = %v, want 3.2", s.Values[0])
	}
}

func TestComparisonPairAlwaysTwoPoints(t *testing.T) {
	row := results.Row{"roi": 12.0}
	s := ComparisonPair(row, "actual_roi", "roi", "ROI")
	if len(s.Values) != 2 {
		t.Fatalf("values = %d, want 2", len(s.Values))
	}
	if s.Values[0] != 0 {
		t.Errorf("missing actual = %v, want 0", s.Values[0])
	}
	if s.Values[1] != 12 {
		t.Errorf("predicted = %v, want 12", s.Values[1])
	}
}

func TestRowComparisonsPreserveOrder(t *testing.T) {
	rows := []results.Row{
		{"actual_roi": 1.0, "roi": 2.0},
		{"actual_roi": 3.0, "roi": 4.0},
	}
	actual, predicted := RowComparisons(rows, "actual_roi", "roi")
	if !reflect.DeepEqual(actual.Labels, []string{"Row 1", "Row 2"}) {
		t.Errorf("labels = %v", actual.Labels)
	}
	if !reflect.DeepEqual(actual.Values, []float64{1, 3}) {
		t.Errorf("actual = %v", actual.Values)
	}
	if !reflect.DeepEqual(predicted.Values, []float64{2, 4}) {
		t.Errorf("predicted = %v", predicted.Values)
	}
}

func TestBuildersDoNotMutateInput(t *testing.T) {
	rows := []results.Row{
		{"time": "2026-08-30T10:00:00Z", "conversions": 10.0, "roi": 5.0,
			"impressions": 100.0, "clicks": 10.0, "ctr": 0.1,
			"campaign_type": "Search Ads", "region": "Asia"},
	}
	snapshot := make([]results.Row, len(rows))
	for i, r := range rows {
		cp := results.Row{}
		for k, v := range r {
			cp[k] = v
		}
		snapshot[i] = cp
	}

	Trend(rows, "conversions", "C", 1)
	GroupedAverage(rows, "conversions", Filter{Field: "region", Value: "Asia"})
	Bubble(rows, "E")
	ComparisonPair(rows[0], "actual_roi", "roi", "R")
	DashboardPanels(rows)

	if !reflect.DeepEqual(rows, snapshot) {
		t.Error("builders mutated their input rows")
	}
}

func TestDashboardPanels(t *testing.T) {
	rows := []results.Row{
		{"time": "2026-08-30T10:00:00Z", "conversions": 10.0, "roi": 5.0,
			"impressions": 100.0, "clicks": 10.0, "ctr": 0.05,
			"campaign_type": "Search Ads", "region": "Asia"},
	}

	panels := DashboardPanels(rows)
	if len(panels) != 6 {
		t.Fatalf("panels = %d, want 6", len(panels))
	}
	if panels[2].Bubble == nil {
		t.Error("engagement panel has no bubble series")
	}
	if got := len(panels[5].Series); got != len(CampaignTypes) {
		t.Errorf("region breakdown has %d series, want %d", got, len(CampaignTypes))
	}

	// Empty result sets still produce every panel, just with empty series.
	empty := DashboardPanels(nil)
	if len(empty) != 6 {
		t.Fatalf("panels over empty rows = %d, want 6", len(empty))
	}
}

func TestModelTypeGatesPanelsIdentically(t *testing.T) {
	row := results.Row{"roi": 1.0, "conversions": 2.0}
	rows := []results.Row{row}

	tests := []struct {
		mt   results.ModelType
		want int
	}{
		{results.ModelROI, 1},
		{results.ModelConversions, 1},
		{results.ModelBoth, 2},
	}
	for _, tt := range tests {
		if got := len(PredictionPanels(row, tt.mt)); got != tt.want {
			t.Errorf("PredictionPanels(%s) = %d panels, want %d", tt.mt, got, tt.want)
		}
		if got := len(BatchPanels(rows, tt.mt)); got != tt.want {
			t.Errorf("BatchPanels(%s) = %d panels, want %d", tt.mt, got, tt.want)
		}
	}
}
