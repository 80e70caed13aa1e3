package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/finvix/finvix/internal/api"
	"github.com/finvix/finvix/internal/history"
	"github.com/finvix/finvix/internal/results"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()

	r := chi.NewRouter()
	r.Post("/predict", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Input []any `json:"input"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		if len(body.Input) != 13 {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "expected 13 inputs"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"roi": 2.4, "conversions": 9}},
		})
	})
	r.Get("/dashboard", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"roi": 1.0, "conversions": 2, "impressions": 100, "clicks": 10, "ctr": 0.1},
				{"roi": 3.0, "conversions": 4, "impressions": 300, "clicks": 30, "ctr": 0.3},
			},
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	store, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("opening history store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return Deps{
		Client:  api.New(srv.URL, api.DefaultTimeout),
		History: store,
	}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPTool_Predict(t *testing.T) {
	deps := newTestDeps(t)
	handler := mcpPredict(deps)

	req := makeCallToolRequest("predict", map[string]interface{}{
		"model_type": "both",
		"ad_spend":   5000.0,
		"clicks":     120.0,
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var row results.Row
	if err := json.Unmarshal([]byte(toolText(t, result)), &row); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if row.Number("roi") != 2.4 {
		t.Errorf("roi = %v, want 2.4", row.Number("roi"))
	}

	// Run recorded locally.
	runs, err := deps.History.Recent(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Kind != history.KindManual {
		t.Errorf("run not recorded: %+v", runs)
	}
}

func TestMCPTool_Predict_RequiresModelType(t *testing.T) {
	deps := newTestDeps(t)
	handler := mcpPredict(deps)

	result, err := handler(context.Background(), makeCallToolRequest("predict", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("missing model_type accepted")
	}
}

func TestMCPTool_Predict_RejectsBadModelType(t *testing.T) {
	deps := newTestDeps(t)
	handler := mcpPredict(deps)

	result, err := handler(context.Background(), makeCallToolRequest("predict", map[string]interface{}{
		"model_type": "sideways",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("invalid model_type accepted")
	}
}

func TestMCPTool_DashboardSummary(t *testing.T) {
	deps := newTestDeps(t)
	handler := mcpDashboardSummary(deps)

	result, err := handler(context.Background(), makeCallToolRequest("dashboard_summary", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var summary struct {
		RowCount int                `json:"row_count"`
		Averages map[string]float64 `json:"averages"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &summary); err != nil {
		t.Fatalf("parsing summary: %v", err)
	}
	if summary.RowCount != 2 {
		t.Errorf("row_count = %d, want 2", summary.RowCount)
	}
	if summary.Averages["roi"] != 2.0 {
		t.Errorf("roi average = %v, want 2.0", summary.Averages["roi"])
	}
}

func TestMCPResource_RecentRuns(t *testing.T) {
	deps := newTestDeps(t)
	if _, err := deps.History.Record(history.KindUpload, results.ModelROI, []results.Row{{"roi": 1.1}}); err != nil {
		t.Fatal(err)
	}

	handler := mcpResourceRecentRuns(deps)
	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "finvix://runs/recent"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}

	var runs []map[string]any
	if err := json.Unmarshal([]byte(text.Text), &runs); err != nil {
		t.Fatalf("parsing runs: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs, want 1", len(runs))
	}
}
