package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finvix/finvix/internal/forms"
	"github.com/finvix/finvix/internal/results"
)

// fakeBackend routes requests the way the real Flask service does so
// the client can be exercised end to end without it.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()

	r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(req.Body).Decode(&creds)
		if creds["username"] != "demo" || creds["password"] != "demo" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	})

	r.Post("/register", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body["username"] == "taken" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Username already exists"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})

	requireAuth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") != "Bearer tok-123" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Token has expired"})
				return
			}
			next(w, req)
		}
	}

	r.Get("/greeting", requireAuth(func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"username": "demo",
			"quotes":   []string{"Measure twice."},
		})
	}))

	r.Get("/dashboard", requireAuth(func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"clicks": 120, "conversions": 5},
				{"clicks": 90, "conversions": 3},
			},
		})
	}))

	r.Post("/predict", requireAuth(func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Input     []any  `json:"input"`
			ModelType string `json:"model_type"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		if len(body.Input) != 13 {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "expected 13 inputs"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"roi": 1.8, "conversions": 12}},
		})
	}))

	r.Post("/upload_predict", requireAuth(func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		if req.FormValue("model_type") == "" || req.FormValue("file_format") == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing form fields"})
			return
		}
		if _, _, err := req.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing file"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"results": []map[string]any{
				{"roi": 2.1}, {"roi": 0.7},
			},
		})
	}))

	r.Post("/report", requireAuth(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))

	r.Post("/upload_report", requireAuth(func(w http.ResponseWriter, req *http.Request) {
		// Zero-byte 2xx, the known bad case.
		w.WriteHeader(http.StatusOK)
	}))

	r.Post("/download_results", requireAuth(func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			FileType string `json:"file_type"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body.FileType == "xlsx" {
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "xlsx renderer offline"})
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("roi,conversions\n1.8,12\n"))
	}))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func asAPIError(err error, target **APIError) bool {
	return errors.As(err, target)
}

func authedClient(srv *httptest.Server, opts ...Option) *Client {
	opts = append([]Option{WithTokenSource(func() string { return "tok-123" })}, opts...)
	return New(srv.URL, DefaultTimeout, opts...)
}

func TestLogin(t *testing.T) {
	srv := fakeBackend(t)
	c := New(srv.URL, DefaultTimeout)

	token, err := c.Login(context.Background(), "demo", "demo")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "tok-123" {
		t.Errorf("token = %q, want tok-123", token)
	}
}

func TestLoginBadCredentialsDoesNotFireExpiry(t *testing.T) {
	srv := fakeBackend(t)
	fired := false
	c := New(srv.URL, DefaultTimeout, WithAuthExpiredHandler(func() { fired = true }))

	_, err := c.Login(context.Background(), "demo", "wrong")
	if !IsKind(err, KindAuthExpired) {
		t.Fatalf("err = %v, want auth_expired kind", err)
	}
	if fired {
		t.Error("expiry handler fired for an unauthenticated login failure")
	}
}

func TestRegisterConflict(t *testing.T) {
	srv := fakeBackend(t)
	c := New(srv.URL, DefaultTimeout)

	if err := c.Register(context.Background(), "fresh", "f@x.io", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	err := c.Register(context.Background(), "taken", "t@x.io", "pw")
	if !IsKind(err, KindValidation) {
		t.Fatalf("err = %v, want validation kind", err)
	}
	var apiErr *APIError
	if !asAPIError(err, &apiErr) || apiErr.Message != "Username already exists" {
		t.Errorf("message not propagated from envelope: %v", err)
	}
}

func TestDashboardNormalizesRows(t *testing.T) {
	srv := fakeBackend(t)
	c := authedClient(srv)

	rows, err := c.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if got := rows[0].Number("clicks"); got != 120 {
		t.Errorf("rows[0] clicks = %v, want 120", got)
	}
}

func TestExpiredTokenFiresHandlerAndClassifies(t *testing.T) {
	srv := fakeBackend(t)
	fired := 0
	c := New(srv.URL, DefaultTimeout,
		WithTokenSource(func() string { return "stale" }),
		WithAuthExpiredHandler(func() { fired++ }),
	)

	_, err := c.Dashboard(context.Background())
	if !IsKind(err, KindAuthExpired) {
		t.Fatalf("err = %v, want auth_expired kind", err)
	}
	if fired != 1 {
		t.Errorf("handler fired %d times, want 1", fired)
	}
}

func TestPredict(t *testing.T) {
	srv := fakeBackend(t)
	c := authedClient(srv)

	input := make([]any, 13)
	for i := range input {
		input[i] = 0
	}
	row, err := c.Predict(context.Background(), input, results.ModelROI)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got := row.Number("roi"); got != 1.8 {
		t.Errorf("roi = %v, want 1.8", got)
	}
}

func TestPredictValidationError(t *testing.T) {
	srv := fakeBackend(t)
	c := authedClient(srv)

	_, err := c.Predict(context.Background(), []any{1, 2}, results.ModelROI)
	if !IsKind(err, KindValidation) {
		t.Fatalf("err = %v, want validation kind", err)
	}
}

func TestUploadPredict(t *testing.T) {
	srv := fakeBackend(t)
	c := authedClient(srv)

	path := filepath.Join(t.TempDir(), "batch.csv")
	if err := os.WriteFile(path, []byte("clicks,conversions\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	job, err := forms.NewUploadJob(path, "", results.ModelBoth)
	if err != nil {
		t.Fatal(err)
	}

	var reported []int
	rows, err := c.UploadPredict(context.Background(), job, func(pct int) {
		reported = append(reported, pct)
	})
	if err != nil {
		t.Fatalf("UploadPredict: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if got := rows[0].Number("roi"); got != 2.1 {
		t.Errorf("rows[0] roi = %v, want 2.1", got)
	}

	if len(reported) == 0 || reported[0] != 0 {
		t.Fatalf("progress did not start at 0: %v", reported)
	}
	if reported[len(reported)-1] != 100 {
		t.Errorf("progress did not end at 100: %v", reported)
	}
	for i := 1; i < len(reported); i++ {
		if reported[i] <= reported[i-1] {
			t.Fatalf("progress not strictly increasing at %d: %v", i, reported)
		}
	}
}

func TestReportReturnsPDFBytes(t *testing.T) {
	srv := fakeBackend(t)
	c := authedClient(srv)

	blob, err := c.Report(context.Background(), results.Row{"roi": 1.8}, results.ModelROI)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(blob) == 0 || string(blob[:4]) != "%PDF" {
		t.Errorf("blob does not look like a PDF: %q", blob)
	}
}

func TestUploadReportEmptyArtifact(t *testing.T) {
	srv := fakeBackend(t)
	c := authedClient(srv)

	_, err := c.UploadReport(context.Background(), []results.Row{{"roi": 1.8}}, results.ModelROI)
	if !IsKind(err, KindEmptyArtifact) {
		t.Fatalf("err = %v, want empty_artifact kind", err)
	}
}

func TestDownloadResults(t *testing.T) {
	srv := fakeBackend(t)
	c := authedClient(srv)
	rows := []results.Row{{"roi": 1.8, "conversions": 12}}

	blob, err := c.DownloadResults(context.Background(), rows, results.ModelBoth, forms.FormatCSV)
	if err != nil {
		t.Fatalf("DownloadResults: %v", err)
	}
	if len(blob) == 0 {
		t.Fatal("empty csv blob")
	}

	// The backend can answer 200 with a JSON error body instead of the
	// artifact; that must not be handed to callers as a file.
	_, err = c.DownloadResults(context.Background(), rows, results.ModelBoth, forms.FormatXLSX)
	if !IsKind(err, KindServer) {
		t.Fatalf("err = %v, want server kind", err)
	}
	var apiErr *APIError
	if !asAPIError(err, &apiErr) || apiErr.Message != "xlsx renderer offline" {
		t.Errorf("envelope message lost: %v", err)
	}
}

func TestTimeoutClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, 50*time.Millisecond)
	_, err := c.Greeting(context.Background())
	if !IsKind(err, KindTimeout) {
		t.Fatalf("err = %v, want timeout kind", err)
	}
}

func TestNetworkErrorClassification(t *testing.T) {
	// Nothing listens here.
	c := New("http://127.0.0.1:1", DefaultTimeout)
	_, err := c.Greeting(context.Background())
	if !IsKind(err, KindNetwork) {
		t.Fatalf("err = %v, want network kind", err)
	}
}

func TestServerErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, DefaultTimeout)
	_, err := c.Greeting(context.Background())
	if !IsKind(err, KindServer) {
		t.Fatalf("err = %v, want server kind", err)
	}
}

func TestRequestIDAttached(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotID = req.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(map[string]any{"username": "demo", "quotes": []string{}})
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, DefaultTimeout)
	if _, err := c.Greeting(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotID == "" {
		t.Error("X-Request-ID header missing")
	}
}
