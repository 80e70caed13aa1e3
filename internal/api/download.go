package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/finvix/finvix/internal/forms"
	"github.com/finvix/finvix/internal/results"
)

// Report generates a server-side PDF for a single manual prediction.
// The returned bytes are the raw PDF.
func (c *Client) Report(ctx context.Context, row results.Row, modelType results.ModelType) ([]byte, error) {
	return c.postBlob(ctx, "/report", map[string]any{
		"results":    row,
		"model_type": modelType,
	})
}

// UploadReport generates a server-side PDF for a batch of uploaded
// predictions.
func (c *Client) UploadReport(ctx context.Context, rows []results.Row, modelType results.ModelType) ([]byte, error) {
	return c.postBlob(ctx, "/upload_report", map[string]any{
		"results":    rows,
		"model_type": modelType,
	})
}

// DownloadResults exports prediction rows as a CSV or XLSX file
// rendered by the server.
func (c *Client) DownloadResults(ctx context.Context, rows []results.Row, modelType results.ModelType, format forms.FileFormat) ([]byte, error) {
	return c.postBlob(ctx, "/download_results", map[string]any{
		"results":    rows,
		"model_type": modelType,
		"file_type":  format,
	})
}

// postBlob issues a JSON request whose successful response is a binary
// artifact. Two failure modes hide behind a 2xx here: the backend can
// answer with a JSON error body instead of the artifact, and it can
// answer with zero bytes. Both are surfaced as *APIError.
func (c *Client) postBlob(ctx context.Context, path string, body any) ([]byte, error) {
	resp, err := c.post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}

	if msg := sniffJSONError(data); msg != "" {
		return nil, &APIError{Kind: KindServer, Status: resp.StatusCode, Message: msg}
	}
	if len(data) == 0 {
		return nil, &APIError{Kind: KindEmptyArtifact, Status: resp.StatusCode}
	}
	return data, nil
}

// sniffJSONError returns the error text when a blob body is actually a
// JSON error envelope, and "" otherwise.
func sniffJSONError(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if !bytes.HasPrefix(trimmed, []byte("{")) {
		return ""
	}
	var env errorEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return ""
	}
	return env.text()
}
