// Package report turns prediction results into files on disk: the
// server-rendered PDF reports, the spreadsheet exports, and the locally
// captured chart snapshot. Server blobs are verified before anything is
// written so a corrupt download never leaves a broken file behind.
package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"github.com/finvix/finvix/internal/api"
	"github.com/finvix/finvix/internal/forms"
	"github.com/finvix/finvix/internal/results"
)

// Exporter fetches server artifacts and writes them under outDir.
type Exporter struct {
	client *api.Client
	outDir string
}

// NewExporter writes artifacts into outDir, creating it on first use.
func NewExporter(client *api.Client, outDir string) *Exporter {
	return &Exporter{client: client, outDir: outDir}
}

// ServerReport downloads the backend PDF for one manual prediction and
// writes <model_type>_backend_report.pdf. The blob must parse as a PDF
// with at least one page.
func (e *Exporter) ServerReport(ctx context.Context, row results.Row, modelType results.ModelType) (string, error) {
	blob, err := e.client.Report(ctx, row, modelType)
	if err != nil {
		return "", err
	}
	if err := VerifyPDF(blob); err != nil {
		return "", err
	}
	return e.write(fmt.Sprintf("%s_backend_report.pdf", modelType), blob)
}

// ServerBatchReport downloads the backend PDF for a batch of uploaded
// predictions and writes <model_type>_report.pdf.
func (e *Exporter) ServerBatchReport(ctx context.Context, rows []results.Row, modelType results.ModelType) (string, error) {
	blob, err := e.client.UploadReport(ctx, rows, modelType)
	if err != nil {
		return "", err
	}
	if err := VerifyPDF(blob); err != nil {
		return "", err
	}
	return e.write(fmt.Sprintf("%s_report.pdf", modelType), blob)
}

// Results downloads the rows as a csv or xlsx export and writes
// <model_type>_results.<ext>.
func (e *Exporter) Results(ctx context.Context, rows []results.Row, modelType results.ModelType, format forms.FileFormat) (string, error) {
	blob, err := e.client.DownloadResults(ctx, rows, modelType, format)
	if err != nil {
		return "", err
	}
	return e.write(fmt.Sprintf("%s_results.%s", modelType, format), blob)
}

func (e *Exporter) write(name string, blob []byte) (string, error) {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(e.outDir, name)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

// VerifyPDF rejects blobs that are empty or do not parse as a PDF with
// at least one page. The backend has been seen returning both.
func VerifyPDF(blob []byte) error {
	if len(blob) == 0 {
		return &api.APIError{Kind: api.KindEmptyArtifact}
	}
	r, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return fmt.Errorf("report blob is not a valid PDF: %w", err)
	}
	if r.NumPage() < 1 {
		return fmt.Errorf("report PDF has no pages")
	}
	return nil
}
