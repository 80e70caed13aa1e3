package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/finvix/finvix/internal/forms"
	"github.com/finvix/finvix/internal/results"
)

// ProgressFunc receives upload progress as a percentage. For a given
// upload it is called with monotonically increasing values from 0 to
// 100; a nil func disables reporting.
type ProgressFunc func(percent int)

// UploadPredict sends the job's file to /upload_predict as multipart
// form data and returns the normalized prediction rows. Progress is
// reported as the request body streams out.
func (c *Client) UploadPredict(ctx context.Context, job forms.UploadJob, progress ProgressFunc) ([]results.Row, error) {
	f, err := os.Open(job.Path)
	if err != nil {
		return nil, fmt.Errorf("opening upload file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", job.Filename())
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("reading upload file: %w", err)
	}
	if err := w.WriteField("model_type", string(job.ModelType)); err != nil {
		return nil, err
	}
	if err := w.WriteField("file_format", string(job.Format)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	total := int64(buf.Len())
	body := &progressReader{r: &buf, total: total, fn: progress}
	if progress != nil {
		progress(0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload_predict", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.ContentLength = total

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return results.Normalize(raw)
}

// progressReader reports percentage progress as the wrapped reader
// drains. Reported values never decrease and never exceed 100.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	fn    ProgressFunc
	last  int
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.fn != nil && p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.fn(pct)
		}
	}
	return n, err
}
