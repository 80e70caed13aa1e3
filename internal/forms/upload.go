package forms

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/finvix/finvix/internal/results"
)

// FileFormat is the declared format of an uploaded spreadsheet.
type FileFormat string

const (
	FormatCSV  FileFormat = "csv"
	FormatXLSX FileFormat = "xlsx"
)

// ParseFileFormat validates a user-supplied format string.
func ParseFileFormat(s string) (FileFormat, error) {
	switch FileFormat(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("invalid file format %q: must be csv or xlsx", s)
	}
}

// MIME returns the download content type that matches this format.
func (f FileFormat) MIME() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// UploadJob is the transient (file, format, model type) tuple for one
// upload_predict request. It exists only for the duration of that
// request; callers Clear it unconditionally once the request settles.
type UploadJob struct {
	Path      string
	Format    FileFormat
	ModelType results.ModelType
}

// NewUploadJob builds a job, inferring the format from the file
// extension when none is given.
func NewUploadJob(path, format string, modelType results.ModelType) (UploadJob, error) {
	if path == "" {
		return UploadJob{}, fmt.Errorf("no file selected")
	}
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx":
			format = string(FormatXLSX)
		default:
			format = string(FormatCSV)
		}
	}
	ff, err := ParseFileFormat(format)
	if err != nil {
		return UploadJob{}, err
	}
	return UploadJob{Path: path, Format: ff, ModelType: modelType}, nil
}

// Filename returns the multipart filename for the upload.
func (j UploadJob) Filename() string {
	return filepath.Base(j.Path)
}

// Clear empties the job so no stale file selection survives a settled
// request.
func (j *UploadJob) Clear() {
	*j = UploadJob{}
}
