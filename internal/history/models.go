package history

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/finvix/finvix/internal/results"
)

// ErrNotFound is returned when a lookup matches no run.
var ErrNotFound = errors.New("not found")

// Run kinds.
const (
	KindManual = "manual"
	KindUpload = "upload"
)

// Run is one recorded prediction, manual or uploaded, with its full
// result rows serialized as JSON.
type Run struct {
	ID        string
	Kind      string
	ModelType string
	RowCount  int
	RowsJSON  string
	CreatedAt time.Time
}

// Rows decodes the stored result rows.
func (r Run) Rows() ([]results.Row, error) {
	var rows []results.Row
	if err := json.Unmarshal([]byte(r.RowsJSON), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
