package reporter

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/aleister1102/scamsiren/internal/models"
)

// JSONReporter writes one URLReport per line as JSON.
type JSONReporter struct {
	enc *json.Encoder
	mu  sync.Mutex
}

// NewJSONReporter returns a reporter writing JSON lines to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONReporter{enc: enc}
}

// Report implements Reporter.
func (j *JSONReporter) Report(report models.URLReport) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(report)
}

type rejectedLine struct {
	models.RejectedInput
	Rejected bool `json:"rejected"`
}

// Rejected writes one {"input","reason","rejected":true} line per input.
func (j *JSONReporter) Rejected(rejected []models.RejectedInput) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, in := range rejected {
		if err := j.enc.Encode(rejectedLine{RejectedInput: in, Rejected: true}); err != nil {
			return err
		}
	}
	return nil
}
