// Package reporter renders URL reports for humans and machines.
package reporter

import (
	"fmt"
	"io"

	"github.com/aleister1102/scamsiren/internal/models"
)

// Reporter consumes finished reports one at a time, plus the inputs that
// were rejected before evaluation. Implementations are safe for concurrent
// use.
type Reporter interface {
	Report(report models.URLReport) error
	Rejected(rejected []models.RejectedInput) error
}

// Format selects a Reporter implementation.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New returns the reporter for format writing to w.
func New(format Format, w io.Writer, noColor bool) (Reporter, error) {
	switch format {
	case FormatText, "":
		return NewConsoleReporter(w, noColor), nil
	case FormatJSON:
		return NewJSONReporter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}
