package reporter

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aleister1102/scamsiren/internal/models"
	"github.com/fatih/color"
)

// ConsoleReporter prints a short colored block per report.
type ConsoleReporter struct {
	w       io.Writer
	mu      sync.Mutex
	palette map[models.Classification]*color.Color
	faint   *color.Color
}

// NewConsoleReporter writes to w. With noColor set, no escape codes are emitted.
func NewConsoleReporter(w io.Writer, noColor bool) *ConsoleReporter {
	palette := map[models.Classification]*color.Color{
		models.ClassificationHigh:        color.New(color.FgRed, color.Bold),
		models.ClassificationMedium:      color.New(color.FgYellow, color.Bold),
		models.ClassificationUnreachable: color.New(color.FgMagenta),
		models.ClassificationLow:         color.New(color.FgGreen),
		models.ClassificationInvalid:     color.New(color.FgHiBlack),
	}
	faint := color.New(color.FgHiBlack)

	if noColor {
		for _, c := range palette {
			c.DisableColor()
		}
		faint.DisableColor()
	}

	return &ConsoleReporter{w: w, palette: palette, faint: faint}
}

// Report implements Reporter.
func (r *ConsoleReporter) Report(report models.URLReport) error {
	var b strings.Builder

	v := report.Verdict
	label := fmt.Sprintf("[%s %d]", strings.ToUpper(string(v.Classification)), v.Score)
	if c, ok := r.palette[v.Classification]; ok {
		label = c.Sprint(label)
	}
	fmt.Fprintf(&b, "%s %s\n", label, report.OriginalURL)

	if report.FinalURL != "" && report.FinalURL != report.OriginalURL {
		fmt.Fprintf(&b, "  final: %s", report.FinalURL)
		if hops := len(report.HopChain) - 1; hops > 0 {
			b.WriteString(r.faint.Sprintf(" (%d hop(s))", hops))
		}
		if report.UsedWWWFallback {
			b.WriteString(r.faint.Sprint(" (www)"))
		}
		b.WriteString("\n")
	}
	if v.Summary != "" {
		fmt.Fprintf(&b, "  %s\n", v.Summary)
	}
	if v.Advice != "" {
		fmt.Fprintf(&b, "  advice: %s\n", v.Advice)
	}
	for _, reason := range v.Reasons {
		fmt.Fprintf(&b, "  - %s\n", reason)
	}
	if report.SourceTier != "" {
		b.WriteString(r.faint.Sprintf("  source: %s", report.SourceTier))
		if report.FailureReason != models.FailureNone {
			b.WriteString(r.faint.Sprintf(" (%s)", report.FailureReason))
		}
		b.WriteString("\n")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Rejected prints the inputs that never entered the pipeline.
func (r *ConsoleReporter) Rejected(rejected []models.RejectedInput) error {
	if len(rejected) == 0 {
		return nil
	}

	var b strings.Builder
	for _, in := range rejected {
		b.WriteString(r.faint.Sprintf("[SKIPPED] %q: %s\n", in.Input, in.Reason))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := io.WriteString(r.w, b.String())
	return err
}
