package urlscan

import (
	"encoding/json"
	"strings"

	"github.com/aleister1102/scamsiren/internal/models"
)

// SearchResponse is the body of GET /api/v1/search/.
type SearchResponse struct {
	Results []SearchHit `json:"results"`
	Total   int         `json:"total"`
	HasMore bool        `json:"has_more"`
}

// SearchHit is one indexed scan. Verdicts is only present on some
// deployments and plans.
type SearchHit struct {
	ID       string    `json:"_id"`
	Result   string    `json:"result"`
	Task     TaskInfo  `json:"task"`
	Page     PageInfo  `json:"page"`
	Verdicts *Verdicts `json:"verdicts,omitempty"`
}

// TaskInfo describes the submission that produced a scan.
type TaskInfo struct {
	UUID       string `json:"uuid,omitempty"`
	URL        string `json:"url,omitempty"`
	Time       string `json:"time,omitempty"`
	Visibility string `json:"visibility,omitempty"`
}

// PageInfo describes the page that was finally loaded.
type PageInfo struct {
	URL    string `json:"url,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// Verdicts holds the overall verdict. Per-engine and community sections are
// kept raw; they are never used for scoring.
type Verdicts struct {
	Overall   *OverallVerdict `json:"overall,omitempty"`
	URLScan   json.RawMessage `json:"urlscan,omitempty"`
	Engines   json.RawMessage `json:"engines,omitempty"`
	Community json.RawMessage `json:"community,omitempty"`
}

// OverallVerdict is verdicts.overall. Absent fields stay nil so they can be
// told apart from false and 0.
type OverallVerdict struct {
	Score      *int     `json:"score,omitempty"`
	Malicious  *bool    `json:"malicious,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Ready reports whether the verdict carries any signal at all.
func (v *OverallVerdict) Ready() bool {
	if v == nil {
		return false
	}
	return v.Score != nil || v.Malicious != nil || len(v.Categories) > 0 || len(v.Tags) > 0
}

// Strong reports whether a ready verdict is conclusive enough that a fresh
// scan would add nothing.
func (v *OverallVerdict) Strong() bool {
	if !v.Ready() {
		return false
	}
	if v.Malicious != nil && *v.Malicious {
		return true
	}
	for _, label := range append(append([]string(nil), v.Categories...), v.Tags...) {
		lower := strings.ToLower(label)
		if strings.Contains(lower, "phishing") || strings.Contains(lower, "malware") {
			return true
		}
	}
	return false
}

// ResultPayload is the body of GET /api/v1/result/{uuid}/.
type ResultPayload struct {
	Task     TaskInfo  `json:"task"`
	Page     PageInfo  `json:"page"`
	Verdicts *Verdicts `json:"verdicts,omitempty"`
}

// Overall returns verdicts.overall or nil.
func (p *ResultPayload) Overall() *OverallVerdict {
	if p == nil || p.Verdicts == nil {
		return nil
	}
	return p.Verdicts.Overall
}

// SubmitRequest is the body of POST /api/v1/scan/.
type SubmitRequest struct {
	URL        string `json:"url"`
	Visibility string `json:"visibility"`
}

// SubmitResponse is the answer to a scan submission.
type SubmitResponse struct {
	UUID    string `json:"uuid"`
	Result  string `json:"result,omitempty"`
	API     string `json:"api,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusResponse is the body of GET /api/v1/scan/{uuid}/.
type StatusResponse struct {
	Status string `json:"status"`
}

// Scan lifecycle states reported by the status endpoint.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFinished   = "finished"
	StatusFailed     = "failed"
	StatusError      = "error"
)

func finishedStatus(status string) bool {
	s := strings.ToLower(status)
	return s == StatusDone || s == StatusFinished
}

func failedStatus(status string) bool {
	s := strings.ToLower(status)
	return s == StatusFailed || s == StatusError
}

func toFinding(url string, v *OverallVerdict, tier models.SourceTier, scanID string) models.ScanFinding {
	finding := models.ScanFinding{
		URL:        url,
		SourceTier: tier,
		ScanID:     scanID,
	}
	if v == nil {
		return finding
	}
	finding.Score = v.Score
	finding.Malicious = v.Malicious
	finding.Categories = append([]string(nil), v.Categories...)
	finding.Tags = append([]string(nil), v.Tags...)
	return finding
}
