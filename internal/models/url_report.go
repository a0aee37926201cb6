package models

import "time"

// URLReport is what the orchestrator delivers for each evaluated URL.
type URLReport struct {
	BatchID         string        `json:"batch_id,omitempty"`
	Input           string        `json:"input"`
	OriginalURL     string        `json:"original_url"`
	FinalURL        string        `json:"final_url"`
	HopChain        []string      `json:"hop_chain,omitempty"`
	Reachability    string        `json:"reachability"`
	UsedWWWFallback bool          `json:"used_www_fallback,omitempty"`
	SourceTier      SourceTier    `json:"source_tier"`
	FailureReason   FailureReason `json:"failure_reason,omitempty"`
	Verdict         RiskVerdict   `json:"verdict"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration_ns"`
}

// RejectedInput is an input that failed validation before entering the pipeline.
type RejectedInput struct {
	Input  string `json:"input"`
	Reason string `json:"reason"`
}
