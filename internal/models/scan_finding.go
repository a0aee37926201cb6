package models

import (
	"errors"

	"github.com/aleister1102/scamsiren/internal/common"
)

// SourceTier records which lookup strategy produced a ScanFinding.
// It is diagnostic only and never influences scoring.
type SourceTier string

const (
	SourceTierCachedExact     SourceTier = "cached_exact"
	SourceTierCachedDomain    SourceTier = "cached_domain"
	SourceTierFreshSubmission SourceTier = "fresh_submission"
	SourceTierNone            SourceTier = "none"
)

// ScanFinding is the reputation verdict obtained for one URL.
// Score and Malicious are nil when the backing result did not report them.
type ScanFinding struct {
	URL        string     `json:"url"`
	Malicious  *bool      `json:"malicious,omitempty"`
	Score      *int       `json:"score,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	SourceTier SourceTier `json:"source_tier"`
	ScanID     string     `json:"scan_id,omitempty"`
}

// NoFinding returns the empty finding used when no scan result could be obtained.
func NoFinding(url string) ScanFinding {
	return ScanFinding{URL: url, SourceTier: SourceTierNone}
}

// IsMalicious reports whether the malicious flag is present and true.
func (f ScanFinding) IsMalicious() bool {
	return f.Malicious != nil && *f.Malicious
}

// HasScore reports whether an overall score was reported.
func (f ScanFinding) HasScore() bool {
	return f.Score != nil
}

// FailureReason explains why no scan finding was obtained.
type FailureReason string

const (
	FailureNone              FailureReason = ""
	FailureDNS               FailureReason = "dns_failure"
	FailureNetworkTimeout    FailureReason = "network_timeout"
	FailureConnection        FailureReason = "connection_failure"
	FailureAPIAuthMissing    FailureReason = "api_auth_missing"
	FailureMalformedResponse FailureReason = "malformed_response"
	FailurePollExhausted     FailureReason = "poll_exhausted"
	FailureNoResult          FailureReason = "no_result"
)

// FailureReasonFromError maps a pipeline error onto a FailureReason.
func FailureReasonFromError(err error) FailureReason {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, common.ErrAPIAuthMissing):
		return FailureAPIAuthMissing
	case errors.Is(err, common.ErrMalformedResponse):
		return FailureMalformedResponse
	case errors.Is(err, common.ErrPollExhausted):
		return FailurePollExhausted
	}

	switch common.ClassifyNetworkError(err) {
	case common.ErrDNSFailure:
		return FailureDNS
	case common.ErrNetworkTimeout:
		return FailureNetworkTimeout
	default:
		return FailureConnection
	}
}

// Description returns a short human readable sentence for the reason.
func (r FailureReason) Description() string {
	switch r {
	case FailureDNS:
		return "the scan service host could not be resolved"
	case FailureNetworkTimeout:
		return "the scan service did not answer in time"
	case FailureConnection:
		return "the scan service could not be reached"
	case FailureAPIAuthMissing:
		return "a fresh scan was needed but no API key is configured"
	case FailureMalformedResponse:
		return "the scan service returned an unexpected response"
	case FailurePollExhausted:
		return "the fresh scan did not finish in time"
	case FailureNoResult:
		return "no scan result is available for this URL"
	default:
		return ""
	}
}

// ScanOutcome pairs a finding with the reason it is empty, if it is.
type ScanOutcome struct {
	Finding       ScanFinding   `json:"finding"`
	FailureReason FailureReason `json:"failure_reason,omitempty"`
}
