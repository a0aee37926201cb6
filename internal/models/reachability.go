package models

// ReachabilityState is the coarse result of probing a URL.
type ReachabilityState string

const (
	// ReachabilityExists means the host resolved and answered with a status in [200,400).
	ReachabilityExists ReachabilityState = "exists"
	// ReachabilityUnreachable means the host resolved but no successful response was obtained.
	ReachabilityUnreachable ReachabilityState = "unreachable"
	// ReachabilityInvalid means the host does not exist.
	ReachabilityInvalid ReachabilityState = "invalid"
)

// ReachabilityOutcome is produced once per probe, including any www. retry.
type ReachabilityOutcome struct {
	State           ReachabilityState `json:"state"`
	URL             string            `json:"url,omitempty"`
	UsedWWWFallback bool              `json:"used_www_fallback,omitempty"`
	StatusCode      int               `json:"status_code,omitempty"`
	Reason          string            `json:"reason,omitempty"`
}

// Exists returns an outcome for a URL that answered successfully.
func Exists(url string, statusCode int) ReachabilityOutcome {
	return ReachabilityOutcome{State: ReachabilityExists, URL: url, StatusCode: statusCode}
}

// Unreachable returns an outcome for a URL that resolved but did not answer successfully.
func Unreachable(url string, reason string) ReachabilityOutcome {
	return ReachabilityOutcome{State: ReachabilityUnreachable, URL: url, Reason: reason}
}

// Invalid returns an outcome for a URL whose host does not exist.
func Invalid(reason string) ReachabilityOutcome {
	return ReachabilityOutcome{State: ReachabilityInvalid, Reason: reason}
}

// IsExists reports whether the probe succeeded.
func (o ReachabilityOutcome) IsExists() bool {
	return o.State == ReachabilityExists
}
