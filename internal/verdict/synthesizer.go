package verdict

import (
	"fmt"
	"strings"

	"github.com/aleister1102/scamsiren/internal/models"
)

const (
	unreachableScore   = 60
	maliciousFloor     = 80
	maliciousNoScore   = 85
	mediumThreshold    = 50
	persistThreshold   = 50
	noSignalReasonText = "no explicit malicious signal; stay alert to the context and keep monitoring"
)

// defaultScores fills in a missing overall score, keyed by where the finding came from.
var defaultScores = map[models.SourceTier]int{
	models.SourceTierCachedExact:     10,
	models.SourceTierFreshSubmission: 10,
	models.SourceTierCachedDomain:    20,
	models.SourceTierNone:            30,
}

// Synthesize turns a reachability outcome and a scan outcome into the final
// verdict. The scan outcome is only consulted when the URL exists.
func Synthesize(reach models.ReachabilityOutcome, outcome models.ScanOutcome) models.RiskVerdict {
	switch reach.State {
	case models.ReachabilityInvalid:
		return models.RiskVerdict{
			URL:            outcome.Finding.URL,
			Classification: models.ClassificationInvalid,
			Score:          0,
			Categories:     []string{},
			Advice:         invalidAdvice,
			Summary:        "The domain does not exist.",
			Reasons:        []string{reasonOrDefault(reach.Reason, "host could not be resolved")},
		}
	case models.ReachabilityUnreachable:
		return models.RiskVerdict{
			URL:            firstNonEmpty(reach.URL, outcome.Finding.URL),
			Classification: models.ClassificationUnreachable,
			Score:          unreachableScore,
			Categories:     []string{},
			Advice:         unreachableAdvice,
			Summary:        "The site exists but could not be reached safely.",
			Reasons:        []string{reasonOrDefault(reach.Reason, "no successful response")},
		}
	}

	finding := outcome.Finding
	kinds := collectKinds(finding)
	signature := hasKind(kinds, "phishing") || hasKind(kinds, "malware")

	var classification models.Classification
	var score int
	switch {
	case finding.IsMalicious() || signature:
		classification = models.ClassificationHigh
		if finding.HasScore() {
			score = max(*finding.Score, maliciousFloor)
		} else {
			score = maliciousNoScore
		}
	default:
		score = defaultScore(finding)
		if score >= mediumThreshold {
			classification = models.ClassificationMedium
		} else {
			classification = models.ClassificationLow
		}
	}

	advice := buildAdvice(classification, kinds)
	if finding.SourceTier == models.SourceTierNone {
		if description := outcome.FailureReason.Description(); description != "" {
			advice += " Note: " + description + "."
		}
	}

	categories := kinds
	if len(categories) > models.MaxDisplayCategories {
		categories = categories[:models.MaxDisplayCategories]
	}

	return models.RiskVerdict{
		URL:            firstNonEmpty(finding.URL, reach.URL),
		Classification: classification,
		Score:          clamp(score),
		Categories:     categories,
		Advice:         advice,
		Summary:        buildSummary(classification, kinds),
		Reasons:        buildReasons(finding),
	}
}

// ShouldPersist reports whether v is worth keeping in the history store.
func ShouldPersist(v models.RiskVerdict) bool {
	return v.Score >= persistThreshold || v.Elevated()
}

func defaultScore(finding models.ScanFinding) int {
	if finding.HasScore() {
		return *finding.Score
	}
	if score, ok := defaultScores[finding.SourceTier]; ok {
		return score
	}
	return defaultScores[models.SourceTierNone]
}

// collectKinds merges categories then tags, trimmed and lowercased, without
// duplicates and in first-seen order.
func collectKinds(finding models.ScanFinding) []string {
	kinds := make([]string, 0, len(finding.Categories)+len(finding.Tags))
	seen := make(map[string]struct{}, cap(kinds))
	for _, group := range [][]string{finding.Categories, finding.Tags} {
		for _, raw := range group {
			kind := strings.ToLower(strings.TrimSpace(raw))
			if kind == "" {
				continue
			}
			if _, dup := seen[kind]; dup {
				continue
			}
			seen[kind] = struct{}{}
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

func hasKind(kinds []string, key string) bool {
	for _, k := range kinds {
		if strings.Contains(k, key) {
			return true
		}
	}
	return false
}

func buildReasons(finding models.ScanFinding) []string {
	var reasons []string
	if len(finding.Categories) > 0 {
		reasons = append(reasons, fmt.Sprintf("Categories: %s", strings.Join(finding.Categories, ", ")))
	}
	if len(finding.Tags) > 0 {
		reasons = append(reasons, fmt.Sprintf("Tags: %s", strings.Join(finding.Tags, ", ")))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, noSignalReasonText)
	}
	return reasons
}

func reasonOrDefault(reason, fallback string) string {
	return firstNonEmpty(reason, fallback)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func clamp(score int) int {
	return min(max(score, 0), 100)
}
