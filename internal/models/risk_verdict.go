package models

// Classification is the risk bucket of a verdict.
type Classification string

const (
	ClassificationInvalid     Classification = "invalid"
	ClassificationUnreachable Classification = "unreachable"
	ClassificationLow         Classification = "low"
	ClassificationMedium      Classification = "medium"
	ClassificationHigh        Classification = "high"
)

// MaxDisplayCategories caps RiskVerdict.Categories.
const MaxDisplayCategories = 3

// RiskVerdict is the final, immutable result for one URL.
type RiskVerdict struct {
	URL            string         `json:"url"`
	Classification Classification `json:"classification"`
	Score          int            `json:"score"`
	Categories     []string       `json:"categories"`
	Advice         string         `json:"advice"`
	Summary        string         `json:"summary,omitempty"`
	Reasons        []string       `json:"reasons,omitempty"`
}

// Elevated reports whether the verdict is Medium or worse.
// Unreachable counts as Medium for storage and alerting.
func (v RiskVerdict) Elevated() bool {
	switch v.Classification {
	case ClassificationMedium, ClassificationHigh, ClassificationUnreachable:
		return true
	default:
		return false
	}
}
