package models

// ConfidenceTier buckets a match confidence percentage for display.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

const (
	highConfidenceThreshold   = 80
	mediumConfidenceThreshold = 60
)

// TierFor maps a percentage to its tier. Both thresholds are inclusive.
func TierFor(percent int) ConfidenceTier {
	switch {
	case percent >= highConfidenceThreshold:
		return ConfidenceHigh
	case percent >= mediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// CSSClass is the class used to colour the confidence badge.
func (t ConfidenceTier) CSSClass() string {
	return "confidence-" + string(t)
}

// Label is the human readable name of the tier.
func (t ConfidenceTier) Label() string {
	switch t {
	case ConfidenceHigh:
		return "High"
	case ConfidenceMedium:
		return "Medium"
	case ConfidenceLow:
		return "Low"
	}
	return ""
}
