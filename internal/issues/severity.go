package issues

import "strings"

// Severity is the priority a tool assigned to an issue.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityNormal Severity = "normal"
	SeverityHigh   Severity = "high"
)

// Weight returns a numeric weight for ordering; unknown severities weigh 0.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityNormal:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Less reports whether s orders strictly before other (low < normal < high).
func (s Severity) Less(other Severity) bool {
	return s.Weight() < other.Weight()
}

// IsValid returns true if the severity is one of the known levels.
func (s Severity) IsValid() bool {
	return s.Weight() > 0
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity maps tool labels to a Severity.
// Empty or unexpected labels are treated as high so nothing is under-reported.
func ParseSeverity(label string) Severity {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "low", "notice", "info", "ignore":
		return SeverityLow
	case "normal", "warning", "warn":
		return SeverityNormal
	default:
		return SeverityHigh
	}
}
