package scan

import "strings"

// Severity classifies a single finding.
type Severity string

const (
	// SeverityPass indicates the checked aspect is in a good state.
	SeverityPass Severity = "pass"

	// SeverityInfo is purely informational and needs no action.
	SeverityInfo Severity = "info"

	// SeverityWarning indicates something worth attention but not urgent.
	SeverityWarning Severity = "warning"

	// SeverityCritical indicates a problem that should be fixed now.
	SeverityCritical Severity = "critical"

	// SeverityUnknown is used when the state could not be determined.
	SeverityUnknown Severity = "unknown"
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// Rank orders severities for display grouping: Pass < Info < Warning < Critical.
// Unknown ranks below Pass. It is not meant for arithmetic.
func (s Severity) Rank() int {
	switch s {
	case SeverityPass:
		return 0
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityPass, SeverityInfo, SeverityWarning, SeverityCritical, SeverityUnknown:
		return true
	}
	return false
}

// ParseSeverity parses a string into a Severity. Unrecognized input maps to
// SeverityUnknown.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass", "ok":
		return SeverityPass
	case "info":
		return SeverityInfo
	case "warning", "warn":
		return SeverityWarning
	case "critical", "crit":
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// Severities lists every severity from most to least severe, the order
// renderers group findings in.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityWarning, SeverityInfo, SeverityPass, SeverityUnknown}
}

// Category groups probes for mode filtering and report grouping.
type Category string

const (
	CategoryHardware Category = "hardware"
	CategorySecurity Category = "security"
	CategoryNetwork  Category = "network"
	CategorySystem   Category = "system"
)

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// Categories returns the fixed set of probe categories in display order.
func Categories() []Category {
	return []Category{CategoryHardware, CategorySecurity, CategoryNetwork, CategorySystem}
}
