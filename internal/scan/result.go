package scan

import "time"

// Result is the execution record of one probe run.
//
// Results are created by the Run wrapper, or by a probe's Execute and then
// completed by the wrapper. Once appended to a Report they are owned by it.
type Result struct {
	// ProbeName is the display name of the probe that produced the result.
	ProbeName string

	// Category is the category of the probe.
	Category Category

	// Success reports whether the probe completed without a fault.
	Success bool

	// Findings are kept in discovery order.
	Findings []Finding

	// Duration is the wall-clock time measured by the wrapper.
	Duration time.Duration

	// RawData holds machine-readable detail independent of the findings.
	RawData map[string]any

	// Error is set when Success is false or the probe was skipped.
	Error string

	// Timestamp is the capture time, defaulting to the execution start.
	Timestamp time.Time
}

// NewResult creates a successful, empty result for the named probe.
func NewResult(probeName string, category Category) *Result {
	return &Result{
		ProbeName: probeName,
		Category:  category,
		Success:   true,
		Findings:  []Finding{},
		RawData:   map[string]any{},
	}
}

// FailedResult creates a result with Success=false and the given error text.
func FailedResult(probeName string, category Category, message string) *Result {
	r := NewResult(probeName, category)
	r.Success = false
	r.Error = message
	return r
}

// Add appends findings and returns the result for chaining.
func (r *Result) Add(findings ...Finding) *Result {
	r.Findings = append(r.Findings, findings...)
	return r
}

// WithRaw sets a raw data entry and returns the result for chaining.
func (r *Result) WithRaw(key string, value any) *Result {
	if r.RawData == nil {
		r.RawData = map[string]any{}
	}
	r.RawData[key] = value
	return r
}

// Fail marks the result as failed with the given message.
func (r *Result) Fail(message string) *Result {
	r.Success = false
	r.Error = message
	return r
}

// CountSeverity returns the number of findings with the given severity.
func (r *Result) CountSeverity(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// CriticalCount returns the number of critical findings.
func (r *Result) CriticalCount() int { return r.CountSeverity(SeverityCritical) }

// WarningCount returns the number of warning findings.
func (r *Result) WarningCount() int { return r.CountSeverity(SeverityWarning) }

// PassCount returns the number of passed findings.
func (r *Result) PassCount() int { return r.CountSeverity(SeverityPass) }

// InfoCount returns the number of informational findings.
func (r *Result) InfoCount() int { return r.CountSeverity(SeverityInfo) }

// WorstSeverity returns the most severe finding level, or SeverityUnknown
// when there are no findings.
func (r *Result) WorstSeverity() Severity {
	worst := SeverityUnknown
	for _, f := range r.Findings {
		if f.Severity.Rank() > worst.Rank() {
			worst = f.Severity
		}
	}
	return worst
}
