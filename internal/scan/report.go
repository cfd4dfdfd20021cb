package scan

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrReportFinalized is returned by AddResult once the report is sealed.
var ErrReportFinalized = errors.New("report already finalized")

// Report aggregates every Result of one scan run.
//
// A Report is created when a scan starts, receives results through
// AddResult while the scan runs, and is sealed by Finalize. After that it
// is read-only and handed to renderers and exporters.
type Report struct {
	// ID uniquely identifies the scan run.
	ID string

	// Mode is the scan mode the report was produced for.
	Mode string

	// Results are kept in execution order.
	Results []*Result

	// StartTime is stamped at construction, before any probe runs.
	StartTime time.Time

	// EndTime is zero until Finalize is called.
	EndTime time.Time

	// SystemInfo is optional context supplied by the caller.
	SystemInfo map[string]any
}

// Summary holds the aggregate counters of a report.
type Summary struct {
	TotalProbes int
	Successful  int
	Failed      int
	Critical    int
	Warnings    int
	Passed      int
	Info        int
}

// NewReport creates an empty report and stamps its start time.
func NewReport(mode string) *Report {
	return &Report{
		ID:         uuid.NewString(),
		Mode:       mode,
		Results:    []*Result{},
		StartTime:  time.Now(),
		SystemInfo: map[string]any{},
	}
}

// AddResult appends a result in execution order.
func (r *Report) AddResult(result *Result) error {
	if r.Finalized() {
		return ErrReportFinalized
	}
	r.Results = append(r.Results, result)
	return nil
}

// Finalize stamps the end time. Calling it again has no effect.
func (r *Report) Finalize() {
	if r.Finalized() {
		return
	}
	r.EndTime = time.Now()
}

// Finalized reports whether Finalize has been called.
func (r *Report) Finalized() bool {
	return !r.EndTime.IsZero()
}

// TotalDuration returns EndTime-StartTime for a finalized report. For a
// partial or interrupted run it falls back to the sum of result durations.
func (r *Report) TotalDuration() time.Duration {
	if r.Finalized() {
		return r.EndTime.Sub(r.StartTime)
	}
	var total time.Duration
	for _, res := range r.Results {
		total += res.Duration
	}
	return total
}

// AllFindings returns every finding across all results in report order.
func (r *Report) AllFindings() []Finding {
	var findings []Finding
	for _, res := range r.Results {
		findings = append(findings, res.Findings...)
	}
	return findings
}

// CountSeverity sums findings of the given severity across all results.
func (r *Report) CountSeverity(s Severity) int {
	n := 0
	for _, res := range r.Results {
		n += res.CountSeverity(s)
	}
	return n
}

// CriticalCount returns the total number of critical findings.
func (r *Report) CriticalCount() int { return r.CountSeverity(SeverityCritical) }

// WarningCount returns the total number of warning findings.
func (r *Report) WarningCount() int { return r.CountSeverity(SeverityWarning) }

// PassCount returns the total number of passed findings.
func (r *Report) PassCount() int { return r.CountSeverity(SeverityPass) }

// InfoCount returns the total number of informational findings.
func (r *Report) InfoCount() int { return r.CountSeverity(SeverityInfo) }

// FailedResults returns the results of probes that did not succeed.
func (r *Report) FailedResults() []*Result {
	var failed []*Result
	for _, res := range r.Results {
		if !res.Success {
			failed = append(failed, res)
		}
	}
	return failed
}

// Summary computes the aggregate counters.
func (r *Report) Summary() Summary {
	s := Summary{TotalProbes: len(r.Results)}
	for _, res := range r.Results {
		if res.Success {
			s.Successful++
		} else {
			s.Failed++
		}
		s.Critical += res.CriticalCount()
		s.Warnings += res.WarningCount()
		s.Passed += res.PassCount()
		s.Info += res.InfoCount()
	}
	return s
}
