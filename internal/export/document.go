package export

import (
	"encoding/json"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// timeLayout is ISO 8601 with milliseconds.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Document is the serialized shape of a report shared by JSON and YAML.
type Document struct {
	ReportID        string           `json:"report_id" yaml:"report_id"`
	Mode            string           `json:"mode" yaml:"mode"`
	StartTime       string           `json:"start_time" yaml:"start_time"`
	EndTime         *string          `json:"end_time" yaml:"end_time"`
	TotalDurationMS float64          `json:"total_duration_ms" yaml:"total_duration_ms"`
	Summary         SummaryDocument  `json:"summary" yaml:"summary"`
	SystemInfo      map[string]any   `json:"system_info" yaml:"system_info"`
	Results         []ResultDocument `json:"results" yaml:"results"`
}

// SummaryDocument holds the report counters.
type SummaryDocument struct {
	TotalScanners   int `json:"total_scanners" yaml:"total_scanners"`
	SuccessfulScans int `json:"successful_scans" yaml:"successful_scans"`
	FailedScans     int `json:"failed_scans" yaml:"failed_scans"`
	CriticalIssues  int `json:"critical_issues" yaml:"critical_issues"`
	Warnings        int `json:"warnings" yaml:"warnings"`
	Passed          int `json:"passed" yaml:"passed"`
}

// ResultDocument is one probe result.
type ResultDocument struct {
	ScannerName string            `json:"scanner_name" yaml:"scanner_name"`
	Category    string            `json:"category" yaml:"category"`
	Success     bool              `json:"success" yaml:"success"`
	Findings    []FindingDocument `json:"findings" yaml:"findings"`
	DurationMS  float64           `json:"duration_ms" yaml:"duration_ms"`
	RawData     map[string]any    `json:"raw_data" yaml:"raw_data"`
	Error       *string           `json:"error" yaml:"error"`
	Timestamp   string            `json:"timestamp" yaml:"timestamp"`
}

// FindingDocument is one finding.
type FindingDocument struct {
	Title          string         `json:"title" yaml:"title"`
	Description    string         `json:"description" yaml:"description"`
	Severity       string         `json:"severity" yaml:"severity"`
	Category       string         `json:"category" yaml:"category"`
	Component      *string        `json:"component" yaml:"component"`
	Recommendation *string        `json:"recommendation" yaml:"recommendation"`
	Details        map[string]any `json:"details" yaml:"details"`
}

// NewDocument converts a report into its serialized shape.
func NewDocument(report *scan.Report) Document {
	summary := report.Summary()
	doc := Document{
		ReportID:        report.ID,
		Mode:            report.Mode,
		StartTime:       formatTime(report.StartTime),
		TotalDurationMS: millis(report.TotalDuration()),
		Summary: SummaryDocument{
			TotalScanners:   summary.TotalProbes,
			SuccessfulScans: summary.Successful,
			FailedScans:     summary.Failed,
			CriticalIssues:  summary.Critical,
			Warnings:        summary.Warnings,
			Passed:          summary.Passed,
		},
		SystemInfo: nonNil(report.SystemInfo),
		Results:    make([]ResultDocument, 0, len(report.Results)),
	}
	if report.Finalized() {
		end := formatTime(report.EndTime)
		doc.EndTime = &end
	}

	for _, r := range report.Results {
		rd := ResultDocument{
			ScannerName: r.ProbeName,
			Category:    string(r.Category),
			Success:     r.Success,
			Findings:    make([]FindingDocument, 0, len(r.Findings)),
			DurationMS:  millis(r.Duration),
			RawData:     nonNil(r.RawData),
			Error:       optional(r.Error),
			Timestamp:   formatTime(r.Timestamp),
		}
		for _, f := range r.Findings {
			rd.Findings = append(rd.Findings, FindingDocument{
				Title:          f.Title,
				Description:    f.Description,
				Severity:       string(f.Severity),
				Category:       string(f.Category),
				Component:      optional(f.Component),
				Recommendation: optional(f.Recommendation),
				Details:        nonNil(f.Details),
			})
		}
		doc.Results = append(doc.Results, rd)
	}
	return doc
}

func writeJSON(w io.Writer, report *scan.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewDocument(report))
}

func writeYAML(w io.Writer, report *scan.Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(NewDocument(report)); err != nil {
		return err
	}
	return encoder.Close()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
