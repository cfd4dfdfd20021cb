package export

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

const (
	toolName = "sysprobe"
	toolURI  = "https://github.com/felixgeelhaar/sysprobe"
)

// sarifLevel maps a severity to a SARIF result level. Pass and info
// findings are not results.
func sarifLevel(s scan.Severity) (string, bool) {
	switch s {
	case scan.SeverityCritical:
		return "error", true
	case scan.SeverityWarning:
		return "warning", true
	case scan.SeverityUnknown:
		return "note", true
	default:
		return "", false
	}
}

// writeSARIF emits one rule per probe and one result per actionable
// finding. Probe faults become notes on a dedicated rule.
func writeSARIF(w io.Writer, report *scan.Report) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}
	run := sarif.NewRunWithInformationURI(toolName, toolURI)

	for _, r := range report.Results {
		ruleID := fmt.Sprintf("%s/%s", toolName, scan.NormalizeName(r.ProbeName))

		if !r.Success {
			faultID := ruleID + "/fault"
			run.AddRule(faultID).WithDescription(fmt.Sprintf("%s could not run", r.ProbeName))
			run.CreateResultForRule(faultID).
				WithLevel("note").
				WithMessage(sarif.NewTextMessage(r.Error))
		}

		for _, f := range r.Findings {
			level, ok := sarifLevel(f.Severity)
			if !ok {
				continue
			}
			run.AddRule(ruleID).WithDescription(fmt.Sprintf("%s (%s)", r.ProbeName, r.Category))

			text := f.Title
			if f.Description != "" {
				text += ": " + f.Description
			}
			if f.Recommendation != "" {
				text += ". " + f.Recommendation
			}
			run.CreateResultForRule(ruleID).
				WithLevel(level).
				WithMessage(sarif.NewTextMessage(text))
		}
	}

	doc.AddRun(run)
	return doc.PrettyWrite(w)
}
