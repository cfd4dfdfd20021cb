package export

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

var severityIcons = map[scan.Severity]string{
	scan.SeverityCritical: "🔴",
	scan.SeverityWarning:  "🟡",
	scan.SeverityPass:     "🟢",
	scan.SeverityInfo:     "🔵",
	scan.SeverityUnknown:  "⚪",
}

func writeMarkdown(w io.Writer, report *scan.Report) error {
	b := bufio.NewWriter(w)
	s := report.Summary()

	fmt.Fprintf(b, "# System diagnostics report\n\n")
	fmt.Fprintf(b, "- **Report ID:** `%s`\n", report.ID)
	fmt.Fprintf(b, "- **Mode:** %s\n", report.Mode)
	fmt.Fprintf(b, "- **Started:** %s\n", report.StartTime.Format(time.RFC3339))
	fmt.Fprintf(b, "- **Duration:** %s\n\n", report.TotalDuration().Round(time.Millisecond))

	fmt.Fprintf(b, "## Summary\n\n")
	fmt.Fprintf(b, "| Probes | Successful | Failed | Critical | Warnings | Passed |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|---|\n")
	fmt.Fprintf(b, "| %d | %d | %d | %d | %d | %d |\n\n", s.TotalProbes, s.Successful, s.Failed, s.Critical, s.Warnings, s.Passed)

	if len(report.SystemInfo) > 0 {
		fmt.Fprintf(b, "## System\n\n| Key | Value |\n|---|---|\n")
		keys := make([]string, 0, len(report.SystemInfo))
		for k := range report.SystemInfo {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, "| %s | %s |\n", k, cell(fmt.Sprint(report.SystemInfo[k])))
		}
		fmt.Fprintln(b)
	}

	for _, r := range report.Results {
		fmt.Fprintf(b, "## %s\n\n", r.ProbeName)
		if !r.Success {
			fmt.Fprintf(b, "> **Failed:** %s\n\n", r.Error)
		}
		if len(r.Findings) == 0 {
			continue
		}
		fmt.Fprintf(b, "| | Finding | Details | Recommendation |\n|---|---|---|---|\n")
		for _, f := range r.Findings {
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
				severityIcons[f.Severity], cell(f.Title), cell(f.Description), cell(f.Recommendation))
		}
		fmt.Fprintln(b)
	}
	return b.Flush()
}

// cell escapes text for a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
