package export

import (
	"encoding/csv"
	"io"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

var csvHeader = []string{
	"Scanner", "Category", "Severity", "Title", "Description",
	"Recommendation", "Component", "Timestamp",
}

// writeCSV writes one row per finding.
func writeCSV(w io.Writer, report *scan.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range report.Results {
		for _, f := range r.Findings {
			row := []string{
				r.ProbeName,
				string(f.Category),
				string(f.Severity),
				f.Title,
				f.Description,
				f.Recommendation,
				f.Component,
				formatTime(r.Timestamp),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
