package export

import (
	"html/template"
	"io"
	"time"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"ms": func(d time.Duration) string { return d.Round(time.Millisecond).String() },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>sysprobe report {{.Report.ID}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #222; }
h1 { margin-bottom: 0; }
.meta { color: #666; margin-bottom: 1.5rem; }
.summary span { display: inline-block; margin-right: 1rem; padding: .3rem .6rem; border-radius: 4px; background: #f0f0f0; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; }
th, td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #ddd; vertical-align: top; }
.critical { color: #b00020; font-weight: bold; }
.warning { color: #b26a00; font-weight: bold; }
.pass { color: #1b7f3b; }
.info { color: #1f5fbf; }
.unknown { color: #666; }
.error { color: #b00020; }
</style>
</head>
<body>
<h1>System diagnostics</h1>
<div class="meta">Mode {{.Report.Mode}} &middot; {{.Start}} &middot; {{ms .Duration}}</div>
<div class="summary">
<span>Probes: {{.Summary.TotalProbes}}</span>
<span>Failed: {{.Summary.Failed}}</span>
<span class="critical">Critical: {{.Summary.Critical}}</span>
<span class="warning">Warnings: {{.Summary.Warnings}}</span>
<span class="pass">Passed: {{.Summary.Passed}}</span>
</div>
{{- if .Report.SystemInfo}}
<h2>System</h2>
<table>
{{- range $k, $v := .Report.SystemInfo}}
<tr><th>{{$k}}</th><td>{{$v}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- range .Report.Results}}
<h2>{{.ProbeName}} <small>({{.Category}}, {{ms .Duration}})</small></h2>
{{- if not .Success}}
<p class="error">{{.Error}}</p>
{{- end}}
{{- if .Findings}}
<table>
<tr><th>Severity</th><th>Finding</th><th>Recommendation</th></tr>
{{- range .Findings}}
<tr><td class="{{.Severity}}">{{.Severity}}</td><td><strong>{{.Title}}</strong><br>{{.Description}}</td><td>{{.Recommendation}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- end}}
</body>
</html>
`))

type htmlView struct {
	Report   *scan.Report
	Summary  scan.Summary
	Start    string
	Duration time.Duration
}

func writeHTML(w io.Writer, report *scan.Report) error {
	return htmlTemplate.Execute(w, htmlView{
		Report:   report,
		Summary:  report.Summary(),
		Start:    report.StartTime.Format(time.RFC1123),
		Duration: report.TotalDuration(),
	})
}
