package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

// Options tunes console output.
type Options struct {
	// NoColor disables styling.
	NoColor bool

	// IssuesOnly hides pass and info findings.
	IssuesOnly bool
}

// Console writes human-readable output.
type Console struct {
	w      io.Writer
	styles Styles
	opts   Options
}

// NewConsole creates a console renderer writing to w.
func NewConsole(w io.Writer, opts Options) *Console {
	styles := DefaultStyles(w)
	if opts.NoColor {
		styles = PlainStyles()
	}
	return &Console{w: w, styles: styles, opts: opts}
}

// Report renders a full report: header, results grouped by category, and
// the summary.
func (c *Console) Report(report *scan.Report) error {
	var b strings.Builder
	s := c.styles

	b.WriteString(s.Title.Render("System diagnostics"))
	b.WriteString(s.Muted.Render(fmt.Sprintf("  mode %s | %d probes | %s",
		report.Mode, len(report.Results), report.TotalDuration().Round(time.Millisecond))))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("report " + report.ID))
	b.WriteString("\n")

	if len(report.Results) == 0 {
		b.WriteString("\nNo probes ran for this mode.\n")
	}

	for _, group := range groupByCategory(report.Results) {
		b.WriteString("\n")
		b.WriteString(s.Heading.Render(strings.ToUpper(string(group.category))))
		b.WriteString("\n")
		for _, r := range group.results {
			c.writeResult(&b, r)
		}
	}

	b.WriteString("\n")
	b.WriteString(c.summary(report))

	_, err := io.WriteString(c.w, b.String())
	return err
}

func (c *Console) writeResult(b *strings.Builder, r *scan.Result) {
	s := c.styles
	fmt.Fprintf(b, "  %s %s\n", s.Probe.Render(r.ProbeName), s.Muted.Render("("+r.Duration.Round(time.Millisecond).String()+")"))

	if !r.Success {
		fmt.Fprintf(b, "    %s %s\n", s.Error.Render("✗ FAIL"), r.Error)
	}

	shown := 0
	for _, f := range r.Findings {
		if c.opts.IssuesOnly && f.Severity.Rank() < scan.SeverityWarning.Rank() {
			continue
		}
		shown++
		line := f.Title
		if f.Description != "" {
			line += s.Muted.Render(" - " + f.Description)
		}
		fmt.Fprintf(b, "    %s  %s\n", s.Severity(f.Severity).Render(Badge(f.Severity)), line)
		if f.HasRecommendation() {
			fmt.Fprintf(b, "            %s\n", s.Muted.Render("→ "+f.Recommendation))
		}
	}
	if shown == 0 && r.Success && c.opts.IssuesOnly {
		fmt.Fprintf(b, "    %s\n", s.Pass.Render("no issues"))
	}
}

func (c *Console) summary(report *scan.Report) string {
	s := c.styles
	sum := report.Summary()

	var b strings.Builder
	b.WriteString(s.Heading.Render("SUMMARY"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Probes:   %d run, %d successful, %d failed\n", sum.TotalProbes, sum.Successful, sum.Failed)
	fmt.Fprintf(&b, "  Findings: %s  %s  %s  %s\n",
		s.Critical.Render(fmt.Sprintf("%d critical", sum.Critical)),
		s.Warning.Render(fmt.Sprintf("%d warnings", sum.Warnings)),
		s.Pass.Render(fmt.Sprintf("%d passed", sum.Passed)),
		s.Info.Render(fmt.Sprintf("%d info", sum.Info)),
	)

	if failed := report.FailedResults(); len(failed) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Heading.Render("FAILED PROBES"))
		b.WriteString("\n")
		for _, r := range failed {
			fmt.Fprintf(&b, "  %s %s: %s\n", s.Error.Render("✗"), r.ProbeName, r.Error)
		}
	}

	switch {
	case sum.Critical > 0:
		b.WriteString("\n" + s.Critical.Render("Critical issues found.") + "\n")
	case sum.Warnings > 0:
		b.WriteString("\n" + s.Warning.Render("Warnings found.") + "\n")
	default:
		b.WriteString("\n" + s.Pass.Render("No issues found.") + "\n")
	}
	return b.String()
}

type categoryGroup struct {
	category scan.Category
	results  []*scan.Result
}

// groupByCategory keeps categories in order of first appearance.
func groupByCategory(results []*scan.Result) []categoryGroup {
	var groups []categoryGroup
	index := map[scan.Category]int{}
	for _, r := range results {
		i, ok := index[r.Category]
		if !ok {
			i = len(groups)
			index[r.Category] = i
			groups = append(groups, categoryGroup{category: r.Category})
		}
		groups[i].results = append(groups[i].results, r)
	}
	return groups
}

// Probes renders the registered probes as a table.
func (c *Console) Probes(probes []scan.Probe, env scan.Environment) error {
	s := c.styles
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-10s %-6s %-10s %s\n", "KEY", "CATEGORY", "ADMIN", "AVAILABLE", "DESCRIPTION")
	for _, p := range probes {
		admin := "no"
		if p.RequiresAdmin() {
			admin = "yes"
		}
		available := s.Pass.Render(fmt.Sprintf("%-10s", "yes"))
		if !p.Available(env) {
			available = s.Warning.Render(fmt.Sprintf("%-10s", "no"))
		}
		desc := ""
		if d, ok := p.(interface{ Description() string }); ok {
			desc = d.Description()
		}
		fmt.Fprintf(&b, "%-20s %-10s %-6s %s %s\n", scan.NormalizeName(p.Name()), p.Category(), admin, available, desc)
	}
	_, err := io.WriteString(c.w, b.String())
	return err
}

// Modes renders each mode with its allow-list.
func (c *Console) Modes(registry *scan.Registry) error {
	var b strings.Builder
	for _, mode := range registry.Modes() {
		allow, all, _ := registry.ModeAllowList(mode)
		selected := len(registry.SelectForMode(mode))
		list := strings.Join(allow, ", ")
		if all {
			list = "all probes"
		}
		fmt.Fprintf(&b, "%s %s\n    %s\n",
			c.styles.Probe.Render(mode),
			c.styles.Muted.Render(fmt.Sprintf("(%d registered probes)", selected)),
			list)
	}
	_, err := io.WriteString(c.w, b.String())
	return err
}

// SystemInfo renders collected host information.
func (c *Console) SystemInfo(info sysinfo.Info) error {
	rows := [][2]string{
		{"Hostname", info.Hostname},
		{"OS", strings.TrimSpace(info.Platform + " " + info.PlatformVersion)},
		{"Kernel", info.KernelVersion},
		{"Architecture", info.Arch},
		{"CPU", info.CPUModel},
		{"Cores", fmt.Sprintf("%d physical, %d logical", info.PhysicalCores, info.LogicalCores)},
		{"Memory", sysinfo.FormatBytes(info.MemoryTotal)},
		{"Uptime", sysinfo.FormatUptime(info.Uptime)},
		{"Go", info.GoVersion},
	}

	var b strings.Builder
	b.WriteString(c.styles.Title.Render("System information"))
	b.WriteString("\n")
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "  %-14s %s\n", row[0]+":", row[1])
	}
	_, err := io.WriteString(c.w, b.String())
	return err
}
