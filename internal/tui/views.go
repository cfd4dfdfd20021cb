package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// maxListed bounds the live list of completed probes
const maxListed = 8

// View renders the TUI (required by Bubble Tea)
func (m Model) View() string {
	if m.report != nil {
		return m.renderComplete()
	}
	if m.quitting {
		return m.styles.Warning.Render("Scan aborted.") + "\n"
	}
	return m.renderMain()
}

// renderMain renders the running scan
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("sysprobe"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Mode: " + m.mode))
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(m.fraction()))
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %d/%d", m.current, m.total)))
	b.WriteString("\n\n")

	if m.label != "" {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.styles.Status.Render(m.label))
		b.WriteString("\n")
	}

	start := 0
	if len(m.completed) > maxListed {
		start = len(m.completed) - maxListed
	}
	for i := len(m.completed) - 1; i >= start; i-- {
		b.WriteString(m.liveLine(m.completed[i]))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(fmt.Sprintf("%s elapsed • q to abort", m.elapsed().Round(time.Second))))
	return b.String()
}

// renderComplete renders the final summary
func (m Model) renderComplete() string {
	s := m.report.Summary()

	var b strings.Builder
	b.WriteString(m.styles.Success.Render("✓ Scan complete"))
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %s", m.report.TotalDuration().Round(time.Millisecond))))
	b.WriteString("\n\n")

	lines := []string{
		fmt.Sprintf("Probes:   %d (%d failed)", s.TotalProbes, s.Failed),
		m.styles.Error.Render(fmt.Sprintf("Critical: %d", s.Critical)),
		m.styles.Warning.Render(fmt.Sprintf("Warnings: %d", s.Warnings)),
		m.styles.Success.Render(fmt.Sprintf("Passed:   %d", s.Passed)),
	}
	b.WriteString(m.styles.Border.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	for _, r := range m.report.Results {
		if w := r.WorstSeverity(); !r.Success || w == scan.SeverityCritical || w == scan.SeverityWarning {
			b.WriteString(m.resultLine(r))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// liveLine marks a finished probe by outcome: ✗ failed, ! issues, ✓ clean.
func (m Model) liveLine(r *scan.Result) string {
	if !r.Success {
		return m.styles.Error.Render("✗ ") + m.styles.Muted.Render(r.ProbeName)
	}
	switch r.WorstSeverity() {
	case scan.SeverityCritical:
		return m.styles.Error.Render("! ") + m.styles.Muted.Render(r.ProbeName)
	case scan.SeverityWarning:
		return m.styles.Warning.Render("! ") + m.styles.Muted.Render(r.ProbeName)
	default:
		return m.styles.Success.Render("✓ ") + m.styles.Muted.Render(r.ProbeName)
	}
}

func (m Model) resultLine(r *scan.Result) string {
	if !r.Success {
		return m.styles.Error.Render("✗ ") + r.ProbeName + m.styles.Muted.Render(": "+r.Error)
	}
	crit, warn := r.CriticalCount(), r.WarningCount()
	style := m.styles.Warning
	if crit > 0 {
		style = m.styles.Error
	}
	return style.Render("! ") + r.ProbeName + m.styles.Muted.Render(fmt.Sprintf(": %d critical, %d warnings", crit, warn))
}
