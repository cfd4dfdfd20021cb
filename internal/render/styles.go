// Package render draws reports, probe lists and system information for
// the terminal.
package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// Styles contains lipgloss styles for console output
type Styles struct {
	Title    lipgloss.Style
	Heading  lipgloss.Style
	Probe    lipgloss.Style
	Critical lipgloss.Style
	Warning  lipgloss.Style
	Pass     lipgloss.Style
	Info     lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns colored styles bound to the terminal behind w.
// Colors are dropped automatically when w is not a terminal.
func DefaultStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Heading: r.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Probe: r.NewStyle().Bold(true),
		Critical: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Warning: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Pass: r.NewStyle().
			Foreground(lipgloss.Color("46")), // Green
		Info: r.NewStyle().
			Foreground(lipgloss.Color("39")), // Blue
		Muted: r.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Error: r.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
}

// PlainStyles returns styles that add no escape sequences.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:    plain,
		Heading:  plain,
		Probe:    plain,
		Critical: plain,
		Warning:  plain,
		Pass:     plain,
		Info:     plain,
		Muted:    plain,
		Error:    plain,
	}
}

// Severity returns the style for a finding severity.
func (s Styles) Severity(sev scan.Severity) lipgloss.Style {
	switch sev {
	case scan.SeverityCritical:
		return s.Critical
	case scan.SeverityWarning:
		return s.Warning
	case scan.SeverityPass:
		return s.Pass
	case scan.SeverityInfo:
		return s.Info
	default:
		return s.Muted
	}
}

// Badge returns the fixed-width label shown before a finding.
func Badge(sev scan.Severity) string {
	switch sev {
	case scan.SeverityCritical:
		return "✗ CRIT"
	case scan.SeverityWarning:
		return "! WARN"
	case scan.SeverityPass:
		return "✓ PASS"
	case scan.SeverityInfo:
		return "i INFO"
	default:
		return "? UNKN"
	}
}
