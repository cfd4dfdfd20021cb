package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/sysprobe/internal/config"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

// Monitor is a live dashboard of CPU, memory and disk load, refreshed
// every interval until the user quits or the duration elapses.
type Monitor struct {
	src        sysinfo.Source
	thresholds config.Thresholds
	interval   time.Duration
	duration   time.Duration

	snapshot *sysinfo.Snapshot
	samples  int
	started  time.Time
	quitting bool

	bar    progress.Model
	styles Styles
}

// SnapshotMsg carries a fresh reading
type SnapshotMsg struct {
	Snapshot sysinfo.Snapshot
}

type monitorTickMsg time.Time

// NewMonitor creates the dashboard. A zero duration runs until quit.
func NewMonitor(src sysinfo.Source, thresholds config.Thresholds, interval, duration time.Duration) Monitor {
	if interval <= 0 {
		interval = time.Second
	}
	return Monitor{
		src:        src,
		thresholds: thresholds,
		interval:   interval,
		duration:   duration,
		started:    time.Now(),
		bar: progress.New(
			progress.WithSolidFill("63"),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
		styles: DefaultStyles(),
	}
}

// Init takes the first reading (required by Bubble Tea)
func (m Monitor) Init() tea.Cmd {
	return m.sample()
}

// sample reads the source off the UI goroutine.
func (m Monitor) sample() tea.Cmd {
	src, timeout := m.src, m.interval
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return SnapshotMsg{Snapshot: sysinfo.Sample(ctx, src)}
	}
}

// Update handles messages (required by Bubble Tea)
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case SnapshotMsg:
		s := msg.Snapshot
		m.snapshot = &s
		m.samples++
		if m.duration > 0 && s.Taken.Sub(m.started) >= m.duration {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg {
			return monitorTickMsg(t)
		})

	case monitorTickMsg:
		return m, m.sample()
	}
	return m, nil
}

// Samples returns how many readings were taken
func (m Monitor) Samples() int {
	return m.samples
}

// View renders the dashboard (required by Bubble Tea)
func (m Monitor) View() string {
	if m.quitting {
		return m.styles.Muted.Render("Monitor stopped.") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Live system monitor"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Refreshing every %s", m.interval)))
	b.WriteString("\n\n")

	s := m.snapshot
	if s == nil {
		b.WriteString(m.styles.Muted.Render("Sampling..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.styles.Status.Render("CPU"))
	b.WriteString("\n")
	b.WriteString(m.gauge("Usage", s.CPUPercent, m.thresholds.CPULoad))
	if s.CPUTemperature > 0 {
		style := m.severityStyle(m.thresholds.CPUTemperature.Grade(s.CPUTemperature))
		fmt.Fprintf(&b, "  %-12s %s\n", "Temperature", style.Render(fmt.Sprintf("%.1fC", s.CPUTemperature)))
	}
	b.WriteString("\n")

	b.WriteString(m.styles.Status.Render("Memory"))
	b.WriteString("\n")
	b.WriteString(m.gauge("RAM", s.MemoryPercent, m.thresholds.Memory))
	fmt.Fprintf(&b, "  %-12s %s / %s\n", "Used", sysinfo.FormatBytes(s.MemoryUsed), sysinfo.FormatBytes(s.MemoryTotal))
	fmt.Fprintf(&b, "  %-12s %s\n", "Available", sysinfo.FormatBytes(s.MemoryAvailable))
	b.WriteString("\n")

	b.WriteString(m.styles.Status.Render("Storage"))
	b.WriteString("\n")
	for _, v := range s.Volumes {
		b.WriteString(m.gauge(v.Mountpoint, v.UsedPercent, m.thresholds.Disk))
		fmt.Fprintf(&b, "  %-12s %s\n", "", m.styles.Muted.Render(
			fmt.Sprintf("%s of %s used", sysinfo.FormatBytes(v.Used), sysinfo.FormatBytes(v.Total))))
	}

	b.WriteString(m.styles.Help.Render("q to quit"))
	return b.String()
}

// gauge renders one labelled percentage with a bar, colored by limit.
func (m Monitor) gauge(label string, percent float64, limit config.Limit) string {
	style := m.severityStyle(limit.Grade(percent))
	return fmt.Sprintf("  %-12s %s %s\n", label, style.Render(fmt.Sprintf("%5.1f%%", percent)), m.bar.ViewAs(percent/100))
}

func (m Monitor) severityStyle(sev scan.Severity) lipgloss.Style {
	switch sev {
	case scan.SeverityCritical:
		return m.styles.Error
	case scan.SeverityWarning:
		return m.styles.Warning
	default:
		return m.styles.Success
	}
}
