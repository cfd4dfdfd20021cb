package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// Model represents the scan TUI state
type Model struct {
	mode string

	// Scan state
	current   int
	total     int
	label     string
	completed []*scan.Result
	report    *scan.Report
	startTime time.Time

	// UI state
	spinner  spinner.Model
	bar      progress.Model
	width    int
	height   int
	ready    bool
	quitting bool
	aborted  bool

	// cancel stops the running scan when the user quits
	cancel func()

	styles Styles
}

// Styles contains lipgloss styles for the TUI
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Muted    lipgloss.Style
	Border   lipgloss.Style
	Help     lipgloss.Style
}

// NewModel creates a new TUI model for a scan in mode
func NewModel(mode string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return Model{
		mode:      mode,
		startTime: time.Now(),
		spinner:   s,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		styles:    DefaultStyles(),
	}
}

// WithCancel sets the function called when the user quits mid-scan
func (m Model) WithCancel(cancel func()) Model {
	m.cancel = cancel
	return m
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")). // Purple
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")). // Purple
			Padding(1, 2),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			MarginTop(1),
	}
}

// Init initializes the TUI model (required by Bubble Tea)
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case ProgressMsg:
		m.current = msg.Current
		m.total = msg.Total
		m.label = msg.Label
		return m, nil

	case ResultMsg:
		m.completed = append(m.completed, msg.Result)
		return m, nil

	case ScanCompleteMsg:
		m.report = msg.Report
		m.label = ""
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		m.aborted = m.report == nil
		if m.aborted && m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	return m, nil
}

// Report returns the finished report, or nil while the scan runs
func (m Model) Report() *scan.Report {
	return m.report
}

// Aborted reports whether the user quit before the scan finished
func (m Model) Aborted() bool {
	return m.aborted
}

// ProgressMsg carries one engine progress event
type ProgressMsg struct {
	Current int
	Total   int
	Label   string
}

// ResultMsg carries the result of one finished probe
type ResultMsg struct {
	Result *scan.Result
}

// ScanCompleteMsg carries the finalized report
type ScanCompleteMsg struct {
	Report *scan.Report
}

// Helper functions

func (m Model) elapsed() time.Duration {
	return time.Since(m.startTime)
}

func (m Model) fraction() float64 {
	if m.report != nil {
		return 1
	}
	if m.total == 0 {
		return 0
	}
	return float64(m.current) / float64(m.total)
}
